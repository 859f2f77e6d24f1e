// Polled button debouncing
package core

// DebounceMode selects how strictly a press must hold
type DebounceMode uint8

const (
	// DebounceConfirmed samples the pin through each settle interval and only
	// commits a press when the level held the whole time, both pressed and
	// released.
	DebounceConfirmed DebounceMode = iota

	// DebounceCoarse waits each settle interval blind and samples once.
	// A press shorter than the first interval is still reported.
	DebounceCoarse
)

const (
	DefaultSettleMs = 20
	DefaultPollMs   = 1
)

// DebounceGate turns the noisy transitions of a polled mechanical switch
// into single press events. It blocks the foreground while a press is in
// progress, which is fine for buttons and never allowed in a handler.
type DebounceGate struct {
	Pin      Pin
	Active   Level // level while pressed
	SettleMs uint32
	PollMs   uint32
	Mode     DebounceMode

	// Presses counts committed presses. The foreground is its only writer.
	Presses EventCounter

	delay Delayer
}

// NewDebounceGate creates a gate for a button that reads active when pressed
func NewDebounceGate(pin Pin, active Level, delay Delayer) *DebounceGate {
	return &DebounceGate{
		Pin:      pin,
		Active:   active,
		SettleMs: DefaultSettleMs,
		PollMs:   DefaultPollMs,
		Mode:     DebounceConfirmed,
		delay:    delay,
	}
}

// WaitForEvent checks the button once. If it is pressed, it waits for the
// press to settle, for the release, and for the release to settle, then
// reports whether a press was committed. An idle button returns false
// immediately.
func (g *DebounceGate) WaitForEvent() bool {
	if g.Pin.Read() != g.Active {
		return false
	}

	if !g.settle(g.Active) {
		// bounce shorter than the settle interval
		return false
	}

	for {
		for g.Pin.Read() == g.Active {
			g.delay.DelayMs(g.poll())
		}
		if g.settle(!g.Active) {
			break
		}
	}

	WithExclusive(func(tok Token) {
		g.Presses.Increment(tok)
	})
	return true
}

// settle waits one settle interval and reports whether the pin stayed at level
func (g *DebounceGate) settle(level Level) bool {
	if g.Mode == DebounceCoarse {
		g.delay.DelayMs(g.SettleMs)
		return true
	}

	// the read that started the interval is its first sample, so the last
	// stretch is waited out without one
	step := g.poll()
	waited := uint32(0)
	for waited+step < g.SettleMs {
		g.delay.DelayMs(step)
		waited += step
		if g.Pin.Read() != level {
			return false
		}
	}
	g.delay.DelayMs(g.SettleMs - waited)
	return true
}

func (g *DebounceGate) poll() uint32 {
	if g.PollMs == 0 {
		return DefaultPollMs
	}
	return g.PollMs
}
