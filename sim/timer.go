package sim

import (
	"irqlab/core"
)

// Timer models a 16-bit general purpose timer (TIM2) or SysTick: the input
// clock is divided by the prescaler, then the counter reloads every reload
// prescaled ticks and sets the update flag.
type Timer struct {
	Name string

	m          *Machine
	maxP, maxR uint32
	prescaler  uint32
	reload     uint32
	counting   bool
	uie        bool
	uif        bool
	last       uint64 // cycle of the last update (or of the start)
	external   bool
	edges      uint64 // external clock edges since the last update

	// Updates counts update events since creation
	Updates uint64
}

// NewTimer creates a stopped TIM2-style timer (16-bit prescaler and reload)
func (m *Machine) NewTimer(name string) *Timer {
	t := &Timer{Name: name, m: m, maxP: 1 << 16, maxR: 1 << 16, prescaler: 1, reload: 1 << 16}
	m.Add(t)
	return t
}

// NewSysTick creates a stopped SysTick-style timer (no prescaler, 24-bit reload)
func (m *Machine) NewSysTick() *Timer {
	t := &Timer{Name: "systick", m: m, maxP: 1, maxR: 1 << 24, prescaler: 1, reload: 1 << 24}
	m.Add(t)
	return t
}

func (t *Timer) period() uint64 {
	return uint64(t.prescaler) * uint64(t.reload)
}

// Limits implements core.TimerHW
func (t *Timer) Limits() (uint32, uint32) {
	return t.maxP, t.maxR
}

// SetPrescaler implements core.TimerHW
func (t *Timer) SetPrescaler(p uint32) {
	if p == 0 || p > t.maxP {
		panic("sim: prescaler out of range")
	}
	t.prescaler = p
}

// SetReload implements core.TimerHW
func (t *Timer) SetReload(r uint32) {
	if r == 0 || r > t.maxR {
		panic("sim: reload out of range")
	}
	t.reload = r
}

// SetCounting implements core.TimerHW. Starting resets the counter.
func (t *Timer) SetCounting(on bool) {
	if on && !t.counting {
		t.last = t.m.Now()
		t.edges = 0
	}
	t.counting = on
}

// SetUpdateInterrupt implements core.TimerHW
func (t *Timer) SetUpdateInterrupt(on bool) {
	t.uie = on
}

// UpdatePending implements core.TimerHW
func (t *Timer) UpdatePending() bool {
	t.m.poll()
	return t.uif
}

// ClearUpdate implements core.TimerHW
func (t *Timer) ClearUpdate() {
	t.uif = false
}

// ClockFrom switches the timer to external clock mode: every rising edge
// of pin is one input clock, as with TIM2_ETR.
func (t *Timer) ClockFrom(pin *Pin) {
	t.external = true
	pin.OnChange(func(from, to core.Level) {
		if !t.counting || to != core.High {
			return
		}
		t.edges++
		if t.edges >= t.period() {
			t.edges -= t.period()
			t.uif = true
			t.Updates++
		}
	})
}

// Counting reports whether the counter runs
func (t *Timer) Counting() bool {
	return t.counting
}

// Count implements core.CountingTimerHW: the counter value in prescaled ticks
func (t *Timer) Count() uint32 {
	if !t.counting {
		return 0
	}
	if t.external {
		return uint32(t.edges / uint64(t.prescaler))
	}
	return uint32((t.m.Now() - t.last) / uint64(t.prescaler))
}

// Asserted is the update interrupt request line
func (t *Timer) Asserted() bool {
	return t.uie && t.uif
}

// NextEvent implements Device
func (t *Timer) NextEvent() (uint64, bool) {
	if !t.counting || t.external {
		return 0, false
	}
	return t.last + t.period(), true
}

// Sync implements Device
func (t *Timer) Sync(now uint64) {
	if !t.counting || t.external {
		return
	}
	p := t.period()
	for t.last+p <= now {
		t.last += p
		t.uif = true
		t.Updates++
	}
}
