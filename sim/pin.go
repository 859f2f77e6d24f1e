package sim

import (
	"golang.org/x/exp/slices"

	"irqlab/core"
)

// Transition is a scripted level change at a cycle
type Transition struct {
	At    uint64
	Level core.Level
}

// Pin is a GPIO pin. Inputs follow a script of transitions; outputs record
// what the firmware drives. Every level change is passed to the listeners
// (an EXTI line, a timer's external clock input).
type Pin struct {
	Name string

	m         *Machine
	dir       core.Direction
	pull      core.Pull
	level     core.Level
	driven    bool
	script    []Transition
	next      int
	listeners []func(from, to core.Level)

	// Writes counts level changes made through Write
	Writes int
}

// NewPin creates an input pin resting at the idle level of a pull-up
func (m *Machine) NewPin(name string) *Pin {
	p := &Pin{Name: name, m: m, pull: core.PullUp, level: core.High}
	m.Add(p)
	return p
}

// Configure sets direction and bias. An undriven input takes the level of
// its bias.
func (p *Pin) Configure(dir core.Direction, pull core.Pull) error {
	p.dir = dir
	p.pull = pull
	if dir == core.Input && !p.driven && len(p.script) == 0 {
		p.set(core.IdleLevel(pull))
	}
	return nil
}

// Direction returns the configured direction
func (p *Pin) Direction() core.Direction {
	return p.dir
}

// Read samples the pin. Each read costs one poll.
func (p *Pin) Read() core.Level {
	p.m.poll()
	return p.level
}

// Level returns the pin level without consuming time
func (p *Pin) Level() core.Level {
	return p.level
}

// Write drives an output pin
func (p *Pin) Write(level core.Level) {
	if p.level != level {
		p.Writes++
	}
	p.set(level)
}

// Drive forces the pin to level now, as external hardware would
func (p *Pin) Drive(level core.Level) {
	p.driven = true
	p.set(level)
}

// Script queues level changes at cycles relative to now
func (p *Pin) Script(steps ...Transition) {
	base := p.m.Now()
	for _, s := range steps {
		p.script = append(p.script, Transition{At: base + s.At, Level: s.Level})
	}
	rest := p.script[p.next:]
	slices.SortStableFunc(rest, func(a, b Transition) bool { return a.At < b.At })
}

// Pulse queues a pulse of width cycles to active, starting after delay
// cycles, returning to the opposite level
func (p *Pin) Pulse(delay, width uint64, active core.Level) {
	p.Script(
		Transition{At: delay, Level: active},
		Transition{At: delay + width, Level: !active},
	)
}

// OnChange registers a listener for level changes
func (p *Pin) OnChange(f func(from, to core.Level)) {
	p.listeners = append(p.listeners, f)
}

// NextEvent implements Device
func (p *Pin) NextEvent() (uint64, bool) {
	if p.next >= len(p.script) {
		return 0, false
	}
	return p.script[p.next].At, true
}

// Sync implements Device
func (p *Pin) Sync(now uint64) {
	for p.next < len(p.script) && p.script[p.next].At <= now {
		p.set(p.script[p.next].Level)
		p.next++
	}
}

func (p *Pin) set(level core.Level) {
	if p.level == level {
		return
	}
	from := p.level
	p.level = level
	for _, f := range p.listeners {
		f(from, level)
	}
}
