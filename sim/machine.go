// Package sim is a deterministic model of the STM32F1 peripherals the demos
// use. Time is counted in core clock cycles and only moves when the test (or
// a firmware status poll) advances it.
package sim

import (
	"irqlab/core"
)

// DefaultPollCost is the number of cycles a status-register poll consumes
const DefaultPollCost = 8

// Device is a peripheral whose state changes at known cycle counts
type Device interface {
	// NextEvent returns the cycle of the next state change, if any
	NextEvent() (uint64, bool)

	// Sync applies every state change at or before now
	Sync(now uint64)
}

// Machine owns the cycle clock, the interrupt controller and the devices
type Machine struct {
	Hz       uint32
	PollCost uint64
	IC       *Controller

	now       uint64
	devices   []Device
	advancing bool
}

// New creates a machine running at hz core cycles per second
func New(hz uint32) *Machine {
	m := &Machine{
		Hz:       hz,
		PollCost: DefaultPollCost,
	}
	m.IC = NewController()
	return m
}

// Add registers a device with the clock
func (m *Machine) Add(d Device) {
	m.devices = append(m.devices, d)
	d.Sync(m.now)
}

// Attach routes the end of every critical section to the controller, so an
// interrupt raised while one was held is taken as soon as it ends.
// Call Detach when the machine is done.
func (m *Machine) Attach() {
	core.SetReleaseHook(m.IC.Service)
}

// Detach removes the hook installed by Attach
func (m *Machine) Detach() {
	core.SetReleaseHook(nil)
}

// Now returns the current cycle
func (m *Machine) Now() uint64 {
	return m.now
}

// Cycles converts a duration in microseconds to core cycles
func (m *Machine) Cycles(us uint64) uint64 {
	return us * uint64(m.Hz) / 1_000_000
}

// AdvanceMs advances the clock by ms milliseconds
func (m *Machine) AdvanceMs(ms uint32) {
	m.Advance(m.Cycles(uint64(ms) * 1000))
}

// DelayMs implements core.Delayer by advancing the clock, so foreground
// delays cost no host time
func (m *Machine) DelayMs(ms uint32) {
	m.AdvanceMs(ms)
}

// Advance moves time forward by cycles, stopping at every device event to
// let the controller take interrupts. A held critical section defers them.
func (m *Machine) Advance(cycles uint64) {
	if m.advancing {
		return
	}
	m.advancing = true
	defer func() { m.advancing = false }()

	target := m.now + cycles
	for {
		next, ok := m.nextEvent()
		if !ok || next > target {
			break
		}
		if next > m.now {
			m.now = next
		}
		m.sync()
		m.IC.Service()
	}
	m.now = target
	m.sync()
	m.IC.Service()
}

// poll charges one status-register read. Reads made from a handler or
// inside a critical section are free so that handlers see a frozen machine.
func (m *Machine) poll() {
	if m.advancing || m.IC.Delivering() || core.InterruptsDisabled() {
		return
	}
	m.Advance(m.PollCost)
}

func (m *Machine) nextEvent() (uint64, bool) {
	var best uint64
	found := false
	for _, d := range m.devices {
		at, ok := d.NextEvent()
		if !ok {
			continue
		}
		if !found || at < best {
			best = at
			found = true
		}
	}
	return best, found
}

func (m *Machine) sync() {
	for _, d := range m.devices {
		d.Sync(m.now)
	}
}
