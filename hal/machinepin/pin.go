//go:build tinygo

// Package machinepin adapts TinyGo machine pins to core.Pin
package machinepin

import (
	"machine"

	"irqlab/core"
)

// Pin is a core.Pin on a machine.Pin
type Pin struct {
	p     machine.Pin
	level core.Level // last written level, outputs only
	out   bool
}

// New wraps p. The pin is not touched until Configure.
func New(p machine.Pin) *Pin {
	return &Pin{p: p}
}

// Configure implements core.Pin
func (p *Pin) Configure(dir core.Direction, pull core.Pull) error {
	if dir == core.Output {
		p.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.out = true
		p.Write(p.level)
		return nil
	}

	mode := inputFloating
	switch pull {
	case core.PullUp:
		mode = machine.PinInputPullup
	case core.PullDown:
		mode = machine.PinInputPulldown
	}
	p.p.Configure(machine.PinConfig{Mode: mode})
	p.out = false
	return nil
}

// Read implements core.Pin. Outputs read back the last written level, the
// same as the output data register.
func (p *Pin) Read() core.Level {
	if p.out {
		return p.level
	}
	return core.Level(p.p.Get())
}

// Write implements core.Pin
func (p *Pin) Write(level core.Level) {
	p.level = level
	p.p.Set(bool(level))
}

// Machine returns the wrapped pin
func (p *Pin) Machine() machine.Pin {
	return p.p
}
