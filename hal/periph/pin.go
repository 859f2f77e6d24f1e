//go:build !tinygo

// Package periph runs the polled demos on any board periph.io supports
package periph

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"irqlab/core"
)

var (
	initOnce sync.Once
	initErr  error
)

// Init loads the periph host drivers. It can be called any number of times.
func Init() error {
	initOnce.Do(func() {
		_, initErr = host.Init()
	})
	return initErr
}

// Pin is a core.Pin on a periph GPIO
type Pin struct {
	io  gpio.PinIO
	err error
}

// Open initialises the host and looks up a pin by name ("GPIO17", "P1_11")
func Open(name string) (*Pin, error) {
	if err := Init(); err != nil {
		return nil, fmt.Errorf("periph init: %w", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("pin %q: not found", name)
	}
	return NewPin(p), nil
}

// NewPin wraps an already resolved periph pin
func NewPin(p gpio.PinIO) *Pin {
	return &Pin{io: p}
}

func pullValue(pull core.Pull) gpio.Pull {
	switch pull {
	case core.PullUp:
		return gpio.PullUp
	case core.PullDown:
		return gpio.PullDown
	default:
		return gpio.Float
	}
}

// Configure implements core.Pin
func (p *Pin) Configure(dir core.Direction, pull core.Pull) error {
	var err error
	if dir == core.Output {
		err = p.io.Out(gpio.Low)
	} else {
		err = p.io.In(pullValue(pull), gpio.NoEdge)
	}
	if err != nil {
		return fmt.Errorf("configure %s: %w", p.io.Name(), err)
	}
	return nil
}

// Read implements core.Pin
func (p *Pin) Read() core.Level {
	return core.Level(p.io.Read() == gpio.High)
}

// Write implements core.Pin. A failed write is kept in Err.
func (p *Pin) Write(level core.Level) {
	l := gpio.Low
	if level {
		l = gpio.High
	}
	if err := p.io.Out(l); err != nil {
		p.err = fmt.Errorf("write %s: %w", p.io.Name(), err)
	}
}

// Err returns the last write error
func (p *Pin) Err() error {
	return p.err
}

// Sleep is a core.Delayer on the host scheduler, for the polled demos
type Sleep struct{}

// DelayMs implements core.Delayer
func (Sleep) DelayMs(ms uint32) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}
