//go:build rp2040

package main

import (
	"errors"
	"machine"

	"tinygo.org/x/drivers/buzzer"

	"irqlab/core"
)

var errBuzzerInput = errors.New("buzzer: output only")

// buzzerPin drives an active piezo through the buzzer driver. The demos
// treat the buzzer as active low, so Low sounds it.
type buzzerPin struct {
	pin machine.Pin
	dev buzzer.Device
}

func newBuzzerPin(pin machine.Pin) *buzzerPin {
	return &buzzerPin{pin: pin, dev: buzzer.New(pin)}
}

func (b *buzzerPin) Configure(dir core.Direction, pull core.Pull) error {
	if dir != core.Output {
		return errBuzzerInput
	}
	b.pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return b.dev.Off()
}

func (b *buzzerPin) Read() core.Level { return core.Level(!b.dev.High) }

func (b *buzzerPin) Write(level core.Level) {
	if level == core.Low {
		b.dev.On()
	} else {
		b.dev.Off()
	}
}
