//go:build rp2040

package main

import (
	"machine"

	"irqlab/core"
	"irqlab/demo"
	"irqlab/hal/machinepin"
)

// Pico wiring
const (
	keyPin    = machine.GP5
	irPin     = machine.GP6
	lightPin  = machine.GP7
	buzzerPin = machine.GP8
)

// newBoard publishes the GPIO edge controller and, for the external clock
// demo, the PIO edge counter as TIM2. There is no SysTick or RTC alarm
// demo on this board.
func newBoard(cfg DemoConfig) (*demo.Board, error) {
	edges := newPinEdges()
	b := &demo.Board{
		ClockHz:  machine.CPUFrequency(),
		IC:       edges,
		Delay:    usDelay{},
		Connect:  edges.connect,
		Edge:     &core.SharedCell[core.EdgeHW]{},
		Debounce: cfg.Debounce,
		Key:      machinepin.New(keyPin),
		IR:       machinepin.New(irPin),
		Light:    machinepin.New(lightPin),
		Buzzer:   newBuzzerPin(buzzerPin),
	}
	b.LEDs = [3]core.Pin{
		machinepin.New(machine.GP2),
		machinepin.New(machine.GP3),
		machinepin.New(machine.GP4),
	}
	if err := edges.watch(demo.LineKey, keyPin, demo.IRQEXTI1); err != nil {
		return nil, err
	}
	if err := edges.watch(demo.LineIR, irPin, demo.IRQEXTI15_10); err != nil {
		return nil, err
	}
	b.Edge.Publish(edges)

	if cfg.Name == "extclk" {
		counter := newPIOCounter(irPin)
		if err := counter.load(); err != nil {
			return nil, err
		}
		b.TIM2 = &core.SharedCell[core.TimerHW]{}
		b.TIM2.Publish(counter)

		// the state machine counts; the pin's rising edge raises the
		// update request
		b.ExternalClock = func() error {
			return irPin.SetInterrupt(machine.PinRising, func(machine.Pin) {
				edges.raise(demo.IRQTIM2)
			})
		}
	}
	return b, nil
}
