package demo

import "irqlab/core"

// Blinky toggles LED1 every PeriodMs
type Blinky struct {
	PeriodMs uint32
	Toggles  int
}

func (d *Blinky) Setup(b *Board) error {
	if d.PeriodMs == 0 {
		d.PeriodMs = 2000
	}
	return configureOutputs(b.LEDs[1])
}

func (d *Blinky) Step(b *Board) error {
	core.Toggle(b.LEDs[1])
	d.Toggles++
	b.Delay.DelayMs(d.PeriodMs)
	return nil
}

// FlowLight lights the three LEDs one after the other, then turns them off
// in the same order
type FlowLight struct {
	StepMs uint32
}

func (d *FlowLight) Setup(b *Board) error {
	if d.StepMs == 0 {
		d.StepMs = 500
	}
	return configureOutputs(b.LEDs[:]...)
}

func (d *FlowLight) Step(b *Board) error {
	for _, level := range []core.Level{core.High, core.Low} {
		for _, led := range b.LEDs {
			led.Write(level)
			b.Delay.DelayMs(d.StepMs)
		}
	}
	return nil
}

// Buzzer sounds the buzzer for OnMs and stays quiet for OffMs. The buzzer
// module is active low.
type Buzzer struct {
	OnMs  uint32
	OffMs uint32
	Beeps int
}

func (d *Buzzer) Setup(b *Board) error {
	if d.OnMs == 0 {
		d.OnMs = 500
	}
	if d.OffMs == 0 {
		d.OffMs = 1000
	}
	return configureOutputs(b.Buzzer)
}

func (d *Buzzer) Step(b *Board) error {
	b.Buzzer.Write(core.Low)
	d.Beeps++
	b.Delay.DelayMs(d.OnMs)
	b.Buzzer.Write(core.High)
	b.Delay.DelayMs(d.OffMs)
	return nil
}

// LightBuzzer copies the light sensor's digital output to the buzzer every
// SampleMs
type LightBuzzer struct {
	SampleMs uint32
}

func (d *LightBuzzer) Setup(b *Board) error {
	if d.SampleMs == 0 {
		d.SampleMs = 200
	}
	if err := configureOutputs(b.Buzzer); err != nil {
		return err
	}
	return configureInput(b.Light, core.PullUp)
}

func (d *LightBuzzer) Step(b *Board) error {
	b.Buzzer.Write(b.Light.Read())
	b.Delay.DelayMs(d.SampleMs)
	return nil
}
