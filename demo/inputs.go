package demo

import "irqlab/core"

// PolledKey toggles all LEDs on every committed key press. The key is
// polled every IntervalMs; the gate blocks while a press is in progress.
type PolledKey struct {
	IntervalMs uint32

	gate *core.DebounceGate
}

func (d *PolledKey) Setup(b *Board) error {
	if d.IntervalMs == 0 {
		d.IntervalMs = 500
	}
	if err := configureOutputs(b.LEDs[:]...); err != nil {
		return err
	}
	for _, led := range b.LEDs {
		led.Write(core.High)
	}
	if err := configureInput(b.Key, core.PullUp); err != nil {
		return err
	}
	d.gate = core.NewDebounceGate(b.Key, core.Low, b.Delay)
	d.gate.Mode = b.Debounce
	if b.DebounceSettleMs != 0 {
		d.gate.SettleMs = b.DebounceSettleMs
	}
	if b.DebouncePollMs != 0 {
		d.gate.PollMs = b.DebouncePollMs
	}
	return nil
}

func (d *PolledKey) Step(b *Board) error {
	if d.gate.WaitForEvent() {
		for _, led := range b.LEDs {
			core.Toggle(led)
		}
		if err := b.publish("key", &d.gate.Presses); err != nil {
			return err
		}
	}
	b.Delay.DelayMs(d.IntervalMs)
	return nil
}

// Presses returns the committed press counter
func (d *PolledKey) Presses() *core.EventCounter {
	return &d.gate.Presses
}

// EdgeKey toggles LED1 from the EXTI1 handler on both key edges, so the LED
// follows the key: on while held, off when released.
type EdgeKey struct {
	ReportMs uint32

	Source *core.EdgeSource
	vector *core.Vector
}

func (d *EdgeKey) Setup(b *Board) error {
	if d.ReportMs == 0 {
		d.ReportMs = 1000
	}
	if b.Edge == nil {
		return ErrNoHardware
	}
	if err := configureOutputs(b.LEDs[1]); err != nil {
		return err
	}
	if err := configureInput(b.Key, core.PullUp); err != nil {
		return err
	}

	led := b.LEDs[1]
	d.Source = core.NewEdgeSource(LineKey, core.EdgeBoth, func(tok core.Token) {
		core.Toggle(led)
	})
	d.vector = core.NewVector(b.Edge, IRQEXTI1, PriorityEdge, LineKey)
	if err := d.vector.Attach(d.Source); err != nil {
		return err
	}
	if err := b.connect(IRQEXTI1, d.vector.Dispatch); err != nil {
		return err
	}
	d.vector.Install(b.IC)
	return nil
}

func (d *EdgeKey) Step(b *Board) error {
	err := b.publish("exti-key", &d.Source.Events)
	b.Delay.DelayMs(d.ReportMs)
	return err
}

// IRCounter counts beam interruptions of an opposing infrared sensor on the
// rising edge of EXTI14, served by the shared EXTI15_10 vector.
type IRCounter struct {
	ReportMs uint32

	Source *core.EdgeSource
	Vector *core.Vector
}

func (d *IRCounter) Setup(b *Board) error {
	if d.ReportMs == 0 {
		d.ReportMs = 1000
	}
	if b.Edge == nil {
		return ErrNoHardware
	}
	if err := configureInput(b.IR, core.PullUp); err != nil {
		return err
	}

	d.Source = core.NewEdgeSource(LineIR, core.EdgeRising, nil)
	d.Vector = core.NewVector(b.Edge, IRQEXTI15_10, PriorityEdge, 10, 11, 12, 13, 14, 15)
	if err := d.Vector.Attach(d.Source); err != nil {
		return err
	}
	if err := b.connect(IRQEXTI15_10, d.Vector.Dispatch); err != nil {
		return err
	}
	d.Vector.Install(b.IC)
	return nil
}

func (d *IRCounter) Step(b *Board) error {
	err := b.publish("ir", &d.Source.Events)
	b.Delay.DelayMs(d.ReportMs)
	return err
}
