// Package demo holds the interrupt demo programs. Each one is written
// against the capability interfaces in core and runs unchanged on the
// simulator, on the TinyGo targets and, for the GPIO ones, on Linux.
package demo

import (
	"errors"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"irqlab/core"
	"irqlab/protocol"
	"irqlab/report"
)

// STM32F103 vector numbers
const (
	IRQEXTI0     core.IRQ = 6
	IRQEXTI1     core.IRQ = 7
	IRQEXTI9_5   core.IRQ = 23
	IRQTIM2      core.IRQ = 28
	IRQEXTI15_10 core.IRQ = 40
	IRQRTCAlarm  core.IRQ = 41

	// SysTick is a core exception rather than a controller line; it is
	// numbered above the device range so boards route it like any other.
	IRQSysTick core.IRQ = 0x100
)

// Edge lines used by the demos
const (
	LineKey core.Line = 1  // PB1
	LineIR  core.Line = 14 // PB14
)

// Default priorities. Lower preempts higher.
const (
	PriorityEdge  core.Priority = 1
	PriorityTimer core.Priority = 1
	PriorityTick  core.Priority = 0
)

var (
	ErrUnknownDemo = errors.New("demo: unknown demo")
	ErrNoHardware  = errors.New("demo: board lacks the hardware this demo needs")
)

// Board is everything a demo may use. Platforms fill in what they have;
// a demo whose hardware is nil fails Setup with ErrNoHardware.
type Board struct {
	ClockHz uint32
	IC      core.InterruptController
	Delay   core.Delayer

	// Connect binds a handler body to a vector
	Connect func(irq core.IRQ, handler func())

	Edge    *core.SharedCell[core.EdgeHW]
	TIM2    *core.SharedCell[core.TimerHW]
	SysTick *core.SharedCell[core.TimerHW]
	RTC     *core.SharedCell[core.AlarmHW]

	// ExternalClock switches TIM2 to count rising edges of the IR input
	ExternalClock func() error

	LEDs   [3]core.Pin // PA0..PA2
	Key    core.Pin    // PB1, active low
	IR     core.Pin    // PB14, beam broken = high
	Light  core.Pin    // PB13
	Buzzer core.Pin    // PB12

	// Debounce settings for the polled key; zero times keep the gate defaults
	Debounce         core.DebounceMode
	DebounceSettleMs uint32
	DebouncePollMs   uint32

	Report report.Reporter
}

func (b *Board) publish(name string, c *core.EventCounter) error {
	return b.reporter().Report(report.Sample(name, c))
}

func (b *Board) publishValue(name string, events uint32) error {
	return b.reporter().Report(protocol.CounterReport{
		Name:   name,
		Events: events,
		Uptime: core.TimerToMs(core.GetTime()),
	})
}

func (b *Board) reporter() report.Reporter {
	if b.Report == nil {
		return report.Debug{}
	}
	return b.Report
}

func (b *Board) connect(irq core.IRQ, handler func()) error {
	if b.Connect == nil || b.IC == nil {
		return ErrNoHardware
	}
	b.Connect(irq, handler)
	return nil
}

func configureOutputs(pins ...core.Pin) error {
	for _, p := range pins {
		if p == nil {
			return ErrNoHardware
		}
		if err := p.Configure(core.Output, core.PullNone); err != nil {
			return err
		}
	}
	return nil
}

func configureInput(p core.Pin, pull core.Pull) error {
	if p == nil {
		return ErrNoHardware
	}
	return p.Configure(core.Input, pull)
}

// Demo is one program. Setup runs once with interrupts still masked; Step
// is one pass of the foreground loop and usually ends in a delay.
type Demo interface {
	Setup(b *Board) error
	Step(b *Board) error
}

var registry = map[string]func() Demo{
	"blinky":   func() Demo { return &Blinky{} },
	"flow":     func() Demo { return &FlowLight{} },
	"buzzer":   func() Demo { return &Buzzer{} },
	"light":    func() Demo { return &LightBuzzer{} },
	"key":      func() Demo { return &PolledKey{} },
	"exti-key": func() Demo { return &EdgeKey{} },
	"ir":       func() Demo { return &IRCounter{} },
	"tim2":     func() Demo { return &TickCounter{} },
	"systick":  func() Demo { return &SysTickCounter{} },
	"extclk":   func() Demo { return &ExternalClockCounter{} },
	"rtc":      func() Demo { return &AlarmCounter{} },
}

// Names returns the registered demo names in order
func Names() []string {
	names := maps.Keys(registry)
	slices.Sort(names)
	return names
}

// New returns a fresh instance of the named demo
func New(name string) (Demo, error) {
	f, ok := registry[name]
	if !ok {
		return nil, ErrUnknownDemo
	}
	return f(), nil
}

// Run sets d up and runs steps foreground passes; a negative count runs
// forever. A failing Step is logged and the loop goes on.
func Run(b *Board, d Demo, steps int) error {
	if err := d.Setup(b); err != nil {
		return err
	}
	for i := 0; steps < 0 || i < steps; i++ {
		if err := d.Step(b); err != nil {
			core.DebugPrintln("[DEMO] step: " + err.Error())
		}
	}
	return nil
}
