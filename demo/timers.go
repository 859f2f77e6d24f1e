package demo

import "irqlab/core"

// TickCounter counts TIM2 update interrupts. With the default prescaler of
// 36000 and reload of 1000 a 72 MHz clock gives two ticks per second.
type TickCounter struct {
	Prescaler uint32
	Reload    uint32
	RateHz    uint32 // overrides Prescaler and Reload when set
	ReportMs  uint32

	Timer *core.PeriodicTimer
}

func (d *TickCounter) Setup(b *Board) error {
	if d.ReportMs == 0 {
		d.ReportMs = 1000
	}
	if d.Prescaler == 0 {
		d.Prescaler = 36000
	}
	if d.Reload == 0 {
		d.Reload = 1000
	}
	if b.TIM2 == nil {
		return ErrNoHardware
	}

	d.Timer = core.NewPeriodicTimer(b.TIM2)
	var err error
	if d.RateHz != 0 {
		err = d.Timer.ConfigureRate(b.ClockHz, d.RateHz)
	} else {
		err = d.Timer.Configure(d.Prescaler, d.Reload)
	}
	if err != nil {
		return err
	}
	return startTimer(b, d.Timer, b.TIM2, IRQTIM2, PriorityTimer)
}

func (d *TickCounter) Step(b *Board) error {
	err := b.publish("tim2", &d.Timer.Ticks)
	b.Delay.DelayMs(d.ReportMs)
	return err
}

// startTimer connects t's handler, brings its vector online and starts it
func startTimer(b *Board, t *core.PeriodicTimer, hw *core.SharedCell[core.TimerHW], irq core.IRQ, prio core.Priority) error {
	if err := b.connect(irq, t.Handle); err != nil {
		return err
	}
	core.EnableIRQ(b.IC, irq, prio, func(tok core.Token) {
		hw.Access(tok, func(hw *core.TimerHW) { (*hw).ClearUpdate() })
	})
	return t.Start()
}

// SysTickCounter runs SysTick at 1 kHz as the system tick and reports the
// tick count from a scheduled foreground task every ReportMs.
type SysTickCounter struct {
	ReportMs uint32

	Timer     *core.PeriodicTimer
	Scheduler core.Scheduler
	Reports   int
}

func (d *SysTickCounter) Setup(b *Board) error {
	if d.ReportMs == 0 {
		d.ReportMs = 1000
	}
	if b.SysTick == nil {
		return ErrNoHardware
	}

	d.Timer = core.NewPeriodicTimer(b.SysTick)
	d.Timer.OnTick = func(tok core.Token, tick uint32) {
		core.AdvanceTime(tok)
	}
	if err := d.Timer.ConfigureRate(b.ClockHz, core.TickHz); err != nil {
		return err
	}

	d.Scheduler.Every(core.TimerFromMs(d.ReportMs), func(now uint32) bool {
		if err := b.publish("systick", &d.Timer.Ticks); err != nil {
			core.DebugPrintln("[DEMO] systick: " + err.Error())
		}
		d.Reports++
		return true
	})
	return startTimer(b, d.Timer, b.SysTick, IRQSysTick, PriorityTick)
}

func (d *SysTickCounter) Step(b *Board) error {
	b.Delay.DelayMs(1)
	d.Scheduler.Dispatch(core.GetTime())
	return nil
}

// ExternalClockCounter clocks TIM2 from the IR input. Every Reload rising
// edges give one update interrupt.
type ExternalClockCounter struct {
	Reload   uint32
	ReportMs uint32

	Timer *core.PeriodicTimer
}

func (d *ExternalClockCounter) Setup(b *Board) error {
	if d.ReportMs == 0 {
		d.ReportMs = 1000
	}
	if d.Reload == 0 {
		d.Reload = 2
	}
	if b.TIM2 == nil || b.ExternalClock == nil {
		return ErrNoHardware
	}
	if err := configureInput(b.IR, core.PullUp); err != nil {
		return err
	}
	if err := b.ExternalClock(); err != nil {
		return err
	}

	d.Timer = core.NewPeriodicTimer(b.TIM2)
	if err := d.Timer.Configure(1, d.Reload); err != nil {
		return err
	}
	return startTimer(b, d.Timer, b.TIM2, IRQTIM2, PriorityTimer)
}

// Edges returns the number of counted input edges: whole updates plus the
// running count, when the timer exposes it. An update whose handler has not
// run yet is counted from the pending flag.
func (d *ExternalClockCounter) Edges(b *Board) uint32 {
	_, reload := d.Timer.Settings()
	var edges uint32
	b.TIM2.With(func(hw *core.TimerHW) {
		edges = d.Timer.Ticks.Read() * reload
		if (*hw).UpdatePending() {
			edges += reload
		}
		if c, ok := (*hw).(core.CountingTimerHW); ok {
			edges += c.Count()
		}
	})
	return edges
}

func (d *ExternalClockCounter) Step(b *Board) error {
	err := b.publish("extclk", &d.Timer.Ticks)
	if err == nil {
		err = b.publishValue("extclk-edges", d.Edges(b))
	}
	b.Delay.DelayMs(d.ReportMs)
	return err
}

// AlarmCounter counts RTC alarms fired every PeriodTicks clock ticks
type AlarmCounter struct {
	PeriodTicks uint32
	ReportMs    uint32

	Alarm *core.AlarmTimer
}

func (d *AlarmCounter) Setup(b *Board) error {
	if d.PeriodTicks == 0 {
		d.PeriodTicks = 1
	}
	if d.ReportMs == 0 {
		d.ReportMs = 500
	}
	if b.RTC == nil {
		return ErrNoHardware
	}

	d.Alarm = core.NewAlarmTimer(b.RTC)
	if err := b.connect(IRQRTCAlarm, d.Alarm.Handle); err != nil {
		return err
	}
	if err := d.Alarm.Arm(d.PeriodTicks); err != nil {
		return err
	}
	core.EnableIRQ(b.IC, IRQRTCAlarm, PriorityTimer, nil)
	return nil
}

func (d *AlarmCounter) Step(b *Board) error {
	err := b.publish("rtc", &d.Alarm.Fires)
	b.Delay.DelayMs(d.ReportMs)
	return err
}
