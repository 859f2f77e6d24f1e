//go:build !tinygo

package demo

import (
	"irqlab/core"
	"irqlab/sim"
)

// SimBoard is a Board on the simulator, with the simulated peripherals
// exposed so tests and the CLI can drive inputs and inspect outputs
type SimBoard struct {
	Board *Board

	M       *sim.Machine
	RCC     *sim.RCC
	EXTI    *sim.EXTI
	TIM2    *sim.Timer
	SysTick *sim.Timer
	RTC     *sim.RTC

	LEDs   [3]*sim.Pin
	Key    *sim.Pin
	IR     *sim.Pin
	Light  *sim.Pin
	Buzzer *sim.Pin
}

// SimOptions tunes NewSimBoard
type SimOptions struct {
	Clock    core.ClockConfig // zero value: core.DefaultClock
	PollCost uint64
	RTCHz    uint32 // RTC tick rate, default 1 Hz
	RTCMod   uint32 // RTC counter modulus, 0 for 2^32
}

// NewSimBoard brings up a simulated blue pill: the clock tree is started
// through the PLL, then every peripheral is created and published. Call
// Close when done.
func NewSimBoard(opts SimOptions) (*SimBoard, error) {
	cfg := opts.Clock
	if cfg.HSEHz == 0 {
		cfg = core.DefaultClock
	}
	if opts.RTCHz == 0 {
		opts.RTCHz = 1
	}

	m := sim.New(cfg.Sysclk())
	if opts.PollCost != 0 {
		m.PollCost = opts.PollCost
	}
	s := &SimBoard{M: m, RCC: m.NewRCC(4, 16)}

	clock := core.PLLClock{HW: s.RCC, Config: cfg}
	hz, err := clock.Init()
	if err != nil {
		return nil, err
	}

	s.EXTI = m.NewEXTI()
	s.TIM2 = m.NewTimer("tim2")
	s.SysTick = m.NewSysTick()
	s.RTC = m.NewRTC(uint64(hz/opts.RTCHz), opts.RTCMod)

	for i := range s.LEDs {
		s.LEDs[i] = m.NewPin("PA" + string(rune('0'+i)))
	}
	s.Key = m.NewPin("PB1")
	s.IR = m.NewPin("PB14")
	s.Light = m.NewPin("PB13")
	s.Buzzer = m.NewPin("PB12")
	s.EXTI.Connect(LineKey, s.Key)
	s.EXTI.Connect(LineIR, s.IR)

	asserted := map[core.IRQ]func() bool{
		IRQEXTI1:     s.EXTI.Asserted(LineKey),
		IRQEXTI15_10: s.EXTI.Asserted(10, 11, 12, 13, 14, 15),
		IRQTIM2:      s.TIM2.Asserted,
		IRQSysTick:   s.SysTick.Asserted,
		IRQRTCAlarm:  s.RTC.Asserted,
	}

	b := &Board{
		ClockHz: hz,
		IC:      m.IC,
		Delay:   m,
		Connect: func(irq core.IRQ, handler func()) {
			m.IC.Connect(irq, handler, asserted[irq])
		},
		Edge:    &core.SharedCell[core.EdgeHW]{},
		TIM2:    &core.SharedCell[core.TimerHW]{},
		SysTick: &core.SharedCell[core.TimerHW]{},
		RTC:     &core.SharedCell[core.AlarmHW]{},
		ExternalClock: func() error {
			s.TIM2.ClockFrom(s.IR)
			return nil
		},
		Key:    s.Key,
		IR:     s.IR,
		Light:  s.Light,
		Buzzer: s.Buzzer,
	}
	for i, p := range s.LEDs {
		b.LEDs[i] = p
	}
	b.Edge.Publish(s.EXTI)
	b.TIM2.Publish(s.TIM2)
	b.SysTick.Publish(s.SysTick)
	b.RTC.Publish(s.RTC)
	s.Board = b

	m.Attach()
	return s, nil
}

// Close detaches the machine from the critical section hook
func (s *SimBoard) Close() {
	s.M.Detach()
}
