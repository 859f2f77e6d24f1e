//go:build stm32f103

package main

import (
	"device/arm"
	"machine"

	"irqlab/core"
	"irqlab/demo"
	"irqlab/hal/machinepin"
)

// rtcHz is the alarm clock rate; one tick per second like the clock chip
// demos on this board
const rtcHz = 1

// newBoard brings the clock up and publishes every peripheral the demos use.
// TinyGo's runtime owns TIM3, so the blocking delay runs on TIM4.
func newBoard(cfg DemoConfig) (*demo.Board, error) {
	clk := rcc{}
	hz := core.DefaultClock.Sysclk()
	if !clk.runningFromPLL() {
		pll := core.PLLClock{HW: clk, Config: core.DefaultClock}
		var err error
		if hz, err = pll.Init(); err != nil {
			return nil, err
		}
	}

	rccR.APB2ENR.SetBits(rccAPB2AFIO | rccAPB2IOPA | rccAPB2IOPB)

	edge := exti{}
	edge.route(demo.LineKey, portB)
	edge.route(demo.LineIR, portB)

	tim2 := newGPTimer(tim2Regs, rccAPB1TIM2)
	tim4 := newGPTimer(tim4Regs, rccAPB1TIM4)

	b := &demo.Board{
		ClockHz:  hz,
		IC:       nvic{},
		Delay:    core.NewTimerDelay(tim4, hz),
		Connect:  connect,
		Edge:     &core.SharedCell[core.EdgeHW]{},
		TIM2:     &core.SharedCell[core.TimerHW]{},
		SysTick:  &core.SharedCell[core.TimerHW]{},
		Debounce: cfg.Debounce,
		Key:      machinepin.New(machine.PB1),
		IR:       machinepin.New(machine.PB14),
		Light:    machinepin.New(machine.PB13),
		Buzzer:   machinepin.New(machine.PB12),
	}
	b.LEDs = [3]core.Pin{
		machinepin.New(machine.PA0),
		machinepin.New(machine.PA1),
		machinepin.New(machine.PA2),
	}
	b.Edge.Publish(edge)
	b.TIM2.Publish(tim2)
	b.SysTick.Publish(&sysTick{})

	// ETR is PA0: the sensor has to be wired there, and LED0 is given up
	b.ExternalClock = func() error {
		b.LEDs[0] = nil
		machine.PA0.Configure(machine.PinConfig{Mode: machine.PinInputFloating})
		b.TIM2.With(func(hw *core.TimerHW) {
			if t, ok := (*hw).(gpTimer); ok {
				t.useETR()
			}
		})
		return nil
	}

	// the SysTick demo advances the system tick itself, so delays can sleep
	// on it between interrupts
	if cfg.Name == "systick" {
		b.Delay = core.TickDelay{Idle: func() { arm.Asm("wfi") }}
	}

	if cfg.Name == "rtc" {
		r, err := initRTC(rtcHz)
		if err != nil {
			return nil, err
		}
		b.RTC = &core.SharedCell[core.AlarmHW]{}
		b.RTC.Publish(r)
	}
	return b, nil
}
