//go:build stm32f103

// Command bluepill runs one interrupt demo on an STM32F103C8 board
package main

import (
	"machine"
	"time"

	"irqlab/core"
	"irqlab/demo"
	"irqlab/report"
)

func main() {
	cfg := GetDemoConfig()

	if err := initDebugUART(); err == nil {
		core.SetDebugWriter(debugPrintln)
		core.SetDebugEnabled(!cfg.Frames)
		core.InitAsyncDebug()
	}
	core.DebugPrintln("[MAIN] irqlab bluepill, demo " + cfg.Name)

	b, err := newBoard(cfg)
	if err != nil {
		halt("board", err)
	}

	if cfg.Frames {
		f, err := report.NewFrames(machine.UART1, b.ClockHz)
		if err != nil {
			halt("frames", err)
		}
		b.Report = f
	}

	d, err := demo.New(cfg.Name)
	if err != nil {
		halt("demo", err)
	}
	if err := demo.Run(b, d, -1); err != nil {
		halt("setup", err)
	}
}

// halt reports err and parks the core with the timing ring dumped
func halt(stage string, err error) {
	core.DebugPrintln("[MAIN] " + stage + ": " + err.Error())
	core.DumpTimingRing()
	machine.LED.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		machine.LED.Set(!machine.LED.Get())
		time.Sleep(200 * time.Millisecond)
	}
}
