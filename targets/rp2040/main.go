//go:build rp2040

// Command rp2040 runs one interrupt demo on a Raspberry Pi Pico
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

	if err := InitDebugUART(); err == nil {
		core.SetDebugWriter(DebugPrintln)
		core.SetDebugEnabled(true)
		core.InitAsyncDebug()
	}
	core.DebugPrintln("[MAIN] irqlab rp2040, demo " + cfg.Name)

	b, err := newBoard(cfg)
	if err != nil {
		halt("board", err)
	}

	if cfg.Frames {
		// USB CDC enumerates in the background
		machine.Serial.Configure(machine.UARTConfig{})
		time.Sleep(500 * time.Millisecond)
		f, err := report.NewFrames(machine.Serial, b.ClockHz)
		if err != nil {
			halt("frames", err)
		}
		b.Report = report.Multi{f, report.Debug{}}
	}

	d, err := demo.New(cfg.Name)
	if err != nil {
		halt("demo", err)
	}
	if err := demo.Run(b, d, -1); err != nil {
		halt("setup", err)
	}
}

// halt reports err, dumps the timing ring and blinks the on-board LED
func halt(stage string, err error) {
	core.DebugPrintln("[MAIN] " + stage + ": " + err.Error())
	core.DumpTimingRing()
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		led.Set(!led.Get())
		time.Sleep(200 * time.Millisecond)
	}
}
