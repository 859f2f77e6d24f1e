//go:build stm32f103

package main

import "irqlab/core"

// Overridable at build time:
//
//	tinygo flash -target bluepill -ldflags="-X main.demoName=rtc" ./targets/bluepill
var (
	demoName = "tim2"
	frames   = "false"
	debounce = "confirmed"
)

// DemoConfig selects the program the board runs
type DemoConfig struct {
	Name string

	// Frames sends reports as binary frames for the host monitor instead
	// of text lines
	Frames bool

	Debounce core.DebounceMode
}

// GetDemoConfig returns the build-time selection
func GetDemoConfig() DemoConfig {
	cfg := DemoConfig{
		Name:     demoName,
		Frames:   frames == "true",
		Debounce: core.DebounceConfirmed,
	}
	if debounce == "coarse" {
		cfg.Debounce = core.DebounceCoarse
	}
	return cfg
}
