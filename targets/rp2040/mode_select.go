//go:build rp2040

package main

import "irqlab/core"

// Overridable at build time:
//
//	tinygo flash -target pico -ldflags="-X main.demoName=extclk" ./targets/rp2040
var (
	demoName = "ir"
	frames   = "true"
	debounce = "confirmed"
)

// DemoConfig selects the program the board runs
type DemoConfig struct {
	Name string

	// Frames sends binary reports over USB for the host monitor; debug text
	// goes to UART0 either way
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
