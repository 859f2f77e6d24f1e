package periph

import (
	"testing"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"irqlab/core"
)

func TestInputPull(t *testing.T) {
	testCases := []struct {
		pull core.Pull
		want gpio.Pull
	}{
		{core.PullUp, gpio.PullUp},
		{core.PullDown, gpio.PullDown},
		{core.PullNone, gpio.Float},
	}

	for _, tc := range testCases {
		io := &gpiotest.Pin{N: "GPIO5"}
		p := NewPin(io)
		if err := p.Configure(core.Input, tc.pull); err != nil {
			t.Fatalf("Configure: %v", err)
		}
		if io.P != tc.want {
			t.Errorf("pull %d: got %v, want %v", tc.pull, io.P, tc.want)
		}
	}
}

func TestOutputToggle(t *testing.T) {
	io := &gpiotest.Pin{N: "GPIO17"}
	p := NewPin(io)
	if err := p.Configure(core.Output, core.PullNone); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	core.Toggle(p)
	if io.L != gpio.High || p.Read() != core.High {
		t.Errorf("after toggle level = %v, want High", io.L)
	}
	core.Toggle(p)
	if io.L != gpio.Low {
		t.Errorf("after second toggle level = %v, want Low", io.L)
	}
	if p.Err() != nil {
		t.Errorf("Err = %v", p.Err())
	}
}
