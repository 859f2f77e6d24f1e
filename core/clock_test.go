package core

import (
	"errors"
	"testing"
)

type fakeRCC struct {
	hseReadyAfter int
	pllReadyAfter int
	polls         int
	mul           uint32
	latency       uint8
	ops           []string
}

func (f *fakeRCC) EnableHSE() { f.ops = append(f.ops, "hse") }

func (f *fakeRCC) ConfigurePLL(mul uint32) {
	f.mul = mul
	f.ops = append(f.ops, "pllmul")
}

func (f *fakeRCC) EnablePLL() { f.ops = append(f.ops, "pll") }

func (f *fakeRCC) SelectPLL() { f.ops = append(f.ops, "sw") }

func (f *fakeRCC) SetFlashLatency(ws uint8) {
	f.latency = ws
	f.ops = append(f.ops, "latency")
}

func (f *fakeRCC) HSEReady() bool {
	f.polls++
	return f.hseReadyAfter >= 0 && f.polls > f.hseReadyAfter
}

func (f *fakeRCC) PLLReady() bool {
	f.polls++
	return f.pllReadyAfter >= 0 && f.polls > f.pllReadyAfter
}

func TestFlashLatency(t *testing.T) {
	testCases := []struct {
		sysclk uint32
		want   uint8
	}{
		{8_000_000, 0},
		{24_000_000, 0},
		{24_000_001, 1},
		{48_000_000, 1},
		{56_000_000, 2},
		{72_000_000, 2},
	}

	for _, tc := range testCases {
		got, err := FlashLatency(tc.sysclk)
		if err != nil {
			t.Errorf("FlashLatency(%d): %v", tc.sysclk, err)
			continue
		}
		if got != tc.want {
			t.Errorf("FlashLatency(%d) = %d, want %d", tc.sysclk, got, tc.want)
		}
	}

	if _, err := FlashLatency(80_000_000); !errors.Is(err, ErrClockTooFast) {
		t.Errorf("FlashLatency(80 MHz): err = %v, want ErrClockTooFast", err)
	}
}

func TestPLLClockInit(t *testing.T) {
	hw := &fakeRCC{hseReadyAfter: 3, pllReadyAfter: 5}
	clk := &PLLClock{HW: hw}

	sysclk, err := clk.Init()
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if sysclk != 72_000_000 {
		t.Errorf("sysclk = %d, want 72000000", sysclk)
	}
	if hw.latency != 2 || hw.mul != 9 {
		t.Errorf("latency/mul = %d/%d, want 2/9", hw.latency, hw.mul)
	}

	want := []string{"hse", "latency", "pllmul", "pll", "sw"}
	if len(hw.ops) != len(want) {
		t.Fatalf("ops = %v, want %v", hw.ops, want)
	}
	for i := range want {
		if hw.ops[i] != want[i] {
			t.Errorf("op %d = %s, want %s", i, hw.ops[i], want[i])
		}
	}
}

func TestPLLClockNotReady(t *testing.T) {
	hw := &fakeRCC{hseReadyAfter: -1}
	clk := &PLLClock{HW: hw, ReadySpins: 50}

	_, err := clk.Init()
	if !errors.Is(err, ErrNotReady) {
		t.Fatalf("err = %v, want ErrNotReady", err)
	}
	var re *ReadyError
	if !errors.As(err, &re) || re.Block != "hse" || re.Spins != 50 {
		t.Errorf("err = %#v, want ReadyError for hse after 50 polls", err)
	}
	for _, op := range hw.ops {
		if op == "sw" {
			t.Error("switched to the PLL after the crystal failed")
		}
	}
}

func TestPLLClockRejectsMultiplier(t *testing.T) {
	clk := &PLLClock{HW: &fakeRCC{}, Config: ClockConfig{HSEHz: 8_000_000, PLLMul: 17}}
	if _, err := clk.Init(); !errors.Is(err, ErrInvalidRate) {
		t.Errorf("err = %v, want ErrInvalidRate", err)
	}

	clk = &PLLClock{HW: &fakeRCC{}, Config: ClockConfig{HSEHz: 8_000_000, PLLMul: 10}}
	if _, err := clk.Init(); !errors.Is(err, ErrClockTooFast) {
		t.Errorf("80 MHz: err = %v, want ErrClockTooFast", err)
	}
}
