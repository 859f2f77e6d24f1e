package core_test

import (
	"testing"

	"irqlab/core"
	"irqlab/sim"
)

const tim2IRQ core.IRQ = 28

func TestPeriodicTimerFrequency(t *testing.T) {
	m := sim.New(72_000_000)
	m.Attach()
	defer m.Detach()

	tim := m.NewTimer("tim2")
	cell := &core.SharedCell[core.TimerHW]{}
	cell.Publish(tim)
	pt := core.NewPeriodicTimer(cell)
	m.IC.Connect(tim2IRQ, pt.Handle, tim.Asserted)

	core.Must(pt.ConfigureRate(m.Hz, 10_000))
	p, r := pt.Settings()
	core.EnableIRQ(m.IC, tim2IRQ, 1, func(tok core.Token) {
		cell.Access(tok, func(hw *core.TimerHW) { (*hw).ClearUpdate() })
	})
	core.Must(pt.Start())

	const periods = 250
	period := uint64(p) * uint64(r)
	start := m.Now()
	m.Advance(periods*period + period/2)
	elapsed := m.Now() - start

	ticks := uint64(pt.Ticks.Read())
	expected := elapsed / period
	if ticks+1 < expected || ticks > expected+1 {
		t.Errorf("ticks = %d over %d cycles, want %d +/- 1 (P=%d R=%d)", ticks, elapsed, expected, p, r)
	}
	if pt.Ticks.Missed() != 0 {
		t.Errorf("Missed = %d, want 0", pt.Ticks.Missed())
	}

	pt.Stop()
	m.Advance(10 * period)
	if uint64(pt.Ticks.Read()) != ticks {
		t.Errorf("ticks advanced after Stop: %d -> %d", ticks, pt.Ticks.Read())
	}
}

func TestPeriodicTimerLateHandlerCoalesces(t *testing.T) {
	m := sim.New(1_000_000)
	m.Attach()
	defer m.Detach()

	tim := m.NewTimer("tim2")
	cell := &core.SharedCell[core.TimerHW]{}
	cell.Publish(tim)
	pt := core.NewPeriodicTimer(cell)
	m.IC.Connect(tim2IRQ, pt.Handle, tim.Asserted)
	core.EnableIRQ(m.IC, tim2IRQ, 1, nil)
	core.Must(pt.Configure(1, 100))
	core.Must(pt.Start())

	// one flag, three updates: the hardware cannot tell them apart
	tok := core.Enter()
	m.Advance(350)
	core.Exit(tok)

	if pt.Ticks.Read() != 1 {
		t.Errorf("Ticks = %d, want 1", pt.Ticks.Read())
	}
	if tim.Updates != 3 {
		t.Errorf("Updates = %d, want 3", tim.Updates)
	}
}

func TestTimerDelay(t *testing.T) {
	m := sim.New(8_000_000)
	tim := m.NewTimer("tim3")
	d := core.NewTimerDelay(tim, m.Hz)
	core.Must(d.Init())

	start := m.Now()
	d.DelayMs(5)
	elapsedMs := (m.Now() - start) * 1000 / uint64(m.Hz)
	if elapsedMs != 5 {
		t.Errorf("DelayMs(5) took %d ms of simulated time", elapsedMs)
	}
	if tim.Counting() {
		t.Error("delay timer left running")
	}
}
