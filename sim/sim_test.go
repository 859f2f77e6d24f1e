package sim

import (
	"testing"

	"irqlab/core"
)

func TestAdvanceStopsAtEveryEvent(t *testing.T) {
	m := New(1_000_000)
	tim := m.NewTimer("tim2")
	tim.SetPrescaler(10)
	tim.SetReload(10)
	tim.SetUpdateInterrupt(true)

	var at []uint64
	m.IC.Connect(28, func() {
		core.WithExclusive(func(tok core.Token) {
			at = append(at, m.Now())
			tim.ClearUpdate()
		})
	}, tim.Asserted)
	m.IC.Unmask(28)

	tim.SetCounting(true)
	m.Advance(350)

	want := []uint64{100, 200, 300}
	if len(at) != len(want) {
		t.Fatalf("handler ran at %v, want %v", at, want)
	}
	for i := range want {
		if at[i] != want[i] {
			t.Errorf("run %d at cycle %d, want %d", i, at[i], want[i])
		}
	}
	if m.Now() != 350 {
		t.Errorf("Now() = %d, want 350", m.Now())
	}
	if tim.Count() != 5 {
		t.Errorf("Count() = %d, want 5", tim.Count())
	}
}

func TestControllerPriorityOrder(t *testing.T) {
	ic := NewController()
	var order []core.IRQ
	for _, irq := range []core.IRQ{6, 7, 40} {
		irq := irq
		ic.Connect(irq, func() { order = append(order, irq) }, nil)
		ic.Unmask(irq)
	}
	ic.SetPriority(6, 3)
	ic.SetPriority(7, 1)
	ic.SetPriority(40, 1)

	ic.SetPending(6)
	ic.SetPending(40)
	ic.SetPending(7)
	ic.Service()

	want := []core.IRQ{7, 40, 6}
	for i := range want {
		if i >= len(order) || order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestControllerMasksStuckLine(t *testing.T) {
	ic := NewController()
	ic.RefireLimit = 10
	flag := true
	runs := 0
	// a handler that never clears its peripheral flag
	ic.Connect(28, func() { runs++ }, func() bool { return flag })
	ic.Unmask(28)
	ic.Service()

	if !ic.Stuck(28) || ic.Enabled(28) {
		t.Fatal("line re-entering forever was not masked")
	}
	if runs != 10 {
		t.Errorf("handler ran %d times, want 10", runs)
	}
}

func TestControllerDefersDuringCriticalSection(t *testing.T) {
	m := New(1_000_000)
	m.Attach()
	defer m.Detach()

	runs := 0
	m.IC.Connect(6, func() { runs++ }, nil)
	m.IC.Unmask(6)

	core.WithExclusive(func(tok core.Token) {
		m.IC.SetPending(6)
		m.IC.Service()
		if runs != 0 {
			t.Error("handler ran inside a critical section")
		}
	})
	if runs != 1 {
		t.Errorf("handler ran %d times after the section ended, want 1", runs)
	}
}

func TestEXTILatchesSelectedEdges(t *testing.T) {
	m := New(1_000_000)
	exti := m.NewEXTI()
	pin := m.NewPin("PB1")
	exti.Connect(1, pin)
	exti.SetEdges(1, false, true)

	pin.Drive(core.Low)
	if exti.Pending(1) {
		t.Fatal("edge latched on a masked line")
	}
	pin.Drive(core.High)

	exti.SetLineEnabled(1, true)
	pin.Drive(core.Low)
	if !exti.Pending(1) {
		t.Fatal("falling edge not latched")
	}
	pin.Drive(core.High)
	pin.Drive(core.Low)
	if exti.Coalesced[1] != 1 {
		t.Errorf("Coalesced = %d, want 1", exti.Coalesced[1])
	}
	exti.Acknowledge(1)
	if exti.Pending(1) {
		t.Error("Acknowledge did not clear the pending bit")
	}
	if exti.Asserted(0, 1, 2)() {
		t.Error("vector still asserted after acknowledge")
	}
}

func TestPinScript(t *testing.T) {
	m := New(1_000_000)
	pin := m.NewPin("PA0")
	var changes int
	pin.OnChange(func(from, to core.Level) { changes++ })

	pin.Pulse(100, 50, core.Low)
	pin.Script(Transition{At: 400, Level: core.Low})

	m.Advance(120)
	if pin.Level() != core.Low {
		t.Error("pulse not active at 120")
	}
	m.Advance(100)
	if pin.Level() != core.High {
		t.Error("pulse not released at 220")
	}
	m.Advance(200)
	if pin.Level() != core.Low || changes != 3 {
		t.Errorf("level %v after %d changes, want low after 3", pin.Level(), changes)
	}
}

func TestRTCClearBeforeRearmRelatches(t *testing.T) {
	m := New(1_000_000)
	m.Attach()
	defer m.Detach()
	rtc := m.NewRTC(100, 0)

	runs := 0
	// the wrong order: clear the flag while the counter still matches
	m.IC.Connect(41, func() {
		core.WithExclusive(func(tok core.Token) {
			if !rtc.MatchPending() {
				return
			}
			runs++
			rtc.ClearMatch()
			rtc.SetCompare(rtc.Compare() + 10)
		})
	}, rtc.Asserted)
	m.IC.Unmask(41)
	rtc.SetCompare(10)
	rtc.SetAlarmInterrupt(true)

	m.Advance(1000)
	if runs != 2 || rtc.Relatches != 1 {
		t.Errorf("runs = %d relatches = %d, want 2 and 1", runs, rtc.Relatches)
	}
}

func TestRCCReadyAfterPolls(t *testing.T) {
	m := New(8_000_000)
	rcc := m.NewRCC(2, 3)
	clk := &core.PLLClock{HW: rcc, ReadySpins: 10}

	sysclk, err := clk.Init()
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if sysclk != rcc.Sysclk() || rcc.FlashLatency() != 2 {
		t.Errorf("sysclk %d latency %d, rcc reports %d", sysclk, rcc.FlashLatency(), rcc.Sysclk())
	}
	if m.Now() == 0 {
		t.Error("ready polls consumed no time")
	}
}
