//go:build linux

package gpiocdev

import (
	"testing"

	"irqlab/core"
)

// newTestController builds a controller with line 3 on vector 40 and no chip;
// events are injected through latch.
func newTestController(t *testing.T, policy core.EdgePolicy, action core.EdgeAction) (*Controller, *core.EdgeSource, *core.Vector) {
	t.Helper()
	c := NewController(nil)
	c.lines[3] = &edgeLine{irq: 40}

	var cell core.SharedCell[core.EdgeHW]
	cell.Publish(c)

	src := core.NewEdgeSource(3, policy, action)
	v := core.NewVector(&cell, 40, 2, 3)
	if err := v.Attach(src); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	c.Connect(40, v.Dispatch)
	v.Install(c)
	return c, src, v
}

func TestKernelEdgesDispatchVector(t *testing.T) {
	toggles := 0
	c, src, _ := newTestController(t, core.EdgeRising, func(tok core.Token) { toggles++ })

	c.latch(3, true)
	c.latch(3, false) // falling edge not selected
	c.latch(3, true)

	if got := src.Events.Read(); got != 2 {
		t.Errorf("Events = %d, want 2", got)
	}
	if toggles != 2 {
		t.Errorf("action ran %d times, want 2", toggles)
	}
	if c.Pending(3) {
		t.Error("line still pending after dispatch")
	}
}

func TestMaskedVectorKeepsLatch(t *testing.T) {
	c, src, _ := newTestController(t, core.EdgeBoth, nil)

	c.Mask(40)
	c.latch(3, true)
	c.latch(3, false)
	if src.Events.Read() != 0 {
		t.Fatal("masked vector delivered")
	}
	if !c.Pending(3) || c.Coalesced != 1 {
		t.Errorf("pending=%v coalesced=%d, want true 1", c.Pending(3), c.Coalesced)
	}

	c.Unmask(40)
	if src.Events.Read() != 1 {
		t.Errorf("Events = %d, want 1 after unmask", src.Events.Read())
	}
}

func TestDisabledLineIgnored(t *testing.T) {
	c, src, v := newTestController(t, core.EdgeBoth, nil)

	v.Disable(c)
	c.latch(3, true)
	if c.Pending(3) || src.Events.Read() != 0 {
		t.Error("disabled line latched an edge")
	}
}
