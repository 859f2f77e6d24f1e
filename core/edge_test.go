package core

import (
	"errors"
	"testing"
)

// fakeEdge is an in-memory edge controller that records register accesses
type fakeEdge struct {
	pending map[Line]bool
	enabled map[Line]bool
	rising  map[Line]bool
	falling map[Line]bool
	ops     []string
}

func newFakeEdge() *fakeEdge {
	return &fakeEdge{
		pending: make(map[Line]bool),
		enabled: make(map[Line]bool),
		rising:  make(map[Line]bool),
		falling: make(map[Line]bool),
	}
}

func (f *fakeEdge) SetEdges(line Line, rising, falling bool) {
	f.rising[line] = rising
	f.falling[line] = falling
	f.ops = append(f.ops, "edges:"+itoa(int(line)))
}

func (f *fakeEdge) SetLineEnabled(line Line, on bool) {
	f.enabled[line] = on
	f.ops = append(f.ops, "enable:"+itoa(int(line)))
}

func (f *fakeEdge) Pending(line Line) bool {
	return f.pending[line]
}

func (f *fakeEdge) Acknowledge(line Line) {
	f.pending[line] = false
	f.ops = append(f.ops, "ack:"+itoa(int(line)))
}

// fakeIC records controller calls
type fakeIC struct {
	ops []string
}

func (f *fakeIC) ClearPending(irq IRQ) { f.ops = append(f.ops, "clear") }

func (f *fakeIC) SetPriority(irq IRQ, p Priority) { f.ops = append(f.ops, "prio:"+itoa(int(p))) }

func (f *fakeIC) Unmask(irq IRQ) { f.ops = append(f.ops, "unmask") }

func (f *fakeIC) Mask(irq IRQ) { f.ops = append(f.ops, "mask") }

func publishedEdge(hw *fakeEdge) *SharedCell[EdgeHW] {
	cell := &SharedCell[EdgeHW]{}
	cell.Publish(hw)
	return cell
}

func TestVectorDispatchCountsEdgeOnce(t *testing.T) {
	hw := newFakeEdge()
	v := NewVector(publishedEdge(hw), 6, 1, 0)

	acted := 0
	src := NewEdgeSource(0, EdgeFalling, func(tok Token) {
		acted++
		if !hw.pending[0] {
			t.Error("pending bit cleared before the action ran")
		}
	})
	if err := v.Attach(src); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	v.Install(&fakeIC{})

	hw.ops = nil
	hw.pending[0] = true
	v.Dispatch()
	// spurious re-entry with nothing latched
	v.Dispatch()

	if n := src.Events.Read(); n != 1 {
		t.Errorf("Events = %d, want 1", n)
	}
	if acted != 1 {
		t.Errorf("action ran %d times, want 1", acted)
	}
	if hw.pending[0] {
		t.Error("pending bit still set after dispatch")
	}
	if len(hw.ops) != 1 || hw.ops[0] != "ack:0" {
		t.Errorf("register ops = %v, want [ack:0]", hw.ops)
	}
}

func TestVectorDispatchAcknowledgesWhenActionPanics(t *testing.T) {
	hw := newFakeEdge()
	v := NewVector(publishedEdge(hw), 6, 1, 0)
	src := NewEdgeSource(0, EdgeRising, func(tok Token) {
		panic("sensor fault")
	})
	if err := v.Attach(src); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	v.Install(&fakeIC{})

	hw.pending[0] = true
	v.Dispatch()

	if hw.pending[0] {
		t.Error("pending bit left set after a failing action")
	}
	got := src.Events.Snapshot()
	if got.Events != 1 || got.Missed != 1 {
		t.Errorf("counts = %+v, want {Events:1 Missed:1}", got)
	}
}

func TestVectorDispatchSharedVector(t *testing.T) {
	hw := newFakeEdge()
	v := NewVector(publishedEdge(hw), 40, 2, 10, 11, 12, 13, 14, 15)

	a := NewEdgeSource(12, EdgeFalling, nil)
	b := NewEdgeSource(15, EdgeBoth, nil)
	for _, src := range []*EdgeSource{a, b} {
		if err := v.Attach(src); err != nil {
			t.Fatalf("Attach line %d: %v", src.Line, err)
		}
	}
	v.Install(&fakeIC{})

	hw.pending[15] = true
	hw.pending[14] = true // no source attached
	v.Dispatch()

	if a.Events.Read() != 0 {
		t.Errorf("line 12 counted %d events for another line's request", a.Events.Read())
	}
	if b.Events.Read() != 1 {
		t.Errorf("line 15 Events = %d, want 1", b.Events.Read())
	}
	if v.Unclaimed.Missed() != 1 {
		t.Errorf("Unclaimed.Missed = %d, want 1", v.Unclaimed.Missed())
	}
	if hw.pending[14] || hw.pending[15] {
		t.Error("pending bits left set")
	}
}

func TestVectorAttachErrors(t *testing.T) {
	v := NewVector(publishedEdge(newFakeEdge()), 40, 2, 10, 11, 12)

	if err := v.Attach(NewEdgeSource(11, 0, nil)); !errors.Is(err, ErrInvalidEdge) {
		t.Errorf("empty policy: err = %v, want ErrInvalidEdge", err)
	}
	if err := v.Attach(NewEdgeSource(3, EdgeRising, nil)); !errors.Is(err, ErrLineNotServed) {
		t.Errorf("foreign line: err = %v, want ErrLineNotServed", err)
	}
	if err := v.Attach(NewEdgeSource(11, EdgeRising, nil)); err != nil {
		t.Fatalf("first attach: %v", err)
	}
	if err := v.Attach(NewEdgeSource(11, EdgeFalling, nil)); !errors.Is(err, ErrLineInUse) {
		t.Errorf("second attach: err = %v, want ErrLineInUse", err)
	}
}

func TestVectorInstallOrder(t *testing.T) {
	hw := newFakeEdge()
	v := NewVector(publishedEdge(hw), 7, 3, 1)
	src := NewEdgeSource(1, EdgeFalling, nil)
	if err := v.Attach(src); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	hw.pending[1] = true // stale request from before reset
	ic := &fakeIC{}
	v.Install(ic)

	wantHW := []string{"ack:1", "edges:1", "enable:1"}
	if len(hw.ops) != len(wantHW) {
		t.Fatalf("edge ops = %v, want %v", hw.ops, wantHW)
	}
	for i := range wantHW {
		if hw.ops[i] != wantHW[i] {
			t.Errorf("edge op %d = %s, want %s", i, hw.ops[i], wantHW[i])
		}
	}
	wantIC := []string{"clear", "prio:3", "unmask"}
	for i := range wantIC {
		if i >= len(ic.ops) || ic.ops[i] != wantIC[i] {
			t.Fatalf("controller ops = %v, want %v", ic.ops, wantIC)
		}
	}
	if hw.rising[1] || !hw.falling[1] {
		t.Errorf("edges = rising:%v falling:%v, want falling only", hw.rising[1], hw.falling[1])
	}
	if !src.Enabled() {
		t.Error("source not enabled after Install")
	}

	v.Disable(ic)
	if src.Enabled() || hw.enabled[1] {
		t.Error("source still enabled after Disable")
	}
}

func TestVectorDispatchUnpublished(t *testing.T) {
	v := NewVector(&SharedCell[EdgeHW]{}, 6, 1, 0)
	v.Dispatch()
	if v.Unclaimed.Missed() != 1 {
		t.Errorf("Unclaimed.Missed = %d, want 1", v.Unclaimed.Missed())
	}
}
