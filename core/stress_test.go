package core_test

import (
	"sync"
	"testing"

	"irqlab/core"
	"irqlab/sim"
)

func TestSharedStateUnderInterruptLoad(t *testing.T) {
	type reading struct {
		seq, sum uint64
	}
	const interrupts = 10_000

	cell := &core.SharedCell[reading]{}
	cell.Publish(reading{})
	var count core.EventCounter

	ic := sim.NewController()
	ic.Connect(tim2IRQ, func() {
		core.WithExclusive(func(tok core.Token) {
			cell.Access(tok, func(r *reading) {
				r.seq++
				r.sum += 2
			})
			count.Increment(tok)
		})
	}, nil)

	var torn, regressed, reads int
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		var last uint32
		for {
			select {
			case <-done:
				return
			default:
			}
			cell.With(func(r *reading) {
				if r.sum != 2*r.seq {
					torn++
				}
			})
			n := count.Read()
			if n < last {
				regressed++
			}
			last = n
			reads++
		}
	}()

	for i := 0; i < interrupts; i++ {
		ic.Trigger(tim2IRQ)
	}
	close(done)
	wg.Wait()

	if n := count.Read(); n != interrupts {
		t.Errorf("count = %d, want %d", n, interrupts)
	}
	final := core.Apply(cell, func(r *reading) uint64 { return r.seq })
	if final != interrupts {
		t.Errorf("seq = %d, want %d", final, interrupts)
	}
	if torn != 0 {
		t.Errorf("%d torn reads", torn)
	}
	if regressed != 0 {
		t.Errorf("count went backwards %d times", regressed)
	}
	t.Logf("%d foreground reads during %d interrupts", reads, interrupts)
}
