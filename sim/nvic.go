package sim

import (
	"log"
	"sync/atomic"

	"golang.org/x/exp/slices"

	"irqlab/core"
)

// DefaultRefireLimit is how many back-to-back entries of the same vector
// without the request going away mark the line as stuck
const DefaultRefireLimit = 1000

// vector is one interrupt line at the controller
type vector struct {
	irq      core.IRQ
	handler  func()
	asserted func() bool // peripheral request level; nil for software-only lines
	priority core.Priority
	enabled  bool
	latched  bool // controller pending bit

	deliveries uint64
	refires    int
	stuck      bool
}

func (v *vector) pending() bool {
	if v.latched {
		return true
	}
	return v.asserted != nil && v.asserted()
}

// Controller models the NVIC: per-line mask, priority and pending latch.
// Handlers run to completion; the simulated core has one context, so a
// handler is never preempted.
type Controller struct {
	RefireLimit int

	vectors    map[core.IRQ]*vector
	order      []*vector
	delivering atomic.Bool
}

// NewController creates a controller with no lines connected
func NewController() *Controller {
	return &Controller{
		RefireLimit: DefaultRefireLimit,
		vectors:     make(map[core.IRQ]*vector),
	}
}

// Connect installs the handler for irq and the peripheral request it is
// wired to. asserted may be nil; the line is then raised by SetPending or
// Trigger only. The line starts masked.
func (c *Controller) Connect(irq core.IRQ, handler func(), asserted func() bool) {
	v := &vector{irq: irq, handler: handler, asserted: asserted}
	c.vectors[irq] = v
	c.order = append(c.order, v)
	slices.SortFunc(c.order, func(a, b *vector) bool { return a.irq < b.irq })
}

func (c *Controller) vector(irq core.IRQ) *vector {
	v, ok := c.vectors[irq]
	if !ok {
		log.Panicf("sim: irq %d not connected", irq)
	}
	return v
}

// ClearPending drops the controller latch. A peripheral that still asserts
// its request pends the line again.
func (c *Controller) ClearPending(irq core.IRQ) {
	c.vector(irq).latched = false
}

// SetPriority assigns the priority of irq
func (c *Controller) SetPriority(irq core.IRQ, p core.Priority) {
	c.vector(irq).priority = p
}

// Unmask enables irq
func (c *Controller) Unmask(irq core.IRQ) {
	v := c.vector(irq)
	v.enabled = true
	v.stuck = false
	v.refires = 0
}

// Mask disables irq
func (c *Controller) Mask(irq core.IRQ) {
	c.vector(irq).enabled = false
}

// SetPending latches a software request on irq
func (c *Controller) SetPending(irq core.IRQ) {
	c.vector(irq).latched = true
}

// Enabled reports whether irq is unmasked
func (c *Controller) Enabled(irq core.IRQ) bool {
	return c.vector(irq).enabled
}

// Pending reports whether irq would be taken if unmasked
func (c *Controller) Pending(irq core.IRQ) bool {
	return c.vector(irq).pending()
}

// Deliveries returns how many times the handler of irq ran
func (c *Controller) Deliveries(irq core.IRQ) uint64 {
	return c.vector(irq).deliveries
}

// Stuck reports whether irq was masked for re-entering without its request
// ever being cleared
func (c *Controller) Stuck(irq core.IRQ) bool {
	return c.vector(irq).stuck
}

// Delivering reports whether a handler is running
func (c *Controller) Delivering() bool {
	return c.delivering.Load()
}

// Trigger runs the handler of irq right away, regardless of mask and
// latch, the way a test harness forces an interrupt. It is safe to call
// while other goroutines use critical sections.
func (c *Controller) Trigger(irq core.IRQ) {
	v := c.vector(irq)
	v.handler()
}

// Service takes every pending, enabled line in priority order (lower value
// first, then lower irq number) until none is left. It does nothing while a
// critical section is held or a handler is already running.
func (c *Controller) Service() {
	if core.InterruptsDisabled() {
		return
	}
	if !c.delivering.CompareAndSwap(false, true) {
		return
	}
	defer c.delivering.Store(false)

	for {
		v := c.next()
		if v == nil {
			return
		}
		v.latched = false
		v.handler()
		v.deliveries++

		if v.pending() {
			v.refires++
			if v.refires >= c.RefireLimit {
				v.enabled = false
				v.stuck = true
				log.Printf("sim: irq %d re-entered %d times without clearing its request, masked", v.irq, v.refires)
			}
		} else {
			v.refires = 0
		}
	}
}

func (c *Controller) next() *vector {
	var best *vector
	for _, v := range c.order {
		if !v.enabled || !v.pending() {
			continue
		}
		if best == nil || v.priority < best.priority {
			best = v
		}
	}
	return best
}
