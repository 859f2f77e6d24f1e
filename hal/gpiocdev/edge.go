//go:build linux

package gpiocdev

import (
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"

	"irqlab/core"
)

// Controller turns kernel line events into latched edge requests.
// It implements core.EdgeHW and core.InterruptController, so a core.Vector
// installs and dispatches on it exactly as it does on EXTI and the NVIC.
// Kernel events arrive on gpiocdev's watcher goroutine, which plays the
// part of the interrupt context.
type Controller struct {
	chip *gpiocdev.Chip

	// guarded by a core critical section
	lines    map[core.Line]*edgeLine
	vectors  map[core.IRQ]*vectorState
	requests []*gpiocdev.Line

	// Coalesced counts edges that arrived while the line was still pending
	Coalesced uint64

	mu sync.Mutex // serialises handler delivery
}

type edgeLine struct {
	irq     core.IRQ
	rising  bool
	falling bool
	enabled bool
	pending bool
}

type vectorState struct {
	handler  func()
	priority core.Priority
	enabled  bool
}

// NewController creates a controller on chip
func NewController(chip *gpiocdev.Chip) *Controller {
	return &Controller{
		chip:    chip,
		lines:   make(map[core.Line]*edgeLine),
		vectors: make(map[core.IRQ]*vectorState),
	}
}

// Connect registers handler as the body of irq
func (c *Controller) Connect(irq core.IRQ, handler func()) {
	core.WithExclusive(func(tok core.Token) {
		c.vector(irq).handler = handler
	})
}

// Watch requests the kernel line at offset with edge detection on both
// edges, biased by pull, and routes its events to line on vector irq. Edge
// selection and masking are applied in software by SetEdges and
// SetLineEnabled.
func (c *Controller) Watch(line core.Line, offset int, pull core.Pull, irq core.IRQ) error {
	core.WithExclusive(func(tok core.Token) {
		c.lines[line] = &edgeLine{irq: irq}
	})

	req, err := c.chip.RequestLine(offset,
		gpiocdev.AsInput,
		biasOption(pull),
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(c.eventHandler(line)))
	if err != nil {
		return fmt.Errorf("watch line %d: %w", offset, err)
	}
	core.WithExclusive(func(tok core.Token) {
		c.requests = append(c.requests, req)
	})
	return nil
}

// Close releases every watched line. It must not be called from a handler.
func (c *Controller) Close() error {
	reqs := core.Exclusive(func(tok core.Token) []*gpiocdev.Line {
		r := c.requests
		c.requests = nil
		return r
	})
	var first error
	for _, r := range reqs {
		if err := r.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (c *Controller) vector(irq core.IRQ) *vectorState {
	v := c.vectors[irq]
	if v == nil {
		v = &vectorState{}
		c.vectors[irq] = v
	}
	return v
}

func (c *Controller) eventHandler(line core.Line) gpiocdev.EventHandler {
	return func(evt gpiocdev.LineEvent) {
		c.latch(line, evt.Type == gpiocdev.LineEventRisingEdge)
	}
}

// latch records one kernel edge and delivers the vector if it is unmasked
func (c *Controller) latch(line core.Line, rising bool) {
	var handler func()
	core.WithExclusive(func(tok core.Token) {
		l := c.lines[line]
		if l == nil || !l.enabled {
			return
		}
		if (rising && !l.rising) || (!rising && !l.falling) {
			return
		}
		if l.pending {
			c.Coalesced++
		}
		l.pending = true
		if v := c.vectors[l.irq]; v != nil && v.enabled {
			handler = v.handler
		}
	})
	if handler == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	handler()
}

// SetEdges implements core.EdgeHW
func (c *Controller) SetEdges(line core.Line, rising, falling bool) {
	if l := c.lines[line]; l != nil {
		l.rising = rising
		l.falling = falling
	}
}

// SetLineEnabled implements core.EdgeHW
func (c *Controller) SetLineEnabled(line core.Line, on bool) {
	if l := c.lines[line]; l != nil {
		l.enabled = on
	}
}

// Pending implements core.EdgeHW
func (c *Controller) Pending(line core.Line) bool {
	l := c.lines[line]
	return l != nil && l.pending
}

// Acknowledge implements core.EdgeHW
func (c *Controller) Acknowledge(line core.Line) {
	if l := c.lines[line]; l != nil {
		l.pending = false
	}
}

// ClearPending implements core.InterruptController. Requests are latched
// per line, so there is nothing to drop at the vector.
func (c *Controller) ClearPending(irq core.IRQ) {}

// SetPriority implements core.InterruptController. Kernel events are
// delivered one at a time, so the priority is only recorded.
func (c *Controller) SetPriority(irq core.IRQ, p core.Priority) {
	core.WithExclusive(func(tok core.Token) {
		c.vector(irq).priority = p
	})
}

// Unmask implements core.InterruptController. A request latched while the
// vector was masked is delivered at once, as the NVIC would on unmask. It
// must not be called from a handler.
func (c *Controller) Unmask(irq core.IRQ) {
	var handler func()
	core.WithExclusive(func(tok core.Token) {
		v := c.vector(irq)
		v.enabled = true
		for _, l := range c.lines {
			if l.irq == irq && l.enabled && l.pending {
				handler = v.handler
				break
			}
		}
	})
	if handler == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	handler()
}

// Mask implements core.InterruptController
func (c *Controller) Mask(irq core.IRQ) {
	core.WithExclusive(func(tok core.Token) {
		c.vector(irq).enabled = false
	})
}
