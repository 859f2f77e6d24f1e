//go:build rp2040

package main

import (
	"machine"

	"irqlab/core"
)

// pinEdges stands in for EXTI on the RP2040. Every GPIO shares the bank
// interrupt, so the controller keeps a pending bit per line and a latch per
// vector in software: a request that arrives while its vector is masked is
// delivered on Unmask, the way the NVIC would.
type pinEdges struct {
	lines   map[core.Line]*pinLine
	vectors map[core.IRQ]*pinVector
}

type pinLine struct {
	pin     machine.Pin
	irq     core.IRQ
	rising  bool
	falling bool
	enabled bool
	pending bool
}

type pinVector struct {
	handler  func()
	priority core.Priority
	unmasked bool
	latched  bool
}

func newPinEdges() *pinEdges {
	return &pinEdges{
		lines:   make(map[core.Line]*pinLine),
		vectors: make(map[core.IRQ]*pinVector),
	}
}

func (e *pinEdges) vector(irq core.IRQ) *pinVector {
	v, ok := e.vectors[irq]
	if !ok {
		v = &pinVector{}
		e.vectors[irq] = v
	}
	return v
}

// watch routes the edges of pin to line, served by irq
func (e *pinEdges) watch(line core.Line, pin machine.Pin, irq core.IRQ) error {
	e.lines[line] = &pinLine{pin: pin, irq: irq}
	e.vector(irq)
	return pin.SetInterrupt(machine.PinRising|machine.PinFalling, func(p machine.Pin) {
		e.latch(line, p.Get())
	})
}

// latch runs in the bank interrupt
func (e *pinEdges) latch(line core.Line, high bool) {
	l := e.lines[line]
	if l == nil || !l.enabled {
		return
	}
	if (high && !l.rising) || (!high && !l.falling) {
		return
	}
	l.pending = true
	e.raise(l.irq)
}

// raise requests irq: the handler runs now when unmasked, otherwise the
// request stays latched
func (e *pinEdges) raise(irq core.IRQ) {
	v := e.vector(irq)
	if !v.unmasked || v.handler == nil {
		v.latched = true
		return
	}
	v.handler()
}

// connect implements Board.Connect
func (e *pinEdges) connect(irq core.IRQ, handler func()) {
	e.vector(irq).handler = handler
}

func (e *pinEdges) SetEdges(line core.Line, rising, falling bool) {
	if l := e.lines[line]; l != nil {
		l.rising, l.falling = rising, falling
	}
}

func (e *pinEdges) SetLineEnabled(line core.Line, on bool) {
	if l := e.lines[line]; l != nil {
		l.enabled = on
	}
}

func (e *pinEdges) Pending(line core.Line) bool {
	l := e.lines[line]
	return l != nil && l.pending
}

func (e *pinEdges) Acknowledge(line core.Line) {
	if l := e.lines[line]; l != nil {
		l.pending = false
	}
}

func (e *pinEdges) ClearPending(irq core.IRQ) { e.vector(irq).latched = false }

// SetPriority is recorded only; all lines share one bank interrupt
func (e *pinEdges) SetPriority(irq core.IRQ, p core.Priority) { e.vector(irq).priority = p }

func (e *pinEdges) Unmask(irq core.IRQ) {
	v := e.vector(irq)
	v.unmasked = true
	if v.latched && v.handler != nil {
		v.latched = false
		v.handler()
	}
}

func (e *pinEdges) Mask(irq core.IRQ) { e.vector(irq).unmasked = false }
