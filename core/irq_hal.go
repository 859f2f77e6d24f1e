package core

// IRQ identifies an interrupt vector at the interrupt controller
type IRQ uint16

// Priority is a controller priority; lower numbers preempt higher ones
type Priority uint8

// InterruptController is the capability for the NVIC (or its simulator)
type InterruptController interface {
	// ClearPending drops a latched request for irq
	ClearPending(irq IRQ)

	// SetPriority assigns the preemption priority of irq
	SetPriority(irq IRQ, p Priority)

	// Unmask lets irq reach the CPU
	Unmask(irq IRQ)

	// Mask stops irq from reaching the CPU
	Mask(irq IRQ)
}

// EnableIRQ brings a vector online in the only safe order: the peripheral's
// own flag first (clearFlag, may be nil), then the controller's latch, then
// priority, then unmask. Unmasking with a stale flag set would enter the
// handler immediately.
func EnableIRQ(ic InterruptController, irq IRQ, p Priority, clearFlag func(tok Token)) {
	if clearFlag != nil {
		WithExclusive(clearFlag)
	}
	ic.ClearPending(irq)
	ic.SetPriority(irq, p)
	ic.Unmask(irq)
}
