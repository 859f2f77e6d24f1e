package sim

import (
	"irqlab/core"
)

// EXTILines is the number of lines on the F1 external interrupt controller
const EXTILines = 20

// EXTI models the external interrupt controller: per-line edge selection,
// mask and write-one-to-clear pending register.
type EXTI struct {
	m       *Machine
	rising  uint32
	falling uint32
	imr     uint32
	pr      uint32

	// Coalesced counts edges that arrived on a line whose pending bit was
	// already set
	Coalesced [EXTILines]int
}

// NewEXTI creates an edge controller with every line masked
func (m *Machine) NewEXTI() *EXTI {
	return &EXTI{m: m}
}

// Connect routes pin to line, as AFIO_EXTICR does
func (e *EXTI) Connect(line core.Line, pin *Pin) {
	bit := uint32(1) << line
	pin.OnChange(func(from, to core.Level) {
		if e.imr&bit == 0 {
			return
		}
		if (to == core.High && e.rising&bit != 0) || (to == core.Low && e.falling&bit != 0) {
			e.latch(line)
		}
	})
}

// SoftwareTrigger sets the pending bit of line, as EXTI_SWIER does
func (e *EXTI) SoftwareTrigger(line core.Line) {
	if e.imr&(1<<line) != 0 {
		e.latch(line)
	}
}

func (e *EXTI) latch(line core.Line) {
	bit := uint32(1) << line
	if e.pr&bit != 0 {
		e.Coalesced[line]++
	}
	e.pr |= bit
}

// SetEdges implements core.EdgeHW
func (e *EXTI) SetEdges(line core.Line, rising, falling bool) {
	bit := uint32(1) << line
	e.rising &^= bit
	e.falling &^= bit
	if rising {
		e.rising |= bit
	}
	if falling {
		e.falling |= bit
	}
}

// SetLineEnabled implements core.EdgeHW
func (e *EXTI) SetLineEnabled(line core.Line, on bool) {
	if on {
		e.imr |= 1 << line
	} else {
		e.imr &^= 1 << line
	}
}

// Pending implements core.EdgeHW
func (e *EXTI) Pending(line core.Line) bool {
	e.m.poll()
	return e.pr&(1<<line) != 0
}

// Acknowledge implements core.EdgeHW
func (e *EXTI) Acknowledge(line core.Line) {
	e.pr &^= 1 << line
}

// Asserted returns the request level of a vector serving lines
func (e *EXTI) Asserted(lines ...core.Line) func() bool {
	var mask uint32
	for _, l := range lines {
		mask |= 1 << l
	}
	return func() bool {
		return e.pr&e.imr&mask != 0
	}
}
