// External line interrupts (EXTI-style edge sources)
package core

import "golang.org/x/exp/slices"

// Line is an external interrupt line number at the edge controller
type Line uint8

// EdgePolicy selects which transitions raise a request
type EdgePolicy uint8

const (
	EdgeRising  EdgePolicy = 1 << 0 // low to high
	EdgeFalling EdgePolicy = 1 << 1 // high to low
	EdgeBoth               = EdgeRising | EdgeFalling
)

func (p EdgePolicy) rising() bool  { return p&EdgeRising != 0 }
func (p EdgePolicy) falling() bool { return p&EdgeFalling != 0 }

// EdgeAction is the domain work done for one edge, inside the handler's
// critical section. It must not block.
type EdgeAction func(tok Token)

// EdgeSource is one external signal line and the work its edges trigger.
// Every acted-on edge is counted on Events.
type EdgeSource struct {
	Line   Line
	Policy EdgePolicy
	Action EdgeAction

	// Events counts handled edges; Missed counts edges whose action panicked
	Events EventCounter

	enabled bool
}

// NewEdgeSource creates an edge source for line. action may be nil when
// counting is all that is needed.
func NewEdgeSource(line Line, policy EdgePolicy, action EdgeAction) *EdgeSource {
	return &EdgeSource{
		Line:   line,
		Policy: policy,
		Action: action,
	}
}

// handle runs the handler protocol for one line:
// read pending, act, acknowledge. Acknowledge is always the last access,
// also when the action panics.
func (e *EdgeSource) handle(tok Token, hw EdgeHW) bool {
	if !hw.Pending(e.Line) {
		return false
	}
	defer hw.Acknowledge(e.Line)
	defer func() {
		if r := recover(); r != nil {
			e.Events.Miss(tok)
			RecordTiming(EvtMissed, uint8(e.Line), 0, 0, 0)
			DebugAsync("[EDGE] action failed")
		}
	}()

	n := e.Events.Increment(tok)
	RecordTiming(EvtEdge, uint8(e.Line), 0, n, 0)
	if e.Action != nil {
		e.Action(tok)
	}
	return true
}

// Enabled reports whether the line is unmasked at the edge controller
func (e *EdgeSource) Enabled() bool {
	return Exclusive(func(tok Token) bool { return e.enabled })
}

// Vector is one interrupt vector serving one or more edge lines
// (EXTI1 serves a single line, EXTI15_10 serves six).
type Vector struct {
	IRQ      IRQ
	Priority Priority

	// Unclaimed counts requests found on a served line with no source attached
	Unclaimed EventCounter

	edge    *SharedCell[EdgeHW]
	lines   []Line
	sources map[Line]*EdgeSource
}

// NewVector creates a vector for irq that serves lines. edge must be
// published before the vector is installed.
func NewVector(edge *SharedCell[EdgeHW], irq IRQ, prio Priority, lines ...Line) *Vector {
	served := slices.Clone(lines)
	slices.Sort(served)
	return &Vector{
		IRQ:      irq,
		Priority: prio,
		edge:     edge,
		lines:    slices.Compact(served),
		sources:  make(map[Line]*EdgeSource),
	}
}

// Attach registers src on the vector. The line must be served by the vector
// and not already attached.
func (v *Vector) Attach(src *EdgeSource) error {
	if src.Policy&EdgeBoth == 0 {
		return ErrInvalidEdge
	}
	if _, found := slices.BinarySearch(v.lines, src.Line); !found {
		return ErrLineNotServed
	}
	if _, exists := v.sources[src.Line]; exists {
		return ErrLineInUse
	}
	v.sources[src.Line] = src
	return nil
}

// Install configures every attached line at the edge controller and then
// unmasks the vector. Stale pending bits are cleared before anything is
// enabled.
func (v *Vector) Install(ic InterruptController) {
	EnableIRQ(ic, v.IRQ, v.Priority, func(tok Token) {
		v.edge.Access(tok, func(hw *EdgeHW) {
			for _, line := range v.lines {
				(*hw).Acknowledge(line)
			}
			for _, src := range v.sources {
				(*hw).SetEdges(src.Line, src.Policy.rising(), src.Policy.falling())
				(*hw).SetLineEnabled(src.Line, true)
				src.enabled = true
			}
		})
	})
}

// Disable masks the vector and every attached line
func (v *Vector) Disable(ic InterruptController) {
	ic.Mask(v.IRQ)
	WithExclusive(func(tok Token) {
		v.edge.Access(tok, func(hw *EdgeHW) {
			for _, src := range v.sources {
				(*hw).SetLineEnabled(src.Line, false)
				src.enabled = false
			}
		})
	})
}

// Dispatch is the interrupt handler body for the vector.
// Lines that are not pending are skipped; the vector may have been
// entered on behalf of another line.
func (v *Vector) Dispatch() {
	WithExclusive(func(tok Token) {
		ok := v.edge.TryAccess(tok, func(hw *EdgeHW) {
			for _, line := range v.lines {
				src := v.sources[line]
				if src != nil {
					src.handle(tok, *hw)
					continue
				}
				if (*hw).Pending(line) {
					(*hw).Acknowledge(line)
					v.Unclaimed.Miss(tok)
					RecordTiming(EvtMissed, uint8(line), 0, 0, 0)
				}
			}
		})
		if !ok {
			v.Unclaimed.Miss(tok)
		}
	})
}
