//go:build tinygo

package core

import "runtime/interrupt"

// irqState is the saved PRIMASK returned by interrupt.Disable
type irqState = interrupt.State

// disableInterrupts disables interrupts and returns the previous state
func disableInterrupts() irqState {
	return interrupt.Disable()
}

// restoreInterrupts restores the interrupt state
// Interrupts that became pending while masked are taken right after this returns
func restoreInterrupts(state irqState) {
	interrupt.Restore(state)
}
