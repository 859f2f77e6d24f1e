//go:build !tinygo

package core

import (
	"sync"
	"sync/atomic"
)

// irqState is a placeholder for interrupt state on regular Go
type irqState struct{}

var (
	// irqMask stands in for PRIMASK on regular Go. Simulated handlers take it
	// as well, so while it is held no handler body can run.
	irqMask sync.Mutex
	irqHeld atomic.Bool

	// releaseHook is called after the mask is dropped so a simulator can
	// deliver interrupts that were raised inside the section.
	releaseHook atomic.Pointer[func()]
)

// disableInterrupts takes the host interrupt mask
func disableInterrupts() irqState {
	irqMask.Lock()
	irqHeld.Store(true)
	return irqState{}
}

// restoreInterrupts drops the host interrupt mask and runs the release hook
func restoreInterrupts(state irqState) {
	irqHeld.Store(false)
	irqMask.Unlock()
	if hook := releaseHook.Load(); hook != nil {
		(*hook)()
	}
}

// InterruptsDisabled reports whether some context currently holds the
// critical section. Only available on regular Go.
func InterruptsDisabled() bool {
	return irqHeld.Load()
}

// SetReleaseHook installs fn to run every time a critical section ends.
// Passing nil removes the hook. Only available on regular Go.
func SetReleaseHook(fn func()) {
	if fn == nil {
		releaseHook.Store(nil)
		return
	}
	releaseHook.Store(&fn)
}
