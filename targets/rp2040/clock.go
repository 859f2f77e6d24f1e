//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"
)

// RP2040 timer peripheral memory map
const (
	timerBase     = 0x40054000
	timerTIMERAWL = timerBase + 0x28 // raw low word, no latching
)

var timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))

// GetHardwareTime returns the low 32 bits of the 1 MHz timer
func GetHardwareTime() uint32 {
	return timerRAWL.Get()
}

// usDelay is a core.Delayer spinning on the microsecond timer. The
// subtraction is wrap safe for delays under 71 minutes.
type usDelay struct{}

func (usDelay) DelayMs(ms uint32) {
	start := GetHardwareTime()
	for GetHardwareTime()-start < ms*1000 {
	}
}
