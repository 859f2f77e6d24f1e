//go:build stm32f103

package main

import "irqlab/core"

// GPIO port numbers for AFIO_EXTICR
const (
	portA = 0
	portB = 1
)

// exti is the external interrupt controller as a core.EdgeHW
type exti struct{}

// route connects line to the same-numbered pin of port
func (exti) route(line core.Line, port uint32) {
	afioR.EXTICR[line/4].ReplaceBits(port, 0xf, uint8(line%4)*4)
}

func (exti) SetEdges(line core.Line, rising, falling bool) {
	bit := uint32(1) << line
	if rising {
		extiR.RTSR.SetBits(bit)
	} else {
		extiR.RTSR.ClearBits(bit)
	}
	if falling {
		extiR.FTSR.SetBits(bit)
	} else {
		extiR.FTSR.ClearBits(bit)
	}
}

func (exti) SetLineEnabled(line core.Line, on bool) {
	if on {
		extiR.IMR.SetBits(1 << line)
	} else {
		extiR.IMR.ClearBits(1 << line)
	}
}

func (exti) Pending(line core.Line) bool {
	return extiR.PR.HasBits(1 << line)
}

// Acknowledge writes one to clear
func (exti) Acknowledge(line core.Line) {
	extiR.PR.Set(1 << line)
}
