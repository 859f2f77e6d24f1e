//go:build stm32f103

package main

import (
	"runtime/interrupt"
	"strconv"

	"irqlab/core"
	"irqlab/demo"
)

// The F1 implements the top four priority bits
const priorityShift = 4

// Handler bodies bound by connect. Each vector calls its body, if any.
var (
	onEXTI1     func()
	onEXTI15_10 func()
	onTIM2      func()
	onRTCAlarm  func()
	onSysTick   func()
)

// interrupt.New wants constant vector numbers, so every vector the demos
// use is registered here once
var vectors = map[core.IRQ]interrupt.Interrupt{
	demo.IRQEXTI1:     interrupt.New(int(demo.IRQEXTI1), handleEXTI1),
	demo.IRQEXTI15_10: interrupt.New(int(demo.IRQEXTI15_10), handleEXTI15_10),
	demo.IRQTIM2:      interrupt.New(int(demo.IRQTIM2), handleTIM2),
	demo.IRQRTCAlarm:  interrupt.New(int(demo.IRQRTCAlarm), handleRTCAlarm),
}

func run(body func()) {
	if body != nil {
		body()
	}
}

func handleEXTI1(interrupt.Interrupt)     { run(onEXTI1) }
func handleEXTI15_10(interrupt.Interrupt) { run(onEXTI15_10) }
func handleTIM2(interrupt.Interrupt)      { run(onTIM2) }
func handleRTCAlarm(interrupt.Interrupt)  { run(onRTCAlarm) }

//export SysTick_Handler
func handleSysTick() { run(onSysTick) }

// connect binds handler to irq. Called during Setup, before the vector is
// unmasked.
func connect(irq core.IRQ, handler func()) {
	switch irq {
	case demo.IRQEXTI1:
		onEXTI1 = handler
	case demo.IRQEXTI15_10:
		onEXTI15_10 = handler
	case demo.IRQTIM2:
		onTIM2 = handler
	case demo.IRQRTCAlarm:
		onRTCAlarm = handler
	case demo.IRQSysTick:
		onSysTick = handler
	default:
		core.DebugPrintln("[NVIC] no vector for irq " + strconv.Itoa(int(irq)))
	}
}

// nvic is the core.InterruptController. SysTick is a core exception: its
// request is gated by TICKINT alone and its priority lives in SHPR3.
type nvic struct{}

func (nvic) ClearPending(irq core.IRQ) {
	if irq == demo.IRQSysTick {
		return
	}
	icprR[irq/32].Set(1 << (irq % 32))
}

func (nvic) SetPriority(irq core.IRQ, p core.Priority) {
	if irq == demo.IRQSysTick {
		shpr3.ReplaceBits(uint32(p)<<priorityShift, 0xff, 24)
		return
	}
	if v, ok := vectors[irq]; ok {
		v.SetPriority(uint8(p) << priorityShift)
	}
}

func (nvic) Unmask(irq core.IRQ) {
	if v, ok := vectors[irq]; ok {
		v.Enable()
	}
}

func (nvic) Mask(irq core.IRQ) {
	if v, ok := vectors[irq]; ok {
		v.Disable()
	}
}
