//go:build stm32f103

package main

import (
	"runtime/volatile"
	"unsafe"
)

// STM32F103 memory map, only the blocks the demos drive
const (
	tim2Base    = 0x40000000
	tim4Base    = 0x40000800
	rtcBase     = 0x40002800
	pwrBase     = 0x40007000
	afioBase    = 0x40010000
	extiBase    = 0x40010400
	rccBase     = 0x40021000
	flashBase   = 0x40022000
	systickBase = 0xE000E010
	nvicICPR    = 0xE000E280
	scbSHPR3    = 0xE000ED20
)

type timRegs struct {
	CR1   volatile.Register32
	CR2   volatile.Register32
	SMCR  volatile.Register32
	DIER  volatile.Register32
	SR    volatile.Register32
	EGR   volatile.Register32
	CCMR1 volatile.Register32
	CCMR2 volatile.Register32
	CCER  volatile.Register32
	CNT   volatile.Register32
	PSC   volatile.Register32
	ARR   volatile.Register32
}

type extiRegs struct {
	IMR   volatile.Register32
	EMR   volatile.Register32
	RTSR  volatile.Register32
	FTSR  volatile.Register32
	SWIER volatile.Register32
	PR    volatile.Register32
}

type afioRegs struct {
	EVCR   volatile.Register32
	MAPR   volatile.Register32
	EXTICR [4]volatile.Register32
}

type rtcRegs struct {
	CRH  volatile.Register32
	CRL  volatile.Register32
	PRLH volatile.Register32
	PRLL volatile.Register32
	DIVH volatile.Register32
	DIVL volatile.Register32
	CNTH volatile.Register32
	CNTL volatile.Register32
	ALRH volatile.Register32
	ALRL volatile.Register32
}

type rccRegs struct {
	CR       volatile.Register32
	CFGR     volatile.Register32
	CIR      volatile.Register32
	APB2RSTR volatile.Register32
	APB1RSTR volatile.Register32
	AHBENR   volatile.Register32
	APB2ENR  volatile.Register32
	APB1ENR  volatile.Register32
	BDCR     volatile.Register32
	CSR      volatile.Register32
}

type systickRegs struct {
	CSR   volatile.Register32
	RVR   volatile.Register32
	CVR   volatile.Register32
	CALIB volatile.Register32
}

var (
	tim2Regs = (*timRegs)(unsafe.Pointer(uintptr(tim2Base)))
	tim4Regs = (*timRegs)(unsafe.Pointer(uintptr(tim4Base)))
	extiR    = (*extiRegs)(unsafe.Pointer(uintptr(extiBase)))
	afioR    = (*afioRegs)(unsafe.Pointer(uintptr(afioBase)))
	rtcR     = (*rtcRegs)(unsafe.Pointer(uintptr(rtcBase)))
	rccR     = (*rccRegs)(unsafe.Pointer(uintptr(rccBase)))
	pwrCR    = (*volatile.Register32)(unsafe.Pointer(uintptr(pwrBase)))
	flashACR = (*volatile.Register32)(unsafe.Pointer(uintptr(flashBase)))
	systickR = (*systickRegs)(unsafe.Pointer(uintptr(systickBase)))
	icprR    = (*[8]volatile.Register32)(unsafe.Pointer(uintptr(nvicICPR)))
	shpr3    = (*volatile.Register32)(unsafe.Pointer(uintptr(scbSHPR3)))
)

// RCC bits
const (
	rccHSEON  = 1 << 16
	rccHSERDY = 1 << 17
	rccPLLON  = 1 << 24
	rccPLLRDY = 1 << 25

	rccPLLSRC    = 1 << 16
	rccPLLMULPos = 18
	rccSWPos     = 0
	rccSWSPos    = 2
	rccSWPLL     = 2
	rccPPRE1Pos  = 8
	rccPPRE1Div2 = 4

	rccAPB2AFIO = 1 << 0
	rccAPB2IOPA = 1 << 2
	rccAPB2IOPB = 1 << 3
	rccAPB1TIM2 = 1 << 0
	rccAPB1TIM4 = 1 << 2
	rccAPB1BKP  = 1 << 27
	rccAPB1PWR  = 1 << 28

	rccLSEON     = 1 << 0
	rccLSERDY    = 1 << 1
	rccRTCSELPos = 8
	rccRTCSELLSE = 1
	rccRTCEN     = 1 << 15

	pwrDBP = 1 << 8
)

// Timer bits
const (
	timCEN = 1 << 0
	timURS = 1 << 2
	timUIE = 1 << 0
	timUIF = 1 << 0
	timUG  = 1 << 0
	timECE = 1 << 14
	timMax = 1 << 16
)

// RTC bits
const (
	rtcALRIE = 1 << 1
	rtcALRF  = 1 << 1
	rtcRSF   = 1 << 3
	rtcCNF   = 1 << 4
	rtcRTOFF = 1 << 5

	// the alarm reaches the NVIC through EXTI line 17
	extiRTCAlarm = 1 << 17
)

// SysTick bits
const (
	systickEnable    = 1 << 0
	systickTickInt   = 1 << 1
	systickCPUClock  = 1 << 2
	systickCountFlag = 1 << 16
	systickMax       = 1 << 24
)
