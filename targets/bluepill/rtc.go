//go:build stm32f103

package main

import "irqlab/core"

// rtc is the backup-domain real time clock as a core.AlarmHW, running from
// the 32.768 kHz LSE crystal
type rtc struct {
	// ALRH/ALRL are write-only
	compare uint32
}

const lseHz = 32768

// initRTC starts the LSE and programs the RTC to count at hz. The alarm is
// routed to the NVIC through EXTI line 17.
func initRTC(hz uint32) (*rtc, error) {
	rccR.APB1ENR.SetBits(rccAPB1PWR | rccAPB1BKP)
	pwrCR.SetBits(pwrDBP)

	rccR.BDCR.SetBits(rccLSEON)
	err := core.WaitReady("lse", func() bool {
		return rccR.BDCR.HasBits(rccLSERDY)
	}, core.DefaultReadySpins*10)
	if err != nil {
		return nil, err
	}
	rccR.BDCR.ReplaceBits(rccRTCSELLSE, 3, rccRTCSELPos)
	rccR.BDCR.SetBits(rccRTCEN)

	// wait for the APB view of the registers to resync
	rtcR.CRL.ClearBits(rtcRSF)
	for !rtcR.CRL.HasBits(rtcRSF) {
	}

	r := &rtc{}
	prl := lseHz/hz - 1
	r.configure(func() {
		rtcR.PRLH.Set(prl >> 16)
		rtcR.PRLL.Set(prl & 0xffff)
	})

	extiR.RTSR.SetBits(extiRTCAlarm)
	extiR.IMR.SetBits(extiRTCAlarm)
	return r, nil
}

// configure runs write in configuration mode. The RTC finishes a write
// within a few LSE cycles.
func (r *rtc) configure(write func()) {
	for !rtcR.CRL.HasBits(rtcRTOFF) {
	}
	rtcR.CRL.SetBits(rtcCNF)
	write()
	rtcR.CRL.ClearBits(rtcCNF)
	for !rtcR.CRL.HasBits(rtcRTOFF) {
	}
}

func (r *rtc) Modulus() uint32 { return 0 }

// Counter reads CNTH twice so a carry between the halves is not torn
func (r *rtc) Counter() uint32 {
	hi := rtcR.CNTH.Get()
	lo := rtcR.CNTL.Get()
	if hi2 := rtcR.CNTH.Get(); hi2 != hi {
		hi, lo = hi2, rtcR.CNTL.Get()
	}
	return hi<<16 | lo&0xffff
}

func (r *rtc) Compare() uint32 { return r.compare }

func (r *rtc) SetCompare(v uint32) {
	r.configure(func() {
		rtcR.ALRH.Set(v >> 16)
		rtcR.ALRL.Set(v & 0xffff)
	})
	r.compare = v
}

func (r *rtc) SetAlarmInterrupt(on bool) {
	if on {
		rtcR.CRH.SetBits(rtcALRIE)
	} else {
		rtcR.CRH.ClearBits(rtcALRIE)
	}
}

func (r *rtc) MatchPending() bool { return rtcR.CRL.HasBits(rtcALRF) }

// ClearMatch clears the flag at the RTC and at EXTI line 17
func (r *rtc) ClearMatch() {
	rtcR.CRL.ClearBits(rtcALRF)
	extiR.PR.Set(extiRTCAlarm)
}
