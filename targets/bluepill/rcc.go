//go:build stm32f103

package main

// rcc is the clock control block as a core.ClockHW
type rcc struct{}

func (rcc) EnableHSE()     { rccR.CR.SetBits(rccHSEON) }
func (rcc) HSEReady() bool { return rccR.CR.HasBits(rccHSERDY) }

// ConfigurePLL feeds the PLL from HSE and halves APB1, which may not
// exceed 36 MHz. The APB1 timers still see the full clock.
func (rcc) ConfigurePLL(mul uint32) {
	rccR.CFGR.ReplaceBits(mul-2, 0xf, rccPLLMULPos)
	rccR.CFGR.SetBits(rccPLLSRC)
	rccR.CFGR.ReplaceBits(rccPPRE1Div2, 7, rccPPRE1Pos)
}

func (rcc) EnablePLL()     { rccR.CR.SetBits(rccPLLON) }
func (rcc) PLLReady() bool { return rccR.CR.HasBits(rccPLLRDY) }
func (rcc) SelectPLL()     { rccR.CFGR.ReplaceBits(rccSWPLL, 3, rccSWPos) }

// runningFromPLL reports whether the runtime already switched to the PLL
func (rcc) runningFromPLL() bool {
	return (rccR.CFGR.Get()>>rccSWSPos)&3 == rccSWPLL
}

// SetFlashLatency also keeps the prefetch buffer on
func (rcc) SetFlashLatency(waitStates uint8) {
	flashACR.ReplaceBits(uint32(waitStates)|1<<4, 0x17, 0)
}
