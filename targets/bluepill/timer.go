//go:build stm32f103

package main

// gpTimer is a core.CountingTimerHW on a 16-bit general purpose timer
type gpTimer struct {
	r *timRegs
}

func newGPTimer(r *timRegs, enable uint32) gpTimer {
	rccR.APB1ENR.SetBits(enable)
	// only a real overflow raises the update flag, not the UG below
	r.CR1.Set(timURS)
	return gpTimer{r: r}
}

func (t gpTimer) Limits() (uint32, uint32) { return timMax, timMax }

// SetPrescaler loads PSC immediately through an update event
func (t gpTimer) SetPrescaler(p uint32) {
	t.r.PSC.Set(p - 1)
	t.r.EGR.Set(timUG)
}

func (t gpTimer) SetReload(r uint32) { t.r.ARR.Set(r - 1) }

func (t gpTimer) SetCounting(on bool) {
	if on {
		t.r.CR1.SetBits(timCEN)
	} else {
		t.r.CR1.ClearBits(timCEN)
	}
}

func (t gpTimer) SetUpdateInterrupt(on bool) {
	if on {
		t.r.DIER.SetBits(timUIE)
	} else {
		t.r.DIER.ClearBits(timUIE)
	}
}

func (t gpTimer) UpdatePending() bool { return t.r.SR.HasBits(timUIF) }

// ClearUpdate writes zero to UIF; the other flags are rc_w0 and ignore ones
func (t gpTimer) ClearUpdate() { t.r.SR.Set(^uint32(timUIF)) }

func (t gpTimer) Count() uint32 { return t.r.CNT.Get() }

// useETR switches the timer to external clock mode 2: every rising edge on
// ETR (PA0 for TIM2) advances the counter
func (t gpTimer) useETR() {
	t.r.SMCR.Set(timECE)
}

// sysTick is the core timer as a core.TimerHW. It counts the CPU clock
// directly, so the prescaler is fixed at 1.
type sysTick struct {
	pending bool
}

func (s *sysTick) Limits() (uint32, uint32) { return 1, systickMax }

func (s *sysTick) SetPrescaler(p uint32) {}

func (s *sysTick) SetReload(r uint32) {
	systickR.RVR.Set(r - 1)
	systickR.CVR.Set(0)
}

func (s *sysTick) SetCounting(on bool) {
	if on {
		systickR.CSR.SetBits(systickEnable | systickCPUClock)
	} else {
		systickR.CSR.ClearBits(systickEnable)
	}
}

func (s *sysTick) SetUpdateInterrupt(on bool) {
	if on {
		systickR.CSR.SetBits(systickTickInt)
	} else {
		systickR.CSR.ClearBits(systickTickInt)
	}
}

// UpdatePending latches COUNTFLAG, which clears itself on every CSR read
func (s *sysTick) UpdatePending() bool {
	if systickR.CSR.HasBits(systickCountFlag) {
		s.pending = true
	}
	return s.pending
}

func (s *sysTick) ClearUpdate() {
	systickR.CSR.Get()
	s.pending = false
}
