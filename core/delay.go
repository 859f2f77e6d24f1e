package core

// Delayer blocks the foreground for a number of milliseconds.
// Never call it from an interrupt handler.
type Delayer interface {
	DelayMs(ms uint32)
}

// TimerDelay is a blocking delay calibrated on a reload timer: the timer is
// set up for one update per millisecond and the delay spins on the update
// flag, the same way SysTick's COUNTFLAG is used. It must own its timer;
// the update interrupt stays disabled.
type TimerDelay struct {
	hw      TimerHW
	clockHz uint32
	ready   bool
}

// NewTimerDelay creates a delay on hw, whose input clock runs at clockHz
func NewTimerDelay(hw TimerHW, clockHz uint32) *TimerDelay {
	return &TimerDelay{hw: hw, clockHz: clockHz}
}

// Init programs the timer for a 1 kHz update rate
func (d *TimerDelay) Init() error {
	maxP, maxR := d.hw.Limits()
	p, r, err := SolveRate(d.clockHz, 1000, maxP, maxR)
	if err != nil {
		return err
	}
	d.hw.SetCounting(false)
	d.hw.SetUpdateInterrupt(false)
	d.hw.SetPrescaler(p)
	d.hw.SetReload(r)
	d.ready = true
	return nil
}

// DelayMs blocks for ms milliseconds
func (d *TimerDelay) DelayMs(ms uint32) {
	if ms == 0 {
		return
	}
	if !d.ready {
		Must(d.Init())
	}

	d.hw.ClearUpdate()
	d.hw.SetCounting(true)
	for i := uint32(0); i < ms; i++ {
		for !d.hw.UpdatePending() {
		}
		d.hw.ClearUpdate()
	}
	d.hw.SetCounting(false)
}
