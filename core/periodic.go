package core

// TimerState is the run state of a PeriodicTimer
type TimerState uint8

const (
	TimerStopped TimerState = iota
	TimerRunning
)

// PeriodicTimer raises an interrupt every reload × prescaler input clock
// cycles. Its handler counts ticks on Ticks.
type PeriodicTimer struct {
	// Ticks counts handled updates
	Ticks EventCounter

	// OnTick runs inside the handler's critical section after the count is
	// updated. Optional; must not block.
	OnTick func(tok Token, tick uint32)

	hw        *SharedCell[TimerHW]
	prescaler uint32
	reload    uint32
	state     TimerState
}

// NewPeriodicTimer creates a stopped timer on a published hardware cell
func NewPeriodicTimer(hw *SharedCell[TimerHW]) *PeriodicTimer {
	return &PeriodicTimer{hw: hw}
}

// Configure sets prescaler and reload. Both can only change while the timer
// is stopped; changing them while counting gives one period of undefined
// length.
func (t *PeriodicTimer) Configure(prescaler, reload uint32) error {
	var err error
	WithExclusive(func(tok Token) {
		if t.state == TimerRunning {
			err = ErrTimerRunning
			return
		}
		t.hw.Access(tok, func(hw *TimerHW) {
			maxP, maxR := (*hw).Limits()
			if prescaler == 0 || prescaler > maxP {
				err = ErrInvalidPrescaler
				return
			}
			if reload == 0 || reload > maxR {
				err = ErrInvalidReload
				return
			}
			(*hw).SetPrescaler(prescaler)
			(*hw).SetReload(reload)
			t.prescaler = prescaler
			t.reload = reload
		})
	})
	return err
}

// ConfigureRate picks prescaler and reload for hz updates per second from
// an input clock of clockHz.
func (t *PeriodicTimer) ConfigureRate(clockHz, hz uint32) error {
	var maxP, maxR uint32
	t.hw.With(func(hw *TimerHW) {
		maxP, maxR = (*hw).Limits()
	})
	p, r, err := SolveRate(clockHz, hz, maxP, maxR)
	if err != nil {
		return err
	}
	return t.Configure(p, r)
}

// Settings returns the programmed prescaler and reload
func (t *PeriodicTimer) Settings() (prescaler, reload uint32) {
	WithExclusive(func(tok Token) {
		prescaler, reload = t.prescaler, t.reload
	})
	return
}

// PeriodNs returns the tick period in nanoseconds for an input clock of
// clockHz: reload × prescaler / clockHz.
func (t *PeriodicTimer) PeriodNs(clockHz uint32) uint64 {
	p, r := t.Settings()
	if clockHz == 0 {
		return 0
	}
	return uint64(p) * uint64(r) * 1_000_000_000 / uint64(clockHz)
}

// Start moves Stopped → Running. The update flag is cleared before the
// interrupt request is enabled.
func (t *PeriodicTimer) Start() error {
	var err error
	WithExclusive(func(tok Token) {
		if t.prescaler == 0 || t.reload == 0 {
			err = ErrInvalidReload
			return
		}
		if t.state == TimerRunning {
			return
		}
		t.hw.Access(tok, func(hw *TimerHW) {
			(*hw).ClearUpdate()
			(*hw).SetUpdateInterrupt(true)
			(*hw).SetCounting(true)
		})
		t.state = TimerRunning
	})
	return err
}

// Stop moves Running → Stopped
func (t *PeriodicTimer) Stop() {
	WithExclusive(func(tok Token) {
		t.hw.Access(tok, func(hw *TimerHW) {
			(*hw).SetCounting(false)
			(*hw).SetUpdateInterrupt(false)
			(*hw).ClearUpdate()
		})
		t.state = TimerStopped
	})
}

// State returns the current run state
func (t *PeriodicTimer) State() TimerState {
	return Exclusive(func(tok Token) TimerState { return t.state })
}

// Handle is the interrupt handler body: check the update flag, count,
// clear the flag.
func (t *PeriodicTimer) Handle() {
	WithExclusive(func(tok Token) {
		ok := t.hw.TryAccess(tok, func(hw *TimerHW) {
			if !(*hw).UpdatePending() {
				return
			}
			defer (*hw).ClearUpdate()
			defer func() {
				if r := recover(); r != nil {
					t.Ticks.Miss(tok)
					RecordTiming(EvtMissed, 0, 0, 0, 0)
					DebugAsync("[TICK] tick action failed")
				}
			}()

			if t.state != TimerRunning {
				// update raced with Stop
				t.Ticks.Miss(tok)
				return
			}
			n := t.Ticks.Increment(tok)
			RecordTiming(EvtTick, 0, 0, n, 0)
			if t.OnTick != nil {
				t.OnTick(tok, n)
			}
		})
		if !ok {
			t.Ticks.Miss(tok)
		}
	})
}

// SolveRate finds a prescaler and reload so that clockHz / (p × r) is as
// close to hz as the hardware limits allow. The smallest usable prescaler is
// chosen to keep the reload (and so the resolution) large.
func SolveRate(clockHz, hz, maxPrescaler, maxReload uint32) (prescaler, reload uint32, err error) {
	if hz == 0 || clockHz == 0 || hz > clockHz {
		return 0, 0, ErrInvalidRate
	}
	total := uint64(clockHz) / uint64(hz)
	p := (total + uint64(maxReload) - 1) / uint64(maxReload)
	if p == 0 {
		p = 1
	}
	if p > uint64(maxPrescaler) {
		return 0, 0, ErrInvalidRate
	}
	// round to the nearest reload
	den := p * uint64(hz)
	r := (uint64(clockHz) + den/2) / den
	if r == 0 {
		r = 1
	}
	if r > uint64(maxReload) {
		r = uint64(maxReload)
	}
	return uint32(p), uint32(r), nil
}
