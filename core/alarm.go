package core

// AlarmState is the lifecycle state of an AlarmTimer
type AlarmState uint8

const (
	AlarmIdle AlarmState = iota
	AlarmArmed
	AlarmFired // latched between the match and the end of the handler
)

func (s AlarmState) String() string {
	switch s {
	case AlarmIdle:
		return "idle"
	case AlarmArmed:
		return "armed"
	case AlarmFired:
		return "fired"
	}
	return "unknown"
}

// AlarmTimer fires every Period ticks of a free-running clock by moving the
// compare register forward from its previous value after each match.
//
// The compare value is reprogrammed before the match flag is cleared. The
// other order lets the still-equal counter re-latch the flag and the handler
// runs twice for one period.
type AlarmTimer struct {
	// Fires counts handled matches. Missed counts periods that elapsed
	// while the handler could not run.
	Fires EventCounter

	// OnFire runs inside the handler's critical section. Optional; must not
	// block.
	OnFire func(tok Token, fire uint32)

	hw     *SharedCell[AlarmHW]
	period uint32
	state  AlarmState
	last   uint32 // compare value of the most recent match
}

// NewAlarmTimer creates an idle alarm on a published clock cell
func NewAlarmTimer(hw *SharedCell[AlarmHW]) *AlarmTimer {
	return &AlarmTimer{hw: hw}
}

// Arm programs the first match period ticks from now and enables the
// interrupt request. Re-arming an armed alarm restarts its phase.
func (a *AlarmTimer) Arm(period uint32) error {
	var err error
	WithExclusive(func(tok Token) {
		a.hw.Access(tok, func(hw *AlarmHW) {
			mod := (*hw).Modulus()
			if period == 0 || (mod != 0 && period >= mod) {
				err = ErrInvalidPeriod
				return
			}
			now := (*hw).Counter()
			next := Advance(now, period, mod)
			(*hw).SetCompare(next)
			(*hw).ClearMatch()
			(*hw).SetAlarmInterrupt(true)

			a.period = period
			a.last = now
			a.state = AlarmArmed
		})
	})
	return err
}

// Disable stops the alarm. A match already latched is dropped.
func (a *AlarmTimer) Disable() {
	WithExclusive(func(tok Token) {
		a.hw.Access(tok, func(hw *AlarmHW) {
			(*hw).SetAlarmInterrupt(false)
			(*hw).ClearMatch()
		})
		a.state = AlarmIdle
	})
}

// State returns the lifecycle state
func (a *AlarmTimer) State() AlarmState {
	return Exclusive(func(tok Token) AlarmState { return a.state })
}

// Period returns the armed period in clock ticks
func (a *AlarmTimer) Period() uint32 {
	return Exclusive(func(tok Token) uint32 { return a.period })
}

// LastMatch returns the compare value of the most recent match, or the
// clock value at Arm before the first one
func (a *AlarmTimer) LastMatch() uint32 {
	return Exclusive(func(tok Token) uint32 { return a.last })
}

// NextMatch returns the programmed compare value
func (a *AlarmTimer) NextMatch() uint32 {
	return Apply(a.hw, func(hw *AlarmHW) uint32 { return (*hw).Compare() })
}

// Handle is the interrupt handler body
func (a *AlarmTimer) Handle() {
	WithExclusive(func(tok Token) {
		ok := a.hw.TryAccess(tok, func(hw *AlarmHW) {
			if !(*hw).MatchPending() {
				return
			}
			if a.state != AlarmArmed {
				// match raced with Disable
				(*hw).ClearMatch()
				a.Fires.Miss(tok)
				return
			}
			a.fire(tok, *hw)
		})
		if !ok {
			a.Fires.Miss(tok)
		}
	})
}

// fire runs one match: count, notify, rearm, clear. The clear is deferred so
// it stays the last register access even if OnFire panics.
func (a *AlarmTimer) fire(tok Token, hw AlarmHW) {
	a.state = AlarmFired
	mod := hw.Modulus()
	matched := hw.Compare()
	now := hw.Counter()

	defer hw.ClearMatch()
	defer a.rearm(tok, hw, matched, now, mod)
	defer func() {
		if r := recover(); r != nil {
			a.Fires.Miss(tok)
			RecordTiming(EvtMissed, 0, now, matched, 0)
			DebugAsync("[ALARM] fire action failed")
		}
	}()

	n := a.Fires.Increment(tok)
	RecordTiming(EvtAlarm, 0, now, matched, n)
	if a.OnFire != nil {
		a.OnFire(tok, n)
	}
}

// rearm moves the compare register one period past the match. If the clock
// already ran past that point the whole skipped periods are counted as
// missed and the next match lands on the original phase.
func (a *AlarmTimer) rearm(tok Token, hw AlarmHW, matched, now, mod uint32) {
	next := Advance(matched, a.period, mod)
	late := Elapsed(matched, now, mod)
	if late >= a.period {
		skipped := late / a.period
		// the catch-up distance can pass 2^32 when the modulus is large
		span := (uint64(skipped) + 1) * uint64(a.period)
		next = uint32(Advance(uint64(matched), span, uint64(mod)))
		a.Fires.AddMissed(tok, skipped)
		RecordTiming(EvtRearm, 0, now, next, skipped)
	}
	hw.SetCompare(next)
	a.last = matched
	a.state = AlarmArmed
}
