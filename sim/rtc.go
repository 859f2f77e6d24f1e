package sim

// RTC models the F1 real-time clock: a prescaler divides the core clock
// into ticks, the counter counts ticks modulo Modulus and the alarm flag is
// set on the tick where the counter equals the compare register.
type RTC struct {
	m         *Machine
	prescaler uint64
	modulus   uint32
	counter   uint32
	compare   uint32
	alrie     bool
	alrf      bool
	last      uint64

	// Matches counts flag sets from the counter reaching compare.
	// Relatches counts flag sets caused by clearing the flag while the
	// counter still equals compare.
	Matches   uint64
	Relatches uint64
}

// NewRTC creates a running clock with a tick every prescaler cycles that
// wraps at modulus (0: 2^32)
func (m *Machine) NewRTC(prescaler uint64, modulus uint32) *RTC {
	if prescaler == 0 {
		panic("sim: rtc prescaler must be non-zero")
	}
	r := &RTC{m: m, prescaler: prescaler, modulus: modulus, last: m.Now(), compare: ^uint32(0)}
	m.Add(r)
	return r
}

// Modulus implements core.AlarmHW
func (r *RTC) Modulus() uint32 {
	return r.modulus
}

// Counter implements core.AlarmHW
func (r *RTC) Counter() uint32 {
	r.m.poll()
	return r.counter
}

// Compare implements core.AlarmHW
func (r *RTC) Compare() uint32 {
	return r.compare
}

// SetCompare implements core.AlarmHW
func (r *RTC) SetCompare(v uint32) {
	r.compare = v
}

// SetAlarmInterrupt implements core.AlarmHW
func (r *RTC) SetAlarmInterrupt(on bool) {
	r.alrie = on
}

// MatchPending implements core.AlarmHW
func (r *RTC) MatchPending() bool {
	r.m.poll()
	return r.alrf
}

// ClearMatch implements core.AlarmHW. The comparator still sees the counter
// equal to compare for the rest of the tick and sets the flag again.
func (r *RTC) ClearMatch() {
	r.alrf = false
	if r.counter == r.compare {
		r.alrf = true
		r.Relatches++
	}
}

// SetCounter loads the counter, as writing RTC_CNT does
func (r *RTC) SetCounter(v uint32) {
	if r.modulus != 0 {
		v %= r.modulus
	}
	r.counter = v
}

// TickCycles returns the number of core cycles per clock tick
func (r *RTC) TickCycles() uint64 {
	return r.prescaler
}

// Asserted is the alarm interrupt request line
func (r *RTC) Asserted() bool {
	return r.alrie && r.alrf
}

// NextEvent implements Device
func (r *RTC) NextEvent() (uint64, bool) {
	return r.last + r.prescaler, true
}

// Sync implements Device
func (r *RTC) Sync(now uint64) {
	for r.last+r.prescaler <= now {
		r.last += r.prescaler
		r.counter++
		if r.modulus != 0 && r.counter >= r.modulus {
			r.counter = 0
		}
		if r.counter == r.compare {
			r.alrf = true
			r.Matches++
		}
	}
}
