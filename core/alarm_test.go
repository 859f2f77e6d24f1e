package core_test

import (
	"errors"
	"testing"

	"irqlab/core"
	"irqlab/sim"
)

const (
	rtcAlarmIRQ core.IRQ = 41
	tickCycles           = 100
)

func newSimAlarm(t *testing.T, modulus uint32) (*sim.Machine, *sim.RTC, *core.AlarmTimer) {
	t.Helper()
	m := sim.New(1_000_000)
	m.Attach()
	t.Cleanup(m.Detach)

	rtc := m.NewRTC(tickCycles, modulus)
	cell := &core.SharedCell[core.AlarmHW]{}
	cell.Publish(rtc)
	alarm := core.NewAlarmTimer(cell)
	m.IC.Connect(rtcAlarmIRQ, alarm.Handle, rtc.Asserted)
	core.EnableIRQ(m.IC, rtcAlarmIRQ, 2, nil)
	return m, rtc, alarm
}

func ticks(n uint64) uint64 { return n * tickCycles }

func TestAlarmFiresEveryPeriod(t *testing.T) {
	m, rtc, alarm := newSimAlarm(t, 0)
	if err := alarm.Arm(10); err != nil {
		t.Fatalf("Arm: %v", err)
	}

	m.Advance(ticks(9))
	if alarm.Fires.Read() != 0 {
		t.Fatalf("fired early at counter %d", rtc.Counter())
	}
	m.Advance(ticks(1))
	if alarm.Fires.Read() != 1 {
		t.Fatalf("Fires = %d at counter 10, want 1", alarm.Fires.Read())
	}
	if next := alarm.NextMatch(); next != 20 {
		t.Errorf("NextMatch = %d, want 20", next)
	}

	// exactly one period later, not before
	m.Advance(ticks(9))
	if alarm.Fires.Read() != 1 {
		t.Errorf("Fires = %d one tick before the second period, want 1", alarm.Fires.Read())
	}
	m.Advance(ticks(1))
	if alarm.Fires.Read() != 2 {
		t.Errorf("Fires = %d after two periods, want 2", alarm.Fires.Read())
	}

	if got := m.IC.Deliveries(rtcAlarmIRQ); got != 2 {
		t.Errorf("handler ran %d times, want 2", got)
	}
	if rtc.Relatches != 0 {
		t.Errorf("flag re-latched %d times on the old compare value", rtc.Relatches)
	}
	if alarm.State() != core.AlarmArmed {
		t.Errorf("State() = %v, want armed", alarm.State())
	}
	if alarm.LastMatch() != 20 {
		t.Errorf("LastMatch = %d, want 20", alarm.LastMatch())
	}
}

func TestAlarmMissedPeriods(t *testing.T) {
	m, _, alarm := newSimAlarm(t, 0)
	core.Must(alarm.Arm(10))

	m.Advance(ticks(20))
	if alarm.Fires.Read() != 2 {
		t.Fatalf("Fires = %d, want 2", alarm.Fires.Read())
	}

	// hold off the handler for three and a half periods
	tok := core.Enter()
	m.Advance(ticks(35))
	core.Exit(tok)

	got := alarm.Fires.Snapshot()
	if got.Events != 3 || got.Missed != 2 {
		t.Errorf("counts = %+v, want 3 fires and 2 missed", got)
	}
	// phase is kept: 30 fired late, 40 and 50 were skipped
	if next := alarm.NextMatch(); next != 60 {
		t.Errorf("NextMatch = %d, want 60", next)
	}
	m.Advance(ticks(5))
	if alarm.Fires.Read() != 4 {
		t.Errorf("Fires = %d after catching up, want 4", alarm.Fires.Read())
	}
}

func TestAlarmWrapsAtModulus(t *testing.T) {
	m, rtc, alarm := newSimAlarm(t, 50)
	rtc.SetCounter(45)
	core.Must(alarm.Arm(10))

	if next := alarm.NextMatch(); next != 5 {
		t.Fatalf("NextMatch = %d, want 5", next)
	}
	m.Advance(ticks(10))
	if alarm.Fires.Read() != 1 {
		t.Errorf("Fires = %d across the wrap, want 1", alarm.Fires.Read())
	}
	if next := alarm.NextMatch(); next != 15 {
		t.Errorf("NextMatch = %d, want 15", next)
	}
}

func TestAlarmArmRejectsPeriod(t *testing.T) {
	_, _, alarm := newSimAlarm(t, 50)
	for _, period := range []uint32{0, 50, 51} {
		if err := alarm.Arm(period); !errors.Is(err, core.ErrInvalidPeriod) {
			t.Errorf("Arm(%d): err = %v, want ErrInvalidPeriod", period, err)
		}
	}
	if alarm.State() != core.AlarmIdle {
		t.Errorf("State() = %v after rejected Arm, want idle", alarm.State())
	}
}

func TestAlarmDisable(t *testing.T) {
	m, _, alarm := newSimAlarm(t, 0)
	core.Must(alarm.Arm(10))
	m.Advance(ticks(10))
	alarm.Disable()
	m.Advance(ticks(30))

	if alarm.Fires.Read() != 1 {
		t.Errorf("Fires = %d, want 1", alarm.Fires.Read())
	}
	if alarm.State() != core.AlarmIdle {
		t.Errorf("State() = %v, want idle", alarm.State())
	}
}

// largeClock is an alarm clock with a modulus above 2^31, stepped by hand
type largeClock struct {
	mod, counter, compare uint32
	pending               bool
}

func (c *largeClock) Modulus() uint32           { return c.mod }
func (c *largeClock) Counter() uint32           { return c.counter }
func (c *largeClock) Compare() uint32           { return c.compare }
func (c *largeClock) SetCompare(v uint32)       { c.compare = v }
func (c *largeClock) SetAlarmInterrupt(on bool) {}
func (c *largeClock) MatchPending() bool        { return c.pending }
func (c *largeClock) ClearMatch()               { c.pending = false }

func TestAlarmCatchUpPastHalfRange(t *testing.T) {
	const (
		mod    = 0xF0000000
		period = 0x60000000
	)
	clock := &largeClock{mod: mod}
	cell := &core.SharedCell[core.AlarmHW]{}
	cell.Publish(clock)
	alarm := core.NewAlarmTimer(cell)
	core.Must(alarm.Arm(period))

	// the handler runs two whole periods after the match
	clock.counter = core.Advance(uint32(period), 2*period+0x10, mod)
	clock.pending = true
	alarm.Handle()

	if got := alarm.Fires.Snapshot(); got.Events != 1 || got.Missed != 2 {
		t.Errorf("Fires = %+v, want 1 event and 2 missed", got)
	}
	// period + 3 periods, wrapped once
	if next := alarm.NextMatch(); next != 0x90000000 {
		t.Errorf("NextMatch = %#x, want 0x90000000", next)
	}
	if clock.pending {
		t.Error("match flag left set")
	}
}
