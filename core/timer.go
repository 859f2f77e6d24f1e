package core

// TickHz is the rate of the system tick that drives GetTime
const TickHz = 1000

// systemTicks counts system ticks since boot. The SysTick handler is its
// only writer.
var systemTicks EventCounter

// GetTime returns the current system time in ticks (milliseconds)
func GetTime() uint32 {
	return systemTicks.Read()
}

// AdvanceTime records one system tick. Call it from the tick handler only.
func AdvanceTime(tok Token) uint32 {
	return systemTicks.Increment(tok)
}

// TimeSince returns the ticks elapsed after start, across wraparound
func TimeSince(start uint32) uint32 {
	return Elapsed(start, GetTime(), 0)
}

// TimeReached reports whether deadline is at or before now. Deadlines must
// lie less than half the counter range away.
func TimeReached(deadline, now uint32) bool {
	return int32(now-deadline) >= 0
}

// TimerFromMs converts milliseconds to ticks
func TimerFromMs(ms uint32) uint32 {
	return ms * TickHz / 1000
}

// TimerToMs converts ticks to milliseconds
func TimerToMs(ticks uint32) uint32 {
	return ticks * 1000 / TickHz
}

// TickDelay is a Delayer driven by the system tick instead of a dedicated
// timer. Idle runs between polls; firmware points it at WFI.
type TickDelay struct {
	Idle func()
}

// DelayMs blocks until ms ticks have passed
func (d TickDelay) DelayMs(ms uint32) {
	start := GetTime()
	for TimeSince(start) < TimerFromMs(ms) {
		if d.Idle != nil {
			d.Idle()
		}
	}
}
