package core

// TimerHW is a reload timer such as TIM2 or SysTick.
// Prescaler and reload are given as divide ratios (>= 1); implementations
// that store N-1 in their registers do the conversion.
type TimerHW interface {
	// Limits returns the largest prescaler and reload the hardware accepts
	Limits() (maxPrescaler, maxReload uint32)

	// SetPrescaler sets the input clock divider
	SetPrescaler(p uint32)

	// SetReload sets the number of prescaled ticks per update
	SetReload(r uint32)

	// SetCounting starts or stops the counter
	SetCounting(on bool)

	// SetUpdateInterrupt enables the update interrupt request
	SetUpdateInterrupt(on bool)

	// UpdatePending reads the update flag (UIF / COUNTFLAG)
	UpdatePending() bool

	// ClearUpdate clears the update flag
	ClearUpdate()
}

// AlarmHW is a free-running clock with one compare register (RTC alarm)
type AlarmHW interface {
	// Modulus is the value at which Counter wraps to zero; 0 means 2^32
	Modulus() uint32

	// Counter reads the free-running clock
	Counter() uint32

	// Compare reads the programmed compare value
	Compare() uint32

	// SetCompare programs the next match
	SetCompare(v uint32)

	// SetAlarmInterrupt enables the match interrupt request
	SetAlarmInterrupt(on bool)

	// MatchPending reads the match flag
	MatchPending() bool

	// ClearMatch clears the match flag
	ClearMatch()
}

// EdgeHW is an external interrupt controller such as EXTI
type EdgeHW interface {
	// SetEdges selects which transitions of line latch a request
	SetEdges(line Line, rising, falling bool)

	// SetLineEnabled masks or unmasks line at the edge controller
	SetLineEnabled(line Line, on bool)

	// Pending reads the latched request bit of line
	Pending(line Line) bool

	// Acknowledge write-clears the latched request bit of line
	Acknowledge(line Line)
}

// CountingTimerHW is a reload timer whose running count can be read, such as
// TIM2 clocked from an external pin
type CountingTimerHW interface {
	TimerHW

	// Count reads the counter in prescaled ticks since the last update
	Count() uint32
}
