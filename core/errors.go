package core

import "errors"

// Configuration errors are programmer errors. They are reported during
// setup and must stop startup.
var (
	ErrAlreadyPublished = errors.New("core: shared cell already published")
	ErrNotPublished     = errors.New("core: shared cell not published")
	ErrTimerRunning     = errors.New("core: timer must be stopped to reconfigure")
	ErrInvalidPrescaler = errors.New("core: prescaler out of range")
	ErrInvalidReload    = errors.New("core: reload value out of range")
	ErrInvalidRate      = errors.New("core: requested rate not reachable")
	ErrInvalidPeriod    = errors.New("core: alarm period must be non-zero and below the clock modulus")
	ErrInvalidEdge      = errors.New("core: edge policy must enable at least one edge")
	ErrLineInUse        = errors.New("core: edge line already attached")
	ErrLineNotServed    = errors.New("core: edge line not served by this vector")
	ErrClockTooFast     = errors.New("core: system clock above device maximum")
)

// ErrNotReady is returned when hardware fails to report ready within its
// spin budget.
var ErrNotReady = errors.New("core: hardware not ready")

// Must panics if err is non-nil. Used by firmware main functions where a
// configuration error has nowhere to go.
func Must(err error) {
	if err != nil {
		panic(err)
	}
}
