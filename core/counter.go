package core

import "sync/atomic"

// EventCounter is a monotonic event count with a companion count of events
// that were detected but could not be handled. Both wrap at 2^32.
//
// Writers must hold a critical section (the Token parameter). Each counter
// has exactly one writing context. Readers never block.
type EventCounter struct {
	events atomic.Uint32
	missed atomic.Uint32
}

// Counts is a point-in-time copy of an EventCounter
type Counts struct {
	Events uint32
	Missed uint32
}

// Read returns the current event count. Safe from any context.
func (c *EventCounter) Read() uint32 {
	return c.events.Load()
}

// Missed returns the current missed-event count
func (c *EventCounter) Missed() uint32 {
	return c.missed.Load()
}

// Snapshot returns both counts
func (c *EventCounter) Snapshot() Counts {
	return Counts{Events: c.events.Load(), Missed: c.missed.Load()}
}

// Increment records one event and returns the new count
func (c *EventCounter) Increment(tok Token) uint32 {
	return c.events.Add(1)
}

// Miss records one missed event
func (c *EventCounter) Miss(tok Token) uint32 {
	return c.missed.Add(1)
}

// AddMissed records n missed events at once
func (c *EventCounter) AddMissed(tok Token, n uint32) uint32 {
	return c.missed.Add(n)
}

// Since returns how many events happened after a previous Read, taking
// wraparound into account.
func (c *EventCounter) Since(prev uint32) uint32 {
	return Elapsed(prev, c.events.Load(), 0)
}
