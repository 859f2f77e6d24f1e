package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TimingEvent captures a handler event for post-mortem analysis
type TimingEvent struct {
	EventType uint8  // Event type code
	OID       uint8  // Line or timer number
	Clock     uint32 // Counter value at event, when the source has one
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtEdge   = 1 // edge line handled
	EvtTick   = 2 // periodic update handled
	EvtAlarm  = 3 // alarm match handled
	EvtMissed = 4 // request dropped or action failed
	EvtRearm  = 5 // alarm compare moved past missed periods
)

const (
	TimingRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// Timing capture ring buffer, written from handlers only
	timingRing     [TimingRingSize]TimingEvent
	timingRingHead uint8        // Next write position
	timingEnabled  bool  = true // Always capture timing events

	// Async debug output channel
	debugChan chan string
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// InitAsyncDebug starts the async debug output goroutine
// Call this from main() after SetDebugWriter
func InitAsyncDebug() {
	debugChan = make(chan string, 16)
	go debugOutputWorker()
}

func debugOutputWorker() {
	for msg := range debugChan {
		if debugPrintln != nil {
			debugPrintln(msg)
		}
	}
}

// DebugPrintln writes a debug message using the platform-specific writer.
// Never call it from a handler; use DebugAsync there.
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// DebugAsync queues a debug message for async output (non-blocking)
// Returns immediately even if channel is full (drops message)
func DebugAsync(msg string) {
	if debugChan != nil {
		select {
		case debugChan <- msg:
		default:
		}
	}
}

// RecordTiming captures a timing event in the ring buffer.
// Callers hold a critical section; every handler in this package does.
func RecordTiming(eventType, oid uint8, clock, value1, value2 uint32) {
	if !timingEnabled {
		return
	}
	idx := timingRingHead
	timingRing[idx] = TimingEvent{
		EventType: eventType,
		OID:       oid,
		Clock:     clock,
		Value1:    value1,
		Value2:    value2,
	}
	timingRingHead = (idx + 1) % TimingRingSize
}

// TimingEvents returns the ring contents from oldest to newest
func TimingEvents() []TimingEvent {
	return Exclusive(func(tok Token) []TimingEvent {
		events := make([]TimingEvent, 0, TimingRingSize)
		start := timingRingHead
		for i := uint8(0); i < TimingRingSize; i++ {
			evt := timingRing[(start+i)%TimingRingSize]
			if evt.EventType == 0 {
				continue
			}
			events = append(events, evt)
		}
		return events
	})
}

// EventName returns the short name used in dumps
func EventName(eventType uint8) string {
	switch eventType {
	case EvtEdge:
		return "EDGE"
	case EvtTick:
		return "TICK"
	case EvtAlarm:
		return "ALARM"
	case EvtMissed:
		return "MISSED!"
	case EvtRearm:
		return "REARM"
	default:
		return "UNKNOWN"
	}
}

// DumpTimingRing outputs the timing ring buffer (call on shutdown/error).
// The ring is copied under a critical section; printing happens outside it.
func DumpTimingRing() {
	if debugPrintln == nil {
		return
	}

	events := TimingEvents()
	debugPrintln("[TIMING] === Timing Ring Dump ===")
	debugPrintln("[TIMING] Events captured: " + itoa(len(events)))
	for _, evt := range events {
		debugPrintln("[TIMING] " + EventName(evt.EventType) +
			" oid=" + itoa(int(evt.OID)) +
			" clock=" + utoa(evt.Clock) +
			" v1=" + utoa(evt.Value1) +
			" v2=" + utoa(evt.Value2))
	}
	debugPrintln("[TIMING] === End Dump ===")
}

// ClearTimingRing clears the timing buffer
func ClearTimingRing() {
	WithExclusive(func(tok Token) {
		for i := range timingRing {
			timingRing[i] = TimingEvent{}
		}
		timingRingHead = 0
	})
}
