// Package report publishes counter samples from a demo's foreground loop.
package report

import (
	"io"
	"log"
	"strconv"

	"irqlab/core"
	"irqlab/protocol"
)

// Reporter publishes one counter sample. It is called from the foreground
// only and may block.
type Reporter interface {
	Report(r protocol.CounterReport) error
}

// Sample reads c into a report stamped with the system tick
func Sample(name string, c *core.EventCounter) protocol.CounterReport {
	counts := c.Snapshot()
	return protocol.CounterReport{
		Name:   name,
		Events: counts.Events,
		Missed: counts.Missed,
		Uptime: core.TimerToMs(core.GetTime()),
	}
}

// FormatLine renders a report the way the console shows it:
// "name: count" with the missed count appended when non-zero
func FormatLine(r protocol.CounterReport) string {
	line := r.Name + ": " + strconv.FormatUint(uint64(r.Events), 10)
	if r.Missed != 0 {
		line += " (missed " + strconv.FormatUint(uint64(r.Missed), 10) + ")"
	}
	return line
}

// Debug writes reports through core.DebugPrintln
type Debug struct{}

// Report implements Reporter
func (Debug) Report(r protocol.CounterReport) error {
	core.DebugPrintln(FormatLine(r))
	return nil
}

// Frames writes reports as protocol frames, for the host monitor
type Frames struct {
	w   io.Writer
	enc *protocol.Encoder
}

// NewFrames creates a frame reporter on w and announces the board clock
func NewFrames(w io.Writer, clockHz uint32) (*Frames, error) {
	f := &Frames{w: w, enc: protocol.NewEncoder()}
	if _, err := w.Write(f.enc.Hello(clockHz)); err != nil {
		return nil, err
	}
	return f, nil
}

// Report implements Reporter
func (f *Frames) Report(r protocol.CounterReport) error {
	_, err := f.w.Write(f.enc.Counter(r))
	return err
}

// Timings writes the handler timing ring as frames
func (f *Frames) Timings() error {
	for _, evt := range core.TimingEvents() {
		_, err := f.w.Write(f.enc.Timing(protocol.TimingRecord{
			EventType: evt.EventType,
			OID:       evt.OID,
			Clock:     evt.Clock,
			Value1:    evt.Value1,
			Value2:    evt.Value2,
		}))
		if err != nil {
			return err
		}
	}
	return nil
}

// Log writes reports to a standard logger
type Log struct {
	Logger *log.Logger
}

// Report implements Reporter
func (l Log) Report(r protocol.CounterReport) error {
	if l.Logger == nil {
		log.Print(FormatLine(r))
		return nil
	}
	l.Logger.Print(FormatLine(r))
	return nil
}

// Multi sends every report to each reporter and returns the first error
type Multi []Reporter

// Report implements Reporter
func (m Multi) Report(r protocol.CounterReport) error {
	var first error
	for _, rep := range m {
		if err := rep.Report(r); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Recorder keeps every report, for tests
type Recorder struct {
	Reports []protocol.CounterReport

	// Err, if set, is returned by Report
	Err error
}

// Report implements Reporter
func (r *Recorder) Report(rep protocol.CounterReport) error {
	if r.Err != nil {
		return r.Err
	}
	r.Reports = append(r.Reports, rep)
	return nil
}

// Last returns the newest report for name
func (r *Recorder) Last(name string) (protocol.CounterReport, bool) {
	for i := len(r.Reports) - 1; i >= 0; i-- {
		if r.Reports[i].Name == name {
			return r.Reports[i], true
		}
	}
	return protocol.CounterReport{}, false
}
