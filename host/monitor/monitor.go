// Package monitor reads report frames from a board and keeps the latest
// value of every counter
package monitor

import (
	"errors"
	"io"
	"sync"
	"time"

	"irqlab/protocol"
)

// Sample is the latest report for one counter with its arrival time
type Sample struct {
	protocol.CounterReport
	Received time.Time
}

// Monitor decodes frames from a port in a background goroutine
type Monitor struct {
	port    io.ReadCloser
	decoder *protocol.Decoder

	mu       sync.Mutex
	latest   map[string]Sample
	hello    *protocol.Hello
	timings  []protocol.TimingRecord
	frames   chan protocol.Frame
	readErr  error
	stopChan chan struct{}
	doneChan chan struct{}

	now func() time.Time
}

// New starts a monitor on port. Frames are also delivered on Frames();
// when nobody reads them the oldest are dropped.
func New(port io.ReadCloser) *Monitor {
	m := &Monitor{
		port:     port,
		decoder:  protocol.NewDecoder(),
		latest:   make(map[string]Sample),
		frames:   make(chan protocol.Frame, 64),
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
		now:      time.Now,
	}
	go m.readLoop()
	return m
}

// Frames delivers every decoded frame
func (m *Monitor) Frames() <-chan protocol.Frame {
	return m.frames
}

// Done is closed when the read loop has stopped
func (m *Monitor) Done() <-chan struct{} {
	return m.doneChan
}

// Err returns the error that stopped the read loop, if any
func (m *Monitor) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readErr
}

// Latest returns the most recent sample for name
func (m *Monitor) Latest(name string) (Sample, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.latest[name]
	return s, ok
}

// Snapshot returns the most recent sample of every counter
func (m *Monitor) Snapshot() map[string]Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]Sample, len(m.latest))
	for k, v := range m.latest {
		out[k] = v
	}
	return out
}

// Hello returns the board announcement, if one was seen
func (m *Monitor) Hello() (protocol.Hello, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hello == nil {
		return protocol.Hello{}, false
	}
	return *m.hello, true
}

// Timings returns the timing records received so far
func (m *Monitor) Timings() []protocol.TimingRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]protocol.TimingRecord(nil), m.timings...)
}

// Close stops the read loop and closes the port
func (m *Monitor) Close() error {
	close(m.stopChan)
	err := m.port.Close()
	<-m.doneChan
	return err
}

func (m *Monitor) readLoop() {
	defer close(m.doneChan)
	defer close(m.frames)

	buffer := make([]byte, 256)
	for {
		select {
		case <-m.stopChan:
			return
		default:
		}

		n, err := m.port.Read(buffer)
		if n > 0 {
			m.dispatch(buffer[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
				return
			}
			select {
			case <-m.stopChan:
				return
			default:
			}
			m.mu.Lock()
			m.readErr = err
			m.mu.Unlock()
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func (m *Monitor) dispatch(data []byte) {
	m.mu.Lock()
	frames := m.decoder.Feed(data)
	for _, f := range frames {
		switch {
		case f.Counter != nil:
			m.latest[f.Counter.Name] = Sample{CounterReport: *f.Counter, Received: m.now()}
		case f.Hello != nil:
			h := *f.Hello
			m.hello = &h
		case f.Timing != nil:
			m.timings = append(m.timings, *f.Timing)
		}
	}
	m.mu.Unlock()

	for _, f := range frames {
		select {
		case m.frames <- f:
		default:
			// drop the oldest so the newest is kept
			select {
			case <-m.frames:
			default:
			}
			select {
			case m.frames <- f:
			default:
			}
		}
	}
}

// Stats returns the decoder's framing error counts
func (m *Monitor) Stats() (dropped, gaps int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.decoder.Dropped, m.decoder.Gaps
}
