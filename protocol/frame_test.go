package protocol

import (
	"bytes"
	"strings"
	"testing"
)

func TestCounterFrameRoundTrip(t *testing.T) {
	enc := NewEncoder()
	dec := NewDecoder()

	in := CounterReport{Name: "ir_beam", Events: 70000, Missed: 3, Uptime: 0xFFFFFFF0}
	frames := dec.Feed(enc.Counter(in))
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	got := frames[0].Counter
	if got == nil || *got != in {
		t.Fatalf("decoded %+v, want %+v", got, in)
	}
	if dec.Dropped != 0 || dec.Gaps != 0 {
		t.Errorf("Dropped=%d Gaps=%d on a clean stream", dec.Dropped, dec.Gaps)
	}
}

func TestDecoderSplitFrames(t *testing.T) {
	enc := NewEncoder()
	var stream []byte
	stream = append(stream, enc.Hello(72_000_000)...)
	stream = append(stream, enc.Timing(TimingRecord{EventType: 3, Clock: 55, Value1: 60, Value2: 2})...)

	dec := NewDecoder()
	var frames []Frame
	for _, b := range stream {
		frames = append(frames, dec.Feed([]byte{b})...)
	}
	if len(frames) != 2 {
		t.Fatalf("got %d frames from byte-at-a-time input, want 2", len(frames))
	}
	if h := frames[0].Hello; h == nil || h.ClockHz != 72_000_000 || h.Version != Version {
		t.Errorf("hello = %+v", h)
	}
	if tr := frames[1].Timing; tr == nil || tr.Value1 != 60 || tr.Value2 != 2 {
		t.Errorf("timing = %+v", tr)
	}
	if frames[1].Sequence != 1 {
		t.Errorf("second frame sequence = %d, want 1", frames[1].Sequence)
	}
}

func TestDecoderResyncsAfterCorruption(t *testing.T) {
	enc := NewEncoder()
	good1 := append([]byte(nil), enc.Counter(CounterReport{Name: "a", Events: 1})...)
	bad := append([]byte(nil), enc.Counter(CounterReport{Name: "b", Events: 2})...)
	good2 := append([]byte(nil), enc.Counter(CounterReport{Name: "c", Events: 3})...)
	bad[3] ^= 0x40 // payload bit flip

	var stream bytes.Buffer
	stream.Write([]byte{0x00, 0x13, 0x99, MessageValueSync}) // line noise, then a sync byte
	stream.Write(good1)
	stream.Write(bad)
	stream.Write(good2)

	dec := NewDecoder()
	frames := dec.Feed(stream.Bytes())

	var names []string
	for _, f := range frames {
		if f.Counter != nil {
			names = append(names, f.Counter.Name)
		}
	}
	if strings.Join(names, ",") != "a,c" {
		t.Errorf("decoded %v, want [a c]", names)
	}
	if dec.Dropped == 0 {
		t.Error("corrupt frame not counted as dropped")
	}
	if dec.Gaps != 1 {
		t.Errorf("Gaps = %d, want 1", dec.Gaps)
	}
}

func TestCounterFrameCutsLongNames(t *testing.T) {
	enc := NewEncoder()
	frame := enc.Counter(CounterReport{Name: strings.Repeat("x", 100), Events: ^uint32(0), Missed: ^uint32(0), Uptime: ^uint32(0)})
	if len(frame) > MessageLengthMax {
		t.Fatalf("frame is %d bytes, max %d", len(frame), MessageLengthMax)
	}
	frames := NewDecoder().Feed(frame)
	if len(frames) != 1 || frames[0].Counter == nil {
		t.Fatalf("long-name frame did not decode")
	}
	if frames[0].Counter.Events != ^uint32(0) {
		t.Errorf("Events = %d", frames[0].Counter.Events)
	}
}

func TestParsePayloadUnknown(t *testing.T) {
	if _, err := ParsePayload([]byte{0x7F}); err != ErrUnknownMessage {
		t.Errorf("err = %v, want ErrUnknownMessage", err)
	}
}
