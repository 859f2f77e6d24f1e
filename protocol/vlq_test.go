package protocol

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestVLQCounterValues(t *testing.T) {
	testCases := []struct {
		name  string
		value uint32
		size  int
	}{
		{"zero", 0, 1},
		{"largest one byte", 95, 1},
		{"smallest two byte", 96, 2},
		{"ir pulses", 70000, 3},
		{"half range", 1 << 31, 5},
		{"uptime near wrap", 0xFFFFFFF0, 1},
		{"max", 0xFFFFFFFF, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := NewScratchOutput()
			EncodeVLQUint(out, tc.value)
			data := out.Result()
			if len(data) != tc.size {
				t.Errorf("encoded %d as %d bytes % x, want %d bytes", tc.value, len(data), data, tc.size)
			}

			got, err := DecodeVLQUint(&data)
			if err != nil {
				t.Fatalf("DecodeVLQUint: %v", err)
			}
			if got != tc.value {
				t.Errorf("decoded %d, want %d", got, tc.value)
			}
			if len(data) != 0 {
				t.Errorf("%d bytes left after decode", len(data))
			}
		})
	}
}

func TestVLQCounterSequence(t *testing.T) {
	// events, missed, uptime as they follow the name in a counter payload
	values := []uint32{1 << 31, 0, 0xFFFFFFFF}
	out := NewScratchOutput()
	for _, v := range values {
		EncodeVLQUint(out, v)
	}

	data := out.Result()
	got := make([]uint32, len(values))
	if err := decodeUints(&data, got); err != nil {
		t.Fatalf("decodeUints: %v", err)
	}
	for i := range values {
		if got[i] != values[i] {
			t.Errorf("value %d = %d, want %d", i, got[i], values[i])
		}
	}
}

func TestVLQCounterNames(t *testing.T) {
	testCases := []struct {
		name string
		want []byte
	}{
		{"", []byte{0}},
		{"tim2", []byte{4, 't', 'i', 'm', '2'}},
		{"ir_beam", append([]byte{7}, "ir_beam"...)},
		{strings.Repeat("k", 40), append([]byte{40}, strings.Repeat("k", 40)...)},
	}

	for _, tc := range testCases {
		out := NewScratchOutput()
		EncodeVLQString(out, tc.name)
		data := out.Result()
		if !bytes.Equal(data, tc.want) {
			t.Errorf("EncodeVLQString(%q) = % x, want % x", tc.name, data, tc.want)
			continue
		}
		got, err := DecodeVLQString(&data)
		if err != nil || got != tc.name {
			t.Errorf("DecodeVLQString = %q, %v, want %q", got, err, tc.name)
		}
	}
}

func counterPayload(r CounterReport) []byte {
	out := NewScratchOutput()
	EncodeVLQUint(out, MsgCounter)
	EncodeVLQString(out, r.Name)
	EncodeVLQUint(out, r.Events)
	EncodeVLQUint(out, r.Missed)
	EncodeVLQUint(out, r.Uptime)
	return append([]byte(nil), out.Result()...)
}

func TestVLQTruncatedCounterPayload(t *testing.T) {
	full := counterPayload(CounterReport{Name: "tim2", Events: 1 << 31, Missed: 1 << 31, Uptime: 1 << 31})
	if _, err := ParsePayload(full); err != nil {
		t.Fatalf("ParsePayload(full): %v", err)
	}

	// every cut lands inside the name or one of the 5 byte counters
	for n := 1; n < len(full); n++ {
		if _, err := ParsePayload(full[:n]); !errors.Is(err, ErrBufferTooSmall) {
			t.Errorf("cut at %d/%d: err = %v, want ErrBufferTooSmall", n, len(full), err)
		}
	}
}

func TestVLQNameLongerThanPayload(t *testing.T) {
	out := NewScratchOutput()
	EncodeVLQUint(out, MsgCounter)
	EncodeVLQUint(out, 12)
	out.Output([]byte("tim2"))

	if _, err := ParsePayload(out.Result()); !errors.Is(err, ErrBufferTooSmall) {
		t.Errorf("err = %v, want ErrBufferTooSmall", err)
	}
}

func TestVLQDanglingContinuation(t *testing.T) {
	data := []byte{0x81}
	if _, err := DecodeVLQUint(&data); !errors.Is(err, ErrBufferTooSmall) {
		t.Errorf("err = %v, want ErrBufferTooSmall", err)
	}
	empty := []byte{}
	if _, err := DecodeVLQUint(&empty); !errors.Is(err, ErrBufferTooSmall) {
		t.Errorf("empty err = %v, want ErrBufferTooSmall", err)
	}
}
