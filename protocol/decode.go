package protocol

import "errors"

var (
	ErrUnknownMessage = errors.New("protocol: unknown message id")
	ErrTrailingData   = errors.New("protocol: trailing bytes after message")
)

// Decoder splits a byte stream into frames. After a bad length, CRC or
// sync byte it drops input up to the next sync byte and carries on.
type Decoder struct {
	input          *FifoBuffer
	isSynchronized bool
	nextSeq        uint8
	started        bool

	// Dropped counts frames discarded for framing or CRC errors.
	// Gaps counts sequence numbers that never arrived.
	Dropped int
	Gaps    int
}

// NewDecoder creates a decoder with room for several frames of input
func NewDecoder() *Decoder {
	return &Decoder{
		input:          NewFifoBuffer(4 * MessageLengthMax),
		isSynchronized: true,
	}
}

// Feed queues raw bytes and returns every complete frame they finish.
// Input beyond the buffer's free space is processed in pieces.
func (d *Decoder) Feed(data []byte) []Frame {
	var frames []Frame
	for len(data) > 0 {
		n := d.input.Write(data)
		data = data[n:]
		frames = append(frames, d.drain()...)
		if n == 0 && d.input.Free() == 0 {
			// a full buffer without a frame boundary is garbage
			d.input.Reset()
			d.isSynchronized = false
		}
	}
	return frames
}

func (d *Decoder) drain() []Frame {
	var frames []Frame
	data := d.input.Data()
	consumed := 0
	pop := func(n int) {
		data = data[n:]
		consumed += n
	}

	for len(data) > 0 {
		if !d.isSynchronized {
			syncPos := -1
			for i, b := range data {
				if b == MessageValueSync {
					syncPos = i
					break
				}
			}
			if syncPos < 0 {
				pop(len(data))
				break
			}
			pop(syncPos + 1)
			d.isSynchronized = true
			continue
		}

		if data[0] == MessageValueSync {
			pop(1)
			continue
		}
		if len(data) < MessageLengthMin {
			break
		}

		msgLen := int(data[MessagePositionLen])
		if msgLen < MessageLengthMin || msgLen > MessageLengthMax {
			d.desync()
			continue
		}
		seq := data[MessagePositionSeq]
		if seq&^MessageSeqMask != MessageDest {
			d.desync()
			continue
		}
		if len(data) < msgLen {
			break
		}
		if data[msgLen-MessageTrailerSync] != MessageValueSync {
			d.desync()
			continue
		}
		frameCRC := uint16(data[msgLen-MessageTrailerCRC])<<8 |
			uint16(data[msgLen-MessageTrailerCRC+1])
		if frameCRC != CRC16(data[:msgLen-MessageTrailerSize]) {
			d.desync()
			continue
		}

		payload := data[MessageHeaderSize : msgLen-MessageTrailerSize]
		frame, err := ParsePayload(payload)
		pop(msgLen)
		if err != nil {
			d.Dropped++
			continue
		}
		frame.Sequence = seq & MessageSeqMask
		d.track(frame.Sequence)
		frames = append(frames, frame)
	}

	d.input.Pop(consumed)
	return frames
}

func (d *Decoder) desync() {
	d.isSynchronized = false
	d.Dropped++
}

func (d *Decoder) track(seq uint8) {
	if d.started && seq != d.nextSeq {
		d.Gaps += int((seq - d.nextSeq) & MessageSeqMask)
	}
	d.started = true
	d.nextSeq = (seq + 1) & MessageSeqMask
}

// ParsePayload decodes the message inside a frame
func ParsePayload(payload []byte) (Frame, error) {
	id, err := DecodeVLQUint(&payload)
	if err != nil {
		return Frame{}, err
	}

	frame := Frame{ID: id}
	var v [5]uint32
	switch id {
	case MsgHello:
		if err := decodeUints(&payload, v[:2]); err != nil {
			return Frame{}, err
		}
		frame.Hello = &Hello{Version: v[0], ClockHz: v[1]}
	case MsgCounter:
		name, err := DecodeVLQString(&payload)
		if err != nil {
			return Frame{}, err
		}
		if err := decodeUints(&payload, v[:3]); err != nil {
			return Frame{}, err
		}
		frame.Counter = &CounterReport{Name: name, Events: v[0], Missed: v[1], Uptime: v[2]}
	case MsgTiming:
		if err := decodeUints(&payload, v[:5]); err != nil {
			return Frame{}, err
		}
		frame.Timing = &TimingRecord{
			EventType: uint8(v[0]),
			OID:       uint8(v[1]),
			Clock:     v[2],
			Value1:    v[3],
			Value2:    v[4],
		}
	default:
		return Frame{}, ErrUnknownMessage
	}
	if len(payload) != 0 {
		return Frame{}, ErrTrailingData
	}
	return frame, nil
}

func decodeUints(payload *[]byte, out []uint32) error {
	for i := range out {
		v, err := DecodeVLQUint(payload)
		if err != nil {
			return err
		}
		out[i] = v
	}
	return nil
}
