package protocol

// Encoder builds report frames into a fixed scratch buffer. It never
// allocates once created, so firmware can keep one per output port.
type Encoder struct {
	seq uint8
	out ScratchOutput
}

// NewEncoder creates an encoder starting at sequence 0
func NewEncoder() *Encoder {
	return &Encoder{}
}

// EncodeFrame wraps the payload written by frameData into a frame and
// returns it. The slice is only valid until the next call.
func (e *Encoder) EncodeFrame(frameData func(output OutputBuffer)) []byte {
	e.out.Reset()
	cursor := e.out.CurPosition()

	e.out.Output([]byte{0, MessageDest | e.seq})
	frameData(&e.out)

	changed := len(e.out.DataSince(cursor))
	e.out.Update(cursor, uint8(changed+MessageTrailerSize))

	crc := CRC16(e.out.DataSince(cursor))
	e.out.Output([]byte{
		uint8((crc & 0xFF00) >> 8),
		uint8(crc & 0xFF),
		MessageValueSync,
	})

	e.seq = (e.seq + 1) & MessageSeqMask
	return e.out.Result()
}

// Hello encodes a hello frame
func (e *Encoder) Hello(clockHz uint32) []byte {
	return e.EncodeFrame(func(output OutputBuffer) {
		EncodeVLQUint(output, MsgHello)
		EncodeVLQUint(output, Version)
		EncodeVLQUint(output, clockHz)
	})
}

// Counter encodes a counter report. Names longer than fit in one frame are
// cut.
func (e *Encoder) Counter(r CounterReport) []byte {
	name := r.Name
	// id + 3 counters (5 bytes each worst case) + length prefix
	if room := MessageLengthMax - MessageLengthMin - 1 - 15 - 1; len(name) > room {
		name = name[:room]
	}
	return e.EncodeFrame(func(output OutputBuffer) {
		EncodeVLQUint(output, MsgCounter)
		EncodeVLQString(output, name)
		EncodeVLQUint(output, r.Events)
		EncodeVLQUint(output, r.Missed)
		EncodeVLQUint(output, r.Uptime)
	})
}

// Timing encodes one timing ring record
func (e *Encoder) Timing(t TimingRecord) []byte {
	return e.EncodeFrame(func(output OutputBuffer) {
		EncodeVLQUint(output, MsgTiming)
		EncodeVLQUint(output, uint32(t.EventType))
		EncodeVLQUint(output, uint32(t.OID))
		EncodeVLQUint(output, t.Clock)
		EncodeVLQUint(output, t.Value1)
		EncodeVLQUint(output, t.Value2)
	})
}
