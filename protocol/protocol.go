// Package protocol frames counter reports sent from the firmware to a host
// over a serial line
package protocol

// Version is the report protocol version carried in hello frames
const Version = 1

// Frame layout: length, sequence, payload, CRC16 (big endian), sync byte
const (
	MessageMax         = 128 // scratch buffer size, room for a few frames
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 64
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E
	MessageDest        = 0x10

	// Sequence numbers use the low nibble; the high nibble is MessageDest
	MessageSeqMask = 0x0F
)

// Message IDs, the first VLQ of every payload
const (
	MsgHello   = 1 // version, clock Hz
	MsgCounter = 2 // name, events, missed, uptime ms
	MsgTiming  = 3 // event type, oid, clock, value1, value2
)

// Hello announces the firmware after reset
type Hello struct {
	Version uint32
	ClockHz uint32
}

// CounterReport is one sample of an event counter
type CounterReport struct {
	Name   string
	Events uint32
	Missed uint32
	Uptime uint32 // ms since boot
}

// TimingRecord is one entry of the handler timing ring
type TimingRecord struct {
	EventType uint8
	OID       uint8
	Clock     uint32
	Value1    uint32
	Value2    uint32
}

// Frame is a decoded message with its sequence number
type Frame struct {
	Sequence uint8
	ID       uint32
	Hello    *Hello
	Counter  *CounterReport
	Timing   *TimingRecord
}
