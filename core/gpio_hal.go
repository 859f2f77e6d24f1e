package core

// Level is the logic level of a digital signal
type Level bool

const (
	Low  Level = false
	High Level = true
)

// String returns "high" or "low"
func (l Level) String() string {
	if l {
		return "high"
	}
	return "low"
}

// Direction selects a pin as input or output
type Direction uint8

const (
	Input Direction = iota
	Output
)

// Pull selects the internal bias resistor of an input
type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// Pin is the digital I/O capability consumed by the core.
// Platform-specific implementations handle actual hardware control.
type Pin interface {
	// Configure sets the pin direction and bias
	// Returns error if the pin is invalid or cannot be claimed
	Configure(dir Direction, pull Pull) error

	// Read samples the current input level
	Read() Level

	// Write drives an output pin
	Write(level Level)
}

// Toggle inverts an output by reading back its current level
func Toggle(p Pin) {
	p.Write(!p.Read())
}

// IdleLevel returns the level an input rests at for the given bias.
// A pulled-up button reads High until pressed.
func IdleLevel(pull Pull) Level {
	return pull != PullDown
}
