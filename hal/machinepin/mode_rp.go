//go:build tinygo && rp2040

package machinepin

import "machine"

const inputFloating = machine.PinInput
