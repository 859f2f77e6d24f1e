//go:build tinygo && stm32

package machinepin

import "machine"

// mode 0 on the F1 is the analog input
const inputFloating = machine.PinInputFloating
