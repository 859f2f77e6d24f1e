//go:build rp2040

package main

import "machine"

var debugUART *machine.UART

// InitDebugUART brings up UART0 on GP0 (TX) and GP1 (RX) at 115200 baud
func InitDebugUART() error {
	debugUART = machine.UART0
	err := debugUART.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})
	if err != nil {
		debugUART = nil
	}
	return err
}

// DebugPrintln writes s and a line break to the debug UART
func DebugPrintln(s string) {
	if debugUART == nil {
		return
	}
	debugUART.Write([]byte(s))
	debugUART.Write([]byte("\r\n"))
}
