//go:build stm32f103

package main

import "machine"

var debugUART *machine.UART

// initDebugUART brings up USART1 on PA9 (TX) and PA10 (RX) at 115200 baud.
// Text and report frames share it, so text is only enabled when frames are
// off.
func initDebugUART() error {
	debugUART = machine.UART1
	return debugUART.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.PA9,
		RX:       machine.PA10,
	})
}

// debugPrintln is the core debug writer
func debugPrintln(s string) {
	if debugUART == nil {
		return
	}
	debugUART.Write([]byte(s))
	debugUART.Write([]byte("\r\n"))
}
