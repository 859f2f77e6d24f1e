//go:build rp2040

package main

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// PIO instruction encodings used by the edge counter
const (
	pioJmpXDec     = 0x0040 // jmp x--, addr
	pioWaitGPIO    = 0x2000 // wait 0 gpio n
	pioWaitHigh    = 0x0080 // polarity 1
	pioPushNoblock = 0x8000 // push noblock
	pioMovXNotNull = 0xa02b // mov x, ~null
	pioMovISRNotX  = 0xa0c9 // mov isr, ~x
)

// counterOrigin pins the program to address 0 so the jmp target needs no
// relocation
const counterOrigin = 0

// buildCounterProgram returns a program that counts rising edges of gpio.
// X counts down from all ones; after every edge ~X is the edge count and is
// pushed without blocking. A push into a full RX FIFO is dropped, so the FIFO
// keeps the oldest unread counts. The rising edge interrupt drains it on every
// edge, and X keeps counting regardless, so the first push after a drain is
// current again.
func buildCounterProgram(gpio uint8) []uint16 {
	return []uint16{
		pioMovXNotNull,                           // 0: mov x, ~null
		pioWaitGPIO | uint16(gpio),               // 1: wait 0 gpio n   (wrap target)
		pioWaitGPIO | pioWaitHigh | uint16(gpio), // 2: wait 1 gpio n
		pioJmpXDec | 4,                           // 3: jmp x--, 4
		pioMovISRNotX,                            // 4: mov isr, ~x
		pioPushNoblock,                           // 5: push noblock     (wrap)
	}
}

// pioCounter is a core.CountingTimerHW whose counter is a PIO state machine
// counting edges of a pin, the RP2040 stand-in for TIM2 in external clock
// mode. The update flag is derived from the count: it is set once reload
// edges have arrived since the last update.
type pioCounter struct {
	pio *rp2pio.PIO
	sm  rp2pio.StateMachine
	pin machine.Pin

	loaded bool
	reload uint32
	count  uint32 // latest value from the FIFO
	base   uint32 // count at the last update
}

func newPIOCounter(pin machine.Pin) *pioCounter {
	p := rp2pio.PIO0
	return &pioCounter{pio: p, sm: p.StateMachine(0), pin: pin, reload: 1}
}

// load claims the state machine and installs the program. It leaves the
// machine stopped.
func (c *pioCounter) load() error {
	if c.loaded {
		return nil
	}
	c.sm.TryClaim()
	program := buildCounterProgram(uint8(c.pin))
	offset, err := c.pio.AddProgram(program, counterOrigin)
	if err != nil {
		return err
	}
	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetWrap(offset+uint8(len(program))-1, offset+1)
	c.sm.Init(offset, cfg)
	c.loaded = true
	return nil
}

func (c *pioCounter) drain() {
	for !c.sm.IsRxFIFOEmpty() {
		c.count = c.sm.RxGet()
	}
}

func (c *pioCounter) Limits() (uint32, uint32) { return 1, 1<<31 - 1 }

func (c *pioCounter) SetPrescaler(p uint32) {}

func (c *pioCounter) SetReload(r uint32) { c.reload = r }

func (c *pioCounter) SetCounting(on bool) { c.sm.SetEnabled(on) }

// SetUpdateInterrupt is gated by the pin interrupt set up in ExternalClock
func (c *pioCounter) SetUpdateInterrupt(on bool) {}

func (c *pioCounter) UpdatePending() bool {
	return c.sinceUpdate() >= c.reload
}

// ClearUpdate drops every whole period seen so far, as the hardware flag
// holds only one
func (c *pioCounter) ClearUpdate() {
	n := c.sinceUpdate()
	c.base += n / c.reload * c.reload
}

// Count wraps at reload like TIM2's CNT, so a pending update is not counted
// twice
func (c *pioCounter) Count() uint32 {
	return c.sinceUpdate() % c.reload
}

func (c *pioCounter) sinceUpdate() uint32 {
	c.drain()
	return c.count - c.base
}
