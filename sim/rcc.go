package sim

// RCC models the reset and clock control ready handshakes. The crystal and
// the PLL report ready after a fixed number of status polls.
type RCC struct {
	HSEPolls int
	PLLPolls int

	m         *Machine
	hseOn     bool
	pllOn     bool
	hsePolled int
	pllPolled int
	pllMul    uint32
	pllSource bool
	latency   uint8

	// Order records the bring-up calls in sequence
	Order []string
}

// NewRCC creates a clock block whose oscillators settle after the given
// number of polls. A negative count never settles.
func (m *Machine) NewRCC(hsePolls, pllPolls int) *RCC {
	return &RCC{m: m, HSEPolls: hsePolls, PLLPolls: pllPolls}
}

// EnableHSE implements core.ClockHW
func (r *RCC) EnableHSE() {
	r.hseOn = true
	r.Order = append(r.Order, "hse")
}

// HSEReady implements core.ClockHW
func (r *RCC) HSEReady() bool {
	r.m.poll()
	if !r.hseOn || r.HSEPolls < 0 {
		return false
	}
	r.hsePolled++
	return r.hsePolled > r.HSEPolls
}

// ConfigurePLL implements core.ClockHW
func (r *RCC) ConfigurePLL(mul uint32) {
	r.pllMul = mul
	r.Order = append(r.Order, "pllmul")
}

// EnablePLL implements core.ClockHW
func (r *RCC) EnablePLL() {
	r.pllOn = true
	r.Order = append(r.Order, "pll")
}

// PLLReady implements core.ClockHW
func (r *RCC) PLLReady() bool {
	r.m.poll()
	if !r.pllOn || r.PLLPolls < 0 {
		return false
	}
	r.pllPolled++
	return r.pllPolled > r.PLLPolls
}

// SelectPLL implements core.ClockHW
func (r *RCC) SelectPLL() {
	r.pllSource = true
	r.Order = append(r.Order, "sw")
}

// SetFlashLatency implements core.ClockHW
func (r *RCC) SetFlashLatency(waitStates uint8) {
	r.latency = waitStates
	r.Order = append(r.Order, "latency")
}

// Sysclk returns the system clock the block is producing from an 8 MHz
// crystal, or the 8 MHz internal oscillator before the switch
func (r *RCC) Sysclk() uint32 {
	if !r.pllSource {
		return 8_000_000
	}
	return 8_000_000 * r.pllMul
}

// FlashLatency returns the programmed wait states
func (r *RCC) FlashLatency() uint8 {
	return r.latency
}
