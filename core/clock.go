package core

const (
	// MaxSysclkHz is the fastest the F1 core and buses may run
	MaxSysclkHz = 72_000_000

	// DefaultReadySpins bounds every oscillator and PLL ready wait
	DefaultReadySpins = 100_000
)

// ClockHW is the reset and clock control block as far as bring-up needs it
type ClockHW interface {
	EnableHSE()
	HSEReady() bool
	ConfigurePLL(mul uint32)
	EnablePLL()
	PLLReady() bool
	SelectPLL()
	SetFlashLatency(waitStates uint8)
}

// ClockConfig describes the system clock tree
type ClockConfig struct {
	HSEHz  uint32 // external crystal
	PLLMul uint32 // 2..16
}

// Sysclk returns the resulting system clock
func (c ClockConfig) Sysclk() uint32 {
	return c.HSEHz * c.PLLMul
}

// DefaultClock is an 8 MHz crystal multiplied to 72 MHz
var DefaultClock = ClockConfig{HSEHz: 8_000_000, PLLMul: 9}

// FlashLatency returns the flash wait states needed at sysclk
func FlashLatency(sysclk uint32) (uint8, error) {
	switch {
	case sysclk > MaxSysclkHz:
		return 0, ErrClockTooFast
	case sysclk <= 24_000_000:
		return 0, nil
	case sysclk <= 48_000_000:
		return 1, nil
	default:
		return 2, nil
	}
}

// ReadyError names the block that never reported ready
type ReadyError struct {
	Block string
	Spins int
}

func (e *ReadyError) Error() string {
	return e.Block + ": " + ErrNotReady.Error() + " after " + itoa(e.Spins) + " polls"
}

func (e *ReadyError) Unwrap() error { return ErrNotReady }

// WaitReady polls ready up to maxSpins times
func WaitReady(block string, ready func() bool, maxSpins int) error {
	for i := 0; i < maxSpins; i++ {
		if ready() {
			return nil
		}
	}
	return &ReadyError{Block: block, Spins: maxSpins}
}

// PLLClock brings the system clock up from the crystal through the PLL.
// Flash wait states are raised before the switch so the core never runs
// faster than flash can follow.
type PLLClock struct {
	HW         ClockHW
	Config     ClockConfig
	ReadySpins int
}

// Init runs the bring-up sequence and returns the new system clock
func (p *PLLClock) Init() (uint32, error) {
	cfg := p.Config
	if cfg.HSEHz == 0 {
		cfg = DefaultClock
	}
	if cfg.PLLMul < 2 || cfg.PLLMul > 16 {
		return 0, ErrInvalidRate
	}
	sysclk := cfg.Sysclk()
	latency, err := FlashLatency(sysclk)
	if err != nil {
		return 0, err
	}
	spins := p.ReadySpins
	if spins <= 0 {
		spins = DefaultReadySpins
	}

	p.HW.EnableHSE()
	if err := WaitReady("hse", p.HW.HSEReady, spins); err != nil {
		return 0, err
	}
	p.HW.SetFlashLatency(latency)
	p.HW.ConfigurePLL(cfg.PLLMul)
	p.HW.EnablePLL()
	if err := WaitReady("pll", p.HW.PLLReady, spins); err != nil {
		return 0, err
	}
	p.HW.SelectPLL()
	return sysclk, nil
}
