// Package config loads the host tools' YAML configuration
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level host configuration
type Config struct {
	Sim      SimConfig      `yaml:"sim"`
	Serial   SerialConfig   `yaml:"serial"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	GPIO     GPIOConfig     `yaml:"gpio"`
	Debounce DebounceConfig `yaml:"debounce"`
	Measure  MeasureConfig  `yaml:"measure"`
}

// SimConfig sets up the simulated board
type SimConfig struct {
	ClockHz  uint32 `yaml:"clock_hz"`
	PollCost uint64 `yaml:"poll_cost"` // cycles charged per status register read
	Duration uint32 `yaml:"duration_ms"`
	Demo     string `yaml:"demo"`
}

// SerialConfig names the UART the board reports on
type SerialConfig struct {
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
}

// MQTTConfig enables publishing counter reports. An empty broker disables it.
type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
}

// GPIOConfig maps demo signals to Linux GPIO lines
type GPIOConfig struct {
	Backend string   `yaml:"backend"` // "gpiocdev" or "periph"
	Chip    string   `yaml:"chip"`
	Key     string   `yaml:"key"`
	LEDs    []string `yaml:"leds"` // up to three
	IR      string   `yaml:"ir"`
}

// DebounceConfig tunes the polled key gate
type DebounceConfig struct {
	SettleMs uint32 `yaml:"settle_ms"`
	PollMs   uint32 `yaml:"poll_ms"`
	Mode     string `yaml:"mode"` // "confirmed" or "coarse"
}

// MeasureConfig sets the periodic timer measurement
type MeasureConfig struct {
	RateHz  uint32 `yaml:"rate_hz"`
	Periods int    `yaml:"periods"`
}

// Load reads and parses a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration and fills in defaults
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// applyDefaults fills in missing configuration values
func applyDefaults(cfg *Config) {
	if cfg.Sim.ClockHz == 0 {
		cfg.Sim.ClockHz = 72_000_000
	}
	if cfg.Sim.PollCost == 0 {
		cfg.Sim.PollCost = 8
	}
	if cfg.Sim.Duration == 0 {
		cfg.Sim.Duration = 5000
	}
	if cfg.Sim.Demo == "" {
		cfg.Sim.Demo = "tim2"
	}

	if cfg.Serial.Device == "" {
		cfg.Serial.Device = "/dev/ttyUSB0"
	}
	if cfg.Serial.Baud == 0 {
		cfg.Serial.Baud = 115200
	}

	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "irqlab"
	}
	if cfg.MQTT.TopicPrefix == "" {
		cfg.MQTT.TopicPrefix = "irqlab/counters/"
	}

	if cfg.GPIO.Backend == "" {
		cfg.GPIO.Backend = "gpiocdev"
	}
	if cfg.GPIO.Chip == "" {
		cfg.GPIO.Chip = "gpiochip0"
	}

	if cfg.Debounce.SettleMs == 0 {
		cfg.Debounce.SettleMs = 20
	}
	if cfg.Debounce.PollMs == 0 {
		cfg.Debounce.PollMs = 1
	}
	if cfg.Debounce.Mode == "" {
		cfg.Debounce.Mode = "confirmed"
	}

	if cfg.Measure.RateHz == 0 {
		cfg.Measure.RateHz = 1000
	}
	if cfg.Measure.Periods == 0 {
		cfg.Measure.Periods = 100
	}
}

// Validate rejects values no component can run with
func (c *Config) Validate() error {
	switch c.Debounce.Mode {
	case "confirmed", "coarse":
	default:
		return fmt.Errorf("debounce mode %q: want confirmed or coarse", c.Debounce.Mode)
	}
	switch c.GPIO.Backend {
	case "gpiocdev", "periph":
	default:
		return fmt.Errorf("gpio backend %q: want gpiocdev or periph", c.GPIO.Backend)
	}
	if len(c.GPIO.LEDs) > 3 {
		return fmt.Errorf("gpio leds: %d given, at most 3", len(c.GPIO.LEDs))
	}
	if c.Debounce.PollMs > c.Debounce.SettleMs {
		return fmt.Errorf("debounce poll_ms %d exceeds settle_ms %d", c.Debounce.PollMs, c.Debounce.SettleMs)
	}
	if c.Measure.Periods < 2 {
		return fmt.Errorf("measure periods %d: need at least 2", c.Measure.Periods)
	}
	if c.Measure.RateHz > c.Sim.ClockHz {
		return fmt.Errorf("measure rate %d Hz exceeds clock %d Hz", c.Measure.RateHz, c.Sim.ClockHz)
	}
	return nil
}
