//go:build linux

// Package gpiocdev runs the demos on Linux GPIO through the character device
package gpiocdev

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"irqlab/core"
)

// Pin is a core.Pin on one line of a GPIO chip. The line is requested on
// the first Configure and reconfigured on later ones.
type Pin struct {
	chip   *gpiocdev.Chip
	offset int
	line   *gpiocdev.Line
	level  core.Level // last written output level
	err    error
}

// NewPin returns an unrequested pin at offset on chip
func NewPin(chip *gpiocdev.Chip, offset int) *Pin {
	return &Pin{chip: chip, offset: offset}
}

func biasOption(pull core.Pull) gpiocdev.LineBias {
	switch pull {
	case core.PullUp:
		return gpiocdev.WithPullUp
	case core.PullDown:
		return gpiocdev.WithPullDown
	default:
		return gpiocdev.WithBiasDisabled
	}
}

// Configure implements core.Pin
func (p *Pin) Configure(dir core.Direction, pull core.Pull) error {
	var err error
	switch {
	case dir == core.Output && p.line != nil:
		err = p.line.Reconfigure(gpiocdev.AsOutput(levelValue(p.level)))
	case dir == core.Output:
		p.line, err = p.chip.RequestLine(p.offset, gpiocdev.AsOutput(levelValue(p.level)))
	case p.line != nil:
		err = p.line.Reconfigure(gpiocdev.AsInput, biasOption(pull))
	default:
		p.line, err = p.chip.RequestLine(p.offset, gpiocdev.AsInput, biasOption(pull))
	}
	if err != nil {
		return fmt.Errorf("configure line %d: %w", p.offset, err)
	}
	return nil
}

// Read implements core.Pin. A failed read returns Low and is kept in Err.
func (p *Pin) Read() core.Level {
	if p.line == nil {
		return core.Low
	}
	v, err := p.line.Value()
	if err != nil {
		p.err = fmt.Errorf("read line %d: %w", p.offset, err)
		return core.Low
	}
	return v != 0
}

// Write implements core.Pin
func (p *Pin) Write(level core.Level) {
	p.level = level
	if p.line == nil {
		return
	}
	if err := p.line.SetValue(levelValue(level)); err != nil {
		p.err = fmt.Errorf("write line %d: %w", p.offset, err)
	}
}

// Err returns the last read or write error
func (p *Pin) Err() error {
	return p.err
}

// Close releases the line
func (p *Pin) Close() error {
	if p.line == nil {
		return nil
	}
	err := p.line.Close()
	p.line = nil
	return err
}

func levelValue(l core.Level) int {
	if l {
		return 1
	}
	return 0
}
