//go:build linux

package relay

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// GPIO drives relays through Linux GPIO character device output lines.
type GPIO struct {
	chip  *gpiocdev.Chip
	lines []*gpiocdev.Line
}

// NewGPIO requests one output line per pin, all initially off.
func NewGPIO(chipName string, pins []int) (*GPIO, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	g := &GPIO{chip: chip, lines: make([]*gpiocdev.Line, len(pins))}
	for i, pin := range pins {
		line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
		if err != nil {
			g.Close()
			return nil, fmt.Errorf("request relay pin %d: %w", pin, err)
		}
		g.lines[i] = line
	}
	return g, nil
}

// Set drives a 0-based channel on or off.
func (g *GPIO) Set(channel int, on bool) error {
	if channel < 0 || channel >= len(g.lines) {
		return fmt.Errorf("relay channel %d out of range", channel)
	}
	v := 0
	if on {
		v = 1
	}
	if err := g.lines[channel].SetValue(v); err != nil {
		return fmt.Errorf("set relay pin: %w", err)
	}
	return nil
}

// Close drops every line to off before releasing it, so a daemon restart
// never leaves a load powered.
func (g *GPIO) Close() error {
	var errs []error
	for _, line := range g.lines {
		if line == nil {
			continue
		}
		if err := line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear line: %w", err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line: %w", err))
		}
	}
	if g.chip != nil {
		if err := g.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
