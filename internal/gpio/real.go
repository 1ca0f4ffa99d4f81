//go:build linux

package gpio

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads buttons from actual hardware using Linux GPIO character device.
type RealReader struct {
	chip  *gpiocdev.Chip
	lines []*gpiocdev.Line
}

// NewRealReader requests pins as inputs on chip.
func NewRealReader(chip string, pins []int) (*RealReader, error) {
	c, err := gpiocdev.NewChip(chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	r := &RealReader{chip: c}
	for _, pin := range pins {
		// Buttons short the line to ground, so hold it high when released.
		l, err := c.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullUp, gpiocdev.WithConsumer("gamepad-hub"))
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("request pin %d: %w", pin, err)
		}
		r.lines = append(r.lines, l)
	}
	return r, nil
}

// Read returns the logical state of input i.
// Inverts raw GPIO: raw inactive (0) = pressed.
func (r *RealReader) Read(i int) (bool, error) {
	if i < 0 || i >= len(r.lines) {
		return false, ErrInvalidInput
	}
	raw, err := r.lines[i].Value()
	if err != nil {
		return false, fmt.Errorf("read pin %d: %w", r.lines[i].Offset(), err)
	}
	return raw == 0, nil
}

// Close releases GPIO resources.
// Reconfigures pins to input with pull-down (matching Pi boot defaults) before
// closing to ensure clean state for system shutdown/reboot.
func (r *RealReader) Close() error {
	var errs []error
	for _, l := range r.lines {
		if err := l.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", l.Offset(), err))
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", l.Offset(), err))
		}
	}
	r.lines = nil
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		r.chip = nil
	}
	return errors.Join(errs...)
}

// RealMotor drives the rumble motor through a transistor on one output pin.
type RealMotor struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealMotor requests pin as an output, initially off.
func NewRealMotor(chip string, pin int) (*RealMotor, error) {
	c, err := gpiocdev.NewChip(chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	l, err := c.RequestLine(pin, gpiocdev.AsOutput(0), gpiocdev.WithConsumer("gamepad-hub-rumble"))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("request rumble pin %d: %w", pin, err)
	}
	return &RealMotor{chip: c, line: l}, nil
}

// Set switches the motor on or off.
func (m *RealMotor) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := m.line.SetValue(v); err != nil {
		return fmt.Errorf("set rumble pin %d: %w", m.line.Offset(), err)
	}
	return nil
}

// Close switches the motor off and returns the pin to an input with pull-down.
func (m *RealMotor) Close() error {
	var errs []error
	if m.line != nil {
		if err := m.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("stop motor: %w", err))
		}
		if err := m.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure rumble pin: %w", err))
		}
		if err := m.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close rumble pin: %w", err))
		}
		m.line = nil
	}
	if m.chip != nil {
		if err := m.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		m.chip = nil
	}
	return errors.Join(errs...)
}
