// Package display schedules what a small three-row text display and its
// rumble motor show. Producers queue timed alerts or set permanent status
// text from any goroutine; the polling loop calls Scheduler.Advance once per
// tick to push due changes to the device.
package display

import (
	"errors"
	"strings"
	"time"
)

const (
	// NumLines is the number of scheduled channels: three text rows plus rumble.
	NumLines = 4
	// TextLines is the number of text rows.
	TextLines = 3
	// RumbleLine is the index of the rumble channel.
	RumbleLine = 3
	// MaxRumbleLen is the longest accepted rumble pattern.
	MaxRumbleLen = 8
	// MinAdvanceInterval is the minimum time between two advances; the
	// device is never written faster than this.
	MinAdvanceInterval = 50 * time.Millisecond
)

var (
	ErrInvalidLine     = errors.New("display: invalid line index")
	ErrTooManyLines    = errors.New("display: too many lines")
	ErrRumbleTooLong   = errors.New("display: rumble pattern longer than 8 characters")
	ErrInvalidRumble   = errors.New("display: rumble pattern may only contain '.', '-' and ' '")
	ErrInvalidDuration = errors.New("display: alert duration must be positive")
)

// Writer is the device side of the display.
type Writer interface {
	// WriteLine replaces the text of row line (0..2).
	WriteLine(line int, text string) error
	// WriteRumble plays a rumble pattern.
	WriteRumble(pattern string) error
}

// Line is one unit of display content. A zero Duration marks status text,
// which never expires on its own; a positive Duration marks a timed alert.
type Line struct {
	Text     string
	Duration time.Duration
}

// ValidateRumble checks a rumble pattern: at most MaxRumbleLen characters,
// each one of '.', '-' or ' '.
func ValidateRumble(pattern string) error {
	if len(pattern) > MaxRumbleLen {
		return ErrRumbleTooLong
	}
	if strings.Trim(pattern, ".- ") != "" {
		return ErrInvalidRumble
	}
	return nil
}

// splitText breaks text into rows starting at line. It fails if line is not
// a text row or if the rows would run past the last text row.
func splitText(line int, text string) ([]string, error) {
	if line < 0 || line >= TextLines {
		return nil, ErrInvalidLine
	}
	parts := strings.Split(text, "\n")
	if line+len(parts) > TextLines {
		return nil, ErrTooManyLines
	}
	return parts, nil
}
