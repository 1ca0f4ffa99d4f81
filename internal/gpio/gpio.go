// Package gpio provides button input reading and rumble motor output with
// hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Reader reads the button inputs.
type Reader interface {
	// Read returns the logical state of input i, where i indexes the pin
	// list the reader was opened with. Buttons pull the line low, so a raw
	// inactive line reads as pressed.
	Read(i int) (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Motor drives the rumble motor.
type Motor interface {
	// Set switches the motor on or off.
	Set(on bool) error

	// Close releases GPIO resources.
	Close() error
}

// Default wiring (BCM numbering), in controller polling order:
// L1 L2 R1 R2 UP DOWN LEFT RIGHT X B Y A.
var DefaultPins = []int{5, 6, 13, 19, 26, 16, 20, 21, 12, 25, 24, 23}

const (
	DefaultChip      = "gpiochip0"
	DefaultRumblePin = 18
)

var ErrInvalidInput = errors.New("gpio: input index out of range")

// ParsePins parses a pin map of the form "L1=5,L2=6,...". Names are
// upper-cased; a name or pin may appear only once.
func ParsePins(s string) (map[string]int, error) {
	pins := make(map[string]int)
	used := make(map[int]string)
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		name, num, ok := strings.Cut(field, "=")
		if !ok {
			return nil, fmt.Errorf("parse pin %q: want NAME=PIN", field)
		}
		name = strings.ToUpper(strings.TrimSpace(name))
		pin, err := strconv.Atoi(strings.TrimSpace(num))
		if err != nil || pin < 0 {
			return nil, fmt.Errorf("parse pin %q: invalid pin number", field)
		}
		if _, dup := pins[name]; dup {
			return nil, fmt.Errorf("parse pin %q: %s given twice", field, name)
		}
		if other, dup := used[pin]; dup {
			return nil, fmt.Errorf("parse pin %q: pin %d already used by %s", field, pin, other)
		}
		pins[name] = pin
		used[pin] = name
	}
	return pins, nil
}
