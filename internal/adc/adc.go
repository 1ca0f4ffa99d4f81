// Package adc reads the analog sticks through a PCF8591 four-channel 8-bit
// converter.
package adc

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"tinygo.org/x/drivers"
)

const (
	DefaultAddr     = 0x48
	DefaultDeadzone = 0.05

	// Channels is the number of analog inputs on the chip.
	Channels = 4
)

var ErrInvalidChannel = errors.New("adc: channel out of range")

// PCF8591 is one converter on an I2C bus.
type PCF8591 struct {
	mu       sync.Mutex
	bus      drivers.I2C
	addr     uint16
	deadzone float64
	buf      [2]byte
}

// New creates a reader for the converter at addr. Readings closer to centre
// than deadzone snap to 0.
func New(bus drivers.I2C, addr uint16, deadzone float64) *PCF8591 {
	return &PCF8591{bus: bus, addr: addr, deadzone: deadzone}
}

// Raw returns the 8-bit conversion of channel.
func (p *PCF8591) Raw(channel int) (uint8, error) {
	if channel < 0 || channel >= Channels {
		return 0, ErrInvalidChannel
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	// The first byte read back is the previous conversion; the second is
	// the channel just selected.
	if err := p.bus.Tx(p.addr, []byte{byte(channel)}, p.buf[:]); err != nil {
		return 0, fmt.Errorf("read channel %d: %w", channel, err)
	}
	return p.buf[1], nil
}

// Read returns channel scaled to [-1, 1].
func (p *PCF8591) Read(channel int) (float64, error) {
	raw, err := p.Raw(channel)
	if err != nil {
		return 0, err
	}
	return Scale(raw, p.deadzone), nil
}

// Scale maps a raw reading to [-1, 1] with 127.5 as centre.
func Scale(raw uint8, deadzone float64) float64 {
	v := (float64(raw) - 127.5) / 127.5
	if math.Abs(v) < deadzone {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}
