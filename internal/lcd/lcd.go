// Package lcd drives an HD44780 character display behind a PCF8574 I2C
// backpack.
package lcd

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/hd44780i2c"
)

const (
	DefaultAddr   = 0x27
	DefaultWidth  = 20
	DefaultHeight = 4
)

var ErrInvalidRow = errors.New("lcd: row out of range")

// errBus remembers the first failed transaction; the driver drops errors.
type errBus struct {
	bus drivers.I2C
	err error
}

func (b *errBus) Tx(addr uint16, w, r []byte) error {
	err := b.bus.Tx(addr, w, r)
	if err != nil && b.err == nil {
		b.err = err
	}
	return err
}

func (b *errBus) take() error {
	err := b.err
	b.err = nil
	return err
}

// Display writes whole rows of text.
type Display struct {
	mu     sync.Mutex
	bus    *errBus
	dev    hd44780i2c.Device
	width  int
	height int
}

// Open initialises the display at addr. This takes about a second.
func Open(bus drivers.I2C, addr uint8, width, height int) (*Display, error) {
	if width <= 0 || width > 40 || height <= 0 || height > 4 {
		return nil, fmt.Errorf("lcd: unsupported size %dx%d", width, height)
	}
	eb := &errBus{bus: bus}
	d := &Display{
		bus:    eb,
		dev:    hd44780i2c.New(eb, addr),
		width:  width,
		height: height,
	}
	if err := d.dev.Configure(hd44780i2c.Config{Width: uint8(width), Height: uint8(height)}); err != nil {
		return nil, fmt.Errorf("configure lcd: %w", err)
	}
	if err := eb.take(); err != nil {
		return nil, fmt.Errorf("configure lcd: %w", err)
	}
	return d, nil
}

// WriteLine replaces row with text, padded or cut to the display width.
func (d *Display) WriteLine(row int, text string) error {
	if row < 0 || row >= d.height {
		return ErrInvalidRow
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dev.SetCursor(0, uint8(row))
	d.dev.Print(Fit(text, d.width))
	if err := d.bus.take(); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

// Clear blanks the whole display.
func (d *Display) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dev.ClearDisplay()
	if err := d.bus.take(); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	return nil
}

// Fit renders text as exactly width bytes of the display's character set.
// Characters outside printable ASCII become '?'.
func Fit(text string, width int) []byte {
	out := make([]byte, 0, width)
	for _, r := range text {
		if len(out) == width {
			break
		}
		if r < 0x20 || r > 0x7e {
			r = '?'
		}
		out = append(out, byte(r))
	}
	return append(out, strings.Repeat(" ", width-len(out))...)
}
