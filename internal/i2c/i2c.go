// Package i2c opens an I2C bus for the display and stick drivers. The real
// implementation talks to /dev/i2c-N; the fake records transactions.
package i2c

import (
	"errors"
	"fmt"
)

// DefaultBus is the Raspberry Pi header bus.
const DefaultBus = 1

var ErrClosed = errors.New("i2c: bus closed")

// DevicePath returns the character device for bus n.
func DevicePath(n int) string {
	return fmt.Sprintf("/dev/i2c-%d", n)
}
