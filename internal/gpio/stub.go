//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealReader is not available on non-Linux platforms.
type RealReader struct{}

// NewRealReader returns an error on non-Linux platforms.
func NewRealReader(chip string, pins []int) (*RealReader, error) {
	return nil, errUnsupported
}

// Read is not implemented on non-Linux platforms.
func (r *RealReader) Read(i int) (bool, error) {
	return false, errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (r *RealReader) Close() error {
	return nil
}

// RealMotor is not available on non-Linux platforms.
type RealMotor struct{}

// NewRealMotor returns an error on non-Linux platforms.
func NewRealMotor(chip string, pin int) (*RealMotor, error) {
	return nil, errUnsupported
}

// Set is not implemented on non-Linux platforms.
func (m *RealMotor) Set(on bool) error {
	return errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (m *RealMotor) Close() error {
	return nil
}
