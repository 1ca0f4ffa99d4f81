// Package device binds the controller to its hardware: GPIO buttons, the
// stick converter, the character display and the rumble motor. The fake
// implementation allows testing without hardware.
package device

import (
	"github.com/sweeney/gamepad-hub/internal/controller"
	"github.com/sweeney/gamepad-hub/internal/display"
	"github.com/sweeney/gamepad-hub/internal/gpio"
)

// AnalogReader reads a scaled analog channel.
type AnalogReader interface {
	Read(channel int) (float64, error)
}

// LineWriter writes one display row.
type LineWriter interface {
	WriteLine(row int, text string) error
}

// RumbleWriter plays a rumble pattern.
type RumbleWriter interface {
	WriteRumble(pattern string) error
}

// Hardware implements controller.Inputs and display.Writer on real devices.
// Buttons are read by their index in controller.Buttons and axes from the
// converter channel of the same index in controller.Axes. A nil sticks,
// screen or rumble is treated as absent.
type Hardware struct {
	buttons gpio.Reader
	sticks  AnalogReader
	screen  LineWriter
	rumble  RumbleWriter
}

var (
	_ controller.Inputs = (*Hardware)(nil)
	_ display.Writer    = (*Hardware)(nil)
)

// NewHardware composes the devices.
func NewHardware(buttons gpio.Reader, sticks AnalogReader, screen LineWriter, rumble RumbleWriter) *Hardware {
	return &Hardware{buttons: buttons, sticks: sticks, screen: screen, rumble: rumble}
}

// ReadDigital reads the GPIO line wired to id.
func (h *Hardware) ReadDigital(id controller.ButtonID) (bool, error) {
	i, err := controller.ButtonIndex(id)
	if err != nil {
		return false, err
	}
	return h.buttons.Read(i)
}

// ReadAnalog reads the converter channel wired to id; 0 without sticks.
func (h *Hardware) ReadAnalog(id controller.AxisID) (float64, error) {
	i, err := controller.AxisIndex(id)
	if err != nil {
		return 0, err
	}
	if h.sticks == nil {
		return 0, nil
	}
	return h.sticks.Read(i)
}

// WriteLine writes a text row to the screen.
func (h *Hardware) WriteLine(line int, text string) error {
	if h.screen == nil {
		return nil
	}
	return h.screen.WriteLine(line, text)
}

// WriteRumble hands the pattern to the rumble player.
func (h *Hardware) WriteRumble(pattern string) error {
	if h.rumble == nil {
		return nil
	}
	return h.rumble.WriteRumble(pattern)
}
