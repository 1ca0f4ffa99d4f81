package controller

import "errors"

// ButtonID names a digital input of the controller.
type ButtonID string

const (
	ButtonL1    ButtonID = "L1"
	ButtonL2    ButtonID = "L2"
	ButtonR1    ButtonID = "R1"
	ButtonR2    ButtonID = "R2"
	ButtonUp    ButtonID = "UP"
	ButtonDown  ButtonID = "DOWN"
	ButtonLeft  ButtonID = "LEFT"
	ButtonRight ButtonID = "RIGHT"
	ButtonX     ButtonID = "X"
	ButtonB     ButtonID = "B"
	ButtonY     ButtonID = "Y"
	ButtonA     ButtonID = "A"
)

// AxisID names an analog input of the controller.
type AxisID string

const (
	AxisLeftX  AxisID = "LEFT_X"
	AxisLeftY  AxisID = "LEFT_Y"
	AxisRightX AxisID = "RIGHT_X"
	AxisRightY AxisID = "RIGHT_Y"
)

// Buttons lists every button in polling order.
var Buttons = [NumButtons]ButtonID{
	ButtonL1, ButtonL2, ButtonR1, ButtonR2,
	ButtonUp, ButtonDown, ButtonLeft, ButtonRight,
	ButtonX, ButtonB, ButtonY, ButtonA,
}

// Axes lists every axis in polling order.
var Axes = [NumAxes]AxisID{AxisLeftX, AxisLeftY, AxisRightX, AxisRightY}

const (
	NumButtons = 12
	NumAxes    = 4
)

var (
	ErrInvalidButton = errors.New("controller: invalid button id")
	ErrInvalidAxis   = errors.New("controller: invalid axis id")
)

// ButtonIndex maps id to its position in Buttons.
func ButtonIndex(id ButtonID) (int, error) {
	for i, b := range Buttons {
		if b == id {
			return i, nil
		}
	}
	return -1, ErrInvalidButton
}

// AxisIndex maps id to its position in Axes.
func AxisIndex(id AxisID) (int, error) {
	for i, a := range Axes {
		if a == id {
			return i, nil
		}
	}
	return -1, ErrInvalidAxis
}
