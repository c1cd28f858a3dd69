// Package platform wires halcore contracts to the hardware of the current
// build target. Host builds get in-memory fakes.
package platform

import "capturelink-go/services/hal/halcore"

// Platform is everything the pipelines need from the board.
type Platform struct {
	Board   Board
	Button  halcore.GPIOPin
	Sampler halcore.Sampler
	Touch   halcore.TouchSensor // nil when no touch controller answered
	LED     halcore.PWMOutput   // nil when the board has no PWM LED

	TouchErr error // why Touch is nil
	LEDErr   error // why LED is nil
}
