package led

import (
	"capturelink-go/errcode"
	"capturelink-go/services/hal/halcore"
)

// output maps logical brightness [0..top] onto a PWM pin, inverting for
// LEDs wired to the supply rail.
type output struct {
	pin       halcore.PWMOutput
	top       uint16
	activeLow bool
	level     uint16 // last logical level written
}

func (o *output) init(freqHz uint64) error {
	if err := o.pin.Configure(freqHz, o.top); err != nil {
		return errcode.Wrap(errcode.HardwareFault, "led.init", err)
	}
	o.set(0)
	return nil
}

func (o *output) clamp(lvl uint16) uint16 {
	if lvl > o.top {
		return o.top
	}
	return lvl
}

func (o *output) toPhys(logical uint16) uint16 {
	if o.activeLow {
		return o.top - logical
	}
	return logical
}

func (o *output) set(logical uint16) {
	o.level = o.clamp(logical)
	o.pin.Set(o.toPhys(o.level))
}
