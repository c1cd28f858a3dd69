package platform

import (
	"capturelink-go/errcode"
	"capturelink-go/services/hal/halcore"
	"capturelink-go/services/hal/touchpad"
)

// assemble resolves the board wiring against the target's factories. A
// missing touch controller is not fatal; the reason lands in TouchErr.
func assemble(b Board, pins halcore.PinFactory, buses halcore.I2CBusFactory, s halcore.Sampler) (*Platform, error) {
	btn, ok := pins.ByNumber(b.ButtonPin)
	if !ok {
		return nil, &errcode.E{C: errcode.NotConfigured, Op: "platform.button", Msg: "pin not available"}
	}
	pull := halcore.PullDown
	if b.ButtonActiveLow {
		pull = halcore.PullUp
	}
	if err := btn.ConfigureInput(pull); err != nil {
		return nil, errcode.Wrap(errcode.HardwareFault, "platform.button", err)
	}

	p := &Platform{Board: b, Button: btn, Sampler: s}
	bus, ok := buses.ByID(b.TouchBus)
	if !ok {
		p.TouchErr = &errcode.E{C: errcode.NotConfigured, Op: "platform.touch", Msg: "no bus " + b.TouchBus}
		return p, nil
	}
	dev, err := touchpad.NewMPR121(bus, touchpad.Config{Address: b.TouchAddr})
	if err != nil {
		p.TouchErr = err
		return p, nil
	}
	p.Touch = touchpad.NewSensor(dev, touchpad.DefaultLayout())
	return p, nil
}

// attachLED resolves the board's PWM LED. Like touch, a missing LED only
// records the reason.
func attachLED(p *Platform, f halcore.PWMFactory) {
	if p.Board.LEDFreqHz == 0 {
		p.LEDErr = &errcode.E{C: errcode.NotConfigured, Op: "platform.led", Msg: "board has no LED"}
		return
	}
	out, ok := f.PWMByNumber(p.Board.LEDPin)
	if !ok {
		p.LEDErr = &errcode.E{C: errcode.NotConfigured, Op: "platform.led", Msg: "pin has no PWM"}
		return
	}
	p.LED = out
}
