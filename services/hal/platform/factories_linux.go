//go:build linux && arm64 && !(rp2040 || rp2350)

package platform

import (
	"strconv"
	"sync"
	"time"

	"capturelink-go/errcode"
	"capturelink-go/services/hal/halcore"
	"capturelink-go/types"
	"capturelink-go/x/mathx"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
	"tinygo.org/x/drivers"
)

// Default initialises periph and builds the Raspberry Pi board. The Pi has
// no ADC, so audio comes from the synthetic sampler.
func Default() (*Platform, error) {
	if _, err := host.Init(); err != nil {
		return nil, errcode.Wrap(errcode.HardwareFault, "platform.init", err)
	}
	p, err := assemble(PiCapture, DefaultPinFactory(), DefaultI2CFactory(),
		&SynthSampler{Delay: types.CaptureSeconds * time.Second})
	if err != nil {
		return nil, err
	}
	attachLED(p, DefaultPWMFactory())
	return p, nil
}

// ----------------------------- I²C (periph) ----------------------------------

type periphI2CFactory struct {
	mu    sync.Mutex
	buses map[string]drivers.I2C
}

// DefaultI2CFactory opens periph I²C buses by name on first use; "" is the
// first bus found.
func DefaultI2CFactory() halcore.I2CBusFactory {
	return &periphI2CFactory{buses: map[string]drivers.I2C{}}
}

func (f *periphI2CFactory) ByID(id string) (drivers.I2C, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.buses[id]; ok {
		return b, true
	}
	b, err := i2creg.Open(id)
	if err != nil {
		return nil, false
	}
	f.buses[id] = b
	return b, true
}

// ----------------------------- GPIO (periph) ---------------------------------

type periphPinFactory struct{}

// DefaultPinFactory maps n to the periph pin "GPIO<n>".
func DefaultPinFactory() halcore.PinFactory { return periphPinFactory{} }

func (periphPinFactory) ByNumber(n int) (halcore.GPIOPin, bool) {
	p := gpioreg.ByName("GPIO" + strconv.Itoa(n))
	if p == nil {
		return nil, false
	}
	return &periphPin{p: p, n: n}, true
}

type periphPin struct {
	p gpio.PinIO
	n int
}

func (r *periphPin) ConfigureInput(pull halcore.Pull) error {
	pp := gpio.Float
	switch pull {
	case halcore.PullUp:
		pp = gpio.PullUp
	case halcore.PullDown:
		pp = gpio.PullDown
	}
	return r.p.In(pp, gpio.NoEdge)
}

func (r *periphPin) Get() bool   { return r.p.Read() == gpio.High }
func (r *periphPin) Number() int { return r.n }

// ----------------------------- PWM (periph) ----------------------------------

type periphPWMFactory struct{}

// DefaultPWMFactory maps n to "GPIO<n>"; periph picks hardware PWM where
// the pin has it.
func DefaultPWMFactory() halcore.PWMFactory { return periphPWMFactory{} }

func (periphPWMFactory) PWMByNumber(n int) (halcore.PWMOutput, bool) {
	p := gpioreg.ByName("GPIO" + strconv.Itoa(n))
	if p == nil {
		return nil, false
	}
	return &periphPWM{p: p, n: n}, true
}

type periphPWM struct {
	p    gpio.PinIO
	n    int
	freq physic.Frequency
	top  uint16
}

func (r *periphPWM) Configure(freqHz uint64, top uint16) error {
	r.freq = physic.Frequency(freqHz) * physic.Hertz
	r.top = mathx.Max(top, 1)
	if err := r.p.PWM(0, r.freq); err != nil {
		return errcode.Wrap(errcode.HardwareFault, "pwm.configure", err)
	}
	return nil
}

// Set scales duty from [0..top] onto gpio.DutyMax. Errors were already
// reported by Configure for this pin.
func (r *periphPWM) Set(duty uint16) {
	if r.top == 0 {
		return
	}
	d := gpio.Duty(uint64(mathx.Min(duty, r.top)) * uint64(gpio.DutyMax) / uint64(r.top))
	_ = r.p.PWM(d, r.freq)
}

func (r *periphPWM) Number() int { return r.n }
