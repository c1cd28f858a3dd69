//go:build !rp2040 && !rp2350 && !(linux && arm64)

package platform

import (
	"sync"
	"time"

	"capturelink-go/services/hal/halcore"
	"capturelink-go/types"

	"tinygo.org/x/drivers"
)

// Default builds the simulated board: a fake button, a synthetic sampler
// taking as long as a real capture, a scripted touch sensor and a fake LED.
func Default() (*Platform, error) {
	p, err := assemble(HostSim, DefaultPinFactory(), DefaultI2CFactory(),
		&SynthSampler{Delay: types.CaptureSeconds * time.Second})
	if err != nil {
		return nil, err
	}
	if p.Touch == nil {
		p.Touch, p.TouchErr = &FakeTouch{AutoComplete: true}, nil
	}
	attachLED(p, DefaultPWMFactory())
	return p, nil
}

// ----------------------------- I²C (host) ------------------------------------

type hostI2CFactory struct {
	buses map[string]drivers.I2C
}

func (f *hostI2CFactory) ByID(id string) (drivers.I2C, bool) {
	b, ok := f.buses[id]
	return b, ok
}

// DefaultI2CFactory has no buses on host.
func DefaultI2CFactory() halcore.I2CBusFactory {
	return &hostI2CFactory{buses: map[string]drivers.I2C{}}
}

// ----------------------------- GPIO (host) -----------------------------------

type hostPinFactory struct {
	mu   sync.Mutex
	pins map[int]*FakePin
}

// DefaultPinFactory hands out one FakePin per number.
func DefaultPinFactory() halcore.PinFactory {
	return &hostPinFactory{pins: map[int]*FakePin{}}
}

func (f *hostPinFactory) ByNumber(n int) (halcore.GPIOPin, bool) {
	if n < 0 {
		return nil, false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pins[n]
	if !ok {
		p = NewFakePin(n, false)
		f.pins[n] = p
	}
	return p, true
}

// ----------------------------- PWM (host) ------------------------------------

type hostPWMFactory struct{}

// DefaultPWMFactory hands out a fresh FakePWM for any pin.
func DefaultPWMFactory() halcore.PWMFactory { return hostPWMFactory{} }

func (hostPWMFactory) PWMByNumber(n int) (halcore.PWMOutput, bool) {
	if n < 0 {
		return nil, false
	}
	return &FakePWM{number: n}, true
}
