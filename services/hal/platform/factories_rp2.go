//go:build rp2040 || rp2350

package platform

import (
	"encoding/binary"
	"machine"
	"sync/atomic"
	"time"

	"capturelink-go/errcode"
	"capturelink-go/services/hal/halcore"
	"capturelink-go/types"
	"capturelink-go/x/mathx"
	"capturelink-go/x/timex"

	"tinygo.org/x/drivers"
)

// Default builds the Pico board.
func Default() (*Platform, error) {
	b := PicoCapture
	p, err := assemble(b, DefaultPinFactory(), DefaultI2CFactory(),
		newADCSampler(machine.Pin(b.MicADCPin), types.SampleRateHz))
	if err != nil {
		return nil, err
	}
	attachLED(p, DefaultPWMFactory())
	return p, nil
}

// ---- I²C ----

// DefaultI2CFactory configures i2c0 with board-default pins at 400 kHz.
func DefaultI2CFactory() halcore.I2CBusFactory {
	f := &rp2I2CFactory{buses: make(map[string]drivers.I2C)}
	b0 := machine.I2C0
	if err := b0.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	}); err == nil {
		f.buses["i2c0"] = b0
	}
	return f
}

type rp2I2CFactory struct {
	buses map[string]drivers.I2C
}

func (f *rp2I2CFactory) ByID(id string) (drivers.I2C, bool) {
	b, ok := f.buses[id]
	return b, ok
}

// ---- GPIO ----

// DefaultPinFactory maps logical numbers directly to machine.Pin(n).
func DefaultPinFactory() halcore.PinFactory { return rp2PinFactory{} }

type rp2PinFactory struct{}

func (rp2PinFactory) ByNumber(n int) (halcore.GPIOPin, bool) {
	// user GPIOs GP0..GP28
	if n < 0 || n > 28 {
		return nil, false
	}
	return &rp2Pin{p: machine.Pin(n), n: n}, true
}

type rp2Pin struct {
	p machine.Pin
	n int
}

func (r *rp2Pin) ConfigureInput(pull halcore.Pull) error {
	mode := machine.PinInput
	switch pull {
	case halcore.PullUp:
		mode = machine.PinInputPullup
	case halcore.PullDown:
		mode = machine.PinInputPulldown
	}
	r.p.Configure(machine.PinConfig{Mode: mode})
	return nil
}

func (r *rp2Pin) Get() bool   { return r.p.Get() }
func (r *rp2Pin) Number() int { return r.n }

// ---- PWM ----

// pwmSlice is the part of machine's per-slice PWM controller we drive.
type pwmSlice interface {
	Configure(cfg machine.PWMConfig) error
	Top() uint32
	Set(channel uint8, value uint32)
}

func sliceByNumber(n uint8) pwmSlice {
	switch n {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}

// DefaultPWMFactory maps GPn to its slice; even pins are channel A, odd B.
// Only one output per slice is supported since Configure sets the slice
// period.
func DefaultPWMFactory() halcore.PWMFactory { return rp2PWMFactory{} }

type rp2PWMFactory struct{}

func (rp2PWMFactory) PWMByNumber(n int) (halcore.PWMOutput, bool) {
	if n < 0 || n > 29 {
		return nil, false
	}
	slice, err := machine.PWMPeripheral(machine.Pin(n))
	if err != nil {
		return nil, false
	}
	return &rp2PWM{n: n, slice: sliceByNumber(slice), ch: uint8(n & 1)}, true
}

type rp2PWM struct {
	n     int
	slice pwmSlice
	ch    uint8
	top   uint16
	hwTop uint32
}

func (p *rp2PWM) Configure(freqHz uint64, top uint16) error {
	period := timex.PeriodFromHz(uint32(mathx.Min(freqHz, 1<<32-1)))
	if err := p.slice.Configure(machine.PWMConfig{Period: uint64(period)}); err != nil {
		return errcode.Wrap(errcode.HardwareFault, "pwm.configure", err)
	}
	machine.Pin(p.n).Configure(machine.PinConfig{Mode: machine.PinPWM})
	p.top, p.hwTop = mathx.Max(top, 1), p.slice.Top()
	return nil
}

// Set scales duty from [0..top] onto the slice's counter range.
func (p *rp2PWM) Set(duty uint16) {
	if p.hwTop == 0 {
		return
	}
	p.slice.Set(p.ch, uint32(mathx.Min(duty, p.top))*p.hwTop/uint32(p.top))
}

func (p *rp2PWM) Number() int { return p.n }

// ---- Audio ----

// adcSampler paces ADC conversions at the sample rate from a goroutine and
// writes signed 16-bit little-endian PCM.
type adcSampler struct {
	adc    machine.ADC
	period time.Duration
	gen    atomic.Uint32
	busy   atomic.Bool
}

func newADCSampler(pin machine.Pin, hz uint32) *adcSampler {
	machine.InitADC()
	a := machine.ADC{Pin: pin}
	a.Configure(machine.ADCConfig{})
	return &adcSampler{adc: a, period: timex.PeriodFromHz(hz)}
}

func (s *adcSampler) ReadAsync(dst []byte, done func()) error {
	if !s.busy.CompareAndSwap(false, true) {
		return errcode.Busy
	}
	gen := s.gen.Add(1)
	go s.fill(dst, gen, done)
	return nil
}

func (s *adcSampler) fill(dst []byte, gen uint32, done func()) {
	next := time.Now()
	for i := 0; i+1 < len(dst); i += 2 {
		if s.gen.Load() != gen {
			return
		}
		// offset binary to two's complement
		binary.LittleEndian.PutUint16(dst[i:], s.adc.Get()^0x8000)
		next = next.Add(s.period)
		if d := time.Until(next); d > 0 {
			time.Sleep(d)
		}
	}
	if !s.busy.CompareAndSwap(true, false) || s.gen.Load() != gen {
		return
	}
	done()
}

func (s *adcSampler) Abort() error {
	s.gen.Add(1)
	s.busy.Store(false)
	return nil
}
