// Package halcore holds the hardware contracts shared by the capture and
// touch pipelines. Implementations live in platform; fakes live there too.
package halcore

import (
	"capturelink-go/types"

	"tinygo.org/x/drivers"
)

// ---- Buses ----

// I2C is the subset we need (compatible with tinygo.org/x/drivers.I2C and
// with periph.io i2c.Bus).
type I2C interface {
	Tx(addr uint16, w, r []byte) error
}

var _ I2C = (drivers.I2C)(nil)

// I2CBusFactory injects configured I²C instances by id.
type I2CBusFactory interface {
	ByID(id string) (drivers.I2C, bool)
}

// ---- GPIO ----

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

func (p Pull) String() string {
	switch p {
	case PullUp:
		return "up"
	case PullDown:
		return "down"
	default:
		return "none"
	}
}

// GPIOPin is a polled digital input. Get reports the electrical level.
type GPIOPin interface {
	ConfigureInput(pull Pull) error
	Get() bool
	Number() int
}

// PinFactory supplies GPIO pins by the configured number scheme.
type PinFactory interface {
	ByNumber(n int) (GPIOPin, bool)
}

// ---- PWM ----

// PWMOutput drives a duty cycle in raw units. Configure fixes the carrier
// frequency and the duty resolution [0..top]; Set clamps to top.
type PWMOutput interface {
	Configure(freqHz uint64, top uint16) error
	Set(duty uint16)
	Number() int
}

// PWMFactory supplies PWM-capable pins.
type PWMFactory interface {
	PWMByNumber(n int) (PWMOutput, bool)
}

// ---- Audio ----

// Sampler fills a PCM buffer asynchronously. done runs in interrupt or
// driver context once dst is completely written; it must only signal.
// ReadAsync returns an error if the read could not be started.
type Sampler interface {
	ReadAsync(dst []byte, done func()) error
	// Abort cancels an in-flight read. done is not called afterwards.
	Abort() error
}

// ---- Touch ----

// TouchSensor is a scan-then-process capacitive sensor. ScanAll starts a
// scan of every widget; the end-of-scan callback fires from interrupt or
// driver context when results are latched. Process must only be called
// while IsBusy reports false.
type TouchSensor interface {
	SetEndOfScan(fn func())
	ScanAll() error
	IsBusy() bool
	Process() (types.TouchFrame, error)
}

// ElectrodeReader returns one bit per touched electrode.
type ElectrodeReader interface {
	Touched() (uint16, error)
}
