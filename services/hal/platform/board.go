package platform

// Board describes the wiring of one hardware build. Pins are plain GPIO
// numbers; mapping to machine.Pin or periph names happens in the factories.
type Board struct {
	Name string
	// ConfigID selects the embedded device config.
	ConfigID string

	ButtonPin       int
	ButtonActiveLow bool

	MicADCPin int // RP2 only

	TouchBus  string
	TouchAddr uint16

	// LEDFreqHz is the PWM carrier; zero means the board has no LED.
	LEDPin       int
	LEDActiveLow bool
	LEDFreqHz    uint64
}

// PicoCapture is the RP2040/RP2350 build: button on GP15 to ground, analog
// microphone on GP26 (ADC0), MPR121 on I2C0 (GP4/GP5), on-board LED on
// GP25 (PWM4 B).
var PicoCapture = Board{
	Name:            "pico-capture",
	ConfigID:        "pico",
	ButtonPin:       15,
	ButtonActiveLow: true,
	MicADCPin:       26,
	TouchBus:        "i2c0",
	TouchAddr:       0x5A,
	LEDPin:          25,
	LEDFreqHz:       1000,
}

// PiCapture is the Raspberry Pi build: button on GPIO17 to ground, MPR121
// on the first I²C bus, LED to 3V3 on GPIO18 (PWM0) so it lights when low.
var PiCapture = Board{
	Name:            "pi-capture",
	ConfigID:        "pi",
	ButtonPin:       17,
	ButtonActiveLow: true,
	TouchBus:        "",
	TouchAddr:       0x5A,
	LEDPin:          18,
	LEDActiveLow:    true,
	LEDFreqHz:       1000,
}

// HostSim is the simulated build used by tests and the host runner.
var HostSim = Board{
	Name:      "host-sim",
	ConfigID:  "host",
	ButtonPin: 0,
	LEDPin:    1,
	LEDFreqHz: 1000,
}
