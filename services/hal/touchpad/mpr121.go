// Package touchpad turns MPR121 electrode status into the two-button plus
// slider frame used by the touch pipeline.
package touchpad

import (
	"capturelink-go/errcode"
	"capturelink-go/services/hal/halcore"
)

// DefaultAddress is the MPR121 address with ADDR tied to ground.
const DefaultAddress = 0x5A

const (
	regTouchStatus = 0x00
	regTouchThresh = 0x41 // pairs of touch/release thresholds per electrode
	regMHDRising   = 0x2B
	regDebounce    = 0x5B
	regConfig1     = 0x5C
	regConfig2     = 0x5D
	regECR         = 0x5E
	regSoftReset   = 0x80

	softResetValue = 0x63
	maxElectrodes  = 12
	overCurrentBit = 1 << 15
)

// Config sets the controller thresholds. Zero values take defaults.
type Config struct {
	Address          uint16
	Electrodes       uint8
	TouchThreshold   uint8
	ReleaseThreshold uint8
}

func (c *Config) applyDefaults() {
	if c.Address == 0 {
		c.Address = DefaultAddress
	}
	if c.Electrodes == 0 || c.Electrodes > maxElectrodes {
		c.Electrodes = maxElectrodes
	}
	if c.TouchThreshold == 0 {
		c.TouchThreshold = 0x0C
	}
	if c.ReleaseThreshold == 0 {
		c.ReleaseThreshold = 0x06
	}
}

// MPR121 reads electrode status over I²C.
type MPR121 struct {
	bus  halcore.I2C
	addr uint16
	mask uint16
}

// NewMPR121 resets and starts the controller.
func NewMPR121(bus halcore.I2C, cfg Config) (*MPR121, error) {
	if bus == nil {
		return nil, errcode.NotConfigured
	}
	cfg.applyDefaults()
	d := &MPR121{bus: bus, addr: cfg.Address, mask: uint16(1)<<cfg.Electrodes - 1}

	steps := [][2]byte{
		{regSoftReset, softResetValue},
		{regECR, 0x00}, // stop mode for register writes
		{regMHDRising, 0x01},
		{regDebounce, 0x00},
		{regConfig1, 0x10}, // 16 uA charge current
		{regConfig2, 0x20}, // 0.5 us charge time
	}
	for _, s := range steps {
		if err := d.write(s[0], s[1]); err != nil {
			return nil, errcode.Wrap(errcode.HardwareFault, "mpr121.init", err)
		}
	}
	for i := uint8(0); i < cfg.Electrodes; i++ {
		if err := d.write(regTouchThresh+2*i, cfg.TouchThreshold); err != nil {
			return nil, errcode.Wrap(errcode.HardwareFault, "mpr121.thresh", err)
		}
		if err := d.write(regTouchThresh+2*i+1, cfg.ReleaseThreshold); err != nil {
			return nil, errcode.Wrap(errcode.HardwareFault, "mpr121.thresh", err)
		}
	}
	// baseline tracking on, first N electrodes enabled
	if err := d.write(regECR, 0x80|cfg.Electrodes); err != nil {
		return nil, errcode.Wrap(errcode.HardwareFault, "mpr121.run", err)
	}
	return d, nil
}

func (d *MPR121) write(reg, v byte) error {
	return d.bus.Tx(d.addr, []byte{reg, v}, nil)
}

// Touched returns one bit per enabled electrode.
func (d *MPR121) Touched() (uint16, error) {
	var r [2]byte
	if err := d.bus.Tx(d.addr, []byte{regTouchStatus}, r[:]); err != nil {
		return 0, errcode.Wrap(errcode.HardwareFault, "mpr121.status", err)
	}
	v := uint16(r[0]) | uint16(r[1])<<8
	if v&overCurrentBit != 0 {
		return 0, &errcode.E{C: errcode.HardwareFault, Op: "mpr121.status", Msg: "over current"}
	}
	return v & d.mask, nil
}
