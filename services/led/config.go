package led

import (
	"time"

	"capturelink-go/services/internal/util"
	"capturelink-go/x/mathx"

	"github.com/rs/zerolog"
)

type Config struct {
	Logger zerolog.Logger

	FreqHz    uint64
	Top       uint16 // duty resolution
	ActiveLow bool

	// Brightness changes walk over RampDuration in RampSteps steps; zero
	// of either switches at once.
	RampDuration time.Duration
	RampSteps    uint16

	// MinPercent floors slider brightness so a lit LED stays visible.
	MinPercent uint8
	// Percent is the brightness used by the first turn-on.
	Percent    uint8
}

func DefaultConfig() Config {
	return Config{
		Logger:       zerolog.Nop(),
		FreqHz:       1000,
		Top:          1000,
		RampDuration: 150 * time.Millisecond,
		RampSteps:    15,
		MinPercent:   2,
		Percent:      100,
	}
}

// settings is the "led" section of the device config.
type settings struct {
	RampMs     int `json:"ramp_ms"`
	RampSteps  int `json:"ramp_steps"`
	MinPercent int `json:"min_percent"`
}

func (c Config) apply(payload any) (Config, error) {
	st, err := util.Overlay(payload, settings{
		RampMs:     int(c.RampDuration / time.Millisecond),
		RampSteps:  int(c.RampSteps),
		MinPercent: int(c.MinPercent),
	})
	if err != nil {
		return c, err
	}
	c.RampDuration = util.Millis(mathx.Clamp(st.RampMs, 0, 5000))
	c.RampSteps = uint16(mathx.Clamp(st.RampSteps, 0, 1000))
	c.MinPercent = uint8(mathx.Clamp(st.MinPercent, 0, 100))
	return c, nil
}
