package capture

import (
	"time"

	"capturelink-go/services/capture/internal/debounce"
	"capturelink-go/services/internal/util"
	"capturelink-go/types"
	"capturelink-go/x/mathx"

	"github.com/rs/zerolog"
)

// Config tunes the capture pipeline. Durations of zero disable the step.
type Config struct {
	Logger zerolog.Logger

	Debounce debounce.Config
	// ArmDelay is waited between an accepted press and the start of the
	// read, so the speaker can begin talking.
	ArmDelay time.Duration
	// CaptureTimeout aborts a read that has not completed in time.
	CaptureTimeout time.Duration
	// LoopInterval is the yield at the end of each iteration.
	LoopInterval time.Duration

	Capacity int
	// ReadyHolders is the number of capture/ready listeners that call
	// Release; the next capture waits for all of them.
	ReadyHolders int
}

func DefaultConfig() Config {
	return Config{
		Logger:         zerolog.Nop(),
		Debounce:       debounce.Config{Unit: debounce.DefaultUnit, Threshold: debounce.DefaultThreshold},
		ArmDelay:       time.Second,
		CaptureTimeout: 10 * time.Second,
		LoopInterval:   time.Millisecond,
		Capacity:       types.CaptureBytes,
	}
}

// settings is the "capture" section of the device config.
type settings struct {
	ArmDelayMs       int `json:"arm_delay_ms"`
	CaptureTimeoutMs int `json:"capture_timeout_ms"`
	DebounceUnits    int `json:"debounce_units"`
}

func settingsOf(c Config) settings {
	return settings{
		ArmDelayMs:       int(c.ArmDelay / time.Millisecond),
		CaptureTimeoutMs: int(c.CaptureTimeout / time.Millisecond),
		DebounceUnits:    c.Debounce.Threshold,
	}
}

// apply overlays a config payload. Capacity is fixed at construction.
func (c Config) apply(payload any) (Config, error) {
	st, err := util.Overlay(payload, settingsOf(c))
	if err != nil {
		return c, err
	}
	c.ArmDelay = util.Millis(mathx.Clamp(st.ArmDelayMs, 0, 10_000))
	c.CaptureTimeout = util.Millis(mathx.Clamp(st.CaptureTimeoutMs, 0, 120_000))
	c.Debounce.Threshold = mathx.Clamp(st.DebounceUnits, 1, 1000)
	return c, nil
}
