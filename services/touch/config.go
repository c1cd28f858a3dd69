package touch

import (
	"time"

	"capturelink-go/services/internal/util"
	"capturelink-go/services/touch/internal/classify"
	"capturelink-go/x/mathx"

	"github.com/rs/zerolog"
)

type Config struct {
	Logger zerolog.Logger

	// ScanInterval is the period of the scan timer.
	ScanInterval time.Duration
	// QueueDepth bounds the command queue shared by the timer and the
	// end-of-scan callback.
	QueueDepth int
	Classify   classify.Config
}

func DefaultConfig() Config {
	return Config{
		Logger:       zerolog.Nop(),
		ScanInterval: 10 * time.Millisecond,
		QueueDepth:   1,
		Classify:     classify.DefaultConfig(),
	}
}

// settings is the "touch" section of the device config.
type settings struct {
	ScanIntervalMs int `json:"scan_interval_ms"`
	Hysteresis     int `json:"hysteresis"`
	Resolution     int `json:"resolution"`
	RateLimitMs    int `json:"rate_limit_ms"`
}

func (c Config) apply(payload any) (Config, error) {
	st, err := util.Overlay(payload, settings{
		ScanIntervalMs: int(c.ScanInterval / time.Millisecond),
		Hysteresis:     int(c.Classify.Hysteresis),
		Resolution:     int(c.Classify.Resolution),
		RateLimitMs:    int(c.Classify.RateLimit / time.Millisecond),
	})
	if err != nil {
		return c, err
	}
	c.ScanInterval = util.Millis(mathx.Clamp(st.ScanIntervalMs, 1, 1000))
	c.Classify.Hysteresis = uint16(mathx.Clamp(st.Hysteresis, 0, 1000))
	c.Classify.Resolution = uint16(mathx.Clamp(st.Resolution, 1, 65535))
	c.Classify.RateLimit = util.Millis(mathx.Clamp(st.RateLimitMs, 0, 10_000))
	return c, nil
}
