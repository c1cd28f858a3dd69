// Package debounce filters a mechanical switch into whole press-release
// cycles using a minimum dwell time.
package debounce

import (
	"context"
	"time"

	"capturelink-go/x/timex"
)

// Pin is the polled input line.
type Pin interface {
	Get() bool
}

// Config sets the timing contract. A press is accepted once the line has
// been active for more than Threshold checks spaced Unit apart.
type Config struct {
	Unit      time.Duration
	Threshold int
	ActiveLow bool
}

const (
	DefaultUnit      = time.Millisecond
	DefaultThreshold = 80
)

func (c *Config) applyDefaults() {
	if c.Unit <= 0 {
		c.Unit = DefaultUnit
	}
	if c.Threshold <= 0 {
		c.Threshold = DefaultThreshold
	}
}

// Debouncer holds no state between polls.
type Debouncer struct {
	pin   Pin
	cfg   Config
	sleep timex.Sleeper
}

func New(pin Pin, cfg Config, s timex.Sleeper) *Debouncer {
	cfg.applyDefaults()
	if s == nil {
		s = timex.Real{}
	}
	return &Debouncer{pin: pin, cfg: cfg, sleep: s}
}

func (d *Debouncer) active() bool { return d.pin.Get() != d.cfg.ActiveLow }

// Poll returns false at once if the line is inactive, or as soon as it goes
// inactive before the dwell time. Otherwise it blocks through the release
// and one inactive window (repeated while the line is active at the end of
// a window) and returns true. Every wait is a Sleep of one Unit.
func (d *Debouncer) Poll(ctx context.Context) (bool, error) {
	count := 0
	for d.active() {
		if err := d.sleep.Sleep(ctx, d.cfg.Unit); err != nil {
			return false, err
		}
		count++
		if count <= d.cfg.Threshold {
			continue
		}
		for d.active() {
			if err := d.sleep.Sleep(ctx, d.cfg.Unit); err != nil {
				return false, err
			}
		}
		for {
			for i := 0; i < d.cfg.Threshold; i++ {
				if err := d.sleep.Sleep(ctx, d.cfg.Unit); err != nil {
					return false, err
				}
			}
			if !d.active() {
				return true, nil
			}
		}
	}
	return false, nil
}
