// Package classify turns successive touch frames into discrete events and
// the commands sent to the collector.
package classify

import (
	"time"

	"capturelink-go/types"
	"capturelink-go/x/mathx"
)

type Config struct {
	// Hysteresis is the slider movement that must be exceeded.
	Hysteresis uint16
	// Resolution is the slider's full-scale position.
	Resolution uint16
	// RateLimit spaces slider commands; slider events are not limited.
	RateLimit time.Duration
}

func DefaultConfig() Config {
	return Config{Hysteresis: 1, Resolution: 300, RateLimit: 50 * time.Millisecond}
}

// Classifier keeps the previous frame between cycles. Not safe for
// concurrent use; the touch loop owns it.
type Classifier struct {
	cfg      Config
	prev     types.TouchFrame
	lastSend time.Time
	sent     bool
}

func New(cfg Config) *Classifier {
	if cfg.Resolution == 0 {
		cfg.Resolution = DefaultConfig().Resolution
	}
	return &Classifier{cfg: cfg}
}

// buttonCommands maps a pressed button to its command.
var buttonCommands = [2]types.CommandKind{types.ButtonOn, types.ButtonOff}

// Classify appends this cycle's events and commands. Buttons report the
// rising edge with a command and the falling edge without one. The slider
// reports every qualifying move; its commands are rate limited. The
// previous frame is replaced on every call.
func (c *Classifier) Classify(f types.TouchFrame, now time.Time, evs []types.TouchEvent, cmds []types.Command) ([]types.TouchEvent, []types.Command) {
	for i := range f.Buttons {
		switch {
		case f.Buttons[i] && !c.prev.Buttons[i]:
			evs = append(evs, types.TouchEvent{Kind: types.ButtonPressed, Button: uint8(i)})
			cmds = append(cmds, types.Command{Kind: buttonCommands[i]})
		case !f.Buttons[i] && c.prev.Buttons[i]:
			evs = append(evs, types.TouchEvent{Kind: types.ButtonReleased, Button: uint8(i)})
		}
	}

	if f.SliderTouched && mathx.AbsDiff(f.SliderPos, c.prev.SliderPos) > c.cfg.Hysteresis {
		pct := mathx.Percent(f.SliderPos, c.cfg.Resolution)
		evs = append(evs, types.TouchEvent{Kind: types.SliderMoved, Position: f.SliderPos, Percent: pct})
		if !c.sent || now.Sub(c.lastSend) >= c.cfg.RateLimit {
			cmds = append(cmds, types.Command{Kind: types.SliderPercent, Value: pct})
			c.lastSend, c.sent = now, true
		}
	}

	c.prev = f
	return evs, cmds
}

// Reset forgets the previous frame and the rate limit.
func (c *Classifier) Reset() {
	c.prev = types.TouchFrame{}
	c.sent = false
}
