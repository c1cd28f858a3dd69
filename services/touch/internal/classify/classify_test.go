package classify

import (
	"testing"
	"time"

	"capturelink-go/types"

	"github.com/stretchr/testify/assert"
)

var t0 = time.Unix(1000, 0)

func run(c *Classifier, frames []types.TouchFrame, step time.Duration) ([]types.TouchEvent, []types.Command) {
	var evs []types.TouchEvent
	var cmds []types.Command
	now := t0
	for _, f := range frames {
		evs, cmds = c.Classify(f, now, evs, cmds)
		now = now.Add(step)
	}
	return evs, cmds
}

func button(i int, on bool) types.TouchFrame {
	var f types.TouchFrame
	f.Buttons[i] = on
	return f
}

func slider(pos uint16) types.TouchFrame {
	return types.TouchFrame{SliderTouched: true, SliderPos: pos}
}

func TestButtons_RisingEdgeOnly(t *testing.T) {
	for i, want := range []types.CommandKind{types.ButtonOn, types.ButtonOff} {
		c := New(DefaultConfig())
		evs, cmds := run(c, []types.TouchFrame{
			button(i, false), button(i, true), button(i, true), button(i, true), button(i, false),
		}, 10*time.Millisecond)

		assert.Equal(t, []types.TouchEvent{
			{Kind: types.ButtonPressed, Button: uint8(i)},
			{Kind: types.ButtonReleased, Button: uint8(i)},
		}, evs, "button %d", i)
		assert.Equal(t, []types.Command{{Kind: want}}, cmds, "button %d", i)
	}
}

func TestButtons_BothPressedTogether(t *testing.T) {
	c := New(DefaultConfig())
	_, cmds := c.Classify(types.TouchFrame{Buttons: [2]bool{true, true}}, t0, nil, nil)
	assert.Equal(t, []types.Command{{Kind: types.ButtonOn}, {Kind: types.ButtonOff}}, cmds)
}

func TestSlider_BelowHysteresisIsSilent(t *testing.T) {
	c := New(Config{Hysteresis: 3, Resolution: 300, RateLimit: 50 * time.Millisecond})
	// prime so the first touch is not a jump from 0
	c.prev = slider(100)
	var frames []types.TouchFrame
	for p := uint16(101); p < 110; p++ {
		frames = append(frames, slider(p))
	}
	evs, cmds := run(c, frames, 10*time.Millisecond)
	assert.Empty(t, evs)
	assert.Empty(t, cmds)
}

func TestSlider_JumpFiresOnce(t *testing.T) {
	c := New(DefaultConfig())
	c.prev = slider(100)
	evs, cmds := run(c, []types.TouchFrame{slider(150), slider(150), slider(151)}, 100*time.Millisecond)
	assert.Equal(t, []types.TouchEvent{{Kind: types.SliderMoved, Position: 150, Percent: 50}}, evs)
	assert.Equal(t, []types.Command{{Kind: types.SliderPercent, Value: 50}}, cmds)
}

func TestSlider_RateLimitCollapsesSends(t *testing.T) {
	c := New(DefaultConfig())
	evs, cmds := run(c, []types.TouchFrame{slider(30), slider(60), slider(90), slider(120)}, 20*time.Millisecond)
	// events at 0, 20, 40, 60 ms; sends at 0 and 60
	assert.Len(t, evs, 4)
	assert.Equal(t, []types.Command{
		{Kind: types.SliderPercent, Value: 10},
		{Kind: types.SliderPercent, Value: 40},
	}, cmds)
}

func TestSlider_TwoEventsWithin50msOneSend(t *testing.T) {
	c := New(DefaultConfig())
	c.prev = slider(0)
	c.sent, c.lastSend = true, t0.Add(-time.Second)
	evs, cmds := c.Classify(slider(100), t0, nil, nil)
	evs, cmds = c.Classify(slider(200), t0.Add(49*time.Millisecond), evs, cmds)
	assert.Len(t, evs, 2)
	assert.Len(t, cmds, 1)
}

func TestSlider_UntouchedIgnoredButPrevUpdated(t *testing.T) {
	c := New(DefaultConfig())
	c.prev = slider(200)
	evs, _ := c.Classify(types.TouchFrame{}, t0, nil, nil)
	assert.Empty(t, evs)
	assert.Equal(t, types.TouchFrame{}, c.prev)

	// next touch is measured from 0
	evs, _ = c.Classify(slider(1), t0.Add(time.Second), nil, nil)
	assert.Empty(t, evs, "1 unit does not exceed hysteresis 1")
	evs, _ = c.Classify(slider(3), t0.Add(2*time.Second), nil, nil)
	assert.Len(t, evs, 1)
}

func TestReset(t *testing.T) {
	c := New(DefaultConfig())
	c.Classify(button(0, true), t0, nil, nil)
	c.Reset()
	_, cmds := c.Classify(button(0, true), t0, nil, nil)
	assert.Len(t, cmds, 1, "press after reset is a new edge")
}
