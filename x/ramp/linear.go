// Package ramp walks an integer output level toward a target in even steps.
package ramp

import (
	"context"
	"time"

	"capturelink-go/x/mathx"
	"capturelink-go/x/timex"
)

// Step applies one level in [0..top].
type Step func(level uint16)

// Tick waits d and reports false when the ramp must stop early.
type Tick func(d time.Duration) bool

// SleepTick ticks through s and stops once ctx ends.
func SleepTick(ctx context.Context, s timex.Sleeper) Tick {
	return func(d time.Duration) bool { return s.Sleep(ctx, d) == nil }
}

// StartLinear moves from cur to min(to, top) over dur in the given number
// of steps, calling set whenever the level changes. It runs on the
// caller's goroutine and reports whether the target was reached. Zero
// steps or duration set the target at once.
func StartLinear(cur, to, top uint16, dur time.Duration, steps uint16, tick Tick, set Step) bool {
	to = mathx.Min(to, top)
	if steps == 0 || dur <= 0 || cur == to {
		set(to)
		return true
	}
	per := mathx.Max(dur/time.Duration(steps), time.Millisecond)
	from, span := int64(cur), int64(to)-int64(cur)
	last := cur
	for i := int64(1); i < int64(steps); i++ {
		if !tick(per) {
			return false
		}
		lvl := uint16(mathx.Clamp(from+span*i/int64(steps), 0, int64(top)))
		if lvl != last {
			set(lvl)
			last = lvl
		}
	}
	if !tick(per) {
		return false
	}
	set(to)
	return true
}
