// Package timex holds the time seams shared by hardware loops.
package timex

import (
	"context"
	"time"
)

// PeriodFromHz returns a period for a requested frequency.
// freqHz==0 is coerced to 1 to avoid division by zero.
func PeriodFromHz(freqHz uint32) time.Duration {
	if freqHz == 0 {
		freqHz = 1
	}
	return time.Duration(uint64(time.Second) / uint64(freqHz))
}

// Sleeper is an explicit suspend point. Hardware loops sleep through it so
// tests can substitute virtual time.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// Clock reads monotonic time.
type Clock interface {
	Now() time.Time
}

// Real is the wall-clock Sleeper and Clock.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Sleep suspends the calling goroutine for d, or until ctx ends.
func (Real) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
