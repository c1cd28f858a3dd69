// Package signal hands completions from interrupt/callback context to a
// single consuming task.
package signal

import (
	"context"
	"sync/atomic"
)

// Flag is a single-slot completion signal. Set is safe from ISR context:
// one atomic store and a non-blocking channel send, no allocation.
// Set has release semantics and Take has acquire semantics, so writes made
// before Set are visible to the goroutine that observes Take() == true.
type Flag struct {
	set  atomic.Bool
	wake chan struct{}
	sets atomic.Uint32
}

func NewFlag() *Flag {
	return &Flag{wake: make(chan struct{}, 1)}
}

// Set marks the flag and wakes a waiter, if any.
func (f *Flag) Set() {
	f.set.Store(true)
	f.sets.Add(1)
	select {
	case f.wake <- struct{}{}:
	default:
	}
}

// Take clears the flag and reports whether it was set.
func (f *Flag) Take() bool { return f.set.Swap(false) }

// IsSet reports the flag without clearing it.
func (f *Flag) IsSet() bool { return f.set.Load() }

// Sets is the total number of Set calls.
func (f *Flag) Sets() uint32 { return f.sets.Load() }

// Wait blocks until the flag has been set since the last Take, or ctx ends.
// It does not clear the flag.
func (f *Flag) Wait(ctx context.Context) error {
	for !f.set.Load() {
		select {
		case <-f.wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Notifier returns the callback handed to hardware. It can only set the flag.
func (f *Flag) Notifier() func() { return f.Set }
