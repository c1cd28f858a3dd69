// Package acquire owns the capture peripheral and its buffer. Only the
// dispatch loop calls into a Controller; the completion callback touches
// nothing but atomics.
package acquire

import (
	"sync/atomic"
	"time"

	"capturelink-go/errcode"
	"capturelink-go/services/hal/halcore"
	"capturelink-go/x/signal"
)

// Controller is Idle or Busy. At most one read is in flight.
type Controller struct {
	s    halcore.Sampler
	buf  []byte
	done *signal.Flag

	// state packs the generation and the busy bit (gen<<1 | busy) so a
	// completion can only clear the read it was issued for.
	state   atomic.Uint64
	doneGen atomic.Uint64
	holds   atomic.Int32

	now       func() time.Time
	startedAt time.Time
}

// New allocates the capture buffer once. done is set on every completion.
func New(s halcore.Sampler, capacity int, done *signal.Flag) *Controller {
	return &Controller{s: s, buf: make([]byte, capacity), done: done, now: time.Now}
}

// WithClock replaces the time source used for BusyFor.
func (c *Controller) WithClock(now func() time.Time) *Controller {
	c.now = now
	return c
}

// Start clears the buffer and issues one asynchronous read for its full
// capacity. It never queues: a Busy controller or a held buffer is refused
// without touching the hardware.
func (c *Controller) Start() error {
	cur := c.state.Load()
	if cur&busyBit != 0 {
		return errcode.Busy
	}
	if c.holds.Load() > 0 {
		return errcode.BufferInUse
	}
	next := (cur>>1+1)<<1 | busyBit
	if !c.state.CompareAndSwap(cur, next) {
		return errcode.Busy
	}
	clear(c.buf)
	c.startedAt = c.now()
	if err := c.s.ReadAsync(c.buf, c.notifier(next>>1)); err != nil {
		c.state.CompareAndSwap(next, next&^busyBit)
		return errcode.Wrap(errcode.HardwareFault, "acquire.start", err)
	}
	return nil
}

const busyBit = 1

// notifier builds the hardware callback. Checking the generation and
// clearing busy is one CAS, so a completion for an aborted or superseded
// read changes nothing.
func (c *Controller) notifier(gen uint64) func() {
	state, doneGen, flag := &c.state, &c.doneGen, c.done
	return func() {
		if !state.CompareAndSwap(gen<<1|busyBit, gen<<1) {
			return
		}
		doneGen.Store(gen)
		flag.Set()
	}
}

// TakeDone consumes the completion flag and reports whether it belongs to
// the current generation. A completion that lost a race with Abort or a
// newer Start is discarded here.
func (c *Controller) TakeDone() bool {
	if !c.done.Take() {
		return false
	}
	return c.doneGen.Load() == c.state.Load()>>1
}

// Abort cancels the in-flight read and returns to Idle.
func (c *Controller) Abort() error {
	for {
		cur := c.state.Load()
		if c.state.CompareAndSwap(cur, (cur>>1+1)<<1) {
			break
		}
	}
	if err := c.s.Abort(); err != nil {
		return errcode.Wrap(errcode.HardwareFault, "acquire.abort", err)
	}
	return nil
}

func (c *Controller) Busy() bool { return c.state.Load()&busyBit != 0 }

// BusyFor is how long the current read has been outstanding.
func (c *Controller) BusyFor(now time.Time) time.Duration {
	if !c.Busy() {
		return 0
	}
	return now.Sub(c.startedAt)
}

// Buffer is valid to read only after the completion flag was taken.
func (c *Controller) Buffer() []byte { return c.buf }

// Generation numbers reads; it increases on every Start and Abort.
func (c *Controller) Generation() uint32 { return uint32(c.state.Load() >> 1) }

// Hold marks the buffer as in use by n readers and returns the function
// each of them calls once when done. Extra calls are ignored.
func (c *Controller) Hold(n int) (release func()) {
	if n <= 0 {
		return func() {}
	}
	c.holds.Add(int32(n))
	left := new(atomic.Int32)
	left.Store(int32(n))
	return func() {
		if left.Add(-1) >= 0 {
			c.holds.Add(-1)
		}
	}
}

// Held reports outstanding readers.
func (c *Controller) Held() int { return int(c.holds.Load()) }
