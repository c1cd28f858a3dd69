// Package uplinktest provides a recording transport for pipeline tests.
package uplinktest

import (
	"errors"
	"sync"
)

// ErrInjected is returned by a Recorder on its configured failing send.
var ErrInjected = errors.New("injected send failure")

// Recorder keeps a copy of every datagram. FailAt makes the n-th send
// (1-based) fail; zero never fails.
type Recorder struct {
	mu     sync.Mutex
	sends  int
	FailAt int
	grams  [][]byte
}

func (r *Recorder) Send(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sends++
	if r.FailAt > 0 && r.sends == r.FailAt {
		return 0, ErrInjected
	}
	r.grams = append(r.grams, append([]byte(nil), p...))
	return len(p), nil
}

// Datagrams returns the accepted datagrams in order.
func (r *Recorder) Datagrams() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]byte(nil), r.grams...)
}

// Attempts counts every Send call, including the failing one.
func (r *Recorder) Attempts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sends
}

// Strings returns the accepted datagrams as strings, for token checks.
func (r *Recorder) Strings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.grams))
	for i, g := range r.grams {
		out[i] = string(g)
	}
	return out
}
