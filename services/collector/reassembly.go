package collector

import (
	"time"

	"capturelink-go/services/uplink"
)

// Frame is one payload recovered from a peer's stream.
type Frame struct {
	Peer    string
	Data    []byte
	Packets int
	// Partial is set when a new start marker interrupted the stream.
	Partial bool
}

type stream struct {
	buf     []byte
	packets int
	last    time.Time
}

// Reassembler rebuilds bulk payloads per peer. It is not safe for
// concurrent use; the server owns it from one goroutine.
type Reassembler struct {
	idle time.Duration
	max  int

	peers map[string]*stream

	IdleResets int
	Overflows  int
}

func NewReassembler(idle time.Duration, maxPayload int) *Reassembler {
	return &Reassembler{idle: idle, max: maxPayload, peers: make(map[string]*stream)}
}

// Active reports whether peer has an open stream.
func (r *Reassembler) Active(peer string) bool {
	_, ok := r.peers[peer]
	return ok
}

// Feed handles one datagram. Inside an open stream every datagram other
// than a marker is body. consumed is false when p is not part of a bulk
// transfer, so the caller may treat it as a token. Devices send commands
// from a separate socket, so they never share a peer key with a stream. A frame is
// returned when a stream completes or is interrupted by a new start.
func (r *Reassembler) Feed(peer string, p []byte, now time.Time) (f Frame, ok bool, consumed bool) {
	r.expire(peer, now)
	s := r.peers[peer]

	switch {
	case uplink.IsStart(p):
		if s != nil && len(s.buf) > 0 {
			f, ok = Frame{Peer: peer, Data: s.buf, Packets: s.packets, Partial: true}, true
		}
		r.peers[peer] = &stream{buf: make([]byte, 0, 64<<10), last: now}
		return f, ok, true

	case uplink.IsEnd(p):
		if s == nil {
			return Frame{}, false, true
		}
		delete(r.peers, peer)
		if len(s.buf) == 0 {
			return Frame{}, false, true
		}
		return Frame{Peer: peer, Data: s.buf, Packets: s.packets}, true, true

	case s == nil:
		return Frame{}, false, false
	}

	if len(s.buf)+len(p) > r.max {
		delete(r.peers, peer)
		r.Overflows++
		return Frame{}, false, true
	}
	s.buf = append(s.buf, p...)
	s.packets++
	s.last = now
	return Frame{}, false, true
}

// Sweep drops every stream idle for longer than the timeout.
func (r *Reassembler) Sweep(now time.Time) {
	for peer := range r.peers {
		r.expire(peer, now)
	}
}

func (r *Reassembler) expire(peer string, now time.Time) {
	s := r.peers[peer]
	if s == nil || r.idle <= 0 || now.Sub(s.last) <= r.idle {
		return
	}
	delete(r.peers, peer)
	r.IdleResets++
}
