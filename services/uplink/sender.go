// Package uplink streams captures and touch commands to the collector over
// an unacknowledged datagram transport.
package uplink

import (
	"errors"
	"strconv"
	"sync/atomic"

	"capturelink-go/errcode"
	"capturelink-go/types"

	"github.com/rs/zerolog"
)

// Transport sends one datagram to a peer it is already bound to.
type Transport interface {
	Send(p []byte) (int, error)
}

// SendError reports where a send stopped. Sent counts payload bytes the
// transport accepted before the failure.
type SendError struct {
	Op   string // "start", "body", "end" or "command"
	Sent int
	Err  error
}

func (e *SendError) Error() string {
	return (&errcode.E{
		C:   errcode.SendFailed,
		Op:  "uplink." + e.Op,
		Msg: "sent " + strconv.Itoa(e.Sent) + " bytes",
		Err: e.Err,
	}).Error()
}

func (e *SendError) Unwrap() error      { return e.Err }
func (e *SendError) Code() errcode.Code { return errcode.SendFailed }

var errShortWrite = errors.New("short datagram write")

type Config struct {
	ChunkSize int // 0 means DefaultChunkSize
	Logger    zerolog.Logger
}

// Sender frames payloads for a Transport attached after network bring-up.
type Sender struct {
	chunk int
	log   zerolog.Logger
	tr    atomic.Pointer[binding]

	frames    atomic.Uint32
	commands  atomic.Uint32
	failures  atomic.Uint32
	bytesSent atomic.Uint64
}

type binding struct{ t Transport }

func NewSender(cfg Config) *Sender {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	return &Sender{chunk: cfg.ChunkSize, log: cfg.Logger}
}

// Attach binds the transport; nil detaches it.
func (s *Sender) Attach(t Transport) {
	if t == nil {
		s.tr.Store(nil)
		return
	}
	s.tr.Store(&binding{t: t})
}

func (s *Sender) Attached() bool { return s.tr.Load() != nil }

// SendFramed sends the start marker, payload chunks and end marker, and
// returns the payload bytes handed to the transport. It stops at the first
// failed send and never retries.
func (s *Sender) SendFramed(payload []byte) (int, error) {
	b := s.tr.Load()
	if b == nil {
		return 0, errcode.NotInitialized
	}
	if err := s.send(b.t, []byte(StartMarker)); err != nil {
		return s.fail("start", 0, err)
	}
	sent := 0
	for sent < len(payload) {
		end := min(sent+s.chunk, len(payload))
		if err := s.send(b.t, payload[sent:end]); err != nil {
			return s.fail("body", sent, err)
		}
		sent = end
	}
	if err := s.send(b.t, []byte(EndMarker)); err != nil {
		return s.fail("end", sent, err)
	}
	s.frames.Add(1)
	s.bytesSent.Add(uint64(sent))
	s.log.Debug().Int("bytes", sent).Int("chunks", (sent+s.chunk-1)/s.chunk).Msg("frame sent")
	return sent, nil
}

// SendCommand sends one token datagram.
func (s *Sender) SendCommand(cmd types.Command) error {
	b := s.tr.Load()
	if b == nil {
		return errcode.NotInitialized
	}
	var buf [8]byte
	if err := s.send(b.t, AppendToken(buf[:0], cmd)); err != nil {
		_, err = s.fail("command", 0, err)
		return err
	}
	s.commands.Add(1)
	return nil
}

func (s *Sender) send(t Transport, p []byte) error {
	n, err := t.Send(p)
	if err != nil {
		return err
	}
	if n != len(p) {
		return errShortWrite
	}
	return nil
}

func (s *Sender) fail(op string, sent int, err error) (int, error) {
	s.failures.Add(1)
	s.bytesSent.Add(uint64(sent))
	return sent, &SendError{Op: op, Sent: sent, Err: err}
}

// Stats is a snapshot of the sender counters.
type Stats struct {
	Frames    uint32
	Commands  uint32
	Failures  uint32
	BytesSent uint64
}

func (s *Sender) Stats() Stats {
	return Stats{
		Frames:    s.frames.Load(),
		Commands:  s.commands.Load(),
		Failures:  s.failures.Load(),
		BytesSent: s.bytesSent.Load(),
	}
}
