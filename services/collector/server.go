// Package collector receives capture uploads and touch commands from
// devices, stores each upload as WAV and in a badger archive, and turns
// slider commands into gestures.
package collector

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"

	"capturelink-go/services/uplink"
	"capturelink-go/types"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxDatagram fits a whole capture sent as one datagram.
const maxDatagram = 225000

type EventKind uint8

const (
	EventCapture EventKind = iota + 1
	EventCommand
	EventTrend
	EventInvalid
)

func (k EventKind) String() string {
	switch k {
	case EventCapture:
		return "capture"
	case EventCommand:
		return "command"
	case EventTrend:
		return "trend"
	case EventInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Event is reported for every recognised datagram outcome.
type Event struct {
	Kind    EventKind
	Peer    string
	Record  Record
	Command types.Command
	Trend   Trend
}

// Stats counts server activity.
type Stats struct {
	Datagrams  uint64
	Captures   uint64
	Commands   uint64
	Trends     uint64
	Invalid    uint64
	Stray      uint64
	SaveErrors uint64
}

type Server struct {
	cfg Config
	log zerolog.Logger

	asm   *Reassembler
	trend map[string]*TrendDetector
	arch  *Archive
	now   func() time.Time

	// OnEvent, when set, is called from the serving goroutine.
	OnEvent func(Event)

	datagrams, captures, commands, trends, invalid, stray, saveErrs atomic.Uint64
}

// NewServer builds a server; arch may be nil.
func NewServer(cfg Config, log zerolog.Logger, arch *Archive) *Server {
	cfg.ensureDefaults()
	return &Server{
		cfg:   cfg,
		log:   log,
		asm:   NewReassembler(cfg.IdleTimeout, cfg.MaxPayload),
		trend: make(map[string]*TrendDetector),
		arch:  arch,
		now:   time.Now,
	}
}

// Handle processes one datagram from peer.
func (s *Server) Handle(peer string, p []byte) {
	now := s.now()
	s.datagrams.Add(1)

	f, ok, consumed := s.asm.Feed(peer, p, now)
	if ok {
		s.saveFrame(f, now)
	}
	if consumed {
		return
	}
	if len(p) == 0 || p[0] != types.CommandTag {
		s.stray.Add(1)
		return
	}

	tag, v, ok := uplink.ParseToken(p)
	cmd, known := uplink.Decode(tag, v)
	if !ok || !known {
		s.invalid.Add(1)
		s.log.Warn().Str("peer", peer).Bytes("data", p).Msg("invalid command")
		s.emit(Event{Kind: EventInvalid, Peer: peer})
		return
	}
	s.commands.Add(1)
	s.log.Info().Str("peer", peer).Int("code", cmd.Code()).Msg("command")
	s.emit(Event{Kind: EventCommand, Peer: peer, Command: cmd})

	d := s.detector(peer)
	if cmd.Kind != types.SliderPercent {
		d.Reset()
		return
	}
	if t := d.Observe(int(cmd.Value)); t != TrendNone {
		s.trends.Add(1)
		s.log.Info().Str("peer", peer).Stringer("trend", t).Msg("slider trend")
		s.emit(Event{Kind: EventTrend, Peer: peer, Trend: t})
	}
}

func (s *Server) detector(peer string) *TrendDetector {
	d := s.trend[peer]
	if d == nil {
		d = NewTrendDetector(s.cfg.Trend.Threshold)
		s.trend[peer] = d
	}
	return d
}

func (s *Server) saveFrame(f Frame, now time.Time) {
	rec := Record{
		ID:      uuid.New(),
		Peer:    f.Peer,
		At:      now,
		Bytes:   len(f.Data),
		Packets: f.Packets,
		Partial: f.Partial,
	}
	name := fmt.Sprintf("audio_%s_%s.wav", now.Format("20060102_150405"), rec.ID.String()[:8])
	path, err := SaveWAV(s.cfg.OutDir, name, f.Data, s.cfg.Audio)
	if err != nil {
		s.saveErrs.Add(1)
		s.log.Error().Err(err).Str("peer", f.Peer).Msg("save wav")
	} else {
		rec.WAV = path
	}
	if s.arch != nil {
		if err := s.arch.Put(rec, f.Data); err != nil {
			s.saveErrs.Add(1)
			s.log.Error().Err(err).Str("id", rec.ID.String()).Msg("archive capture")
		}
	}
	s.captures.Add(1)
	s.log.Info().
		Str("peer", f.Peer).
		Str("id", rec.ID.String()).
		Int("bytes", rec.Bytes).
		Int("packets", rec.Packets).
		Bool("partial", rec.Partial).
		Str("wav", rec.WAV).
		Msg("capture received")
	s.emit(Event{Kind: EventCapture, Peer: f.Peer, Record: rec})
}

func (s *Server) emit(e Event) {
	if s.OnEvent != nil {
		s.OnEvent(e)
	}
}

// Serve reads from pc until ctx ends. Idle streams are swept on every
// read timeout.
func (s *Server) Serve(ctx context.Context, pc net.PacketConn) error {
	buf := make([]byte, maxDatagram)
	tick := s.cfg.IdleTimeout / 5
	if tick <= 0 {
		tick = time.Second
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		_ = pc.SetReadDeadline(time.Now().Add(tick))
		n, addr, err := pc.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				s.asm.Sweep(s.now())
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		s.Handle(addr.String(), buf[:n])
	}
}

// ListenAndServe binds cfg.Listen and serves until ctx ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	pc, err := net.ListenPacket("udp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Listen, err)
	}
	defer pc.Close()
	s.log.Info().Str("addr", pc.LocalAddr().String()).Msg("collector listening")
	return s.Serve(ctx, pc)
}

func (s *Server) Stats() Stats {
	return Stats{
		Datagrams:  s.datagrams.Load(),
		Captures:   s.captures.Load(),
		Commands:   s.commands.Load(),
		Trends:     s.trends.Load(),
		Invalid:    s.invalid.Load(),
		Stray:      s.stray.Load(),
		SaveErrors: s.saveErrs.Load(),
	}
}
