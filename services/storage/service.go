// Package storage persists every completed capture under a random name.
// It runs beside the dispatch loop and never blocks it.
package storage

import (
	"context"
	"io"

	"capturelink-go/bus"
	"capturelink-go/errcode"
	"capturelink-go/types"
	"capturelink-go/x/randid"

	"github.com/rs/zerolog"
)

const serviceName = "storage"

// Sink appends data to the named object, creating it if needed.
type Sink interface {
	Append(name string, data []byte) (int, error)
}

type Config struct {
	Logger zerolog.Logger
	// NameLen is the number of random characters before Ext.
	NameLen int
	Ext     string
	// NewName overrides the random name source.
	NewName func(n int) string
}

func DefaultConfig() Config {
	return Config{Logger: zerolog.Nop(), NameLen: 8, Ext: ".bin", NewName: randid.New}
}

type Service struct {
	cfg   Config
	log   zerolog.Logger
	sink  Sink
	stats types.PipelineStats
}

func New(cfg Config, sink Sink) *Service {
	def := DefaultConfig()
	if cfg.NameLen <= 0 {
		cfg.NameLen = def.NameLen
	}
	if cfg.Ext == "" {
		cfg.Ext = def.Ext
	}
	if cfg.NewName == nil {
		cfg.NewName = def.NewName
	}
	return &Service{cfg: cfg, log: cfg.Logger, sink: sink}
}

// Start subscribes before returning, so no capture published afterwards is
// missed, then serves in a goroutine.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) {
	sub := conn.Subscribe(types.TopicCaptureReady())
	go func() {
		defer conn.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				s.log.Info().Msg("storage service stopping")
				return
			case m, ok := <-sub.Channel():
				if !ok {
					return
				}
				cr, ok := m.Payload.(types.CaptureReady)
				if !ok {
					continue
				}
				s.store(cr)
				conn.Publish(conn.NewMessage(types.TopicStats(serviceName), s.stats, true))
			}
		}
	}()
}

// store writes one capture and always releases the buffer.
func (s *Service) store(cr types.CaptureReady) {
	if cr.Release != nil {
		defer cr.Release()
	}
	name := s.cfg.NewName(s.cfg.NameLen) + s.cfg.Ext
	n, err := s.sink.Append(name, cr.Data)
	if err == nil && n != len(cr.Data) {
		err = io.ErrShortWrite
	}
	if err != nil {
		s.stats.Failed++
		err = errcode.Wrap(errcode.Error, "storage.append", err)
		s.log.Error().Err(err).Str("file", name).Int("written", n).Uint32("seq", cr.Seq).Msg("store capture")
		return
	}
	s.stats.Captures++
	s.stats.BytesSent += uint64(n)
	s.log.Info().Str("file", name).Int("bytes", n).Uint32("seq", cr.Seq).Msg("capture stored")
}
