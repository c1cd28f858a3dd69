// Package heartbeat logs a periodic health line built from the retained
// stats/<service> messages.
package heartbeat

import (
	"context"
	"sort"
	"time"

	"capturelink-go/bus"
	"capturelink-go/services/internal/util"
	"capturelink-go/types"

	"github.com/rs/zerolog"
)

const serviceName = "heartbeat"

type Service struct {
	Interval time.Duration
	Logger   zerolog.Logger

	stats map[string]types.PipelineStats
}

func New(log zerolog.Logger) *Service {
	return &Service{Interval: time.Second, Logger: log}
}

type settings struct {
	Interval float64 `json:"interval"` // seconds
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(types.TopicConfig(serviceName))
	defer conn.Unsubscribe(cfgSub)
	statSub := conn.Subscribe(types.TopicStats(bus.SingleWild))
	defer conn.Unsubscribe(statSub)

	if s.Interval <= 0 {
		s.Interval = time.Second
	}
	tick := time.NewTicker(s.Interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Logger.Info().Msg("heartbeat service stopping")
			return
		case <-tick.C:
			s.beat()
		case msg := <-statSub.Channel():
			if st, ok := msg.Payload.(types.PipelineStats); ok && len(msg.Topic) == 2 {
				if name, ok := msg.Topic[1].(string); ok {
					s.stats[name] = st
				}
			}
		case msg := <-cfgSub.Channel():
			st, err := util.Overlay(msg.Payload, settings{Interval: s.Interval.Seconds()})
			if err != nil || st.Interval <= 0 {
				s.Logger.Warn().Err(err).Interface("payload", msg.Payload).Msg("heartbeat config ignored")
				continue
			}
			s.Interval = time.Duration(st.Interval * float64(time.Second))
			tick.Reset(s.Interval)
			s.Logger.Info().Dur("interval", s.Interval).Msg("heartbeat interval set")
		}
	}
}

// beat logs totals plus one dictionary per reporting service.
func (s *Service) beat() {
	var total types.PipelineStats
	names := make([]string, 0, len(s.stats))
	for name, st := range s.stats {
		names = append(names, name)
		total.Captures += st.Captures
		total.Sent += st.Sent
		total.Failed += st.Failed
		total.ISRDrops += st.ISRDrops
	}
	sort.Strings(names)

	ev := s.Logger.Info().
		Uint32("captures", total.Captures).
		Uint32("sent", total.Sent).
		Uint32("failed", total.Failed).
		Uint32("isr_drops", total.ISRDrops)
	for _, name := range names {
		st := s.stats[name]
		ev = ev.Dict(name, zerolog.Dict().
			Uint32("captures", st.Captures).
			Uint32("sent", st.Sent).
			Uint32("failed", st.Failed).
			Uint32("timeouts", st.Timeouts).
			Uint32("events", st.Events).
			Uint32("isr_drops", st.ISRDrops).
			Uint64("bytes_sent", st.BytesSent))
	}
	ev.Msg("heartbeat")
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	s.stats = make(map[string]types.PipelineStats)
	go s.serviceLoop(ctx, conn)
	return nil
}
