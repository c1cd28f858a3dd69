// Package touch runs the touch dispatch loop: a scan timer and the sensor's
// end-of-scan callback post commands into one bounded queue; the loop
// scans, classifies and forwards.
package touch

import (
	"context"
	"time"

	"capturelink-go/bus"
	"capturelink-go/errcode"
	"capturelink-go/services/hal/halcore"
	"capturelink-go/services/touch/internal/classify"
	"capturelink-go/services/uplink"
	"capturelink-go/types"
	"capturelink-go/x/signal"
	"capturelink-go/x/timex"

	"github.com/rs/zerolog"
)

const serviceName = "touch"

// Op is a queued command.
type Op uint8

const (
	OpScan Op = iota + 1
	OpProcess
)

func (o Op) String() string {
	switch o {
	case OpScan:
		return "scan"
	case OpProcess:
		return "process"
	default:
		return "unknown"
	}
}

type Service struct {
	cfg    Config
	log    zerolog.Logger
	sensor halcore.TouchSensor
	tx     *uplink.Sender
	conn   *bus.Connection
	clock  timex.Clock

	q   *signal.Queue[Op]
	cls *classify.Classifier

	evs   []types.TouchEvent
	cmds  []types.Command
	stats types.PipelineStats
}

func New(cfg Config, sensor halcore.TouchSensor, tx *uplink.Sender, conn *bus.Connection) (*Service, error) {
	if sensor == nil {
		return nil, &errcode.E{C: errcode.NotInitialized, Op: "touch.new", Msg: "no sensor"}
	}
	if tx == nil || conn == nil {
		return nil, &errcode.E{C: errcode.NotConfigured, Op: "touch.new", Msg: "no uplink or bus"}
	}
	if cfg.ScanInterval <= 0 {
		cfg.ScanInterval = DefaultConfig().ScanInterval
	}
	s := &Service{
		cfg:    cfg,
		log:    cfg.Logger,
		sensor: sensor,
		tx:     tx,
		conn:   conn,
		clock:  timex.Real{},
		q:      signal.NewQueue[Op](cfg.QueueDepth),
		cls:    classify.New(cfg.Classify),
	}
	sensor.SetEndOfScan(s.q.ISRPoster(OpProcess))
	return s, nil
}

// WithClock replaces the time source used for rate limiting.
func (s *Service) WithClock(c timex.Clock) *Service {
	s.clock = c
	return s
}

// Run starts the scan timer and drains the queue until ctx ends.
func (s *Service) Run(ctx context.Context) error {
	cfgSub := s.conn.Subscribe(types.TopicConfig(serviceName))
	defer s.conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(s.cfg.ScanInterval)
	defer tick.Stop()
	stopTimer := s.startTimer(ctx, tick)
	defer stopTimer()

	cfgC := cfgSub.Channel()
	s.log.Info().Dur("interval", s.cfg.ScanInterval).Msg("touch loop started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("touch loop stopping")
			return nil
		case op := <-s.q.C():
			s.Handle(op)
		case m, ok := <-cfgC:
			if !ok {
				cfgC = nil
				continue
			}
			s.applyConfig(m.Payload, tick)
		}
	}
}

// startTimer posts OpScan on every tick from its own goroutine, the way a
// timer callback would.
func (s *Service) startTimer(ctx context.Context, tick *time.Ticker) func() {
	done := make(chan struct{})
	post := s.q.ISRPoster(OpScan)
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				post()
			}
		}
	}()
	return func() { <-done }
}

// Handle executes one command. Nothing runs while the sensor is scanning.
func (s *Service) Handle(op Op) {
	if s.sensor.IsBusy() {
		return
	}
	switch op {
	case OpScan:
		if err := s.sensor.ScanAll(); err != nil {
			s.log.Warn().Err(err).Str("code", string(errcode.Of(err))).Msg("start scan")
		}
	case OpProcess:
		s.process()
	}
}

func (s *Service) process() {
	s.evs, s.cmds = s.evs[:0], s.cmds[:0]
	defer s.refreshStats()
	f, err := s.sensor.Process()
	if err != nil {
		s.log.Warn().Err(err).Str("code", string(errcode.Of(err))).Msg("process scan")
		return
	}
	s.evs, s.cmds = s.cls.Classify(f, s.clock.Now(), s.evs[:0], s.cmds[:0])
	for _, ev := range s.evs {
		s.stats.Events++
		s.log.Debug().Stringer("kind", ev.Kind).Uint8("button", ev.Button).
			Uint16("position", ev.Position).Uint8("percent", ev.Percent).Msg("touch event")
		s.conn.Publish(s.conn.NewMessage(types.TopicTouchEvent(), ev, false))
	}
	for _, cmd := range s.cmds {
		if err := s.tx.SendCommand(cmd); err != nil {
			s.stats.Failed++
			s.log.Warn().Err(err).Str("code", string(errcode.Of(err))).Int("value", cmd.Code()).Msg("send command")
			continue
		}
		s.stats.Sent++
	}
}

// refreshStats publishes stats/touch when a cycle produced events or the
// queue dropped posts since the last publish.
func (s *Service) refreshStats() {
	drops := s.q.Drops()
	if len(s.evs) == 0 && drops == s.stats.ISRDrops {
		return
	}
	if drops != s.stats.ISRDrops {
		s.log.Warn().Uint32("isr_drops", drops).Msg("touch queue overflow")
	}
	s.stats.ISRDrops = drops
	s.conn.Publish(s.conn.NewMessage(types.TopicStats(serviceName), s.stats, true))
}

func (s *Service) applyConfig(payload any, tick *time.Ticker) {
	cfg, err := s.cfg.apply(payload)
	if err != nil {
		s.log.Warn().Err(err).Msg("bad touch config")
		return
	}
	s.cfg = cfg
	s.cls = classify.New(cfg.Classify)
	tick.Reset(cfg.ScanInterval)
	s.log.Info().Dur("interval", cfg.ScanInterval).Uint16("hysteresis", cfg.Classify.Hysteresis).
		Msg("touch config applied")
}

// Drops counts commands lost because the queue was full.
func (s *Service) Drops() uint32 { return s.q.Drops() }

// Stats is owned by the loop; other goroutines subscribe to stats/touch.
func (s *Service) Stats() types.PipelineStats { return s.stats }
