// Package capture runs the audio dispatch loop: debounce the button, start
// one capture at a time, and forward each completed buffer.
package capture

import (
	"context"
	"errors"

	"capturelink-go/bus"
	"capturelink-go/errcode"
	"capturelink-go/services/capture/internal/acquire"
	"capturelink-go/services/capture/internal/debounce"
	"capturelink-go/services/hal/halcore"
	"capturelink-go/services/uplink"
	"capturelink-go/types"
	"capturelink-go/x/signal"
	"capturelink-go/x/timex"

	"github.com/rs/zerolog"
)

const serviceName = "capture"

// Hardware is what the loop drives.
type Hardware struct {
	Button  debounce.Pin
	Sampler halcore.Sampler
	// Sleeper and Clock default to wall time.
	Sleeper timex.Sleeper
	Clock   timex.Clock
}

type Service struct {
	cfg   Config
	log   zerolog.Logger
	conn  *bus.Connection
	tx    *uplink.Sender
	sleep timex.Sleeper
	clock timex.Clock
	pin   debounce.Pin

	done *signal.Flag
	ctrl *acquire.Controller
	deb  *debounce.Debouncer

	cfgSub *bus.Subscription
	seq    uint32
	stats  types.PipelineStats
}

// New checks the hardware and allocates the capture buffer. A missing
// sampler or button is a configuration error.
func New(cfg Config, hw Hardware, tx *uplink.Sender, conn *bus.Connection) (*Service, error) {
	if hw.Sampler == nil || hw.Button == nil {
		return nil, &errcode.E{C: errcode.NotInitialized, Op: "capture.new", Msg: "no sampler or button"}
	}
	if tx == nil || conn == nil {
		return nil, &errcode.E{C: errcode.NotConfigured, Op: "capture.new", Msg: "no uplink or bus"}
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = types.CaptureBytes
	}
	if hw.Sleeper == nil {
		hw.Sleeper = timex.Real{}
	}
	if hw.Clock == nil {
		hw.Clock = timex.Real{}
	}
	s := &Service{
		cfg:   cfg,
		log:   cfg.Logger,
		conn:  conn,
		tx:    tx,
		sleep: hw.Sleeper,
		clock: hw.Clock,
		pin:   hw.Button,
		done:  signal.NewFlag(),
	}
	s.ctrl = acquire.New(hw.Sampler, cfg.Capacity, s.done).WithClock(hw.Clock.Now)
	s.deb = debounce.New(hw.Button, cfg.Debounce, hw.Sleeper)
	return s, nil
}

// Run loops until ctx ends.
func (s *Service) Run(ctx context.Context) error {
	sub := s.subscribe()
	defer s.conn.Unsubscribe(sub)

	s.log.Info().Int("capacity", s.cfg.Capacity).Dur("arm_delay", s.cfg.ArmDelay).Msg("capture loop started")
	for {
		if err := s.Step(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				s.log.Info().Msg("capture loop stopping")
				return nil
			}
			return err
		}
	}
}

// Step runs one iteration: completion, watchdog, trigger, yield.
func (s *Service) Step(ctx context.Context) error {
	s.pollConfig()

	if s.ctrl.TakeDone() {
		s.forward()
	}
	s.watchdog()

	pressed, err := s.deb.Poll(ctx)
	if err != nil {
		return err
	}
	if pressed {
		if err := s.arm(ctx); err != nil {
			return err
		}
	}
	return s.sleep.Sleep(ctx, s.cfg.LoopInterval)
}

func (s *Service) forward() {
	s.seq++
	s.stats.Captures++
	buf := s.ctrl.Buffer()

	s.conn.Publish(s.conn.NewMessage(types.TopicCaptureReady(), types.CaptureReady{
		Seq:     s.seq,
		Data:    buf,
		At:      s.clock.Now(),
		Release: s.ctrl.Hold(s.cfg.ReadyHolders),
	}, false))

	n, err := s.tx.SendFramed(buf)
	s.stats.BytesSent += uint64(n)
	if err != nil {
		s.stats.Failed++
		s.log.Error().Err(err).Str("code", string(errcode.Of(err))).
			Uint32("seq", s.seq).Int("sent", n).Int("size", len(buf)).Msg("send capture")
	} else {
		s.stats.Sent++
		s.log.Info().Uint32("seq", s.seq).Int("bytes", n).Msg("capture sent")
	}
	s.publishStats()
}

func (s *Service) watchdog() {
	if s.cfg.CaptureTimeout <= 0 {
		return
	}
	busy := s.ctrl.BusyFor(s.clock.Now())
	if busy <= s.cfg.CaptureTimeout {
		return
	}
	s.stats.Timeouts++
	err := s.ctrl.Abort()
	s.log.Error().Err(err).Str("code", string(errcode.CaptureTimeout)).
		Dur("busy", busy).Msg("capture aborted")
	s.publishStats()
}

func (s *Service) arm(ctx context.Context) error {
	s.log.Info().Msg("button released, arming capture")
	if s.cfg.ArmDelay > 0 {
		if err := s.sleep.Sleep(ctx, s.cfg.ArmDelay); err != nil {
			return err
		}
	}
	if err := s.ctrl.Start(); err != nil {
		s.log.Warn().Err(err).Str("code", string(errcode.Of(err))).Msg("start capture")
		return nil
	}
	s.log.Info().Uint32("gen", s.ctrl.Generation()).Msg("capture started")
	return nil
}

func (s *Service) subscribe() *bus.Subscription {
	s.cfgSub = s.conn.Subscribe(types.TopicConfig(serviceName))
	return s.cfgSub
}

func (s *Service) pollConfig() {
	if s.cfgSub == nil {
		return
	}
	select {
	case m, ok := <-s.cfgSub.Channel():
		if !ok {
			s.cfgSub = nil
			return
		}
		cfg, err := s.cfg.apply(m.Payload)
		if err != nil {
			s.log.Warn().Err(err).Msg("bad capture config")
			return
		}
		s.cfg = cfg
		s.deb = debounce.New(s.pin, cfg.Debounce, s.sleep)
		s.log.Info().Dur("arm_delay", cfg.ArmDelay).Dur("timeout", cfg.CaptureTimeout).
			Int("debounce_units", cfg.Debounce.Threshold).Msg("capture config applied")
	default:
	}
}

func (s *Service) publishStats() {
	s.conn.Publish(s.conn.NewMessage(types.TopicStats(serviceName), s.stats, true))
}

// Stats is owned by the loop; read it between Steps or after Run returns.
// Other goroutines subscribe to stats/capture instead.
func (s *Service) Stats() types.PipelineStats { return s.stats }

// Busy reports whether a capture is outstanding.
func (s *Service) Busy() bool { return s.ctrl.Busy() }
