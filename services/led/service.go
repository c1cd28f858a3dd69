// Package led drives the indicator LED from touch events: button 0 turns
// it on, button 1 turns it off and the slider sets brightness while lit.
package led

import (
	"context"

	"capturelink-go/bus"
	"capturelink-go/errcode"
	"capturelink-go/services/hal/halcore"
	"capturelink-go/types"
	"capturelink-go/x/mathx"
	"capturelink-go/x/ramp"
	"capturelink-go/x/timex"

	"github.com/rs/zerolog"
)

const serviceName = "led"

type Service struct {
	cfg   Config
	log   zerolog.Logger
	out   *output
	conn  *bus.Connection
	sleep timex.Sleeper

	on      bool
	percent uint8

	// in-flight ramp; only touched from Run
	stop context.CancelFunc
	done chan struct{}
}

func New(cfg Config, pin halcore.PWMOutput, conn *bus.Connection) (*Service, error) {
	if pin == nil {
		return nil, &errcode.E{C: errcode.NotInitialized, Op: "led.new", Msg: "no pwm pin"}
	}
	if conn == nil {
		return nil, &errcode.E{C: errcode.NotConfigured, Op: "led.new", Msg: "no bus"}
	}
	def := DefaultConfig()
	if cfg.Top == 0 {
		cfg.Top = def.Top
	}
	if cfg.FreqHz == 0 {
		cfg.FreqHz = def.FreqHz
	}
	if cfg.Percent == 0 {
		cfg.Percent = def.Percent
	}
	return &Service{
		cfg:     cfg,
		log:     cfg.Logger,
		out:     &output{pin: pin, top: cfg.Top, activeLow: cfg.ActiveLow},
		conn:    conn,
		sleep:   timex.Real{},
		percent: mathx.Clamp(cfg.Percent, cfg.MinPercent, 100),
	}, nil
}

// Run configures the pin dark and follows touch events until ctx ends,
// leaving the LED off.
func (s *Service) Run(ctx context.Context) error {
	if err := s.out.init(s.cfg.FreqHz); err != nil {
		return err
	}
	evSub := s.conn.Subscribe(types.TopicTouchEvent())
	defer s.conn.Unsubscribe(evSub)
	cfgSub := s.conn.Subscribe(types.TopicConfig(serviceName))
	defer s.conn.Unsubscribe(cfgSub)
	defer func() {
		s.halt()
		s.out.set(0)
	}()

	s.publish()
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("led service stopping")
			return nil
		case m := <-evSub.Channel():
			if ev, ok := m.Payload.(types.TouchEvent); ok {
				s.handle(ctx, ev)
			}
		case m := <-cfgSub.Channel():
			cfg, err := s.cfg.apply(m.Payload)
			if err != nil {
				s.log.Warn().Err(err).Interface("payload", m.Payload).Msg("led config ignored")
				continue
			}
			s.cfg = cfg
			s.log.Info().
				Dur("ramp", cfg.RampDuration).
				Uint16("steps", cfg.RampSteps).
				Uint8("min_percent", cfg.MinPercent).
				Msg("led config applied")
		}
	}
}

func (s *Service) handle(ctx context.Context, ev types.TouchEvent) {
	switch {
	case ev.Kind == types.ButtonPressed && ev.Button == 0:
		if s.on {
			return
		}
		s.on = true
	case ev.Kind == types.ButtonPressed && ev.Button == 1:
		if !s.on {
			return
		}
		s.on = false
	case ev.Kind == types.SliderMoved:
		// Brightness only follows the slider while lit.
		p := mathx.Clamp(ev.Percent, s.cfg.MinPercent, 100)
		if !s.on || p == s.percent {
			return
		}
		s.percent = p
	default:
		return
	}
	to := s.target()
	s.rampTo(ctx, to)
	s.log.Debug().Bool("on", s.on).Uint8("percent", s.percent).Uint16("level", to).Msg("led")
	s.publish()
}

// target is the logical level for the current state.
func (s *Service) target() uint16 {
	if !s.on {
		return 0
	}
	return uint16(uint32(s.percent) * uint32(s.cfg.Top) / 100)
}

// rampTo replaces any running ramp with one from the current level.
func (s *Service) rampTo(ctx context.Context, to uint16) {
	s.halt()
	rctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.stop, s.done = cancel, done

	from, top := s.out.level, s.out.top
	dur, steps := s.cfg.RampDuration, s.cfg.RampSteps
	go func() {
		defer close(done)
		ramp.StartLinear(from, to, top, dur, steps, ramp.SleepTick(rctx, s.sleep), s.out.set)
	}()
}

// halt stops the running ramp and waits for its last write.
func (s *Service) halt() {
	if s.stop == nil {
		return
	}
	s.stop()
	<-s.done
	s.stop, s.done = nil, nil
}

func (s *Service) publish() {
	st := types.LEDState{On: s.on, Percent: s.percent, Level: s.target()}
	s.conn.Publish(s.conn.NewMessage(types.TopicLEDState(), st, true))
}
