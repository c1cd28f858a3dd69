// Package device assembles the bus and every pipeline service for one
// board and runs them until the context ends.
package device

import (
	"context"
	"io"
	"time"

	"capturelink-go/bus"
	"capturelink-go/services/capture"
	"capturelink-go/services/config"
	"capturelink-go/services/hal/platform"
	"capturelink-go/services/heartbeat"
	"capturelink-go/services/led"
	"capturelink-go/services/internal/util"
	"capturelink-go/services/storage"
	"capturelink-go/services/touch"
	"capturelink-go/services/uplink"
	"capturelink-go/types"
	"capturelink-go/x/logx"

	"github.com/rs/zerolog"
)

// Options selects the board and the host-specific pieces.
type Options struct {
	Platform *platform.Platform
	// DeviceID picks the embedded config; defaults to the board's.
	DeviceID string

	Log   io.Writer
	Level zerolog.Level

	// Dial opens the uplink transport; nil uses UDP.
	Dial uplink.Dialer
	// OpenSink opens the capture store; nil disables storage.
	OpenSink func(dir string) (storage.Sink, error)
	// ConfigWait bounds how long boot waits for the storage config.
	ConfigWait time.Duration
	BusLen     int
}

type storageSettings struct {
	Enabled bool   `json:"enabled"`
	Dir     string `json:"dir"`
}

func (o *Options) logger(component string) zerolog.Logger {
	return logx.New(o.Log, component).Level(o.Level)
}

// Run blocks until ctx ends or the capture loop fails.
func Run(ctx context.Context, o Options) error {
	if o.BusLen <= 0 {
		o.BusLen = 16
	}
	if o.ConfigWait <= 0 {
		o.ConfigWait = 500 * time.Millisecond
	}
	if o.Dial == nil {
		o.Dial = uplink.DialSettings
	}
	if o.DeviceID == "" {
		o.DeviceID = o.Platform.Board.ConfigID
	}
	log := o.logger("device")
	b := bus.NewBus(o.BusLen)

	boot := b.NewConnection("device")
	stSub := boot.Subscribe(types.TopicConfig("storage"))
	config.NewConfigService(o.logger("config")).
		Start(context.WithValue(ctx, config.CtxDeviceKey, o.DeviceID), b.NewConnection("config"))

	var sink storage.Sink
	select {
	case m := <-stSub.Channel():
		st, err := util.Overlay(m.Payload, storageSettings{})
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("storage config ignored")
		case st.Enabled && o.OpenSink != nil:
			if sink, err = o.OpenSink(st.Dir); err != nil {
				log.Error().Err(err).Str("dir", st.Dir).Msg("storage disabled")
				sink = nil
			}
		}
	case <-time.After(o.ConfigWait):
		log.Warn().Str("device", o.DeviceID).Msg("no storage config")
	case <-ctx.Done():
		return nil
	}
	boot.Unsubscribe(stSub)

	// Captures and commands go out on separate sockets, so the collector
	// keys them as different peers and a short tail chunk can never be
	// mistaken for a command.
	tx := uplink.NewSender(uplink.Config{Logger: o.logger("uplink")})
	go tx.Follow(ctx, b.NewConnection("uplink"), o.Dial)
	cmdTx := uplink.NewSender(uplink.Config{Logger: o.logger("uplink-cmd")})
	go cmdTx.Follow(ctx, b.NewConnection("uplink-cmd"), o.Dial)

	_ = heartbeat.New(o.logger("heartbeat")).Start(ctx, b.NewConnection("heartbeat"))

	ccfg := capture.DefaultConfig()
	ccfg.Logger = o.logger("capture")
	ccfg.Debounce.ActiveLow = o.Platform.Board.ButtonActiveLow
	if sink != nil {
		storage.New(storage.Config{Logger: o.logger("storage")}, sink).Start(ctx, b.NewConnection("storage"))
		ccfg.ReadyHolders = 1
	}

	p := o.Platform
	if p.LED != nil {
		lcfg := led.DefaultConfig()
		lcfg.Logger = o.logger("led")
		lcfg.FreqHz = p.Board.LEDFreqHz
		lcfg.ActiveLow = p.Board.LEDActiveLow
		ls, err := led.New(lcfg, p.LED, b.NewConnection("led"))
		if err != nil {
			return err
		}
		go func() {
			if err := ls.Run(ctx); err != nil {
				log.Error().Err(err).Msg("led loop stopped")
			}
		}()
	} else {
		log.Warn().Err(p.LEDErr).Msg("led disabled")
	}
	if p.Touch != nil {
		tcfg := touch.DefaultConfig()
		tcfg.Logger = o.logger("touch")
		ts, err := touch.New(tcfg, p.Touch, cmdTx, b.NewConnection("touch"))
		if err != nil {
			return err
		}
		go func() {
			if err := ts.Run(ctx); err != nil {
				log.Error().Err(err).Msg("touch loop stopped")
			}
		}()
	} else {
		log.Warn().Err(p.TouchErr).Msg("touch disabled")
	}

	cs, err := capture.New(ccfg, capture.Hardware{Button: p.Button, Sampler: p.Sampler}, tx, b.NewConnection("capture"))
	if err != nil {
		return err
	}
	log.Info().Str("board", p.Board.Name).Str("device", o.DeviceID).Bool("storage", sink != nil).Msg("boot complete")
	return cs.Run(ctx)
}
