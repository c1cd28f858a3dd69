package config

import (
	"context"
	"encoding/json"
	"errors"

	"capturelink-go/bus"
	"capturelink-go/errcode"
	"capturelink-go/types"

	"github.com/rs/zerolog"
)

const (
	serviceName  = "config"
	configPrefix = types.TokConfig
	CtxDeviceKey = "device" // context key used for device ID
)

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

type ConfigService struct {
	Name string
	log  zerolog.Logger
}

func NewConfigService(log zerolog.Logger) *ConfigService {
	return &ConfigService{Name: serviceName, log: log}
}

// publishConfig reads the device config from embedded data and publishes
// each top-level key as a retained config/<key> message.
func (s *ConfigService) publishConfig(ctx context.Context, conn *bus.Connection) error {
	device, _ := ctx.Value(CtxDeviceKey).(string)
	if device == "" {
		return errcode.Wrap(errcode.NotConfigured, "config.device", errors.New("missing device ID in context"))
	}

	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return &errcode.E{C: errcode.NotConfigured, Op: "config.lookup", Msg: "no embedded config for device " + device}
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return errcode.Wrap(errcode.InvalidParams, "config.decode", err)
	}
	if m == nil {
		return &errcode.E{C: errcode.InvalidParams, Op: "config.decode", Msg: "embedded config is not a JSON object"}
	}

	for k, v := range m {
		conn.Publish(conn.NewMessage(types.TopicConfig(k), v, true))
	}
	s.log.Info().Str("device", device).Int("keys", len(m)).Msg("config published")
	return nil
}

// Start launches the config publisher in a goroutine.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		if err := s.publishConfig(ctx, conn); err != nil {
			s.log.Error().Err(err).Msg("config not published")
		}
	}()
}
