package collector

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the collector's YAML configuration.
type Config struct {
	Listen      string        `yaml:"listen"`
	OutDir      string        `yaml:"out_dir"`
	ArchiveDir  string        `yaml:"archive_dir"` // empty disables the archive
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	MaxPayload  int           `yaml:"max_payload"`
	Trend       TrendConfig   `yaml:"trend"`
	Audio       AudioConfig   `yaml:"audio"`
	LogLevel    string        `yaml:"log_level"`
}

type TrendConfig struct {
	Threshold int `yaml:"threshold"`
}

// AudioConfig describes the PCM carried in a payload.
type AudioConfig struct {
	SampleRate    int `yaml:"sample_rate"`
	Channels      int `yaml:"channels"`
	BitsPerSample int `yaml:"bits_per_sample"`
}

func Default() *Config {
	return &Config{
		Listen:      "0.0.0.0:57345",
		OutDir:      "recordings",
		ArchiveDir:  "archive",
		IdleTimeout: 5 * time.Second,
		MaxPayload:  1 << 20,
		Trend:       TrendConfig{Threshold: 70},
		Audio:       AudioConfig{SampleRate: 16000, Channels: 1, BitsPerSample: 16},
		LogLevel:    "info",
	}
}

// Load reads filename over the defaults. A missing file yields defaults.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.ensureDefaults()
	return cfg, nil
}

func (c *Config) ensureDefaults() {
	def := Default()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.OutDir == "" {
		c.OutDir = def.OutDir
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = def.IdleTimeout
	}
	if c.MaxPayload <= 0 {
		c.MaxPayload = def.MaxPayload
	}
	if c.Trend.Threshold <= 0 {
		c.Trend.Threshold = def.Trend.Threshold
	}
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = def.Audio.SampleRate
	}
	if c.Audio.Channels <= 0 {
		c.Audio.Channels = def.Audio.Channels
	}
	if c.Audio.BitsPerSample <= 0 {
		c.Audio.BitsPerSample = def.Audio.BitsPerSample
	}
}
