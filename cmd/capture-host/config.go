package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the host runner's YAML configuration. Empty fields fall back to
// the embedded device config.
type Config struct {
	Device     string `yaml:"device"`
	Peer       string `yaml:"peer"`
	StorageDir string `yaml:"storage_dir"`
	LogLevel   string `yaml:"log_level"`
	LogFile    string `yaml:"log_file"`
}

func Default() *Config {
	return &Config{
		Device:   "host",
		LogLevel: "info",
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
	if cfg.Device == "" {
		cfg.Device = Default().Device
	}
	return cfg, nil
}
