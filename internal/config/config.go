// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, environment, metrics, and logging levels.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Instrument describes the single futures contract this pipeline tracks.
type Instrument struct {
	Symbol       string  `yaml:"symbol"`
	VolumeTarget int64   `yaml:"volume_target"`
	TickSize     float64 `yaml:"tick_size"`
	PriceMin     float64 `yaml:"price_min"`
	PriceMax     float64 `yaml:"price_max"`
}

// Engine groups tunable knobs for the analytics engines.
type Engine struct {
	LookbackPeriods   int     `yaml:"lookback_periods"`
	ValueAreaFraction float64 `yaml:"value_area_fraction"`
	RecomputeInterval int64   `yaml:"recompute_interval"`
	SignalThreshold   float64 `yaml:"signal_threshold"`
}

// Feed selects and configures the tick source.
type Feed struct {
	Provider       string `yaml:"provider"`
	GatewayURL     string `yaml:"gateway_url"`
	StubIntervalMs int    `yaml:"stub_interval_ms"`
}

// Forward configures the downstream consumer endpoint.
type Forward struct {
	BaseURL   string `yaml:"base_url"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// Recorder configures local JSONL capture of emitted analytics.
type Recorder struct {
	Path string `yaml:"path"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App        App        `yaml:"app"`
	Instrument Instrument `yaml:"instrument"`
	Engine     Engine     `yaml:"engine"`
	Feed       Feed       `yaml:"feed"`
	Forward    Forward    `yaml:"forward"`
	Recorder   Recorder   `yaml:"recorder"`
}

// Load reads a YAML file from disk and hydrates a Config struct.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
