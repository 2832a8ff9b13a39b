package config

import (
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	path := filepath.Join("testdata", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.App.Name != "indabananamarket-test" {
		t.Fatalf("unexpected App.Name: %s", cfg.App.Name)
	}
	if cfg.App.LogLevel != "debug" {
		t.Fatalf("unexpected App.LogLevel: %s", cfg.App.LogLevel)
	}
	if cfg.Instrument.Symbol != "ES" {
		t.Fatalf("unexpected Instrument.Symbol: %s", cfg.Instrument.Symbol)
	}
	if cfg.Instrument.VolumeTarget != 1000 {
		t.Fatalf("unexpected volume target: %d", cfg.Instrument.VolumeTarget)
	}
	if cfg.Instrument.TickSize != 0.25 {
		t.Fatalf("unexpected tick size: %.2f", cfg.Instrument.TickSize)
	}
	if cfg.Instrument.PriceMin != 1000 || cfg.Instrument.PriceMax != 15000 {
		t.Fatalf("unexpected sanity band: [%.0f, %.0f]", cfg.Instrument.PriceMin, cfg.Instrument.PriceMax)
	}
	if cfg.Engine.LookbackPeriods != 25 {
		t.Fatalf("unexpected lookback periods: %d", cfg.Engine.LookbackPeriods)
	}
	if cfg.Engine.ValueAreaFraction != 0.7 {
		t.Fatalf("unexpected value area fraction: %.2f", cfg.Engine.ValueAreaFraction)
	}
	if cfg.Engine.RecomputeInterval != 100 {
		t.Fatalf("unexpected recompute interval: %d", cfg.Engine.RecomputeInterval)
	}
	if cfg.Engine.SignalThreshold != 0.85 {
		t.Fatalf("unexpected signal threshold: %.2f", cfg.Engine.SignalThreshold)
	}
	if cfg.Feed.Provider != "gateway" {
		t.Fatalf("unexpected feed provider: %s", cfg.Feed.Provider)
	}
	if cfg.Feed.GatewayURL != "ws://127.0.0.1:4002/ticks" {
		t.Fatalf("unexpected gateway url: %s", cfg.Feed.GatewayURL)
	}
	if cfg.Feed.StubIntervalMs != 50 {
		t.Fatalf("unexpected stub interval: %d", cfg.Feed.StubIntervalMs)
	}
	if cfg.Forward.BaseURL != "http://127.0.0.1:5000" {
		t.Fatalf("unexpected forward base url: %s", cfg.Forward.BaseURL)
	}
	if cfg.Forward.TimeoutMs != 1500 {
		t.Fatalf("unexpected forward timeout: %d", cfg.Forward.TimeoutMs)
	}
	if cfg.Recorder.Path != "/tmp/session.jsonl" {
		t.Fatalf("unexpected recorder path: %s", cfg.Recorder.Path)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "config.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload returned error: %v", err)
	}
	if *reloaded != *cfg {
		t.Fatalf("round trip mismatch: %+v vs %+v", reloaded, cfg)
	}
}
