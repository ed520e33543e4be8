package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize default config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists == false for missing file")
	}
	if resolved != path {
		t.Fatalf("resolved path mismatch: %s != %s", resolved, path)
	}
	if cfg.Chunking.MaxChunkSeconds != defaultMaxChunkSeconds {
		t.Fatalf("expected default max chunk seconds, got %v", cfg.Chunking.MaxChunkSeconds)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[chunking]
max_chunk_seconds = 120.0
overlap_seconds = 5.0

[transcription]
workers = 8
trim_strategy = "none"

[pipeline]
failure_threshold = 0.5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected exists == true")
	}
	if cfg.Chunking.MaxChunkSeconds != 120 {
		t.Fatalf("max_chunk_seconds not applied: %v", cfg.Chunking.MaxChunkSeconds)
	}
	if cfg.Transcription.Workers != 8 {
		t.Fatalf("workers not applied: %d", cfg.Transcription.Workers)
	}
	if cfg.Transcription.TrimStrategy != "none" {
		t.Fatalf("trim_strategy not applied: %q", cfg.Transcription.TrimStrategy)
	}
	if cfg.Pipeline.FailureThreshold != 0.5 {
		t.Fatalf("failure_threshold not applied: %v", cfg.Pipeline.FailureThreshold)
	}
	// Untouched sections keep their defaults.
	if cfg.Synthesis.BudgetChars != defaultSynthesisBudget {
		t.Fatalf("synthesis budget should stay default: %d", cfg.Synthesis.BudgetChars)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero chunk duration", func(c *Config) { c.Chunking.MaxChunkSeconds = 0 }, "max_chunk_seconds"},
		{"negative overlap", func(c *Config) { c.Chunking.OverlapSeconds = -1 }, "overlap_seconds"},
		{"overlap exceeds chunk", func(c *Config) { c.Chunking.OverlapSeconds = 700 }, "overlap_seconds"},
		{"bad trim strategy", func(c *Config) { c.Transcription.TrimStrategy = "fuzzy" }, "trim_strategy"},
		{"tiny budget", func(c *Config) { c.Synthesis.BudgetChars = 10 }, "budget_chars"},
		{"multiplier below one", func(c *Config) { c.Retry.Multiplier = 0.5 }, "multiplier"},
		{"threshold above one", func(c *Config) { c.Pipeline.FailureThreshold = 1.5 }, "failure_threshold"},
	}
	for _, tc := range cases {
		cfg := Default()
		tc.mutate(&cfg)
		err := cfg.Validate()
		if err == nil {
			t.Errorf("%s: expected validation error", tc.name)
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: error %q does not mention %q", tc.name, err, tc.want)
		}
	}
}

func TestNormalizeFillsEmptyValues(t *testing.T) {
	cfg := Default()
	cfg.Media.FFprobeBinary = ""
	cfg.Transcription.BaseURL = "http://example.test/v1/"
	cfg.Transcription.Workers = 0
	cfg.Logging.Format = "JSON"
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Media.FFprobeBinary != "ffprobe" {
		t.Fatalf("ffprobe binary not defaulted: %q", cfg.Media.FFprobeBinary)
	}
	if cfg.Transcription.BaseURL != "http://example.test/v1" {
		t.Fatalf("base url not trimmed: %q", cfg.Transcription.BaseURL)
	}
	if cfg.Transcription.Workers != defaultTranscriptionWorkers {
		t.Fatalf("workers not defaulted: %d", cfg.Transcription.Workers)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("format not lowercased: %q", cfg.Logging.Format)
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	if err := WriteSample(path); err == nil {
		t.Fatal("expected error when config already exists")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[chunking]") {
		t.Fatal("sample config missing chunking section")
	}
}
