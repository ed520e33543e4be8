package testsupport

import (
	"path/filepath"
	"testing"

	"distill/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Transcription.APIKey = "test"
	cfg.Synthesis.APIKey = "test"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithTranscriptionURL points the test config at a transcription endpoint,
// typically an httptest server.
func WithTranscriptionURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Transcription.BaseURL = url
	}
}

// WithSynthesisURL points the test config at a completion endpoint.
func WithSynthesisURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Synthesis.BaseURL = url
	}
}

// WithFailureThreshold overrides the partial-failure threshold.
func WithFailureThreshold(threshold float64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Pipeline.FailureThreshold = threshold
	}
}
