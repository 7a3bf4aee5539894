// Package testsupport provides shared fixtures for marquee package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"marquee/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Subscribers.DBPath = filepath.Join(base, "data", "subscribers.db")
	cfg.Telegram.BotToken = "123:test"
	cfg.TMDB.APIKey = "test"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithTMDBKey sets the TMDB API key on the test config.
func WithTMDBKey(key string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.TMDB.APIKey = key
	}
}

// WithDigestSchedule overrides the digest firing time.
func WithDigestSchedule(hour, minute int, timezone string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Digest.Hour = hour
		cfg.Digest.Minute = minute
		cfg.Digest.Timezone = timezone
	}
}
