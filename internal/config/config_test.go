package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"marquee/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if resolved != path {
		t.Fatalf("resolved path mismatch: %s", resolved)
	}
	if cfg.Enrich.Workers != 5 {
		t.Fatalf("expected default worker count 5, got %d", cfg.Enrich.Workers)
	}
	if cfg.Media.ProbeAttempts != 3 {
		t.Fatalf("expected default probe attempts 3, got %d", cfg.Media.ProbeAttempts)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[enrich]
workers = 2

[media]
variants = ["w500"]

[digest]
hour = 9
minute = 30
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Enrich.Workers != 2 {
		t.Fatalf("workers override not applied: %d", cfg.Enrich.Workers)
	}
	if len(cfg.Media.Variants) != 1 || cfg.Media.Variants[0] != "w500" {
		t.Fatalf("variants override not applied: %v", cfg.Media.Variants)
	}
	if cfg.Digest.Hour != 9 || cfg.Digest.Minute != 30 {
		t.Fatalf("digest schedule not applied: %d:%d", cfg.Digest.Hour, cfg.Digest.Minute)
	}
}

func TestEnvOverridesToken(t *testing.T) {
	t.Setenv("MARQUEE_TELEGRAM_TOKEN", "env-token")
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Telegram.BotToken != "env-token" {
		t.Fatalf("env override not applied: %q", cfg.Telegram.BotToken)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"zero probe attempts", func(c *config.Config) { c.Media.ProbeAttempts = 0 }, "probe_attempts"},
		{"no variants", func(c *config.Config) { c.Media.Variants = nil }, "variants"},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad digest hour", func(c *config.Config) { c.Digest.Hour = 24 }, "digest.hour"},
		{"bad target lang", func(c *config.Config) { c.Translator.TargetLang = "zz-!!" }, "target_lang"},
		{"zero workers", func(c *config.Config) { c.Enrich.Workers = 0 }, "workers"},
		{"item limit too large", func(c *config.Config) { c.Digest.ItemLimit = 11 }, "item_limit"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestValidateDaemonRequiresCredentials(t *testing.T) {
	cfg := config.Default()
	if err := cfg.ValidateDaemon(); err == nil {
		t.Fatal("expected error without bot token")
	}
	cfg.Telegram.BotToken = "tok"
	if err := cfg.ValidateDaemon(); err == nil {
		t.Fatal("expected error without tmdb api key")
	}
	cfg.TMDB.APIKey = "key"
	if err := cfg.ValidateDaemon(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample returned error: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected error when config already exists")
	}
	// The sample must itself be loadable.
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}
