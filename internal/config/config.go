package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Telegram contains settings for the messaging sink.
type Telegram struct {
	BotToken           string `toml:"bot_token" env:"MARQUEE_TELEGRAM_TOKEN"`
	BaseURL            string `toml:"base_url"`
	ParseMode          string `toml:"parse_mode"`
	SendIntervalMS     int    `toml:"send_interval_ms"`
	PollTimeoutSeconds int    `toml:"poll_timeout_seconds"`
}

// TMDB contains configuration for The Movie Database catalog source.
type TMDB struct {
	APIKey       string `toml:"api_key" env:"MARQUEE_TMDB_API_KEY"`
	BaseURL      string `toml:"base_url"`
	ImageBaseURL string `toml:"image_base_url"`
	Language     string `toml:"language"`
	Region       string `toml:"region"`
	MinVoteCount int    `toml:"min_vote_count"`
}

// Translator contains settings for the best-effort summary translation service.
type Translator struct {
	Enabled        bool   `toml:"enabled"`
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key" env:"MARQUEE_TRANSLATOR_API_KEY"`
	TargetLang     string `toml:"target_lang"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Attempts       int    `toml:"attempts"`
}

// Media contains configuration for poster probing and fallback media.
type Media struct {
	Variants             []string `toml:"variants"`
	ProbeAttempts        int      `toml:"probe_attempts"`
	ProbeTimeoutSeconds  int      `toml:"probe_timeout_seconds"`
	ProbeRetryDelayMS    int      `toml:"probe_retry_delay_ms"`
	ProbeCacheSize       int      `toml:"probe_cache_size"`
	ProbeCacheTTLMinutes int      `toml:"probe_cache_ttl_minutes"`
	PlaceholderURL       string   `toml:"placeholder_url"`
}

// Enrich contains fan-out settings for the enrichment pipeline.
type Enrich struct {
	Workers         int `toml:"workers"`
	DeadlineSeconds int `toml:"deadline_seconds"`
}

// Sessions contains retention settings for pagination sessions.
type Sessions struct {
	RetentionHours int `toml:"retention_hours"`
	MaxSessions    int `toml:"max_sessions"`
}

// Subscribers contains the subscriber registry settings.
type Subscribers struct {
	DBPath string `toml:"db_path"`
}

// Digest contains the daily digest schedule.
type Digest struct {
	Hour      int    `toml:"hour"`
	Minute    int    `toml:"minute"`
	Timezone  string `toml:"timezone"`
	ItemLimit int    `toml:"item_limit"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Config encapsulates all configuration values for marquee.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories
//   - Telegram: messaging sink connection and pacing
//   - TMDB: catalog source for daily releases and premieres
//   - Translator: best-effort summary translation
//   - Media: poster variant probing and placeholder fallback
//   - Enrich: pipeline fan-out width and run deadline
//   - Sessions: pagination session retention
//   - Subscribers: chat registry database
//   - Digest: daily schedule
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Telegram    Telegram    `toml:"telegram"`
	TMDB        TMDB        `toml:"tmdb"`
	Translator  Translator  `toml:"translator"`
	Media       Media       `toml:"media"`
	Enrich      Enrich      `toml:"enrich"`
	Sessions    Sessions    `toml:"sessions"`
	Subscribers Subscribers `toml:"subscribers"`
	Digest      Digest      `toml:"digest"`
	Logging     Logging     `toml:"logging"`
}

// EnsureDirectories creates the configured data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/marquee/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has env overrides applied and all path fields expanded.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	projectPath, err := filepath.Abs("marquee.toml")
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// WriteSample writes the embedded sample configuration to path, refusing to
// clobber an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	return filepath.Abs(trimmed)
}
