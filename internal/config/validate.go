package config

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateTranslator(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateEnrich(); err != nil {
		return err
	}
	if err := c.validateSessions(); err != nil {
		return err
	}
	if err := c.validateDigest(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// ValidateDaemon applies the additional checks required before the daemon can
// talk to external services. Kept apart from Validate so read-only commands
// (config show, probe) work without credentials.
func (c *Config) ValidateDaemon() error {
	if c.Telegram.BotToken == "" {
		return errors.New("telegram.bot_token is required. Set MARQUEE_TELEGRAM_TOKEN or edit the config file (create with 'marquee config init')")
	}
	if c.TMDB.APIKey == "" {
		return errors.New("tmdb.api_key is required. Set MARQUEE_TMDB_API_KEY or edit the config file (create with 'marquee config init')")
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if c.TMDB.BaseURL == "" {
		return errors.New("tmdb.base_url must be set")
	}
	if c.TMDB.ImageBaseURL == "" {
		return errors.New("tmdb.image_base_url must be set")
	}
	if c.TMDB.MinVoteCount < 0 {
		return errors.New("tmdb.min_vote_count must not be negative")
	}
	return nil
}

func (c *Config) validateTranslator() error {
	if !c.Translator.Enabled {
		return nil
	}
	if c.Translator.BaseURL == "" {
		return errors.New("translator.base_url must be set when translator is enabled")
	}
	if _, err := language.Parse(c.Translator.TargetLang); err != nil {
		return fmt.Errorf("translator.target_lang: unrecognized language tag %q: %w", c.Translator.TargetLang, err)
	}
	return nil
}

func (c *Config) validateMedia() error {
	if c.Media.ProbeAttempts < 1 {
		return errors.New("media.probe_attempts must be at least 1")
	}
	if c.Media.ProbeTimeoutSeconds < 1 {
		return errors.New("media.probe_timeout_seconds must be at least 1")
	}
	if c.Media.ProbeRetryDelayMS < 0 {
		return errors.New("media.probe_retry_delay_ms must not be negative")
	}
	if len(c.Media.Variants) == 0 {
		return errors.New("media.variants must list at least one size")
	}
	return nil
}

func (c *Config) validateEnrich() error {
	if c.Enrich.Workers < 1 {
		return errors.New("enrich.workers must be at least 1")
	}
	if c.Enrich.DeadlineSeconds < 1 {
		return errors.New("enrich.deadline_seconds must be at least 1")
	}
	return nil
}

func (c *Config) validateSessions() error {
	if c.Sessions.RetentionHours < 1 {
		return errors.New("sessions.retention_hours must be at least 1")
	}
	if c.Sessions.MaxSessions < 1 {
		return errors.New("sessions.max_sessions must be at least 1")
	}
	return nil
}

func (c *Config) validateDigest() error {
	if c.Digest.Hour < 0 || c.Digest.Hour > 23 {
		return errors.New("digest.hour must be between 0 and 23")
	}
	if c.Digest.Minute < 0 || c.Digest.Minute > 59 {
		return errors.New("digest.minute must be between 0 and 59")
	}
	if c.Digest.ItemLimit < 1 || c.Digest.ItemLimit > 10 {
		return errors.New("digest.item_limit must be between 1 and 10")
	}
	if _, err := time.LoadLocation(c.Digest.Timezone); err != nil {
		return fmt.Errorf("digest.timezone: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
