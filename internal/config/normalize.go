package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

func (c *Config) applyEnvOverrides() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env overrides: %w", err)
	}
	return nil
}

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTelegram()
	c.normalizeTMDB()
	c.normalizeTranslator()
	c.normalizeMedia()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Subscribers.DBPath) == "" && c.Paths.DataDir != "" {
		c.Subscribers.DBPath = filepath.Join(c.Paths.DataDir, "subscribers.db")
	} else if c.Subscribers.DBPath, err = expandPath(c.Subscribers.DBPath); err != nil {
		return fmt.Errorf("subscribers.db_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeTelegram() {
	c.Telegram.BotToken = strings.TrimSpace(c.Telegram.BotToken)
	c.Telegram.BaseURL = strings.TrimRight(strings.TrimSpace(c.Telegram.BaseURL), "/")
	if c.Telegram.ParseMode = strings.TrimSpace(c.Telegram.ParseMode); c.Telegram.ParseMode == "" {
		c.Telegram.ParseMode = defaultParseMode
	}
	if c.Telegram.SendIntervalMS <= 0 {
		c.Telegram.SendIntervalMS = defaultSendIntervalMS
	}
	if c.Telegram.PollTimeoutSeconds <= 0 {
		c.Telegram.PollTimeoutSeconds = defaultPollTimeoutSeconds
	}
}

func (c *Config) normalizeTMDB() {
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	c.TMDB.ImageBaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.ImageBaseURL), "/")
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	c.TMDB.Region = strings.ToUpper(strings.TrimSpace(c.TMDB.Region))
}

func (c *Config) normalizeTranslator() {
	c.Translator.BaseURL = strings.TrimRight(strings.TrimSpace(c.Translator.BaseURL), "/")
	c.Translator.TargetLang = strings.ToLower(strings.TrimSpace(c.Translator.TargetLang))
	if c.Translator.TimeoutSeconds <= 0 {
		c.Translator.TimeoutSeconds = defaultTranslatorTimeout
	}
	if c.Translator.Attempts <= 0 {
		c.Translator.Attempts = defaultTranslatorAttempts
	}
}

func (c *Config) normalizeMedia() {
	variants := make([]string, 0, len(c.Media.Variants))
	for _, v := range c.Media.Variants {
		if v = strings.TrimSpace(v); v != "" {
			variants = append(variants, v)
		}
	}
	if len(variants) == 0 {
		variants = defaultVariants()
	}
	c.Media.Variants = variants
	c.Media.PlaceholderURL = strings.TrimSpace(c.Media.PlaceholderURL)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
