package main

import (
	"fmt"
	"log/slog"
	"time"

	"marquee/internal/announce"
	"marquee/internal/catalog"
	"marquee/internal/config"
	"marquee/internal/delivery"
	"marquee/internal/enrich"
	"marquee/internal/mediaprobe"
	"marquee/internal/session"
	"marquee/internal/subscribers"
	"marquee/internal/telegram"
	"marquee/internal/translate"
)

// components bundles the wired collaborators a digest-serving command needs.
type components struct {
	client    *telegram.Client
	poller    *telegram.Poller
	deliverer *delivery.Deliverer
	announcer *announce.Announcer
	registry  *subscribers.Store
}

// close releases held resources.
func (c *components) close() {
	if c.registry != nil {
		_ = c.registry.Close()
	}
}

// buildComponents wires the full pipeline from config. The caller must
// close the result.
func buildComponents(cfg *config.Config, logger *slog.Logger) (*components, error) {
	source, err := catalog.NewTMDB(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language,
		catalog.WithLogger(logger),
		catalog.WithMinVoteCount(cfg.TMDB.MinVoteCount))
	if err != nil {
		return nil, fmt.Errorf("catalog source: %w", err)
	}

	var translator translate.Translator = translate.Noop{}
	if cfg.Translator.Enabled {
		translator, err = translate.NewClient(translate.Config{
			BaseURL:        cfg.Translator.BaseURL,
			APIKey:         cfg.Translator.APIKey,
			TimeoutSeconds: cfg.Translator.TimeoutSeconds,
			Attempts:       cfg.Translator.Attempts,
		})
		if err != nil {
			return nil, fmt.Errorf("translator: %w", err)
		}
	}

	resolver := newResolver(cfg, logger)
	pipeline := enrich.NewPipeline(translator, resolver, cfg.Translator.TargetLang,
		enrich.WithWorkers(cfg.Enrich.Workers),
		enrich.WithLogger(logger))

	sessions := session.NewStore(session.Config{
		Retention:   time.Duration(cfg.Sessions.RetentionHours) * time.Hour,
		MaxSessions: cfg.Sessions.MaxSessions,
	}, session.WithLogger(logger))

	client, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.BaseURL,
		telegram.WithParseMode(cfg.Telegram.ParseMode),
		telegram.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("telegram client: %w", err)
	}

	deliverer := delivery.NewDeliverer(client,
		delivery.WithPlaceholder(cfg.Media.PlaceholderURL),
		delivery.WithLogger(logger))

	registry, err := subscribers.Open(cfg.Subscribers.DBPath)
	if err != nil {
		return nil, fmt.Errorf("subscriber registry: %w", err)
	}

	pacer := delivery.NewPacer(time.Duration(cfg.Telegram.SendIntervalMS) * time.Millisecond)
	announcer := announce.New(source, pipeline, sessions, deliverer, registry,
		announce.Config{
			Region:         cfg.TMDB.Region,
			ItemLimit:      cfg.Digest.ItemLimit,
			EnrichDeadline: time.Duration(cfg.Enrich.DeadlineSeconds) * time.Second,
		},
		announce.WithLogger(logger),
		announce.WithPacer(pacer))

	return &components{
		client:    client,
		poller:    telegram.NewPoller(client, cfg.Telegram.PollTimeoutSeconds, logger),
		deliverer: deliverer,
		announcer: announcer,
		registry:  registry,
	}, nil
}

func newResolver(cfg *config.Config, logger *slog.Logger) *mediaprobe.Resolver {
	return mediaprobe.NewResolver(mediaprobe.Config{
		ImageBaseURL:  cfg.TMDB.ImageBaseURL,
		Variants:      cfg.Media.Variants,
		ProbeAttempts: cfg.Media.ProbeAttempts,
		ProbeTimeout:  time.Duration(cfg.Media.ProbeTimeoutSeconds) * time.Second,
		ProbeDelay:    time.Duration(cfg.Media.ProbeRetryDelayMS) * time.Millisecond,
		CacheSize:     cfg.Media.ProbeCacheSize,
		CacheTTL:      time.Duration(cfg.Media.ProbeCacheTTLMinutes) * time.Minute,
	}, mediaprobe.WithLogger(logger))
}
