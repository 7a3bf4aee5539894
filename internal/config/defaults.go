package config

const (
	defaultDataDir              = "~/.local/share/marquee"
	defaultLogDir               = "~/.local/share/marquee/logs"
	defaultTelegramBaseURL      = "https://api.telegram.org"
	defaultParseMode            = "Markdown"
	defaultSendIntervalMS       = 1000
	defaultPollTimeoutSeconds   = 30
	defaultTMDBBaseURL          = "https://api.themoviedb.org/3"
	defaultTMDBImageBaseURL     = "https://image.tmdb.org/t/p"
	defaultTMDBLanguage         = "en-US"
	defaultTMDBRegion           = "US"
	defaultMinVoteCount         = 10
	defaultTranslatorBaseURL    = "https://libretranslate.com"
	defaultTranslatorTarget     = "en"
	defaultTranslatorTimeout    = 15
	defaultTranslatorAttempts   = 2
	defaultProbeAttempts        = 3
	defaultProbeTimeoutSeconds  = 5
	defaultProbeRetryDelayMS    = 250
	defaultProbeCacheSize       = 512
	defaultProbeCacheTTLMinutes = 360
	defaultEnrichWorkers        = 5
	defaultEnrichDeadline       = 90
	defaultSessionRetention     = 24
	defaultMaxSessions          = 256
	defaultDigestHour           = 14
	defaultDigestMinute         = 0
	defaultDigestTimezone       = "UTC"
	defaultDigestItemLimit      = 5
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

func defaultVariants() []string {
	// Best quality first; the prober falls through toward smaller renditions.
	return []string{"w780", "w500", "w342"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Telegram: Telegram{
			BaseURL:            defaultTelegramBaseURL,
			ParseMode:          defaultParseMode,
			SendIntervalMS:     defaultSendIntervalMS,
			PollTimeoutSeconds: defaultPollTimeoutSeconds,
		},
		TMDB: TMDB{
			BaseURL:      defaultTMDBBaseURL,
			ImageBaseURL: defaultTMDBImageBaseURL,
			Language:     defaultTMDBLanguage,
			Region:       defaultTMDBRegion,
			MinVoteCount: defaultMinVoteCount,
		},
		Translator: Translator{
			Enabled:        true,
			BaseURL:        defaultTranslatorBaseURL,
			TargetLang:     defaultTranslatorTarget,
			TimeoutSeconds: defaultTranslatorTimeout,
			Attempts:       defaultTranslatorAttempts,
		},
		Media: Media{
			Variants:             defaultVariants(),
			ProbeAttempts:        defaultProbeAttempts,
			ProbeTimeoutSeconds:  defaultProbeTimeoutSeconds,
			ProbeRetryDelayMS:    defaultProbeRetryDelayMS,
			ProbeCacheSize:       defaultProbeCacheSize,
			ProbeCacheTTLMinutes: defaultProbeCacheTTLMinutes,
		},
		Enrich: Enrich{
			Workers:         defaultEnrichWorkers,
			DeadlineSeconds: defaultEnrichDeadline,
		},
		Sessions: Sessions{
			RetentionHours: defaultSessionRetention,
			MaxSessions:    defaultMaxSessions,
		},
		Digest: Digest{
			Hour:      defaultDigestHour,
			Minute:    defaultDigestMinute,
			Timezone:  defaultDigestTimezone,
			ItemLimit: defaultDigestItemLimit,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
