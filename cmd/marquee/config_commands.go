package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/config"
)

func configFlagValue(cmd *cobra.Command) string {
	if flag := cmd.Flag("config"); flag != nil {
		return strings.TrimSpace(flag.Value.String())
	}
	return ""
}

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:         "config",
		Short:       "Configuration utilities",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigShowCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			}
			if err := config.WriteSample(target); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set bot_token and api_key (or export MARQUEE_TELEGRAM_TOKEN and MARQUEE_TMDB_API_KEY) before running marquee.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	return cmd
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(configFlagValue(cmd))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(configFlagValue(cmd))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s (exists: %v)\n\n", path, exists)

			rows := [][]string{
				{"data_dir", cfg.Paths.DataDir},
				{"log_dir", cfg.Paths.LogDir},
				{"telegram.base_url", cfg.Telegram.BaseURL},
				{"telegram.send_interval_ms", fmt.Sprint(cfg.Telegram.SendIntervalMS)},
				{"tmdb.base_url", cfg.TMDB.BaseURL},
				{"tmdb.language", cfg.TMDB.Language},
				{"tmdb.region", cfg.TMDB.Region},
				{"translator.enabled", fmt.Sprint(cfg.Translator.Enabled)},
				{"translator.target_lang", cfg.Translator.TargetLang},
				{"media.variants", strings.Join(cfg.Media.Variants, ", ")},
				{"media.probe_attempts", fmt.Sprint(cfg.Media.ProbeAttempts)},
				{"enrich.workers", fmt.Sprint(cfg.Enrich.Workers)},
				{"sessions.retention_hours", fmt.Sprint(cfg.Sessions.RetentionHours)},
				{"sessions.max_sessions", fmt.Sprint(cfg.Sessions.MaxSessions)},
				{"digest.schedule", fmt.Sprintf("%02d:%02d %s", cfg.Digest.Hour, cfg.Digest.Minute, cfg.Digest.Timezone)},
				{"digest.item_limit", fmt.Sprint(cfg.Digest.ItemLimit)},
				{"subscribers.db_path", cfg.Subscribers.DBPath},
				{"logging", cfg.Logging.Format + "/" + cfg.Logging.Level},
			}
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, rows, nil))
			return nil
		},
	}
}
