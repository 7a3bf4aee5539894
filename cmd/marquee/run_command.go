package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"marquee/internal/daemon"
	"marquee/internal/logging"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the digest daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateDaemon(); err != nil {
				return err
			}

			level := logLevel
			if level == "" {
				level = cfg.Logging.Level
			}
			logger, err := logging.NewWithFile(logging.Options{
				Level:  level,
				Format: cfg.Logging.Format,
			}, cfg.Paths.LogDir, "marquee.log")
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			comps, err := buildComponents(cfg, logger)
			if err != nil {
				return err
			}
			defer comps.close()

			d, err := daemon.New(cfg, daemon.Components{
				Announcer: comps.announcer,
				Registry:  comps.registry,
				Client:    comps.client,
				Poller:    comps.poller,
				Deliverer: comps.deliverer,
			}, logger)
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return d.Run(signalCtx)
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override configured log level")
	return cmd
}
