package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"marquee/internal/catalog"
	"marquee/internal/logging"
)

func newDigestCommand(ctx *commandContext) *cobra.Command {
	var (
		kindFlag string
		yearFlag int
		nextFlag bool
	)

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Run a one-shot digest to all subscribers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateDaemon(); err != nil {
				return err
			}

			var kind catalog.Kind
			var heading string
			switch kindFlag {
			case "movie":
				kind, heading = catalog.KindMovie, "🎬 Digital movie releases today:"
			case "series":
				kind, heading = catalog.KindSeries, "📺 Series premieres today:"
			default:
				return fmt.Errorf("unknown digest kind %q (movie or series)", kindFlag)
			}

			logger, err := logging.New(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				Output: os.Stderr,
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			comps, err := buildComponents(cfg, logger)
			if err != nil {
				return err
			}
			defer comps.close()

			switch {
			case yearFlag > 0:
				if kind != catalog.KindMovie {
					return fmt.Errorf("--year digests only support --kind movie")
				}
				heading = fmt.Sprintf("🎬 Movies released on this day in %d:", yearFlag)
				if err := comps.announcer.RunYearDigest(cmd.Context(), yearFlag, heading); err != nil {
					return err
				}
			case nextFlag:
				heading = "🎬 Upcoming digital movie releases:"
				if kind == catalog.KindSeries {
					heading = "📺 Upcoming series premieres:"
				}
				if err := comps.announcer.RunNextDigest(cmd.Context(), kind, heading); err != nil {
					return err
				}
			default:
				if err := comps.announcer.RunDigest(cmd.Context(), kind, heading); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Digest delivered")
			return nil
		},
	}

	cmd.Flags().StringVarP(&kindFlag, "kind", "k", "movie", "Digest kind: movie or series")
	cmd.Flags().IntVar(&yearFlag, "year", 0, "Deliver movies first released on today's calendar day in this year")
	cmd.Flags().BoolVar(&nextFlag, "next", false, "Deliver the soonest upcoming releases instead of today's")
	return cmd
}
