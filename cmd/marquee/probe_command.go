package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"marquee/internal/logging"
	"marquee/internal/mediaprobe"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <pointer>",
		Short: "Resolve a media pointer through the liveness prober",
		Long: "Expands a poster pointer (a TMDB path like /abc.jpg, or an absolute URL)\n" +
			"into quality-variant candidates and probes them best-first, printing the\n" +
			"verdict the enrichment pipeline would see.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.New(logging.Options{
				Level:  "debug",
				Format: cfg.Logging.Format,
				Output: os.Stderr,
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			resolver := newResolver(cfg, logger)
			out := cmd.OutOrStdout()

			candidates := resolver.Candidates(args[0])
			if len(candidates) == 0 {
				fmt.Fprintln(out, "Pointer is empty; nothing to probe")
				return nil
			}
			rows := make([][]string, 0, len(candidates))
			for _, c := range candidates {
				rows = append(rows, []string{c.Variant, c.URL})
			}
			fmt.Fprintln(out, renderTable([]string{"Variant", "URL"}, rows, nil))

			resolved := resolver.Resolve(cmd.Context(), args[0])
			fmt.Fprintf(out, "Verdict: %s\n", resolved.Kind())
			if resolved.Kind() == mediaprobe.KindVerified {
				fmt.Fprintf(out, "Candidate: %s (%s)\n", resolved.Candidate().URL, resolved.Candidate().Variant)
			}
			return nil
		},
	}
}
