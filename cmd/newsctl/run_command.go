package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"newsctl/internal/orchestrator"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var opts orchestrator.DailyOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run crawl then digest, logging to <log_dir>/digest_<timestamp>.log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			o := orchestrator.New(cfg, logger, orchestrator.WithStdout(cmd.OutOrStdout()))
			result, runErr := o.DailyRun(signalCtx, opts)

			errOut := cmd.ErrOrStderr()
			if len(result.Outcome.Results) > 0 || result.Outcome.Failed != "" {
				fmt.Fprintln(errOut, renderStepSummary(result.Outcome.Results, result.Outcome.Failed))
			}
			if result.LogPath != "" {
				fmt.Fprintf(errOut, "Run log: %s\n", result.LogPath)
			}
			return runErr
		},
	}

	cmd.Flags().StringVarP(&opts.Source, "source", "s", "", "Crawl a single source only")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Generate the digest without sending it")
	cmd.Flags().StringVar(&opts.Since, "since", "", "ISO timestamp the digest starts from (tool default: today midnight UTC)")
	return cmd
}
