package main

import (
	"fmt"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"newsctl/internal/logging"
	"newsctl/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var list bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the latest daily run log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.ResolveProjectRoot(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if list {
				runs, err := logs.List(cfg.Paths.LogDir)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(runs))
				for _, r := range runs {
					rows = append(rows, []string{r.StartedAt.Format(logging.TimestampLayout), strconv.FormatInt(r.Size, 10), r.Path})
				}
				fmt.Fprintln(out, renderTable([]string{"Started", "Bytes", "Path"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft}))
				return nil
			}

			latest, err := logs.Latest(cfg.Paths.LogDir)
			if err != nil {
				return err
			}
			tail, offset, err := logs.Tail(latest.Path, lines)
			if err != nil {
				return err
			}
			for _, line := range tail {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			_, err = logs.Follow(signalCtx, latest.Path, offset, out, 250*time.Millisecond)
			return err
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 40, "Number of trailing lines to show (0 for all)")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing output appended to the log")
	cmd.Flags().BoolVar(&list, "list", false, "List run logs, newest first")
	return cmd
}
