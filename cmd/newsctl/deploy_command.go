package main

import (
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"newsctl/internal/config"
	"newsctl/internal/deploy"
	"newsctl/internal/orchestrator"
)

func newDeployCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var reportPath string

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Sync the project to the remote host, install dependencies, and restart the service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if dryRun {
				return printDeployPlan(cmd.OutOrStdout(), cfg)
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if reportPath != "" {
				if reportPath, err = config.ExpandPath(reportPath); err != nil {
					return fmt.Errorf("resolve report path: %w", err)
				}
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			o := orchestrator.New(cfg, logger, orchestrator.WithStdout(cmd.OutOrStdout()))
			results, deployErr := o.Deploy(signalCtx, orchestrator.DeployOptions{ReportPath: reportPath})
			if len(results) > 0 || deployErr != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), renderStepSummary(results, deploy.FailedStep(deployErr)))
			}
			return deployErr
		},
	}

	cmd.Flags().String("host", "", "Remote host as [user@]host[:port] (env NEWSCTL_HOST)")
	cmd.Flags().String("dir", "", "Remote project directory (env NEWSCTL_DIR)")
	cmd.Flags().String("service", "", "systemd service to restart (env NEWSCTL_SERVICE)")
	bindFlags(ctx.v, cmd.Flags(), "host", "dir", "service")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the files and commands a deploy would run, without running them")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write a YAML report of every step to this file")
	return cmd
}

func printDeployPlan(out io.Writer, cfg *config.Config) error {
	if err := cfg.ResolveProjectRoot(); err != nil {
		return err
	}
	if err := cfg.ValidateRemote(); err != nil {
		return err
	}
	target := orchestrator.DeployTarget(cfg)
	exclusions := deploy.Exclusions()

	files, err := deploy.Plan(target.LocalRoot, exclusions)
	if err != nil {
		return fmt.Errorf("plan transfer: %w", err)
	}
	args, err := deploy.RsyncArgs(target, exclusions)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Would sync %d files from %s to %s:%s\n", len(files), target.LocalRoot, target.Host, target.Dir)
	for _, f := range files {
		fmt.Fprintf(out, "  %s\n", f)
	}
	fmt.Fprintf(out, "Excluded: %s\n", strings.Join(exclusions, ", "))
	fmt.Fprintf(out, "Transfer: rsync %s\n", strings.Join(args, " "))
	fmt.Fprintln(out, "Remote commands:")
	for _, rc := range target.RemoteCommands() {
		fmt.Fprintf(out, "  %-15s %s\n", rc.Step, rc.Line)
	}
	return nil
}
