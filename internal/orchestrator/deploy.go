package orchestrator

import (
	"context"
	"fmt"
	"io"
	"strings"

	"newsctl/internal/config"
	"newsctl/internal/deploy"
	"newsctl/internal/logging"
	"newsctl/internal/runner"
)

// DeployOptions adjusts one deployment.
type DeployOptions struct {
	// Exclusions replaces deploy.DefaultExclusions when non-nil.
	Exclusions []string
	// ReportPath, when set, receives a YAML report whether or not the
	// deployment succeeded.
	ReportPath string
}

// DeployTarget builds the deployment target from configuration. The project
// root must already be resolved.
func DeployTarget(cfg *config.Config) deploy.Target {
	return deploy.Target{
		LocalRoot:      cfg.Paths.ProjectRoot,
		Host:           cfg.Remote.Host,
		Port:           cfg.Remote.Port,
		Dir:            cfg.Remote.Dir,
		Service:        cfg.Remote.Service,
		DepsCommand:    cfg.Remote.DepsCommand,
		RestartCommand: cfg.ServiceRestartCommand(),
		KeyPath:        cfg.Remote.KeyPath,
		KnownHosts:     cfg.Remote.KnownHosts,
		StrictHostKey:  cfg.Remote.StrictHostKey,
		ConnectTimeout: cfg.ConnectTimeout(),
	}
}

// SuccessBanner is printed after every deploy step succeeded.
func SuccessBanner(target deploy.Target) string {
	return fmt.Sprintf("=== Deployed to %s:%s and restarted %s ===\n", target.Host, strings.TrimRight(target.Dir, "/"), target.Service)
}

// Deploy syncs the project root to the remote host and restarts the service.
// The success banner is written only when every step succeeded. No run log
// is created.
func (o *Orchestrator) Deploy(ctx context.Context, opts DeployOptions) ([]runner.StepResult, error) {
	if err := o.cfg.ResolveProjectRoot(); err != nil {
		return nil, err
	}
	if err := o.cfg.ValidateRemote(); err != nil {
		return nil, err
	}
	target := DeployTarget(o.cfg)
	exclusions := opts.Exclusions
	if exclusions == nil {
		exclusions = deploy.Exclusions()
	}

	var deployOpts []deploy.Option
	if o.connector != nil {
		deployOpts = append(deployOpts, deploy.WithConnector(o.connector))
	}
	started := o.now()
	results, deployErr := deploy.New(o.transfer, o.base, deployOpts...).Deploy(ctx, target, exclusions, o.stdout)

	if opts.ReportPath != "" {
		if err := deploy.NewReport(started, target, results, deployErr).WriteFile(opts.ReportPath); err != nil {
			if deployErr != nil {
				logging.WarnWithContext(o.logger, "deploy report not written", "deploy_report_failed",
					logging.String("path", opts.ReportPath),
					logging.Error(err),
				)
			} else {
				return results, err
			}
		} else {
			o.logger.Info("deploy report written", logging.String("path", opts.ReportPath))
		}
	}

	if deployErr != nil {
		logging.ErrorWithContext(o.logger, "deploy failed", "deploy_failed",
			logging.String("host", target.Host),
			logging.Error(deployErr),
		)
		return results, fmt.Errorf("deploy: %w", deployErr)
	}

	if _, err := io.WriteString(o.stdout, SuccessBanner(target)); err != nil {
		return results, fmt.Errorf("write banner: %w", err)
	}
	o.logger.Info("deploy complete",
		logging.String(logging.FieldEventType, "deploy_complete"),
		logging.String("host", target.Host),
		logging.Duration("duration", o.now().Sub(started)),
	)
	return results, nil
}
