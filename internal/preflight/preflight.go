package preflight

import (
	"context"

	"newsctl/internal/config"
	"newsctl/internal/remote"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Options selects the optional checks.
type Options struct {
	// Remote dials the deployment host.
	Remote bool
}

// RunAll executes the filesystem and host checks. The project root must be
// resolved beforehand.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckProjectRoot(cfg.Paths.ProjectRoot),
		CheckCreatableDirectory("Log directory", cfg.Paths.LogDir),
		CheckKnownHosts(cfg),
	}
	if opts.Remote {
		results = append(results, CheckRemote(ctx, remote.Target{
			Host:           cfg.Remote.Host,
			Port:           cfg.Remote.Port,
			KeyPath:        cfg.Remote.KeyPath,
			KnownHosts:     cfg.Remote.KnownHosts,
			StrictHostKey:  cfg.Remote.StrictHostKey,
			ConnectTimeout: cfg.ConnectTimeout(),
		}))
	}
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
