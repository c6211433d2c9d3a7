package orchestrator

import (
	"context"
	"fmt"
	"time"

	"newsctl/internal/logging"
	"newsctl/internal/logsink"
	"newsctl/internal/runlock"
	"newsctl/internal/runner"
	"newsctl/internal/stageexec"
)

// Step names of the daily run.
const (
	StepCrawl     = "crawl"
	StepSeparator = "separator"
	StepDigest    = "digest"
)

// DailyOptions carries per-invocation arguments forwarded to the tool.
type DailyOptions struct {
	// Source restricts crawl to one source.
	Source string
	// DryRun generates the digest without sending it.
	DryRun bool
	// Since is the ISO timestamp digest starts from.
	Since string
}

// DailyResult describes one daily run.
type DailyResult struct {
	LogPath   string
	StartedAt time.Time
	Outcome   stageexec.Outcome
}

// StartBanner is the first line of every run log.
func StartBanner(t time.Time) string {
	return fmt.Sprintf("=== AI news daily run: %s ===\n", t.Format(logging.TimestampLayout))
}

// CompletionBanner is the last line of a successful run log.
func CompletionBanner(t time.Time) string {
	return fmt.Sprintf("=== Daily run complete: %s ===\n", t.Format(logging.TimestampLayout))
}

// DailyRun runs crawl then digest from the project root, writing both
// outputs between the start and completion banners to stdout and the run
// log. A crawl failure stops the run before digest; the partial log stays
// on disk.
func (o *Orchestrator) DailyRun(ctx context.Context, opts DailyOptions) (result DailyResult, err error) {
	if err := o.cfg.ResolveProjectRoot(); err != nil {
		return result, err
	}
	logDir := o.cfg.Paths.LogDir

	if o.cfg.Run.Lock {
		lock, err := runlock.Acquire(logDir)
		if err != nil {
			return result, err
		}
		defer func() {
			if releaseErr := lock.Release(); releaseErr != nil {
				o.logger.Warn("run lock release failed",
					logging.String("lock", lock.Path()),
					logging.Error(releaseErr),
				)
			}
		}()
	}

	result.StartedAt = o.now()
	session, err := logsink.Open(logDir, result.StartedAt, o.stdout)
	if err != nil {
		return result, err
	}
	result.LogPath = session.Path()
	defer func() {
		if closeErr := session.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if removed := logging.CleanupOldLogs(o.logger, result.StartedAt, o.cfg.Logging.RetentionDays, logging.RetentionTarget{
		Dir:     logDir,
		Pattern: logsink.FilePattern,
		Exclude: []string{session.Path()},
	}); removed > 0 {
		o.logger.Info("pruned old run logs", logging.Int("removed", removed))
	}

	o.logger.Info("daily run starting",
		logging.String(logging.FieldEventType, "daily_run_start"),
		logging.String("project_root", o.cfg.Paths.ProjectRoot),
		logging.String("log_file", session.Path()),
	)

	if _, err := session.WriteString(StartBanner(result.StartedAt)); err != nil {
		return result, err
	}

	result.Outcome = stageexec.Sequence(ctx, o.logger,
		stageexec.Command(o.tool, o.toolCommand(StepCrawl, o.cfg.Tool.CrawlArgs, crawlPassthrough(opts)), session),
		stageexec.Action(StepSeparator, func(context.Context) error {
			_, err := session.WriteString("\n")
			return err
		}),
		stageexec.Command(o.tool, o.toolCommand(StepDigest, o.cfg.Tool.DigestArgs, digestPassthrough(opts)), session),
	)
	if !result.Outcome.Succeeded() {
		logging.ErrorWithContext(o.logger, "daily run failed", "daily_run_failed",
			logging.String("step", result.Outcome.Failed),
			logging.String("log_file", session.Path()),
			logging.Error(result.Outcome.Err),
		)
		return result, fmt.Errorf("daily run: %w", result.Outcome.Err)
	}

	if _, err := session.WriteString(CompletionBanner(o.now())); err != nil {
		return result, err
	}
	o.logger.Info("daily run complete",
		logging.String(logging.FieldEventType, "daily_run_complete"),
		logging.Duration("duration", o.now().Sub(result.StartedAt)),
		logging.String("log_file", session.Path()),
	)
	return result, nil
}

func (o *Orchestrator) toolCommand(sub string, static, passthrough []string) runner.Command {
	args := make([]string, 0, len(o.cfg.Tool.Args)+1+len(static)+len(passthrough))
	args = append(args, o.cfg.Tool.Args...)
	args = append(args, sub)
	args = append(args, static...)
	args = append(args, passthrough...)
	return runner.Command{
		Step: sub,
		Name: o.cfg.ToolBinary(),
		Args: args,
		Dir:  o.cfg.Paths.ProjectRoot,
	}
}

func crawlPassthrough(opts DailyOptions) []string {
	if opts.Source == "" {
		return nil
	}
	return []string{"--source", opts.Source}
}

func digestPassthrough(opts DailyOptions) []string {
	var args []string
	if opts.DryRun {
		args = append(args, "--dry-run")
	}
	if opts.Since != "" {
		args = append(args, "--since", opts.Since)
	}
	return args
}
