package orchestrator

import (
	"io"
	"log/slog"
	"os"
	"time"

	"newsctl/internal/config"
	"newsctl/internal/deploy"
	"newsctl/internal/logging"
	"newsctl/internal/runner"
)

// Orchestrator runs the daily and deploy flows for one configuration.
type Orchestrator struct {
	cfg       *config.Config
	base      *slog.Logger
	logger    *slog.Logger
	tool      runner.Executor
	transfer  runner.Executor
	connector deploy.Connector
	stdout    io.Writer
	now       func() time.Time
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithStdout replaces the console writer that receives tool output and banners.
func WithStdout(w io.Writer) Option {
	return func(o *Orchestrator) {
		if w != nil {
			o.stdout = w
		}
	}
}

// WithClock overrides the time source used for banners and log names.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithConnector replaces the SSH connector used by Deploy.
func WithConnector(c deploy.Connector) Option {
	return func(o *Orchestrator) {
		o.connector = c
	}
}

// New constructs an Orchestrator. Tool subcommands honour tool.timeout; the
// rsync transfer is never bounded.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	o := &Orchestrator{
		cfg:      cfg,
		base:     logger,
		logger:   logging.NewComponentLogger(logger, "orchestrator"),
		tool:     runner.New(logger, runner.WithTimeout(cfg.ToolTimeout())),
		transfer: runner.New(logger),
		stdout:   os.Stdout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
