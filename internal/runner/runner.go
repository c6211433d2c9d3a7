package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"newsctl/internal/logging"
)

// Executor is the contract the orchestrator and deploy packages depend on.
type Executor interface {
	Run(ctx context.Context, cmd Command, live io.Writer) (StepResult, error)
}

// Runner starts child processes.
type Runner struct {
	logger      *slog.Logger
	timeout     time.Duration
	gracePeriod time.Duration
	now         func() time.Time
}

// Option customizes a Runner.
type Option func(*Runner)

// WithTimeout bounds each command. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Runner) {
		r.timeout = timeout
	}
}

// WithGracePeriod sets how long a cancelled child may run after SIGTERM
// before it is killed.
func WithGracePeriod(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.gracePeriod = d
		}
	}
}

// WithClock overrides the time source used for StepResult timing.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// New constructs a Runner.
func New(logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		logger:      logging.NewComponentLogger(logger, "runner"),
		gracePeriod: 10 * time.Second,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes cmd and waits for it to exit. A non-zero exit status is
// returned as a normal StepResult with a nil error. Errors are returned only
// when the process could not be launched (*LaunchError) or when ctx ended
// before the process exited.
func (r *Runner) Run(ctx context.Context, cmd Command, live io.Writer) (StepResult, error) {
	result := StepResult{Step: cmd.Step, Command: cmd.String()}

	if err := checkWorkingDir(cmd.Dir); err != nil {
		return result, &LaunchError{Command: cmd.Name, Dir: cmd.Dir, Err: err}
	}
	if _, err := exec.LookPath(cmd.Name); err != nil {
		return result, &LaunchError{Command: cmd.Name, Dir: cmd.Dir, Err: err}
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	proc := exec.CommandContext(ctx, cmd.Name, cmd.Args...) //nolint:gosec
	proc.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		proc.Env = append(os.Environ(), cmd.Env...)
	}
	proc.Cancel = func() error {
		return proc.Process.Signal(syscall.SIGTERM)
	}
	proc.WaitDelay = r.gracePeriod

	// A single writer on both streams makes os/exec share one pipe, which
	// preserves arrival order between stdout and stderr.
	var captured bytes.Buffer
	sink := &mergedWriter{capture: &captured, live: live}
	proc.Stdout = sink
	proc.Stderr = sink

	logger := logging.WithContext(logging.WithStep(ctx, cmd.Step), r.logger)
	logger.Debug("command starting",
		logging.String("command", result.Command),
		logging.String("dir", cmd.Dir),
	)

	result.StartedAt = r.now()
	if err := proc.Start(); err != nil {
		return result, &LaunchError{Command: cmd.Name, Dir: cmd.Dir, Err: err}
	}
	waitErr := proc.Wait()
	result.Duration = r.now().Sub(result.StartedAt)
	result.Output = captured.Bytes()

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				result.ExitCode = -1
				return result, fmt.Errorf("%s interrupted: %w", cmd.Step, ctxErr)
			}
			return result, fmt.Errorf("wait for %s: %w", cmd.Name, waitErr)
		}
		result.ExitCode = exitErr.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil && result.ExitCode != 0 {
		return result, fmt.Errorf("%s interrupted: %w", cmd.Step, ctxErr)
	}

	if sink.liveErr != nil {
		return result, fmt.Errorf("forward %s output: %w", cmd.Step, sink.liveErr)
	}

	logger.Debug("command finished",
		logging.Int("exit_code", result.ExitCode),
		logging.Duration("duration", result.Duration),
		logging.Int("output_bytes", len(result.Output)),
	)
	return result, nil
}

func checkWorkingDir(dir string) error {
	if dir == "" {
		return nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("working directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("working directory %s is not a directory", dir)
	}
	return nil
}

// mergedWriter captures every chunk and forwards it live. os/exec serializes
// writes when the same writer backs Stdout and Stderr; the mutex covers
// callers that share it elsewhere.
type mergedWriter struct {
	mu      sync.Mutex
	capture *bytes.Buffer
	live    io.Writer
	liveErr error
}

func (w *mergedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.capture.Write(p)
	if w.live != nil && w.liveErr == nil {
		if _, err := w.live.Write(p); err != nil {
			w.liveErr = err
		}
	}
	return len(p), nil
}
