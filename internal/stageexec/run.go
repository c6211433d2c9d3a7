package stageexec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"newsctl/internal/logging"
	"newsctl/internal/runner"
)

// State is a position in the step state machine.
type State string

const (
	StateStart   State = "start"
	StateRunning State = "running"
	StateDone    State = "done"
	StateFailed  State = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Step is one unit of a fail-fast sequence. Run returns the results it
// produced, including those of a failing command.
type Step struct {
	Name string
	Run  func(ctx context.Context) ([]runner.StepResult, error)
}

// Outcome is the terminal result of a Sequence.
type Outcome struct {
	State   State
	Results []runner.StepResult
	// Failed names the step that moved the sequence to StateFailed.
	Failed string
	Err    error
}

// Succeeded reports whether every step completed.
func (o Outcome) Succeeded() bool {
	return o.State == StateDone
}

// ErrStepFailed marks a command that ran but exited non-zero.
var ErrStepFailed = errors.New("step failed")

// StepFailedError carries the result of a command that exited non-zero.
type StepFailedError struct {
	Result runner.StepResult
}

func (e *StepFailedError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Result.Step, e.Result.ExitCode)
}

func (e *StepFailedError) Unwrap() error {
	return ErrStepFailed
}

// Command adapts one external command into a Step. A non-zero exit becomes
// a *StepFailedError.
func Command(exec runner.Executor, cmd runner.Command, live io.Writer) Step {
	return Step{
		Name: cmd.Step,
		Run: func(ctx context.Context) ([]runner.StepResult, error) {
			result, err := exec.Run(ctx, cmd, live)
			if err != nil {
				return []runner.StepResult{result}, err
			}
			if !result.Succeeded() {
				return []runner.StepResult{result}, &StepFailedError{Result: result}
			}
			return []runner.StepResult{result}, nil
		},
	}
}

// Action adapts a function without command output into a Step.
func Action(name string, fn func(ctx context.Context) error) Step {
	return Step{
		Name: name,
		Run: func(ctx context.Context) ([]runner.StepResult, error) {
			return nil, fn(ctx)
		},
	}
}

// Sequence runs steps in order and stops at the first failure. Steps after
// a failure never run and there are no retries.
func Sequence(ctx context.Context, logger *slog.Logger, steps ...Step) Outcome {
	outcome := Outcome{State: StateStart}
	for _, step := range steps {
		outcome.State = StateRunning
		results, err := Run(ctx, logger, step)
		outcome.Results = append(outcome.Results, results...)
		if err != nil {
			outcome.State = StateFailed
			outcome.Failed = step.Name
			outcome.Err = err
			return outcome
		}
	}
	outcome.State = StateDone
	return outcome
}

// Run executes a single step with start, completion, and failure logging.
// A cancelled context fails the step before it starts.
func Run(ctx context.Context, logger *slog.Logger, step Step) ([]runner.StepResult, error) {
	if step.Run == nil {
		return nil, fmt.Errorf("step %q has no action", step.Name)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s not started: %w", step.Name, err)
	}

	stepCtx := logging.WithStep(ctx, step.Name)
	stepLogger := logging.WithContext(stepCtx, logger)
	stepLogger.Debug("step started", logging.String(logging.FieldEventType, "step_start"))

	started := time.Now()
	results, err := step.Run(stepCtx)
	if err != nil {
		stepLogger.Debug("step failed",
			logging.String(logging.FieldEventType, "step_failure"),
			logging.Duration("duration", time.Since(started)),
			logging.Error(err),
		)
		return results, err
	}

	stepLogger.Debug("step completed",
		logging.String(logging.FieldEventType, "step_complete"),
		logging.Duration("duration", time.Since(started)),
	)
	return results, nil
}
