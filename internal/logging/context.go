package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldStep is the standardized structured logging key for orchestration step names.
	FieldStep = "step"
	// FieldEventType categorizes a log line for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the operator's next action.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
)

type stepKey struct{}

// WithStep records the orchestration step on the context.
func WithStep(ctx context.Context, step string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, stepKey{}, step)
}

// StepFromContext returns the step recorded by WithStep.
func StepFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	step, ok := ctx.Value(stepKey{}).(string)
	return step, ok && step != ""
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if step, ok := StepFromContext(ctx); ok {
		return logger.With(String(FieldStep, step))
	}
	return logger
}
