package runner

import (
	"strings"
	"time"
)

// Command describes one external invocation.
type Command struct {
	// Step names the orchestration step (crawl, digest, sync, ...).
	Step string
	Name string
	Args []string
	Dir  string
	// Env entries are appended to the parent environment.
	Env []string
}

// String renders the command line for logs and reports.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)
	parts = append(parts, c.Args...)
	return strings.Join(parts, " ")
}

// StepResult is the immutable outcome of one external command.
type StepResult struct {
	Step      string
	Command   string
	ExitCode  int
	Output    []byte
	StartedAt time.Time
	Duration  time.Duration
}

// Succeeded reports whether the command exited with status zero.
func (r StepResult) Succeeded() bool {
	return r.ExitCode == 0
}

// OutputText returns the combined output as a string.
func (r StepResult) OutputText() string {
	return string(r.Output)
}
