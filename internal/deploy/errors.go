package deploy

import (
	"errors"
	"fmt"
	"strings"

	"newsctl/internal/runner"
)

var (
	// ErrTransfer marks a sync that could not complete.
	ErrTransfer = errors.New("transfer failed")
	// ErrRemoteCommand marks a remote step that failed or could not run.
	ErrRemoteCommand = errors.New("remote command failed")
)

// TransferError reports a failed sync. Result holds rsync's output when it ran.
type TransferError struct {
	Result runner.StepResult
	Err    error
}

func (e *TransferError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sync: %v", e.Err)
	}
	return fmt.Sprintf("sync: rsync exited with status %d%s", e.Result.ExitCode, outputTail(e.Result.Output))
}

func (e *TransferError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrTransfer, e.Err}
	}
	return []error{ErrTransfer}
}

// RemoteCommandError reports the first remote step that failed, with its
// captured output.
type RemoteCommandError struct {
	Step     string
	Command  string
	ExitCode int
	Output   []byte
	Err      error
}

func (e *RemoteCommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("%s: %q exited with status %d%s", e.Step, e.Command, e.ExitCode, outputTail(e.Output))
}

func (e *RemoteCommandError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrRemoteCommand, e.Err}
	}
	return []error{ErrRemoteCommand}
}

const maxTailLines = 5

func outputTail(output []byte) string {
	text := strings.TrimRight(string(output), "\r\n")
	if strings.TrimSpace(text) == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	if len(lines) > maxTailLines {
		lines = lines[len(lines)-maxTailLines:]
	}
	return "\n" + strings.Join(lines, "\n")
}

// FailedStep names the step err came from, or "" when err carries no step.
func FailedStep(err error) string {
	var remoteErr *RemoteCommandError
	if errors.As(err, &remoteErr) {
		return remoteErr.Step
	}
	var transferErr *TransferError
	if errors.As(err, &transferErr) {
		return StepSync
	}
	return ""
}
