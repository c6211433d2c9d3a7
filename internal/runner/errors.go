package runner

import (
	"errors"
	"fmt"
)

// ErrLaunch marks failures to start a child process.
var ErrLaunch = errors.New("launch failed")

// LaunchError reports that a command could not be started because the
// executable was missing or the working directory was unusable.
type LaunchError struct {
	Command string
	Dir     string
	Err     error
}

func (e *LaunchError) Error() string {
	if e.Dir != "" {
		return fmt.Sprintf("launch %q in %s: %v", e.Command, e.Dir, e.Err)
	}
	return fmt.Sprintf("launch %q: %v", e.Command, e.Err)
}

func (e *LaunchError) Unwrap() []error {
	return []error{ErrLaunch, e.Err}
}
