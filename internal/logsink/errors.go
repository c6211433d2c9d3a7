package logsink

import (
	"errors"
	"fmt"
)

// ErrIO marks failures to prepare or write the run log.
var ErrIO = errors.New("log sink unavailable")

// IOError reports that the log directory or log file could not be used.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() []error {
	return []error{ErrIO, e.Err}
}
