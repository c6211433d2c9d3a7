package logsink

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	// FilePrefix and FileExt bracket the timestamp in run log names.
	FilePrefix = "digest_"
	FileExt    = ".log"
	// FilePattern matches run logs for retention.
	FilePattern     = FilePrefix + "*" + FileExt
	timestampLayout = "20060102_150405"
)

// FileName returns the run log name for a session started at now.
func FileName(now time.Time) string {
	return FilePrefix + now.Format(timestampLayout) + FileExt
}

// ParseFileName extracts the session start time from a run log name.
func ParseFileName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, FilePrefix) || !strings.HasSuffix(name, FileExt) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, FilePrefix), FileExt)
	t, err := time.ParseInLocation(timestampLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Session tees writes to the run log file and the console.
type Session struct {
	mu        sync.Mutex
	path      string
	startedAt time.Time
	file      *os.File
	console   io.Writer
	closeOnce sync.Once
	closeErr  error
}

// Open prepares logDir and opens the session's log file for append. console
// may be nil when only the file should receive output.
func Open(logDir string, now time.Time, console io.Writer) (*Session, error) {
	if logDir == "" {
		return nil, &IOError{Op: "create log directory", Path: logDir, Err: errors.New("empty path")}
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, &IOError{Op: "create log directory", Path: logDir, Err: err}
	}
	path := filepath.Join(logDir, FileName(now))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, &IOError{Op: "open log file", Path: path, Err: err}
	}
	return &Session{
		path:      path,
		startedAt: now,
		file:      file,
		console:   console,
	}, nil
}

// Path returns the log file location.
func (s *Session) Path() string {
	return s.path
}

// StartedAt returns the timestamp the session was opened with.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// Write appends p to the log file and then forwards it to the console. Each
// call lands in both destinations before the next call begins.
func (s *Session) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return 0, &IOError{Op: "write log file", Path: s.path, Err: os.ErrClosed}
	}
	n, err := s.file.Write(p)
	if err != nil {
		return n, &IOError{Op: "write log file", Path: s.path, Err: err}
	}
	if s.console != nil {
		if _, err := s.console.Write(p); err != nil {
			return n, fmt.Errorf("write console: %w", err)
		}
	}
	return n, nil
}

// WriteString is a convenience wrapper around Write.
func (s *Session) WriteString(text string) (int, error) {
	return s.Write([]byte(text))
}

// Close flushes the log file to disk and closes it. Subsequent calls return
// the first result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.file.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
			s.closeErr = &IOError{Op: "sync log file", Path: s.path, Err: err}
		}
		if err := s.file.Close(); err != nil && s.closeErr == nil {
			s.closeErr = &IOError{Op: "close log file", Path: s.path, Err: err}
		}
		s.file = nil
	})
	return s.closeErr
}
