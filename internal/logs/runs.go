package logs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"newsctl/internal/logsink"
)

// ErrNoRuns reports a log directory without any run logs.
var ErrNoRuns = errors.New("no run logs found")

// Run describes one run log on disk.
type Run struct {
	Path      string
	StartedAt time.Time
	Size      int64
}

// List returns the run logs in dir, newest first. A missing directory holds
// no runs.
func List(dir string) ([]Run, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read log directory: %w", err)
	}
	var runs []Run
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		started, ok := logsink.ParseFileName(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		runs = append(runs, Run{
			Path:      filepath.Join(dir, entry.Name()),
			StartedAt: started,
			Size:      info.Size(),
		})
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	return runs, nil
}

// Latest returns the newest run log in dir.
func Latest(dir string) (Run, error) {
	runs, err := List(dir)
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, fmt.Errorf("%w in %s", ErrNoRuns, dir)
	}
	return runs[0], nil
}
