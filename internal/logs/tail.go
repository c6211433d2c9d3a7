package logs

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

const maxLineBytes = 1024 * 1024

// Tail returns up to limit trailing lines of path and the file size they end
// at. A limit of zero or less returns every line.
func Tail(path string, limit int) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var lines []string
	if limit <= 0 {
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
	} else {
		ring := make([]string, limit)
		count, idx := 0, 0
		for scanner.Scan() {
			ring[idx] = scanner.Text()
			idx = (idx + 1) % limit
			if count < limit {
				count++
			}
		}
		lines = make([]string, count)
		if count == limit {
			for i := range count {
				lines[i] = ring[(idx+i)%limit]
			}
		} else {
			copy(lines, ring[:count])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read log file: %w", err)
	}

	offset, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, 0, fmt.Errorf("determine log offset: %w", err)
	}
	return lines, offset, nil
}

// Follow copies bytes appended to path after offset into w, polling every
// interval, until ctx ends. It returns the offset reached; ctx ending is not
// an error.
func Follow(ctx context.Context, path string, offset int64, w io.Writer, interval time.Duration) (int64, error) {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		next, err := copyFrom(path, offset, w)
		if err != nil {
			return offset, err
		}
		offset = next

		select {
		case <-ctx.Done():
			return offset, nil
		case <-ticker.C:
		}
	}
}

func copyFrom(path string, offset int64, w io.Writer) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return offset, fmt.Errorf("stat log file: %w", err)
	}
	// A shorter file was replaced; start over.
	if info.Size() < offset {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek log file: %w", err)
	}
	n, err := io.Copy(w, file)
	if err != nil {
		return offset + n, fmt.Errorf("copy log output: %w", err)
	}
	return offset + n, nil
}
