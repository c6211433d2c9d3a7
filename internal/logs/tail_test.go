package logs_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"newsctl/internal/logs"
)

func TestTailLastLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "digest_20240309_060000.log")
	content := "a\nb\nc\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	lines, offset, err := logs.Tail(path, 2)
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if len(lines) != 2 || lines[0] != "b" || lines[1] != "c" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
	if offset != int64(len(content)) {
		t.Fatalf("expected offset at end of file, got %d", offset)
	}

	all, _, err := logs.Tail(path, 0)
	if err != nil {
		t.Fatalf("tail all returned error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected every line, got %#v", all)
	}
}

func TestTailMissingFile(t *testing.T) {
	if _, _, err := logs.Tail(filepath.Join(t.TempDir(), "nope.log"), 5); err == nil {
		t.Fatal("expected error for missing log")
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestFollowStreamsAppendedOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "digest_20240309_060000.log")
	if err := os.WriteFile(path, []byte("start\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	_, offset, err := logs.Tail(path, 1)
	if err != nil {
		t.Fatalf("initial tail: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var out syncBuffer
	done := make(chan int64)
	go func() {
		final, err := logs.Follow(ctx, path, offset, &out, 20*time.Millisecond)
		if err != nil {
			t.Errorf("follow error: %v", err)
		}
		done <- final
	}()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString("later\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	_ = f.Close()

	deadline := time.Now().Add(5 * time.Second)
	for out.String() != "later\n" {
		if time.Now().After(deadline) {
			t.Fatalf("follow did not deliver appended output, got %q", out.String())
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	select {
	case final := <-done:
		if final != int64(len("start\nlater\n")) {
			t.Fatalf("unexpected final offset %d", final)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("follow did not return after cancel")
	}
}

func TestListNewestFirst(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"digest_20240101_060000.log", "digest_20240309_060000.log", "digest_20240201_060000.log", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	runs, err := logs.List(dir)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if filepath.Base(runs[0].Path) != "digest_20240309_060000.log" || filepath.Base(runs[2].Path) != "digest_20240101_060000.log" {
		t.Fatalf("unexpected order: %+v", runs)
	}

	latest, err := logs.Latest(dir)
	if err != nil || latest.Path != runs[0].Path {
		t.Fatalf("Latest = %+v, %v", latest, err)
	}
}

func TestLatestWithoutRuns(t *testing.T) {
	if _, err := logs.Latest(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, logs.ErrNoRuns) {
		t.Fatalf("expected ErrNoRuns, got %v", err)
	}
}
