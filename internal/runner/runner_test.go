package runner_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"newsctl/internal/logging"
	"newsctl/internal/runner"
	"newsctl/internal/testsupport"
)

func TestRunMergesStdoutAndStderrInOrder(t *testing.T) {
	base := t.TempDir()
	testsupport.StubBinary(t, base, "news", "echo one\necho two >&2\necho three\n")

	var live bytes.Buffer
	r := runner.New(logging.NewNop())
	result, err := r.Run(context.Background(), runner.Command{Step: "crawl", Name: "news", Args: []string{"crawl"}, Dir: base}, &live)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	want := "one\ntwo\nthree\n"
	if got := result.OutputText(); got != want {
		t.Fatalf("unexpected merged output: %q want %q", got, want)
	}
	if live.String() != want {
		t.Fatalf("live output differs from captured: %q", live.String())
	}
	if !result.Succeeded() || result.Step != "crawl" || result.Command != "news crawl" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestRunReportsNonZeroExitWithoutError(t *testing.T) {
	base := t.TempDir()
	testsupport.StubBinary(t, base, "news", "echo boom >&2\nexit 3\n")

	result, err := runner.New(nil).Run(context.Background(), runner.Command{Step: "crawl", Name: "news", Dir: base}, nil)
	if err != nil {
		t.Fatalf("non-zero exit must not be an error: %v", err)
	}
	if result.ExitCode != 3 || result.Succeeded() {
		t.Fatalf("expected exit code 3, got %d", result.ExitCode)
	}
	if result.OutputText() != "boom\n" {
		t.Fatalf("unexpected output: %q", result.OutputText())
	}
}

func TestRunUsesWorkingDirectoryAndEnv(t *testing.T) {
	base := t.TempDir()
	testsupport.StubBinary(t, base, "news", "pwd\necho \"$NEWS_MODE\"\n")
	workDir := filepath.Join(base, "bin")

	result, err := runner.New(nil).Run(context.Background(), runner.Command{
		Step: "digest",
		Name: "news",
		Dir:  workDir,
		Env:  []string{"NEWS_MODE=test"},
	}, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(result.OutputText()), "\n")
	if len(lines) != 2 {
		t.Fatalf("unexpected output: %q", result.OutputText())
	}
	gotDir, _ := filepath.EvalSymlinks(lines[0])
	wantDir, _ := filepath.EvalSymlinks(workDir)
	if gotDir != wantDir {
		t.Fatalf("expected working dir %q, got %q", wantDir, gotDir)
	}
	if lines[1] != "test" {
		t.Fatalf("expected env passed through, got %q", lines[1])
	}
}

func TestRunLaunchErrors(t *testing.T) {
	base := t.TempDir()
	testsupport.StubBinary(t, base, "news", "exit 0\n")

	cases := []struct {
		name string
		cmd  runner.Command
	}{
		{name: "missing binary", cmd: runner.Command{Step: "crawl", Name: "definitely-not-a-real-binary-newsctl", Dir: base}},
		{name: "missing dir", cmd: runner.Command{Step: "crawl", Name: "news", Dir: filepath.Join(base, "absent")}},
		{name: "dir is file", cmd: runner.Command{Step: "crawl", Name: "news", Dir: filepath.Join(base, "bin", "news")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runner.New(nil).Run(context.Background(), tc.cmd, nil)
			if err == nil {
				t.Fatal("expected launch error")
			}
			var launchErr *runner.LaunchError
			if !errors.As(err, &launchErr) {
				t.Fatalf("expected *LaunchError, got %T: %v", err, err)
			}
			if !errors.Is(err, runner.ErrLaunch) {
				t.Fatalf("expected ErrLaunch marker, got %v", err)
			}
		})
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	base := t.TempDir()
	testsupport.StubBinary(t, base, "news", "echo started\nexec sleep 30\n")

	ctx, cancel := context.WithCancel(context.Background())
	var live bytes.Buffer
	r := runner.New(nil, runner.WithGracePeriod(time.Second))

	time.AfterFunc(200*time.Millisecond, cancel)
	start := time.Now()
	result, err := r.Run(ctx, runner.Command{Step: "crawl", Name: "news", Dir: base}, &live)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result.Succeeded() {
		t.Fatal("cancelled run must not report success")
	}
	if time.Since(start) > 10*time.Second {
		t.Fatal("cancellation did not stop the child promptly")
	}
}

func TestRunTimeout(t *testing.T) {
	base := t.TempDir()
	testsupport.StubBinary(t, base, "news", "exec sleep 30\n")

	r := runner.New(nil, runner.WithTimeout(200*time.Millisecond), runner.WithGracePeriod(time.Second))
	_, err := r.Run(context.Background(), runner.Command{Step: "digest", Name: "news", Dir: base}, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRunSurfacesLiveWriterFailure(t *testing.T) {
	base := t.TempDir()
	testsupport.StubBinary(t, base, "news", "echo hello\n")

	result, err := runner.New(nil).Run(context.Background(), runner.Command{Step: "crawl", Name: "news", Dir: base}, failingWriter{})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected live writer error, got %v", err)
	}
	if result.OutputText() != "hello\n" {
		t.Fatalf("output still captured, got %q", result.OutputText())
	}
}
