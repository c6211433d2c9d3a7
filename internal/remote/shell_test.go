package remote_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"newsctl/internal/remote"
	"newsctl/internal/testsupport"
)

func openTestShell(t *testing.T) (*remote.Shell, *testsupport.SSHServer) {
	t.Helper()
	t.Setenv("SSH_AUTH_SOCK", "")
	srv := testsupport.StartSSHServer(t)
	client, err := remote.Dial(context.Background(), remote.Target{
		Host:           "deployer@" + srv.Host,
		Port:           srv.Port,
		ConnectTimeout: 3 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	sh, err := remote.OpenShell(client)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sh.Close() })
	return sh, srv
}

func TestShellSharesWorkingDirectory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.MkdirAll(filepath.Join(home, "ai-news-agent"), 0o755))
	sh, srv := openTestShell(t)

	ctx := context.Background()
	_, code, err := sh.Run(ctx, remote.ChangeDir("~/ai-news-agent"), nil)
	require.NoError(t, err)
	require.Equal(t, 0, code)

	out, code, err := sh.Run(ctx, "pwd", nil)
	require.NoError(t, err)
	require.Equal(t, 0, code)
	wantDir, _ := filepath.EvalSymlinks(filepath.Join(home, "ai-news-agent"))
	gotDir, _ := filepath.EvalSymlinks(strings.TrimSpace(string(out)))
	require.Equal(t, wantDir, gotDir)

	require.Equal(t, []string{"/bin/sh -s -"}, srv.Commands())
}

func TestShellMergesStderrAndReportsExitCode(t *testing.T) {
	sh, _ := openTestShell(t)

	var live bytes.Buffer
	out, code, err := sh.Run(context.Background(), "echo resolving; echo 'lock mismatch' >&2; false", &live)
	require.NoError(t, err)
	require.Equal(t, 1, code)
	require.Equal(t, "resolving\nlock mismatch\n", string(out))
	require.Equal(t, string(out), live.String())

	out, code, err = sh.Run(context.Background(), "printf partial", nil)
	require.NoError(t, err)
	require.Equal(t, 0, code)
	require.Equal(t, "partial", string(out))
}

func TestShellFailedCdKeepsShellAlive(t *testing.T) {
	sh, _ := openTestShell(t)

	_, code, err := sh.Run(context.Background(), remote.ChangeDir("/definitely/missing/newsctl"), nil)
	require.NoError(t, err)
	require.NotEqual(t, 0, code)

	out, code, err := sh.Run(context.Background(), "echo still-here", nil)
	require.NoError(t, err)
	require.Equal(t, 0, code)
	require.Equal(t, "still-here\n", string(out))
}

func TestShellExitReportsClosed(t *testing.T) {
	sh, _ := openTestShell(t)

	_, _, err := sh.Run(context.Background(), "exit 4", nil)
	require.ErrorIs(t, err, remote.ErrShellClosed)
}

func TestShellCommandsDoNotReadCommandStream(t *testing.T) {
	sh, _ := openTestShell(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, code, err := sh.Run(ctx, "read answer; echo got:$answer", nil)
	require.NoError(t, err)
	require.Equal(t, 0, code)
	require.Equal(t, "got:\n", string(out))

	out, code, err = sh.Run(ctx, "echo next", nil)
	require.NoError(t, err)
	require.Equal(t, 0, code)
	require.Equal(t, "next\n", string(out))
}

func TestShellCancellation(t *testing.T) {
	sh, _ := openTestShell(t)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, _, err := sh.Run(ctx, "sleep 30", nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestShellCloseIsIdempotent(t *testing.T) {
	sh, _ := openTestShell(t)
	require.NoError(t, sh.Close())
	require.NoError(t, sh.Close())
	_, _, err := sh.Run(context.Background(), "true", nil)
	require.ErrorIs(t, err, remote.ErrShellClosed)
}
