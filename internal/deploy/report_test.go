package deploy_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"newsctl/internal/deploy"
	"newsctl/internal/runner"
)

func TestReportMarksFailingStep(t *testing.T) {
	target := deploy.Target{Host: "ubuntu@news.example", Dir: "~/ai-news-agent", Service: "ai-news-agent"}
	results := []runner.StepResult{
		{Step: deploy.StepSync, Command: "rsync -az", Duration: 1500 * time.Millisecond},
		{Step: deploy.StepRemoteCD, Command: `cd "$HOME"/ai-news-agent`},
		{Step: deploy.StepRemoteDeps, Command: "uv sync", ExitCode: 1, Output: []byte("error: lockfile out of date\n")},
	}
	deployErr := &deploy.RemoteCommandError{Step: deploy.StepRemoteDeps, Command: "uv sync", ExitCode: 1, Output: results[2].Output}
	now := time.Date(2024, 3, 9, 6, 0, 0, 0, time.UTC)

	path := filepath.Join(t.TempDir(), "reports", "deploy.yaml")
	require.NoError(t, deploy.NewReport(now, target, results, deployErr).WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got deploy.Report
	require.NoError(t, yaml.Unmarshal(data, &got))
	require.Equal(t, "2024-03-09T06:00:00Z", got.Generated)
	require.False(t, got.Success)
	require.Len(t, got.Steps, 3)
	require.Equal(t, "1.5s", got.Steps[0].Duration)
	require.Empty(t, got.Steps[0].Error)
	require.Equal(t, 1, got.Steps[2].ExitCode)
	require.Contains(t, got.Steps[2].Error, "lockfile out of date")
	require.Equal(t, "error: lockfile out of date\n", got.Steps[2].Output)
}

func TestReportSuccessOmitsError(t *testing.T) {
	report := deploy.NewReport(time.Now(), deploy.Target{Host: "h"}, nil, nil)
	require.True(t, report.Success)

	path := filepath.Join(t.TempDir(), "ok.yaml")
	require.NoError(t, report.WriteFile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(data), "error:")
	require.Contains(t, string(data), "success: true")
}
