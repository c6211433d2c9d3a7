package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"newsctl/internal/config"
	"newsctl/internal/testsupport"
)

const newsScript = `case "$1" in
crawl) echo "crawled 3 articles"; exit ${CRAWL_EXIT:-0} ;;
digest) echo "digest ready $*" ;;
esac
`

func writeTestConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(testsupport.BaseDir(cfg), "newsctl.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q to contain %q", haystack, needle)
	}
}

func isolateHome(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SSH_AUTH_SOCK", "")
	for _, key := range []string{"NEWSCTL_HOST", "NEWSCTL_DIR", "NEWSCTL_SERVICE", "NEWSCTL_CONFIG", "NEWSCTL_PROJECT_ROOT", "NEWSCTL_LOG_LEVEL", "NEWSCTL_LOG_FORMAT"} {
		t.Setenv(key, "")
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	requireContains(t, out, "newsctl dev")
}

func TestConfigInitAndValidate(t *testing.T) {
	isolateHome(t)
	cfg := testsupport.NewConfig(t)
	configPath := writeTestConfig(t, cfg)

	out, _, err := runCLI(t, "--config", configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Project root: "+cfg.Paths.ProjectRoot)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected init to refuse an existing file")
	}
	if _, _, err := runCLI(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, _, err = runCLI(t, "--config", target, "--project-root", cfg.Paths.ProjectRoot, "config", "validate")
	if err != nil {
		t.Fatalf("validate sample config: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestRunCommandWritesLogAndSummary(t *testing.T) {
	isolateHome(t)
	cfg := testsupport.NewConfig(t, testsupport.WithScript("news", newsScript))
	configPath := writeTestConfig(t, cfg)

	out, errOut, err := runCLI(t, "--config", configPath, "run", "--dry-run")
	if err != nil {
		t.Fatalf("run: %v (stderr %q)", err, errOut)
	}
	requireContains(t, out, "=== AI news daily run: ")
	requireContains(t, out, "crawled 3 articles\n\ndigest ready digest --dry-run\n")
	requireContains(t, out, "=== Daily run complete: ")
	requireContains(t, errOut, "crawl")
	requireContains(t, errOut, "digest")
	requireContains(t, errOut, "Run log: ")

	logs, _ := filepath.Glob(filepath.Join(cfg.Paths.LogDir, "digest_*.log"))
	if len(logs) != 1 {
		t.Fatalf("expected one run log, got %v", logs)
	}
	logged, err := os.ReadFile(logs[0])
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if string(logged) != out {
		t.Fatalf("log differs from stdout:\n log %q\n out %q", logged, out)
	}
}

func TestRunCommandFailsWhenCrawlFails(t *testing.T) {
	isolateHome(t)
	t.Setenv("CRAWL_EXIT", "1")
	cfg := testsupport.NewConfig(t, testsupport.WithScript("news", newsScript))
	configPath := writeTestConfig(t, cfg)

	out, errOut, err := runCLI(t, "--config", configPath, "run")
	if err == nil {
		t.Fatal("expected run to fail")
	}
	requireContains(t, err.Error(), "crawl exited with status 1")
	requireContains(t, errOut, "failed")
	if strings.Contains(out, "digest ready") {
		t.Fatalf("digest ran after crawl failure: %q", out)
	}
}

func TestDeployRequiresHost(t *testing.T) {
	isolateHome(t)
	cfg := testsupport.NewConfig(t)
	cfg.Remote.Host = ""
	configPath := writeTestConfig(t, cfg)

	_, _, err := runCLI(t, "--config", configPath, "deploy", "--dry-run")
	if err == nil {
		t.Fatal("expected missing host error")
	}
	requireContains(t, err.Error(), "--host")
}

func TestDeployDryRunListsPlan(t *testing.T) {
	isolateHome(t)
	cfg := testsupport.NewConfig(t)
	cfg.Remote.Host = ""
	testsupport.WriteTree(t, cfg.Paths.ProjectRoot, map[string]string{
		"src/ai_news_agent/cli.py": "",
		".venv/bin/python":         "",
		".env":                     "SECRET=1",
		"uv.lock":                  "",
	})
	configPath := writeTestConfig(t, cfg)
	t.Setenv("NEWSCTL_HOST", "ubuntu@env.example")

	out, _, err := runCLI(t, "--config", configPath, "deploy", "--dry-run", "--dir", "/srv/agent")
	if err != nil {
		t.Fatalf("deploy --dry-run: %v", err)
	}
	requireContains(t, out, "to ubuntu@env.example:/srv/agent")
	requireContains(t, out, "  src/ai_news_agent/cli.py\n")
	requireContains(t, out, "  pyproject.toml\n")
	requireContains(t, out, "cd /srv/agent")
	requireContains(t, out, "sudo systemctl restart ai-news-agent")
	for _, excluded := range []string{"  .venv/", "  .env\n", "  uv.lock\n"} {
		if strings.Contains(out, excluded) {
			t.Fatalf("dry run lists excluded path %q:\n%s", excluded, out)
		}
	}

	out, _, err = runCLI(t, "--config", configPath, "deploy", "--dry-run", "--host", "root@flag.example")
	if err != nil {
		t.Fatalf("deploy --dry-run --host: %v", err)
	}
	requireContains(t, out, "root@flag.example:")
}

func TestCheckCommand(t *testing.T) {
	isolateHome(t)
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("news", "rsync", "ssh"))
	configPath := writeTestConfig(t, cfg)

	out, _, err := runCLI(t, "--config", configPath, "check")
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "rsync")
	requireContains(t, out, "Project root")
	requireContains(t, out, "will be created")
}

func TestCheckCommandReportsMissingTool(t *testing.T) {
	isolateHome(t)
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("rsync", "ssh"))
	cfg.Tool.Command = "definitely-missing-news-tool"
	configPath := writeTestConfig(t, cfg)

	out, _, err := runCLI(t, "--config", configPath, "check")
	if err == nil {
		t.Fatal("expected check to fail")
	}
	requireContains(t, out, "missing")
}

func TestLogsCommandShowsLatestRun(t *testing.T) {
	isolateHome(t)
	cfg := testsupport.NewConfig(t)
	testsupport.WriteTree(t, cfg.Paths.LogDir, map[string]string{
		"digest_20240308_060000.log": "old run\n",
		"digest_20240309_060000.log": "line one\nline two\nline three\n",
	})
	configPath := writeTestConfig(t, cfg)

	out, _, err := runCLI(t, "--config", configPath, "logs", "-n", "2")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if out != "line two\nline three\n" {
		t.Fatalf("unexpected tail output %q", out)
	}

	out, _, err = runCLI(t, "--config", configPath, "logs", "--list")
	if err != nil {
		t.Fatalf("logs --list: %v", err)
	}
	if strings.Index(out, "2024-03-09 06:00:00") > strings.Index(out, "2024-03-08 06:00:00") {
		t.Fatalf("expected newest first:\n%s", out)
	}
}
