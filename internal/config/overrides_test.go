package config_test

import (
	"path/filepath"
	"testing"

	"newsctl/internal/config"
)

func TestApplyOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	root := t.TempDir()
	err = cfg.Apply(config.Overrides{
		ProjectRoot: root,
		LogLevel:    "DEBUG",
		Host:        " ubuntu@news.example ",
		Dir:         "/srv/news/",
	})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if cfg.Paths.ProjectRoot != filepath.Clean(root) {
		t.Fatalf("project root = %q", cfg.Paths.ProjectRoot)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("log level not normalized: %q", cfg.Logging.Level)
	}
	if cfg.Remote.Host != "ubuntu@news.example" || cfg.Remote.Dir != "/srv/news" {
		t.Fatalf("remote overrides not applied: %+v", cfg.Remote)
	}
	if cfg.Remote.Service != "ai-news-agent" {
		t.Fatalf("unset override must keep the file value, got %q", cfg.Remote.Service)
	}
}

func TestApplyOverridesValidates(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if err := cfg.Apply(config.Overrides{LogLevel: "verbose"}); err == nil {
		t.Fatal("expected invalid log level to be rejected")
	}
}
