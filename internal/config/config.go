package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains project and log directory configuration.
type Paths struct {
	ProjectRoot string `toml:"project_root"`
	LogDir      string `toml:"log_dir"`
}

// Tool describes how the news tool is invoked from the project root.
type Tool struct {
	Command    string   `toml:"command"`
	Args       []string `toml:"args"`
	CrawlArgs  []string `toml:"crawl_args"`
	DigestArgs []string `toml:"digest_args"`
	// Timeout in seconds per subcommand; 0 waits indefinitely.
	Timeout int `toml:"timeout"`
}

// Remote contains the deployment target.
type Remote struct {
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	Dir            string `toml:"dir"`
	Service        string `toml:"service"`
	DepsCommand    string `toml:"deps_command"`
	RestartCommand string `toml:"restart_command"`
	KeyPath        string `toml:"key_path"`
	KnownHosts     string `toml:"known_hosts"`
	StrictHostKey  bool   `toml:"strict_host_key"`
	ConnectTimeout int    `toml:"connect_timeout"`
}

// Run contains daily run behaviour toggles.
type Run struct {
	Lock bool `toml:"lock"`
}

// Logging contains configuration for structured log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for newsctl.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Tool    Tool    `toml:"tool"`
	Remote  Remote  `toml:"remote"`
	Run     Run     `toml:"run"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/newsctl/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. The project root is not resolved here; callers
// invoke ResolveProjectRoot once flag overrides have been applied.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("newsctl.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log directory. Creating an existing directory
// is a no-op and leaves its contents untouched.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir is not resolved")
	}
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	return nil
}

// ToolTimeout returns the per-subcommand timeout, zero when disabled.
func (c *Config) ToolTimeout() time.Duration {
	if c.Tool.Timeout <= 0 {
		return 0
	}
	return time.Duration(c.Tool.Timeout) * time.Second
}

// ConnectTimeout returns the SSH dial timeout.
func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.Remote.ConnectTimeout) * time.Second
}

// ToolBinary returns the executable used to reach the news tool.
func (c *Config) ToolBinary() string {
	return strings.TrimSpace(c.Tool.Command)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	expanded, err := expandHome(pathValue)
	if err != nil {
		return "", err
	}
	cleaned := filepath.Clean(expanded)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

func expandHome(pathValue string) (string, error) {
	if !strings.HasPrefix(pathValue, "~") {
		return pathValue, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	if pathValue == "~" {
		return home, nil
	}
	if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
		return filepath.Join(home, pathValue[2:]), nil
	}
	return pathValue, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
