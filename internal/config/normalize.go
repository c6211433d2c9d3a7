package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTool()
	if err := c.normalizeRemote(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	c.Paths.ProjectRoot = strings.TrimSpace(c.Paths.ProjectRoot)
	if c.Paths.ProjectRoot != "" {
		if c.Paths.ProjectRoot, err = expandPath(c.Paths.ProjectRoot); err != nil {
			return fmt.Errorf("paths.project_root: %w", err)
		}
	}
	c.Paths.LogDir = strings.TrimSpace(c.Paths.LogDir)
	if c.Paths.LogDir == "" {
		c.Paths.LogDir = defaultLogDir
	}
	// Relative log directories are anchored at the project root later.
	if c.Paths.LogDir, err = expandHome(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTool() {
	c.Tool.Command = strings.TrimSpace(c.Tool.Command)
	if c.Tool.Command == "" {
		c.Tool.Command = defaultToolCommand
	}
	c.Tool.Args = trimArgs(c.Tool.Args)
	if c.Tool.Command == defaultToolCommand && len(c.Tool.Args) == 0 {
		c.Tool.Args = append([]string(nil), defaultToolArgs...)
	}
	c.Tool.CrawlArgs = trimArgs(c.Tool.CrawlArgs)
	c.Tool.DigestArgs = trimArgs(c.Tool.DigestArgs)
}

func (c *Config) normalizeRemote() error {
	c.Remote.Host = strings.TrimSpace(c.Remote.Host)
	c.Remote.Dir = strings.TrimSpace(c.Remote.Dir)
	if c.Remote.Dir == "" {
		c.Remote.Dir = defaultRemoteDir
	}
	c.Remote.Dir = strings.TrimRight(c.Remote.Dir, "/")
	if c.Remote.Dir == "" {
		c.Remote.Dir = "/"
	}
	c.Remote.Service = strings.TrimSpace(c.Remote.Service)
	if c.Remote.Service == "" {
		c.Remote.Service = defaultRemoteService
	}
	c.Remote.DepsCommand = strings.TrimSpace(c.Remote.DepsCommand)
	if c.Remote.DepsCommand == "" {
		c.Remote.DepsCommand = defaultDepsCommand
	}
	c.Remote.RestartCommand = strings.TrimSpace(c.Remote.RestartCommand)
	if c.Remote.Port == 0 {
		c.Remote.Port = defaultRemotePort
	}
	if c.Remote.ConnectTimeout == 0 {
		c.Remote.ConnectTimeout = defaultConnectTimeout
	}

	var err error
	c.Remote.KeyPath = strings.TrimSpace(c.Remote.KeyPath)
	if c.Remote.KeyPath != "" {
		if c.Remote.KeyPath, err = expandPath(c.Remote.KeyPath); err != nil {
			return fmt.Errorf("remote.key_path: %w", err)
		}
	}
	c.Remote.KnownHosts = strings.TrimSpace(c.Remote.KnownHosts)
	if c.Remote.KnownHosts == "" {
		c.Remote.KnownHosts = defaultKnownHosts
	}
	if c.Remote.KnownHosts, err = expandPath(c.Remote.KnownHosts); err != nil {
		return fmt.Errorf("remote.known_hosts: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// ServiceRestartCommand returns the remote restart command, derived from the
// service name unless remote.restart_command overrides it.
func (c *Config) ServiceRestartCommand() string {
	if c.Remote.RestartCommand != "" {
		return c.Remote.RestartCommand
	}
	return restartCommandPrefix + c.Remote.Service
}

func trimArgs(args []string) []string {
	if len(args) == 0 {
		return nil
	}
	out := make([]string, 0, len(args))
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		out = append(out, arg)
	}
	return out
}
