package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable for any command.
func (c *Config) Validate() error {
	if err := c.validateTool(); err != nil {
		return err
	}
	if err := c.validateRemoteSettings(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// ValidateRemote ensures the deployment target is fully specified. The daily
// run never touches the remote host, so this check only gates deploy.
func (c *Config) ValidateRemote() error {
	if c.Remote.Host == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPathDisplay
		}
		return fmt.Errorf("remote.host is required. Pass --host, set NEWSCTL_HOST, or edit %s (create with 'newsctl config init')", defaultPath)
	}
	if strings.ContainsAny(c.Remote.Host, " \t\n") {
		return fmt.Errorf("remote.host %q must not contain whitespace", c.Remote.Host)
	}
	if c.Remote.Dir == "" {
		return errors.New("remote.dir must be set")
	}
	if c.Remote.Service == "" {
		return errors.New("remote.service must be set")
	}
	if !validUnitName(c.Remote.Service) {
		return fmt.Errorf("remote.service %q is not a valid systemd unit name", c.Remote.Service)
	}
	return nil
}

// validUnitName accepts the characters systemd allows in unit names, so the
// name can be placed in the restart command unquoted.
func validUnitName(name string) bool {
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune(":_.@-", r):
		default:
			return false
		}
	}
	return name != ""
}

func (c *Config) validateTool() error {
	if c.Tool.Command == "" {
		return errors.New("tool.command must be set")
	}
	if c.Tool.Timeout < 0 {
		return errors.New("tool.timeout must be zero (disabled) or positive (seconds)")
	}
	return nil
}

func (c *Config) validateRemoteSettings() error {
	if c.Remote.Port <= 0 || c.Remote.Port > maxTCPPort {
		return fmt.Errorf("remote.port must be between 1 and %d", maxTCPPort)
	}
	if c.Remote.ConnectTimeout <= 0 {
		return errors.New("remote.connect_timeout must be positive (seconds)")
	}
	if c.Remote.StrictHostKey && c.Remote.KnownHosts == "" {
		return errors.New("remote.known_hosts must be set when remote.strict_host_key is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q is not supported (use console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not supported", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be zero (disabled) or positive")
	}
	if filepath.IsAbs(c.Paths.LogDir) && filepath.Clean(c.Paths.LogDir) == string(filepath.Separator) {
		return errors.New("paths.log_dir must not be the filesystem root")
	}
	return nil
}
