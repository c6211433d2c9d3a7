package main

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"newsctl/internal/config"
	"newsctl/internal/logging"
)

type commandContext struct {
	v         *viper.Viper
	sessionID string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(v *viper.Viper) *commandContext {
	return &commandContext{
		v:         v,
		sessionID: uuid.NewString(),
	}
}

// ensureConfig loads the configuration once and layers environment and flag
// overrides on top of it.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(strings.TrimSpace(c.v.GetString("config")))
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.Apply(c.overrides()); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) overrides() config.Overrides {
	return config.Overrides{
		ProjectRoot: c.v.GetString("project-root"),
		LogLevel:    c.v.GetString("log-level"),
		LogFormat:   c.v.GetString("log-format"),
		Host:        c.v.GetString("host"),
		Dir:         c.v.GetString("dir"),
		Service:     c.v.GetString("service"),
	}
}

// logger builds the structured logger for one command, writing to w.
func (c *commandContext) logger(w io.Writer) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg, w, c.sessionID, isTerminal(w))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
