package config

import (
	"fmt"
	"strings"
)

// Overrides carries command-line and environment values that take
// precedence over the configuration file. Empty fields are ignored.
type Overrides struct {
	ProjectRoot string
	LogLevel    string
	LogFormat   string
	Host        string
	Dir         string
	Service     string
}

// Apply copies the non-empty overrides into c, then normalizes and validates
// the result again.
func (c *Config) Apply(o Overrides) error {
	set := func(dst *string, value string) {
		if v := strings.TrimSpace(value); v != "" {
			*dst = v
		}
	}
	set(&c.Paths.ProjectRoot, o.ProjectRoot)
	set(&c.Logging.Level, o.LogLevel)
	set(&c.Logging.Format, o.LogFormat)
	set(&c.Remote.Host, o.Host)
	set(&c.Remote.Dir, o.Dir)
	set(&c.Remote.Service, o.Service)

	if err := c.normalize(); err != nil {
		return fmt.Errorf("apply overrides: %w", err)
	}
	return c.Validate()
}
