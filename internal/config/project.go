package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ExecutablePath reports the location of the running program. Tests replace it.
var ExecutablePath = os.Executable

// ResolveProjectRoot settles paths.project_root and anchors a relative
// paths.log_dir beneath it. An explicit project root wins; otherwise the
// directory tree above the running executable is searched for pyproject.toml,
// falling back to the executable's own directory.
func (c *Config) ResolveProjectRoot() error {
	if c.Paths.ProjectRoot == "" {
		exe, err := ExecutablePath()
		if err != nil {
			return fmt.Errorf("locate executable: %w", err)
		}
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		c.Paths.ProjectRoot = FindProjectRoot(filepath.Dir(exe))
	}

	info, err := os.Stat(c.Paths.ProjectRoot)
	if err != nil {
		return fmt.Errorf("paths.project_root %q: %w", c.Paths.ProjectRoot, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("paths.project_root %q is not a directory", c.Paths.ProjectRoot)
	}

	if !filepath.IsAbs(c.Paths.LogDir) {
		c.Paths.LogDir = filepath.Join(c.Paths.ProjectRoot, c.Paths.LogDir)
	}
	return nil
}

// FindProjectRoot walks upward from start looking for the project marker.
// When no ancestor carries one, start itself is returned.
func FindProjectRoot(start string) string {
	start = filepath.Clean(start)
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, projectMarkerFile)); err == nil {
			return dir
		} else if !errors.Is(err, os.ErrNotExist) {
			return start
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}
