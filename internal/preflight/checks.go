package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"newsctl/internal/config"
	"newsctl/internal/deps"
	"newsctl/internal/remote"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckCreatableDirectory passes when path is a usable directory or when its
// nearest existing ancestor would allow creating it.
func CheckCreatableDirectory(name, path string) Result {
	if _, err := os.Stat(path); err == nil || !os.IsNotExist(err) {
		return CheckDirectoryAccess(name, path)
	}
	parent := filepath.Dir(path)
	for {
		if _, err := os.Stat(parent); err == nil {
			break
		}
		next := filepath.Dir(parent)
		if next == parent {
			break
		}
		parent = next
	}
	if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, parent, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckProjectRoot verifies the resolved project root carries pyproject.toml.
func CheckProjectRoot(root string) Result {
	const name = "Project root"
	if root == "" {
		return Result{Name: name, Detail: "not resolved"}
	}
	if _, err := os.Stat(filepath.Join(root, "pyproject.toml")); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: no pyproject.toml)", root)}
	}
	return Result{Name: name, Passed: true, Detail: root}
}

// CheckKnownHosts verifies known_hosts exists when strict host checking is on.
func CheckKnownHosts(cfg *config.Config) Result {
	const name = "known_hosts"
	if !cfg.Remote.StrictHostKey {
		return Result{Name: name, Passed: true, Detail: "strict host key checking disabled"}
	}
	if _, err := os.Stat(cfg.Remote.KnownHosts); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", cfg.Remote.KnownHosts, errors.Unwrap(err))}
	}
	return Result{Name: name, Passed: true, Detail: cfg.Remote.KnownHosts}
}

// CheckRemote dials the deployment host and runs a no-op command.
func CheckRemote(ctx context.Context, target remote.Target) Result {
	const name = "Remote host"
	if target.Host == "" {
		return Result{Name: name, Detail: "remote.host not configured"}
	}
	client, err := remote.Dial(ctx, target)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("open session: %v", err)}
	}
	defer session.Close()
	if err := session.Run("true"); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("run: %v", err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s reachable", target.Host)}
}

// CheckSystemDeps evaluates the external programs for the given config. The
// news tool is needed by run; rsync and ssh by deploy.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries([]deps.Requirement{
		{
			Name:        "News tool",
			Command:     cfg.ToolBinary(),
			Description: "Required for run (crawl and digest)",
		},
		{
			Name:        "rsync",
			Command:     "rsync",
			Description: "Required for deploy (file transfer)",
		},
		{
			Name:        "ssh",
			Command:     "ssh",
			Description: "Transport for rsync during deploy",
		},
	})
}
