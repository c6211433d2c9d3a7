package deploy

import (
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExclusions are never transferred to the remote host: virtual
// environments, version control, caches, compiled bytecode, secrets, local
// databases, run logs, and the dependency lock file.
var DefaultExclusions = []string{
	".venv",
	"venv",
	".git",
	"__pycache__",
	".pytest_cache",
	".mypy_cache",
	".ruff_cache",
	"*.pyc",
	"*.pyo",
	".env",
	"*.db",
	"*.sqlite",
	"logs",
	"uv.lock",
}

// Exclusions returns a copy of DefaultExclusions.
func Exclusions() []string {
	return append([]string(nil), DefaultExclusions...)
}

// Excluded reports whether the slash-separated relative path rel is matched
// by any pattern. As with rsync patterns without a slash, a pattern matches
// any path component, so an excluded directory excludes everything below it.
func Excluded(rel string, patterns []string) bool {
	rel = strings.Trim(path.Clean(filepath.ToSlash(rel)), "/")
	if rel == "" || rel == "." {
		return false
	}
	for _, component := range strings.Split(rel, "/") {
		for _, pattern := range patterns {
			if ok, err := path.Match(pattern, component); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// Plan walks localRoot and returns the slash-separated relative paths of the
// files and symlinks a sync would transfer, sorted. Excluded directories are
// pruned without being read.
func Plan(localRoot string, patterns []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(localRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(localRoot, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if Excluded(rel, patterns) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
