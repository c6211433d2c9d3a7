package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteTree creates each relative path under root with the given contents.
// Keys ending in "/" create empty directories.
func WriteTree(t testing.TB, root string, files map[string]string) {
	t.Helper()

	for rel, contents := range files {
		target := filepath.Join(root, filepath.FromSlash(rel))
		if rel != "" && rel[len(rel)-1] == '/' {
			if err := os.MkdirAll(target, 0o755); err != nil {
				t.Fatalf("mkdir %s: %v", target, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", target, err)
		}
		if err := os.WriteFile(target, []byte(contents), 0o644); err != nil {
			t.Fatalf("write %s: %v", target, err)
		}
	}
}
