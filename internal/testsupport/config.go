package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"newsctl/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config rooted in a fresh temp project. The project root
// holds a pyproject.toml marker and logs resolve to <root>/logs.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	root := filepath.Join(base, "project")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir project root: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "pyproject.toml"), []byte("[project]\nname = \"ai-news-agent\"\n"), 0o644); err != nil {
		t.Fatalf("write pyproject: %v", err)
	}

	cfgVal := config.Default()
	cfgVal.Paths.ProjectRoot = root
	cfgVal.Paths.LogDir = filepath.Join(root, "logs")
	cfgVal.Tool.Command = "news"
	cfgVal.Tool.Args = nil
	cfgVal.Remote.Host = "deploy@example.test"
	cfgVal.Remote.StrictHostKey = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithStubbedBinaries writes stub executables that exit 0 for the provided
// names and prepends them to PATH. If names is empty, the news tool is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"news"}
		}
		for _, name := range names {
			StubBinary(b.t, b.baseDir, name, "exit 0\n")
		}
	}
}

// WithScript installs an executable shell script named name with the given
// body on PATH.
func WithScript(name, body string) ConfigOption {
	return func(b *configBuilder) {
		StubBinary(b.t, b.baseDir, name, body)
	}
}

// WithLogDir overrides the log directory.
func WithLogDir(dir string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.LogDir = dir
	}
}

// StubBinary writes "#!/bin/sh\n<body>" to <baseDir>/bin/<name> and ensures
// that directory leads PATH for the rest of the test.
func StubBinary(t testing.TB, baseDir, name, body string) string {
	t.Helper()

	binDir := filepath.Join(baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(binDir, name)
	if err := os.WriteFile(target, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}

	oldPath := os.Getenv("PATH")
	if filepath.SplitList(oldPath)[0] != binDir {
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			t.Fatalf("set PATH: %v", err)
		}
		t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
	return target
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.ProjectRoot)
}
