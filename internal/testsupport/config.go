package testsupport

import (
	"path/filepath"
	"testing"

	"autolink/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LibraryDB = filepath.Join(base, "library", "library.db")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

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

// WithRoots adds root directories below the test's base directory. Each
// directory is created.
func WithRoots(names ...string) ConfigOption {
	return func(b *configBuilder) {
		for _, name := range names {
			dir := filepath.Join(b.baseDir, name)
			MkdirAll(b.t, dir)
			b.cfg.Roots.Directories = append(b.cfg.Roots.Directories, dir)
		}
	}
}

// WithFileType registers an extra extension mapping.
func WithFileType(name, extension string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.FileTypes = append(b.cfg.FileTypes, config.FileType{Name: name, Extension: extension})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
