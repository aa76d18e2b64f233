package roots

import (
	"fmt"
	"path/filepath"
	"strings"

	"autolink/internal/config"
)

// Resolve returns the root directories in search order: the library's own
// file directories, then the configured directories, then the directory
// holding the library database when cfg.IncludeLibraryDir is set. Relative
// library directories are taken relative to the database's directory.
// Paths are expanded, made absolute and deduplicated, first occurrence
// winning.
func Resolve(cfg config.Roots, libraryDirs []string, libraryPath string) ([]string, error) {
	var libraryDir string
	if strings.TrimSpace(libraryPath) != "" {
		expanded, err := config.ExpandPath(libraryPath)
		if err != nil {
			return nil, fmt.Errorf("library path: %w", err)
		}
		libraryDir = filepath.Dir(expanded)
	}

	var out []string
	seen := make(map[string]struct{})
	add := func(dir string) {
		if _, ok := seen[dir]; ok {
			return
		}
		seen[dir] = struct{}{}
		out = append(out, dir)
	}

	for i, dir := range libraryDirs {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		if libraryDir != "" && !filepath.IsAbs(dir) && !strings.HasPrefix(dir, "~") {
			dir = filepath.Join(libraryDir, dir)
		}
		expanded, err := config.ExpandPath(dir)
		if err != nil {
			return nil, fmt.Errorf("library file directory %d: %w", i, err)
		}
		add(expanded)
	}
	for i, dir := range cfg.Directories {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		expanded, err := config.ExpandPath(dir)
		if err != nil {
			return nil, fmt.Errorf("roots.directories[%d]: %w", i, err)
		}
		add(expanded)
	}
	if cfg.IncludeLibraryDir && libraryDir != "" {
		add(libraryDir)
	}
	return out, nil
}

// Override expands explicitly requested roots, replacing the resolved set.
func Override(dirs []string) ([]string, error) {
	return Resolve(config.Roots{Directories: dirs}, nil, "")
}
