package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeRoots(); err != nil {
		return err
	}
	c.normalizeWorkers()
	c.normalizeFileTypes()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LibraryDB) == "" {
		c.Paths.LibraryDB = defaultLibraryDB
	}
	if c.Paths.LibraryDB, err = expandPath(c.Paths.LibraryDB); err != nil {
		return fmt.Errorf("paths.library_db: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeRoots() error {
	if len(c.Roots.Directories) == 0 {
		if value, ok := os.LookupEnv(rootsEnvVar); ok {
			c.Roots.Directories = filepath.SplitList(value)
		}
	}
	dirs := make([]string, 0, len(c.Roots.Directories))
	seen := make(map[string]struct{}, len(c.Roots.Directories))
	for i, dir := range c.Roots.Directories {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		expanded, err := expandPath(dir)
		if err != nil {
			return fmt.Errorf("roots.directories[%d]: %w", i, err)
		}
		if _, exists := seen[expanded]; exists {
			continue
		}
		seen[expanded] = struct{}{}
		dirs = append(dirs, expanded)
	}
	c.Roots.Directories = dirs
	return nil
}

func (c *Config) normalizeWorkers() {
	if c.Scan.Concurrency == 0 {
		c.Scan.Concurrency = defaultScanConcurrency
	}
	if c.Link.Workers == 0 {
		c.Link.Workers = defaultLinkWorkers
	}
}

func (c *Config) normalizeFileTypes() {
	for i := range c.FileTypes {
		ft := &c.FileTypes[i]
		ft.Name = strings.TrimSpace(ft.Name)
		ft.Extension = strings.TrimPrefix(strings.TrimSpace(ft.Extension), ".")
		ft.MimeType = strings.ToLower(strings.TrimSpace(ft.MimeType))
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
