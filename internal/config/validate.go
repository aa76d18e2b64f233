package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateWorkers(); err != nil {
		return err
	}
	if err := c.validateFileTypes(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.LibraryDB) == "" {
		return errors.New("paths.library_db must be set")
	}
	return nil
}

func (c *Config) validateWorkers() error {
	if err := ensurePositiveMap(map[string]int{
		"scan.concurrency": c.Scan.Concurrency,
		"link.workers":     c.Link.Workers,
	}); err != nil {
		return err
	}
	if c.Scan.Concurrency > maxConfiguredConcurrency {
		return fmt.Errorf("scan.concurrency must be <= %d", maxConfiguredConcurrency)
	}
	if c.Link.Workers > maxConfiguredConcurrency {
		return fmt.Errorf("link.workers must be <= %d", maxConfiguredConcurrency)
	}
	return nil
}

func (c *Config) validateFileTypes() error {
	seen := make(map[string]int, len(c.FileTypes))
	for i, ft := range c.FileTypes {
		if ft.Name == "" {
			return fmt.Errorf("file_types[%d].name must be set", i)
		}
		if ft.Extension == "" {
			return fmt.Errorf("file_types[%d].extension must be set", i)
		}
		if strings.ContainsAny(ft.Extension, "./\\") {
			return fmt.Errorf("file_types[%d].extension %q must not contain dots or path separators", i, ft.Extension)
		}
		key := strings.ToLower(ft.Extension)
		if prev, exists := seen[key]; exists {
			return fmt.Errorf("file_types[%d].extension %q duplicates file_types[%d]", i, ft.Extension, prev)
		}
		seen[key] = i
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
