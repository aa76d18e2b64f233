package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"autolink/internal/config"
	"autolink/internal/filetype"
	"autolink/internal/library"
	"autolink/internal/logging"
	"autolink/internal/roots"
)

type commandContext struct {
	configFlag  *string
	libraryFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, libraryFlag *string) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		libraryFlag: libraryFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.libraryFlag != nil && strings.TrimSpace(*c.libraryFlag) != "" {
			expanded, err := config.ExpandPath(strings.TrimSpace(*c.libraryFlag))
			if err != nil {
				c.configErr = fmt.Errorf("resolve library path: %w", err)
				return
			}
			cfg.Paths.LibraryDB = expanded
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) withStore(fn func(*config.Config, *library.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := library.Open(cfg.Paths.LibraryDB)
	if err != nil {
		return fmt.Errorf("open library: %w", err)
	}
	defer store.Close()
	return fn(cfg, store)
}

// withWriter runs fn holding the library's writer lock.
func (c *commandContext) withWriter(fn func(*config.Config, *library.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	lock, err := library.Lock(cfg.Paths.LibraryDB)
	if err != nil {
		return err
	}
	defer lock.Unlock()
	return c.withStore(fn)
}

func (c *commandContext) fileTypes() (*filetype.Registry, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return filetype.FromConfig(cfg)
}

// resolveRoots returns override when given, otherwise the library's file
// directories followed by the configured roots.
func resolveRoots(ctx context.Context, cfg *config.Config, store *library.Store, override []string) ([]string, error) {
	if len(override) > 0 {
		return roots.Override(override)
	}
	libraryDirs, err := store.FileDirectories(ctx)
	if err != nil {
		return nil, err
	}
	return roots.Resolve(cfg.Roots, libraryDirs, cfg.Paths.LibraryDB)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
