package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"retroforge/internal/config"
	"retroforge/internal/disc"
	"retroforge/internal/disccache"
	"retroforge/internal/grouping"
	"retroforge/internal/logging"
	"retroforge/internal/naming"
	"retroforge/internal/scanner"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(*c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		level := cfg.Logging.Level
		if v := strings.TrimSpace(*c.logLevelFlag); v != "" {
			level = v
		}
		format := cfg.Logging.Format
		if v := strings.TrimSpace(*c.logFormatFlag); v != "" {
			format = v
		}
		logger, err := logging.New(logging.Options{
			Level:  level,
			Format: format,
			Output: os.Stderr,
		})
		if err != nil {
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

// resolveRoot picks the scan root: positional argument first, then the
// configured paths.root.
func (c *commandContext) resolveRoot(args []string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		root, err := config.ExpandPath(args[0])
		if err != nil {
			return "", err
		}
		return root, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	if cfg.Paths.Root != "" {
		return cfg.Paths.Root, nil
	}
	return "", errors.New("no path given and paths.root is not configured")
}

// scanDiscs runs a full scan, bringing up the cache when available. Cache
// failures degrade to uncached scanning rather than aborting.
func (c *commandContext) scanDiscs(ctx context.Context, root string, recursive bool) ([]*disc.Descriptor, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger := c.ensureLogger()

	var cache *disccache.Store
	if cfg.Paths.CachePath != "" {
		cache, err = disccache.Open(ctx, cfg.Paths.CachePath)
		if err != nil {
			logger.Warn("disc cache unavailable", logging.Error(err))
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	s := scanner.New(nil, cache, logger)
	return s.Scan(ctx, root, scanner.Options{Recursive: recursive})
}

func (c *commandContext) scanGroups(ctx context.Context, root string, recursive bool) ([]*grouping.Group, error) {
	descs, err := c.scanDiscs(ctx, root, recursive)
	if err != nil {
		return nil, err
	}
	groups := grouping.BuildGroups(root, descs)
	grouping.SortGroups(groups)
	return groups, nil
}

func (c *commandContext) namingOptions(restoreArticles, keepLanguageTags bool) naming.Options {
	opts := naming.Options{}
	if cfg, err := c.ensureConfig(); err == nil {
		opts.RestoreArticles = cfg.Naming.RestoreArticles
		opts.KeepLanguageTags = cfg.Naming.KeepLanguageTags
	}
	if restoreArticles {
		opts.RestoreArticles = true
	}
	if keepLanguageTags {
		opts.KeepLanguageTags = true
	}
	return opts
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
