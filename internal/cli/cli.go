// Package cli implements the mizgra command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mmlkg/mizgra/pkg/buildinfo"
	"github.com/mmlkg/mizgra/pkg/cache"
	"github.com/mmlkg/mizgra/pkg/config"
	"github.com/mmlkg/mizgra/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "mizgra"

	// configFile is looked up in the config directory when --config is not set.
	configFile = "config.toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Stdout receives the serialized graph when no output file is given.
	// Stderr receives the run summary.
	Stdout io.Writer
	Stderr io.Writer
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the mizgra command. The root command runs the
// conversion; cache and completion are subcommands.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := c.convertCommand()
	root.Version = buildinfo.Version
	root.SilenceUsage = true
	root.SilenceErrors = true
	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(LogDebug)
		}
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		return nil
	}

	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner whose cache follows cfg. Redis wins
// over a cache directory; with neither set, caching is off.
func (c *CLI) newRunner(ctx context.Context, cfg config.Cache) *pipeline.Runner {
	logger := loggerFromContext(ctx)
	store := newCache(ctx, cfg, logger)
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), cfg.Prefix)
	runner := pipeline.NewRunner(store, keyer, logger)
	runner.TTL = cfg.TTL.Duration
	return runner
}

// newCache opens the configured cache. A cache that cannot be opened is
// reported and replaced by a NullCache; it never fails the run.
func newCache(ctx context.Context, cfg config.Cache, logger *log.Logger) cache.Cache {
	switch {
	case cfg.Redis != "":
		rc, err := cache.NewRedisCache(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("redis cache unavailable, caching disabled", "err", err)
			return cache.NewNullCache()
		}
		logger.Debug("using redis cache", "prefix", cfg.Prefix)
		return rc
	case cfg.Dir != "":
		fc, err := cache.NewFileCache(cfg.Dir)
		if err != nil {
			logger.Warn("cache directory unavailable, caching disabled", "dir", cfg.Dir, "err", err)
			return cache.NewNullCache()
		}
		logger.Debug("using file cache", "dir", fc.Dir())
		return fc
	default:
		return cache.NewNullCache()
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/mizgra/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configPath returns the default config file (~/.config/mizgra/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, configFile), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, configFile), nil
}
