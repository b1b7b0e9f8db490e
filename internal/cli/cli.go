package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/goalnet/internal/config"
	"github.com/matzehuels/goalnet/pkg/cache"
	"github.com/matzehuels/goalnet/pkg/pipeline"
	"github.com/matzehuels/goalnet/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "goalnet"

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

	// Config is loaded before any command runs.
	Config config.Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Defaults(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The store is only
// opened when withStore is set, so file-only commands never touch it.
func (c *CLI) newRunner(ctx context.Context, noCache, withStore bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var st store.Store
	if withStore {
		st, err = c.openStore(ctx)
		if err != nil {
			cc.Close()
			return nil, err
		}
	}
	return pipeline.NewRunner(cc, nil, st, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch strings.ToLower(c.Config.Cache.Backend) {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, c.Config.Cache.URL, c.Config.Cache.Prefix)
		if err != nil {
			return nil, fmt.Errorf("open layout cache: %w", err)
		}
		return rc, nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	c.Logger.Debug("opening store", "backend", c.Config.Store.Backend)
	return store.Open(ctx, c.Config.Store)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory or the XDG default.
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/goalnet/).
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

// defaultOutput derives "<input>.<suffix>" next to the input file.
func defaultOutput(input, suffix string) string {
	return trimExt(input) + "." + suffix
}

func trimExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutDefaults seeds pipeline options from the [layout] config section.
func (c *CLI) layoutDefaults() pipeline.Options {
	l := c.Config.Layout.WithDefaults()
	return pipeline.Options{
		BaseSpacing:     l.BaseSpacing,
		Algorithm:       string(l.Algorithm),
		Iterations:      l.Iterations,
		Damping:         l.Damping,
		SaveConcurrency: l.SaveConcurrency,
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
