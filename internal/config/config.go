// Package config loads goalnet.toml.
//
// A missing file at the default location yields Defaults(); command line
// flags are applied on top by the caller.
//
//	[layout]
//	base_spacing = 400
//	algorithm = "greedy"
//
//	[store]
//	backend = "sqlite"
//	path = "/var/lib/goalnet/goals.db"
//
//	[cache]
//	backend = "redis"
//	url = "redis://localhost:6379/0"
//
//	[server]
//	addr = ":8080"
//	rate_limit = 20
//
//	[log]
//	level = "debug"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/goalnet/pkg/errors"
	"github.com/matzehuels/goalnet/pkg/layout"
	"github.com/matzehuels/goalnet/pkg/store"
)

const (
	appName  = "goalnet"
	fileName = "goalnet.toml"
)

// Cache backend names.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config is the contents of goalnet.toml.
type Config struct {
	Layout layout.Options `toml:"layout"`
	Store  store.Config   `toml:"store"`
	Cache  CacheConfig    `toml:"cache"`
	Server ServerConfig   `toml:"server"`
	Log    LogConfig      `toml:"log"`
}

// CacheConfig selects the layout cache.
type CacheConfig struct {
	// Backend is none, file or redis.
	Backend string `toml:"backend"`

	// Dir is the file cache directory. Empty means the XDG cache dir.
	Dir string `toml:"dir"`

	// URL addresses the redis server.
	URL string `toml:"url"`

	// Prefix namespaces redis keys.
	Prefix string `toml:"prefix"`
}

// ServerConfig configures goalnet serve.
type ServerConfig struct {
	Addr string `toml:"addr"`

	// DefaultUser serves requests that carry no X-User-ID header.
	// Zero rejects such requests.
	DefaultUser int64 `toml:"default_user"`

	// RateLimit is the sustained position updates per second per client.
	// Zero disables limiting.
	RateLimit float64 `toml:"rate_limit"`
	Burst     int     `toml:"burst"`

	RequestTimeout time.Duration `toml:"request_timeout"`
}

// LogConfig configures the logger.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `toml:"level"`
}

// Defaults returns the configuration used when no file exists.
func Defaults() Config {
	return Config{
		Layout: layout.Options{}.WithDefaults(),
		Store: store.Config{
			Backend: store.BackendFile,
		},
		Cache: CacheConfig{
			Backend: CacheFile,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			RateLimit:      20,
			Burst:          40,
			RequestTimeout: 30 * time.Second,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Dir returns the goalnet config directory, honouring XDG_CONFIG_HOME.
func Dir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// DefaultPath returns the location of goalnet.toml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load reads the config file at path over Defaults. An empty path means
// DefaultPath, which may be missing; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Defaults()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidOption, err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	if err := c.Layout.WithDefaults().Validate(); err != nil {
		return err
	}
	switch strings.ToLower(c.Cache.Backend) {
	case "", CacheNone, CacheFile, CacheRedis:
	default:
		return errors.New(errors.ErrCodeInvalidOption, "unknown cache backend %q (must be one of: none, file, redis)", c.Cache.Backend)
	}
	if c.Server.RateLimit < 0 || c.Server.Burst < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "rate_limit and burst must not be negative")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil && c.Log.Level != "" {
		return errors.New(errors.ErrCodeInvalidOption, "unknown log level %q", c.Log.Level)
	}
	return nil
}
