// Package config loads the TOML configuration file.
//
// Example:
//
//	[logging]
//	logfile = "/var/log/heightmap.log"
//	max_log_size = 100
//	max_log_age = 30
//	level = "debug"
//
//	[source]
//	timeout_seconds = 30
//	max_bytes = 67108864
//	cache = true
//
//	[render]
//	smooth = 1.5
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ironsheep/canvas-heightmap/internal/logging"
)

const (
	// DefaultTimeout bounds a single URL fetch.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBytes caps the size of a fetched or read source.
	DefaultMaxBytes = 64 << 20
)

// Config is the parsed configuration file.
type Config struct {
	Logging logging.Config
	Source  SourceConfig
	Render  RenderConfig
}

// SourceConfig controls how sources are loaded.
type SourceConfig struct {
	TimeoutSeconds int   `toml:"timeout_seconds"`
	MaxBytes       int64 `toml:"max_bytes"`
	Cache          *bool `toml:"cache"`
}

// Timeout returns the fetch timeout, falling back to DefaultTimeout.
func (c SourceConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Limit returns the byte cap, falling back to DefaultMaxBytes.
func (c SourceConfig) Limit() int64 {
	if c.MaxBytes <= 0 {
		return DefaultMaxBytes
	}
	return c.MaxBytes
}

// CacheEnabled reports whether loaded sources are cached. Defaults to true.
func (c SourceConfig) CacheEnabled() bool {
	return c.Cache == nil || *c.Cache
}

// RenderConfig holds defaults applied when drawing a source.
type RenderConfig struct {
	// Smooth is the Gaussian blur radius applied while drawing. 0 disables.
	Smooth float64 `toml:"smooth"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{}
}

// Load reads a TOML file. Relative log file paths are taken relative to
// the directory holding the configuration file.
func Load(path string) (*Config, error) {
	c := Default()
	if _, err := toml.DecodeFile(path, c); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if c.Logging.Logfile != "" && !filepath.IsAbs(c.Logging.Logfile) {
		c.Logging.Logfile = filepath.Join(filepath.Dir(path), c.Logging.Logfile)
	}
	if c.Render.Smooth < 0 {
		return nil, fmt.Errorf("invalid config %s: render.smooth must be >= 0", path)
	}
	return c, nil
}
