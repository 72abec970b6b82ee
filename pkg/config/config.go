// Package config loads brewdeps settings from a TOML file and the
// environment.
//
// Lookup order for the file: an explicit path, then
// $XDG_CONFIG_HOME/brewdeps/config.toml, then ~/.config/brewdeps/config.toml.
// A missing file is not an error; defaults apply. BREWDEPS_* environment
// variables override file values, and command-line flags override both.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	brewerrors "github.com/matzehuels/brewdeps/pkg/errors"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Renderers for image export.
const (
	RendererBuiltin = "builtin"
	RendererDot     = "dot"
)

// ImageNone as export.image_format writes DOT files without rendering them.
const ImageNone = "none"

// Config is the full configuration.
type Config struct {
	Brew   BrewConfig   `toml:"brew"`
	Cache  CacheConfig  `toml:"cache"`
	Tree   TreeConfig   `toml:"tree"`
	Export ExportConfig `toml:"export"`
	Serve  ServeConfig  `toml:"serve"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

type BrewConfig struct {
	Path string `toml:"path"`
}

type CacheConfig struct {
	Backend   string   `toml:"backend"`
	TTL       Duration `toml:"ttl"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
}

type TreeConfig struct {
	Depth int `toml:"depth"`
}

type ExportConfig struct {
	Renderer    string `toml:"renderer"`
	ImageFormat string `toml:"image_format"`
}

type ServeConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a string ("1h", "30m") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Brew: BrewConfig{Path: "brew"},
		Cache: CacheConfig{
			Backend:   BackendFile,
			TTL:       Duration{time.Hour},
			RedisAddr: "localhost:6379",
		},
		Tree:   TreeConfig{Depth: 3},
		Export: ExportConfig{Renderer: RendererBuiltin},
		Serve:  ServeConfig{Addr: "127.0.0.1:8080"},
	}
}

// DefaultPath returns the config file location under the user config dir.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "brewdeps", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "brewdeps", "config.toml"), nil
}

// Load reads the config at path, or at DefaultPath when path is empty, then
// applies environment overrides and validates the result. An explicit path
// must exist; the default one may be absent.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return cfg, brewerrors.Wrap(brewerrors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
		cfg.Path = path
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return cfg, brewerrors.Wrap(brewerrors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// applyEnv overrides values from BREWDEPS_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("BREWDEPS_BREW_PATH", &c.Brew.Path)
	str("BREWDEPS_CACHE_BACKEND", &c.Cache.Backend)
	str("BREWDEPS_CACHE_DIR", &c.Cache.Dir)
	str("BREWDEPS_REDIS_ADDR", &c.Cache.RedisAddr)
	str("BREWDEPS_RENDERER", &c.Export.Renderer)
	str("BREWDEPS_SERVE_ADDR", &c.Serve.Addr)

	if v, ok := lookup("BREWDEPS_CACHE_TTL"); ok && v != "" {
		if err := c.Cache.TTL.UnmarshalText([]byte(v)); err != nil {
			return brewerrors.Wrap(brewerrors.ErrCodeInvalidConfig, err, "BREWDEPS_CACHE_TTL")
		}
	}
	if v, ok := lookup("BREWDEPS_REDIS_DB"); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return brewerrors.Wrap(brewerrors.ErrCodeInvalidConfig, err, "BREWDEPS_REDIS_DB")
		}
		c.Cache.RedisDB = db
	}
	return nil
}

// Validate checks enumerated values and ranges.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return brewerrors.New(brewerrors.ErrCodeInvalidConfig, "cache.backend must be file, redis or none, got %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return brewerrors.New(brewerrors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	if c.Tree.Depth < -1 {
		return brewerrors.New(brewerrors.ErrCodeInvalidConfig, "tree.depth must be -1 (unbounded) or more, got %d", c.Tree.Depth)
	}
	switch c.Export.Renderer {
	case RendererBuiltin, RendererDot:
	default:
		return brewerrors.New(brewerrors.ErrCodeInvalidConfig, "export.renderer must be builtin or dot, got %q", c.Export.Renderer)
	}
	if f := c.Export.ImageFormat; f != "" && f != ImageNone {
		if err := brewerrors.ValidateImageFormat(c.Export.ImageFormat); err != nil {
			return err
		}
	}
	return nil
}

// CacheDir returns the configured cache directory, or $XDG_CACHE_HOME/brewdeps
// falling back to ~/.cache/brewdeps.
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, "brewdeps"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".cache", "brewdeps"), nil
}
