// Package config loads runtime settings from SAGACORE_* environment
// variables.
package config

import (
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"

	"github.com/nathoo/sagacore/engine"
	"github.com/nathoo/sagacore/storage"
)

// Config holds every runtime setting. Command-line flags override it.
type Config struct {
	Adventure    string     `env:"SAGACORE_ADVENTURE"`
	SaveBackend  string     `env:"SAGACORE_SAVE_BACKEND" envDefault:"file"`
	SaveDir      string     `env:"SAGACORE_SAVE_DIR" envDefault:"saves"`
	RedisAddr    string     `env:"SAGACORE_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPrefix  string     `env:"SAGACORE_REDIS_PREFIX" envDefault:"sagacore:save:"`
	SQLitePath   string     `env:"SAGACORE_SQLITE_PATH" envDefault:"sagacore.db"`
	LogLevel     slog.Level `env:"SAGACORE_LOG_LEVEL" envDefault:"info"`
	LogFormat    string     `env:"SAGACORE_LOG_FORMAT" envDefault:"text"`
	LogFile      string     `env:"SAGACORE_LOG_FILE"`
	Dispatch     string     `env:"SAGACORE_DISPATCH" envDefault:"broadcast"`
	Seed         int64      `env:"SAGACORE_SEED"`
	EventHistory bool       `env:"SAGACORE_EVENT_HISTORY" envDefault:"true"`
	DemoFallback bool       `env:"SAGACORE_DEMO_FALLBACK"`
	WrapWidth    int        `env:"SAGACORE_WRAP_WIDTH" envDefault:"80"`
	PlayerName   string     `env:"SAGACORE_PLAYER_NAME"`

	// DisabledSystems switches engine systems off, e.g. "combat,ambient".
	// The engine rejects unknown names and broken dependencies.
	DisabledSystems []string `env:"SAGACORE_DISABLED_SYSTEMS" envSeparator:","`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "parse env")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch c.SaveBackend {
	case storage.BackendFile, storage.BackendRedis, storage.BackendSQLite:
	default:
		return errors.Errorf("SAGACORE_SAVE_BACKEND: unknown backend %q", c.SaveBackend)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return errors.Errorf("SAGACORE_LOG_FORMAT: unknown format %q", c.LogFormat)
	}
	switch engine.Mode(c.Dispatch) {
	case engine.ModeBroadcast, engine.ModeChain:
	default:
		return errors.Errorf("SAGACORE_DISPATCH: unknown mode %q", c.Dispatch)
	}
	if c.WrapWidth < 0 {
		return errors.Errorf("SAGACORE_WRAP_WIDTH: must not be negative, got %d", c.WrapWidth)
	}
	return nil
}

// Storage returns the save store options.
func (c *Config) Storage() storage.Options {
	return storage.Options{
		Backend:     c.SaveBackend,
		Dir:         c.SaveDir,
		RedisAddr:   c.RedisAddr,
		RedisPrefix: c.RedisPrefix,
		SQLitePath:  c.SQLitePath,
	}
}

// Engine returns the engine options. The logger is left for the caller.
func (c *Config) Engine() engine.Options {
	return engine.Options{
		Mode:     engine.Mode(c.Dispatch),
		Seed:     c.Seed,
		History:  c.EventHistory,
		Disabled: c.DisabledSystems,
	}
}
