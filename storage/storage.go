// Package storage keeps save games by name. Backends are a directory of
// files, Redis, or a SQLite database.
package storage

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when no save exists under a name.
	ErrNotFound = errors.New("save not found")
	// ErrInvalidName is returned for names that are empty or could
	// escape the store's namespace.
	ErrInvalidName = errors.New("invalid save name")
	// ErrUnknownBackend is returned by Open for an unrecognised backend.
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// Store persists opaque save data by name.
type Store interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
	// List returns every saved name in ascending order.
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
	Close() error
}

// Backend names.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Options select and configure a backend.
type Options struct {
	Backend     string
	Dir         string
	RedisAddr   string
	RedisPrefix string
	SQLitePath  string
}

// Open returns the store described by opts.
func Open(ctx context.Context, opts Options, log *slog.Logger) (Store, error) {
	switch opts.Backend {
	case BackendFile, "":
		return NewFileStore(opts.Dir, log)
	case BackendRedis:
		return NewRedisStore(ctx, opts.RedisAddr, opts.RedisPrefix, log)
	case BackendSQLite:
		return NewSQLiteStore(ctx, opts.SQLitePath, log)
	}
	return nil, errors.Wrapf(ErrUnknownBackend, "%q", opts.Backend)
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,63}$`)

// CheckName rejects names that are not a short run of letters, digits,
// dots, dashes and underscores.
func CheckName(name string) error {
	if !namePattern.MatchString(name) {
		return errors.Wrapf(ErrInvalidName, "%q", name)
	}
	return nil
}
