// Package db holds the persistence backends behind the clip store. Every
// backend is a small key/value store whose Get and Set calls are atomic.
package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

// Backend kinds accepted by Open.
const (
	KindSQLite   = "sqlite"
	KindFile     = "file"
	KindMemory   = "memory"
	KindPostgres = "postgres"
)

// ErrUnknownBackend is returned by Open for an unsupported kind.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Backend is the persistence boundary. Get returns nil, nil for a missing key.
//
// Update is an atomic read-modify-write of one key that holds across every
// process sharing the backend: fn receives the current value (nil when
// missing) and returns the new one. A nil result writes nothing; an error
// from fn aborts the update and is returned unchanged.
//
// Revision returns a marker that changes whenever key is written, by any
// process. It is 0 when the key is missing.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Revision(ctx context.Context, key string) (int64, error)
	Close() error
}

// UpdateFunc maps the current value of a key to its new value.
type UpdateFunc func(current []byte) ([]byte, error)

// Options selects and configures a backend.
type Options struct {
	Kind        string
	DataDir     string
	PostgresDSN string
}

// Open returns the backend described by opts.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Kind {
	case KindSQLite, "":
		return NewSQLite(ctx, opts.DataDir)
	case KindFile:
		return NewFile(opts.DataDir)
	case KindMemory:
		return NewMemory(), nil
	case KindPostgres:
		return NewPostgres(ctx, opts.PostgresDSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Kind)
	}
}

//go:embed migrations
var migrations embed.FS

// migrate applies the embedded goose migrations for dialect from dir.
func migrate(ctx context.Context, dialect goose.Dialect, db *sql.DB, dir string) error {
	fsys, err := fs.Sub(migrations, "migrations/"+dir)
	if err != nil {
		return fmt.Errorf("migrations %s: %w", dir, err)
	}

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return fmt.Errorf("goose new provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	for _, r := range results {
		slog.Debug("migration applied", "dialect", dialect, "source", r.Source.Path, "duration", r.Duration)
	}
	return nil
}
