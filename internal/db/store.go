package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

// SQLite is the default backend: a single kv table in contextclips.db.
// Transactions start with BEGIN IMMEDIATE, so an Update holds the write lock
// from its first read and serializes against other processes on the file.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(ctx context.Context, dataDir string) (*SQLite, error) {
	if dataDir == "" {
		return nil, errors.New("sqlite: data directory can not be empty")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "contextclips.db")
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, err
	}

	if err := migrate(ctx, goose.DialectSQLite3, db, "sqlite"); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.get(ctx, s.db, key)
	if err != nil {
		return nil, fmt.Errorf("sqlite get %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLite) get(ctx context.Context, runner sq.BaseRunner, key string) ([]byte, error) {
	var value []byte
	err := sq.Select("value").
		From("kv").
		Where(sq.Eq{"key": key}).
		RunWith(runner).
		QueryRowContext(ctx).
		Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return value, err
}

func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	if _, err := upsert(key, value).RunWith(s.db).ExecContext(ctx); err != nil {
		return fmt.Errorf("sqlite set %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Update(ctx context.Context, key string, fn UpdateFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin %s: %w", key, err)
	}
	defer tx.Rollback()

	current, err := s.get(ctx, tx, key)
	if err != nil {
		return fmt.Errorf("sqlite get %s: %w", key, err)
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	if next == nil {
		return nil
	}
	if _, err := upsert(key, next).RunWith(tx).ExecContext(ctx); err != nil {
		return fmt.Errorf("sqlite set %s: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite commit %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Revision(ctx context.Context, key string) (int64, error) {
	var rev int64
	err := sq.Select("revision").
		From("kv").
		Where(sq.Eq{"key": key}).
		RunWith(s.db).
		QueryRowContext(ctx).
		Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("sqlite revision %s: %w", key, err)
	}
	return rev, nil
}

func upsert(key string, value []byte) sq.InsertBuilder {
	return sq.Insert("kv").
		Columns("key", "value", "updated_at", "revision").
		Values(key, value, time.Now().UTC(), 1).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at, revision = kv.revision + 1")
}

func (s *SQLite) DB() *sql.DB {
	return s.db
}
