package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Postgres stores the kv table in a shared PostgreSQL database, so several
// hosts can read one clip history.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects, pings for fail-fast validation and applies migrations.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, errors.New("postgres: dsn can not be empty")
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database DSN: %w", err)
	}
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// goose requires *sql.DB.
	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()
	if err := migrate(ctx, goose.DialectPostgres, sqlDB, "postgres"); err != nil {
		pool.Close()
		return nil, err
	}

	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := psql.Select("value").From("kv").Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var value []byte
	err = p.pool.QueryRow(ctx, query, args...).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres get %s: %w", key, err)
	}
	return value, nil
}

func (p *Postgres) Set(ctx context.Context, key string, value []byte) error {
	query, args, err := pgUpsert(key, value).ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := p.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("postgres set %s: %w", key, err)
	}
	return nil
}

// Update locks the row with SELECT ... FOR UPDATE. A missing row can not be
// locked, so a transaction-scoped advisory lock on the key serializes the
// first insert as well.
func (p *Postgres) Update(ctx context.Context, key string, fn UpdateFunc) error {
	var fnErr error
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", key); err != nil {
			return fmt.Errorf("lock %s: %w", key, err)
		}

		query, args, err := psql.Select("value").From("kv").Where(sq.Eq{"key": key}).Suffix("FOR UPDATE").ToSql()
		if err != nil {
			return fmt.Errorf("build query: %w", err)
		}
		var current []byte
		err = tx.QueryRow(ctx, query, args...).Scan(&current)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("postgres get %s: %w", key, err)
		}

		next, err := fn(current)
		if err != nil {
			fnErr = err
			return err
		}
		if next == nil {
			return nil
		}

		query, args, err = pgUpsert(key, next).ToSql()
		if err != nil {
			return fmt.Errorf("build query: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("postgres set %s: %w", key, err)
		}
		return nil
	})
	if fnErr != nil {
		return fnErr
	}
	return err
}

func (p *Postgres) Revision(ctx context.Context, key string) (int64, error) {
	query, args, err := psql.Select("revision").From("kv").Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var rev int64
	err = p.pool.QueryRow(ctx, query, args...).Scan(&rev)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("postgres revision %s: %w", key, err)
	}
	return rev, nil
}

func pgUpsert(key string, value []byte) sq.InsertBuilder {
	return psql.Insert("kv").
		Columns("key", "value", "updated_at", "revision").
		Values(key, value, time.Now().UTC(), 1).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at, revision = kv.revision + 1")
}
