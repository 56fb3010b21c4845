package objectstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/countdown/internal/common"
	"github.com/dmitrijs2005/countdown/internal/dbx"
	"github.com/dmitrijs2005/countdown/internal/server/migrations"
)

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// PostgresStore keeps blobs in the objects table. Versions are row
// counters; a PreviousVersion is checked under SELECT ... FOR UPDATE and
// IfAbsent by the primary key, so both are enforced.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens dsn with the pgx driver and applies migrations.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	s := newPostgresStore(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	return s, nil
}

func newPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate runs the embedded goose migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, s.db, ".")
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Fetch(ctx context.Context, key string) (*Object, error) {
	query := `SELECT data, version FROM objects WHERE key = $1`

	var (
		data    []byte
		version int64
	)
	err := s.db.QueryRowContext(ctx, query, key).Scan(&data, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("object %s: %w", key, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: select %s: %w", common.ErrStoreUnavailable, key, err)
	}

	return &Object{Key: key, Data: data, Version: strconv.FormatInt(version, 10)}, nil
}

func (s *PostgresStore) Write(ctx context.Context, key string, data []byte, opts WriteOptions) (*WriteResult, error) {
	var next int64

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var current int64
		err := tx.QueryRowContext(ctx, `SELECT version FROM objects WHERE key = $1 FOR UPDATE`, key).Scan(&current)
		exists := true
		if errors.Is(err, sql.ErrNoRows) {
			exists = false
		} else if err != nil {
			return fmt.Errorf("%w: lock %s: %w", common.ErrStoreUnavailable, key, err)
		}

		if opts.PreviousVersion != "" {
			if !exists || strconv.FormatInt(current, 10) != opts.PreviousVersion {
				return fmt.Errorf("object %s: %w", key, common.ErrVersionConflict)
			}
		}

		next = current + 1

		// FOR UPDATE locks nothing when the row is missing, so a create-only
		// write relies on the primary key instead.
		if opts.IfAbsent {
			res, err := tx.ExecContext(ctx, `
				INSERT INTO objects (key, data, content_type, public_read, version, updated_at)
				VALUES ($1, $2, $3, $4, $5, now())
				ON CONFLICT (key) DO NOTHING
			`, key, data, opts.ContentType, opts.PublicRead, next)
			if err != nil {
				return fmt.Errorf("%w: insert %s: %w", common.ErrStoreUnavailable, key, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("%w: insert %s: %w", common.ErrStoreUnavailable, key, err)
			}
			if n == 0 {
				return fmt.Errorf("object %s exists: %w", key, common.ErrVersionConflict)
			}
			return nil
		}

		query := `
			INSERT INTO objects (key, data, content_type, public_read, version, updated_at)
			VALUES ($1, $2, $3, $4, $5, now())
			ON CONFLICT (key)
			DO UPDATE SET
				data = EXCLUDED.data,
				content_type = EXCLUDED.content_type,
				public_read = EXCLUDED.public_read,
				version = EXCLUDED.version,
				updated_at = EXCLUDED.updated_at
		`
		if _, err := tx.ExecContext(ctx, query, key, data, opts.ContentType, opts.PublicRead, next); err != nil {
			return fmt.Errorf("%w: upsert %s: %w", common.ErrStoreUnavailable, key, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrVersionConflict) || errors.Is(err, common.ErrStoreUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: write %s: %w", common.ErrStoreUnavailable, key, err)
	}

	return &WriteResult{
		Location: "postgres://objects/" + key,
		Version:  strconv.FormatInt(next, 10),
	}, nil
}

func (s *PostgresStore) List(ctx context.Context, prefix string) ([]string, error) {
	query := `SELECT key FROM objects WHERE starts_with(key, $1) ORDER BY key`
	rows, err := s.db.QueryContext(ctx, query, prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", common.ErrStoreUnavailable, prefix, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("%w: scan: %w", common.ErrStoreUnavailable, err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", common.ErrStoreUnavailable, prefix, err)
	}
	return keys, nil
}
