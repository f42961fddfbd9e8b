package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/hunter/pkg/database"
)

const (
	createCacheTable = `
CREATE TABLE IF NOT EXISTS cache_entries (
    key        TEXT PRIMARY KEY,
    payload    BYTEA NOT NULL,
    expires_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
	createCacheIndex = `CREATE INDEX IF NOT EXISTS idx_cache_entries_expires_at ON cache_entries (expires_at)`
)

// PostgresBackend stores entries in the cache_entries table
type PostgresBackend struct {
	db *database.DB
}

// NewPostgresBackend creates the backend and makes sure the table exists
func NewPostgresBackend(ctx context.Context, db *database.DB) (*PostgresBackend, error) {
	if err := db.EnsureSchema(ctx, createCacheTable, createCacheIndex); err != nil {
		return nil, fmt.Errorf("create cache_entries: %w", err)
	}
	return &PostgresBackend{db: db}, nil
}

// Load returns the entry for key
func (p *PostgresBackend) Load(ctx context.Context, key string) (Entry, bool, error) {
	query := `SELECT payload, expires_at FROM cache_entries WHERE key = $1`

	e := Entry{Key: key}
	err := p.db.Pool.QueryRow(ctx, query, key).Scan(&e.Payload, &e.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("load cache entry %s: %w", key, err)
	}
	return e, true, nil
}

// Save upserts the entry
func (p *PostgresBackend) Save(ctx context.Context, entry Entry, _ time.Duration) error {
	query := `
		INSERT INTO cache_entries (key, payload, expires_at, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (key) DO UPDATE SET
			payload = EXCLUDED.payload,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()
	`

	if _, err := p.db.Pool.Exec(ctx, query, entry.Key, entry.Payload, entry.ExpiresAt); err != nil {
		return fmt.Errorf("save cache entry %s: %w", entry.Key, err)
	}
	return nil
}

// Prune deletes entries that expired before the given instant
func (p *PostgresBackend) Prune(ctx context.Context, before time.Time) (int, error) {
	tag, err := p.db.Pool.Exec(ctx, `DELETE FROM cache_entries WHERE expires_at <= $1`, before)
	if err != nil {
		return 0, fmt.Errorf("prune cache entries: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
