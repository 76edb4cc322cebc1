package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps values in the client_storage table.
type PostgresStore struct {
	pool      *pgxpool.Pool
	keyPrefix string
}

// NewPostgresStore returns a store over pool. The client_storage table is
// created by persistence.RunMigrations.
func NewPostgresStore(pool *pgxpool.Pool, keyPrefix string) *PostgresStore {
	return &PostgresStore{pool: pool, keyPrefix: keyPrefix}
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	const query = `SELECT value FROM client_storage WHERE key=$1 AND (expires_at IS NULL OR expires_at > NOW())`

	var value string
	if err := s.pool.QueryRow(ctx, query, s.keyPrefix+key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("postgres get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	const query = `
        INSERT INTO client_storage (key, value, updated_at, expires_at)
        VALUES ($1, $2, NOW(), NULL)
        ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW(), expires_at=NULL`

	if _, err := s.pool.Exec(ctx, query, s.keyPrefix+key, value); err != nil {
		return fmt.Errorf("postgres set %s: %w", key, err)
	}
	return nil
}

// SetWithTTL stores value until ttl elapses and purges rows that already
// expired.
func (s *PostgresStore) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	const purge = `DELETE FROM client_storage WHERE expires_at IS NOT NULL AND expires_at <= NOW()`
	const query = `
        INSERT INTO client_storage (key, value, updated_at, expires_at)
        VALUES ($1, $2, NOW(), $3)
        ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW(), expires_at=EXCLUDED.expires_at`

	if _, err := s.pool.Exec(ctx, purge); err != nil {
		return fmt.Errorf("postgres purge expired: %w", err)
	}
	if _, err := s.pool.Exec(ctx, query, s.keyPrefix+key, value, time.Now().Add(ttl)); err != nil {
		return fmt.Errorf("postgres set %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	const query = `DELETE FROM client_storage WHERE key = ANY($1)`

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.keyPrefix + k
	}
	if _, err := s.pool.Exec(ctx, query, full); err != nil {
		return fmt.Errorf("postgres delete: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
