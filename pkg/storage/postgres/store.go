package postgres

import (
	"context"
	"fmt"

	"github.com/chris/safe-signature-processor/pkg/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of pgxpool.Pool used by the Store.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store implements the Storage interface on top of Postgres.
type Store struct {
	DB DB
}

// New creates a new Store.
func New(db DB) *Store {
	return &Store{DB: db}
}

// Make sure we conform to the interfaces
var (
	_ storage.Storage = (*Store)(nil)
	_ DB              = (*pgxpool.Pool)(nil)
)

// Connect opens a connection pool and verifies it with a ping.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return pool, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS signature_requests (
		safe_address TEXT NOT NULL,
		message_hash TEXT NOT NULL,
		chain_id BIGINT NOT NULL,
		message JSONB,
		purpose TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ,
		PRIMARY KEY (safe_address, message_hash)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_signature_requests_status_created ON signature_requests(status, created_at)`,
	`CREATE TABLE IF NOT EXISTS users (
		address TEXT NOT NULL,
		chain_id BIGINT NOT NULL,
		display_name TEXT,
		avatar TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (address, chain_id)
	)`,
}

// EnsureSchema creates the tables the Store relies on if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, q := range schema {
		if _, err := s.DB.Exec(ctx, q); err != nil {
			return fmt.Errorf("failed to initialize postgres schema: %w", err)
		}
	}
	return nil
}
