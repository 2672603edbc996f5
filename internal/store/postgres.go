package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultPoolSize = 10

// PostgresStore implements SessionStore using pgxpool (connection-pooled
// PostgreSQL).
//
// TODO(test): PostgresStore methods require live Postgres, tested via integration tests.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
// poolSize <= 0 uses the default.
func NewPostgresStore(ctx context.Context, connString string, poolSize int) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = defaultPoolSize
	if poolSize > 0 {
		cfg.MaxConns = int32(poolSize) //nolint:gosec // pool size comes from validated config
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// Load implements SessionStore.
func (s *PostgresStore) Load(ctx context.Context, id string) (map[string]string, error) {
	var raw []byte
	if err := s.pool.QueryRow(ctx, queryLoadSession, id).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}

	values := map[string]string{}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("decoding session data: %w", err)
	}
	return values, nil
}

// Save implements SessionStore with a single upsert.
func (s *PostgresStore) Save(
	ctx context.Context,
	id string,
	values map[string]string,
	ttl time.Duration,
) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encoding session data: %w", err)
	}

	args := pgx.NamedArgs{
		"id":         id,
		"data":       data,
		"expires_at": time.Now().Add(ttl),
	}

	if _, err := s.pool.Exec(ctx, queryUpsertSession, args); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Delete implements SessionStore.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, queryDeleteSession, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// PurgeExpired implements SessionStore.
func (s *PostgresStore) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, queryPurgeExpiredSessions)
	if err != nil {
		return 0, fmt.Errorf("purging expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
