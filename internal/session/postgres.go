package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const initSessionsSQL = `
	CREATE TABLE IF NOT EXISTS sessions (
		key        TEXT PRIMARY KEY,
		token      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// PostgresStore keeps tokens in a sessions table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects, pings and makes sure the sessions table exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("could not connect to the database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping the db: %w", err)
	}
	if _, err := pool.Exec(ctx, initSessionsSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to execute init sql: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// PostgresDSN builds a connection string from its parts.
func PostgresDSN(user, password, address, name string) string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable", user, password, address, name)
}

func (p *PostgresStore) Get(ctx context.Context, key string) (string, error) {
	var tok string
	err := p.pool.QueryRow(ctx, `SELECT token FROM sessions WHERE key = $1`, key).Scan(&tok)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}

	return tok, err
}

func (p *PostgresStore) Put(ctx context.Context, key, token string) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO sessions (key, token)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET token = EXCLUDED.token, updated_at = now()
	`, key, token)

	return err
}

func (p *PostgresStore) Delete(ctx context.Context, key string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM sessions WHERE key = $1`, key)

	return err
}

// Close releases the pool.
func (p *PostgresStore) Close() {
	p.pool.Close()
}
