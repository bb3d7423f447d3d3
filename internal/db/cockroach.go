package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tordrt/schemaplan/internal/dialect"
)

// CockroachClient manages a connection pool to CockroachDB. A single
// connection is enough for a migration, so the pool is capped at one.
type CockroachClient struct {
	pgxConn
	pool *pgxpool.Pool
}

// NewCockroachClient creates a new CockroachDB client
func NewCockroachClient(ctx context.Context, connString string) (*CockroachClient, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, &ConnectionError{Dialect: dialect.CockroachDB, Err: fmt.Errorf("failed to parse connection string: %w", err)}
	}
	cfg.MaxConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, &ConnectionError{Dialect: dialect.CockroachDB, Err: fmt.Errorf("failed to connect to database: %w", err)}
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &ConnectionError{Dialect: dialect.CockroachDB, Err: fmt.Errorf("failed to ping database: %w", err)}
	}

	return &CockroachClient{pgxConn: newPgxConn(dialect.CockroachDB, pool), pool: pool}, nil
}

// Close closes the pool
func (c *CockroachClient) Close(context.Context) error {
	c.pool.Close()
	return nil
}
