package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tordrt/schemaplan/internal/dialect"
)

// pgxSession is what *pgx.Conn and *pgxpool.Pool have in common.
type pgxSession interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

type pgxRows struct {
	pgx.Rows
}

func (r pgxRows) Close() error {
	r.Rows.Close()
	return nil
}

type pgxQueryer struct {
	dialect dialect.Dialect
	q       interface {
		Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
		Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	}
}

func (p pgxQueryer) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := p.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgxRows{rows}, nil
}

func (p pgxQueryer) Exec(ctx context.Context, query string, args ...any) error {
	_, err := p.q.Exec(ctx, query, args...)
	return err
}

type pgxTx struct {
	pgxQueryer
	tx pgx.Tx
}

func (t *pgxTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *pgxTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

type pgxConn struct {
	pgxQueryer
	session pgxSession
}

func newPgxConn(d dialect.Dialect, s pgxSession) pgxConn {
	return pgxConn{pgxQueryer: pgxQueryer{dialect: d, q: s}, session: s}
}

func (c pgxConn) Dialect() dialect.Dialect { return c.dialect }

func (c pgxConn) Begin(ctx context.Context) (Tx, error) {
	tx, err := c.session.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &pgxTx{pgxQueryer: pgxQueryer{dialect: c.dialect, q: tx}, tx: tx}, nil
}

// PostgresClient manages the connection to PostgreSQL
type PostgresClient struct {
	pgxConn
	conn *pgx.Conn
}

// NewPostgresClient creates a new PostgreSQL client
func NewPostgresClient(ctx context.Context, connString string) (*PostgresClient, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, &ConnectionError{Dialect: dialect.Postgres, Err: fmt.Errorf("failed to connect to database: %w", err)}
	}

	// Test the connection
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, &ConnectionError{Dialect: dialect.Postgres, Err: fmt.Errorf("failed to ping database: %w", err)}
	}

	return &PostgresClient{pgxConn: newPgxConn(dialect.Postgres, conn), conn: conn}, nil
}

// Close closes the database connection
func (c *PostgresClient) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}
