package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tordrt/schemaplan/internal/dialect"
)

type sqlQueryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type sqlStatements struct {
	q sqlQueryer
}

func (s sqlStatements) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s sqlStatements) Exec(ctx context.Context, query string, args ...any) error {
	_, err := s.q.ExecContext(ctx, query, args...)
	return err
}

type sqlTx struct {
	sqlStatements
	tx *sql.Tx
}

func (t *sqlTx) Commit(context.Context) error   { return t.tx.Commit() }
func (t *sqlTx) Rollback(context.Context) error { return t.tx.Rollback() }

// sqlConn adapts a database/sql handle to Conn.
type sqlConn struct {
	sqlStatements
	db      *sql.DB
	dialect dialect.Dialect
}

// openSQL opens and pings a database/sql handle.
func openSQL(ctx context.Context, d dialect.Dialect, driverName, dsn string) (*sqlConn, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, &ConnectionError{Dialect: d, Err: fmt.Errorf("failed to open database: %w", err)}
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &ConnectionError{Dialect: d, Err: fmt.Errorf("failed to ping database: %w", err)}
	}

	return &sqlConn{sqlStatements: sqlStatements{q: db}, db: db, dialect: d}, nil
}

func (c *sqlConn) Dialect() dialect.Dialect { return c.dialect }

func (c *sqlConn) Begin(ctx context.Context) (Tx, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &sqlTx{sqlStatements: sqlStatements{q: tx}, tx: tx}, nil
}

// Close closes the database connection
func (c *sqlConn) Close(context.Context) error {
	return c.db.Close()
}

// GetDB returns the underlying database connection
func (c *sqlConn) GetDB() *sql.DB {
	return c.db
}
