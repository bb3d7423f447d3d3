// Package db connects to the supported databases and reads their structure
// into a schema.Schema.
package db

import (
	"context"
	"fmt"

	"github.com/tordrt/schemaplan/internal/dialect"
)

// Rows is a cursor over query results. A pointer to a pointer passed to Scan
// receives nil for NULL.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// Queryer runs statements. Describers only ever need a Queryer.
type Queryer interface {
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	Exec(ctx context.Context, query string, args ...any) error
}

// Tx is an open transaction.
type Tx interface {
	Queryer
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Conn is a connection to one database. Calls on a Conn must not overlap.
type Conn interface {
	Queryer
	Begin(ctx context.Context) (Tx, error)
	Dialect() dialect.Dialect
	Close(ctx context.Context) error
}

// Connect opens a connection for a database URL. The dialect comes from the URL scheme.
func Connect(ctx context.Context, rawURL string) (Conn, error) {
	target, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	return Open(ctx, target)
}

// Open connects to a parsed target.
func Open(ctx context.Context, target Target) (Conn, error) {
	switch target.Dialect {
	case dialect.Postgres:
		return NewPostgresClient(ctx, target.DSN)
	case dialect.CockroachDB:
		return NewCockroachClient(ctx, target.DSN)
	case dialect.MySQL, dialect.MariaDB:
		return NewMySQLClient(ctx, target.Dialect, target.DSN)
	case dialect.SQLServer:
		return NewSQLServerClient(ctx, target.DSN)
	case dialect.SQLite:
		return NewSQLiteClient(ctx, target.DSN)
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", target.Dialect)
	}
}
