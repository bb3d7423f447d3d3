package db

import (
	"context"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tordrt/schemaplan/internal/dialect"
)

// SQLiteClient manages the connection to SQLite
type SQLiteClient struct {
	*sqlConn
}

// NewSQLiteClient creates a new SQLite client
func NewSQLiteClient(ctx context.Context, dsn string) (*SQLiteClient, error) {
	c, err := openSQL(ctx, dialect.SQLite, "sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// PRAGMAs are per connection.
	c.db.SetMaxOpenConns(1)
	return &SQLiteClient{sqlConn: c}, nil
}
