package db

import (
	"context"

	_ "github.com/go-sql-driver/mysql"

	"github.com/tordrt/schemaplan/internal/dialect"
)

// MySQLClient manages the connection to MySQL or MariaDB
type MySQLClient struct {
	*sqlConn
}

// NewMySQLClient creates a new MySQL client. d is MySQL or MariaDB.
func NewMySQLClient(ctx context.Context, d dialect.Dialect, dsn string) (*MySQLClient, error) {
	c, err := openSQL(ctx, d, "mysql", dsn)
	if err != nil {
		return nil, err
	}
	// Session variables such as foreign_key_checks must stick to one connection.
	c.db.SetMaxOpenConns(1)
	return &MySQLClient{sqlConn: c}, nil
}
