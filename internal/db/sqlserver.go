package db

import (
	"context"

	_ "github.com/microsoft/go-mssqldb"

	"github.com/tordrt/schemaplan/internal/dialect"
)

// SQLServerClient manages the connection to Microsoft SQL Server
type SQLServerClient struct {
	*sqlConn
}

// NewSQLServerClient creates a new SQL Server client
func NewSQLServerClient(ctx context.Context, dsn string) (*SQLServerClient, error) {
	c, err := openSQL(ctx, dialect.SQLServer, "sqlserver", dsn)
	if err != nil {
		return nil, err
	}
	c.db.SetMaxOpenConns(1)
	return &SQLServerClient{sqlConn: c}, nil
}
