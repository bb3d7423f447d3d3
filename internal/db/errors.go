package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	mssql "github.com/microsoft/go-mssqldb"

	"github.com/tordrt/schemaplan/internal/dialect"
)

// ConnectionError is a transport, authentication or cancellation failure.
type ConnectionError struct {
	Dialect dialect.Dialect
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to talk to the %s database: %v", e.Dialect, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// IntrospectionError means a describer could not produce a valid schema.
type IntrospectionError struct {
	Dialect dialect.Dialect
	Err     error
}

func (e *IntrospectionError) Error() string {
	return fmt.Sprintf("failed to describe the %s database: %v", e.Dialect, e.Err)
}

func (e *IntrospectionError) Unwrap() error { return e.Err }

// IllegalCrossSchemaReferenceError is returned when a foreign key points into a
// namespace that is not part of the described set.
type IllegalCrossSchemaReferenceError struct {
	Namespace           string
	Table               string
	ReferencedNamespace string
	ReferencedTable     string
	ForeignKey          string
}

func (e *IllegalCrossSchemaReferenceError) Error() string {
	return fmt.Sprintf("Illegal cross schema reference from `%s.%s` to `%s.%s` in constraint `%s`. Foreign keys between database schemas are not supported.",
		e.Namespace, e.Table, e.ReferencedNamespace, e.ReferencedTable, e.ForeignKey)
}

// ErrorCode returns the database's own code for a statement failure, e.g.
// "SQLSTATE 42P01" or "MySQL 1091". It is empty when err carries none.
func ErrorCode(err error) string {
	var (
		pgErr     *pgconn.PgError
		mysqlErr  *mysql.MySQLError
		mssqlErr  mssql.Error
		sqliteErr sqlite3.Error
	)
	switch {
	case errors.As(err, &pgErr):
		return "SQLSTATE " + pgErr.Code
	case errors.As(err, &mysqlErr):
		return "MySQL " + strconv.Itoa(int(mysqlErr.Number))
	case errors.As(err, &mssqlErr):
		return "SQL Server " + strconv.Itoa(int(mssqlErr.Number))
	case errors.As(err, &sqliteErr):
		return "SQLite " + strconv.Itoa(int(sqliteErr.ExtendedCode))
	}
	return ""
}

// IsConnectionFailure reports whether err came from the transport rather than
// from a statement.
func IsConnectionFailure(err error) bool {
	return isConnectionFailure(err)
}

func isConnectionFailure(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var connectErr *pgconn.ConnectError
	return errors.As(err, &connectErr)
}

// classify wraps a describer failure into the matching error kind.
func classify(d dialect.Dialect, err error) error {
	if err == nil {
		return nil
	}
	var connErr *ConnectionError
	var introErr *IntrospectionError
	switch {
	case errors.As(err, &connErr), errors.As(err, &introErr):
		return err
	case isConnectionFailure(err):
		return &ConnectionError{Dialect: d, Err: err}
	default:
		return &IntrospectionError{Dialect: d, Err: err}
	}
}
