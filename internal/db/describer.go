package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tordrt/schemaplan/internal/dialect"
	"github.com/tordrt/schemaplan/internal/schema"
)

// Describer reads the live structure of one database into a schema.Schema.
// Output is sorted by namespace and name so two runs against the same
// database produce identical snapshots.
type Describer interface {
	// Describe reads the given namespaces. An empty list means the dialect's
	// default namespace. Dialects without namespaces ignore the list.
	Describe(ctx context.Context, q Queryer, namespaces []string) (*schema.Schema, error)
	Dialect() dialect.Dialect
}

// DescriberOption configures a describer.
type DescriberOption func(*describerOptions)

type describerOptions struct {
	logger *slog.Logger
}

// WithLogger makes the describer log each catalog query group at debug level.
func WithLogger(logger *slog.Logger) DescriberOption {
	return func(o *describerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewDescriber returns the describer for d.
func NewDescriber(d dialect.Dialect, opts ...DescriberOption) (Describer, error) {
	o := describerOptions{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.With("dialect", string(d))

	switch d {
	case dialect.Postgres, dialect.CockroachDB:
		return &postgresDescriber{dialect: d, logger: logger}, nil
	case dialect.MySQL, dialect.MariaDB:
		return &mysqlDescriber{dialect: d, logger: logger}, nil
	case dialect.SQLServer:
		return &sqlserverDescriber{logger: logger}, nil
	case dialect.SQLite:
		return &sqliteDescriber{logger: logger}, nil
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", d)
	}
}

// Describe reads conn with the describer for its dialect.
func Describe(ctx context.Context, conn Conn, namespaces []string, opts ...DescriberOption) (*schema.Schema, error) {
	d, err := NewDescriber(conn.Dialect(), opts...)
	if err != nil {
		return nil, err
	}
	return d.Describe(ctx, conn, namespaces)
}

func describedNamespaces(d dialect.Dialect, namespaces []string) []string {
	if !d.Capabilities().Namespaces {
		return []string{""}
	}
	if len(namespaces) == 0 {
		return []string{d.DefaultNamespace()}
	}
	return namespaces
}

// queryRows runs query and calls scan for every row.
func queryRows(ctx context.Context, q Queryer, scan func(Rows) error, query string, args ...any) error {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}
	}
	return rows.Err()
}

// str dereferences a nullable string column.
func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
