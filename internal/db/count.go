package db

import (
	"context"
	"fmt"

	"github.com/tordrt/schemaplan/internal/dialect"
	"github.com/tordrt/schemaplan/internal/migration"
	"github.com/tordrt/schemaplan/internal/safety"
)

// CountRows returns the number of rows in a table.
func CountRows(ctx context.Context, q Queryer, d dialect.Dialect, t safety.TableRef) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", d.QuoteTable(t.Namespace, t.Table))
	return count(ctx, q, query)
}

// CountValues returns the number of non-null values in a column.
func CountValues(ctx context.Context, q Queryer, d dialect.Dialect, c safety.ColumnRef) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s IS NOT NULL",
		d.QuoteTable(c.Namespace, c.Table), d.Quote(c.Column))
	return count(ctx, q, query)
}

func count(ctx context.Context, q Queryer, query string) (int64, error) {
	var n int64
	err := queryRows(ctx, q, func(rows Rows) error {
		return rows.Scan(&n)
	}, query)
	return n, err
}

// CollectFacts takes the counts the classifier consults for m from the
// current database. They are read once, before anything in m runs.
func CollectFacts(ctx context.Context, q Queryer, d dialect.Dialect, m *migration.Migration) (safety.Facts, error) {
	tables, columns := safety.Probes(m)
	facts := safety.Facts{
		Rows:    make(map[safety.TableRef]int64, len(tables)),
		NonNull: make(map[safety.ColumnRef]int64, len(columns)),
	}

	for _, t := range tables {
		n, err := CountRows(ctx, q, d, t)
		if err != nil {
			return safety.Facts{}, classify(d, fmt.Errorf("failed to count rows of %s: %w", t.Table, err))
		}
		facts.Rows[t] = n
	}
	for _, c := range columns {
		// no rows means no values
		if n, ok := facts.Rows[safety.TableRef{Namespace: c.Namespace, Table: c.Table}]; ok && n == 0 {
			continue
		}
		n, err := CountValues(ctx, q, d, c)
		if err != nil {
			return safety.Facts{}, classify(d, fmt.Errorf("failed to count values of %s.%s: %w", c.Table, c.Column, err))
		}
		facts.NonNull[c] = n
	}
	return facts, nil
}
