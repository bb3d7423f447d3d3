package db

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/tordrt/schemaplan/internal/dialect"
	"github.com/tordrt/schemaplan/internal/schema"
)

const (
	sqliteTablesQuery = `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	sqliteColumnsQuery = `
		SELECT cid, name, type, "notnull", dflt_value, pk
		FROM pragma_table_info(?)
		ORDER BY cid
	`

	sqliteIndexListQuery = `
		SELECT name, "unique", origin
		FROM pragma_index_list(?)
		ORDER BY name
	`

	sqliteIndexColumnsQuery = `
		SELECT name, "desc"
		FROM pragma_index_xinfo(?)
		WHERE key = 1
		ORDER BY seqno
	`

	sqliteIndexSQLQuery = `
		SELECT coalesce(sql, '')
		FROM sqlite_master
		WHERE type = 'index' AND name = ?
	`

	sqliteForeignKeysQuery = `
		SELECT id, "table", "from", "to", on_update, on_delete
		FROM pragma_foreign_key_list(?)
		ORDER BY id, seq
	`

	sqliteViewsQuery = `
		SELECT name, coalesce(sql, '')
		FROM sqlite_master
		WHERE type = 'view'
		ORDER BY name
	`
)

var sqlitePredicateRe = regexp.MustCompile(`(?is)\)\s+WHERE\s+(.+?);?\s*$`)

// sqliteDescriber reads a SQLite database through the pragma table functions.
// SQLite has no named foreign keys and no namespaces.
type sqliteDescriber struct {
	logger *slog.Logger
}

func (d *sqliteDescriber) Dialect() dialect.Dialect { return dialect.SQLite }

func (d *sqliteDescriber) Describe(ctx context.Context, q Queryer, _ []string) (*schema.Schema, error) {
	c := &catalog{namespaces: []string{""}}

	d.logger.Debug("describing tables")
	if err := d.tables(ctx, q, c); err != nil {
		return nil, classify(dialect.SQLite, fmt.Errorf("failed to describe tables: %w", err))
	}

	// Pragma queries run one table at a time; the connection holds a single
	// cursor, so nothing here may overlap.
	for _, t := range c.tables {
		d.logger.Debug("describing table", "table", t.name)
		if err := d.columns(ctx, q, c, t.name); err != nil {
			return nil, classify(dialect.SQLite, fmt.Errorf("failed to describe columns of %s: %w", t.name, err))
		}
		if err := d.indexes(ctx, q, c, t.name); err != nil {
			return nil, classify(dialect.SQLite, fmt.Errorf("failed to describe indexes of %s: %w", t.name, err))
		}
	}
	for _, t := range c.tables {
		if err := d.foreignKeys(ctx, q, c, t.name); err != nil {
			return nil, classify(dialect.SQLite, fmt.Errorf("failed to describe foreign keys of %s: %w", t.name, err))
		}
	}

	d.logger.Debug("describing views")
	if err := d.views(ctx, q, c); err != nil {
		return nil, classify(dialect.SQLite, fmt.Errorf("failed to describe views: %w", err))
	}

	s, err := c.build(dialect.SQLite)
	if err != nil {
		return nil, classify(dialect.SQLite, err)
	}
	return s, nil
}

func (d *sqliteDescriber) tables(ctx context.Context, q Queryer, c *catalog) error {
	return queryRows(ctx, q, func(rows Rows) error {
		var t catalogTable
		if err := rows.Scan(&t.name); err != nil {
			return err
		}
		c.tables = append(c.tables, t)
		return nil
	}, sqliteTablesQuery)
}

func (d *sqliteDescriber) columns(ctx context.Context, q Queryer, c *catalog, table string) error {
	type pkColumn struct {
		name, declared string
		position       int
	}
	var pk []pkColumn

	err := queryRows(ctx, q, func(rows Rows) error {
		var (
			col          catalogColumn
			declared     string
			notNull      bool
			defaultValue *string
			pkPosition   int
		)
		if err := rows.Scan(&col.position, &col.name, &declared, &notNull, &defaultValue, &pkPosition); err != nil {
			return err
		}
		col.table = table
		col.typ = schema.ColumnType{
			FullDataType: strings.ToLower(declared),
			Family:       sqliteFamily(declared),
			Arity:        schema.Nullable,
		}
		if notNull || pkPosition > 0 {
			col.typ.Arity = schema.Required
		}
		col.def = parseDefault(dialect.SQLite, str(defaultValue))
		if pkPosition > 0 {
			pk = append(pk, pkColumn{name: col.name, declared: declared, position: pkPosition})
		}
		c.columns = append(c.columns, col)
		return nil
	}, sqliteColumnsQuery, table)
	if err != nil {
		return err
	}
	if len(pk) == 0 {
		return nil
	}

	idx := catalogIndex{table: table, kind: schema.IndexPrimaryKey, columns: make([]catalogIndexColumn, len(pk))}
	for _, p := range pk {
		idx.columns[p.position-1] = catalogIndexColumn{name: p.name}
	}
	c.indexes = append(c.indexes, idx)

	// A lone INTEGER primary key aliases the rowid.
	if len(pk) == 1 && strings.EqualFold(pk[0].declared, "integer") {
		for i := range c.columns {
			if c.columns[i].table == table && c.columns[i].name == pk[0].name {
				c.columns[i].autoIncrement = true
			}
		}
	}
	return nil
}

func (d *sqliteDescriber) indexes(ctx context.Context, q Queryer, c *catalog, table string) error {
	type listed struct {
		name   string
		unique bool
	}
	var names []listed
	err := queryRows(ctx, q, func(rows Rows) error {
		var l listed
		var origin string
		if err := rows.Scan(&l.name, &l.unique, &origin); err != nil {
			return err
		}
		// the primary key comes from table_info
		if origin == "pk" {
			return nil
		}
		names = append(names, l)
		return nil
	}, sqliteIndexListQuery, table)
	if err != nil {
		return err
	}

	for _, l := range names {
		idx := catalogIndex{table: table, name: l.name, kind: schema.IndexNormal}
		if l.unique {
			idx.kind = schema.IndexUnique
		}
		expression := false
		err := queryRows(ctx, q, func(rows Rows) error {
			var column *string
			var desc bool
			if err := rows.Scan(&column, &desc); err != nil {
				return err
			}
			if column == nil {
				expression = true
				return nil
			}
			ic := catalogIndexColumn{name: *column}
			if desc {
				ic.sortOrder = schema.Desc
			}
			idx.columns = append(idx.columns, ic)
			return nil
		}, sqliteIndexColumnsQuery, l.name)
		if err != nil {
			return err
		}
		if expression {
			d.logger.Debug("skipping expression index", "table", table, "index", l.name)
			continue
		}

		err = queryRows(ctx, q, func(rows Rows) error {
			var sql string
			if err := rows.Scan(&sql); err != nil {
				return err
			}
			if m := sqlitePredicateRe.FindStringSubmatch(sql); m != nil {
				idx.predicate = strings.TrimSpace(m[1])
			}
			return nil
		}, sqliteIndexSQLQuery, l.name)
		if err != nil {
			return err
		}
		c.indexes = append(c.indexes, idx)
	}
	return nil
}

func (d *sqliteDescriber) foreignKeys(ctx context.Context, q Queryer, c *catalog, table string) error {
	lastID := -1
	return queryRows(ctx, q, func(rows Rows) error {
		var (
			id                 int
			refTable, column   string
			refColumn          *string
			onUpdate, onDelete string
		)
		if err := rows.Scan(&id, &refTable, &column, &refColumn, &onUpdate, &onDelete); err != nil {
			return err
		}
		fk := c.foreignKey("", table, "", id != lastID)
		lastID = id
		fk.refTable = refTable
		fk.onDelete, fk.onUpdate = schema.ParseAction(onDelete), schema.ParseAction(onUpdate)
		fk.columns = append(fk.columns, column)

		to := str(refColumn)
		// REFERENCES t without a column list points at the primary key
		if to == "" {
			to = sqlitePrimaryKeyColumn(c, refTable, len(fk.refColumns))
		}
		fk.refColumns = append(fk.refColumns, to)
		return nil
	}, sqliteForeignKeysQuery, table)
}

func sqlitePrimaryKeyColumn(c *catalog, table string, i int) string {
	for _, idx := range c.indexes {
		if idx.table == table && idx.kind == schema.IndexPrimaryKey && i < len(idx.columns) {
			return idx.columns[i].name
		}
	}
	return ""
}

func (d *sqliteDescriber) views(ctx context.Context, q Queryer, c *catalog) error {
	return queryRows(ctx, q, func(rows Rows) error {
		var v catalogView
		if err := rows.Scan(&v.name, &v.definition); err != nil {
			return err
		}
		v.definition = viewBody(v.definition)
		c.views = append(c.views, v)
		return nil
	}, sqliteViewsQuery)
}
