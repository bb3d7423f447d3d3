package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tordrt/schemaplan/internal/dialect"
	"github.com/tordrt/schemaplan/internal/schema"
)

const (
	mysqlTablesQuery = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	mysqlColumnsQuery = `
		SELECT table_name, column_name, ordinal_position, column_type, data_type,
			column_default, is_nullable = 'YES', extra
		FROM information_schema.columns
		WHERE table_schema = DATABASE()
		ORDER BY table_name, ordinal_position
	`

	mysqlIndexesQuery = `
		SELECT table_name, index_name, non_unique = 0, column_name, collation, sub_part, index_type
		FROM information_schema.statistics
		WHERE table_schema = DATABASE()
		ORDER BY table_name, index_name, seq_in_index
	`

	mysqlForeignKeysQuery = `
		SELECT kcu.table_name, kcu.constraint_name, kcu.referenced_table_name,
			kcu.column_name, kcu.referenced_column_name, rc.delete_rule, rc.update_rule
		FROM information_schema.key_column_usage kcu
		JOIN information_schema.referential_constraints rc
			ON rc.constraint_schema = kcu.constraint_schema
			AND rc.constraint_name = kcu.constraint_name
			AND rc.table_name = kcu.table_name
		WHERE kcu.table_schema = DATABASE() AND kcu.referenced_table_name IS NOT NULL
		ORDER BY kcu.table_name, kcu.constraint_name, kcu.ordinal_position
	`

	mysqlViewsQuery = `
		SELECT table_name, coalesce(view_definition, '')
		FROM information_schema.views
		WHERE table_schema = DATABASE()
		ORDER BY table_name
	`
)

// mysqlDescriber reads the current database of a MySQL or MariaDB connection.
// Everything lands in the single unnamed namespace.
type mysqlDescriber struct {
	dialect dialect.Dialect
	logger  *slog.Logger
}

func (d *mysqlDescriber) Dialect() dialect.Dialect { return d.dialect }

func (d *mysqlDescriber) Describe(ctx context.Context, q Queryer, _ []string) (*schema.Schema, error) {
	c := &catalog{namespaces: []string{""}}

	steps := []struct {
		what string
		fn   func(context.Context, Queryer, *catalog) error
	}{
		{"tables", d.tables},
		{"columns", d.columns},
		{"indexes", d.indexes},
		{"foreign keys", d.foreignKeys},
		{"views", d.views},
	}
	for _, step := range steps {
		d.logger.Debug("describing " + step.what)
		if err := step.fn(ctx, q, c); err != nil {
			return nil, classify(d.dialect, fmt.Errorf("failed to describe %s: %w", step.what, err))
		}
	}

	s, err := c.build(d.dialect)
	if err != nil {
		return nil, classify(d.dialect, err)
	}
	return s, nil
}

func (d *mysqlDescriber) tables(ctx context.Context, q Queryer, c *catalog) error {
	return queryRows(ctx, q, func(rows Rows) error {
		var t catalogTable
		if err := rows.Scan(&t.name); err != nil {
			return err
		}
		c.tables = append(c.tables, t)
		return nil
	}, mysqlTablesQuery)
}

func (d *mysqlDescriber) columns(ctx context.Context, q Queryer, c *catalog) error {
	return queryRows(ctx, q, func(rows Rows) error {
		var (
			col                         catalogColumn
			columnType, dataType, extra string
			columnDefault               *string
			nullable                    bool
		)
		if err := rows.Scan(&col.table, &col.name, &col.position, &columnType, &dataType,
			&columnDefault, &nullable, &extra); err != nil {
			return err
		}

		col.typ = mysqlColumnType(columnType, dataType)
		if nullable {
			col.typ.Arity = schema.Nullable
		}
		col.autoIncrement = strings.Contains(strings.ToLower(extra), "auto_increment")
		// MariaDB quotes string defaults and spells NULL out, MySQL does neither.
		col.def = parseDefault(d.dialect, str(columnDefault))
		c.columns = append(c.columns, col)
		return nil
	}, mysqlColumnsQuery)
}

// mysqlColumnType reads information_schema.columns.column_type, e.g.
// "int unsigned", "tinyint(1)", "varchar(255)" or "enum('a','b')".
func mysqlColumnType(columnType, dataType string) schema.ColumnType {
	typ := schema.ColumnType{FullDataType: columnType}
	lower := strings.ToLower(columnType)
	dataType = strings.ToLower(dataType)

	switch {
	case dataType == "enum":
		typ.Native = schema.Native("Enum", enumVariants(columnType)...)
		typ.Family = schema.FamilyString
		return typ
	case strings.HasPrefix(lower, "tinyint(1)"):
		typ.Native = schema.Native("TinyInt")
		typ.Family = schema.FamilyBoolean
		return typ
	}

	nt, family, ok := native(mysqlTypes, dataType, typeArgs(columnType))
	if !ok {
		typ.Family = schema.FamilyUnsupported
		return typ
	}
	if strings.Contains(lower, "unsigned") && strings.HasSuffix(nt.Name, "Int") {
		nt.Name = "Unsigned" + nt.Name
	}
	typ.Native = nt
	typ.Family = family
	return typ
}

// enumVariants splits enum('a','it''s') into its unquoted variants.
func enumVariants(columnType string) []string {
	open := strings.IndexByte(columnType, '(')
	end := strings.LastIndexByte(columnType, ')')
	if open < 0 || end <= open {
		return nil
	}
	body := columnType[open+1 : end]

	var (
		variants []string
		cur      strings.Builder
		quoted   bool
	)
	for i := 0; i < len(body); i++ {
		ch := body[i]
		switch {
		case ch == '\'' && quoted && i+1 < len(body) && body[i+1] == '\'':
			cur.WriteByte('\'')
			i++
		case ch == '\'':
			quoted = !quoted
			if !quoted {
				variants = append(variants, cur.String())
				cur.Reset()
			}
		case quoted:
			cur.WriteByte(ch)
		}
	}
	return variants
}

func (d *mysqlDescriber) indexes(ctx context.Context, q Queryer, c *catalog) error {
	skipped := map[[2]string]bool{}

	err := queryRows(ctx, q, func(rows Rows) error {
		var (
			table, name, indexType string
			unique                 bool
			column, collation      *string
			subPart                *int64
		)
		if err := rows.Scan(&table, &name, &unique, &column, &collation, &subPart, &indexType); err != nil {
			return err
		}
		// functional key parts have no column
		if column == nil {
			skipped[[2]string{table, name}] = true
			return nil
		}

		idx := c.index("", table, name)
		switch {
		case name == "PRIMARY":
			idx.kind = schema.IndexPrimaryKey
		case strings.EqualFold(indexType, "FULLTEXT"):
			idx.kind = schema.IndexFulltext
		case unique:
			idx.kind = schema.IndexUnique
		default:
			idx.kind = schema.IndexNormal
		}
		if strings.EqualFold(indexType, "HASH") {
			idx.algorithm = schema.Hash
		}

		ic := catalogIndexColumn{name: *column}
		if str(collation) == "D" {
			ic.sortOrder = schema.Desc
		}
		if subPart != nil {
			ic.length = int(*subPart)
		}
		idx.columns = append(idx.columns, ic)
		return nil
	}, mysqlIndexesQuery)
	if err != nil {
		return err
	}

	kept := c.indexes[:0]
	for _, idx := range c.indexes {
		if skipped[[2]string{idx.table, idx.name}] {
			d.logger.Debug("skipping functional index", "table", idx.table, "index", idx.name)
			continue
		}
		// primary keys are always called PRIMARY
		if idx.kind == schema.IndexPrimaryKey {
			idx.name = ""
		}
		kept = append(kept, idx)
	}
	c.indexes = kept
	return nil
}

func (d *mysqlDescriber) foreignKeys(ctx context.Context, q Queryer, c *catalog) error {
	return queryRows(ctx, q, func(rows Rows) error {
		var table, name, refTable, column, refColumn, onDelete, onUpdate string
		if err := rows.Scan(&table, &name, &refTable, &column, &refColumn, &onDelete, &onUpdate); err != nil {
			return err
		}
		fk := c.foreignKey("", table, name, false)
		fk.refTable = refTable
		fk.onDelete, fk.onUpdate = schema.ParseAction(onDelete), schema.ParseAction(onUpdate)
		fk.columns = append(fk.columns, column)
		fk.refColumns = append(fk.refColumns, refColumn)
		return nil
	}, mysqlForeignKeysQuery)
}

func (d *mysqlDescriber) views(ctx context.Context, q Queryer, c *catalog) error {
	return queryRows(ctx, q, func(rows Rows) error {
		var v catalogView
		if err := rows.Scan(&v.name, &v.definition); err != nil {
			return err
		}
		c.views = append(c.views, v)
		return nil
	}, mysqlViewsQuery)
}
