package db

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/tordrt/schemaplan/internal/dialect"
	"github.com/tordrt/schemaplan/internal/schema"
)

// The %s in each query is the namespace placeholder list.
const (
	sqlserverNamespacesQuery = `
		SELECT name
		FROM sys.schemas
		WHERE name IN (%s)
		ORDER BY name
	`

	sqlserverTablesQuery = `
		SELECT s.name, t.name
		FROM sys.tables t
		JOIN sys.schemas s ON s.schema_id = t.schema_id
		WHERE s.name IN (%s) AND t.is_ms_shipped = 0
		ORDER BY s.name, t.name
	`

	sqlserverColumnsQuery = `
		SELECT s.name, t.name, c.name, c.column_id, ty.name,
			CAST(c.max_length AS int), CAST(c.precision AS int), CAST(c.scale AS int),
			c.is_nullable, c.is_identity, coalesce(dc.definition, ''), coalesce(dc.name, '')
		FROM sys.columns c
		JOIN sys.tables t ON t.object_id = c.object_id
		JOIN sys.schemas s ON s.schema_id = t.schema_id
		JOIN sys.types ty ON ty.user_type_id = c.user_type_id
		LEFT JOIN sys.default_constraints dc ON dc.object_id = c.default_object_id
		WHERE s.name IN (%s) AND t.is_ms_shipped = 0
		ORDER BY s.name, t.name, c.column_id
	`

	sqlserverIndexesQuery = `
		SELECT s.name, t.name, i.name, i.is_primary_key, i.is_unique, c.name,
			ic.is_descending_key, coalesce(i.filter_definition, '')
		FROM sys.indexes i
		JOIN sys.tables t ON t.object_id = i.object_id
		JOIN sys.schemas s ON s.schema_id = t.schema_id
		JOIN sys.index_columns ic ON ic.object_id = i.object_id AND ic.index_id = i.index_id
		JOIN sys.columns c ON c.object_id = ic.object_id AND c.column_id = ic.column_id
		WHERE s.name IN (%s) AND t.is_ms_shipped = 0 AND i.type > 0 AND ic.is_included_column = 0
		ORDER BY s.name, t.name, i.name, ic.key_ordinal
	`

	sqlserverForeignKeysQuery = `
		SELECT s.name, t.name, fk.name, rs.name, rt.name, c.name, rc.name,
			fk.delete_referential_action_desc, fk.update_referential_action_desc
		FROM sys.foreign_keys fk
		JOIN sys.foreign_key_columns fkc ON fkc.constraint_object_id = fk.object_id
		JOIN sys.tables t ON t.object_id = fk.parent_object_id
		JOIN sys.schemas s ON s.schema_id = t.schema_id
		JOIN sys.tables rt ON rt.object_id = fk.referenced_object_id
		JOIN sys.schemas rs ON rs.schema_id = rt.schema_id
		JOIN sys.columns c ON c.object_id = fkc.parent_object_id AND c.column_id = fkc.parent_column_id
		JOIN sys.columns rc ON rc.object_id = fkc.referenced_object_id AND rc.column_id = fkc.referenced_column_id
		WHERE s.name IN (%s)
		ORDER BY s.name, t.name, fk.name, fkc.constraint_column_id
	`

	sqlserverSequencesQuery = `
		SELECT s.name, seq.name, CAST(seq.start_value AS bigint), CAST(seq.minimum_value AS bigint),
			CAST(seq.maximum_value AS bigint), CAST(seq.increment AS bigint),
			CAST(coalesce(seq.cache_size, 0) AS bigint), seq.is_cycling
		FROM sys.sequences seq
		JOIN sys.schemas s ON s.schema_id = seq.schema_id
		WHERE s.name IN (%s)
		ORDER BY s.name, seq.name
	`

	sqlserverViewsQuery = `
		SELECT s.name, v.name, coalesce(m.definition, '')
		FROM sys.views v
		JOIN sys.schemas s ON s.schema_id = v.schema_id
		LEFT JOIN sys.sql_modules m ON m.object_id = v.object_id
		WHERE s.name IN (%s)
		ORDER BY s.name, v.name
	`
)

// sqlserverDescriber reads the sys catalog views of SQL Server.
type sqlserverDescriber struct {
	logger *slog.Logger
}

func (d *sqlserverDescriber) Dialect() dialect.Dialect { return dialect.SQLServer }

func (d *sqlserverDescriber) Describe(ctx context.Context, q Queryer, namespaces []string) (*schema.Schema, error) {
	namespaces = describedNamespaces(dialect.SQLServer, namespaces)
	c := &catalog{}
	placeholders, args := sqlserverParams(namespaces)

	steps := []struct {
		what  string
		query string
		scan  func(*catalog, Rows) error
	}{
		{"namespaces", sqlserverNamespacesQuery, scanSQLServerNamespace},
		{"sequences", sqlserverSequencesQuery, scanSQLServerSequence},
		{"tables", sqlserverTablesQuery, scanSQLServerTable},
		{"columns", sqlserverColumnsQuery, scanSQLServerColumn},
		{"indexes", sqlserverIndexesQuery, scanSQLServerIndex},
		{"foreign keys", sqlserverForeignKeysQuery, scanSQLServerForeignKey},
		{"views", sqlserverViewsQuery, scanSQLServerView},
	}
	for _, step := range steps {
		d.logger.Debug("describing "+step.what, "namespaces", namespaces)
		err := queryRows(ctx, q, func(rows Rows) error {
			return step.scan(c, rows)
		}, fmt.Sprintf(step.query, placeholders), args...)
		if err != nil {
			return nil, classify(dialect.SQLServer, fmt.Errorf("failed to describe %s: %w", step.what, err))
		}
	}

	s, err := c.build(dialect.SQLServer)
	if err != nil {
		return nil, classify(dialect.SQLServer, err)
	}
	return s, nil
}

// sqlserverParams numbers one @pN placeholder per namespace.
func sqlserverParams(namespaces []string) (string, []any) {
	placeholders := make([]string, len(namespaces))
	args := make([]any, len(namespaces))
	for i, ns := range namespaces {
		placeholders[i] = "@p" + strconv.Itoa(i+1)
		args[i] = ns
	}
	return strings.Join(placeholders, ", "), args
}

func scanSQLServerNamespace(c *catalog, rows Rows) error {
	var name string
	if err := rows.Scan(&name); err != nil {
		return err
	}
	c.namespaces = append(c.namespaces, name)
	return nil
}

func scanSQLServerTable(c *catalog, rows Rows) error {
	var t catalogTable
	if err := rows.Scan(&t.namespace, &t.name); err != nil {
		return err
	}
	c.tables = append(c.tables, t)
	return nil
}

func scanSQLServerColumn(c *catalog, rows Rows) error {
	var (
		col                         catalogColumn
		typeName, defExpr, defName  string
		maxLength, precision, scale int
		nullable, identity          bool
	)
	if err := rows.Scan(&col.namespace, &col.table, &col.name, &col.position, &typeName,
		&maxLength, &precision, &scale, &nullable, &identity, &defExpr, &defName); err != nil {
		return err
	}

	args := sqlserverTypeArgs(typeName, maxLength, precision, scale)
	col.typ.FullDataType = strings.ToLower(typeName)
	if len(args) > 0 {
		col.typ.FullDataType += "(" + strings.ToLower(strings.Join(args, ",")) + ")"
	}
	if nt, family, ok := native(sqlserverTypes, typeName, args); ok {
		col.typ.Native, col.typ.Family = nt, family
	} else {
		col.typ.Family = schema.FamilyUnsupported
	}
	if nullable {
		col.typ.Arity = schema.Nullable
	}

	col.autoIncrement = identity
	if col.def = parseDefault(dialect.SQLServer, defExpr); col.def != nil {
		col.def.ConstraintName = defName
	}
	c.columns = append(c.columns, col)
	return nil
}

// sqlserverTypeArgs rebuilds type arguments from sys.columns, where lengths
// are in bytes and -1 means max.
func sqlserverTypeArgs(typeName string, maxLength, precision, scale int) []string {
	switch strings.ToLower(typeName) {
	case "varchar", "char", "binary", "varbinary":
		if maxLength == -1 {
			return []string{"Max"}
		}
		return []string{strconv.Itoa(maxLength)}
	case "nvarchar", "nchar":
		if maxLength == -1 {
			return []string{"Max"}
		}
		return []string{strconv.Itoa(maxLength / 2)}
	case "decimal", "numeric":
		return []string{strconv.Itoa(precision), strconv.Itoa(scale)}
	case "float":
		return []string{strconv.Itoa(precision)}
	default:
		return nil
	}
}

func scanSQLServerIndex(c *catalog, rows Rows) error {
	var (
		ns, table, name, column, filter string
		primary, unique, descending     bool
	)
	if err := rows.Scan(&ns, &table, &name, &primary, &unique, &column, &descending, &filter); err != nil {
		return err
	}
	idx := c.index(ns, table, name)
	switch {
	case primary:
		idx.kind = schema.IndexPrimaryKey
	case unique:
		idx.kind = schema.IndexUnique
	default:
		idx.kind = schema.IndexNormal
	}
	idx.predicate = unwrapParens(filter)

	ic := catalogIndexColumn{name: column}
	if descending {
		ic.sortOrder = schema.Desc
	}
	idx.columns = append(idx.columns, ic)
	return nil
}

func scanSQLServerForeignKey(c *catalog, rows Rows) error {
	var ns, table, name, refNs, refTable, column, refColumn, onDelete, onUpdate string
	if err := rows.Scan(&ns, &table, &name, &refNs, &refTable, &column, &refColumn, &onDelete, &onUpdate); err != nil {
		return err
	}
	fk := c.foreignKey(ns, table, name, false)
	fk.refNamespace, fk.refTable = refNs, refTable
	fk.onDelete, fk.onUpdate = schema.ParseAction(onDelete), schema.ParseAction(onUpdate)
	fk.columns = append(fk.columns, column)
	fk.refColumns = append(fk.refColumns, refColumn)
	return nil
}

func scanSQLServerSequence(c *catalog, rows Rows) error {
	var s catalogSequence
	if err := rows.Scan(&s.namespace, &s.seq.Name, &s.seq.Start, &s.seq.Min, &s.seq.Max,
		&s.seq.Increment, &s.seq.Cache, &s.seq.Cycle); err != nil {
		return err
	}
	c.sequences = append(c.sequences, s)
	return nil
}

func scanSQLServerView(c *catalog, rows Rows) error {
	var v catalogView
	if err := rows.Scan(&v.namespace, &v.name, &v.definition); err != nil {
		return err
	}
	v.definition = viewBody(v.definition)
	c.views = append(c.views, v)
	return nil
}
