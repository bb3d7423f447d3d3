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
	postgresNamespacesQuery = `
		SELECT nspname
		FROM pg_namespace
		WHERE nspname = ANY($1)
		ORDER BY nspname
	`

	postgresTablesQuery = `
		SELECT n.nspname, c.relname, c.relispartition, c.relhassubclass, c.relrowsecurity
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE c.relkind IN ('r', 'p') AND n.nspname = ANY($1)
		ORDER BY n.nspname, c.relname
	`

	postgresColumnsQuery = `
		SELECT info.table_schema, info.table_name, info.column_name, info.ordinal_position::int4,
			format_type(att.atttypid, att.atttypmod), info.data_type, info.udt_schema, info.udt_name,
			info.column_default, info.is_nullable = 'YES', info.is_identity = 'YES'
		FROM information_schema.columns info
		JOIN pg_namespace n ON n.nspname = info.table_schema
		JOIN pg_class c ON c.relnamespace = n.oid AND c.relname = info.table_name
		JOIN pg_attribute att ON att.attrelid = c.oid AND att.attname = info.column_name
		WHERE info.table_schema = ANY($1)%s
		ORDER BY info.table_schema, info.table_name, info.ordinal_position
	`

	postgresEnumsQuery = `
		SELECT n.nspname, t.typname, e.enumlabel
		FROM pg_type t
		JOIN pg_enum e ON e.enumtypid = t.oid
		JOIN pg_namespace n ON n.oid = t.typnamespace
		WHERE n.nspname = ANY($1)
		ORDER BY n.nspname, t.typname, e.enumsortorder
	`

	// Sequences owned by a serial or identity column belong to the column.
	postgresSequencesQuery = `
		SELECT s.schemaname, s.sequencename, s.start_value, s.min_value, s.max_value,
			s.increment_by, s.cache_size, s.cycle
		FROM pg_sequences s
		JOIN pg_namespace n ON n.nspname = s.schemaname
		JOIN pg_class c ON c.relnamespace = n.oid AND c.relname = s.sequencename
		WHERE s.schemaname = ANY($1)
			AND NOT EXISTS (SELECT 1 FROM pg_depend d WHERE d.objid = c.oid AND d.deptype IN ('a', 'i'))
		ORDER BY s.schemaname, s.sequencename
	`

	cockroachSequencesQuery = `
		SELECT sequence_schema, sequence_name, start_value::int8, minimum_value::int8,
			maximum_value::int8, increment::int8, 1::int8, cycle_option = 'YES'
		FROM information_schema.sequences
		WHERE sequence_schema = ANY($1)
		ORDER BY sequence_schema, sequence_name
	`

	postgresViewsQuery = `
		SELECT schemaname, viewname, coalesce(definition, '')
		FROM pg_views
		WHERE schemaname = ANY($1)
		ORDER BY schemaname, viewname
	`

	postgresIndexesQuery = `
		SELECT n.nspname, t.relname, i.relname, ix.indisprimary, ix.indisunique, am.amname,
			coalesce(a.attname, ''), (ix.indoption[k.pos - 1] & 1) = 1,
			CASE WHEN opc.opcdefault THEN '' ELSE coalesce(opc.opcname, '') END,
			coalesce(pg_get_expr(ix.indpred, ix.indrelid), '')
		FROM pg_index ix
		JOIN pg_class t ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_am am ON am.oid = i.relam
		CROSS JOIN LATERAL unnest(ix.indkey::int2[], ix.indclass::oid[]) WITH ORDINALITY AS k(attnum, opclass, pos)
		LEFT JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum
		LEFT JOIN pg_opclass opc ON opc.oid = k.opclass
		WHERE n.nspname = ANY($1) AND t.relkind IN ('r', 'p') AND k.pos <= ix.indnkeyatts
		ORDER BY n.nspname, t.relname, i.relname, k.pos
	`

	postgresForeignKeysQuery = `
		SELECT n.nspname, t.relname, con.conname, rn.nspname, rt.relname,
			a.attname, ra.attname, con.confdeltype::text, con.confupdtype::text
		FROM pg_constraint con
		JOIN pg_class t ON t.oid = con.conrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_class rt ON rt.oid = con.confrelid
		JOIN pg_namespace rn ON rn.oid = rt.relnamespace
		CROSS JOIN LATERAL unnest(con.conkey, con.confkey) WITH ORDINALITY AS k(attnum, refattnum, pos)
		JOIN pg_attribute a ON a.attrelid = con.conrelid AND a.attnum = k.attnum
		JOIN pg_attribute ra ON ra.attrelid = con.confrelid AND ra.attnum = k.refattnum
		WHERE con.contype = 'f' AND n.nspname = ANY($1)
		ORDER BY n.nspname, t.relname, con.conname, k.pos
	`
)

// postgresDescriber reads PostgreSQL and CockroachDB catalogs. The two share
// pg_catalog but differ in type names, hidden columns and sequence views.
type postgresDescriber struct {
	dialect dialect.Dialect
	logger  *slog.Logger
}

func (d *postgresDescriber) Dialect() dialect.Dialect { return d.dialect }

func (d *postgresDescriber) Describe(ctx context.Context, q Queryer, namespaces []string) (*schema.Schema, error) {
	namespaces = describedNamespaces(d.dialect, namespaces)
	c := &catalog{}

	steps := []struct {
		what string
		fn   func(context.Context, Queryer, *catalog, []string) error
	}{
		{"namespaces", d.namespaces},
		{"enums", d.enums},
		{"sequences", d.sequences},
		{"tables", d.tables},
		{"columns", d.columns},
		{"indexes", d.indexes},
		{"foreign keys", d.foreignKeys},
		{"views", d.views},
	}
	for _, step := range steps {
		d.logger.Debug("describing "+step.what, "namespaces", namespaces)
		if err := step.fn(ctx, q, c, namespaces); err != nil {
			return nil, classify(d.dialect, fmt.Errorf("failed to describe %s: %w", step.what, err))
		}
	}

	s, err := c.build(d.dialect)
	if err != nil {
		return nil, classify(d.dialect, err)
	}
	return s, nil
}

func (d *postgresDescriber) namespaces(ctx context.Context, q Queryer, c *catalog, namespaces []string) error {
	return queryRows(ctx, q, func(rows Rows) error {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		c.namespaces = append(c.namespaces, name)
		return nil
	}, postgresNamespacesQuery, namespaces)
}

func (d *postgresDescriber) tables(ctx context.Context, q Queryer, c *catalog, namespaces []string) error {
	return queryRows(ctx, q, func(rows Rows) error {
		var t catalogTable
		var partition, subclass, rls bool
		if err := rows.Scan(&t.namespace, &t.name, &partition, &subclass, &rls); err != nil {
			return err
		}
		if partition {
			t.properties |= schema.IsPartition
		}
		if subclass {
			t.properties |= schema.HasSubclass
		}
		if rls {
			t.properties |= schema.HasRowLevelSecurity
		}
		c.tables = append(c.tables, t)
		return nil
	}, postgresTablesQuery, namespaces)
}

func (d *postgresDescriber) columnsQuery() string {
	if d.dialect == dialect.CockroachDB {
		return fmt.Sprintf(postgresColumnsQuery, " AND info.is_hidden = 'NO'")
	}
	return fmt.Sprintf(postgresColumnsQuery, "")
}

func (d *postgresDescriber) columns(ctx context.Context, q Queryer, c *catalog, namespaces []string) error {
	types := postgresTypes
	if d.dialect == dialect.CockroachDB {
		types = cockroachTypes
	}
	enums := map[[2]string]bool{}
	for _, e := range c.enums {
		enums[[2]string{e.namespace, e.name}] = true
	}

	return queryRows(ctx, q, func(rows Rows) error {
		var (
			col                 catalogColumn
			formatted, dataType string
			udtSchema, udtName  string
			columnDefault       *string
			nullable, identity  bool
		)
		if err := rows.Scan(&col.namespace, &col.table, &col.name, &col.position,
			&formatted, &dataType, &udtSchema, &udtName, &columnDefault, &nullable, &identity); err != nil {
			return err
		}

		col.typ.FullDataType = formatted
		switch {
		case dataType == "ARRAY":
			col.typ.Arity = schema.List
			udtName = strings.TrimPrefix(udtName, "_")
		case nullable:
			col.typ.Arity = schema.Nullable
		default:
			col.typ.Arity = schema.Required
		}

		if nt, family, ok := native(types, udtName, typeArgs(formatted)); ok {
			col.typ.Native = nt
			col.typ.Family = family
		} else if enums[[2]string{udtSchema, udtName}] {
			col.enumNamespace, col.enumName = udtSchema, udtName
		} else {
			col.typ.Family = schema.FamilyUnsupported
		}

		col.def = parseDefault(d.dialect, str(columnDefault))
		col.autoIncrement = identity || (col.def != nil && col.def.Kind == schema.DefaultSequence)
		c.columns = append(c.columns, col)
		return nil
	}, d.columnsQuery(), namespaces)
}

func (d *postgresDescriber) enums(ctx context.Context, q Queryer, c *catalog, namespaces []string) error {
	return queryRows(ctx, q, func(rows Rows) error {
		var ns, name, value string
		if err := rows.Scan(&ns, &name, &value); err != nil {
			return err
		}
		if n := len(c.enums); n > 0 && c.enums[n-1].namespace == ns && c.enums[n-1].name == name {
			c.enums[n-1].values = append(c.enums[n-1].values, value)
			return nil
		}
		c.enums = append(c.enums, catalogEnum{namespace: ns, name: name, values: []string{value}})
		return nil
	}, postgresEnumsQuery, namespaces)
}

func (d *postgresDescriber) sequences(ctx context.Context, q Queryer, c *catalog, namespaces []string) error {
	query := postgresSequencesQuery
	if d.dialect == dialect.CockroachDB {
		query = cockroachSequencesQuery
	}
	return queryRows(ctx, q, func(rows Rows) error {
		var s catalogSequence
		if err := rows.Scan(&s.namespace, &s.seq.Name, &s.seq.Start, &s.seq.Min, &s.seq.Max,
			&s.seq.Increment, &s.seq.Cache, &s.seq.Cycle); err != nil {
			return err
		}
		c.sequences = append(c.sequences, s)
		return nil
	}, query, namespaces)
}

func (d *postgresDescriber) views(ctx context.Context, q Queryer, c *catalog, namespaces []string) error {
	return queryRows(ctx, q, func(rows Rows) error {
		var v catalogView
		if err := rows.Scan(&v.namespace, &v.name, &v.definition); err != nil {
			return err
		}
		c.views = append(c.views, v)
		return nil
	}, postgresViewsQuery, namespaces)
}

var postgresAlgorithms = map[string]schema.IndexAlgorithm{
	"hash":   schema.Hash,
	"gist":   schema.Gist,
	"gin":    schema.Gin,
	"spgist": schema.SpGist,
	"brin":   schema.Brin,
}

func (d *postgresDescriber) indexes(ctx context.Context, q Queryer, c *catalog, namespaces []string) error {
	// expression indexes cannot be represented
	skipped := map[[3]string]bool{}

	err := queryRows(ctx, q, func(rows Rows) error {
		var (
			ns, table, name, am, column, opclass, predicate string
			primary, unique, descending                     bool
		)
		if err := rows.Scan(&ns, &table, &name, &primary, &unique, &am, &column, &descending, &opclass, &predicate); err != nil {
			return err
		}
		key := [3]string{ns, table, name}
		if column == "" {
			skipped[key] = true
			return nil
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
		idx.algorithm = postgresAlgorithms[am]
		idx.predicate = predicate

		ic := catalogIndexColumn{name: column, operatorClass: opclass}
		if descending {
			ic.sortOrder = schema.Desc
		}
		idx.columns = append(idx.columns, ic)
		return nil
	}, postgresIndexesQuery, namespaces)
	if err != nil {
		return err
	}

	if len(skipped) > 0 {
		kept := c.indexes[:0]
		for _, idx := range c.indexes {
			if skipped[[3]string{idx.namespace, idx.table, idx.name}] {
				d.logger.Debug("skipping expression index", "namespace", idx.namespace, "table", idx.table, "index", idx.name)
				continue
			}
			kept = append(kept, idx)
		}
		c.indexes = kept
	}
	return nil
}

func (d *postgresDescriber) foreignKeys(ctx context.Context, q Queryer, c *catalog, namespaces []string) error {
	return queryRows(ctx, q, func(rows Rows) error {
		var ns, table, name, refNs, refTable, column, refColumn, onDelete, onUpdate string
		if err := rows.Scan(&ns, &table, &name, &refNs, &refTable, &column, &refColumn, &onDelete, &onUpdate); err != nil {
			return err
		}
		fk := c.foreignKey(ns, table, name, false)
		fk.refNamespace, fk.refTable = refNs, refTable
		fk.onDelete, fk.onUpdate = postgresAction(onDelete), postgresAction(onUpdate)
		fk.columns = append(fk.columns, column)
		fk.refColumns = append(fk.refColumns, refColumn)
		return nil
	}, postgresForeignKeysQuery, namespaces)
}

// postgresAction reads confdeltype / confupdtype, where 'a' means no action.
func postgresAction(code string) schema.Action {
	if code == "a" {
		return schema.NoAction
	}
	return schema.ParseAction(code)
}
