package db

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/tordrt/schemaplan/internal/dialect"
	"github.com/tordrt/schemaplan/internal/schema"
)

// catalog is what a describer reads before any handle is assigned. Entities
// refer to each other by name; build turns them into a schema.Schema.
type catalog struct {
	namespaces  []string
	tables      []catalogTable
	columns     []catalogColumn
	indexes     []catalogIndex
	foreignKeys []catalogForeignKey
	enums       []catalogEnum
	sequences   []catalogSequence
	views       []catalogView
}

type catalogTable struct {
	namespace, name string
	properties      schema.TableProperties
}

type catalogColumn struct {
	namespace, table, name string
	// position orders columns within their table.
	position      int
	typ           schema.ColumnType
	enumNamespace string
	enumName      string
	def           *schema.Default
	autoIncrement bool
}

type catalogIndexColumn struct {
	name          string
	sortOrder     schema.SortOrder
	operatorClass string
	length        int
}

type catalogIndex struct {
	namespace, table, name string
	kind                   schema.IndexKind
	algorithm              schema.IndexAlgorithm
	predicate              string
	columns                []catalogIndexColumn
}

type catalogForeignKey struct {
	namespace, table, name string
	refNamespace, refTable string
	columns, refColumns    []string
	onDelete, onUpdate     schema.Action
}

type catalogEnum struct {
	namespace, name string
	values          []string
}

type catalogSequence struct {
	namespace string
	seq       schema.Sequence
}

type catalogView struct {
	namespace, name, definition string
}

func (c *catalog) table(namespace, name string) *catalogTable {
	for i := range c.tables {
		if c.tables[i].namespace == namespace && c.tables[i].name == name {
			return &c.tables[i]
		}
	}
	return nil
}

// index returns the index being accumulated for (namespace, table, name),
// appending a new one when the last index differs.
func (c *catalog) index(namespace, table, name string) *catalogIndex {
	if n := len(c.indexes); n > 0 {
		last := &c.indexes[n-1]
		if last.namespace == namespace && last.table == table && last.name == name {
			return last
		}
	}
	c.indexes = append(c.indexes, catalogIndex{namespace: namespace, table: table, name: name})
	return &c.indexes[len(c.indexes)-1]
}

// foreignKey works like index for foreign keys. isNew forces a new entry, for
// dialects whose keys are unnamed.
func (c *catalog) foreignKey(namespace, table, name string, isNew bool) *catalogForeignKey {
	if n := len(c.foreignKeys); n > 0 && !isNew {
		last := &c.foreignKeys[n-1]
		if last.namespace == namespace && last.table == table && last.name == name {
			return last
		}
	}
	c.foreignKeys = append(c.foreignKeys, catalogForeignKey{namespace: namespace, table: table, name: name})
	return &c.foreignKeys[len(c.foreignKeys)-1]
}

// checkReferences rejects foreign keys into namespaces outside the described set.
func (c *catalog) checkReferences(d dialect.Dialect) error {
	if !d.Capabilities().Namespaces {
		return nil
	}
	described := map[string]bool{}
	for _, ns := range c.namespaces {
		described[ns] = true
	}
	for _, fk := range c.foreignKeys {
		if !described[fk.refNamespace] {
			return &IllegalCrossSchemaReferenceError{
				Namespace:           fk.namespace,
				Table:               fk.table,
				ReferencedNamespace: fk.refNamespace,
				ReferencedTable:     fk.refTable,
				ForeignKey:          fk.name,
			}
		}
	}
	return nil
}

// build sorts the catalog by namespace then name and assembles the snapshot.
// Column order and index column order are kept as read.
func (c *catalog) build(d dialect.Dialect) (*schema.Schema, error) {
	if err := c.checkReferences(d); err != nil {
		return nil, err
	}

	slices.Sort(c.namespaces)
	c.namespaces = slices.Compact(c.namespaces)
	slices.SortStableFunc(c.tables, func(a, b catalogTable) int {
		return cmp.Or(cmp.Compare(a.namespace, b.namespace), cmp.Compare(a.name, b.name))
	})
	slices.SortStableFunc(c.columns, func(a, b catalogColumn) int {
		return cmp.Or(cmp.Compare(a.namespace, b.namespace), cmp.Compare(a.table, b.table), cmp.Compare(a.position, b.position))
	})
	// primary keys first, then by name
	pkFirst := func(k schema.IndexKind) int {
		if k == schema.IndexPrimaryKey {
			return 0
		}
		return 1
	}
	slices.SortStableFunc(c.indexes, func(a, b catalogIndex) int {
		return cmp.Or(cmp.Compare(a.namespace, b.namespace), cmp.Compare(a.table, b.table),
			cmp.Compare(pkFirst(a.kind), pkFirst(b.kind)), cmp.Compare(a.name, b.name))
	})
	slices.SortStableFunc(c.foreignKeys, func(a, b catalogForeignKey) int {
		return cmp.Or(cmp.Compare(a.namespace, b.namespace), cmp.Compare(a.table, b.table), cmp.Compare(a.name, b.name))
	})
	slices.SortStableFunc(c.enums, func(a, b catalogEnum) int {
		return cmp.Or(cmp.Compare(a.namespace, b.namespace), cmp.Compare(a.name, b.name))
	})
	slices.SortStableFunc(c.sequences, func(a, b catalogSequence) int {
		return cmp.Or(cmp.Compare(a.namespace, b.namespace), cmp.Compare(a.seq.Name, b.seq.Name))
	})
	slices.SortStableFunc(c.views, func(a, b catalogView) int {
		return cmp.Or(cmp.Compare(a.namespace, b.namespace), cmp.Compare(a.name, b.name))
	})

	b := schema.NewBuilder()
	for _, ns := range c.namespaces {
		if _, err := b.AddNamespace(ns); err != nil {
			return nil, err
		}
	}
	nsID := func(name string) schema.NamespaceID { return b.EnsureNamespace(name) }

	for _, e := range c.enums {
		if _, err := b.AddEnum(schema.Enum{Namespace: nsID(e.namespace), Name: e.name, Values: e.values}); err != nil {
			return nil, err
		}
	}
	for _, s := range c.sequences {
		s.seq.Namespace = nsID(s.namespace)
		if _, err := b.AddSequence(s.seq); err != nil {
			return nil, err
		}
	}
	for _, t := range c.tables {
		if _, err := b.AddTable(schema.Table{Namespace: nsID(t.namespace), Name: t.name, Properties: t.properties}); err != nil {
			return nil, err
		}
	}
	for _, col := range c.columns {
		tid, ok := b.Table(nsID(col.namespace), col.table)
		if !ok {
			continue
		}
		typ := col.typ
		if col.enumName != "" {
			eid, ok := b.Enum(nsID(col.enumNamespace), col.enumName)
			if !ok {
				return nil, fmt.Errorf("column %s.%s uses unknown enum %s.%s", col.table, col.name, col.enumNamespace, col.enumName)
			}
			typ.Family = schema.FamilyEnum
			typ.Enum = eid
		}
		if _, err := b.AddColumn(schema.Column{
			Table:         tid,
			Name:          col.name,
			Type:          typ,
			Default:       col.def,
			AutoIncrement: col.autoIncrement,
		}); err != nil {
			return nil, err
		}
	}
	for _, idx := range c.indexes {
		tid, ok := b.Table(nsID(idx.namespace), idx.table)
		if !ok {
			continue
		}
		out := schema.Index{Table: tid, Name: idx.name, Kind: idx.kind, Algorithm: idx.algorithm, Predicate: idx.predicate}
		for _, ic := range idx.columns {
			cid, ok := b.Column(tid, ic.name)
			if !ok {
				return nil, fmt.Errorf("index %s on %s uses unknown column %s", idx.name, idx.table, ic.name)
			}
			out.Columns = append(out.Columns, schema.IndexColumn{
				Column:        cid,
				SortOrder:     ic.sortOrder,
				OperatorClass: ic.operatorClass,
				Length:        ic.length,
			})
		}
		if _, err := b.AddIndex(out); err != nil {
			return nil, err
		}
	}
	for _, fk := range c.foreignKeys {
		tid, ok := b.Table(nsID(fk.namespace), fk.table)
		if !ok {
			continue
		}
		ref, ok := b.Table(nsID(fk.refNamespace), fk.refTable)
		if !ok {
			continue
		}
		out := schema.ForeignKey{Table: tid, Referenced: ref, Name: fk.name, OnDelete: fk.onDelete, OnUpdate: fk.onUpdate}
		for i := range fk.columns {
			col, ok := b.Column(tid, fk.columns[i])
			if !ok {
				return nil, fmt.Errorf("foreign key %s uses unknown column %s", fk.name, fk.columns[i])
			}
			refCol, ok := b.Column(ref, fk.refColumns[i])
			if !ok {
				return nil, fmt.Errorf("foreign key %s references unknown column %s", fk.name, fk.refColumns[i])
			}
			out.Columns = append(out.Columns, schema.ForeignKeyColumn{Column: col, Referenced: refCol})
		}
		if _, err := b.AddForeignKey(out); err != nil {
			return nil, err
		}
	}
	for _, v := range c.views {
		if _, err := b.AddView(schema.View{Namespace: nsID(v.namespace), Name: v.name, Definition: v.definition}); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}
