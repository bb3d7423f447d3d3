// Package schema holds the connector-agnostic model of a database structure.
//
// A Schema is built once through a Builder and then only read through walkers.
// Entities live in flat arenas and refer to each other by integer handles, so
// two snapshots never share state and comparing them never mutates either.
package schema

import (
	"fmt"
)

// Schema is an immutable snapshot of a database structure.
type Schema struct {
	namespaces  []Namespace
	tables      []Table
	columns     []Column
	indexes     []Index
	foreignKeys []ForeignKey
	enums       []Enum
	sequences   []Sequence
	views       []View

	tableColumns     [][]ColumnID
	tableIndexes     [][]IndexID
	tableForeignKeys [][]ForeignKeyID
	referencedBy     [][]ForeignKeyID
}

// Empty returns a schema with no entities.
func Empty() *Schema {
	return NewBuilder().Build()
}

// IsEmpty reports whether the schema holds no tables, enums, sequences or views.
func (s *Schema) IsEmpty() bool {
	return len(s.tables) == 0 && len(s.enums) == 0 && len(s.sequences) == 0 && len(s.views) == 0
}

type nameKey struct {
	kind  string
	scope int
	name  string
}

// Builder accumulates entities and rejects name collisions as they happen.
// Handles are assigned densely in insertion order.
type Builder struct {
	s      *Schema
	names  map[nameKey]int
	hasPK  map[TableID]bool
	frozen bool
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		s:     &Schema{},
		names: make(map[nameKey]int),
		hasPK: make(map[TableID]bool),
	}
}

func (b *Builder) claim(kind string, scope int, name, scopeName string, id int) error {
	k := nameKey{kind: kind, scope: scope, name: name}
	if _, taken := b.names[k]; taken {
		return &DuplicateNameError{Kind: kind, Scope: scopeName, Name: name}
	}
	b.names[k] = id
	return nil
}

func (b *Builder) lookup(kind string, scope int, name string) (int, bool) {
	id, ok := b.names[nameKey{kind: kind, scope: scope, name: name}]
	return id, ok
}

func (b *Builder) checkOpen() {
	if b.frozen {
		panic("schema: builder used after Build")
	}
}

func (b *Builder) namespaceName(id NamespaceID) string {
	return b.s.namespaces[id].Name
}

func (b *Builder) tableScope(id TableID) string {
	t := b.s.tables[id]
	if ns := b.namespaceName(t.Namespace); ns != "" {
		return ns + "." + t.Name
	}
	return t.Name
}

// AddNamespace registers a namespace. Dialects without namespaces use a single
// namespace named "".
func (b *Builder) AddNamespace(name string) (NamespaceID, error) {
	b.checkOpen()
	if err := b.claim("namespace", 0, name, "", len(b.s.namespaces)); err != nil {
		return 0, err
	}
	b.s.namespaces = append(b.s.namespaces, Namespace{Name: name})
	return NamespaceID(len(b.s.namespaces) - 1), nil
}

// Namespace looks up a namespace by name.
func (b *Builder) Namespace(name string) (NamespaceID, bool) {
	id, ok := b.lookup("namespace", 0, name)
	return NamespaceID(id), ok
}

// EnsureNamespace returns the namespace with the given name, adding it if needed.
func (b *Builder) EnsureNamespace(name string) NamespaceID {
	if id, ok := b.Namespace(name); ok {
		return id
	}
	id, _ := b.AddNamespace(name)
	return id
}

func (b *Builder) validNamespace(id NamespaceID) error {
	if int(id) < 0 || int(id) >= len(b.s.namespaces) {
		return fmt.Errorf("namespace handle %d out of range", id)
	}
	return nil
}

func (b *Builder) validTable(id TableID) error {
	if int(id) < 0 || int(id) >= len(b.s.tables) {
		return fmt.Errorf("table handle %d out of range", id)
	}
	return nil
}

func (b *Builder) validColumnOf(id ColumnID, table TableID) error {
	if int(id) < 0 || int(id) >= len(b.s.columns) {
		return fmt.Errorf("column handle %d out of range", id)
	}
	if b.s.columns[id].Table != table {
		return fmt.Errorf("column %q does not belong to table %q", b.s.columns[id].Name, b.s.tables[table].Name)
	}
	return nil
}

// AddTable registers a table. Names are unique within a namespace.
func (b *Builder) AddTable(t Table) (TableID, error) {
	b.checkOpen()
	if err := b.validNamespace(t.Namespace); err != nil {
		return 0, err
	}
	if err := b.claim("table", int(t.Namespace), t.Name, b.namespaceName(t.Namespace), len(b.s.tables)); err != nil {
		return 0, err
	}
	b.s.tables = append(b.s.tables, t)
	return TableID(len(b.s.tables) - 1), nil
}

// Table looks up a table by namespace and name.
func (b *Builder) Table(ns NamespaceID, name string) (TableID, bool) {
	id, ok := b.lookup("table", int(ns), name)
	return TableID(id), ok
}

// AddColumn registers a column. Names are unique within a table.
func (b *Builder) AddColumn(c Column) (ColumnID, error) {
	b.checkOpen()
	if err := b.validTable(c.Table); err != nil {
		return 0, err
	}
	if c.Type.Family == FamilyEnum {
		if int(c.Type.Enum) < 0 || int(c.Type.Enum) >= len(b.s.enums) {
			return 0, fmt.Errorf("column %q references unknown enum handle %d", c.Name, c.Type.Enum)
		}
	}
	if err := b.claim("column", int(c.Table), c.Name, b.tableScope(c.Table), len(b.s.columns)); err != nil {
		return 0, err
	}
	b.s.columns = append(b.s.columns, c)
	return ColumnID(len(b.s.columns) - 1), nil
}

// Column looks up a column of a table by name.
func (b *Builder) Column(table TableID, name string) (ColumnID, bool) {
	id, ok := b.lookup("column", int(table), name)
	return ColumnID(id), ok
}

// AddIndex registers an index with its ordered columns. A table has at most one
// primary key; other indexes must be uniquely named within the table.
func (b *Builder) AddIndex(idx Index) (IndexID, error) {
	b.checkOpen()
	if err := b.validTable(idx.Table); err != nil {
		return 0, err
	}
	if len(idx.Columns) == 0 {
		return 0, fmt.Errorf("index %q on %q has no columns", idx.Name, b.tableScope(idx.Table))
	}
	for _, ic := range idx.Columns {
		if err := b.validColumnOf(ic.Column, idx.Table); err != nil {
			return 0, fmt.Errorf("index %q: %w", idx.Name, err)
		}
	}
	if idx.Kind == IndexPrimaryKey {
		if b.hasPK[idx.Table] {
			return 0, &DuplicateNameError{Kind: "primary key", Scope: b.tableScope(idx.Table), Name: idx.Name}
		}
		b.hasPK[idx.Table] = true
	}
	if idx.Name != "" {
		if err := b.claim("index", int(idx.Table), idx.Name, b.tableScope(idx.Table), len(b.s.indexes)); err != nil {
			return 0, err
		}
	}
	idx.Columns = append([]IndexColumn(nil), idx.Columns...)
	b.s.indexes = append(b.s.indexes, idx)
	return IndexID(len(b.s.indexes) - 1), nil
}

// AddForeignKey registers a foreign key. Constrained and referenced column lists
// must have the same length; unnamed foreign keys are allowed.
func (b *Builder) AddForeignKey(fk ForeignKey) (ForeignKeyID, error) {
	b.checkOpen()
	if err := b.validTable(fk.Table); err != nil {
		return 0, err
	}
	if err := b.validTable(fk.Referenced); err != nil {
		return 0, err
	}
	if len(fk.Columns) == 0 {
		return 0, fmt.Errorf("foreign key %q on %q has no columns", fk.Name, b.tableScope(fk.Table))
	}
	for _, c := range fk.Columns {
		if err := b.validColumnOf(c.Column, fk.Table); err != nil {
			return 0, fmt.Errorf("foreign key %q: %w", fk.Name, err)
		}
		if err := b.validColumnOf(c.Referenced, fk.Referenced); err != nil {
			return 0, fmt.Errorf("foreign key %q: %w", fk.Name, err)
		}
	}
	if fk.Name != "" {
		if err := b.claim("foreign key", int(fk.Table), fk.Name, b.tableScope(fk.Table), len(b.s.foreignKeys)); err != nil {
			return 0, err
		}
	}
	fk.Columns = append([]ForeignKeyColumn(nil), fk.Columns...)
	b.s.foreignKeys = append(b.s.foreignKeys, fk)
	return ForeignKeyID(len(b.s.foreignKeys) - 1), nil
}

// AddEnum registers an enum. Names are unique within a namespace.
func (b *Builder) AddEnum(e Enum) (EnumID, error) {
	b.checkOpen()
	if err := b.validNamespace(e.Namespace); err != nil {
		return 0, err
	}
	if err := b.claim("enum", int(e.Namespace), e.Name, b.namespaceName(e.Namespace), len(b.s.enums)); err != nil {
		return 0, err
	}
	e.Values = append([]string(nil), e.Values...)
	b.s.enums = append(b.s.enums, e)
	return EnumID(len(b.s.enums) - 1), nil
}

// Enum looks up an enum by namespace and name.
func (b *Builder) Enum(ns NamespaceID, name string) (EnumID, bool) {
	id, ok := b.lookup("enum", int(ns), name)
	return EnumID(id), ok
}

// AddSequence registers a sequence. Names are unique within a namespace.
func (b *Builder) AddSequence(seq Sequence) (SequenceID, error) {
	b.checkOpen()
	if err := b.validNamespace(seq.Namespace); err != nil {
		return 0, err
	}
	if err := b.claim("sequence", int(seq.Namespace), seq.Name, b.namespaceName(seq.Namespace), len(b.s.sequences)); err != nil {
		return 0, err
	}
	b.s.sequences = append(b.s.sequences, seq)
	return SequenceID(len(b.s.sequences) - 1), nil
}

// AddView registers a view. Names are unique within a namespace.
func (b *Builder) AddView(v View) (ViewID, error) {
	b.checkOpen()
	if err := b.validNamespace(v.Namespace); err != nil {
		return 0, err
	}
	if err := b.claim("view", int(v.Namespace), v.Name, b.namespaceName(v.Namespace), len(b.s.views)); err != nil {
		return 0, err
	}
	b.s.views = append(b.s.views, v)
	return ViewID(len(b.s.views) - 1), nil
}

// Build freezes the builder and returns the finished snapshot.
func (b *Builder) Build() *Schema {
	b.checkOpen()
	b.frozen = true

	s := b.s
	s.tableColumns = make([][]ColumnID, len(s.tables))
	s.tableIndexes = make([][]IndexID, len(s.tables))
	s.tableForeignKeys = make([][]ForeignKeyID, len(s.tables))
	s.referencedBy = make([][]ForeignKeyID, len(s.tables))

	for i, c := range s.columns {
		s.tableColumns[c.Table] = append(s.tableColumns[c.Table], ColumnID(i))
	}
	for i, idx := range s.indexes {
		s.tableIndexes[idx.Table] = append(s.tableIndexes[idx.Table], IndexID(i))
	}
	for i, fk := range s.foreignKeys {
		s.tableForeignKeys[fk.Table] = append(s.tableForeignKeys[fk.Table], ForeignKeyID(i))
		s.referencedBy[fk.Referenced] = append(s.referencedBy[fk.Referenced], ForeignKeyID(i))
	}
	return s
}

// Sequence looks up a sequence by namespace and name.
func (b *Builder) Sequence(ns NamespaceID, name string) (SequenceID, bool) {
	id, ok := b.lookup("sequence", int(ns), name)
	return SequenceID(id), ok
}
