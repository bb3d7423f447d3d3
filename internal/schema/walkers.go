package schema

import "slices"

// Walkers are read-only views over one snapshot. They are cheap values and can
// be copied freely.

// NamespaceWalker views a namespace.
type NamespaceWalker struct {
	s  *Schema
	ID NamespaceID
}

func (w NamespaceWalker) Name() string { return w.s.namespaces[w.ID].Name }

// TableWalker views a table.
type TableWalker struct {
	s  *Schema
	ID TableID
}

// ColumnWalker views a column.
type ColumnWalker struct {
	s  *Schema
	ID ColumnID
}

// IndexWalker views an index.
type IndexWalker struct {
	s  *Schema
	ID IndexID
}

// IndexColumnWalker views one entry of an index.
type IndexColumnWalker struct {
	s   *Schema
	idx IndexID
	pos int
}

// ForeignKeyWalker views a foreign key.
type ForeignKeyWalker struct {
	s  *Schema
	ID ForeignKeyID
}

// EnumWalker views an enum.
type EnumWalker struct {
	s  *Schema
	ID EnumID
}

// SequenceWalker views a sequence.
type SequenceWalker struct {
	s  *Schema
	ID SequenceID
}

// ViewWalker views a view.
type ViewWalker struct {
	s  *Schema
	ID ViewID
}

// Namespaces returns every namespace in handle order.
func (s *Schema) Namespaces() []NamespaceWalker {
	out := make([]NamespaceWalker, len(s.namespaces))
	for i := range s.namespaces {
		out[i] = NamespaceWalker{s: s, ID: NamespaceID(i)}
	}
	return out
}

// Tables returns every table in handle order.
func (s *Schema) Tables() []TableWalker {
	out := make([]TableWalker, len(s.tables))
	for i := range s.tables {
		out[i] = TableWalker{s: s, ID: TableID(i)}
	}
	return out
}

// Enums returns every enum in handle order.
func (s *Schema) Enums() []EnumWalker {
	out := make([]EnumWalker, len(s.enums))
	for i := range s.enums {
		out[i] = EnumWalker{s: s, ID: EnumID(i)}
	}
	return out
}

// Sequences returns every sequence in handle order.
func (s *Schema) Sequences() []SequenceWalker {
	out := make([]SequenceWalker, len(s.sequences))
	for i := range s.sequences {
		out[i] = SequenceWalker{s: s, ID: SequenceID(i)}
	}
	return out
}

// Views returns every view in handle order.
func (s *Schema) Views() []ViewWalker {
	out := make([]ViewWalker, len(s.views))
	for i := range s.views {
		out[i] = ViewWalker{s: s, ID: ViewID(i)}
	}
	return out
}

// ForeignKeys returns every foreign key in handle order.
func (s *Schema) ForeignKeys() []ForeignKeyWalker {
	out := make([]ForeignKeyWalker, len(s.foreignKeys))
	for i := range s.foreignKeys {
		out[i] = ForeignKeyWalker{s: s, ID: ForeignKeyID(i)}
	}
	return out
}

// Namespace, Table, Column, Index, ForeignKey, Enum, Sequence and View wrap a
// handle of this snapshot. Passing a handle from another snapshot is a
// programming error and panics on the first out-of-range access.

func (s *Schema) Namespace(id NamespaceID) NamespaceWalker { return NamespaceWalker{s: s, ID: id} }
func (s *Schema) Table(id TableID) TableWalker             { return TableWalker{s: s, ID: id} }
func (s *Schema) Column(id ColumnID) ColumnWalker          { return ColumnWalker{s: s, ID: id} }
func (s *Schema) Index(id IndexID) IndexWalker             { return IndexWalker{s: s, ID: id} }
func (s *Schema) ForeignKey(id ForeignKeyID) ForeignKeyWalker {
	return ForeignKeyWalker{s: s, ID: id}
}
func (s *Schema) Enum(id EnumID) EnumWalker             { return EnumWalker{s: s, ID: id} }
func (s *Schema) Sequence(id SequenceID) SequenceWalker { return SequenceWalker{s: s, ID: id} }
func (s *Schema) View(id ViewID) ViewWalker             { return ViewWalker{s: s, ID: id} }

// FindNamespace looks up a namespace by name.
func (s *Schema) FindNamespace(name string) (NamespaceWalker, bool) {
	for i, ns := range s.namespaces {
		if ns.Name == name {
			return NamespaceWalker{s: s, ID: NamespaceID(i)}, true
		}
	}
	return NamespaceWalker{}, false
}

// FindTable looks up a table by namespace and name.
func (s *Schema) FindTable(namespace, name string) (TableWalker, bool) {
	for i, t := range s.tables {
		if t.Name == name && s.namespaces[t.Namespace].Name == namespace {
			return TableWalker{s: s, ID: TableID(i)}, true
		}
	}
	return TableWalker{}, false
}

// FindEnum looks up an enum by namespace and name.
func (s *Schema) FindEnum(namespace, name string) (EnumWalker, bool) {
	for i, e := range s.enums {
		if e.Name == name && s.namespaces[e.Namespace].Name == namespace {
			return EnumWalker{s: s, ID: EnumID(i)}, true
		}
	}
	return EnumWalker{}, false
}

// FindSequence looks up a sequence by namespace and name.
func (s *Schema) FindSequence(namespace, name string) (SequenceWalker, bool) {
	for i, q := range s.sequences {
		if q.Name == name && s.namespaces[q.Namespace].Name == namespace {
			return SequenceWalker{s: s, ID: SequenceID(i)}, true
		}
	}
	return SequenceWalker{}, false
}

// Table

func (t TableWalker) Schema() *Schema               { return t.s }
func (t TableWalker) Name() string                  { return t.s.tables[t.ID].Name }
func (t TableWalker) NamespaceID() NamespaceID      { return t.s.tables[t.ID].Namespace }
func (t TableWalker) Namespace() string             { return t.s.namespaces[t.s.tables[t.ID].Namespace].Name }
func (t TableWalker) Properties() TableProperties   { return t.s.tables[t.ID].Properties }
func (t TableWalker) IsPartition() bool             { return t.Properties().Has(IsPartition) }
func (t TableWalker) HasRowLevelSecurity() bool     { return t.Properties().Has(HasRowLevelSecurity) }

// QualifiedName is "namespace.name", or just the name without a namespace.
func (t TableWalker) QualifiedName() string {
	if ns := t.Namespace(); ns != "" {
		return ns + "." + t.Name()
	}
	return t.Name()
}

// Columns returns the columns in their defined order.
func (t TableWalker) Columns() []ColumnWalker {
	ids := t.s.tableColumns[t.ID]
	out := make([]ColumnWalker, len(ids))
	for i, id := range ids {
		out[i] = ColumnWalker{s: t.s, ID: id}
	}
	return out
}

// Column finds a column by name.
func (t TableWalker) Column(name string) (ColumnWalker, bool) {
	for _, id := range t.s.tableColumns[t.ID] {
		if t.s.columns[id].Name == name {
			return ColumnWalker{s: t.s, ID: id}, true
		}
	}
	return ColumnWalker{}, false
}

// Indexes returns all indexes of the table, the primary key included.
func (t TableWalker) Indexes() []IndexWalker {
	ids := t.s.tableIndexes[t.ID]
	out := make([]IndexWalker, len(ids))
	for i, id := range ids {
		out[i] = IndexWalker{s: t.s, ID: id}
	}
	return out
}

// PrimaryKey returns the primary key index if the table has one.
func (t TableWalker) PrimaryKey() (IndexWalker, bool) {
	for _, id := range t.s.tableIndexes[t.ID] {
		if t.s.indexes[id].Kind == IndexPrimaryKey {
			return IndexWalker{s: t.s, ID: id}, true
		}
	}
	return IndexWalker{}, false
}

// ForeignKeys returns the foreign keys constraining this table.
func (t TableWalker) ForeignKeys() []ForeignKeyWalker {
	ids := t.s.tableForeignKeys[t.ID]
	out := make([]ForeignKeyWalker, len(ids))
	for i, id := range ids {
		out[i] = ForeignKeyWalker{s: t.s, ID: id}
	}
	return out
}

// ReferencingForeignKeys returns the foreign keys pointing at this table.
func (t TableWalker) ReferencingForeignKeys() []ForeignKeyWalker {
	ids := t.s.referencedBy[t.ID]
	out := make([]ForeignKeyWalker, len(ids))
	for i, id := range ids {
		out[i] = ForeignKeyWalker{s: t.s, ID: id}
	}
	return out
}

// Column

func (c ColumnWalker) Schema() *Schema       { return c.s }
func (c ColumnWalker) Name() string          { return c.s.columns[c.ID].Name }
func (c ColumnWalker) Table() TableWalker    { return TableWalker{s: c.s, ID: c.s.columns[c.ID].Table} }
func (c ColumnWalker) Type() ColumnType      { return c.s.columns[c.ID].Type }
func (c ColumnWalker) Arity() Arity          { return c.s.columns[c.ID].Type.Arity }
func (c ColumnWalker) Family() Family        { return c.s.columns[c.ID].Type.Family }
func (c ColumnWalker) Native() NativeType    { return c.s.columns[c.ID].Type.Native }
func (c ColumnWalker) FullDataType() string  { return c.s.columns[c.ID].Type.FullDataType }
func (c ColumnWalker) AutoIncrement() bool   { return c.s.columns[c.ID].AutoIncrement }
func (c ColumnWalker) IsRequired() bool      { return c.Arity() == Required }
func (c ColumnWalker) IsList() bool          { return c.Arity() == List }

// Default returns the column default, or nil.
func (c ColumnWalker) Default() *Default {
	d := c.s.columns[c.ID].Default
	if d == nil {
		return nil
	}
	cp := *d
	return &cp
}

// Enum returns the enum the column is typed with, if any.
func (c ColumnWalker) Enum() (EnumWalker, bool) {
	t := c.s.columns[c.ID].Type
	if t.Family != FamilyEnum {
		return EnumWalker{}, false
	}
	return EnumWalker{s: c.s, ID: t.Enum}, true
}

// TypeName is the native type if known, the full data type otherwise.
func (c ColumnWalker) TypeName() string {
	if n := c.Native(); !n.IsZero() {
		return n.String()
	}
	if e, ok := c.Enum(); ok {
		return e.Name()
	}
	return c.FullDataType()
}

// IsPartOfPrimaryKey reports whether the column is covered by the primary key.
func (c ColumnWalker) IsPartOfPrimaryKey() bool {
	pk, ok := c.Table().PrimaryKey()
	if !ok {
		return false
	}
	return pk.ContainsColumn(c.ID)
}

// Index

func (i IndexWalker) Schema() *Schema           { return i.s }
func (i IndexWalker) Name() string              { return i.s.indexes[i.ID].Name }
func (i IndexWalker) Kind() IndexKind           { return i.s.indexes[i.ID].Kind }
func (i IndexWalker) Algorithm() IndexAlgorithm { return i.s.indexes[i.ID].Algorithm }
func (i IndexWalker) Predicate() string         { return i.s.indexes[i.ID].Predicate }
func (i IndexWalker) IsUnique() bool            { return i.Kind().IsUnique() }
func (i IndexWalker) IsPrimaryKey() bool        { return i.Kind() == IndexPrimaryKey }
func (i IndexWalker) Table() TableWalker        { return TableWalker{s: i.s, ID: i.s.indexes[i.ID].Table} }

// Columns returns the index entries in index order.
func (i IndexWalker) Columns() []IndexColumnWalker {
	n := len(i.s.indexes[i.ID].Columns)
	out := make([]IndexColumnWalker, n)
	for p := 0; p < n; p++ {
		out[p] = IndexColumnWalker{s: i.s, idx: i.ID, pos: p}
	}
	return out
}

// ColumnNames returns the names of the indexed columns in order.
func (i IndexWalker) ColumnNames() []string {
	cols := i.s.indexes[i.ID].Columns
	out := make([]string, len(cols))
	for p, c := range cols {
		out[p] = i.s.columns[c.Column].Name
	}
	return out
}

// ContainsColumn reports whether the column is one of the index entries.
func (i IndexWalker) ContainsColumn(id ColumnID) bool {
	for _, c := range i.s.indexes[i.ID].Columns {
		if c.Column == id {
			return true
		}
	}
	return false
}

func (c IndexColumnWalker) entry() IndexColumn   { return c.s.indexes[c.idx].Columns[c.pos] }
func (c IndexColumnWalker) Column() ColumnWalker { return ColumnWalker{s: c.s, ID: c.entry().Column} }
func (c IndexColumnWalker) Name() string         { return c.s.columns[c.entry().Column].Name }
func (c IndexColumnWalker) SortOrder() SortOrder { return c.entry().SortOrder }
func (c IndexColumnWalker) OperatorClass() string {
	return c.entry().OperatorClass
}
func (c IndexColumnWalker) Length() int { return c.entry().Length }

// ForeignKey

func (f ForeignKeyWalker) Schema() *Schema  { return f.s }
func (f ForeignKeyWalker) Name() string     { return f.s.foreignKeys[f.ID].Name }
func (f ForeignKeyWalker) OnDelete() Action { return f.s.foreignKeys[f.ID].OnDelete }
func (f ForeignKeyWalker) OnUpdate() Action { return f.s.foreignKeys[f.ID].OnUpdate }
func (f ForeignKeyWalker) Table() TableWalker {
	return TableWalker{s: f.s, ID: f.s.foreignKeys[f.ID].Table}
}
func (f ForeignKeyWalker) ReferencedTable() TableWalker {
	return TableWalker{s: f.s, ID: f.s.foreignKeys[f.ID].Referenced}
}

// Columns returns the constrained columns in order.
func (f ForeignKeyWalker) Columns() []ColumnWalker {
	cols := f.s.foreignKeys[f.ID].Columns
	out := make([]ColumnWalker, len(cols))
	for i, c := range cols {
		out[i] = ColumnWalker{s: f.s, ID: c.Column}
	}
	return out
}

// ReferencedColumns returns the referenced columns, matching Columns position by position.
func (f ForeignKeyWalker) ReferencedColumns() []ColumnWalker {
	cols := f.s.foreignKeys[f.ID].Columns
	out := make([]ColumnWalker, len(cols))
	for i, c := range cols {
		out[i] = ColumnWalker{s: f.s, ID: c.Referenced}
	}
	return out
}

func (f ForeignKeyWalker) ColumnNames() []string {
	return columnNames(f.Columns())
}

func (f ForeignKeyWalker) ReferencedColumnNames() []string {
	return columnNames(f.ReferencedColumns())
}

// UsesColumn reports whether the column appears on either side of the key.
func (f ForeignKeyWalker) UsesColumn(id ColumnID) bool {
	for _, c := range f.s.foreignKeys[f.ID].Columns {
		if c.Column == id || c.Referenced == id {
			return true
		}
	}
	return false
}

func columnNames(cols []ColumnWalker) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name()
	}
	return out
}

// Enum

func (e EnumWalker) Name() string             { return e.s.enums[e.ID].Name }
func (e EnumWalker) Namespace() string        { return e.s.namespaces[e.s.enums[e.ID].Namespace].Name }
func (e EnumWalker) NamespaceID() NamespaceID { return e.s.enums[e.ID].Namespace }
func (e EnumWalker) Values() []string         { return slices.Clone(e.s.enums[e.ID].Values) }

// Sequence

func (q SequenceWalker) Name() string             { return q.s.sequences[q.ID].Name }
func (q SequenceWalker) Namespace() string        { return q.s.namespaces[q.s.sequences[q.ID].Namespace].Name }
func (q SequenceWalker) NamespaceID() NamespaceID { return q.s.sequences[q.ID].Namespace }
func (q SequenceWalker) Get() Sequence            { return q.s.sequences[q.ID] }

// View

func (v ViewWalker) Name() string             { return v.s.views[v.ID].Name }
func (v ViewWalker) Namespace() string        { return v.s.namespaces[v.s.views[v.ID].Namespace].Name }
func (v ViewWalker) NamespaceID() NamespaceID { return v.s.views[v.ID].Namespace }
func (v ViewWalker) Definition() string       { return v.s.views[v.ID].Definition }
