// Package schematest builds schema snapshots for tests.
package schematest

import (
	"strings"

	"github.com/stretchr/testify/require"

	"github.com/tordrt/schemaplan/internal/schema"
)

// Col describes a column. Family is inferred from Type when left zero, and
// FullDataType defaults to the lowercased native type.
type Col struct {
	Name          string
	Type          string
	Family        schema.Family
	Arity         schema.Arity
	FullDataType  string
	Enum          string
	AutoIncrement bool
	Default       *schema.Default
}

// Builder wraps schema.Builder and fails the test on any error.
type Builder struct {
	t  require.TestingT
	b  *schema.Builder
	ns schema.NamespaceID
}

// New starts a snapshot whose entities go into namespace until Namespace is called.
func New(t require.TestingT, namespace string) *Builder {
	b := schema.NewBuilder()
	return &Builder{t: t, b: b, ns: b.EnsureNamespace(namespace)}
}

// Namespace switches the namespace subsequent tables and enums are added to.
func (b *Builder) Namespace(name string) *Builder {
	b.ns = b.b.EnsureNamespace(name)
	return b
}

// Enum adds an enum to the current namespace.
func (b *Builder) Enum(name string, values ...string) schema.EnumID {
	id, err := b.b.AddEnum(schema.Enum{Namespace: b.ns, Name: name, Values: values})
	require.NoError(b.t, err)
	return id
}

// Sequence adds a sequence to the current namespace.
func (b *Builder) Sequence(seq schema.Sequence) schema.SequenceID {
	seq.Namespace = b.ns
	id, err := b.b.AddSequence(seq)
	require.NoError(b.t, err)
	return id
}

// View adds a view to the current namespace.
func (b *Builder) View(name, definition string) schema.ViewID {
	id, err := b.b.AddView(schema.View{Namespace: b.ns, Name: name, Definition: definition})
	require.NoError(b.t, err)
	return id
}

// Table adds a table with its columns to the current namespace.
func (b *Builder) Table(name string, cols ...Col) schema.TableID {
	tid, err := b.b.AddTable(schema.Table{Namespace: b.ns, Name: name})
	require.NoError(b.t, err)

	for _, c := range cols {
		ct := schema.ColumnType{
			FullDataType: c.FullDataType,
			Family:       c.Family,
			Arity:        c.Arity,
		}
		if c.Enum != "" {
			eid, ok := b.b.Enum(b.ns, c.Enum)
			require.True(b.t, ok, "unknown enum %s", c.Enum)
			ct.Family = schema.FamilyEnum
			ct.Enum = eid
			if ct.FullDataType == "" {
				ct.FullDataType = c.Enum
			}
		} else if c.Type != "" {
			ct.Native = schema.ParseNativeType(c.Type)
			if ct.Family == schema.FamilyUnsupported {
				ct.Family = FamilyOf(ct.Native.Name)
			}
			if ct.FullDataType == "" {
				ct.FullDataType = strings.ToLower(ct.Native.String())
			}
		}
		_, err := b.b.AddColumn(schema.Column{
			Table:         tid,
			Name:          c.Name,
			Type:          ct,
			Default:       c.Default,
			AutoIncrement: c.AutoIncrement,
		})
		require.NoError(b.t, err)
	}
	return tid
}

// PrimaryKey adds the primary key of a table.
func (b *Builder) PrimaryKey(table schema.TableID, name string, cols ...string) schema.IndexID {
	return b.Index(table, name, schema.IndexPrimaryKey, cols...)
}

// Index adds an index. Columns may carry a " DESC" or " ASC" suffix.
func (b *Builder) Index(table schema.TableID, name string, kind schema.IndexKind, cols ...string) schema.IndexID {
	idx := schema.Index{Table: table, Name: name, Kind: kind}
	for _, def := range cols {
		fields := strings.Fields(def)
		cid, ok := b.b.Column(table, fields[0])
		require.True(b.t, ok, "unknown column %s", fields[0])
		ic := schema.IndexColumn{Column: cid}
		if len(fields) > 1 && strings.EqualFold(fields[1], "desc") {
			ic.SortOrder = schema.Desc
		}
		idx.Columns = append(idx.Columns, ic)
	}
	id, err := b.b.AddIndex(idx)
	require.NoError(b.t, err)
	return id
}

// ForeignKey adds a foreign key from cols of table to refCols of ref.
func (b *Builder) ForeignKey(table schema.TableID, name string, ref schema.TableID, cols, refCols []string) schema.ForeignKeyID {
	require.Equal(b.t, len(cols), len(refCols))
	fk := schema.ForeignKey{Table: table, Referenced: ref, Name: name}
	for i := range cols {
		c, ok := b.b.Column(table, cols[i])
		require.True(b.t, ok, "unknown column %s", cols[i])
		r, ok := b.b.Column(ref, refCols[i])
		require.True(b.t, ok, "unknown column %s", refCols[i])
		fk.Columns = append(fk.Columns, schema.ForeignKeyColumn{Column: c, Referenced: r})
	}
	id, err := b.b.AddForeignKey(fk)
	require.NoError(b.t, err)
	return id
}

// Build returns the finished snapshot.
func (b *Builder) Build() *schema.Schema {
	return b.b.Build()
}

// FamilyOf guesses the family of a native type name.
func FamilyOf(native string) schema.Family {
	return schema.FamilyOf(native)
}
