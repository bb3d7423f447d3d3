package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildUsers(t *testing.T) *Schema {
	t.Helper()

	b := NewBuilder()
	ns := b.EnsureNamespace("public")

	status, err := b.AddEnum(Enum{Namespace: ns, Name: "status", Values: []string{"active", "banned"}})
	require.NoError(t, err)

	users, err := b.AddTable(Table{Namespace: ns, Name: "users"})
	require.NoError(t, err)
	id, err := b.AddColumn(Column{Table: users, Name: "id", Type: ColumnType{FullDataType: "integer", Family: FamilyInt, Native: Native("Integer")}, AutoIncrement: true})
	require.NoError(t, err)
	email, err := b.AddColumn(Column{Table: users, Name: "email", Type: ColumnType{FullDataType: "character varying(255)", Family: FamilyString, Native: Native("VarChar", "255")}})
	require.NoError(t, err)
	_, err = b.AddColumn(Column{Table: users, Name: "status", Type: ColumnType{FullDataType: "status", Family: FamilyEnum, Arity: Nullable, Enum: status}})
	require.NoError(t, err)

	_, err = b.AddIndex(Index{Table: users, Name: "users_pkey", Kind: IndexPrimaryKey, Columns: []IndexColumn{{Column: id}}})
	require.NoError(t, err)
	_, err = b.AddIndex(Index{Table: users, Name: "users_email_key", Kind: IndexUnique, Columns: []IndexColumn{{Column: email, SortOrder: Desc}}})
	require.NoError(t, err)

	posts, err := b.AddTable(Table{Namespace: ns, Name: "posts"})
	require.NoError(t, err)
	pid, err := b.AddColumn(Column{Table: posts, Name: "id", Type: ColumnType{FullDataType: "integer", Family: FamilyInt}})
	require.NoError(t, err)
	author, err := b.AddColumn(Column{Table: posts, Name: "author_id", Type: ColumnType{FullDataType: "integer", Family: FamilyInt}})
	require.NoError(t, err)
	_, err = b.AddIndex(Index{Table: posts, Name: "posts_pkey", Kind: IndexPrimaryKey, Columns: []IndexColumn{{Column: pid}}})
	require.NoError(t, err)
	_, err = b.AddForeignKey(ForeignKey{
		Table:      posts,
		Referenced: users,
		Name:       "posts_author_id_fkey",
		OnDelete:   Cascade,
		Columns:    []ForeignKeyColumn{{Column: author, Referenced: id}},
	})
	require.NoError(t, err)

	return b.Build()
}

func TestBuilderAndWalkers(t *testing.T) {
	s := buildUsers(t)

	users, ok := s.FindTable("public", "users")
	require.True(t, ok)
	assert.Equal(t, "public.users", users.QualifiedName())
	assert.Equal(t, []string{"id", "email", "status"}, columnNames(users.Columns()))

	pk, ok := users.PrimaryKey()
	require.True(t, ok)
	assert.Equal(t, []string{"id"}, pk.ColumnNames())

	id, ok := users.Column("id")
	require.True(t, ok)
	assert.True(t, id.IsPartOfPrimaryKey())
	assert.True(t, id.AutoIncrement())
	assert.Equal(t, "Integer", id.TypeName())

	email, _ := users.Column("email")
	assert.Equal(t, "VarChar(255)", email.TypeName())
	assert.False(t, email.IsPartOfPrimaryKey())

	status, _ := users.Column("status")
	e, ok := status.Enum()
	require.True(t, ok)
	assert.Equal(t, "status", e.Name())
	assert.Equal(t, []string{"active", "banned"}, e.Values())
	assert.Equal(t, "status", status.TypeName())
	assert.False(t, status.IsRequired())

	refs := users.ReferencingForeignKeys()
	require.Len(t, refs, 1)
	assert.Equal(t, "posts_author_id_fkey", refs[0].Name())
	assert.Equal(t, "posts", refs[0].Table().Name())
	assert.Equal(t, []string{"author_id"}, refs[0].ColumnNames())
	assert.Equal(t, []string{"id"}, refs[0].ReferencedColumnNames())
	assert.Equal(t, Cascade, refs[0].OnDelete())
	assert.True(t, refs[0].UsesColumn(id.ID))

	var unique IndexWalker
	for _, idx := range users.Indexes() {
		if idx.Kind() == IndexUnique {
			unique = idx
		}
	}
	cols := unique.Columns()
	require.Len(t, cols, 1)
	assert.Equal(t, "email", cols[0].Name())
	assert.Equal(t, Desc, cols[0].SortOrder())
}

func TestBuilderRejectsDuplicates(t *testing.T) {
	tests := []struct {
		name string
		add  func(b *Builder, ns NamespaceID, tbl TableID, col ColumnID) error
		kind string
	}{
		{
			name: "table",
			add: func(b *Builder, ns NamespaceID, _ TableID, _ ColumnID) error {
				_, err := b.AddTable(Table{Namespace: ns, Name: "A"})
				return err
			},
			kind: "table",
		},
		{
			name: "column",
			add: func(b *Builder, _ NamespaceID, tbl TableID, _ ColumnID) error {
				_, err := b.AddColumn(Column{Table: tbl, Name: "x"})
				return err
			},
			kind: "column",
		},
		{
			name: "second primary key",
			add: func(b *Builder, _ NamespaceID, tbl TableID, col ColumnID) error {
				_, err := b.AddIndex(Index{Table: tbl, Name: "other_pkey", Kind: IndexPrimaryKey, Columns: []IndexColumn{{Column: col}}})
				return err
			},
			kind: "primary key",
		},
		{
			name: "enum",
			add: func(b *Builder, ns NamespaceID, _ TableID, _ ColumnID) error {
				if _, err := b.AddEnum(Enum{Namespace: ns, Name: "mood"}); err != nil {
					return err
				}
				_, err := b.AddEnum(Enum{Namespace: ns, Name: "mood"})
				return err
			},
			kind: "enum",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			ns := b.EnsureNamespace("app")
			tbl, err := b.AddTable(Table{Namespace: ns, Name: "A"})
			require.NoError(t, err)
			col, err := b.AddColumn(Column{Table: tbl, Name: "x"})
			require.NoError(t, err)
			_, err = b.AddIndex(Index{Table: tbl, Name: "A_pkey", Kind: IndexPrimaryKey, Columns: []IndexColumn{{Column: col}}})
			require.NoError(t, err)

			err = tt.add(b, ns, tbl, col)
			var dup *DuplicateNameError
			require.True(t, errors.As(err, &dup), "expected DuplicateNameError, got %v", err)
			assert.Equal(t, tt.kind, dup.Kind)
		})
	}
}

func TestSameNameInDifferentNamespaces(t *testing.T) {
	b := NewBuilder()
	a := b.EnsureNamespace("a")
	c := b.EnsureNamespace("b")
	_, err := b.AddTable(Table{Namespace: a, Name: "User"})
	require.NoError(t, err)
	_, err = b.AddTable(Table{Namespace: c, Name: "User"})
	require.NoError(t, err)
}

func TestAddIndexValidatesColumns(t *testing.T) {
	b := NewBuilder()
	ns := b.EnsureNamespace("")
	a, _ := b.AddTable(Table{Namespace: ns, Name: "A"})
	other, _ := b.AddTable(Table{Namespace: ns, Name: "B"})
	col, _ := b.AddColumn(Column{Table: other, Name: "y"})

	_, err := b.AddIndex(Index{Table: a, Name: "idx"})
	assert.Error(t, err)

	_, err = b.AddIndex(Index{Table: a, Name: "idx", Columns: []IndexColumn{{Column: col}}})
	assert.ErrorContains(t, err, "does not belong")
}

func TestBuilderFrozenAfterBuild(t *testing.T) {
	b := NewBuilder()
	b.Build()
	assert.Panics(t, func() { _, _ = b.AddNamespace("late") })
}

func TestNativeType(t *testing.T) {
	n := ParseNativeType("Decimal(10, 2)")
	assert.Equal(t, "Decimal", n.Name)
	assert.Equal(t, []string{"10", "2"}, n.Args)
	assert.Equal(t, "Decimal(10,2)", n.String())

	p, ok := n.Arg(1)
	assert.True(t, ok)
	assert.Equal(t, 2, p)

	assert.True(t, ParseNativeType("NVarChar(Max)").IsMax())
	assert.True(t, Native("VarChar").Equal(ParseNativeType("VarChar")))
	assert.False(t, Native("VarChar").Equal(Native("VarChar", "9")))
	assert.True(t, NativeType{}.IsZero())
}

func TestParseAction(t *testing.T) {
	assert.Equal(t, Cascade, ParseAction("c"))
	assert.Equal(t, SetNull, ParseAction("SET_NULL"))
	assert.Equal(t, Restrict, ParseAction("RESTRICT"))
	assert.Equal(t, NoAction, ParseAction("a"))
}
