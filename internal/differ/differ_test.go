package differ

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/schemaplan/internal/dialect"
	"github.com/tordrt/schemaplan/internal/migration"
	"github.com/tordrt/schemaplan/internal/schema"
	"github.com/tordrt/schemaplan/internal/schema/schematest"
)

func describe(m *migration.Migration) []string {
	out := make([]string, 0, len(m.Steps))
	for _, s := range m.Steps {
		out = append(out, m.Describe(s))
	}
	return out
}

// blog builds a small Postgres schema; reverse adds the tables in the
// opposite order so handle assignment differs.
func blog(t *testing.T, reverse bool) *schema.Schema {
	b := schematest.New(t, "public")
	b.Enum("Role", "user", "admin")

	user := func() schema.TableID {
		id := b.Table("User",
			schematest.Col{Name: "id", Type: "Integer", AutoIncrement: true},
			schematest.Col{Name: "role", Enum: "Role"},
		)
		b.PrimaryKey(id, "User_pkey", "id")
		return id
	}
	post := func() schema.TableID {
		id := b.Table("Post",
			schematest.Col{Name: "id", Type: "Integer"},
			schematest.Col{Name: "authorId", Type: "Integer"},
		)
		b.PrimaryKey(id, "Post_pkey", "id")
		b.Index(id, "Post_authorId_idx", schema.IndexNormal, "authorId")
		return id
	}

	var u, p schema.TableID
	if reverse {
		p = post()
		u = user()
	} else {
		u = user()
		p = post()
	}
	b.ForeignKey(p, "Post_authorId_fkey", u, []string{"authorId"}, []string{"id"})
	return b.Build()
}

func emptyPublic(t *testing.T) *schema.Schema {
	return schematest.New(t, "public").Build()
}

func TestDiffIdenticalSchemasIsEmpty(t *testing.T) {
	for _, d := range dialect.All {
		if !d.Capabilities().Enums {
			continue
		}
		t.Run(d.String(), func(t *testing.T) {
			a := blog(t, false)
			m, err := Diff(a, a, Options{Dialect: d})
			require.NoError(t, err)
			assert.Empty(t, m.Steps)

			m, err = Diff(blog(t, false), blog(t, true), Options{Dialect: d})
			require.NoError(t, err)
			assert.Empty(t, m.Steps)
		})
	}
}

func TestDiffCreatesInDependencyOrder(t *testing.T) {
	m, err := Diff(emptyPublic(t), blog(t, false), Options{Dialect: dialect.Postgres})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"CreateEnum `public`.`Role`",
		"CreateTable `public`.`Post`",
		"CreateIndex `public`.`Post`.`Post_authorId_idx`",
		"CreateTable `public`.`User`",
		"AddForeignKey `public`.`Post`.`Post_authorId_fkey`",
	}, describe(m))
}

func TestDiffOrderIsIndependentOfHandleOrder(t *testing.T) {
	a, err := Diff(emptyPublic(t), blog(t, false), Options{Dialect: dialect.Postgres})
	require.NoError(t, err)
	b, err := Diff(emptyPublic(t), blog(t, true), Options{Dialect: dialect.Postgres})
	require.NoError(t, err)

	assert.Equal(t, describe(a), describe(b))
}

func TestDiffDropsInReverseOrder(t *testing.T) {
	m, err := Diff(blog(t, false), emptyPublic(t), Options{Dialect: dialect.Postgres})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"DropForeignKey `public`.`Post`.`Post_authorId_fkey`",
		"DropTable `public`.`Post`",
		"DropTable `public`.`User`",
		"DropEnum `public`.`Role`",
	}, describe(m))
}

func TestDiffTypeChangeRecreatesForeignKey(t *testing.T) {
	build := func(intType string) *schema.Schema {
		b := schematest.New(t, "public")
		u := b.Table("User", schematest.Col{Name: "id", Type: intType})
		b.PrimaryKey(u, "User_pkey", "id")
		p := b.Table("Post",
			schematest.Col{Name: "id", Type: intType},
			schematest.Col{Name: "authorId", Type: intType},
		)
		b.PrimaryKey(p, "Post_pkey", "id")
		b.ForeignKey(p, "Post_authorId_fkey", u, []string{"authorId"}, []string{"id"})
		return b.Build()
	}

	m, err := Diff(build("Integer"), build("BigInt"), Options{Dialect: dialect.Postgres})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"DropForeignKey `public`.`Post`.`Post_authorId_fkey`",
		"AlterColumnType `public`.`Post`.`authorId` from `Integer` to `BigInt`",
		"AlterColumnType `public`.`Post`.`id` from `Integer` to `BigInt`",
		"AlterColumnType `public`.`User`.`id` from `Integer` to `BigInt`",
		"AddForeignKey `public`.`Post`.`Post_authorId_fkey`",
	}, describe(m))
}

func TestDiffRenamesOnlyWhenMapped(t *testing.T) {
	prev := schematest.New(t, "public")
	prev.Table("A", schematest.Col{Name: "x", Type: "Text"})
	next := schematest.New(t, "public")
	next.Table("A", schematest.Col{Name: "y", Type: "Text"})
	a, b := prev.Build(), next.Build()

	m, err := Diff(a, b, Options{Dialect: dialect.Postgres})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"AddColumn `public`.`A`.`y`",
		"DropColumn `public`.`A`.`x`",
	}, describe(m))

	m, err = Diff(a, b, Options{
		Dialect: dialect.Postgres,
		Renames: []ColumnRename{{Namespace: "public", Table: "A", From: "x", To: "y"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"RenameColumn `public`.`A`.`x` to `y`"}, describe(m))
}

func TestDiffRenameOfUnknownColumn(t *testing.T) {
	prev := schematest.New(t, "public")
	prev.Table("A", schematest.Col{Name: "x", Type: "Text"})
	next := schematest.New(t, "public")
	next.Table("A", schematest.Col{Name: "x", Type: "Text"}, schematest.Col{Name: "y", Type: "Text"})

	m, err := Diff(prev.Build(), next.Build(), Options{
		Dialect: dialect.Postgres,
		Renames: []ColumnRename{{Namespace: "public", Table: "A", From: "nope", To: "y"}},
	})
	require.Error(t, err)
	require.Len(t, Unsupported(err), 1)
	assert.Equal(t, []string{"AddColumn `public`.`A`.`y`"}, describe(m))
}

func TestDiffColumnChanges(t *testing.T) {
	prev := schematest.New(t, "public")
	prev.Table("A",
		schematest.Col{Name: "a", Type: "Text", Arity: schema.Nullable},
		schematest.Col{Name: "b", Type: "Integer"},
	)
	next := schematest.New(t, "public")
	next.Table("A",
		schematest.Col{Name: "a", Type: "Text"},
		schematest.Col{Name: "b", Type: "Integer", Default: &schema.Default{Kind: schema.DefaultValue, Expr: "0"}},
	)

	m, err := Diff(prev.Build(), next.Build(), Options{Dialect: dialect.Postgres})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"AlterColumnNullability `public`.`A`.`a` to Required",
		"AlterColumnDefault `public`.`A`.`b`",
	}, describe(m))
}

func TestDiffEnumVariants(t *testing.T) {
	prev := schematest.New(t, "public")
	prev.Enum("Mood", "happy", "sad")
	next := schematest.New(t, "public")
	next.Enum("Mood", "happy", "ok")

	m, err := Diff(prev.Build(), next.Build(), Options{Dialect: dialect.Postgres})
	require.NoError(t, err)
	require.Len(t, m.Steps, 1)

	alter, ok := m.Steps[0].(migration.AlterEnum)
	require.True(t, ok)
	assert.Equal(t, []string{"ok"}, alter.Added)
	assert.Equal(t, []string{"sad"}, alter.Dropped)
}

func TestDiffIndexSortOrderChange(t *testing.T) {
	build := func(second string) *schema.Schema {
		b := schematest.New(t, "public")
		id := b.Table("A", schematest.Col{Name: "a", Type: "Integer"}, schematest.Col{Name: "b", Type: "Integer"})
		b.Index(id, "A_a_b_idx", schema.IndexNormal, "a DESC", second)
		return b.Build()
	}

	m, err := Diff(build("b"), build("b DESC"), Options{Dialect: dialect.Postgres})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"DropIndex `public`.`A`.`A_a_b_idx`",
		"CreateIndex `public`.`A`.`A_a_b_idx`",
	}, describe(m))
}

func TestDiffSQLServerRecreatesIndexesOnTypeChange(t *testing.T) {
	build := func(typ string) *schema.Schema {
		b := schematest.New(t, "dbo")
		id := b.Table("A", schematest.Col{Name: "x", Type: typ})
		b.Index(id, "A_x_idx", schema.IndexNormal, "x")
		return b.Build()
	}

	m, err := Diff(build("Int"), build("BigInt"), Options{Dialect: dialect.SQLServer})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"DropIndex `dbo`.`A`.`A_x_idx`",
		"AlterColumnType `dbo`.`A`.`x` from `Int` to `BigInt`",
		"CreateIndex `dbo`.`A`.`A_x_idx`",
	}, describe(m))

	m, err = Diff(build("Int"), build("BigInt"), Options{Dialect: dialect.Postgres})
	require.NoError(t, err)
	assert.Len(t, m.Steps, 1)
}

func TestDiffSQLServerIdentityToggleIsUnsupported(t *testing.T) {
	prev := schematest.New(t, "dbo")
	prev.Table("A", schematest.Col{Name: "id", Type: "Int"})
	next := schematest.New(t, "dbo")
	next.Table("A", schematest.Col{Name: "id", Type: "Int", AutoIncrement: true}, schematest.Col{Name: "b", Type: "Int", Arity: schema.Nullable})

	m, err := Diff(prev.Build(), next.Build(), Options{Dialect: dialect.SQLServer})
	require.Error(t, err)

	unsupported := Unsupported(err)
	require.Len(t, unsupported, 1)
	assert.Equal(t, "A", unsupported[0].Table)
	assert.Equal(t, "id", unsupported[0].Name)
	assert.Contains(t, err.Error(), "`dbo`.`A`.`id`")

	// The rest of the plan is still reported.
	assert.Equal(t, []string{"AddColumn `dbo`.`A`.`b`"}, describe(m))
}

func TestDiffMySQLPrimaryKeyWithAutoIncrement(t *testing.T) {
	build := func(keepIndex bool, pk ...string) *schema.Schema {
		b := schematest.New(t, "")
		id := b.Table("A",
			schematest.Col{Name: "id", Type: "Int", AutoIncrement: true},
			schematest.Col{Name: "b", Type: "Int"},
		)
		b.PrimaryKey(id, "PRIMARY", pk...)
		if keepIndex {
			b.Index(id, "A_id_idx", schema.IndexNormal, "id")
		}
		return b.Build()
	}

	_, err := Diff(build(false, "id"), build(false, "b", "id"), Options{Dialect: dialect.MySQL})
	require.Error(t, err)
	require.Len(t, Unsupported(err), 1)
	assert.Contains(t, err.Error(), "auto-increment column `id`")

	m, err := Diff(build(true, "id"), build(true, "b", "id"), Options{Dialect: dialect.MySQL})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"DropIndex `A`.`PRIMARY`",
		"CreateIndex `A`.`PRIMARY`",
	}, describe(m))
}

func TestDiffSQLiteInlinesForeignKeysOfNewTables(t *testing.T) {
	b := schematest.New(t, "")
	u := b.Table("User", schematest.Col{Name: "id", Type: "INTEGER"})
	b.PrimaryKey(u, "", "id")
	p := b.Table("Post", schematest.Col{Name: "authorId", Type: "INTEGER"})
	b.ForeignKey(p, "", u, []string{"authorId"}, []string{"id"})

	m, err := Diff(schema.Empty(), b.Build(), Options{Dialect: dialect.SQLite})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"CreateTable `Post`",
		"CreateTable `User`",
	}, describe(m))
}

func TestDiffSQLiteRowidAlias(t *testing.T) {
	table := func(typ string, autoIncrement bool) *schema.Schema {
		b := schematest.New(t, "")
		id := b.Table("users", schematest.Col{Name: "id", Type: typ, AutoIncrement: autoIncrement})
		b.PrimaryKey(id, "", "id")
		return b.Build()
	}

	tests := []struct {
		name string
		prev *schema.Schema
		next *schema.Schema
		want []string
	}{
		{
			name: "integer primary key aliases the rowid either way",
			prev: table("INTEGER", true),
			next: table("INTEGER", false),
			want: []string{},
		},
		{
			name: "other integer types do not alias the rowid",
			prev: table("INT", true),
			next: table("INT", false),
			want: []string{"AlterColumnDefault `users`.`id`"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Diff(tt.prev, tt.next, Options{Dialect: dialect.SQLite})
			require.NoError(t, err)
			assert.Equal(t, tt.want, describe(m))
		})
	}
}

func TestDiffRejectsMissingCapabilities(t *testing.T) {
	b := schematest.New(t, "dbo")
	b.Enum("Mood", "happy")
	b.Table("A", schematest.Col{Name: "tags", Type: "NVarChar(100)", Arity: schema.List})

	_, err := Diff(schematest.New(t, "dbo").Build(), b.Build(), Options{Dialect: dialect.SQLServer})
	require.Error(t, err)

	unsupported := Unsupported(err)
	require.Len(t, unsupported, 2)
	assert.Contains(t, unsupported[0].Reason, "enum")
	assert.Contains(t, unsupported[1].Reason, "list")
}

func TestDiffViewsAndNamespaces(t *testing.T) {
	prev := schematest.New(t, "public")
	prev.View("active_users", "SELECT 1")

	next := schematest.New(t, "public")
	next.View("active_users", "SELECT 2")
	next.Namespace("audit")
	next.Table("log", schematest.Col{Name: "id", Type: "Integer"})

	m, err := Diff(prev.Build(), next.Build(), Options{Dialect: dialect.Postgres})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"CreateNamespace `audit`",
		"CreateTable `audit`.`log`",
	}, describe(m))
}

func TestDiffInvalidDialect(t *testing.T) {
	_, err := Diff(nil, nil, Options{Dialect: "oracle"})
	assert.Error(t, err)
}
