package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/schemaplan/internal/dialect"
	"github.com/tordrt/schemaplan/internal/differ"
	"github.com/tordrt/schemaplan/internal/migration"
	"github.com/tordrt/schemaplan/internal/render"
	"github.com/tordrt/schemaplan/internal/schema"
	"github.com/tordrt/schemaplan/internal/schema/schematest"
)

func diff(t *testing.T, d dialect.Dialect, prev, next *schema.Schema, renames ...differ.ColumnRename) *migration.Migration {
	t.Helper()
	m, err := differ.Diff(prev, next, differ.Options{Dialect: d, Renames: renames})
	require.NoError(t, err)
	return m
}

func flatten(t *testing.T, m *migration.Migration) []string {
	t.Helper()
	steps, err := render.Render(m)
	require.NoError(t, err)
	require.Len(t, steps, len(m.Steps))
	var out []string
	for _, s := range steps {
		out = append(out, s...)
	}
	return out
}

func blog(t *testing.T) *schema.Schema {
	b := schematest.New(t, "public")
	b.Enum("Role", "user", "admin")
	user := b.Table("User",
		schematest.Col{Name: "id", Type: "Integer", AutoIncrement: true},
		schematest.Col{Name: "role", Enum: "Role", Default: &schema.Default{Kind: schema.DefaultValue, Expr: "'user'"}},
		schematest.Col{Name: "tags", Type: "Text", Arity: schema.List},
	)
	b.PrimaryKey(user, "User_pkey", "id")
	post := b.Table("Post",
		schematest.Col{Name: "id", Type: "Integer"},
		schematest.Col{Name: "authorId", Type: "Integer", Arity: schema.Nullable},
		schematest.Col{Name: "createdAt", Type: "Timestamp(3)", Default: &schema.Default{Kind: schema.DefaultNow}},
	)
	b.PrimaryKey(post, "Post_pkey", "id")
	b.Index(post, "Post_authorId_idx", schema.IndexNormal, "authorId DESC")
	b.ForeignKey(post, "Post_authorId_fkey", user, []string{"authorId"}, []string{"id"})
	return b.Build()
}

func TestRenderPostgresCreate(t *testing.T) {
	m := diff(t, dialect.Postgres, schematest.New(t, "public").Build(), blog(t))
	stmts := flatten(t, m)

	assert.Equal(t, []string{
		`CREATE TYPE "public"."Role" AS ENUM ('user', 'admin')`,
		"CREATE TABLE \"public\".\"Post\" (\n" +
			"    \"id\" INTEGER NOT NULL,\n" +
			"    \"authorId\" INTEGER,\n" +
			"    \"createdAt\" TIMESTAMP(3) NOT NULL DEFAULT CURRENT_TIMESTAMP,\n" +
			"    CONSTRAINT \"Post_pkey\" PRIMARY KEY (\"id\")\n)",
		`CREATE INDEX "Post_authorId_idx" ON "public"."Post" ("authorId" DESC)`,
		"CREATE TABLE \"public\".\"User\" (\n" +
			"    \"id\" SERIAL NOT NULL,\n" +
			"    \"role\" \"public\".\"Role\" NOT NULL DEFAULT 'user',\n" +
			"    \"tags\" TEXT[],\n" +
			"    CONSTRAINT \"User_pkey\" PRIMARY KEY (\"id\")\n)",
		`ALTER TABLE "public"."Post" ADD CONSTRAINT "Post_authorId_fkey" FOREIGN KEY ("authorId") REFERENCES "public"."User" ("id") ON DELETE NO ACTION ON UPDATE NO ACTION`,
	}, stmts)
}

func TestRenderPostgresDrop(t *testing.T) {
	m := diff(t, dialect.Postgres, blog(t), schematest.New(t, "public").Build())
	stmts := flatten(t, m)

	assert.Equal(t, []string{
		`ALTER TABLE "public"."Post" DROP CONSTRAINT "Post_authorId_fkey"`,
		`DROP TABLE "public"."Post"`,
		`DROP TABLE "public"."User"`,
		`DROP TYPE "public"."Role"`,
	}, stmts)
}

func TestRenderPostgresColumnChanges(t *testing.T) {
	prev := schematest.New(t, "public")
	tbl := prev.Table("T",
		schematest.Col{Name: "id", Type: "Integer"},
		schematest.Col{Name: "code", Type: "VarChar(3)"},
		schematest.Col{Name: "note", Type: "Text"},
		schematest.Col{Name: "n", Type: "Integer", Default: &schema.Default{Kind: schema.DefaultValue, Expr: "1"}},
	)
	prev.PrimaryKey(tbl, "T_pkey", "id")

	next := schematest.New(t, "public")
	tbl = next.Table("T",
		schematest.Col{Name: "id", Type: "Integer"},
		schematest.Col{Name: "code", Type: "VarChar(9)"},
		schematest.Col{Name: "note", Type: "Text", Arity: schema.Nullable},
		schematest.Col{Name: "n", Type: "Integer"},
	)
	next.PrimaryKey(tbl, "T_pkey", "id")

	stmts := flatten(t, diff(t, dialect.Postgres, prev.Build(), next.Build()))
	assert.Equal(t, []string{
		`ALTER TABLE "public"."T" ALTER COLUMN "code" SET DATA TYPE VARCHAR(9) USING ("code"::VARCHAR(9))`,
		`ALTER TABLE "public"."T" ALTER COLUMN "note" DROP NOT NULL`,
		`ALTER TABLE "public"."T" ALTER COLUMN "n" DROP DEFAULT`,
	}, stmts)
}

func TestRenderPostgresEnumValueRemoval(t *testing.T) {
	build := func(values ...string) *schema.Schema {
		b := schematest.New(t, "public")
		b.Enum("Color", values...)
		b.Table("Car", schematest.Col{Name: "color", Enum: "Color", Default: &schema.Default{Kind: schema.DefaultValue, Expr: "'red'"}})
		return b.Build()
	}

	added := flatten(t, diff(t, dialect.Postgres, build("red"), build("red", "blue")))
	assert.Equal(t, []string{`ALTER TYPE "public"."Color" ADD VALUE 'blue'`}, added)

	removed := flatten(t, diff(t, dialect.Postgres, build("red", "blue"), build("red")))
	assert.Equal(t, []string{
		`ALTER TYPE "public"."Color" RENAME TO "Color_old"`,
		`CREATE TYPE "public"."Color" AS ENUM ('red')`,
		`ALTER TABLE "public"."Car" ALTER COLUMN "color" DROP DEFAULT`,
		`ALTER TABLE "public"."Car" ALTER COLUMN "color" TYPE "public"."Color" USING ("color"::text::"public"."Color")`,
		`ALTER TABLE "public"."Car" ALTER COLUMN "color" SET DEFAULT 'red'`,
		`DROP TYPE "public"."Color_old"`,
	}, removed)
}

func TestRenderSequences(t *testing.T) {
	build := func(seq schema.Sequence) *schema.Schema {
		b := schematest.New(t, "public")
		b.Sequence(seq)
		return b.Build()
	}
	seq := schema.Sequence{Name: "counter", Start: 1, Min: 1, Max: 1000, Increment: 1, Cache: 1}

	created := flatten(t, diff(t, dialect.Postgres, schematest.New(t, "public").Build(), build(seq)))
	assert.Equal(t, []string{`CREATE SEQUENCE "public"."counter" START WITH 1 INCREMENT BY 1 MINVALUE 1 MAXVALUE 1000 CACHE 1 NO CYCLE`}, created)

	changed := seq
	changed.Increment, changed.Cycle = 5, true
	altered := flatten(t, diff(t, dialect.Postgres, build(seq), build(changed)))
	assert.Equal(t, []string{`ALTER SEQUENCE "public"."counter" INCREMENT BY 5 CYCLE`}, altered)
}

func TestRenderMySQL(t *testing.T) {
	prev := schematest.New(t, "")
	tbl := prev.Table("User",
		schematest.Col{Name: "id", Type: "UnsignedInt", Family: schema.FamilyInt, AutoIncrement: true},
		schematest.Col{Name: "name", Type: "VarChar(10)", Arity: schema.Nullable},
		schematest.Col{Name: "kind", Type: "Enum(a,b)", Family: schema.FamilyString},
		schematest.Col{Name: "active", Type: "TinyInt", Family: schema.FamilyBoolean},
	)
	prev.PrimaryKey(tbl, "", "id")
	prev.Index(tbl, "User_name_key", schema.IndexUnique, "name")

	next := schematest.New(t, "")
	tbl = next.Table("User",
		schematest.Col{Name: "id", Type: "UnsignedInt", Family: schema.FamilyInt, AutoIncrement: true},
		schematest.Col{Name: "name", Type: "VarChar(10)"},
		schematest.Col{Name: "kind", Type: "Enum(a,b)", Family: schema.FamilyString},
		schematest.Col{Name: "active", Type: "TinyInt", Family: schema.FamilyBoolean},
	)
	next.PrimaryKey(tbl, "", "id")
	desired := next.Build()

	created := flatten(t, diff(t, dialect.MySQL, schematest.New(t, "").Build(), desired))
	assert.Equal(t, []string{
		"CREATE TABLE `User` (\n" +
			"    `id` INT UNSIGNED NOT NULL AUTO_INCREMENT,\n" +
			"    `name` VARCHAR(10) NOT NULL,\n" +
			"    `kind` ENUM('a', 'b') NOT NULL,\n" +
			"    `active` TINYINT(1) NOT NULL,\n" +
			"    PRIMARY KEY (`id`)\n" +
			") DEFAULT CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci",
	}, created)

	altered := flatten(t, diff(t, dialect.MySQL, prev.Build(), desired))
	assert.Equal(t, []string{
		"DROP INDEX `User_name_key` ON `User`",
		"ALTER TABLE `User` MODIFY `name` VARCHAR(10) NOT NULL",
	}, altered)
}

func TestRenderSQLServer(t *testing.T) {
	prev := schematest.New(t, "dbo")
	tbl := prev.Table("Doc",
		schematest.Col{Name: "id", Type: "Int", AutoIncrement: true},
		schematest.Col{Name: "body", Type: "NVarChar(Max)"},
		schematest.Col{Name: "rank", Type: "SmallInt", Default: &schema.Default{Kind: schema.DefaultValue, Expr: "0", ConstraintName: "DF__Doc__rank"}},
	)
	prev.PrimaryKey(tbl, "PK_Doc", "id")
	prev.Index(tbl, "Doc_rank_idx", schema.IndexNormal, "rank")

	next := schematest.New(t, "dbo")
	tbl = next.Table("Doc",
		schematest.Col{Name: "id", Type: "Int", AutoIncrement: true},
		schematest.Col{Name: "body", Type: "NVarChar(Max)"},
		schematest.Col{Name: "rank", Type: "Int", Default: &schema.Default{Kind: schema.DefaultValue, Expr: "0"}},
	)
	next.PrimaryKey(tbl, "PK_Doc", "id")
	next.Index(tbl, "Doc_rank_idx", schema.IndexNormal, "rank")
	desired := next.Build()

	created := flatten(t, diff(t, dialect.SQLServer, schematest.New(t, "dbo").Build(), desired))
	assert.Equal(t, "CREATE TABLE [dbo].[Doc] (\n"+
		"    [id] INT NOT NULL IDENTITY(1,1),\n"+
		"    [body] NVARCHAR(MAX) NOT NULL,\n"+
		"    [rank] INT NOT NULL CONSTRAINT [Doc_rank_df] DEFAULT 0,\n"+
		"    CONSTRAINT [PK_Doc] PRIMARY KEY ([id])\n)", created[0])
	assert.Equal(t, "CREATE NONCLUSTERED INDEX [Doc_rank_idx] ON [dbo].[Doc] ([rank])", created[1])

	altered := flatten(t, diff(t, dialect.SQLServer, prev.Build(), desired))
	assert.Equal(t, []string{
		"DROP INDEX [Doc_rank_idx] ON [dbo].[Doc]",
		"ALTER TABLE [dbo].[Doc] DROP CONSTRAINT [DF__Doc__rank]",
		"ALTER TABLE [dbo].[Doc] ALTER COLUMN [rank] INT NOT NULL",
		"ALTER TABLE [dbo].[Doc] ADD CONSTRAINT [Doc_rank_df] DEFAULT 0 FOR [rank]",
		"CREATE NONCLUSTERED INDEX [Doc_rank_idx] ON [dbo].[Doc] ([rank])",
	}, altered)
}

func TestRenderSQLServerRename(t *testing.T) {
	build := func(name string) *schema.Schema {
		b := schematest.New(t, "dbo")
		b.Table("T", schematest.Col{Name: name, Type: "Int"})
		return b.Build()
	}
	m := diff(t, dialect.SQLServer, build("a"), build("b"), differ.ColumnRename{Namespace: "dbo", Table: "T", From: "a", To: "b"})
	assert.Equal(t, []string{"EXEC sp_rename N'dbo.T.a', N'b', 'COLUMN'"}, flatten(t, m))
}

func sqliteCol(name, typ string, arity schema.Arity) schematest.Col {
	return schematest.Col{Name: name, FullDataType: typ, Family: schematest.FamilyOf(typ), Arity: arity}
}

func TestRenderSQLiteRebuildsOnce(t *testing.T) {
	id := schematest.Col{Name: "id", FullDataType: "INTEGER", Family: schema.FamilyInt, AutoIncrement: true}

	prev := schematest.New(t, "")
	tbl := prev.Table("T", id, sqliteCol("a", "TEXT", schema.Nullable), sqliteCol("b", "TEXT", schema.Nullable))
	prev.PrimaryKey(tbl, "", "id")
	prev.Index(tbl, "T_a_idx", schema.IndexNormal, "a")

	next := schematest.New(t, "")
	tbl = next.Table("T", id, sqliteCol("a", "TEXT", schema.Required), sqliteCol("c", "TEXT", schema.Nullable))
	next.PrimaryKey(tbl, "", "id")
	next.Index(tbl, "T_a_idx", schema.IndexNormal, "a")

	m := diff(t, dialect.SQLite, prev.Build(), next.Build())
	steps, err := render.Render(m)
	require.NoError(t, err)

	var carriers int
	for _, s := range steps {
		if len(s) > 0 {
			carriers++
		}
	}
	assert.Equal(t, 1, carriers, "one step carries the rebuild")

	assert.Equal(t, []string{
		"CREATE TABLE \"new_T\" (\n" +
			"    \"id\" INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,\n" +
			"    \"a\" TEXT NOT NULL,\n" +
			"    \"c\" TEXT\n)",
		`INSERT INTO "new_T" ("id", "a") SELECT "id", "a" FROM "T"`,
		`DROP TABLE "T"`,
		`ALTER TABLE "new_T" RENAME TO "T"`,
		`CREATE INDEX "T_a_idx" ON "T" ("a")`,
	}, flatten(t, m))

	script, err := render.Script(m)
	require.NoError(t, err)
	assert.Contains(t, script, "PRAGMA foreign_keys=OFF;")
	assert.Contains(t, script, `DROP TABLE "T";`)
}

func TestRenderSQLiteInPlaceChanges(t *testing.T) {
	prev := schematest.New(t, "")
	prev.Table("T", sqliteCol("a", "TEXT", schema.Nullable))

	next := schematest.New(t, "")
	tbl := next.Table("T", sqliteCol("b", "TEXT", schema.Nullable), sqliteCol("extra", "INTEGER", schema.Nullable))
	next.Index(tbl, "T_b_key", schema.IndexUnique, "b")

	m := diff(t, dialect.SQLite, prev.Build(), next.Build(), differ.ColumnRename{Table: "T", From: "a", To: "b"})
	assert.Equal(t, []string{
		`ALTER TABLE "T" RENAME COLUMN "a" TO "b"`,
		`ALTER TABLE "T" ADD COLUMN "extra" INTEGER`,
		`CREATE UNIQUE INDEX "T_b_key" ON "T" ("b")`,
	}, flatten(t, m))
}

func TestRenderSQLiteForeignKeysAreInline(t *testing.T) {
	b := schematest.New(t, "")
	city := b.Table("City", schematest.Col{Name: "id", FullDataType: "INTEGER", Family: schema.FamilyInt})
	b.PrimaryKey(city, "", "id")
	user := b.Table("User", sqliteCol("cityId", "INTEGER", schema.Required))
	b.ForeignKey(user, "", city, []string{"cityId"}, []string{"id"})

	stmts := flatten(t, diff(t, dialect.SQLite, schematest.New(t, "").Build(), b.Build()))
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[1], `FOREIGN KEY ("cityId") REFERENCES "City" ("id") ON DELETE NO ACTION ON UPDATE NO ACTION`)
}

func TestScript(t *testing.T) {
	m := diff(t, dialect.Postgres, schematest.New(t, "public").Build(), blog(t))
	script, err := render.Script(m)
	require.NoError(t, err)
	assert.Contains(t, script, "-- CreateTable `public`.`User`\nCREATE TABLE")
	assert.Contains(t, script, "ON UPDATE NO ACTION;\n")
}

func TestRenderRejectsUnsupportedSteps(t *testing.T) {
	b := schematest.New(t, "")
	b.Enum("E", "a")
	m := &migration.Migration{
		Dialect:  dialect.MySQL,
		Previous: schema.Empty(),
		Next:     b.Build(),
		Steps:    []migration.Step{migration.CreateEnum{Enum: 0}},
	}
	_, err := render.Render(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported on mysql")
}
