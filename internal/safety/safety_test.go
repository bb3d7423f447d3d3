package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/schemaplan/internal/dialect"
	"github.com/tordrt/schemaplan/internal/differ"
	"github.com/tordrt/schemaplan/internal/migration"
	"github.com/tordrt/schemaplan/internal/schema"
	"github.com/tordrt/schemaplan/internal/schema/schematest"
)

func TestCastTablesAreTotal(t *testing.T) {
	tables := map[string]castTable{
		"postgres":    postgresCasts,
		"cockroachdb": cockroachCasts,
		"sqlserver":   sqlserverCasts,
		"mysql":       mysqlCasts,
		"family":      familyCasts,
	}
	for name, table := range tables {
		t.Run(name, func(t *testing.T) {
			for from, row := range table {
				seen := map[string]int{}
				for _, k := range row.Safe {
					seen[k]++
				}
				for _, k := range row.Risky {
					seen[k]++
				}
				for _, k := range row.NotCastable {
					seen[k]++
				}
				for k, r := range row.Rules {
					seen[k]++
					// rules must cope with bare types
					assert.NotPanics(t, func() {
						r(Change{From: schema.Native(from), To: schema.Native(k)})
					}, "%s -> %s", from, k)
				}
				for to := range table {
					assert.Equal(t, 1, seen[to], "%s -> %s", from, to)
				}
				assert.Len(t, seen, len(table), "row %s names unknown types", from)
			}
		})
	}
}

// column builds a one-column table A and returns the walker for x.
func column(t *testing.T, ns string, c schematest.Col, indexed bool) schema.ColumnWalker {
	c.Name = "x"
	b := schematest.New(t, ns)
	id := b.Table("A", c)
	if indexed {
		b.Index(id, "A_x_idx", schema.IndexNormal, "x")
	}
	s := b.Build()
	tbl, ok := s.FindTable(ns, "A")
	require.True(t, ok)
	col, ok := tbl.Column("x")
	require.True(t, ok)
	return col
}

func TestCast(t *testing.T) {
	tests := []struct {
		name    string
		dialect dialect.Dialect
		from    schematest.Col
		to      schematest.Col
		indexed bool
		want    Severity
	}{
		{name: "mssql tinyint to int", dialect: dialect.SQLServer, from: schematest.Col{Type: "TinyInt"}, to: schematest.Col{Type: "Int"}, want: Safe},
		{name: "mssql image to int", dialect: dialect.SQLServer, from: schematest.Col{Type: "Image"}, to: schematest.Col{Type: "Int"}, want: NotCastable},
		{name: "mssql decimal widened", dialect: dialect.SQLServer, from: schematest.Col{Type: "Decimal(10,2)"}, to: schematest.Col{Type: "Decimal(12,2)"}, want: Safe},
		{name: "mssql float to real", dialect: dialect.SQLServer, from: schematest.Col{Type: "Float(53)"}, to: schematest.Col{Type: "Real"}, want: Risky},
		{name: "mssql nvarchar max to sized", dialect: dialect.SQLServer, from: schematest.Col{Type: "NVarChar(Max)"}, to: schematest.Col{Type: "NVarChar(100)"}, want: Risky},
		{name: "postgres varchar to sized varchar", dialect: dialect.Postgres, from: schematest.Col{Type: "VarChar"}, to: schematest.Col{Type: "VarChar(9)"}, want: Risky},
		{name: "postgres varchar shrink", dialect: dialect.Postgres, from: schematest.Col{Type: "VarChar(50)"}, to: schematest.Col{Type: "VarChar(10)"}, want: Risky},
		{name: "postgres varchar grow", dialect: dialect.Postgres, from: schematest.Col{Type: "VarChar(10)"}, to: schematest.Col{Type: "VarChar(50)"}, want: Safe},
		{name: "postgres bigint to integer", dialect: dialect.Postgres, from: schematest.Col{Type: "BigInt"}, to: schematest.Col{Type: "Integer"}, want: Risky},
		{name: "postgres integer to short varchar", dialect: dialect.Postgres, from: schematest.Col{Type: "Integer"}, to: schematest.Col{Type: "VarChar(5)"}, want: Risky},
		{name: "postgres xml to integer", dialect: dialect.Postgres, from: schematest.Col{Type: "Xml"}, to: schematest.Col{Type: "Integer"}, want: NotCastable},
		{name: "postgres list to text", dialect: dialect.Postgres, from: schematest.Col{Type: "Text", Arity: schema.List}, to: schematest.Col{Type: "Text"}, want: Safe},
		{name: "postgres scalar to list", dialect: dialect.Postgres, from: schematest.Col{Type: "Text"}, to: schematest.Col{Type: "Text", Arity: schema.List}, want: NotCastable},
		{name: "mysql int to bigint", dialect: dialect.MySQL, from: schematest.Col{Type: "Int"}, to: schematest.Col{Type: "BigInt"}, want: Safe},
		{name: "mysql bigint to wide decimal", dialect: dialect.MySQL, from: schematest.Col{Type: "BigInt"}, to: schematest.Col{Type: "Decimal(30,2)"}, want: Safe},
		{name: "mysql bigint to narrow decimal", dialect: dialect.MySQL, from: schematest.Col{Type: "BigInt"}, to: schematest.Col{Type: "Decimal(10,2)"}, want: NotCastable},
		{name: "mysql enum gains a variant", dialect: dialect.MySQL, from: schematest.Col{Type: "Enum(a,b)"}, to: schematest.Col{Type: "Enum(a,b,c)"}, want: Safe},
		{name: "mysql enum loses a variant", dialect: dialect.MySQL, from: schematest.Col{Type: "Enum(a,b)"}, to: schematest.Col{Type: "Enum(a)"}, want: Risky},
		{name: "mariadb longtext to json", dialect: dialect.MariaDB, from: schematest.Col{Type: "LongText"}, to: schematest.Col{Type: "Json"}, want: Safe},
		{name: "cockroach narrowing", dialect: dialect.CockroachDB, from: schematest.Col{Type: "Int8"}, to: schematest.Col{Type: "Int4"}, want: Risky},
		{name: "cockroach narrowing indexed", dialect: dialect.CockroachDB, from: schematest.Col{Type: "Int8"}, to: schematest.Col{Type: "Int4"}, indexed: true, want: NotCastable},
		{name: "cockroach string to int", dialect: dialect.CockroachDB, from: schematest.Col{Type: "String"}, to: schematest.Col{Type: "Int8"}, want: NotCastable},
		{name: "cockroach timestamp default precision", dialect: dialect.CockroachDB, from: schematest.Col{Type: "Timestamp"}, to: schematest.Col{Type: "Timestamp(6)"}, want: Safe},
		{name: "sqlite integer to text", dialect: dialect.SQLite, from: schematest.Col{Type: "integer"}, to: schematest.Col{Type: "text"}, want: Safe},
		{name: "sqlite text to integer", dialect: dialect.SQLite, from: schematest.Col{Type: "text"}, to: schematest.Col{Type: "integer"}, want: NotCastable},
		{name: "unknown native falls back to family", dialect: dialect.Postgres, from: schematest.Col{Type: "Int4Range", Family: schema.FamilyInt}, to: schematest.Col{Type: "BigInt"}, want: Safe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns := tt.dialect.DefaultNamespace()
			prev := column(t, ns, tt.from, tt.indexed)
			next := column(t, ns, tt.to, tt.indexed)
			assert.Equal(t, tt.want, Cast(tt.dialect, prev, next))
		})
	}
}

func TestCastEnums(t *testing.T) {
	build := func(enum string) schema.ColumnWalker {
		b := schematest.New(t, "public")
		b.Enum("Mood", "happy", "sad")
		b.Enum("Color", "red")
		b.Table("A", schematest.Col{Name: "x", Enum: enum})
		tbl, _ := b.Build().FindTable("public", "A")
		col, _ := tbl.Column("x")
		return col
	}
	assert.Equal(t, Safe, Cast(dialect.Postgres, build("Mood"), build("Mood")))
	assert.Equal(t, NotCastable, Cast(dialect.Postgres, build("Mood"), build("Color")))
	assert.Equal(t, NotCastable, Cast(dialect.Postgres, build("Mood"), column(t, "public", schematest.Col{Type: "Text"}, false)))
}

func TestCastFamily(t *testing.T) {
	assert.Equal(t, Safe, CastFamily(schema.FamilyInt, schema.FamilyBigInt))
	assert.Equal(t, Safe, CastFamily(schema.FamilyDateTime, schema.FamilyString))
	assert.Equal(t, Risky, CastFamily(schema.FamilyBigInt, schema.FamilyInt))
	assert.Equal(t, NotCastable, CastFamily(schema.FamilyString, schema.FamilyDecimal))
	assert.Equal(t, NotCastable, CastFamily(schema.FamilyJSON, schema.FamilyBoolean))
}

func diff(t *testing.T, d dialect.Dialect, prev, next *schematest.Builder) *migration.Migration {
	m, err := differ.Diff(prev.Build(), next.Build(), differ.Options{Dialect: d})
	require.NoError(t, err)
	return m
}

func messages(diags []Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Message)
	}
	return out
}

func TestClassifyRiskyTypeChange(t *testing.T) {
	prev := schematest.New(t, "public")
	prev.Table("A", schematest.Col{Name: "x", Type: "VarChar"})
	next := schematest.New(t, "public")
	next.Table("A", schematest.Col{Name: "x", Type: "VarChar(9)"})
	m := diff(t, dialect.Postgres, prev, next)

	res := Classify(m, Facts{})
	require.Len(t, res.Warnings, 1)
	assert.Equal(t,
		"You are about to alter the column `x` on the `A` table. The data in that column will be cast from `VarChar` to `VarChar(9)`.",
		res.Warnings[0].Message)
	assert.Equal(t, Risky, res.Worst())
	assert.False(t, res.Blocked())

	counted := Classify(m, Facts{NonNull: map[ColumnRef]int64{{Namespace: "public", Table: "A", Column: "x"}: 3}})
	require.Len(t, counted.Warnings, 1)
	assert.Equal(t,
		"You are about to alter the column `x` on the `A` table, which contains 3 non-null values. The data in that column will be cast from `VarChar` to `VarChar(9)`.",
		counted.Warnings[0].Message)
}

func TestClassifyNotCastableTypeChange(t *testing.T) {
	build := func(typ string) *schematest.Builder {
		b := schematest.New(t, "dbo")
		b.Table("A", schematest.Col{Name: "x", Type: typ})
		return b
	}
	m := diff(t, dialect.SQLServer, build("Image"), build("Int"))
	require.Len(t, m.Steps, 1)

	t.Run("table with data", func(t *testing.T) {
		res := Classify(m, Facts{Rows: map[TableRef]int64{{Namespace: "dbo", Table: "A"}: 2}})
		assert.True(t, res.Blocked())
		assert.Equal(t, NotCastable, res.Worst())
		assert.Equal(t, []string{
			"Changed the type of `x` on the `A` table from `Image` to `Int`. No cast exists, the column would be dropped and recreated, which cannot be done since the column is required and there is data in the table.",
		}, messages(res.Unexecutable))

		_, ok := res.Migration.Steps[0].(migration.DropAndRecreateColumn)
		assert.True(t, ok)
		_, ok = m.Steps[0].(migration.AlterColumnType)
		assert.True(t, ok, "input migration must not change")
	})

	t.Run("empty table", func(t *testing.T) {
		res := Classify(m, Facts{Rows: map[TableRef]int64{{Namespace: "dbo", Table: "A"}: 0}})
		assert.False(t, res.Blocked())
		assert.Equal(t, Risky, res.Worst())
		assert.Equal(t, []string{
			"The `x` column on the `A` table would be dropped and recreated. This will lead to data loss.",
		}, messages(res.Warnings))
		assert.Equal(t, migration.KindDropAndRecreateColumn, res.Migration.Steps[0].Kind())
	})
}

func TestClassifyDropTable(t *testing.T) {
	prev := schematest.New(t, "public")
	prev.Table("A", schematest.Col{Name: "id", Type: "Integer"})
	m := diff(t, dialect.Postgres, prev, schematest.New(t, "public"))
	ref := TableRef{Namespace: "public", Table: "A"}

	tests := []struct {
		name  string
		facts Facts
		want  []string
	}{
		{name: "unknown", want: []string{"You are about to drop the `A` table, which may not be empty."}},
		{name: "rows", facts: Facts{Rows: map[TableRef]int64{ref: 3}}, want: []string{"You are about to drop the `A` table, which is not empty (3 rows)."}},
		{name: "empty", facts: Facts{Rows: map[TableRef]int64{ref: 0}}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, messages(Classify(m, tt.facts).Warnings))
		})
	}
}

func TestClassifyColumnChanges(t *testing.T) {
	prev := schematest.New(t, "public")
	prev.Table("A",
		schematest.Col{Name: "id", Type: "Integer"},
		schematest.Col{Name: "gone", Type: "Text"},
		schematest.Col{Name: "opt", Type: "Text", Arity: schema.Nullable},
	)
	next := schematest.New(t, "public")
	next.Table("A",
		schematest.Col{Name: "id", Type: "Integer"},
		schematest.Col{Name: "opt", Type: "Text"},
		schematest.Col{Name: "req", Type: "Integer"},
		schematest.Col{Name: "seq", Type: "Integer", AutoIncrement: true},
	)
	m := diff(t, dialect.Postgres, prev, next)

	res := Classify(m, Facts{
		Rows: map[TableRef]int64{{Namespace: "public", Table: "A"}: 5},
		NonNull: map[ColumnRef]int64{
			{Namespace: "public", Table: "A", Column: "gone"}: 5,
			{Namespace: "public", Table: "A", Column: "opt"}:  3,
		},
	})
	assert.ElementsMatch(t, []string{
		"You are about to drop the column `gone` on the `A` table, which still contains 5 non-null values.",
		"Made the column `opt` on table `A` required, but there are 2 existing NULL values.",
	}, messages(res.Warnings))
	assert.Equal(t, []string{
		"Added the required column `req` to the `A` table without a default value. There are 5 rows in this table, it is not possible to execute this step.",
	}, messages(res.Unexecutable))

	empty := Classify(m, Facts{Rows: map[TableRef]int64{{Namespace: "public", Table: "A"}: 0}})
	assert.Empty(t, empty.Warnings)
	assert.Empty(t, empty.Unexecutable)
}

func TestClassifyIndexesAndEnums(t *testing.T) {
	prev := schematest.New(t, "public")
	prev.Enum("Mood", "happy", "sad", "meh")
	a := prev.Table("A", schematest.Col{Name: "a", Type: "Integer"}, schematest.Col{Name: "b", Type: "Integer"})
	prev.PrimaryKey(a, "A_pkey", "a")

	next := schematest.New(t, "public")
	next.Enum("Mood", "happy")
	a = next.Table("A", schematest.Col{Name: "a", Type: "Integer"}, schematest.Col{Name: "b", Type: "Integer"})
	next.PrimaryKey(a, "A_pkey", "a", "b")
	next.Index(a, "A_a_b_key", schema.IndexUnique, "a", "b")

	m := diff(t, dialect.Postgres, prev, next)
	res := Classify(m, Facts{})
	assert.ElementsMatch(t, []string{
		"The values [sad,meh] on the enum `Mood` will be removed. If these variants are still used in the database, this will fail.",
		"The primary key for the `A` table will be changed. If it partially fails, the table could be left without primary key constraint.",
		"A unique constraint covering the columns `[a,b]` on the table `A` will be added. If there are existing duplicate values, this will fail.",
	}, messages(res.Warnings))
	assert.False(t, res.Blocked())

	for _, w := range res.Warnings {
		assert.Equal(t, Risky, res.Severities[w.StepIndex])
	}
}

func TestProbes(t *testing.T) {
	prev := schematest.New(t, "public")
	prev.Table("B", schematest.Col{Name: "id", Type: "Integer"})
	prev.Table("A", schematest.Col{Name: "x", Type: "VarChar"}, schematest.Col{Name: "y", Type: "Text"})
	next := schematest.New(t, "public")
	next.Table("A", schematest.Col{Name: "x", Type: "VarChar(9)"})

	tables, columns := Probes(diff(t, dialect.Postgres, prev, next))
	assert.Equal(t, []TableRef{
		{Namespace: "public", Table: "A"},
		{Namespace: "public", Table: "B"},
	}, tables)
	assert.Equal(t, []ColumnRef{
		{Namespace: "public", Table: "A", Column: "x"},
		{Namespace: "public", Table: "A", Column: "y"},
	}, columns)
}
