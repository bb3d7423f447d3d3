package formatter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/schemaplan/internal/dialect"
	"github.com/tordrt/schemaplan/internal/differ"
	"github.com/tordrt/schemaplan/internal/migration"
	"github.com/tordrt/schemaplan/internal/safety"
	"github.com/tordrt/schemaplan/internal/schema"
	"github.com/tordrt/schemaplan/internal/schema/schematest"
)

func shop(t *testing.T) *schema.Schema {
	b := schematest.New(t, "")
	b.Enum("Status", "open", "paid")
	users := b.Table("users",
		schematest.Col{Name: "id", Type: "INTEGER", AutoIncrement: true},
		schematest.Col{Name: "email", Type: "VARCHAR(255)"},
		schematest.Col{Name: "nickname", Type: "TEXT", Arity: schema.Nullable},
	)
	b.PrimaryKey(users, "users_pkey", "id")
	b.Index(users, "users_email_key", schema.IndexUnique, "email")

	orders := b.Table("orders",
		schematest.Col{Name: "id", Type: "INTEGER"},
		schematest.Col{Name: "user_id", Type: "INTEGER"},
		schematest.Col{Name: "status", Enum: "Status", Default: &schema.Default{Kind: schema.DefaultValue, Expr: "'open'"}},
	)
	b.PrimaryKey(orders, "orders_pkey", "id")
	b.Index(orders, "orders_user_id_idx", schema.IndexNormal, "user_id DESC")
	b.ForeignKey(orders, "orders_user_id_fkey", users, []string{"user_id"}, []string{"id"})
	return b.Build()
}

func TestTextFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextFormatter(&buf).Format(shop(t)))
	out := buf.String()

	assert.Contains(t, out, "TABLE users (PK: id)\n")
	assert.Contains(t, out, "  id: integer NOT NULL AUTOINCREMENT\n")
	assert.Contains(t, out, "  email: varchar(255) UNIQUE NOT NULL\n")
	assert.Contains(t, out, "  nickname: text\n")
	assert.Contains(t, out, "  status: Status (open|paid) NOT NULL DEFAULT 'open'\n")
	assert.Contains(t, out, "    user_id → users.id (many-to-one)\n")
	assert.Contains(t, out, "    orders_user_id_idx (user_id DESC)\n")
	assert.Contains(t, out, "    users_email_key (email) UNIQUE\n")
	assert.Contains(t, out, "ENUM Status: open|paid\n")
}

func TestMarkdownFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewMarkdownFormatter(&buf).Format(shop(t)))
	out := buf.String()

	assert.Contains(t, out, "# Database Schema\n")
	assert.Contains(t, out, "## orders\n")
	assert.Contains(t, out, "- **id:** integer, PK, NOT NULL, AUTOINCREMENT\n")
	assert.Contains(t, out, "### References\n\n- user_id → users.id (many-to-one)\n")
	assert.Contains(t, out, "- users_email_key on (email), unique\n")
	assert.Contains(t, out, "- **Status:** open | paid\n")
}

func TestMultiFileFormatter(t *testing.T) {
	for _, format := range []string{formatText, formatMarkdown} {
		t.Run(format, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, NewMultiFileFormatter(dir, format).Format(shop(t)))

			ext := ".txt"
			if format == formatMarkdown {
				ext = ".md"
			}
			overview, err := os.ReadFile(filepath.Join(dir, "_overview"+ext))
			require.NoError(t, err)
			assert.Contains(t, string(overview), "orders")
			assert.Contains(t, string(overview), "(references: users)")

			users, err := os.ReadFile(filepath.Join(dir, "users"+ext))
			require.NoError(t, err)
			assert.Contains(t, string(users), "orders.user_id → id (many-to-one)")

			_, err = os.Stat(filepath.Join(dir, "orders"+ext))
			assert.NoError(t, err)
		})
	}
}

func TestCardinalityOneToOne(t *testing.T) {
	b := schematest.New(t, "")
	users := b.Table("users", schematest.Col{Name: "id", Type: "INTEGER"})
	profiles := b.Table("profiles", schematest.Col{Name: "user_id", Type: "INTEGER"})
	b.Index(profiles, "profiles_user_id_key", schema.IndexUnique, "user_id")
	b.ForeignKey(profiles, "profiles_user_id_fkey", users, []string{"user_id"}, []string{"id"})
	s := b.Build()

	p, ok := s.FindTable("", "profiles")
	require.True(t, ok)
	assert.Equal(t, "one-to-one", cardinality(p.ForeignKeys()[0]))
}

func TestWritePlan(t *testing.T) {
	prev := schematest.New(t, "public")
	prev.Table("A", schematest.Col{Name: "x", Type: "Text", Arity: schema.Nullable})
	next := schematest.New(t, "public")
	next.Table("A", schematest.Col{Name: "x", Type: "Integer", Arity: schema.Nullable})
	next.Table("B", schematest.Col{Name: "id", Type: "Integer"})

	m, err := differ.Diff(prev.Build(), next.Build(), differ.Options{Dialect: dialect.Postgres})
	require.NoError(t, err)
	a := safety.TableRef{Namespace: "public", Table: "A"}
	plan := safety.Classify(m, safety.Facts{Rows: map[safety.TableRef]int64{a: 3}})

	var buf bytes.Buffer
	require.NoError(t, WritePlan(&buf, plan))
	out := buf.String()
	assert.Contains(t, out, "PLAN postgres (2 steps")
	assert.Contains(t, out, "[Safe] CreateTable")
	assert.Contains(t, out, "UNEXECUTABLE:\n  - step ")

	buf.Reset()
	require.NoError(t, WriteSteps(&buf, plan.Migration))
	assert.Contains(t, buf.String(), "CreateTable: CreateTable `public`.`B`\n")
}

func TestWritePlanEmpty(t *testing.T) {
	s := schema.Empty()
	m := &migration.Migration{Dialect: dialect.MySQL, Previous: s, Next: s}

	var buf bytes.Buffer
	require.NoError(t, WritePlan(&buf, safety.Classify(m, safety.Facts{})))
	assert.Equal(t, "No difference detected.\n", buf.String())
}
