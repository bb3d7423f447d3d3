package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/schemaplan/internal/db"
	"github.com/tordrt/schemaplan/internal/db/dbtest"
	"github.com/tordrt/schemaplan/internal/dialect"
	"github.com/tordrt/schemaplan/internal/differ"
	"github.com/tordrt/schemaplan/internal/migration"
	"github.com/tordrt/schemaplan/internal/safety"
	"github.com/tordrt/schemaplan/internal/schema/schematest"
)

// shrinkA drops table B and narrows A.x while dropping A.y.
func shrinkA(t *testing.T) *migration.Migration {
	prev := schematest.New(t, "public")
	prev.Table("B", schematest.Col{Name: "id", Type: "Integer"})
	prev.Table("A", schematest.Col{Name: "x", Type: "VarChar"}, schematest.Col{Name: "y", Type: "Text"})
	next := schematest.New(t, "public")
	next.Table("A", schematest.Col{Name: "x", Type: "VarChar(9)"})

	m, err := differ.Diff(prev.Build(), next.Build(), differ.Options{Dialect: dialect.Postgres})
	require.NoError(t, err)
	return m
}

func TestCollectFacts(t *testing.T) {
	conn := dbtest.New(dialect.Postgres).
		OnQuery(`"x" IS NOT NULL`, []any{int64(2)}).
		OnQuery(`"y" IS NOT NULL`, []any{int64(0)}).
		OnQuery(`FROM "public"."A"`, []any{int64(3)}).
		OnQuery(`FROM "public"."B"`, []any{int64(0)})

	facts, err := db.CollectFacts(context.Background(), conn, dialect.Postgres, shrinkA(t))
	require.NoError(t, err)

	assert.Equal(t, map[safety.TableRef]int64{
		{Namespace: "public", Table: "A"}: 3,
		{Namespace: "public", Table: "B"}: 0,
	}, facts.Rows)
	assert.Equal(t, map[safety.ColumnRef]int64{
		{Namespace: "public", Table: "A", Column: "x"}: 2,
		{Namespace: "public", Table: "A", Column: "y"}: 0,
	}, facts.NonNull)
}

func TestCollectFactsSkipsColumnsOfEmptyTables(t *testing.T) {
	conn := dbtest.New(dialect.Postgres).
		OnQuery(`IS NOT NULL`, []any{int64(99)}).
		OnQuery(`SELECT COUNT(*)`, []any{int64(0)})

	facts, err := db.CollectFacts(context.Background(), conn, dialect.Postgres, shrinkA(t))
	require.NoError(t, err)
	assert.Empty(t, facts.NonNull)
}

func TestCollectFactsFailure(t *testing.T) {
	conn := dbtest.New(dialect.Postgres).
		FailQuery(`FROM "public"."A"`, errors.New("relation does not exist"))

	_, err := db.CollectFacts(context.Background(), conn, dialect.Postgres, shrinkA(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to count rows of A")
}
