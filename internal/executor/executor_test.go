package executor_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/schemaplan/internal/db"
	"github.com/tordrt/schemaplan/internal/db/dbtest"
	"github.com/tordrt/schemaplan/internal/dialect"
	"github.com/tordrt/schemaplan/internal/differ"
	"github.com/tordrt/schemaplan/internal/executor"
	"github.com/tordrt/schemaplan/internal/render"
	"github.com/tordrt/schemaplan/internal/safety"
	"github.com/tordrt/schemaplan/internal/schema"
	"github.com/tordrt/schemaplan/internal/schema/schematest"
)

func plan(t *testing.T, d dialect.Dialect, prev, next *schema.Schema, facts safety.Facts) *safety.Result {
	t.Helper()
	m, err := differ.Diff(prev, next, differ.Options{Dialect: d})
	require.NoError(t, err)
	return safety.Classify(m, facts)
}

func statements(t *testing.T, p *safety.Result) []string {
	t.Helper()
	steps, err := render.Render(p.Migration)
	require.NoError(t, err)
	var out []string
	for _, s := range steps {
		out = append(out, s...)
	}
	return out
}

// shop is two tables joined by a foreign key, without enums or lists so every
// dialect can hold it.
func shop(t *testing.T, ns string) *schema.Schema {
	b := schematest.New(t, ns)
	customer := b.Table("Customer",
		schematest.Col{Name: "id", Type: "Int"},
		schematest.Col{Name: "email", Type: "VarChar(191)"},
	)
	b.PrimaryKey(customer, "Customer_pkey", "id")
	b.Index(customer, "Customer_email_key", schema.IndexUnique, "email")
	order := b.Table("Order",
		schematest.Col{Name: "id", Type: "Int"},
		schematest.Col{Name: "customerId", Type: "Int"},
	)
	b.PrimaryKey(order, "Order_pkey", "id")
	b.ForeignKey(order, "Order_customerId_fkey", customer, []string{"customerId"}, []string{"id"})
	return b.Build()
}

func singleColumn(t *testing.T, ns, typ string) *schema.Schema {
	b := schematest.New(t, ns)
	b.Table("A", schematest.Col{Name: "x", Type: typ, Arity: schema.Nullable})
	return b.Build()
}

func TestExecuteTransactional(t *testing.T) {
	ctx := context.Background()
	p := plan(t, dialect.Postgres, schematest.New(t, "public").Build(), shop(t, "public"), safety.Facts{})
	conn := dbtest.New(dialect.Postgres)

	report, err := executor.Execute(ctx, p, conn, false)
	require.NoError(t, err)

	assert.Equal(t, statements(t, p), conn.Executed())
	assert.Equal(t, conn.Executed(), report.Statements)
	assert.Len(t, report.Applied, len(p.Migration.Steps))
	assert.Empty(t, report.Warnings)

	begun, committed, rolledBack := conn.Transactions()
	assert.Equal(t, 1, begun)
	assert.Equal(t, 1, committed)
	assert.Equal(t, 0, rolledBack)
}

func TestExecuteTransactionalFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	p := plan(t, dialect.Postgres, schematest.New(t, "public").Build(), shop(t, "public"), safety.Facts{})
	conn := dbtest.New(dialect.Postgres).FailExec("CREATE UNIQUE INDEX", errors.New("relation already exists"))

	report, err := executor.Execute(ctx, p, conn, false)
	require.Error(t, err)

	var execErr *executor.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Contains(t, execErr.Statement, `CREATE UNIQUE INDEX "Customer_email_key"`)
	assert.Contains(t, execErr.Step, "CreateIndex")
	assert.Empty(t, execErr.Applied)
	assert.Empty(t, report.Applied)

	begun, committed, rolledBack := conn.Transactions()
	assert.Equal(t, 1, begun)
	assert.Equal(t, 0, committed)
	assert.Equal(t, 1, rolledBack)
}

func TestExecuteCheckpointWithoutTransactionalDDL(t *testing.T) {
	tests := []struct {
		name    string
		dialect dialect.Dialect
		ns      string
		fail    string
	}{
		{name: "mysql", dialect: dialect.MySQL, ns: "", fail: "ADD CONSTRAINT"},
		{name: "cockroachdb", dialect: dialect.CockroachDB, ns: "public", fail: "ADD CONSTRAINT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			p := plan(t, tt.dialect, schematest.New(t, tt.ns).Build(), shop(t, tt.ns), safety.Facts{})
			conn := dbtest.New(tt.dialect).FailExec(tt.fail, errors.New("cannot add foreign key"))

			report, err := executor.Execute(ctx, p, conn, false)

			var execErr *executor.ExecutionError
			require.ErrorAs(t, err, &execErr)
			last := len(p.Migration.Steps) - 1
			assert.Equal(t, last, execErr.StepIndex, "the foreign key is added last")

			want := make([]int, last)
			for i := range want {
				want[i] = i
			}
			assert.Equal(t, want, execErr.Applied)
			assert.Equal(t, want, report.Applied)

			begun, _, _ := conn.Transactions()
			assert.Zero(t, begun)
		})
	}
}

func TestExecuteBlocksNotCastable(t *testing.T) {
	ctx := context.Background()
	p := plan(t, dialect.SQLServer, singleColumn(t, "dbo", "Image"), singleColumn(t, "dbo", "Int"), safety.Facts{})
	require.True(t, p.Blocked())

	conn := dbtest.New(dialect.SQLServer)
	report, err := executor.Execute(ctx, p, conn, false)

	var blocked *executor.DestructiveChangeBlockedError
	require.ErrorAs(t, err, &blocked)
	require.Len(t, blocked.Unexecutable, 1)
	assert.Contains(t, blocked.Error(), "`x`")
	assert.Contains(t, blocked.Error(), "`A`")
	assert.Equal(t, p.Unexecutable, report.Unexecutable)

	assert.Empty(t, conn.Executed())
	begun, _, _ := conn.Transactions()
	assert.Zero(t, begun)
}

func TestExecuteForceDropsAndRecreates(t *testing.T) {
	ctx := context.Background()
	p := plan(t, dialect.SQLServer, singleColumn(t, "dbo", "Image"), singleColumn(t, "dbo", "Int"), safety.Facts{})
	conn := dbtest.New(dialect.SQLServer)

	report, err := executor.Execute(ctx, p, conn, true)
	require.NoError(t, err)

	assert.Equal(t, []string{
		`ALTER TABLE [dbo].[A] DROP COLUMN [x]`,
		`ALTER TABLE [dbo].[A] ADD [x] INT`,
	}, conn.Executed())
	assert.Len(t, report.Unexecutable, 1)
	assert.Equal(t, []int{0}, report.Applied)
}

func TestExecuteRiskyRunsWithWarnings(t *testing.T) {
	ctx := context.Background()
	facts := safety.Facts{
		Rows:    map[safety.TableRef]int64{{Namespace: "public", Table: "A"}: 1},
		NonNull: map[safety.ColumnRef]int64{{Namespace: "public", Table: "A", Column: "x"}: 1},
	}
	p := plan(t, dialect.Postgres, singleColumn(t, "public", "VarChar"), singleColumn(t, "public", "VarChar(9)"), facts)
	conn := dbtest.New(dialect.Postgres)

	report, err := executor.Execute(ctx, p, conn, false)
	require.NoError(t, err)

	require.Len(t, report.Warnings, 1)
	msg := report.Warnings[0].Message
	for _, part := range []string{"`x`", "`A`", "`VarChar`", "`VarChar(9)`"} {
		assert.Contains(t, msg, part)
	}
	assert.Equal(t, []string{`ALTER TABLE "public"."A" ALTER COLUMN "x" SET DATA TYPE VARCHAR(9) USING ("x"::VARCHAR(9))`}, conn.Executed())
}

func TestExecuteDryRun(t *testing.T) {
	ctx := context.Background()
	p := plan(t, dialect.MySQL, schematest.New(t, "").Build(), shop(t, ""), safety.Facts{})
	conn := dbtest.New(dialect.MySQL)

	report, err := executor.Execute(ctx, p, conn, false, executor.WithDryRun(true))
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Equal(t, statements(t, p), report.Statements)
	assert.Empty(t, conn.Executed())
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	t.Run("transactional", func(t *testing.T) {
		p := plan(t, dialect.Postgres, schematest.New(t, "public").Build(), shop(t, "public"), safety.Facts{})
		_, err := executor.Execute(ctx, p, dbtest.New(dialect.Postgres), false)

		var connErr *db.ConnectionError
		require.ErrorAs(t, err, &connErr)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("sequential", func(t *testing.T) {
		p := plan(t, dialect.MySQL, schematest.New(t, "").Build(), shop(t, ""), safety.Facts{})
		_, err := executor.Execute(ctx, p, dbtest.New(dialect.MySQL), false)

		var connErr *db.ConnectionError
		require.ErrorAs(t, err, &connErr)
		var execErr *executor.ExecutionError
		require.ErrorAs(t, err, &execErr)
		assert.Equal(t, 0, execErr.StepIndex)
		assert.Empty(t, execErr.Applied)
	})
}

func TestExecuteRejectsOtherDialect(t *testing.T) {
	p := plan(t, dialect.Postgres, schematest.New(t, "public").Build(), shop(t, "public"), safety.Facts{})
	_, err := executor.Execute(context.Background(), p, dbtest.New(dialect.MySQL), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plan is for postgres")
}

func openSQLite(t *testing.T, name string, stmts ...string) db.Conn {
	t.Helper()
	ctx := context.Background()
	conn, err := db.Connect(ctx, "file:"+filepath.Join(t.TempDir(), name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(ctx) })
	for _, stmt := range stmts {
		require.NoError(t, conn.Exec(ctx, stmt))
	}
	return conn
}

func describe(t *testing.T, conn db.Conn) *schema.Schema {
	t.Helper()
	s, err := db.Describe(context.Background(), conn, nil)
	require.NoError(t, err)
	return s
}

// migrate plans the change from the live database to the structure of target.
func migrate(t *testing.T, live, target db.Conn) *safety.Result {
	t.Helper()
	ctx := context.Background()
	m, err := differ.Diff(describe(t, live), describe(t, target), differ.Options{Dialect: dialect.SQLite})
	require.NoError(t, err)
	facts, err := db.CollectFacts(ctx, live, dialect.SQLite, m)
	require.NoError(t, err)
	return safety.Classify(m, facts)
}

func column(t *testing.T, s *schema.Schema, table, name string) schema.ColumnWalker {
	t.Helper()
	tbl, ok := s.FindTable("", table)
	require.True(t, ok)
	col, ok := tbl.Column(name)
	require.True(t, ok)
	return col
}

func TestExecuteSQLiteSafeCast(t *testing.T) {
	ctx := context.Background()
	live := openSQLite(t, "live.db",
		`CREATE TABLE "A" ("id" INTEGER NOT NULL PRIMARY KEY, "x" TINYINT NOT NULL)`,
		`INSERT INTO "A" ("id", "x") VALUES (1, 255)`,
	)
	target := openSQLite(t, "target.db",
		`CREATE TABLE "A" ("id" INTEGER NOT NULL PRIMARY KEY, "x" INT NOT NULL)`,
	)

	p := migrate(t, live, target)
	assert.Equal(t, safety.Safe, p.Worst())

	report, err := executor.Execute(ctx, p, live, false)
	require.NoError(t, err)
	assert.Empty(t, report.Warnings)

	assert.Equal(t, "int", column(t, describe(t, live), "A", "x").FullDataType())

	var got []int64
	require.NoError(t, scanAll(ctx, live, `SELECT "x" FROM "A"`, func(r db.Rows) error {
		var v int64
		err := r.Scan(&v)
		got = append(got, v)
		return err
	}))
	assert.Equal(t, []int64{255}, got)
}

func TestExecuteSQLiteNotCastable(t *testing.T) {
	ctx := context.Background()
	live := openSQLite(t, "live.db",
		`CREATE TABLE "A" ("id" INTEGER NOT NULL PRIMARY KEY, "x" TEXT)`,
		`INSERT INTO "A" ("id", "x") VALUES (1, 'foo')`,
	)
	target := openSQLite(t, "target.db",
		`CREATE TABLE "A" ("id" INTEGER NOT NULL PRIMARY KEY, "x" INTEGER)`,
	)

	p := migrate(t, live, target)
	require.True(t, p.Blocked())

	_, err := executor.Execute(ctx, p, live, false)
	var blocked *executor.DestructiveChangeBlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Contains(t, blocked.Error(), "`x`")
	assert.Contains(t, blocked.Error(), "`A`")

	assert.Equal(t, "text", column(t, describe(t, live), "A", "x").FullDataType())
}

func TestExecuteSQLiteRebuildRoundTrip(t *testing.T) {
	ctx := context.Background()
	live := openSQLite(t, "live.db",
		`CREATE TABLE "Customer" ("id" INTEGER NOT NULL PRIMARY KEY, "email" TEXT NOT NULL, "legacy" TEXT)`,
		`CREATE TABLE "Order" ("id" INTEGER NOT NULL PRIMARY KEY, "customerId" INTEGER NOT NULL REFERENCES "Customer" ("id") ON DELETE CASCADE)`,
		`INSERT INTO "Customer" ("id", "email", "legacy") VALUES (1, 'a@example.com', 'old'), (2, 'b@example.com', NULL)`,
		`INSERT INTO "Order" ("id", "customerId") VALUES (10, 1), (11, 2)`,
	)
	target := openSQLite(t, "target.db",
		`CREATE TABLE "Customer" ("id" INTEGER NOT NULL PRIMARY KEY, "email" TEXT NOT NULL, "name" TEXT)`,
		`CREATE UNIQUE INDEX "Customer_email_key" ON "Customer" ("email")`,
		`CREATE TABLE "Order" ("id" INTEGER NOT NULL PRIMARY KEY, "customerId" INTEGER NOT NULL REFERENCES "Customer" ("id") ON DELETE CASCADE)`,
	)

	p := migrate(t, live, target)
	require.False(t, p.Blocked())
	assert.True(t, render.RebuildsTables(p.Migration))

	_, err := executor.Execute(ctx, p, live, false)
	require.NoError(t, err)

	again, err := differ.Diff(describe(t, live), describe(t, target), differ.Options{Dialect: dialect.SQLite})
	require.NoError(t, err)
	assert.Empty(t, again.Steps)

	var orders int64
	require.NoError(t, scanAll(ctx, live, `SELECT COUNT(*) FROM "Order"`, func(r db.Rows) error {
		return r.Scan(&orders)
	}))
	assert.Equal(t, int64(2), orders, "rebuilding the parent table must not cascade")
}

func scanAll(ctx context.Context, q db.Queryer, query string, scan func(db.Rows) error) error {
	rows, err := q.Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
