package safety

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/tordrt/schemaplan/internal/migration"
	"github.com/tordrt/schemaplan/internal/schema"
)

// TableRef names a table of the current database.
type TableRef struct {
	Namespace string
	Table     string
}

// ColumnRef names a column of the current database.
type ColumnRef struct {
	Namespace string
	Table     string
	Column    string
}

// Facts are counts taken from the current database once, before any step of
// the plan runs. A table or column missing from the maps is assumed to hold data.
type Facts struct {
	Rows    map[TableRef]int64
	NonNull map[ColumnRef]int64
}

func (f Facts) rows(t TableRef) (int64, bool) {
	n, ok := f.Rows[t]
	return n, ok
}

func (f Facts) nonNull(c ColumnRef) (int64, bool) {
	if n, ok := f.NonNull[c]; ok {
		return n, true
	}
	// an empty table has no values in any column
	if n, ok := f.rows(TableRef{Namespace: c.Namespace, Table: c.Table}); ok && n == 0 {
		return 0, true
	}
	return 0, false
}

// isEmpty reports whether the table is known to hold no rows.
func (f Facts) isEmpty(t TableRef) bool {
	n, ok := f.rows(t)
	return ok && n == 0
}

// Diagnostic is a message attached to one step of the plan.
type Diagnostic struct {
	StepIndex int
	Message   string
}

// Result is a classified migration.
type Result struct {
	// Migration is the plan to execute. Type changes without a cast are
	// rewritten to DropAndRecreateColumn steps.
	Migration    *migration.Migration
	Severities   []Severity
	Warnings     []Diagnostic
	Unexecutable []Diagnostic
}

// StepSeverity pairs a step with its classification.
type StepSeverity struct {
	Step     migration.Step
	Severity Severity
}

// Steps returns the steps of the plan with their severity.
func (r *Result) Steps() []StepSeverity {
	out := make([]StepSeverity, len(r.Migration.Steps))
	for i, s := range r.Migration.Steps {
		out[i] = StepSeverity{Step: s, Severity: r.Severities[i]}
	}
	return out
}

// Blocked reports whether some step cannot run without force.
func (r *Result) Blocked() bool { return len(r.Unexecutable) > 0 }

// Worst returns the highest severity in the plan.
func (r *Result) Worst() Severity {
	sev := Safe
	for _, s := range r.Severities {
		sev = worst(sev, s)
	}
	return sev
}

// Probes lists the tables and columns whose counts Classify consults for m.
func Probes(m *migration.Migration) ([]TableRef, []ColumnRef) {
	tables := map[TableRef]bool{}
	columns := map[ColumnRef]bool{}
	column := func(c schema.ColumnWalker) {
		t := c.Table()
		tables[TableRef{Namespace: t.Namespace(), Table: t.Name()}] = true
		columns[ColumnRef{Namespace: t.Namespace(), Table: t.Name(), Column: c.Name()}] = true
	}

	for _, step := range m.Steps {
		switch s := step.(type) {
		case migration.DropTable:
			t := m.Previous.Table(s.Table)
			tables[TableRef{Namespace: t.Namespace(), Table: t.Name()}] = true
		case migration.AddColumn:
			t := m.Next.Column(s.Column).Table()
			tables[TableRef{Namespace: t.Namespace(), Table: t.Name()}] = true
		case migration.DropColumn:
			column(m.Previous.Column(s.Column))
		case migration.AlterColumnType:
			column(m.Previous.Column(s.Columns.Previous))
		case migration.AlterColumnNullability:
			column(m.Previous.Column(s.Columns.Previous))
		case migration.CreateIndex:
			idx := m.Next.Index(s.Index)
			if idx.Kind() == schema.IndexUnique {
				t := idx.Table()
				if _, ok := m.Previous.FindTable(t.Namespace(), t.Name()); ok {
					tables[TableRef{Namespace: t.Namespace(), Table: t.Name()}] = true
				}
			}
		}
	}

	tl := make([]TableRef, 0, len(tables))
	for t := range tables {
		tl = append(tl, t)
	}
	slices.SortFunc(tl, func(a, b TableRef) int {
		return cmp.Or(cmp.Compare(a.Namespace, b.Namespace), cmp.Compare(a.Table, b.Table))
	})
	cl := make([]ColumnRef, 0, len(columns))
	for c := range columns {
		cl = append(cl, c)
	}
	slices.SortFunc(cl, func(a, b ColumnRef) int {
		return cmp.Or(cmp.Compare(a.Namespace, b.Namespace), cmp.Compare(a.Table, b.Table), cmp.Compare(a.Column, b.Column))
	})
	return tl, cl
}

// Classify assigns a severity to every step of m. It never touches a database:
// everything data-dependent comes from facts. m is not modified.
func Classify(m *migration.Migration, facts Facts) *Result {
	out := *m
	out.Steps = slices.Clone(m.Steps)
	c := &classifier{
		m:     &out,
		facts: facts,
		res:   &Result{Migration: &out, Severities: make([]Severity, len(out.Steps))},
	}
	for i := range out.Steps {
		c.step(i)
	}
	return c.res
}

type classifier struct {
	m     *migration.Migration
	facts Facts
	res   *Result
}

func (c *classifier) warn(i int, format string, args ...any) {
	c.res.Warnings = append(c.res.Warnings, Diagnostic{StepIndex: i, Message: fmt.Sprintf(format, args...)})
	c.res.Severities[i] = worst(c.res.Severities[i], Risky)
}

func (c *classifier) block(i int, format string, args ...any) {
	c.res.Unexecutable = append(c.res.Unexecutable, Diagnostic{StepIndex: i, Message: fmt.Sprintf(format, args...)})
	c.res.Severities[i] = NotCastable
}

func tableRef(t schema.TableWalker) TableRef {
	return TableRef{Namespace: t.Namespace(), Table: t.Name()}
}

func columnRef(col schema.ColumnWalker) ColumnRef {
	t := col.Table()
	return ColumnRef{Namespace: t.Namespace(), Table: t.Name(), Column: col.Name()}
}

func (c *classifier) step(i int) {
	m := c.m
	switch s := m.Steps[i].(type) {
	case migration.DropTable:
		t := m.Previous.Table(s.Table)
		switch n, ok := c.facts.rows(tableRef(t)); {
		case !ok:
			c.warn(i, "You are about to drop the `%s` table, which may not be empty.", t.Name())
		case n > 0:
			c.warn(i, "You are about to drop the `%s` table, which is not empty (%d rows).", t.Name(), n)
		}

	case migration.DropColumn:
		col := m.Previous.Column(s.Column)
		switch n, ok := c.facts.nonNull(columnRef(col)); {
		case !ok:
			c.warn(i, "You are about to drop the column `%s` on the `%s` table, which may still contain data.",
				col.Name(), col.Table().Name())
		case n > 0:
			c.warn(i, "You are about to drop the column `%s` on the `%s` table, which still contains %d non-null values.",
				col.Name(), col.Table().Name(), n)
		}

	case migration.AddColumn:
		col := m.Next.Column(s.Column)
		if !col.IsRequired() || col.Default() != nil || col.AutoIncrement() {
			return
		}
		switch n, ok := c.facts.rows(tableRef(col.Table())); {
		case !ok:
			c.block(i, "Added the required column `%s` to the `%s` table without a default value. The table may not be empty, it is not possible to execute this step.",
				col.Name(), col.Table().Name())
		case n > 0:
			c.block(i, "Added the required column `%s` to the `%s` table without a default value. There are %d rows in this table, it is not possible to execute this step.",
				col.Name(), col.Table().Name(), n)
		}

	case migration.AlterColumnType:
		c.typeChange(i, s.Columns)

	case migration.AlterColumnNullability:
		prev, next := m.Previous.Column(s.Columns.Previous), m.Next.Column(s.Columns.Next)
		if prev.IsRequired() || !next.IsRequired() {
			return
		}
		ref := columnRef(prev)
		rows, rowsKnown := c.facts.rows(tableRef(prev.Table()))
		nonNull, nonNullKnown := c.facts.nonNull(ref)
		switch {
		case rowsKnown && nonNullKnown && rows-nonNull == 0:
		case rowsKnown && nonNullKnown:
			c.warn(i, "Made the column `%s` on table `%s` required, but there are %d existing NULL values.",
				prev.Name(), prev.Table().Name(), rows-nonNull)
		default:
			c.warn(i, "Made the column `%s` on table `%s` required, but it may contain NULL values.",
				prev.Name(), prev.Table().Name())
		}

	case migration.DropIndex:
		idx := m.Previous.Index(s.Index)
		t := idx.Table()
		if !idx.IsPrimaryKey() {
			return
		}
		if _, ok := m.Next.FindTable(t.Namespace(), t.Name()); ok {
			c.warn(i, "The primary key for the `%s` table will be changed. If it partially fails, the table could be left without primary key constraint.",
				t.Name())
		}

	case migration.CreateIndex:
		idx := m.Next.Index(s.Index)
		t := idx.Table()
		if idx.Kind() != schema.IndexUnique {
			return
		}
		if _, existed := m.Previous.FindTable(t.Namespace(), t.Name()); !existed || c.facts.isEmpty(tableRef(t)) {
			return
		}
		c.warn(i, "A unique constraint covering the columns `[%s]` on the table `%s` will be added. If there are existing duplicate values, this will fail.",
			strings.Join(idx.ColumnNames(), ","), t.Name())

	case migration.AlterEnum:
		if len(s.Dropped) == 0 {
			return
		}
		c.warn(i, "The values [%s] on the enum `%s` will be removed. If these variants are still used in the database, this will fail.",
			strings.Join(s.Dropped, ","), m.Next.Enum(s.Enums.Next).Name())
	}
}

func (c *classifier) typeChange(i int, cols migration.Pair[schema.ColumnID]) {
	m := c.m
	prev, next := m.Previous.Column(cols.Previous), m.Next.Column(cols.Next)
	table := prev.Table().Name()

	switch Cast(m.Dialect, prev, next) {
	case Safe:
	case Risky:
		if n, ok := c.facts.nonNull(columnRef(prev)); ok && n > 0 {
			c.warn(i, "You are about to alter the column `%s` on the `%s` table, which contains %d non-null values. The data in that column will be cast from `%s` to `%s`.",
				prev.Name(), table, n, prev.TypeName(), next.TypeName())
			return
		}
		c.warn(i, "You are about to alter the column `%s` on the `%s` table. The data in that column will be cast from `%s` to `%s`.",
			prev.Name(), table, prev.TypeName(), next.TypeName())
	case NotCastable:
		m.Steps[i] = migration.DropAndRecreateColumn{Columns: cols}
		if c.facts.isEmpty(tableRef(prev.Table())) {
			c.warn(i, "The `%s` column on the `%s` table would be dropped and recreated. This will lead to data loss.",
				prev.Name(), table)
			return
		}
		if next.IsRequired() {
			c.block(i, "Changed the type of `%s` on the `%s` table from `%s` to `%s`. No cast exists, the column would be dropped and recreated, which cannot be done since the column is required and there is data in the table.",
				prev.Name(), table, prev.TypeName(), next.TypeName())
			return
		}
		c.block(i, "Changed the type of `%s` on the `%s` table from `%s` to `%s`. No cast exists, the column would be dropped and recreated and the data in that column would be lost.",
			prev.Name(), table, prev.TypeName(), next.TypeName())
	}
}
