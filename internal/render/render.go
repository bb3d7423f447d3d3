// Package render turns migration steps into the SQL statements of their
// dialect.
package render

import (
	"fmt"
	"strings"

	"github.com/tordrt/schemaplan/internal/dialect"
	"github.com/tordrt/schemaplan/internal/migration"
	"github.com/tordrt/schemaplan/internal/schema"
)

type renderer struct {
	m *migration.Migration
	d dialect.Dialect

	// SQLite tables that are rebuilt, by next table handle. The value is the
	// index of the step that carries the rebuild; the table's other steps
	// render nothing.
	rebuilt map[schema.TableID]int
	// Next indexes created by their own step.
	createdIndexes map[schema.IndexID]bool
}

func newRenderer(m *migration.Migration) *renderer {
	r := &renderer{
		m:              m,
		d:              m.Dialect,
		rebuilt:        map[schema.TableID]int{},
		createdIndexes: map[schema.IndexID]bool{},
	}
	for _, step := range m.Steps {
		if s, ok := step.(migration.CreateIndex); ok {
			r.createdIndexes[s.Index] = true
		}
	}
	if r.d == dialect.SQLite {
		r.planRebuilds()
	}
	return r
}

// Render returns the statements of every step of m. The statements of
// m.Steps[i] are at index i. A step whose effect is folded into another
// step's statements renders none.
func Render(m *migration.Migration) ([][]string, error) {
	r := newRenderer(m)
	out := make([][]string, len(m.Steps))
	for i, step := range m.Steps {
		stmts, err := r.step(i, step)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", m.Describe(step), err)
		}
		out[i] = stmts
	}
	return out, nil
}

// Script renders m as a single SQL script with a comment above each step.
func Script(m *migration.Migration) (string, error) {
	steps, err := Render(m)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	rebuilds := RebuildsTables(m)
	if rebuilds {
		b.WriteString("PRAGMA defer_foreign_keys=ON;\nPRAGMA foreign_keys=OFF;\n\n")
	}
	for i, stmts := range steps {
		if len(stmts) == 0 {
			continue
		}
		fmt.Fprintf(&b, "-- %s\n", m.Describe(m.Steps[i]))
		for _, s := range stmts {
			b.WriteString(s)
			b.WriteString(";\n")
		}
		b.WriteString("\n")
	}
	if rebuilds {
		b.WriteString("PRAGMA foreign_keys=ON;\nPRAGMA defer_foreign_keys=OFF;\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n", nil
}

func (r *renderer) step(i int, step migration.Step) ([]string, error) {
	prev, next := r.m.Previous, r.m.Next

	if t, ok := r.rebuildTarget(step); ok {
		if r.rebuilt[t.ID] != i {
			return nil, nil
		}
		return r.sqliteRebuild(t), nil
	}

	switch s := step.(type) {
	case migration.CreateNamespace:
		return r.createNamespace(next.Namespace(s.Namespace).Name())
	case migration.DropNamespace:
		return r.dropNamespace(prev.Namespace(s.Namespace).Name())
	case migration.CreateEnum:
		return r.createEnum(next.Enum(s.Enum))
	case migration.DropEnum:
		return r.dropEnum(prev.Enum(s.Enum))
	case migration.AlterEnum:
		return r.alterEnum(s)
	case migration.CreateSequence:
		return r.createSequence(next.Sequence(s.Sequence))
	case migration.DropSequence:
		return r.dropSequence(prev.Sequence(s.Sequence))
	case migration.AlterSequence:
		return r.alterSequence(s)
	case migration.CreateTable:
		return []string{r.createTable(next.Table(s.Table), next.Table(s.Table).Name())}, nil
	case migration.DropTable:
		t := prev.Table(s.Table)
		return []string{"DROP TABLE " + r.table(t)}, nil
	case migration.AddColumn:
		return r.addColumn(next.Column(s.Column)), nil
	case migration.DropColumn:
		return r.dropColumn(prev.Column(s.Column)), nil
	case migration.RenameColumn:
		return r.renameColumn(prev.Column(s.Columns.Previous), next.Column(s.Columns.Next)), nil
	case migration.AlterColumnType:
		return r.alterColumnType(prev.Column(s.Columns.Previous), next.Column(s.Columns.Next)), nil
	case migration.DropAndRecreateColumn:
		stmts := r.dropColumn(prev.Column(s.Columns.Previous))
		return append(stmts, r.addColumn(next.Column(s.Columns.Next))...), nil
	case migration.AlterColumnNullability:
		return r.alterColumnNullability(prev.Column(s.Columns.Previous), next.Column(s.Columns.Next)), nil
	case migration.AlterColumnDefault:
		return r.alterColumnDefault(prev.Column(s.Columns.Previous), next.Column(s.Columns.Next)), nil
	case migration.CreateIndex:
		return []string{r.createIndex(next.Index(s.Index))}, nil
	case migration.DropIndex:
		return []string{r.dropIndex(prev.Index(s.Index))}, nil
	case migration.AddForeignKey:
		fk := next.ForeignKey(s.ForeignKey)
		return []string{fmt.Sprintf("ALTER TABLE %s ADD %s", r.table(fk.Table()), r.foreignKeyClause(fk))}, nil
	case migration.DropForeignKey:
		return []string{r.dropForeignKey(prev.ForeignKey(s.ForeignKey))}, nil
	case migration.CreateView:
		v := next.View(s.View)
		def := strings.TrimSuffix(strings.TrimSpace(v.Definition()), ";")
		return []string{fmt.Sprintf("CREATE VIEW %s AS %s", r.d.QuoteTable(v.Namespace(), v.Name()), def)}, nil
	case migration.DropView:
		v := prev.View(s.View)
		return []string{"DROP VIEW " + r.d.QuoteTable(v.Namespace(), v.Name())}, nil
	default:
		return nil, fmt.Errorf("unknown step %T", step)
	}
}

func (r *renderer) q(ident string) string { return r.d.Quote(ident) }

func (r *renderer) table(t schema.TableWalker) string {
	return r.d.QuoteTable(t.Namespace(), t.Name())
}

func (r *renderer) quoteAll(names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = r.q(n)
	}
	return strings.Join(out, ", ")
}

func (r *renderer) unsupported(what string) error {
	return fmt.Errorf("%s is not supported on %s", what, r.d)
}

func (r *renderer) createNamespace(name string) ([]string, error) {
	switch {
	case r.d.IsPostgresFamily():
		return []string{"CREATE SCHEMA IF NOT EXISTS " + r.q(name)}, nil
	case r.d == dialect.SQLServer:
		return []string{"CREATE SCHEMA " + r.q(name)}, nil
	}
	return nil, r.unsupported("creating a schema")
}

func (r *renderer) dropNamespace(name string) ([]string, error) {
	if !r.d.Capabilities().Namespaces {
		return nil, r.unsupported("dropping a schema")
	}
	return []string{"DROP SCHEMA " + r.q(name)}, nil
}

func (r *renderer) enumValues(values []string) string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = r.d.QuoteString(v)
	}
	return strings.Join(out, ", ")
}

func (r *renderer) createEnum(e schema.EnumWalker) ([]string, error) {
	if !r.d.IsPostgresFamily() {
		return nil, r.unsupported("enum types")
	}
	return []string{fmt.Sprintf("CREATE TYPE %s AS ENUM (%s)",
		r.d.QuoteTable(e.Namespace(), e.Name()), r.enumValues(e.Values()))}, nil
}

func (r *renderer) dropEnum(e schema.EnumWalker) ([]string, error) {
	if !r.d.IsPostgresFamily() {
		return nil, r.unsupported("enum types")
	}
	return []string{"DROP TYPE " + r.d.QuoteTable(e.Namespace(), e.Name())}, nil
}

// alterEnum adds values in place. Removing a value is not possible in place,
// so the type is swapped for a new one and every column using it is cast over.
func (r *renderer) alterEnum(s migration.AlterEnum) ([]string, error) {
	if !r.d.IsPostgresFamily() {
		return nil, r.unsupported("enum types")
	}
	e := r.m.Next.Enum(s.Enums.Next)
	name := r.d.QuoteTable(e.Namespace(), e.Name())

	if len(s.Dropped) == 0 {
		stmts := make([]string, 0, len(s.Added))
		for _, v := range s.Added {
			stmts = append(stmts, fmt.Sprintf("ALTER TYPE %s ADD VALUE %s", name, r.d.QuoteString(v)))
		}
		return stmts, nil
	}

	old := e.Name() + "_old"
	stmts := []string{
		fmt.Sprintf("ALTER TYPE %s RENAME TO %s", name, r.q(old)),
		fmt.Sprintf("CREATE TYPE %s AS ENUM (%s)", name, r.enumValues(e.Values())),
	}
	for _, c := range r.enumColumns(e) {
		tbl := r.table(c.Table())
		target := name
		if c.IsList() {
			target += "[]"
		}
		from := "text"
		if c.IsList() {
			from = "text[]"
		}
		if c.Default() != nil {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT", tbl, r.q(c.Name())))
		}
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s USING (%s::%s::%s)",
			tbl, r.q(c.Name()), target, r.q(c.Name()), from, target))
		if expr, ok := r.defaultExpr(c); ok {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s", tbl, r.q(c.Name()), expr))
		}
	}
	stmts = append(stmts, "DROP TYPE "+r.d.QuoteTable(e.Namespace(), old))
	return stmts, nil
}

// enumColumns returns the previous columns typed with the enum named like e.
// Columns added later in the migration do not exist yet.
func (r *renderer) enumColumns(e schema.EnumWalker) []schema.ColumnWalker {
	var out []schema.ColumnWalker
	for _, t := range r.m.Previous.Tables() {
		for _, c := range t.Columns() {
			pe, ok := c.Enum()
			if ok && pe.Name() == e.Name() && r.m.Namespace(pe.Namespace()) == r.m.Namespace(e.Namespace()) {
				out = append(out, c)
			}
		}
	}
	return out
}

func (r *renderer) createSequence(q schema.SequenceWalker) ([]string, error) {
	var opts []string
	seq := q.Get()
	switch {
	case r.d.IsPostgresFamily():
	case r.d == dialect.SQLServer:
		opts = append(opts, "AS BIGINT")
	default:
		return nil, r.unsupported("sequences")
	}
	if seq.Start != 0 {
		opts = append(opts, fmt.Sprintf("START WITH %d", seq.Start))
	}
	opts = append(opts, r.sequenceOptions(seq, migration.SequenceMin|migration.SequenceMax|
		migration.SequenceIncrement|migration.SequenceCache|migration.SequenceCycle)...)
	return []string{strings.TrimSpace("CREATE SEQUENCE " + r.d.QuoteTable(q.Namespace(), q.Name()) + " " + strings.Join(opts, " "))}, nil
}

func (r *renderer) sequenceOptions(seq schema.Sequence, changes migration.SequenceChanges) []string {
	var opts []string
	if changes.Has(migration.SequenceIncrement) && seq.Increment != 0 {
		opts = append(opts, fmt.Sprintf("INCREMENT BY %d", seq.Increment))
	}
	if changes.Has(migration.SequenceMin) && seq.Min != 0 {
		opts = append(opts, fmt.Sprintf("MINVALUE %d", seq.Min))
	}
	if changes.Has(migration.SequenceMax) && seq.Max != 0 {
		opts = append(opts, fmt.Sprintf("MAXVALUE %d", seq.Max))
	}
	if changes.Has(migration.SequenceCache) {
		switch {
		case seq.Cache > 0:
			opts = append(opts, fmt.Sprintf("CACHE %d", seq.Cache))
		case r.d == dialect.SQLServer:
			opts = append(opts, "NO CACHE")
		}
	}
	if changes.Has(migration.SequenceCycle) {
		if seq.Cycle {
			opts = append(opts, "CYCLE")
		} else {
			opts = append(opts, "NO CYCLE")
		}
	}
	return opts
}

func (r *renderer) alterSequence(s migration.AlterSequence) ([]string, error) {
	if !r.d.Capabilities().Sequences {
		return nil, r.unsupported("sequences")
	}
	q := r.m.Next.Sequence(s.Sequences.Next)
	seq := q.Get()
	var opts []string
	if s.Changes.Has(migration.SequenceStart) {
		if r.d == dialect.SQLServer {
			opts = append(opts, fmt.Sprintf("RESTART WITH %d", seq.Start))
		} else {
			opts = append(opts, fmt.Sprintf("START WITH %d", seq.Start))
		}
	}
	opts = append(opts, r.sequenceOptions(seq, s.Changes)...)
	if len(opts) == 0 {
		return nil, nil
	}
	return []string{fmt.Sprintf("ALTER SEQUENCE %s %s", r.d.QuoteTable(q.Namespace(), q.Name()), strings.Join(opts, " "))}, nil
}

func (r *renderer) dropSequence(q schema.SequenceWalker) ([]string, error) {
	if !r.d.Capabilities().Sequences {
		return nil, r.unsupported("sequences")
	}
	return []string{"DROP SEQUENCE " + r.d.QuoteTable(q.Namespace(), q.Name())}, nil
}

// createTable renders t under the given name; SQLite rebuilds create the new
// table under a temporary name.
func (r *renderer) createTable(t schema.TableWalker, name string) string {
	var lines []string
	pk, hasPK := t.PrimaryKey()
	inlinePK := hasPK && r.d == dialect.SQLite && len(pk.Columns()) == 1 && pk.Columns()[0].Column().AutoIncrement()

	for _, c := range t.Columns() {
		lines = append(lines, "    "+r.columnDefinition(c, inlinePK && c.ID == pk.Columns()[0].Column().ID))
	}
	if hasPK && !inlinePK {
		lines = append(lines, "    "+r.primaryKeyClause(pk))
	}
	if r.d == dialect.SQLite {
		for _, fk := range t.ForeignKeys() {
			lines = append(lines, "    "+r.foreignKeyClause(fk))
		}
	}

	stmt := fmt.Sprintf("CREATE TABLE %s (\n%s\n)", r.d.QuoteTable(t.Namespace(), name), strings.Join(lines, ",\n"))
	if r.d.IsMySQLFamily() {
		stmt += " DEFAULT CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci"
	}
	return stmt
}

func (r *renderer) primaryKeyClause(pk schema.IndexWalker) string {
	cols := r.indexColumns(pk)
	if r.d.IsMySQLFamily() || (r.d == dialect.SQLite && pk.Name() == "") {
		return fmt.Sprintf("PRIMARY KEY (%s)", cols)
	}
	return fmt.Sprintf("CONSTRAINT %s PRIMARY KEY (%s)", r.q(indexName(pk)), cols)
}

func (r *renderer) foreignKeyClause(fk schema.ForeignKeyWalker) string {
	var b strings.Builder
	if fk.Name() != "" || r.d != dialect.SQLite {
		fmt.Fprintf(&b, "CONSTRAINT %s ", r.q(foreignKeyName(fk)))
	}
	fmt.Fprintf(&b, "FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE %s ON UPDATE %s",
		r.quoteAll(fk.ColumnNames()), r.table(fk.ReferencedTable()), r.quoteAll(fk.ReferencedColumnNames()),
		r.action(fk.OnDelete()), r.action(fk.OnUpdate()))
	return b.String()
}

func (r *renderer) action(a schema.Action) string {
	if a == schema.Restrict && r.d == dialect.SQLServer {
		return schema.NoAction.String()
	}
	return a.String()
}

func (r *renderer) dropForeignKey(fk schema.ForeignKeyWalker) string {
	if r.d.IsMySQLFamily() {
		return fmt.Sprintf("ALTER TABLE %s DROP FOREIGN KEY %s", r.table(fk.Table()), r.q(foreignKeyName(fk)))
	}
	return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", r.table(fk.Table()), r.q(foreignKeyName(fk)))
}

func (r *renderer) indexColumns(idx schema.IndexWalker) string {
	cols := idx.Columns()
	out := make([]string, len(cols))
	for i, ic := range cols {
		s := r.q(ic.Name())
		if ic.Length() > 0 && r.d.IsMySQLFamily() {
			s += fmt.Sprintf("(%d)", ic.Length())
		}
		if ic.OperatorClass() != "" {
			s += " " + ic.OperatorClass()
		}
		if ic.SortOrder() == schema.Desc {
			s += " DESC"
		}
		out[i] = s
	}
	return strings.Join(out, ", ")
}

func (r *renderer) createIndex(idx schema.IndexWalker) string {
	t := idx.Table()
	if idx.IsPrimaryKey() {
		return fmt.Sprintf("ALTER TABLE %s ADD %s", r.table(t), r.primaryKeyClause(idx))
	}

	var b strings.Builder
	b.WriteString("CREATE ")
	switch idx.Kind() {
	case schema.IndexUnique:
		b.WriteString("UNIQUE ")
	case schema.IndexFulltext:
		if r.d.IsMySQLFamily() {
			b.WriteString("FULLTEXT ")
		}
	}
	if r.d == dialect.SQLServer {
		b.WriteString("NONCLUSTERED ")
	}

	fmt.Fprintf(&b, "INDEX %s ON %s", r.q(indexName(idx)), r.table(t))
	if r.d.IsPostgresFamily() && idx.Algorithm() != "" && idx.Algorithm() != schema.BTree {
		fmt.Fprintf(&b, " USING %s", strings.ToUpper(string(idx.Algorithm())))
	}
	fmt.Fprintf(&b, " (%s)", r.indexColumns(idx))
	if p := idx.Predicate(); p != "" {
		fmt.Fprintf(&b, " WHERE %s", p)
	}
	if r.d.IsMySQLFamily() && idx.Algorithm() == schema.Hash {
		b.WriteString(" USING HASH")
	}
	return b.String()
}

func (r *renderer) dropIndex(idx schema.IndexWalker) string {
	t := idx.Table()
	switch {
	case idx.IsPrimaryKey() && r.d.IsMySQLFamily():
		return fmt.Sprintf("ALTER TABLE %s DROP PRIMARY KEY", r.table(t))
	case idx.IsPrimaryKey():
		return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", r.table(t), r.q(indexName(idx)))
	case r.d.IsMySQLFamily(), r.d == dialect.SQLServer:
		return fmt.Sprintf("DROP INDEX %s ON %s", r.q(indexName(idx)), r.table(t))
	case r.d == dialect.SQLite:
		// A rebuild earlier in the plan already took the index with the old table.
		return "DROP INDEX IF EXISTS " + r.q(indexName(idx))
	default:
		// Postgres index names live in the schema, not the table.
		return "DROP INDEX " + r.d.QuoteTable(t.Namespace(), indexName(idx))
	}
}

// indexName returns the index name, or the name the database would give an
// unnamed one.
func indexName(idx schema.IndexWalker) string {
	if idx.Name() != "" {
		return idx.Name()
	}
	t := idx.Table().Name()
	switch idx.Kind() {
	case schema.IndexPrimaryKey:
		return t + "_pkey"
	case schema.IndexUnique:
		return t + "_" + strings.Join(idx.ColumnNames(), "_") + "_key"
	default:
		return t + "_" + strings.Join(idx.ColumnNames(), "_") + "_idx"
	}
}

func foreignKeyName(fk schema.ForeignKeyWalker) string {
	if fk.Name() != "" {
		return fk.Name()
	}
	return fk.Table().Name() + "_" + strings.Join(fk.ColumnNames(), "_") + "_fkey"
}
