package render

import (
	"fmt"
	"strings"

	"github.com/tordrt/schemaplan/internal/dialect"
	"github.com/tordrt/schemaplan/internal/migration"
	"github.com/tordrt/schemaplan/internal/schema"
)

// SQLite can add and rename columns in place but little else. Any other change
// to an existing table rebuilds it: a new table is created under a temporary
// name, the surviving data is copied over, the old table is dropped and the new
// one takes its name. All of a table's changes share one rebuild.

// bodyTable returns the next version of the table a column, key or foreign key
// step changes. ok is false for steps that do not change an existing table.
func (r *renderer) bodyTable(step migration.Step) (t schema.TableWalker, rebuild, ok bool) {
	prev, next := r.m.Previous, r.m.Next
	existing := func(p schema.TableWalker) (schema.TableWalker, bool) {
		return next.FindTable(p.Namespace(), p.Name())
	}

	switch s := step.(type) {
	case migration.AddColumn:
		c := next.Column(s.Column)
		t = c.Table()
		if _, found := prev.FindTable(t.Namespace(), t.Name()); !found {
			return t, false, false
		}
		return t, !sqliteCanAdd(c), true
	case migration.RenameColumn:
		return next.Column(s.Columns.Next).Table(), false, true
	case migration.DropColumn:
		t, ok = existing(prev.Column(s.Column).Table())
		return t, true, ok
	case migration.AlterColumnType:
		return next.Column(s.Columns.Next).Table(), true, true
	case migration.DropAndRecreateColumn:
		return next.Column(s.Columns.Next).Table(), true, true
	case migration.AlterColumnNullability:
		return next.Column(s.Columns.Next).Table(), true, true
	case migration.AlterColumnDefault:
		return next.Column(s.Columns.Next).Table(), true, true
	case migration.AddForeignKey:
		t = next.ForeignKey(s.ForeignKey).Table()
		_, found := prev.FindTable(t.Namespace(), t.Name())
		return t, found, found
	case migration.DropForeignKey:
		t, ok = existing(prev.ForeignKey(s.ForeignKey).Table())
		return t, true, ok
	case migration.CreateIndex:
		idx := next.Index(s.Index)
		if !idx.IsPrimaryKey() {
			return t, false, false
		}
		t = idx.Table()
		_, found := prev.FindTable(t.Namespace(), t.Name())
		return t, found, found
	case migration.DropIndex:
		idx := prev.Index(s.Index)
		if !idx.IsPrimaryKey() {
			return t, false, false
		}
		t, ok = existing(idx.Table())
		return t, true, ok
	}
	return t, false, false
}

// sqliteCanAdd reports whether ALTER TABLE ADD COLUMN accepts c: a required
// column needs a constant default, and the column cannot be a key.
func sqliteCanAdd(c schema.ColumnWalker) bool {
	if c.AutoIncrement() || c.IsPartOfPrimaryKey() {
		return false
	}
	def := c.Default()
	if def != nil && def.Kind != schema.DefaultValue {
		return false
	}
	return !c.IsRequired() || def != nil
}

// RebuildsTables reports whether m rebuilds a SQLite table. Foreign key
// enforcement has to be off while such a plan runs.
func RebuildsTables(m *migration.Migration) bool {
	if m.Dialect != dialect.SQLite {
		return false
	}
	return len(newRenderer(m).rebuilt) > 0
}

func (r *renderer) planRebuilds() {
	for _, step := range r.m.Steps {
		if t, rebuild, ok := r.bodyTable(step); ok && rebuild {
			r.rebuilt[t.ID] = -1
		}
	}
	for i, step := range r.m.Steps {
		t, _, ok := r.bodyTable(step)
		if !ok {
			continue
		}
		if first, rebuilt := r.rebuilt[t.ID]; rebuilt && first < 0 {
			r.rebuilt[t.ID] = i
		}
	}
}

// rebuildTarget reports the rebuilt table a step belongs to.
func (r *renderer) rebuildTarget(step migration.Step) (schema.TableWalker, bool) {
	if len(r.rebuilt) == 0 {
		return schema.TableWalker{}, false
	}
	t, _, ok := r.bodyTable(step)
	if !ok {
		return schema.TableWalker{}, false
	}
	_, rebuilt := r.rebuilt[t.ID]
	return t, rebuilt
}

func (r *renderer) sqliteRebuild(t schema.TableWalker) []string {
	prev, _ := r.m.Previous.FindTable(t.Namespace(), t.Name())
	tmp := "new_" + t.Name()
	sources := r.copySources(prev, t)

	stmts := []string{r.createTable(t, tmp)}
	var into, from []string
	for _, c := range t.Columns() {
		src, ok := sources[c.ID]
		if !ok {
			continue
		}
		into = append(into, r.q(c.Name()))
		from = append(from, r.q(src))
	}
	if len(into) > 0 {
		stmts = append(stmts, fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s",
			r.q(tmp), strings.Join(into, ", "), strings.Join(from, ", "), r.q(t.Name())))
	}
	stmts = append(stmts,
		"DROP TABLE "+r.q(t.Name()),
		fmt.Sprintf("ALTER TABLE %s RENAME TO %s", r.q(tmp), r.q(t.Name())),
	)
	// Indexes went with the old table. Those without their own step come back now.
	for _, idx := range t.Indexes() {
		if idx.IsPrimaryKey() || r.createdIndexes[idx.ID] {
			continue
		}
		stmts = append(stmts, r.createIndex(idx))
	}
	return stmts
}

// copySources maps each column of the rebuilt table to the previous column
// its data comes from. Added and recreated columns start empty.
func (r *renderer) copySources(prev, next schema.TableWalker) map[schema.ColumnID]string {
	fresh := map[schema.ColumnID]bool{}
	renamed := map[schema.ColumnID]string{}
	for _, step := range r.m.Steps {
		switch s := step.(type) {
		case migration.AddColumn:
			fresh[s.Column] = true
		case migration.DropAndRecreateColumn:
			fresh[s.Columns.Next] = true
		case migration.RenameColumn:
			renamed[s.Columns.Next] = r.m.Previous.Column(s.Columns.Previous).Name()
		}
	}

	out := map[schema.ColumnID]string{}
	for _, c := range next.Columns() {
		if fresh[c.ID] {
			continue
		}
		if from, ok := renamed[c.ID]; ok {
			out[c.ID] = from
			continue
		}
		if _, ok := prev.Column(c.Name()); ok {
			out[c.ID] = c.Name()
		}
	}
	return out
}
