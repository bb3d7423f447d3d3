// Package differ compares two schema snapshots and produces the ordered
// migration that turns the first into the second.
package differ

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tordrt/schemaplan/internal/dialect"
	"github.com/tordrt/schemaplan/internal/migration"
	"github.com/tordrt/schemaplan/internal/schema"
)

// ColumnRename maps a column of the desired schema to its previous name. A
// name change without a mapping is a drop of the old column and an add of the
// new one.
type ColumnRename struct {
	Namespace string
	Table     string
	From      string
	To        string
}

// Options configures a diff.
type Options struct {
	Dialect dialect.Dialect
	Renames []ColumnRename
}

type tableRef struct {
	namespace string
	name      string
}

type differ struct {
	m       *migration.Migration
	caps    dialect.Capabilities
	renames map[tableRef]map[string]string

	tables      []tablePair
	createdTabs []schema.TableWalker
	droppedTabs []schema.TableWalker
	nextTable   map[schema.TableID]schema.TableID
	nextColumn  map[schema.ColumnID]schema.ColumnID
	typeChanged map[schema.ColumnID]bool
	pkChanged   map[schema.TableID]bool
	keptIndexes map[schema.IndexID]bool
	steps       []migration.Step
	unsupported []error
}

type tablePair struct {
	prev, next schema.TableWalker
	columns    []columnPair
	added      []schema.ColumnWalker
	dropped    []schema.ColumnWalker
}

type columnPair struct {
	prev, next schema.ColumnWalker
	renamed    bool
}

// Diff computes the steps that migrate current into desired, ordered for
// execution. The differ performs no I/O.
//
// Transitions the dialect cannot express are reported as UnsupportedChangeError
// values joined into the returned error; the migration still carries every
// other step so the rest of the plan can be shown.
func Diff(current, desired *schema.Schema, opts Options) (*migration.Migration, error) {
	if !opts.Dialect.Valid() {
		return nil, fmt.Errorf("unsupported dialect: %q", opts.Dialect)
	}
	if current == nil {
		current = schema.Empty()
	}
	if desired == nil {
		desired = schema.Empty()
	}

	d := &differ{
		m:           &migration.Migration{Dialect: opts.Dialect, Previous: current, Next: desired},
		caps:        opts.Dialect.Capabilities(),
		renames:     map[tableRef]map[string]string{},
		nextTable:   map[schema.TableID]schema.TableID{},
		nextColumn:  map[schema.ColumnID]schema.ColumnID{},
		typeChanged: map[schema.ColumnID]bool{},
		pkChanged:   map[schema.TableID]bool{},
		keptIndexes: map[schema.IndexID]bool{},
	}
	for _, r := range opts.Renames {
		ref := tableRef{d.m.Namespace(r.Namespace), r.Table}
		if d.renames[ref] == nil {
			d.renames[ref] = map[string]string{}
		}
		d.renames[ref][r.To] = r.From
	}

	d.checkCapabilities()
	d.diffNamespaces()
	d.diffEnums()
	d.diffSequences()
	d.matchTables()
	d.diffColumns()
	d.diffIndexes()
	d.diffForeignKeys()
	d.diffViews()

	d.m.Steps = d.steps
	if err := migration.Order(d.m); err != nil {
		return d.m, err
	}
	if len(d.unsupported) > 0 {
		return d.m, errors.Join(d.unsupported...)
	}
	return d.m, nil
}

func (d *differ) push(steps ...migration.Step) {
	d.steps = append(d.steps, steps...)
}

func (d *differ) unsupportedf(ns, table, name, format string, args ...any) {
	d.unsupported = append(d.unsupported, &UnsupportedChangeError{
		Namespace: ns,
		Table:     table,
		Name:      name,
		Reason:    fmt.Sprintf(format, args...),
	})
}

func (d *differ) ref(namespace, name string) tableRef {
	return tableRef{d.m.Namespace(namespace), name}
}

// checkCapabilities rejects desired entities the dialect has no way to hold.
func (d *differ) checkCapabilities() {
	next, dl := d.m.Next, d.m.Dialect

	if !d.caps.Namespaces {
		seen := map[string]bool{}
		for _, ns := range next.Namespaces() {
			if ns.Name() != "" {
				seen[ns.Name()] = true
			}
		}
		if len(seen) > 1 {
			d.unsupportedf("", "", "", "%s does not support multiple namespaces", dl)
		}
	}
	if !d.caps.Enums {
		for _, e := range next.Enums() {
			d.unsupportedf(d.m.Namespace(e.Namespace()), "", e.Name(), "%s does not support enum types", dl)
		}
	}
	if !d.caps.Sequences {
		for _, q := range next.Sequences() {
			d.unsupportedf(d.m.Namespace(q.Namespace()), "", q.Name(), "%s does not support sequences", dl)
		}
	}
	for _, t := range next.Tables() {
		ns := d.m.Namespace(t.Namespace())
		if !d.caps.Lists {
			for _, c := range t.Columns() {
				if c.IsList() {
					d.unsupportedf(ns, t.Name(), c.Name(), "%s does not support list columns", dl)
				}
			}
		}
		for _, idx := range t.Indexes() {
			if idx.Predicate() != "" && !d.caps.PartialIndexes {
				d.unsupportedf(ns, t.Name(), idx.Name(), "%s does not support partial indexes", dl)
			}
			if d.caps.OperatorClasses {
				continue
			}
			for _, ic := range idx.Columns() {
				if ic.OperatorClass() != "" {
					d.unsupportedf(ns, t.Name(), idx.Name(), "%s does not support operator classes", dl)
					break
				}
			}
		}
	}
}

func (d *differ) diffNamespaces() {
	if !d.caps.Namespaces {
		return
	}
	def := d.m.Dialect.DefaultNamespace()
	prev, next := d.m.Previous, d.m.Next

	for _, ns := range next.Namespaces() {
		if ns.Name() == def || ns.Name() == "" {
			continue
		}
		if _, ok := prev.FindNamespace(ns.Name()); !ok {
			d.push(migration.CreateNamespace{Namespace: ns.ID})
		}
	}
	for _, ns := range prev.Namespaces() {
		if ns.Name() == def || ns.Name() == "" {
			continue
		}
		if _, ok := next.FindNamespace(ns.Name()); !ok {
			d.push(migration.DropNamespace{Namespace: ns.ID})
		}
	}
}

func (d *differ) diffEnums() {
	if !d.caps.Enums {
		return
	}
	prev, next := d.m.Previous, d.m.Next
	previous := map[tableRef]schema.EnumWalker{}
	for _, e := range prev.Enums() {
		previous[d.ref(e.Namespace(), e.Name())] = e
	}

	matched := map[schema.EnumID]bool{}
	for _, e := range next.Enums() {
		p, ok := previous[d.ref(e.Namespace(), e.Name())]
		if !ok {
			d.push(migration.CreateEnum{Enum: e.ID})
			continue
		}
		matched[p.ID] = true
		added, dropped := difference(e.Values(), p.Values()), difference(p.Values(), e.Values())
		if len(added) > 0 || len(dropped) > 0 {
			d.push(migration.AlterEnum{
				Enums:   migration.Pair[schema.EnumID]{Previous: p.ID, Next: e.ID},
				Added:   added,
				Dropped: dropped,
			})
		}
	}
	for _, e := range prev.Enums() {
		if !matched[e.ID] {
			d.push(migration.DropEnum{Enum: e.ID})
		}
	}
}

// difference returns the values of a that are not in b, in a's order.
func difference(a, b []string) []string {
	in := make(map[string]bool, len(b))
	for _, v := range b {
		in[v] = true
	}
	var out []string
	for _, v := range a {
		if !in[v] {
			out = append(out, v)
		}
	}
	return out
}

func (d *differ) diffSequences() {
	if !d.caps.Sequences {
		return
	}
	prev, next := d.m.Previous, d.m.Next
	previous := map[tableRef]schema.SequenceWalker{}
	for _, q := range prev.Sequences() {
		previous[d.ref(q.Namespace(), q.Name())] = q
	}

	matched := map[schema.SequenceID]bool{}
	for _, q := range next.Sequences() {
		p, ok := previous[d.ref(q.Namespace(), q.Name())]
		if !ok {
			d.push(migration.CreateSequence{Sequence: q.ID})
			continue
		}
		matched[p.ID] = true
		if changes := sequenceChanges(p.Get(), q.Get()); changes != 0 {
			d.push(migration.AlterSequence{
				Sequences: migration.Pair[schema.SequenceID]{Previous: p.ID, Next: q.ID},
				Changes:   changes,
			})
		}
	}
	for _, q := range prev.Sequences() {
		if !matched[q.ID] {
			d.push(migration.DropSequence{Sequence: q.ID})
		}
	}
}

func sequenceChanges(a, b schema.Sequence) migration.SequenceChanges {
	var c migration.SequenceChanges
	if a.Start != b.Start {
		c |= migration.SequenceStart
	}
	if a.Min != b.Min {
		c |= migration.SequenceMin
	}
	if a.Max != b.Max {
		c |= migration.SequenceMax
	}
	if a.Increment != b.Increment {
		c |= migration.SequenceIncrement
	}
	if a.Cache != b.Cache {
		c |= migration.SequenceCache
	}
	if a.Cycle != b.Cycle {
		c |= migration.SequenceCycle
	}
	return c
}

func (d *differ) matchTables() {
	prev, next := d.m.Previous, d.m.Next
	previous := map[tableRef]schema.TableWalker{}
	for _, t := range prev.Tables() {
		previous[d.ref(t.Namespace(), t.Name())] = t
	}

	matched := map[schema.TableID]bool{}
	for _, t := range next.Tables() {
		p, ok := previous[d.ref(t.Namespace(), t.Name())]
		if !ok {
			d.createdTabs = append(d.createdTabs, t)
			continue
		}
		matched[p.ID] = true
		d.nextTable[p.ID] = t.ID
		d.tables = append(d.tables, tablePair{prev: p, next: t})
	}
	for _, t := range prev.Tables() {
		if !matched[t.ID] {
			d.droppedTabs = append(d.droppedTabs, t)
		}
	}

	sqlite := d.m.Dialect == dialect.SQLite
	for _, t := range d.createdTabs {
		d.push(migration.CreateTable{Table: t.ID})
		for _, idx := range t.Indexes() {
			if !idx.IsPrimaryKey() {
				d.push(migration.CreateIndex{Index: idx.ID})
			}
		}
		// SQLite declares foreign keys inline in CREATE TABLE.
		if sqlite {
			continue
		}
		for _, fk := range t.ForeignKeys() {
			d.push(migration.AddForeignKey{ForeignKey: fk.ID})
		}
	}
	for _, t := range d.droppedTabs {
		d.push(migration.DropTable{Table: t.ID})
		if sqlite {
			continue
		}
		// Dropping the keys first lets the tables go in any order.
		for _, fk := range t.ForeignKeys() {
			d.push(migration.DropForeignKey{ForeignKey: fk.ID})
		}
	}
}

func (d *differ) diffColumns() {
	for i := range d.tables {
		tp := &d.tables[i]
		renames := d.renames[d.ref(tp.next.Namespace(), tp.next.Name())]

		consumed := map[string]bool{}
		for _, c := range tp.next.Columns() {
			if from, ok := renames[c.Name()]; ok && from != c.Name() {
				p, found := tp.prev.Column(from)
				if !found {
					d.unsupportedf(d.m.Namespace(tp.next.Namespace()), tp.next.Name(), c.Name(),
						"renamed from `%s`, which does not exist", from)
					tp.added = append(tp.added, c)
					continue
				}
				consumed[from] = true
				tp.columns = append(tp.columns, columnPair{prev: p, next: c, renamed: true})
				continue
			}
			if _, renamedAway := renamedFrom(renames, c.Name()); renamedAway {
				tp.added = append(tp.added, c)
				continue
			}
			if p, ok := tp.prev.Column(c.Name()); ok {
				consumed[c.Name()] = true
				tp.columns = append(tp.columns, columnPair{prev: p, next: c})
				continue
			}
			tp.added = append(tp.added, c)
		}
		for _, p := range tp.prev.Columns() {
			if !consumed[p.Name()] {
				tp.dropped = append(tp.dropped, p)
			}
		}

		for _, c := range tp.added {
			d.push(migration.AddColumn{Column: c.ID})
		}
		for _, c := range tp.dropped {
			d.push(migration.DropColumn{Column: c.ID})
		}
		for _, cp := range tp.columns {
			d.nextColumn[cp.prev.ID] = cp.next.ID
			d.diffColumnPair(tp, cp)
		}
	}
}

// renamedFrom reports whether name is the previous name of some renamed column.
func renamedFrom(renames map[string]string, name string) (string, bool) {
	for to, from := range renames {
		if from == name && to != name {
			return to, true
		}
	}
	return "", false
}

func (d *differ) diffColumnPair(tp *tablePair, cp columnPair) {
	pair := migration.Pair[schema.ColumnID]{Previous: cp.prev.ID, Next: cp.next.ID}
	if cp.renamed {
		d.push(migration.RenameColumn{Columns: pair})
	}
	if columnTypeChanged(cp.prev, cp.next) {
		d.typeChanged[cp.prev.ID] = true
		d.push(migration.AlterColumnType{Columns: pair})
	}
	if arityChanged(cp.prev, cp.next) {
		d.push(migration.AlterColumnNullability{Columns: pair})
	}

	identityToggled := cp.prev.AutoIncrement() != cp.next.AutoIncrement()
	if identityToggled && d.m.Dialect == dialect.SQLite && rowidAlias(cp.prev) && rowidAlias(cp.next) {
		// the rowid assigns values with or without AUTOINCREMENT
		identityToggled = false
	}
	if identityToggled && !d.caps.MutableIdentity {
		d.unsupportedf(d.m.Namespace(tp.next.Namespace()), tp.next.Name(), cp.next.Name(),
			"the auto-increment property of a column cannot be changed in place on %s", d.m.Dialect)
		return
	}
	if identityToggled || !cp.prev.Default().Equal(cp.next.Default()) {
		d.push(migration.AlterColumnDefault{Columns: pair})
	}
}

// rowidAlias reports whether c is the lone INTEGER primary key column of its
// table, which SQLite makes an alias of the rowid.
func rowidAlias(c schema.ColumnWalker) bool {
	pk, ok := c.Table().PrimaryKey()
	if !ok || len(pk.Columns()) != 1 || pk.Columns()[0].Column().ID != c.ID {
		return false
	}
	return strings.EqualFold(c.TypeName(), "integer")
}

func columnTypeChanged(prev, next schema.ColumnWalker) bool {
	if prev.IsList() != next.IsList() {
		return true
	}
	pe, prevEnum := prev.Enum()
	ne, nextEnum := next.Enum()
	if prevEnum || nextEnum {
		return prevEnum != nextEnum || pe.Name() != ne.Name() || pe.Namespace() != ne.Namespace()
	}
	if pn, nn := prev.Native(), next.Native(); !pn.IsZero() && !nn.IsZero() {
		return !strings.EqualFold(pn.Name, nn.Name) || !sameArgs(pn, nn)
	}
	if prev.Family() != next.Family() {
		return true
	}
	if pf, nf := prev.FullDataType(), next.FullDataType(); pf != "" && nf != "" {
		return !strings.EqualFold(pf, nf)
	}
	return false
}

func sameArgs(a, b schema.NativeType) bool {
	if len(a.Args) != len(b.Args) {
		return false
	}
	for i := range a.Args {
		if strings.TrimSpace(a.Args[i]) != strings.TrimSpace(b.Args[i]) {
			return false
		}
	}
	return true
}

func arityChanged(prev, next schema.ColumnWalker) bool {
	if prev.IsList() || next.IsList() {
		return false
	}
	return prev.Arity() != next.Arity()
}

func (d *differ) diffIndexes() {
	for i := range d.tables {
		tp := &d.tables[i]
		prevIdx, nextIdx := tp.prev.Indexes(), tp.next.Indexes()
		matched := map[schema.IndexID]bool{}

		for _, n := range nextIdx {
			p, ok := d.matchIndex(prevIdx, n, matched)
			if !ok {
				d.push(migration.CreateIndex{Index: n.ID})
				if n.IsPrimaryKey() {
					d.pkChanged[tp.prev.ID] = true
				}
				continue
			}
			matched[p.ID] = true
			if d.indexesEqual(p, n) && !d.mustRecreateIndex(p) {
				d.keptIndexes[p.ID] = true
				continue
			}
			if n.IsPrimaryKey() && !d.indexesEqual(p, n) {
				d.pkChanged[tp.prev.ID] = true
			}
			d.push(migration.DropIndex{Index: p.ID}, migration.CreateIndex{Index: n.ID})
		}
		for _, p := range prevIdx {
			if matched[p.ID] {
				continue
			}
			if p.IsPrimaryKey() {
				d.pkChanged[tp.prev.ID] = true
			}
			d.push(migration.DropIndex{Index: p.ID})
		}

		if d.pkChanged[tp.prev.ID] && d.caps.AutoIncrementNeedsKey {
			d.checkAutoIncrementKey(tp)
		}
	}
}

// matchIndex finds the previous index for n: primary keys match by kind, named
// indexes by name, unnamed indexes by structure.
func (d *differ) matchIndex(prev []schema.IndexWalker, n schema.IndexWalker, taken map[schema.IndexID]bool) (schema.IndexWalker, bool) {
	for _, p := range prev {
		if taken[p.ID] {
			continue
		}
		switch {
		case n.IsPrimaryKey() || p.IsPrimaryKey():
			if n.IsPrimaryKey() && p.IsPrimaryKey() {
				return p, true
			}
		case n.Name() != "" && p.Name() != "":
			if n.Name() == p.Name() {
				return p, true
			}
		default:
			if d.indexesEqual(p, n) {
				return p, true
			}
		}
	}
	return schema.IndexWalker{}, false
}

func (d *differ) indexesEqual(p, n schema.IndexWalker) bool {
	if p.Kind() != n.Kind() || !sameAlgorithm(p.Algorithm(), n.Algorithm()) {
		return false
	}
	if normalizeSQL(p.Predicate()) != normalizeSQL(n.Predicate()) {
		return false
	}
	pc, nc := p.Columns(), n.Columns()
	if len(pc) != len(nc) {
		return false
	}
	for i := range pc {
		mapped, ok := d.nextColumn[pc[i].Column().ID]
		if !ok || mapped != nc[i].Column().ID {
			return false
		}
		if pc[i].SortOrder() != nc[i].SortOrder() || pc[i].OperatorClass() != nc[i].OperatorClass() || pc[i].Length() != nc[i].Length() {
			return false
		}
	}
	return true
}

func sameAlgorithm(a, b schema.IndexAlgorithm) bool {
	if a == "" {
		a = schema.BTree
	}
	if b == "" {
		b = schema.BTree
	}
	return a == b
}

// mustRecreateIndex is true when the dialect cannot change the type of a
// column that an index covers.
func (d *differ) mustRecreateIndex(p schema.IndexWalker) bool {
	if !d.caps.RecreateIndexesOnTypeChange {
		return false
	}
	for _, ic := range p.Columns() {
		if d.typeChanged[ic.Column().ID] {
			return true
		}
	}
	return false
}

// checkAutoIncrementKey rejects primary key changes that would leave an
// auto-increment column without a key while the old key is dropped.
func (d *differ) checkAutoIncrementKey(tp *tablePair) {
	pk, ok := tp.prev.PrimaryKey()
	if !ok {
		return
	}
	lead := pk.Columns()[0].Column()
	if !lead.AutoIncrement() {
		return
	}
	for _, idx := range tp.prev.Indexes() {
		if idx.IsPrimaryKey() || !d.keptIndexes[idx.ID] {
			continue
		}
		if idx.Columns()[0].Column().ID == lead.ID {
			return
		}
	}
	d.unsupportedf(d.m.Namespace(tp.next.Namespace()), tp.next.Name(), lead.Name(),
		"the primary key cannot be dropped while the auto-increment column `%s` depends on it", lead.Name())
}

func (d *differ) diffForeignKeys() {
	for i := range d.tables {
		tp := &d.tables[i]
		prevFKs, nextFKs := tp.prev.ForeignKeys(), tp.next.ForeignKeys()
		matched := map[schema.ForeignKeyID]bool{}

		for _, n := range nextFKs {
			p, ok := d.matchForeignKey(prevFKs, n, matched)
			if !ok {
				d.push(migration.AddForeignKey{ForeignKey: n.ID})
				continue
			}
			matched[p.ID] = true
			if !d.foreignKeysEqual(p, n) || d.mustRecreateForeignKey(p) {
				d.push(migration.DropForeignKey{ForeignKey: p.ID}, migration.AddForeignKey{ForeignKey: n.ID})
			}
		}
		for _, p := range prevFKs {
			if !matched[p.ID] {
				d.push(migration.DropForeignKey{ForeignKey: p.ID})
			}
		}
	}
}

func (d *differ) matchForeignKey(prev []schema.ForeignKeyWalker, n schema.ForeignKeyWalker, taken map[schema.ForeignKeyID]bool) (schema.ForeignKeyWalker, bool) {
	for _, p := range prev {
		if taken[p.ID] {
			continue
		}
		if n.Name() != "" && p.Name() != "" {
			if n.Name() == p.Name() {
				return p, true
			}
			continue
		}
		if d.foreignKeysEqual(p, n) {
			return p, true
		}
	}
	return schema.ForeignKeyWalker{}, false
}

func (d *differ) foreignKeysEqual(p, n schema.ForeignKeyWalker) bool {
	if rt, ok := d.nextTable[p.ReferencedTable().ID]; !ok || rt != n.ReferencedTable().ID {
		return false
	}
	if p.OnDelete() != n.OnDelete() || p.OnUpdate() != n.OnUpdate() {
		return false
	}
	if !d.sameColumns(p.Columns(), n.Columns()) {
		return false
	}
	return d.sameColumns(p.ReferencedColumns(), n.ReferencedColumns())
}

func (d *differ) sameColumns(prev, next []schema.ColumnWalker) bool {
	if len(prev) != len(next) {
		return false
	}
	for i := range prev {
		if mapped, ok := d.nextColumn[prev[i].ID]; !ok || mapped != next[i].ID {
			return false
		}
	}
	return true
}

// mustRecreateForeignKey is true when either side of the key changes type, or
// the referenced table's primary key is replaced.
func (d *differ) mustRecreateForeignKey(p schema.ForeignKeyWalker) bool {
	for _, c := range p.Columns() {
		if d.typeChanged[c.ID] {
			return true
		}
	}
	for _, c := range p.ReferencedColumns() {
		if d.typeChanged[c.ID] {
			return true
		}
	}
	return d.pkChanged[p.ReferencedTable().ID]
}

func (d *differ) diffViews() {
	prev, next := d.m.Previous, d.m.Next
	previous := map[tableRef]schema.ViewWalker{}
	for _, v := range prev.Views() {
		previous[d.ref(v.Namespace(), v.Name())] = v
	}

	// Views are matched by name only. A changed definition is not a step.
	matched := map[schema.ViewID]bool{}
	for _, v := range next.Views() {
		p, ok := previous[d.ref(v.Namespace(), v.Name())]
		if !ok {
			d.push(migration.CreateView{View: v.ID})
			continue
		}
		matched[p.ID] = true
	}
	for _, v := range prev.Views() {
		if !matched[v.ID] {
			d.push(migration.DropView{View: v.ID})
		}
	}
}

// normalizeSQL collapses whitespace and drops a trailing semicolon so that
// catalog round-trips of the same predicate compare equal.
func normalizeSQL(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSuffix(s, ";")
}
