package migration

import (
	"cmp"
	"container/heap"
	"fmt"
	"slices"
	"strings"

	"github.com/tordrt/schemaplan/internal/dialect"
	"github.com/tordrt/schemaplan/internal/schema"
)

// CycleError is returned by Order when the steps cannot be put in any order.
type CycleError struct {
	Steps []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic dependency detected between steps: %s", strings.Join(e.Steps, "; "))
}

// effects lists what a step brings into existence, what it needs to exist
// beforehand, what it destroys, and what it uses that someone else may destroy.
type effects struct {
	creates  []string
	requires []string
	removes  []string
	holds    []string
}

func nsKey(ns string) string           { return "ns:" + ns }
func tableKey(ns, t string) string     { return "table:" + ns + "." + t }
func columnKey(ns, t, c string) string { return "col:" + ns + "." + t + "." + c }
func enumKey(ns, e string) string      { return "enum:" + ns + "." + e }
func variantsKey(ns, e string) string  { return "variants:" + ns + "." + e }
func seqKey(ns, q string) string       { return "seq:" + ns + "." + q }
func keyKey(ns, t string) string       { return "key:" + ns + "." + t }
func pkKey(ns, t string) string        { return "pk:" + ns + "." + t }
func fkKey(ns, t, f string) string     { return "fk:" + ns + "." + t + "." + f }
func viewKey(ns, v string) string      { return "view:" + ns + "." + v }

// indexKey scopes index names the way each dialect does: per namespace on
// Postgres, per database on SQLite, per table elsewhere.
func (m *Migration) indexKey(i schema.IndexWalker) string {
	t := i.Table()
	ns := m.Namespace(t.Namespace())
	switch {
	case m.Dialect.IsPostgresFamily():
		return "index:" + ns + ".." + i.Name()
	case m.Dialect == dialect.SQLite:
		return "index:.." + i.Name()
	default:
		return "index:" + ns + "." + t.Name() + "." + i.Name()
	}
}

func (m *Migration) columnUses(c schema.ColumnWalker) (requires []string) {
	if e, ok := c.Enum(); ok {
		ns := m.Namespace(e.Namespace())
		requires = append(requires, enumKey(ns, e.Name()), variantsKey(ns, e.Name()))
	}
	if d := c.Default(); d != nil && d.Kind == schema.DefaultSequence && d.Sequence != "" {
		requires = append(requires, seqKey(m.Namespace(c.Table().Namespace()), d.Sequence))
	}
	return requires
}

func (m *Migration) colKey(c schema.ColumnWalker) string {
	t := c.Table()
	return columnKey(m.Namespace(t.Namespace()), t.Name(), c.Name())
}

func (m *Migration) tblKey(t schema.TableWalker) string {
	return tableKey(m.Namespace(t.Namespace()), t.Name())
}

func (m *Migration) effectsOf(step Step) effects {
	var e effects
	prev, next := m.Previous, m.Next

	switch s := step.(type) {
	case CreateNamespace:
		e.creates = append(e.creates, nsKey(next.Namespace(s.Namespace).Name()))
	case DropNamespace:
		e.removes = append(e.removes, nsKey(prev.Namespace(s.Namespace).Name()))
	case CreateEnum:
		en := next.Enum(s.Enum)
		e.requires = append(e.requires, nsKey(en.Namespace()))
		e.creates = append(e.creates, enumKey(m.Namespace(en.Namespace()), en.Name()))
	case AlterEnum:
		en := next.Enum(s.Enums.Next)
		e.creates = append(e.creates, variantsKey(m.Namespace(en.Namespace()), en.Name()))
	case DropEnum:
		en := prev.Enum(s.Enum)
		e.removes = append(e.removes, enumKey(m.Namespace(en.Namespace()), en.Name()))
	case CreateSequence:
		q := next.Sequence(s.Sequence)
		e.requires = append(e.requires, nsKey(q.Namespace()))
		e.creates = append(e.creates, seqKey(m.Namespace(q.Namespace()), q.Name()))
	case AlterSequence:
	case DropSequence:
		q := prev.Sequence(s.Sequence)
		e.removes = append(e.removes, seqKey(m.Namespace(q.Namespace()), q.Name()))
	case CreateTable:
		t := next.Table(s.Table)
		ns := m.Namespace(t.Namespace())
		e.requires = append(e.requires, nsKey(t.Namespace()))
		e.creates = append(e.creates, m.tblKey(t))
		for _, c := range t.Columns() {
			e.creates = append(e.creates, m.colKey(c))
			e.requires = append(e.requires, m.columnUses(c)...)
		}
		if _, ok := t.PrimaryKey(); ok {
			e.creates = append(e.creates, keyKey(ns, t.Name()), pkKey(ns, t.Name()))
		}
	case DropTable:
		t := prev.Table(s.Table)
		ns := m.Namespace(t.Namespace())
		e.removes = append(e.removes, m.tblKey(t), keyKey(ns, t.Name()), pkKey(ns, t.Name()))
		e.holds = append(e.holds, nsKey(t.Namespace()))
		for _, c := range t.Columns() {
			e.removes = append(e.removes, m.colKey(c))
			e.holds = append(e.holds, m.columnUses(c)...)
		}
	case AddColumn:
		c := next.Column(s.Column)
		e.requires = append(e.requires, m.tblKey(c.Table()))
		e.requires = append(e.requires, m.columnUses(c)...)
		e.creates = append(e.creates, m.colKey(c))
	case DropColumn:
		c := prev.Column(s.Column)
		e.removes = append(e.removes, m.colKey(c))
		e.holds = append(e.holds, m.columnUses(c)...)
	case RenameColumn:
		e.removes = append(e.removes, m.colKey(prev.Column(s.Columns.Previous)))
		e.creates = append(e.creates, m.colKey(next.Column(s.Columns.Next)))
	case AlterColumnType:
		pc, nc := prev.Column(s.Columns.Previous), next.Column(s.Columns.Next)
		e.removes = append(e.removes, m.colKey(pc))
		e.creates = append(e.creates, m.colKey(nc))
		e.requires = append(e.requires, m.columnUses(nc)...)
		e.holds = append(e.holds, m.columnUses(pc)...)
	case DropAndRecreateColumn:
		pc, nc := prev.Column(s.Columns.Previous), next.Column(s.Columns.Next)
		e.removes = append(e.removes, m.colKey(pc))
		e.creates = append(e.creates, m.colKey(nc))
		e.requires = append(e.requires, m.columnUses(nc)...)
		e.holds = append(e.holds, m.columnUses(pc)...)
	case AlterColumnNullability:
		e.requires = append(e.requires, m.colKey(next.Column(s.Columns.Next)))
	case AlterColumnDefault:
		pc, nc := prev.Column(s.Columns.Previous), next.Column(s.Columns.Next)
		e.requires = append(e.requires, m.colKey(nc))
		e.requires = append(e.requires, m.columnUses(nc)...)
		e.holds = append(e.holds, m.columnUses(pc)...)
	case CreateIndex:
		i := next.Index(s.Index)
		t := i.Table()
		ns := m.Namespace(t.Namespace())
		e.requires = append(e.requires, m.tblKey(t))
		for _, ic := range i.Columns() {
			e.requires = append(e.requires, m.colKey(ic.Column()))
		}
		e.creates = append(e.creates, m.indexKey(i))
		if i.IsUnique() {
			e.creates = append(e.creates, keyKey(ns, t.Name()))
		}
		if i.IsPrimaryKey() {
			e.creates = append(e.creates, pkKey(ns, t.Name()))
		}
	case DropIndex:
		i := prev.Index(s.Index)
		t := i.Table()
		ns := m.Namespace(t.Namespace())
		e.removes = append(e.removes, m.indexKey(i))
		if i.IsUnique() {
			e.removes = append(e.removes, keyKey(ns, t.Name()))
		}
		if i.IsPrimaryKey() {
			e.removes = append(e.removes, pkKey(ns, t.Name()))
		}
		e.holds = append(e.holds, m.tblKey(t))
		for _, ic := range i.Columns() {
			e.holds = append(e.holds, m.colKey(ic.Column()))
		}
	case AddForeignKey:
		f := next.ForeignKey(s.ForeignKey)
		t, rt := f.Table(), f.ReferencedTable()
		e.requires = append(e.requires, m.tblKey(t), m.tblKey(rt), keyKey(m.Namespace(rt.Namespace()), rt.Name()))
		for _, c := range f.Columns() {
			e.requires = append(e.requires, m.colKey(c))
		}
		for _, c := range f.ReferencedColumns() {
			e.requires = append(e.requires, m.colKey(c))
		}
		if f.Name() != "" {
			e.creates = append(e.creates, fkKey(m.Namespace(t.Namespace()), t.Name(), f.Name()))
		}
	case DropForeignKey:
		f := prev.ForeignKey(s.ForeignKey)
		t, rt := f.Table(), f.ReferencedTable()
		e.holds = append(e.holds, m.tblKey(t), m.tblKey(rt), keyKey(m.Namespace(rt.Namespace()), rt.Name()))
		for _, c := range f.Columns() {
			e.holds = append(e.holds, m.colKey(c))
		}
		for _, c := range f.ReferencedColumns() {
			e.holds = append(e.holds, m.colKey(c))
		}
		if f.Name() != "" {
			e.removes = append(e.removes, fkKey(m.Namespace(t.Namespace()), t.Name(), f.Name()))
		}
	case CreateView:
		v := next.View(s.View)
		e.requires = append(e.requires, nsKey(v.Namespace()))
		e.creates = append(e.creates, viewKey(m.Namespace(v.Namespace()), v.Name()))
	case DropView:
		v := prev.View(s.View)
		e.holds = append(e.holds, nsKey(v.Namespace()))
		e.removes = append(e.removes, viewKey(m.Namespace(v.Namespace()), v.Name()))
	}
	return e
}

// shapesTables reports whether a step changes what a view may select from.
func shapesTables(k StepKind) bool {
	switch k {
	case KindCreateTable, KindAddColumn, KindAlterColumnType, KindRenameColumn, KindDropAndRecreateColumn,
		KindAlterColumnNullability, KindAlterColumnDefault:
		return true
	}
	return false
}

func breaksViews(k StepKind) bool {
	switch k {
	case KindDropTable, KindDropColumn, KindAlterColumnType, KindRenameColumn, KindDropAndRecreateColumn:
		return true
	}
	return false
}

type stepKey struct {
	namespace string
	table     string
	kind      StepKind
	name      string
	pos       int
}

func compareKeys(a, b stepKey) int {
	return cmp.Or(
		cmp.Compare(a.namespace, b.namespace),
		cmp.Compare(a.table, b.table),
		cmp.Compare(a.kind, b.kind),
		cmp.Compare(a.name, b.name),
		cmp.Compare(a.pos, b.pos),
	)
}

type readyQueue struct {
	keys  []stepKey
	items []int
}

func (q *readyQueue) Len() int           { return len(q.items) }
func (q *readyQueue) Less(i, j int) bool { return compareKeys(q.keys[q.items[i]], q.keys[q.items[j]]) < 0 }
func (q *readyQueue) Swap(i, j int)      { q.items[i], q.items[j] = q.items[j], q.items[i] }
func (q *readyQueue) Push(x any)         { q.items = append(q.items, x.(int)) }
func (q *readyQueue) Pop() any {
	n := len(q.items)
	x := q.items[n-1]
	q.items = q.items[:n-1]
	return x
}

// Order sorts m.Steps topologically: creates come before whatever references
// them, drops of dependents before drops of their owners. Independent steps
// are ordered by (namespace, table, step kind, name), so the result does not
// depend on the order the steps were produced in.
func Order(m *Migration) error {
	n := len(m.Steps)
	if n < 2 {
		return nil
	}

	keys := make([]stepKey, n)
	eff := make([]effects, n)
	for i, s := range m.Steps {
		info := m.Info(s)
		keys[i] = stepKey{namespace: info.Namespace, table: info.Table, kind: info.Kind, name: info.Name, pos: i}
		eff[i] = m.effectsOf(s)
	}

	creators := map[string][]int{}
	removers := map[string][]int{}
	for i, e := range eff {
		for _, r := range e.creates {
			creators[r] = append(creators[r], i)
		}
		for _, r := range e.removes {
			removers[r] = append(removers[r], i)
		}
	}

	edges := make([]map[int]struct{}, n)
	indegree := make([]int, n)
	addEdge := func(from, to int) {
		if from == to {
			return
		}
		if edges[from] == nil {
			edges[from] = map[int]struct{}{}
		}
		if _, ok := edges[from][to]; ok {
			return
		}
		edges[from][to] = struct{}{}
		indegree[to]++
	}

	for i, e := range eff {
		for _, r := range e.requires {
			for _, c := range creators[r] {
				addEdge(c, i)
			}
		}
		for _, r := range e.holds {
			for _, d := range removers[r] {
				addEdge(i, d)
			}
		}
		for _, r := range e.creates {
			for _, d := range removers[r] {
				if !slices.Contains(eff[d].creates, r) {
					addEdge(d, i)
				}
			}
		}
	}

	for i := range m.Steps {
		switch k := keys[i].kind; {
		case k == KindCreateView:
			for j := range m.Steps {
				if shapesTables(keys[j].kind) {
					addEdge(j, i)
				}
			}
		case k == KindDropView:
			for j := range m.Steps {
				if breaksViews(keys[j].kind) {
					addEdge(i, j)
				}
			}
		}
	}

	q := &readyQueue{keys: keys}
	for i := 0; i < n; i++ {
		if indegree[i] == 0 {
			q.items = append(q.items, i)
		}
	}
	heap.Init(q)

	ordered := make([]Step, 0, n)
	done := make([]bool, n)
	for q.Len() > 0 {
		i := heap.Pop(q).(int)
		done[i] = true
		ordered = append(ordered, m.Steps[i])
		for j := range edges[i] {
			indegree[j]--
			if indegree[j] == 0 {
				heap.Push(q, j)
			}
		}
	}

	if len(ordered) != n {
		var stuck []string
		for i, ok := range done {
			if !ok {
				stuck = append(stuck, m.Describe(m.Steps[i]))
			}
		}
		return &CycleError{Steps: stuck}
	}

	m.Steps = ordered
	return nil
}
