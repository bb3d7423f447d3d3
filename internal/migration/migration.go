package migration

import (
	"fmt"
	"strings"

	"github.com/tordrt/schemaplan/internal/dialect"
	"github.com/tordrt/schemaplan/internal/schema"
)

// Migration is an ordered list of steps together with the two snapshots its
// handles point into.
type Migration struct {
	Dialect  dialect.Dialect
	Previous *schema.Schema
	Next     *schema.Schema
	Steps    []Step
}

// IsEmpty reports whether there is nothing to apply.
func (m *Migration) IsEmpty() bool { return len(m.Steps) == 0 }

// Namespace normalizes a namespace name: dialects without namespaces compare
// every entity as if it lived in the same unnamed namespace.
func (m *Migration) Namespace(name string) string {
	if !m.Dialect.Capabilities().Namespaces {
		return ""
	}
	return name
}

// Info locates a step for ordering, summaries and messages.
type Info struct {
	Kind      StepKind
	Namespace string
	Table     string
	Name      string
}

// Info describes the step.
func (m *Migration) Info(step Step) Info {
	prev, next := m.Previous, m.Next
	info := Info{Kind: step.Kind()}

	table := func(t schema.TableWalker) {
		info.Namespace = m.Namespace(t.Namespace())
		info.Table = t.Name()
	}

	switch s := step.(type) {
	case CreateNamespace:
		info.Namespace = next.Namespace(s.Namespace).Name()
		info.Name = info.Namespace
	case DropNamespace:
		info.Namespace = prev.Namespace(s.Namespace).Name()
		info.Name = info.Namespace
	case CreateEnum:
		e := next.Enum(s.Enum)
		info.Namespace, info.Name = m.Namespace(e.Namespace()), e.Name()
	case DropEnum:
		e := prev.Enum(s.Enum)
		info.Namespace, info.Name = m.Namespace(e.Namespace()), e.Name()
	case AlterEnum:
		e := next.Enum(s.Enums.Next)
		info.Namespace, info.Name = m.Namespace(e.Namespace()), e.Name()
	case CreateSequence:
		q := next.Sequence(s.Sequence)
		info.Namespace, info.Name = m.Namespace(q.Namespace()), q.Name()
	case DropSequence:
		q := prev.Sequence(s.Sequence)
		info.Namespace, info.Name = m.Namespace(q.Namespace()), q.Name()
	case AlterSequence:
		q := next.Sequence(s.Sequences.Next)
		info.Namespace, info.Name = m.Namespace(q.Namespace()), q.Name()
	case CreateTable:
		table(next.Table(s.Table))
	case DropTable:
		table(prev.Table(s.Table))
	case AddColumn:
		c := next.Column(s.Column)
		table(c.Table())
		info.Name = c.Name()
	case DropColumn:
		c := prev.Column(s.Column)
		table(c.Table())
		info.Name = c.Name()
	case RenameColumn:
		c := next.Column(s.Columns.Next)
		table(c.Table())
		info.Name = c.Name()
	case AlterColumnType:
		c := next.Column(s.Columns.Next)
		table(c.Table())
		info.Name = c.Name()
	case DropAndRecreateColumn:
		c := next.Column(s.Columns.Next)
		table(c.Table())
		info.Name = c.Name()
	case AlterColumnNullability:
		c := next.Column(s.Columns.Next)
		table(c.Table())
		info.Name = c.Name()
	case AlterColumnDefault:
		c := next.Column(s.Columns.Next)
		table(c.Table())
		info.Name = c.Name()
	case CreateIndex:
		i := next.Index(s.Index)
		table(i.Table())
		info.Name = i.Name()
	case DropIndex:
		i := prev.Index(s.Index)
		table(i.Table())
		info.Name = i.Name()
	case AddForeignKey:
		f := next.ForeignKey(s.ForeignKey)
		table(f.Table())
		info.Name = foreignKeyLabel(f)
	case DropForeignKey:
		f := prev.ForeignKey(s.ForeignKey)
		table(f.Table())
		info.Name = foreignKeyLabel(f)
	case CreateView:
		v := next.View(s.View)
		info.Namespace, info.Name = m.Namespace(v.Namespace()), v.Name()
	case DropView:
		v := prev.View(s.View)
		info.Namespace, info.Name = m.Namespace(v.Namespace()), v.Name()
	}
	return info
}

func foreignKeyLabel(f schema.ForeignKeyWalker) string {
	if f.Name() != "" {
		return f.Name()
	}
	return f.ReferencedTable().Name() + "(" + strings.Join(f.ColumnNames(), ",") + ")"
}

func qualified(ns, name string) string {
	if ns == "" {
		return "`" + name + "`"
	}
	return "`" + ns + "`.`" + name + "`"
}

// Describe renders a one-line human readable description of a step.
func (m *Migration) Describe(step Step) string {
	info := m.Info(step)
	target := qualified(info.Namespace, info.Table)

	switch s := step.(type) {
	case CreateNamespace, DropNamespace:
		return fmt.Sprintf("%s `%s`", info.Kind, info.Name)
	case CreateEnum, DropEnum, CreateSequence, DropSequence, AlterSequence, CreateView, DropView:
		return fmt.Sprintf("%s %s", info.Kind, qualified(info.Namespace, info.Name))
	case AlterEnum:
		return fmt.Sprintf("%s %s (added: %s; removed: %s)", info.Kind, qualified(info.Namespace, info.Name),
			strings.Join(s.Added, ", "), strings.Join(s.Dropped, ", "))
	case CreateTable, DropTable:
		return fmt.Sprintf("%s %s", info.Kind, target)
	case RenameColumn:
		return fmt.Sprintf("%s %s.`%s` to `%s`", info.Kind, target, m.Previous.Column(s.Columns.Previous).Name(), info.Name)
	case AlterColumnType:
		return fmt.Sprintf("%s %s.`%s` from `%s` to `%s`", info.Kind, target, info.Name,
			m.Previous.Column(s.Columns.Previous).TypeName(), m.Next.Column(s.Columns.Next).TypeName())
	case DropAndRecreateColumn:
		return fmt.Sprintf("%s %s.`%s` from `%s` to `%s`", info.Kind, target, info.Name,
			m.Previous.Column(s.Columns.Previous).TypeName(), m.Next.Column(s.Columns.Next).TypeName())
	case AlterColumnNullability:
		return fmt.Sprintf("%s %s.`%s` to %s", info.Kind, target, info.Name, m.Next.Column(s.Columns.Next).Arity())
	default:
		if info.Name == "" {
			return fmt.Sprintf("%s %s", info.Kind, target)
		}
		return fmt.Sprintf("%s %s.`%s`", info.Kind, target, info.Name)
	}
}
