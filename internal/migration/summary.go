package migration

import (
	"cmp"
	"slices"
	"strings"

	"github.com/tordrt/schemaplan/internal/schema"
)

type driftType int

// Declaration order is the rendering order of the summary sections.
const (
	driftAddedNamespace driftType = iota
	driftAddedEnum
	driftAddedSequence
	driftAddedTable
	driftAddedView
	driftRemovedEnum
	driftRemovedSequence
	driftRemovedTable
	driftRemovedView
	driftRemovedNamespace
	driftChangedEnum
	driftChangedSequence
	driftChangedTable
)

type driftItem struct {
	typ  driftType
	name string
	step int
}

// Summary renders a human readable drift report of the migration, grouped by
// added, removed and changed entities.
func Summary(m *Migration) string {
	if m.IsEmpty() {
		return "No difference detected."
	}

	items := make([]driftItem, 0, len(m.Steps))
	for i, step := range m.Steps {
		info := m.Info(step)
		item := driftItem{step: i}
		switch step.Kind() {
		case KindCreateNamespace:
			item.typ = driftAddedNamespace
		case KindCreateEnum:
			item.typ = driftAddedEnum
		case KindCreateSequence:
			item.typ = driftAddedSequence
		case KindCreateTable:
			item.typ = driftAddedTable
		case KindCreateView:
			item.typ = driftAddedView
		case KindDropEnum:
			item.typ = driftRemovedEnum
		case KindDropSequence:
			item.typ = driftRemovedSequence
		case KindDropTable:
			item.typ = driftRemovedTable
		case KindDropView:
			item.typ = driftRemovedView
		case KindDropNamespace:
			item.typ = driftRemovedNamespace
		case KindAlterEnum:
			item.typ, item.name = driftChangedEnum, info.Name
		case KindAlterSequence:
			item.typ, item.name = driftChangedSequence, info.Name
		default:
			item.typ, item.name = driftChangedTable, info.Table
		}
		items = append(items, item)
	}

	slices.SortStableFunc(items, func(a, b driftItem) int {
		return cmp.Or(cmp.Compare(a.typ, b.typ), cmp.Compare(a.name, b.name), cmp.Compare(a.step, b.step))
	})

	var out strings.Builder
	for i, item := range items {
		if i == 0 || items[i-1].typ != item.typ || items[i-1].name != item.name {
			out.WriteString("\n")
			out.WriteString(sectionHeader(item))
			out.WriteString("\n")
		}
		m.writeSummaryLine(&out, m.Steps[item.step])
	}
	return strings.TrimLeft(out.String(), "\n")
}

func sectionHeader(item driftItem) string {
	switch item.typ {
	case driftAddedNamespace:
		return "[+] Added namespaces"
	case driftAddedEnum:
		return "[+] Added enums"
	case driftAddedSequence:
		return "[+] Added sequences"
	case driftAddedTable:
		return "[+] Added tables"
	case driftAddedView:
		return "[+] Added views"
	case driftRemovedEnum:
		return "[-] Removed enums"
	case driftRemovedSequence:
		return "[-] Removed sequences"
	case driftRemovedTable:
		return "[-] Removed tables"
	case driftRemovedView:
		return "[-] Removed views"
	case driftRemovedNamespace:
		return "[-] Removed namespaces"
	case driftChangedEnum:
		return "[*] Changed the `" + item.name + "` enum"
	case driftChangedSequence:
		return "[*] Changed the `" + item.name + "` sequence"
	default:
		return "[*] Changed the `" + item.name + "` table"
	}
}

func (m *Migration) writeSummaryLine(out *strings.Builder, step Step) {
	info := m.Info(step)
	line := func(parts ...string) {
		out.WriteString("  ")
		for _, p := range parts {
			out.WriteString(p)
		}
		out.WriteString("\n")
	}

	switch s := step.(type) {
	case CreateNamespace, DropNamespace, CreateEnum, DropEnum, CreateSequence, DropSequence, CreateView, DropView:
		line("- ", info.Name)
	case CreateTable, DropTable:
		line("- ", info.Table)
	case AlterEnum:
		for _, v := range s.Added {
			line("[+] Added variant `", v, "`")
		}
		for _, v := range s.Dropped {
			line("[-] Removed variant `", v, "`")
		}
	case AlterSequence:
		line("[*] Altered sequence properties")
	case AddColumn:
		line("[+] Added column `", info.Name, "`")
	case DropColumn:
		line("[-] Removed column `", info.Name, "`")
	case RenameColumn:
		line("[*] Renamed column `", m.Previous.Column(s.Columns.Previous).Name(), "` to `", info.Name, "`")
	case AlterColumnType:
		line("[*] Altered column `", info.Name, "` (changed the type)")
	case DropAndRecreateColumn:
		line("[*] Column `", info.Name, "` would be dropped and recreated (changed the type)")
	case AlterColumnNullability:
		if m.Next.Column(s.Columns.Next).IsRequired() {
			line("[*] Altered column `", info.Name, "` (made required)")
		} else {
			line("[*] Altered column `", info.Name, "` (made optional)")
		}
	case AlterColumnDefault:
		line("[*] Altered column `", info.Name, "` (changed the default)")
	case CreateIndex:
		line("[+] Added ", indexNoun(m.Next.Index(s.Index)), " on columns (", strings.Join(m.Next.Index(s.Index).ColumnNames(), ", "), ")")
	case DropIndex:
		line("[-] Removed ", indexNoun(m.Previous.Index(s.Index)), " on columns (", strings.Join(m.Previous.Index(s.Index).ColumnNames(), ", "), ")")
	case AddForeignKey:
		line("[+] Added foreign key on columns (", strings.Join(m.Next.ForeignKey(s.ForeignKey).ColumnNames(), ", "), ")")
	case DropForeignKey:
		line("[-] Removed foreign key on columns (", strings.Join(m.Previous.ForeignKey(s.ForeignKey).ColumnNames(), ", "), ")")
	}
}

func indexNoun(i schema.IndexWalker) string {
	switch i.Kind() {
	case schema.IndexPrimaryKey:
		return "primary key"
	case schema.IndexUnique:
		return "unique index"
	case schema.IndexFulltext:
		return "fulltext index"
	default:
		return "index"
	}
}
