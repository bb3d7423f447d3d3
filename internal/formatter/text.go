package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/schemaplan/internal/schema"
)

// TextFormatter formats schema as compact text
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the schema in compact text format
func (f *TextFormatter) Format(s *schema.Schema) error {
	for i, table := range s.Tables() {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer) // Blank line between tables
		}
		f.formatTable(table)
	}

	if enums := s.Enums(); len(enums) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		for _, e := range enums {
			_, _ = fmt.Fprintf(f.writer, "ENUM %s: %s\n", qualified(e.Namespace(), e.Name()), strings.Join(e.Values(), "|"))
		}
	}
	if seqs := s.Sequences(); len(seqs) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		for _, q := range seqs {
			seq := q.Get()
			_, _ = fmt.Fprintf(f.writer, "SEQUENCE %s START %d INCREMENT %d\n", qualified(q.Namespace(), q.Name()), seq.Start, seq.Increment)
		}
	}
	if views := s.Views(); len(views) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		for _, v := range views {
			_, _ = fmt.Fprintf(f.writer, "VIEW %s\n", qualified(v.Namespace(), v.Name()))
		}
	}
	return nil
}

func (f *TextFormatter) formatTable(table schema.TableWalker) {
	// Table header with primary key
	pkStr := ""
	if pk, ok := table.PrimaryKey(); ok {
		pkStr = fmt.Sprintf(" (PK: %s)", strings.Join(pk.ColumnNames(), ", "))
	}
	_, _ = fmt.Fprintf(f.writer, "TABLE %s%s\n", table.QualifiedName(), pkStr)

	for _, col := range table.Columns() {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", f.formatColumn(col))
	}

	if fks := table.ForeignKeys(); len(fks) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  RELATIONS:")
		for _, fk := range fks {
			line := fmt.Sprintf("    %s → %s.%s (%s)", strings.Join(fk.ColumnNames(), ","),
				fk.ReferencedTable().Name(), strings.Join(fk.ReferencedColumnNames(), ","), cardinality(fk))
			if a := actions(fk); a != "" {
				line += " " + a
			}
			_, _ = fmt.Fprintln(f.writer, line)
		}
	}

	var indexes []schema.IndexWalker
	for _, idx := range table.Indexes() {
		if !idx.IsPrimaryKey() {
			indexes = append(indexes, idx)
		}
	}
	if len(indexes) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  INDEXES:")
		for _, idx := range indexes {
			suffix := ""
			switch idx.Kind() {
			case schema.IndexUnique:
				suffix = " UNIQUE"
			case schema.IndexFulltext:
				suffix = " FULLTEXT"
			}
			if p := idx.Predicate(); p != "" {
				suffix += " WHERE " + p
			}
			_, _ = fmt.Fprintf(f.writer, "    %s (%s)%s\n", idx.Name(), indexColumns(idx), suffix)
		}
	}
}

func (f *TextFormatter) formatColumn(col schema.ColumnWalker) string {
	parts := []string{col.Name() + ":", columnType(col)}

	if isUniqueColumn(col) {
		parts = append(parts, "UNIQUE")
	}
	if col.IsRequired() {
		parts = append(parts, "NOT NULL")
	}
	if col.AutoIncrement() {
		parts = append(parts, "AUTOINCREMENT")
	}
	if d := col.Default(); d != nil {
		parts = append(parts, fmt.Sprintf("DEFAULT %s", defaultText(d)))
	}

	return strings.Join(parts, " ")
}

func qualified(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + "." + name
}
