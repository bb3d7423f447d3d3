package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/schemaplan/internal/schema"
)

// MarkdownFormatter formats schema as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the schema in markdown format
func (f *MarkdownFormatter) Format(s *schema.Schema) error {
	_, _ = fmt.Fprintln(f.writer, "# Database Schema")
	_, _ = fmt.Fprintln(f.writer)

	for _, table := range s.Tables() {
		f.FormatTable(table)
	}

	if enums := s.Enums(); len(enums) > 0 {
		_, _ = fmt.Fprintln(f.writer, "## Enums")
		_, _ = fmt.Fprintln(f.writer)
		for _, e := range enums {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s\n", qualified(e.Namespace(), e.Name()), strings.Join(e.Values(), " | "))
		}
		_, _ = fmt.Fprintln(f.writer)
	}
	if views := s.Views(); len(views) > 0 {
		_, _ = fmt.Fprintln(f.writer, "## Views")
		_, _ = fmt.Fprintln(f.writer)
		for _, v := range views {
			_, _ = fmt.Fprintf(f.writer, "- %s\n", qualified(v.Namespace(), v.Name()))
		}
		_, _ = fmt.Fprintln(f.writer)
	}
	return nil
}

// FormatTable writes one table with its heading.
func (f *MarkdownFormatter) FormatTable(table schema.TableWalker) {
	_, _ = fmt.Fprintf(f.writer, "## %s\n\n", table.QualifiedName())
	f.formatColumns(table)
	f.formatReferences(table)
	f.formatIndexes(table)
}

func (f *MarkdownFormatter) formatColumns(table schema.TableWalker) {
	_, _ = fmt.Fprintln(f.writer, "### Columns")
	_, _ = fmt.Fprintln(f.writer)

	for _, col := range table.Columns() {
		constraintStr := f.formatConstraints(col)
		if constraintStr != "" {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s, %s\n", col.Name(), columnType(col), constraintStr)
		} else {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s\n", col.Name(), columnType(col))
		}
	}
	_, _ = fmt.Fprintln(f.writer)
}

func (f *MarkdownFormatter) formatReferences(table schema.TableWalker) {
	fks := table.ForeignKeys()
	if len(fks) == 0 {
		return
	}
	_, _ = fmt.Fprintln(f.writer, "### References")
	_, _ = fmt.Fprintln(f.writer)
	for _, fk := range fks {
		line := fmt.Sprintf("- %s → %s.%s (%s)",
			strings.Join(fk.ColumnNames(), ", "),
			fk.ReferencedTable().Name(),
			strings.Join(fk.ReferencedColumnNames(), ", "),
			cardinality(fk))
		if a := actions(fk); a != "" {
			line += ", " + a
		}
		_, _ = fmt.Fprintln(f.writer, line)
	}
	_, _ = fmt.Fprintln(f.writer)
}

func (f *MarkdownFormatter) formatIndexes(table schema.TableWalker) {
	var indexes []schema.IndexWalker
	for _, idx := range table.Indexes() {
		if !idx.IsPrimaryKey() {
			indexes = append(indexes, idx)
		}
	}
	if len(indexes) == 0 {
		return
	}

	_, _ = fmt.Fprintln(f.writer, "### Idx")
	_, _ = fmt.Fprintln(f.writer)
	for _, idx := range indexes {
		line := fmt.Sprintf("- %s on (%s)", idx.Name(), indexColumns(idx))
		switch idx.Kind() {
		case schema.IndexUnique:
			line += ", unique"
		case schema.IndexFulltext:
			line += ", fulltext"
		}
		if p := idx.Predicate(); p != "" {
			line += fmt.Sprintf(", where `%s`", p)
		}
		_, _ = fmt.Fprintln(f.writer, line)
	}
	_, _ = fmt.Fprintln(f.writer)
}

func (f *MarkdownFormatter) formatConstraints(col schema.ColumnWalker) string {
	var constraints []string

	if col.IsPartOfPrimaryKey() {
		constraints = append(constraints, "PK")
	}
	if isUniqueColumn(col) {
		constraints = append(constraints, "UNIQUE")
	}
	if col.IsRequired() {
		constraints = append(constraints, "NOT NULL")
	}
	if col.AutoIncrement() {
		constraints = append(constraints, "AUTOINCREMENT")
	}
	if d := col.Default(); d != nil {
		constraints = append(constraints, fmt.Sprintf("DEFAULT %s", defaultText(d)))
	}

	return strings.Join(constraints, ", ")
}
