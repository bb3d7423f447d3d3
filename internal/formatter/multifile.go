package formatter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tordrt/schemaplan/internal/schema"
)

// MultiFileFormatter writes schema to multiple files in a directory
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "text" or "markdown"
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}
}

// Format writes the schema to multiple files
func (f *MultiFileFormatter) Format(s *schema.Schema) error {
	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeOverview(s); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	for _, table := range s.Tables() {
		if err := f.writeTableFile(table); err != nil {
			return fmt.Errorf("failed to write table file for %s: %w", table.Name(), err)
		}
	}

	return nil
}

func sortedTables(s *schema.Schema) []schema.TableWalker {
	tables := s.Tables()
	sort.Slice(tables, func(i, j int) bool {
		return tables[i].QualifiedName() < tables[j].QualifiedName()
	})
	return tables
}

func referencedTables(t schema.TableWalker) []string {
	var targets []string
	for _, fk := range t.ForeignKeys() {
		targets = append(targets, fk.ReferencedTable().Name())
	}
	return targets
}

// writeOverview writes the overview file
func (f *MultiFileFormatter) writeOverview(s *schema.Schema) error {
	ext := f.getFileExtension()
	filename := filepath.Join(f.OutputDir, "_overview"+ext)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	if f.OutputFormat == formatMarkdown {
		f.writeMarkdownOverview(file, s)
	} else {
		f.writeTextOverview(file, s)
	}
	return nil
}

func (f *MultiFileFormatter) writeMarkdownOverview(w io.Writer, s *schema.Schema) {
	_, _ = fmt.Fprintf(w, "# Schema Overview\n\n")
	_, _ = fmt.Fprintf(w, "Each table has a corresponding file: `<table_name>%s`\n\n", f.getFileExtension())
	_, _ = fmt.Fprintf(w, "## Tables\n\n")

	for _, table := range sortedTables(s) {
		_, _ = fmt.Fprintf(w, "- **%s**", table.QualifiedName())
		if targets := referencedTables(table); len(targets) > 0 {
			_, _ = fmt.Fprintf(w, " (references: %s)", strings.Join(targets, ", "))
		}
		_, _ = fmt.Fprintf(w, "\n")
	}

	if enums := s.Enums(); len(enums) > 0 {
		_, _ = fmt.Fprintf(w, "\n## Enums\n\n")
		for _, e := range enums {
			_, _ = fmt.Fprintf(w, "- **%s:** %s\n", qualified(e.Namespace(), e.Name()), strings.Join(e.Values(), " | "))
		}
	}
}

func (f *MultiFileFormatter) writeTextOverview(w io.Writer, s *schema.Schema) {
	_, _ = fmt.Fprintf(w, "SCHEMA OVERVIEW\n")
	_, _ = fmt.Fprintf(w, "Each table has a file: <table_name>%s\n\n", f.getFileExtension())

	for _, table := range sortedTables(s) {
		_, _ = fmt.Fprintf(w, "%s", table.QualifiedName())
		if targets := referencedTables(table); len(targets) > 0 {
			_, _ = fmt.Fprintf(w, " (references: %s)", strings.Join(targets, ","))
		}
		_, _ = fmt.Fprintf(w, "\n")
	}

	for _, e := range s.Enums() {
		_, _ = fmt.Fprintf(w, "ENUM %s: %s\n", qualified(e.Namespace(), e.Name()), strings.Join(e.Values(), "|"))
	}
}

// writeTableFile writes a single table to its own file
func (f *MultiFileFormatter) writeTableFile(table schema.TableWalker) error {
	filename := filepath.Join(f.OutputDir, table.QualifiedName()+f.getFileExtension())

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	if f.OutputFormat != formatMarkdown {
		NewTextFormatter(file).formatTable(table)
		f.writeIncoming(file, table, "\n  REFERENCED BY:\n", "    %s.%s → %s (%s)\n")
		return nil
	}

	NewMarkdownFormatter(file).FormatTable(table)
	f.writeIncoming(file, table, "### Referenced by\n\n", "- %s.%s → %s (%s)\n")
	return nil
}

// writeIncoming lists the foreign keys of other tables pointing at table.
func (f *MultiFileFormatter) writeIncoming(w io.Writer, table schema.TableWalker, header, line string) {
	incoming := table.ReferencingForeignKeys()
	if len(incoming) == 0 {
		return
	}
	_, _ = fmt.Fprint(w, header)
	for _, fk := range incoming {
		_, _ = fmt.Fprintf(w, line,
			fk.Table().Name(), strings.Join(fk.ColumnNames(), ","),
			strings.Join(fk.ReferencedColumnNames(), ","),
			cardinality(fk))
	}
	_, _ = fmt.Fprintln(w)
}

func (f *MultiFileFormatter) getFileExtension() string {
	if f.OutputFormat == formatMarkdown {
		return ".md"
	}
	return ".txt"
}
