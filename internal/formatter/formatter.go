// Package formatter renders described schemas and migration plans for people
// and for LLM agents.
package formatter

import (
	"fmt"
	"strings"

	"github.com/tordrt/schemaplan/internal/schema"
)

const (
	formatMarkdown = "markdown"
	formatText     = "text"
)

// columnType is the type as the database spells it, with enum values spelled out.
func columnType(c schema.ColumnWalker) string {
	if e, ok := c.Enum(); ok {
		t := fmt.Sprintf("%s (%s)", e.Name(), strings.Join(e.Values(), "|"))
		if c.IsList() {
			t += "[]"
		}
		return t
	}
	t := c.FullDataType()
	if t == "" {
		t = c.TypeName()
	}
	if c.IsList() && !strings.HasSuffix(t, "[]") {
		t += "[]"
	}
	return t
}

func defaultText(d *schema.Default) string {
	switch d.Kind {
	case schema.DefaultNow:
		return "now()"
	case schema.DefaultSequence:
		return fmt.Sprintf("nextval(%s)", d.Sequence)
	case schema.DefaultUniqueRowID:
		return "unique_rowid()"
	default:
		return d.Expr
	}
}

// isUniqueColumn reports whether a single-column unique index covers c.
func isUniqueColumn(c schema.ColumnWalker) bool {
	for _, idx := range c.Table().Indexes() {
		if idx.Kind() == schema.IndexUnique && len(idx.Columns()) == 1 && idx.Columns()[0].Column().ID == c.ID {
			return true
		}
	}
	return false
}

func indexColumns(idx schema.IndexWalker) string {
	cols := make([]string, 0, len(idx.Columns()))
	for _, ic := range idx.Columns() {
		s := ic.Name()
		if ic.SortOrder() == schema.Desc {
			s += " DESC"
		}
		cols = append(cols, s)
	}
	return strings.Join(cols, ", ")
}

// cardinality guesses how many rows of the referencing table point at one
// referenced row.
func cardinality(fk schema.ForeignKeyWalker) string {
	for _, idx := range fk.Table().Indexes() {
		if idx.IsUnique() && sameNames(idx.ColumnNames(), fk.ColumnNames()) {
			return "one-to-one"
		}
	}
	return "many-to-one"
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func actions(fk schema.ForeignKeyWalker) string {
	var parts []string
	if fk.OnDelete() != schema.NoAction {
		parts = append(parts, "ON DELETE "+fk.OnDelete().String())
	}
	if fk.OnUpdate() != schema.NoAction {
		parts = append(parts, "ON UPDATE "+fk.OnUpdate().String())
	}
	return strings.Join(parts, " ")
}
