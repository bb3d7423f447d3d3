package snapshot

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tordrt/schemaplan/internal/dialect"
	"github.com/tordrt/schemaplan/internal/schema"
)

// Write encodes s as a snapshot document.
func Write(w io.Writer, s *schema.Schema, d dialect.Dialect) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(FromSchema(s, d)); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return enc.Close()
}

// FromSchema converts a schema into its document form. Namespaces equal to
// the dialect default are left out.
func FromSchema(s *schema.Schema, d dialect.Dialect) *File {
	f := &File{Dialect: string(d)}
	ns := func(name string) string {
		if name == d.DefaultNamespace() {
			return ""
		}
		return name
	}

	for _, n := range s.Namespaces() {
		if n.Name() != d.DefaultNamespace() {
			f.Namespaces = append(f.Namespaces, n.Name())
		}
	}
	for _, e := range s.Enums() {
		f.Enums = append(f.Enums, Enum{Namespace: ns(e.Namespace()), Name: e.Name(), Values: e.Values()})
	}
	for _, q := range s.Sequences() {
		seq := q.Get()
		f.Sequences = append(f.Sequences, Sequence{
			Namespace: ns(q.Namespace()), Name: q.Name(),
			Start: seq.Start, Min: seq.Min, Max: seq.Max, Increment: seq.Increment, Cache: seq.Cache, Cycle: seq.Cycle,
		})
	}

	for _, t := range s.Tables() {
		table := Table{Namespace: ns(t.Namespace()), Name: t.Name()}
		for _, c := range t.Columns() {
			table.Columns = append(table.Columns, fromColumn(c))
		}
		for _, idx := range t.Indexes() {
			if idx.IsPrimaryKey() {
				table.PrimaryKey = &PrimaryKey{Name: idx.Name(), Columns: fromIndexColumns(idx)}
				continue
			}
			out := Index{
				Name:      idx.Name(),
				Algorithm: string(idx.Algorithm()),
				Predicate: idx.Predicate(),
				Columns:   fromIndexColumns(idx),
			}
			if idx.Kind() != schema.IndexNormal {
				out.Kind = idx.Kind().String()
			}
			table.Indexes = append(table.Indexes, out)
		}
		for _, fk := range t.ForeignKeys() {
			ref := fk.ReferencedTable()
			out := ForeignKey{
				Name:    fk.Name(),
				Columns: fk.ColumnNames(),
				References: Reference{
					Namespace: ns(ref.Namespace()),
					Table:     ref.Name(),
					Columns:   fk.ReferencedColumnNames(),
				},
			}
			if fk.OnDelete() != schema.NoAction {
				out.OnDelete = fk.OnDelete().String()
			}
			if fk.OnUpdate() != schema.NoAction {
				out.OnUpdate = fk.OnUpdate().String()
			}
			table.ForeignKeys = append(table.ForeignKeys, out)
		}
		f.Tables = append(f.Tables, table)
	}

	for _, v := range s.Views() {
		f.Views = append(f.Views, View{Namespace: ns(v.Namespace()), Name: v.Name(), Definition: v.Definition()})
	}
	return f
}

func fromColumn(c schema.ColumnWalker) Column {
	out := Column{
		Name:          c.Name(),
		FullDataType:  c.FullDataType(),
		Nullable:      c.Arity() == schema.Nullable,
		List:          c.IsList(),
		AutoIncrement: c.AutoIncrement(),
	}
	if e, ok := c.Enum(); ok {
		out.Enum = e.Name()
		if out.FullDataType == e.Name() {
			out.FullDataType = ""
		}
	} else if n := c.Native(); !n.IsZero() {
		out.Type = n.String()
		if out.FullDataType == strings.ToLower(out.Type) {
			out.FullDataType = ""
		}
		if schema.FamilyOf(n.Name) != c.Family() {
			out.Family = c.Family().String()
		}
	} else {
		out.Family = c.Family().String()
	}

	if def := c.Default(); def != nil {
		out.Default = &Default{
			Expr:           def.Expr,
			Sequence:       def.Sequence,
			ConstraintName: def.ConstraintName,
		}
		if def.Kind != schema.DefaultValue {
			out.Default.Kind = def.Kind.String()
		}
	}
	return out
}

func fromIndexColumns(idx schema.IndexWalker) []IndexColumn {
	var out []IndexColumn
	for _, ic := range idx.Columns() {
		out = append(out, IndexColumn{
			Name:          ic.Name(),
			Desc:          ic.SortOrder() == schema.Desc,
			OperatorClass: ic.OperatorClass(),
			Length:        ic.Length(),
		})
	}
	return out
}
