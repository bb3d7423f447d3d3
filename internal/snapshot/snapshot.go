// Package snapshot reads and writes schema snapshots as YAML files.
//
// A snapshot file stands in for a live database wherever one is expected:
// it is the desired state handed to diff, plan and apply, and the output of
// describe --format yaml.
package snapshot

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tordrt/schemaplan/internal/dialect"
	"github.com/tordrt/schemaplan/internal/schema"
)

// File is the YAML document.
type File struct {
	Dialect    string     `yaml:"dialect,omitempty"`
	Namespaces []string   `yaml:"namespaces,omitempty"`
	Enums      []Enum     `yaml:"enums,omitempty"`
	Sequences  []Sequence `yaml:"sequences,omitempty"`
	Tables     []Table    `yaml:"tables,omitempty"`
	Views      []View     `yaml:"views,omitempty"`
}

type Enum struct {
	Namespace string   `yaml:"namespace,omitempty"`
	Name      string   `yaml:"name"`
	Values    []string `yaml:"values"`
}

type Sequence struct {
	Namespace string `yaml:"namespace,omitempty"`
	Name      string `yaml:"name"`
	Start     int64  `yaml:"start,omitempty"`
	Min       int64  `yaml:"min,omitempty"`
	Max       int64  `yaml:"max,omitempty"`
	Increment int64  `yaml:"increment,omitempty"`
	Cache     int64  `yaml:"cache,omitempty"`
	Cycle     bool   `yaml:"cycle,omitempty"`
}

type Table struct {
	Namespace   string       `yaml:"namespace,omitempty"`
	Name        string       `yaml:"name"`
	Columns     []Column     `yaml:"columns"`
	PrimaryKey  *PrimaryKey  `yaml:"primary_key,omitempty"`
	Indexes     []Index      `yaml:"indexes,omitempty"`
	ForeignKeys []ForeignKey `yaml:"foreign_keys,omitempty"`
}

// Column types are given as a native type ("VarChar(191)"), an enum name, or
// a bare family for dialects without native types.
type Column struct {
	Name          string   `yaml:"name"`
	Type          string   `yaml:"type,omitempty"`
	Enum          string   `yaml:"enum,omitempty"`
	Family        string   `yaml:"family,omitempty"`
	FullDataType  string   `yaml:"full_data_type,omitempty"`
	Nullable      bool     `yaml:"nullable,omitempty"`
	List          bool     `yaml:"list,omitempty"`
	AutoIncrement bool     `yaml:"autoincrement,omitempty"`
	Default       *Default `yaml:"default,omitempty"`
}

type Default struct {
	Kind           string `yaml:"kind,omitempty"`
	Expr           string `yaml:"expr,omitempty"`
	Sequence       string `yaml:"sequence,omitempty"`
	ConstraintName string `yaml:"constraint_name,omitempty"`
}

type PrimaryKey struct {
	Name    string        `yaml:"name,omitempty"`
	Columns []IndexColumn `yaml:"columns"`
}

type Index struct {
	Name      string        `yaml:"name"`
	Kind      string        `yaml:"kind,omitempty"`
	Algorithm string        `yaml:"algorithm,omitempty"`
	Predicate string        `yaml:"predicate,omitempty"`
	Columns   []IndexColumn `yaml:"columns"`
}

type IndexColumn struct {
	Name          string `yaml:"name"`
	Desc          bool   `yaml:"desc,omitempty"`
	OperatorClass string `yaml:"operator_class,omitempty"`
	Length        int    `yaml:"length,omitempty"`
}

type ForeignKey struct {
	Name       string    `yaml:"name,omitempty"`
	Columns    []string  `yaml:"columns"`
	References Reference `yaml:"references"`
	OnDelete   string    `yaml:"on_delete,omitempty"`
	OnUpdate   string    `yaml:"on_update,omitempty"`
}

type Reference struct {
	Namespace string   `yaml:"namespace,omitempty"`
	Table     string   `yaml:"table"`
	Columns   []string `yaml:"columns"`
}

type View struct {
	Namespace  string `yaml:"namespace,omitempty"`
	Name       string `yaml:"name"`
	Definition string `yaml:"definition,omitempty"`
}

// IsSnapshotPath reports whether a database argument names a snapshot file
// rather than a connection URL.
func IsSnapshotPath(arg string) bool {
	lower := strings.ToLower(arg)
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}

// Load reads a snapshot file. A file that names no dialect is built for
// fallback, which may be empty.
func Load(path string, fallback dialect.Dialect) (*schema.Schema, dialect.Dialect, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Read(f, fallback)
}

// Read decodes a snapshot and builds its schema. Unknown keys are rejected.
func Read(r io.Reader, fallback dialect.Dialect) (*schema.Schema, dialect.Dialect, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, "", fmt.Errorf("failed to decode snapshot: %w", err)
	}

	d := fallback
	if file.Dialect != "" {
		var err error
		if d, err = dialect.Parse(file.Dialect); err != nil {
			return nil, "", err
		}
	}
	s, err := file.Build(d)
	if err != nil {
		return nil, "", err
	}
	return s, d, nil
}

// Build turns the document into a schema. Entities without a namespace go
// into the dialect's default one.
func (f *File) Build(d dialect.Dialect) (*schema.Schema, error) {
	b := schema.NewBuilder()
	ns := func(name string) schema.NamespaceID {
		if name == "" {
			name = d.DefaultNamespace()
		}
		return b.EnsureNamespace(name)
	}

	for _, name := range f.Namespaces {
		if _, err := b.AddNamespace(name); err != nil {
			return nil, err
		}
	}
	for _, e := range f.Enums {
		if _, err := b.AddEnum(schema.Enum{Namespace: ns(e.Namespace), Name: e.Name, Values: e.Values}); err != nil {
			return nil, err
		}
	}
	for _, q := range f.Sequences {
		_, err := b.AddSequence(schema.Sequence{
			Namespace: ns(q.Namespace), Name: q.Name,
			Start: q.Start, Min: q.Min, Max: q.Max, Increment: q.Increment, Cache: q.Cache, Cycle: q.Cycle,
		})
		if err != nil {
			return nil, err
		}
	}

	tables := make([]schema.TableID, len(f.Tables))
	for i, t := range f.Tables {
		nsID := ns(t.Namespace)
		tid, err := b.AddTable(schema.Table{Namespace: nsID, Name: t.Name})
		if err != nil {
			return nil, err
		}
		tables[i] = tid
		for _, c := range t.Columns {
			col, err := c.column(b, nsID, tid)
			if err != nil {
				return nil, fmt.Errorf("table %s: %w", t.Name, err)
			}
			if _, err := b.AddColumn(col); err != nil {
				return nil, err
			}
		}
	}

	for i, t := range f.Tables {
		tid := tables[i]
		if pk := t.PrimaryKey; pk != nil {
			if err := addIndex(b, tid, Index{Name: pk.Name, Columns: pk.Columns}, schema.IndexPrimaryKey); err != nil {
				return nil, fmt.Errorf("table %s: %w", t.Name, err)
			}
		}
		for _, idx := range t.Indexes {
			kind, err := parseIndexKind(idx.Kind)
			if err != nil {
				return nil, fmt.Errorf("table %s: %w", t.Name, err)
			}
			if err := addIndex(b, tid, idx, kind); err != nil {
				return nil, fmt.Errorf("table %s: %w", t.Name, err)
			}
		}
	}

	for i, t := range f.Tables {
		for _, fk := range t.ForeignKeys {
			if err := addForeignKey(b, tables[i], ns(fk.References.Namespace), fk); err != nil {
				return nil, fmt.Errorf("table %s: %w", t.Name, err)
			}
		}
	}

	for _, v := range f.Views {
		if _, err := b.AddView(schema.View{Namespace: ns(v.Namespace), Name: v.Name, Definition: v.Definition}); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

func (c Column) column(b *schema.Builder, ns schema.NamespaceID, table schema.TableID) (schema.Column, error) {
	ct := schema.ColumnType{FullDataType: c.FullDataType, Arity: schema.Required}
	switch {
	case c.List:
		ct.Arity = schema.List
	case c.Nullable:
		ct.Arity = schema.Nullable
	}

	switch {
	case c.Enum != "":
		eid, ok := b.Enum(ns, c.Enum)
		if !ok {
			return schema.Column{}, fmt.Errorf("column %s uses unknown enum %s", c.Name, c.Enum)
		}
		ct.Family = schema.FamilyEnum
		ct.Enum = eid
		if ct.FullDataType == "" {
			ct.FullDataType = c.Enum
		}
	case c.Type != "":
		ct.Native = schema.ParseNativeType(c.Type)
		ct.Family = schema.FamilyOf(ct.Native.Name)
		if ct.FullDataType == "" {
			ct.FullDataType = strings.ToLower(ct.Native.String())
		}
	}
	if c.Family != "" {
		f, ok := schema.ParseFamily(c.Family)
		if !ok {
			return schema.Column{}, fmt.Errorf("column %s has unknown family %s", c.Name, c.Family)
		}
		ct.Family = f
	}
	if c.Type == "" && c.Enum == "" && c.Family == "" {
		return schema.Column{}, fmt.Errorf("column %s needs a type, an enum or a family", c.Name)
	}

	col := schema.Column{Table: table, Name: c.Name, Type: ct, AutoIncrement: c.AutoIncrement}
	if c.Default != nil {
		def, err := c.Default.parse()
		if err != nil {
			return schema.Column{}, fmt.Errorf("column %s: %w", c.Name, err)
		}
		col.Default = def
	}
	return col, nil
}

var defaultKinds = map[string]schema.DefaultKind{
	"":             schema.DefaultValue,
	"value":        schema.DefaultValue,
	"now":          schema.DefaultNow,
	"sequence":     schema.DefaultSequence,
	"unique_rowid": schema.DefaultUniqueRowID,
	"dbgenerated":  schema.DefaultDBGenerated,
}

func (d *Default) parse() (*schema.Default, error) {
	kind, ok := defaultKinds[strings.ToLower(d.Kind)]
	if !ok {
		return nil, fmt.Errorf("unknown default kind %q", d.Kind)
	}
	return &schema.Default{Kind: kind, Expr: d.Expr, Sequence: d.Sequence, ConstraintName: d.ConstraintName}, nil
}

func parseIndexKind(s string) (schema.IndexKind, error) {
	switch strings.ToLower(s) {
	case "", "normal":
		return schema.IndexNormal, nil
	case "unique":
		return schema.IndexUnique, nil
	case "fulltext":
		return schema.IndexFulltext, nil
	}
	return 0, fmt.Errorf("unknown index kind %q", s)
}

func addIndex(b *schema.Builder, table schema.TableID, idx Index, kind schema.IndexKind) error {
	out := schema.Index{
		Table:     table,
		Name:      idx.Name,
		Kind:      kind,
		Algorithm: schema.IndexAlgorithm(idx.Algorithm),
		Predicate: idx.Predicate,
	}
	for _, ic := range idx.Columns {
		cid, ok := b.Column(table, ic.Name)
		if !ok {
			return fmt.Errorf("index %s names unknown column %s", idx.Name, ic.Name)
		}
		entry := schema.IndexColumn{Column: cid, OperatorClass: ic.OperatorClass, Length: ic.Length}
		if ic.Desc {
			entry.SortOrder = schema.Desc
		}
		out.Columns = append(out.Columns, entry)
	}
	_, err := b.AddIndex(out)
	return err
}

func addForeignKey(b *schema.Builder, table schema.TableID, refNS schema.NamespaceID, fk ForeignKey) error {
	ref, ok := b.Table(refNS, fk.References.Table)
	if !ok {
		return fmt.Errorf("foreign key %s references unknown table %s", fk.Name, fk.References.Table)
	}
	if len(fk.Columns) != len(fk.References.Columns) {
		return fmt.Errorf("foreign key %s has %d columns but references %d", fk.Name, len(fk.Columns), len(fk.References.Columns))
	}

	out := schema.ForeignKey{
		Table:      table,
		Referenced: ref,
		Name:       fk.Name,
		OnDelete:   schema.ParseAction(fk.OnDelete),
		OnUpdate:   schema.ParseAction(fk.OnUpdate),
	}
	for i, name := range fk.Columns {
		c, ok := b.Column(table, name)
		if !ok {
			return fmt.Errorf("foreign key %s names unknown column %s", fk.Name, name)
		}
		r, ok := b.Column(ref, fk.References.Columns[i])
		if !ok {
			return fmt.Errorf("foreign key %s references unknown column %s", fk.Name, fk.References.Columns[i])
		}
		out.Columns = append(out.Columns, schema.ForeignKeyColumn{Column: c, Referenced: r})
	}
	_, err := b.AddForeignKey(out)
	return err
}
