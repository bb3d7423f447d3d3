package schema

import (
	"strconv"
	"strings"
)

// Handles are dense indexes into one Schema's arenas. A handle is only
// meaningful for the snapshot that produced it.
type (
	NamespaceID  int
	TableID      int
	ColumnID     int
	IndexID      int
	ForeignKeyID int
	EnumID       int
	SequenceID   int
	ViewID       int
)

// Family is the portable classification of a column type.
type Family int

const (
	FamilyUnsupported Family = iota
	FamilyInt
	FamilyBigInt
	FamilyFloat
	FamilyDecimal
	FamilyBoolean
	FamilyString
	FamilyDateTime
	FamilyBinary
	FamilyJSON
	FamilyUUID
	FamilyEnum
)

var familyNames = [...]string{
	FamilyUnsupported: "Unsupported",
	FamilyInt:         "Int",
	FamilyBigInt:      "BigInt",
	FamilyFloat:       "Float",
	FamilyDecimal:     "Decimal",
	FamilyBoolean:     "Boolean",
	FamilyString:      "String",
	FamilyDateTime:    "DateTime",
	FamilyBinary:      "Binary",
	FamilyJSON:        "Json",
	FamilyUUID:        "Uuid",
	FamilyEnum:        "Enum",
}

// Families lists every family in declaration order.
var Families = []Family{
	FamilyUnsupported, FamilyInt, FamilyBigInt, FamilyFloat, FamilyDecimal, FamilyBoolean,
	FamilyString, FamilyDateTime, FamilyBinary, FamilyJSON, FamilyUUID, FamilyEnum,
}

func (f Family) String() string {
	if int(f) < len(familyNames) {
		return familyNames[f]
	}
	return "Family(" + strconv.Itoa(int(f)) + ")"
}

// ParseFamily is the inverse of Family.String.
func ParseFamily(s string) (Family, bool) {
	for i, name := range familyNames {
		if strings.EqualFold(name, s) {
			return Family(i), true
		}
	}
	return FamilyUnsupported, false
}

var nativeFamilies = map[string]Family{
	"tinyint":          FamilyInt,
	"smallint":         FamilyInt,
	"mediumint":        FamilyInt,
	"int":              FamilyInt,
	"integer":          FamilyInt,
	"int2":             FamilyInt,
	"int4":             FamilyInt,
	"bigint":           FamilyBigInt,
	"int8":             FamilyBigInt,
	"real":             FamilyFloat,
	"float":            FamilyFloat,
	"double":           FamilyFloat,
	"doubleprecision":  FamilyFloat,
	"decimal":          FamilyDecimal,
	"numeric":          FamilyDecimal,
	"money":            FamilyDecimal,
	"bit":              FamilyBoolean,
	"boolean":          FamilyBoolean,
	"char":             FamilyString,
	"varchar":          FamilyString,
	"nchar":            FamilyString,
	"nvarchar":         FamilyString,
	"text":             FamilyString,
	"ntext":            FamilyString,
	"date":             FamilyDateTime,
	"time":             FamilyDateTime,
	"datetime":         FamilyDateTime,
	"datetime2":        FamilyDateTime,
	"timestamp":        FamilyDateTime,
	"timestamptz":      FamilyDateTime,
	"binary":           FamilyBinary,
	"varbinary":        FamilyBinary,
	"image":            FamilyBinary,
	"bytea":            FamilyBinary,
	"blob":             FamilyBinary,
	"json":             FamilyJSON,
	"jsonb":            FamilyJSON,
	"uuid":             FamilyUUID,
	"uniqueidentifier": FamilyUUID,
}

// FamilyOf guesses the family of a native type name. Unknown names are
// FamilyUnsupported.
func FamilyOf(native string) Family {
	return nativeFamilies[strings.ToLower(native)]
}

// Arity is whether a column is required, nullable or array-valued.
type Arity int

const (
	Required Arity = iota
	Nullable
	List
)

func (a Arity) String() string {
	switch a {
	case Nullable:
		return "Nullable"
	case List:
		return "List"
	default:
		return "Required"
	}
}

// NativeType is the dialect-specific physical type, e.g. VarChar(255) or
// Decimal(10,2). The zero value means "no native type known".
type NativeType struct {
	Name string
	Args []string
}

// Native builds a NativeType from a name and optional arguments.
func Native(name string, args ...string) NativeType {
	return NativeType{Name: name, Args: args}
}

// IsZero reports whether no native type is set.
func (n NativeType) IsZero() bool { return n.Name == "" }

func (n NativeType) String() string {
	if len(n.Args) == 0 {
		return n.Name
	}
	return n.Name + "(" + strings.Join(n.Args, ",") + ")"
}

// Equal compares name and arguments.
func (n NativeType) Equal(o NativeType) bool {
	if n.Name != o.Name || len(n.Args) != len(o.Args) {
		return false
	}
	for i := range n.Args {
		if n.Args[i] != o.Args[i] {
			return false
		}
	}
	return true
}

// Arg returns the i-th argument as an integer. ok is false when the argument
// is absent or not numeric (e.g. "Max").
func (n NativeType) Arg(i int) (v int, ok bool) {
	if i >= len(n.Args) {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(n.Args[i]))
	if err != nil {
		return 0, false
	}
	return v, true
}

// IsMax reports whether the first argument is the literal Max.
func (n NativeType) IsMax() bool {
	return len(n.Args) > 0 && strings.EqualFold(strings.TrimSpace(n.Args[0]), "max")
}

// ParseNativeType parses "VarChar(255)" style text.
func ParseNativeType(s string) NativeType {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return NativeType{Name: s}
	}
	var args []string
	for _, a := range strings.Split(s[open+1:len(s)-1], ",") {
		args = append(args, strings.TrimSpace(a))
	}
	return NativeType{Name: strings.TrimSpace(s[:open]), Args: args}
}

// ColumnType is the full description of a column's type.
type ColumnType struct {
	// FullDataType is the type as the database spells it, e.g. "int" or "character varying(9)".
	FullDataType string
	Family       Family
	Arity        Arity
	Native       NativeType
	// Enum is only meaningful when Family is FamilyEnum.
	Enum EnumID
}

// DefaultKind tells how a column default is produced.
type DefaultKind int

const (
	DefaultValue DefaultKind = iota
	DefaultNow
	DefaultSequence
	DefaultUniqueRowID
	DefaultDBGenerated
)

func (k DefaultKind) String() string {
	switch k {
	case DefaultNow:
		return "now"
	case DefaultSequence:
		return "sequence"
	case DefaultUniqueRowID:
		return "unique_rowid"
	case DefaultDBGenerated:
		return "dbgenerated"
	default:
		return "value"
	}
}

// Default is a column default.
type Default struct {
	Kind DefaultKind
	// Expr is the SQL text of the default (a literal for DefaultValue, the raw
	// expression for DefaultDBGenerated).
	Expr string
	// Sequence is the backing sequence name for DefaultSequence.
	Sequence string
	// ConstraintName is the name of the default constraint where the dialect
	// names them (SQL Server).
	ConstraintName string
}

// Equal compares defaults ignoring constraint names.
func (d *Default) Equal(o *Default) bool {
	if d == nil || o == nil {
		return d == nil && o == nil
	}
	return d.Kind == o.Kind && d.Expr == o.Expr && d.Sequence == o.Sequence
}

// TableProperties are flags describing special tables.
type TableProperties uint8

const (
	IsPartition TableProperties = 1 << iota
	HasSubclass
	HasRowLevelSecurity
)

// Has reports whether all flags in p are set.
func (t TableProperties) Has(p TableProperties) bool { return t&p == p }

// IndexKind classifies an index.
type IndexKind int

const (
	IndexNormal IndexKind = iota
	IndexUnique
	IndexFulltext
	IndexPrimaryKey
)

func (k IndexKind) String() string {
	switch k {
	case IndexUnique:
		return "Unique"
	case IndexFulltext:
		return "Fulltext"
	case IndexPrimaryKey:
		return "PrimaryKey"
	default:
		return "Normal"
	}
}

// IsUnique is true for unique indexes and primary keys.
func (k IndexKind) IsUnique() bool { return k == IndexUnique || k == IndexPrimaryKey }

// IndexAlgorithm is the access method of an index. Empty means the dialect default.
type IndexAlgorithm string

const (
	BTree  IndexAlgorithm = "BTree"
	Hash   IndexAlgorithm = "Hash"
	Gist   IndexAlgorithm = "Gist"
	Gin    IndexAlgorithm = "Gin"
	SpGist IndexAlgorithm = "SpGist"
	Brin   IndexAlgorithm = "Brin"
)

// SortOrder of an index column. The zero value is ascending.
type SortOrder int

const (
	Asc SortOrder = iota
	Desc
)

func (s SortOrder) String() string {
	if s == Desc {
		return "Desc"
	}
	return "Asc"
}

// Action is a referential action of a foreign key.
type Action int

const (
	NoAction Action = iota
	Restrict
	Cascade
	SetNull
	SetDefault
)

func (a Action) String() string {
	switch a {
	case Restrict:
		return "RESTRICT"
	case Cascade:
		return "CASCADE"
	case SetNull:
		return "SET NULL"
	case SetDefault:
		return "SET DEFAULT"
	default:
		return "NO ACTION"
	}
}

// ParseAction reads the catalog spelling of a referential action. Postgres
// single-letter codes are accepted too.
func ParseAction(s string) Action {
	switch strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(s, "_", " "))) {
	case "RESTRICT", "R":
		return Restrict
	case "CASCADE", "C":
		return Cascade
	case "SET NULL", "N":
		return SetNull
	case "SET DEFAULT", "D":
		return SetDefault
	default:
		return NoAction
	}
}

// Namespace is a schema in the Postgres / SQL Server sense.
type Namespace struct {
	Name string
}

// Table is a base table.
type Table struct {
	Namespace  NamespaceID
	Name       string
	Properties TableProperties
}

// Column belongs to one table.
type Column struct {
	Table         TableID
	Name          string
	Type          ColumnType
	Default       *Default
	AutoIncrement bool
}

// Index belongs to one table and lists its columns in order.
type Index struct {
	Table     TableID
	Name      string
	Kind      IndexKind
	Algorithm IndexAlgorithm
	Predicate string
	Columns   []IndexColumn
}

// IndexColumn is one entry of an index.
type IndexColumn struct {
	Column        ColumnID
	SortOrder     SortOrder
	OperatorClass string
	// Length is the prefix length, 0 when unset.
	Length int
}

// ForeignKey constrains columns of Table to reference columns of Referenced.
type ForeignKey struct {
	Table      TableID
	Referenced TableID
	Name       string
	OnDelete   Action
	OnUpdate   Action
	Columns    []ForeignKeyColumn
}

// ForeignKeyColumn pairs a constrained column with the column it references.
type ForeignKeyColumn struct {
	Column     ColumnID
	Referenced ColumnID
}

// Enum is a named, ordered set of values.
type Enum struct {
	Namespace NamespaceID
	Name      string
	Values    []string
}

// Sequence backs auto-increment columns.
type Sequence struct {
	Namespace NamespaceID
	Name      string
	Start     int64
	Min       int64
	Max       int64
	Increment int64
	Cache     int64
	Cycle     bool
}

// View is only tracked by name and definition.
type View struct {
	Namespace  NamespaceID
	Name       string
	Definition string
}
