package db

import (
	"regexp"
	"strings"

	"github.com/tordrt/schemaplan/internal/schema"
)

var typeArgsRe = regexp.MustCompile(`\(([^)]*)\)`)

// typeArgs extracts the arguments of the first parenthesized group in a
// formatted type, e.g. "numeric(10,2)" or "timestamp(3) without time zone".
func typeArgs(formatted string) []string {
	m := typeArgsRe.FindStringSubmatch(formatted)
	if m == nil {
		return nil
	}
	var args []string
	for _, a := range strings.Split(m[1], ",") {
		if a = strings.TrimSpace(a); a != "" {
			args = append(args, a)
		}
	}
	return args
}

type nativeMapping struct {
	native string
	family schema.Family
	// sized types keep the arguments of the formatted type.
	sized bool
}

// Keys are udt names without the leading underscore arrays carry.
var postgresTypes = map[string]nativeMapping{
	"int2":        {"SmallInt", schema.FamilyInt, false},
	"int4":        {"Integer", schema.FamilyInt, false},
	"int8":        {"BigInt", schema.FamilyBigInt, false},
	"oid":         {"Oid", schema.FamilyInt, false},
	"float4":      {"Real", schema.FamilyFloat, false},
	"float8":      {"DoublePrecision", schema.FamilyFloat, false},
	"bool":        {"Boolean", schema.FamilyBoolean, false},
	"text":        {"Text", schema.FamilyString, false},
	"citext":      {"Citext", schema.FamilyString, false},
	"varchar":     {"VarChar", schema.FamilyString, true},
	"bpchar":      {"Char", schema.FamilyString, true},
	"date":        {"Date", schema.FamilyDateTime, false},
	"bytea":       {"ByteA", schema.FamilyBinary, false},
	"json":        {"Json", schema.FamilyJSON, false},
	"jsonb":       {"JsonB", schema.FamilyJSON, false},
	"uuid":        {"Uuid", schema.FamilyUUID, false},
	"xml":         {"Xml", schema.FamilyString, false},
	"bit":         {"Bit", schema.FamilyString, true},
	"varbit":      {"VarBit", schema.FamilyString, true},
	"numeric":     {"Decimal", schema.FamilyDecimal, true},
	"money":       {"Money", schema.FamilyDecimal, false},
	"time":        {"Time", schema.FamilyDateTime, true},
	"timetz":      {"Timetz", schema.FamilyDateTime, true},
	"timestamp":   {"Timestamp", schema.FamilyDateTime, true},
	"timestamptz": {"Timestamptz", schema.FamilyDateTime, true},
	"inet":        {"Inet", schema.FamilyString, false},
}

var cockroachTypes = map[string]nativeMapping{
	"int2":        {"Int2", schema.FamilyInt, false},
	"int4":        {"Int4", schema.FamilyInt, false},
	"int8":        {"Int8", schema.FamilyBigInt, false},
	"oid":         {"Oid", schema.FamilyInt, false},
	"float4":      {"Float4", schema.FamilyFloat, false},
	"float8":      {"Float8", schema.FamilyFloat, false},
	"bool":        {"Bool", schema.FamilyBoolean, false},
	"text":        {"String", schema.FamilyString, false},
	"varchar":     {"String", schema.FamilyString, true},
	"bpchar":      {"Char", schema.FamilyString, true},
	"char":        {"Char", schema.FamilyString, true},
	"date":        {"Date", schema.FamilyDateTime, false},
	"bytea":       {"Bytes", schema.FamilyBinary, false},
	"jsonb":       {"JsonB", schema.FamilyJSON, false},
	"uuid":        {"Uuid", schema.FamilyUUID, false},
	"bit":         {"Bit", schema.FamilyString, true},
	"varbit":      {"VarBit", schema.FamilyString, true},
	"numeric":     {"Decimal", schema.FamilyDecimal, true},
	"time":        {"Time", schema.FamilyDateTime, true},
	"timetz":      {"Timetz", schema.FamilyDateTime, true},
	"timestamp":   {"Timestamp", schema.FamilyDateTime, true},
	"timestamptz": {"Timestamptz", schema.FamilyDateTime, true},
	"inet":        {"Inet", schema.FamilyString, false},
}

var mysqlTypes = map[string]nativeMapping{
	"tinyint":    {"TinyInt", schema.FamilyInt, false},
	"smallint":   {"SmallInt", schema.FamilyInt, false},
	"mediumint":  {"MediumInt", schema.FamilyInt, false},
	"int":        {"Int", schema.FamilyInt, false},
	"bigint":     {"BigInt", schema.FamilyBigInt, false},
	"decimal":    {"Decimal", schema.FamilyDecimal, true},
	"float":      {"Float", schema.FamilyFloat, false},
	"double":     {"Double", schema.FamilyFloat, false},
	"bit":        {"Bit", schema.FamilyBinary, true},
	"char":       {"Char", schema.FamilyString, true},
	"varchar":    {"VarChar", schema.FamilyString, true},
	"binary":     {"Binary", schema.FamilyBinary, true},
	"varbinary":  {"VarBinary", schema.FamilyBinary, true},
	"tinyblob":   {"TinyBlob", schema.FamilyBinary, false},
	"blob":       {"Blob", schema.FamilyBinary, false},
	"mediumblob": {"MediumBlob", schema.FamilyBinary, false},
	"longblob":   {"LongBlob", schema.FamilyBinary, false},
	"tinytext":   {"TinyText", schema.FamilyString, false},
	"text":       {"Text", schema.FamilyString, false},
	"mediumtext": {"MediumText", schema.FamilyString, false},
	"longtext":   {"LongText", schema.FamilyString, false},
	"date":       {"Date", schema.FamilyDateTime, false},
	"time":       {"Time", schema.FamilyDateTime, true},
	"datetime":   {"DateTime", schema.FamilyDateTime, true},
	"timestamp":  {"Timestamp", schema.FamilyDateTime, true},
	"year":       {"Year", schema.FamilyInt, false},
	"json":       {"Json", schema.FamilyJSON, false},
}

var sqlserverTypes = map[string]nativeMapping{
	"bit":              {"Bit", schema.FamilyBoolean, false},
	"tinyint":          {"TinyInt", schema.FamilyInt, false},
	"smallint":         {"SmallInt", schema.FamilyInt, false},
	"int":              {"Int", schema.FamilyInt, false},
	"bigint":           {"BigInt", schema.FamilyBigInt, false},
	"decimal":          {"Decimal", schema.FamilyDecimal, true},
	"numeric":          {"Decimal", schema.FamilyDecimal, true},
	"money":            {"Money", schema.FamilyDecimal, false},
	"smallmoney":       {"SmallMoney", schema.FamilyDecimal, false},
	"float":            {"Float", schema.FamilyFloat, true},
	"real":             {"Real", schema.FamilyFloat, false},
	"date":             {"Date", schema.FamilyDateTime, false},
	"time":             {"Time", schema.FamilyDateTime, false},
	"datetime":         {"DateTime", schema.FamilyDateTime, false},
	"datetime2":        {"DateTime2", schema.FamilyDateTime, false},
	"datetimeoffset":   {"DateTimeOffset", schema.FamilyDateTime, false},
	"smalldatetime":    {"SmallDateTime", schema.FamilyDateTime, false},
	"char":             {"Char", schema.FamilyString, true},
	"nchar":            {"NChar", schema.FamilyString, true},
	"varchar":          {"VarChar", schema.FamilyString, true},
	"nvarchar":         {"NVarChar", schema.FamilyString, true},
	"text":             {"Text", schema.FamilyString, false},
	"ntext":            {"NText", schema.FamilyString, false},
	"binary":           {"Binary", schema.FamilyBinary, true},
	"varbinary":        {"VarBinary", schema.FamilyBinary, true},
	"image":            {"Image", schema.FamilyBinary, false},
	"xml":              {"Xml", schema.FamilyString, false},
	"uniqueidentifier": {"UniqueIdentifier", schema.FamilyUUID, false},
}

// native looks a type up in m. ok is false for types the table does not know.
func native(m map[string]nativeMapping, name string, args []string) (schema.NativeType, schema.Family, bool) {
	nm, ok := m[strings.ToLower(name)]
	if !ok {
		return schema.NativeType{}, schema.FamilyUnsupported, false
	}
	if !nm.sized {
		args = nil
	}
	return schema.Native(nm.native, args...), nm.family, true
}

// sqliteFamily applies SQLite's type affinity rules to a declared type.
func sqliteFamily(declared string) schema.Family {
	t := strings.ToLower(declared)
	switch {
	case t == "bigint":
		return schema.FamilyBigInt
	case strings.Contains(t, "int"):
		return schema.FamilyInt
	case strings.Contains(t, "char"), strings.Contains(t, "clob"), strings.Contains(t, "text"):
		return schema.FamilyString
	case t == "" || strings.Contains(t, "blob"):
		return schema.FamilyBinary
	case strings.Contains(t, "real"), strings.Contains(t, "floa"), strings.Contains(t, "doub"):
		return schema.FamilyFloat
	case strings.HasPrefix(t, "decimal"), strings.HasPrefix(t, "numeric"):
		return schema.FamilyDecimal
	case t == "boolean":
		return schema.FamilyBoolean
	case t == "datetime", t == "date", t == "timestamp":
		return schema.FamilyDateTime
	case t == "jsonb", t == "json":
		return schema.FamilyJSON
	default:
		return schema.FamilyUnsupported
	}
}
