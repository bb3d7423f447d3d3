package safety

// Cast tables. Rows are the previous type, entries the next one. Every row
// names every type of its dialect exactly once.

// postgresCasts covers every known Postgres native type.
var postgresCasts = castTable{
	"SmallInt": {
		Safe:        []string{"SmallInt", "Integer", "BigInt", "Real", "DoublePrecision", "Text"},
		NotCastable: []string{"Money", "Citext", "ByteA", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Boolean", "Bit", "VarBit", "Uuid", "Xml", "Json", "JsonB", "Inet", "Oid"},
		Rules: map[string]rule{
			"Decimal": pgDecimalFits(3),
			"VarChar": pgTextFits(4),
			"Char":    pgTextFits(4),
		},
	},
	"Integer": {
		Safe:        []string{"Integer", "BigInt", "Real", "DoublePrecision", "Text"},
		Risky:       []string{"SmallInt"},
		NotCastable: []string{"Money", "Citext", "ByteA", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Boolean", "Bit", "VarBit", "Uuid", "Xml", "Json", "JsonB", "Inet", "Oid"},
		Rules: map[string]rule{
			"Decimal": pgDecimalFits(10),
			"VarChar": pgTextFits(11),
			"Char":    pgTextFits(11),
		},
	},
	"BigInt": {
		Safe:        []string{"BigInt", "Real", "DoublePrecision", "Text"},
		Risky:       []string{"SmallInt", "Integer"},
		NotCastable: []string{"Money", "Citext", "ByteA", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Boolean", "Bit", "VarBit", "Uuid", "Xml", "Json", "JsonB", "Inet", "Oid"},
		Rules: map[string]rule{
			"Decimal": pgDecimalFits(19),
			"VarChar": pgTextFits(20),
			"Char":    pgTextFits(20),
		},
	},
	"Decimal": {
		Safe:        []string{"Text"},
		Risky:       []string{"Real", "DoublePrecision"},
		NotCastable: []string{"Money", "Citext", "ByteA", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Boolean", "Bit", "VarBit", "Uuid", "Xml", "Json", "JsonB", "Inet", "Oid"},
		Rules: map[string]rule{
			"SmallInt": pgDecimalToInt(2),
			"Integer":  pgDecimalToInt(9),
			"BigInt":   pgDecimalToInt(18),
			"Decimal":  pgDecimalResize,
			"VarChar":  pgDecimalToText,
			"Char":     pgDecimalToText,
		},
	},
	"Money": {
		Safe:  []string{"Money", "VarChar", "Text", "Citext"},
		Risky: []string{"SmallInt", "Integer", "BigInt", "Decimal", "Real", "DoublePrecision", "Char", "ByteA", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Boolean", "Bit", "VarBit", "Uuid", "Xml", "Json", "JsonB", "Inet", "Oid"},
	},
	"Real": {
		Safe:        []string{"Real", "DoublePrecision", "Text"},
		Risky:       []string{"SmallInt", "Integer", "BigInt", "Decimal"},
		NotCastable: []string{"Money", "Citext", "ByteA", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Boolean", "Bit", "VarBit", "Uuid", "Xml", "Json", "JsonB", "Inet", "Oid"},
		Rules: map[string]rule{
			"VarChar": pgTextFits(47),
			"Char":    pgTextFits(47),
		},
	},
	"DoublePrecision": {
		Safe:        []string{"DoublePrecision", "Text"},
		Risky:       []string{"SmallInt", "Integer", "BigInt", "Decimal", "Real"},
		NotCastable: []string{"Money", "Citext", "ByteA", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Boolean", "Bit", "VarBit", "Uuid", "Xml", "Json", "JsonB", "Inet", "Oid"},
		Rules: map[string]rule{
			"VarChar": pgTextFits(317),
			"Char":    pgTextFits(317),
		},
	},
	"VarChar": {
		Safe:        []string{"Text"},
		NotCastable: []string{"SmallInt", "Integer", "BigInt", "Decimal", "Money", "Real", "DoublePrecision", "Citext", "ByteA", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Boolean", "Bit", "VarBit", "Uuid", "Xml", "Json", "JsonB", "Inet", "Oid"},
		Rules: map[string]rule{
			"VarChar": pgStringResize,
			"Char":    pgStringResize,
		},
	},
	"Char": {
		Safe:        []string{"Text"},
		NotCastable: []string{"SmallInt", "Integer", "BigInt", "Decimal", "Money", "Real", "DoublePrecision", "Citext", "ByteA", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Boolean", "Bit", "VarBit", "Uuid", "Xml", "Json", "JsonB", "Inet", "Oid"},
		Rules: map[string]rule{
			"VarChar": pgStringResize,
			"Char":    pgStringResize,
		},
	},
	"Text": {
		Safe:        []string{"Text", "Citext"},
		Risky:       []string{"Char"},
		NotCastable: []string{"SmallInt", "Integer", "BigInt", "Decimal", "Money", "Real", "DoublePrecision", "ByteA", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Boolean", "Bit", "VarBit", "Uuid", "Xml", "Json", "JsonB", "Inet", "Oid"},
		Rules: map[string]rule{
			"VarChar": pgUnboundedOr(Risky),
		},
	},
	"Citext": {
		Safe:  []string{"VarChar", "Text", "Citext"},
		Risky: []string{"SmallInt", "Integer", "BigInt", "Decimal", "Money", "Real", "DoublePrecision", "Char", "ByteA", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Boolean", "Bit", "VarBit", "Uuid", "Xml", "Json", "JsonB", "Inet", "Oid"},
	},
	"ByteA": {
		Safe:        []string{"Text", "ByteA"},
		NotCastable: []string{"SmallInt", "Integer", "BigInt", "Decimal", "Money", "Real", "DoublePrecision", "Citext", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Boolean", "Bit", "VarBit", "Uuid", "Xml", "Json", "JsonB", "Inet", "Oid"},
		Rules: map[string]rule{
			"VarChar": pgByteAToText,
			"Char":    pgByteAToText,
		},
	},
	"Timestamp": {
		Safe:        []string{"Text", "Timestamp", "Timestamptz", "Date", "Time", "Timetz"},
		NotCastable: []string{"SmallInt", "Integer", "BigInt", "Decimal", "Money", "Real", "DoublePrecision", "Citext", "ByteA", "Boolean", "Bit", "VarBit", "Uuid", "Xml", "Json", "JsonB", "Inet", "Oid"},
		Rules: map[string]rule{
			"VarChar": pgLongerThan(22),
			"Char":    pgLongerThan(22),
		},
	},
	"Timestamptz": {
		Safe:        []string{"Text", "Timestamp", "Timestamptz", "Date", "Time", "Timetz"},
		NotCastable: []string{"SmallInt", "Integer", "BigInt", "Decimal", "Money", "Real", "DoublePrecision", "Citext", "ByteA", "Boolean", "Bit", "VarBit", "Uuid", "Xml", "Json", "JsonB", "Inet", "Oid"},
		Rules: map[string]rule{
			"VarChar": pgLongerThan(27),
			"Char":    pgLongerThan(27),
		},
	},
	"Date": {
		Safe:        []string{"Text", "Timestamp", "Timestamptz", "Date"},
		NotCastable: []string{"SmallInt", "Integer", "BigInt", "Decimal", "Money", "Real", "DoublePrecision", "Citext", "ByteA", "Time", "Timetz", "Boolean", "Bit", "VarBit", "Uuid", "Xml", "Json", "JsonB", "Inet", "Oid"},
		Rules: map[string]rule{
			"VarChar": pgLongerThan(27),
			"Char":    pgLongerThan(27),
		},
	},
	"Time": {
		Safe:        []string{"Text", "Time", "Timetz"},
		NotCastable: []string{"SmallInt", "Integer", "BigInt", "Decimal", "Money", "Real", "DoublePrecision", "Citext", "ByteA", "Timestamp", "Timestamptz", "Date", "Boolean", "Bit", "VarBit", "Uuid", "Xml", "Json", "JsonB", "Inet", "Oid"},
		Rules: map[string]rule{
			"VarChar": pgLongerThan(13),
			"Char":    pgLongerThan(13),
		},
	},
	"Timetz": {
		Safe:        []string{"Text", "Time", "Timetz"},
		NotCastable: []string{"SmallInt", "Integer", "BigInt", "Decimal", "Money", "Real", "DoublePrecision", "Citext", "ByteA", "Timestamp", "Timestamptz", "Date", "Boolean", "Bit", "VarBit", "Uuid", "Xml", "Json", "JsonB", "Inet", "Oid"},
		Rules: map[string]rule{
			"VarChar": pgLongerThan(18),
			"Char":    pgLongerThan(18),
		},
	},
	"Boolean": {
		Safe:        []string{"VarChar", "Text", "Boolean"},
		NotCastable: []string{"SmallInt", "Integer", "BigInt", "Decimal", "Money", "Real", "DoublePrecision", "Citext", "ByteA", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Bit", "VarBit", "Uuid", "Xml", "Json", "JsonB", "Inet", "Oid"},
		Rules: map[string]rule{
			"Char": pgBooleanToChar,
		},
	},
	"Bit": {
		Safe:        []string{"Text"},
		NotCastable: []string{"SmallInt", "Integer", "BigInt", "Decimal", "Money", "Real", "DoublePrecision", "Citext", "ByteA", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Boolean", "Uuid", "Xml", "Json", "JsonB", "Inet", "Oid"},
		Rules: map[string]rule{
			"VarChar": pgBitCast,
			"Char":    pgBitCast,
			"Bit":     pgBitCast,
			"VarBit":  pgBitCast,
		},
	},
	"VarBit": {
		Safe:        []string{"Text"},
		NotCastable: []string{"SmallInt", "Integer", "BigInt", "Decimal", "Money", "Real", "DoublePrecision", "Citext", "ByteA", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Boolean", "Uuid", "Xml", "Json", "JsonB", "Inet", "Oid"},
		Rules: map[string]rule{
			"VarChar": pgVarBitCast,
			"Char":    pgVarBitCast,
			"Bit":     pgVarBitCast,
			"VarBit":  pgVarBitCast,
		},
	},
	"Uuid": {
		Safe:        []string{"Text", "Uuid"},
		NotCastable: []string{"SmallInt", "Integer", "BigInt", "Decimal", "Money", "Real", "DoublePrecision", "Citext", "ByteA", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Boolean", "Bit", "VarBit", "Xml", "Json", "JsonB", "Inet", "Oid"},
		Rules: map[string]rule{
			"VarChar": pgLongerThan(31),
			"Char":    pgLongerThan(31),
		},
	},
	"Xml": {
		Safe:        []string{"Text", "Xml"},
		Risky:       []string{"Char"},
		NotCastable: []string{"SmallInt", "Integer", "BigInt", "Decimal", "Money", "Real", "DoublePrecision", "Citext", "ByteA", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Boolean", "Bit", "VarBit", "Uuid", "Json", "JsonB", "Inet", "Oid"},
		Rules: map[string]rule{
			"VarChar": pgUnboundedOr(Risky),
		},
	},
	"Json": {
		Safe:        []string{"Text", "Json", "JsonB"},
		Risky:       []string{"Char"},
		NotCastable: []string{"SmallInt", "Integer", "BigInt", "Decimal", "Money", "Real", "DoublePrecision", "Citext", "ByteA", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Boolean", "Bit", "VarBit", "Uuid", "Xml", "Inet", "Oid"},
		Rules: map[string]rule{
			"VarChar": pgUnboundedOr(Risky),
		},
	},
	"JsonB": {
		Safe:        []string{"Text", "Json", "JsonB"},
		Risky:       []string{"Char"},
		NotCastable: []string{"SmallInt", "Integer", "BigInt", "Decimal", "Money", "Real", "DoublePrecision", "Citext", "ByteA", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Boolean", "Bit", "VarBit", "Uuid", "Xml", "Inet", "Oid"},
		Rules: map[string]rule{
			"VarChar": pgUnboundedOr(Risky),
		},
	},
	"Inet": {
		Safe:        []string{"VarChar", "Text", "Citext", "Inet"},
		NotCastable: []string{"SmallInt", "Integer", "BigInt", "Decimal", "Money", "Real", "DoublePrecision", "Char", "ByteA", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Boolean", "Bit", "VarBit", "Uuid", "Xml", "Json", "JsonB", "Oid"},
	},
	"Oid": {
		Safe:        []string{"Integer", "BigInt", "VarChar", "Text", "Oid"},
		NotCastable: []string{"SmallInt", "Decimal", "Money", "Real", "DoublePrecision", "Char", "Citext", "ByteA", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Boolean", "Bit", "VarBit", "Uuid", "Xml", "Json", "JsonB", "Inet"},
	},
}

// cockroachCasts is restrictive: CockroachDB only supports a handful of in-place
// type changes, and none on indexed columns.
var cockroachCasts = castTable{
	"Int2": {
		NotCastable: []string{"Int4", "Int8", "Decimal", "Float4", "Float8", "String", "Char", "Bytes", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Bool", "Uuid", "JsonB", "Inet", "Bit", "VarBit", "Oid"},
		Rules: map[string]rule{
			"Int2": sameType,
		},
	},
	"Int4": {
		NotCastable: []string{"Int2", "Int8", "Decimal", "Float4", "Float8", "Char", "Bytes", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Bool", "Uuid", "JsonB", "Inet", "Bit", "VarBit", "Oid"},
		Rules: map[string]rule{
			"Int4":   sameType,
			"String": crdbIntToString,
		},
	},
	"Int8": {
		NotCastable: []string{"Int2", "Decimal", "Float4", "Float8", "String", "Char", "Bytes", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Bool", "Uuid", "JsonB", "Inet", "Bit", "VarBit", "Oid"},
		Rules: map[string]rule{
			"Int4": crdbNarrowInt,
			"Int8": sameType,
		},
	},
	"Decimal": {
		NotCastable: []string{"Int2", "Int4", "Int8", "Float4", "Float8", "String", "Char", "Bytes", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Bool", "Uuid", "JsonB", "Inet", "Bit", "VarBit", "Oid"},
		Rules: map[string]rule{
			"Decimal": sameType,
		},
	},
	"Float4": {
		NotCastable: []string{"Int2", "Int4", "Int8", "Decimal", "Float8", "String", "Char", "Bytes", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Bool", "Uuid", "JsonB", "Inet", "Bit", "VarBit", "Oid"},
		Rules: map[string]rule{
			"Float4": sameType,
		},
	},
	"Float8": {
		NotCastable: []string{"Int2", "Int4", "Int8", "Decimal", "Float4", "String", "Char", "Bytes", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Bool", "Uuid", "JsonB", "Inet", "Bit", "VarBit", "Oid"},
		Rules: map[string]rule{
			"Float8": sameType,
		},
	},
	"String": {
		NotCastable: []string{"Int2", "Int4", "Int8", "Decimal", "Float4", "Float8", "Char", "Bytes", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Bool", "Uuid", "JsonB", "Inet", "Bit", "VarBit", "Oid"},
		Rules: map[string]rule{
			"String": sameType,
		},
	},
	"Char": {
		NotCastable: []string{"Int2", "Int4", "Int8", "Decimal", "Float4", "Float8", "String", "Bytes", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Bool", "Uuid", "JsonB", "Inet", "Bit", "VarBit", "Oid"},
		Rules: map[string]rule{
			"Char": sameType,
		},
	},
	"Bytes": {
		NotCastable: []string{"Int2", "Int4", "Int8", "Decimal", "Float4", "Float8", "String", "Char", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Bool", "Uuid", "JsonB", "Inet", "Bit", "VarBit", "Oid"},
		Rules: map[string]rule{
			"Bytes": sameType,
		},
	},
	"Timestamp": {
		NotCastable: []string{"Int2", "Int4", "Int8", "Decimal", "Float4", "Float8", "String", "Char", "Bytes", "Timestamptz", "Date", "Time", "Timetz", "Bool", "Uuid", "JsonB", "Inet", "Bit", "VarBit", "Oid"},
		Rules: map[string]rule{
			"Timestamp": crdbPrecision,
		},
	},
	"Timestamptz": {
		NotCastable: []string{"Int2", "Int4", "Int8", "Decimal", "Float4", "Float8", "String", "Char", "Bytes", "Timestamp", "Date", "Time", "Timetz", "Bool", "Uuid", "JsonB", "Inet", "Bit", "VarBit", "Oid"},
		Rules: map[string]rule{
			"Timestamptz": crdbPrecision,
		},
	},
	"Date": {
		NotCastable: []string{"Int2", "Int4", "Int8", "Decimal", "Float4", "Float8", "String", "Char", "Bytes", "Timestamp", "Timestamptz", "Time", "Timetz", "Bool", "Uuid", "JsonB", "Inet", "Bit", "VarBit", "Oid"},
		Rules: map[string]rule{
			"Date": sameType,
		},
	},
	"Time": {
		NotCastable: []string{"Int2", "Int4", "Int8", "Decimal", "Float4", "Float8", "String", "Char", "Bytes", "Timestamp", "Timestamptz", "Date", "Timetz", "Bool", "Uuid", "JsonB", "Inet", "Bit", "VarBit", "Oid"},
		Rules: map[string]rule{
			"Time": crdbPrecision,
		},
	},
	"Timetz": {
		NotCastable: []string{"Int2", "Int4", "Int8", "Decimal", "Float4", "Float8", "String", "Char", "Bytes", "Timestamp", "Timestamptz", "Date", "Time", "Bool", "Uuid", "JsonB", "Inet", "Bit", "VarBit", "Oid"},
		Rules: map[string]rule{
			"Timetz": crdbPrecision,
		},
	},
	"Bool": {
		NotCastable: []string{"Int2", "Int4", "Int8", "Decimal", "Float4", "Float8", "String", "Char", "Bytes", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Uuid", "JsonB", "Inet", "Bit", "VarBit", "Oid"},
		Rules: map[string]rule{
			"Bool": sameType,
		},
	},
	"Uuid": {
		NotCastable: []string{"Int2", "Int4", "Int8", "Decimal", "Float4", "Float8", "String", "Char", "Bytes", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Bool", "JsonB", "Inet", "Bit", "VarBit", "Oid"},
		Rules: map[string]rule{
			"Uuid": sameType,
		},
	},
	"JsonB": {
		NotCastable: []string{"Int2", "Int4", "Int8", "Decimal", "Float4", "Float8", "String", "Char", "Bytes", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Bool", "Uuid", "Inet", "Bit", "VarBit", "Oid"},
		Rules: map[string]rule{
			"JsonB": sameType,
		},
	},
	"Inet": {
		NotCastable: []string{"Int2", "Int4", "Int8", "Decimal", "Float4", "Float8", "String", "Char", "Bytes", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Bool", "Uuid", "JsonB", "Bit", "VarBit", "Oid"},
		Rules: map[string]rule{
			"Inet": sameType,
		},
	},
	"Bit": {
		NotCastable: []string{"Int2", "Int4", "Int8", "Decimal", "Float4", "Float8", "String", "Char", "Bytes", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Bool", "Uuid", "JsonB", "Inet", "VarBit", "Oid"},
		Rules: map[string]rule{
			"Bit": sameType,
		},
	},
	"VarBit": {
		NotCastable: []string{"Int2", "Int4", "Int8", "Decimal", "Float4", "Float8", "String", "Char", "Bytes", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Bool", "Uuid", "JsonB", "Inet", "Bit", "Oid"},
		Rules: map[string]rule{
			"VarBit": sameType,
		},
	},
	"Oid": {
		NotCastable: []string{"Int2", "Int4", "Int8", "Decimal", "Float4", "Float8", "String", "Char", "Bytes", "Timestamp", "Timestamptz", "Date", "Time", "Timetz", "Bool", "Uuid", "JsonB", "Inet", "Bit", "VarBit"},
		Rules: map[string]rule{
			"Oid": sameType,
		},
	},
}

// sqlserverCasts covers every SQL Server native type.
var sqlserverCasts = castTable{
	"Bit": {
		Safe:        []string{"Bit", "TinyInt", "SmallInt", "Int", "BigInt", "Decimal", "Money", "SmallMoney", "Float", "Real", "DateTime", "SmallDateTime", "Char", "NChar", "VarChar", "NVarChar", "Binary", "VarBinary"},
		NotCastable: []string{"Date", "Time", "DateTime2", "DateTimeOffset", "Text", "NText", "Image", "Xml", "UniqueIdentifier"},
	},
	"TinyInt": {
		Safe:        []string{"TinyInt", "SmallInt", "Int", "BigInt", "Money", "SmallMoney", "Float", "Real", "DateTime", "SmallDateTime", "Binary", "VarBinary"},
		Risky:       []string{"Bit"},
		NotCastable: []string{"Date", "Time", "DateTime2", "DateTimeOffset", "Text", "NText", "Image", "Xml", "UniqueIdentifier"},
		Rules: map[string]rule{
			"Decimal":  msDecimalFits(3),
			"Char":     msAtLeast(3),
			"NChar":    msAtLeast(3),
			"VarChar":  msAtLeast(3),
			"NVarChar": msAtLeast(3),
		},
	},
	"SmallInt": {
		Safe:        []string{"SmallInt", "Int", "BigInt", "Money", "SmallMoney", "Float", "Real", "DateTime", "SmallDateTime"},
		Risky:       []string{"Bit", "TinyInt"},
		NotCastable: []string{"Date", "Time", "DateTime2", "DateTimeOffset", "Text", "NText", "Image", "Xml", "UniqueIdentifier"},
		Rules: map[string]rule{
			"Decimal":   msDecimalFits(5),
			"Char":      msAtLeast(6),
			"NChar":     msAtLeast(6),
			"VarChar":   msAtLeast(6),
			"NVarChar":  msAtLeast(6),
			"Binary":    msAtLeast(2),
			"VarBinary": msAtLeast(2),
		},
	},
	"Int": {
		Safe:        []string{"Int", "BigInt", "Money", "Float", "Real"},
		Risky:       []string{"Bit", "TinyInt", "SmallInt", "SmallMoney", "DateTime", "SmallDateTime"},
		NotCastable: []string{"Date", "Time", "DateTime2", "DateTimeOffset", "Text", "NText", "Image", "Xml", "UniqueIdentifier"},
		Rules: map[string]rule{
			"Decimal":   msDecimalFits(10),
			"Char":      msAtLeast(11),
			"NChar":     msAtLeast(11),
			"VarChar":   msAtLeast(11),
			"NVarChar":  msAtLeast(11),
			"Binary":    msAtLeast(4),
			"VarBinary": msAtLeast(4),
		},
	},
	"BigInt": {
		Safe:        []string{"BigInt", "Float", "Real"},
		Risky:       []string{"Bit", "TinyInt", "SmallInt", "Int", "Money", "SmallMoney", "DateTime", "SmallDateTime"},
		NotCastable: []string{"Date", "Time", "DateTime2", "DateTimeOffset", "Text", "NText", "Image", "Xml", "UniqueIdentifier"},
		Rules: map[string]rule{
			"Decimal":   msDecimalFits(19),
			"Char":      msAtLeast(20),
			"NChar":     msAtLeast(20),
			"VarChar":   msAtLeast(20),
			"NVarChar":  msAtLeast(20),
			"Binary":    msAtLeast(8),
			"VarBinary": msAtLeast(8),
		},
	},
	"Decimal": {
		Risky:       []string{"Bit", "TinyInt", "SmallInt", "Int", "BigInt", "Money", "SmallMoney", "Float", "Real", "DateTime", "SmallDateTime", "Binary", "VarBinary"},
		NotCastable: []string{"Date", "Time", "DateTime2", "DateTimeOffset", "Text", "NText", "Image", "Xml", "UniqueIdentifier"},
		Rules: map[string]rule{
			"Decimal":  msDecimalResize,
			"Char":     msDecimalToText,
			"NChar":    msDecimalToText,
			"VarChar":  msDecimalToText,
			"NVarChar": msDecimalToText,
		},
	},
	"Money": {
		Safe:        []string{"Money"},
		Risky:       []string{"Bit", "TinyInt", "SmallInt", "Int", "BigInt", "SmallMoney", "Float", "Real", "DateTime", "SmallDateTime"},
		NotCastable: []string{"Date", "Time", "DateTime2", "DateTimeOffset", "Text", "NText", "Image", "Xml", "UniqueIdentifier"},
		Rules: map[string]rule{
			"Decimal":   msDecimalCovers(19, 4),
			"Char":      msAtLeast(21),
			"NChar":     msAtLeast(21),
			"VarChar":   msAtLeast(21),
			"NVarChar":  msAtLeast(21),
			"Binary":    msAtLeast(8),
			"VarBinary": msAtLeast(8),
		},
	},
	"SmallMoney": {
		Safe:        []string{"Money", "SmallMoney"},
		Risky:       []string{"Bit", "TinyInt", "SmallInt", "Int", "BigInt", "Float", "Real", "DateTime", "SmallDateTime"},
		NotCastable: []string{"Date", "Time", "DateTime2", "DateTimeOffset", "Text", "NText", "Image", "Xml", "UniqueIdentifier"},
		Rules: map[string]rule{
			"Decimal":   msDecimalCovers(10, 4),
			"Char":      msAtLeast(12),
			"NChar":     msAtLeast(12),
			"VarChar":   msAtLeast(12),
			"NVarChar":  msAtLeast(12),
			"Binary":    msAtLeast(4),
			"VarBinary": msAtLeast(4),
		},
	},
	"Float": {
		Risky:       []string{"Bit", "TinyInt", "SmallInt", "Int", "BigInt", "Decimal", "Money", "SmallMoney", "DateTime", "SmallDateTime"},
		NotCastable: []string{"Date", "Time", "DateTime2", "DateTimeOffset", "Text", "NText", "Image", "Xml", "UniqueIdentifier"},
		Rules: map[string]rule{
			"Float":     msFloatResize,
			"Real":      msFloatResize,
			"Char":      msFloatToText,
			"NChar":     msFloatToText,
			"VarChar":   msFloatToText,
			"NVarChar":  msFloatToText,
			"Binary":    msFloatToBinary,
			"VarBinary": msFloatToBinary,
		},
	},
	"Real": {
		Safe:        []string{"Real"},
		Risky:       []string{"Bit", "TinyInt", "SmallInt", "Int", "BigInt", "Decimal", "Money", "SmallMoney", "DateTime", "SmallDateTime"},
		NotCastable: []string{"Date", "Time", "DateTime2", "DateTimeOffset", "Text", "NText", "Image", "Xml", "UniqueIdentifier"},
		Rules: map[string]rule{
			"Float":     msFloatResize,
			"Char":      msAtLeast(47),
			"NChar":     msAtLeast(47),
			"VarChar":   msAtLeast(47),
			"NVarChar":  msAtLeast(47),
			"Binary":    msAtLeast(4),
			"VarBinary": msAtLeast(4),
		},
	},
	"Date": {
		Safe:        []string{"Date", "DateTime", "DateTime2", "DateTimeOffset"},
		Risky:       []string{"SmallDateTime"},
		NotCastable: []string{"Bit", "TinyInt", "SmallInt", "Int", "BigInt", "Decimal", "Money", "SmallMoney", "Float", "Real", "Time", "Text", "NText", "Binary", "VarBinary", "Image", "Xml", "UniqueIdentifier"},
		Rules: map[string]rule{
			"Char":     msAtLeast(10),
			"NChar":    msAtLeast(10),
			"VarChar":  msAtLeast(10),
			"NVarChar": msAtLeast(10),
		},
	},
	"Time": {
		Safe:        []string{"Time", "DateTime2", "DateTimeOffset"},
		Risky:       []string{"DateTime", "SmallDateTime"},
		NotCastable: []string{"Bit", "TinyInt", "SmallInt", "Int", "BigInt", "Decimal", "Money", "SmallMoney", "Float", "Real", "Date", "Text", "NText", "Binary", "VarBinary", "Image", "Xml", "UniqueIdentifier"},
		Rules: map[string]rule{
			"Char":     msAtLeast(8),
			"NChar":    msAtLeast(8),
			"VarChar":  msAtLeast(8),
			"NVarChar": msAtLeast(8),
		},
	},
	"DateTime": {
		Safe:        []string{"DateTime", "DateTime2", "DateTimeOffset"},
		Risky:       []string{"Date", "Time", "SmallDateTime"},
		NotCastable: []string{"Bit", "TinyInt", "SmallInt", "Int", "BigInt", "Decimal", "Money", "SmallMoney", "Float", "Real", "Text", "NText", "Binary", "VarBinary", "Image", "Xml", "UniqueIdentifier"},
		Rules: map[string]rule{
			"Char":     msAtLeast(23),
			"NChar":    msAtLeast(23),
			"VarChar":  msAtLeast(23),
			"NVarChar": msAtLeast(23),
		},
	},
	"DateTime2": {
		Safe:        []string{"DateTime2", "DateTimeOffset"},
		Risky:       []string{"Date", "Time", "DateTime", "SmallDateTime"},
		NotCastable: []string{"Bit", "TinyInt", "SmallInt", "Int", "BigInt", "Decimal", "Money", "SmallMoney", "Float", "Real", "Text", "NText", "Binary", "VarBinary", "Image", "Xml", "UniqueIdentifier"},
		Rules: map[string]rule{
			"Char":     msAtLeast(27),
			"NChar":    msAtLeast(27),
			"VarChar":  msAtLeast(27),
			"NVarChar": msAtLeast(27),
		},
	},
	"DateTimeOffset": {
		Safe:        []string{"DateTimeOffset"},
		Risky:       []string{"Date", "Time", "DateTime", "DateTime2", "SmallDateTime"},
		NotCastable: []string{"Bit", "TinyInt", "SmallInt", "Int", "BigInt", "Decimal", "Money", "SmallMoney", "Float", "Real", "Text", "NText", "Binary", "VarBinary", "Image", "Xml", "UniqueIdentifier"},
		Rules: map[string]rule{
			"Char":     msAtLeast(33),
			"NChar":    msAtLeast(33),
			"VarChar":  msAtLeast(33),
			"NVarChar": msAtLeast(33),
		},
	},
	"SmallDateTime": {
		Safe:        []string{"DateTime", "DateTime2", "DateTimeOffset", "SmallDateTime"},
		Risky:       []string{"Date", "Time"},
		NotCastable: []string{"Bit", "TinyInt", "SmallInt", "Int", "BigInt", "Decimal", "Money", "SmallMoney", "Float", "Real", "Text", "NText", "Binary", "VarBinary", "Image", "Xml", "UniqueIdentifier"},
		Rules: map[string]rule{
			"Char":     msAtLeast(19),
			"NChar":    msAtLeast(19),
			"VarChar":  msAtLeast(19),
			"NVarChar": msAtLeast(19),
		},
	},
	"Char": {
		Safe:        []string{"Text", "NText"},
		Risky:       []string{"Bit", "TinyInt", "SmallInt", "Int", "BigInt", "Decimal", "Money", "SmallMoney", "Float", "Real", "Date", "Time", "DateTime", "DateTime2", "DateTimeOffset", "SmallDateTime", "UniqueIdentifier"},
		NotCastable: []string{"Binary", "VarBinary", "Image", "Xml"},
		Rules: map[string]rule{
			"Char":     msShrink,
			"NChar":    msShrink,
			"VarChar":  msShrink,
			"NVarChar": msShrink,
		},
	},
	"NChar": {
		Safe:        []string{"NText"},
		Risky:       []string{"Bit", "TinyInt", "SmallInt", "Int", "BigInt", "Decimal", "Money", "SmallMoney", "Float", "Real", "Date", "Time", "DateTime", "DateTime2", "DateTimeOffset", "SmallDateTime", "Char", "VarChar", "Text", "UniqueIdentifier"},
		NotCastable: []string{"Binary", "VarBinary", "Image", "Xml"},
		Rules: map[string]rule{
			"NChar":    msShrink,
			"NVarChar": msShrink,
		},
	},
	"VarChar": {
		Safe:        []string{"Text"},
		Risky:       []string{"Bit", "TinyInt", "SmallInt", "Int", "BigInt", "Decimal", "Money", "SmallMoney", "Float", "Real", "Date", "Time", "DateTime", "DateTime2", "DateTimeOffset", "SmallDateTime", "UniqueIdentifier"},
		NotCastable: []string{"Binary", "VarBinary", "Image", "Xml"},
		Rules: map[string]rule{
			"Char":     msShrink,
			"NChar":    msShrink,
			"VarChar":  msShrink,
			"NVarChar": msShrink,
			"NText":    msFromMax(Risky),
		},
	},
	"NVarChar": {
		Safe:        []string{"NText"},
		Risky:       []string{"Bit", "TinyInt", "SmallInt", "Int", "BigInt", "Decimal", "Money", "SmallMoney", "Float", "Real", "Date", "Time", "DateTime", "DateTime2", "DateTimeOffset", "SmallDateTime", "Char", "VarChar", "Text", "UniqueIdentifier"},
		NotCastable: []string{"Binary", "VarBinary", "Image", "Xml"},
		Rules: map[string]rule{
			"NChar":    msShrink,
			"NVarChar": msShrink,
		},
	},
	"Text": {
		Safe:        []string{"Text"},
		Risky:       []string{"Char", "NChar", "NVarChar", "NText"},
		NotCastable: []string{"Bit", "TinyInt", "SmallInt", "Int", "BigInt", "Decimal", "Money", "SmallMoney", "Float", "Real", "Date", "Time", "DateTime", "DateTime2", "DateTimeOffset", "SmallDateTime", "Binary", "VarBinary", "Image", "Xml", "UniqueIdentifier"},
		Rules: map[string]rule{
			"VarChar": msToMax,
		},
	},
	"NText": {
		Safe:        []string{"NText"},
		Risky:       []string{"Char", "NChar", "VarChar", "Text"},
		NotCastable: []string{"Bit", "TinyInt", "SmallInt", "Int", "BigInt", "Decimal", "Money", "SmallMoney", "Float", "Real", "Date", "Time", "DateTime", "DateTime2", "DateTimeOffset", "SmallDateTime", "Binary", "VarBinary", "Image", "Xml", "UniqueIdentifier"},
		Rules: map[string]rule{
			"NVarChar": msToMax,
		},
	},
	"Binary": {
		Safe:        []string{"Image"},
		Risky:       []string{"Bit", "Decimal", "DateTime", "SmallDateTime", "Xml", "UniqueIdentifier"},
		NotCastable: []string{"Float", "Real", "Date", "Time", "DateTime2", "DateTimeOffset", "Text", "NText"},
		Rules: map[string]rule{
			"TinyInt":    msAtMost(1),
			"SmallInt":   msAtMost(2),
			"Int":        msAtMost(4),
			"BigInt":     msAtMost(8),
			"Money":      msAtMost(8),
			"SmallMoney": msAtMost(4),
			"Char":       msShrink,
			"NChar":      msBinaryToUnicode,
			"VarChar":    msShrink,
			"NVarChar":   msBinaryToUnicode,
			"Binary":     msShrink,
			"VarBinary":  msShrink,
		},
	},
	"VarBinary": {
		Safe:        []string{"Image"},
		Risky:       []string{"Bit", "Decimal", "DateTime", "SmallDateTime", "Xml", "UniqueIdentifier"},
		NotCastable: []string{"Float", "Real", "Date", "Time", "DateTime2", "DateTimeOffset", "Text", "NText"},
		Rules: map[string]rule{
			"TinyInt":    msAtMost(1),
			"SmallInt":   msAtMost(2),
			"Int":        msAtMost(4),
			"BigInt":     msAtMost(8),
			"Money":      msAtMost(8),
			"SmallMoney": msAtMost(4),
			"Char":       msShrink,
			"NChar":      msBinaryToUnicode,
			"VarChar":    msShrink,
			"NVarChar":   msBinaryToUnicode,
			"Binary":     msShrink,
			"VarBinary":  msShrink,
		},
	},
	"Image": {
		Safe:        []string{"Image"},
		Risky:       []string{"Binary"},
		NotCastable: []string{"Bit", "TinyInt", "SmallInt", "Int", "BigInt", "Decimal", "Money", "SmallMoney", "Float", "Real", "Date", "Time", "DateTime", "DateTime2", "DateTimeOffset", "SmallDateTime", "Char", "NChar", "VarChar", "NVarChar", "Text", "NText", "Xml", "UniqueIdentifier"},
		Rules: map[string]rule{
			"VarBinary": msToMax,
		},
	},
	"Xml": {
		Safe:        []string{"Xml"},
		Risky:       []string{"Char", "NChar", "VarChar", "Binary", "VarBinary"},
		NotCastable: []string{"Bit", "TinyInt", "SmallInt", "Int", "BigInt", "Decimal", "Money", "SmallMoney", "Float", "Real", "Date", "Time", "DateTime", "DateTime2", "DateTimeOffset", "SmallDateTime", "Text", "NText", "Image", "UniqueIdentifier"},
		Rules: map[string]rule{
			"NVarChar": msToMax,
		},
	},
	"UniqueIdentifier": {
		Safe:        []string{"UniqueIdentifier"},
		NotCastable: []string{"Bit", "TinyInt", "SmallInt", "Int", "BigInt", "Decimal", "Money", "SmallMoney", "Float", "Real", "Date", "Time", "DateTime", "DateTime2", "DateTimeOffset", "SmallDateTime", "Text", "NText", "Image", "Xml"},
		Rules: map[string]rule{
			"Char":      msAtLeast(36),
			"NChar":     msAtLeast(36),
			"VarChar":   msAtLeast(36),
			"NVarChar":  msAtLeast(36),
			"Binary":    msAtLeast(16),
			"VarBinary": msAtLeast(16),
		},
	},
}

// mysqlCasts covers every MySQL and MariaDB native type. Inline enums are
// handled before the table is consulted.
var mysqlCasts = castTable{
	"TinyInt": {
		Safe:        []string{"TinyInt", "SmallInt", "MediumInt", "Int", "BigInt", "Time"},
		Risky:       []string{"UnsignedTinyInt", "UnsignedSmallInt", "UnsignedMediumInt", "UnsignedInt", "UnsignedBigInt", "Float", "Double", "Bit", "Char", "VarChar", "Binary", "VarBinary", "TinyBlob", "Blob", "MediumBlob", "LongBlob", "TinyText", "Text", "MediumText", "LongText", "Year"},
		NotCastable: []string{"Decimal", "Date", "DateTime", "Timestamp", "Json"},
	},
	"SmallInt": {
		Safe:        []string{"SmallInt", "MediumInt", "Int", "BigInt", "Time"},
		Risky:       []string{"TinyInt", "UnsignedTinyInt", "UnsignedSmallInt", "UnsignedMediumInt", "UnsignedInt", "UnsignedBigInt", "Float", "Double", "Bit", "Char", "VarChar", "Binary", "VarBinary", "TinyBlob", "Blob", "MediumBlob", "LongBlob", "TinyText", "Text", "MediumText", "LongText", "Year"},
		NotCastable: []string{"Decimal", "Date", "DateTime", "Timestamp", "Json"},
	},
	"MediumInt": {
		Safe:        []string{"MediumInt", "BigInt", "Char", "VarChar", "Binary", "VarBinary", "TinyBlob", "Blob", "MediumBlob", "LongBlob", "TinyText", "Text", "MediumText", "LongText"},
		Risky:       []string{"TinyInt", "SmallInt", "Int", "UnsignedTinyInt", "UnsignedSmallInt", "UnsignedMediumInt", "UnsignedInt", "UnsignedBigInt", "Decimal", "Float", "Double", "Year"},
		NotCastable: []string{"Date", "Time", "DateTime", "Timestamp", "Json"},
		Rules: map[string]rule{
			"Bit": myBitAtLeast(32, Risky),
		},
	},
	"Int": {
		Safe:        []string{"Int", "BigInt", "Char", "VarChar", "Binary", "VarBinary", "TinyBlob", "Blob", "MediumBlob", "LongBlob", "TinyText", "Text", "MediumText", "LongText"},
		Risky:       []string{"TinyInt", "SmallInt", "MediumInt", "UnsignedTinyInt", "UnsignedSmallInt", "UnsignedMediumInt", "UnsignedInt", "UnsignedBigInt", "Decimal", "Float", "Double", "Year"},
		NotCastable: []string{"Date", "Time", "DateTime", "Timestamp", "Json"},
		Rules: map[string]rule{
			"Bit": myBitAtLeast(32, Risky),
		},
	},
	"BigInt": {
		Safe:        []string{"BigInt", "Float", "Double", "Bit", "Char", "VarChar", "Binary", "VarBinary", "TinyBlob", "Blob", "MediumBlob", "LongBlob", "TinyText", "Text", "MediumText", "LongText", "Time"},
		Risky:       []string{"TinyInt", "SmallInt", "MediumInt", "Int", "UnsignedTinyInt", "UnsignedSmallInt", "UnsignedMediumInt", "UnsignedInt", "UnsignedBigInt", "Year"},
		NotCastable: []string{"Date", "DateTime", "Timestamp", "Json"},
		Rules: map[string]rule{
			"Decimal": myDecimalHolds(20),
		},
	},
	"UnsignedTinyInt": {
		Safe:        []string{"UnsignedTinyInt", "UnsignedSmallInt", "UnsignedMediumInt", "UnsignedInt", "UnsignedBigInt"},
		Risky:       []string{"TinyInt", "SmallInt", "MediumInt", "Int", "BigInt", "Float", "Double", "Bit", "Char", "VarChar", "Binary", "VarBinary", "TinyBlob", "Blob", "MediumBlob", "LongBlob", "TinyText", "Text", "MediumText", "LongText", "Time", "Year"},
		NotCastable: []string{"Decimal", "Date", "DateTime", "Timestamp", "Json"},
	},
	"UnsignedSmallInt": {
		Safe:        []string{"UnsignedSmallInt", "UnsignedMediumInt", "UnsignedInt", "UnsignedBigInt"},
		Risky:       []string{"TinyInt", "SmallInt", "MediumInt", "Int", "BigInt", "UnsignedTinyInt", "Float", "Double", "Bit", "Char", "VarChar", "Binary", "VarBinary", "TinyBlob", "Blob", "MediumBlob", "LongBlob", "TinyText", "Text", "MediumText", "LongText", "Time", "Year"},
		NotCastable: []string{"Decimal", "Date", "DateTime", "Timestamp", "Json"},
	},
	"UnsignedMediumInt": {
		Safe:        []string{"UnsignedMediumInt", "UnsignedInt", "UnsignedBigInt"},
		Risky:       []string{"TinyInt", "SmallInt", "MediumInt", "Int", "BigInt", "UnsignedTinyInt", "UnsignedSmallInt", "Float", "Double", "Bit", "Char", "VarChar", "Binary", "VarBinary", "TinyBlob", "Blob", "MediumBlob", "LongBlob", "TinyText", "Text", "MediumText", "LongText", "Time", "Year"},
		NotCastable: []string{"Decimal", "Date", "DateTime", "Timestamp", "Json"},
	},
	"UnsignedInt": {
		Safe:        []string{"UnsignedInt", "UnsignedBigInt"},
		Risky:       []string{"TinyInt", "SmallInt", "MediumInt", "Int", "BigInt", "UnsignedTinyInt", "UnsignedSmallInt", "UnsignedMediumInt", "Float", "Double", "Bit", "Char", "VarChar", "Binary", "VarBinary", "TinyBlob", "Blob", "MediumBlob", "LongBlob", "TinyText", "Text", "MediumText", "LongText", "Time", "Year"},
		NotCastable: []string{"Decimal", "Date", "DateTime", "Timestamp", "Json"},
	},
	"UnsignedBigInt": {
		Safe:        []string{"UnsignedBigInt"},
		Risky:       []string{"TinyInt", "SmallInt", "MediumInt", "Int", "BigInt", "UnsignedTinyInt", "UnsignedSmallInt", "UnsignedMediumInt", "UnsignedInt", "Float", "Double", "Bit", "Char", "VarChar", "Binary", "VarBinary", "TinyBlob", "Blob", "MediumBlob", "LongBlob", "TinyText", "Text", "MediumText", "LongText", "Time", "Year"},
		NotCastable: []string{"Decimal", "Date", "DateTime", "Timestamp", "Json"},
	},
	"Decimal": {
		Safe:        []string{"Char", "VarChar", "Binary", "VarBinary", "TinyBlob", "Blob", "MediumBlob", "LongBlob", "TinyText", "Text", "MediumText", "LongText"},
		Risky:       []string{"TinyInt", "SmallInt", "MediumInt", "Int", "BigInt", "UnsignedTinyInt", "UnsignedSmallInt", "UnsignedMediumInt", "UnsignedInt", "UnsignedBigInt", "Float", "Double", "Bit", "Time", "Year", "Json"},
		NotCastable: []string{"Date", "DateTime", "Timestamp"},
		Rules: map[string]rule{
			"Decimal": myDecimalResize,
		},
	},
	"Float": {
		Safe:        []string{"TinyInt", "SmallInt", "MediumInt", "Int", "BigInt", "UnsignedTinyInt", "UnsignedSmallInt", "UnsignedMediumInt", "UnsignedInt", "UnsignedBigInt", "Decimal", "Float", "Double", "TinyBlob", "Blob", "MediumBlob", "LongBlob", "TinyText", "Text", "MediumText", "LongText", "Time", "Year", "Json"},
		NotCastable: []string{"Date", "DateTime", "Timestamp"},
		Rules: map[string]rule{
			"Bit":       myBitAtLeast(32, NotCastable),
			"Char":      myFloatToString,
			"VarChar":   myFloatToString,
			"Binary":    myFloatToString,
			"VarBinary": myFloatToString,
		},
	},
	"Double": {
		Safe:        []string{"TinyInt", "SmallInt", "MediumInt", "Int", "BigInt", "UnsignedTinyInt", "UnsignedSmallInt", "UnsignedMediumInt", "UnsignedInt", "UnsignedBigInt", "Decimal", "Float", "Double", "TinyBlob", "Blob", "MediumBlob", "LongBlob", "TinyText", "Text", "MediumText", "LongText", "Time", "Year", "Json"},
		NotCastable: []string{"Date", "DateTime", "Timestamp"},
		Rules: map[string]rule{
			"Bit":       myBitAtLeast(64, NotCastable),
			"Char":      myFloatToString,
			"VarChar":   myFloatToString,
			"Binary":    myFloatToString,
			"VarBinary": myFloatToString,
		},
	},
	"Bit": {
		Safe:        []string{"TinyInt", "SmallInt", "MediumInt", "Int", "UnsignedTinyInt", "UnsignedSmallInt", "UnsignedMediumInt", "UnsignedInt", "Char", "VarChar", "VarBinary", "TinyBlob", "Blob", "MediumBlob", "LongBlob", "TinyText", "Text", "MediumText", "LongText", "Year"},
		Risky:       []string{"Decimal", "Float", "Double"},
		NotCastable: []string{"Date", "Time", "DateTime", "Timestamp", "Json"},
		Rules: map[string]rule{
			"BigInt":         myBitAtLeast(64, Risky),
			"UnsignedBigInt": myBitAtLeast(64, Risky),
			"Bit":            myWiden,
			"Binary":         myBitToBinary,
		},
	},
	"Char": {
		Safe:  []string{"TinyBlob", "Blob", "MediumBlob", "LongBlob", "TinyText", "Text", "MediumText", "LongText"},
		Risky: []string{"TinyInt", "SmallInt", "MediumInt", "Int", "BigInt", "UnsignedTinyInt", "UnsignedSmallInt", "UnsignedMediumInt", "UnsignedInt", "UnsignedBigInt", "Decimal", "Float", "Double", "Bit", "Date", "Time", "DateTime", "Timestamp", "Year", "Json"},
		Rules: map[string]rule{
			"Char":      myWiden,
			"VarChar":   myWiden,
			"Binary":    myWiden,
			"VarBinary": myWiden,
		},
	},
	"VarChar": {
		Safe:  []string{"TinyBlob", "Blob", "MediumBlob", "LongBlob", "TinyText", "Text", "MediumText", "LongText"},
		Risky: []string{"TinyInt", "SmallInt", "MediumInt", "Int", "BigInt", "UnsignedTinyInt", "UnsignedSmallInt", "UnsignedMediumInt", "UnsignedInt", "UnsignedBigInt", "Decimal", "Float", "Double", "Bit", "Date", "Time", "DateTime", "Timestamp", "Year", "Json"},
		Rules: map[string]rule{
			"Char":      myWiden,
			"VarChar":   myWiden,
			"Binary":    myWiden,
			"VarBinary": myWiden,
		},
	},
	"Binary": {
		Safe:        []string{"MediumInt", "Decimal", "Float", "Double", "Char", "VarChar", "VarBinary", "TinyBlob", "Blob", "MediumBlob", "LongBlob", "TinyText", "Text", "MediumText", "LongText"},
		Risky:       []string{"TinyInt", "SmallInt", "Int", "BigInt", "UnsignedTinyInt", "UnsignedSmallInt", "UnsignedMediumInt", "UnsignedInt", "UnsignedBigInt", "Time", "Year"},
		NotCastable: []string{"Date", "DateTime", "Timestamp", "Json"},
		Rules: map[string]rule{
			"Bit":    myBinaryToBit,
			"Binary": myWiden,
		},
	},
	"VarBinary": {
		Safe:        []string{"Blob", "MediumBlob", "LongBlob"},
		Risky:       []string{"Bit", "Char", "VarChar", "TinyBlob", "TinyText", "Text", "MediumText", "LongText"},
		NotCastable: []string{"TinyInt", "SmallInt", "MediumInt", "Int", "BigInt", "UnsignedTinyInt", "UnsignedSmallInt", "UnsignedMediumInt", "UnsignedInt", "UnsignedBigInt", "Decimal", "Float", "Double", "Date", "Time", "DateTime", "Timestamp", "Year", "Json"},
		Rules: map[string]rule{
			"Binary":    myWiden,
			"VarBinary": myWiden,
		},
	},
	"TinyBlob": {
		Safe:        []string{"TinyBlob", "Blob", "MediumBlob", "LongBlob"},
		Risky:       []string{"Bit", "Char", "VarChar", "Binary", "VarBinary", "TinyText", "Text", "MediumText", "LongText"},
		NotCastable: []string{"TinyInt", "SmallInt", "MediumInt", "Int", "BigInt", "UnsignedTinyInt", "UnsignedSmallInt", "UnsignedMediumInt", "UnsignedInt", "UnsignedBigInt", "Decimal", "Float", "Double", "Date", "Time", "DateTime", "Timestamp", "Year", "Json"},
	},
	"Blob": {
		Safe:        []string{"TinyBlob", "Blob", "MediumBlob", "LongBlob"},
		Risky:       []string{"Bit", "Char", "VarChar", "Binary", "VarBinary", "TinyText", "Text", "MediumText", "LongText"},
		NotCastable: []string{"TinyInt", "SmallInt", "MediumInt", "Int", "BigInt", "UnsignedTinyInt", "UnsignedSmallInt", "UnsignedMediumInt", "UnsignedInt", "UnsignedBigInt", "Decimal", "Float", "Double", "Date", "Time", "DateTime", "Timestamp", "Year", "Json"},
	},
	"MediumBlob": {
		Safe:        []string{"TinyBlob", "Blob", "MediumBlob", "LongBlob"},
		Risky:       []string{"Bit", "Char", "VarChar", "Binary", "VarBinary", "TinyText", "Text", "MediumText", "LongText"},
		NotCastable: []string{"TinyInt", "SmallInt", "MediumInt", "Int", "BigInt", "UnsignedTinyInt", "UnsignedSmallInt", "UnsignedMediumInt", "UnsignedInt", "UnsignedBigInt", "Decimal", "Float", "Double", "Date", "Time", "DateTime", "Timestamp", "Year", "Json"},
	},
	"LongBlob": {
		Safe:        []string{"TinyBlob", "Blob", "MediumBlob", "LongBlob"},
		Risky:       []string{"Bit", "Char", "VarChar", "Binary", "VarBinary", "TinyText", "Text", "MediumText", "LongText"},
		NotCastable: []string{"TinyInt", "SmallInt", "MediumInt", "Int", "BigInt", "UnsignedTinyInt", "UnsignedSmallInt", "UnsignedMediumInt", "UnsignedInt", "UnsignedBigInt", "Decimal", "Float", "Double", "Date", "Time", "DateTime", "Timestamp", "Year", "Json"},
	},
	"TinyText": {
		Safe:  []string{"Bit", "Char", "VarChar", "Binary", "VarBinary", "Blob", "MediumBlob", "LongBlob", "TinyText", "Text", "MediumText", "LongText"},
		Risky: []string{"TinyInt", "SmallInt", "MediumInt", "Int", "BigInt", "UnsignedTinyInt", "UnsignedSmallInt", "UnsignedMediumInt", "UnsignedInt", "UnsignedBigInt", "Decimal", "Float", "Double", "TinyBlob", "Date", "Time", "DateTime", "Timestamp", "Year", "Json"},
	},
	"Text": {
		Safe:  []string{"Bit", "Char", "VarChar", "Binary", "VarBinary", "Blob", "MediumBlob", "LongBlob", "Text", "MediumText", "LongText"},
		Risky: []string{"TinyInt", "SmallInt", "MediumInt", "Int", "BigInt", "UnsignedTinyInt", "UnsignedSmallInt", "UnsignedMediumInt", "UnsignedInt", "UnsignedBigInt", "Decimal", "Float", "Double", "TinyBlob", "TinyText", "Date", "Time", "DateTime", "Timestamp", "Year", "Json"},
	},
	"MediumText": {
		Safe:  []string{"Bit", "Char", "VarChar", "Binary", "VarBinary", "Blob", "MediumBlob", "LongBlob", "Text", "MediumText", "LongText"},
		Risky: []string{"TinyInt", "SmallInt", "MediumInt", "Int", "BigInt", "UnsignedTinyInt", "UnsignedSmallInt", "UnsignedMediumInt", "UnsignedInt", "UnsignedBigInt", "Decimal", "Float", "Double", "TinyBlob", "TinyText", "Date", "Time", "DateTime", "Timestamp", "Year", "Json"},
	},
	"LongText": {
		Safe:  []string{"Bit", "Char", "VarChar", "Binary", "VarBinary", "Blob", "MediumBlob", "LongBlob", "Text", "MediumText", "LongText"},
		Risky: []string{"TinyInt", "SmallInt", "MediumInt", "Int", "BigInt", "UnsignedTinyInt", "UnsignedSmallInt", "UnsignedMediumInt", "UnsignedInt", "UnsignedBigInt", "Decimal", "Float", "Double", "TinyBlob", "TinyText", "Date", "Time", "DateTime", "Timestamp", "Year", "Json"},
	},
	"Date": {
		Safe:        []string{"Int", "BigInt", "UnsignedInt", "UnsignedBigInt", "Decimal", "Float", "Double", "Bit", "Char", "VarChar", "Binary", "VarBinary", "TinyBlob", "Blob", "MediumBlob", "LongBlob", "TinyText", "Text", "MediumText", "LongText", "Date", "DateTime"},
		NotCastable: []string{"TinyInt", "SmallInt", "MediumInt", "UnsignedTinyInt", "UnsignedSmallInt", "UnsignedMediumInt", "Time", "Timestamp", "Year", "Json"},
	},
	"Time": {
		Safe:        []string{"TinyInt", "SmallInt", "MediumInt", "Int", "BigInt", "UnsignedTinyInt", "UnsignedSmallInt", "UnsignedMediumInt", "UnsignedInt", "UnsignedBigInt", "Decimal", "Float", "Double", "Bit", "Char", "VarChar", "Binary", "VarBinary", "TinyBlob", "Blob", "MediumBlob", "LongBlob", "TinyText", "Text", "MediumText", "LongText", "Time"},
		Risky:       []string{"Date", "DateTime", "Timestamp"},
		NotCastable: []string{"Year", "Json"},
	},
	"DateTime": {
		Safe:        []string{"BigInt", "UnsignedBigInt", "Char", "VarChar", "Binary", "VarBinary", "TinyBlob", "Blob", "MediumBlob", "LongBlob", "TinyText", "Text", "MediumText", "LongText", "Date", "Time", "Timestamp"},
		NotCastable: []string{"TinyInt", "SmallInt", "MediumInt", "Int", "UnsignedTinyInt", "UnsignedSmallInt", "UnsignedMediumInt", "UnsignedInt", "Decimal", "Float", "Double", "Year", "Json"},
		Rules: map[string]rule{
			"Bit":      myBitAtLeast(64, NotCastable),
			"DateTime": myPrecisionResize,
		},
	},
	"Timestamp": {
		Safe:        []string{"BigInt", "UnsignedBigInt", "Char", "VarChar", "Binary", "VarBinary", "TinyBlob", "Blob", "MediumBlob", "LongBlob", "TinyText", "Text", "MediumText", "LongText", "Date", "Time", "DateTime"},
		NotCastable: []string{"TinyInt", "SmallInt", "MediumInt", "Int", "UnsignedTinyInt", "UnsignedSmallInt", "UnsignedMediumInt", "UnsignedInt", "Decimal", "Float", "Double", "Year", "Json"},
		Rules: map[string]rule{
			"Bit":       myBitAtLeast(64, NotCastable),
			"Timestamp": myPrecisionResize,
		},
	},
	"Year": {
		Safe:        []string{"SmallInt", "MediumInt", "Int", "BigInt", "UnsignedSmallInt", "UnsignedMediumInt", "UnsignedInt", "UnsignedBigInt", "Float", "Double", "Bit", "Char", "VarChar", "Binary", "VarBinary", "TinyBlob", "Blob", "MediumBlob", "LongBlob", "TinyText", "Text", "MediumText", "LongText", "Year"},
		Risky:       []string{"Decimal", "Json"},
		NotCastable: []string{"TinyInt", "UnsignedTinyInt", "Date", "Time", "DateTime", "Timestamp"},
	},
	"Json": {
		Safe:        []string{"Char", "VarChar", "Binary", "VarBinary", "TinyBlob", "Blob", "MediumBlob", "LongBlob", "TinyText", "Text", "MediumText", "LongText", "Json"},
		NotCastable: []string{"TinyInt", "SmallInt", "MediumInt", "Int", "BigInt", "UnsignedTinyInt", "UnsignedSmallInt", "UnsignedMediumInt", "UnsignedInt", "UnsignedBigInt", "Decimal", "Float", "Double", "Bit", "Date", "Time", "DateTime", "Timestamp", "Year"},
	},
}

// familyCasts is used when a side has no native type known to the dialect,
// and for SQLite where type affinity is all there is.
var familyCasts = castTable{
	"Unsupported": {
		Safe:  []string{"Unsupported", "String"},
		Risky: []string{"Int", "BigInt", "Float", "Decimal", "Boolean", "DateTime", "Binary", "Json", "Uuid", "Enum"},
	},
	"Int": {
		Safe:  []string{"Int", "BigInt", "Float", "Decimal", "String"},
		Risky: []string{"Unsupported", "Boolean", "DateTime", "Binary", "Json", "Uuid", "Enum"},
	},
	"BigInt": {
		Safe:  []string{"BigInt", "Decimal", "String"},
		Risky: []string{"Unsupported", "Int", "Float", "Boolean", "DateTime", "Binary", "Json", "Uuid", "Enum"},
	},
	"Float": {
		Safe:  []string{"Float", "String"},
		Risky: []string{"Unsupported", "Int", "BigInt", "Decimal", "Boolean", "DateTime", "Binary", "Json", "Uuid", "Enum"},
	},
	"Decimal": {
		Safe:  []string{"Decimal", "String"},
		Risky: []string{"Unsupported", "Int", "BigInt", "Float", "Boolean", "DateTime", "Binary", "Json", "Uuid", "Enum"},
	},
	"Boolean": {
		Safe:  []string{"Int", "BigInt", "Boolean", "String"},
		Risky: []string{"Unsupported", "Float", "Decimal", "DateTime", "Binary", "Json", "Uuid", "Enum"},
	},
	"String": {
		Safe:        []string{"String"},
		Risky:       []string{"Unsupported", "Boolean", "DateTime", "Binary", "Json", "Uuid", "Enum"},
		NotCastable: []string{"Int", "BigInt", "Float", "Decimal"},
	},
	"DateTime": {
		Safe:        []string{"String", "DateTime"},
		Risky:       []string{"Unsupported", "Int", "BigInt", "Decimal", "Boolean", "Binary", "Json", "Uuid", "Enum"},
		NotCastable: []string{"Float"},
	},
	"Binary": {
		Safe:  []string{"String", "Binary"},
		Risky: []string{"Unsupported", "Int", "BigInt", "Float", "Decimal", "Boolean", "DateTime", "Json", "Uuid", "Enum"},
	},
	"Json": {
		Safe:        []string{"String", "Json"},
		Risky:       []string{"Unsupported", "DateTime", "Binary", "Uuid", "Enum"},
		NotCastable: []string{"Int", "BigInt", "Float", "Decimal", "Boolean"},
	},
	"Uuid": {
		Safe:  []string{"String", "Uuid"},
		Risky: []string{"Unsupported", "Int", "BigInt", "Float", "Decimal", "Boolean", "DateTime", "Binary", "Json", "Enum"},
	},
	"Enum": {
		Safe:  []string{"String", "Enum"},
		Risky: []string{"Unsupported", "Int", "BigInt", "Float", "Decimal", "Boolean", "DateTime", "Binary", "Json", "Uuid"},
	},
}
