package render

import (
	"fmt"
	"strings"

	"github.com/tordrt/schemaplan/internal/dialect"
	"github.com/tordrt/schemaplan/internal/schema"
)

// familyTypes spell a family for columns that carry no native type.
var familyTypes = map[dialect.Dialect]map[schema.Family]string{
	dialect.Postgres: {
		schema.FamilyInt:      "INTEGER",
		schema.FamilyBigInt:   "BIGINT",
		schema.FamilyFloat:    "DOUBLE PRECISION",
		schema.FamilyDecimal:  "DECIMAL(65,30)",
		schema.FamilyBoolean:  "BOOLEAN",
		schema.FamilyString:   "TEXT",
		schema.FamilyDateTime: "TIMESTAMP(3)",
		schema.FamilyBinary:   "BYTEA",
		schema.FamilyJSON:     "JSONB",
		schema.FamilyUUID:     "UUID",
	},
	dialect.CockroachDB: {
		schema.FamilyInt:      "INT4",
		schema.FamilyBigInt:   "INT8",
		schema.FamilyFloat:    "FLOAT8",
		schema.FamilyDecimal:  "DECIMAL(65,30)",
		schema.FamilyBoolean:  "BOOL",
		schema.FamilyString:   "STRING",
		schema.FamilyDateTime: "TIMESTAMP(3)",
		schema.FamilyBinary:   "BYTES",
		schema.FamilyJSON:     "JSONB",
		schema.FamilyUUID:     "UUID",
	},
	dialect.MySQL: {
		schema.FamilyInt:      "INTEGER",
		schema.FamilyBigInt:   "BIGINT",
		schema.FamilyFloat:    "DOUBLE",
		schema.FamilyDecimal:  "DECIMAL(65,30)",
		schema.FamilyBoolean:  "BOOLEAN",
		schema.FamilyString:   "VARCHAR(191)",
		schema.FamilyDateTime: "DATETIME(3)",
		schema.FamilyBinary:   "LONGBLOB",
		schema.FamilyJSON:     "JSON",
		schema.FamilyUUID:     "CHAR(36)",
	},
	dialect.SQLServer: {
		schema.FamilyInt:      "INT",
		schema.FamilyBigInt:   "BIGINT",
		schema.FamilyFloat:    "FLOAT",
		schema.FamilyDecimal:  "DECIMAL(32,16)",
		schema.FamilyBoolean:  "BIT",
		schema.FamilyString:   "NVARCHAR(1000)",
		schema.FamilyDateTime: "DATETIME2",
		schema.FamilyBinary:   "VARBINARY(MAX)",
		schema.FamilyJSON:     "NVARCHAR(1000)",
		schema.FamilyUUID:     "NVARCHAR(1000)",
	},
	dialect.SQLite: {
		schema.FamilyInt:      "INTEGER",
		schema.FamilyBigInt:   "BIGINT",
		schema.FamilyFloat:    "REAL",
		schema.FamilyDecimal:  "DECIMAL",
		schema.FamilyBoolean:  "BOOLEAN",
		schema.FamilyString:   "TEXT",
		schema.FamilyDateTime: "DATETIME",
		schema.FamilyBinary:   "BLOB",
		schema.FamilyJSON:     "JSONB",
		schema.FamilyUUID:     "TEXT",
	},
}

func init() {
	familyTypes[dialect.MariaDB] = familyTypes[dialect.MySQL]
}

// columnType spells the type of c, without nullability.
func (r *renderer) columnType(c schema.ColumnWalker) string {
	var t string
	if e, ok := c.Enum(); ok {
		t = r.d.QuoteTable(e.Namespace(), e.Name())
	} else if n := c.Native(); !n.IsZero() {
		t = r.nativeType(n, c.Family())
	} else if fd := c.FullDataType(); fd != "" {
		t = strings.ToUpper(fd)
	} else {
		t = familyTypes[r.d][c.Family()]
	}
	if c.IsList() && !strings.HasSuffix(t, "[]") {
		t += "[]"
	}
	return t
}

func (r *renderer) nativeType(n schema.NativeType, family schema.Family) string {
	name := n.Name
	var suffix string
	switch {
	case r.d.IsMySQLFamily() && strings.EqualFold(name, "Enum"):
		return "ENUM(" + r.enumValues(n.Args) + ")"
	case r.d.IsMySQLFamily() && strings.EqualFold(name, "TinyInt") && family == schema.FamilyBoolean:
		return "TINYINT(1)"
	case r.d.IsMySQLFamily() && strings.HasPrefix(name, "Unsigned"):
		name, suffix = strings.TrimPrefix(name, "Unsigned"), " UNSIGNED"
	case name == "DoublePrecision":
		name = "DOUBLE PRECISION"
	}

	t := strings.ToUpper(name)
	if len(n.Args) > 0 {
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = strings.TrimSpace(a)
			if strings.EqualFold(args[i], "max") {
				args[i] = "MAX"
			}
		}
		t += "(" + strings.Join(args, ",") + ")"
	}
	return t + suffix
}

// serialType is the Postgres shorthand for an auto-increment integer column.
func serialType(c schema.ColumnWalker) string {
	switch {
	case strings.EqualFold(c.Native().Name, "SmallInt"):
		return "SMALLSERIAL"
	case c.Family() == schema.FamilyBigInt:
		return "BIGSERIAL"
	default:
		return "SERIAL"
	}
}

// columnDefinition renders the name, type, nullability, default and
// auto-increment clause of c. inlinePK marks the SQLite rowid alias column.
func (r *renderer) columnDefinition(c schema.ColumnWalker, inlinePK bool) string {
	typ := r.columnType(c)
	def, hasDefault := r.defaultExpr(c)
	auto := c.AutoIncrement()

	var identity string
	switch {
	case !auto:
	case r.d == dialect.Postgres:
		typ, hasDefault = serialType(c), false
	case r.d == dialect.CockroachDB && !hasDefault:
		identity = "GENERATED BY DEFAULT AS IDENTITY"
	case r.d.IsMySQLFamily():
		identity = "AUTO_INCREMENT"
	case r.d == dialect.SQLServer:
		identity = "IDENTITY(1,1)"
	case r.d == dialect.SQLite && inlinePK:
		typ = "INTEGER"
	}

	parts := []string{r.q(c.Name()), typ}
	if c.IsRequired() {
		parts = append(parts, "NOT NULL")
	}
	if inlinePK {
		parts = append(parts, "PRIMARY KEY")
		if auto {
			parts = append(parts, "AUTOINCREMENT")
		}
	}
	if hasDefault {
		if r.d == dialect.SQLServer {
			parts = append(parts, "CONSTRAINT", r.q(defaultConstraintName(c)))
		}
		parts = append(parts, "DEFAULT", def)
	}
	if identity != "" {
		parts = append(parts, identity)
	}
	return strings.Join(parts, " ")
}

// defaultExpr renders the default of c. ok is false when there is none.
func (r *renderer) defaultExpr(c schema.ColumnWalker) (string, bool) {
	def := c.Default()
	if def == nil {
		return "", false
	}
	switch def.Kind {
	case schema.DefaultNow:
		if r.d.IsMySQLFamily() {
			if p, ok := c.Native().Arg(0); ok && p > 0 {
				return fmt.Sprintf("CURRENT_TIMESTAMP(%d)", p), true
			}
		}
		return "CURRENT_TIMESTAMP", true
	case schema.DefaultSequence:
		seq := r.d.QuoteTable(c.Table().Namespace(), def.Sequence)
		switch {
		case r.d.IsPostgresFamily():
			return fmt.Sprintf("nextval(%s::regclass)", r.d.QuoteString(seq)), true
		case r.d == dialect.SQLServer:
			return "NEXT VALUE FOR " + seq, true
		}
		return "", false
	case schema.DefaultUniqueRowID:
		return "unique_rowid()", true
	case schema.DefaultDBGenerated:
		if r.d.IsMySQLFamily() || r.d == dialect.SQLite {
			return "(" + def.Expr + ")", true
		}
		return def.Expr, true
	default:
		return def.Expr, def.Expr != ""
	}
}

// defaultConstraintName names a SQL Server default constraint.
func defaultConstraintName(c schema.ColumnWalker) string {
	if def := c.Default(); def != nil && def.ConstraintName != "" {
		return def.ConstraintName
	}
	return c.Table().Name() + "_" + c.Name() + "_df"
}

func (r *renderer) alterTable(c schema.ColumnWalker, format string, args ...any) string {
	return "ALTER TABLE " + r.table(c.Table()) + " " + fmt.Sprintf(format, args...)
}

func (r *renderer) addColumn(c schema.ColumnWalker) []string {
	if r.d == dialect.SQLServer {
		return []string{r.alterTable(c, "ADD %s", r.columnDefinition(c, false))}
	}
	return []string{r.alterTable(c, "ADD COLUMN %s", r.columnDefinition(c, false))}
}

func (r *renderer) dropColumn(c schema.ColumnWalker) []string {
	var stmts []string
	if r.d == dialect.SQLServer && c.Default() != nil {
		stmts = append(stmts, r.alterTable(c, "DROP CONSTRAINT %s", r.q(defaultConstraintName(c))))
	}
	return append(stmts, r.alterTable(c, "DROP COLUMN %s", r.q(c.Name())))
}

func (r *renderer) renameColumn(prev, next schema.ColumnWalker) []string {
	if r.d == dialect.SQLServer {
		t := next.Table()
		path := t.Name() + "." + prev.Name()
		if t.Namespace() != "" {
			path = t.Namespace() + "." + path
		}
		return []string{fmt.Sprintf("EXEC sp_rename %s, %s, 'COLUMN'", r.d.QuoteString(path), r.d.QuoteString(next.Name()))}
	}
	return []string{r.alterTable(next, "RENAME COLUMN %s TO %s", r.q(prev.Name()), r.q(next.Name()))}
}

// mysqlModify restates the whole column, which is how MySQL changes any part of it.
func (r *renderer) mysqlModify(next schema.ColumnWalker) []string {
	return []string{r.alterTable(next, "MODIFY %s", r.columnDefinition(next, false))}
}

// sqlserverAlter restates type and nullability. The default constraint has to
// go first and comes back afterwards.
func (r *renderer) sqlserverAlter(prev, next schema.ColumnWalker) []string {
	var stmts []string
	if prev.Default() != nil {
		stmts = append(stmts, r.alterTable(prev, "DROP CONSTRAINT %s", r.q(defaultConstraintName(prev))))
	}
	null := "NULL"
	if next.IsRequired() {
		null = "NOT NULL"
	}
	stmts = append(stmts, r.alterTable(next, "ALTER COLUMN %s %s %s", r.q(next.Name()), r.columnType(next), null))
	if expr, ok := r.defaultExpr(next); ok {
		stmts = append(stmts, r.alterTable(next, "ADD CONSTRAINT %s DEFAULT %s FOR %s",
			r.q(defaultConstraintName(next)), expr, r.q(next.Name())))
	}
	return stmts
}

func (r *renderer) alterColumnType(prev, next schema.ColumnWalker) []string {
	switch {
	case r.d.IsMySQLFamily():
		return r.mysqlModify(next)
	case r.d == dialect.SQLServer:
		return r.sqlserverAlter(prev, next)
	}
	typ := r.columnType(next)
	return []string{r.alterTable(next, "ALTER COLUMN %s SET DATA TYPE %s USING (%s::%s)",
		r.q(next.Name()), typ, r.q(next.Name()), typ)}
}

func (r *renderer) alterColumnNullability(prev, next schema.ColumnWalker) []string {
	switch {
	case r.d.IsMySQLFamily():
		return r.mysqlModify(next)
	case r.d == dialect.SQLServer:
		return r.sqlserverAlter(prev, next)
	case next.IsRequired():
		return []string{r.alterTable(next, "ALTER COLUMN %s SET NOT NULL", r.q(next.Name()))}
	default:
		return []string{r.alterTable(next, "ALTER COLUMN %s DROP NOT NULL", r.q(next.Name()))}
	}
}

func (r *renderer) alterColumnDefault(prev, next schema.ColumnWalker) []string {
	col := r.q(next.Name())
	switch {
	case r.d.IsMySQLFamily():
		return r.mysqlModify(next)
	case r.d == dialect.SQLServer:
		var stmts []string
		if prev.Default() != nil {
			stmts = append(stmts, r.alterTable(prev, "DROP CONSTRAINT %s", r.q(defaultConstraintName(prev))))
		}
		if expr, ok := r.defaultExpr(next); ok {
			stmts = append(stmts, r.alterTable(next, "ADD CONSTRAINT %s DEFAULT %s FOR %s",
				r.q(defaultConstraintName(next)), expr, col))
		}
		return stmts
	case r.d == dialect.Postgres && next.AutoIncrement() && !prev.AutoIncrement():
		seq := next.Table().Name() + "_" + next.Name() + "_seq"
		qualified := r.d.QuoteTable(next.Table().Namespace(), seq)
		return []string{
			"CREATE SEQUENCE " + qualified,
			r.alterTable(next, "ALTER COLUMN %s SET DEFAULT nextval(%s::regclass)", col, r.d.QuoteString(qualified)),
			fmt.Sprintf("ALTER SEQUENCE %s OWNED BY %s.%s", qualified, r.table(next.Table()), col),
		}
	}
	if prev.AutoIncrement() && !next.AutoIncrement() && r.d == dialect.CockroachDB && prev.Default() == nil {
		return []string{r.alterTable(next, "ALTER COLUMN %s DROP IDENTITY", col)}
	}
	if expr, ok := r.defaultExpr(next); ok {
		return []string{r.alterTable(next, "ALTER COLUMN %s SET DEFAULT %s", col, expr)}
	}
	return []string{r.alterTable(next, "ALTER COLUMN %s DROP DEFAULT", col)}
}
