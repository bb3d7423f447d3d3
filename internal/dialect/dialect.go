// Package dialect names the supported database flavours and what each one can do.
package dialect

import (
	"fmt"
	"strings"
)

// Dialect identifies a database flavour. It is selected once from configuration
// (usually the URL scheme) and never inferred from a live connection.
type Dialect string

const (
	Postgres    Dialect = "postgres"
	CockroachDB Dialect = "cockroachdb"
	MySQL       Dialect = "mysql"
	MariaDB     Dialect = "mariadb"
	SQLServer   Dialect = "sqlserver"
	SQLite      Dialect = "sqlite"
)

// All lists every supported dialect in a stable order.
var All = []Dialect{Postgres, CockroachDB, MySQL, MariaDB, SQLServer, SQLite}

// Capabilities describes which schema features a dialect has. Describers for a
// dialect lacking a capability never populate the matching entity kind.
type Capabilities struct {
	Namespaces       bool
	Enums            bool
	Sequences        bool
	OperatorClasses  bool
	PartialIndexes   bool
	CheckConstraints bool

	// TransactionalDDL means a whole plan can run inside one transaction.
	TransactionalDDL bool
	// Lists means columns may be array-valued.
	Lists bool
	// InlineEnums means enum variants live in the column type (MySQL).
	InlineEnums bool
	// RecreateIndexesOnTypeChange means indexes covering a column must be
	// dropped before its type can change.
	RecreateIndexesOnTypeChange bool
	// AutoIncrementNeedsKey means an auto-increment column must lead some key.
	AutoIncrementNeedsKey bool
	// MutableIdentity means the auto-increment property can be toggled in place.
	MutableIdentity bool
}

var capabilities = map[Dialect]Capabilities{
	Postgres: {
		Namespaces:       true,
		Enums:            true,
		Sequences:        true,
		OperatorClasses:  true,
		PartialIndexes:   true,
		CheckConstraints: true,
		TransactionalDDL: true,
		Lists:            true,
		MutableIdentity:  true,
	},
	CockroachDB: {
		Namespaces:       true,
		Enums:            true,
		Sequences:        true,
		OperatorClasses:  true,
		PartialIndexes:   true,
		CheckConstraints: true,
		Lists:            true,
		MutableIdentity:  true,
	},
	MySQL: {
		CheckConstraints:      true,
		InlineEnums:           true,
		AutoIncrementNeedsKey: true,
		MutableIdentity:       true,
	},
	MariaDB: {
		CheckConstraints:      true,
		InlineEnums:           true,
		AutoIncrementNeedsKey: true,
		MutableIdentity:       true,
	},
	SQLServer: {
		Namespaces:                  true,
		Sequences:                   true,
		PartialIndexes:              true,
		CheckConstraints:            true,
		TransactionalDDL:            true,
		RecreateIndexesOnTypeChange: true,
	},
	SQLite: {
		PartialIndexes:   true,
		CheckConstraints: true,
		TransactionalDDL: true,
		MutableIdentity:  true,
	},
}

// Capabilities returns the capability set of d.
func (d Dialect) Capabilities() Capabilities {
	return capabilities[d]
}

// Valid reports whether d is a known dialect.
func (d Dialect) Valid() bool {
	_, ok := capabilities[d]
	return ok
}

// IsMySQLFamily reports whether d speaks the MySQL protocol and catalog.
func (d Dialect) IsMySQLFamily() bool {
	return d == MySQL || d == MariaDB
}

// IsPostgresFamily reports whether d speaks the Postgres protocol and catalog.
func (d Dialect) IsPostgresFamily() bool {
	return d == Postgres || d == CockroachDB
}

// DefaultNamespace is the namespace used when none is configured.
func (d Dialect) DefaultNamespace() string {
	switch d {
	case Postgres, CockroachDB:
		return "public"
	case SQLServer:
		return "dbo"
	default:
		return ""
	}
}

func (d Dialect) String() string { return string(d) }

// Parse resolves a dialect name or alias.
func Parse(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	case "cockroach", "cockroachdb", "crdb":
		return CockroachDB, nil
	case "mysql":
		return MySQL, nil
	case "mariadb":
		return MariaDB, nil
	case "sqlserver", "mssql":
		return SQLServer, nil
	case "sqlite", "sqlite3", "file":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported dialect: %s", name)
	}
}
