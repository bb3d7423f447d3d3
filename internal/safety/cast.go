// Package safety classifies a migration's steps as Safe, Risky or NotCastable
// from static per-dialect cast tables and precomputed facts about the data.
package safety

import (
	"slices"

	"github.com/tordrt/schemaplan/internal/dialect"
	"github.com/tordrt/schemaplan/internal/schema"
)

// Severity of a step or type change.
type Severity int

const (
	// Safe changes can never lose data.
	Safe Severity = iota
	// Risky changes may truncate or lose precision. They run with a warning.
	Risky
	// NotCastable changes have no conversion and block the plan unless forced.
	NotCastable
)

func (s Severity) String() string {
	switch s {
	case Risky:
		return "Risky"
	case NotCastable:
		return "NotCastable"
	default:
		return "Safe"
	}
}

func worst(a, b Severity) Severity { return max(a, b) }

func tableFor(d dialect.Dialect) castTable {
	switch d {
	case dialect.Postgres:
		return postgresCasts
	case dialect.CockroachDB:
		return cockroachCasts
	case dialect.MySQL, dialect.MariaDB:
		return mysqlCasts
	case dialect.SQLServer:
		return sqlserverCasts
	default:
		return nil
	}
}

// Cast classifies changing the type of prev into the type of next on d.
func Cast(d dialect.Dialect, prev, next schema.ColumnWalker) Severity {
	if sev, ok := castList(d, prev, next); ok {
		return sev
	}

	pe, prevEnum := prev.Enum()
	ne, nextEnum := next.Enum()
	switch {
	case prevEnum && nextEnum:
		if pe.Name() == ne.Name() && pe.Namespace() == ne.Namespace() {
			return Safe
		}
		return NotCastable
	case prevEnum != nextEnum:
		return NotCastable
	}

	from, to := prev.Native(), next.Native()
	if d.IsMySQLFamily() {
		if sev, ok := castInlineEnum(from, to); ok {
			return sev
		}
		// On MariaDB, JSON is an alias for LONGTEXT.
		if d == dialect.MariaDB && is(from, "LongText") && is(to, "Json") {
			return Safe
		}
	}

	if t := tableFor(d); t != nil && !from.IsZero() && !to.IsZero() {
		c := Change{From: from, To: to, Indexed: indexed(prev) && indexed(next)}
		if sev, ok := t.lookup(c); ok {
			return sev
		}
	}
	return CastFamily(prev.Family(), next.Family())
}

// CastFamily classifies a change by type family alone.
func CastFamily(from, to schema.Family) Severity {
	sev, _ := familyCasts.lookup(Change{
		From: schema.Native(from.String()),
		To:   schema.Native(to.String()),
	})
	return sev
}

// castList handles transitions between list and scalar columns.
func castList(d dialect.Dialect, prev, next schema.ColumnWalker) (Severity, bool) {
	if prev.IsList() == next.IsList() {
		return 0, false
	}
	if prev.IsList() {
		to := next.Native()
		_, sized := length(to)
		switch {
		case d == dialect.Postgres && is(to, "Text"):
			return Safe, true
		case (is(to, "VarChar") || is(to, "String")) && !sized:
			return Safe, true
		case is(to, "VarChar") || is(to, "String") || is(to, "Char"):
			return Risky, true
		}
	}
	return NotCastable, true
}

// castInlineEnum compares MySQL inline enums, whose variants are the type arguments.
func castInlineEnum(from, to schema.NativeType) (Severity, bool) {
	fromEnum, toEnum := is(from, "Enum"), is(to, "Enum")
	switch {
	case fromEnum && toEnum:
		for _, v := range from.Args {
			if !slices.Contains(to.Args, v) {
				return Risky, true
			}
		}
		return Safe, true
	case fromEnum != toEnum:
		return Risky, true
	}
	return 0, false
}

func indexed(c schema.ColumnWalker) bool {
	for _, idx := range c.Table().Indexes() {
		if idx.ContainsColumn(c.ID) {
			return true
		}
	}
	return false
}
