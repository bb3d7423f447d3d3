package safety

import (
	"math"
	"slices"
	"strings"

	"github.com/tordrt/schemaplan/internal/schema"
)

// Change is one column type transition as seen by a cast rule.
type Change struct {
	From schema.NativeType
	To   schema.NativeType
	// Indexed is set when the column is covered by an index on both sides.
	Indexed bool
}

// rule decides a cell whose answer depends on type arguments.
type rule func(c Change) Severity

type castRow struct {
	Safe, Risky, NotCastable []string
	Rules                    map[string]rule
}

type castTable map[string]castRow

// canonical finds the spelling the table uses for a native type name.
func (t castTable) canonical(name string) (string, bool) {
	if _, ok := t[name]; ok {
		return name, true
	}
	for k := range t {
		if strings.EqualFold(k, name) {
			return k, true
		}
	}
	return "", false
}

// lookup classifies c. ok is false when either side is not a type of the table.
func (t castTable) lookup(c Change) (sev Severity, ok bool) {
	from, ok := t.canonical(c.From.Name)
	if !ok {
		return 0, false
	}
	to, ok := t.canonical(c.To.Name)
	if !ok {
		return 0, false
	}
	row := t[from]
	if r, ok := row.Rules[to]; ok {
		return r(c), true
	}
	switch {
	case slices.Contains(row.Safe, to):
		return Safe, true
	case slices.Contains(row.Risky, to):
		return Risky, true
	case slices.Contains(row.NotCastable, to):
		return NotCastable, true
	}
	return 0, false
}

const unbounded = math.MaxInt

func is(t schema.NativeType, name string) bool { return strings.EqualFold(t.Name, name) }

// length reads the first argument of a sized type. Max reads as unbounded.
func length(t schema.NativeType) (int, bool) {
	if t.IsMax() {
		return unbounded, true
	}
	return t.Arg(0)
}

// decimal reads precision and scale. A missing scale is 0.
func decimal(t schema.NativeType) (p, s int, ok bool) {
	p, ok = t.Arg(0)
	if !ok {
		return 0, 0, false
	}
	s, _ = t.Arg(1)
	return p, s, true
}

func sameType(c Change) Severity {
	if c.From.Equal(c.To) {
		return Safe
	}
	return NotCastable
}

// Postgres. An unsized VarChar is unbounded, an unsized Char holds one character.

func pgTextFits(n int) rule {
	return func(c Change) Severity {
		l, ok := length(c.To)
		switch {
		case ok && l < n:
			return Risky
		case !ok && is(c.To, "Char"):
			return Risky
		}
		return Safe
	}
}

func pgDecimalFits(digits int) rule {
	return func(c Change) Severity {
		p, s, ok := decimal(c.To)
		if ok && p-s < digits {
			return Risky
		}
		return Safe
	}
}

func pgDecimalToInt(maxPrecision int) rule {
	return func(c Change) Severity {
		p, s, ok := decimal(c.From)
		if !ok || s > 0 || p > maxPrecision {
			return Risky
		}
		return Safe
	}
}

func pgDecimalResize(c Change) Severity {
	op, os, oldSized := decimal(c.From)
	np, ns, newSized := decimal(c.To)
	switch {
	case !newSized:
		return Safe
	case !oldSized:
		return Risky
	case op-os > np-ns || os > ns:
		return Risky
	}
	return Safe
}

func pgDecimalToText(c Change) Severity {
	l, sized := length(c.To)
	if !sized {
		if is(c.To, "Char") {
			return Risky
		}
		return Safe
	}
	p, s, ok := decimal(c.From)
	switch {
	case !ok:
		// numeric without precision holds up to 131072 digits before the point
		if l < 131073 {
			return Risky
		}
	case s == 0 && p+1 > l:
		return Risky
	case s > 0 && p+2 > l:
		return Risky
	}
	return Safe
}

func pgStringResize(c Change) Severity {
	ol, oldSized := length(c.From)
	nl, newSized := length(c.To)
	toChar := is(c.To, "Char")
	if is(c.From, "Char") && !oldSized {
		return Safe
	}
	switch {
	case !oldSized && !newSized:
		if toChar {
			return Risky
		}
	case !oldSized:
		return Risky
	case !newSized:
		if ol != 1 && toChar {
			return Risky
		}
	case ol > nl:
		return Risky
	}
	return Safe
}

func pgUnboundedOr(otherwise Severity) rule {
	return func(c Change) Severity {
		if _, sized := length(c.To); !sized {
			return Safe
		}
		return otherwise
	}
}

func pgByteAToText(c Change) Severity {
	l, sized := length(c.To)
	switch {
	case !sized && is(c.To, "VarChar"):
		return Safe
	case sized && l > 2:
		return Risky
	}
	return NotCastable
}

func pgLongerThan(n int) rule {
	return func(c Change) Severity {
		l, sized := length(c.To)
		switch {
		case !sized && is(c.To, "VarChar"):
			return Safe
		case sized && l > n:
			return Safe
		}
		return NotCastable
	}
}

func pgBooleanToChar(c Change) Severity {
	l, sized := length(c.To)
	switch {
	case !sized:
		return NotCastable
	case l > 4:
		return Safe
	case l > 3:
		return Risky
	}
	return NotCastable
}

func pgBitCast(c Change) Severity {
	if is(c.To, "Bit") {
		return sameType(c)
	}
	n, sized := length(c.From)
	if !sized {
		return Safe
	}
	m, newSized := length(c.To)
	switch {
	case !newSized && !is(c.To, "Char"):
		return Safe
	case newSized && m >= n:
		return Safe
	}
	return NotCastable
}

func pgVarBitCast(c Change) Severity {
	n, sized := length(c.From)
	m, newSized := length(c.To)
	if !sized {
		switch {
		case is(c.To, "VarBit"):
			return sameType(c)
		case is(c.To, "VarChar") && !newSized:
			return Safe
		}
		return Risky
	}
	switch {
	case is(c.To, "VarChar"):
		if !newSized || m >= n {
			return Safe
		}
		return Risky
	case is(c.To, "VarBit"):
		if !newSized || m >= n {
			return Safe
		}
		return NotCastable
	case is(c.To, "Char"):
		if newSized && m >= n {
			return Safe
		}
		return Risky
	default:
		if !newSized || m <= n {
			return Risky
		}
		return NotCastable
	}
}

// CockroachDB

func crdbPrecision(c Change) Severity {
	a, ok := c.From.Arg(0)
	if !ok {
		a = 6
	}
	b, ok := c.To.Arg(0)
	if !ok {
		b = 6
	}
	if a == b {
		return Safe
	}
	return NotCastable
}

func crdbIntToString(c Change) Severity {
	if _, sized := length(c.To); sized || c.Indexed {
		return NotCastable
	}
	return Safe
}

func crdbNarrowInt(c Change) Severity {
	if c.Indexed {
		return NotCastable
	}
	return Risky
}

// SQL Server. An unsized character or binary type holds one unit, Max is
// unbounded, and Decimal defaults to (18, 0).

func msLength(t schema.NativeType) int {
	if l, ok := length(t); ok {
		return l
	}
	return 1
}

func msDecimal(t schema.NativeType) (p, s int) {
	if p, s, ok := decimal(t); ok {
		return p, s
	}
	return 18, 0
}

// msFloatBits is the mantissa size: Float defaults to 53 and Real is 24.
func msFloatBits(t schema.NativeType) int {
	if is(t, "Real") {
		return 24
	}
	if n, ok := t.Arg(0); ok {
		return n
	}
	return 53
}

func msAtLeast(n int) rule {
	return func(c Change) Severity {
		if msLength(c.To) >= n {
			return Safe
		}
		return Risky
	}
}

func msAtMost(n int) rule {
	return func(c Change) Severity {
		if msLength(c.From) <= n {
			return Safe
		}
		return Risky
	}
}

func msDecimalFits(digits int) rule {
	return func(c Change) Severity {
		if p, s := msDecimal(c.To); p-s < digits {
			return Risky
		}
		return Safe
	}
}

func msDecimalCovers(precision, scale int) rule {
	return func(c Change) Severity {
		if p, s := msDecimal(c.To); p < precision || s < scale {
			return Risky
		}
		return Safe
	}
}

func msDecimalResize(c Change) Severity {
	op, os := msDecimal(c.From)
	np, ns := msDecimal(c.To)
	if op-os > np-ns || os > ns {
		return Risky
	}
	return Safe
}

func msDecimalToText(c Change) Severity {
	l := msLength(c.To)
	p, s := msDecimal(c.From)
	switch {
	case s == 0 && p+1 > l:
		return Risky
	case s > 0 && p+2 > l:
		return Risky
	}
	return Safe
}

func msFloatResize(c Change) Severity {
	if (msFloatBits(c.From) <= 24) == (msFloatBits(c.To) <= 24) {
		return Safe
	}
	return Risky
}

func msFloatToText(c Change) Severity {
	need := 317
	if msFloatBits(c.From) <= 24 {
		need = 47
	}
	if msLength(c.To) >= need {
		return Safe
	}
	return Risky
}

func msFloatToBinary(c Change) Severity {
	need := 8
	if msFloatBits(c.From) <= 24 {
		need = 4
	}
	if msLength(c.To) >= need {
		return Safe
	}
	return Risky
}

func msShrink(c Change) Severity {
	if msLength(c.From) > msLength(c.To) {
		return Risky
	}
	return Safe
}

func msFromMax(sev Severity) rule {
	return func(c Change) Severity {
		if c.From.IsMax() {
			return sev
		}
		return Safe
	}
}

func msToMax(c Change) Severity {
	if c.To.IsMax() {
		return Safe
	}
	return Risky
}

// msBinaryToUnicode compares bytes with two-byte characters.
func msBinaryToUnicode(c Change) Severity {
	chars := msLength(c.To)
	if chars == unbounded {
		return Safe
	}
	if msLength(c.From) > 2*chars {
		return Risky
	}
	return Safe
}

// MySQL

func myArg(t schema.NativeType, def int) int {
	if n, ok := t.Arg(0); ok {
		return n
	}
	return def
}

func myWiden(c Change) Severity {
	if myArg(c.To, 1) >= myArg(c.From, 1) {
		return Safe
	}
	return Risky
}

func myBinaryToBit(c Change) Severity {
	if myArg(c.To, 1) >= 8*myArg(c.From, 1) {
		return Safe
	}
	return Risky
}

func myBitToBinary(c Change) Severity {
	if myArg(c.From, 1) >= 8*myArg(c.To, 1) {
		return Safe
	}
	return NotCastable
}

func myBitAtLeast(bits int, otherwise Severity) rule {
	return func(c Change) Severity {
		if myArg(c.To, 1) >= bits {
			return Safe
		}
		return otherwise
	}
}

func myDecimalHolds(digits int) rule {
	return func(c Change) Severity {
		p, s, ok := decimal(c.To)
		if !ok {
			p, s = 10, 0
		}
		if p-s >= digits {
			return Safe
		}
		return NotCastable
	}
}

func myDecimalResize(c Change) Severity {
	op, os, ok := decimal(c.From)
	if !ok {
		op, os = 10, 0
	}
	np, ns, ok := decimal(c.To)
	if !ok {
		np, ns = 10, 0
	}
	if op-os > np-ns || os > ns {
		return Risky
	}
	return Safe
}

func myPrecisionResize(c Change) Severity {
	if myArg(c.To, 0) >= myArg(c.From, 0) {
		return Safe
	}
	return Risky
}

func myFloatToString(c Change) Severity {
	if myArg(c.To, 1) >= 32 {
		return Risky
	}
	return NotCastable
}
