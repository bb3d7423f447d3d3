package dialect

import (
	"strings"

	"github.com/lib/pq"
)

// Quote quotes an identifier the way d expects it.
func (d Dialect) Quote(ident string) string {
	switch {
	case d.IsMySQLFamily():
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	case d == SQLServer:
		return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
	default:
		return pq.QuoteIdentifier(ident)
	}
}

// QuoteTable quotes a table name, qualifying it with its namespace when the
// dialect has namespaces and one is given.
func (d Dialect) QuoteTable(namespace, name string) string {
	if namespace == "" || !d.Capabilities().Namespaces {
		return d.Quote(name)
	}
	return d.Quote(namespace) + "." + d.Quote(name)
}

// QuoteString quotes a string literal.
func (d Dialect) QuoteString(s string) string {
	switch {
	case d.IsPostgresFamily():
		return pq.QuoteLiteral(s)
	case d.IsMySQLFamily():
		s = strings.ReplaceAll(s, `\`, `\\`)
	case d == SQLServer:
		return "N'" + strings.ReplaceAll(s, "'", "''") + "'"
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
