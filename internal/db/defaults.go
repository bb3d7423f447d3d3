package db

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tordrt/schemaplan/internal/dialect"
	"github.com/tordrt/schemaplan/internal/schema"
)

var (
	nextvalRe   = regexp.MustCompile(`(?i)^nextval\('(?:"?([^"']+)"?\.)?"?([^"']+)"?'(?:::regclass)?\)$`)
	castRe      = regexp.MustCompile(`^(.*?)::[\w\s."\[\]()]+$`)
	viewHeadRe  = regexp.MustCompile(`(?is)^\s*CREATE\s+(?:OR\s+(?:ALTER|REPLACE)\s+)?(?:TEMP(?:ORARY)?\s+)?VIEW\s+(?:IF\s+NOT\s+EXISTS\s+)?.*?\s+AS\s+(.*)$`)
	nowDefaults = map[string]bool{
		"now()":               true,
		"current_timestamp":   true,
		"current_timestamp()": true,
		"getdate()":           true,
		"sysdatetime()":       true,
		"localtimestamp":      true,
	}
)

// parseDefault reads a column default as the catalog spells it. An empty
// string means no default.
func parseDefault(d dialect.Dialect, raw string) *schema.Default {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "null") {
		return nil
	}
	if d == dialect.SQLServer {
		raw = unwrapParens(raw)
	}

	lower := strings.ToLower(raw)
	switch {
	case nowDefaults[lower], strings.HasPrefix(lower, "current_timestamp("):
		return &schema.Default{Kind: schema.DefaultNow}
	case lower == "unique_rowid()":
		return &schema.Default{Kind: schema.DefaultUniqueRowID}
	}
	if m := nextvalRe.FindStringSubmatch(raw); m != nil {
		return &schema.Default{Kind: schema.DefaultSequence, Sequence: m[2]}
	}

	if d.IsPostgresFamily() {
		if m := castRe.FindStringSubmatch(raw); m != nil {
			raw = strings.TrimSpace(m[1])
		}
	}
	if isLiteral(raw) {
		return &schema.Default{Kind: schema.DefaultValue, Expr: raw}
	}
	// MySQL reports string defaults without quotes.
	if d.IsMySQLFamily() && !strings.Contains(raw, "(") {
		return &schema.Default{Kind: schema.DefaultValue, Expr: quoteLiteral(raw)}
	}
	return &schema.Default{Kind: schema.DefaultDBGenerated, Expr: raw}
}

// unwrapParens strips the parentheses SQL Server puts around defaults: ((0)), ('x').
func unwrapParens(s string) string {
	for len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' {
		s = s[1 : len(s)-1]
	}
	return s
}

func isLiteral(s string) bool {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return true
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	switch strings.ToLower(s) {
	case "true", "false":
		return true
	}
	return false
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// viewBody returns the query of a view. SQLite and SQL Server keep the whole
// CREATE VIEW statement in their catalogs; Postgres and MySQL keep the query.
func viewBody(definition string) string {
	def := strings.TrimSpace(definition)
	if m := viewHeadRe.FindStringSubmatch(def); m != nil {
		def = m[1]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(def), ";"))
}
