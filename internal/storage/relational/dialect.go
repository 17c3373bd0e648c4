package relational

import (
	"fmt"
	"strconv"
	"strings"
)

// dialect captures the few places where SQLite and PostgreSQL disagree.
type dialect struct {
	driver string

	// numbered placeholders ($1, $2, …) instead of ?
	numbered bool

	// rowID is the hidden per-row identity column used to pin down exactly
	// which rows Rotate copies and then deletes.
	rowID string
}

var dialects = map[string]dialect{
	"sqlite3": {driver: "sqlite3", rowID: "rowid"},
	"pgx":     {driver: "pgx", numbered: true, rowID: "ctid"},
}

func dialectFor(driver string) (dialect, error) {
	d, ok := dialects[driver]
	if !ok {
		return dialect{}, fmt.Errorf("relational: unsupported driver %q", driver)
	}
	return d, nil
}

func (d dialect) placeholder(n int) string {
	if d.numbered {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// quote renders a table or column name as a quoted SQL identifier. Both
// engines accept double quotes.
func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
