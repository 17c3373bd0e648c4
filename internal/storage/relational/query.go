package relational

import (
	"strings"

	"github.com/aanand-mishra/users-api/internal/storage"
)

// statement accumulates parameters and hands out matching placeholders.
type statement struct {
	d    dialect
	args []any
}

func (s *statement) arg(v any) string {
	s.args = append(s.args, v)
	return s.d.placeholder(len(s.args))
}

// where renders "WHERE a = ? AND b = ?" over filter, or "" for no filter.
func (s *statement) where(filter storage.Filter) string {
	if len(filter) == 0 {
		return ""
	}
	conds := make([]string, 0, len(filter))
	for _, col := range filter.Columns() {
		conds = append(conds, quote(col)+" = "+s.arg(filter[col]))
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// buildInsert: INSERT INTO table (cols…) VALUES (?…)
func buildInsert(d dialect, table string, values map[string]any) (string, []any) {
	s := &statement{d: d}
	cols := storage.SortedColumns(values)
	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, col := range cols {
		names[i] = quote(col)
		marks[i] = s.arg(values[col])
	}
	q := "INSERT INTO " + quote(table) +
		" (" + strings.Join(names, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")"
	return q, s.args
}

// buildUpdate: UPDATE table SET col = ?… WHERE key = ?
func buildUpdate(d dialect, table string, key storage.Key, values map[string]any) (string, []any) {
	s := &statement{d: d}
	cols := storage.SortedColumns(values)
	sets := make([]string, len(cols))
	for i, col := range cols {
		sets[i] = quote(col) + " = " + s.arg(values[col])
	}
	q := "UPDATE " + quote(table) + " SET " + strings.Join(sets, ", ") +
		" WHERE " + quote(key.Name) + " = " + s.arg(key.Value)
	return q, s.args
}

// buildDelete: DELETE FROM table WHERE key = ?
func buildDelete(d dialect, table string, key storage.Key) (string, []any) {
	s := &statement{d: d}
	q := "DELETE FROM " + quote(table) + " WHERE " + quote(key.Name) + " = " + s.arg(key.Value)
	return q, s.args
}

// buildSelect: SELECT * FROM table [WHERE …] [LIMIT 1]
func buildSelect(d dialect, table string, filter storage.Filter, first bool) (string, []any) {
	s := &statement{d: d}
	q := "SELECT * FROM " + quote(table) + s.where(filter)
	if first {
		q += " LIMIT 1"
	}
	return q, s.args
}
