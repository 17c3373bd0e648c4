// Package storage defines the Storage interface: a contract that any
// database backend must satisfy to persist records.
//
// WHY AN INTERFACE?
// ─────────────────
// Records (the model layer) should not know or care which database they are
// talking to. By depending only on this interface:
//
//   - Switching databases = implement the interface for the new backend and
//     pick it in the config file. Zero model changes.
//
//   - Writing tests = pass the in-memory backend (storage/memory) or a fake
//     that satisfies the interface. No real database needed.
//
// Backends never see Field values directly. They read a record's key and its
// validated dirty-field snapshot through the Object interface below.
package storage

import (
	"context"
	"errors"
	"slices"
)

// Row is one stored row, column name → value.
type Row map[string]any

// Filter is an AND-combined set of column = value conditions.
// A nil or empty Filter matches every row.
type Filter map[string]any

// Columns returns the filter's column names in a stable (sorted) order so
// that generated statements and their parameters always line up.
func (f Filter) Columns() []string {
	return SortedColumns(f)
}

// Key identifies the row a record maps to.
//
// Value == nil means the record has never been stored: backends must INSERT.
// A non-nil Value means UPDATE/DELETE the row where Name = Value.
type Key struct {
	Name  string
	Value any
}

// IsNew reports whether the key signals an insert.
func (k Key) IsNew() bool { return k.Value == nil }

// Object is what a backend needs from a record to persist it.
type Object interface {
	// TableName is the table (or DynamoDB table) the record lives in.
	TableName() string

	// DBKey returns the key column and, for stored records, its value.
	DBKey() Key

	// DBUpdates returns the validated dirty-field snapshot, column → value.
	// It fails if the record was never validated.
	DBUpdates() (map[string]any, error)
}

// Storage is the database contract.
// Any concrete type that implements ALL of these methods automatically
// satisfies this interface; Go does this implicitly.
type Storage interface {
	// Save inserts (Key.IsNew) or updates the object's dirty fields.
	Save(ctx context.Context, obj Object) error

	// Delete removes the row identified by the object's key.
	Delete(ctx context.Context, obj Object) error

	// LoadByID returns the first row matching filter, or an error that
	// matches ErrNotFound when there is none.
	LoadByID(ctx context.Context, table string, filter Filter) (Row, error)

	// LoadList returns every row matching filter. Returns an empty slice
	// (not nil) when nothing matches. Order is backend defined.
	LoadList(ctx context.Context, table string, filter Filter) ([]Row, error)
}

// Rotator is implemented by backends that can archive old rows.
//
// Rotate keeps the newest maxSize rows of table and moves the rest to
// "<table>_archive". It returns false (and changes nothing) when the table
// holds fewer than maxSize rows.
type Rotator interface {
	Rotate(ctx context.Context, table string, maxSize int) (bool, error)
}

// Exists reports whether any row of table matches filter.
//
// Only ErrNotFound counts as absence. Every other failure is returned as is,
// so a broken backend never looks like "value is unique".
func Exists(ctx context.Context, s Storage, table string, filter Filter) (bool, error) {
	_, err := s.LoadByID(ctx, table, filter)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, err
}

// SortedColumns returns the keys of m in sorted order.
func SortedColumns(m map[string]any) []string {
	cols := make([]string, 0, len(m))
	for c := range m {
		cols = append(cols, c)
	}
	slices.Sort(cols)
	return cols
}
