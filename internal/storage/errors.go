package storage

import (
	"errors"
	"fmt"

	"github.com/jinzhu/inflection"
)

var (
	// ErrBackend matches every error a backend returns on purpose,
	// including not-found errors.
	ErrBackend = errors.New("storage: backend failed")

	// ErrNotFound is returned when a lookup matched no row.
	ErrNotFound = errors.New("storage: not found")
)

// Error is the error type returned by backends.
//
// The message is deliberately short: the driver diagnostic is logged where
// the statement failed and never travels with the error.
type Error struct {
	Op       string
	Table    string
	notFound bool
}

func (e *Error) Error() string {
	if e.notFound {
		return fmt.Sprintf("%s not found", inflection.Singular(e.Table))
	}
	return fmt.Sprintf("backend failed: %s %s", e.Op, e.Table)
}

// Is lets errors.Is match both sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrBackend:
		return true
	case ErrNotFound:
		return e.notFound
	}
	return false
}

// Failed builds the generic error for a statement that could not run.
func Failed(op, table string) error {
	return &Error{Op: op, Table: table}
}

// NotFound builds the error for a lookup on table that matched nothing.
func NotFound(op, table string) error {
	return &Error{Op: op, Table: table, notFound: true}
}
