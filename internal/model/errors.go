package model

import "fmt"

// ValidationError means a field value was rejected. The caller can fix it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

func invalid(f *Field, reason string) error {
	return &ValidationError{Field: f.Name, Reason: reason}
}

// ModelError means the record contract was misused: a read-only write,
// saving with nothing dirty, reading updates before validation, and so on.
type ModelError struct {
	Msg string
}

func (e *ModelError) Error() string { return e.Msg }

func modelErrorf(format string, args ...any) error {
	return &ModelError{Msg: fmt.Sprintf(format, args...)}
}

// CoercionError means a raw value could not be converted to the field's
// declared kind.
type CoercionError struct {
	Field string
	Kind  Kind
	Value any
}

func (e *CoercionError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("cannot convert %T to %s", e.Value, e.Kind)
	}
	return fmt.Sprintf("%s cannot be converted to %s", e.Field, e.Kind)
}
