package model

import (
	"encoding/json"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// Kind is the type a field's raw value is coerced to on read.
type Kind int

const (
	String Kind = iota
	Int
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Int:
		return "int"
	}
	return "unknown"
}

// Coerce converts raw to kind. nil coerces to the kind's zero value.
//
// String yields string, Int yields int64. Raw values come from decoded JSON
// (float64, json.Number, string), from database drivers (int64, []byte) or
// from Go callers.
func Coerce(kind Kind, raw any) (any, error) {
	switch kind {
	case String:
		return coerceString(raw)
	case Int:
		return coerceInt(raw)
	}
	return nil, &CoercionError{Kind: kind, Value: raw}
}

func coerceString(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	}
	return nil, &CoercionError{Kind: String, Value: raw}
}

func coerceInt(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return int64(0), nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint32:
		return int64(v), nil
	case bool:
		if v {
			return int64(1), nil
		}
		return int64(0), nil
	case float64:
		if v == math.Trunc(v) && v >= math.MinInt64 && v < math.MaxInt64 {
			return int64(v), nil
		}
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return i, nil
		}
	case []byte:
		if i, err := strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64); err == nil {
			return i, nil
		}
	}
	return nil, &CoercionError{Kind: Int, Value: raw}
}

// Field is a named, typed, validated value slot owned by a record.
//
// The raw value is stored as given; Value coerces it on every read so that
// validators always observe the declared kind.
type Field struct {
	Name      string
	Kind      Kind
	Validator Validator
	ReadOnly  bool
	Unique    bool
	Hidden    bool

	raw any
}

// FieldOption configures a Field in NewField.
type FieldOption func(*Field)

// WithValidator replaces the default ASCII validator. Passing nil leaves the
// field without a validator, which makes Validate fail with a ModelError.
func WithValidator(v Validator) FieldOption {
	return func(f *Field) { f.Validator = v }
}

// As sets the coercion kind (default String).
func As(k Kind) FieldOption { return func(f *Field) { f.Kind = k } }

// ReadOnly forbids Record.Update on the field.
func ReadOnly() FieldOption { return func(f *Field) { f.ReadOnly = true } }

// Unique makes Record.Validate reject values already present in storage.
func Unique() FieldOption { return func(f *Field) { f.Unique = true } }

// Hidden keeps the field out of iteration and JSON. It is still persisted.
func Hidden() FieldOption { return func(f *Field) { f.Hidden = true } }

// NewField builds a String field with the ASCII validator, then applies opts.
func NewField(name string, raw any, opts ...FieldOption) *Field {
	f := &Field{Name: name, Kind: String, Validator: ASCII{}, raw: raw}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Raw returns the stored, uncoerced value.
func (f *Field) Raw() any { return f.raw }

// Value returns the raw value coerced to the field's kind.
func (f *Field) Value() (any, error) {
	v, err := Coerce(f.Kind, f.raw)
	if err != nil {
		return nil, &CoercionError{Field: f.Name, Kind: f.Kind, Value: f.raw}
	}
	return v, nil
}

// Validate runs the field's validator against it.
func (f *Field) Validate() error {
	if f.Validator == nil {
		return modelErrorf("No validator defined for field %s", f.Name)
	}
	slog.Debug("validate field", slog.String("field", f.Name))
	return f.Validator.Validate(f)
}
