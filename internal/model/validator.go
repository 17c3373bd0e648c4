package model

import (
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
)

// validate is shared by every rule: validator.Validate caches parsed tags
// and is safe for concurrent use.
var validate = validator.New()

// Validator checks the coerced value of a field.
//
// Implementations receive the field itself so that the returned
// ValidationError can name it.
type Validator interface {
	Validate(f *Field) error
}

// ASCII rejects strings containing any code point >= 128.
type ASCII struct{}

func (ASCII) Validate(f *Field) error {
	v, err := f.Value()
	if err != nil {
		return err
	}
	s, ok := v.(string)
	if !ok || validate.Var(s, "ascii") != nil {
		return invalid(f, "should be an ASCII string")
	}
	return nil
}

// Password accepts ASCII strings whose length is within [Min, Max].
type Password struct {
	Min int
	Max int
}

// DefaultPassword is the rule used by User.
var DefaultPassword = Password{Min: 6, Max: 12}

func (p Password) Validate(f *Field) error {
	v, err := f.Value()
	if err != nil {
		return err
	}
	s, ok := v.(string)
	if !ok || validate.Var(s, "ascii") != nil {
		return invalid(f, "should be an ASCII string")
	}
	if validate.Var(s, fmt.Sprintf("min=%d,max=%d", p.Min, p.Max)) != nil {
		return invalid(f, fmt.Sprintf("should be between %d and %d characters length", p.Min, p.Max))
	}
	return nil
}

// Enum accepts only the listed values. Values are compared with ==, so they
// must have the field's coerced type (string, or int64 for Int fields).
type Enum struct {
	Allowed []any
}

func (e Enum) Validate(f *Field) error {
	v, err := f.Value()
	if err != nil {
		return err
	}
	if !slices.Contains(e.Allowed, v) {
		return invalid(f, fmt.Sprintf("should be one of %v", e.Allowed))
	}
	return nil
}

// Numeric accepts integers, optionally bounded. A nil bound is not checked;
// a bound of zero is.
type Numeric struct {
	Min *int64
	Max *int64
}

// Bound is a helper for filling Numeric.Min and Numeric.Max.
func Bound(n int64) *int64 { return &n }

func (n Numeric) Validate(f *Field) error {
	v, err := f.Value()
	if err != nil {
		return err
	}
	i, ok := v.(int64)
	if !ok {
		return invalid(f, "should be an integer")
	}
	if n.Min != nil && validate.Var(i, fmt.Sprintf("gte=%d", *n.Min)) != nil {
		return invalid(f, fmt.Sprintf("should be at least %d", *n.Min))
	}
	if n.Max != nil && validate.Var(i, fmt.Sprintf("lte=%d", *n.Max)) != nil {
		return invalid(f, fmt.Sprintf("should be at most %d", *n.Max))
	}
	return nil
}
