package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerce(t *testing.T) {
	tcs := []struct {
		name string
		kind Kind
		raw  any
		want any
	}{
		{name: "nil string", kind: String, raw: nil, want: ""},
		{name: "bytes to string", kind: String, raw: []byte("abc"), want: "abc"},
		{name: "int to string", kind: String, raw: 42, want: "42"},
		{name: "float to string", kind: String, raw: 1.5, want: "1.5"},
		{name: "nil int", kind: Int, raw: nil, want: int64(0)},
		{name: "int64", kind: Int, raw: int64(7), want: int64(7)},
		{name: "whole float", kind: Int, raw: 3.0, want: int64(3)},
		{name: "json number", kind: Int, raw: json.Number("12"), want: int64(12)},
		{name: "numeric string", kind: Int, raw: " 12 ", want: int64(12)},
		{name: "sqlite bytes", kind: Int, raw: []byte("1"), want: int64(1)},
		{name: "bool", kind: Int, raw: true, want: int64(1)},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Coerce(tc.kind, tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCoerceFailures(t *testing.T) {
	for _, raw := range []any{"abc", 1.5, []int{1}} {
		_, err := Coerce(Int, raw)
		var ce *CoercionError
		assert.ErrorAs(t, err, &ce, "raw %v", raw)
	}
	_, err := Coerce(String, map[string]any{})
	assert.Error(t, err)
}

func TestFieldValueIsLazy(t *testing.T) {
	f := NewField("deleted", "1", As(Int))
	assert.Equal(t, "1", f.Raw())

	v, err := f.Value()
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	assert.Equal(t, "1", f.Raw(), "reading must not rewrite the raw value")
}

func TestFieldDefaults(t *testing.T) {
	f := NewField("username", "test1")
	assert.Equal(t, String, f.Kind)
	assert.IsType(t, ASCII{}, f.Validator)
	assert.False(t, f.ReadOnly)
	assert.False(t, f.Unique)
	assert.False(t, f.Hidden)
}

func TestFieldWithoutValidator(t *testing.T) {
	err := NewField("username", "test1", WithValidator(nil)).Validate()
	var me *ModelError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "No validator defined for field username", err.Error())

	var ve *ValidationError
	assert.False(t, errors.As(err, &ve))
}
