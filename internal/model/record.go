// Package model holds the persistable records (User, Audit) and the
// machinery they share: typed fields, validators, dirty tracking and the
// insert-vs-update decision.
//
// A record never talks to a database directly. It is constructed with a
// storage.Storage and hands itself to it as a storage.Object on Save/Delete.
package model

import (
	"bytes"
	"context"
	"encoding/json"
	"iter"
	"log/slog"

	"github.com/aanand-mishra/users-api/internal/storage"
)

// Record is the contract shared by every persistable entity.
type Record interface {
	storage.Object
	json.Marshaler

	IsNew() bool
	Validate(ctx context.Context) (map[string]any, error)
	Save(ctx context.Context) error
	Delete(ctx context.Context) error
	Update(name string, value any) error
	All() iter.Seq2[string, any]
}

// Base implements Record on top of an ordered set of fields.
// Concrete records embed *Base and may override Delete.
type Base struct {
	store storage.Storage
	table string
	key   string
	isNew bool

	fields []*Field
	index  map[string]*Field

	dirty     map[string]struct{}
	validated map[string]any
}

// newBase builds a record over fields in declaration order. A new record
// starts with every field dirty; a loaded one starts clean.
func newBase(store storage.Storage, table, key string, isNew bool, fields ...*Field) *Base {
	b := &Base{
		store:  store,
		table:  table,
		key:    key,
		isNew:  isNew,
		fields: fields,
		index:  make(map[string]*Field, len(fields)),
		dirty:  make(map[string]struct{}, len(fields)),
	}
	for _, f := range fields {
		b.index[f.Name] = f
		if isNew {
			b.dirty[f.Name] = struct{}{}
		}
	}
	return b
}

func (b *Base) TableName() string { return b.table }

// IsNew reports whether the record was created rather than loaded and has
// not been saved yet.
func (b *Base) IsNew() bool { return b.isNew }

// Field returns the named field.
func (b *Base) Field(name string) (*Field, bool) {
	f, ok := b.index[name]
	return f, ok
}

// Dirty returns the names of the fields that the next Save will write,
// in declaration order.
func (b *Base) Dirty() []string {
	names := make([]string, 0, len(b.dirty))
	for _, f := range b.fields {
		if _, ok := b.dirty[f.Name]; ok {
			names = append(names, f.Name)
		}
	}
	return names
}

// DBKey returns the key column. Its value is absent until the record has
// been stored, which tells the backend to insert.
func (b *Base) DBKey() storage.Key {
	k := storage.Key{Name: b.key}
	if b.isNew {
		return k
	}
	if f, ok := b.index[b.key]; ok {
		if v, err := f.Value(); err == nil {
			k.Value = v
		}
	}
	return k
}

// DBUpdates returns the snapshot produced by the last Validate.
func (b *Base) DBUpdates() (map[string]any, error) {
	if b.validated == nil {
		return nil, modelErrorf("%s was not validated", b.table)
	}
	return b.validated, nil
}

// Validate checks every dirty field and, for unique ones, that no stored row
// already holds the value. It returns (and caches) the dirty-field snapshot.
// A failed run drops any earlier snapshot, so Save validates again.
func (b *Base) Validate(ctx context.Context) (map[string]any, error) {
	b.validated = nil
	data := make(map[string]any, len(b.dirty))
	for _, name := range b.Dirty() {
		f := b.index[name]
		if err := f.Validate(); err != nil {
			return nil, err
		}
		v, err := f.Value()
		if err != nil {
			return nil, err
		}
		if f.Unique {
			exists, err := storage.Exists(ctx, b.store, b.table, storage.Filter{name: v})
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, invalid(f, "already exists")
			}
		}
		slog.Debug("add field to update", slog.String("table", b.table), slog.String("field", name))
		data[name] = v
	}
	b.validated = data
	return data, nil
}

// Save validates (once) and persists the dirty fields.
//
// After a successful save the record counts as stored: it is no longer new
// and its dirty set is empty. The validated snapshot stays readable through
// DBUpdates until the next Update.
func (b *Base) Save(ctx context.Context) error {
	if len(b.dirty) == 0 {
		return modelErrorf("Nothing to save")
	}
	if b.validated == nil {
		if _, err := b.Validate(ctx); err != nil {
			return err
		}
	}
	slog.Debug("save record", slog.String("table", b.table), slog.Any("fields", b.Dirty()))
	if err := b.store.Save(ctx, b); err != nil {
		return err
	}
	b.isNew = false
	clear(b.dirty)
	return nil
}

// Delete removes the stored row.
func (b *Base) Delete(ctx context.Context) error {
	if b.isNew {
		return modelErrorf("%s was never saved", b.table)
	}
	return b.store.Delete(ctx, b)
}

// Update sets a field's raw value and marks it dirty. Validation is
// deferred to Save.
func (b *Base) Update(name string, value any) error {
	f, ok := b.index[name]
	if !ok {
		return modelErrorf("Field %s cannot be updated", name)
	}
	if f.ReadOnly {
		return modelErrorf("%s is read only", name)
	}
	slog.Debug("update field", slog.String("table", b.table), slog.String("field", name))
	f.raw = value
	b.dirty[name] = struct{}{}
	b.validated = nil
	return nil
}

// All yields (name, value) for every visible field in declaration order.
// A value that fails coercion is yielded raw; Validate reports the failure.
func (b *Base) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, f := range b.fields {
			if f.Hidden {
				continue
			}
			v, err := f.Value()
			if err != nil {
				v = f.Raw()
			}
			if !yield(f.Name, v) {
				return
			}
		}
	}
}

// MarshalJSON writes the visible fields as an object, keeping declaration
// order.
func (b *Base) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for name, v := range b.All() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
