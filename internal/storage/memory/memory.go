// Package memory is an in-process implementation of storage.Storage and
// storage.Rotator. Rows live in maps guarded by one mutex; nothing is
// persisted across restarts.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/aanand-mishra/users-api/internal/storage"
)

// Memory keeps rows per table in insertion order.
type Memory struct {
	mu          sync.Mutex
	tables      map[string][]storage.Row
	orderColumn string
}

// New returns an empty store. orderColumn is the timestamp column Rotate
// sorts by.
func New(orderColumn string) *Memory {
	return &Memory{tables: make(map[string][]storage.Row), orderColumn: orderColumn}
}

// Close is a no-op; it lets Memory stand in for closable backends.
func (m *Memory) Close() error { return nil }

func (m *Memory) Save(_ context.Context, obj storage.Object) error {
	table := obj.TableName()
	updates, err := obj.DBUpdates()
	if err != nil {
		return err
	}
	key := obj.DBKey()

	m.mu.Lock()
	defer m.mu.Unlock()

	if key.IsNew() {
		slog.Debug("memory insert", slog.String("table", table), slog.Any("values", updates))
		m.tables[table] = append(m.tables[table], maps.Clone(storage.Row(updates)))
		return nil
	}

	slog.Debug("memory update", slog.String("table", table), slog.Any("values", updates))
	found := false
	for _, row := range m.tables[table] {
		if same(row[key.Name], key.Value) {
			maps.Copy(row, updates)
			found = true
		}
	}
	if !found {
		return storage.NotFound("save", table)
	}
	return nil
}

func (m *Memory) Delete(_ context.Context, obj storage.Object) error {
	table, key := obj.TableName(), obj.DBKey()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.tables[table] = slices.DeleteFunc(m.tables[table], func(row storage.Row) bool {
		return same(row[key.Name], key.Value)
	})
	return nil
}

func (m *Memory) LoadByID(_ context.Context, table string, filter storage.Filter) (storage.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, row := range m.tables[table] {
		if matches(row, filter) {
			return maps.Clone(row), nil
		}
	}
	return nil, storage.NotFound("load", table)
}

func (m *Memory) LoadList(_ context.Context, table string, filter storage.Filter) ([]storage.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]storage.Row, 0)
	for _, row := range m.tables[table] {
		if matches(row, filter) {
			out = append(out, maps.Clone(row))
		}
	}
	return out, nil
}

// Rotate moves all but the newest maxSize rows to table + "_archive".
func (m *Memory) Rotate(_ context.Context, table string, maxSize int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.tables[table]
	if len(rows) < maxSize {
		return false, nil
	}
	slices.SortStableFunc(rows, func(a, b storage.Row) int {
		return compare(a[m.orderColumn], b[m.orderColumn])
	})
	excess := len(rows) - maxSize
	archive := table + "_archive"
	m.tables[archive] = append(m.tables[archive], rows[:excess]...)
	m.tables[table] = slices.Clone(rows[excess:])
	slog.Debug("memory rotate", slog.String("table", table), slog.Int("archived", excess))
	return true, nil
}

// Insert stores a raw row, bypassing records. Handy for seeding.
func (m *Memory) Insert(table string, row storage.Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table] = append(m.tables[table], maps.Clone(row))
}

func matches(row storage.Row, filter storage.Filter) bool {
	for col, want := range filter {
		if !same(row[col], want) {
			return false
		}
	}
	return true
}

// same compares loosely so that int(1), int64(1) and float64(1) are equal,
// the way a SQL engine would compare them.
func same(a, b any) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func compare(a, b any) int {
	x, xok := number(a)
	y, yok := number(b)
	if xok && yok {
		return cmp.Compare(x, y)
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
