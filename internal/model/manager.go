package model

import (
	"cmp"
	"context"
	"slices"

	"github.com/aanand-mishra/users-api/internal/storage"
)

// GetUser loads the first user matching filter.
func GetUser(ctx context.Context, s storage.Storage, filter storage.Filter) (*User, error) {
	return getOne(ctx, s, UsersTable, filter, userFromRow)
}

// ListUsers loads every user matching filter.
func ListUsers(ctx context.Context, s storage.Storage, filter storage.Filter) ([]*User, error) {
	return getMany(ctx, s, UsersTable, filter, userFromRow)
}

// ListAudit loads every audit entry matching filter, oldest first.
func ListAudit(ctx context.Context, s storage.Storage, filter storage.Filter) ([]*Audit, error) {
	entries, err := getMany(ctx, s, AuditTable, filter, auditFromRow)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(entries, func(a, b *Audit) int {
		return cmp.Compare(a.Datetime(), b.Datetime())
	})
	return entries, nil
}

func getOne[T any](ctx context.Context, s storage.Storage, table string, filter storage.Filter, build func(storage.Storage, storage.Row) T) (T, error) {
	row, err := s.LoadByID(ctx, table, filter)
	if err != nil {
		var zero T
		return zero, err
	}
	return build(s, row), nil
}

func getMany[T any](ctx context.Context, s storage.Storage, table string, filter storage.Filter, build func(storage.Storage, storage.Row) T) ([]T, error) {
	rows, err := s.LoadList(ctx, table, filter)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		out = append(out, build(s, row))
	}
	return out, nil
}
