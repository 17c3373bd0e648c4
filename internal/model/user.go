package model

import (
	"context"
	"fmt"
	"slices"

	"github.com/aanand-mishra/users-api/internal/storage"
)

// UsersTable holds User rows: username, password, gender, deleted.
const UsersTable = "users"

var userFields = []string{"username", "password", "gender", "deleted"}

// Genders accepted by User.
var Genders = []any{"male", "female", "other"}

// User is an account. Users are never removed: Delete sets the hidden
// deleted flag and writes an audit entry.
type User struct {
	*Base
}

// NewUser builds a User from stored values (not new, nothing dirty).
func NewUser(store storage.Storage, username, password, gender, deleted any) *User {
	return newUser(store, false, username, password, gender, deleted)
}

// CreateUser builds a new User from request data. Every declared field is
// dirty; deleted defaults to 0.
func CreateUser(store storage.Storage, data map[string]any) (*User, error) {
	if err := checkDeclared(data, userFields); err != nil {
		return nil, err
	}
	return newUser(store, true, data["username"], data["password"], data["gender"], data["deleted"]), nil
}

func userFromRow(store storage.Storage, row storage.Row) *User {
	return NewUser(store, row["username"], row["password"], row["gender"], row["deleted"])
}

func newUser(store storage.Storage, isNew bool, username, password, gender, deleted any) *User {
	if deleted == nil {
		deleted = 0
	}
	return &User{Base: newBase(store, UsersTable, "username", isNew,
		NewField("username", username, ReadOnly(), Unique()),
		NewField("password", password, WithValidator(DefaultPassword)),
		NewField("gender", gender, WithValidator(Enum{Allowed: Genders})),
		NewField("deleted", deleted, As(Int), Hidden(),
			WithValidator(Enum{Allowed: []any{int64(0), int64(1)}})),
	)}
}

// Username returns the coerced username.
func (u *User) Username() string {
	f, _ := u.Field("username")
	v, err := f.Value()
	if err != nil {
		return fmt.Sprint(f.Raw())
	}
	return v.(string)
}

// Delete flags the user as deleted, saves it, then records an audit entry.
//
// The two writes are not atomic. If the audit write fails the user stays
// deleted and the audit error is returned.
func (u *User) Delete(ctx context.Context) error {
	if u.isNew {
		return modelErrorf("%s was never saved", u.table)
	}
	if err := u.Update("deleted", 1); err != nil {
		return err
	}
	if err := u.Save(ctx); err != nil {
		return err
	}
	name := u.Username()
	entry := NewAuditEntry(u.store, name, fmt.Sprintf("user %s deleted", name))
	return entry.Save(ctx)
}

func checkDeclared(data map[string]any, declared []string) error {
	for name := range data {
		if !slices.Contains(declared, name) {
			return modelErrorf("Field %s cannot be updated", name)
		}
	}
	return nil
}
