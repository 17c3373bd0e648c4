package model

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aanand-mishra/users-api/internal/storage"
)

// AuditTable holds Audit rows; AuditTable + "_archive" holds rotated ones.
const AuditTable = "audit"

var auditFields = []string{"uuid", "username", "message", "datetime"}

// Audit is one trail entry about a user. Entries are append-only.
type Audit struct {
	*Base
}

// NewAudit builds an Audit from stored values.
func NewAudit(store storage.Storage, id, username, message, datetime any) *Audit {
	return newAudit(store, false, id, username, message, datetime)
}

// CreateAudit builds a new Audit from request data. uuid and datetime are
// generated when missing.
func CreateAudit(store storage.Storage, data map[string]any) (*Audit, error) {
	if err := checkDeclared(data, auditFields); err != nil {
		return nil, err
	}
	id, datetime := data["uuid"], data["datetime"]
	if id == nil {
		id = uuid.NewString()
	}
	if datetime == nil {
		datetime = time.Now().Unix()
	}
	return newAudit(store, true, id, data["username"], data["message"], datetime), nil
}

// NewAuditEntry is a new Audit about username, stamped now.
func NewAuditEntry(store storage.Storage, username, message string) *Audit {
	return newAudit(store, true, uuid.NewString(), username, message, time.Now().Unix())
}

func auditFromRow(store storage.Storage, row storage.Row) *Audit {
	return NewAudit(store, row["uuid"], row["username"], row["message"], row["datetime"])
}

func newAudit(store storage.Storage, isNew bool, id, username, message, datetime any) *Audit {
	return &Audit{Base: newBase(store, AuditTable, "uuid", isNew,
		NewField("uuid", id, ReadOnly()),
		NewField("username", username),
		NewField("message", message),
		NewField("datetime", datetime, As(Int), WithValidator(Numeric{Min: Bound(0)})),
	)}
}

// Datetime returns the entry's Unix timestamp, or 0 when the stored value
// is not an integer.
func (a *Audit) Datetime() int64 {
	f, _ := a.Field("datetime")
	v, err := f.Value()
	if err != nil {
		return 0
	}
	return v.(int64)
}

// Delete always fails: audit entries leave the live table only by rotation.
func (a *Audit) Delete(context.Context) error {
	return modelErrorf("audit records cannot be deleted")
}
