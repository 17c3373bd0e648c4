package relational

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
)

//go:embed schema.sql
var schemaSQL string

// InitSchema creates the users, audit and audit_archive tables if they do
// not exist yet. CREATE TABLE IF NOT EXISTS makes it safe to run on every
// start.
//
// Statements are executed one by one because not every driver accepts
// several statements in a single Exec.
func (r *Relational) InitSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		slog.Debug("relational schema", slog.String("statement", stmt))
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("relational.InitSchema: %w", err)
		}
	}
	return nil
}
