// Package relational provides a SQL implementation of the storage.Storage
// interface using Go's standard database/sql package.
//
// TWO ENGINES, ONE BACKEND
// ────────────────────────
// The same code talks to SQLite (driver "sqlite3", mattn/go-sqlite3) and to
// PostgreSQL (driver "pgx", jackc/pgx stdlib). The statements are identical
// except for placeholders (? versus $1) and the hidden row-identity column
// Rotate uses; see dialect.go.
//
// The blank imports below register both drivers with database/sql.
// Their init() functions do this automatically when the package is loaded;
// we never call anything from them directly.
package relational

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/aanand-mishra/users-api/internal/config"
	"github.com/aanand-mishra/users-api/internal/storage"

	// Blank imports: side-effect only (register "sqlite3" and "pgx").
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Relational is the SQL implementation of storage.Storage and
// storage.Rotator.
//
// It holds one *sql.DB capped at a single open connection: every operation
// shares it and there are no transactions spanning statements.
type Relational struct {
	db          *sql.DB
	dialect     dialect
	orderColumn string
}

// New opens the database described by cfg.Driver and cfg.DSN.
//
// sql.Open does NOT open a real connection yet, so New pings to fail fast
// on a bad DSN.
func New(cfg config.Storage) (*Relational, error) {
	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("relational.New: open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("relational.New: ping: %w", err)
	}

	orderColumn := cfg.OrderColumn
	if orderColumn == "" {
		orderColumn = "datetime"
	}
	return &Relational{db: db, dialect: d, orderColumn: orderColumn}, nil
}

// Close closes the underlying connection.
func (r *Relational) Close() error {
	return r.db.Close()
}

// DB returns the underlying *sql.DB for direct queries (tests, bootstrap).
func (r *Relational) DB() *sql.DB {
	return r.db
}

// ─────────────────────────────────────────────────────────────────────────────
// Save inserts or updates the object's dirty fields.
//
// The object's key decides the statement:
//
//	key value absent  → INSERT INTO t (dirty cols…) VALUES (…)
//	key value present → UPDATE t SET dirty col = ?… WHERE key = value
//
// Driver failures are logged here with the full diagnostic and returned
// as a generic storage error. An UPDATE that matches no row is NotFound.
// ─────────────────────────────────────────────────────────────────────────────
func (r *Relational) Save(ctx context.Context, obj storage.Object) error {
	table, key := obj.TableName(), obj.DBKey()
	updates, err := obj.DBUpdates()
	if err != nil {
		return err
	}

	var query string
	var args []any
	if key.IsNew() {
		query, args = buildInsert(r.dialect, table, updates)
	} else {
		query, args = buildUpdate(r.dialect, table, key, updates)
	}

	res, err := r.exec(ctx, "save", table, query, args)
	if err != nil {
		return err
	}
	if !key.IsNew() {
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return storage.NotFound("save", table)
		}
	}
	return nil
}

// Delete removes the row identified by the object's key.
func (r *Relational) Delete(ctx context.Context, obj storage.Object) error {
	table := obj.TableName()
	query, args := buildDelete(r.dialect, table, obj.DBKey())
	_, err := r.exec(ctx, "delete", table, query, args)
	return err
}

// ─────────────────────────────────────────────────────────────────────────────
// LoadByID returns the first row matching every filter condition.
// Zero rows → storage.ErrNotFound.
// ─────────────────────────────────────────────────────────────────────────────
func (r *Relational) LoadByID(ctx context.Context, table string, filter storage.Filter) (storage.Row, error) {
	query, args := buildSelect(r.dialect, table, filter, true)
	rows, err := r.query(ctx, "load", table, query, args)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, storage.NotFound("load", table)
	}
	return rows[0], nil
}

// LoadList returns every row matching filter; an empty slice when none do.
func (r *Relational) LoadList(ctx context.Context, table string, filter storage.Filter) ([]storage.Row, error) {
	query, args := buildSelect(r.dialect, table, filter, false)
	return r.query(ctx, "list", table, query, args)
}

func (r *Relational) exec(ctx context.Context, op, table, query string, args []any) (sql.Result, error) {
	slog.Debug("relational exec", slog.String("op", op), slog.String("query", query), slog.Any("args", args))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		slog.Error("relational exec failed",
			slog.String("op", op),
			slog.String("query", query),
			slog.String("error", err.Error()))
		return nil, storage.Failed(op, table)
	}
	return res, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// query runs a SELECT and converts every row into a column → value map.
//
// SELECT * means the column list is only known at run time, so each row is
// scanned into a []any of the right width and zipped with rows.Columns().
// Drivers hand TEXT back as []byte in some cases; those become strings.
// ─────────────────────────────────────────────────────────────────────────────
func (r *Relational) query(ctx context.Context, op, table, query string, args []any) ([]storage.Row, error) {
	slog.Debug("relational query", slog.String("op", op), slog.String("query", query), slog.Any("args", args))

	fail := func(step string, err error) ([]storage.Row, error) {
		slog.Error("relational query failed",
			slog.String("op", op),
			slog.String("step", step),
			slog.String("query", query),
			slog.String("error", err.Error()))
		return nil, storage.Failed(op, table)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fail("query", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return fail("columns", err)
	}

	out := make([]storage.Row, 0)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return fail("scan", err)
		}

		row := make(storage.Row, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return fail("rows", err)
	}
	return out, nil
}
