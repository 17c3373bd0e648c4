package relational

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aanand-mishra/users-api/internal/storage"
)

// ─────────────────────────────────────────────────────────────────────────────
// Rotate keeps the newest maxSize rows of table and moves the older ones to
// "<table>_archive", which must have the same columns in the same order.
//
// It runs three separate statements without a transaction:
//
//  1. SELECT COUNT(*)                     fewer than maxSize rows → no-op
//  2. INSERT INTO archive SELECT oldest   copy
//  3. DELETE oldest                       then remove
//
// Copy happens before delete, so a crash between 2 and 3 leaves the rows in
// both tables (duplicated) rather than in neither (lost). Running Rotate
// again after such a crash archives them a second time.
//
// "Oldest" is ordered by the configured timestamp column with the engine's
// row identity as tie-breaker, so steps 2 and 3 select the same rows.
// ─────────────────────────────────────────────────────────────────────────────
func (r *Relational) Rotate(ctx context.Context, table string, maxSize int) (bool, error) {
	rows, err := r.query(ctx, "rotate", table, "SELECT COUNT(*) AS n FROM "+quote(table), nil)
	if err != nil {
		return false, err
	}
	count, err := countOf(rows)
	if err != nil {
		slog.Error("relational rotate count", slog.String("table", table), slog.String("error", err.Error()))
		return false, storage.Failed("rotate", table)
	}
	if count < int64(maxSize) {
		return false, nil
	}

	excess := count - int64(maxSize)
	slog.Debug("relational rotate",
		slog.String("table", table),
		slog.Int64("count", count),
		slog.Int("max", maxSize),
		slog.Int64("archiving", excess))
	if excess == 0 {
		return true, nil
	}

	copyQuery, copyArgs := r.buildArchiveCopy(table, excess)
	if _, err := r.exec(ctx, "rotate", table, copyQuery, copyArgs); err != nil {
		return false, err
	}
	deleteQuery, deleteArgs := r.buildArchiveDelete(table, excess)
	if _, err := r.exec(ctx, "rotate", table, deleteQuery, deleteArgs); err != nil {
		return false, err
	}
	return true, nil
}

// oldest selects the row identities of the n oldest rows of table.
func (r *Relational) oldest(s *statement, table string, n int64) string {
	id := r.dialect.rowID
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY %s ASC, %s ASC LIMIT %s",
		id, quote(table), quote(r.orderColumn), id, s.arg(n))
}

func (r *Relational) buildArchiveCopy(table string, n int64) (string, []any) {
	s := &statement{d: r.dialect}
	q := fmt.Sprintf("INSERT INTO %s SELECT * FROM %s WHERE %s IN (%s)",
		quote(table+"_archive"), quote(table), r.dialect.rowID, r.oldest(s, table, n))
	return q, s.args
}

func (r *Relational) buildArchiveDelete(table string, n int64) (string, []any) {
	s := &statement{d: r.dialect}
	q := fmt.Sprintf("DELETE FROM %s WHERE %s IN (%s)",
		quote(table), r.dialect.rowID, r.oldest(s, table, n))
	return q, s.args
}

func countOf(rows []storage.Row) (int64, error) {
	if len(rows) != 1 {
		return 0, fmt.Errorf("count returned %d rows", len(rows))
	}
	switch n := rows[0]["n"].(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	}
	return 0, fmt.Errorf("count returned %T", rows[0]["n"])
}
