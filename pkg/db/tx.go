package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// WithTx executes a function within a transaction. The transaction is rolled
// back when fn fails or panics.
func (r *SQLite) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	if err := r.ensureOpen(); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()

			panic(p)
		} else if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("rollback error", "error", err)
		}
	}()

	if err := fn(tx); err != nil {
		return fmt.Errorf("fn transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}

	return nil
}

// exists reports whether a row matching q exists.
func exists(ctx context.Context, q sqlx.QueryerContext, query string, args ...any) (bool, error) {
	var n int
	if err := sqlx.GetContext(ctx, q, &n, query, args...); err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}

	return n > 0, nil
}

// touchProject refreshes the project's updated_at.
func touchProject(ctx context.Context, tx *sqlx.Tx, projectID string, now int64) error {
	_, err := tx.ExecContext(ctx, "UPDATE projects SET updated_at = ? WHERE id = ?", now, projectID)
	if err != nil {
		return fmt.Errorf("touch project: %w", err)
	}

	return nil
}
