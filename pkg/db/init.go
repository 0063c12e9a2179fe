package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// tablesAndSchemas all tables and their schema, parents first.
var tablesAndSchemas = []Schema{
	schemaProjects,
	schemaEntries,
	schemaTags,
	schemaRelation,
	schemaTemplates,
}

// Init creates the required tables and indexes when missing and seeds the
// default tags. It is safe to call on every start.
func (r *SQLite) Init(ctx context.Context) error {
	if err := r.ensureOpen(); err != nil {
		return err
	}

	// has no effect inside a transaction.
	if _, err := r.DB.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enabling foreign keys: %w", err)
	}

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, s := range tablesAndSchemas {
			if err := r.tableCreate(ctx, tx, s.Name, s.SQL); err != nil {
				return fmt.Errorf("creating %q table: %w", s.Name, err)
			}

			for _, idx := range s.Index {
				if _, err := tx.ExecContext(ctx, idx); err != nil {
					return fmt.Errorf("creating %q index: %w", s.Name, err)
				}
			}
		}

		if !r.Cfg.SeedDefaults {
			return nil
		}

		return r.seedDefaultTags(ctx, tx)
	})
}

// tableCreate creates a new table with the specified name in the SQLite database.
func (r *SQLite) tableCreate(ctx context.Context, tx *sqlx.Tx, name Table, schema string) error {
	slog.Debug("creating table", "name", name)

	_, err := tx.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("error creating table: %w", err)
	}

	return nil
}

// seedDefaultTags inserts the default tag catalog, skipping names that already
// exist.
func (r *SQLite) seedDefaultTags(ctx context.Context, tx *sqlx.Tx) error {
	stmt, err := tx.PreparexContext(ctx, `
		INSERT OR IGNORE INTO tags (id, name, category, color, is_default, created_at)
		VALUES (?, ?, ?, ?, 1, ?)`)
	if err != nil {
		return fmt.Errorf("seed tags: %w: prepared statement", err)
	}

	defer func() {
		if err := stmt.Close(); err != nil {
			slog.Error("seed tags: closing stmt", "error", err)
		}
	}()

	var seeded int64
	now := r.clock.Now()
	for _, t := range defaultTags {
		res, err := stmt.ExecContext(ctx, r.newID(), t.Name, t.Category, t.Color, now)
		if err != nil {
			return fmt.Errorf("seed tag %q: %w", t.Name, err)
		}

		n, _ := res.RowsAffected()
		seeded += n
	}

	slog.Debug("default tags seeded", "inserted", seeded, "catalog", len(defaultTags))

	return nil
}

// tableExists checks whether a table with the specified name exists in the SQLite database.
func (r *SQLite) tableExists(ctx context.Context, t Table) (bool, error) {
	var count int
	err := r.DB.GetContext(ctx, &count, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name = ?", t)
	if err != nil {
		slog.Error("checking if table exists", "name", t, "error", err)
		return false, fmt.Errorf("tableExists: %w", err)
	}

	return count > 0, nil
}

// IsInitialized reports whether every table exists.
func (r *SQLite) IsInitialized(ctx context.Context) (bool, error) {
	for _, s := range tablesAndSchemas {
		exists, err := r.tableExists(ctx, s.Name)
		if err != nil {
			return false, err
		}

		if !exists {
			slog.Warn("table does not exist", "name", s.Name)
			return false, nil
		}
	}

	return true, nil
}
