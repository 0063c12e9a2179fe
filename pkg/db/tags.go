package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/mateconpizza/pm/pkg/prompt"
)

// ListTags returns all tags grouped by category, then by name.
func (r *SQLite) ListTags(ctx context.Context) ([]*prompt.Tag, error) {
	if err := r.ensureOpen(); err != nil {
		return nil, err
	}

	ts := make([]*prompt.Tag, 0)
	err := r.DB.SelectContext(ctx, &ts, `
		SELECT id, name, category, color, is_default, created_at
		FROM tags
		ORDER BY
			CASE category
				WHEN ? THEN 1
				WHEN ? THEN 2
				WHEN ? THEN 3
				ELSE 4
			END,
			name`, CategoryPhase, CategoryTarget, CategoryNature)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	return ts, nil
}

// CreateTag inserts a user tag and returns its id. Names are unique across
// all tags.
func (r *SQLite) CreateTag(ctx context.Context, name string, category, color *string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid(prompt.ErrNameEmpty)
	}

	var id string
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		taken, err := exists(ctx, tx, "SELECT COUNT(*) FROM tags WHERE name = ?", name)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: %q", ErrTagExists, name)
		}

		id = r.newID()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO tags (id, name, category, color, is_default, created_at)
			VALUES (?, ?, ?, ?, 0, ?)`,
			id, name, prompt.NullIfEmpty(category), prompt.NullIfEmpty(color), r.clock.Now())
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %q", ErrTagExists, name)
		}
		if err != nil {
			return fmt.Errorf("insert tag: %w", err)
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	slog.Debug("tag created", "id", id, "name", name)

	return id, nil
}

// DeleteTag removes a user tag and its relations. Default tags are refused.
func (r *SQLite) DeleteTag(ctx context.Context, id string) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var isDefault bool
		err := tx.GetContext(ctx, &isDefault, "SELECT is_default FROM tags WHERE id = ?", id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %q", ErrTagNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("lookup tag: %w", err)
		}

		if isDefault {
			return fmt.Errorf("%w: %q", ErrDefaultTag, id)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM tags WHERE id = ?", id); err != nil {
			return fmt.Errorf("delete tag: %w", err)
		}

		return nil
	})
}

// AttachTags replaces the tag set of an entry. Timestamps are not modified.
func (r *SQLite) AttachTags(ctx context.Context, entryID string, tagIDs []string) error {
	tagIDs = prompt.UniqueIDs(tagIDs)

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		ok, err := exists(ctx, tx, "SELECT COUNT(*) FROM prompt_entries WHERE id = ?", entryID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %q", ErrEntryNotFound, entryID)
		}

		return replaceEntryTags(ctx, tx, entryID, tagIDs)
	})
}

// replaceEntryTags deletes every relation of the entry and inserts one per
// tag id. Unknown tag ids fail before anything is written.
func replaceEntryTags(ctx context.Context, tx *sqlx.Tx, entryID string, tagIDs []string) error {
	if err := checkTagsExist(ctx, tx, tagIDs); err != nil {
		return err
	}

	slog.Debug("replacing entry tags", "entry", entryID, "tags", tagIDs)

	if _, err := tx.ExecContext(ctx, "DELETE FROM prompt_entry_tags WHERE prompt_entry_id = ?", entryID); err != nil {
		return fmt.Errorf("clear entry tags: %w", err)
	}

	if len(tagIDs) == 0 {
		return nil
	}

	stmt, err := tx.PreparexContext(ctx,
		"INSERT INTO prompt_entry_tags (prompt_entry_id, tag_id) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("entry tags: %w: prepared statement", err)
	}

	defer func() {
		if err := stmt.Close(); err != nil {
			slog.Error("entry tags: closing stmt", "error", err)
		}
	}()

	for _, tagID := range tagIDs {
		if _, err := stmt.ExecContext(ctx, entryID, tagID); err != nil {
			return fmt.Errorf("insert entry tag %q: %w", tagID, err)
		}
	}

	return nil
}

// checkTagsExist fails with ErrTagNotFound naming the first unknown id.
func checkTagsExist(ctx context.Context, tx *sqlx.Tx, tagIDs []string) error {
	if len(tagIDs) == 0 {
		return nil
	}

	q, args, err := sqlx.In("SELECT id FROM tags WHERE id IN (?)", tagIDs)
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	var found []string
	if err := tx.SelectContext(ctx, &found, tx.Rebind(q), args...); err != nil {
		return fmt.Errorf("lookup tags: %w", err)
	}

	if len(found) == len(tagIDs) {
		return nil
	}

	known := make(map[string]struct{}, len(found))
	for _, id := range found {
		known[id] = struct{}{}
	}

	for _, id := range tagIDs {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("%w: %q", ErrTagNotFound, id)
		}
	}

	return nil
}
