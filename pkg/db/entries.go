package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/mateconpizza/pm/pkg/prompt"
)

// ListEntries returns entry summaries of a project matching p.
func (r *SQLite) ListEntries(ctx context.Context, p *prompt.ListParams) ([]*prompt.EntrySummary, error) {
	if err := p.Validate(); err != nil {
		return nil, invalid(err)
	}

	if err := r.ensureOpen(); err != nil {
		return nil, err
	}

	eq, err := newEntryQuery(p)
	if err != nil {
		return nil, invalid(err)
	}

	q, args, err := eq.build()
	if err != nil {
		return nil, err
	}

	es := make([]*prompt.EntrySummary, 0)
	if err := r.DB.SelectContext(ctx, &es, r.DB.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	return es, nil
}

// GetEntry returns the full entry with its tag ids.
func (r *SQLite) GetEntry(ctx context.Context, id string) (*prompt.Entry, error) {
	var e *prompt.Entry
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		e, err = getEntry(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return e, nil
}

func getEntry(ctx context.Context, tx *sqlx.Tx, id string) (*prompt.Entry, error) {
	var e prompt.Entry
	err := tx.GetContext(ctx, &e, `
		SELECT id, project_id, title, body_markdown, source_json, is_starred,
		       is_locked, created_at, updated_at
		FROM prompt_entries
		WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrEntryNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}

	e.TagIDs = make([]string, 0)
	err = tx.SelectContext(ctx, &e.TagIDs,
		"SELECT tag_id FROM prompt_entry_tags WHERE prompt_entry_id = ? ORDER BY tag_id", id)
	if err != nil {
		return nil, fmt.Errorf("get entry tags: %w", err)
	}

	return &e, nil
}

// ExportEntry returns the entry to be written by an exporter.
func (r *SQLite) ExportEntry(ctx context.Context, id string) (*prompt.Entry, error) {
	return r.GetEntry(ctx, id)
}

// UpsertEntry creates the entry when p.ID is empty, updates it otherwise, and
// replaces its tag set. The owning project's updated_at is refreshed. All of
// it happens in a single transaction.
func (r *SQLite) UpsertEntry(ctx context.Context, p *prompt.UpsertEntryParams) (string, error) {
	if err := p.Validate(); err != nil {
		return "", invalid(err)
	}

	tagIDs := prompt.UniqueIDs(p.TagIDs)
	title := prompt.NullIfEmpty(p.Title)
	source := prompt.NullIfEmpty(p.SourceJSON)

	var id string
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		now := r.clock.Now()
		projectID := p.ProjectID

		if p.ID == "" {
			ok, err := exists(ctx, tx, "SELECT COUNT(*) FROM projects WHERE id = ?", projectID)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %q", ErrProjectNotFound, projectID)
			}

			id = r.newID()
			_, err = tx.ExecContext(ctx, `
				INSERT INTO prompt_entries (
					id, project_id, title, body_markdown, source_json,
					is_starred, is_locked, created_at, updated_at
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				id, projectID, title, p.BodyMarkdown, source,
				p.IsStarred, p.IsLocked, now, now)
			if err != nil {
				return fmt.Errorf("insert entry: %w", err)
			}
		} else {
			id = p.ID
			err := tx.GetContext(ctx, &projectID, "SELECT project_id FROM prompt_entries WHERE id = ?", id)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: %q", ErrEntryNotFound, id)
			}
			if err != nil {
				return fmt.Errorf("lookup entry: %w", err)
			}

			_, err = tx.ExecContext(ctx, `
				UPDATE prompt_entries
				SET title = ?, body_markdown = ?, source_json = ?,
				    is_starred = ?, is_locked = ?, updated_at = ?
				WHERE id = ?`,
				title, p.BodyMarkdown, source, p.IsStarred, p.IsLocked, now, id)
			if err != nil {
				return fmt.Errorf("update entry: %w", err)
			}
		}

		if err := replaceEntryTags(ctx, tx, id, tagIDs); err != nil {
			return err
		}

		return touchProject(ctx, tx, projectID, now)
	})
	if err != nil {
		return "", err
	}

	slog.Debug("entry saved", "id", id, "tags", len(tagIDs))

	return id, nil
}

// DeleteEntry removes an entry and its tag relations.
func (r *SQLite) DeleteEntry(ctx context.Context, id string) error {
	if err := r.ensureOpen(); err != nil {
		return err
	}

	if _, err := r.DB.ExecContext(ctx, "DELETE FROM prompt_entries WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	return nil
}

// SetStarred sets the starred flag. updated_at is left untouched.
func (r *SQLite) SetStarred(ctx context.Context, id string, v bool) error {
	return r.setFlag(ctx, "is_starred", id, v)
}

// SetLocked sets the locked flag. updated_at is left untouched.
func (r *SQLite) SetLocked(ctx context.Context, id string, v bool) error {
	return r.setFlag(ctx, "is_locked", id, v)
}

func (r *SQLite) setFlag(ctx context.Context, column, id string, v bool) error {
	if err := r.ensureOpen(); err != nil {
		return err
	}

	q := fmt.Sprintf("UPDATE prompt_entries SET %s = ? WHERE id = ?", column)
	res, err := r.DB.ExecContext(ctx, q, v, id)
	if err != nil {
		return fmt.Errorf("set %s: %w", column, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set %s: %w", column, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrEntryNotFound, id)
	}

	return nil
}
