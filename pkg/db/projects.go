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

// ListProjects returns all projects, most recently updated first, with their
// live entry count.
func (r *SQLite) ListProjects(ctx context.Context) ([]*prompt.ProjectSummary, error) {
	if err := r.ensureOpen(); err != nil {
		return nil, err
	}

	ps := make([]*prompt.ProjectSummary, 0)
	err := r.DB.SelectContext(ctx, &ps, `
		SELECT p.id, p.name, p.created_at, p.updated_at, COUNT(pe.id) AS entry_count
		FROM projects p
		LEFT JOIN prompt_entries pe ON pe.project_id = p.id
		GROUP BY p.id
		ORDER BY p.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	return ps, nil
}

// CreateProject inserts a project and returns its id.
func (r *SQLite) CreateProject(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid(prompt.ErrNameEmpty)
	}

	if err := r.ensureOpen(); err != nil {
		return "", err
	}

	id := r.newID()
	now := r.clock.Now()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO projects (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)",
		id, name, now, now)
	if err != nil {
		return "", fmt.Errorf("create project: %w", err)
	}

	slog.Debug("project created", "id", id, "name", name)

	return id, nil
}

// UpdateProject renames a project. An unknown id is not an error.
func (r *SQLite) UpdateProject(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid(prompt.ErrNameEmpty)
	}

	if err := r.ensureOpen(); err != nil {
		return err
	}

	res, err := r.DB.ExecContext(ctx,
		"UPDATE projects SET name = ?, updated_at = ? WHERE id = ?",
		name, r.clock.Now(), id)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		slog.Debug("update project: no rows affected", "id", id)
	}

	return nil
}

// DeleteProject removes a project together with its entries and templates.
func (r *SQLite) DeleteProject(ctx context.Context, id string) error {
	if err := r.ensureOpen(); err != nil {
		return err
	}

	slog.Debug("deleting project", "id", id)

	if _, err := r.DB.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	return nil
}

// GetProject returns a project by id.
func (r *SQLite) GetProject(ctx context.Context, id string) (*prompt.Project, error) {
	if err := r.ensureOpen(); err != nil {
		return nil, err
	}

	return getProject(ctx, r.DB, id)
}

func getProject(ctx context.Context, q sqlx.QueryerContext, id string) (*prompt.Project, error) {
	var p prompt.Project
	err := sqlx.GetContext(ctx, q, &p,
		"SELECT id, name, created_at, updated_at FROM projects WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrProjectNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	return &p, nil
}

// ExportProject returns a project with all its entries, newest first.
func (r *SQLite) ExportProject(ctx context.Context, id string) (*prompt.ProjectExport, error) {
	out := &prompt.ProjectExport{}
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		p, err := getProject(ctx, tx, id)
		if err != nil {
			return err
		}
		out.Project = p

		entries := make([]*prompt.Entry, 0)
		err = tx.SelectContext(ctx, &entries, `
			SELECT id, project_id, title, body_markdown, source_json, is_starred,
			       is_locked, created_at, updated_at
			FROM prompt_entries
			WHERE project_id = ?
			ORDER BY created_at DESC`, id)
		if err != nil {
			return fmt.Errorf("export entries: %w", err)
		}

		tagsByEntry, err := projectEntryTags(ctx, tx, id)
		if err != nil {
			return err
		}

		for _, e := range entries {
			e.TagIDs = tagsByEntry[e.ID]
			if e.TagIDs == nil {
				e.TagIDs = []string{}
			}
		}
		out.Entries = entries

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// projectEntryTags returns the tag ids of every entry in a project, keyed by
// entry id.
func projectEntryTags(ctx context.Context, tx *sqlx.Tx, projectID string) (map[string][]string, error) {
	var rows []struct {
		EntryID string `db:"prompt_entry_id"`
		TagID   string `db:"tag_id"`
	}

	err := tx.SelectContext(ctx, &rows, `
		SELECT pet.prompt_entry_id, pet.tag_id
		FROM prompt_entry_tags pet
		JOIN prompt_entries pe ON pe.id = pet.prompt_entry_id
		WHERE pe.project_id = ?
		ORDER BY pet.tag_id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("project entry tags: %w", err)
	}

	m := make(map[string][]string, len(rows))
	for _, row := range rows {
		m[row.EntryID] = append(m[row.EntryID], row.TagID)
	}

	return m, nil
}
