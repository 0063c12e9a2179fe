package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/mateconpizza/pm/pkg/prompt"
)

const templateColumns = `
	SELECT id, project_id, name, body_markdown, schema_json, created_at, updated_at
	FROM prompt_templates`

// ListTemplates returns the project's templates plus the global ones, newest
// first. An empty projectID returns only global templates.
func (r *SQLite) ListTemplates(ctx context.Context, projectID string) ([]*prompt.Template, error) {
	if err := r.ensureOpen(); err != nil {
		return nil, err
	}

	var (
		q    string
		args []any
	)

	if projectID == "" {
		q = templateColumns + " WHERE project_id IS NULL ORDER BY created_at DESC"
	} else {
		q = templateColumns + " WHERE project_id = ? OR project_id IS NULL ORDER BY created_at DESC"
		args = append(args, projectID)
	}

	ts := make([]*prompt.Template, 0)
	if err := r.DB.SelectContext(ctx, &ts, q, args...); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	return ts, nil
}

// GetTemplate returns a template by id.
func (r *SQLite) GetTemplate(ctx context.Context, id string) (*prompt.Template, error) {
	if err := r.ensureOpen(); err != nil {
		return nil, err
	}

	var t prompt.Template
	err := r.DB.GetContext(ctx, &t, templateColumns+" WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}

	return &t, nil
}

// UpsertTemplate creates a template when p.ID is empty and updates its name,
// body and schema otherwise. The owning project is fixed at creation.
func (r *SQLite) UpsertTemplate(ctx context.Context, p *prompt.UpsertTemplateParams) (string, error) {
	if err := p.Validate(); err != nil {
		return "", invalid(err)
	}

	name := strings.TrimSpace(p.Name)
	schema := prompt.NullIfEmpty(p.SchemaJSON)

	var id string
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		now := r.clock.Now()

		if p.ID != "" {
			id = p.ID
			res, err := tx.ExecContext(ctx, `
				UPDATE prompt_templates
				SET name = ?, body_markdown = ?, schema_json = ?, updated_at = ?
				WHERE id = ?`,
				name, p.BodyMarkdown, schema, now, id)
			if err != nil {
				return fmt.Errorf("update template: %w", err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
			}

			return nil
		}

		projectID := prompt.NullIfEmpty(p.ProjectID)
		if projectID != nil {
			ok, err := exists(ctx, tx, "SELECT COUNT(*) FROM projects WHERE id = ?", *projectID)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %q", ErrProjectNotFound, *projectID)
			}
		}

		id = r.newID()
		_, err := tx.ExecContext(ctx, `
			INSERT INTO prompt_templates (
				id, project_id, name, body_markdown, schema_json, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, projectID, name, p.BodyMarkdown, schema, now, now)
		if err != nil {
			return fmt.Errorf("insert template: %w", err)
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	return id, nil
}

// DeleteTemplate removes a template. Unknown ids are ignored.
func (r *SQLite) DeleteTemplate(ctx context.Context, id string) error {
	if err := r.ensureOpen(); err != nil {
		return err
	}

	if _, err := r.DB.ExecContext(ctx, "DELETE FROM prompt_templates WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}

	return nil
}
