package db

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/mateconpizza/pm/pkg/prompt"
)

const entrySummaryColumns = `
	SELECT DISTINCT pe.id, pe.project_id, pe.title, pe.created_at, pe.updated_at,
	       pe.is_starred, pe.is_locked, SUBSTR(pe.body_markdown, 1, 100) AS snippet
	FROM prompt_entries pe`

var sortColumns = map[string]string{
	prompt.SortUpdatedDesc: "pe.updated_at",
	prompt.SortCreatedDesc: "pe.created_at",
}

// predicate is one WHERE condition and its bound values.
type predicate struct {
	sql  string
	args []any
}

// entryQuery builds the entry listing SQL. Conditions are joined with AND and
// every user value is bound as a parameter.
type entryQuery struct {
	where   []predicate
	orderBy string
}

// newEntryQuery translates validated listing params into a query.
func newEntryQuery(p *prompt.ListParams) (*entryQuery, error) {
	col, ok := sortColumns[p.Sort]
	if !ok {
		return nil, fmt.Errorf("%w: %q", prompt.ErrInvalidSort, p.Sort)
	}

	q := &entryQuery{orderBy: col + " DESC"}
	q.and("pe.project_id = ?", p.ProjectID)

	// blankness is checked on the trimmed text, matching uses it as given.
	if strings.TrimSpace(p.Query) != "" {
		like := "%" + escapeLike(p.Query) + "%"
		q.and(`(pe.title LIKE ? ESCAPE '\' OR pe.body_markdown LIKE ? ESCAPE '\')`, like, like)
	}

	if p.Filters.Starred {
		q.and("pe.is_starred = 1")
	}

	if ids := prompt.UniqueIDs(p.Filters.TagIDs); len(ids) > 0 {
		q.and("pe.id IN (SELECT prompt_entry_id FROM prompt_entry_tags WHERE tag_id IN (?))", ids)
	}

	return q, nil
}

func (q *entryQuery) and(sql string, args ...any) {
	q.where = append(q.where, predicate{sql: sql, args: args})
}

// build returns the final SQL with slice arguments expanded.
func (q *entryQuery) build() (string, []any, error) {
	var sb strings.Builder
	sb.WriteString(entrySummaryColumns)

	args := make([]any, 0, len(q.where))
	for i, p := range q.where {
		if i == 0 {
			sb.WriteString("\n\tWHERE ")
		} else {
			sb.WriteString("\n\t  AND ")
		}
		sb.WriteString(p.sql)
		args = append(args, p.args...)
	}

	sb.WriteString("\n\tORDER BY ")
	sb.WriteString(q.orderBy)

	query, args, err := sqlx.In(sb.String(), args...)
	if err != nil {
		return "", nil, fmt.Errorf("build entry query: %w", err)
	}

	return query, args, nil
}

// escapeLike escapes LIKE wildcards so the text matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
