package prompt

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNameEmpty      = errors.New("name cannot be empty")
	ErrBodyEmpty      = errors.New("body cannot be empty")
	ErrProjectIDEmpty = errors.New("project id cannot be empty")
	ErrEntryIDEmpty   = errors.New("entry id cannot be empty")
	ErrInvalidSort    = errors.New("invalid sort order")
)

// Filters narrows an entry listing.
type Filters struct {
	TagIDs  []string `json:"tag_ids,omitempty"`
	Starred bool     `json:"starred,omitempty"`
}

// ListParams describes an entry listing. Predicates are combined with AND.
type ListParams struct {
	ProjectID string  `json:"project_id"`
	Query     string  `json:"query,omitempty"`
	Filters   Filters `json:"filters"`
	Sort      string  `json:"sort,omitempty"`
}

// Validate checks the listing parameters and fills the default sort order.
func (p *ListParams) Validate() error {
	if p.ProjectID == "" {
		return ErrProjectIDEmpty
	}

	switch p.Sort {
	case "":
		p.Sort = SortUpdatedDesc
	case SortUpdatedDesc, SortCreatedDesc:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSort, p.Sort)
	}

	return nil
}

// UpsertEntryParams creates an entry when ID is empty and updates it
// otherwise. TagIDs replaces the entry's whole tag set.
type UpsertEntryParams struct {
	ID           string   `json:"id,omitempty"`
	ProjectID    string   `json:"project_id"`
	Title        *string  `json:"title,omitempty"`
	BodyMarkdown string   `json:"body_markdown"`
	SourceJSON   *string  `json:"source_json,omitempty"`
	IsStarred    bool     `json:"is_starred,omitempty"`
	IsLocked     bool     `json:"is_locked,omitempty"`
	TagIDs       []string `json:"tag_ids,omitempty"`
}

// Validate checks the required fields. The project id is only required when
// creating.
func (p *UpsertEntryParams) Validate() error {
	if p.ID == "" && p.ProjectID == "" {
		return ErrProjectIDEmpty
	}

	if p.BodyMarkdown == "" {
		return ErrBodyEmpty
	}

	return nil
}

// UpsertTemplateParams creates a template when ID is empty and updates it
// otherwise. A nil ProjectID on creation marks the template global.
type UpsertTemplateParams struct {
	ID           string  `json:"id,omitempty"`
	ProjectID    *string `json:"project_id,omitempty"`
	Name         string  `json:"name"`
	BodyMarkdown string  `json:"body_markdown"`
	SchemaJSON   *string `json:"schema_json,omitempty"`
}

func (p *UpsertTemplateParams) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameEmpty
	}

	return nil
}

// NullIfEmpty returns nil for a nil or empty string so optional columns are
// stored as NULL.
func NullIfEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}

	return s
}

// StrPtr returns a pointer to s.
func StrPtr(s string) *string {
	return &s
}

// UniqueIDs returns ids without blanks and duplicates, keeping first-seen
// order.
func UniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}
