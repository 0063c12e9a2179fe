// Package prompt holds the entities stored by the prompt manager: projects,
// entries, tags and templates.
package prompt

// Sort orders accepted by the entry listing.
const (
	SortUpdatedDesc = "updated_desc"
	SortCreatedDesc = "created_desc"
)

// SnippetLen is the number of characters of the body shown in list views.
const SnippetLen = 100

// Project is a named group of entries.
type Project struct {
	ID        string `json:"id"         db:"id"`
	Name      string `json:"name"       db:"name"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
	UpdatedAt int64  `json:"updated_at" db:"updated_at"`
}

// ProjectSummary is a project annotated with its live entry count.
type ProjectSummary struct {
	ID         string `json:"id"          db:"id"`
	Name       string `json:"name"        db:"name"`
	CreatedAt  int64  `json:"created_at"  db:"created_at"`
	UpdatedAt  int64  `json:"updated_at"  db:"updated_at"`
	EntryCount int    `json:"entry_count" db:"entry_count"`
}

// Entry is a stored prompt with its full body and resolved tag ids.
type Entry struct {
	ID           string   `json:"id"            db:"id"`
	ProjectID    string   `json:"project_id"    db:"project_id"`
	Title        *string  `json:"title"         db:"title"`
	BodyMarkdown string   `json:"body_markdown" db:"body_markdown"`
	SourceJSON   *string  `json:"source_json"   db:"source_json"`
	IsStarred    bool     `json:"is_starred"    db:"is_starred"`
	IsLocked     bool     `json:"is_locked"     db:"is_locked"`
	CreatedAt    int64    `json:"created_at"    db:"created_at"`
	UpdatedAt    int64    `json:"updated_at"    db:"updated_at"`
	TagIDs       []string `json:"tag_ids"       db:"-"`
}

// DisplayTitle returns the title or a placeholder when it is unset.
func (e *Entry) DisplayTitle() string {
	if e.Title == nil || *e.Title == "" {
		return "untitled"
	}

	return *e.Title
}

// EntrySummary is the list-view projection of an entry.
type EntrySummary struct {
	ID        string  `json:"id"         db:"id"`
	ProjectID string  `json:"project_id" db:"project_id"`
	Title     *string `json:"title"      db:"title"`
	Snippet   string  `json:"snippet"    db:"snippet"`
	IsStarred bool    `json:"is_starred" db:"is_starred"`
	IsLocked  bool    `json:"is_locked"  db:"is_locked"`
	CreatedAt int64   `json:"created_at" db:"created_at"`
	UpdatedAt int64   `json:"updated_at" db:"updated_at"`
}

// Tag is a label attachable to many entries.
type Tag struct {
	ID        string  `json:"id"         db:"id"`
	Name      string  `json:"name"       db:"name"`
	Category  *string `json:"category"   db:"category"`
	Color     *string `json:"color"      db:"color"`
	IsDefault bool    `json:"is_default" db:"is_default"`
	CreatedAt int64   `json:"created_at" db:"created_at"`
}

// Template is a reusable body skeleton. A nil ProjectID marks it global.
type Template struct {
	ID           string  `json:"id"            db:"id"`
	ProjectID    *string `json:"project_id"    db:"project_id"`
	Name         string  `json:"name"          db:"name"`
	BodyMarkdown string  `json:"body_markdown" db:"body_markdown"`
	SchemaJSON   *string `json:"schema_json"   db:"schema_json"`
	CreatedAt    int64   `json:"created_at"    db:"created_at"`
	UpdatedAt    int64   `json:"updated_at"    db:"updated_at"`
}

// ProjectExport is a project together with all of its entries, newest first.
type ProjectExport struct {
	Project *Project `json:"project"`
	Entries []*Entry `json:"entries"`
}
