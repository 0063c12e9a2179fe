// Package dispatch maps named operations with JSON parameters onto the store.
// It is the call surface shared by the CLI and the JSON-lines server.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/mateconpizza/pm/pkg/db"
	"github.com/mateconpizza/pm/pkg/prompt"
)

var (
	ErrUnknownOp       = errors.New("unknown operation")
	ErrNoCollaborator  = errors.New("operation not available")
	ErrMissingArgument = fmt.Errorf("%w: missing argument", db.ErrInvalid)
)

// Store is the persistence surface the dispatcher relies on.
type Store interface {
	ListProjects(ctx context.Context) ([]*prompt.ProjectSummary, error)
	CreateProject(ctx context.Context, name string) (string, error)
	UpdateProject(ctx context.Context, id, name string) error
	DeleteProject(ctx context.Context, id string) error
	ExportProject(ctx context.Context, id string) (*prompt.ProjectExport, error)

	ListEntries(ctx context.Context, p *prompt.ListParams) ([]*prompt.EntrySummary, error)
	GetEntry(ctx context.Context, id string) (*prompt.Entry, error)
	UpsertEntry(ctx context.Context, p *prompt.UpsertEntryParams) (string, error)
	DeleteEntry(ctx context.Context, id string) error
	SetStarred(ctx context.Context, id string, v bool) error
	SetLocked(ctx context.Context, id string, v bool) error
	ExportEntry(ctx context.Context, id string) (*prompt.Entry, error)

	ListTags(ctx context.Context) ([]*prompt.Tag, error)
	CreateTag(ctx context.Context, name string, category, color *string) (string, error)
	DeleteTag(ctx context.Context, id string) error
	AttachTags(ctx context.Context, entryID string, tagIDs []string) error

	ListTemplates(ctx context.Context, projectID string) ([]*prompt.Template, error)
	UpsertTemplate(ctx context.Context, p *prompt.UpsertTemplateParams) (string, error)
	DeleteTemplate(ctx context.Context, id string) error
}

// Clipboard receives text copied through the call surface.
type Clipboard interface {
	WriteText(s string) error
}

// Exporter writes exported entries and projects and returns the written path.
type Exporter interface {
	Entry(e *prompt.Entry, tags []*prompt.Tag, path string) (string, error)
	Project(pe *prompt.ProjectExport, tags []*prompt.Tag, path string) (string, error)
}

type handlerFunc func(ctx context.Context, params json.RawMessage) (any, error)

// Dispatcher routes operations to the store and its collaborators.
type Dispatcher struct {
	store    Store
	clip     Clipboard
	exporter Exporter
	handlers map[string]handlerFunc
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithClipboard enables clipboard.writeText.
func WithClipboard(c Clipboard) Option {
	return func(d *Dispatcher) {
		d.clip = c
	}
}

// WithExporter enables entries.export and projects.exportAll.
func WithExporter(e Exporter) Option {
	return func(d *Dispatcher) {
		d.exporter = e
	}
}

// New returns a Dispatcher bound to s.
func New(s Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{store: s}
	for _, opt := range opts {
		opt(d)
	}

	d.handlers = map[string]handlerFunc{
		"projects.list":      d.projectsList,
		"projects.create":    d.projectsCreate,
		"projects.update":    d.projectsUpdate,
		"projects.delete":    d.projectsDelete,
		"projects.exportAll": d.projectsExportAll,

		"entries.list":       d.entriesList,
		"entries.get":        d.entriesGet,
		"entries.upsert":     d.entriesUpsert,
		"entries.delete":     d.entriesDelete,
		"entries.toggleStar": d.entriesToggleStar,
		"entries.toggleLock": d.entriesToggleLock,
		"entries.export":     d.entriesExport,

		"tags.list":   d.tagsList,
		"tags.create": d.tagsCreate,
		"tags.delete": d.tagsDelete,
		"tags.attach": d.tagsAttach,

		"templates.list":   d.templatesList,
		"templates.upsert": d.templatesUpsert,
		"templates.delete": d.templatesDelete,

		"clipboard.writeText": d.clipboardWriteText,
	}

	return d
}

// Ops returns the supported operation names, sorted.
func (d *Dispatcher) Ops() []string {
	ops := make([]string, 0, len(d.handlers))
	for op := range d.handlers {
		ops = append(ops, op)
	}
	slices.Sort(ops)

	return ops
}

// Handle runs op with the given JSON params. Empty params are treated as an
// empty object.
func (d *Dispatcher) Handle(ctx context.Context, op string, params json.RawMessage) (any, error) {
	h, ok := d.handlers[op]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, op)
	}

	slog.Debug("dispatch", "op", op)

	res, err := h(ctx, params)
	if err != nil {
		slog.Debug("dispatch failed", "op", op, "kind", KindOf(err), "error", err)
		return nil, err
	}

	return res, nil
}

// decode unmarshals params into v.
func decode(params json.RawMessage, v any) error {
	if len(params) == 0 || strings.TrimSpace(string(params)) == "null" {
		return nil
	}

	if err := json.Unmarshal(params, v); err != nil {
		return fmt.Errorf("%w: params: %w", db.ErrInvalid, err)
	}

	return nil
}

func requireArg(name, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: %s", ErrMissingArgument, name)
	}

	return nil
}

type idParams struct {
	ID string `json:"id"`
}

type idResult struct {
	ID string `json:"id"`
}

type okResult struct {
	OK bool `json:"ok"`
}

type exportResult struct {
	Success bool   `json:"success"`
	Path    string `json:"path,omitempty"`
}

var okRes = okResult{OK: true}

func (d *Dispatcher) decodeID(params json.RawMessage) (string, error) {
	var p idParams
	if err := decode(params, &p); err != nil {
		return "", err
	}

	return p.ID, requireArg("id", p.ID)
}
