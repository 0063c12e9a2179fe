package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mateconpizza/pm/pkg/prompt"
)

// projects.

func (d *Dispatcher) projectsList(ctx context.Context, _ json.RawMessage) (any, error) {
	ps, err := d.store.ListProjects(ctx)
	if err != nil {
		return nil, err
	}

	return struct {
		Projects []*prompt.ProjectSummary `json:"projects"`
	}{ps}, nil
}

func (d *Dispatcher) projectsCreate(ctx context.Context, params json.RawMessage) (any, error) {
	var p struct {
		Name string `json:"name"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}

	id, err := d.store.CreateProject(ctx, p.Name)
	if err != nil {
		return nil, err
	}

	return idResult{ID: id}, nil
}

func (d *Dispatcher) projectsUpdate(ctx context.Context, params json.RawMessage) (any, error) {
	var p struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := requireArg("id", p.ID); err != nil {
		return nil, err
	}

	if err := d.store.UpdateProject(ctx, p.ID, p.Name); err != nil {
		return nil, err
	}

	return okRes, nil
}

func (d *Dispatcher) projectsDelete(ctx context.Context, params json.RawMessage) (any, error) {
	id, err := d.decodeID(params)
	if err != nil {
		return nil, err
	}

	if err := d.store.DeleteProject(ctx, id); err != nil {
		return nil, err
	}

	return okRes, nil
}

func (d *Dispatcher) projectsExportAll(ctx context.Context, params json.RawMessage) (any, error) {
	if d.exporter == nil {
		return nil, fmt.Errorf("%w: export", ErrNoCollaborator)
	}

	var p struct {
		ID   string `json:"id"`
		Path string `json:"path"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := requireArg("id", p.ID); err != nil {
		return nil, err
	}

	pe, err := d.store.ExportProject(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	tags, err := d.store.ListTags(ctx)
	if err != nil {
		return nil, err
	}

	path, err := d.exporter.Project(pe, tags, p.Path)
	if err != nil {
		return nil, err
	}

	return exportResult{Success: true, Path: path}, nil
}

// entries.

func (d *Dispatcher) entriesList(ctx context.Context, params json.RawMessage) (any, error) {
	var p prompt.ListParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}

	es, err := d.store.ListEntries(ctx, &p)
	if err != nil {
		return nil, err
	}

	return struct {
		Entries []*prompt.EntrySummary `json:"entries"`
	}{es}, nil
}

func (d *Dispatcher) entriesGet(ctx context.Context, params json.RawMessage) (any, error) {
	id, err := d.decodeID(params)
	if err != nil {
		return nil, err
	}

	e, err := d.store.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	return struct {
		Entry *prompt.Entry `json:"entry"`
	}{e}, nil
}

func (d *Dispatcher) entriesUpsert(ctx context.Context, params json.RawMessage) (any, error) {
	var p prompt.UpsertEntryParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}

	id, err := d.store.UpsertEntry(ctx, &p)
	if err != nil {
		return nil, err
	}

	return idResult{ID: id}, nil
}

func (d *Dispatcher) entriesDelete(ctx context.Context, params json.RawMessage) (any, error) {
	id, err := d.decodeID(params)
	if err != nil {
		return nil, err
	}

	if err := d.store.DeleteEntry(ctx, id); err != nil {
		return nil, err
	}

	return okRes, nil
}

func (d *Dispatcher) entriesToggleStar(ctx context.Context, params json.RawMessage) (any, error) {
	var p struct {
		ID        string `json:"id"`
		IsStarred bool   `json:"is_starred"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := requireArg("id", p.ID); err != nil {
		return nil, err
	}

	if err := d.store.SetStarred(ctx, p.ID, p.IsStarred); err != nil {
		return nil, err
	}

	return okRes, nil
}

func (d *Dispatcher) entriesToggleLock(ctx context.Context, params json.RawMessage) (any, error) {
	var p struct {
		ID       string `json:"id"`
		IsLocked bool   `json:"is_locked"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := requireArg("id", p.ID); err != nil {
		return nil, err
	}

	if err := d.store.SetLocked(ctx, p.ID, p.IsLocked); err != nil {
		return nil, err
	}

	return okRes, nil
}

func (d *Dispatcher) entriesExport(ctx context.Context, params json.RawMessage) (any, error) {
	if d.exporter == nil {
		return nil, fmt.Errorf("%w: export", ErrNoCollaborator)
	}

	var p struct {
		ID   string `json:"id"`
		Path string `json:"path"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := requireArg("id", p.ID); err != nil {
		return nil, err
	}

	e, err := d.store.ExportEntry(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	tags, err := d.store.ListTags(ctx)
	if err != nil {
		return nil, err
	}

	path, err := d.exporter.Entry(e, tags, p.Path)
	if err != nil {
		return nil, err
	}

	return exportResult{Success: true, Path: path}, nil
}

// tags.

func (d *Dispatcher) tagsList(ctx context.Context, _ json.RawMessage) (any, error) {
	ts, err := d.store.ListTags(ctx)
	if err != nil {
		return nil, err
	}

	return struct {
		Tags []*prompt.Tag `json:"tags"`
	}{ts}, nil
}

func (d *Dispatcher) tagsCreate(ctx context.Context, params json.RawMessage) (any, error) {
	var p struct {
		Name     string  `json:"name"`
		Category *string `json:"category"`
		Color    *string `json:"color"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}

	id, err := d.store.CreateTag(ctx, p.Name, p.Category, p.Color)
	if err != nil {
		return nil, err
	}

	return idResult{ID: id}, nil
}

func (d *Dispatcher) tagsDelete(ctx context.Context, params json.RawMessage) (any, error) {
	id, err := d.decodeID(params)
	if err != nil {
		return nil, err
	}

	if err := d.store.DeleteTag(ctx, id); err != nil {
		return nil, err
	}

	return okRes, nil
}

func (d *Dispatcher) tagsAttach(ctx context.Context, params json.RawMessage) (any, error) {
	var p struct {
		EntryID string   `json:"entry_id"`
		TagIDs  []string `json:"tag_ids"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := requireArg("entry_id", p.EntryID); err != nil {
		return nil, err
	}

	if err := d.store.AttachTags(ctx, p.EntryID, p.TagIDs); err != nil {
		return nil, err
	}

	return okRes, nil
}

// templates.

func (d *Dispatcher) templatesList(ctx context.Context, params json.RawMessage) (any, error) {
	var p struct {
		ProjectID string `json:"project_id"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}

	ts, err := d.store.ListTemplates(ctx, p.ProjectID)
	if err != nil {
		return nil, err
	}

	return struct {
		Templates []*prompt.Template `json:"templates"`
	}{ts}, nil
}

func (d *Dispatcher) templatesUpsert(ctx context.Context, params json.RawMessage) (any, error) {
	var p prompt.UpsertTemplateParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}

	id, err := d.store.UpsertTemplate(ctx, &p)
	if err != nil {
		return nil, err
	}

	return idResult{ID: id}, nil
}

func (d *Dispatcher) templatesDelete(ctx context.Context, params json.RawMessage) (any, error) {
	id, err := d.decodeID(params)
	if err != nil {
		return nil, err
	}

	if err := d.store.DeleteTemplate(ctx, id); err != nil {
		return nil, err
	}

	return okRes, nil
}

// clipboard.

func (d *Dispatcher) clipboardWriteText(_ context.Context, params json.RawMessage) (any, error) {
	if d.clip == nil {
		return nil, fmt.Errorf("%w: clipboard", ErrNoCollaborator)
	}

	var p struct {
		Text string `json:"text"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}

	if err := d.clip.WriteText(p.Text); err != nil {
		return nil, err
	}

	return okRes, nil
}
