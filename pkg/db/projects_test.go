package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateconpizza/pm/pkg/prompt"
)

func TestCreateProject(t *testing.T) {
	t.Parallel()
	r := setupTestDB(t)
	defer teardownthewall(r.DB)

	id := mustProject(t, r, "  Demo  ")

	p, err := r.GetProject(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, "Demo", p.Name)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)

	for _, name := range []string{"", "   "} {
		_, err := r.CreateProject(t.Context(), name)
		assert.ErrorIs(t, err, ErrInvalid)
		assert.ErrorIs(t, err, prompt.ErrNameEmpty)
	}
}

func TestListProjects(t *testing.T) {
	t.Parallel()
	r := setupTestDB(t)
	defer teardownthewall(r.DB)

	ps, err := r.ListProjects(t.Context())
	require.NoError(t, err)
	assert.Empty(t, ps)

	a := mustProject(t, r, "A")
	b := mustProject(t, r, "B")
	mustEntry(t, r, a, "one")
	mustEntry(t, r, a, "two")

	ps, err = r.ListProjects(t.Context())
	require.NoError(t, err)
	require.Len(t, ps, 2)

	// writing entries touched A after B was created.
	assert.Equal(t, a, ps[0].ID)
	assert.Equal(t, 2, ps[0].EntryCount)
	assert.Equal(t, b, ps[1].ID)
	assert.Equal(t, 0, ps[1].EntryCount)
}

func TestUpdateProject(t *testing.T) {
	t.Parallel()
	r := setupTestDB(t)
	defer teardownthewall(r.DB)

	id := mustProject(t, r, "Old")
	before, err := r.GetProject(t.Context(), id)
	require.NoError(t, err)

	require.NoError(t, r.UpdateProject(t.Context(), id, "New"))

	after, err := r.GetProject(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, "New", after.Name)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)
	assert.Greater(t, after.UpdatedAt, before.UpdatedAt)

	assert.NoError(t, r.UpdateProject(t.Context(), "missing", "Name"), "unknown id is a no-op")
	assert.ErrorIs(t, r.UpdateProject(t.Context(), id, ""), ErrInvalid)
}

func TestDeleteProjectCascades(t *testing.T) {
	t.Parallel()
	r := setupEmptyTestDB(t)
	defer teardownthewall(r.DB)

	ctx := t.Context()
	pid := mustProject(t, r, "Demo")
	keep := mustProject(t, r, "Keep")
	tag := mustTag(t, r, "go")
	e1 := mustEntry(t, r, pid, "first", tag)
	e2 := mustEntry(t, r, pid, "second")
	other := mustEntry(t, r, keep, "other", tag)

	_, err := r.UpsertTemplate(ctx, &prompt.UpsertTemplateParams{
		ProjectID: &pid, Name: "tpl", BodyMarkdown: "x",
	})
	require.NoError(t, err)

	require.NoError(t, r.DeleteProject(ctx, pid))

	for _, id := range []string{e1, e2} {
		_, err := r.GetEntry(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound)
	}

	assert.Equal(t, 1, countRows(t, r, "SELECT COUNT(*) FROM prompt_entry_tags"))
	assert.Zero(t, countRows(t, r, "SELECT COUNT(*) FROM prompt_templates"))

	_, err = r.GetEntry(ctx, other)
	require.NoError(t, err)

	_, err = r.GetProject(ctx, pid)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestExportProject(t *testing.T) {
	t.Parallel()
	r := setupEmptyTestDB(t)
	defer teardownthewall(r.DB)

	base := time.UnixMilli(1_700_000_000_000)
	r.clock = NewClock(func() time.Time { return base })

	ctx := t.Context()
	pid := mustProject(t, r, "Demo")
	tag := mustTag(t, r, "go")
	older := mustEntry(t, r, pid, "older", tag)
	newer := mustEntry(t, r, pid, "newer")

	out, err := r.ExportProject(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, "Demo", out.Project.Name)
	require.Len(t, out.Entries, 2)
	assert.Equal(t, newer, out.Entries[0].ID)
	assert.Empty(t, out.Entries[0].TagIDs)
	assert.Equal(t, older, out.Entries[1].ID)
	assert.Equal(t, []string{tag}, out.Entries[1].TagIDs)

	_, err = r.ExportProject(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
