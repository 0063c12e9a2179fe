package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateconpizza/pm/pkg/prompt"
)

func TestListTagsOrder(t *testing.T) {
	t.Parallel()
	r := setupTestDB(t)
	defer teardownthewall(r.DB)

	mustTag(t, r, "zz-user")
	mustTag(t, r, "aa-user")

	ts, err := r.ListTags(t.Context())
	require.NoError(t, err)
	require.Len(t, ts, len(defaultTags)+2)

	rank := map[string]int{CategoryPhase: 1, CategoryTarget: 2, CategoryNature: 3}
	rankOf := func(tg *prompt.Tag) int {
		if tg.Category == nil {
			return 4
		}
		if n, ok := rank[*tg.Category]; ok {
			return n
		}
		return 4
	}

	for i := 1; i < len(ts); i++ {
		prev, cur := ts[i-1], ts[i]
		if rankOf(prev) == rankOf(cur) {
			assert.LessOrEqual(t, prev.Name, cur.Name)
			continue
		}
		assert.Less(t, rankOf(prev), rankOf(cur), "%s before %s", prev.Name, cur.Name)
	}

	last := ts[len(ts)-2:]
	assert.Equal(t, "aa-user", last[0].Name)
	assert.Equal(t, "zz-user", last[1].Name)
	assert.False(t, last[0].IsDefault)
}

func TestCreateTag(t *testing.T) {
	t.Parallel()
	r := setupEmptyTestDB(t)
	defer teardownthewall(r.DB)

	id, err := r.CreateTag(t.Context(), "review", prompt.StrPtr("custom"), prompt.StrPtr("#FFFFFF"))
	require.NoError(t, err)

	ts, err := r.ListTags(t.Context())
	require.NoError(t, err)
	require.Len(t, ts, 1)
	assert.Equal(t, id, ts[0].ID)
	assert.Equal(t, "custom", *ts[0].Category)
	assert.Equal(t, "#FFFFFF", *ts[0].Color)
	assert.False(t, ts[0].IsDefault)
	assert.NotZero(t, ts[0].CreatedAt)

	_, err = r.CreateTag(t.Context(), " ", nil, nil)
	assert.ErrorIs(t, err, ErrInvalid)

	nid, err := r.CreateTag(t.Context(), "plain", prompt.StrPtr(""), nil)
	require.NoError(t, err)
	ts, err = r.ListTags(t.Context())
	require.NoError(t, err)
	for _, tg := range ts {
		if tg.ID == nid {
			assert.Nil(t, tg.Category)
			assert.Nil(t, tg.Color)
		}
	}
}

// Scenario: creating the same tag name twice fails with a conflict and
// leaves a single row.
func TestCreateTagDuplicate(t *testing.T) {
	t.Parallel()
	r := setupTestDB(t)
	defer teardownthewall(r.DB)

	mustTag(t, r, "Dup")
	_, err := r.CreateTag(t.Context(), "Dup", nil, nil)
	assert.ErrorIs(t, err, ErrConflict)

	assert.Equal(t, 1, countRows(t, r, "SELECT COUNT(*) FROM tags WHERE name = ?", "Dup"))

	// default names are taken too.
	_, err = r.CreateTag(t.Context(), "API", nil, nil)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUniqueViolationFallback(t *testing.T) {
	t.Parallel()
	r := setupEmptyTestDB(t)
	defer teardownthewall(r.DB)

	mustTag(t, r, "dup")
	_, err := r.DB.ExecContext(t.Context(),
		"INSERT INTO tags (id, name, is_default, created_at) VALUES ('x', 'dup', 0, 1)")
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err))
	assert.False(t, isUniqueViolation(ErrNotFound))
}

func TestDeleteTag(t *testing.T) {
	t.Parallel()
	r := setupTestDB(t)
	defer teardownthewall(r.DB)

	ctx := t.Context()
	pid := mustProject(t, r, "Demo")
	tag := mustTag(t, r, "temp")
	e := mustEntry(t, r, pid, "body", tag)

	require.NoError(t, r.DeleteTag(ctx, tag))

	got, err := r.GetEntry(ctx, e)
	require.NoError(t, err)
	assert.Empty(t, got.TagIDs)

	assert.ErrorIs(t, r.DeleteTag(ctx, tag), ErrNotFound)
	assert.ErrorIs(t, r.DeleteTag(ctx, "missing"), ErrTagNotFound)
}

func TestDeleteDefaultTagForbidden(t *testing.T) {
	t.Parallel()
	r := setupTestDB(t)
	defer teardownthewall(r.DB)

	ts, err := r.ListTags(t.Context())
	require.NoError(t, err)

	for _, tg := range ts {
		require.True(t, tg.IsDefault)
		err := r.DeleteTag(t.Context(), tg.ID)
		assert.ErrorIs(t, err, ErrForbidden, tg.Name)
	}

	assert.Equal(t, len(defaultTags), countRows(t, r, "SELECT COUNT(*) FROM tags"))
}

func TestAttachTags(t *testing.T) {
	t.Parallel()
	r := setupEmptyTestDB(t)
	defer teardownthewall(r.DB)

	ctx := t.Context()
	pid := mustProject(t, r, "Demo")
	a := mustTag(t, r, "a")
	b := mustTag(t, r, "b")
	e := mustEntry(t, r, pid, "body", a)

	before, err := r.GetEntry(ctx, e)
	require.NoError(t, err)
	projBefore, err := r.GetProject(ctx, pid)
	require.NoError(t, err)

	require.NoError(t, r.AttachTags(ctx, e, []string{b}))

	after, err := r.GetEntry(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, []string{b}, after.TagIDs)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt, "attach leaves timestamps alone")

	projAfter, err := r.GetProject(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, projBefore.UpdatedAt, projAfter.UpdatedAt)

	assert.ErrorIs(t, r.AttachTags(ctx, "missing", []string{a}), ErrEntryNotFound)

	err = r.AttachTags(ctx, e, []string{a, "missing"})
	assert.ErrorIs(t, err, ErrTagNotFound)

	after, err = r.GetEntry(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, []string{b}, after.TagIDs, "failed attach is rolled back")
}

func TestAttachTagsRollbackAfterClear(t *testing.T) {
	t.Parallel()
	r := setupEmptyTestDB(t)
	defer teardownthewall(r.DB)

	ctx := t.Context()
	pid := mustProject(t, r, "Demo")
	a := mustTag(t, r, "a")
	b := mustTag(t, r, "b")
	c := mustTag(t, r, "c")
	e := mustEntry(t, r, pid, "body", a, b)
	failInsertsOf(t, r, c)

	err := r.AttachTags(ctx, e, []string{a, c})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry tag rejected")

	got, err := r.GetEntry(ctx, e)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b}, got.TagIDs, "cleared relations are restored")
	assert.Equal(t, 2, countRows(t, r, "SELECT COUNT(*) FROM prompt_entry_tags"))
}
