package dispatch

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateconpizza/pm/internal/export"
	"github.com/mateconpizza/pm/pkg/db"
)

type fakeClipboard struct {
	text string
	err  error
}

func (f *fakeClipboard) WriteText(s string) error {
	if f.err != nil {
		return f.err
	}
	f.text = s

	return nil
}

func setupTestDB(t *testing.T, seed bool) *db.SQLite {
	t.Helper()
	c, err := db.NewSQLiteCfg(filepath.Join(t.TempDir(), "dispatch.db"))
	require.NoError(t, err)
	c.SeedDefaults = seed

	r, err := db.Open(t.Context(), c)
	require.NoError(t, err)
	t.Cleanup(r.Close)

	return r
}

// call runs op and decodes its JSON result into a generic map.
func call(t *testing.T, d *Dispatcher, op string, params any) (map[string]any, error) {
	t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(t, err)

	res, err := d.Handle(t.Context(), op, raw)
	if err != nil {
		return nil, err
	}

	out, err := json.Marshal(res)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))

	return m, nil
}

func mustCall(t *testing.T, d *Dispatcher, op string, params any) map[string]any {
	t.Helper()
	m, err := call(t, d, op, params)
	require.NoError(t, err, op)

	return m
}

func TestOps(t *testing.T) {
	t.Parallel()
	d := New(setupTestDB(t, false))

	want := []string{
		"clipboard.writeText",
		"entries.delete", "entries.export", "entries.get", "entries.list",
		"entries.toggleLock", "entries.toggleStar", "entries.upsert",
		"projects.create", "projects.delete", "projects.exportAll", "projects.list", "projects.update",
		"tags.attach", "tags.create", "tags.delete", "tags.list",
		"templates.delete", "templates.list", "templates.upsert",
	}
	assert.Equal(t, want, d.Ops())
}

func TestEntryLifecycle(t *testing.T) {
	t.Parallel()
	d := New(setupTestDB(t, false))

	pid := mustCall(t, d, "projects.create", map[string]any{"name": "Demo"})["id"].(string)
	tid := mustCall(t, d, "tags.create", map[string]any{"name": "API", "color": "#14B8A6"})["id"].(string)

	eid := mustCall(t, d, "entries.upsert", map[string]any{
		"project_id":    pid,
		"title":         "Greeting",
		"body_markdown": "Hello **world**",
		"tag_ids":       []string{tid},
	})["id"].(string)

	got := mustCall(t, d, "entries.get", map[string]any{"id": eid})
	entry := got["entry"].(map[string]any)
	assert.Equal(t, "Greeting", entry["title"])
	assert.Equal(t, []any{tid}, entry["tag_ids"])
	assert.Nil(t, entry["source_json"])

	list := mustCall(t, d, "entries.list", map[string]any{
		"project_id": pid,
		"query":      "HELLO",
		"filters":    map[string]any{"tag_ids": []string{tid}},
		"sort":       "updated_desc",
	})
	entries := list["entries"].([]any)
	require.Len(t, entries, 1)
	assert.Equal(t, "Hello **world**", entries[0].(map[string]any)["snippet"])

	assert.Equal(t, true, mustCall(t, d, "entries.toggleStar", map[string]any{"id": eid, "is_starred": true})["ok"])
	assert.Equal(t, true, mustCall(t, d, "entries.toggleLock", map[string]any{"id": eid, "is_locked": true})["ok"])
	assert.Equal(t, true, mustCall(t, d, "tags.attach", map[string]any{"entry_id": eid, "tag_ids": []string{}})["ok"])

	entry = mustCall(t, d, "entries.get", map[string]any{"id": eid})["entry"].(map[string]any)
	assert.Equal(t, true, entry["is_starred"])
	assert.Equal(t, true, entry["is_locked"])
	assert.Empty(t, entry["tag_ids"])

	projects := mustCall(t, d, "projects.list", nil)["projects"].([]any)
	require.Len(t, projects, 1)
	assert.InDelta(t, 1, projects[0].(map[string]any)["entry_count"], 0)

	mustCall(t, d, "projects.delete", map[string]any{"id": pid})
	_, err := call(t, d, "entries.get", map[string]any{"id": eid})
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestTemplatesOps(t *testing.T) {
	t.Parallel()
	d := New(setupTestDB(t, false))

	pid := mustCall(t, d, "projects.create", map[string]any{"name": "Demo"})["id"].(string)
	mustCall(t, d, "templates.upsert", map[string]any{"name": "global", "body_markdown": "g"})
	id := mustCall(t, d, "templates.upsert", map[string]any{
		"project_id": pid, "name": "local", "body_markdown": "l",
	})["id"].(string)

	ts := mustCall(t, d, "templates.list", map[string]any{"project_id": pid})["templates"].([]any)
	assert.Len(t, ts, 2)

	ts = mustCall(t, d, "templates.list", nil)["templates"].([]any)
	assert.Len(t, ts, 1)

	mustCall(t, d, "templates.delete", map[string]any{"id": id})
	ts = mustCall(t, d, "templates.list", map[string]any{"project_id": pid})["templates"].([]any)
	assert.Len(t, ts, 1)
}

func TestErrorKinds(t *testing.T) {
	t.Parallel()
	d := New(setupTestDB(t, true))

	tags := mustCall(t, d, "tags.list", nil)["tags"].([]any)
	require.NotEmpty(t, tags)
	defaultID := tags[0].(map[string]any)["id"].(string)

	tests := []struct {
		name   string
		op     string
		params any
		want   string
	}{
		{"unknown op", "entries.frobnicate", nil, KindUnknownOp},
		{"missing entry", "entries.get", map[string]any{"id": "nope"}, KindNotFound},
		{"missing id", "entries.get", map[string]any{}, KindInvalid},
		{"star missing entry", "entries.toggleStar", map[string]any{"id": "nope", "is_starred": true}, KindNotFound},
		{"lock missing entry", "entries.toggleLock", map[string]any{"id": "nope", "is_locked": true}, KindNotFound},
		{"duplicate tag", "tags.create", map[string]any{"name": "API"}, KindConflict},
		{"default tag", "tags.delete", map[string]any{"id": defaultID}, KindForbidden},
		{"bad sort", "entries.list", map[string]any{"project_id": "p", "sort": "random"}, KindInvalid},
		{"bad params", "projects.create", []int{1, 2}, KindInvalid},
		{"empty name", "projects.create", map[string]any{"name": ""}, KindInvalid},
		{"no clipboard", "clipboard.writeText", map[string]any{"text": "x"}, KindInternal},
		{"no exporter", "entries.export", map[string]any{"id": "x"}, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := call(t, d, tt.op, tt.params)
			require.Error(t, err)
			assert.Equal(t, tt.want, KindOf(err), err.Error())
		})
	}
}

func TestKindOfStorage(t *testing.T) {
	t.Parallel()
	r := setupTestDB(t, false)
	d := New(r)
	r.Close()

	_, err := call(t, d, "projects.list", nil)
	assert.Equal(t, KindStorageUnavailable, KindOf(err))

	assert.Equal(t, KindInternal, KindOf(errors.New("disk on fire")))
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("wrapped: %w", db.ErrTagNotFound)))
}

func TestClipboard(t *testing.T) {
	t.Parallel()
	clip := &fakeClipboard{}
	d := New(setupTestDB(t, false), WithClipboard(clip))

	res := mustCall(t, d, "clipboard.writeText", map[string]any{"text": "copied"})
	assert.Equal(t, true, res["ok"])
	assert.Equal(t, "copied", clip.text)

	clip.err = errors.New("no display")
	_, err := call(t, d, "clipboard.writeText", map[string]any{"text": "x"})
	assert.Equal(t, KindInternal, KindOf(err))
}

func TestExport(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	d := New(setupTestDB(t, true), WithExporter(export.New(dir)))

	pid := mustCall(t, d, "projects.create", map[string]any{"name": "Demo"})["id"].(string)
	eid := mustCall(t, d, "entries.upsert", map[string]any{
		"project_id": pid, "title": "Note", "body_markdown": "body",
	})["id"].(string)

	res := mustCall(t, d, "entries.export", map[string]any{"id": eid})
	assert.Equal(t, true, res["success"])
	assert.Equal(t, filepath.Join(dir, "Note.md"), res["path"])

	data, err := os.ReadFile(filepath.Join(dir, "Note.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "title: Note")

	res = mustCall(t, d, "projects.exportAll", map[string]any{"id": pid, "path": "all.zip"})
	assert.Equal(t, filepath.Join(dir, "all.zip"), res["path"])

	_, err = call(t, d, "projects.exportAll", map[string]any{"id": "missing"})
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestServe(t *testing.T) {
	t.Parallel()
	d := New(setupTestDB(t, false))

	input := strings.Join([]string{
		`{"id":1,"op":"projects.create","params":{"name":"Demo"}}`,
		``,
		`{"id":"two","op":"projects.list"}`,
		`not json`,
		`{"id":4,"op":"tags.delete","params":{"id":"missing"}}`,
	}, "\n")

	var out strings.Builder
	require.NoError(t, d.Serve(t.Context(), strings.NewReader(input), &out))

	var resps []Response
	sc := bufio.NewScanner(strings.NewReader(out.String()))
	for sc.Scan() {
		var r Response
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		resps = append(resps, r)
	}
	require.Len(t, resps, 4)

	assert.JSONEq(t, `1`, string(resps[0].ID))
	assert.True(t, resps[0].OK)

	assert.JSONEq(t, `"two"`, string(resps[1].ID))
	assert.True(t, resps[1].OK)

	assert.JSONEq(t, `null`, string(resps[2].ID))
	require.NotNil(t, resps[2].Error)
	assert.Equal(t, KindInvalid, resps[2].Error.Kind)

	assert.JSONEq(t, `4`, string(resps[3].ID))
	assert.False(t, resps[3].OK)
	assert.Equal(t, KindNotFound, resps[3].Error.Kind)
}

func TestServeCancel(t *testing.T) {
	t.Parallel()
	d := New(setupTestDB(t, false))

	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(t.Context())
	errc := make(chan error, 1)
	go func() {
		errc <- d.Serve(ctx, pr, io.Discard)
	}()

	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}
