package dbtask

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateconpizza/pm/pkg/db"
	"github.com/mateconpizza/pm/pkg/prompt"
)

// setupTestDB opens a database holding one project with two entries.
func setupTestDB(t *testing.T) *db.SQLite {
	t.Helper()
	c, err := db.NewSQLiteCfg(filepath.Join(t.TempDir(), "testdb"))
	require.NoError(t, err)
	c.SeedDefaults = false

	r, err := db.Open(t.Context(), c)
	require.NoError(t, err)
	t.Cleanup(r.Close)

	pid, err := r.CreateProject(t.Context(), "Demo")
	require.NoError(t, err)

	for _, body := range []string{"one", "two"} {
		_, err := r.UpsertEntry(t.Context(), &prompt.UpsertEntryParams{
			ProjectID:    pid,
			BodyMarkdown: body,
			IsStarred:    body == "one",
		})
		require.NoError(t, err)
	}

	return r
}

// fixedNow pins the backup timestamp. Tests using it do not run in parallel.
func fixedNow(t *testing.T, ts time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return ts }
	t.Cleanup(func() { now = prev })
}

func TestNewStats(t *testing.T) {
	t.Parallel()
	r := setupTestDB(t)

	s, err := NewStats(t.Context(), r)
	require.NoError(t, err)
	assert.Equal(t, "testdb.db", s.Name)
	assert.Equal(t, 1, s.Projects)
	assert.Equal(t, 2, s.Entries)
	assert.Equal(t, 1, s.Starred)
	assert.Equal(t, 0, s.Locked)
	assert.Equal(t, 0, s.Tags)
	assert.Positive(t, s.Bytes)
	assert.NotEmpty(t, s.Size)
}

func TestCheck(t *testing.T) {
	t.Parallel()
	r := setupTestDB(t)
	require.NoError(t, Check(t.Context(), r))
}

func TestBackup(t *testing.T) {
	r := setupTestDB(t)
	dir := filepath.Join(t.TempDir(), "backup")
	fixedNow(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))

	p, err := Backup(t.Context(), r, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20260102-030405_testdb.db"), p)

	cp, err := db.NewSQLiteCfg(p)
	require.NoError(t, err)
	cp.SeedDefaults = false
	bk, err := db.Open(t.Context(), cp)
	require.NoError(t, err)
	defer bk.Close()

	s, err := NewStats(t.Context(), bk)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Entries)

	_, err = Backup(t.Context(), r, dir)
	require.ErrorIs(t, err, ErrBackupExists)
}

func TestBackupsAndPrune(t *testing.T) {
	r := setupTestDB(t)
	dir := t.TempDir()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var made []string
	for i := range 3 {
		fixedNow(t, base.Add(time.Duration(i)*time.Hour))
		p, err := Backup(t.Context(), r, dir)
		require.NoError(t, err)
		made = append(made, p)
	}

	// unrelated files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes_testdb.db"), nil, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101-000000_other.db"), nil, 0o600))

	bks, err := Backups(dir, r.Name())
	require.NoError(t, err)
	assert.Equal(t, made, bks)

	removed, err := Prune(dir, r.Name(), 0)
	require.NoError(t, err)
	assert.Empty(t, removed)

	removed, err = Prune(dir, r.Name(), 1)
	require.NoError(t, err)
	assert.Equal(t, made[:2], removed)

	bks, err = Backups(dir, r.Name())
	require.NoError(t, err)
	assert.Equal(t, made[2:], bks)
}

func TestBackupsMissingDir(t *testing.T) {
	t.Parallel()
	bks, err := Backups(filepath.Join(t.TempDir(), "nope"), "x.db")
	require.NoError(t, err)
	assert.Empty(t, bks)
}

func TestVerifyIntegrity(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	err := VerifyIntegrity(t.Context(), db.DriverSQLite, filepath.Join(dir, "missing.db"))
	require.Error(t, err)

	junk := filepath.Join(dir, "junk.db")
	require.NoError(t, os.WriteFile(junk, []byte("this is not a sqlite database file at all"), 0o600))
	err = VerifyIntegrity(t.Context(), db.DriverSQLite, junk)
	require.Error(t, err)
}
