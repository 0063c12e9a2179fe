package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateconpizza/pm/pkg/db"
)

func TestLevelFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		verbose int
		want    slog.Level
	}{
		{-1, slog.LevelError},
		{0, slog.LevelError},
		{1, slog.LevelWarn},
		{2, slog.LevelInfo},
		{3, slog.LevelDebug},
		{9, slog.LevelDebug},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, levelFor(tt.verbose), "verbose=%d", tt.verbose)
	}
}

func TestSetLoggerShortSource(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	SetLogger(&buf, 3)
	slog.Info("hello")

	out := buf.String()
	assert.Contains(t, out, "msg=hello")
	assert.Contains(t, out, "config/config_test.go")
	assert.NotContains(t, out, string(filepath.Separator)+"internal"+string(filepath.Separator)+"config")
}

func TestLogFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	p := filepath.Join(t.TempDir(), "logs", "pm.log")
	w := LogFile(p, 1, 2)
	SetLogger(w, 2)
	slog.Info("to file", "k", "v")
	slog.SetDefault(prev)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=\"to file\" k=v")
}

func TestSetAppPaths(t *testing.T) {
	p := t.TempDir()
	SetAppPaths(p)

	assert.Equal(t, p, App.Path.Data)
	assert.Equal(t, filepath.Join(p, DefaultFilename), App.Path.ConfigFile)
	assert.Equal(t, filepath.Join(p, "export"), App.Path.Export)
	assert.Equal(t, filepath.Join(p, "backup"), App.Path.Backup)
}

func TestDataPathEnv(t *testing.T) {
	p := t.TempDir()
	t.Setenv(App.Env.Home, p)

	got, err := DataPath()
	require.NoError(t, err)
	assert.Equal(t, p, got)

	got, err = ConfigPath()
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()
	cfg, err := Load(filepath.Join(t.TempDir(), DefaultFilename))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestDumpAndLoad(t *testing.T) {
	t.Parallel()
	p := filepath.Join(t.TempDir(), "nested", DefaultFilename)

	cfg := Defaults()
	cfg.DB.Name = "work.db"
	cfg.DB.SeedDefaults = false
	cfg.Export.Dir = "/tmp/exports"
	cfg.Editor = "nvim -f"
	cfg.Backup.Keep = 3
	require.NoError(t, Dump(p, cfg, false))

	got, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "work.db", got.DB.Name)
	assert.Equal(t, db.DriverSQLite, got.DB.Driver)
	assert.False(t, got.DB.SeedDefaults)
	assert.Equal(t, "/tmp/exports", got.Export.Dir)
	assert.Equal(t, "nvim -f", got.Editor)
	assert.Equal(t, 3, got.Backup.Keep)

	err = Dump(p, cfg, false)
	require.ErrorIs(t, err, ErrConfigFileExists)
	require.NoError(t, Dump(p, cfg, true))
}

func TestLoadPartialFile(t *testing.T) {
	t.Parallel()
	p := filepath.Join(t.TempDir(), DefaultFilename)
	require.NoError(t, os.WriteFile(p, []byte("editor: hx\n"), 0o600))

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "hx", cfg.Editor)
	assert.Equal(t, db.DefaultName, cfg.DB.Name)
	assert.True(t, cfg.DB.SeedDefaults)
}

func TestLoadInvalid(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("db: [unclosed"), 0o600))
	_, err := Load(bad)
	require.Error(t, err)

	driver := filepath.Join(dir, "driver.yml")
	require.NoError(t, os.WriteFile(driver, []byte("db:\n  driver: postgres\n"), 0o600))
	_, err = Load(driver)
	require.ErrorIs(t, err, db.ErrDriverUnknown)
}

func TestValidateFillsDefaults(t *testing.T) {
	t.Parallel()
	cfg := &File{DB: &db.Cfg{Name: "  "}}
	cfg.Backup.Keep = -2
	require.NoError(t, Validate(cfg))
	assert.Equal(t, 0, cfg.Backup.Keep)
	assert.Equal(t, db.DefaultName, cfg.DB.Name)
	assert.Equal(t, db.DriverSQLite, cfg.DB.Driver)

	empty := &File{}
	require.NoError(t, Validate(empty))
	assert.NotNil(t, empty.DB)
}
