// Package dbtask provides maintenance tasks for the prompt database: backups,
// integrity checks and statistics.
package dbtask

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jmoiron/sqlx"

	"github.com/mateconpizza/pm/internal/sys/files"
	"github.com/mateconpizza/pm/pkg/db"
)

// Default date format for backup names.
const defaultDateFormat = "20060102-150405"

var (
	ErrBackupExists = errors.New("backup already exists")
	ErrDBCorrupted  = errors.New("database corrupted")
)

// now is replaced in tests.
var now = time.Now

// Stats holds row counts and the file size of a database.
type Stats struct {
	Name      string `json:"dbname"`
	Path      string `json:"path"`
	Projects  int    `json:"projects"  db:"projects"`
	Entries   int    `json:"entries"   db:"entries"`
	Starred   int    `json:"starred"   db:"starred"`
	Locked    int    `json:"locked"    db:"locked"`
	Tags      int    `json:"tags"      db:"tags"`
	Templates int    `json:"templates" db:"templates"`
	Bytes     int64  `json:"bytes"`
	Size      string `json:"size"`
}

// NewStats counts the rows of r.
func NewStats(ctx context.Context, r *db.SQLite) (*Stats, error) {
	s := Stats{Name: r.Name(), Path: r.Cfg.Fullpath()}
	err := r.DB.GetContext(ctx, &s, `
		SELECT
			(SELECT COUNT(*) FROM projects)                          AS projects,
			(SELECT COUNT(*) FROM prompt_entries)                    AS entries,
			(SELECT COUNT(*) FROM prompt_entries WHERE is_starred=1) AS starred,
			(SELECT COUNT(*) FROM prompt_entries WHERE is_locked=1)  AS locked,
			(SELECT COUNT(*) FROM tags)                              AS tags,
			(SELECT COUNT(*) FROM prompt_templates)                  AS templates`)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}

	if fi, err := os.Stat(s.Path); err == nil {
		s.Bytes = fi.Size()
	}
	s.Size = humanize.Bytes(uint64(max(s.Bytes, 0)))

	return &s, nil
}

// Backup writes a compacted copy of r into dir as "<date>_<name>" and verifies
// the copy. It returns the backup path.
func Backup(ctx context.Context, r *db.SQLite, dir string) (string, error) {
	dest := filepath.Join(dir, fmt.Sprintf("%s_%s", now().Format(defaultDateFormat), r.Name()))
	slog.Info("creating SQLite backup", "src", r.Cfg.Fullpath(), "dest", dest)

	if files.Exists(dest) {
		return "", fmt.Errorf("%w: %q", ErrBackupExists, dest)
	}

	if err := files.MkdirAll(dir); err != nil {
		return "", err
	}

	if _, err := r.DB.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		return "", fmt.Errorf("%w: backup: %w", db.ErrStorageUnavailable, err)
	}

	if err := VerifyIntegrity(ctx, r.Cfg.Driver, dest); err != nil {
		return "", err
	}

	return dest, nil
}

// Backups returns the backups of the database named name found in dir,
// oldest first.
func Backups(dir, name string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading backups: %w", err)
	}

	suffix := "_" + name
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		if _, err := time.Parse(defaultDateFormat, strings.TrimSuffix(e.Name(), suffix)); err != nil {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}

	// the date prefix sorts chronologically.
	slices.Sort(out)

	return out, nil
}

// Prune removes the oldest backups of name in dir, keeping the newest keep.
// A keep of zero or less keeps everything.
func Prune(dir, name string, keep int) ([]string, error) {
	if keep <= 0 {
		return nil, nil
	}

	bks, err := Backups(dir, name)
	if err != nil {
		return nil, err
	}
	if len(bks) <= keep {
		return nil, nil
	}

	removed := bks[:len(bks)-keep]
	for _, p := range removed {
		if err := os.Remove(p); err != nil {
			return nil, fmt.Errorf("removing backup: %w", err)
		}
		slog.Info("backup removed", "path", p)
	}

	return removed, nil
}

// Check runs an integrity check on the open database.
func Check(ctx context.Context, r *db.SQLite) error {
	return integrity(ctx, r.DB)
}

// VerifyIntegrity checks the integrity of the SQLite database at path.
func VerifyIntegrity(ctx context.Context, driver, path string) error {
	slog.Debug("verifying SQLite integrity", "path", path)

	if !files.Exists(path) {
		return fmt.Errorf("%w: %q", files.ErrFileNotFound, path)
	}

	sdb, err := db.OpenDatabase(ctx, driver, path)
	if err != nil {
		return fmt.Errorf("opening backup: %w", err)
	}

	defer func() {
		if err := sdb.Close(); err != nil {
			slog.Error("error closing db", "error", err)
		}
	}()

	return integrity(ctx, sdb)
}

func integrity(ctx context.Context, sdb *sqlx.DB) error {
	var result string
	if err := sdb.QueryRowContext(ctx, "PRAGMA integrity_check;").Scan(&result); err != nil {
		return fmt.Errorf("%w: %w", ErrDBCorrupted, err)
	}

	if result != "ok" {
		return fmt.Errorf("%w: integrity check: %q", ErrDBCorrupted, result)
	}

	slog.Debug("SQLite integrity verified", "result", result)

	return nil
}
