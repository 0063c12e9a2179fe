// Package db implements the persistent store for projects, entries, tags and
// templates on top of SQLite.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	MaxOpenConns    = 1         // Single connection, writes are serialized
	MaxIdleConns    = 1         // Keep the connection and its pragmas around
	MaxLifetimeConn = time.Hour // Maximum connection lifetime
)

const (
	DriverSQLite  = "sqlite"  // modernc.org/sqlite, pure Go
	DriverSQLite3 = "sqlite3" // github.com/mattn/go-sqlite3, cgo builds only

	DefaultName = "prompt-manager.db"
)

type Table string

// driverParams holds the DSN parameters each driver understands. Both enable
// foreign keys on every new connection.
var driverParams = map[string]url.Values{
	DriverSQLite: {
		"_pragma": {
			"foreign_keys(1)",
			"busy_timeout(5000)",
			"journal_mode(WAL)",
			"synchronous(NORMAL)",
		},
	},
	DriverSQLite3: {
		"_foreign_keys": {"on"},
		"_busy_timeout": {"5000"},
		"_journal_mode": {"WAL"},
		"_synchronous":  {"NORMAL"},
	},
}

// uniqueViolations reports whether a driver error is a UNIQUE constraint
// failure. Drivers compiled in append their own check.
var uniqueViolations = []func(error) bool{
	func(err error) bool {
		var se *sqlite.Error
		return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	},
}

func isUniqueViolation(err error) bool {
	for _, fn := range uniqueViolations {
		if fn(err) {
			return true
		}
	}

	return false
}

// SQLite is the entity store.
type SQLite struct {
	DB        *sqlx.DB `json:"-"`
	Cfg       *Cfg     `json:"db"`
	clock     *Clock
	newID     func() string
	closed    atomic.Bool
	closeOnce sync.Once
}

// Name returns the name of the SQLite database.
func (r *SQLite) Name() string {
	return r.Cfg.Name
}

// Close closes the SQLite database connection and logs any errors encountered.
// Later calls on the store fail with ErrStorageUnavailable.
func (r *SQLite) Close() {
	s := r.Name()
	r.closeOnce.Do(func() {
		r.closed.Store(true)
		if err := r.DB.Close(); err != nil {
			slog.Error("closing database", "name", s, "error", err)
		} else {
			slog.Debug("database closed", "name", s)
		}
	})
}

// ensureOpen fails when the store has been closed.
func (r *SQLite) ensureOpen() error {
	if r.closed.Load() {
		return ErrDBClosed
	}

	return nil
}

// newSQLiteRepository returns a new SQLite store.
func newSQLiteRepository(db *sqlx.DB, cfg *Cfg) *SQLite {
	return &SQLite{
		DB:    db,
		Cfg:   cfg,
		clock: NewClock(nil),
		newID: newID,
	}
}

// Open opens, or creates, the database described by c and initializes its
// schema. Any failure wraps ErrStorageUnavailable.
func Open(ctx context.Context, c *Cfg) (*SQLite, error) {
	if c.Path == "" || c.Name == "" {
		return nil, ErrDBPathEmpty
	}

	if err := os.MkdirAll(c.Path, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	db, err := OpenDatabase(ctx, c.Driver, c.Fullpath())
	if err != nil {
		slog.Error("open database", "error", err, "path", c.Fullpath())
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	r := newSQLiteRepository(db, c)
	if err := r.Init(ctx); err != nil {
		r.Close()
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	return r, nil
}

// buildSQLiteDSN constructs a SQLite Data Source Name from a file path and
// optional parameters.
func buildSQLiteDSN(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}

	separator := "?"
	if strings.Contains(path, "?") {
		separator = "&"
	}

	return fmt.Sprintf("%s%s%s", path, separator, params.Encode())
}

// OpenDatabase opens a SQLite database at the specified path with the given
// driver and verifies the connection, returning the database handle or an
// error.
func OpenDatabase(ctx context.Context, driver, path string) (*sqlx.DB, error) {
	if driver == "" {
		driver = DriverSQLite
	}

	params, ok := driverParams[driver]
	if !ok || !slices.Contains(sql.Drivers(), driver) {
		return nil, fmt.Errorf("%w: %q", ErrDriverUnknown, driver)
	}

	slog.Debug("opening database", "path", path, "driver", driver)

	db, err := sqlx.Open(driver, buildSQLiteDSN(path, params))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Connection pool tuning
	db.SetMaxOpenConns(MaxOpenConns)
	db.SetMaxIdleConns(MaxIdleConns)
	db.SetConnMaxLifetime(MaxLifetimeConn)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: on ping context", err)
	}

	return db, nil
}

// Cfg represents the configuration for a SQLite database.
type Cfg struct {
	Name         string `json:"name"          yaml:"name"`              // Name of the SQLite database
	Path         string `json:"path"          yaml:"-"`                 // Directory holding the database
	Driver       string `json:"driver"        yaml:"driver"`            // database/sql driver name
	SeedDefaults bool   `json:"seed_defaults" yaml:"seed_default_tags"` // Insert the default tag catalog
}

// Fullpath returns the full path to the SQLite database.
func (c *Cfg) Fullpath() string {
	return filepath.Join(c.Path, c.Name)
}

// Exists returns true if the SQLite database exists.
func (c *Cfg) Exists() bool {
	return fileExists(c.Fullpath())
}

// NewSQLiteCfg returns the default settings for the database at p.
func NewSQLiteCfg(p string) (*Cfg, error) {
	if p == "" {
		return nil, ErrDBPathEmpty
	}

	abs, err := filepath.Abs(p)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve %q: %w", p, err)
	}

	return &Cfg{
		Path:         filepath.Dir(abs),
		Name:         ensureDBSuffix(filepath.Base(abs)),
		Driver:       DriverSQLite,
		SeedDefaults: true,
	}, nil
}

// fileExists checks if a file exists.
func fileExists(s string) bool {
	_, err := os.Stat(s)
	return !os.IsNotExist(err)
}

func ensureDBSuffix(s string) string {
	const suffix = ".db"
	if s == "" {
		return s
	}

	if filepath.Ext(s) != "" {
		return s
	}

	return s + suffix
}
