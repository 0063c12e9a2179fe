// Package files provides utilities for working with files/directories.
package files

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	DirPerm  = 0o755
	FilePerm = 0o644
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrPathEmpty    = errors.New("path is empty")
)

// Exists checks if a file exists.
func Exists(s string) bool {
	_, err := os.Stat(s)
	return !os.IsNotExist(err)
}

// MkdirAll creates all the given paths.
func MkdirAll(s ...string) error {
	for _, path := range s {
		if path == "" || Exists(path) {
			continue
		}

		slog.Debug("creating path", "path", path)

		if err := os.MkdirAll(path, DirPerm); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}

	return nil
}

// WriteFile writes data to p, creating its parent directory when needed. The
// data is written to a temporary file first and renamed into place.
func WriteFile(p string, data []byte) error {
	if p == "" {
		return ErrPathEmpty
	}

	dir := filepath.Dir(p)
	if err := MkdirAll(dir); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(p)+"-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		closeAndClean(f)
		return fmt.Errorf("writing %q: %w", p, err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("closing %q: %w", p, err)
	}

	if err := os.Chmod(tmp, FilePerm); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("chmod %q: %w", p, err)
	}

	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming into %q: %w", p, err)
	}

	slog.Debug("file written", "path", p, "bytes", len(data))

	return nil
}

// CreateTempFileWithData creates a temporary file holding data. The extension
// may be given with or without its leading dot.
func CreateTempFileWithData(data []byte, ext string) (*os.File, error) {
	ext = strings.TrimPrefix(ext, ".")
	pattern := "pm-*"
	if ext != "" {
		pattern += "." + ext
	}

	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return nil, fmt.Errorf("error creating temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		closeAndClean(f)
		return nil, fmt.Errorf("error writing temp file: %w", err)
	}

	return f, nil
}

// CloseAndClean closes the provided file and deletes it.
func CloseAndClean(f *os.File) {
	closeAndClean(f)
}

func closeAndClean(f *os.File) {
	if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		slog.Error("closing temp file", "file", f.Name(), "error", err)
	}

	if err := os.Remove(f.Name()); err != nil && !os.IsNotExist(err) {
		slog.Error("removing temp file", "file", f.Name(), "error", err)
	}
}

// EnsureExt appends the suffix when s does not end with it.
func EnsureExt(s, suffix string) string {
	if s == "" || strings.HasSuffix(s, suffix) {
		return s
	}

	return s + suffix
}

// ExpandHomeDir expands a leading "~" to the user's home directory.
func ExpandHomeDir(s string) string {
	if s != "~" && !strings.HasPrefix(s, "~/") {
		return s
	}

	home, err := os.UserHomeDir()
	if err != nil {
		slog.Warn("resolving home directory", "error", err)
		return s
	}

	return filepath.Join(home, strings.TrimPrefix(s, "~"))
}
