// Package export renders entries as Markdown files with YAML front matter and
// bundles whole projects into zip archives.
package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/mateconpizza/pm/internal/sys/files"
	"github.com/mateconpizza/pm/pkg/prompt"
)

const (
	maxNameLen  = 100
	untitled    = "untitled"
	frontMarker = "---\n"
)

// frontMatter is the YAML header written on top of each exported entry.
type frontMatter struct {
	Title   string   `yaml:"title"`
	Tags    []string `yaml:"tags,omitempty"`
	Starred bool     `yaml:"starred"`
	Locked  bool     `yaml:"locked"`
	Created string   `yaml:"created"`
	Updated string   `yaml:"updated"`
}

// TagNames resolves tag ids to names, skipping ids not present in tags.
func TagNames(ids []string, tags []*prompt.Tag) []string {
	byID := make(map[string]string, len(tags))
	for _, t := range tags {
		byID[t.ID] = t.Name
	}

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if n, ok := byID[id]; ok {
			names = append(names, n)
		}
	}

	return names
}

// Markdown renders an entry as front matter followed by its body.
func Markdown(e *prompt.Entry, tags []*prompt.Tag) ([]byte, error) {
	fm := frontMatter{
		Title:   e.DisplayTitle(),
		Tags:    TagNames(e.TagIDs, tags),
		Starred: e.IsStarred,
		Locked:  e.IsLocked,
		Created: timestamp(e.CreatedAt),
		Updated: timestamp(e.UpdatedAt),
	}

	header, err := yaml.Marshal(&fm)
	if err != nil {
		return nil, fmt.Errorf("marshal front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(frontMarker)
	buf.Write(header)
	buf.WriteString(frontMarker)
	buf.WriteString("\n")
	buf.WriteString(e.BodyMarkdown)
	if !strings.HasSuffix(e.BodyMarkdown, "\n") {
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// Filename returns a file name for the entry derived from its title.
func Filename(e *prompt.Entry) string {
	return sanitize(e.DisplayTitle()) + ".md"
}

// ArchiveName returns a file name for the project archive.
func ArchiveName(p *prompt.Project) string {
	return sanitize(p.Name) + ".zip"
}

// ArchiveNames returns one archive file name per project, in order. Projects
// sharing a name get a numeric suffix so no archive overwrites another.
func ArchiveNames(ps []*prompt.ProjectSummary) []string {
	seen := make(map[string]int, len(ps))
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = uniqueName(sanitize(p.Name)+".zip", seen)
	}

	return names
}

// Archive writes one Markdown file per entry into a zip archive. Entries
// sharing a file name get a numeric suffix.
func Archive(pe *prompt.ProjectExport, tags []*prompt.Tag) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	seen := make(map[string]int, len(pe.Entries))

	for _, e := range pe.Entries {
		name := uniqueName(Filename(e), seen)

		data, err := Markdown(e, tags)
		if err != nil {
			return nil, err
		}

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: time.UnixMilli(e.UpdatedAt).UTC(),
		})
		if err != nil {
			return nil, fmt.Errorf("zip entry %q: %w", name, err)
		}

		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("zip entry %q: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}

	return buf.Bytes(), nil
}

// Writer writes exports to disk. Relative or empty paths resolve against Dir.
type Writer struct {
	Dir string
}

// New returns a Writer rooted at dir.
func New(dir string) *Writer {
	return &Writer{Dir: dir}
}

// Entry writes a single entry and returns the path written.
func (w *Writer) Entry(e *prompt.Entry, tags []*prompt.Tag, path string) (string, error) {
	data, err := Markdown(e, tags)
	if err != nil {
		return "", err
	}

	p := w.resolve(path, Filename(e))
	if err := files.WriteFile(p, data); err != nil {
		return "", err
	}

	slog.Info("entry exported", "id", e.ID, "path", p)

	return p, nil
}

// Project writes a project archive and returns the path written.
func (w *Writer) Project(pe *prompt.ProjectExport, tags []*prompt.Tag, path string) (string, error) {
	data, err := Archive(pe, tags)
	if err != nil {
		return "", err
	}

	p := w.resolve(path, ArchiveName(pe.Project))
	if err := files.WriteFile(p, data); err != nil {
		return "", err
	}

	slog.Info("project exported", "id", pe.Project.ID, "entries", len(pe.Entries), "path", p)

	return p, nil
}

// resolve returns the target path. An empty path or a directory yields
// name inside it.
func (w *Writer) resolve(path, name string) string {
	path = files.ExpandHomeDir(path)
	if path == "" {
		return filepath.Join(w.Dir, name)
	}

	trailing := strings.HasSuffix(path, string(filepath.Separator))
	if !filepath.IsAbs(path) && w.Dir != "" {
		path = filepath.Join(w.Dir, path)
	}

	if trailing || isDir(path) {
		return filepath.Join(path, name)
	}

	return path
}

func isDir(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}

// uniqueName appends " (n)" before the extension for repeated names.
func uniqueName(name string, seen map[string]int) string {
	n := seen[name]
	seen[name] = n + 1
	if n == 0 {
		return name
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	candidate := fmt.Sprintf("%s (%d)%s", base, n+1, ext)

	return uniqueName(candidate, seen)
}

// sanitize makes s safe to use as a file name on common filesystems.
func sanitize(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			sb.WriteRune('_')
		case unicode.IsControl(r):
			sb.WriteRune(' ')
		default:
			sb.WriteRune(r)
		}
	}

	out := strings.Join(strings.Fields(sb.String()), " ")
	out = strings.Trim(out, ". ")

	if r := []rune(out); len(r) > maxNameLen {
		out = strings.TrimSpace(string(r[:maxNameLen]))
	}

	if out == "" {
		return untitled
	}

	return out
}

func timestamp(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
