package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mateconpizza/pm/internal/config"
	"github.com/mateconpizza/pm/internal/dispatch"
	"github.com/mateconpizza/pm/internal/export"
	"github.com/mateconpizza/pm/internal/sys"
	"github.com/mateconpizza/pm/internal/sys/editor"
	"github.com/mateconpizza/pm/internal/sys/files"
	"github.com/mateconpizza/pm/pkg/db"
	"github.com/mateconpizza/pm/pkg/prompt"
)

var (
	ErrAmbiguous = errors.New("ambiguous name")
	ErrBodyEmpty = errors.New("empty body, nothing saved")
)

// openStore opens the configured database, creating it when missing.
func openStore(ctx context.Context) (*db.SQLite, error) {
	r, err := db.Open(ctx, Cfg)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", Cfg.Fullpath(), err)
	}

	return r, nil
}

// newDispatcher binds the store to the system clipboard and the export
// directory.
func newDispatcher(r dispatch.Store) *dispatch.Dispatcher {
	return dispatch.New(r,
		dispatch.WithClipboard(sys.Clipboard{}),
		dispatch.WithExporter(newExporter()),
	)
}

func newExporter() *export.Writer {
	return export.New(files.ExpandHomeDir(config.App.Path.Export))
}

// jsonOutput reports whether results are printed as JSON.
func jsonOutput() bool {
	return config.App.Flags.JSON || !term.IsTerminal(int(os.Stdout.Fd()))
}

// stdinPiped reports whether the command input is not a terminal.
func stdinPiped(cmd *cobra.Command) bool {
	f, ok := cmd.InOrStdin().(*os.File)
	if !ok {
		return true
	}

	return !term.IsTerminal(int(f.Fd()))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}

	return nil
}

// table writes tab separated rows aligned in columns.
func table(w io.Writer, header string, rows ...string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	for _, r := range rows {
		fmt.Fprintln(tw, r)
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("writing table: %w", err)
	}

	return nil
}

// printID prints a created id, as an object in JSON mode.
func printID(cmd *cobra.Command, id string) error {
	if jsonOutput() {
		return printJSON(cmd.OutOrStdout(), map[string]string{"id": id})
	}

	fmt.Fprintln(cmd.OutOrStdout(), id)

	return nil
}

func fmtTime(ms int64) string {
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}

func mark(b bool, s string) string {
	if b {
		return s
	}

	return "-"
}

// colorEnabled resolves the --color mode. "auto" colors only a terminal
// without NO_COLOR set.
func colorEnabled(mode string) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto", "":
		_, noColor := os.LookupEnv("NO_COLOR")
		return !noColor && term.IsTerminal(int(os.Stdout.Fd())), nil
	default:
		return false, fmt.Errorf("%w: --color %q, want auto|always|never", db.ErrInvalid, mode)
	}
}

// resolveProject finds a project by id or by case-insensitive name.
func resolveProject(ctx context.Context, r *db.SQLite, s string) (*prompt.ProjectSummary, error) {
	ps, err := r.ListProjects(ctx)
	if err != nil {
		return nil, err
	}

	var found []*prompt.ProjectSummary
	for _, p := range ps {
		if p.ID == s {
			return p, nil
		}
		if strings.EqualFold(p.Name, s) {
			found = append(found, p)
		}
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %q", db.ErrProjectNotFound, s)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%w: %d projects named %q, use the id", ErrAmbiguous, len(found), s)
	}
}

// resolveTags maps tag names or ids to ids.
func resolveTags(ctx context.Context, r *db.SQLite, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}

	tags, err := r.ListTags(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(names))
	for _, n := range names {
		id := findTag(tags, n)

		if id == "" {
			return nil, fmt.Errorf("%w: %q", db.ErrTagNotFound, n)
		}
		ids = append(ids, id)
	}

	return prompt.UniqueIDs(ids), nil
}

// findTag matches by id or exact name first, then ignoring case.
func findTag(tags []*prompt.Tag, s string) string {
	for _, t := range tags {
		if t.ID == s || t.Name == s {
			return t.ID
		}
	}

	for _, t := range tags {
		if strings.EqualFold(t.Name, s) {
			return t.ID
		}
	}

	return ""
}

// readBody returns the body from the flag value, from piped stdin when the
// value is "-", or from the text editor seeded with current.
func readBody(cmd *cobra.Command, flagValue string, current string) (string, error) {
	switch {
	case flagValue == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}

		return string(data), nil
	case flagValue != "":
		return flagValue, nil
	}

	te, err := editor.New(File.Editor)
	if err != nil {
		return "", err
	}

	data, err := te.EditBytes(cmd.Context(), []byte(current), ".md")
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(string(data)) == "" {
		return "", ErrBodyEmpty
	}

	return string(data), nil
}
