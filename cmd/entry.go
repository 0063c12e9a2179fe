package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mateconpizza/pm/internal/config"
	"github.com/mateconpizza/pm/internal/export"
	"github.com/mateconpizza/pm/internal/format"
	"github.com/mateconpizza/pm/internal/format/color"
	"github.com/mateconpizza/pm/internal/sys"
	"github.com/mateconpizza/pm/pkg/prompt"
)

var ErrEntryLocked = errors.New("entry is locked")

var (
	entryTags    []string
	entryStarred bool
	entrySort    string

	entryTitle  string
	entryBody   string
	entrySource string
	entryStar   bool
	entryLock   bool

	entryOff bool
)

var entryCmd = &cobra.Command{
	Use:     "entry",
	Aliases: []string{"e", "entries"},
	Short:   "manage prompt entries",
}

var entryListCmd = &cobra.Command{
	Use:     "ls <project> [query...]",
	Aliases: []string{"list", "search"},
	Short:   "list and search the entries of a project",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		r, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer r.Close()

		p, err := resolveProject(ctx, r, args[0])
		if err != nil {
			return err
		}

		tagIDs, err := resolveTags(ctx, r, entryTags)
		if err != nil {
			return err
		}

		es, err := r.ListEntries(ctx, &prompt.ListParams{
			ProjectID: p.ID,
			Query:     strings.Join(args[1:], " "),
			Filters:   prompt.Filters{TagIDs: tagIDs, Starred: entryStarred},
			Sort:      entrySort,
		})
		if err != nil {
			return err
		}

		if jsonOutput() {
			return printJSON(cmd.OutOrStdout(), es)
		}

		const snippetWidth = 48
		rows := make([]string, 0, len(es))
		for _, e := range es {
			rows = append(rows, fmt.Sprintf("%s%s\t%s\t%s\t%s\t%s",
				color.Yellow(mark(e.IsStarred, "*")), color.Red(mark(e.IsLocked, "L")),
				format.Oneline(format.OrDefault(e.Title, "(untitled)"), snippetWidth),
				format.Oneline(e.Snippet, snippetWidth),
				fmtTime(e.UpdatedAt), e.ID))
		}

		return table(cmd.OutOrStdout(), "FLAGS\tTITLE\tSNIPPET\tUPDATED\tID", rows...)
	},
}

var entryShowCmd = &cobra.Command{
	Use:     "show <id>",
	Aliases: []string{"cat", "get"},
	Short:   "print an entry as Markdown",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		r, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer r.Close()

		e, err := r.GetEntry(ctx, args[0])
		if err != nil {
			return err
		}

		if jsonOutput() {
			return printJSON(cmd.OutOrStdout(), e)
		}

		tags, err := r.ListTags(ctx)
		if err != nil {
			return err
		}

		data, err := export.Markdown(e, tags)
		if err != nil {
			return err
		}

		_, err = cmd.OutOrStdout().Write(data)

		return err
	},
}

var entryAddCmd = &cobra.Command{
	Use:     "add <project>",
	Aliases: []string{"new"},
	Short:   "add an entry, reading the body from --body, stdin or the editor",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		r, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer r.Close()

		p, err := resolveProject(ctx, r, args[0])
		if err != nil {
			return err
		}

		tagIDs, err := resolveTags(ctx, r, entryTags)
		if err != nil {
			return err
		}

		src := entryBody
		if src == "" && stdinPiped(cmd) {
			src = "-"
		}

		body, err := readBody(cmd, src, "")
		if err != nil {
			return err
		}

		id, err := r.UpsertEntry(ctx, &prompt.UpsertEntryParams{
			ProjectID:    p.ID,
			Title:        prompt.NullIfEmpty(prompt.StrPtr(entryTitle)),
			BodyMarkdown: body,
			SourceJSON:   prompt.NullIfEmpty(prompt.StrPtr(entrySource)),
			IsStarred:    entryStar,
			IsLocked:     entryLock,
			TagIDs:       tagIDs,
		})
		if err != nil {
			return err
		}

		return printID(cmd, id)
	},
}

var entryEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "edit an entry; without --body the editor opens on the current body",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		r, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer r.Close()

		e, err := r.GetEntry(ctx, args[0])
		if err != nil {
			return err
		}

		if e.IsLocked && !config.App.Flags.Force {
			return fmt.Errorf("%w: %s, use --force or 'entry lock --off'", ErrEntryLocked, e.ID)
		}

		f := cmd.Flags()
		p := &prompt.UpsertEntryParams{
			ID:           e.ID,
			Title:        e.Title,
			BodyMarkdown: e.BodyMarkdown,
			SourceJSON:   e.SourceJSON,
			IsStarred:    e.IsStarred,
			IsLocked:     e.IsLocked,
			TagIDs:       e.TagIDs,
		}

		if f.Changed("title") {
			p.Title = prompt.NullIfEmpty(prompt.StrPtr(entryTitle))
		}
		if f.Changed("source") {
			p.SourceJSON = prompt.NullIfEmpty(prompt.StrPtr(entrySource))
		}
		if f.Changed("tag") {
			if p.TagIDs, err = resolveTags(ctx, r, entryTags); err != nil {
				return err
			}
		}

		// metadata-only edits keep the body without opening the editor.
		metaOnly := !f.Changed("body") && (f.Changed("title") || f.Changed("source") || f.Changed("tag"))
		if !metaOnly {
			if p.BodyMarkdown, err = readBody(cmd, entryBody, e.BodyMarkdown); err != nil {
				return err
			}
		}

		if _, err := r.UpsertEntry(ctx, p); err != nil {
			return err
		}

		return printID(cmd, e.ID)
	},
}

var entryRemoveCmd = &cobra.Command{
	Use:     "rm <id>...",
	Aliases: []string{"remove", "del"},
	Short:   "delete entries",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		r, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer r.Close()

		for _, id := range args {
			if err := r.DeleteEntry(ctx, id); err != nil {
				return err
			}
		}

		return nil
	},
}

var entryStarCmd = &cobra.Command{
	Use:   "star <id>",
	Short: "star an entry, or unstar it with --off",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer r.Close()

		return r.SetStarred(cmd.Context(), args[0], !entryOff)
	},
}

var entryLockCmd = &cobra.Command{
	Use:   "lock <id>",
	Short: "lock an entry against edits, or unlock it with --off",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer r.Close()

		return r.SetLocked(cmd.Context(), args[0], !entryOff)
	},
}

var entryExportCmd = &cobra.Command{
	Use:   "export <id> [path]",
	Short: "export an entry as a Markdown file",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		r, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer r.Close()

		e, err := r.ExportEntry(ctx, args[0])
		if err != nil {
			return err
		}

		tags, err := r.ListTags(ctx)
		if err != nil {
			return err
		}

		path := ""
		if len(args) > 1 {
			path = args[1]
		}

		out, err := newExporter().Entry(e, tags, path)
		if err != nil {
			return err
		}

		if err := printExported(cmd, out); err != nil {
			return err
		}

		if exportOpen {
			return sys.OpenFile(out)
		}

		return nil
	},
}

var entryCopyCmd = &cobra.Command{
	Use:     "copy <id>",
	Aliases: []string{"yank", "cp"},
	Short:   "copy the body of an entry to the clipboard",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer r.Close()

		e, err := r.GetEntry(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		return sys.Clipboard{}.WriteText(e.BodyMarkdown)
	},
}

func init() {
	lf := entryListCmd.Flags()
	lf.StringSliceVarP(&entryTags, "tag", "t", nil, "only entries with any of these tags (name or id)")
	lf.BoolVarP(&entryStarred, "starred", "s", false, "only starred entries")
	lf.StringVar(&entrySort, "sort", prompt.SortUpdatedDesc, "sort order [updated_desc|created_desc]")

	for _, c := range []*cobra.Command{entryAddCmd, entryEditCmd} {
		f := c.Flags()
		f.StringVarP(&entryTitle, "title", "T", "", "entry title")
		f.StringVarP(&entryBody, "body", "b", "", "entry body, '-' reads stdin")
		f.StringVar(&entrySource, "source", "", "opaque JSON payload stored with the entry")
		f.StringSliceVarP(&entryTags, "tag", "t", nil, "tags (name or id)")
	}
	entryAddCmd.Flags().BoolVar(&entryStar, "star", false, "star the entry")
	entryAddCmd.Flags().BoolVar(&entryLock, "lock", false, "lock the entry")
	entryEditCmd.Flags().BoolVarP(&config.App.Flags.Force, "force", "f", false, "edit even when locked")

	entryStarCmd.Flags().BoolVar(&entryOff, "off", false, "clear the flag")
	entryLockCmd.Flags().BoolVar(&entryOff, "off", false, "clear the flag")
	entryExportCmd.Flags().BoolVarP(&exportOpen, "open", "o", false, "open the exported file")

	entryCmd.AddCommand(
		entryListCmd, entryShowCmd, entryAddCmd, entryEditCmd, entryRemoveCmd,
		entryStarCmd, entryLockCmd, entryExportCmd, entryCopyCmd,
	)
	rootCmd.AddCommand(entryCmd)
}
