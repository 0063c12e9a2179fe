package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mateconpizza/pm/internal/config"
	"github.com/mateconpizza/pm/internal/export"
	"github.com/mateconpizza/pm/internal/format/color"
	"github.com/mateconpizza/pm/internal/sys"
	"github.com/mateconpizza/pm/pkg/db"
	"github.com/mateconpizza/pm/pkg/prompt"
)

var (
	exportOpen bool
	exportAll  bool
)

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"p", "projects"},
	Short:   "manage projects",
}

var projectListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "list projects, most recently updated first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		r, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer r.Close()

		ps, err := r.ListProjects(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput() {
			return printJSON(cmd.OutOrStdout(), ps)
		}

		rows := make([]string, 0, len(ps))
		for _, p := range ps {
			rows = append(rows, projectRow(p))
		}

		return table(cmd.OutOrStdout(), "NAME\tENTRIES\tUPDATED\tID", rows...)
	},
}

var projectNewCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "create a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer r.Close()

		id, err := r.CreateProject(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		return printID(cmd, id)
	},
}

var projectRenameCmd = &cobra.Command{
	Use:     "rename <project> <name>",
	Aliases: []string{"mv"},
	Short:   "rename a project",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer r.Close()

		p, err := resolveProject(cmd.Context(), r, args[0])
		if err != nil {
			return err
		}

		return r.UpdateProject(cmd.Context(), p.ID, args[1])
	},
}

var projectRemoveCmd = &cobra.Command{
	Use:     "rm <project>",
	Aliases: []string{"remove", "del"},
	Short:   "delete a project with its entries and templates",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer r.Close()

		p, err := resolveProject(cmd.Context(), r, args[0])
		if err != nil {
			return err
		}

		if p.EntryCount > 0 && !config.App.Flags.Force {
			return fmt.Errorf("%w: project %q has %d entries, use --force",
				ErrActionAborted, p.Name, p.EntryCount)
		}

		return r.DeleteProject(cmd.Context(), p.ID)
	},
}

var projectExportCmd = &cobra.Command{
	Use:   "export [project] [path]",
	Short: "export a project as a zip of Markdown files",
	Args:  cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		r, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer r.Close()

		if exportAll {
			return exportAllProjects(cmd, r, args)
		}

		if len(args) == 0 {
			return fmt.Errorf("%w: project", db.ErrInvalid)
		}

		p, err := resolveProject(ctx, r, args[0])
		if err != nil {
			return err
		}

		path := ""
		if len(args) > 1 {
			path = args[1]
		}

		out, err := exportProject(cmd, r, p.ID, path)
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

func exportProject(cmd *cobra.Command, r *db.SQLite, id, path string) (string, error) {
	pe, err := r.ExportProject(cmd.Context(), id)
	if err != nil {
		return "", err
	}

	tags, err := r.ListTags(cmd.Context())
	if err != nil {
		return "", err
	}

	return newExporter().Project(pe, tags, path)
}

// exportAllProjects writes one archive per project into the directory given
// as the only argument, or the export directory.
func exportAllProjects(cmd *cobra.Command, r *db.SQLite, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("%w: --all takes at most a directory", db.ErrInvalid)
	}

	ps, err := r.ListProjects(cmd.Context())
	if err != nil {
		return err
	}

	names := export.ArchiveNames(ps)
	if len(args) == 1 {
		for i, n := range names {
			names[i] = filepath.Join(args[0], n)
		}
	}

	paths := make([]string, len(ps))
	g := new(errgroup.Group)
	for i, p := range ps {
		g.Go(func() error {
			out, err := exportProject(cmd, r, p.ID, names[i])
			if err != nil {
				return fmt.Errorf("project %q: %w", p.Name, err)
			}
			paths[i] = out

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for _, p := range paths {
		if err := printExported(cmd, p); err != nil {
			return err
		}
	}

	return nil
}

func printExported(cmd *cobra.Command, path string) error {
	if jsonOutput() {
		return printJSON(cmd.OutOrStdout(), struct {
			Success bool   `json:"success"`
			Path    string `json:"path"`
		}{true, path})
	}

	fmt.Fprintln(cmd.OutOrStdout(), color.Green("exported").String(), strconv.Quote(path))

	return nil
}

func projectRow(p *prompt.ProjectSummary) string {
	return fmt.Sprintf("%s\t%d\t%s\t%s", p.Name, p.EntryCount, fmtTime(p.UpdatedAt), p.ID)
}

func init() {
	projectExportCmd.Flags().BoolVarP(&exportOpen, "open", "o", false, "open the exported file")
	projectExportCmd.Flags().BoolVarP(&exportAll, "all", "a", false, "export every project")
	projectRemoveCmd.Flags().BoolVarP(&config.App.Flags.Force, "force", "f", false, "delete even when the project has entries")

	projectCmd.AddCommand(projectListCmd, projectNewCmd, projectRenameCmd, projectRemoveCmd, projectExportCmd)
	rootCmd.AddCommand(projectCmd)
}
