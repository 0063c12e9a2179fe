package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mateconpizza/pm/internal/format"
	"github.com/mateconpizza/pm/pkg/prompt"
)

var (
	templateID      string
	templateProject string
	templateBody    string
	templateSchema  string
)

var templateCmd = &cobra.Command{
	Use:     "template",
	Aliases: []string{"tpl", "templates"},
	Short:   "manage prompt templates",
}

var templateListCmd = &cobra.Command{
	Use:     "ls [project]",
	Aliases: []string{"list"},
	Short:   "list global templates, plus the project's when given",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		r, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer r.Close()

		pid := ""
		if len(args) == 1 {
			p, err := resolveProject(ctx, r, args[0])
			if err != nil {
				return err
			}
			pid = p.ID
		}

		ts, err := r.ListTemplates(ctx, pid)
		if err != nil {
			return err
		}

		if jsonOutput() {
			return printJSON(cmd.OutOrStdout(), ts)
		}

		const width = 48
		rows := make([]string, 0, len(ts))
		for _, t := range ts {
			scope := "global"
			if t.ProjectID != nil {
				scope = "project"
			}
			rows = append(rows, fmt.Sprintf("%s\t%s\t%s\t%s",
				t.Name, scope, format.Oneline(t.BodyMarkdown, width), t.ID))
		}

		return table(cmd.OutOrStdout(), "NAME\tSCOPE\tBODY\tID", rows...)
	},
}

var templateSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "create a template, or update the one given with --id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		r, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer r.Close()

		p := &prompt.UpsertTemplateParams{
			ID:         templateID,
			Name:       args[0],
			SchemaJSON: prompt.NullIfEmpty(prompt.StrPtr(templateSchema)),
		}

		if templateProject != "" {
			proj, err := resolveProject(ctx, r, templateProject)
			if err != nil {
				return err
			}
			p.ProjectID = &proj.ID
		}

		src := templateBody
		if src == "" && stdinPiped(cmd) {
			src = "-"
		}

		current := ""
		if templateID != "" && src == "" {
			t, err := r.GetTemplate(ctx, templateID)
			if err != nil {
				return err
			}
			current = t.BodyMarkdown
		}

		if p.BodyMarkdown, err = readBody(cmd, src, current); err != nil {
			return err
		}

		id, err := r.UpsertTemplate(ctx, p)
		if err != nil {
			return err
		}

		return printID(cmd, id)
	},
}

var templateRemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove", "del"},
	Short:   "delete a template",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer r.Close()

		return r.DeleteTemplate(cmd.Context(), args[0])
	},
}

func init() {
	f := templateSaveCmd.Flags()
	f.StringVar(&templateID, "id", "", "template id to update")
	f.StringVarP(&templateProject, "project", "p", "", "owning project (name or id); global when empty")
	f.StringVarP(&templateBody, "body", "b", "", "template body, '-' reads stdin")
	f.StringVar(&templateSchema, "schema", "", "JSON schema of the template variables")

	templateCmd.AddCommand(templateListCmd, templateSaveCmd, templateRemoveCmd)
	rootCmd.AddCommand(templateCmd)
}
