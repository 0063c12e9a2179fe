package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mateconpizza/pm/internal/format"
	"github.com/mateconpizza/pm/internal/format/color"
	"github.com/mateconpizza/pm/pkg/prompt"
)

var (
	tagCategory string
	tagColor    string
)

var tagCmd = &cobra.Command{
	Use:     "tag",
	Aliases: []string{"t", "tags"},
	Short:   "manage tags",
}

var tagListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "list tags grouped by category",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		r, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer r.Close()

		ts, err := r.ListTags(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput() {
			return printJSON(cmd.OutOrStdout(), ts)
		}

		rows := make([]string, 0, len(ts))
		for _, t := range ts {
			// the colored name goes last so escapes do not break alignment.
			name := color.Hex(format.OrDefault(t.Color, ""), format.BulletPoint, t.Name)
			rows = append(rows, fmt.Sprintf("%s\t%s\t%s\t%s\t%s",
				format.OrDefault(t.Category, "-"), format.OrDefault(t.Color, "-"),
				mark(t.IsDefault, "default"), t.ID, name))
		}

		return table(cmd.OutOrStdout(), "CATEGORY\tCOLOR\tKIND\tID\tNAME", rows...)
	},
}

var tagNewCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "create a tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer r.Close()

		id, err := r.CreateTag(cmd.Context(), args[0],
			prompt.NullIfEmpty(prompt.StrPtr(tagCategory)),
			prompt.NullIfEmpty(prompt.StrPtr(tagColor)))
		if err != nil {
			return err
		}

		return printID(cmd, id)
	},
}

var tagRemoveCmd = &cobra.Command{
	Use:     "rm <tag>",
	Aliases: []string{"remove", "del"},
	Short:   "delete a user tag",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		r, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer r.Close()

		ids, err := resolveTags(ctx, r, args)
		if err != nil {
			return err
		}

		return r.DeleteTag(ctx, ids[0])
	},
}

var tagAttachCmd = &cobra.Command{
	Use:   "attach <entry> [tag...]",
	Short: "replace the tags of an entry; no tags clears them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		r, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer r.Close()

		ids, err := resolveTags(ctx, r, args[1:])
		if err != nil {
			return err
		}

		return r.AttachTags(ctx, args[0], ids)
	},
}

func init() {
	tagNewCmd.Flags().StringVar(&tagCategory, "category", "", "tag category")
	tagNewCmd.Flags().StringVar(&tagColor, "color", "", "tag color, e.g. #14B8A6")

	tagCmd.AddCommand(tagListCmd, tagNewCmd, tagRemoveCmd, tagAttachCmd)
	rootCmd.AddCommand(tagCmd)
}
