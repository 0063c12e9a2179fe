package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mateconpizza/pm/internal/config"
	"github.com/mateconpizza/pm/internal/dbtask"
	"github.com/mateconpizza/pm/internal/format"
	"github.com/mateconpizza/pm/internal/format/color"
	"github.com/mateconpizza/pm/internal/sys/files"
)

var backupKeep int

var dbCmd = &cobra.Command{
	Use:     "db",
	Aliases: []string{"database"},
	Short:   "database maintenance",
}

var dbStatsCmd = &cobra.Command{
	Use:     "stats",
	Aliases: []string{"info"},
	Short:   "print row counts and the database size",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		r, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer r.Close()

		s, err := dbtask.NewStats(cmd.Context(), r)
		if err != nil {
			return err
		}

		if jsonOutput() {
			return printJSON(cmd.OutOrStdout(), s)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, color.Text(s.Name).Bold())
		fmt.Fprintln(w, format.PaddedLine("path:", s.Path))
		fmt.Fprintln(w, format.PaddedLine("size:", s.Size))
		fmt.Fprintln(w, format.PaddedLine("projects:", s.Projects))
		fmt.Fprintln(w, format.PaddedLine("entries:", fmt.Sprintf("%d (%d starred, %d locked)", s.Entries, s.Starred, s.Locked)))
		fmt.Fprintln(w, format.PaddedLine("tags:", s.Tags))
		fmt.Fprintln(w, format.PaddedLine("templates:", s.Templates))

		return nil
	},
}

var dbCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "run an integrity check",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		r, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer r.Close()

		if err := dbtask.Check(cmd.Context(), r); err != nil {
			return err
		}

		if !jsonOutput() {
			fmt.Fprintln(cmd.OutOrStdout(), color.Green("ok").String(), r.Cfg.Fullpath())
		}

		return nil
	},
}

var dbBackupCmd = &cobra.Command{
	Use:     "backup",
	Aliases: []string{"bk"},
	Short:   "write a verified copy of the database to the backup directory",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		r, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer r.Close()

		dir := files.ExpandHomeDir(config.App.Path.Backup)
		p, err := dbtask.Backup(cmd.Context(), r, dir)
		if err != nil {
			return err
		}

		keep := File.Backup.Keep
		if cmd.Flags().Changed("keep") {
			keep = backupKeep
		}

		removed, err := dbtask.Prune(dir, r.Name(), keep)
		if err != nil {
			return err
		}

		if jsonOutput() {
			return printJSON(cmd.OutOrStdout(), struct {
				Path    string   `json:"path"`
				Removed []string `json:"removed"`
			}{p, removed})
		}

		fmt.Fprintln(cmd.OutOrStdout(), color.Green("backup").String(), p)
		for _, rm := range removed {
			fmt.Fprintln(cmd.OutOrStdout(), color.Gray("removed").String(), rm)
		}

		return nil
	},
}

var dbBackupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "list backups of the database, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		bks, err := dbtask.Backups(files.ExpandHomeDir(config.App.Path.Backup), Cfg.Name)
		if err != nil {
			return err
		}

		if jsonOutput() {
			if bks == nil {
				bks = []string{}
			}
			return printJSON(cmd.OutOrStdout(), bks)
		}

		for _, b := range bks {
			fmt.Fprintln(cmd.OutOrStdout(), b)
		}

		return nil
	},
}

func init() {
	dbBackupCmd.Flags().IntVar(&backupKeep, "keep", 0, "keep only the newest <int> backups (default from config)")

	dbCmd.AddCommand(dbStatsCmd, dbCheckCmd, dbBackupCmd, dbBackupsCmd)
	rootCmd.AddCommand(dbCmd)
}
