package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mateconpizza/pm/internal/config"
	"github.com/mateconpizza/pm/internal/format"
	"github.com/mateconpizza/pm/internal/format/color"
)

var dumpConfig bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "initialize the database and, with --dump-config, the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if dumpConfig {
			if err := config.Dump(config.App.Path.ConfigFile, File, config.App.Flags.Force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "configfile path: %q\n", config.App.Path.ConfigFile)

			return nil
		}

		existed := Cfg.Exists()
		r, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer r.Close()

		ps, err := r.ListProjects(cmd.Context())
		if err != nil {
			return err
		}
		tags, err := r.ListTags(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput() {
			return printJSON(cmd.OutOrStdout(), struct {
				Path     string `json:"path"`
				Created  bool   `json:"created"`
				Projects int    `json:"projects"`
				Tags     int    `json:"tags"`
			}{Cfg.Fullpath(), !existed, len(ps), len(tags)})
		}

		state := "already initialized"
		if !existed {
			state = "initialized"
		}
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, color.Text(prettyVersion()).Bold())
		fmt.Fprintln(w, format.PaddedLine("database:", color.Green(state)))
		fmt.Fprintln(w, format.PaddedLine("path:", Cfg.Fullpath()))
		fmt.Fprintln(w, format.PaddedLine("projects:", len(ps)))
		fmt.Fprintln(w, format.PaddedLine("tags:", len(tags)))

		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&dumpConfig, "dump-config", false, "write the current config to the config file")
	initCmd.Flags().BoolVarP(&config.App.Flags.Force, "force", "f", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}
