package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mateconpizza/pm/internal/config"
)

func prettyVersion() string {
	return fmt.Sprintf("%s v%s %s/%s", config.App.Name, config.App.Version, runtime.GOOS, runtime.GOARCH)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		if config.App.Flags.JSON {
			_ = printJSON(cmd.OutOrStdout(), config.App)
			return
		}

		fmt.Fprintln(cmd.OutOrStdout(), prettyVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
