// Package cmd implements the pm command line.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mateconpizza/pm/internal/config"
	"github.com/mateconpizza/pm/internal/format/color"
	"github.com/mateconpizza/pm/pkg/db"
)

var (
	// Cfg is the database configuration resolved for this run.
	Cfg *db.Cfg
	// File is the loaded config file.
	File *config.File
)

var ErrActionAborted = errors.New("action aborted")

var rootCmd = &cobra.Command{
	Use:               config.App.Cmd,
	Short:             config.App.Info.Desc,
	Long:              config.App.Info.Title + "\n\n" + config.App.Info.Desc,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", config.App.Cmd, err)
		os.Exit(1)
	}
}

func init() {
	f := config.App.Flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&f.DBPath, "db", "", "database file (default: <data dir>/"+db.DefaultName+")")
	pf.StringVarP(&f.ConfigFile, "config", "c", "", "config file (default: <data dir>/"+config.DefaultFilename+")")
	pf.BoolVarP(&f.JSON, "json", "j", false, "print data in JSON format")
	pf.CountVarP(&f.Verbose, "verbose", "v", "verbosity level (-v, -vv, -vvv)")
	pf.StringVar(&f.Color, "color", "auto", "colorize output [auto|always|never]")

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}

// setup resolves paths, loads the config file and builds the database
// configuration.
func setup(_ *cobra.Command, _ []string) error {
	flags := config.App.Flags
	config.SetVerbosity(flags.Verbose)

	useColor, err := colorEnabled(flags.Color)
	if err != nil {
		return err
	}
	color.Enabled = useColor

	dataPath, err := config.DataPath()
	if err != nil {
		return err
	}
	config.SetAppPaths(dataPath)

	cfgPath := flags.ConfigFile
	if cfgPath == "" {
		cfgPath = config.App.Path.ConfigFile
	}
	config.App.Path.ConfigFile = cfgPath

	File, err = config.Load(cfgPath)
	if err != nil {
		return err
	}

	Cfg = File.DB
	Cfg.Path = dataPath

	if flags.DBPath != "" {
		c, err := db.NewSQLiteCfg(flags.DBPath)
		if err != nil {
			return err
		}
		c.Driver = File.DB.Driver
		c.SeedDefaults = File.DB.SeedDefaults
		Cfg = c
	}

	if File.Export.Dir != "" {
		config.App.Path.Export = filepath.Clean(File.Export.Dir)
	}
	if File.Backup.Dir != "" {
		config.App.Path.Backup = filepath.Clean(File.Backup.Dir)
	}

	slog.Debug("setup", "data", dataPath, "db", Cfg.Fullpath(), "config", cfgPath)

	return nil
}
