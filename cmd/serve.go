package cmd

import (
	"cmp"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mateconpizza/pm/internal/config"
	"github.com/mateconpizza/pm/internal/sys/files"
)

var logFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "answer JSON requests read line by line from stdin",
	Long: `Read one JSON request per line from stdin and write one JSON response
per line to stdout, in order:

  {"id":1,"op":"projects.list"}
  {"id":1,"ok":true,"result":{"projects":[]}}

Runs until stdin is closed or the process is interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if p := cmp.Or(logFile, File.Log.File); p != "" {
			w := config.LogFile(files.ExpandHomeDir(p), File.Log.MaxSizeMB, File.Log.MaxBackups)
			defer w.Close()
			config.SetLogger(w, config.App.Flags.Verbose)
			slog.Info("serve started", "db", Cfg.Fullpath(), "pid", os.Getpid())
		}

		r, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer r.Close()

		err = newDispatcher(r).Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		if ctx.Err() != nil {
			return nil
		}

		return err
	},
}

func init() {
	serveCmd.Flags().StringVar(&logFile, "log-file", "", "write logs to a rotated file (default from config)")
	rootCmd.AddCommand(serveCmd)
}
