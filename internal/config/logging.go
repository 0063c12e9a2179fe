package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetVerbosity installs the default logger on stderr. Each step of verbose
// lowers the level, from errors only up to debug.
func SetVerbosity(verbose int) {
	SetLogger(os.Stderr, verbose)
}

// SetLogger installs the default logger writing to w. A terminal gets
// colored output, anything else plain key=value lines.
func SetLogger(w io.Writer, verbose int) {
	level := levelFor(verbose)

	var h slog.Handler
	if isTerminal(w) {
		h = tint.NewHandler(w, &tint.Options{
			AddSource:   true,
			Level:       level,
			TimeFormat:  time.TimeOnly,
			ReplaceAttr: shortSource,
		})
	} else {
		h = slog.NewTextHandler(w, &slog.HandlerOptions{
			AddSource:   true,
			Level:       level,
			ReplaceAttr: shortSource,
		})
	}
	slog.SetDefault(slog.New(h))

	slog.Debug("logging", "level", level)
}

// LogFile returns a log writer for p that rotates at maxSizeMB, keeping
// maxBackups compressed files.
func LogFile(p string, maxSizeMB, maxBackups int) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   p,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		Compress:   true,
	}
}

func levelFor(verbose int) slog.Level {
	levels := []slog.Level{
		slog.LevelError,
		slog.LevelWarn,
		slog.LevelInfo,
		slog.LevelDebug,
	}

	return levels[max(0, min(verbose, len(levels)-1))]
}

// shortSource trims the source attribute to "dir/file.go:line".
func shortSource(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.SourceKey {
		return a
	}

	source, ok := a.Value.Any().(*slog.Source)
	if !ok {
		return a
	}

	dir, file := filepath.Split(source.File)
	short := filepath.Join(filepath.Base(filepath.Clean(dir)), file)

	return slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", short, source.Line))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
