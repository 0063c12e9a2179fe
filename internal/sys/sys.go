// Package sys wraps the few operating system services the CLI needs: the
// clipboard, opening files and running external commands.
package sys

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/atotto/clipboard"
	"github.com/pkg/browser"
)

var (
	ErrCopyToClipboard = errors.New("copy to clipboard")
	ErrOpenFile        = errors.New("open file")
)

// Env retrieves an environment variable.
//
// If the environment variable is not set, returns the default value.
func Env(s, def string) string {
	if v, ok := os.LookupEnv(s); ok {
		return v
	}

	return def
}

// RunCmd runs a command attached to the current terminal.
func RunCmd(ctx context.Context, s string, arg ...string) error {
	cmd := exec.CommandContext(ctx, s, arg...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running command: %w", err)
	}

	return nil
}

// CopyClipboard copies a string to the clipboard.
func CopyClipboard(s string) error {
	if err := clipboard.WriteAll(s); err != nil {
		return fmt.Errorf("%w: %w", ErrCopyToClipboard, err)
	}

	slog.Debug("text copied to clipboard", "bytes", len(s))

	return nil
}

// OpenFile opens a file with the system's default application.
func OpenFile(p string) error {
	if err := browser.OpenFile(p); err != nil {
		return fmt.Errorf("%w: %w", ErrOpenFile, err)
	}

	return nil
}

// Clipboard writes text to the system clipboard.
type Clipboard struct{}

// WriteText implements the clipboard collaborator of the dispatcher.
func (Clipboard) WriteText(s string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("%w: no clipboard utility found", ErrCopyToClipboard)
	}

	return CopyClipboard(s)
}
