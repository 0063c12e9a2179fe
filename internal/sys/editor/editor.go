// Package editor opens text in the user's preferred editor.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	shellwords "github.com/junegunn/go-shellwords"

	"github.com/mateconpizza/pm/internal/sys"
	"github.com/mateconpizza/pm/internal/sys/files"
)

var (
	ErrCommandNotFound    = errors.New("command not found")
	ErrTextEditorNotFound = errors.New("text editor not found")
)

// Fallback text editors if $EDITOR || $PM_EDITOR var is not set.
var textEditors = []string{"vim", "nvim", "nano", "emacs"}

type TextEditor struct {
	name string
	cmd  string
	args []string
}

// Name returns the editor name as configured.
func (te *TextEditor) Name() string {
	return te.name
}

// EditBytes edits a byte slice with a text editor.
func (te *TextEditor) EditBytes(ctx context.Context, content []byte, extension string) ([]byte, error) {
	if te.cmd == "" {
		return nil, ErrCommandNotFound
	}

	f, err := files.CreateTempFileWithData(content, extension)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	defer files.CloseAndClean(f)

	slog.Debug("editing file", "name", f.Name(), "editor", te.name)

	if err := sys.RunCmd(ctx, te.cmd, append(te.args, f.Name())...); err != nil {
		return nil, fmt.Errorf("error running editor: %w", err)
	}

	data, err := os.ReadFile(f.Name())
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return data, nil
}

// New retrieves the preferred editor to use for editing.
//
// The first non-empty value of preferred, $PM_EDITOR and $EDITOR wins. The
// value is split like a shell would, so "code --wait" works. When none is
// set, the first installed fallback editor is used.
//
// # fallbackEditors: `"vim", "nvim", "nano", "emacs"`.
func New(preferred string) (*TextEditor, error) {
	for _, s := range []string{preferred, sys.Env("PM_EDITOR", ""), sys.Env("EDITOR", "")} {
		if s == "" {
			continue
		}

		return parseEditor(s)
	}

	slog.Debug("$EDITOR and $PM_EDITOR not set, checking fallback text editor", "editors", textEditors)

	for _, e := range textEditors {
		if p, err := exec.LookPath(e); err == nil {
			editor := newTextEditor(p, e, []string{})
			slog.Debug("found fallback text editor", "editor", e)

			return editor, nil
		}
	}

	return nil, ErrTextEditorNotFound
}

// parseEditor splits an editor command line and resolves its binary.
func parseEditor(s string) (*TextEditor, error) {
	args, err := shellwords.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("parsing editor %q: %w", s, err)
	}

	if len(args) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrTextEditorNotFound, s)
	}

	p, err := exec.LookPath(args[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrTextEditorNotFound, args[0])
	}

	slog.Debug("editor set", "editor", args[0], "args", args[1:])

	return newTextEditor(p, args[0], args[1:]), nil
}

func newTextEditor(c, n string, arg []string) *TextEditor {
	return &TextEditor{
		cmd:  c,
		name: n,
		args: arg,
	}
}
