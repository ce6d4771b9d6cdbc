package action

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/atotto/clipboard"
	"github.com/takaishi/yoink/editor"
	"github.com/takaishi/yoink/logging"
	"github.com/takaishi/yoink/search"
)

// Dispatcher executes session-ending actions once the UI has released the
// terminal.
type Dispatcher struct {
	Root        string
	Editor      editor.Editor
	HandoffFile string
	Stdio       editor.Stdio
	// Out receives the print action.
	Out io.Writer

	// Hooks for the side effects; nil uses the real implementation.
	OpenFile  func(e editor.Editor, file string, line, column int, stdio editor.Stdio) error
	Reveal    func(dir string) error
	Shell     func(dir string, stdio editor.Stdio) error
	Clipboard func(text string) error
}

// Execute runs k on c. Actions that do not end the session are rejected.
func (d *Dispatcher) Execute(k Kind, c search.Candidate) error {
	if !k.Terminal() {
		return fmt.Errorf("%s is not a selection action", k)
	}
	abs := c.Abs(d.Root)
	line, column := 0, 0
	if c.Match != nil {
		line, column = c.Match.Line, c.Match.Column()
	}
	logging.For("action").Info("action_executed", slog.String("action", k.String()), slog.String("path", abs), slog.Int("line", line))

	switch k {
	case ChangeDir:
		return WriteHandoff(d.HandoffFile, TargetDir(d.Root, c))
	case OpenEditor:
		return d.openFile()(d.Editor, abs, line, column, d.Stdio)
	case OpenVSCode:
		return d.openFile()(editor.EditorCode, abs, line, column, d.Stdio)
	case OpenSublime:
		return d.openFile()(editor.EditorSublime, abs, line, column, d.Stdio)
	case Reveal:
		return d.reveal()(TargetDir(d.Root, c))
	case Shell:
		return d.shell()(TargetDir(d.Root, c), d.Stdio)
	case CopyPath:
		return d.clipboard()(abs)
	case Print:
		out := abs
		if line > 0 {
			out = fmt.Sprintf("%s:%d", abs, line)
		}
		_, err := fmt.Fprintln(d.Out, out)
		return err
	}
	return nil
}

func (d *Dispatcher) openFile() func(editor.Editor, string, int, int, editor.Stdio) error {
	if d.OpenFile != nil {
		return d.OpenFile
	}
	return editor.OpenFile
}

func (d *Dispatcher) reveal() func(string) error {
	if d.Reveal != nil {
		return d.Reveal
	}
	return editor.Reveal
}

func (d *Dispatcher) shell() func(string, editor.Stdio) error {
	if d.Shell != nil {
		return d.Shell
	}
	return editor.SpawnShell
}

func (d *Dispatcher) clipboard() func(string) error {
	if d.Clipboard != nil {
		return d.Clipboard
	}
	return clipboard.WriteAll
}
