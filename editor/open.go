package editor

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Editor is the command used to open files, e.g. "nvim", "code" or "subl".
// It may carry arguments ("emacs -nw").
type Editor string

// Style describes how an editor expects a file position on its command line.
type Style int

const (
	// StyleTerminal editors take "+LINE FILE" and need the terminal.
	StyleTerminal Style = iota
	// StyleVSCode editors take "-g FILE:LINE:COL" and detach.
	StyleVSCode
	// StyleCursor editors take "--goto FILE:LINE:COL" and detach.
	StyleCursor
	// StyleSublime editors take "FILE:LINE:COL" and detach.
	StyleSublime
)

const (
	EditorCode    Editor = "code"
	EditorCursor  Editor = "cursor"
	EditorSublime Editor = "subl"
)

// Stdio is the terminal a foreground editor or shell is attached to.
type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// OSStdio returns the process stdio.
func OSStdio() Stdio {
	return Stdio{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// Resolve returns the first non-empty candidate, falling back to detection.
func Resolve(candidates ...string) (Editor, error) {
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return Editor(c), nil
		}
	}
	return DetectEditor()
}

// DetectEditor detects which editor is available
func DetectEditor() (Editor, error) {
	for _, name := range []string{"nvim", "vim", "vi", "cursor", "code", "subl", "nano"} {
		if _, err := exec.LookPath(name); err == nil {
			return Editor(name), nil
		}
	}
	return "", fmt.Errorf("no editor found (set $EDITOR or --editor)")
}

// Fields splits the editor command into program and leading arguments.
func (e Editor) Fields() []string {
	return strings.Fields(string(e))
}

// Style infers the command line convention from the program name.
func (e Editor) Style() Style {
	fields := e.Fields()
	if len(fields) == 0 {
		return StyleTerminal
	}
	switch strings.TrimSuffix(filepath.Base(fields[0]), ".exe") {
	case "code", "code-insiders", "codium", "vscodium":
		return StyleVSCode
	case "cursor", "windsurf":
		return StyleCursor
	case "subl", "sublime_text":
		return StyleSublime
	}
	return StyleTerminal
}

// Command builds the command that opens file at line and column. A line of 0
// opens the file without positioning.
func Command(e Editor, file string, line, column int) (*exec.Cmd, error) {
	fields := e.Fields()
	if len(fields) == 0 {
		return nil, fmt.Errorf("editor is empty")
	}
	args := append([]string(nil), fields[1:]...)

	switch e.Style() {
	case StyleVSCode:
		if isRunningInEditor() {
			args = append(args, "--reuse-window")
		}
		args = append(args, "-g", position(file, line, column))
	case StyleCursor:
		if isRunningInEditor() {
			args = append(args, "--reuse-window")
		}
		args = append(args, "--goto", position(file, line, column))
	case StyleSublime:
		args = append(args, position(file, line, column))
	default:
		if line > 0 {
			args = append(args, "+"+strconv.Itoa(line))
		}
		args = append(args, file)
	}
	return exec.Command(fields[0], args...), nil
}

// OpenFile opens a file in the specified editor at the given line and column.
// Terminal editors run in the foreground on stdio; GUI editors are started
// and left running.
func OpenFile(e Editor, file string, line, column int, stdio Stdio) error {
	cmd, err := Command(e, file, line, column)
	if err != nil {
		return err
	}

	if e.Style() == StyleTerminal {
		cmd.Stdin, cmd.Stdout, cmd.Stderr = stdio.In, stdio.Out, stdio.Err
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("run %s: %w", cmd.Path, err)
		}
		return nil
	}

	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", cmd.Path, err)
	}
	return cmd.Process.Release()
}

func position(file string, line, column int) string {
	if line <= 0 {
		return file
	}
	if column <= 0 {
		return fmt.Sprintf("%s:%d", file, line)
	}
	return fmt.Sprintf("%s:%d:%d", file, line, column)
}

// isRunningInEditor checks if the process is running inside a Cursor or VS Code terminal
func isRunningInEditor() bool {
	if hook := os.Getenv("VSCODE_IPC_HOOK_CLI"); hook != "" {
		return true
	}
	if hook := os.Getenv("VSCODE_IPC_HOOK"); hook != "" {
		if _, err := os.Stat(hook); err == nil || strings.HasSuffix(hook, ".sock") {
			return true
		}
	}
	if os.Getenv("TERM_PROGRAM") == "vscode" || os.Getenv("CURSOR_AGENT") != "" {
		return true
	}
	return false
}
