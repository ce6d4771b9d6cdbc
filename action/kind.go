// Package action maps keys to actions and executes the ones that end a
// session.
package action

import "strings"

// Kind is one user action.
type Kind int

const (
	None Kind = iota
	ChangeDir
	OpenEditor
	OpenVSCode
	OpenSublime
	Reveal
	Shell
	CopyPath
	Print
	SwitchFilename
	SwitchContent
	ToggleMode
	ToggleCase
	ToggleHidden
	Quit
)

var names = map[Kind]string{
	ChangeDir:      "cd",
	OpenEditor:     "editor",
	OpenVSCode:     "code",
	OpenSublime:    "subl",
	Reveal:         "reveal",
	Shell:          "shell",
	CopyPath:       "copy",
	Print:          "print",
	SwitchFilename: "filename-mode",
	SwitchContent:  "content-mode",
	ToggleMode:     "toggle-mode",
	ToggleCase:     "toggle-case",
	ToggleHidden:   "toggle-hidden",
	Quit:           "quit",
}

func (k Kind) String() string {
	if n, ok := names[k]; ok {
		return n
	}
	return "none"
}

// Terminal reports whether executing k ends the session.
func (k Kind) Terminal() bool {
	switch k {
	case ChangeDir, OpenEditor, OpenVSCode, OpenSublime, Reveal, Shell, CopyPath, Print:
		return true
	}
	return false
}

// ParseKind resolves a name from the preferences file. Only actions that act
// on a selection are accepted; "vim" is an alias for the editor.
func ParseKind(name string) (Kind, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "vim" || name == "open" {
		return OpenEditor, true
	}
	for k, n := range names {
		if n == name && k.Terminal() {
			return k, true
		}
	}
	return None, false
}
