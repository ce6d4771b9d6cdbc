package action

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap binds keys to actions.
type KeyMap struct {
	Confirm        key.Binding
	OpenEditor     key.Binding
	OpenVSCode     key.Binding
	OpenSublime    key.Binding
	Reveal         key.Binding
	Shell          key.Binding
	CopyPath       key.Binding
	SwitchFilename key.Binding
	SwitchContent  key.Binding
	ToggleMode     key.Binding
	ToggleCase     key.Binding
	ToggleHidden   key.Binding
	Quit           key.Binding

	// Navigation and help are handled by the UI itself.
	Up          key.Binding
	Down        key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	PreviewUp   key.Binding
	PreviewDown key.Binding
	Help        key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		OpenEditor: key.NewBinding(
			key.WithKeys("ctrl+v"),
			key.WithHelp("ctrl+v", "editor"),
		),
		OpenVSCode: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "vs code"),
		),
		OpenSublime: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "sublime"),
		),
		Reveal: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "file browser"),
		),
		Shell: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "shell here"),
		),
		CopyPath: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "copy path"),
		),
		SwitchFilename: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("ctrl+f", "names"),
		),
		SwitchContent: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("ctrl+g", "content"),
		),
		ToggleMode: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch mode"),
		),
		ToggleCase: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "case"),
		),
		ToggleHidden: key.NewBinding(
			// ctrl+h is Backspace on terminals that send BS.
			key.WithKeys("alt+h", "ctrl+h"),
			key.WithHelp("alt+h", "hidden"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p", "ctrl+k"),
			key.WithHelp("↑/ctrl+p", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n", "ctrl+j"),
			key.WithHelp("↓/ctrl+n", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		PreviewUp: key.NewBinding(
			key.WithKeys("shift+up", "alt+k"),
			key.WithHelp("shift+↑", "scroll preview"),
		),
		PreviewDown: key.NewBinding(
			key.WithKeys("shift+down", "alt+j"),
			key.WithHelp("shift+↓", "scroll preview"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
	}
}

// Resolve maps a key press to an action. confirm is the action bound to
// enter. Keys that are not actions resolve to None.
func (k KeyMap) Resolve(msg tea.KeyMsg, confirm Kind) Kind {
	switch {
	case key.Matches(msg, k.Confirm):
		return confirm
	case key.Matches(msg, k.OpenEditor):
		return OpenEditor
	case key.Matches(msg, k.OpenVSCode):
		return OpenVSCode
	case key.Matches(msg, k.OpenSublime):
		return OpenSublime
	case key.Matches(msg, k.Reveal):
		return Reveal
	case key.Matches(msg, k.Shell):
		return Shell
	case key.Matches(msg, k.CopyPath):
		return CopyPath
	case key.Matches(msg, k.SwitchFilename):
		return SwitchFilename
	case key.Matches(msg, k.SwitchContent):
		return SwitchContent
	case key.Matches(msg, k.ToggleMode):
		return ToggleMode
	case key.Matches(msg, k.ToggleCase):
		return ToggleCase
	case key.Matches(msg, k.ToggleHidden):
		return ToggleHidden
	case key.Matches(msg, k.Quit):
		return Quit
	}
	return None
}

// ShortHelp returns bindings for the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.ToggleMode, k.ToggleCase, k.ToggleHidden, k.OpenEditor, k.Quit, k.Help}
}

// FullHelp returns bindings for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Confirm, k.OpenEditor, k.OpenVSCode, k.OpenSublime, k.Reveal, k.Shell, k.CopyPath},
		{k.SwitchFilename, k.SwitchContent, k.ToggleMode, k.ToggleCase, k.ToggleHidden},
		{k.Up, k.Down, k.PageUp, k.PageDown, k.PreviewUp, k.PreviewDown, k.Help, k.Quit},
	}
}
