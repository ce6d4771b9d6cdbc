package action

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/takaishi/yoink/editor"
	"github.com/takaishi/yoink/search"
)

func TestTargetDir(t *testing.T) {
	root := filepath.FromSlash("/work")

	assert.Equal(t, filepath.FromSlash("/work/a/b"), TargetDir(root, search.Candidate{Path: "a/b/c.txt"}))
	assert.Equal(t, filepath.FromSlash("/work/a"), TargetDir(root, search.Candidate{Path: "a/b", IsDir: true}))
	assert.Equal(t, root, TargetDir(root, search.Candidate{Path: "top.txt", Match: &search.Match{Line: 3}}))
}

func TestChangeDirWritesParentDirectory(t *testing.T) {
	root := t.TempDir()
	handoff := filepath.Join(t.TempDir(), ".yoink_last_path")
	d := &Dispatcher{Root: root, HandoffFile: handoff}

	require.NoError(t, d.Execute(ChangeDir, search.Candidate{Path: filepath.Join("src", "main.go")}))

	data, err := os.ReadFile(handoff)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "src")+"\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(handoff))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestQuitWritesNothing(t *testing.T) {
	handoff := filepath.Join(t.TempDir(), ".yoink_last_path")
	d := &Dispatcher{Root: t.TempDir(), HandoffFile: handoff}

	assert.Error(t, d.Execute(Quit, search.Candidate{Path: "a"}))

	_, err := os.Stat(handoff)
	assert.True(t, os.IsNotExist(err))
}

func TestClearHandoff(t *testing.T) {
	handoff := filepath.Join(t.TempDir(), ".yoink_last_path")
	require.NoError(t, ClearHandoff(handoff))

	require.NoError(t, os.WriteFile(handoff, []byte("/old\n"), 0o644))
	require.NoError(t, ClearHandoff(handoff))
	_, err := os.Stat(handoff)
	assert.True(t, os.IsNotExist(err))
}

func TestExecuteHooks(t *testing.T) {
	root := filepath.FromSlash("/work")
	type opened struct {
		ed     editor.Editor
		file   string
		line   int
		column int
	}
	var gotOpen opened
	var gotDir, gotShell, gotClip string
	var out bytes.Buffer
	d := &Dispatcher{
		Root:   root,
		Editor: "nvim",
		Out:    &out,
		OpenFile: func(e editor.Editor, file string, line, column int, _ editor.Stdio) error {
			gotOpen = opened{e, file, line, column}
			return nil
		},
		Reveal:    func(dir string) error { gotDir = dir; return nil },
		Shell:     func(dir string, _ editor.Stdio) error { gotShell = dir; return nil },
		Clipboard: func(text string) error { gotClip = text; return nil },
	}
	hit := search.Candidate{Path: filepath.FromSlash("pkg/x.go"), Match: &search.Match{Line: 12, Start: 4, End: 7}}
	file := search.Candidate{Path: filepath.FromSlash("pkg/y.go")}

	require.NoError(t, d.Execute(OpenEditor, hit))
	assert.Equal(t, opened{"nvim", filepath.FromSlash("/work/pkg/x.go"), 12, 5}, gotOpen)

	require.NoError(t, d.Execute(OpenVSCode, file))
	assert.Equal(t, opened{editor.EditorCode, filepath.FromSlash("/work/pkg/y.go"), 0, 0}, gotOpen)

	require.NoError(t, d.Execute(OpenSublime, hit))
	assert.Equal(t, editor.EditorSublime, gotOpen.ed)

	require.NoError(t, d.Execute(Reveal, file))
	assert.Equal(t, filepath.FromSlash("/work/pkg"), gotDir)

	require.NoError(t, d.Execute(Shell, hit))
	assert.Equal(t, filepath.FromSlash("/work/pkg"), gotShell)

	require.NoError(t, d.Execute(CopyPath, file))
	assert.Equal(t, filepath.FromSlash("/work/pkg/y.go"), gotClip)

	require.NoError(t, d.Execute(Print, hit))
	require.NoError(t, d.Execute(Print, file))
	assert.Equal(t, filepath.FromSlash("/work/pkg/x.go")+":12\n"+filepath.FromSlash("/work/pkg/y.go")+"\n", out.String())
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"cd": ChangeDir, "Editor": OpenEditor, "vim": OpenEditor, "print": Print, "shell": Shell} {
		got, ok := ParseKind(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseKind("toggle-case")
	assert.False(t, ok)
	_, ok = ParseKind("bogus")
	assert.False(t, ok)
}

func TestTerminalKinds(t *testing.T) {
	assert.True(t, ChangeDir.Terminal())
	assert.True(t, Print.Terminal())
	assert.False(t, ToggleHidden.Terminal())
	assert.False(t, SwitchContent.Terminal())
	assert.False(t, Quit.Terminal())
}

func TestKeyMapResolve(t *testing.T) {
	k := DefaultKeyMap()
	tests := []struct {
		msg  tea.KeyMsg
		want Kind
	}{
		{tea.KeyMsg{Type: tea.KeyEnter}, ChangeDir},
		{tea.KeyMsg{Type: tea.KeyCtrlV}, OpenEditor},
		{tea.KeyMsg{Type: tea.KeyCtrlX}, OpenVSCode},
		{tea.KeyMsg{Type: tea.KeyCtrlT}, OpenSublime},
		{tea.KeyMsg{Type: tea.KeyCtrlO}, Reveal},
		{tea.KeyMsg{Type: tea.KeyCtrlF}, SwitchFilename},
		{tea.KeyMsg{Type: tea.KeyCtrlG}, SwitchContent},
		{tea.KeyMsg{Type: tea.KeyTab}, ToggleMode},
		{tea.KeyMsg{Type: tea.KeyCtrlS}, ToggleCase},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h'}, Alt: true}, ToggleHidden},
		{tea.KeyMsg{Type: tea.KeyEsc}, Quit},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, Quit},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}}, None},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, k.Resolve(tt.msg, ChangeDir), tt.msg.String())
	}
	assert.Equal(t, Print, k.Resolve(tea.KeyMsg{Type: tea.KeyEnter}, Print))
}

func TestToggleHiddenHelpKey(t *testing.T) {
	k := DefaultKeyMap()
	assert.Equal(t, "alt+h", k.ToggleHidden.Help().Key)
	assert.Equal(t, []string{"alt+h", "ctrl+h"}, k.ToggleHidden.Keys())
	assert.Equal(t, ToggleHidden, k.Resolve(tea.KeyMsg{Type: tea.KeyCtrlH}, ChangeDir))
}
