package tui

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/takaishi/yoink/action"
	"github.com/takaishi/yoink/preview"
	"github.com/takaishi/yoink/search"
	"github.com/takaishi/yoink/session"
)

// fakeBackend answers every request with one batch.
type fakeBackend struct {
	mu      sync.Mutex
	results func(req search.Request) []search.Candidate
	issued  []search.Request
}

func (f *fakeBackend) Issue(_ context.Context, req search.Request) search.Handle {
	f.mu.Lock()
	f.issued = append(f.issued, req)
	f.mu.Unlock()

	ch := make(chan search.Batch, 1)
	if cs := f.results(req); len(cs) > 0 {
		ch <- search.Batch{Candidates: cs}
	}
	close(ch)
	return chanHandle(ch)
}

func (f *fakeBackend) requests() []search.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]search.Request(nil), f.issued...)
}

type chanHandle chan search.Batch

func (h chanHandle) Next() (search.Batch, bool) {
	b, ok := <-h
	return b, ok
}

func (chanHandle) Cancel() {}

type fakePreviewer struct{}

func (fakePreviewer) Render(_ context.Context, c search.Candidate) *preview.Preview {
	return &preview.Preview{File: c.Path, Kind: preview.KindText, StartLine: 1, Lines: []string{"package main"}, Raw: []string{"package main"}}
}

func newTestModel(t *testing.T, mode search.Mode, query string) (*Model, *fakeBackend, *fakeBackend) {
	t.Helper()
	names := &fakeBackend{results: func(req search.Request) []search.Candidate {
		out := []search.Candidate{{Path: "src/main.go"}, {Path: "README.md"}}
		if req.ShowHidden {
			out = append(out, search.Candidate{Path: ".env"})
		}
		return out
	}}
	content := &fakeBackend{results: func(req search.Request) []search.Candidate {
		if req.Query == "" {
			return nil
		}
		return []search.Candidate{{Path: "src/main.go", Match: &search.Match{Line: 3, Start: 0, End: 4, Text: "func main() {}"}}}
	}}
	m := New(Options{
		Root:         t.TempDir(),
		Session:      session.New(mode, query, false),
		Orchestrator: search.NewOrchestrator(context.Background(), names, content),
		Previewer:    fakePreviewer{},
		Keys:         action.DefaultKeyMap(),
	})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m.issue()
	pump(m)
	return m, names, content
}

// pump delivers the current query's batches to the model.
func pump(m *Model) {
	for {
		msg := waitForBatch(m.query)().(batchMsg)
		m.Update(msg)
		if msg.done {
			return
		}
	}
}

func press(m *Model, k tea.KeyType) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: k})
	return cmd
}

func paths(cs []search.Candidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Path)
	}
	return out
}

func TestInitialResults(t *testing.T) {
	m, _, _ := newTestModel(t, search.ModeFilename, "")
	assert.Equal(t, []string{"src/main.go", "README.md"}, paths(m.results))
	assert.Equal(t, 0, m.selectedIndex)
	assert.False(t, m.isSearching)
}

func TestToggleHiddenReissuesSameQuery(t *testing.T) {
	m, names, _ := newTestModel(t, search.ModeFilename, "main")

	press(m, tea.KeyCtrlH)
	pump(m)

	reqs := names.requests()
	require.Len(t, reqs, 2)
	last := reqs[len(reqs)-1]
	assert.Equal(t, "main", last.Query)
	assert.True(t, last.ShowHidden)
	assert.Contains(t, paths(m.results), ".env")
}

func TestStaleBatchDropped(t *testing.T) {
	m, _, _ := newTestModel(t, search.ModeFilename, "")
	stale := m.query.Gen

	press(m, tea.KeyCtrlS)
	m.Update(batchMsg{gen: stale, batch: search.Batch{Candidates: []search.Candidate{{Path: "stale.txt"}}}})
	assert.NotContains(t, paths(m.results), "stale.txt")

	pump(m)
	assert.Equal(t, []string{"src/main.go", "README.md"}, paths(m.results))
}

func TestModeSwitchKeepsQuery(t *testing.T) {
	m, _, content := newTestModel(t, search.ModeFilename, "main")

	press(m, tea.KeyTab)
	pump(m)

	assert.Equal(t, search.ModeContent, m.state.Mode())
	assert.Equal(t, "main", m.input.Value())
	reqs := content.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "main", reqs[0].Query)
	require.Len(t, m.results, 1)
	assert.Equal(t, 3, m.results[0].Line())
}

func TestTypingDebouncesSearch(t *testing.T) {
	m, names, _ := newTestModel(t, search.ModeFilename, "")
	before := len(names.requests())

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	assert.Len(t, names.requests(), before)
	assert.Equal(t, "ma", m.state.Query())

	m.Update(debounceMsg{seq: m.debounceSeq - 1})
	assert.Len(t, names.requests(), before)

	m.Update(debounceMsg{seq: m.debounceSeq})
	pump(m)
	reqs := names.requests()
	require.Len(t, reqs, before+1)
	assert.Equal(t, "ma", reqs[len(reqs)-1].Query)
}

func TestConfirmReturnsSelection(t *testing.T) {
	m, _, _ := newTestModel(t, search.ModeFilename, "")

	press(m, tea.KeyDown)
	cmd := press(m, tea.KeyEnter)
	require.NotNil(t, cmd)

	out := m.Outcome()
	assert.False(t, out.Cancelled)
	assert.Equal(t, action.ChangeDir, out.Action)
	assert.Equal(t, "README.md", out.Candidate.Path)
}

func TestEditorKeyReturnsSelection(t *testing.T) {
	m, _, _ := newTestModel(t, search.ModeContent, "func")

	press(m, tea.KeyCtrlV)

	out := m.Outcome()
	assert.Equal(t, action.OpenEditor, out.Action)
	assert.Equal(t, 3, out.Candidate.Line())
}

func TestQuitCancels(t *testing.T) {
	m, _, _ := newTestModel(t, search.ModeFilename, "")

	cmd := press(m, tea.KeyEsc)
	require.NotNil(t, cmd)

	out := m.Outcome()
	assert.True(t, out.Cancelled)
	assert.Equal(t, action.None, out.Action)
	assert.Empty(t, out.Candidate.Path)
}

func TestConfirmWithoutResultsDoesNothing(t *testing.T) {
	m, _, _ := newTestModel(t, search.ModeContent, "")
	require.Empty(t, m.results)

	cmd := press(m, tea.KeyEnter)
	assert.Nil(t, cmd)
	assert.False(t, m.Outcome().Cancelled)
	assert.Equal(t, action.None, m.Outcome().Action)
}

func TestPreviewFollowsSelection(t *testing.T) {
	m, _, _ := newTestModel(t, search.ModeFilename, "")

	cmd := m.loadPreview()
	assert.Nil(t, cmd, "preview for the first row is already requested")

	cmd = m.moveSelection(1)
	require.NotNil(t, cmd)
	m.Update(cmd())
	require.NotNil(t, m.preview)
	assert.Equal(t, "README.md", m.preview.File)
}

func TestView(t *testing.T) {
	m, _, _ := newTestModel(t, search.ModeContent, "func")
	view := m.View()
	assert.Contains(t, view, "CONTENT")
	assert.Contains(t, view, "src/main.go:3")
	assert.True(t, strings.Contains(view, "1/1 match in 1 files"))
}
