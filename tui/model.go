package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/takaishi/yoink/action"
	"github.com/takaishi/yoink/preview"
	"github.com/takaishi/yoink/search"
	"github.com/takaishi/yoink/session"
)

const defaultDebounce = 120 * time.Millisecond

// Previewer renders the preview pane for a candidate.
type Previewer interface {
	Render(ctx context.Context, c search.Candidate) *preview.Preview
}

// Options configure a Model.
type Options struct {
	Root         string
	Session      *session.State
	Orchestrator *search.Orchestrator
	Previewer    Previewer
	Keys         action.KeyMap
	// Confirm is the action bound to enter.
	Confirm  action.Kind
	Debounce time.Duration
}

// Outcome is how the session ended.
type Outcome struct {
	Action    action.Kind
	Candidate search.Candidate
	Cancelled bool
}

// Model represents the application state
type Model struct {
	opts  Options
	state *session.State
	orch  *search.Orchestrator
	keys  action.KeyMap

	input    textinput.Model
	spinner  spinner.Model
	help     help.Model
	viewport viewport.Model
	showHelp bool

	// Search state
	query         search.Query
	shownGen      uint64
	results       []search.Candidate
	selectedIndex int
	resultsOffset int
	isSearching   bool
	searchError   error
	debounceSeq   uint64

	// Preview state
	preview       *preview.Preview
	previewKey    string
	previewSeq    uint64
	previewCancel context.CancelFunc

	outcome Outcome

	width  int
	height int
}

// New creates a new Model instance
func New(opts Options) *Model {
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if opts.Confirm == action.None {
		opts.Confirm = action.ChangeDir
	}

	input := textinput.New()
	input.Prompt = "❯ "
	input.Placeholder = "search"
	input.SetValue(opts.Session.Query())
	input.CursorEnd()
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	return &Model{
		opts:          opts,
		state:         opts.Session,
		orch:          opts.Orchestrator,
		keys:          opts.Keys,
		input:         input,
		spinner:       sp,
		help:          help.New(),
		viewport:      viewport.New(0, 0),
		selectedIndex: -1,
	}
}

// Outcome returns how the session ended.
func (m *Model) Outcome() Outcome { return m.outcome }

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.issue())
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case batchMsg:
		return m.handleBatch(msg)

	case debounceMsg:
		if msg.seq != m.debounceSeq {
			return m, nil
		}
		return m, m.issue()

	case previewLoadedMsg:
		return m.handlePreviewLoaded(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the UI
func (m *Model) View() string {
	return renderView(m)
}

// handleKey processes keyboard input
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k := m.keys.Resolve(msg, m.opts.Confirm); k {
	case action.Quit:
		m.finish(Outcome{Cancelled: true})
		return m, tea.Quit

	case action.SwitchFilename:
		return m, m.reissueIf(m.state.SetMode(search.ModeFilename))
	case action.SwitchContent:
		return m, m.reissueIf(m.state.SetMode(search.ModeContent))
	case action.ToggleMode:
		return m, m.reissueIf(m.state.ToggleMode())
	case action.ToggleCase:
		return m, m.reissueIf(m.state.ToggleCase())
	case action.ToggleHidden:
		return m, m.reissueIf(m.state.ToggleHidden())

	case action.None:
	default:
		c, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.finish(Outcome{Action: k, Candidate: c})
		return m, tea.Quit
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		return m, m.moveSelection(-1)
	case key.Matches(msg, m.keys.Down):
		return m, m.moveSelection(1)
	case key.Matches(msg, m.keys.PageUp):
		return m, m.moveSelection(-m.resultsHeight())
	case key.Matches(msg, m.keys.PageDown):
		return m, m.moveSelection(m.resultsHeight())
	case key.Matches(msg, m.keys.PreviewUp):
		m.viewport.ScrollUp(3)
		return m, nil
	case key.Matches(msg, m.keys.PreviewDown):
		m.viewport.ScrollDown(3)
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		m.layout()
		return m, nil
	}

	return m.handleTextInput(msg)
}

// handleTextInput feeds the query field and schedules a debounced search
// when the text changed.
func (m *Model) handleTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if !m.state.SetQuery(m.input.Value()) {
		return m, cmd
	}
	m.debounceSeq++
	seq := m.debounceSeq
	return m, tea.Batch(cmd, tea.Tick(m.opts.Debounce, func(time.Time) tea.Msg {
		return debounceMsg{seq: seq}
	}))
}

func (m *Model) reissueIf(changed bool) tea.Cmd {
	if !changed {
		return nil
	}
	return m.issue()
}

// issue supersedes the in-flight search with the current request.
func (m *Model) issue() tea.Cmd {
	m.debounceSeq++
	m.query = m.orch.Issue(m.state.Request())
	m.isSearching = true
	m.searchError = nil
	return tea.Batch(waitForBatch(m.query), m.spinner.Tick)
}

func (m *Model) finish(o Outcome) {
	m.orch.Cancel()
	if m.previewCancel != nil {
		m.previewCancel()
	}
	m.outcome = o
}

// handleBatch applies results of the current generation and drops the rest.
func (m *Model) handleBatch(msg batchMsg) (tea.Model, tea.Cmd) {
	if !m.orch.Current(msg.gen) {
		return m, nil
	}

	if m.shownGen != msg.gen {
		m.shownGen = msg.gen
		m.results = nil
	}

	if msg.done {
		m.isSearching = false
		return m, m.syncSelection()
	}
	if msg.batch.Err != nil {
		m.searchError = msg.batch.Err
		return m, waitForBatch(m.query)
	}

	m.results = append(m.results, msg.batch.Candidates...)
	return m, tea.Batch(waitForBatch(m.query), m.syncSelection())
}

// syncSelection keeps the cursor on a valid row, preferring its previous
// index, and loads the preview when the selected candidate changed.
func (m *Model) syncSelection() tea.Cmd {
	switch {
	case len(m.results) == 0:
		m.selectedIndex = -1
		m.resultsOffset = 0
	case m.selectedIndex < 0:
		m.selectedIndex = 0
	case m.selectedIndex >= len(m.results):
		m.selectedIndex = len(m.results) - 1
	}
	m.adjustScroll()
	return m.loadPreview()
}

func (m *Model) moveSelection(delta int) tea.Cmd {
	if len(m.results) == 0 {
		return nil
	}
	m.selectedIndex += delta
	if m.selectedIndex < 0 {
		m.selectedIndex = 0
	}
	if m.selectedIndex >= len(m.results) {
		m.selectedIndex = len(m.results) - 1
	}
	m.adjustScroll()
	return m.loadPreview()
}

func (m *Model) selected() (search.Candidate, bool) {
	if m.selectedIndex < 0 || m.selectedIndex >= len(m.results) {
		return search.Candidate{}, false
	}
	return m.results[m.selectedIndex], true
}

// adjustScroll adjusts the scroll offset to keep selected item visible
func (m *Model) adjustScroll() {
	visible := m.resultsHeight()
	if len(m.results) <= visible || m.selectedIndex < 0 {
		m.resultsOffset = 0
		return
	}
	if m.selectedIndex < m.resultsOffset {
		m.resultsOffset = m.selectedIndex
	}
	if m.selectedIndex >= m.resultsOffset+visible {
		m.resultsOffset = m.selectedIndex - visible + 1
	}
	if maxOffset := len(m.results) - visible; m.resultsOffset > maxOffset {
		m.resultsOffset = maxOffset
	}
	if m.resultsOffset < 0 {
		m.resultsOffset = 0
	}
}

// loadPreview loads preview for the currently selected result
func (m *Model) loadPreview() tea.Cmd {
	c, ok := m.selected()
	if !ok {
		m.preview = nil
		m.previewKey = ""
		m.refreshPreview()
		return nil
	}
	k := c.String()
	if k == m.previewKey {
		return nil
	}
	m.previewKey = k
	m.previewSeq++
	seq := m.previewSeq

	if m.previewCancel != nil {
		m.previewCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.previewCancel = cancel

	r := m.opts.Previewer
	return func() tea.Msg {
		return previewLoadedMsg{seq: seq, preview: r.Render(ctx, c)}
	}
}

// handlePreviewLoaded processes loaded preview
func (m *Model) handlePreviewLoaded(msg previewLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.previewSeq {
		return m, nil
	}
	m.preview = msg.preview
	m.refreshPreview()
	return m, nil
}
