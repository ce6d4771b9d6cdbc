package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/takaishi/yoink/preview"
	"github.com/takaishi/yoink/search"
)

// batchMsg carries one batch of a query back to the event loop.
type batchMsg struct {
	gen   uint64
	batch search.Batch
	done  bool
}

// debounceMsg fires after the query stopped changing.
type debounceMsg struct {
	seq uint64
}

// previewLoadedMsg is sent when preview is loaded
type previewLoadedMsg struct {
	seq     uint64
	preview *preview.Preview
}

// waitForBatch blocks on the query's next batch off the event loop.
func waitForBatch(q search.Query) tea.Cmd {
	return func() tea.Msg {
		b, ok := q.Next()
		return batchMsg{gen: q.Gen, batch: b, done: !ok}
	}
}
