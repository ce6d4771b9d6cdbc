// Package session holds the mutable toggles of one interactive run.
package session

import "github.com/takaishi/yoink/search"

// State is owned by the event loop; every setter reports whether the active
// search must be re-issued.
type State struct {
	mode          search.Mode
	caseSensitive bool
	showHidden    bool
	query         string
}

// New returns the initial state.
func New(mode search.Mode, query string, showHidden bool) *State {
	return &State{mode: mode, query: query, showHidden: showHidden}
}

func (s *State) Mode() search.Mode   { return s.mode }
func (s *State) Query() string       { return s.query }
func (s *State) CaseSensitive() bool { return s.caseSensitive }
func (s *State) ShowHidden() bool    { return s.showHidden }

// SetMode switches mode, keeping the query.
func (s *State) SetMode(m search.Mode) bool {
	if s.mode == m {
		return false
	}
	s.mode = m
	return true
}

// ToggleMode flips between filename and content search.
func (s *State) ToggleMode() bool {
	if s.mode == search.ModeFilename {
		return s.SetMode(search.ModeContent)
	}
	return s.SetMode(search.ModeFilename)
}

// ToggleCase flips case sensitivity.
func (s *State) ToggleCase() bool {
	s.caseSensitive = !s.caseSensitive
	return true
}

// ToggleHidden flips hidden entry visibility.
func (s *State) ToggleHidden() bool {
	s.showHidden = !s.showHidden
	return true
}

// SetQuery replaces the query text.
func (s *State) SetQuery(q string) bool {
	if s.query == q {
		return false
	}
	s.query = q
	return true
}

// Request returns the normalised request for the current state.
func (s *State) Request() search.Request {
	return search.Request{
		Mode:          s.mode,
		Query:         s.query,
		CaseSensitive: s.caseSensitive,
		ShowHidden:    s.showHidden,
	}
}
