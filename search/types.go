package search

import (
	"path/filepath"
	"strconv"
)

// Mode selects the backend a query runs against.
type Mode int

const (
	// ModeFilename fuzzy-matches paths.
	ModeFilename Mode = iota
	// ModeContent searches file contents with a regular expression.
	ModeContent
)

func (m Mode) String() string {
	if m == ModeContent {
		return "content"
	}
	return "filename"
}

// Request is one normalised query.
type Request struct {
	Mode          Mode
	Query         string
	CaseSensitive bool
	ShowHidden    bool
}

// Match locates a content hit. Line is 1-based; Start and End are byte
// offsets into Text.
type Match struct {
	Line  int
	Start int
	End   int
	Text  string
}

// Column returns the 1-based column of the match start.
func (m Match) Column() int { return m.Start + 1 }

// Candidate is one navigable result. Filename results never carry a Match.
type Candidate struct {
	Path  string // relative to the search root
	IsDir bool
	Match *Match
}

// Abs resolves the candidate against root.
func (c Candidate) Abs(root string) string {
	if filepath.IsAbs(c.Path) {
		return c.Path
	}
	return filepath.Join(root, c.Path)
}

// Line returns the match line, or 0 for filename results.
func (c Candidate) Line() int {
	if c.Match == nil {
		return 0
	}
	return c.Match.Line
}

func (c Candidate) String() string {
	if c.Match == nil {
		return c.Path
	}
	return c.Path + ":" + strconv.Itoa(c.Match.Line)
}
