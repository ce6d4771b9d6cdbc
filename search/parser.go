package search

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// rgText is ripgrep's arbitrary-data encoding: UTF-8 in text, otherwise
// base64 in bytes.
type rgText struct {
	Text  *string `json:"text"`
	Bytes *string `json:"bytes"`
}

func (t rgText) String() string {
	if t.Text != nil {
		return *t.Text
	}
	if t.Bytes != nil {
		if b, err := base64.StdEncoding.DecodeString(*t.Bytes); err == nil {
			return string(b)
		}
	}
	return ""
}

type rgMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type rgMatch struct {
	Path       rgText `json:"path"`
	Lines      rgText `json:"lines"`
	LineNumber int    `json:"line_number"`
	Submatches []struct {
		Start int `json:"start"`
		End   int `json:"end"`
	} `json:"submatches"`
}

// ParseJSONLine parses one line of `rg --json` output. Messages other than
// matches return a nil candidate.
func ParseJSONLine(line []byte) (*Candidate, error) {
	var msg rgMessage
	if err := json.Unmarshal(line, &msg); err != nil {
		return nil, fmt.Errorf("invalid rg json: %w", err)
	}
	if msg.Type != "match" {
		return nil, nil
	}

	var m rgMatch
	if err := json.Unmarshal(msg.Data, &m); err != nil {
		return nil, fmt.Errorf("invalid rg match: %w", err)
	}
	if m.LineNumber < 1 {
		return nil, fmt.Errorf("invalid line number: %d", m.LineNumber)
	}

	path := strings.TrimPrefix(m.Path.String(), "./")
	if path == "" {
		return nil, fmt.Errorf("match without path")
	}
	text := strings.TrimRight(m.Lines.String(), "\r\n")

	match := &Match{Line: m.LineNumber, Text: text}
	if len(m.Submatches) > 0 {
		match.Start = clamp(m.Submatches[0].Start, 0, len(text))
		match.End = clamp(m.Submatches[0].End, match.Start, len(text))
	}
	return &Candidate{Path: path, Match: match}, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
