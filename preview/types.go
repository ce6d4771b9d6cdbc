package preview

// Kind tells the view how to draw a preview.
type Kind int

const (
	KindText Kind = iota
	KindDirectory
	KindBinary
	KindUnavailable
)

// Preview represents a code preview with context lines
type Preview struct {
	File string
	Kind Kind
	// StartLine is the file line number of Lines[0].
	StartLine int
	// Lines are ready to print and may contain ANSI colour.
	Lines []string
	// Raw holds the uncoloured text of Lines for text previews.
	Raw []string
	// HitLine is the matched file line (1-based), or 0.
	HitLine int
	// SpanStart and SpanEnd are byte offsets of the match within the hit line.
	SpanStart int
	SpanEnd   int
	Truncated bool
	// Note is shown beside the title, e.g. when the hit could not be reached.
	Note string
	// Message replaces Lines for binary and unreadable files.
	Message string
}

// HitIndex returns the index of the hit line in Lines, or -1.
func (p *Preview) HitIndex() int {
	if p == nil || p.HitLine == 0 {
		return -1
	}
	i := p.HitLine - p.StartLine
	if i < 0 || i >= len(p.Lines) {
		return -1
	}
	return i
}
