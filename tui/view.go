package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/sahilm/fuzzy"
	"github.com/takaishi/yoink/preview"
	"github.com/takaishi/yoink/search"
)

var (
	// Header styles
	headerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	modeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("62")).
			Bold(true).
			Padding(0, 1)

	flagOnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true).
			Padding(0, 1)

	flagOffStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(0, 1)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	// Result styles
	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedResultStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("255")).
				Background(lipgloss.Color("25"))

	dirStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75")).
			Bold(true)

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	fileInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Align(lipgloss.Right).
			PaddingLeft(1)

	// Preview styles
	previewHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Bold(true)

	previewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	placeholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Italic(true)

	lineNumberStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Width(6).
			Align(lipgloss.Right)

	hitLineNumberStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("255")).
				Background(lipgloss.Color("25")).
				Width(6).
				Align(lipgloss.Right)

	spanStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("16")).
			Background(lipgloss.Color("220")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

const (
	headerHeight = 4
	tabWidth     = 4
)

// resultsHeight is the number of rows in the results list.
func (m *Model) resultsHeight() int {
	if m.height == 0 {
		return 10
	}
	h := (m.height - headerHeight - m.footerHeight()) * 2 / 5
	if h < 3 {
		h = 3
	}
	return h
}

func (m *Model) previewHeight() int {
	h := m.height - headerHeight - m.footerHeight() - m.resultsHeight()
	if h < 4 {
		h = 4
	}
	return h
}

func (m *Model) footerHeight() int {
	return lipgloss.Height(m.help.View(m.keys))
}

// layout sizes the preview viewport: border and title take three rows, border
// and padding four columns.
func (m *Model) layout() {
	m.viewport.Width = max(m.width-4, 10)
	m.viewport.Height = max(m.previewHeight()-3, 1)
	m.adjustScroll()
	m.refreshPreview()
}

// renderView renders the entire UI
func renderView(m *Model) string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		renderHeader(m),
		renderResults(m, m.resultsHeight()),
		renderPreview(m),
		m.help.View(m.keys),
	)
}

// renderHeader renders the mode, toggles, query input and status
func renderHeader(m *Model) string {
	mode := "FILES"
	if m.state.Mode() == search.ModeContent {
		mode = "CONTENT"
	}
	headerLine := lipgloss.JoinHorizontal(lipgloss.Left,
		modeStyle.Render(mode),
		flag("Aa", m.state.CaseSensitive()),
		flag(".*", m.state.ShowHidden()),
		" ",
		m.input.View(),
	)
	status := statusStyle.Render(renderStatus(m))
	if m.opts.Root != "" {
		status += "  " + placeholderStyle.Render(displayRoot(m.opts.Root))
	}
	header := lipgloss.JoinVertical(lipgloss.Left, headerLine, status)
	return headerStyle.Width(m.width - 2).Render(header)
}

// displayRoot abbreviates the home directory to ~.
func displayRoot(root string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return root
	}
	if root == home {
		return "~"
	}
	if rel, ok := strings.CutPrefix(root, home+string(filepath.Separator)); ok {
		return filepath.Join("~", rel)
	}
	return root
}

func flag(label string, on bool) string {
	if on {
		return flagOnStyle.Render(label)
	}
	return flagOffStyle.Render(label)
}

// renderStatus renders the status information
func renderStatus(m *Model) string {
	if m.searchError != nil {
		return errorStyle.Render("Error: " + m.searchError.Error())
	}
	prefix := ""
	if m.isSearching {
		prefix = m.spinner.View() + " "
	}
	if len(m.results) == 0 {
		switch {
		case m.isSearching:
			return prefix + "Searching..."
		case m.state.Mode() == search.ModeContent && m.state.Query() == "":
			return "Type a pattern to search file contents"
		default:
			return "No matches found"
		}
	}

	if m.state.Mode() == search.ModeFilename {
		return fmt.Sprintf("%s%d/%d", prefix, m.selectedIndex+1, len(m.results))
	}

	files := make(map[string]struct{})
	for _, r := range m.results {
		files[r.Path] = struct{}{}
	}
	noun := "matches"
	if len(m.results) == 1 {
		noun = "match"
	}
	return fmt.Sprintf("%s%d/%d %s in %d files", prefix, m.selectedIndex+1, len(m.results), noun, len(files))
}

// renderResults renders the visible slice of the results list
func renderResults(m *Model, height int) string {
	width := m.width - 2
	lines := make([]string, 0, height)
	end := min(m.resultsOffset+height, len(m.results))
	for i := m.resultsOffset; i < end; i++ {
		var line string
		if m.results[i].Match != nil {
			line = formatContentResult(m.results[i], width)
		} else {
			line = formatNameResult(m.state.Query(), m.results[i], width)
		}
		if i == m.selectedIndex {
			line = selectedResultStyle.Width(width).Render("▌" + line)
		} else {
			line = resultStyle.Width(width).Render(" " + line)
		}
		lines = append(lines, line)
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// formatNameResult renders a path with its fuzzy-matched characters
// highlighted. Ranking comes from fzf; this only locates the characters.
func formatNameResult(query string, c search.Candidate, width int) string {
	path := filepath.ToSlash(c.Path)
	matched := make(map[int]bool)
	if q := strings.ReplaceAll(query, " ", ""); q != "" {
		if ms := fuzzy.Find(q, []string{path}); len(ms) > 0 {
			for _, i := range ms[0].MatchedIndexes {
				matched[i] = true
			}
		}
	}

	var b strings.Builder
	for i, r := range path {
		if matched[i] {
			b.WriteString(highlightStyle.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if c.IsDir {
		out = dirStyle.Render(out + "/")
	}
	return ansi.Truncate(out, width-1, "…")
}

// formatContentResult formats a result JetBrains style: code snippet | file:line
func formatContentResult(c search.Candidate, width int) string {
	fileInfo := fmt.Sprintf("%s:%d", filepath.ToSlash(c.Path), c.Match.Line)

	fileInfoAreaWidth := min(max(width/3, 25), 60)
	codeWidth := width - fileInfoAreaWidth - 1
	if codeWidth < 10 {
		codeWidth = 10
		fileInfoAreaWidth = max(width-codeWidth-1, 1)
	}

	code := highlightSpan(strings.TrimLeft(c.Match.Text, " \t"), c.Match, highlightStyle)
	code = ansi.Truncate(code, codeWidth, "…")
	codeStyled := lipgloss.NewStyle().Width(codeWidth).Render(code)

	info := truncateLeft(fileInfo, fileInfoAreaWidth-1)
	infoStyled := fileInfoStyle.Width(fileInfoAreaWidth).Render(info)

	return lipgloss.JoinHorizontal(lipgloss.Left, codeStyled, infoStyled)
}

// highlightSpan styles the matched byte range of text. text may have had
// leading whitespace trimmed from m.Text; offsets are shifted to match.
func highlightSpan(text string, m *search.Match, style lipgloss.Style) string {
	shift := len(m.Text) - len(text)
	start, end := m.Start-shift, m.End-shift
	if start < 0 || end > len(text) || start >= end {
		return expandTabs(text)
	}
	return expandTabs(text[:start]) + style.Render(expandTabs(text[start:end])) + expandTabs(text[end:])
}

// overlaySpan styles the byte range start..end of raw on top of line, the
// highlighted rendering of raw, keeping the colours outside the span. When
// line does not display as raw, the span is drawn on raw alone.
func overlaySpan(line, raw string, start, end int, style lipgloss.Style) string {
	if start < 0 || end > len(raw) || start >= end {
		return line
	}
	if ansi.Strip(line) != expandTabs(raw) {
		return highlightSpan(raw, &search.Match{Text: raw, Start: start, End: end}, style)
	}
	a := ansi.StringWidth(expandTabs(raw[:start]))
	b := ansi.StringWidth(expandTabs(raw[:end]))
	return ansi.Cut(line, 0, a) + style.Render(ansi.Strip(ansi.Cut(line, a, b))) + ansi.Cut(line, b, ansi.StringWidth(line))
}

// truncateLeft keeps the tail of s, which is where a path's file name is.
func truncateLeft(s string, width int) string {
	r := []rune(s)
	if len(r) <= width || width < 2 {
		return s
	}
	return "…" + string(r[len(r)-width+1:])
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

// refreshPreview rebuilds the viewport content and scrolls to the match.
func (m *Model) refreshPreview() {
	p := m.preview
	if p == nil || len(p.Lines) == 0 {
		m.viewport.SetContent("")
		m.viewport.GotoTop()
		return
	}

	width := m.viewport.Width
	hit := p.HitIndex()
	lines := make([]string, 0, len(p.Lines)+1)
	for i, line := range p.Lines {
		if p.Kind != preview.KindText {
			lines = append(lines, ansi.Truncate(line, width, "…"))
			continue
		}
		num := fmt.Sprintf("%d", p.StartLine+i)
		if i == hit {
			text := line
			if i < len(p.Raw) {
				text = overlaySpan(line, p.Raw[i], p.SpanStart, p.SpanEnd, spanStyle)
			}
			lines = append(lines, hitLineNumberStyle.Render(num)+" "+ansi.Truncate(text, width-7, "…"))
			continue
		}
		lines = append(lines, lineNumberStyle.Render(num)+" "+ansi.Truncate(line, width-7, "…"))
	}
	if p.Truncated {
		lines = append(lines, placeholderStyle.Render("… truncated"))
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))

	if hit >= 0 {
		m.viewport.SetYOffset(max(hit-m.viewport.Height/2, 0))
	} else {
		m.viewport.GotoTop()
	}
}

// renderPreview renders the preview pane
func renderPreview(m *Model) string {
	height := m.previewHeight() - 2
	var body string
	switch p := m.preview; {
	case p == nil:
		body = previewHeaderStyle.Render(" ")
	case p.Message != "":
		body = lipgloss.JoinVertical(lipgloss.Left,
			previewHeaderStyle.Render(previewTitle(p)),
			placeholderStyle.Render(p.Message))
	default:
		body = lipgloss.JoinVertical(lipgloss.Left,
			previewHeaderStyle.Render(previewTitle(p)),
			m.viewport.View())
	}
	return previewStyle.Width(m.width - 2).Height(height).MaxHeight(height + 2).Render(body)
}

func previewTitle(p *preview.Preview) string {
	title := filepath.ToSlash(p.File)
	if p.Kind == preview.KindDirectory {
		title += "/"
	}
	if p.HitLine > 0 {
		title = fmt.Sprintf("%s:%d", title, p.HitLine)
	}
	if p.Note != "" {
		title += "  (" + p.Note + ")"
	}
	return title
}
