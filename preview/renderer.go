// Package preview renders the preview pane for a selected candidate.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/takaishi/yoink/logging"
	"github.com/takaishi/yoink/search"
)

// Options bound the cost of a preview.
type Options struct {
	// BatPath is bat or batcat; empty disables highlighting.
	BatPath string
	// MaxLines is shown from the top of files without a match.
	MaxLines int
	// Context lines are shown on each side of a match.
	Context int
	// MaxBytes caps the text read from one file.
	MaxBytes int64
	// Timeout caps one highlighter run.
	Timeout time.Duration
}

// DefaultOptions returns the built-in limits.
func DefaultOptions() Options {
	return Options{MaxLines: 300, Context: 30, MaxBytes: 256 << 10, Timeout: 2 * time.Second}
}

// Renderer produces previews for candidates below root.
type Renderer struct {
	root  string
	opts  Options
	cache *cache.Cache
}

// NewRenderer creates a Renderer. Zero option fields take defaults.
func NewRenderer(root string, opts Options) *Renderer {
	def := DefaultOptions()
	if opts.MaxLines <= 0 {
		opts.MaxLines = def.MaxLines
	}
	if opts.Context <= 0 {
		opts.Context = def.Context
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = def.MaxBytes
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	return &Renderer{
		root:  root,
		opts:  opts,
		cache: cache.New(time.Minute, 5*time.Minute),
	}
}

// Render builds the preview for c. It never fails: unreadable and binary
// files produce a placeholder.
func (r *Renderer) Render(ctx context.Context, c search.Candidate) *Preview {
	if ctx.Err() != nil {
		return &Preview{File: c.Path, Kind: KindUnavailable, Message: "preview cancelled"}
	}
	abs := c.Abs(r.root)
	info, err := os.Stat(abs)
	if err != nil {
		logging.For("preview").Debug("preview_stat_failed", slog.String("path", c.Path), slog.String("error", err.Error()))
		return &Preview{File: c.Path, Kind: KindUnavailable, Message: fmt.Sprintf("cannot read %s", c.Path)}
	}

	key := fmt.Sprintf("%s|%d|%d|%d", abs, info.ModTime().UnixNano(), info.Size(), c.Line())
	if v, ok := r.cache.Get(key); ok {
		return v.(*Preview)
	}

	var p *Preview
	if info.IsDir() {
		p = r.renderDir(c, abs)
	} else {
		p = r.renderFile(ctx, c, abs)
	}
	if ctx.Err() == nil {
		r.cache.Set(key, p, cache.DefaultExpiration)
	}
	return p
}

func (r *Renderer) renderDir(c search.Candidate, abs string) *Preview {
	lines, truncated, err := listDir(abs, r.opts.MaxLines)
	if err != nil {
		return &Preview{File: c.Path, Kind: KindUnavailable, Message: fmt.Sprintf("cannot list %s", c.Path)}
	}
	if len(lines) == 0 {
		return &Preview{File: c.Path, Kind: KindDirectory, Message: "empty directory"}
	}
	return &Preview{File: c.Path, Kind: KindDirectory, StartLine: 1, Lines: lines, Truncated: truncated}
}

func (r *Renderer) renderFile(ctx context.Context, c search.Candidate, abs string) *Preview {
	hit := c.Line()
	start, end := windowBounds(hit, r.opts.Context, r.opts.MaxLines)

	var note string
	w, err := readWindow(ctx, abs, start, end, r.opts.MaxBytes)
	if errors.Is(err, errBeyondRange) {
		note = "match beyond preview range"
		hit = 0
		w, err = readWindow(ctx, abs, 1, r.opts.MaxLines, r.opts.MaxBytes)
	}
	if err != nil && ctx.Err() != nil {
		return &Preview{File: c.Path, Kind: KindUnavailable, Message: "preview cancelled"}
	}
	if err != nil {
		logging.For("preview").Debug("preview_read_failed", slog.String("path", c.Path), slog.String("error", err.Error()))
		return &Preview{File: c.Path, Kind: KindUnavailable, Message: fmt.Sprintf("cannot read %s", c.Path)}
	}
	if w.binary {
		return &Preview{File: c.Path, Kind: KindBinary, Message: fmt.Sprintf("binary file (%d bytes)", w.size)}
	}

	p := &Preview{
		File:      c.Path,
		Kind:      KindText,
		StartLine: w.start,
		Raw:       w.lines,
		Lines:     w.lines,
		Truncated: w.truncated,
		Note:      note,
	}
	if c.Match != nil && hit != 0 {
		p.HitLine = c.Match.Line
		p.SpanStart = c.Match.Start
		p.SpanEnd = c.Match.End
	}
	if len(w.lines) == 0 {
		p.Message = "empty file"
		return p
	}

	if r.opts.BatPath == "" {
		return p
	}
	hctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()
	colored, err := highlight(hctx, r.opts.BatPath, abs, w.lines)
	if err != nil {
		logging.For("preview").Debug("highlight_failed", slog.String("path", c.Path), slog.String("error", err.Error()))
		return p
	}
	p.Lines = colored
	return p
}
