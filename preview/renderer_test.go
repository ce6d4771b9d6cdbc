package preview

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/takaishi/yoink/search"
)

func numbered(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	return b.String()
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRenderFileHead(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.txt"), numbered(500))
	r := NewRenderer(root, Options{MaxLines: 100})

	p := r.Render(context.Background(), search.Candidate{Path: "a.txt"})

	assert.Equal(t, KindText, p.Kind)
	assert.Equal(t, 1, p.StartLine)
	assert.Len(t, p.Lines, 100)
	assert.Equal(t, "line 1", p.Raw[0])
	assert.True(t, p.Truncated)
	assert.Equal(t, -1, p.HitIndex())
}

func TestRenderContentWindow(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.txt"), numbered(200))
	r := NewRenderer(root, Options{Context: 5})

	c := search.Candidate{Path: "a.txt", Match: &search.Match{Line: 100, Start: 5, End: 8, Text: "line 100"}}
	p := r.Render(context.Background(), c)

	assert.Equal(t, 95, p.StartLine)
	assert.Len(t, p.Raw, 11)
	assert.Equal(t, 100, p.HitLine)
	assert.Equal(t, 5, p.HitIndex())
	assert.Equal(t, "line 100", p.Raw[p.HitIndex()])
	assert.Equal(t, "100", p.Raw[p.HitIndex()][p.SpanStart:p.SpanEnd])
}

func TestRenderWindowNearTop(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.txt"), numbered(3))
	r := NewRenderer(root, Options{Context: 30})

	p := r.Render(context.Background(), search.Candidate{Path: "a.txt", Match: &search.Match{Line: 2}})

	assert.Equal(t, 1, p.StartLine)
	assert.Len(t, p.Raw, 3)
	assert.Equal(t, 1, p.HitIndex())
	assert.False(t, p.Truncated)
}

func TestRenderByteCap(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "big.txt"), strings.Repeat("x", 5000)+"\nsecond\n")
	r := NewRenderer(root, Options{MaxBytes: 1000})

	p := r.Render(context.Background(), search.Candidate{Path: "big.txt"})

	require.Len(t, p.Raw, 1)
	assert.Len(t, p.Raw[0], 1000)
	assert.True(t, p.Truncated)
}

func TestRenderDirectory(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "pkg", "b.go"), "")
	write(t, filepath.Join(root, "pkg", "a.go"), "")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg", "zsub"), 0o755))

	p := NewRenderer(root, Options{}).Render(context.Background(), search.Candidate{Path: "pkg", IsDir: true})

	assert.Equal(t, KindDirectory, p.Kind)
	assert.Equal(t, []string{"zsub/", "a.go", "b.go"}, p.Lines)
}

func TestRenderEmptyDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))

	p := NewRenderer(root, Options{}).Render(context.Background(), search.Candidate{Path: "empty", IsDir: true})

	assert.Equal(t, "empty directory", p.Message)
}

func TestRenderBinaryPlaceholder(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "app.bin"), "ELF\x00\x01\x02")

	p := NewRenderer(root, Options{}).Render(context.Background(), search.Candidate{Path: "app.bin"})

	assert.Equal(t, KindBinary, p.Kind)
	assert.Equal(t, "binary file (6 bytes)", p.Message)
	assert.Empty(t, p.Lines)
}

func TestRenderMissingFilePlaceholder(t *testing.T) {
	p := NewRenderer(t.TempDir(), Options{}).Render(context.Background(), search.Candidate{Path: "gone.txt"})

	assert.Equal(t, KindUnavailable, p.Kind)
	assert.Contains(t, p.Message, "gone.txt")
}

func TestRenderFallsBackWithoutBat(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "main.go"), "package main\n")

	p := NewRenderer(root, Options{BatPath: filepath.Join(root, "no-such-bat")}).
		Render(context.Background(), search.Candidate{Path: "main.go"})

	assert.Equal(t, []string{"package main"}, p.Lines)
}

func TestRenderWithBat(t *testing.T) {
	bat, err := exec.LookPath("bat")
	if err != nil {
		if bat, err = exec.LookPath("batcat"); err != nil {
			t.Skip("bat not installed")
		}
	}
	root := t.TempDir()
	write(t, filepath.Join(root, "main.go"), "package main\n\nfunc main() {}\n")

	p := NewRenderer(root, Options{BatPath: bat}).Render(context.Background(), search.Candidate{Path: "main.go"})

	require.Len(t, p.Lines, 3)
	for i := range p.Lines {
		assert.Equal(t, p.Raw[i], ansi.Strip(p.Lines[i]))
	}
}

func TestRenderUsesCache(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.txt"), "one\n")
	r := NewRenderer(root, Options{})

	first := r.Render(context.Background(), search.Candidate{Path: "a.txt"})
	second := r.Render(context.Background(), search.Candidate{Path: "a.txt"})

	assert.Same(t, first, second)
}

func TestRenderDeepMatchShowsHead(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.txt"), numbered(5000))
	r := NewRenderer(root, Options{MaxLines: 50, Context: 5, MaxBytes: 1000})

	c := search.Candidate{Path: "a.txt", Match: &search.Match{Line: 4000, Start: 5, End: 9, Text: "line 4000"}}
	p := r.Render(context.Background(), c)

	assert.Equal(t, KindText, p.Kind)
	assert.Equal(t, 1, p.StartLine)
	assert.Equal(t, "line 1", p.Raw[0])
	assert.Equal(t, "match beyond preview range", p.Note)
	assert.Equal(t, -1, p.HitIndex())
}

func TestRenderMatchWithinScanRange(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.txt"), numbered(5000))
	r := NewRenderer(root, Options{Context: 5, MaxBytes: 1000})

	p := r.Render(context.Background(), search.Candidate{Path: "a.txt", Match: &search.Match{Line: 300}})

	assert.Equal(t, 295, p.StartLine)
	assert.Empty(t, p.Note)
	assert.Equal(t, "line 300", p.Raw[p.HitIndex()])
}

func TestRenderCancelledDeepMatch(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.txt"), numbered(5000))
	r := NewRenderer(root, Options{Context: 5})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := search.Candidate{Path: "a.txt", Match: &search.Match{Line: 4000}}
	p := r.Render(ctx, c)

	assert.Equal(t, KindUnavailable, p.Kind)
	assert.Empty(t, p.Lines)

	// A cancelled render is not cached.
	p = r.Render(context.Background(), c)
	assert.Equal(t, KindText, p.Kind)
	assert.Equal(t, 3995, p.StartLine)
}

func TestReadWindow(t *testing.T) {
	dir := t.TempDir()
	lines := filepath.Join(dir, "lines.txt")
	write(t, lines, numbered(5000))
	long := filepath.Join(dir, "long.txt")
	write(t, long, strings.Repeat("x", 20000)+"\nafter\n")

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := readWindow(ctx, lines, 4000, 4010, 1000)
		assert.ErrorIs(t, err, context.Canceled)
	})
	t.Run("beyond budget", func(t *testing.T) {
		_, err := readWindow(context.Background(), lines, 4000, 4010, 1000)
		assert.ErrorIs(t, err, errBeyondRange)
	})
	t.Run("long line before window", func(t *testing.T) {
		_, err := readWindow(context.Background(), long, 2, 2, 1000)
		assert.ErrorIs(t, err, errBeyondRange)
	})
	t.Run("long line in window", func(t *testing.T) {
		w, err := readWindow(context.Background(), long, 1, 2, 1000)
		require.NoError(t, err)
		require.Len(t, w.lines, 1)
		assert.Len(t, w.lines[0], 1000)
		assert.True(t, w.truncated)
	})
}
