package walker

import (
	"context"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/takaishi/yoink/config"
	"github.com/takaishi/yoink/logging"
)

// Entry is one visible filesystem entry, relative to the walk root.
type Entry struct {
	Path  string
	IsDir bool
}

// Walker enumerates the visible entries below a root.
type Walker struct {
	filter *Filter
}

// New returns a walker over the filter's root.
func New(filter *Filter) *Walker {
	return &Walker{filter: filter}
}

type node struct {
	abs   string
	rel   string
	dev   uint64
	isDir bool
	// chain holds the real paths of this directory and its ancestors while
	// symlinks are followed.
	chain []string
}

// Walk returns a lazy sequence of visible entries. Each range over the
// sequence starts a fresh traversal. Ignored directories are never read.
func (w *Walker) Walk(ctx context.Context) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		root := w.filter.root
		start := node{abs: root, isDir: true}
		start.dev, _ = deviceID(root)
		if w.follow() {
			if real, err := filepath.EvalSymlinks(root); err == nil {
				start.chain = []string{real}
			}
		}

		if w.filter.opts.Config.SortMode == config.SortDepth {
			w.walkLevels(ctx, start, yield)
			return
		}
		w.walkTree(ctx, start, yield)
	}
}

func (w *Walker) follow() bool {
	return w.filter.opts.Config.IncludeSymlinks
}

// walkLevels visits entries breadth first: shallower entries come first and
// each directory's entries are sorted by name.
func (w *Walker) walkLevels(ctx context.Context, start node, yield func(Entry) bool) {
	queue := []node{start}
	for len(queue) > 0 {
		if ctx.Err() != nil {
			return
		}
		dir := queue[0]
		queue = queue[1:]
		for _, child := range w.children(dir) {
			if !yield(Entry{Path: child.rel, IsDir: child.isDir}) {
				return
			}
			if child.isDir && w.descend(&child, dir) {
				queue = append(queue, child)
			}
		}
	}
}

// walkTree visits entries depth first.
func (w *Walker) walkTree(ctx context.Context, dir node, yield func(Entry) bool) bool {
	if ctx.Err() != nil {
		return false
	}
	for _, child := range w.children(dir) {
		if !yield(Entry{Path: child.rel, IsDir: child.isDir}) {
			return false
		}
		if child.isDir && w.descend(&child, dir) {
			if !w.walkTree(ctx, child, yield) {
				return false
			}
		}
	}
	return true
}

// descend reports whether child should be traversed. With symlinks followed,
// a directory whose real path is already on the ancestor chain closes a
// cycle and is not entered.
func (w *Walker) descend(child *node, parent node) bool {
	if !w.follow() {
		return true
	}
	real, err := filepath.EvalSymlinks(child.abs)
	if err != nil {
		return false
	}
	if slices.Contains(parent.chain, real) {
		logging.For("walker").Debug("symlink_cycle", slog.String("path", child.rel), slog.String("target", real))
		return false
	}
	child.chain = append(slices.Clip(parent.chain), real)
	return true
}

// children reads dir and returns its visible entries in traversal order.
func (w *Walker) children(dir node) []node {
	entries, err := w.readDir(dir.abs)
	if err != nil {
		logging.For("walker").Debug("read_dir_failed", slog.String("path", dir.abs), slog.String("error", err.Error()))
		if len(entries) == 0 {
			return nil
		}
	}

	out := make([]node, 0, len(entries))
	for _, de := range entries {
		abs := filepath.Join(dir.abs, de.Name())
		rel := de.Name()
		if dir.rel != "" {
			rel = filepath.Join(dir.rel, de.Name())
		}

		isSymlink := de.Type()&fs.ModeSymlink != 0
		isDir := de.IsDir()
		if isSymlink {
			if !w.follow() {
				continue
			}
			info, err := os.Stat(abs)
			if err != nil {
				logging.For("walker").Debug("broken_symlink", slog.String("path", rel))
				continue
			}
			isDir = info.IsDir()
		}

		var dev uint64
		var hasDev bool
		if isDir {
			dev, hasDev = deviceID(abs)
		}
		if w.filter.admit(rel, isDir, isSymlink, dev, dir.dev, hasDev) == Hidden {
			continue
		}
		out = append(out, node{abs: abs, rel: rel, dev: dev, isDir: isDir})
	}
	return out
}

func (w *Walker) readDir(dir string) ([]fs.DirEntry, error) {
	if w.filter.opts.Config.SortMode != config.SortNone {
		return os.ReadDir(dir)
	}
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.ReadDir(-1)
}

// Collect drains a walk into a slice.
func Collect(ctx context.Context, w *Walker) []Entry {
	var out []Entry
	for e := range w.Walk(ctx) {
		out = append(out, e)
	}
	return out
}
