// Package walker decides which filesystem entries are visible to a search and
// enumerates them lazily.
package walker

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/takaishi/yoink/config"
)

// Decision is the outcome of applying the ignore rules to a path.
type Decision int

const (
	Visible Decision = iota
	Hidden
)

func (d Decision) String() string {
	if d == Visible {
		return "visible"
	}
	return "hidden"
}

// Options are the per-query inputs to a Filter.
type Options struct {
	Config config.Config
	// ShowHidden replaces Config.IncludeHidden for the session.
	ShowHidden bool
	// FoldCase matches ignore globs case-insensitively.
	FoldCase bool
}

type pattern struct {
	glob string
	// base patterns have no separator and also match the entry name.
	base bool
	// dir is set for "x/**" patterns so that x itself is pruned.
	dir string
	// literal is used when glob does not parse.
	literal bool
}

// Filter applies ignore globs, hidden, symlink and mount rules.
type Filter struct {
	root     string
	opts     Options
	patterns []pattern
	rootDev  uint64
	hasDev   bool
}

// NewFilter compiles the ignore patterns for root.
func NewFilter(root string, opts Options) *Filter {
	f := &Filter{root: root, opts: opts}
	for _, p := range opts.Config.IgnorePatterns {
		f.patterns = append(f.patterns, compile(p, opts.FoldCase))
	}
	f.rootDev, f.hasDev = deviceID(root)
	return f
}

func compile(raw string, fold bool) pattern {
	g := filepath.ToSlash(strings.TrimPrefix(raw, "./"))
	g = strings.TrimPrefix(g, "/")
	if fold {
		g = strings.ToLower(g)
	}
	p := pattern{glob: g, base: !strings.Contains(g, "/")}
	if strings.HasSuffix(g, "/**") {
		p.dir = strings.TrimSuffix(g, "/**")
	}
	if !doublestar.ValidatePattern(g) {
		p.literal = true
	}
	return p
}

func (p pattern) match(rel, name string, isDir bool) bool {
	if p.literal {
		return rel == p.glob || (p.base && name == p.glob)
	}
	if ok, _ := doublestar.Match(p.glob, rel); ok {
		return true
	}
	if p.base {
		if ok, _ := doublestar.Match(p.glob, name); ok {
			return true
		}
	}
	if isDir && p.dir != "" {
		if ok, _ := doublestar.Match(p.dir, rel); ok {
			return true
		}
	}
	return false
}

// Root returns the directory the filter is anchored at.
func (f *Filter) Root() string { return f.root }

// Options returns the options the filter was built with.
func (f *Filter) Options() Options { return f.opts }

// Ignored reports whether rel, relative to root, matches an ignore glob.
func (f *Filter) Ignored(rel string, isDir bool) bool {
	rel = filepath.ToSlash(rel)
	if f.opts.FoldCase {
		rel = strings.ToLower(rel)
	}
	name := path.Base(rel)
	for _, p := range f.patterns {
		if p.match(rel, name, isDir) {
			return true
		}
	}
	return false
}

// IsHidden reports whether any component of rel starts with a dot.
func IsHidden(rel string) bool {
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if part != "." && part != ".." && strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// Decide applies every rule to rel, reading its metadata from disk. Paths
// that cannot be read are hidden.
func (f *Filter) Decide(rel string) Decision {
	rel = filepath.Clean(strings.TrimPrefix(filepath.ToSlash(rel), "./"))
	abs := filepath.Join(f.root, rel)
	info, err := os.Lstat(abs)
	if err != nil {
		return Hidden
	}
	isSymlink := info.Mode()&os.ModeSymlink != 0
	if isSymlink {
		if !f.opts.Config.IncludeSymlinks {
			return Hidden
		}
		if info, err = os.Stat(abs); err != nil {
			return Hidden
		}
	}
	if f.Ignored(rel, info.IsDir()) || f.ignoredParent(rel) {
		return Hidden
	}
	if !f.opts.ShowHidden && IsHidden(rel) {
		return Hidden
	}
	if !f.opts.Config.IncludeMounts && f.crossesMount(abs) {
		return Hidden
	}
	return Visible
}

// ignoredParent reports whether a directory above rel is ignored; the walker
// prunes such directories so their children must stay hidden too.
func (f *Filter) ignoredParent(rel string) bool {
	dir := filepath.Dir(rel)
	for dir != "." && dir != string(filepath.Separator) && dir != "" {
		if f.Ignored(dir, true) {
			return true
		}
		dir = filepath.Dir(dir)
	}
	return false
}

func (f *Filter) crossesMount(abs string) bool {
	if !f.hasDev {
		return false
	}
	dev, ok := deviceID(abs)
	return ok && dev != f.rootDev
}

// admit applies the rules to a directory entry during traversal, where the
// symlink and device facts are already known.
func (f *Filter) admit(rel string, isDir, isSymlink bool, dev, parentDev uint64, hasDev bool) Decision {
	if isSymlink && !f.opts.Config.IncludeSymlinks {
		return Hidden
	}
	if f.Ignored(rel, isDir) {
		return Hidden
	}
	if !f.opts.ShowHidden && strings.HasPrefix(filepath.Base(rel), ".") {
		return Hidden
	}
	if isDir && hasDev && !f.opts.Config.IncludeMounts && dev != parentDev {
		return Hidden
	}
	return Visible
}
