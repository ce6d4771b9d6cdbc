package search

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"github.com/takaishi/yoink/logging"
	"github.com/takaishi/yoink/walker"
)

// WalkerFunc builds the enumerator for a request.
type WalkerFunc func(req Request) *walker.Walker

// NameSearcher streams enumerated paths through `fzf --filter`.
type NameSearcher struct {
	FzfPath    string
	Walkers    WalkerFunc
	MaxResults int
}

// NewNameSearcher creates a NameSearcher using fzfPath.
func NewNameSearcher(fzfPath string, walkers WalkerFunc, maxResults int) *NameSearcher {
	return &NameSearcher{FzfPath: fzfPath, Walkers: walkers, MaxResults: maxResults}
}

// FzfArgs returns the fzf arguments for req.
func FzfArgs(req Request) []string {
	caseFlag := "-i"
	if req.CaseSensitive {
		caseFlag = "+i"
	}
	return []string{
		"--filter=" + req.Query,
		"--read0",
		"--print0",
		"--scheme=path",
		caseFlag,
	}
}

// Issue starts a name search. An empty query lists every visible entry in
// enumeration order without invoking fzf.
func (s *NameSearcher) Issue(ctx context.Context, req Request) Handle {
	st := newStream(ctx)
	go func() {
		w := s.Walkers(req)
		if strings.TrimSpace(req.Query) == "" {
			st.finish(s.list(st, w))
			return
		}
		st.finish(s.filter(st, w, req))
	}()
	return st
}

func (s *NameSearcher) list(st *stream, w *walker.Walker) error {
	b := newBatcher(st, s.MaxResults)
	for e := range w.Walk(st.ctx) {
		if !b.add(Candidate{Path: e.Path, IsDir: e.IsDir}) {
			return nil
		}
	}
	b.flush()
	return nil
}

func (s *NameSearcher) filter(st *stream, w *walker.Walker, req Request) error {
	log := logging.For("search")
	cmd := exec.CommandContext(st.ctx, s.FzfPath, FzfArgs(req)...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("%w: failed to create stdin pipe: %v", ErrInvocation, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: failed to create stdout pipe: %v", ErrInvocation, err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: failed to start fzf: %v", ErrInvocation, err)
	}

	var mu sync.Mutex
	dirs := make(map[string]bool)

	go func() {
		defer stdin.Close()
		bw := bufio.NewWriter(stdin)
		for e := range w.Walk(st.ctx) {
			if e.IsDir {
				mu.Lock()
				dirs[e.Path] = true
				mu.Unlock()
			}
			if _, err := io.WriteString(bw, e.Path+"\x00"); err != nil {
				return
			}
		}
		_ = bw.Flush()
	}()

	b := newBatcher(st, s.MaxResults)
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	scanner.Split(splitNUL)
	stopped := false
	for scanner.Scan() {
		path := scanner.Text()
		mu.Lock()
		isDir := dirs[path]
		mu.Unlock()
		if !b.add(Candidate{Path: path, IsDir: isDir}) {
			stopped = true
			break
		}
	}
	if !stopped {
		b.flush()
	}
	if stopped {
		st.cancel()
		_, _ = io.Copy(io.Discard, stdout)
	}

	err = cmd.Wait()
	if st.ctx.Err() != nil {
		return nil
	}
	if err != nil {
		var exitErr *exec.ExitError
		// fzf exits 1 when nothing matched.
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return nil
		}
		log.Warn("backend_failed", slog.String("backend", "fzf"), slog.String("error", err.Error()), slog.String("stderr", stderr.String()))
		return fmt.Errorf("%w: fzf: %s", ErrInvocation, firstLine(stderr.String(), err))
	}
	return nil
}

func splitNUL(data []byte, atEOF bool) (int, []byte, error) {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func firstLine(s string, fallback error) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback.Error()
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
