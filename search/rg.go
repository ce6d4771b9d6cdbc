package search

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/takaishi/yoink/logging"
	"github.com/takaishi/yoink/walker"
)

// FilterFunc builds the ignore filter for a request.
type FilterFunc func(req Request) *walker.Filter

// ContentSearcher runs ripgrep over the search root.
type ContentSearcher struct {
	RgPath     string
	Filters    FilterFunc
	MaxResults int
}

// NewContentSearcher creates a ContentSearcher using rgPath.
func NewContentSearcher(rgPath string, filters FilterFunc, maxResults int) *ContentSearcher {
	return &ContentSearcher{RgPath: rgPath, Filters: filters, MaxResults: maxResults}
}

// RgArgs returns the ripgrep arguments for req under the filter's rules.
func RgArgs(req Request, f *walker.Filter) []string {
	args := []string{
		"--json",
		"--no-messages",
		"--color=never",
	}
	if req.CaseSensitive {
		args = append(args, "--case-sensitive")
	} else {
		args = append(args, "--ignore-case")
	}

	opts := f.Options()
	if req.ShowHidden {
		args = append(args, "--hidden")
	}
	if !opts.Config.IncludeMounts {
		args = append(args, "--one-file-system")
	}
	if opts.Config.IncludeSymlinks {
		args = append(args, "--follow")
	}
	if opts.FoldCase {
		args = append(args, "--glob-case-insensitive")
	}
	for _, p := range opts.Config.IgnorePatterns {
		args = append(args, "-g", "!"+p)
	}
	return append(args, "-e", req.Query, "--", ".")
}

// Issue executes a ripgrep search for req and streams the matches.
// An empty query yields no results.
func (s *ContentSearcher) Issue(ctx context.Context, req Request) Handle {
	st := newStream(ctx)
	go func() {
		if req.Query == "" {
			st.finish(nil)
			return
		}
		st.finish(s.run(st, req))
	}()
	return st
}

func (s *ContentSearcher) run(st *stream, req Request) error {
	log := logging.For("search")
	filter := s.Filters(req)

	cmd := exec.CommandContext(st.ctx, s.RgPath, RgArgs(req, filter)...)
	cmd.Dir = filter.Root()
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: failed to create stdout pipe: %v", ErrInvocation, err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: failed to start ripgrep: %v", ErrInvocation, err)
	}

	b := newBatcher(st, s.MaxResults)
	decisions := make(map[string]walker.Decision)
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)
	matched := 0
	stopped := false
	for scanner.Scan() {
		c, err := ParseJSONLine(scanner.Bytes())
		if err != nil {
			log.Debug("rg_line_skipped", slog.String("error", err.Error()))
			continue
		}
		if c == nil {
			continue
		}
		d, ok := decisions[c.Path]
		if !ok {
			d = filter.Decide(c.Path)
			decisions[c.Path] = d
		}
		if d == walker.Hidden {
			continue
		}
		matched++
		if !b.add(*c) {
			stopped = true
			break
		}
	}
	if stopped {
		st.cancel()
	} else {
		b.flush()
	}

	err = cmd.Wait()
	if st.ctx.Err() != nil {
		return nil
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			switch exitErr.ExitCode() {
			case 1:
				// ripgrep returns 1 when nothing matched.
				return nil
			case 2:
				// 2 also covers unreadable files, which --no-messages keeps quiet.
				if matched > 0 || strings.TrimSpace(stderr.String()) == "" {
					return nil
				}
			}
		}
		log.Warn("backend_failed", slog.String("backend", "rg"), slog.String("error", err.Error()), slog.String("stderr", stderr.String()))
		return fmt.Errorf("%w: rg: %s", ErrInvocation, firstLine(stderr.String(), err))
	}
	return nil
}
