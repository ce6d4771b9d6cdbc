package preview

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
)

const sniffLen = 8 << 10

// scanFactor bounds the bytes read while skipping to a window, as a multiple
// of the text kept.
const scanFactor = 8

// checkEvery is how many lines are read between cancellation checks.
const checkEvery = 4096

var (
	// errBeyondRange means the window starts past the scan budget.
	errBeyondRange = errors.New("window beyond scan range")
	// errLongLine means a line ran past the scan budget.
	errLongLine = errors.New("line exceeds scan range")
)

// window is the slice of a file shown in the preview.
type window struct {
	start     int
	lines     []string
	truncated bool
	binary    bool
	size      int64
}

// readWindow reads lines start..end (1-based, inclusive) of file, keeping at
// most maxBytes of text. Lines before start are skipped without being kept,
// but at most scanFactor*maxBytes bytes are read in total; a window starting
// later returns errBeyondRange. ctx is checked while reading.
func readWindow(ctx context.Context, file string, start, end int, maxBytes int64) (*window, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	w := &window{start: start}
	if info, err := f.Stat(); err == nil {
		w.size = info.Size()
	}

	r := bufio.NewReaderSize(f, 64<<10)
	head, err := r.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if bytes.IndexByte(head, 0) >= 0 {
		w.binary = true
		return w, nil
	}

	budget := scanFactor * maxBytes
	var kept, scanned int64
	lineNum := 0
	for {
		if lineNum%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		line, n, err := readLine(r, maxBytes, budget-scanned)
		if errors.Is(err, errLongLine) {
			if lineNum+1 < start {
				return nil, errBeyondRange
			}
			if lineNum+1 <= end && kept+int64(len(line)) <= maxBytes {
				w.lines = append(w.lines, line)
			}
			w.truncated = true
			break
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		lineNum++
		scanned += n
		if lineNum < start {
			if scanned > budget {
				return nil, errBeyondRange
			}
			continue
		}
		if lineNum > end {
			w.truncated = true
			break
		}
		kept += int64(len(line))
		if kept > maxBytes {
			w.truncated = true
			break
		}
		w.lines = append(w.lines, line)
	}
	return w, nil
}

// readLine returns the next line without its terminator, cut at limit bytes,
// and the number of bytes consumed. It gives up with errLongLine once more
// than stop bytes were consumed.
func readLine(r *bufio.Reader, limit, stop int64) (string, int64, error) {
	var buf []byte
	var n int64
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			if len(buf) > 0 && errors.Is(err, io.EOF) {
				return string(buf), n, nil
			}
			return "", n, err
		}
		n += int64(len(chunk))
		if !isPrefix {
			n++
		}
		if int64(len(buf)) < limit {
			room := limit - int64(len(buf))
			if int64(len(chunk)) > room {
				chunk = chunk[:room]
			}
			buf = append(buf, chunk...)
		}
		if !isPrefix {
			return string(buf), n, nil
		}
		if n > stop {
			return string(buf), n, errLongLine
		}
	}
}

// listDir returns the immediate entries of dir, directories first, each
// directory name suffixed with a slash.
func listDir(dir string, limit int) ([]string, bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil && len(entries) == 0 {
		return nil, false, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		di, dj := entries[i].IsDir(), entries[j].IsDir()
		if di != dj {
			return di
		}
		return entries[i].Name() < entries[j].Name()
	})

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		if limit > 0 && len(lines) >= limit {
			return lines, true, nil
		}
		name := e.Name()
		if e.IsDir() {
			name += "/"
		} else if e.Type()&os.ModeSymlink != 0 {
			name += "@"
		}
		lines = append(lines, name)
	}
	return lines, false, nil
}

// windowBounds returns the line range to show around hit, or the head of the
// file when there is no hit.
func windowBounds(hit, context, maxLines int) (int, int) {
	if hit <= 0 {
		return 1, maxLines
	}
	start := hit - context
	if start < 1 {
		start = 1
	}
	return start, hit + context
}
