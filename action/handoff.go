package action

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofrs/flock"
	"github.com/takaishi/yoink/search"
)

// TargetDir returns the directory a candidate resolves to for cd and shell
// actions: the directory containing the candidate.
func TargetDir(root string, c search.Candidate) string {
	return filepath.Dir(c.Abs(root))
}

func lockPath() string {
	return filepath.Join(os.TempDir(), "yoink-handoff-"+strconv.Itoa(os.Getuid())+".lock")
}

// WriteHandoff atomically replaces path with dir followed by a newline.
func WriteHandoff(path, dir string) error {
	lock := flock.New(lockPath())
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock handoff: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create handoff dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".yoink-handoff-*")
	if err != nil {
		return fmt.Errorf("create handoff: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.WriteString(dir + "\n"); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write handoff: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write handoff: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace handoff: %w", err)
	}
	return nil
}

// ClearHandoff removes a stale handoff file left by an earlier session.
func ClearHandoff(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove stale handoff: %w", err)
	}
	return nil
}
