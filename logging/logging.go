// Package logging routes structured logs to a file so the terminal stays owned
// by the interactive UI.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	mu   sync.RWMutex
	base = slog.New(slog.NewTextHandler(io.Discard, nil))
	file io.Closer
)

// DefaultPath returns the log file location, honoring YOINK_LOG and
// XDG_STATE_HOME. An empty string means logging is off.
func DefaultPath() string {
	if v, ok := os.LookupEnv("YOINK_LOG"); ok {
		if strings.EqualFold(v, "off") || v == "" {
			return ""
		}
		return v
	}
	state := os.Getenv("XDG_STATE_HOME")
	if state == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		state = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(state, "yoink", "yoink.log")
}

// Init opens path for appending and installs a JSON handler tagged with a
// fresh session id. An empty path keeps logs discarded.
func Init(path string, level slog.Level) (string, error) {
	session := uuid.NewString()
	if path == "" {
		return session, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return session, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return session, fmt.Errorf("open log file: %w", err)
	}
	install(f, level, session)
	mu.Lock()
	file = f
	mu.Unlock()
	return session, nil
}

// SetOutput installs a handler writing to w. Used by tests.
func SetOutput(w io.Writer, level slog.Level) {
	install(w, level, uuid.NewString())
}

func install(w io.Writer, level slog.Level, session string) {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	mu.Lock()
	base = slog.New(h).With(slog.String("session", session))
	mu.Unlock()
}

// Close flushes and closes the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	base = slog.New(slog.NewTextHandler(io.Discard, nil))
	return err
}

// For returns a logger tagged with the component name.
func For(component string) *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base.With(slog.String("component", component))
}
