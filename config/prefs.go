package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/takaishi/yoink/logging"
)

// PrefsEnv overrides the preferences file location.
const PrefsEnv = "YOINK_CONFIG"

// HandoffEnv overrides the cd handoff file location.
const HandoffEnv = "YOINK_HANDOFF"

const (
	defaultPrefsPath   = "~/.config/yoink/config.toml"
	defaultHandoffPath = "~/.yoink_last_path"

	defaultPreviewLines    = 300
	defaultPreviewContext  = 30
	defaultPreviewMaxBytes = 256 * 1024
	defaultMaxResults      = 10000
	defaultDebounceMS      = 120
	defaultAction          = "cd"
)

// Prefs holds user preferences that are not part of the ignore file.
type Prefs struct {
	Editor              string `toml:"editor"`
	DefaultAction       string `toml:"default_action"`
	GlobCaseInsensitive bool   `toml:"glob_case_insensitive"`
	PreviewLines        int    `toml:"preview_lines"`
	PreviewContext      int    `toml:"preview_context"`
	PreviewMaxBytes     int64  `toml:"preview_max_bytes"`
	MaxResults          int    `toml:"max_results"`
	DebounceMS          int    `toml:"debounce_ms"`
	HandoffFile         string `toml:"handoff_file"`
}

// DefaultPrefs returns the built-in preferences.
func DefaultPrefs() Prefs {
	return Prefs{
		DefaultAction:   defaultAction,
		PreviewLines:    defaultPreviewLines,
		PreviewContext:  defaultPreviewContext,
		PreviewMaxBytes: defaultPreviewMaxBytes,
		MaxResults:      defaultMaxResults,
		DebounceMS:      defaultDebounceMS,
		HandoffFile:     mustExpand(defaultHandoffPath),
	}
}

// PrefsPath returns $YOINK_CONFIG or the default preferences location.
func PrefsPath() string {
	if p := os.Getenv(PrefsEnv); p != "" {
		return mustExpand(p)
	}
	return mustExpand(defaultPrefsPath)
}

// LoadPrefs reads preferences from path, falling back to defaults on any
// problem. Zero or negative numeric values keep their defaults.
func LoadPrefs(path string) Prefs {
	log := logging.For("config")
	prefs := DefaultPrefs()

	file, err := os.Open(mustExpand(path))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn("prefs_unreadable", slog.String("path", path), slog.String("error", err.Error()))
		}
		return prefs.withEnv()
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		log.Warn("prefs_unreadable", slog.String("path", path), slog.String("error", err.Error()))
		return prefs.withEnv()
	}

	var raw Prefs
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		log.Warn("prefs_invalid", slog.String("path", path), slog.String("error", err.Error()))
		return prefs.withEnv()
	}

	prefs.Editor = strings.TrimSpace(raw.Editor)
	prefs.GlobCaseInsensitive = raw.GlobCaseInsensitive
	if a := strings.TrimSpace(raw.DefaultAction); a != "" {
		prefs.DefaultAction = a
	}
	if raw.PreviewLines > 0 {
		prefs.PreviewLines = raw.PreviewLines
	}
	if raw.PreviewContext > 0 {
		prefs.PreviewContext = raw.PreviewContext
	}
	if raw.PreviewMaxBytes > 0 {
		prefs.PreviewMaxBytes = raw.PreviewMaxBytes
	}
	if raw.MaxResults > 0 {
		prefs.MaxResults = raw.MaxResults
	}
	if raw.DebounceMS > 0 {
		prefs.DebounceMS = raw.DebounceMS
	}
	if h := strings.TrimSpace(raw.HandoffFile); h != "" {
		prefs.HandoffFile = mustExpand(h)
	}
	return prefs.withEnv()
}

func (p Prefs) withEnv() Prefs {
	if h := os.Getenv(HandoffEnv); h != "" {
		p.HandoffFile = mustExpand(h)
	}
	return p
}

// Debounce returns the query debounce interval.
func (p Prefs) Debounce() time.Duration {
	return time.Duration(p.DebounceMS) * time.Millisecond
}

// SavePrefs writes preferences to path, creating directories as needed.
func SavePrefs(path string, p Prefs) error {
	resolved, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
