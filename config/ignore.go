package config

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/takaishi/yoink/logging"
)

// SortMode controls the traversal order of the enumerator.
type SortMode string

const (
	SortDepth SortMode = "depth"
	SortName  SortMode = "name"
	SortNone  SortMode = "none"
)

// IgnoreFileEnv overrides the location of the ignore file.
const IgnoreFileEnv = "YOINKIGNORE_PATH"

// DefaultIgnorePatterns are always applied, before any pattern from the file.
var DefaultIgnorePatterns = []string{".git/**", "node_modules/**"}

// Config is the ignore/include configuration read once at session start.
type Config struct {
	IncludeHidden   bool
	IncludeMounts   bool
	IncludeSymlinks bool
	SortMode        SortMode
	// IgnorePatterns keeps file order; duplicates are allowed.
	IgnorePatterns []string
}

// Default returns the configuration used when no ignore file exists.
func Default() Config {
	return Config{
		SortMode:       SortDepth,
		IgnorePatterns: append([]string(nil), DefaultIgnorePatterns...),
	}
}

// IgnoreFilePath returns $YOINKIGNORE_PATH or ~/.yoinkignore.
func IgnoreFilePath() string {
	if p := os.Getenv(IgnoreFileEnv); p != "" {
		return mustExpand(p)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".yoinkignore"
	}
	return filepath.Join(home, ".yoinkignore")
}

// LoadIgnore reads the ignore file at path. It never fails: a missing or
// unreadable file yields Default().
func LoadIgnore(path string) Config {
	log := logging.For("config")
	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn("ignore_file_unreadable", slog.String("path", path), slog.String("error", err.Error()))
		}
		return Default()
	}
	defer f.Close()
	return ParseIgnore(f)
}

// ParseIgnore parses ignore file content on top of Default().
func ParseIgnore(r io.Reader) Config {
	log := logging.For("config")
	cfg := Default()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if applySetting(&cfg, line) {
			continue
		}
		if looksLikeSetting(line) {
			log.Debug("config_line_as_glob", slog.Int("line", lineNo), slog.String("text", line))
		}
		cfg.IgnorePatterns = append(cfg.IgnorePatterns, line)
	}
	if err := scanner.Err(); err != nil {
		log.Warn("ignore_file_read_failed", slog.String("error", err.Error()))
	}
	return cfg
}

// applySetting reports whether line was a recognised key with a valid value.
func applySetting(cfg *Config, line string) bool {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return false
	}
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)

	switch key {
	case "include_hidden":
		return setBool(&cfg.IncludeHidden, value)
	case "include_mounts":
		return setBool(&cfg.IncludeMounts, value)
	case "include_symlinks":
		return setBool(&cfg.IncludeSymlinks, value)
	case "sort_mode":
		mode, ok := ParseSortMode(value)
		if ok {
			cfg.SortMode = mode
		}
		return ok
	}
	return false
}

func setBool(dst *bool, value string) bool {
	v, ok := ParseBool(value)
	if ok {
		*dst = v
	}
	return ok
}

// ParseBool accepts true/1/yes/on and false/0/no/off, case-insensitively.
func ParseBool(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true, true
	case "false", "0", "no", "off":
		return false, true
	}
	return false, false
}

// ParseSortMode accepts depth, name (or alphabetical) and none.
func ParseSortMode(value string) (SortMode, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "depth":
		return SortDepth, true
	case "name", "alphabetical":
		return SortName, true
	case "none":
		return SortNone, true
	}
	return "", false
}

func looksLikeSetting(line string) bool {
	key, _, ok := strings.Cut(line, "=")
	return ok && !strings.ContainsAny(key, "*?[/")
}
