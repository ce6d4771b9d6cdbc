package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/takaishi/yoink/editor"
)

// EditorEnv selects the editor ahead of $VISUAL and $EDITOR.
const EditorEnv = "YOINK_EDITOR"

// Options holds the command line options.
type Options struct {
	Query      string
	Content    bool
	Editor     string
	Root       string
	Project    bool
	IgnoreFile string
	PrefsFile  string
	Debug      bool
}

// AddFlags registers the options on flags.
func (o *Options) AddFlags(flags *pflag.FlagSet) {
	flags.BoolVarP(&o.Content, "content", "c", false, "start in content search mode")
	flags.StringVarP(&o.Editor, "editor", "e", "", "editor command (default $"+EditorEnv+", $VISUAL, $EDITOR)")
	flags.StringVarP(&o.Root, "root", "r", "", "directory to search (default current directory)")
	flags.BoolVarP(&o.Project, "project", "p", false, "search from the git repository root")
	flags.StringVar(&o.IgnoreFile, "ignore-file", "", "ignore file (default $"+IgnoreFileEnv+" or ~/.yoinkignore)")
	flags.StringVar(&o.PrefsFile, "prefs", "", "preferences file (default $"+PrefsEnv+" or ~/.config/yoink/config.toml)")
	flags.BoolVar(&o.Debug, "debug", false, "log at debug level")
}

// SetArgs takes the optional positional query.
func (o *Options) SetArgs(args []string) error {
	switch len(args) {
	case 0:
	case 1:
		o.Query = args[0]
	default:
		return fmt.Errorf("expected at most one query argument, got %d", len(args))
	}
	return nil
}

// ResolveEditor picks the editor: flag, $YOINK_EDITOR, prefs, $VISUAL,
// $EDITOR, then detection.
func (o *Options) ResolveEditor(prefs Prefs) (editor.Editor, error) {
	return editor.Resolve(o.Editor, os.Getenv(EditorEnv), prefs.Editor, os.Getenv("VISUAL"), os.Getenv("EDITOR"))
}

// IgnorePath returns the ignore file to read.
func (o *Options) IgnorePath() string {
	if o.IgnoreFile != "" {
		return mustExpand(o.IgnoreFile)
	}
	return IgnoreFilePath()
}

// PrefsPath returns the preferences file to read.
func (o *Options) PrefsPath() string {
	if o.PrefsFile != "" {
		return mustExpand(o.PrefsFile)
	}
	return PrefsPath()
}

// ResolveRoot returns the absolute search root. findGitRoot is consulted
// when Project is set.
func (o *Options) ResolveRoot(findGitRoot func(string) (string, bool)) (string, error) {
	root := o.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		root = wd
	}
	root, err := expandPath(root)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}
	if o.Project {
		if top, ok := findGitRoot(root); ok {
			root = top
		}
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("root %s: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("root %s is not a directory", root)
	}
	if _, err := os.ReadDir(root); err != nil {
		return "", fmt.Errorf("root %s is unreadable: %w", root, err)
	}
	return filepath.Clean(root), nil
}
