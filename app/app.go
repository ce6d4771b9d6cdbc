// Package app wires the configuration, backends and UI of one run.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/takaishi/yoink/action"
	"github.com/takaishi/yoink/config"
	"github.com/takaishi/yoink/editor"
	"github.com/takaishi/yoink/logging"
	"github.com/takaishi/yoink/preview"
	"github.com/takaishi/yoink/search"
	"github.com/takaishi/yoink/session"
	"github.com/takaishi/yoink/tui"
	"github.com/takaishi/yoink/walker"
)

// ErrBackendUnavailable marks a required external engine missing from PATH.
var ErrBackendUnavailable = errors.New("required tool not found")

// MissingToolError names the tool that could not be found.
type MissingToolError struct {
	Tool string
}

func (e *MissingToolError) Error() string {
	return fmt.Sprintf("%s is not installed or not in PATH", e.Tool)
}

func (e *MissingToolError) Unwrap() error { return ErrBackendUnavailable }

// Tools holds the resolved external programs.
type Tools struct {
	Fzf string
	Rg  string
	// Bat is bat, or batcat where distributions rename it.
	Bat string
}

// LookPath is replaced in tests.
var LookPath = exec.LookPath

// FindTools resolves fzf, rg and bat (or batcat). All three are required.
func FindTools() (Tools, error) {
	var t Tools
	var err error
	if t.Fzf, err = LookPath("fzf"); err != nil {
		return t, &MissingToolError{Tool: "fzf"}
	}
	if t.Rg, err = LookPath("rg"); err != nil {
		return t, &MissingToolError{Tool: "rg"}
	}
	for _, name := range []string{"bat", "batcat"} {
		if p, err := LookPath(name); err == nil {
			t.Bat = p
			return t, nil
		}
	}
	return t, &MissingToolError{Tool: "bat"}
}

// Options configure a run.
type Options struct {
	config.Options
	// Out receives the print action.
	Out io.Writer
}

// Run starts an interactive session and executes the chosen action. The
// returned code is the process exit status.
func Run(ctx context.Context, opts Options) (int, error) {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	if _, err := logging.Init(logging.DefaultPath(), level); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	defer func() { _ = logging.Close() }()
	log := logging.For("app")

	tools, err := FindTools()
	if err != nil {
		log.Error("startup_failed", slog.String("error", err.Error()))
		return 1, err
	}

	prefs := config.LoadPrefs(opts.PrefsPath())
	cfg := config.LoadIgnore(opts.IgnorePath())

	root, err := opts.ResolveRoot(search.FindGitRoot)
	if err != nil {
		log.Error("startup_failed", slog.String("error", err.Error()))
		return 1, err
	}

	confirm, ok := action.ParseKind(prefs.DefaultAction)
	if !ok {
		log.Warn("default_action_invalid", slog.String("value", prefs.DefaultAction))
		confirm = action.ChangeDir
	}

	if err := action.ClearHandoff(prefs.HandoffFile); err != nil {
		log.Warn("handoff_clear_failed", slog.String("path", prefs.HandoffFile), slog.String("error", err.Error()))
	}

	mode := search.ModeFilename
	if opts.Content {
		mode = search.ModeContent
	}
	state := session.New(mode, opts.Query, cfg.IncludeHidden)

	log.Info("session_started",
		slog.String("root", root),
		slog.String("mode", mode.String()),
		slog.String("sort_mode", string(cfg.SortMode)),
		slog.Int("ignore_patterns", len(cfg.IgnorePatterns)))

	filters := FilterFactory(root, cfg, prefs.GlobCaseInsensitive)
	orch := search.NewOrchestrator(ctx,
		search.NewNameSearcher(tools.Fzf, func(req search.Request) *walker.Walker {
			return walker.New(filters(req))
		}, prefs.MaxResults),
		search.NewContentSearcher(tools.Rg, filters, prefs.MaxResults),
	)
	renderer := preview.NewRenderer(root, preview.Options{
		BatPath:  tools.Bat,
		MaxLines: prefs.PreviewLines,
		Context:  prefs.PreviewContext,
		MaxBytes: prefs.PreviewMaxBytes,
	})

	outcome, err := tui.Run(ctx, tui.Options{
		Root:         root,
		Session:      state,
		Orchestrator: orch,
		Previewer:    renderer,
		Keys:         action.DefaultKeyMap(),
		Confirm:      confirm,
		Debounce:     prefs.Debounce(),
	})
	if err != nil {
		return 1, fmt.Errorf("run ui: %w", err)
	}
	if outcome.Cancelled || outcome.Action == action.None {
		return 0, nil
	}

	d := &action.Dispatcher{
		Root:        root,
		HandoffFile: prefs.HandoffFile,
		Stdio:       editor.OSStdio(),
		Out:         opts.Out,
	}
	if needsEditor(outcome.Action) {
		ed, err := opts.ResolveEditor(prefs)
		if err != nil {
			return 1, err
		}
		d.Editor = ed
	}
	if err := d.Execute(outcome.Action, outcome.Candidate); err != nil {
		log.Error("action_failed", slog.String("action", outcome.Action.String()), slog.String("error", err.Error()))
		return 1, err
	}
	return 0, nil
}

// FilterFactory returns a filter builder honouring each request's hidden
// toggle.
func FilterFactory(root string, cfg config.Config, foldCase bool) func(search.Request) *walker.Filter {
	return func(req search.Request) *walker.Filter {
		return walker.NewFilter(root, walker.Options{
			Config:     cfg,
			ShowHidden: req.ShowHidden,
			FoldCase:   foldCase,
		})
	}
}

func needsEditor(k action.Kind) bool {
	return k == action.OpenEditor
}
