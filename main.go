package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/takaishi/yoink/app"
	"github.com/takaishi/yoink/config"
)

// version is set at build time.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	color.NoColor = !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := 0
	cmd := newRootCommand(func(c int) { code = c })
	if err := cmd.ExecuteContext(ctx); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "yoink: %v\n", err)
		if code == 0 {
			code = 1
		}
	}
	return code
}

func newRootCommand(setCode func(int)) *cobra.Command {
	var opts config.Options
	cmd := &cobra.Command{
		Use:   "yoink [query]",
		Short: "Find files by name or content and act on the selection",
		Long: `yoink searches a directory tree by file name (fzf) or by content (ripgrep),
shows a highlighted preview, and opens, reveals or cds to the selection.

Add this to your shell profile to cd on selection:

  y() { yoink "$@" && [ -s ~/.yoink_last_path ] && cd "$(cat ~/.yoink_last_path)"; }`,
		Args:          cobra.MaximumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.SetArgs(args); err != nil {
				return err
			}
			code, err := app.Run(cmd.Context(), app.Options{Options: opts, Out: cmd.OutOrStdout()})
			setCode(code)
			return err
		},
	}
	opts.AddFlags(cmd.Flags())
	cmd.AddCommand(newInitCommand())
	return cmd
}

func newInitCommand() *cobra.Command {
	var path string
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a preferences file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				path = config.PrefsPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.SavePrefs(path, config.DefaultPrefs()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "destination (default $"+config.PrefsEnv+" or ~/.config/yoink/config.toml)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}
