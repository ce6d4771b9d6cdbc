package preview

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// BatArgs returns the bat arguments for highlighting text piped on stdin
// as if it came from file.
func BatArgs(file string) []string {
	return []string{
		"--color=always",
		"--style=plain",
		"--paging=never",
		"--wrap=never",
		"--tabs=4",
		"--file-name=" + filepath.Base(file),
		"-",
	}
}

// highlight pipes lines through bat and returns the coloured lines. The
// result has the same length as lines.
func highlight(ctx context.Context, batPath, file string, lines []string) ([]string, error) {
	if batPath == "" {
		return nil, fmt.Errorf("bat is not configured")
	}
	cmd := exec.CommandContext(ctx, batPath, BatArgs(file)...)
	cmd.Stdin = strings.NewReader(strings.Join(lines, "\n") + "\n")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("bat: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	out := strings.Split(strings.TrimSuffix(stdout.String(), "\n"), "\n")
	if n := len(out); n == len(lines)+1 && ansi.Strip(out[n-1]) == "" {
		out = out[:n-1]
	}
	if len(out) != len(lines) {
		return nil, fmt.Errorf("bat returned %d lines for %d", len(out), len(lines))
	}
	for i := range out {
		out[i] = strings.TrimSuffix(out[i], "\r")
	}
	return out, nil
}
