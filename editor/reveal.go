package editor

import (
	"fmt"
	"os/exec"
	"runtime"
)

// RevealCommand builds the command that opens dir in the platform file browser.
func RevealCommand(goos, dir string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		return exec.Command("open", dir), nil
	case "windows":
		return exec.Command("explorer", dir), nil
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly":
		return exec.Command("xdg-open", dir), nil
	}
	return nil, fmt.Errorf("reveal not supported on %s", goos)
}

// Reveal opens dir in the file browser and returns without waiting.
func Reveal(dir string) error {
	cmd, err := RevealCommand(runtime.GOOS, dir)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", cmd.Path, err)
	}
	return cmd.Process.Release()
}
