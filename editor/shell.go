package editor

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Shell returns the user's interactive shell.
func Shell() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	if runtime.GOOS == "windows" {
		if c := os.Getenv("COMSPEC"); c != "" {
			return c
		}
		return "cmd.exe"
	}
	return "/bin/sh"
}

// SpawnShell runs an interactive shell in dir and waits for it to exit.
func SpawnShell(dir string, stdio Stdio) error {
	cmd := exec.Command(Shell())
	cmd.Dir = dir
	cmd.Stdin, cmd.Stdout, cmd.Stderr = stdio.In, stdio.Out, stdio.Err
	cmd.Env = append(os.Environ(), "YOINK_SHELL=1")
	if err := cmd.Run(); err != nil {
		// A shell's exit status is the user's last command, not our failure.
		if _, ok := err.(*exec.ExitError); ok {
			return nil
		}
		return fmt.Errorf("run shell: %w", err)
	}
	return nil
}
