package search

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// FindGitRoot finds the git repository root directory starting from the given path
func FindGitRoot(startPath string) (string, bool) {
	path := startPath
	for {
		// .git is a directory in a normal checkout and a file in a worktree.
		if _, err := os.Stat(filepath.Join(path, ".git")); err == nil {
			return path, true
		}
		parent := filepath.Dir(path)
		if parent == path {
			break
		}
		path = parent
	}
	return gitRootFromCommand(startPath)
}

// gitRootFromCommand asks git, which also understands GIT_DIR and bare
// layouts the directory walk cannot see.
func gitRootFromCommand(dir string) (string, bool) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		return "", false
	}
	root := strings.TrimSpace(string(output))
	if root == "" {
		return "", false
	}
	return root, true
}
