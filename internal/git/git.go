// Package git exposes the staged change set of the working tree.
package git

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNoStagedChanges is returned when the index holds nothing to commit.
var ErrNoStagedChanges = errors.New("no staged changes found")

// DiffSource provides the staged state an analysis needs. It exists so
// tests can substitute a canned implementation for the real repository.
type DiffSource interface {
	HasStagedChanges() bool
	StagedDiff() (string, error)
	ChangedFiles() ([]string, error)
}

// CLI reads the repository through the git executable.
type CLI struct{}

// Default is the DiffSource used by the application.
var Default DiffSource = CLI{}

// IsRepo checks if the current directory is inside a git working tree.
func IsRepo() bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	return cmd.Run() == nil
}

// HasStagedChanges reports whether anything is staged for commit.
// `git diff --cached --quiet` exits non-zero exactly when the index
// differs from HEAD.
func (CLI) HasStagedChanges() bool {
	cmd := exec.Command("git", "diff", "--cached", "--quiet")
	return cmd.Run() != nil
}

// StagedDiff returns the unified diff of staged changes.
func (CLI) StagedDiff() (string, error) {
	cmd := exec.Command("git", "diff", "--cached")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to get staged diff: %w", err)
	}
	return string(out), nil
}

// ChangedFiles returns the paths staged for commit, in git's order.
func (CLI) ChangedFiles() ([]string, error) {
	cmd := exec.Command("git", "diff", "--cached", "--name-only")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to list staged files: %w", err)
	}
	return splitPaths(string(out)), nil
}

func splitPaths(out string) []string {
	var paths []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			paths = append(paths, line)
		}
	}
	return paths
}
