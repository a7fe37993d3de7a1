package gitutil

import (
	"os"
	"path/filepath"

	"github.com/angelsen/ry-tool/pkg/logger"
)

var log = logger.New("gitutil:gitutil")

// FindWorktreeRoot walks up from dir to the enclosing git worktree
// root. Linked worktrees keep .git as a file rather than a directory,
// so any .git entry counts. Returns the absolute form of dir when no
// worktree encloses it.
func FindWorktreeRoot(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		log.Printf("Cannot resolve %s: %v", dir, err)
		return dir
	}

	current := abs
	for {
		if _, err := os.Stat(filepath.Join(current, ".git")); err == nil {
			log.Printf("Found worktree root at %s", current)
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			log.Printf("No worktree root above %s", abs)
			return abs
		}
		current = parent
	}
}
