// Package testutil provides shared helpers for tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

var (
	testRunDir     string
	testRunDirOnce sync.Once
)

// GetTestRunDir returns a process-wide directory for this test run.
// All TempDir results live under it, which makes leftover artifacts
// from failed runs easy to find and sweep.
func GetTestRunDir() string {
	testRunDirOnce.Do(func() {
		base := filepath.Join(os.TempDir(), "ry-test-runs")
		runDir := filepath.Join(base, fmt.Sprintf("run-%d-%d", os.Getpid(), time.Now().UnixNano()))
		if err := os.MkdirAll(runDir, 0o755); err != nil {
			// Fall back to the system temp dir rather than failing
			// every test that needs a scratch directory.
			testRunDir = os.TempDir()
			return
		}
		testRunDir = runDir
	})
	return testRunDir
}

// TempDir creates a temporary directory under the test run directory
// using the given pattern and removes it when the test completes.
func TempDir(t *testing.T, pattern string) string {
	t.Helper()

	dir, err := os.MkdirTemp(GetTestRunDir(), pattern)
	if err != nil {
		t.Fatalf("failed to create temp directory: %v", err)
	}
	t.Cleanup(func() {
		os.RemoveAll(dir)
	})
	return dir
}

// StripYAMLCommentHeader removes a leading block of comment lines and
// blank lines from YAML content. Content that is nothing but comments
// is returned unchanged.
func StripYAMLCommentHeader(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if i == 0 {
			return content
		}
		return strings.Join(lines[i:], "\n")
	}
	return content
}
