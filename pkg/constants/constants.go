// Package constants defines shared constants used across the ry codebase.
package constants

import (
	"os"
	"path/filepath"
)

// Version is the ry release version, overridable at build time via
// -ldflags "-X github.com/angelsen/ry-tool/pkg/constants.Version=...".
var Version = "2.0.0"

// BinaryName is the name of the installed executable.
const BinaryName = "ry"

// Environment variables honored by the compiler and package manager.
const (
	// EnvVarShell overrides the shell binary used by the shell executor.
	EnvVarShell = "RY_SHELL"

	// EnvVarPython overrides the interpreter used by the python executor.
	EnvVarPython = "RY_PYTHON"

	// EnvVarLibraryDir is exported into generated scripts when a document
	// is compiled in library context, so external scripts can locate
	// their library's files.
	EnvVarLibraryDir = "RY_LIBRARY_DIR"

	// EnvVarRegistryURL overrides the registry base URL.
	EnvVarRegistryURL = "RY_REGISTRY_URL"

	// EnvVarShellTimeout overrides the !shell directive timeout (seconds).
	EnvVarShellTimeout = "RY_SHELL_TIMEOUT"
)

// Default interpreter paths. Overridable via EnvVarShell / EnvVarPython.
const (
	DefaultShellPath  = "/bin/sh"
	DefaultPythonPath = "/usr/bin/python3"
)

// DefaultRegistryBaseURL is the public registry used for library
// installation when EnvVarRegistryURL is not set.
const DefaultRegistryBaseURL = "https://angelsen.github.io/ry-tool"

// RegistryFormatVersion is the registry.json format version this build
// reads and writes.
const RegistryFormatVersion = "1.0.0"

// Registry and library layout names.
const (
	RegistryFileName  = "registry.json"
	InstalledFileName = "installed.json"
	MetadataFileName  = "meta.yaml"
	LibrariesDirName  = "libraries"
	DocsDirName       = "docs"
)

// SystemLibraryDir is the system-wide library location, searched after
// the user data directory.
const SystemLibraryDir = "/usr/share/ry/libraries"

// Directive timeout bounds (seconds) for EnvVarShellTimeout.
const (
	DefaultShellTimeoutSeconds = 5
	MinShellTimeoutSeconds     = 1
	MaxShellTimeoutSeconds     = 300
)

// DefaultHTTPTimeoutSeconds bounds registry and library downloads.
const DefaultHTTPTimeoutSeconds = 10

// MaxIncludeDepth bounds !include nesting before the loader reports a
// cycle-like runaway.
const MaxIncludeDepth = 32

// GetUserDataDir returns the per-user ry data directory, honoring
// XDG_DATA_HOME and falling back to ~/.local/share.
func GetUserDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "ry")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// No home directory: fall back to the working directory so
		// callers still get a usable path.
		return ".ry"
	}
	return filepath.Join(home, ".local", "share", "ry")
}

// GetUserLibraryDir returns the directory where installed libraries live.
func GetUserLibraryDir() string {
	return filepath.Join(GetUserDataDir(), LibrariesDirName)
}
