package console

import (
	"os"

	"golang.org/x/term"
)

// IsTerminal reports whether the given file is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// IsInteractive reports whether both stdin and stderr are terminals,
// the condition for prompts and spinners.
func IsInteractive() bool {
	return IsTerminal(os.Stdin) && IsTerminal(os.Stderr)
}

// GetTerminalWidth returns the current terminal width, or a sensible
// default when the size cannot be determined.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
