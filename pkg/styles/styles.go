// Package styles defines the shared lipgloss color palette and text
// styles used by console output.
package styles

import "github.com/charmbracelet/lipgloss"

// Adaptive colors render sensibly on both light and dark terminals.
var (
	ColorError   = lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF5F5F"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#5FD75F"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#005FAF", Dark: "#5FAFFF"}
	ColorPurple  = lipgloss.AdaptiveColor{Light: "#8700AF", Dark: "#AF87FF"}
	ColorYellow  = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFFF5F"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#6C6C6C", Dark: "#8A8A8A"}
)

// Text styles for message rendering.
var (
	Error   = lipgloss.NewStyle().Foreground(ColorError)
	Warning = lipgloss.NewStyle().Foreground(ColorWarning)
	Success = lipgloss.NewStyle().Foreground(ColorSuccess)
	Info    = lipgloss.NewStyle().Foreground(ColorInfo)
	Muted   = lipgloss.NewStyle().Foreground(ColorMuted)
	Bold    = lipgloss.NewStyle().Bold(true)
)
