// Package tui provides terminal output for dockfix.
//
// All colors use AdaptiveColor for light/dark terminal support. Status
// displays keep triple redundancy: icon + color + text. Call CheckNoColor()
// at the start of commands to respect the NO_COLOR environment variable;
// colors are also disabled when TERM=dumb.
package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/dockfix/dockfix/internal/constants"
)

//nolint:gochecknoglobals // Intentional package-level constants for TUI styling API
var (
	// ColorPrimary is blue, used for active states and informational text.
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}

	// ColorSuccess is green, used for successful builds.
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}

	// ColorWarning is yellow, used for partial success and retries.
	ColorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}

	// ColorError is red, used for failed runs.
	ColorError = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}

	// ColorMuted is gray, used for dim/secondary text.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}

	// StyleBold applies bold formatting to text.
	StyleBold = lipgloss.NewStyle().Bold(true)

	// StyleDim applies dim/faint formatting to text.
	StyleDim = lipgloss.NewStyle().Faint(true)
)

// OutputStyles holds common output styles.
type OutputStyles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Dim     lipgloss.Style
}

// NewOutputStyles creates common output styles using AdaptiveColor for
// light/dark terminal support.
func NewOutputStyles() *OutputStyles {
	return &OutputStyles{
		Success: lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true),
		Warning: lipgloss.NewStyle().
			Foreground(ColorWarning),
		Info: lipgloss.NewStyle().
			Foreground(ColorPrimary),
		Dim: lipgloss.NewStyle().
			Foreground(ColorMuted),
	}
}

// OutcomeColors returns the semantic color for each terminal run state.
func OutcomeColors() map[constants.RunState]lipgloss.AdaptiveColor {
	return map[constants.RunState]lipgloss.AdaptiveColor{
		constants.RunStateRunning:        ColorPrimary,
		constants.RunStateSuccess:        ColorSuccess,
		constants.RunStatePartialSuccess: ColorWarning,
		constants.RunStateFailed:         ColorError,
	}
}

// OutcomeIcon returns the icon for a run state.
func OutcomeIcon(state constants.RunState) string {
	icons := map[constants.RunState]string{
		constants.RunStateRunning:        "⟳",
		constants.RunStateSuccess:        "✓",
		constants.RunStatePartialSuccess: "⚠",
		constants.RunStateFailed:         "✗",
	}
	if icon, ok := icons[state]; ok {
		return icon
	}
	return "?"
}

// IterationIcon returns the icon for an iteration status.
func IterationIcon(status constants.IterationStatus) string {
	icons := map[constants.IterationStatus]string{
		constants.IterationSuccess:    "✓",
		constants.IterationFixedRetry: "⟳",
		constants.IterationUnmatched:  "✗",
		constants.IterationFixFailed:  "✗",
	}
	if icon, ok := icons[status]; ok {
		return icon
	}
	return "?"
}

// CheckNoColor respects the NO_COLOR environment variable.
// Call this at the start of commands that output styled text.
func CheckNoColor() {
	if !HasColorSupport() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// HasColorSupport returns true if the terminal supports colors.
// Returns false if NO_COLOR is set (any value including empty string) or
// TERM=dumb. This follows the NO_COLOR standard: https://no-color.org/
func HasColorSupport() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}

	if os.Getenv("TERM") == "dumb" {
		return false
	}

	return true
}
