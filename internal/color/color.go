package color

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Semantic colors with light/dark mode support
var (
	ColorPrimary = lipgloss.AdaptiveColor{
		Light: "#5A56E0",
		Dark:  "#7571F9",
	}
	ColorSuccess = lipgloss.AdaptiveColor{
		Light: "#059669",
		Dark:  "#10B981",
	}
	ColorError = lipgloss.AdaptiveColor{
		Light: "#DC2626",
		Dark:  "#EF4444",
	}
	ColorWarning = lipgloss.AdaptiveColor{
		Light: "#D97706",
		Dark:  "#F59E0B",
	}
	ColorInfo = lipgloss.AdaptiveColor{
		Light: "#2563EB",
		Dark:  "#3B82F6",
	}
	ColorTextMuted = lipgloss.AdaptiveColor{
		Light: "#9CA3AF",
		Dark:  "#6B7280",
	}
)

// Styles used by the console reporter.
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	PassedStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	FailedStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	SkippedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorInfo)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)
)

// Initialize fixes the background lipgloss assumes when picking the light or
// dark variant of every adaptive color.
func Initialize(isDarkMode bool) {
	lipgloss.SetHasDarkBackground(isDarkMode)
}

// Enabled reports whether colored output should be produced. NO_COLOR
// disables it regardless of the terminal.
func Enabled() bool {
	_, noColor := os.LookupEnv("NO_COLOR")
	return !noColor
}
