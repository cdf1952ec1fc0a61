package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
)

// Palette shared by all command output.
var (
	colorPrimary    = lipgloss.Color("#7C3AED")
	colorMuted      = lipgloss.Color("#6C7086")
	colorSuccess    = lipgloss.Color("#A6E3A1")
	colorWarning    = lipgloss.Color("#F9E2AF")
	colorPlagiarism = lipgloss.Color("#FF4D4D")
	colorAI         = lipgloss.Color("#FFA500")
	colorSuspect    = lipgloss.Color("#FFFF00")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
)

// kindStyle returns the style for a finding kind, matching the report colours.
func kindStyle(kind domain.FindingKind) lipgloss.Style {
	switch kind {
	case domain.FindingPlagiarism:
		return lipgloss.NewStyle().Bold(true).Foreground(colorPlagiarism)
	case domain.FindingAI:
		return lipgloss.NewStyle().Bold(true).Foreground(colorAI)
	default:
		return lipgloss.NewStyle().Foreground(colorSuspect)
	}
}
