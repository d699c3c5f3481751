package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette. Never use inline lipgloss.Color literals.
var (
	// ColorCyan is used for identifiable nouns: routes, module paths, manifest keys.
	ColorCyan = lipgloss.Color("14")

	// ColorGreen is used for additions.
	ColorGreen = lipgloss.Color("82")

	// ColorYellow is used for modifications.
	ColorYellow = lipgloss.Color("220")

	// ColorRed is used for removals.
	ColorRed = lipgloss.Color("196")

	// ColorGreenCheck is used for the completion checkmark.
	ColorGreenCheck = lipgloss.Color("10")

	// ColorDimGray is used for borders and other structural chrome.
	ColorDimGray = lipgloss.Color("240")

	// ColorBlue is used for table headers.
	ColorBlue = lipgloss.Color("12")
)

// Semantic styles.
var (
	// StyleNoun styles identifiable nouns.
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleDim styles structural chrome (scope prefixes, separators).
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles completion and summary lines.
	StyleSummary = lipgloss.NewStyle().Bold(true)
)

// Styles groups the styles used by renderers that accept a style set.
type Styles struct {
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Noun    lipgloss.Style
}

// GetStyles returns the colored style set.
func GetStyles() *Styles {
	return &Styles{
		Success: lipgloss.NewStyle().Foreground(ColorGreen),
		Warning: lipgloss.NewStyle().Foreground(ColorYellow),
		Error:   lipgloss.NewStyle().Foreground(ColorRed),
		Bold:    lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(ColorDimGray),
		Noun:    StyleNoun,
	}
}

// NoColorStyles returns a style set that renders text unchanged.
func NoColorStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Success: plain,
		Warning: plain,
		Error:   plain,
		Bold:    plain,
		Muted:   plain,
		Noun:    plain,
	}
}

// minRouteColumnWidth keeps route summaries aligned.
const minRouteColumnWidth = 32

// FormatRouteLine renders a route with a right-aligned chunk count.
//
// Format: r:<route>  <n> chunks
func FormatRouteLine(route string, chunks int) string {
	padding := minRouteColumnWidth - len(route)
	if padding < 2 {
		padding = 2
	}

	noun := "chunks"
	if chunks == 1 {
		noun = "chunk"
	}

	return StyleDim.Render("r:") + StyleNoun.Render(route) + strings.Repeat(" ", padding) +
		StyleDim.Render(fmt.Sprintf("%d %s", chunks, noun))
}

// FormatCheckmark renders a green checkmark with a message for stdout output.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(ColorGreenCheck).Render("✔")
	return check + " " + msg
}
