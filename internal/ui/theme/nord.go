package theme

import "github.com/charmbracelet/lipgloss"

// Nord theme - Arctic, north-bluish color palette
// https://www.nordtheme.com/
var Nord = Theme{
	Name: "nord",

	// Polar Night (dark backgrounds)
	Background: lipgloss.Color("#2E3440"),
	Foreground: lipgloss.Color("#ECEFF4"),
	Subtle:     lipgloss.Color("#4C566A"),
	Highlight:  lipgloss.Color("#3B4252"),
	Border:     lipgloss.Color("#4C566A"),

	// Frost (primary blues)
	Primary:   lipgloss.Color("#88C0D0"), // Nord8 - bright cyan
	Secondary: lipgloss.Color("#81A1C1"), // Nord9 - desaturated blue
	Info:      lipgloss.Color("#5E81AC"), // Nord10 - dark blue

	// Aurora (accent colors)
	Success: lipgloss.Color("#A3BE8C"), // Nord14 - green
	Warning: lipgloss.Color("#EBCB8B"), // Nord13 - yellow
	Error:   lipgloss.Color("#BF616A"), // Nord11 - red

	// Entry status colors
	StatusRunning:   lipgloss.Color("#88C0D0"), // Cyan - live
	StatusStopped:   lipgloss.Color("#ECEFF4"), // Default foreground
	StatusSubmitted: lipgloss.Color("#EBCB8B"), // Yellow - pending review
	StatusApproved:  lipgloss.Color("#A3BE8C"), // Green
	StatusRejected:  lipgloss.Color("#BF616A"), // Red
	StatusLocked:    lipgloss.Color("#4C566A"), // Gray - immutable

	// Money colors
	Billable:    lipgloss.Color("#A3BE8C"), // Green
	NonBillable: lipgloss.Color("#4C566A"), // Gray
}
