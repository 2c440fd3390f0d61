// Package themes holds the colour schemes of the dashboard.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Normal      lipgloss.Style
	Bold        lipgloss.Style
	Panel       lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style
	Positive    lipgloss.Style
	Negative    lipgloss.Style
	Projection  lipgloss.Style
	StatusError lipgloss.Style
	StatusInfo  lipgloss.Style
	StatusBar   lipgloss.Style
	Name        string
	Primary     lipgloss.Color
	Muted       lipgloss.Color
	Border      lipgloss.Color
}

func build(name string, primary, fg, muted, border, positive, negative, info lipgloss.Color) Theme {
	return Theme{
		Name:    name,
		Primary: primary,
		Muted:   muted,
		Border:  border,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary),
		Subtitle: lipgloss.NewStyle().
			Foreground(muted),
		Normal: lipgloss.NewStyle().
			Foreground(fg),
		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(fg),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),
		ActiveTab: lipgloss.NewStyle().
			Bold(true).
			Foreground(fg).
			Background(primary).
			Padding(0, 1),
		InactiveTab: lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 1),
		Positive: lipgloss.NewStyle().
			Foreground(positive),
		Negative: lipgloss.NewStyle().
			Foreground(negative),
		Projection: lipgloss.NewStyle().
			Foreground(info).
			Italic(true),
		StatusError: lipgloss.NewStyle().
			Foreground(negative).
			Bold(true),
		StatusInfo: lipgloss.NewStyle().
			Foreground(info).
			Bold(true),
		StatusBar: lipgloss.NewStyle().
			Foreground(fg).
			Background(border),
	}
}

// Default is the dark theme.
var Default = build("dark",
	lipgloss.Color("#2E9E6B"),
	lipgloss.Color("#fafafa"),
	lipgloss.Color("#737373"),
	lipgloss.Color("#404040"),
	lipgloss.Color("#10b981"),
	lipgloss.Color("#ef4444"),
	lipgloss.Color("#3b82f6"),
)

// Light suits terminals with a light background.
var Light = build("light",
	lipgloss.Color("#1F7A50"),
	lipgloss.Color("#1a1a1a"),
	lipgloss.Color("#6b7280"),
	lipgloss.Color("#d4d4d4"),
	lipgloss.Color("#047857"),
	lipgloss.Color("#b91c1c"),
	lipgloss.Color("#1d4ed8"),
)

// ByName returns the named theme, falling back to Default.
func ByName(name string) Theme {
	if name == Light.Name {
		return Light
	}
	return Default
}
