package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts.
type KeyMap struct {
	// Period
	PrevPeriod key.Binding
	NextPeriod key.Binding

	// Filters
	NextAccount key.Binding
	NextProject key.Binding
	ClearFilter key.Binding

	// Views
	NextTab key.Binding
	PrevTab key.Binding

	// Application
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		PrevPeriod: key.NewBinding(
			key.WithKeys("[", "h", "left"),
			key.WithHelp("←/h/[", "previous period"),
		),
		NextPeriod: key.NewBinding(
			key.WithKeys("]", "l", "right"),
			key.WithHelp("→/l/]", "next period"),
		),
		NextAccount: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "cycle account"),
		),
		NextProject: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "cycle project"),
		),
		ClearFilter: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear filters"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "next view"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("Shift+Tab", "previous view"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "ctrl+r"),
			key.WithHelp("r", "reload ledger"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q/Esc", "quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.PrevPeriod, k.NextPeriod, k.Help, k.Quit}
}

// FullHelp returns all key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PrevPeriod, k.NextPeriod},
		{k.NextAccount, k.NextProject, k.ClearFilter},
		{k.NextTab, k.PrevTab},
		{k.Refresh, k.Help, k.Quit},
	}
}
