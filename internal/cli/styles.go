// Package cli renders ledger output for the terminal and handles prompts.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

const (
	ledgerGreen = lipgloss.Color("#2E9E6B")
	inflowTeal  = lipgloss.Color("#4ECDC4")
	alertAmber  = lipgloss.Color("#FFE66D")
	outflowRed  = lipgloss.Color("#FF6B6B")
	noteTeal    = lipgloss.Color("#95E1D3")
	mutedGray   = lipgloss.Color("#666666")
)

// Shared styles. Amounts use PositiveStyle and NegativeStyle by sign.
var (
	BoldStyle     = lipgloss.NewStyle().Bold(true)
	SubtleStyle   = lipgloss.NewStyle().Foreground(mutedGray)
	ErrorStyle    = lipgloss.NewStyle().Foreground(outflowRed)
	PositiveStyle = lipgloss.NewStyle().Foreground(inflowTeal)
	NegativeStyle = lipgloss.NewStyle().Foreground(outflowRed)

	TableHeaderStyle = BoldStyle.Foreground(ledgerGreen).Padding(0, 1)
	TableCellStyle   = lipgloss.NewStyle().Padding(0, 1)

	titleStyle   = BoldStyle.Foreground(ledgerGreen).MarginBottom(1)
	successStyle = lipgloss.NewStyle().Foreground(inflowTeal)
	warningStyle = lipgloss.NewStyle().Foreground(alertAmber)
	infoStyle    = lipgloss.NewStyle().Foreground(noteTeal)
	promptStyle  = BoldStyle.Foreground(ledgerGreen)
)

// Markers used in messages and KPI deltas.
const (
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	UpIcon      = "▲"
	DownIcon    = "▼"
)

func FormatSuccess(message string) string { return successStyle.Render("✓ " + message) }

func FormatError(message string) string { return ErrorStyle.Render("✗ " + message) }

func FormatWarning(message string) string { return warningStyle.Render(WarningIcon + " " + message) }

func FormatInfo(message string) string { return infoStyle.Render(InfoIcon + " " + message) }

// FormatTitle renders a section heading followed by a blank line.
func FormatTitle(title string) string { return titleStyle.Render("📒 " + title) }

// FormatPrompt renders an interactive question ending in an arrow.
func FormatPrompt(prompt string) string { return promptStyle.Render(prompt + " → ") }
