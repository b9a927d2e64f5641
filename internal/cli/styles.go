// Package cli renders balances and settlements for the terminal using lipgloss.
package cli

import "github.com/charmbracelet/lipgloss"

var (
	// AccentColor is the theme color used for titles.
	AccentColor = lipgloss.Color("#4ECDC4")
	// CreditColor marks members who are owed money.
	CreditColor = lipgloss.Color("#7BD88F")
	// DebtColor marks members who owe money.
	DebtColor = lipgloss.Color("#FF6B6B")
	// SubtleColor marks settled or zero amounts.
	SubtleColor = lipgloss.Color("#666666")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(AccentColor).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(lipgloss.Color("#333"))

	CreditStyle = lipgloss.NewStyle().Foreground(CreditColor)
	DebtStyle   = lipgloss.NewStyle().Foreground(DebtColor)
	SubtleStyle = lipgloss.NewStyle().Foreground(SubtleColor)
	BoldStyle   = lipgloss.NewStyle().Bold(true)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(0, 1)
)

const (
	ArrowIcon   = "→"
	SettledIcon = "✓"
)
