package ui

import (
	"carfinder/models"

	"github.com/charmbracelet/lipgloss"
)

var (
	PrimaryColor   = lipgloss.Color("#7C3AED")
	SecondaryColor = lipgloss.Color("#06B6D4")
	SuccessColor   = lipgloss.Color("#22C55E")
	WarningColor   = lipgloss.Color("#EAB308")
	ErrorColor     = lipgloss.Color("#EF4444")
	MutedColor     = lipgloss.Color("#6B7280")
	TextColor      = lipgloss.Color("#F9FAFB")

	Muted = lipgloss.NewStyle().Foreground(MutedColor)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor)

	Badge = lipgloss.NewStyle().
		Foreground(TextColor).
		Background(SecondaryColor).
		Padding(0, 1).
		MarginRight(1)

	TotalBadge = Badge.
			Background(PrimaryColor).
			Bold(true)

	FilterActive = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			Padding(0, 1)

	FilterInactive = lipgloss.NewStyle().
			Foreground(MutedColor).
			Padding(0, 1)

	CardBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(MutedColor).
			Padding(0, 1)

	CardSelected = CardBorder.
			BorderForeground(PrimaryColor)

	LeadCardBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SecondaryColor).
			Padding(0, 1)

	Price = lipgloss.NewStyle().
		Bold(true).
		Foreground(SuccessColor)

	Alert = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)

	Notification = lipgloss.NewStyle().
			Foreground(SuccessColor)
)

// StatusStyle colors a status badge.
func StatusStyle(s models.Status) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch s {
	case models.StatusSuccessful, models.StatusCaptured:
		return base.Foreground(SuccessColor)
	case models.StatusRejected:
		return base.Foreground(ErrorColor)
	case models.StatusPending, models.StatusContacted:
		return base.Foreground(WarningColor)
	case models.StatusNew:
		return base.Foreground(SecondaryColor)
	default:
		return base.Foreground(MutedColor)
	}
}
