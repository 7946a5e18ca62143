package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorIndigo  = lipgloss.AdaptiveColor{Dark: "#8C9EFF", Light: "#4C51BF"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// PanelStyle wraps a bordered content area such as the discussion view.
var PanelStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// DimmedStyle renders secondary text such as timestamps.
var DimmedStyle = lipgloss.NewStyle().Foreground(ColorGray)

// ErrorTextStyle renders inline validation and failure messages.
var ErrorTextStyle = lipgloss.NewStyle().Foreground(ColorRed)

// SuccessTextStyle renders inline success messages.
var SuccessTextStyle = lipgloss.NewStyle().Foreground(ColorGreen)

// BadgeStyle is the unread counter next to the bell.
var BadgeStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FFFFFF")).
	Background(ColorRed).
	Padding(0, 1)

// NewFlagStyle marks unread deliveries.
var NewFlagStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorIndigo)

// MutedFlagStyle marks muted deliveries.
var MutedFlagStyle = lipgloss.NewStyle().Italic(true).Foreground(ColorGray)

// ButtonStyle and DisabledButtonStyle render form submit buttons.
var (
	ButtonStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(ColorBlue).
			Padding(0, 2)
	DisabledButtonStyle = lipgloss.NewStyle().
				Foreground(ColorGray).
				Background(ColorSubtle).
				Padding(0, 2)
)

// UrgencyStyle returns a color-coded style for a notification urgency.
func UrgencyStyle(urgency string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch urgency {
	case "HIGH":
		return base.Foreground(ColorRed)
	case "LOW":
		return base.Foreground(ColorGray)
	default:
		return base.Foreground(ColorYellow)
	}
}

// OriginLabelStyle returns a color-coded style for a notification origin.
func OriginLabelStyle(origin string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch origin {
	case "EVENT":
		return base.Foreground(ColorMagenta)
	case "GLOBAL":
		return base.Foreground(ColorBlue)
	default:
		return base.Foreground(ColorGray)
	}
}

// ToastStyle returns the box style for a toast severity.
func ToastStyle(severity string) lipgloss.Style {
	base := lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder())

	switch severity {
	case "success":
		return base.BorderForeground(ColorGreen).Foreground(ColorGreen)
	case "warning":
		return base.BorderForeground(ColorYellow).Foreground(ColorYellow)
	case "error":
		return base.BorderForeground(ColorRed).Foreground(ColorRed)
	default:
		return base.BorderForeground(ColorBlue).Foreground(ColorWhite)
	}
}

// Apply selects a named color scheme. "default" keeps adaptive colors;
// "mono" renders without color for terminals or users that prefer it.
func Apply(name string) error {
	switch name {
	case "", "default":
		lipgloss.SetColorProfile(termenv.EnvColorProfile())
		return nil
	case "mono":
		lipgloss.SetColorProfile(termenv.Ascii)
		return nil
	default:
		return fmt.Errorf("unknown theme %q", name)
	}
}
