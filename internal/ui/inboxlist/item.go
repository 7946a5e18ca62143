package inboxlist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/campus-inbox/internal/model"
	"github.com/nhle/campus-inbox/internal/theme"
	"github.com/nhle/campus-inbox/internal/ui"
)

// DeliveryItem wraps a model.Delivery so it can be used in a bubbles/list.
type DeliveryItem struct {
	Delivery model.Delivery
}

// FilterValue returns the string used for fuzzy filtering.
func (i DeliveryItem) FilterValue() string { return i.Delivery.Title }

// Title returns the notification title.
func (i DeliveryItem) Title() string { return i.Delivery.Title }

// Description returns the origin and the message.
func (i DeliveryItem) Description() string {
	return OriginLabel(i.Delivery.Origin) + " | " + i.Delivery.Message
}

// OriginLabel is the short display name of an origin.
func OriginLabel(o model.Origin) string {
	if o == model.OriginEvent {
		return "Event"
	}
	return "Global"
}

// UrgencyMarker is the one-character urgency indicator shown before the
// title.
func UrgencyMarker(u model.Urgency) string {
	switch u.Normalize() {
	case model.UrgencyHigh:
		return "!"
	case model.UrgencyLow:
		return "✓"
	default:
		return "·"
	}
}

// ItemDelegate renders a delivery as a three-line card: title with flags,
// origin and age, then the first line of the message.
type ItemDelegate struct {
	now func() time.Time
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 3 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 1 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single delivery card.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	di, ok := item.(DeliveryItem)
	if !ok {
		return
	}
	fmt.Fprint(w, d.card(di.Delivery, index == m.Index(), m.Width()))
}

func (d ItemDelegate) card(n model.Delivery, selected bool, width int) string {
	now := time.Now()
	if d.now != nil {
		now = d.now()
	}

	urgency := string(n.Urgency.Normalize())
	marker := theme.UrgencyStyle(urgency).Render(UrgencyMarker(n.Urgency))

	titleStyle := lipgloss.NewStyle().Bold(!n.Read)
	title := marker + " " + titleStyle.Render(ui.Truncate(n.Title, max(width-20, 10)))
	if !n.Read {
		title += " " + theme.NewFlagStyle.Render("New")
	}
	if n.Muted {
		title += " " + theme.MutedFlagStyle.Render("Muted")
	}

	meta := theme.OriginLabelStyle(string(n.Origin)).Render(OriginLabel(n.Origin))
	if age := ui.RelativeTime(n.CreatedAt.Time, now); age != "" {
		meta += theme.DimmedStyle.Render("• " + age)
	}

	firstLine, _, _ := strings.Cut(n.Message, "\n")
	body := theme.DimmedStyle.Render(ui.Truncate(firstLine, max(width-4, 10)))

	block := lipgloss.JoinVertical(lipgloss.Left, title, "  "+meta, "  "+body)
	if selected {
		return theme.SelectedItemStyle.Render(block)
	}
	return lipgloss.NewStyle().PaddingLeft(2).Render(block)
}
