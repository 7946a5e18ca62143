package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/campus-inbox/internal/theme"
)

// Layout manages the terminal frame: a one-line header, the content area
// and a one-line status bar.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentHeight returns the height available for the main content area.
func (l Layout) ContentHeight() int {
	h := l.Height - l.HeaderHeight - l.StatusBarHeight
	if h < 0 {
		return 0
	}
	return h
}

// RenderHeader renders the title on the left and the already styled
// right-hand segments (sync status, user, bell) on the right.
func (l Layout) RenderHeader(title string, right ...string) string {
	titleRendered := theme.HeaderStyle.Render(title)

	var rightRendered string
	for _, seg := range right {
		if seg == "" {
			continue
		}
		rightRendered += theme.HeaderStyle.Render(seg)
	}

	gap := max(l.Width-lipgloss.Width(titleRendered)-lipgloss.Width(rightRendered), 0)
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(theme.HeaderStyle.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, titleRendered, filler, rightRendered)
}

// RenderStatusBar renders the bottom status bar with keyboard hints.
func (l Layout) RenderStatusBar(hints string) string {
	rendered := theme.StatusBarStyle.Render(hints)

	gap := max(l.Width-lipgloss.Width(rendered), 0)
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(theme.StatusBarStyle.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, filler)
}

// RenderWithFrame stacks header, content and status bar.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

// Overlay places box over the bottom-right corner of base, replacing
// the lines it covers.
func Overlay(base, box string, width int) string {
	if box == "" {
		return base
	}
	boxed := lipgloss.PlaceHorizontal(width, lipgloss.Right, box)
	return lipgloss.JoinVertical(lipgloss.Left, trimBottom(base, lipgloss.Height(box)), boxed)
}

func trimBottom(s string, n int) string {
	lines := strings.Split(s, "\n")
	if n >= len(lines) {
		return ""
	}
	return strings.Join(lines[:len(lines)-n], "\n")
}
