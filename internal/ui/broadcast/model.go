// Package broadcast is the admin view for sending a notification to
// every user.
package broadcast

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/campus-inbox/internal/compose"
	"github.com/nhle/campus-inbox/internal/keys"
	"github.com/nhle/campus-inbox/internal/theme"
	"github.com/nhle/campus-inbox/internal/ui/composer"
)

// CloseMsg signals the parent to leave the view.
type CloseMsg struct{}

// Model is the broadcast view.
type Model struct {
	keys     *keys.KeyMap
	composer composer.Model
	width    int
	height   int
}

// New creates a broadcast view sending through api.
func New(api compose.BroadcastAPI, sender *compose.Sender, k *keys.KeyMap, width, height int) Model {
	return Model{
		keys:     k,
		composer: composer.New(sender, compose.BroadcastTarget{API: api}, k, width-4),
		width:    width,
		height:   height,
	}
}

// Focus puts the cursor in the title field.
func (m *Model) Focus() tea.Cmd {
	return m.composer.Focus()
}

// Update handles messages for the broadcast view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.keys.Back) {
		m.composer.Blur()
		return m, func() tea.Msg { return CloseMsg{} }
	}

	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

// View renders the broadcast view.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		Render("Broadcast to all users")
	sub := theme.DimmedStyle.Render("Delivered to every user's inbox.")

	return lipgloss.NewStyle().
		Padding(0, 1).
		MaxHeight(m.height).
		Render(lipgloss.JoinVertical(lipgloss.Left,
			title, sub, "",
			theme.PanelStyle.Width(m.width-4).Render(m.composer.View()),
		))
}

// HelpBindings returns the bindings specific to this view.
func (m Model) HelpBindings() [][]key.Binding {
	return [][]key.Binding{append(m.composer.HelpBindings(), m.keys.Back)}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.composer.SetWidth(width - 4)
}
