package help

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/campus-inbox/internal/keys"
	"github.com/nhle/campus-inbox/internal/theme"
)

// bindingGroups adapts fixed binding columns to help.KeyMap.
type bindingGroups [][]key.Binding

func (g bindingGroups) ShortHelp() []key.Binding {
	if len(g) == 0 {
		return nil
	}
	return g[0]
}

func (g bindingGroups) FullHelp() [][]key.Binding {
	return g
}

// Model is the help overlay. It lists the bindings of the view it was
// opened from followed by the global ones.
type Model struct {
	keys    *keys.KeyMap
	help    help.Model
	context string
	local   bindingGroups
	width   int
	height  int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	h.ShowAll = true
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// SetContext names the view the overlay was opened from and the bindings
// specific to it.
func (m *Model) SetContext(name string, bindings ...[]key.Binding) {
	m.context = name
	m.local = bindings
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the help overlay.
func (m Model) View() string {
	heading := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginTop(1)

	m.help.Width = m.width - 4

	sections := []string{heading.Render("Keyboard Shortcuts")}
	if len(m.local) > 0 {
		sections = append(sections,
			heading.Render(m.context),
			m.help.View(m.local),
		)
	}
	sections = append(sections,
		heading.Render("Everywhere"),
		m.help.View(m.keys),
	)

	return theme.PanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
