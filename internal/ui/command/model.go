package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/campus-inbox/internal/theme"
)

// Name identifies a palette command.
type Name string

const (
	Inbox     Name = "inbox"
	Dashboard Name = "dashboard"
	Broadcast Name = "broadcast"
	Event     Name = "event"
	Refresh   Name = "refresh"
	MarkAll   Name = "markall"
	Settings  Name = "settings"
	Logout    Name = "logout"
	Quit      Name = "quit"
)

var names = []string{
	string(Inbox), string(Dashboard), string(Broadcast), string(Event),
	string(Refresh), string(MarkAll), string(Settings), string(Logout), string(Quit),
}

// CommandMsg is emitted when the user executes a valid command.
type CommandMsg struct {
	Name Name

	// EventID is set for the event command.
	EventID int64
}

// Parse turns palette input into a command. Names may be abbreviated to
// any unambiguous prefix.
func Parse(input string) (CommandMsg, error) {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return CommandMsg{}, fmt.Errorf("empty command")
	}

	var matches []string
	for _, n := range names {
		if n == fields[0] {
			matches = []string{n}
			break
		}
		if strings.HasPrefix(n, fields[0]) {
			matches = append(matches, n)
		}
	}
	switch len(matches) {
	case 0:
		return CommandMsg{}, fmt.Errorf("unknown command %q", fields[0])
	case 1:
	default:
		return CommandMsg{}, fmt.Errorf("ambiguous command %q: %s", fields[0], strings.Join(matches, ", "))
	}

	msg := CommandMsg{Name: Name(matches[0])}
	if msg.Name == Event {
		if len(fields) < 2 {
			return CommandMsg{}, fmt.Errorf("usage: event <id>")
		}
		id, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil || id <= 0 {
			return CommandMsg{}, fmt.Errorf("invalid event id %q", fields[1])
		}
		msg.EventID = id
	}
	return msg, nil
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	err    string
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "inbox, dashboard, broadcast, event <id>, refresh, markall, settings, logout, quit"
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.SetSuggestions(names)
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEnter {
		raw := strings.TrimSpace(m.input.Value())
		if raw == "" {
			return m, nil
		}
		parsed, err := Parse(raw)
		if err != nil {
			m.err = err.Error()
			return m, nil
		}
		m.input.Reset()
		m.err = ""
		return m, func() tea.Msg { return parsed }
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	lines := []string{titleStyle.Render("Command Palette"), m.input.View()}
	if m.err != "" {
		lines = append(lines, theme.ErrorTextStyle.Render(m.err))
	}

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input and clears any error.
func (m *Model) Focus() tea.Cmd {
	m.err = ""
	m.input.Reset()
	return m.input.Focus()
}
