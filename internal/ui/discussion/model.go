// Package discussion is the chat view of a notification's thread.
package discussion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/campus-inbox/internal/keys"
	"github.com/nhle/campus-inbox/internal/model"
	"github.com/nhle/campus-inbox/internal/theme"
	"github.com/nhle/campus-inbox/internal/thread"
	"github.com/nhle/campus-inbox/internal/toast"
	"github.com/nhle/campus-inbox/internal/ui"
)

// EmptyText is shown when a thread has no messages.
const EmptyText = "No messages yet. Start the conversation."

// Conversation is the thread state the view renders.
type Conversation interface {
	Open(ctx context.Context, d model.Delivery) error
	SendReply(ctx context.Context, content string) (bool, error)
	Refresh(ctx context.Context) error
	Close()
	State() thread.State
	Delivery() model.Delivery
	Thread() model.Thread
	Messages() []model.ThreadMessage
	Err() error
}

// OpenedMsg is sent when opening a discussion finished.
type OpenedMsg struct {
	Err error
}

// ReplySentMsg is sent when a reply was posted and the list reloaded.
type ReplySentMsg struct {
	Sent bool
	Err  error
}

// RefreshedMsg is sent when the message list was reloaded.
type RefreshedMsg struct {
	Err error
}

// CloseMsg signals the parent to leave the discussion.
type CloseMsg struct{}

// Model is the discussion view.
type Model struct {
	conv     Conversation
	keys     *keys.KeyMap
	toasts   toast.Publisher
	input    textinput.Model
	viewport viewport.Model
	sending  bool
	width    int
	height   int
}

// New creates a new discussion view.
func New(conv Conversation, k *keys.KeyMap, toasts toast.Publisher, width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = "> "
	ti.CharLimit = 2000
	ti.Width = width - 6

	vp := viewport.New(width-4, viewportHeight(height))

	return Model{
		conv:     conv,
		keys:     k,
		toasts:   toasts,
		input:    ti,
		viewport: vp,
		width:    width,
		height:   height,
	}
}

func viewportHeight(height int) int {
	return max(height-8, 4)
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Open starts loading the discussion of d and focuses the reply input.
func (m *Model) Open(d model.Delivery) tea.Cmd {
	m.input.Reset()
	m.sending = false
	conv := m.conv
	open := func() tea.Msg {
		return OpenedMsg{Err: conv.Open(context.Background(), d)}
	}
	m.refreshViewport()
	return tea.Batch(open, m.input.Focus())
}

// Refresh reloads the open thread.
func (m Model) Refresh() tea.Cmd {
	conv := m.conv
	return func() tea.Msg {
		return RefreshedMsg{Err: conv.Refresh(context.Background())}
	}
}

// Update handles messages for the discussion view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case OpenedMsg:
		switch {
		case msg.Err == nil, errors.Is(msg.Err, thread.ErrSuperseded):
		case errors.Is(msg.Err, thread.ErrDiscussionDisabled):
			toast.Error(m.toasts, ui.DisabledDiscussionText)
		default:
			toast.Error(m.toasts, "Failed to open chat")
		}
		m.refreshViewport()
		return m, nil

	case ReplySentMsg:
		m.sending = false
		if msg.Sent {
			m.input.Reset()
		} else if msg.Err != nil && !errors.Is(msg.Err, thread.ErrEmptyReply) {
			toast.Error(m.toasts, "Failed to send message")
		}
		m.refreshViewport()
		return m, nil

	case RefreshedMsg:
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.conv.Close()
		m.input.Blur()
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Reply):
		if m.sending {
			return m, nil
		}
		content := m.input.Value()
		if strings.TrimSpace(content) == "" {
			return m, nil
		}
		m.sending = true
		conv := m.conv
		return m, func() tea.Msg {
			sent, err := conv.SendReply(context.Background(), content)
			return ReplySentMsg{Sent: sent, Err: err}
		}
	}

	switch msg.Type {
	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.sending {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// refreshViewport re-renders the conversation and scrolls to the newest
// message.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}

func (m Model) renderConversation() string {
	placeholder := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Italic(true)

	switch m.conv.State() {
	case thread.StateIdle:
		return ""
	case thread.StateCreatingThread, thread.StateLoadingMessages:
		return placeholder.Render("Loading messages...")
	}

	msgs := m.conv.Messages()
	if len(msgs) == 0 {
		return placeholder.Render(EmptyText)
	}

	authorStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue)
	contentStyle := lipgloss.NewStyle().
		Foreground(theme.ColorWhite).
		Width(max(m.width-8, 10))

	var sections []string
	for _, msg := range msgs {
		header := authorStyle.Render(msg.Author)
		if ts := ui.FormatTime(msg.CreatedAt.Time); ts != "" {
			header += theme.DimmedStyle.Render(" • " + ts)
		}
		sections = append(sections, header, contentStyle.Render(msg.Content), "")
	}
	return strings.Join(sections, "\n")
}

// View renders the discussion view.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite)

	title := titleStyle.Render("Discussion")
	if d := m.conv.Delivery(); d.Title != "" {
		title += theme.DimmedStyle.Render(" · " + ui.Truncate(d.Title, max(m.width-30, 10)))
	}
	if th := m.conv.Thread(); th.ID != 0 {
		title += theme.DimmedStyle.Render(fmt.Sprintf("  Thread #%d", th.ID))
	}

	status := theme.HelpStyle.Render("Press Enter to send.")
	switch {
	case m.sending:
		status = theme.HelpStyle.Render("Sending...")
	case m.conv.State() == thread.StateFailed:
		status = theme.ErrorTextStyle.Render("Could not load messages. Use :refresh to retry.")
	}

	separator := lipgloss.NewStyle().
		Foreground(theme.ColorSubtle).
		Render(strings.Repeat("─", max(min(m.width-6, 80), 0)))

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		"",
		m.viewport.View(),
		separator,
		m.input.View(),
		status,
	)

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(content)
}

// HelpBindings returns the bindings specific to this view.
func (m Model) HelpBindings() [][]key.Binding {
	return [][]key.Binding{{m.keys.Reply, m.keys.Back}}
}

// SetSize updates the discussion view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
	m.viewport.Width = width - 4
	m.viewport.Height = viewportHeight(height)
	m.refreshViewport()
}
