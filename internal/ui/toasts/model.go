// Package toasts renders the stack of active toasts in the corner of the
// screen and expires each one after its own duration.
package toasts

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/campus-inbox/internal/theme"
	"github.com/nhle/campus-inbox/internal/toast"
	"github.com/nhle/campus-inbox/internal/ui"
)

// maxVisible bounds the number of toasts on screen at once.
const maxVisible = 4

// ReceivedMsg carries a toast read from the bus.
type ReceivedMsg struct {
	Toast toast.Toast
}

// expiredMsg fires when a toast's display time is up.
type expiredMsg struct {
	id string
}

// Listen returns a cmd that waits for the next toast on ch. It returns
// nil once ch is closed.
func Listen(ch <-chan toast.Toast) tea.Cmd {
	return func() tea.Msg {
		t, ok := <-ch
		if !ok {
			return nil
		}
		return ReceivedMsg{Toast: t}
	}
}

// Model is the toast stack.
type Model struct {
	queue *toast.Queue
	width int
}

// New creates an empty stack.
func New(width int) Model {
	return Model{
		queue: toast.NewQueue(maxVisible),
		width: width,
	}
}

// Push shows t and returns the timer that removes it.
func (m Model) Push(t toast.Toast) tea.Cmd {
	m.queue.Add(t)
	id := t.ID
	return tea.Tick(t.Duration, func(time.Time) tea.Msg {
		return expiredMsg{id: id}
	})
}

// Update handles expiry timers.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(expiredMsg); ok {
		m.queue.Dismiss(msg.id)
	}
	return m, nil
}

// DismissAll clears the stack. Pending timers become no-ops.
func (m Model) DismissAll() {
	for _, t := range m.queue.Items() {
		m.queue.Dismiss(t.ID)
	}
}

// Items returns the visible toasts, newest first.
func (m Model) Items() []toast.Toast {
	return m.queue.Items()
}

// View renders the stack, or "" when empty.
func (m Model) View() string {
	items := m.queue.Items()
	if len(items) == 0 {
		return ""
	}

	maxWidth := min(max(m.width/3, 24), 48)
	boxes := make([]string, 0, len(items))
	for _, t := range items {
		text := ui.Truncate(t.Text, maxWidth-4)
		boxes = append(boxes, theme.ToastStyle(string(t.Severity)).Render(text))
	}
	return lipgloss.JoinVertical(lipgloss.Right, boxes...)
}

// SetWidth updates the screen width the stack is laid out against.
func (m *Model) SetWidth(width int) {
	m.width = width
}
