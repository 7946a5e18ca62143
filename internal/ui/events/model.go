// Package events is the notification panel of a single event: its
// notification list, a composer for organisers and discussion launch.
package events

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/nhle/campus-inbox/internal/compose"
	"github.com/nhle/campus-inbox/internal/keys"
	"github.com/nhle/campus-inbox/internal/model"
	"github.com/nhle/campus-inbox/internal/theme"
	"github.com/nhle/campus-inbox/internal/toast"
	"github.com/nhle/campus-inbox/internal/ui"
	"github.com/nhle/campus-inbox/internal/ui/composer"
)

// EmptyText is shown when an event has no notifications.
const EmptyText = "No notifications for this event."

// API is the backend surface of the panel.
type API interface {
	compose.EventAPI
	FetchEventNotifications(ctx context.Context, eventID int64) ([]model.Delivery, error)
}

// LoadedMsg carries an event's notification list.
type LoadedMsg struct {
	EventID int64
	Items   []model.Delivery
	Err     error
}

// CloseMsg signals the parent to leave the panel.
type CloseMsg struct{}

// Model is the event notification panel.
type Model struct {
	api       API
	keys      *keys.KeyMap
	toasts    toast.Publisher
	logger    *zap.Logger
	composer  composer.Model
	eventID   int64
	items     []model.Delivery
	cursor    int
	canPost   bool
	composing bool
	loading   bool
	width     int
	height    int
}

// New creates an event panel. Open selects the event.
func New(api API, sender *compose.Sender, k *keys.KeyMap, toasts toast.Publisher, logger *zap.Logger, width, height int) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Model{
		api:      api,
		keys:     k,
		toasts:   toasts,
		logger:   logger,
		composer: composer.New(sender, nil, k, width),
		width:    width,
		height:   height,
	}
}

// Open shows eventID and loads its notifications. canPost enables the
// composer.
func (m *Model) Open(eventID int64, canPost bool) tea.Cmd {
	m.eventID = eventID
	m.canPost = canPost
	m.items = nil
	m.cursor = 0
	m.composing = false
	m.loading = true
	m.composer.SetTarget(m.target())
	m.composer.Blur()
	return m.Load()
}

// EventID returns the event being shown.
func (m Model) EventID() int64 {
	return m.eventID
}

// Composing reports whether the composer has focus.
func (m Model) Composing() bool {
	return m.composing
}

func (m Model) target() compose.EventTarget {
	return compose.EventTarget{API: m.api, EventID: m.eventID}
}

// Load fetches the event's notifications. Failures are logged and show
// as an empty list.
func (m Model) Load() tea.Cmd {
	api, id, logger := m.api, m.eventID, m.logger
	return func() tea.Msg {
		items, err := api.FetchEventNotifications(context.Background(), id)
		if err != nil {
			logger.Warn("loading event notifications", zap.Int64("event_id", id), zap.Error(err))
		}
		return LoadedMsg{EventID: id, Items: items, Err: err}
	}
}

// Update handles messages for the panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.EventID != m.eventID {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.items = nil
		} else {
			m.items = msg.Items
		}
		m.cursor = min(m.cursor, max(len(m.items)-1, 0))
		return m, nil

	case composer.SubmittedMsg:
		var cmd tea.Cmd
		m.composer, cmd = m.composer.Update(msg)
		if msg.Outcome.Sent && msg.Target == m.target().String() {
			return m, tea.Batch(cmd, m.Load())
		}
		return m, cmd

	case tea.KeyMsg:
		if m.composing {
			return m.handleComposerKeys(msg)
		}
		return m.handleListKeys(msg)
	}

	if m.composing {
		var cmd tea.Cmd
		m.composer, cmd = m.composer.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleComposerKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		m.composing = false
		m.composer.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

func (m Model) handleListKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Compose):
		if !m.canPost {
			return m, nil
		}
		m.composing = true
		cmd := m.composer.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Refresh):
		return m, m.Load()

	case key.Matches(msg, m.keys.Select), key.Matches(msg, m.keys.Discuss):
		if len(m.items) == 0 {
			return m, nil
		}
		d := m.items[m.cursor]
		if !d.ThreadEnabled {
			toast.Error(m.toasts, ui.DisabledDiscussionText)
			return m, nil
		}
		return m, func() tea.Msg { return ui.OpenDiscussionMsg{Delivery: d} }
	}
	return m, nil
}

// View renders the panel.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		Render(fmt.Sprintf("Event Notifications · event #%d", m.eventID))

	sections := []string{title, ""}

	if m.canPost {
		box := theme.PanelStyle.Width(m.width - 6)
		if !m.composing {
			box = box.BorderForeground(theme.ColorSubtle)
		}
		hint := theme.HelpStyle.Render("c compose · esc leave composer")
		sections = append(sections, box.Render(lipgloss.JoinVertical(lipgloss.Left, hint, m.composer.View())), "")
	}

	sections = append(sections, m.renderList())

	return lipgloss.NewStyle().
		Padding(0, 1).
		MaxHeight(m.height).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) renderList() string {
	placeholder := lipgloss.NewStyle().Foreground(theme.ColorGray)
	switch {
	case m.loading:
		return placeholder.Render("Loading...")
	case len(m.items) == 0:
		return placeholder.Render(EmptyText)
	}

	var rows []string
	for i, d := range m.items {
		head := lipgloss.NewStyle().Bold(true).Render(d.Title)
		if !d.Read {
			head += " " + theme.NewFlagStyle.Render("New")
		}
		if d.ThreadEnabled {
			head += " " + theme.DimmedStyle.Render("[discuss]")
		}
		lines := []string{head, d.Message}
		if ts := ui.FormatTime(d.CreatedAt.Time); ts != "" {
			lines = append(lines, theme.DimmedStyle.Render(ts))
		}
		block := strings.Join(lines, "\n")

		if i == m.cursor && !m.composing {
			rows = append(rows, theme.SelectedItemStyle.Render(block))
		} else {
			rows = append(rows, lipgloss.NewStyle().PaddingLeft(2).Render(block))
		}
	}
	return strings.Join(rows, "\n\n")
}

// HelpBindings returns the bindings specific to this view.
func (m Model) HelpBindings() [][]key.Binding {
	groups := [][]key.Binding{{m.keys.Up, m.keys.Down, m.keys.Discuss, m.keys.Refresh, m.keys.Back}}
	if m.canPost {
		groups = append(groups, append([]key.Binding{m.keys.Compose}, m.composer.HelpBindings()...))
	}
	return groups
}

// SetSize updates the panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.composer.SetWidth(width - 6)
}
