// Package inboxlist is the notification inbox view: a card list with
// origin filtering, search and per-delivery actions.
package inboxlist

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/campus-inbox/internal/inbox"
	"github.com/nhle/campus-inbox/internal/keys"
	"github.com/nhle/campus-inbox/internal/model"
	"github.com/nhle/campus-inbox/internal/theme"
	"github.com/nhle/campus-inbox/internal/toast"
	"github.com/nhle/campus-inbox/internal/ui"
)

// Deliveries is the inbox state the view renders and acts on.
type Deliveries interface {
	Items() []model.Delivery
	Loaded() bool
	UnreadCount() int
	MarkRead(ctx context.Context, d model.Delivery) error
	ToggleMute(ctx context.Context, d model.Delivery) error
	MarkAllRead(ctx context.Context) inbox.BulkResult
}

// RefreshRequestMsg asks the application to reload the inbox now.
type RefreshRequestMsg struct{}

// DeliveryChangedMsg is sent after a read or mute request finished,
// successfully or not.
type DeliveryChangedMsg struct {
	DeliveryID int64
	Err        error
}

// MarkAllDoneMsg carries the result of a mark-all-read request.
type MarkAllDoneMsg struct {
	Result inbox.BulkResult
}

// Model is the inbox list view component.
type Model struct {
	list        list.Model
	store       Deliveries
	keys        *keys.KeyMap
	toasts      toast.Publisher
	filter      inbox.Filter
	searchMode  bool
	searchInput textinput.Model
	loading     bool
	markingAll  bool
	unread      int
	width       int
	height      int
}

// New creates a new inbox list model.
func New(s Deliveries, k *keys.KeyMap, toasts toast.Publisher, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, max(height-2, 0))
	l.Title = "Notifications"
	l.SetShowStatusBar(true)
	l.SetStatusBarItemName("notification", "notifications")
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search title or message..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		store:       s,
		keys:        k,
		toasts:      toasts,
		filter:      inbox.Filter{Origin: inbox.FilterAll},
		searchInput: si,
		loading:     true,
		width:       width,
		height:      height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Reload re-reads the inbox and re-applies the current filter.
func (m *Model) Reload() tea.Cmd {
	all := m.store.Items()
	m.unread = m.store.UnreadCount()
	m.loading = !m.store.Loaded() && len(all) == 0

	visible := m.filter.Apply(all)
	items := make([]list.Item, len(visible))
	for i, d := range visible {
		items[i] = DeliveryItem{Delivery: d}
	}
	return m.list.SetItems(items)
}

// Filter returns the active filter.
func (m Model) Filter() inbox.Filter {
	return m.filter
}

// Searching reports whether the search input has focus.
func (m Model) Searching() bool {
	return m.searchMode
}

// Selected returns the highlighted delivery.
func (m Model) Selected() (model.Delivery, bool) {
	item, ok := m.list.SelectedItem().(DeliveryItem)
	if !ok {
		return model.Delivery{}, false
	}
	return item.Delivery, true
}

// Update handles messages for the inbox view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DeliveryChangedMsg:
		reload := m.Reload()
		return m, reload

	case MarkAllDoneMsg:
		m.markingAll = false
		m.reportMarkAll(msg.Result)
		reload := m.Reload()
		return m, reload

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys filters as the user types; enter keeps the query and
// esc drops it.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searchMode = false
		m.searchInput.Blur()
		return m, nil

	case tea.KeyEsc:
		m.searchMode = false
		m.searchInput.Blur()
		m.searchInput.Reset()
		m.filter.Query = ""
		reload := m.Reload()
		return m, reload
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.filter.Query = m.searchInput.Value()
	reload := m.Reload()
	return m, tea.Batch(cmd, reload)
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select), key.Matches(msg, m.keys.Discuss):
		d, ok := m.Selected()
		if !ok {
			return m, nil
		}
		if !d.ThreadEnabled {
			toast.Error(m.toasts, ui.DisabledDiscussionText)
			return m, nil
		}
		return m, func() tea.Msg { return ui.OpenDiscussionMsg{Delivery: d} }

	case key.Matches(msg, m.keys.MarkRead):
		d, ok := m.Selected()
		if !ok || d.Read {
			return m, nil
		}
		return m, m.markRead(d)

	case key.Matches(msg, m.keys.ToggleMute):
		d, ok := m.Selected()
		if !ok {
			return m, nil
		}
		return m, m.toggleMute(d)

	case key.Matches(msg, m.keys.MarkAllRead):
		cmd := m.MarkAllRead()
		return m, cmd

	case key.Matches(msg, m.keys.Refresh):
		if m.loading {
			return m, nil
		}
		return m, func() tea.Msg { return RefreshRequestMsg{} }

	case key.Matches(msg, m.keys.CycleFilter):
		m.filter.Origin = m.filter.Origin.Next()
		reload := m.Reload()
		return m, reload

	case key.Matches(msg, m.keys.ClearFilters):
		m.filter = inbox.Filter{Origin: inbox.FilterAll}
		m.searchInput.Reset()
		reload := m.Reload()
		return m, reload

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.SetValue(m.filter.Query)
		cmd := m.searchInput.Focus()
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) markRead(d model.Delivery) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		err := s.MarkRead(context.Background(), d)
		return DeliveryChangedMsg{DeliveryID: d.DeliveryID, Err: err}
	}
}

func (m Model) toggleMute(d model.Delivery) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		err := s.ToggleMute(context.Background(), d)
		return DeliveryChangedMsg{DeliveryID: d.DeliveryID, Err: err}
	}
}

// MarkAllRead marks every unread delivery as read. It is a no-op while a
// previous run is in flight, while loading and when nothing is unread.
func (m *Model) MarkAllRead() tea.Cmd {
	if m.markingAll || m.loading || m.unread == 0 {
		return nil
	}
	m.markingAll = true
	return m.markAllRead()
}

func (m Model) markAllRead() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		return MarkAllDoneMsg{Result: s.MarkAllRead(context.Background())}
	}
}

// reportMarkAll surfaces a mark-all that did not fully succeed.
func (m Model) reportMarkAll(r inbox.BulkResult) {
	switch {
	case r.Err == nil:
		return
	case r.Partial():
		toast.Warning(m.toasts, fmt.Sprintf(
			"Marked %d of %d as read; %d failed", len(r.Succeeded), r.Attempted, len(r.Failed)))
	default:
		toast.Error(m.toasts, "Failed to mark notifications as read")
	}
}

// View renders the inbox view.
func (m Model) View() string {
	summary := m.renderSummary()

	var body string
	switch {
	case m.loading:
		body = m.centered("Loading...")
	case len(m.list.Items()) == 0:
		body = m.centered("No notifications")
	default:
		body = m.list.View()
	}

	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, body)
	}
	return lipgloss.JoinVertical(lipgloss.Left, summary, body)
}

func (m Model) renderSummary() string {
	parts := fmt.Sprintf("Unread: %d  Filter: %s", m.unread, filterLabel(m.filter.Origin))
	if m.filter.Query != "" {
		parts += fmt.Sprintf("  Search: %q", m.filter.Query)
	}
	if m.markingAll {
		parts += "  marking all read..."
	}
	return theme.DimmedStyle.Padding(0, 1).Render(parts)
}

func (m Model) centered(text string) string {
	return lipgloss.NewStyle().
		Width(m.width).
		Height(max(m.height-2, 1)).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray).
		Render(text)
}

func filterLabel(f inbox.OriginFilter) string {
	switch f {
	case inbox.FilterGlobal:
		return "Global"
	case inbox.FilterEvent:
		return "Event"
	default:
		return "All"
	}
}

// HelpBindings returns the bindings specific to this view.
func (m Model) HelpBindings() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Select, m.keys.Discuss, m.keys.MarkRead, m.keys.ToggleMute, m.keys.MarkAllRead},
		{m.keys.Search, m.keys.CycleFilter, m.keys.ClearFilters, m.keys.Refresh},
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, max(height-2, 0))
	m.searchInput.Width = width - 4
}

// setClock fixes the time used for relative ages.
func (m *Model) setClock(now func() time.Time) {
	m.list.SetDelegate(ItemDelegate{now: now})
}
