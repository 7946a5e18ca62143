// Package dashboard shows the user's event registrations and the older
// per-user notification list.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/nhle/campus-inbox/internal/keys"
	"github.com/nhle/campus-inbox/internal/model"
	"github.com/nhle/campus-inbox/internal/registration"
	"github.com/nhle/campus-inbox/internal/theme"
	"github.com/nhle/campus-inbox/internal/ui"
)

// API is the backend surface of the dashboard.
type API interface {
	FetchLegacyRegistrations(ctx context.Context) ([]model.Registration, error)
	FetchEventRegistrations(ctx context.Context) ([]model.Registration, error)
	FetchLegacyInbox(ctx context.Context) ([]model.LegacyNotification, error)
}

// LoadedMsg carries everything the dashboard shows.
type LoadedMsg struct {
	Registrations []model.Registration
	Notifications []model.LegacyNotification
}

// Model is the dashboard view.
type Model struct {
	api      API
	keys     *keys.KeyMap
	logger   *zap.Logger
	now      func() time.Time
	viewport viewport.Model
	regs     []model.Registration
	legacy   []model.LegacyNotification
	cursor   int
	loading  bool
	width    int
	height   int
}

// New creates a dashboard view.
func New(api API, k *keys.KeyMap, logger *zap.Logger, width, height int) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Model{
		api:      api,
		keys:     k,
		logger:   logger,
		now:      time.Now,
		viewport: viewport.New(width, max(height, 1)),
		loading:  true,
		width:    width,
		height:   height,
	}
}

// Load fetches both registration listings and the legacy notifications
// concurrently. A failed listing counts as empty.
func (m *Model) Load() tea.Cmd {
	m.loading = true
	m.refresh()

	api, logger := m.api, m.logger
	return func() tea.Msg {
		ctx := context.Background()

		var (
			wg              sync.WaitGroup
			legacy, current []model.Registration
			notifications   []model.LegacyNotification
		)
		wg.Add(3)
		go func() {
			defer wg.Done()
			var err error
			if legacy, err = api.FetchLegacyRegistrations(ctx); err != nil {
				logger.Warn("loading legacy registrations", zap.Error(err))
			}
		}()
		go func() {
			defer wg.Done()
			var err error
			if current, err = api.FetchEventRegistrations(ctx); err != nil {
				logger.Warn("loading event registrations", zap.Error(err))
			}
		}()
		go func() {
			defer wg.Done()
			var err error
			if notifications, err = api.FetchLegacyInbox(ctx); err != nil {
				logger.Warn("loading legacy notifications", zap.Error(err))
			}
		}()
		wg.Wait()

		return LoadedMsg{
			Registrations: registration.Merge(legacy, current),
			Notifications: notifications,
		}
	}
}

// Registrations returns the merged registrations being shown.
func (m Model) Registrations() []model.Registration {
	return m.regs
}

// Update handles messages for the dashboard.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.loading = false
		m.regs = msg.Registrations
		m.legacy = msg.Notifications
		m.cursor = min(m.cursor, max(len(m.regs)-1, 0))
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.regs)-1 {
				m.cursor++
				m.refresh()
			}
			return m, nil
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.refresh()
			}
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			reload := m.Load()
			return m, reload
		case key.Matches(msg, m.keys.Select), key.Matches(msg, m.keys.Events):
			if len(m.regs) == 0 || m.regs[m.cursor].EventID == nil {
				return m, nil
			}
			id := *m.regs[m.cursor].EventID
			return m, func() tea.Msg { return ui.OpenEventMsg{EventID: id} }
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// refresh re-renders the content and keeps the cursor row on screen.
func (m *Model) refresh() {
	content, cursorLine := m.render()
	m.viewport.SetContent(content)

	switch {
	case cursorLine < m.viewport.YOffset:
		m.viewport.SetYOffset(cursorLine)
	case cursorLine >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(cursorLine - m.viewport.Height + 3)
	}
}

// render returns the dashboard body and the line the cursor row starts on.
func (m Model) render() (string, int) {
	heading := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	dim := theme.DimmedStyle

	if m.loading && len(m.regs) == 0 && len(m.legacy) == 0 {
		return dim.Render("Loading..."), 0
	}

	upcoming, past := registration.Split(m.regs, m.now())

	var lines []string
	lines = append(lines,
		heading.Render("My Registered Events")+dim.Render(fmt.Sprintf("  %d total", len(m.regs))),
		fmt.Sprintf("Upcoming: %d   Past: %d", len(upcoming), len(past)),
		"",
	)

	cursorLine := 0
	if len(m.regs) == 0 {
		lines = append(lines, dim.Render("No registrations yet."))
	}
	for i, r := range m.regs {
		row := []string{lipgloss.NewStyle().Bold(true).Render(r.Title)}
		if ts := ui.FormatTime(r.StartTime.Time); ts != "" {
			row = append(row, dim.Render("📅 "+ts))
		}
		location := r.Location
		if location == "" {
			location = "TBD"
		}
		row = append(row, dim.Render("📍 "+location))

		block := strings.Join(row, "\n")
		if i == m.cursor {
			cursorLine = len(lines)
			block = theme.SelectedItemStyle.Render(block)
		} else {
			block = lipgloss.NewStyle().PaddingLeft(2).Render(block)
		}
		lines = append(lines, strings.Split(block, "\n")...)
	}

	lines = append(lines, "", heading.Render("Notifications"), "")
	if len(m.legacy) == 0 {
		lines = append(lines, dim.Render("No notifications"))
	}
	for _, n := range m.legacy {
		subject := n.Subject
		if subject == "" {
			subject = n.Type
		}
		line := "  " + subject
		if n.Message != "" {
			line += dim.Render(" · " + ui.Truncate(n.Message, max(m.width-len(subject)-8, 10)))
		}
		if ts := ui.FormatTime(n.CreatedAt.Time); ts != "" {
			line += dim.Render("  " + ts)
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n"), cursorLine
}

// View renders the dashboard.
func (m Model) View() string {
	return lipgloss.NewStyle().Padding(0, 1).Render(m.viewport.View())
}

// HelpBindings returns the bindings specific to this view.
func (m Model) HelpBindings() [][]key.Binding {
	return [][]key.Binding{{m.keys.Up, m.keys.Down, m.keys.Events, m.keys.Refresh}}
}

// SetSize updates the dashboard dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = max(width-2, 0)
	m.viewport.Height = max(height, 1)
	m.refresh()
}
