package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// capturingText reports whether the active view is taking typed text, in
// which case single-character global keys are passed through.
func (m Model) capturingText() bool {
	switch m.currentView {
	case ViewLogin, ViewDiscussion, ViewBroadcast, ViewCommand:
		return true
	case ViewInbox:
		return m.inboxView.Searching()
	case ViewEvent:
		return m.eventsView.Composing()
	case ViewSettings:
		return m.settingsView.Editing()
	}
	return false
}

// handleGlobalKeys processes keys that work across views. handled is
// false when the key belongs to the active view.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (next tea.Model, cmd tea.Cmd, handled bool) {
	if msg.String() == "ctrl+c" {
		return m, m.quit(), true
	}

	if key.Matches(msg, m.keys.DismissToasts) {
		m.toastView.DismissAll()
		return m, nil, true
	}

	switch m.currentView {
	case ViewHelp:
		if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back) {
			m.currentView = m.previousView
		}
		return m, nil, true
	case ViewCommand:
		if key.Matches(msg, m.keys.Back) {
			m.currentView = m.previousView
			return m, nil, true
		}
		return m, nil, false
	}

	if m.capturingText() || m.session == nil {
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.currentView == ViewInbox || m.currentView == ViewDashboard {
			return m, m.quit(), true
		}

	case key.Matches(msg, m.keys.Help):
		m.helpView.SetContext(m.viewName(), m.activeHelpBindings()...)
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		cmd := m.commandView.Focus()
		return m, cmd, true

	case key.Matches(msg, m.keys.Inbox):
		cmd := m.switchTo(ViewInbox)
		return m, cmd, true

	case key.Matches(msg, m.keys.Dashboard):
		cmd := m.switchTo(ViewDashboard)
		return m, cmd, true

	case key.Matches(msg, m.keys.Broadcast):
		cmd := m.switchTo(ViewBroadcast)
		return m, cmd, true
	}

	return m, nil, false
}

// activeHelpBindings returns the bindings of the active view for the help
// overlay.
func (m Model) activeHelpBindings() [][]key.Binding {
	switch m.currentView {
	case ViewInbox:
		return m.inboxView.HelpBindings()
	case ViewDiscussion:
		return m.discussionView.HelpBindings()
	case ViewEvent:
		return m.eventsView.HelpBindings()
	case ViewDashboard:
		return m.dashboardView.HelpBindings()
	case ViewBroadcast:
		return m.broadcastView.HelpBindings()
	case ViewSettings:
		return m.settingsView.HelpBindings()
	}
	return nil
}
