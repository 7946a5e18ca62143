package app

import (
	appsync "github.com/nhle/campus-inbox/internal/sync"
	"github.com/nhle/campus-inbox/internal/ui"
	"github.com/nhle/campus-inbox/internal/ui/bell"
)

// viewName is the title of the active view in the help overlay.
func (m Model) viewName() string {
	switch m.currentView {
	case ViewLogin:
		return "Sign in"
	case ViewDiscussion:
		return "Discussion"
	case ViewEvent:
		return "Event notifications"
	case ViewDashboard:
		return "Dashboard"
	case ViewBroadcast:
		return "Broadcast"
	case ViewSettings:
		return "Settings"
	default:
		return "Inbox"
	}
}

// headerSegments returns the right-hand side of the header: sync state,
// user and the unread bell.
func (m Model) headerSegments() []string {
	if m.session == nil {
		return nil
	}

	segments := []string{m.syncStatus()}
	if m.session.Username != "" {
		segments = append(segments, m.session.Username)
	}
	segments = append(segments, bell.View(m.inbox.UnreadCount()))
	return segments
}

// syncStatus returns a short string describing the inbox sync state.
func (m Model) syncStatus() string {
	status := m.poller.Status()
	switch status.State {
	case appsync.SyncRunning:
		return "syncing..."
	case appsync.SyncError:
		return "⚠ offline"
	}
	synced := m.inbox.SyncedAt()
	if synced.IsZero() {
		return ""
	}
	return "synced " + ui.RelativeTime(synced, m.now())
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewLogin:
		return "enter next | ctrl+c quit"
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	case ViewDiscussion:
		return "enter send | ↑/↓ scroll | esc back"
	case ViewEvent:
		if m.eventsView.Composing() {
			return "ctrl+s post | tab next field | esc leave composer"
		}
		return "d discuss | c compose | r refresh | esc back"
	case ViewDashboard:
		return "enter event notifications | r refresh | 1 inbox | q quit"
	case ViewBroadcast:
		return "ctrl+s send | tab next field | ctrl+u urgency | esc back"
	case ViewSettings:
		return "e edit | esc back"
	default:
		if m.inboxView.Searching() {
			return "enter keep search | esc clear search"
		}
		hints := "q quit | ? help | : command | d discuss | m read | M all read | f filter | / search"
		if m.session.CanBroadcast() {
			hints += " | 3 broadcast"
		}
		return hints
	}
}
