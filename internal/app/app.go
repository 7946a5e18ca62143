package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/nhle/campus-inbox/internal/compose"
	"github.com/nhle/campus-inbox/internal/credential"
	"github.com/nhle/campus-inbox/internal/inbox"
	"github.com/nhle/campus-inbox/internal/keys"
	"github.com/nhle/campus-inbox/internal/model"
	appsync "github.com/nhle/campus-inbox/internal/sync"
	"github.com/nhle/campus-inbox/internal/theme"
	"github.com/nhle/campus-inbox/internal/thread"
	"github.com/nhle/campus-inbox/internal/toast"
	"github.com/nhle/campus-inbox/internal/ui"
	"github.com/nhle/campus-inbox/internal/ui/broadcast"
	"github.com/nhle/campus-inbox/internal/ui/command"
	"github.com/nhle/campus-inbox/internal/ui/composer"
	configview "github.com/nhle/campus-inbox/internal/ui/config"
	"github.com/nhle/campus-inbox/internal/ui/dashboard"
	"github.com/nhle/campus-inbox/internal/ui/discussion"
	"github.com/nhle/campus-inbox/internal/ui/events"
	helpview "github.com/nhle/campus-inbox/internal/ui/help"
	"github.com/nhle/campus-inbox/internal/ui/inboxlist"
	"github.com/nhle/campus-inbox/internal/ui/login"
	"github.com/nhle/campus-inbox/internal/ui/toasts"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewInbox
	ViewDiscussion
	ViewEvent
	ViewDashboard
	ViewBroadcast
	ViewSettings
	ViewHelp
	ViewCommand
)

// Backend is everything the views need from the server.
type Backend interface {
	login.Authenticator
	events.API
	dashboard.API
	thread.API
	compose.BroadcastAPI
	Logout() error
}

// Options wires the root model to its collaborators.
type Options struct {
	Backend Backend
	Tokens  credential.TokenStore
	Inbox   *inbox.Store
	Poller  *appsync.Poller
	Toasts  *toast.Bus

	// AuthFailures receives a value whenever the backend rejected the
	// token. May be nil.
	AuthFailures <-chan struct{}

	Config     *model.AppConfig
	ConfigPath string
	SaveConfig configview.SaveFunc
	Logger     *zap.Logger
}

// sessionStartMsg begins a signed-in session.
type sessionStartMsg struct{}

// loginRequiredMsg shows the login form with an optional notice.
type loginRequiredMsg struct {
	notice string
}

// authFailedMsg is sent when the backend rejected the stored token.
type authFailedMsg struct{}

// Model is the root Bubble Tea model that manages view routing, layout
// and the signed-in session.
type Model struct {
	currentView  ViewState
	previousView ViewState

	// Views to return to when the discussion or event panel closes.
	discussionFrom ViewState
	eventFrom      ViewState

	layout       ui.Layout
	ready        bool
	keys         *keys.KeyMap
	backend      Backend
	tokens       credential.TokenStore
	inbox        *inbox.Store
	poller       *appsync.Poller
	bus          *toast.Bus
	toastCh      <-chan toast.Toast
	unsubscribe  func()
	authFailures <-chan struct{}
	logger       *zap.Logger
	session      *credential.Session
	listening    bool
	now          func() time.Time

	loginView      login.Model
	inboxView      inboxlist.Model
	discussionView discussion.Model
	eventsView     events.Model
	dashboardView  dashboard.Model
	broadcastView  broadcast.Model
	settingsView   configview.Model
	helpView       helpview.Model
	commandView    command.Model
	toastView      toasts.Model
}

// New creates the root model. A stored, unexpired token starts a session
// straight away; otherwise the login form is shown.
func New(opts Options) Model {
	k := keys.DefaultKeyMap()
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = &model.AppConfig{}
	}

	toastCh, unsubscribe := opts.Toasts.Subscribe(16)
	sender := compose.NewSender(opts.Toasts, logger.Named("compose"))
	conv := thread.NewDiscussion(opts.Backend, logger.Named("thread"))

	m := Model{
		currentView:    ViewLogin,
		keys:           k,
		backend:        opts.Backend,
		tokens:         opts.Tokens,
		inbox:          opts.Inbox,
		poller:         opts.Poller,
		bus:            opts.Toasts,
		toastCh:        toastCh,
		unsubscribe:    unsubscribe,
		authFailures:   opts.AuthFailures,
		logger:         logger,
		now:            time.Now,
		loginView:      login.New(opts.Backend, 80, 24),
		inboxView:      inboxlist.New(opts.Inbox, k, opts.Toasts, 80, 24),
		discussionView: discussion.New(conv, k, opts.Toasts, 80, 24),
		eventsView:     events.New(opts.Backend, sender, k, opts.Toasts, logger.Named("events"), 80, 24),
		dashboardView:  dashboard.New(opts.Backend, k, logger.Named("dashboard"), 80, 24),
		broadcastView:  broadcast.New(opts.Backend, sender, k, 80, 24),
		settingsView:   configview.New(opts.ConfigPath, cfg, opts.SaveConfig, k, 80, 24),
		helpView:       helpview.New(k, 80, 24),
		commandView:    command.New(80, 24),
		toastView:      toasts.New(80),
	}
	m.session = m.restoreSession()
	return m
}

// restoreSession decodes the stored token, if any.
func (m Model) restoreSession() *credential.Session {
	if m.tokens == nil {
		return nil
	}
	token, err := m.tokens.Token()
	if err != nil {
		m.logger.Warn("reading stored token", zap.Error(err))
		return nil
	}
	if token == "" {
		return nil
	}
	s, err := credential.ParseSession(token)
	if err != nil {
		m.logger.Warn("decoding stored token", zap.Error(err))
		return nil
	}
	if s.Expired(m.now()) {
		return nil
	}
	return s
}

// Init starts listening for toasts and auth failures and opens either the
// inbox or the login form.
func (m Model) Init() tea.Cmd {
	start := func() tea.Msg { return loginRequiredMsg{} }
	if m.session != nil {
		start = func() tea.Msg { return sessionStartMsg{} }
	}
	return tea.Batch(
		toasts.Listen(m.toastCh),
		waitForAuthFailure(m.authFailures),
		start,
	)
}

func waitForAuthFailure(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return authFailedMsg{}
	}
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.toastView, _ = m.toastView.Update(msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.Width, m.layout.ContentHeight()
		m.loginView.SetSize(w, h)
		m.inboxView.SetSize(w, h)
		m.discussionView.SetSize(w, h)
		m.eventsView.SetSize(w, h)
		m.dashboardView.SetSize(w, h)
		m.broadcastView.SetSize(w, h)
		m.settingsView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		m.toastView.SetWidth(w)
		return m.updateActiveView(msg)

	case toasts.ReceivedMsg:
		return m, tea.Batch(m.toastView.Push(msg.Toast), toasts.Listen(m.toastCh))

	case sessionStartMsg:
		cmd := m.beginSession()
		return m, cmd

	case loginRequiredMsg:
		cmd := m.showLogin(msg.notice)
		return m, cmd

	case authFailedMsg:
		wait := waitForAuthFailure(m.authFailures)
		if m.session == nil {
			return m, wait
		}
		cmd := m.showLogin("Your session has expired. Please sign in again.")
		return m, tea.Batch(wait, cmd)

	case login.LoggedInMsg:
		var cmd tea.Cmd
		m.loginView, cmd = m.loginView.Update(msg)
		if msg.Err != nil {
			m.logger.Warn("login failed", zap.Error(msg.Err))
			return m, cmd
		}
		m.session = m.sessionFromToken(msg.Token)
		start := m.beginSession()
		return m, tea.Batch(cmd, start)

	case appsync.InboxSyncedMsg:
		wait := m.poller.WaitForNextResult()
		if m.session == nil {
			return m, wait
		}
		if msg.AuthFailed {
			cmd := m.showLogin("Your session has expired. Please sign in again.")
			return m, tea.Batch(wait, cmd)
		}
		reload := m.inboxView.Reload()
		return m, tea.Batch(wait, reload)

	case inboxlist.RefreshRequestMsg:
		m.poller.Refresh()
		return m, nil

	case inboxlist.DeliveryChangedMsg, inboxlist.MarkAllDoneMsg:
		var cmd tea.Cmd
		m.inboxView, cmd = m.inboxView.Update(msg)
		return m, cmd

	case ui.OpenDiscussionMsg:
		if m.currentView != ViewDiscussion {
			m.discussionFrom = m.currentView
		}
		m.currentView = ViewDiscussion
		cmd := m.discussionView.Open(msg.Delivery)
		return m, cmd

	case discussion.OpenedMsg, discussion.ReplySentMsg, discussion.RefreshedMsg:
		var cmd tea.Cmd
		m.discussionView, cmd = m.discussionView.Update(msg)
		return m, cmd

	case discussion.CloseMsg:
		m.currentView = m.discussionFrom
		return m, nil

	case ui.OpenEventMsg:
		cmd := m.openEvent(msg.EventID)
		return m, cmd

	case events.LoadedMsg:
		var cmd tea.Cmd
		m.eventsView, cmd = m.eventsView.Update(msg)
		return m, cmd

	case events.CloseMsg:
		m.currentView = m.eventFrom
		return m, nil

	case composer.SubmittedMsg:
		var eventCmd, broadcastCmd tea.Cmd
		m.eventsView, eventCmd = m.eventsView.Update(msg)
		m.broadcastView, broadcastCmd = m.broadcastView.Update(msg)
		return m, tea.Batch(eventCmd, broadcastCmd)

	case dashboard.LoadedMsg:
		var cmd tea.Cmd
		m.dashboardView, cmd = m.dashboardView.Update(msg)
		return m, cmd

	case broadcast.CloseMsg, configview.CloseMsg:
		m.currentView = ViewInbox
		return m, nil

	case configview.SavedMsg:
		var cmd tea.Cmd
		m.settingsView, cmd = m.settingsView.Update(msg)
		if msg.Err == nil {
			if err := theme.Apply(msg.Config.Display.Theme); err != nil {
				m.logger.Warn("applying theme", zap.Error(err))
			}
		}
		return m, cmd

	case command.CommandMsg:
		m.currentView = m.previousView
		cmd := m.executeCommand(msg)
		return m, cmd

	case tea.KeyMsg:
		if next, cmd, handled := m.handleGlobalKeys(msg); handled {
			return next, cmd
		}
	}

	return m.updateActiveView(msg)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewInbox:
		m.inboxView, cmd = m.inboxView.Update(msg)
	case ViewDiscussion:
		m.discussionView, cmd = m.discussionView.Update(msg)
	case ViewEvent:
		m.eventsView, cmd = m.eventsView.Update(msg)
	case ViewDashboard:
		m.dashboardView, cmd = m.dashboardView.Update(msg)
	case ViewBroadcast:
		m.broadcastView, cmd = m.broadcastView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// beginSession shows the inbox and starts polling.
func (m *Model) beginSession() tea.Cmd {
	m.currentView = ViewInbox
	m.previousView = ViewInbox
	reload := m.inboxView.Reload()

	poll := m.poller.Start()
	if m.listening {
		// The waiter from the first session is still receiving results.
		poll = nil
	}
	m.listening = true

	return tea.Batch(reload, poll)
}

// showLogin ends the session, forgets everything fetched for it and
// shows the login form.
func (m *Model) showLogin(notice string) tea.Cmd {
	m.poller.Stop()
	m.inbox.Reset(context.Background())
	m.session = nil
	m.currentView = ViewLogin
	m.previousView = ViewLogin
	reload := m.inboxView.Reload()
	return tea.Batch(reload, m.loginView.Start(notice))
}

// sessionFromToken decodes a freshly issued token. The claims only decide
// which views are offered, so a token that cannot be decoded still starts
// a session without elevated views.
func (m Model) sessionFromToken(token string) *credential.Session {
	s, err := credential.ParseSession(token)
	if err != nil {
		m.logger.Warn("decoding issued token", zap.Error(err))
		return &credential.Session{}
	}
	return s
}

// openEvent switches to the notification panel of eventID.
func (m *Model) openEvent(eventID int64) tea.Cmd {
	if m.currentView != ViewEvent {
		m.eventFrom = m.currentView
	}
	m.currentView = ViewEvent
	return m.eventsView.Open(eventID, m.session.CanPost())
}

// switchTo shows a top-level view, loading it when needed.
func (m *Model) switchTo(view ViewState) tea.Cmd {
	switch view {
	case ViewDashboard:
		m.currentView = ViewDashboard
		return m.dashboardView.Load()
	case ViewBroadcast:
		if !m.session.CanBroadcast() {
			toast.Error(m.bus, "Broadcasting requires an administrator account")
			return nil
		}
		m.currentView = ViewBroadcast
		return m.broadcastView.Focus()
	case ViewSettings:
		m.currentView = ViewSettings
		return m.settingsView.Init()
	default:
		m.currentView = ViewInbox
		return nil
	}
}

// executeCommand runs a command from the command palette.
func (m *Model) executeCommand(msg command.CommandMsg) tea.Cmd {
	switch msg.Name {
	case command.Inbox:
		return m.switchTo(ViewInbox)
	case command.Dashboard:
		return m.switchTo(ViewDashboard)
	case command.Broadcast:
		return m.switchTo(ViewBroadcast)
	case command.Settings:
		return m.switchTo(ViewSettings)
	case command.Event:
		return m.openEvent(msg.EventID)
	case command.Refresh:
		return m.refreshActiveView()
	case command.MarkAll:
		m.currentView = ViewInbox
		return m.inboxView.MarkAllRead()
	case command.Logout:
		if err := m.backend.Logout(); err != nil {
			m.logger.Warn("clearing token on logout", zap.Error(err))
		}
		return m.showLogin("Signed out.")
	case command.Quit:
		return m.quit()
	}
	return nil
}

// refreshActiveView reloads whatever the active view shows.
func (m *Model) refreshActiveView() tea.Cmd {
	switch m.currentView {
	case ViewDashboard:
		return m.dashboardView.Load()
	case ViewEvent:
		return m.eventsView.Load()
	case ViewDiscussion:
		return m.discussionView.Refresh()
	default:
		m.poller.Refresh()
		return nil
	}
}

func (m Model) quit() tea.Cmd {
	m.poller.Stop()
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	return tea.Quit
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Campus Inbox", m.headerSegments()...)

	h := m.layout.ContentHeight()
	content := lipgloss.NewStyle().
		Width(m.layout.Width).
		Height(h).
		MaxHeight(h).
		Render(m.renderContent())
	content = ui.Overlay(content, m.toastView.View(), m.layout.Width)

	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewInbox:
		return m.inboxView.View()
	case ViewDiscussion:
		return m.discussionView.View()
	case ViewEvent:
		return m.eventsView.View()
	case ViewDashboard:
		return m.dashboardView.View()
	case ViewBroadcast:
		return m.broadcastView.View()
	case ViewSettings:
		return m.settingsView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}
