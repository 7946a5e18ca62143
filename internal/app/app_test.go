package app

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/nhle/campus-inbox/internal/credential"
	"github.com/nhle/campus-inbox/internal/inbox"
	"github.com/nhle/campus-inbox/internal/model"
	appsync "github.com/nhle/campus-inbox/internal/sync"
	"github.com/nhle/campus-inbox/internal/toast"
	"github.com/nhle/campus-inbox/internal/ui"
	"github.com/nhle/campus-inbox/internal/ui/bell"
	"github.com/nhle/campus-inbox/internal/ui/command"
	"github.com/nhle/campus-inbox/internal/ui/discussion"
	"github.com/nhle/campus-inbox/internal/ui/events"
	"github.com/nhle/campus-inbox/internal/ui/login"
)

type fakeBackend struct {
	mu     sync.Mutex
	tokens credential.TokenStore
	inbox  []model.Delivery
	events []int64
}

func (f *fakeBackend) Login(_ context.Context, _, _ string) (string, error) {
	return "", nil
}

func (f *fakeBackend) Logout() error { return f.tokens.ClearToken() }

func (f *fakeBackend) FetchInbox(context.Context) ([]model.Delivery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Delivery(nil), f.inbox...), nil
}

func (f *fakeBackend) MarkDeliveryRead(context.Context, int64) error   { return nil }
func (f *fakeBackend) MuteDelivery(context.Context, int64, bool) error { return nil }

func (f *fakeBackend) FetchEventNotifications(_ context.Context, eventID int64) ([]model.Delivery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, eventID)
	return nil, nil
}

func (f *fakeBackend) PostEventNotification(context.Context, int64, model.NotificationDraft) error {
	return nil
}

func (f *fakeBackend) Broadcast(context.Context, model.NotificationDraft) error { return nil }

func (f *fakeBackend) FetchLegacyRegistrations(context.Context) ([]model.Registration, error) {
	return nil, nil
}

func (f *fakeBackend) FetchEventRegistrations(context.Context) ([]model.Registration, error) {
	return nil, nil
}

func (f *fakeBackend) FetchLegacyInbox(context.Context) ([]model.LegacyNotification, error) {
	return nil, nil
}

func (f *fakeBackend) CreateThread(_ context.Context, _ int64, title string) (model.Thread, error) {
	return model.Thread{ID: 11, Title: title}, nil
}

func (f *fakeBackend) FetchThreadMessages(context.Context, int64) ([]model.ThreadMessage, error) {
	return nil, nil
}

func (f *fakeBackend) PostThreadMessage(context.Context, int64, string) (int64, error) {
	return 1, nil
}

func signToken(t *testing.T, username string, roles ...string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   username,
		"roles": roles,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

type harness struct {
	model   Model
	backend *fakeBackend
	tokens  *credential.MemoryStore
	store   *inbox.Store
	bus     *toast.Bus
}

func newHarness(t *testing.T, token string) *harness {
	t.Helper()
	tokens := credential.NewMemoryStore(token)
	backend := &fakeBackend{
		tokens: tokens,
		inbox: []model.Delivery{
			{DeliveryID: 5, ID: 1, Title: "Exam moved"},
			{DeliveryID: 6, ID: 2, Title: "Welcome", Read: true, ThreadEnabled: true},
		},
	}
	store := inbox.NewStore(backend)
	poller := appsync.New(store, time.Hour, nil)
	t.Cleanup(poller.Stop)
	bus := toast.NewBus(time.Second)

	m := New(Options{
		Backend: backend,
		Tokens:  tokens,
		Inbox:   store,
		Poller:  poller,
		Toasts:  bus,
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return &harness{model: next.(Model), backend: backend, tokens: tokens, store: store, bus: bus}
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.model.Update(msg)
	h.model = next.(Model)
	return cmd
}

func (h *harness) key(s string) tea.Cmd {
	return h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// signIn starts a session and delivers the poller's first load.
func (h *harness) signIn(t *testing.T) {
	t.Helper()
	h.send(sessionStartMsg{})
	synced, ok := h.model.poller.WaitForNextResult()().(appsync.InboxSyncedMsg)
	require.True(t, ok)
	require.NoError(t, synced.Error)
	h.send(synced)
}

func TestStartsAtLoginWithoutToken(t *testing.T) {
	h := newHarness(t, "")
	require.Nil(t, h.model.session)

	h.send(loginRequiredMsg{})
	require.Equal(t, ViewLogin, h.model.currentView)
	require.Contains(t, h.model.View(), "Sign in to Campus Inbox")
}

func TestStoredTokenOpensInbox(t *testing.T) {
	h := newHarness(t, signToken(t, "alice", "ROLE_GENERAL_USER"))
	h.signIn(t)

	require.Equal(t, ViewInbox, h.model.currentView)
	view := h.model.View()
	require.Contains(t, view, "alice")
	require.Contains(t, view, "Exam moved")
	require.Equal(t, "1", bell.Text(h.store.UnreadCount()))
	require.Equal(t, "synced just now", h.model.syncStatus())
}

func TestLoginStartsSession(t *testing.T) {
	h := newHarness(t, "")
	h.send(loginRequiredMsg{})

	h.send(login.LoggedInMsg{Token: signToken(t, "bob", "ROLE_FACULTY")})
	require.Equal(t, ViewInbox, h.model.currentView)
	require.Equal(t, "bob", h.model.session.Username)
	require.True(t, h.model.session.CanPost())
}

func TestAuthFailureDuringSyncReturnsToLogin(t *testing.T) {
	h := newHarness(t, signToken(t, "alice"))
	h.signIn(t)

	h.send(appsync.InboxSyncedMsg{AuthFailed: true})
	require.Equal(t, ViewLogin, h.model.currentView)
	require.Nil(t, h.model.session)
	require.Empty(t, h.store.Items())
	require.Contains(t, h.model.View(), "Your session has expired")
}

func TestDiscussionOpensAndReturns(t *testing.T) {
	h := newHarness(t, signToken(t, "alice"))
	h.signIn(t)

	d := h.store.Items()[1]
	cmd := h.send(ui.OpenDiscussionMsg{Delivery: d})
	require.NotNil(t, cmd)
	require.Equal(t, ViewDiscussion, h.model.currentView)

	h.send(discussion.CloseMsg{})
	require.Equal(t, ViewInbox, h.model.currentView)
}

func TestEventPanelReturnsToDashboard(t *testing.T) {
	h := newHarness(t, signToken(t, "carol", "ROLE_CLUB_ASSOCIATE"))
	h.signIn(t)

	h.key("2")
	require.Equal(t, ViewDashboard, h.model.currentView)

	cmd := h.send(ui.OpenEventMsg{EventID: 42})
	require.Equal(t, ViewEvent, h.model.currentView)
	h.send(cmd())
	require.Equal(t, []int64{42}, h.backend.events)

	h.key("c")
	require.True(t, h.model.eventsView.Composing(), "club associates may post")

	h.send(tea.KeyMsg{Type: tea.KeyEsc})
	h.send(events.CloseMsg{})
	require.Equal(t, ViewDashboard, h.model.currentView)
}

func TestBroadcastRequiresAdmin(t *testing.T) {
	h := newHarness(t, signToken(t, "alice", "ROLE_GENERAL_USER"))
	ch, unsubscribe := h.bus.Subscribe(4)
	defer unsubscribe()
	h.signIn(t)

	h.key("3")
	require.Equal(t, ViewInbox, h.model.currentView)
	require.Equal(t, toast.SeverityError, (<-ch).Severity)
}

func TestQuitOnlyOutsideTextEntry(t *testing.T) {
	h := newHarness(t, signToken(t, "root", "ROLE_ADMIN"))
	h.signIn(t)

	h.key("3")
	require.Equal(t, ViewBroadcast, h.model.currentView)
	h.key("q")
	require.Equal(t, ViewBroadcast, h.model.currentView)

	closeCmd := h.send(tea.KeyMsg{Type: tea.KeyEsc})
	h.send(closeCmd())
	require.Equal(t, ViewInbox, h.model.currentView)

	cmd := h.key("q")
	require.NotNil(t, cmd)
	require.Equal(t, tea.QuitMsg{}, cmd())
}

func TestLogoutCommandClearsToken(t *testing.T) {
	h := newHarness(t, signToken(t, "alice"))
	h.signIn(t)

	h.key(":")
	require.Equal(t, ViewCommand, h.model.currentView)

	h.send(command.CommandMsg{Name: command.Logout})
	require.Equal(t, ViewLogin, h.model.currentView)
	token, err := h.tokens.Token()
	require.NoError(t, err)
	require.Empty(t, token)
	require.Contains(t, h.model.View(), "Signed out.")
	require.Empty(t, h.store.Items())
	require.True(t, h.store.SyncedAt().IsZero())
	require.Equal(t, appsync.SyncIdle, h.model.poller.Status().State)
}

func TestHelpOverlayToggles(t *testing.T) {
	h := newHarness(t, signToken(t, "alice"))
	h.signIn(t)

	h.key("?")
	require.Equal(t, ViewHelp, h.model.currentView)
	require.Contains(t, h.model.View(), "Keyboard Shortcuts")

	h.key("?")
	require.Equal(t, ViewInbox, h.model.currentView)
}
