package composer

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/nhle/campus-inbox/internal/compose"
	"github.com/nhle/campus-inbox/internal/keys"
	"github.com/nhle/campus-inbox/internal/model"
	"github.com/nhle/campus-inbox/internal/toast"
)

type fakeAPI struct {
	posted    []model.NotificationDraft
	broadcast []model.NotificationDraft
	err       error
}

func (f *fakeAPI) PostEventNotification(_ context.Context, _ int64, d model.NotificationDraft) error {
	if f.err != nil {
		return f.err
	}
	f.posted = append(f.posted, d)
	return nil
}

func (f *fakeAPI) Broadcast(_ context.Context, d model.NotificationDraft) error {
	f.broadcast = append(f.broadcast, d)
	return nil
}

type recorder struct {
	toasts []toast.Toast
}

func (r *recorder) Publish(t toast.Toast) { r.toasts = append(r.toasts, t) }

func newComposer(t *testing.T, target func(*fakeAPI) compose.Target) (Model, *fakeAPI, *recorder) {
	t.Helper()
	api := &fakeAPI{}
	rec := &recorder{}
	m := New(compose.NewSender(rec, nil), target(api), keys.DefaultKeyMap(), 80)
	m.Focus()
	return m, api, rec
}

func eventTarget(api *fakeAPI) compose.Target {
	return compose.EventTarget{API: api, EventID: 7}
}

func broadcastTarget(api *fakeAPI) compose.Target {
	return compose.BroadcastTarget{API: api}
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func fill(m Model, title, message string) Model {
	m = typeText(m, title)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(m, message)
	return m
}

func TestSubmitDisabledUntilBothFieldsFilled(t *testing.T) {
	m, api, _ := newComposer(t, eventTarget)

	require.False(t, m.CanSubmit())
	require.Contains(t, m.View(), "Title is required")
	require.Contains(t, m.View(), "Message is required")

	m = typeText(m, "Room change")
	require.False(t, m.CanSubmit())

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.Nil(t, cmd)
	require.Equal(t, compose.InvalidStatus, m.Status())
	require.Empty(t, api.posted)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(m, "Now in B12")
	require.True(t, m.CanSubmit())
	require.NotContains(t, m.View(), "is required")
}

func TestSuccessfulSubmitClearsForm(t *testing.T) {
	m, api, rec := newComposer(t, eventTarget)
	m = fill(m, " Room change ", "Now in B12")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	require.False(t, m.CanSubmit())

	msg := cmd()
	submitted, ok := msg.(SubmittedMsg)
	require.True(t, ok)
	require.True(t, submitted.Outcome.Sent)
	require.Equal(t, "event 7", submitted.Target)

	m, _ = m.Update(msg)
	require.Equal(t, "", m.Draft().Title)
	require.Equal(t, "", m.Draft().Message)
	require.False(t, m.Draft().ThreadEnabled)
	require.Equal(t, "Posted", m.Status())

	require.Len(t, api.posted, 1)
	require.Equal(t, "Room change", api.posted[0].Title)
	require.True(t, api.posted[0].ThreadEnabled)
	require.Equal(t, model.UrgencyNormal, api.posted[0].Urgency)

	require.Len(t, rec.toasts, 1)
	require.Equal(t, "Notification posted", rec.toasts[0].Text)
}

func TestFailedSubmitKeepsForm(t *testing.T) {
	m, api, rec := newComposer(t, eventTarget)
	api.err = errors.New("boom")
	m = fill(m, "Room change", "Now in B12")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m, _ = m.Update(cmd())

	require.Equal(t, "Room change", m.Draft().Title)
	require.Equal(t, "Failed to post notification", m.Status())
	require.Len(t, rec.toasts, 1)
	require.Equal(t, toast.SeverityError, rec.toasts[0].Severity)
}

func TestBlankBroadcastToasts(t *testing.T) {
	m, api, rec := newComposer(t, broadcastTarget)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.Nil(t, cmd)
	require.Empty(t, api.broadcast)
	require.Len(t, rec.toasts, 1)
	require.Equal(t, "Please provide a title and message", rec.toasts[0].Text)
	require.Contains(t, m.View(), compose.InvalidStatus)
}

func TestCycleUrgency(t *testing.T) {
	m, _, _ := newComposer(t, broadcastTarget)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlU})
	require.Equal(t, model.UrgencyHigh, m.Draft().Urgency)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlU})
	require.Equal(t, model.UrgencyLow, m.Draft().Urgency)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlU})
	require.Equal(t, model.UrgencyNormal, m.Draft().Urgency)
}

func TestSubmittedForOtherTargetIgnored(t *testing.T) {
	m, _, _ := newComposer(t, eventTarget)
	m = fill(m, "a", "b")

	m, _ = m.Update(SubmittedMsg{Target: "broadcast", Outcome: compose.Outcome{Sent: true, Status: "Sent"}})
	require.Equal(t, "a", m.Draft().Title)
	require.Equal(t, "", m.Status())
}
