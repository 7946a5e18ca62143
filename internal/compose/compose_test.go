package compose

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nhle/campus-inbox/internal/model"
	"github.com/nhle/campus-inbox/internal/toast"
	"github.com/nhle/campus-inbox/internal/validate"
)

type recorder struct {
	mu     sync.Mutex
	toasts []toast.Toast
}

func (r *recorder) Publish(t toast.Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, t)
}

type fakeEvents struct {
	posted []model.NotificationDraft
	ids    []int64
	err    error
}

func (f *fakeEvents) PostEventNotification(_ context.Context, eventID int64, draft model.NotificationDraft) error {
	f.ids = append(f.ids, eventID)
	f.posted = append(f.posted, draft)
	return f.err
}

type fakeBroadcast struct {
	sent []model.NotificationDraft
	err  error
}

func (f *fakeBroadcast) Broadcast(_ context.Context, draft model.NotificationDraft) error {
	f.sent = append(f.sent, draft)
	return f.err
}

func TestCanSubmitRequiresTitleAndMessage(t *testing.T) {
	require.False(t, CanSubmit(model.NotificationDraft{}))
	require.False(t, CanSubmit(model.NotificationDraft{Title: "   ", Message: "body"}))
	require.False(t, CanSubmit(model.NotificationDraft{Title: "Title", Message: "\n"}))
	require.True(t, CanSubmit(model.NotificationDraft{Title: "Title", Message: "body"}))
}

func TestValidateNamesFields(t *testing.T) {
	fields := validate.FieldErrors(Validate(model.NotificationDraft{Title: " "}))
	require.Equal(t, "Title is required", fields.Field("title"))
	require.Equal(t, "Message is required", fields.Field("message"))
	require.Empty(t, fields.Field("urgency"))
}

func TestSubmitEventSendsTrimmedDraft(t *testing.T) {
	api := &fakeEvents{}
	toasts := &recorder{}
	s := NewSender(toasts, nil)

	out := s.Submit(context.Background(), EventTarget{API: api, EventID: 42}, model.NotificationDraft{
		Title: "  Room change ", Message: " Now in B12 ", Urgency: "", ThreadEnabled: true,
	})

	require.True(t, out.Sent)
	require.NoError(t, out.Err)
	require.Equal(t, "Posted", out.Status)
	require.Equal(t, []int64{42}, api.ids)
	require.Equal(t, model.NotificationDraft{
		Title: "Room change", Message: "Now in B12", Urgency: model.UrgencyNormal, ThreadEnabled: true,
	}, api.posted[0])

	require.Len(t, toasts.toasts, 1)
	require.Equal(t, "Notification posted", toasts.toasts[0].Text)
	require.Equal(t, toast.SeveritySuccess, toasts.toasts[0].Severity)
}

func TestSubmitFailureKeepsDraftAndToastsError(t *testing.T) {
	api := &fakeBroadcast{err: errors.New("503")}
	toasts := &recorder{}
	s := NewSender(toasts, nil)

	out := s.Submit(context.Background(), BroadcastTarget{API: api}, model.NotificationDraft{Title: "t", Message: "m"})

	require.False(t, out.Sent)
	require.Error(t, out.Err)
	require.Equal(t, "Failed to send", out.Status)
	require.Len(t, toasts.toasts, 1)
	require.Equal(t, "Failed to send broadcast", toasts.toasts[0].Text)
	require.Equal(t, toast.SeverityError, toasts.toasts[0].Severity)
}

func TestSubmitInvalidNeverSends(t *testing.T) {
	api := &fakeBroadcast{}
	toasts := &recorder{}
	s := NewSender(toasts, nil)

	out := s.Submit(context.Background(), BroadcastTarget{API: api}, model.NotificationDraft{Title: "only title"})

	require.False(t, out.Sent)
	require.Equal(t, InvalidStatus, out.Status)
	require.Empty(t, api.sent)
	require.Equal(t, "Please provide a title and message", toasts.toasts[0].Text)

	events := &fakeEvents{}
	out = s.Submit(context.Background(), EventTarget{API: events, EventID: 1}, model.NotificationDraft{})
	require.Equal(t, InvalidStatus, out.Status)
	require.Empty(t, events.posted)
	require.Len(t, toasts.toasts, 1, "event composer shows the status inline only")
}
