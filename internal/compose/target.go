package compose

import (
	"context"
	"fmt"
	"time"

	"github.com/nhle/campus-inbox/internal/model"
)

// Labels are the user-facing texts of one composer flavour.
type Labels struct {
	Submit        string
	Submitting    string
	SentStatus    string
	FailedStatus  string
	SentToast     string
	FailedToast   string
	InvalidToast  string
	ToastDuration time.Duration
}

// Target is where a composed notification goes.
type Target interface {
	Send(ctx context.Context, draft model.NotificationDraft) error
	Labels() Labels
	String() string
}

// BroadcastAPI sends notifications to every user.
type BroadcastAPI interface {
	Broadcast(ctx context.Context, draft model.NotificationDraft) error
}

// EventAPI sends notifications to an event's registrants.
type EventAPI interface {
	PostEventNotification(ctx context.Context, eventID int64, draft model.NotificationDraft) error
}

// BroadcastTarget addresses everyone.
type BroadcastTarget struct {
	API BroadcastAPI
}

func (t BroadcastTarget) Send(ctx context.Context, draft model.NotificationDraft) error {
	return t.API.Broadcast(ctx, draft)
}

func (t BroadcastTarget) Labels() Labels {
	return Labels{
		Submit:       "Send",
		Submitting:   "Sending...",
		SentStatus:   "Sent",
		FailedStatus: "Failed to send",
		SentToast:    "Broadcast sent",
		FailedToast:  "Failed to send broadcast",
		InvalidToast: "Please provide a title and message",
	}
}

func (t BroadcastTarget) String() string { return "broadcast" }

// EventTarget addresses the registrants of one event.
type EventTarget struct {
	API     EventAPI
	EventID int64
}

func (t EventTarget) Send(ctx context.Context, draft model.NotificationDraft) error {
	return t.API.PostEventNotification(ctx, t.EventID, draft)
}

func (t EventTarget) Labels() Labels {
	return Labels{
		Submit:        "Post",
		Submitting:    "Posting...",
		SentStatus:    "Posted",
		FailedStatus:  "Failed to post notification",
		SentToast:     "Notification posted",
		FailedToast:   "Failed to post notification",
		ToastDuration: 3500 * time.Millisecond,
	}
}

func (t EventTarget) String() string { return fmt.Sprintf("event %d", t.EventID) }
