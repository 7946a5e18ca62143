package model

import "strings"

// Urgency is the three-level severity attached to a notification.
// It only affects how a delivery is styled.
type Urgency string

const (
	UrgencyLow    Urgency = "LOW"
	UrgencyNormal Urgency = "NORMAL"
	UrgencyHigh   Urgency = "HIGH"
)

// Normalize maps unknown or empty values to UrgencyNormal, which is what
// the server assumes when a notification is created without one.
func (u Urgency) Normalize() Urgency {
	switch Urgency(strings.ToUpper(string(u))) {
	case UrgencyLow:
		return UrgencyLow
	case UrgencyHigh:
		return UrgencyHigh
	default:
		return UrgencyNormal
	}
}

// Origin tells whether a notification was broadcast to everyone or
// scoped to a single event.
type Origin string

const (
	OriginGlobal Origin = "GLOBAL"
	OriginEvent  Origin = "EVENT"
)

// Delivery is one recipient's copy of a notification. DeliveryID is the
// identity used for read/mute state; ID refers to the shared notification
// content and is what threads are attached to.
type Delivery struct {
	// DeliveryID is unique per recipient-delivery.
	DeliveryID int64 `json:"deliveryId"`

	// ID identifies the notification content shared across recipients.
	ID int64 `json:"id"`

	Title         string    `json:"title"`
	Message       string    `json:"message"`
	CreatedAt     Timestamp `json:"createdAt"`
	Urgency       Urgency   `json:"urgency,omitempty"`
	Origin        Origin    `json:"origin,omitempty"`
	ThreadEnabled bool      `json:"threadEnabled"`
	Read          bool      `json:"read"`
	Muted         bool      `json:"muted"`
}

// LegacyNotification is an entry of the older per-user notification list
// served by /api/notifications/mine.
type LegacyNotification struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt Timestamp `json:"createdAt"`
	SentAt    Timestamp `json:"sentAt"`
}

// Thread is a discussion attached to a notification.
type Thread struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// ThreadMessage is a single append-only message in a thread.
type ThreadMessage struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt Timestamp `json:"createdAt"`
}

// NotificationDraft is the payload for broadcast and event notifications.
type NotificationDraft struct {
	Title         string  `json:"title" validate:"required,max=255"`
	Message       string  `json:"message" validate:"required"`
	Urgency       Urgency `json:"urgency" validate:"oneof=LOW NORMAL HIGH"`
	ThreadEnabled bool    `json:"threadEnabled"`
}

// Trimmed returns a copy with surrounding whitespace removed from the
// text fields and the urgency normalized.
func (d NotificationDraft) Trimmed() NotificationDraft {
	d.Title = strings.TrimSpace(d.Title)
	d.Message = strings.TrimSpace(d.Message)
	d.Urgency = d.Urgency.Normalize()
	return d
}
