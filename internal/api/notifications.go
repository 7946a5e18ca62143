package api

import (
	"context"
	"fmt"

	"github.com/nhle/campus-inbox/internal/model"
)

// FetchInbox returns the current user's deliveries, newest first as
// ordered by the server.
func (c *Client) FetchInbox(ctx context.Context) ([]model.Delivery, error) {
	var items []model.Delivery
	if err := c.get(ctx, "/api/notifications", &items); err != nil {
		return nil, fmt.Errorf("fetching inbox: %w", err)
	}
	return items, nil
}

// FetchLegacyInbox returns the older per-user notification list.
func (c *Client) FetchLegacyInbox(ctx context.Context) ([]model.LegacyNotification, error) {
	var items []model.LegacyNotification
	if err := c.get(ctx, "/api/notifications/mine", &items); err != nil {
		return nil, fmt.Errorf("fetching legacy notifications: %w", err)
	}
	return items, nil
}

// Broadcast sends a notification to every user.
func (c *Client) Broadcast(ctx context.Context, draft model.NotificationDraft) error {
	if err := c.post(ctx, "/api/notifications/broadcast", draft, nil); err != nil {
		return fmt.Errorf("broadcasting notification: %w", err)
	}
	return nil
}

// PostEventNotification sends a notification to everyone registered for
// the event.
func (c *Client) PostEventNotification(ctx context.Context, eventID int64, draft model.NotificationDraft) error {
	path := fmt.Sprintf("/api/notifications/events/%d", eventID)
	if err := c.post(ctx, path, draft, nil); err != nil {
		return fmt.Errorf("posting notification for event %d: %w", eventID, err)
	}
	return nil
}

// FetchEventNotifications returns the deliveries scoped to one event.
// Origin and urgency are not part of this listing.
func (c *Client) FetchEventNotifications(ctx context.Context, eventID int64) ([]model.Delivery, error) {
	var items []model.Delivery
	path := fmt.Sprintf("/api/notifications/events/%d", eventID)
	if err := c.get(ctx, path, &items); err != nil {
		return nil, fmt.Errorf("fetching notifications for event %d: %w", eventID, err)
	}
	for i := range items {
		items[i].Origin = model.OriginEvent
	}
	return items, nil
}

// MarkDeliveryRead marks one delivery as read.
func (c *Client) MarkDeliveryRead(ctx context.Context, deliveryID int64) error {
	path := fmt.Sprintf("/api/notifications/deliveries/%d/mark-read", deliveryID)
	if err := c.post(ctx, path, nil, nil); err != nil {
		return fmt.Errorf("marking delivery %d read: %w", deliveryID, err)
	}
	return nil
}

type muteRequest struct {
	Mute bool `json:"mute"`
}

// MuteDelivery sets the muted flag of one delivery.
func (c *Client) MuteDelivery(ctx context.Context, deliveryID int64, mute bool) error {
	path := fmt.Sprintf("/api/notifications/deliveries/%d/mute", deliveryID)
	if err := c.post(ctx, path, muteRequest{Mute: mute}, nil); err != nil {
		return fmt.Errorf("setting mute=%t on delivery %d: %w", mute, deliveryID, err)
	}
	return nil
}
