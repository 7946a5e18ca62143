package api

import (
	"context"
	"fmt"

	"github.com/nhle/campus-inbox/internal/model"
)

type createThreadRequest struct {
	NotificationID int64  `json:"notificationId"`
	Title          string `json:"title,omitempty"`
}

type createThreadResponse struct {
	ThreadID int64 `json:"threadId"`
}

// CreateThread creates the discussion thread for a notification, or
// returns the existing one. Only the returned id is meaningful.
func (c *Client) CreateThread(ctx context.Context, notificationID int64, title string) (model.Thread, error) {
	var resp createThreadResponse
	req := createThreadRequest{NotificationID: notificationID, Title: title}
	if err := c.post(ctx, "/api/notifications/threads", req, &resp); err != nil {
		return model.Thread{}, fmt.Errorf("creating thread for notification %d: %w", notificationID, err)
	}
	if resp.ThreadID == 0 {
		return model.Thread{}, fmt.Errorf("creating thread for notification %d: response has no threadId", notificationID)
	}
	return model.Thread{ID: resp.ThreadID, Title: title}, nil
}

// FetchThreadMessages returns every message of a thread in server order.
func (c *Client) FetchThreadMessages(ctx context.Context, threadID int64) ([]model.ThreadMessage, error) {
	var msgs []model.ThreadMessage
	path := fmt.Sprintf("/api/notifications/threads/%d/messages", threadID)
	if err := c.get(ctx, path, &msgs); err != nil {
		return nil, fmt.Errorf("fetching messages for thread %d: %w", threadID, err)
	}
	return msgs, nil
}

type postMessageRequest struct {
	Content string `json:"content"`
}

type postMessageResponse struct {
	ID int64 `json:"id"`
}

// PostThreadMessage appends a message to a thread and returns its id.
func (c *Client) PostThreadMessage(ctx context.Context, threadID int64, content string) (int64, error) {
	var resp postMessageResponse
	path := fmt.Sprintf("/api/notifications/threads/%d/messages", threadID)
	if err := c.post(ctx, path, postMessageRequest{Content: content}, &resp); err != nil {
		return 0, fmt.Errorf("posting message to thread %d: %w", threadID, err)
	}
	return resp.ID, nil
}
