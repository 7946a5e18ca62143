package ui

import "github.com/nhle/campus-inbox/internal/model"

// OpenDiscussionMsg asks the application to open the discussion of a
// delivery.
type OpenDiscussionMsg struct {
	Delivery model.Delivery
}

// DisabledDiscussionText is shown when a discussion is requested for a
// notification that does not allow one.
const DisabledDiscussionText = "Discussion is not enabled for this notification"

// OpenEventMsg asks the application to show the notification panel of
// an event.
type OpenEventMsg struct {
	EventID int64
}
