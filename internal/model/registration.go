package model

// Registration is an event the current user is registered for, as listed
// by either the legacy registration endpoint or the newer
// event-registration endpoint. EventID is nil when the server could not
// resolve the event.
type Registration struct {
	ID           int64     `json:"id,omitempty"`
	EventID      *int64    `json:"eventId"`
	Title        string    `json:"title"`
	StartTime    Timestamp `json:"startTime"`
	EndTime      Timestamp `json:"endTime"`
	Location     string    `json:"location"`
	RegisteredAt Timestamp `json:"registeredAt"`
}
