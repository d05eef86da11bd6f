package domain

import "time"

// Notification types.
const (
	NotifyCreated = "created"
	NotifyUpdated = "updated"
	NotifyDeleted = "deleted"
	NotifyAction  = "action"
)

// Notification announces a change to a registry record.
type Notification struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resource_id,omitempty"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}
