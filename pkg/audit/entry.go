package audit

import (
	"time"

	"github.com/getmockd/regdesk/pkg/domain"
)

// Event names.
const (
	EventCreated      = "record.created"
	EventUpdated      = "record.updated"
	EventDeleted      = "record.deleted"
	EventAction       = "record.action"
	EventSignIn       = "auth.sign_in"
	EventSignInFailed = "auth.sign_in_failed"
	EventSignOut      = "auth.sign_out"
)

// Entry is one audit record.
type Entry struct {
	Sequence int64       `json:"seq"`
	Time     time.Time   `json:"time"`
	Event    string      `json:"event"`
	Actor    string      `json:"actor,omitempty"`
	Role     domain.Role `json:"role,omitempty"`
	Resource string      `json:"resource,omitempty"`
	ID       string      `json:"id,omitempty"`
	Action   string      `json:"action,omitempty"`
	Method   string      `json:"method,omitempty"`
	Client   string      `json:"client,omitempty"`
	Detail   string      `json:"detail,omitempty"`
}

// EventFor maps a notification type to its audit event.
func EventFor(kind string) string {
	switch kind {
	case domain.NotifyCreated:
		return EventCreated
	case domain.NotifyUpdated:
		return EventUpdated
	case domain.NotifyDeleted:
		return EventDeleted
	}
	return EventAction
}
