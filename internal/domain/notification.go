package domain

import "time"

// Notification is an owner-facing message produced by the audit recorder or a
// workflow action.
type Notification struct {
	ID           string
	UserID       string
	Kind         NotificationKind
	InitiativeID string
	Field        Field
	Message      string
	CreatedAt    time.Time
	ReadAt       *time.Time
}

// Read reports whether the notification has been marked read.
func (n *Notification) Read() bool {
	return n.ReadAt != nil
}
