package domain

import "time"

// Comment is a discussion entry on an initiative, relayed between clients
// but not diffed or audited.
type Comment struct {
	ID           string
	InitiativeID string
	AuthorID     string
	Body         string
	At           time.Time
}
