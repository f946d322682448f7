package domain

import "time"

// ChangeEntry records one field's old→new transition on an initiative.
// Entries are immutable once created and only ever appended to history.
type ChangeEntry struct {
	ID           string
	InitiativeID string
	TaskID       string // set when the change touched a sub-task
	Field        Field
	OldValue     string
	NewValue     string
	ActorID      string
	At           time.Time

	// SourceID names the initiative whose edit caused this change as a side
	// effect, when it differs from InitiativeID.
	SourceID string
}
