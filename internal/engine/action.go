package engine

import (
	"fmt"
	"time"

	"github.com/avelara/beacon/internal/domain"
)

// ActorAutomation is the actor identity stamped on workflow-driven changes.
const ActorAutomation = "beacon.automation"

// Classifier resolves an initiative owner to a classification, returning ""
// when no mapping exists for the owner's team.
type Classifier func(ownerID string) string

// ApplyAction applies a workflow action to an initiative, mutating it in
// place. The caller passes a working copy, never the shared record. Returns
// whether a field actually changed and, for notifying actions, the message
// to deliver. Application is idempotent at the field level: re-applying an
// action to an already-matching record reports no change.
func ApplyAction(a domain.ActionSpec, in *domain.Initiative, classify Classifier, now time.Time) (bool, *domain.Notification, error) {
	switch a.Kind {
	case domain.ActionSetField:
		if in.ValueOf(a.Field) == a.Value {
			return false, nil, nil
		}
		if err := in.SetValue(a.Field, a.Value); err != nil {
			return false, nil, fmt.Errorf("set_field: %w", err)
		}
		return true, nil, nil

	case domain.ActionNotifyOwner:
		n := &domain.Notification{
			UserID:       in.OwnerID,
			Kind:         domain.NoteWorkflow,
			InitiativeID: in.ID,
			Message:      a.Message,
			CreatedAt:    now,
		}
		return false, n, nil

	case domain.ActionClassify:
		// Only fill in a missing or default classification. An explicitly
		// chosen value is never overwritten by automation.
		if in.Classification != "" && in.Classification != domain.ClassificationNone {
			return false, nil, nil
		}
		if classify == nil {
			return false, nil, nil
		}
		c := classify(in.OwnerID)
		if c == "" || c == in.Classification {
			return false, nil, nil
		}
		in.Classification = c
		return true, nil, nil

	default:
		return false, nil, fmt.Errorf("unknown action kind %q", a.Kind)
	}
}
