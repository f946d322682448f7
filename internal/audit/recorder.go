package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avelara/beacon/internal/domain"
	"github.com/google/uuid"
)

// pushbackThreshold is the number of due-date push-backs past which an
// escalation notification is emitted.
const pushbackThreshold = 2

// Notifier delivers owner-facing notifications.
type Notifier interface {
	Create(ctx context.Context, userID string, n *domain.Notification) error
}

// Channel is an external delivery surface (chat webhook, email bridge).
// Due-date changes are forwarded here regardless of who made them.
type Channel interface {
	Send(ctx context.Context, msg string) error
}

// AuditSink receives change entries for durable storage.
type AuditSink interface {
	QueueAudit(e domain.ChangeEntry)
}

// Recorder detects field-level diffs between a record's previous and next
// version, appends immutable change entries to the next version's history,
// and fans out notifications. Every side effect is independently best-effort:
// a failed notification never blocks the diff, the other side effects, or
// the caller.
type Recorder struct {
	notifier Notifier
	channel  Channel
	sink     AuditSink
	logger   *slog.Logger
	now      func() time.Time
}

// NewRecorder wires a recorder. Any collaborator may be nil; the matching
// side effect is then skipped.
func NewRecorder(notifier Notifier, channel Channel, sink AuditSink, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		notifier: notifier,
		channel:  channel,
		sink:     sink,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the recorder's time source.
func (r *Recorder) SetClock(now func() time.Time) {
	r.now = now
}

// DiffAndRecord compares prev and next across the tracked field set and
// appends one change entry per differing field to next.History, in the
// order the diffs are detected. Existing history is never removed or
// reordered.
func (r *Recorder) DiffAndRecord(ctx context.Context, prev, next *domain.Initiative, actor string) []domain.ChangeEntry {
	return r.DiffAndRecordFrom(ctx, prev, next, actor, "")
}

// DiffAndRecordFrom is DiffAndRecord with provenance: sourceID names the
// initiative whose edit caused this change as a side effect.
func (r *Recorder) DiffAndRecordFrom(ctx context.Context, prev, next *domain.Initiative, actor, sourceID string) []domain.ChangeEntry {
	now := r.now()
	var entries []domain.ChangeEntry

	for _, f := range domain.TrackedFields {
		oldVal := prev.ValueOf(f)
		newVal := next.ValueOf(f)
		if oldVal == newVal {
			continue
		}
		entries = append(entries, domain.ChangeEntry{
			ID:           uuid.New().String(),
			InitiativeID: next.ID,
			Field:        f,
			OldValue:     oldVal,
			NewValue:     newVal,
			ActorID:      actor,
			At:           now,
			SourceID:     sourceID,
		})
	}
	if len(entries) == 0 {
		return nil
	}

	next.History = append(next.History, entries...)
	if next.LastUpdated.Before(now) {
		next.LastUpdated = now
	}

	for _, e := range entries {
		r.queueAudit(e)
		r.notifyOwner(ctx, next, e, actor)
		if e.Field == domain.FieldDueDate {
			r.forwardDueDate(ctx, next, e)
			r.trackPushback(ctx, prev, next, now)
		}
	}
	return entries
}

func (r *Recorder) queueAudit(e domain.ChangeEntry) {
	if r.sink == nil {
		return
	}
	r.sink.QueueAudit(e)
}

// notifyOwner emits a per-field notification to the record's owner. The
// owner is not notified of their own edits.
func (r *Recorder) notifyOwner(ctx context.Context, in *domain.Initiative, e domain.ChangeEntry, actor string) {
	if r.notifier == nil || in.OwnerID == "" || actor == in.OwnerID {
		return
	}
	n := &domain.Notification{
		UserID:       in.OwnerID,
		Kind:         notificationKind(e.Field),
		InitiativeID: in.ID,
		Field:        e.Field,
		Message:      changeMessage(in, e),
		CreatedAt:    e.At,
	}
	if err := r.notifier.Create(ctx, in.OwnerID, n); err != nil {
		r.logger.Warn("change notification dropped",
			"initiative", in.ID, "field", e.Field, "error", err)
	}
}

// forwardDueDate sends due-date changes to the external channel, for every
// actor including the owner.
func (r *Recorder) forwardDueDate(ctx context.Context, in *domain.Initiative, e domain.ChangeEntry) {
	if r.channel == nil {
		return
	}
	msg := fmt.Sprintf("Due date for %q changed from %s to %s",
		in.Title, orNone(e.OldValue), orNone(e.NewValue))
	if err := r.channel.Send(ctx, msg); err != nil {
		r.logger.Warn("due date delivery failed", "initiative", in.ID, "error", err)
	}
}

// trackPushback counts due-date moves to a strictly later date and escalates
// past the threshold.
func (r *Recorder) trackPushback(ctx context.Context, prev, next *domain.Initiative, now time.Time) {
	if prev.DueDate == nil || next.DueDate == nil || !next.DueDate.After(*prev.DueDate) {
		return
	}
	next.PushbackCount++
	if next.PushbackCount <= pushbackThreshold {
		return
	}
	if r.notifier == nil || next.OwnerID == "" {
		return
	}
	n := &domain.Notification{
		UserID:       next.OwnerID,
		Kind:         domain.NoteEscalation,
		InitiativeID: next.ID,
		Field:        domain.FieldDueDate,
		Message:      fmt.Sprintf("%q has had its due date pushed back %d times", next.Title, next.PushbackCount),
		CreatedAt:    now,
	}
	if err := r.notifier.Create(ctx, next.OwnerID, n); err != nil {
		r.logger.Warn("escalation notification dropped", "initiative", next.ID, "error", err)
	}
}

// changeMessage phrases a field change for the owner. Status, due date, and
// the effort fields get specialized wording; everything else is generic.
func changeMessage(in *domain.Initiative, e domain.ChangeEntry) string {
	switch e.Field {
	case domain.FieldStatus:
		return fmt.Sprintf("Status of %q moved from %s to %s", in.Title, orNone(e.OldValue), orNone(e.NewValue))
	case domain.FieldDueDate:
		return fmt.Sprintf("Due date for %q changed from %s to %s", in.Title, orNone(e.OldValue), orNone(e.NewValue))
	case domain.FieldEstimatedEffort, domain.FieldActualEffort:
		return fmt.Sprintf("Effort on %q updated from %s to %s person-days", in.Title, orNone(e.OldValue), orNone(e.NewValue))
	default:
		return fmt.Sprintf("%s on %q changed from %s to %s", e.Field, in.Title, orNone(e.OldValue), orNone(e.NewValue))
	}
}

func notificationKind(f domain.Field) domain.NotificationKind {
	if f == domain.FieldDueDate {
		return domain.NoteDueDate
	}
	return domain.NoteFieldChanged
}

func orNone(v string) string {
	if v == "" {
		return "(none)"
	}
	return v
}
