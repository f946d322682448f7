package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avelara/beacon/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

type capturingNotifier struct {
	notes []*domain.Notification
	err   error
}

func (c *capturingNotifier) Create(_ context.Context, _ string, n *domain.Notification) error {
	if c.err != nil {
		return c.err
	}
	c.notes = append(c.notes, n)
	return nil
}

type capturingChannel struct {
	msgs []string
	err  error
}

func (c *capturingChannel) Send(_ context.Context, msg string) error {
	if c.err != nil {
		return c.err
	}
	c.msgs = append(c.msgs, msg)
	return nil
}

type capturingSink struct {
	entries []domain.ChangeEntry
}

func (c *capturingSink) QueueAudit(e domain.ChangeEntry) {
	c.entries = append(c.entries, e)
}

type recorderFixture struct {
	notifier *capturingNotifier
	channel  *capturingChannel
	sink     *capturingSink
	recorder *Recorder
}

func newRecorderFixture() *recorderFixture {
	f := &recorderFixture{
		notifier: &capturingNotifier{},
		channel:  &capturingChannel{},
		sink:     &capturingSink{},
	}
	f.recorder = NewRecorder(f.notifier, f.channel, f.sink, nil)
	f.recorder.SetClock(func() time.Time { return testNow })
	return f
}

func baseInitiative() *domain.Initiative {
	return &domain.Initiative{
		ID:       "i1",
		Title:    "Migrate billing",
		Status:   domain.StatusInProgress,
		Priority: domain.PriorityMedium,
		OwnerID:  "owner1",
	}
}

func TestDiffAndRecord_NoChangesNoEntries(t *testing.T) {
	f := newRecorderFixture()
	prev := baseInitiative()
	next := prev.Clone()

	entries := f.recorder.DiffAndRecord(context.Background(), prev, next, "editor1")
	assert.Empty(t, entries)
	assert.Empty(t, next.History)
	assert.Empty(t, f.notifier.notes)
}

func TestDiffAndRecord_AppendsOneEntryPerChangedField(t *testing.T) {
	f := newRecorderFixture()
	prev := baseInitiative()
	next := prev.Clone()
	next.Status = domain.StatusAtRisk
	next.Priority = domain.PriorityHigh

	entries := f.recorder.DiffAndRecord(context.Background(), prev, next, "editor1")
	require.Len(t, entries, 2)
	assert.Equal(t, domain.FieldStatus, entries[0].Field)
	assert.Equal(t, "in_progress", entries[0].OldValue)
	assert.Equal(t, "at_risk", entries[0].NewValue)
	assert.Equal(t, domain.FieldPriority, entries[1].Field)

	require.Len(t, next.History, 2)
	assert.Equal(t, entries, f.sink.entries)
	assert.False(t, next.LastUpdated.Before(entries[0].At), "lastUpdated must cover every history timestamp")
}

func TestDiffAndRecord_PreservesExistingHistory(t *testing.T) {
	f := newRecorderFixture()
	prev := baseInitiative()
	prev.History = []domain.ChangeEntry{{ID: "old", Field: domain.FieldTitle}}
	next := prev.Clone()
	next.Status = domain.StatusDone

	f.recorder.DiffAndRecord(context.Background(), prev, next, "editor1")
	require.Len(t, next.History, 2)
	assert.Equal(t, "old", next.History[0].ID)
}

func TestDiffAndRecord_NotifiesOwnerWithSpecializedPhrasing(t *testing.T) {
	f := newRecorderFixture()
	prev := baseInitiative()
	next := prev.Clone()
	next.Status = domain.StatusAtRisk

	f.recorder.DiffAndRecord(context.Background(), prev, next, "editor1")
	require.Len(t, f.notifier.notes, 1)
	n := f.notifier.notes[0]
	assert.Equal(t, "owner1", n.UserID)
	assert.Equal(t, domain.NoteFieldChanged, n.Kind)
	assert.Contains(t, n.Message, "Status of")
}

func TestDiffAndRecord_NoSelfNotification(t *testing.T) {
	f := newRecorderFixture()
	prev := baseInitiative()
	next := prev.Clone()
	next.Status = domain.StatusAtRisk

	f.recorder.DiffAndRecord(context.Background(), prev, next, "owner1")
	assert.Empty(t, f.notifier.notes)
}

func TestDiffAndRecord_DueDateForwardedEvenForOwnEdits(t *testing.T) {
	f := newRecorderFixture()
	prev := baseInitiative()
	due := testNow.AddDate(0, 0, 7)
	next := prev.Clone()
	next.DueDate = &due

	f.recorder.DiffAndRecord(context.Background(), prev, next, "owner1")
	assert.Empty(t, f.notifier.notes, "self edit, no owner notification")
	require.Len(t, f.channel.msgs, 1)
	assert.Contains(t, f.channel.msgs[0], "Due date")
}

func TestDiffAndRecord_SideEffectFailuresDoNotBlockEntries(t *testing.T) {
	f := newRecorderFixture()
	f.notifier.err = errors.New("inbox down")
	f.channel.err = errors.New("webhook down")

	prev := baseInitiative()
	due := testNow.AddDate(0, 0, 7)
	next := prev.Clone()
	next.Status = domain.StatusAtRisk
	next.DueDate = &due

	entries := f.recorder.DiffAndRecord(context.Background(), prev, next, "editor1")
	require.Len(t, entries, 2)
	require.Len(t, next.History, 2)
	assert.Len(t, f.sink.entries, 2, "audit queueing is independent of delivery failures")
}

func TestDiffAndRecord_PushbackCounterAndEscalation(t *testing.T) {
	f := newRecorderFixture()
	in := baseInitiative()
	due := testNow.AddDate(0, 0, 1)
	in.DueDate = &due

	// Three consecutive pushes, each strictly later.
	for i := 1; i <= 3; i++ {
		prev := in
		next := prev.Clone()
		pushed := due.AddDate(0, 0, i)
		next.DueDate = &pushed
		f.recorder.DiffAndRecord(context.Background(), prev, next, "editor1")
		in = next
	}

	assert.Equal(t, 3, in.PushbackCount)

	var escalations int
	for _, n := range f.notifier.notes {
		if n.Kind == domain.NoteEscalation {
			escalations++
		}
	}
	assert.Equal(t, 1, escalations, "exactly one escalation once the counter passes the threshold")
}

func TestDiffAndRecord_PullingDueDateEarlierDoesNotCount(t *testing.T) {
	f := newRecorderFixture()
	prev := baseInitiative()
	due := testNow.AddDate(0, 0, 7)
	prev.DueDate = &due
	next := prev.Clone()
	earlier := due.AddDate(0, 0, -3)
	next.DueDate = &earlier

	f.recorder.DiffAndRecord(context.Background(), prev, next, "editor1")
	assert.Equal(t, 0, next.PushbackCount)
}

func TestDiffAndRecordFrom_CarriesProvenance(t *testing.T) {
	f := newRecorderFixture()
	prev := baseInitiative()
	next := prev.Clone()
	next.Status = domain.StatusDone

	entries := f.recorder.DiffAndRecordFrom(context.Background(), prev, next, "editor1", "i99")
	require.Len(t, entries, 1)
	assert.Equal(t, "i99", entries[0].SourceID)
}
