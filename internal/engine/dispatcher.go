package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/avelara/beacon/internal/domain"
)

// DefaultTickInterval drives scheduled-trigger checks. Minute-level schedule
// matching requires a check at least once per minute.
const DefaultTickInterval = 60 * time.Second

// Collection is the dispatcher's view of the shared record collection.
type Collection interface {
	Get(id string) (*domain.Initiative, bool)
	ListActive() []*domain.Initiative
	Upsert(in *domain.Initiative)
}

// Recorder diffs a record against its mutated copy and appends change
// entries to the copy's history.
type Recorder interface {
	DiffAndRecord(ctx context.Context, prev, next *domain.Initiative, actor string) []domain.ChangeEntry
}

// Outbound carries a mutated record to persistence and to other clients.
type Outbound interface {
	QueueSync(in *domain.Initiative)
	BroadcastUpdate(in *domain.Initiative)
}

// Notifier delivers workflow-produced notifications.
type Notifier interface {
	Create(ctx context.Context, userID string, n *domain.Notification) error
}

// Dispatcher decides which workflows run for a given event and executes
// them. Eligible workflows run sequentially, each against its own working
// copy of the record.
type Dispatcher struct {
	workflows []*domain.Workflow
	store     Collection
	recorder  Recorder
	out       Outbound
	notifier  Notifier
	classify  Classifier
	logger    *slog.Logger
	interval  time.Duration

	// lastFired de-duplicates minute-matched schedules when ticks arrive
	// more than once per minute. Keyed by workflow ID, value is the fired
	// minute. Hourly cadence intentionally bypasses this and fires every
	// tick.
	lastFired map[string]string
}

// NewDispatcher wires a dispatcher over the given workflow set.
func NewDispatcher(
	workflows []*domain.Workflow,
	store Collection,
	recorder Recorder,
	out Outbound,
	notifier Notifier,
	classify Classifier,
	logger *slog.Logger,
) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		workflows: workflows,
		store:     store,
		recorder:  recorder,
		out:       out,
		notifier:  notifier,
		classify:  classify,
		logger:    logger,
		interval:  DefaultTickInterval,
		lastFired: make(map[string]string),
	}
}

// Workflows returns the dispatcher's workflow set.
func (d *Dispatcher) Workflows() []*domain.Workflow {
	return d.workflows
}

// Run drives scheduled triggers until the context is canceled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			d.Tick(ctx, now.UTC())
		}
	}
}

// Tick checks every enabled scheduled workflow against the wall clock and
// runs the due ones over all active records.
func (d *Dispatcher) Tick(ctx context.Context, now time.Time) {
	for _, w := range d.workflows {
		if !w.IsEnabled() || w.Trigger.Kind != domain.TriggerSchedule {
			continue
		}
		if !d.scheduleDue(w, now) {
			continue
		}
		for _, in := range d.store.ListActive() {
			d.runOne(ctx, w, in, now)
		}
	}
}

// RecordCreated fires every enabled on-create workflow against a record that
// was just added to the collection.
func (d *Dispatcher) RecordCreated(ctx context.Context, in *domain.Initiative, now time.Time) {
	for _, w := range d.workflows {
		if !w.IsEnabled() || w.Trigger.Kind != domain.TriggerCreate {
			continue
		}
		d.runOne(ctx, w, in, now)
	}
}

// FieldsChanged fires workflows watching any of the changed fields.
// Effort-change workflows match on the two effort fields regardless of any
// configured field list.
func (d *Dispatcher) FieldsChanged(ctx context.Context, in *domain.Initiative, changed []domain.Field, now time.Time) {
	for _, w := range d.workflows {
		if !w.IsEnabled() {
			continue
		}
		switch w.Trigger.Kind {
		case domain.TriggerFieldChange:
			if !anyWatched(w.Trigger, changed) {
				continue
			}
		case domain.TriggerEffortChange:
			if !containsEffort(changed) {
				continue
			}
		default:
			continue
		}
		d.runOne(ctx, w, in, now)
	}
}

// scheduleDue reports whether a scheduled workflow should fire at now.
// Daily and weekly cadences match on exact wall-clock minute; weekly carries
// no day-of-week parameter and so matches every day at the configured time.
func (d *Dispatcher) scheduleDue(w *domain.Workflow, now time.Time) bool {
	switch w.Trigger.Cadence {
	case domain.CadenceHourly:
		return true
	case domain.CadenceDaily, domain.CadenceWeekly:
		if now.Format("15:04") != w.Trigger.At {
			return false
		}
		minute := now.Format("2006-01-02 15:04")
		if d.lastFired[w.ID] == minute {
			return false
		}
		d.lastFired[w.ID] = minute
		return true
	default:
		return false
	}
}

// runOne executes a single workflow against an isolated copy of the record.
// Evaluation and action failures are logged and skip this workflow only.
func (d *Dispatcher) runOne(ctx context.Context, w *domain.Workflow, in *domain.Initiative, now time.Time) {
	// An earlier workflow handling the same event may have committed a
	// change already. Re-read the stored record so this run builds on it
	// instead of the caller's pre-event snapshot.
	if current, ok := d.store.Get(in.ID); ok {
		in = current
	}
	work := in.Clone()

	ok, err := EvaluateCondition(w.Condition, work, now)
	if err != nil {
		d.logger.Warn("workflow condition failed closed",
			"workflow", w.Name, "initiative", in.ID, "error", err)
		w.RecordRun(domain.WorkflowRun{At: now, InitiativeID: in.ID, Note: "condition error: " + err.Error()})
		return
	}
	if !ok {
		return
	}

	mutated, note, err := ApplyAction(w.Action, work, d.classify, now)
	if err != nil {
		d.logger.Warn("workflow action skipped",
			"workflow", w.Name, "initiative", in.ID, "error", err)
		w.RecordRun(domain.WorkflowRun{At: now, InitiativeID: in.ID, Note: "action error: " + err.Error()})
		return
	}

	if note != nil && d.notifier != nil {
		if err := d.notifier.Create(ctx, note.UserID, note); err != nil {
			d.logger.Warn("workflow notification dropped",
				"workflow", w.Name, "user", note.UserID, "error", err)
		}
	}

	if mutated {
		d.recorder.DiffAndRecord(ctx, in, work, ActorAutomation)
		d.store.Upsert(work)
		if d.out != nil {
			d.out.QueueSync(work)
			d.out.BroadcastUpdate(work)
		}
	}

	w.RecordRun(domain.WorkflowRun{At: now, InitiativeID: in.ID, Mutated: mutated})
}

func anyWatched(t domain.TriggerSpec, changed []domain.Field) bool {
	for _, f := range changed {
		if t.WatchesField(f) {
			return true
		}
	}
	return false
}

func containsEffort(changed []domain.Field) bool {
	for _, f := range changed {
		if f == domain.FieldEstimatedEffort || f == domain.FieldActualEffort {
			return true
		}
	}
	return false
}
