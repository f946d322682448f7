package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/avelara/beacon/internal/collection"
	"github.com/avelara/beacon/internal/domain"
	"github.com/avelara/beacon/internal/repository"
	"github.com/google/uuid"
)

// editor is the optimistic-write surface of the collection coordinator.
type editor interface {
	EditField(ctx context.Context, id string, field domain.Field, value string) (*domain.Initiative, error)
	ApplyRemote(in *domain.Initiative)
}

// recorder diffs record versions and appends change entries.
type recorder interface {
	DiffAndRecord(ctx context.Context, prev, next *domain.Initiative, actor string) []domain.ChangeEntry
}

// dispatcher fires event-driven workflows.
type dispatcher interface {
	RecordCreated(ctx context.Context, in *domain.Initiative, now time.Time)
	FieldsChanged(ctx context.Context, in *domain.Initiative, changed []domain.Field, now time.Time)
}

// broadcaster relays local changes to other connected clients.
type broadcaster interface {
	BroadcastCreate(in *domain.Initiative)
	BroadcastUpdate(in *domain.Initiative)
	BroadcastComment(c domain.Comment)
}

type initiativeService struct {
	store      *collection.Store
	coord      editor
	recorder   recorder
	dispatcher dispatcher
	bus        broadcaster
	persist    Persistence
	changes    repository.ChangeLogRepo
	perms      PermissionChecker
	observer   UseCaseObserver
	now        func() time.Time
}

func NewInitiativeService(
	store *collection.Store,
	coord editor,
	rec recorder,
	disp dispatcher,
	bus broadcaster,
	persist Persistence,
	changes repository.ChangeLogRepo,
	perms PermissionChecker,
	observers ...UseCaseObserver,
) InitiativeService {
	return &initiativeService{
		store:      store,
		coord:      coord,
		recorder:   rec,
		dispatcher: disp,
		bus:        bus,
		persist:    persist,
		changes:    changes,
		perms:      perms,
		observer:   useCaseObserverOrNoop(observers),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the service's time source.
func (s *initiativeService) SetClock(now func() time.Time) {
	s.now = now
}

// Create adds a new initiative. A submitted identifier that already exists
// in the collection is treated as an update of the existing record, which
// makes an accidental double submit harmless. On-create workflows fire only
// for genuinely new records.
func (s *initiativeService) Create(ctx context.Context, actorID string, in *domain.Initiative) (err error) {
	start := s.now()
	defer func() {
		observe(ctx, s.observer, "initiative.create", start, err, map[string]any{"initiative": in.ID})
	}()

	if !s.perms.CanEdit(ctx, actorID) {
		return fmt.Errorf("creating initiative: %w", ErrPermissionDenied)
	}
	if in.Title == "" {
		return fmt.Errorf("creating initiative: title is required")
	}

	now := s.now()
	if in.ID == "" {
		in.ID = uuid.New().String()
	} else if existing, ok := s.store.Get(in.ID); ok {
		return s.updateExisting(ctx, actorID, existing, in, now)
	}
	if in.Status == "" {
		in.Status = domain.StatusPlanned
	}
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}
	if in.Classification == "" {
		in.Classification = domain.ClassificationNone
	}
	if in.OwnerID == "" {
		in.OwnerID = actorID
	}
	in.CreatedAt = now
	in.LastUpdated = now

	s.store.Upsert(in)
	s.persist.QueueSync(in)
	s.bus.BroadcastCreate(in)
	s.dispatcher.RecordCreated(ctx, in, now)
	return nil
}

// updateExisting is the double-submit path: the resubmitted record is
// diffed against the stored one and applied as a normal update.
func (s *initiativeService) updateExisting(ctx context.Context, actorID string, existing, submitted *domain.Initiative, now time.Time) error {
	next := submitted.Clone()
	next.CreatedAt = existing.CreatedAt
	next.History = append([]domain.ChangeEntry(nil), existing.History...)
	next.LastUpdated = now

	entries := s.recorder.DiffAndRecord(ctx, existing, next, actorID)
	s.store.Upsert(next)
	s.persist.QueueSync(next)
	if len(entries) > 0 {
		s.bus.BroadcastUpdate(next)
		s.dispatcher.FieldsChanged(ctx, next, changedFields(entries), now)
	}
	return nil
}

func (s *initiativeService) Get(ctx context.Context, id string) (*domain.Initiative, error) {
	if in, ok := s.store.Get(id); ok {
		return in, nil
	}
	return nil, fmt.Errorf("initiative %s: %w", id, collection.ErrNotFound)
}

func (s *initiativeService) List(ctx context.Context, includeDeleted bool) ([]*domain.Initiative, error) {
	if includeDeleted {
		return s.store.List(), nil
	}
	return s.store.ListActive(), nil
}

// EditField applies a single-field edit through the optimistic coordinator,
// records the change, and fans the new version out to workflows and peers.
func (s *initiativeService) EditField(ctx context.Context, actorID, id string, field domain.Field, value string) (next *domain.Initiative, err error) {
	start := s.now()
	defer func() {
		observe(ctx, s.observer, "initiative.edit", start, err,
			map[string]any{"initiative": id, "field": string(field)})
	}()

	if !s.perms.CanEdit(ctx, actorID) {
		return nil, fmt.Errorf("editing initiative: %w", ErrPermissionDenied)
	}
	prev, ok := s.store.Get(id)
	if !ok {
		return nil, fmt.Errorf("initiative %s: %w", id, collection.ErrNotFound)
	}
	prevSnapshot := prev.Clone()

	next, err = s.coord.EditField(ctx, id, field, value)
	if err != nil {
		return nil, err
	}

	entries := s.recorder.DiffAndRecord(ctx, prevSnapshot, next, actorID)
	if len(entries) > 0 {
		s.bus.BroadcastUpdate(next)
		s.dispatcher.FieldsChanged(ctx, next, changedFields(entries), s.now())
	}
	return next, nil
}

// Delete soft-deletes an initiative. The record stays in the collection
// and history, hidden from active views, until restored.
func (s *initiativeService) Delete(ctx context.Context, actorID, id string) (err error) {
	start := s.now()
	defer func() {
		observe(ctx, s.observer, "initiative.delete", start, err, map[string]any{"initiative": id})
	}()

	if !s.perms.CanDelete(ctx, actorID) {
		return fmt.Errorf("deleting initiative: %w", ErrPermissionDenied)
	}
	current, ok := s.store.Get(id)
	if !ok {
		return fmt.Errorf("initiative %s: %w", id, collection.ErrNotFound)
	}

	now := s.now()
	next := current.Clone()
	next.SoftDelete(now)
	s.store.Upsert(next)
	if _, err := s.persist.SoftDelete(ctx, id, now); err != nil {
		return fmt.Errorf("deleting initiative %s: %w", id, err)
	}
	s.bus.BroadcastUpdate(next)
	return nil
}

// Restore brings a soft-deleted initiative back as planned.
func (s *initiativeService) Restore(ctx context.Context, actorID, id string) (err error) {
	start := s.now()
	defer func() {
		observe(ctx, s.observer, "initiative.restore", start, err, map[string]any{"initiative": id})
	}()

	if !s.perms.CanDelete(ctx, actorID) {
		return fmt.Errorf("restoring initiative: %w", ErrPermissionDenied)
	}
	current, ok := s.store.Get(id)
	if !ok {
		return fmt.Errorf("initiative %s: %w", id, collection.ErrNotFound)
	}

	now := s.now()
	next := current.Clone()
	next.Restore(now)
	s.store.Upsert(next)
	if err := s.persist.Restore(ctx, id, now); err != nil {
		return fmt.Errorf("restoring initiative %s: %w", id, err)
	}
	s.bus.BroadcastUpdate(next)
	return nil
}

// AddComment relays a discussion comment to connected clients. Comments
// are not part of the tracked field set and produce no change entries.
func (s *initiativeService) AddComment(ctx context.Context, actorID, id, body string) (*domain.Comment, error) {
	if body == "" {
		return nil, fmt.Errorf("adding comment: body is required")
	}
	if _, ok := s.store.Get(id); !ok {
		return nil, fmt.Errorf("initiative %s: %w", id, collection.ErrNotFound)
	}
	c := domain.Comment{
		ID:           uuid.New().String(),
		InitiativeID: id,
		AuthorID:     actorID,
		Body:         body,
		At:           s.now(),
	}
	s.bus.BroadcastComment(c)
	return &c, nil
}

// ReviewEffort compares the record's current actual effort against its
// prior actual-effort values, reconstructed from the change history.
func (s *initiativeService) ReviewEffort(ctx context.Context, id string) (domain.ValidationFlag, error) {
	in, ok := s.store.Get(id)
	if !ok {
		return domain.ValidationFlag{}, fmt.Errorf("initiative %s: %w", id, collection.ErrNotFound)
	}
	return domain.ReviewEffort(in.ActualEffort, priorEfforts(in)), nil
}

// priorEfforts walks the actual-effort change entries in order and returns
// every value the field held before its current one.
func priorEfforts(in *domain.Initiative) []float64 {
	var values []float64
	for _, e := range in.History {
		if e.Field != domain.FieldActualEffort {
			continue
		}
		if len(values) == 0 {
			if v, err := strconv.ParseFloat(e.OldValue, 64); err == nil {
				values = append(values, v)
			}
		}
		if v, err := strconv.ParseFloat(e.NewValue, 64); err == nil {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return nil
	}
	return values[:len(values)-1]
}

// History returns the durable change log when a backing repo is attached,
// falling back to the in-memory record history otherwise.
func (s *initiativeService) History(ctx context.Context, id string) ([]domain.ChangeEntry, error) {
	if s.changes != nil {
		entries, err := s.changes.ListByInitiative(ctx, id)
		if err == nil && len(entries) > 0 {
			return entries, nil
		}
	}
	in, ok := s.store.Get(id)
	if !ok {
		return nil, fmt.Errorf("initiative %s: %w", id, collection.ErrNotFound)
	}
	return in.History, nil
}

// ApplyRemoteUpdate ingests a record version broadcast by another client.
func (s *initiativeService) ApplyRemoteUpdate(in *domain.Initiative) {
	s.coord.ApplyRemote(in)
}

// ApplyRemoteCreate ingests a record created on another client. A record
// already present locally is treated as an update.
func (s *initiativeService) ApplyRemoteCreate(in *domain.Initiative) {
	s.coord.ApplyRemote(in)
}

func changedFields(entries []domain.ChangeEntry) []domain.Field {
	fields := make([]domain.Field, 0, len(entries))
	for _, e := range entries {
		fields = append(fields, e.Field)
	}
	return fields
}
