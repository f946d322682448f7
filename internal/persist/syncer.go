package persist

import (
	"context"
	"log/slog"
	"time"

	"github.com/avelara/beacon/internal/domain"
	"github.com/avelara/beacon/internal/repository"
)

// queueDepth bounds the fire-and-forget write queue. Overflow drops the
// write with a warning rather than blocking an edit.
const queueDepth = 256

type job struct {
	record *domain.Initiative
	entry  *domain.ChangeEntry
}

// Syncer is the asynchronous persistence surface over the local SQLite
// cache. Record upserts and audit entries are queued fire-and-forget and
// drained by Run. When the cache is unavailable the syncer accepts and
// drops writes so the in-memory collection keeps working.
type Syncer struct {
	initiatives repository.InitiativeRepo
	changes     repository.ChangeLogRepo
	logger      *slog.Logger
	queue       chan job
	flush       chan chan struct{}
}

// NewSyncer wires a syncer. Pass nil repos to run cache-less.
func NewSyncer(initiatives repository.InitiativeRepo, changes repository.ChangeLogRepo, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		initiatives: initiatives,
		changes:     changes,
		logger:      logger,
		queue:       make(chan job, queueDepth),
		flush:       make(chan chan struct{}),
	}
}

// Available reports whether a persistence backend is attached.
func (s *Syncer) Available() bool {
	return s.initiatives != nil
}

// Load reads the full collection from the cache.
func (s *Syncer) Load(ctx context.Context) ([]*domain.Initiative, error) {
	if s.initiatives == nil {
		return nil, nil
	}
	return s.initiatives.List(ctx, true)
}

// QueueSync enqueues a record upsert without waiting for it.
func (s *Syncer) QueueSync(in *domain.Initiative) {
	s.enqueue(job{record: in.Clone()})
}

// QueueAudit enqueues a change entry append without waiting for it.
func (s *Syncer) QueueAudit(e domain.ChangeEntry) {
	s.enqueue(job{entry: &e})
}

func (s *Syncer) enqueue(j job) {
	select {
	case s.queue <- j:
	default:
		s.logger.Warn("sync queue full, dropping write")
	}
}

// Sync writes a record immediately. This is the coordinator's persistence
// path: its outcome decides confirmation or rollback of an optimistic edit.
func (s *Syncer) Sync(ctx context.Context, in *domain.Initiative) error {
	if s.initiatives == nil {
		return nil
	}
	return s.initiatives.Upsert(ctx, in)
}

// SoftDelete marks a record deleted in the cache.
func (s *Syncer) SoftDelete(ctx context.Context, id string, at time.Time) (time.Time, error) {
	if s.initiatives == nil {
		return at, nil
	}
	return s.initiatives.SoftDelete(ctx, id, at)
}

// Restore clears a soft delete in the cache.
func (s *Syncer) Restore(ctx context.Context, id string, at time.Time) error {
	if s.initiatives == nil {
		return nil
	}
	return s.initiatives.Restore(ctx, id, at)
}

// ForceSyncNow blocks until every queued write has been processed.
// Run must be active.
func (s *Syncer) ForceSyncNow() {
	done := make(chan struct{})
	s.flush <- done
	<-done
}

// Run drains the queue until the context is canceled.
func (s *Syncer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			s.process(ctx, j)
		case done := <-s.flush:
			s.drain(ctx)
			close(done)
		}
	}
}

func (s *Syncer) drain(ctx context.Context) {
	for {
		select {
		case j := <-s.queue:
			s.process(ctx, j)
		default:
			return
		}
	}
}

func (s *Syncer) process(ctx context.Context, j job) {
	switch {
	case j.record != nil:
		if s.initiatives == nil {
			return
		}
		if err := s.initiatives.Upsert(ctx, j.record); err != nil {
			s.logger.Warn("record sync failed", "initiative", j.record.ID, "error", err)
		}
	case j.entry != nil:
		if s.changes == nil {
			return
		}
		if err := s.changes.Append(ctx, *j.entry); err != nil {
			s.logger.Warn("audit sync failed", "initiative", j.entry.InitiativeID, "error", err)
		}
	}
}
