package collection

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/avelara/beacon/internal/domain"
)

const (
	// DefaultConfirmGrace is how long a successful persistence result is
	// held before the pending marker is cleared.
	DefaultConfirmGrace = 1 * time.Second

	// DefaultWriteTimeout bounds how long a pending write waits for an
	// outcome. Past it the edit is presumed successful: the marker is
	// cleared and the optimistic value kept, because a lost confirmation
	// is indistinguishable from one still in flight.
	DefaultWriteTimeout = 10 * time.Second
)

// PendingWrite tracks one in-flight optimistic local edit for a record.
type PendingWrite struct {
	Field    domain.Field
	Proposed string
	Previous string
	At       time.Time

	// generation orders writes per record so a superseded write's late
	// outcome cannot confirm or revert its successor.
	generation uint64
}

// Persister is the asynchronous upsert surface of the persistence layer.
type Persister interface {
	Sync(ctx context.Context, in *domain.Initiative) error
}

// FailureHandler is told when an optimistic write was rolled back, so the
// caller can surface a retriable error to the user.
type FailureHandler func(id string, field domain.Field, err error)

// Coordinator layers optimistic local edits over the shared collection.
// Each record moves through clean, pending-local, and back to clean via
// confirmation, rollback on persistence failure, or timeout.
type Coordinator struct {
	store     *Store
	persister Persister
	onFailure FailureHandler
	logger    *slog.Logger

	grace   time.Duration
	timeout time.Duration
	now     func() time.Time

	mu      sync.Mutex
	pending map[string]*PendingWrite
	gen     uint64
	wg      sync.WaitGroup
}

// NewCoordinator wires a coordinator over the store and persister.
func NewCoordinator(store *Store, persister Persister, onFailure FailureHandler, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		store:     store,
		persister: persister,
		onFailure: onFailure,
		logger:    logger,
		grace:     DefaultConfirmGrace,
		timeout:   DefaultWriteTimeout,
		now:       func() time.Time { return time.Now().UTC() },
		pending:   make(map[string]*PendingWrite),
	}
}

// SetTimings overrides the confirmation grace delay and the write timeout.
func (c *Coordinator) SetTimings(grace, timeout time.Duration) {
	c.grace = grace
	c.timeout = timeout
}

// SetClock overrides the coordinator's time source.
func (c *Coordinator) SetClock(now func() time.Time) {
	c.now = now
}

// EditField applies a local field edit optimistically: the in-memory record
// is updated immediately, a pending write is registered, and persistence is
// issued asynchronously. A second edit to the same record supersedes any
// write still in flight; the superseded write's outcome is then ignored.
// The returned record is the new in-memory version.
func (c *Coordinator) EditField(ctx context.Context, id string, field domain.Field, value string) (*domain.Initiative, error) {
	c.mu.Lock()
	current, ok := c.store.Get(id)
	if !ok {
		c.mu.Unlock()
		return nil, fmt.Errorf("editing %s: %w", id, ErrNotFound)
	}
	previous := current.ValueOf(field)

	next := current.Clone()
	if err := next.SetValue(field, value); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	next.LastUpdated = c.now()
	c.store.Upsert(next)

	c.gen++
	c.pending[id] = &PendingWrite{
		Field:      field,
		Proposed:   value,
		Previous:   previous,
		At:         c.now(),
		generation: c.gen,
	}
	gen := c.gen
	c.mu.Unlock()

	snapshot := next.Clone()
	c.wg.Add(1)
	go c.persistAsync(ctx, snapshot, id, field, previous, gen)
	return next, nil
}

// Pending returns the in-flight write for a record, if any.
func (c *Coordinator) Pending(id string) (PendingWrite, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if w, ok := c.pending[id]; ok {
		return *w, true
	}
	return PendingWrite{}, false
}

// ApplyRemote overwrites the local record with an inbound broadcast version.
// No field-level merge is attempted against a concurrent pending edit: the
// remote record wins wholesale and any pending marker for the identifier is
// dropped so a late rollback cannot stomp the remote state.
func (c *Coordinator) ApplyRemote(in *domain.Initiative) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pending[in.ID]; ok {
		c.logger.Debug("remote update supersedes pending local write", "initiative", in.ID)
		delete(c.pending, in.ID)
	}
	c.store.Upsert(in)
}

// SweepTimeouts clears pending markers older than the timeout bound without
// reverting their values: past the deadline the edit is trusted.
func (c *Coordinator) SweepTimeouts(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, w := range c.pending {
		if now.Sub(w.At) >= c.timeout {
			c.logger.Warn("optimistic write timed out, keeping value",
				"initiative", id, "field", w.Field)
			delete(c.pending, id)
		}
	}
}

// Run drives the timeout sweep until the context is canceled.
func (c *Coordinator) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			c.SweepTimeouts(now.UTC())
		}
	}
}

// Wait blocks until all in-flight persistence goroutines finish. Test hook.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

func (c *Coordinator) persistAsync(ctx context.Context, snapshot *domain.Initiative, id string, field domain.Field, previous string, gen uint64) {
	defer c.wg.Done()
	err := c.persister.Sync(ctx, snapshot)
	if err == nil {
		// Hold the marker briefly so an immediately-following broadcast of
		// our own write does not race the confirmation.
		time.Sleep(c.grace)
		c.confirm(id, gen)
		return
	}
	c.rollback(id, field, previous, gen, err)
}

// confirm clears the pending marker if this write is still the current one.
func (c *Coordinator) confirm(id string, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if w, ok := c.pending[id]; ok && w.generation == gen {
		delete(c.pending, id)
	}
}

// rollback reverts the field to its pre-edit value and clears the marker,
// unless the write was superseded or already timed out.
func (c *Coordinator) rollback(id string, field domain.Field, previous string, gen uint64, cause error) {
	c.mu.Lock()
	w, ok := c.pending[id]
	if !ok || w.generation != gen {
		c.mu.Unlock()
		c.logger.Debug("stale persistence failure ignored", "initiative", id, "error", cause)
		return
	}
	delete(c.pending, id)

	if current, found := c.store.Get(id); found {
		reverted := current.Clone()
		if err := reverted.SetValue(field, previous); err == nil {
			c.store.Upsert(reverted)
		}
	}
	c.mu.Unlock()

	c.logger.Warn("optimistic write rolled back", "initiative", id, "field", field, "error", cause)
	if c.onFailure != nil {
		c.onFailure(id, field, cause)
	}
}
