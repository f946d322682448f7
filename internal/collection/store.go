package collection

import (
	"errors"
	"sync"

	"github.com/avelara/beacon/internal/domain"
)

// ErrNotFound is returned when a record identifier is not in the collection.
var ErrNotFound = errors.New("initiative not found")

// Dedupe removes duplicate identifiers from a record list, keeping the first
// occurrence of each and preserving order. O(n) with a seen-set. Idempotent.
func Dedupe(items []*domain.Initiative) []*domain.Initiative {
	seen := make(map[string]bool, len(items))
	out := items[:0:0]
	for _, in := range items {
		if seen[in.ID] {
			continue
		}
		seen[in.ID] = true
		out = append(out, in)
	}
	return out
}

// Store owns the shared in-memory initiative collection. Every mutation path
// (local edit, workflow action, remote broadcast, healing pass) goes through
// this API, which maintains the invariant that no two entries share an
// identifier.
type Store struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*domain.Initiative
}

// NewStore returns an empty collection.
func NewStore() *Store {
	return &Store{byID: make(map[string]*domain.Initiative)}
}

// Load replaces the collection contents, deduplicating by identifier with
// keep-first semantics. Used at initial load from persistence.
func (s *Store) Load(items []*domain.Initiative) {
	items = Dedupe(items)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = s.order[:0]
	s.byID = make(map[string]*domain.Initiative, len(items))
	for _, in := range items {
		s.order = append(s.order, in.ID)
		s.byID[in.ID] = in
	}
}

// Get returns the record for id.
func (s *Store) Get(id string) (*domain.Initiative, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	in, ok := s.byID[id]
	return in, ok
}

// List returns all records in insertion order, soft-deleted included.
func (s *Store) List() []*domain.Initiative {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Initiative, 0, len(s.order))
	for _, id := range s.order {
		if in, ok := s.byID[id]; ok {
			out = append(out, in)
		}
	}
	return out
}

// ListActive returns records that are not soft-deleted, in insertion order.
func (s *Store) ListActive() []*domain.Initiative {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Initiative, 0, len(s.order))
	for _, id := range s.order {
		if in, ok := s.byID[id]; ok && !in.Deleted() {
			out = append(out, in)
		}
	}
	return out
}

// Upsert inserts a record or, when the identifier already exists, replaces
// the stored record. A colliding create is treated as an update rather than
// rejected; the identifier keeps its original position.
func (s *Store) Upsert(in *domain.Initiative) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[in.ID]; !exists {
		s.order = append(s.order, in.ID)
	}
	s.byID[in.ID] = in
}

// Len reports the collection size.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Heal runs a defensive dedupe pass over the insertion order. The map keyed
// by identifier cannot hold duplicates, but the order slice could accumulate
// them if an entry were ever re-added; healing keeps the first occurrence.
func (s *Store) Heal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool, len(s.order))
	kept := s.order[:0]
	for _, id := range s.order {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := s.byID[id]; ok {
			kept = append(kept, id)
		}
	}
	s.order = kept
}
