package collection

import (
	"testing"
	"time"

	"github.com/avelara/beacon/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

func ini(id string) *domain.Initiative {
	return &domain.Initiative{ID: id, Status: domain.StatusPlanned}
}

func ids(items []*domain.Initiative) []string {
	out := make([]string, len(items))
	for i, in := range items {
		out[i] = in.ID
	}
	return out
}

func TestDedupe_KeepsFirstOccurrence(t *testing.T) {
	a1 := ini("a")
	a2 := ini("a")
	items := []*domain.Initiative{a1, ini("b"), a2, ini("c"), ini("b")}

	out := Dedupe(items)
	assert.Equal(t, []string{"a", "b", "c"}, ids(out))
	assert.Same(t, a1, out[0], "first occurrence wins")
}

func TestDedupe_Idempotent(t *testing.T) {
	items := []*domain.Initiative{ini("a"), ini("b"), ini("a")}
	once := Dedupe(items)
	twice := Dedupe(once)
	assert.Equal(t, ids(once), ids(twice))
}

func TestDedupe_EmptyAndClean(t *testing.T) {
	assert.Empty(t, Dedupe(nil))
	items := []*domain.Initiative{ini("a"), ini("b")}
	assert.Equal(t, []string{"a", "b"}, ids(Dedupe(items)))
}

func TestStore_LoadDedupes(t *testing.T) {
	s := NewStore()
	s.Load([]*domain.Initiative{ini("a"), ini("b"), ini("a")})
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"a", "b"}, ids(s.List()))
}

func TestStore_UpsertCollisionIsUpdate(t *testing.T) {
	s := NewStore()
	s.Load([]*domain.Initiative{ini("a"), ini("b")})

	replacement := ini("a")
	replacement.Title = "replaced"
	s.Upsert(replacement)

	assert.Equal(t, 2, s.Len())
	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "replaced", got.Title)
	// Identifier keeps its original position.
	assert.Equal(t, []string{"a", "b"}, ids(s.List()))
}

func TestStore_ListActiveExcludesSoftDeleted(t *testing.T) {
	s := NewStore()
	a, b := ini("a"), ini("b")
	b.SoftDelete(testNow)
	s.Load([]*domain.Initiative{a, b})

	assert.Equal(t, []string{"a"}, ids(s.ListActive()))
	assert.Equal(t, []string{"a", "b"}, ids(s.List()), "deleted records stay in the collection")
}

func TestStore_HealRemovesDuplicateOrderEntries(t *testing.T) {
	s := NewStore()
	s.Load([]*domain.Initiative{ini("a"), ini("b")})
	// Simulate a corrupted order slice.
	s.order = append(s.order, "a")

	s.Heal()
	assert.Equal(t, []string{"a", "b"}, ids(s.List()))
}
