package repository

import (
	"context"
	"testing"
	"time"

	"github.com/avelara/beacon/internal/db"
	"github.com/avelara/beacon/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

func newTestRepos(t *testing.T) (*SQLiteInitiativeRepo, *SQLiteChangeLogRepo) {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return NewSQLiteInitiativeRepo(database), NewSQLiteChangeLogRepo(database)
}

func sampleInitiative(id string) *domain.Initiative {
	due := testNow.AddDate(0, 0, 14)
	return &domain.Initiative{
		ID:              id,
		Title:           "Migrate billing",
		Status:          domain.StatusInProgress,
		Priority:        domain.PriorityHigh,
		EstimatedEffort: 12.5,
		ActualEffort:    3,
		DueDate:         &due,
		OwnerID:         "u1",
		Classification:  domain.ClassificationNone,
		RiskNote:        "vendor dependency",
		Tasks: []domain.Task{
			{ID: id + "-t1", InitiativeID: id, Title: "Schema design", Status: domain.TaskOpen,
				Tags: []string{"db", "design"}, CreatedAt: testNow, LastUpdated: testNow},
		},
		CreatedAt:   testNow,
		LastUpdated: testNow,
	}
}

func TestInitiativeRepo_UpsertRoundTrip(t *testing.T) {
	repo, _ := newTestRepos(t)
	ctx := context.Background()

	in := sampleInitiative("i1")
	require.NoError(t, repo.Upsert(ctx, in))

	got, err := repo.GetByID(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, in.Title, got.Title)
	assert.Equal(t, in.Status, got.Status)
	assert.Equal(t, in.EstimatedEffort, got.EstimatedEffort)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, in.DueDate.Format("2006-01-02"), got.DueDate.Format("2006-01-02"))
	require.Len(t, got.Tasks, 1)
	assert.Equal(t, []string{"db", "design"}, got.Tasks[0].Tags)
}

func TestInitiativeRepo_UpsertIsUpdateOnCollision(t *testing.T) {
	repo, _ := newTestRepos(t)
	ctx := context.Background()

	in := sampleInitiative("i1")
	require.NoError(t, repo.Upsert(ctx, in))

	in.Title = "Migrate billing v2"
	in.Tasks = nil
	require.NoError(t, repo.Upsert(ctx, in))

	got, err := repo.GetByID(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, "Migrate billing v2", got.Title)
	assert.Empty(t, got.Tasks)

	all, err := repo.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestInitiativeRepo_GetByID_NotFound(t *testing.T) {
	repo, _ := newTestRepos(t)
	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInitiativeRepo_ListAttachesHistory(t *testing.T) {
	repo, changes := newTestRepos(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, sampleInitiative("i1")))
	require.NoError(t, changes.Append(ctx, domain.ChangeEntry{
		ID: "c1", InitiativeID: "i1", Field: domain.FieldStatus,
		OldValue: "planned", NewValue: "in_progress", ActorID: "u1", At: testNow,
	}))
	require.NoError(t, changes.Append(ctx, domain.ChangeEntry{
		ID: "c2", InitiativeID: "i1", Field: domain.FieldPriority,
		OldValue: "medium", NewValue: "high", ActorID: "u1", At: testNow.Add(time.Minute),
	}))

	items, err := repo.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Len(t, items[0].History, 2)
	assert.Equal(t, "c1", items[0].History[0].ID)
	assert.Equal(t, "c2", items[0].History[1].ID)
}

func TestInitiativeRepo_SoftDeleteAndRestore(t *testing.T) {
	repo, _ := newTestRepos(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, sampleInitiative("i1")))

	deletedAt, err := repo.SoftDelete(ctx, "i1", testNow)
	require.NoError(t, err)
	assert.Equal(t, testNow, deletedAt)

	visible, err := repo.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, visible)

	all, err := repo.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, domain.StatusDeleted, all[0].Status)

	require.NoError(t, repo.Restore(ctx, "i1", testNow.Add(time.Hour)))
	got, err := repo.GetByID(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPlanned, got.Status)
	assert.Nil(t, got.DeletedAt)
}

func TestInitiativeRepo_SoftDeleteMissing(t *testing.T) {
	repo, _ := newTestRepos(t)
	_, err := repo.SoftDelete(context.Background(), "missing", testNow)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChangeLogRepo_AppendOnlyOrdering(t *testing.T) {
	repo, changes := newTestRepos(t)
	ctx := context.Background()
	require.NoError(t, repo.Upsert(ctx, sampleInitiative("i1")))

	for i, field := range []domain.Field{domain.FieldStatus, domain.FieldDueDate, domain.FieldRiskNote} {
		require.NoError(t, changes.Append(ctx, domain.ChangeEntry{
			ID: string(rune('a' + i)), InitiativeID: "i1", Field: field,
			ActorID: "u1", At: testNow.Add(time.Duration(i) * time.Second),
		}))
	}

	entries, err := changes.ListByInitiative(ctx, "i1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, domain.FieldStatus, entries[0].Field)
	assert.Equal(t, domain.FieldRiskNote, entries[2].Field)
}
