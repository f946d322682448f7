package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func TestSoftDeleteAndRestore(t *testing.T) {
	in := &Initiative{ID: "a", Status: StatusInProgress}
	in.SoftDelete(testNow)
	assert.True(t, in.Deleted())
	require.NotNil(t, in.DeletedAt)
	assert.Equal(t, testNow, *in.DeletedAt)

	later := testNow.Add(time.Hour)
	in.Restore(later)
	assert.False(t, in.Deleted())
	assert.Nil(t, in.DeletedAt)
	assert.Equal(t, StatusPlanned, in.Status)
	assert.Equal(t, later, in.LastUpdated)
}

func TestClone_IsDeep(t *testing.T) {
	due := testNow.AddDate(0, 0, 7)
	in := &Initiative{
		ID:      "a",
		Status:  StatusPlanned,
		DueDate: &due,
		Tasks:   []Task{{ID: "t1", Tags: []string{"infra"}}},
		History: []ChangeEntry{{ID: "c1", Field: FieldStatus}},
	}
	cp := in.Clone()

	*cp.DueDate = testNow
	cp.Tasks[0].Tags[0] = "changed"
	cp.History[0].ID = "mutated"

	assert.Equal(t, due, *in.DueDate)
	assert.Equal(t, "infra", in.Tasks[0].Tags[0])
	assert.Equal(t, "c1", in.History[0].ID)
}

func TestSetValue_RoundTripsThroughValueOf(t *testing.T) {
	in := &Initiative{}
	require.NoError(t, in.SetValue(FieldStatus, "at_risk"))
	require.NoError(t, in.SetValue(FieldEstimatedEffort, "12.5"))
	require.NoError(t, in.SetValue(FieldDueDate, "2026-04-01"))

	assert.Equal(t, "at_risk", in.ValueOf(FieldStatus))
	assert.Equal(t, "12.5", in.ValueOf(FieldEstimatedEffort))
	assert.Equal(t, "2026-04-01", in.ValueOf(FieldDueDate))
}

func TestSetValue_ClearsDueDate(t *testing.T) {
	due := testNow
	in := &Initiative{DueDate: &due}
	require.NoError(t, in.SetValue(FieldDueDate, ""))
	assert.Nil(t, in.DueDate)
}

func TestSetValue_RejectsMalformedInput(t *testing.T) {
	in := &Initiative{}
	assert.Error(t, in.SetValue(FieldEstimatedEffort, "a lot"))
	assert.Error(t, in.SetValue(FieldDueDate, "next tuesday"))
	assert.Error(t, in.SetValue(Field("unknown"), "x"))
}

func TestNumericValue_MissingFieldIsZero(t *testing.T) {
	in := &Initiative{EstimatedEffort: 3}
	assert.Equal(t, 3.0, in.NumericValue(FieldEstimatedEffort))
	assert.Equal(t, 0.0, in.NumericValue(FieldRiskNote))
}
