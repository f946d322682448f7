package engine

import (
	"testing"
	"time"

	"github.com/avelara/beacon/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

func TestEvaluateCondition_NilTreeAlwaysTrue(t *testing.T) {
	ok, err := EvaluateCondition(nil, &domain.Initiative{}, testNow)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluateCondition_EmptyCompositeIsVacuouslyTrue(t *testing.T) {
	ok, err := EvaluateCondition(&domain.ConditionNode{Kind: domain.CondAll}, &domain.Initiative{}, testNow)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluateCondition_ShortCircuitsOnFirstFalse(t *testing.T) {
	// The second child is malformed; a short-circuiting composite must never
	// reach it once the first child is false.
	node := &domain.ConditionNode{
		Kind: domain.CondAll,
		Children: []domain.ConditionNode{
			{Kind: domain.CondStatusIs, Value: "done"},
			{Kind: domain.ConditionKind("bogus")},
		},
	}
	ok, err := EvaluateCondition(node, &domain.Initiative{Status: domain.StatusPlanned}, testNow)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvaluateCondition_DueDatePassed(t *testing.T) {
	yesterday := testNow.AddDate(0, 0, -1)
	tomorrow := testNow.AddDate(0, 0, 1)
	node := &domain.ConditionNode{Kind: domain.CondDueDatePassed}

	cases := []struct {
		name   string
		in     domain.Initiative
		expect bool
	}{
		{"overdue in progress", domain.Initiative{Status: domain.StatusInProgress, DueDate: &yesterday}, true},
		{"overdue but done", domain.Initiative{Status: domain.StatusDone, DueDate: &yesterday}, false},
		{"overdue but already at risk", domain.Initiative{Status: domain.StatusAtRisk, DueDate: &yesterday}, false},
		{"not yet due", domain.Initiative{Status: domain.StatusInProgress, DueDate: &tomorrow}, false},
		{"no due date", domain.Initiative{Status: domain.StatusInProgress}, false},
	}
	for _, tc := range cases {
		ok, err := EvaluateCondition(node, &tc.in, testNow)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.expect, ok, tc.name)
	}
}

func TestEvaluateCondition_StatusEquality(t *testing.T) {
	in := &domain.Initiative{Status: domain.StatusAtRisk}

	ok, err := EvaluateCondition(&domain.ConditionNode{Kind: domain.CondStatusIs, Value: "at_risk"}, in, testNow)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = EvaluateCondition(&domain.ConditionNode{Kind: domain.CondStatusIsNot, Value: "at_risk"}, in, testNow)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvaluateCondition_NumericAbove_MissingFieldIsZero(t *testing.T) {
	node := &domain.ConditionNode{Kind: domain.CondNumericAbove, Field: domain.FieldActualEffort, Threshold: 0}
	ok, err := EvaluateCondition(node, &domain.Initiative{}, testNow)
	require.NoError(t, err)
	assert.False(t, ok, "0 > 0 must be false")

	node.Threshold = 5
	ok, err = EvaluateCondition(node, &domain.Initiative{ActualEffort: 5.5}, testNow)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluateCondition_StaleForDays_CalendarGranularity(t *testing.T) {
	node := &domain.ConditionNode{Kind: domain.CondStaleForDays, Days: 1}

	// 23:00 yesterday to 09:00 today is only 10 hours, but a full calendar
	// day boundary was crossed.
	lastNight := time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC)
	ok, err := EvaluateCondition(node, &domain.Initiative{LastUpdated: lastNight}, testNow)
	require.NoError(t, err)
	assert.True(t, ok)

	thisMorning := time.Date(2026, 3, 15, 1, 0, 0, 0, time.UTC)
	ok, err = EvaluateCondition(node, &domain.Initiative{LastUpdated: thisMorning}, testNow)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvaluateCondition_UnknownKindFailsClosed(t *testing.T) {
	ok, err := EvaluateCondition(&domain.ConditionNode{Kind: domain.ConditionKind("bogus")}, &domain.Initiative{}, testNow)
	assert.Error(t, err)
	assert.False(t, ok)
}
