package formatter

import (
	"testing"
	"time"

	"github.com/avelara/beacon/internal/domain"
	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

func TestFormatInitiativeList(t *testing.T) {
	due := testNow.AddDate(0, 0, 3)
	out := FormatInitiativeList([]*domain.Initiative{
		{
			ID: "aaaabbbb-0000", Title: "Migrate billing", Status: domain.StatusInProgress,
			Priority: domain.PriorityHigh, DueDate: &due, OwnerID: "ana",
			Classification: "Technology",
		},
		{
			ID: "ccccdddd-0000", Title: "Refresh brand", Status: domain.StatusPlanned,
			Priority: domain.PriorityLow, OwnerID: "li",
			Classification: domain.ClassificationNone,
		},
	})

	assert.Contains(t, out, "Migrate billing")
	assert.Contains(t, out, "In Progress")
	assert.Contains(t, out, "Technology")
	assert.Contains(t, out, "Unclassified")
	assert.Contains(t, out, "aaaabbbb")
	assert.NotContains(t, out, "aaaabbbb-0000", "ids are truncated")
}

func TestFormatInitiativeInspect(t *testing.T) {
	due := testNow.AddDate(0, 0, 10)
	in := &domain.Initiative{
		ID: "i1", Title: "Data platform", Status: domain.StatusAtRisk,
		Priority: domain.PriorityCritical, OwnerID: "ana",
		EstimatedEffort: 20, ActualEffort: 35, DueDate: &due,
		PushbackCount: 3, RiskNote: "vendor slipping",
		Tasks: []domain.Task{
			{Title: "Ingest layer", Status: domain.TaskDone},
			{Title: "Query API", Status: domain.TaskOpen, Tags: []string{"api"}},
		},
	}
	out := FormatInitiativeInspect(in)

	assert.Contains(t, out, "DATA PLATFORM")
	assert.Contains(t, out, "At Risk")
	assert.Contains(t, out, "escalated")
	assert.Contains(t, out, "vendor slipping")
	assert.Contains(t, out, "Ingest layer")
	assert.Contains(t, out, "[api]")
}

func TestFormatHistory(t *testing.T) {
	assert.Contains(t, FormatHistory(nil), "No recorded changes")

	out := FormatHistory([]domain.ChangeEntry{
		{Field: domain.FieldStatus, OldValue: "planned", NewValue: "in_progress", ActorID: "ana", At: testNow},
		{Field: domain.FieldDueDate, OldValue: "", NewValue: "2026-04-01", ActorID: "beacon.automation", At: testNow, SourceID: "feedfeed-1234"},
	})
	assert.Contains(t, out, "planned")
	assert.Contains(t, out, "in_progress")
	assert.Contains(t, out, "via feedfeed")
}

func TestFormatWorkflowList(t *testing.T) {
	overdue := &domain.Workflow{
		ID: "system-overdue-at-risk", Name: "Flag overdue initiatives", System: true, Enabled: true,
		Trigger: domain.TriggerSpec{Kind: domain.TriggerSchedule, Cadence: domain.CadenceDaily, At: "09:00"},
	}
	for i := 0; i < 12; i++ {
		overdue.RecordRun(domain.WorkflowRun{At: testNow})
	}
	out := FormatWorkflowList([]*domain.Workflow{
		overdue,
		{
			ID: "my-hook", Name: "Watch priority", Enabled: false,
			Trigger: domain.TriggerSpec{Kind: domain.TriggerFieldChange, Fields: []domain.Field{domain.FieldPriority}},
		},
	})
	assert.Contains(t, out, "(system)")
	assert.Contains(t, out, "daily at 09:00")
	assert.Contains(t, out, "on change of priority")
	assert.Contains(t, out, "12")
}

func TestFormatEffortFlag(t *testing.T) {
	assert.Contains(t, FormatEffortFlag(domain.ValidationFlag{SampleSize: 1}), "Not enough history")
	assert.Contains(t,
		FormatEffortFlag(domain.ValidationFlag{SampleSize: 4, Entry: 10, Average: 11}),
		"in line")
	assert.Contains(t,
		FormatEffortFlag(domain.ValidationFlag{SampleSize: 4, Flagged: true, Entry: 30, Average: 11, Deviation: 1.72}),
		"deviates")
}
