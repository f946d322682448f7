package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/avelara/beacon/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workflows.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Workflows)
	assert.Equal(t, "Technology", cfg.ClassificationFor("engineering"))
	assert.Equal(t, domain.ClassificationNone, cfg.ClassificationFor("unknown-team"))
}

func TestLoad_ParsesWorkflowsAndTeamOverrides(t *testing.T) {
	path := writeConfig(t, `
workflows:
  - id: escalate-critical
    name: Escalate overdue critical work
    trigger:
      kind: schedule
      cadence: daily
      at: "08:30"
    condition:
      kind: all
      children:
        - kind: due_date_passed
        - kind: status_is_not
          value: done
    action:
      kind: set_field
      field: priority
      value: critical
teams:
  engineering: Platform
  research: Science
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Workflows, 1)
	assert.Equal(t, "Platform", cfg.ClassificationFor("engineering"))
	assert.Equal(t, "Science", cfg.ClassificationFor("research"))
	assert.Equal(t, "Product", cfg.ClassificationFor("design"))

	workflows, err := cfg.BuildWorkflows()
	require.NoError(t, err)

	var escalate *domain.Workflow
	for _, w := range workflows {
		if w.ID == "escalate-critical" {
			escalate = w
		}
	}
	require.NotNil(t, escalate)
	assert.True(t, escalate.Enabled)
	assert.False(t, escalate.System)
	assert.Equal(t, domain.CadenceDaily, escalate.Trigger.Cadence)
	assert.Equal(t, "08:30", escalate.Trigger.At)
	require.NotNil(t, escalate.Condition)
	require.Len(t, escalate.Condition.Children, 2)
	assert.Equal(t, domain.CondStatusIsNot, escalate.Condition.Children[1].Kind)
	assert.Equal(t, domain.ActionSetField, escalate.Action.Kind)
}

func TestLoad_RejectsMalformedDefinitions(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing id", `
workflows:
  - name: No id
    trigger: {kind: record_created}
    action: {kind: classify}
`},
		{"duplicate id", `
workflows:
  - id: w1
    name: One
    trigger: {kind: record_created}
    action: {kind: classify}
  - id: w1
    name: Two
    trigger: {kind: record_created}
    action: {kind: classify}
`},
		{"bad trigger time", `
workflows:
  - id: w1
    name: Bad time
    trigger: {kind: schedule, cadence: daily, at: "25:00"}
    action: {kind: classify}
`},
		{"field_changed without fields", `
workflows:
  - id: w1
    name: No fields
    trigger: {kind: field_changed}
    action: {kind: classify}
`},
		{"set_field without field", `
workflows:
  - id: w1
    name: No field
    trigger: {kind: record_created}
    action: {kind: set_field, value: done}
`},
		{"unknown trigger kind", `
workflows:
  - id: w1
    name: Unknown
    trigger: {kind: on_full_moon}
    action: {kind: classify}
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_UnknownConditionKindIsAccepted(t *testing.T) {
	// Condition typos fail closed at evaluation time instead of at load.
	path := writeConfig(t, `
workflows:
  - id: w1
    name: Typo condition
    trigger: {kind: record_created}
    condition: {kind: due_date_pased}
    action: {kind: classify}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Workflows, 1)
}

func TestBuildWorkflows_ReservedSystemID(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workflows = []WorkflowDef{{
		ID: "system-classify-new", Name: "Shadow",
		Trigger: TriggerDef{Kind: "record_created"},
		Action:  ActionDef{Kind: "classify"},
	}}
	_, err := cfg.BuildWorkflows()
	assert.Error(t, err)
}

func TestSystemWorkflows(t *testing.T) {
	workflows := SystemWorkflows()
	require.Len(t, workflows, 3)
	for _, w := range workflows {
		assert.True(t, w.System, w.ID)
		assert.True(t, w.Enabled, w.ID)
	}
}
