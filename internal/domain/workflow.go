package domain

import (
	"sync"
	"time"
)

// maxRunLog bounds the per-workflow execution log.
const maxRunLog = 20

// Workflow is a trigger + condition + action automation rule. Once shared
// between the dispatcher ticker and command goroutines, the enabled flag
// and the run log are accessed through the mutex-guarded methods; Enabled
// may still be set directly in composite literals before sharing.
type Workflow struct {
	ID      string
	Name    string
	Enabled bool

	// System workflows ship with the binary and cannot be edited or deleted.
	System bool

	Trigger TriggerSpec

	// Condition is the eligibility tree. Nil means always eligible.
	Condition *ConditionNode

	Action ActionSpec

	mu       sync.Mutex
	runCount int
	runLog   []WorkflowRun
}

// TriggerSpec describes when a workflow becomes a candidate to run.
type TriggerSpec struct {
	Kind    TriggerKind
	Cadence Cadence // schedule triggers only
	At      string  // "HH:MM" wall clock, daily/weekly cadence
	Fields  []Field // field_changed triggers only
}

// ConditionNode is either a composite (all children must hold) or a leaf
// predicate over one initiative's current field values.
type ConditionNode struct {
	Kind     ConditionKind
	Children []ConditionNode

	Field     Field   // numeric_above
	Value     string  // status_is / status_is_not
	Threshold float64 // numeric_above
	Days      int     // stale_for_days
}

// ActionSpec is a workflow's single action.
type ActionSpec struct {
	Kind    ActionKind
	Field   Field  // set_field
	Value   string // set_field
	Message string // notify_owner
}

// WorkflowRun is one entry in a workflow's bounded execution log.
type WorkflowRun struct {
	At           time.Time
	InitiativeID string
	Mutated      bool
	Note         string
}

// WatchesField reports whether a field_changed trigger covers f.
func (t TriggerSpec) WatchesField(f Field) bool {
	for _, w := range t.Fields {
		if w == f {
			return true
		}
	}
	return false
}

// IsEnabled reports whether the workflow may run.
func (w *Workflow) IsEnabled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Enabled
}

// SetEnabled toggles the workflow.
func (w *Workflow) SetEnabled(enabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Enabled = enabled
}

// RecordRun appends to the run log, trimming to the newest maxRunLog entries,
// and bumps the run counter.
func (w *Workflow) RecordRun(run WorkflowRun) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.runCount++
	w.runLog = append(w.runLog, run)
	if len(w.runLog) > maxRunLog {
		w.runLog = w.runLog[len(w.runLog)-maxRunLog:]
	}
}

// TotalRuns reports how many times the workflow has ever run.
func (w *Workflow) TotalRuns() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runCount
}

// Runs returns a copy of the bounded run log, oldest first.
func (w *Workflow) Runs() []WorkflowRun {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]WorkflowRun(nil), w.runLog...)
}
