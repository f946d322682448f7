package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Initiative is the tracked work item: the unit mutated by local edits,
// workflow actions, and remote broadcasts.
type Initiative struct {
	ID              string
	Title           string
	Status          InitiativeStatus
	Priority        Priority
	EstimatedEffort float64 // person-days
	ActualEffort    float64
	DueDate         *time.Time
	OwnerID         string
	Classification  string
	RiskNote        string

	// PushbackCount counts due-date moves to a later date. Past a threshold
	// the audit recorder emits an escalation notification.
	PushbackCount int

	Tasks   []Task
	History []ChangeEntry

	CreatedAt   time.Time
	LastUpdated time.Time
	DeletedAt   *time.Time
}

// Task is a child work item owned by an initiative.
type Task struct {
	ID              string
	InitiativeID    string
	Title           string
	Status          TaskStatus
	EstimatedEffort float64
	ActualEffort    float64
	Tags            []string
	CreatedAt       time.Time
	LastUpdated     time.Time
}

// Deleted reports whether the initiative is soft-deleted.
func (in *Initiative) Deleted() bool {
	return in.Status == StatusDeleted
}

// SoftDelete marks the initiative deleted without removing it.
func (in *Initiative) SoftDelete(now time.Time) {
	in.Status = StatusDeleted
	in.DeletedAt = &now
	in.LastUpdated = now
}

// Restore clears a soft delete, returning the initiative to planned state.
func (in *Initiative) Restore(now time.Time) {
	in.Status = StatusPlanned
	in.DeletedAt = nil
	in.LastUpdated = now
}

// Clone returns a deep copy. Workflow actions run against clones so that one
// workflow's partial mutation never leaks into a sibling's view.
func (in *Initiative) Clone() *Initiative {
	out := *in
	if in.DueDate != nil {
		d := *in.DueDate
		out.DueDate = &d
	}
	if in.DeletedAt != nil {
		d := *in.DeletedAt
		out.DeletedAt = &d
	}
	out.Tasks = make([]Task, len(in.Tasks))
	for i, t := range in.Tasks {
		out.Tasks[i] = t
		out.Tasks[i].Tags = append([]string(nil), t.Tags...)
	}
	out.History = append([]ChangeEntry(nil), in.History...)
	return &out
}

// ValueOf renders a tracked field as a string for change entries and display.
func (in *Initiative) ValueOf(f Field) string {
	switch f {
	case FieldTitle:
		return in.Title
	case FieldStatus:
		return string(in.Status)
	case FieldPriority:
		return string(in.Priority)
	case FieldEstimatedEffort:
		return strconv.FormatFloat(in.EstimatedEffort, 'f', -1, 64)
	case FieldActualEffort:
		return strconv.FormatFloat(in.ActualEffort, 'f', -1, 64)
	case FieldDueDate:
		if in.DueDate == nil {
			return ""
		}
		return in.DueDate.Format("2006-01-02")
	case FieldOwner:
		return in.OwnerID
	case FieldClassification:
		return in.Classification
	case FieldRiskNote:
		return in.RiskNote
	default:
		return ""
	}
}

// SetValue parses raw and assigns it to the named field. It is the single
// write path for string-sourced edits (CLI flags, remote payloads).
func (in *Initiative) SetValue(f Field, raw string) error {
	switch f {
	case FieldTitle:
		in.Title = raw
	case FieldStatus:
		in.Status = InitiativeStatus(raw)
	case FieldPriority:
		in.Priority = Priority(raw)
	case FieldEstimatedEffort, FieldActualEffort:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", f, raw, err)
		}
		if f == FieldEstimatedEffort {
			in.EstimatedEffort = v
		} else {
			in.ActualEffort = v
		}
	case FieldDueDate:
		if raw == "" {
			in.DueDate = nil
			return nil
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return fmt.Errorf("parsing due date %q: %w", raw, err)
		}
		in.DueDate = &t
	case FieldOwner:
		in.OwnerID = raw
	case FieldClassification:
		in.Classification = raw
	case FieldRiskNote:
		in.RiskNote = raw
	default:
		return fmt.Errorf("unknown field %q", f)
	}
	return nil
}

// NumericValue returns the field as a number, treating a missing or
// non-numeric field as 0.
func (in *Initiative) NumericValue(f Field) float64 {
	switch f {
	case FieldEstimatedEffort:
		return in.EstimatedEffort
	case FieldActualEffort:
		return in.ActualEffort
	case FieldPushbackCount:
		return float64(in.PushbackCount)
	default:
		return 0
	}
}

// DisplayID returns a short identifier for list output.
func (in *Initiative) DisplayID() string {
	if len(in.ID) >= 8 {
		return in.ID[:8]
	}
	return in.ID
}
