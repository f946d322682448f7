package domain

type InitiativeStatus string

const (
	StatusPlanned    InitiativeStatus = "planned"
	StatusInProgress InitiativeStatus = "in_progress"
	StatusAtRisk     InitiativeStatus = "at_risk"
	StatusDone       InitiativeStatus = "done"
	StatusDeleted    InitiativeStatus = "deleted"
)

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

type TaskStatus string

const (
	TaskOpen TaskStatus = "open"
	TaskDone TaskStatus = "done"
)

// Field identifies a tracked initiative field. The set is closed: diffing,
// trigger matching, and action targets all switch exhaustively on it.
type Field string

const (
	FieldTitle           Field = "title"
	FieldStatus          Field = "status"
	FieldPriority        Field = "priority"
	FieldEstimatedEffort Field = "estimated_effort"
	FieldActualEffort    Field = "actual_effort"
	FieldDueDate         Field = "due_date"
	FieldOwner           Field = "owner"
	FieldClassification  Field = "classification"
	FieldRiskNote        Field = "risk_note"
	FieldPushbackCount   Field = "pushback_count"
)

// TrackedFields is the fixed set of fields the audit recorder diffs.
var TrackedFields = []Field{
	FieldStatus, FieldPriority, FieldEstimatedEffort,
	FieldActualEffort, FieldDueDate, FieldRiskNote,
	FieldClassification,
}

type TriggerKind string

const (
	TriggerSchedule     TriggerKind = "schedule"
	TriggerCreate       TriggerKind = "record_created"
	TriggerFieldChange  TriggerKind = "field_changed"
	TriggerEffortChange TriggerKind = "effort_changed"
)

type Cadence string

const (
	CadenceHourly Cadence = "hourly"
	CadenceDaily  Cadence = "daily"
	CadenceWeekly Cadence = "weekly"
)

type ConditionKind string

const (
	CondAll           ConditionKind = "all"
	CondDueDatePassed ConditionKind = "due_date_passed"
	CondStatusIs      ConditionKind = "status_is"
	CondStatusIsNot   ConditionKind = "status_is_not"
	CondNumericAbove  ConditionKind = "numeric_above"
	CondStaleForDays  ConditionKind = "stale_for_days"
)

type ActionKind string

const (
	ActionSetField    ActionKind = "set_field"
	ActionNotifyOwner ActionKind = "notify_owner"
	ActionClassify    ActionKind = "classify"
)

type NotificationKind string

const (
	NoteFieldChanged NotificationKind = "field_changed"
	NoteDueDate      NotificationKind = "due_date"
	NoteEscalation   NotificationKind = "escalation"
	NoteWorkflow     NotificationKind = "workflow"
)

// ClassificationNone is the default classification assigned at creation.
// Automation only ever overwrites this value, never an explicit choice.
const ClassificationNone = "Unclassified"
