// Package config handles workflow and team configuration loading for beacon.
package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/avelara/beacon/internal/domain"
)

// defaultTeamClassifications maps a team name to the classification its
// initiatives receive when left unclassified.
var defaultTeamClassifications = map[string]string{
	"engineering": "Technology",
	"design":      "Product",
	"product":     "Product",
	"marketing":   "Growth",
	"sales":       "Growth",
	"operations":  "Operations",
	"finance":     "Operations",
}

var timeOfDayRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// Config holds the workflow definitions and team classification table.
type Config struct {
	Workflows []WorkflowDef     `yaml:"workflows"`
	Teams     map[string]string `yaml:"teams"`
}

// WorkflowDef is the on-disk shape of a workflow. It mirrors the domain
// types but stays a separate struct so the file format can evolve without
// leaking yaml tags into the domain.
type WorkflowDef struct {
	ID        string        `yaml:"id"`
	Name      string        `yaml:"name"`
	Disabled  bool          `yaml:"disabled"`
	Trigger   TriggerDef    `yaml:"trigger"`
	Condition *ConditionDef `yaml:"condition"`
	Action    ActionDef     `yaml:"action"`
}

// TriggerDef describes when a workflow fires.
type TriggerDef struct {
	Kind    string   `yaml:"kind"`
	Cadence string   `yaml:"cadence"`
	At      string   `yaml:"at"`     // HH:MM, daily and weekly cadences
	Fields  []string `yaml:"fields"` // field_changed triggers
}

// ConditionDef is a node of the condition tree.
type ConditionDef struct {
	Kind      string          `yaml:"kind"`
	Children  []*ConditionDef `yaml:"children"`
	Field     string          `yaml:"field"`
	Value     string          `yaml:"value"`
	Threshold float64         `yaml:"threshold"`
	Days      int             `yaml:"days"`
}

// ActionDef describes the workflow's action.
type ActionDef struct {
	Kind    string `yaml:"kind"`
	Field   string `yaml:"field"`
	Value   string `yaml:"value"`
	Message string `yaml:"message"`
}

// DefaultConfig returns a Config with the built-in team table and no
// user workflows.
func DefaultConfig() Config {
	teams := make(map[string]string, len(defaultTeamClassifications))
	for k, v := range defaultTeamClassifications {
		teams[k] = v
	}
	return Config{Teams: teams}
}

// Load reads workflow configuration from the given path. If the path is
// empty or the file doesn't exist, returns defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read workflow file: %w", err)
			}
			var user Config
			if err := yaml.Unmarshal(data, &user); err != nil {
				return nil, fmt.Errorf("parse workflow file: %w", err)
			}
			cfg.Workflows = user.Workflows
			// User team entries override the built-in table.
			for team, class := range user.Teams {
				cfg.Teams[team] = class
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workflow config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the workflow definitions. Condition kinds are not
// checked here: the evaluator treats unknown kinds as non-matching, so a
// typo disables a workflow instead of breaking startup.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Workflows))
	for i, w := range c.Workflows {
		if w.ID == "" {
			return fmt.Errorf("workflow %d: id is required", i)
		}
		if seen[w.ID] {
			return fmt.Errorf("workflow %q: duplicate id", w.ID)
		}
		seen[w.ID] = true
		if w.Name == "" {
			return fmt.Errorf("workflow %q: name is required", w.ID)
		}
		if err := w.Trigger.validate(w.ID); err != nil {
			return err
		}
		if err := w.Action.validate(w.ID); err != nil {
			return err
		}
	}
	return nil
}

func (t *TriggerDef) validate(workflowID string) error {
	switch domain.TriggerKind(t.Kind) {
	case domain.TriggerSchedule:
		switch domain.Cadence(t.Cadence) {
		case domain.CadenceHourly:
		case domain.CadenceDaily, domain.CadenceWeekly:
			if !timeOfDayRe.MatchString(t.At) {
				return fmt.Errorf("workflow %q: trigger at %q is not HH:MM", workflowID, t.At)
			}
		default:
			return fmt.Errorf("workflow %q: invalid cadence %q", workflowID, t.Cadence)
		}
	case domain.TriggerCreate, domain.TriggerEffortChange:
	case domain.TriggerFieldChange:
		if len(t.Fields) == 0 {
			return fmt.Errorf("workflow %q: field_changed trigger requires fields", workflowID)
		}
	default:
		return fmt.Errorf("workflow %q: invalid trigger kind %q", workflowID, t.Kind)
	}
	return nil
}

func (a *ActionDef) validate(workflowID string) error {
	switch domain.ActionKind(a.Kind) {
	case domain.ActionSetField:
		if a.Field == "" {
			return fmt.Errorf("workflow %q: set_field action requires a field", workflowID)
		}
	case domain.ActionNotifyOwner:
		if a.Message == "" {
			return fmt.Errorf("workflow %q: notify_owner action requires a message", workflowID)
		}
	case domain.ActionClassify:
	default:
		return fmt.Errorf("workflow %q: invalid action kind %q", workflowID, a.Kind)
	}
	return nil
}

// BuildWorkflows converts the loaded definitions into domain workflows,
// prepending the built-in system workflows. User definitions cannot
// shadow a system workflow id.
func (c *Config) BuildWorkflows() ([]*domain.Workflow, error) {
	workflows := SystemWorkflows()
	systemIDs := make(map[string]bool, len(workflows))
	for _, w := range workflows {
		systemIDs[w.ID] = true
	}
	for _, def := range c.Workflows {
		if systemIDs[def.ID] {
			return nil, fmt.Errorf("workflow %q: id is reserved for a system workflow", def.ID)
		}
		workflows = append(workflows, def.toDomain())
	}
	return workflows, nil
}

func (d WorkflowDef) toDomain() *domain.Workflow {
	fields := make([]domain.Field, 0, len(d.Trigger.Fields))
	for _, f := range d.Trigger.Fields {
		fields = append(fields, domain.Field(f))
	}
	return &domain.Workflow{
		ID:      d.ID,
		Name:    d.Name,
		Enabled: !d.Disabled,
		Trigger: domain.TriggerSpec{
			Kind:    domain.TriggerKind(d.Trigger.Kind),
			Cadence: domain.Cadence(d.Trigger.Cadence),
			At:      d.Trigger.At,
			Fields:  fields,
		},
		Condition: d.Condition.toDomain(),
		Action: domain.ActionSpec{
			Kind:    domain.ActionKind(d.Action.Kind),
			Field:   domain.Field(d.Action.Field),
			Value:   d.Action.Value,
			Message: d.Action.Message,
		},
	}
}

func (d *ConditionDef) toDomain() *domain.ConditionNode {
	if d == nil {
		return nil
	}
	node := &domain.ConditionNode{
		Kind:      domain.ConditionKind(d.Kind),
		Field:     domain.Field(d.Field),
		Value:     d.Value,
		Threshold: d.Threshold,
		Days:      d.Days,
	}
	for _, child := range d.Children {
		node.Children = append(node.Children, *child.toDomain())
	}
	return node
}

// ClassificationFor returns the classification for a team, or the
// unclassified sentinel when the team is unknown.
func (c *Config) ClassificationFor(team string) string {
	if class, ok := c.Teams[team]; ok {
		return class
	}
	return domain.ClassificationNone
}

// SystemWorkflows returns the built-in workflows that ship enabled on
// every install. They cannot be removed, only disabled.
func SystemWorkflows() []*domain.Workflow {
	return []*domain.Workflow{
		{
			ID:      "system-overdue-at-risk",
			Name:    "Flag overdue initiatives",
			Enabled: true,
			System:  true,
			Trigger: domain.TriggerSpec{
				Kind:    domain.TriggerSchedule,
				Cadence: domain.CadenceDaily,
				At:      "09:00",
			},
			Condition: &domain.ConditionNode{Kind: domain.CondDueDatePassed},
			Action: domain.ActionSpec{
				Kind:  domain.ActionSetField,
				Field: domain.FieldStatus,
				Value: string(domain.StatusAtRisk),
			},
		},
		{
			ID:      "system-stale-reminder",
			Name:    "Remind owners of stale initiatives",
			Enabled: true,
			System:  true,
			Trigger: domain.TriggerSpec{
				Kind:    domain.TriggerSchedule,
				Cadence: domain.CadenceDaily,
				At:      "09:30",
			},
			Condition: &domain.ConditionNode{
				Kind: domain.CondAll,
				Children: []domain.ConditionNode{
					{Kind: domain.CondStaleForDays, Days: 14},
					{Kind: domain.CondStatusIsNot, Value: string(domain.StatusDone)},
				},
			},
			Action: domain.ActionSpec{
				Kind:    domain.ActionNotifyOwner,
				Message: "No updates in two weeks",
			},
		},
		{
			ID:      "system-classify-new",
			Name:    "Classify new initiatives by owner team",
			Enabled: true,
			System:  true,
			Trigger: domain.TriggerSpec{Kind: domain.TriggerCreate},
			Action:  domain.ActionSpec{Kind: domain.ActionClassify},
		},
	}
}
