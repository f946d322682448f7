package formatter

import (
	"fmt"
	"strings"

	"github.com/avelara/beacon/internal/domain"
)

// FormatInitiativeList renders the dashboard table of initiatives.
func FormatInitiativeList(items []*domain.Initiative) string {
	headers := []string{"ID", "Title", "Status", "Priority", "Due", "Owner", "Class"}
	rows := make([][]string, 0, len(items))
	for _, in := range items {
		due := Dim("--")
		if in.DueDate != nil {
			due = DueDateStyled(*in.DueDate)
		}
		rows = append(rows, []string{
			TruncID(in.ID),
			StyleFg.Render(in.Title),
			StatusPill(in.Status),
			PriorityBadge(in.Priority),
			due,
			StyleFg.Render(in.OwnerID),
			ClassificationBadge(in.Classification),
		})
	}
	return RenderTable(headers, rows)
}

// FormatInitiativeInspect renders the detail view of one initiative.
func FormatInitiativeInspect(in *domain.Initiative) string {
	var b strings.Builder

	b.WriteString(Header(in.Title))
	b.WriteString("\n\n")

	write := func(label, value string) {
		b.WriteString(fmt.Sprintf("%s %s\n", Dim(label+":"), value))
	}
	write("ID", in.ID)
	write("Status", StatusPill(in.Status))
	write("Priority", PriorityBadge(in.Priority))
	write("Classification", ClassificationBadge(in.Classification))
	write("Owner", in.OwnerID)
	write("Estimated", FormatEffort(in.EstimatedEffort))
	write("Actual", FormatEffort(in.ActualEffort))
	if in.DueDate != nil {
		write("Due", fmt.Sprintf("%s %s", in.DueDate.Format("2006-01-02"), DueDateStyled(*in.DueDate)))
	} else {
		write("Due", Dim("--"))
	}
	if in.PushbackCount > 0 {
		count := fmt.Sprintf("%d", in.PushbackCount)
		if in.PushbackCount > 2 {
			count = StyleRed.Render(count + " (escalated)")
		}
		write("Pushbacks", count)
	}
	if in.RiskNote != "" {
		write("Risk", StyleYellow.Render(in.RiskNote))
	}
	if in.Deleted() {
		write("Deleted", HumanTimestamp(*in.DeletedAt))
	}

	if len(in.Tasks) > 0 {
		b.WriteString("\n")
		b.WriteString(Header("Tasks"))
		b.WriteString("\n\n")
		for _, t := range in.Tasks {
			mark := StyleBlue.Render("○")
			if t.Status == domain.TaskDone {
				mark = StyleDim.Render("✔")
			}
			line := fmt.Sprintf("%s %s", mark, t.Title)
			if len(t.Tags) > 0 {
				line += " " + Dim("["+strings.Join(t.Tags, ", ")+"]")
			}
			b.WriteString(line + "\n")
		}
	}

	return b.String()
}

// FormatHistory renders an initiative's change log, oldest first.
func FormatHistory(entries []domain.ChangeEntry) string {
	if len(entries) == 0 {
		return Dim("No recorded changes.")
	}
	headers := []string{"When", "Field", "From", "To", "By"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		actor := e.ActorID
		if e.SourceID != "" {
			actor += Dim(" (via " + e.SourceID[:min(8, len(e.SourceID))] + ")")
		}
		rows = append(rows, []string{
			Dim(e.At.Format("2006-01-02 15:04")),
			StyleFg.Render(string(e.Field)),
			orDash(e.OldValue),
			orDash(e.NewValue),
			actor,
		})
	}
	return RenderTable(headers, rows)
}

// FormatWorkflowList renders the configured workflow set.
func FormatWorkflowList(workflows []*domain.Workflow) string {
	headers := []string{"ID", "Name", "Trigger", "Enabled", "Runs"}
	rows := make([][]string, 0, len(workflows))
	for _, w := range workflows {
		enabled := StyleGreen.Render("yes")
		if !w.IsEnabled() {
			enabled = StyleDim.Render("no")
		}
		name := w.Name
		if w.System {
			name += " " + Dim("(system)")
		}
		rows = append(rows, []string{
			StyleFg.Render(w.ID),
			name,
			Dim(describeTrigger(w.Trigger)),
			enabled,
			fmt.Sprintf("%d", w.TotalRuns()),
		})
	}
	return RenderTable(headers, rows)
}

// FormatWorkflowInspect renders one workflow with its recent run log.
func FormatWorkflowInspect(w *domain.Workflow) string {
	var b strings.Builder
	b.WriteString(Header(w.Name))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%s %s\n", Dim("Trigger:"), describeTrigger(w.Trigger)))
	b.WriteString(fmt.Sprintf("%s %d\n", Dim("Total runs:"), w.TotalRuns()))

	runs := w.Runs()
	if len(runs) == 0 {
		b.WriteString("\n" + Dim("No runs recorded yet.") + "\n")
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(Header("Recent runs"))
	b.WriteString("\n\n")
	for _, run := range runs {
		outcome := Dim("matched, no change")
		if run.Mutated {
			outcome = StyleGreen.Render("mutated record")
		}
		if run.Note != "" {
			outcome = StyleRed.Render(run.Note)
		}
		b.WriteString(fmt.Sprintf("%s  %s  %s\n",
			Dim(run.At.Format("2006-01-02 15:04")), TruncID(run.InitiativeID), outcome))
	}
	return b.String()
}

// FormatNotifications renders a user's notification inbox, newest first.
func FormatNotifications(notes []*domain.Notification) string {
	if len(notes) == 0 {
		return Dim("Inbox empty.")
	}
	var b strings.Builder
	for _, n := range notes {
		marker := StyleYellow.Render("●")
		msg := StyleFg.Render(n.Message)
		if n.Read() {
			marker = Dim("○")
			msg = Dim(n.Message)
		}
		b.WriteString(fmt.Sprintf("%s %s  %s %s\n",
			marker, msg, Dim(HumanTimestamp(n.CreatedAt)), TruncID(n.ID)))
	}
	return b.String()
}

// FormatEffortFlag renders the effort review verdict.
func FormatEffortFlag(flag domain.ValidationFlag) string {
	if flag.SampleSize < 3 {
		return Dim(fmt.Sprintf("Not enough history to review (%d prior entries).", flag.SampleSize))
	}
	if !flag.Flagged {
		return StyleGreen.Render(fmt.Sprintf("Effort %.1fpd is in line with the %.1fpd average.",
			flag.Entry, flag.Average))
	}
	return StyleRed.Render(fmt.Sprintf("Effort %.1fpd deviates %.0f%% from the %.1fpd average.",
		flag.Entry, flag.Deviation*100, flag.Average))
}

func describeTrigger(t domain.TriggerSpec) string {
	switch t.Kind {
	case domain.TriggerSchedule:
		if t.Cadence == domain.CadenceHourly {
			return "every hour"
		}
		return fmt.Sprintf("%s at %s", t.Cadence, t.At)
	case domain.TriggerCreate:
		return "on record creation"
	case domain.TriggerFieldChange:
		parts := make([]string, 0, len(t.Fields))
		for _, f := range t.Fields {
			parts = append(parts, string(f))
		}
		return "on change of " + strings.Join(parts, ", ")
	case domain.TriggerEffortChange:
		return "on effort change"
	default:
		return string(t.Kind)
	}
}

func orDash(v string) string {
	if v == "" {
		return Dim("--")
	}
	return StyleFg.Render(v)
}
