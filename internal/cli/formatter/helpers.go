package formatter

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// RelativeDate returns a human-friendly relative date string.
func RelativeDate(t time.Time) string {
	return RelativeDateFrom(t, time.Now())
}

// RelativeDateFrom returns a human-friendly relative date string from a
// reference time.
func RelativeDateFrom(t time.Time, now time.Time) string {
	diff := t.Sub(now)
	days := int(math.Round(diff.Hours() / 24))

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days == -1:
		return "Yesterday"
	case days > 0 && days < 14:
		return fmt.Sprintf("In %dd", days)
	case days > 0 && days < 60:
		return fmt.Sprintf("In %dw", days/7)
	case days > 0:
		return fmt.Sprintf("In %dmo", days/30)
	case days < 0 && days > -14:
		return fmt.Sprintf("%dd ago", -days)
	case days < 0 && days > -60:
		return fmt.Sprintf("%dw ago", -days/7)
	default:
		return fmt.Sprintf("%dmo ago", -days/30)
	}
}

// DueDateStyled returns RelativeDate with urgency coloring: overdue and
// imminent dates in red, the coming week in yellow.
func DueDateStyled(t time.Time) string {
	text := RelativeDate(t)
	days := int(math.Round(time.Until(t).Hours() / 24))

	switch {
	case days < 0 || days <= 2:
		return StyleRed.Render(text)
	case days <= 7:
		return StyleYellow.Render(text)
	default:
		return StyleFg.Render(text)
	}
}

// HumanTimestamp returns a human-friendly relative timestamp string.
func HumanTimestamp(t time.Time) string {
	diff := time.Since(t)
	switch {
	case diff < 0:
		return t.Format("Jan 2, 2006")
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return t.Format("Jan 2, 2006")
	}
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// FormatEffort renders a person-day figure without trailing zeros.
func FormatEffort(v float64) string {
	if v == 0 {
		return Dim("--")
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + "pd"
}
