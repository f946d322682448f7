package engine

import (
	"fmt"
	"time"

	"github.com/avelara/beacon/internal/domain"
)

// EvaluateCondition evaluates a workflow's condition tree against one
// initiative's current field values. A nil tree is always true. Composite
// nodes require every child to hold and short-circuit on the first false
// child. An unknown node kind fails closed: the result is false and the
// error identifies the malformed node so the caller can skip the workflow
// without aborting its siblings.
func EvaluateCondition(n *domain.ConditionNode, in *domain.Initiative, now time.Time) (bool, error) {
	if n == nil {
		return true, nil
	}
	switch n.Kind {
	case domain.CondAll:
		for i := range n.Children {
			ok, err := EvaluateCondition(&n.Children[i], in, now)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil

	case domain.CondDueDatePassed:
		if in.DueDate == nil {
			return false, nil
		}
		if in.Status == domain.StatusDone || in.Status == domain.StatusAtRisk {
			return false, nil
		}
		return in.DueDate.Before(now), nil

	case domain.CondStatusIs:
		return string(in.Status) == n.Value, nil

	case domain.CondStatusIsNot:
		return string(in.Status) != n.Value, nil

	case domain.CondNumericAbove:
		return in.NumericValue(n.Field) > n.Threshold, nil

	case domain.CondStaleForDays:
		return calendarDaysBetween(in.LastUpdated, now) >= n.Days, nil

	default:
		return false, fmt.Errorf("unknown condition kind %q", n.Kind)
	}
}

// calendarDaysBetween counts whole calendar days from a to b, ignoring
// time of day. Staleness is day-granular, not sub-day.
func calendarDaysBetween(a, b time.Time) int {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}
