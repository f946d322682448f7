package domain

import "math"

// Effort review thresholds. An entry is flagged when it deviates from the
// historical average by more than half of that average, and only once at
// least minEffortSamples prior entries exist.
const (
	effortDeviationRatio = 0.5
	minEffortSamples     = 3
)

// ValidationFlag is the derived result of comparing a current-period effort
// entry against the owner's historical average. It is recomputed on demand
// and never persisted on the initiative.
type ValidationFlag struct {
	Flagged    bool
	Entry      float64
	Average    float64
	Deviation  float64 // |entry - average| / average
	SampleSize int
}

// ReviewEffort compares entry against the average of prior entries.
// Too little history means no flag: the average is not yet meaningful.
func ReviewEffort(entry float64, history []float64) ValidationFlag {
	flag := ValidationFlag{Entry: entry, SampleSize: len(history)}
	if len(history) < minEffortSamples {
		return flag
	}
	var sum float64
	for _, h := range history {
		sum += h
	}
	flag.Average = sum / float64(len(history))
	if flag.Average == 0 {
		flag.Flagged = entry != 0
		return flag
	}
	flag.Deviation = math.Abs(entry-flag.Average) / flag.Average
	flag.Flagged = flag.Deviation > effortDeviationRatio
	return flag
}
