package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReviewEffort_TooLittleHistory(t *testing.T) {
	flag := ReviewEffort(40, []float64{8, 8})
	assert.False(t, flag.Flagged)
	assert.Equal(t, 2, flag.SampleSize)
}

func TestReviewEffort_WithinBand(t *testing.T) {
	flag := ReviewEffort(10, []float64{8, 9, 10, 11})
	assert.False(t, flag.Flagged)
	assert.InDelta(t, 9.5, flag.Average, 0.001)
}

func TestReviewEffort_FlagsOutlier(t *testing.T) {
	flag := ReviewEffort(40, []float64{8, 9, 10})
	assert.True(t, flag.Flagged)
	assert.Greater(t, flag.Deviation, 0.5)
}

func TestReviewEffort_ZeroAverage(t *testing.T) {
	assert.True(t, ReviewEffort(5, []float64{0, 0, 0}).Flagged)
	assert.False(t, ReviewEffort(0, []float64{0, 0, 0}).Flagged)
}
