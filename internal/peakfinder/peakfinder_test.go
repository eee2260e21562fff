package peakfinder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FihlaTV/qrtone/internal/peakfinder"
)

func TestFinderCommitsSinglePeak(t *testing.T) {
	f := peakfinder.New(2, 2)
	values := []float64{0, 1, 2, 3, 2, 1, 0, 0, 0}

	var committed bool
	for i, v := range values {
		if f.Add(int64(i), v) {
			committed = true
		}
	}

	assert.True(t, committed)
	assert.Equal(t, int64(3), f.LastPeakIndex())
	assert.Equal(t, 3.0, f.LastPeakValue())
}

func TestFinderIgnoresShortRuns(t *testing.T) {
	f := peakfinder.New(5, 5)
	values := []float64{0, 1, 2, 1, 0, 1, 2, 1, 0}

	var committed bool
	for i, v := range values {
		if f.Add(int64(i), v) {
			committed = true
		}
	}

	assert.False(t, committed, "runs shorter than minIncrease/minDecrease should not commit a peak")
}

func TestFinderCommitsImmediatelyWhenMinDecreaseIsOne(t *testing.T) {
	f := peakfinder.New(1, 1)
	values := []float64{0, 5, 3}

	var committedAt = -1
	for i, v := range values {
		if f.Add(int64(i), v) {
			committedAt = i
		}
	}

	assert.Equal(t, 2, committedAt)
	assert.Equal(t, 5.0, f.LastPeakValue())
}
