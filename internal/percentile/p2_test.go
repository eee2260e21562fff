package percentile_test

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FihlaTV/qrtone/internal/percentile"
)

func TestMedianApproximatesSortedMiddle(t *testing.T) {
	values := []float64{15, 20, 35, 40, 50, 5, 55, 30, 25, 45, 10}
	e := percentile.New(0.5)
	for _, v := range values {
		e.Add(v)
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	want := sorted[len(sorted)/2]

	assert.InDelta(t, want, e.Result(), 10)
}

func TestEstimatorTracksConstantStream(t *testing.T) {
	e := percentile.New(0.5)
	for i := 0; i < 50; i++ {
		e.Add(42.0)
	}
	assert.InDelta(t, 42.0, e.Result(), 1e-9)
}

func TestEstimatorMonotonicWithShiftingLevel(t *testing.T) {
	e := percentile.New(0.5)
	for i := 0; i < 200; i++ {
		e.Add(10.0)
	}
	low := e.Result()
	for i := 0; i < 200; i++ {
		e.Add(90.0)
	}
	high := e.Result()
	assert.Greater(t, high, low)
}

func TestResultQuantileDuringWarmup(t *testing.T) {
	e := percentile.New(0.5)
	e.Add(1)
	e.Add(2)
	result := e.Result()
	assert.False(t, math.IsNaN(result))
}
