package dsp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FihlaTV/qrtone/internal/dsp"
)

func TestHannWindowTapersToZeroAtEdges(t *testing.T) {
	n := 64
	signal := make([]float32, n)
	for i := range signal {
		signal[i] = 1.0
	}
	dsp.HannWindow(signal, n, 0)

	assert.InDelta(t, 0.0, signal[0], 1e-6)
	assert.InDelta(t, 0.0, signal[n-1], 1e-6)
	assert.InDelta(t, 1.0, signal[n/2], 0.02)
}

func TestHannWindowHonoursOffset(t *testing.T) {
	n := 64
	whole := make([]float32, n)
	for i := range whole {
		whole[i] = 1.0
	}
	dsp.HannWindow(whole, n, 0)

	partial := make([]float32, n)
	for i := range partial {
		partial[i] = 1.0
	}
	first := partial[:n/2]
	second := partial[n/2:]
	dsp.HannWindow(first, n, 0)
	dsp.HannWindow(second, n, n/2)

	for i := range whole {
		assert.InDelta(t, whole[i], partial[i], 1e-5)
	}
}

func TestTukeyWindowFlatCentre(t *testing.T) {
	n := 128
	signal := make([]float32, n)
	for i := range signal {
		signal[i] = 1.0
	}
	dsp.TukeyWindow(signal, 0.5, n, 0)

	assert.InDelta(t, 1.0, signal[n/2], 1e-6)
}

func TestQuadraticInterpolationSymmetricPeak(t *testing.T) {
	location, height, _ := dsp.QuadraticInterpolation(1.0, 2.0, 1.0)
	assert.InDelta(t, 0.0, location, 1e-9)
	assert.InDelta(t, 2.0, height, 1e-9)
}

func TestFindPeakLocationOffsetsFromCentre(t *testing.T) {
	got := dsp.FindPeakLocation(1.0, 2.0, 1.0, 100, 10)
	assert.Equal(t, int64(100), got)
}
