package goertzel_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FihlaTV/qrtone/internal/goertzel"
)

func sineWave(sampleRate, frequency, amplitude float64, n int) []float32 {
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(amplitude * math.Sin(2*math.Pi*frequency*float64(i)/sampleRate))
	}
	return samples
}

func TestComputeRMSDetectsTargetFrequency(t *testing.T) {
	const sampleRate = 44100.0
	const frequency = 1720.0
	const windowSize = 256
	const amplitude = 0.8

	g := goertzel.New(sampleRate, frequency, windowSize)
	g.ProcessSamples(sineWave(sampleRate, frequency, amplitude, windowSize))
	rms := g.ComputeRMS()

	require.InDelta(t, amplitude/math.Sqrt2, rms, 0.05)
}

func TestComputeRMSRejectsOffTargetFrequency(t *testing.T) {
	const sampleRate = 44100.0
	const windowSize = 256

	onTarget := goertzel.New(sampleRate, 1720.0, windowSize)
	onTarget.ProcessSamples(sineWave(sampleRate, 2500.0, 0.8, windowSize))
	rms := onTarget.ComputeRMS()

	assert.Less(t, rms, 0.2)
}

func TestProcessSamplesAcceptsChunkedInput(t *testing.T) {
	const sampleRate = 44100.0
	const frequency = 1720.0
	const windowSize = 256
	const amplitude = 0.5

	whole := sineWave(sampleRate, frequency, amplitude, windowSize)

	single := goertzel.New(sampleRate, frequency, windowSize)
	single.ProcessSamples(whole)
	wantRMS := single.ComputeRMS()

	chunked := goertzel.New(sampleRate, frequency, windowSize)
	for i := 0; i < len(whole); i += 37 {
		end := i + 37
		if end > len(whole) {
			end = len(whole)
		}
		chunked.ProcessSamples(whole[i:end])
	}
	gotRMS := chunked.ComputeRMS()

	assert.InDelta(t, wantRMS, gotRMS, 1e-9)
}

func TestResetClearsProcessedCounter(t *testing.T) {
	g := goertzel.New(44100.0, 1720.0, 128)
	g.ProcessSamples(make([]float32, 64))
	assert.Equal(t, 64, g.ProcessedSamples())
	g.Reset()
	assert.Equal(t, 0, g.ProcessedSamples())
}
