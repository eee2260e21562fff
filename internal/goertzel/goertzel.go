// Package goertzel implements the generalized Goertzel filter used to
// measure per-bin spectral energy over a fixed-size window, both for gate
// detection and for symbol demodulation.
package goertzel

import "math"

const twoPi = 2 * math.Pi

// Goertzel is a streaming single-bin DFT magnitude estimator. Samples are
// pushed incrementally via ProcessSamples; ComputeRMS closes the
// recurrence and resets the filter for its next window.
type Goertzel struct {
	sampleRate    float64
	windowSize    int
	pikTerm       float64
	cosPikTerm2   float64
	s0, s1, s2    float64
	processed     int
	lastSample    float64
}

// New precomputes the filter coefficients for a target frequency over a
// window of windowSize samples at sampleRate.
func New(sampleRate, frequency float64, windowSize int) *Goertzel {
	g := &Goertzel{sampleRate: sampleRate, windowSize: windowSize}
	samplingRateFactor := float64(windowSize) / sampleRate
	g.pikTerm = twoPi * (frequency * samplingRateFactor) / float64(windowSize)
	g.cosPikTerm2 = math.Cos(g.pikTerm) * 2.0
	g.Reset()
	return g
}

// Reset clears the recurrence state and the processed-sample counter.
func (g *Goertzel) Reset() {
	g.s0, g.s1, g.s2 = 0, 0, 0
	g.processed = 0
	g.lastSample = 0
}

// ProcessedSamples reports how many samples of the current window have
// been consumed so far.
func (g *Goertzel) ProcessedSamples() int { return g.processed }

// WindowSize returns the configured window length in samples.
func (g *Goertzel) WindowSize() int { return g.windowSize }

// ProcessSamples folds samples into the recurrence. Pushes beyond the
// window's remaining capacity are ignored; the caller is expected to
// never exceed that capacity (see ProcessedSamples).
func (g *Goertzel) ProcessSamples(samples []float32) {
	if g.processed+len(samples) > g.windowSize {
		return
	}
	size := len(samples)
	if g.processed+len(samples) == g.windowSize {
		size = len(samples) - 1
		g.lastSample = float64(samples[size])
	}
	for i := 0; i < size; i++ {
		g.s0 = float64(samples[i]) + g.cosPikTerm2*g.s1 - g.s2
		g.s2 = g.s1
		g.s1 = g.s0
	}
	g.processed += len(samples)
}

// ComputeRMS closes the recurrence with the window's final sample and
// returns the RMS amplitude at the target frequency. It resets the
// filter so it is ready for the next window.
func (g *Goertzel) ComputeRMS() float64 {
	g.s0 = g.lastSample + g.cosPikTerm2*g.s1 - g.s2

	cc := cmplxExp(complex(0, -g.pikTerm))
	parta := complex(g.s0, 0) - complex(g.s1, 0)*cc
	partb := cmplxExp(complex(0, -g.pikTerm*(float64(g.windowSize)-1)))
	y := parta * partb

	g.Reset()
	return math.Sqrt(real(y)*real(y)+imag(y)*imag(y)) * math.Sqrt2 / float64(g.windowSize)
}

func cmplxExp(z complex128) complex128 {
	r := math.Exp(real(z))
	return complex(r*math.Cos(imag(z)), r*math.Sin(imag(z)))
}
