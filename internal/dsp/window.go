// Package dsp holds small signal-processing helpers — windowing
// functions and peak interpolation — shared by the trigger analyzer, the
// symbol analyzer, and the transmitter.
package dsp

import "math"

const TwoPi = 2 * math.Pi

// HannWindow multiplies signal in place by a Hann window of the given
// total windowLength, honouring an in-progress offset when signal is a
// partial slice of that window.
func HannWindow(signal []float32, windowLength, offset int) {
	for i := 0; i < len(signal) && offset+i < windowLength; i++ {
		v := float64(signal[i]) * (0.5 - 0.5*math.Cos(TwoPi*float64(i+offset)/float64(windowLength-1)))
		signal[i] = float32(v)
	}
}

// TukeyWindow multiplies signal in place by a Tukey window (flat centre,
// cosine tapers of parameter alpha) of the given total windowLength,
// honouring an in-progress offset.
func TukeyWindow(signal []float32, alpha float64, windowLength, offset int) {
	indexBeginFlat := int(math.Floor(alpha * float64(windowLength-1) / 2.0))
	indexEndFlat := windowLength - indexBeginFlat

	for i := offset; i < indexBeginFlat+1 && i-offset < len(signal); i++ {
		w := 0.5 * (1 + math.Cos(math.Pi*(-1+2.0*float64(i)/alpha/float64(windowLength-1))))
		signal[i-offset] *= float32(w)
	}

	start := offset
	if indexEndFlat-1 > start {
		start = indexEndFlat - 1
	}
	for i := start; i < windowLength && i-offset < len(signal); i++ {
		w := 0.5 * (1 + math.Cos(math.Pi*(-2.0/alpha+1+2.0*float64(i)/alpha/float64(windowLength-1))))
		signal[i-offset] *= float32(w)
	}
}

// QuadraticInterpolation fits a parabola through three equally spaced
// points and returns the peak location (relative to the centre point, in
// [-1,1] units of point spacing), height, and half-curvature.
func QuadraticInterpolation(p0, p1, p2 float64) (location, height, halfCurvature float64) {
	location = (p2 - p0) / (2.0 * (2.0*p1 - p2 - p0))
	height = p1 - 0.25*(p0-p2)*location
	halfCurvature = 0.5 * (p0 - 2.0*p1 + p2)
	return location, height, halfCurvature
}

// FindPeakLocation evaluates the x location of the gaussian/parabolic
// peak described by three samples around p1Location spaced windowLength
// apart.
func FindPeakLocation(p0, p1, p2 float64, p1Location int64, windowLength int) int64 {
	location, _, _ := QuadraticInterpolation(p0, p1, p2)
	return p1Location + int64(location*float64(windowLength))
}
