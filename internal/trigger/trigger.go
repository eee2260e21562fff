// Package trigger detects the start-of-transmission gate: two reference
// tones played back to back. It watches the SPL of both tones across a
// sliding, 50%-overlapped analysis window and, once all trigger
// conditions line up, reports the sample offset where the symbol region
// after the second tone begins.
package trigger

import (
	"math"

	"github.com/FihlaTV/qrtone/internal/dsp"
	"github.com/FihlaTV/qrtone/internal/goertzel"
	"github.com/FihlaTV/qrtone/internal/peakfinder"
	"github.com/FihlaTV/qrtone/internal/percentile"
)

// BackgroundQuantile is the percentile tracked as the ambient noise
// floor against which a candidate peak's SNR is measured.
const BackgroundQuantile = 0.5

// DefaultSNR is the default minimum peak-over-background level, in dB,
// required to accept a gate trigger.
const DefaultSNR = 15.0

// LevelObserver receives the SPL measured on each of the two gate
// frequencies every time an analysis window closes, for diagnostics or
// level metering. location is the sample position at which the closed
// window began, counted by the analyzer since creation or its last Reset.
type LevelObserver func(location int, splFirst, splSecond float64)

// Analyzer runs the dual-tone gate trigger over a stream of audio
// samples pushed incrementally through ProcessSamples.
type Analyzer struct {
	sampleRate    float64
	triggerSNR    float64
	gateLength    int
	windowAnalyze int
	windowOffset  int

	frequencies [2]float64

	processedWindowAlpha int
	processedWindowBeta  int

	analyzersAlpha [2]*goertzel.Goertzel
	analyzersBeta  [2]*goertzel.Goertzel

	background *percentile.Estimator
	splHistory [2]*ring
	peaks      *peakfinder.Finder

	totalProcessed    int64
	firstToneLocation int64

	LevelObserver LevelObserver
}

// New builds an Analyzer for the given pair of gate frequencies, each
// gate lasting gateLength samples at sampleRate, triggering once a
// candidate peak exceeds the noise floor by triggerSNR decibels.
func New(sampleRate float64, gateLength int, gateFrequencies [2]float64, triggerSNR float64) *Analyzer {
	a := &Analyzer{
		sampleRate:    sampleRate,
		triggerSNR:    triggerSNR,
		gateLength:    gateLength,
		windowAnalyze: gateLength / 3,
		frequencies:   gateFrequencies,
	}
	a.windowOffset = a.windowAnalyze / 2
	a.background = percentile.New(BackgroundQuantile)

	historyLength := (gateLength * 3) / a.windowOffset
	for i := 0; i < 2; i++ {
		a.analyzersAlpha[i] = goertzel.New(sampleRate, gateFrequencies[i], a.windowAnalyze)
		a.analyzersBeta[i] = goertzel.New(sampleRate, gateFrequencies[i], a.windowAnalyze)
		a.splHistory[i] = newRing(historyLength)
	}

	slopeWindows := maxInt(1, gateLength/a.windowOffset/2-1)
	a.peaks = peakfinder.New(slopeWindows, slopeWindows)
	a.firstToneLocation = -1
	return a
}

// Reset clears all analyzer state so it is ready to search for a fresh
// gate from the next pushed sample.
func (a *Analyzer) Reset() {
	a.firstToneLocation = -1
	a.peaks = peakfinder.New(maxInt(1, a.gateLength/a.windowOffset/2-1), maxInt(1, a.gateLength/a.windowOffset/2-1))
	a.processedWindowAlpha = 0
	a.processedWindowBeta = 0
	a.totalProcessed = 0
	for i := 0; i < 2; i++ {
		a.analyzersAlpha[i].Reset()
		a.analyzersBeta[i].Reset()
		a.splHistory[i].clear()
	}
}

// FirstToneLocation returns the sample offset (counted, like
// TotalProcessed, since creation or the last Reset) where the symbol
// region after the second gate tone begins, once a trigger has fired,
// or -1 while still searching.
func (a *Analyzer) FirstToneLocation() int64 { return a.firstToneLocation }

// TotalProcessed returns the count of samples pushed so far.
func (a *Analyzer) TotalProcessed() int64 { return a.totalProcessed }

// MaximumWindowLength returns the largest sample count that can safely
// be pushed to ProcessSamples before an analysis window closes on
// either the alpha or beta stream.
func (a *Analyzer) MaximumWindowLength() int {
	return minInt(a.windowAnalyze-a.processedWindowAlpha, a.windowAnalyze-a.processedWindowBeta)
}

// ProcessSamples pushes one chunk of audio through both the alpha and
// (once primed) beta half-overlapped analysis streams.
func (a *Analyzer) ProcessSamples(samples []float32) {
	samplesAlpha := append([]float32(nil), samples...)
	a.process(samplesAlpha, &a.processedWindowAlpha, a.analyzersAlpha)

	length := int64(len(samples))
	switch {
	case a.totalProcessed > int64(a.windowOffset):
		samplesBeta := append([]float32(nil), samples...)
		a.process(samplesBeta, &a.processedWindowBeta, a.analyzersBeta)
	case int64(a.windowOffset)-a.totalProcessed < length:
		from := int(int64(a.windowOffset) - a.totalProcessed)
		samplesBeta := append([]float32(nil), samples[from:]...)
		a.process(samplesBeta, &a.processedWindowBeta, a.analyzersBeta)
	}

	a.totalProcessed += length
}

func (a *Analyzer) process(samples []float32, windowProcessed *int, analyzers [2]*goertzel.Goertzel) {
	processed := 0
	for a.firstToneLocation == -1 && processed < len(samples) {
		toProcess := minInt(len(samples)-processed, a.windowAnalyze-*windowProcessed)
		chunk := samples[processed : processed+toProcess]
		dsp.HannWindow(chunk, a.windowAnalyze, *windowProcessed)
		for _, g := range analyzers {
			g.ProcessSamples(chunk)
		}

		processed += toProcess
		*windowProcessed += toProcess

		if *windowProcessed != a.windowAnalyze {
			continue
		}
		*windowProcessed = 0

		var splLevels [2]float64
		for i, g := range analyzers {
			spl := 20 * math.Log10(g.ComputeRMS())
			splLevels[i] = spl
			a.splHistory[i].add(spl)
		}
		location := a.totalProcessed + int64(processed) - int64(a.windowAnalyze)
		if a.LevelObserver != nil {
			a.LevelObserver(int(location), splLevels[0], splLevels[1])
		}
		a.background.Add(splLevels[1])

		if !a.peaks.Add(location, splLevels[1]) {
			continue
		}

		elementIndex := a.peaks.LastPeakIndex()
		elementValue := a.peaks.LastPeakValue()
		backgroundNoise := a.background.Result()
		if elementValue <= backgroundNoise+a.triggerSNR {
			continue
		}

		peakIndex := a.splHistory[1].size() - 1 - int(location/int64(a.windowOffset)-elementIndex/int64(a.windowOffset))
		if peakIndex < 0 || peakIndex >= a.splHistory[0].size() {
			continue
		}
		if a.splHistory[0].get(peakIndex) >= elementValue-a.triggerSNR {
			continue
		}

		firstPeakIndex := peakIndex - a.gateLength/a.windowOffset
		if firstPeakIndex < 0 || firstPeakIndex >= a.splHistory[0].size() {
			continue
		}
		if a.splHistory[0].get(firstPeakIndex) <= elementValue-a.triggerSNR {
			continue
		}
		if a.splHistory[1].get(firstPeakIndex) >= elementValue-a.triggerSNR {
			continue
		}

		peakLocation := dsp.FindPeakLocation(
			a.splHistory[1].get(peakIndex-1),
			a.splHistory[1].get(peakIndex),
			a.splHistory[1].get(peakIndex+1),
			elementIndex, a.windowOffset)
		a.firstToneLocation = peakLocation + int64(a.gateLength/2) + int64(a.windowOffset)
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
