// Package peakfinder locates local maxima in a 1-D stream, requiring a
// minimum run of strictly increasing samples before a peak candidate is
// recognised and a minimum run of non-increasing samples before it is
// committed.
package peakfinder

// Finder tracks monotonicity of a pushed value stream and reports when a
// peak has been committed.
type Finder struct {
	minIncreaseCount int
	minDecreaseCount int

	increase      bool
	oldValue      float64
	oldIndex      int64
	added         bool
	lastPeakValue float64
	lastPeakIndex int64
	increaseCount int
	decreaseCount int
}

// New returns a Finder requiring minIncrease strictly-increasing samples
// to flag a candidate peak and minDecrease non-increasing samples to
// commit it. minDecrease <= 1 commits immediately on detection.
func New(minIncrease, minDecrease int) *Finder {
	return &Finder{
		minIncreaseCount: minIncrease,
		minDecreaseCount: minDecrease,
		oldValue:         -99999999999999999.0,
	}
}

// Add pushes one (index, value) sample and reports whether a peak was
// committed by this push.
func (f *Finder) Add(index int64, value float64) bool {
	committed := false
	diff := value - f.oldValue

	switch {
	case diff <= 0 && f.increase:
		if f.increaseCount >= f.minIncreaseCount {
			f.lastPeakIndex = f.oldIndex
			f.lastPeakValue = f.oldValue
			f.added = true
			if f.minDecreaseCount <= 1 {
				committed = true
			}
		}
	case diff > 0 && !f.increase:
		if f.added && f.minDecreaseCount != -1 && f.decreaseCount < f.minDecreaseCount {
			f.lastPeakIndex = 0
			f.added = false
		}
	}

	f.increase = diff > 0
	if f.increase {
		f.increaseCount++
		f.decreaseCount = 0
	} else {
		f.decreaseCount++
		if f.decreaseCount >= f.minDecreaseCount && f.added {
			f.added = false
			committed = true
		}
		f.increaseCount = 0
	}

	f.oldValue = value
	f.oldIndex = index
	return committed
}

// LastPeakIndex returns the index of the most recently committed peak.
func (f *Finder) LastPeakIndex() int64 { return f.lastPeakIndex }

// LastPeakValue returns the value of the most recently committed peak.
func (f *Finder) LastPeakValue() float64 { return f.lastPeakValue }
