// Package percentile implements the P² algorithm (Jain & Chlamtac, 1985)
// for estimating a streaming quantile without storing observations. The
// trigger analyzer uses it to track the background noise floor.
package percentile

import "sort"

// Estimator tracks a single quantile across an unbounded stream of
// samples using five markers: the two extremes plus three around the
// quantile given to New.
type Estimator struct {
	count        int
	markerCount  int
	quantile     []float64 // dn
	desiredPos   []float64 // np
	actualPos    []int     // n
	heights      []float64 // q
}

// New returns an Estimator that tracks quantile q (0 <= q <= 1).
func New(q float64) *Estimator {
	e := &Estimator{}
	e.addEndMarkers()
	if q >= 0 && q <= 1 {
		e.addQuantile(q)
	}
	return e
}

func (e *Estimator) addEndMarkers() {
	e.markerCount = 2
	e.heights = make([]float64, 2)
	e.quantile = []float64{0.0, 1.0}
	e.desiredPos = make([]float64, 2)
	e.actualPos = make([]int, 2)
	e.updateMarkers()
}

func (e *Estimator) updateMarkers() {
	sort.Float64s(e.quantile)
	for i := range e.quantile {
		e.desiredPos[i] = float64(e.markerCount-1)*e.quantile[i] + 1
	}
}

func (e *Estimator) allocateMarkers(n int) int {
	index := e.markerCount
	e.heights = append(e.heights, make([]float64, n)...)
	e.quantile = append(e.quantile, make([]float64, n)...)
	e.desiredPos = append(e.desiredPos, make([]float64, n)...)
	e.actualPos = append(e.actualPos, make([]int, n)...)
	e.markerCount += n
	return index
}

func (e *Estimator) addQuantile(q float64) {
	index := e.allocateMarkers(3)
	e.quantile[index] = q / 2.0
	e.quantile[index+1] = q
	e.quantile[index+2] = (1.0 + q) / 2.0
	e.updateMarkers()
}

func sign(d float64) int {
	if d >= 0 {
		return 1
	}
	return -1
}

func (e *Estimator) linear(i, d int) float64 {
	return e.heights[i] + float64(d)*(e.heights[i+d]-e.heights[i])/float64(e.actualPos[i+d]-e.actualPos[i])
}

func (e *Estimator) parabolic(i, d int) float64 {
	dd := float64(d)
	return e.heights[i] + dd/float64(e.actualPos[i+1]-e.actualPos[i-1])*
		(float64(e.actualPos[i]-e.actualPos[i-1]+d)*(e.heights[i+1]-e.heights[i])/float64(e.actualPos[i+1]-e.actualPos[i])+
			float64(e.actualPos[i+1]-e.actualPos[i]-d)*(e.heights[i]-e.heights[i-1])/float64(e.actualPos[i]-e.actualPos[i-1]))
}

// Add folds one observation into the estimator.
func (e *Estimator) Add(data float64) {
	if e.count >= e.markerCount {
		e.count++

		k := 0
		switch {
		case data < e.heights[0]:
			e.heights[0] = data
			k = 1
		case data >= e.heights[e.markerCount-1]:
			e.heights[e.markerCount-1] = data
			k = e.markerCount - 1
		default:
			for i := 1; i < e.markerCount; i++ {
				if data < e.heights[i] {
					k = i
					break
				}
			}
		}

		for i := k; i < e.markerCount; i++ {
			e.actualPos[i]++
			e.desiredPos[i] += e.quantile[i]
		}
		for i := 0; i < k; i++ {
			e.desiredPos[i] += e.quantile[i]
		}

		for i := 1; i < e.markerCount-1; i++ {
			d := e.desiredPos[i] - float64(e.actualPos[i])
			if (d >= 1.0 && e.actualPos[i+1]-e.actualPos[i] > 1) || (d <= -1.0 && e.actualPos[i-1]-e.actualPos[i] < -1) {
				s := sign(d)
				newQ := e.parabolic(i, s)
				if e.heights[i-1] < newQ && newQ < e.heights[i+1] {
					e.heights[i] = newQ
				} else {
					e.heights[i] = e.linear(i, s)
				}
				e.actualPos[i] += s
			}
		}
	} else {
		e.heights[e.count] = data
		e.count++
		if e.count == e.markerCount {
			sort.Float64s(e.heights)
			for i := range e.actualPos {
				e.actualPos[i] = i + 1
			}
		}
	}
}

// ResultQuantile returns the estimate for the given quantile (which must
// be one that was registered via New).
func (e *Estimator) ResultQuantile(quantile float64) float64 {
	if e.count < e.markerCount {
		heights := append([]float64(nil), e.heights[:e.count]...)
		sort.Float64s(heights)
		closest := 1
		for i := 2; i < e.count; i++ {
			if abs(float64(i)/float64(e.count)-quantile) < abs(float64(closest)/float64(e.markerCount)-quantile) {
				closest = i
			}
		}
		if closest >= len(heights) {
			closest = len(heights) - 1
		}
		return heights[closest]
	}
	closest := 1
	for i := 2; i < e.markerCount-1; i++ {
		if abs(e.quantile[i]-quantile) < abs(e.quantile[closest]-quantile) {
			closest = i
		}
	}
	return e.heights[closest]
}

// Result returns the estimate for the estimator's primary (centre)
// quantile.
func (e *Estimator) Result() float64 {
	return e.ResultQuantile(e.quantile[(e.markerCount-1)/2])
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
