package tracking

import (
	"math"
	"time"
)

// OneEuroFilter smooths a noisy scalar signal. Slow movement is filtered
// heavily to remove jitter while fast movement passes through with little lag.
type OneEuroFilter struct {
	minCutoff float64
	beta      float64
	dCutoff   float64

	initialized bool
	prev        float64
	dPrev       float64
	tPrev       time.Time
}

// NewOneEuroFilter returns a filter with the given cutoff parameters.
func NewOneEuroFilter(minCutoff, beta, dCutoff float64) *OneEuroFilter {
	return &OneEuroFilter{minCutoff: minCutoff, beta: beta, dCutoff: dCutoff}
}

func smoothingFactor(cutoff, dt float64) float64 {
	tau := 1.0 / (2 * math.Pi * cutoff)
	return 1.0 / (1.0 + tau/dt)
}

// Filter feeds a new observation taken at t and returns the smoothed value.
// The first observation is returned unchanged. An observation that is not
// later than the previous one returns the previous smoothed value.
func (f *OneEuroFilter) Filter(t time.Time, x float64) float64 {
	if !f.initialized {
		f.initialized = true
		f.prev = x
		f.dPrev = 0
		f.tPrev = t
		return x
	}

	dt := t.Sub(f.tPrev).Seconds()
	if dt <= 0 {
		return f.prev
	}

	dx := (x - f.prev) / dt
	edx := f.dPrev + smoothingFactor(f.dCutoff, dt)*(dx-f.dPrev)
	f.dPrev = edx

	cutoff := f.minCutoff + f.beta*math.Abs(edx)
	f.prev = f.prev + smoothingFactor(cutoff, dt)*(x-f.prev)
	f.tPrev = t
	return f.prev
}

// Reset forgets all history; the next observation passes through unchanged.
func (f *OneEuroFilter) Reset() {
	f.initialized = false
	f.prev = 0
	f.dPrev = 0
	f.tPrev = time.Time{}
}
