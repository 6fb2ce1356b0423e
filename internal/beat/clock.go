package beat

import "math"

// Clock is the virtual music clock. It only integrates the time it is given
// and never advances on its own.
type Clock struct {
	now      float64
	scale    float64
	minScale float64
	maxScale float64
}

// NewClock creates a clock at time 0 with scale 1 clamped into [min, max].
func NewClock(minScale, maxScale float64) *Clock {
	if minScale <= 0 || math.IsNaN(minScale) {
		minScale = 0.1
	}
	if maxScale < minScale || math.IsNaN(maxScale) {
		maxScale = minScale
	}
	c := &Clock{minScale: minScale, maxScale: maxScale}
	c.SetTimeScale(1)
	return c
}

// Advance adds dt seconds of music time. Negative and NaN input count as 0.
func (c *Clock) Advance(dt float64) {
	if !(dt > 0) || math.IsInf(dt, 1) {
		return
	}
	c.now += dt
}

// SetTimeScale stores s clamped into the configured range. NaN and
// non-positive values map to the minimum.
func (c *Clock) SetTimeScale(s float64) {
	switch {
	case math.IsNaN(s) || s <= 0:
		s = c.minScale
	case s < c.minScale:
		s = c.minScale
	case s > c.maxScale:
		s = c.maxScale
	}
	c.scale = s
}

// Now returns the accumulated music time in seconds.
func (c *Clock) Now() float64 {
	return c.now
}

// Scale returns the current time scale.
func (c *Clock) Scale() float64 {
	return c.scale
}

// Bounds returns the configured scale range.
func (c *Clock) Bounds() (min, max float64) {
	return c.minScale, c.maxScale
}

// Reset rewinds the clock to 0 and restores scale 1.
func (c *Clock) Reset() {
	c.now = 0
	c.SetTimeScale(1)
}
