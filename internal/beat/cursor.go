package beat

import "math"

// Event describes one beat crossing. It is produced once per crossing and
// handed to gameplay by value.
type Event struct {
	Onset     float64 // Onset time of the crossed beat
	MusicTime float64 // Music time of the advance that crossed it
	Index     int     // Zero-based beat number
}

// Cursor walks a beat map against music time.
//
// Past the end of the map, onsets continue at the last known interval so the
// rhythm never stops. A map that cannot drive MIDI mode is replaced by a
// fixed grid at k*interval.
type Cursor struct {
	beats    BeatMap
	fixed    bool
	interval float64 // Fixed-mode spacing, or the tail spacing in MIDI mode
	lead     float64 // Spacing assumed before the first onset

	next      int
	musicTime float64
	current   float64
	progress  float64
}

// NewCursor creates a cursor over m. fallbackInterval is the grid spacing in
// seconds used when m is insufficient.
func NewCursor(m BeatMap, fallbackInterval float64) *Cursor {
	if !(fallbackInterval > 0) || math.IsInf(fallbackInterval, 0) {
		fallbackInterval = IntervalForBPM(0)
	}

	c := &Cursor{beats: m}
	if m.Sufficient() {
		c.interval = m.LastInterval()
		c.lead = m.FirstInterval()
	} else {
		c.fixed = true
		c.interval = fallbackInterval
		c.lead = fallbackInterval
	}
	c.recompute()
	return c
}

// Fixed reports whether the cursor runs on the synthetic fixed grid.
func (c *Cursor) Fixed() bool {
	return c.fixed
}

// onset returns the time of beat i, extrapolating past the end of the map.
func (c *Cursor) onset(i int) float64 {
	if c.fixed {
		return float64(i) * c.interval
	}
	n := c.beats.Len()
	if i < n {
		return c.beats.At(i)
	}
	return c.beats.At(n-1) + float64(i-n+1)*c.interval
}

// Advance moves the cursor to musicTime and returns every beat whose onset
// lies at or before musicTime+epsilon, in onset order.
func (c *Cursor) Advance(musicTime, epsilon float64) []Event {
	if math.IsNaN(musicTime) || math.IsInf(musicTime, 0) {
		return nil
	}
	if musicTime < c.musicTime {
		musicTime = c.musicTime
	}
	if !(epsilon > 0) || math.IsInf(epsilon, 0) {
		epsilon = 0
	}
	c.musicTime = musicTime

	var events []Event
	limit := musicTime + epsilon
	for {
		t := c.onset(c.next)
		if t > limit {
			break
		}
		events = append(events, Event{Onset: t, MusicTime: musicTime, Index: c.next})
		c.next++
	}

	c.recompute()
	return events
}

// recompute derives the current interval and progress from the two onsets
// bracketing music time. Progress is never integrated.
func (c *Cursor) recompute() {
	t := c.musicTime

	// First onset strictly after t. The crossed count may run ahead of it
	// by the epsilon window, never behind.
	j := c.next
	for j > 0 && c.onset(j-1) > t {
		j--
	}
	for c.onset(j) <= t {
		j++
	}

	next := c.onset(j)
	var prev float64
	if j == 0 {
		// Before the first onset the grid repeats backwards at the lead
		// spacing, so the intro keeps a moving beat.
		k := math.Max(1, math.Ceil((next-t)/c.lead))
		prev = next - k*c.lead
		next = prev + c.lead
		if next <= t {
			prev, next = next, next+c.lead
		}
	} else {
		prev = c.onset(j - 1)
	}

	c.current = next - prev
	p := (t - prev) / c.current
	switch {
	case p < 0:
		p = 0
	case p >= 1:
		p = math.Nextafter(1, 0)
	}
	c.progress = p
}

// IsOnBeat reports whether music time lies within tol (a fraction of the
// current interval) of a beat boundary, on either side.
func (c *Cursor) IsOnBeat(tol float64) bool {
	if math.IsNaN(tol) || tol < 0 {
		tol = 0
	}
	if tol > 0.5 {
		tol = 0.5
	}
	return c.progress < tol || c.progress >= 1-tol
}

// BeatIndex returns the number of beats crossed since start.
func (c *Cursor) BeatIndex() int {
	return c.next
}

// Progress returns the position within the current interval in [0, 1).
func (c *Cursor) Progress() float64 {
	return c.progress
}

// Interval returns the length of the current inter-beat interval.
func (c *Cursor) Interval() float64 {
	return c.current
}

// NextOnset returns the onset time of the next beat not yet crossed.
func (c *Cursor) NextOnset() float64 {
	return c.onset(c.next)
}
