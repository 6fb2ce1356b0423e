// Package beat keeps simulation time synchronized to a rhythm track.
//
// A BeatMap holds note onsets read from MIDI. A Clock integrates scaled
// time, a Cursor walks the map against that time and reports beat crossings,
// and a Coordinator drives all of them (plus the music engine) from a single
// wall-clock delta per frame.
package beat

import (
	"math"
	"sort"
)

// BeatMap is an immutable, non-decreasing sequence of onset times in seconds.
type BeatMap struct {
	onsets []float64
}

// NewBeatMap builds a beat map from onset times. Negative or non-finite
// values are dropped and a value smaller than its predecessor is raised to
// it, so the result is always non-decreasing.
func NewBeatMap(onsets []float64) BeatMap {
	out := make([]float64, 0, len(onsets))
	last := 0.0
	for _, t := range onsets {
		if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
			continue
		}
		if len(out) > 0 && t < last {
			t = last
		}
		out = append(out, t)
		last = t
	}
	return BeatMap{onsets: out}
}

// Len returns the number of onsets.
func (m BeatMap) Len() int {
	return len(m.onsets)
}

// At returns onset i. The caller must keep i within [0, Len()).
func (m BeatMap) At(i int) float64 {
	return m.onsets[i]
}

// Onsets returns a copy of the onset times.
func (m BeatMap) Onsets() []float64 {
	out := make([]float64, len(m.onsets))
	copy(out, m.onsets)
	return out
}

// Sufficient reports whether the map can drive MIDI mode: at least two
// onsets with a positive gap somewhere between them.
func (m BeatMap) Sufficient() bool {
	return len(m.onsets) >= 2 && m.LastInterval() > 0
}

// FirstInterval returns the first positive inter-onset gap, or 0.
func (m BeatMap) FirstInterval() float64 {
	for i := 1; i < len(m.onsets); i++ {
		if d := m.onsets[i] - m.onsets[i-1]; d > 0 {
			return d
		}
	}
	return 0
}

// LastInterval returns the last positive inter-onset gap, or 0.
func (m BeatMap) LastInterval() float64 {
	for i := len(m.onsets) - 1; i > 0; i-- {
		if d := m.onsets[i] - m.onsets[i-1]; d > 0 {
			return d
		}
	}
	return 0
}

// Merge collapses onsets that follow the previous kept onset by less than
// window seconds. Chords and flams become a single beat.
func (m BeatMap) Merge(window float64) BeatMap {
	if window <= 0 || len(m.onsets) == 0 {
		return m
	}
	out := make([]float64, 0, len(m.onsets))
	for _, t := range m.onsets {
		if len(out) > 0 && t-out[len(out)-1] < window {
			continue
		}
		out = append(out, t)
	}
	return BeatMap{onsets: out}
}

// EstimateBPM returns the tempo implied by the median positive interval,
// or 0 when the map is insufficient.
func (m BeatMap) EstimateBPM() float64 {
	gaps := make([]float64, 0, len(m.onsets))
	for i := 1; i < len(m.onsets); i++ {
		if d := m.onsets[i] - m.onsets[i-1]; d > 0 {
			gaps = append(gaps, d)
		}
	}
	if len(gaps) == 0 {
		return 0
	}
	sort.Float64s(gaps)
	median := gaps[len(gaps)/2]
	if len(gaps)%2 == 0 {
		median = (gaps[len(gaps)/2-1] + gaps[len(gaps)/2]) / 2
	}
	return 60 / median
}

// IntervalForBPM converts a tempo to seconds per beat. Non-positive tempos
// fall back to 120 BPM.
func IntervalForBPM(bpm float64) float64 {
	if bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		bpm = 120
	}
	return 60 / bpm
}
