package beat

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// midiEvent is one event of a test track: delta ticks plus a message.
type midiEvent struct {
	delta uint32
	msg   []byte
}

// buildMIDI encodes tracks into a Standard MIDI File at 96 ticks per quarter.
func buildMIDI(t *testing.T, tracks ...[]midiEvent) []byte {
	t.Helper()

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(96)
	for _, events := range tracks {
		var tr smf.Track
		for _, ev := range events {
			tr.Add(ev.delta, ev.msg)
		}
		tr.Close(0)
		if err := s.Add(tr); err != nil {
			t.Fatalf("smf.Add() error: %v", err)
		}
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		t.Fatalf("smf.WriteTo() error: %v", err)
	}
	return buf.Bytes()
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestParseTrackConstantTempo(t *testing.T) {
	data := buildMIDI(t, []midiEvent{
		{0, smf.MetaTempo(120)},
		{0, midi.NoteOn(0, 60, 100)},
		{96, midi.NoteOn(0, 62, 100)},
		{96, midi.NoteOn(0, 64, 0)}, // velocity 0 is a note-off
		{0, midi.NoteOn(0, 65, 90)},
		{96, midi.NoteOff(0, 65)},
		{0, midi.NoteOn(0, 67, 80)},
	})

	m, err := ParseTrack(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ParseTrack() error: %v", err)
	}

	expected := []float64{0, 0.5, 1.0, 1.5}
	got := m.Onsets()
	if len(got) != len(expected) {
		t.Fatalf("ParseTrack() onsets = %v, expected %v", got, expected)
	}
	for i := range expected {
		if !almostEqual(got[i], expected[i]) {
			t.Errorf("onset[%d] = %v, expected %v", i, got[i], expected[i])
		}
	}
}

func TestParseTrackTempoChangeAcrossTracks(t *testing.T) {
	// Conductor track: 120 BPM, then 60 BPM from tick 192 (1.0s)
	conductor := []midiEvent{
		{0, smf.MetaTempo(120)},
		{192, smf.MetaTempo(60)},
	}
	notes := []midiEvent{
		{0, midi.NoteOn(1, 36, 100)},
		{192, midi.NoteOn(1, 36, 100)},
		{96, midi.NoteOn(1, 36, 100)},
	}

	info, err := Scan(bytes.NewReader(buildMIDI(t, conductor, notes)))
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if info.Resolution != 96 {
		t.Errorf("Resolution = %d, expected 96", info.Resolution)
	}
	if info.Tracks != 2 {
		t.Errorf("Tracks = %d, expected 2", info.Tracks)
	}
	if info.TempoEvents != 2 {
		t.Errorf("TempoEvents = %d, expected 2", info.TempoEvents)
	}

	expected := []float64{0, 1.0, 2.0}
	if len(info.Notes) != len(expected) {
		t.Fatalf("len(Notes) = %d, expected %d", len(info.Notes), len(expected))
	}
	for i, n := range info.Notes {
		if !almostEqual(n.Time, expected[i]) {
			t.Errorf("Notes[%d].Time = %v, expected %v", i, n.Time, expected[i])
		}
		if n.Channel != 1 || n.Key != 36 || n.Track != 1 {
			t.Errorf("Notes[%d] = %+v, expected channel 1 key 36 track 1", i, n)
		}
	}
}

func TestParseTrackGarbage(t *testing.T) {
	if _, err := ParseTrack(strings.NewReader("not a midi file")); err == nil {
		t.Error("ParseTrack() on garbage should fail")
	}
}

func TestLoadTrackMissingFile(t *testing.T) {
	m := LoadTrack(filepath.Join(t.TempDir(), "missing.mid"), nil)
	if m.Len() != 0 {
		t.Errorf("LoadTrack() on missing file len = %d, expected 0", m.Len())
	}
	if m.Sufficient() {
		t.Error("empty map should not be sufficient")
	}
}

func TestLoadTrackFromFile(t *testing.T) {
	data := buildMIDI(t, []midiEvent{
		{0, midi.NoteOn(0, 60, 100)},
		{48, midi.NoteOn(0, 60, 100)},
		{48, midi.NoteOn(0, 60, 100)},
	})
	p := filepath.Join(t.TempDir(), "beat.mid")
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}

	m := LoadTrack(p, nil)
	if m.Len() != 3 {
		t.Fatalf("LoadTrack() len = %d, expected 3", m.Len())
	}
	// Default tempo is 120 BPM, so 48 ticks at 96 per quarter is 0.25s
	if !almostEqual(m.LastInterval(), 0.25) {
		t.Errorf("LastInterval() = %v, expected 0.25", m.LastInterval())
	}
	if !almostEqual(m.EstimateBPM(), 240) {
		t.Errorf("EstimateBPM() = %v, expected 240", m.EstimateBPM())
	}
}
