package beat

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/charmbracelet/log"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// ErrSMPTE is returned for files using SMPTE timecode instead of metric ticks.
var ErrSMPTE = errors.New("beat: SMPTE time format not supported")

// defaultTempo is the MIDI default in microseconds per quarter note (120 BPM).
const defaultTempo = 500000.0

// Note is a single note-on event with positive velocity.
type Note struct {
	Time     float64 // Seconds from the start of the file
	Tick     int64   // Absolute tick
	Track    int
	Channel  uint8
	Key      uint8
	Velocity uint8
}

// TrackInfo summarizes a MIDI file for inspection.
type TrackInfo struct {
	Format      uint16
	Resolution  uint16 // Ticks per quarter note
	Tracks      int
	TempoEvents int
	Duration    float64 // Time of the last event in seconds
	Notes       []Note
}

// Map returns the beat map made from the note onsets.
func (ti TrackInfo) Map() BeatMap {
	onsets := make([]float64, len(ti.Notes))
	for i, n := range ti.Notes {
		onsets[i] = n.Time
	}
	return NewBeatMap(onsets)
}

// LoadTrack reads note onsets from a Standard MIDI File. A missing or
// unreadable file yields an empty map and one warning; it is never an error
// because the beat track is optional.
func LoadTrack(path string, logger *log.Logger) BeatMap {
	if logger == nil {
		logger = discardLogger()
	}
	if path == "" {
		logger.Warn("no beat track configured, using fixed tempo")
		return BeatMap{}
	}

	f, err := os.Open(path)
	if err != nil {
		logger.Warn("beat track unavailable", "path", path, "error", err)
		return BeatMap{}
	}
	defer f.Close()

	m, err := ParseTrack(f)
	if err != nil {
		logger.Warn("beat track unreadable", "path", path, "error", err)
		return BeatMap{}
	}
	logger.Debug("beat track loaded", "path", path, "onsets", m.Len())
	return m
}

// ParseTrack reads note onsets from a Standard MIDI File stream.
func ParseTrack(r io.Reader) (BeatMap, error) {
	info, err := Scan(r)
	if err != nil {
		return BeatMap{}, err
	}
	return info.Map(), nil
}

// Inspect scans a MIDI file and returns its notes and timing details.
func Inspect(path string) (TrackInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return TrackInfo{}, fmt.Errorf("beat: cannot open %s: %w", path, err)
	}
	defer f.Close()
	return Scan(f)
}

// timedEvent is a track event placed on the absolute tick timeline.
type timedEvent struct {
	tick  int64
	track int
	msg   smf.Message
}

// Scan parses a Standard MIDI File and converts every note onset to seconds
// using the file's tempo map.
func Scan(r io.Reader) (TrackInfo, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return TrackInfo{}, fmt.Errorf("beat: cannot parse MIDI: %w", err)
	}

	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return TrackInfo{}, ErrSMPTE
	}
	resolution := uint16(ticks)
	if resolution == 0 {
		return TrackInfo{}, fmt.Errorf("beat: invalid resolution 0")
	}

	// Merge tracks onto one timeline. The stable sort keeps file order within
	// a track and track order between events sharing a tick.
	var events []timedEvent
	for ti, track := range s.Tracks {
		var abs int64
		for _, ev := range track {
			abs += int64(ev.Delta)
			events = append(events, timedEvent{tick: abs, track: ti, msg: ev.Message})
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].tick < events[j].tick
	})

	info := TrackInfo{
		Format:     s.Format(),
		Resolution: resolution,
		Tracks:     len(s.Tracks),
	}

	var (
		tempo     = defaultTempo
		segTick   int64
		segSecond float64
	)
	toSeconds := func(tick int64) float64 {
		return segSecond + float64(tick-segTick)*tempo/1e6/float64(resolution)
	}

	for _, ev := range events {
		now := toSeconds(ev.tick)
		info.Duration = now

		var bpm float64
		if ev.msg.GetMetaTempo(&bpm) && bpm > 0 {
			segSecond = now
			segTick = ev.tick
			tempo = 60e6 / bpm
			info.TempoEvents++
			continue
		}

		var ch, key, vel uint8
		if midi.Message(ev.msg).GetNoteStart(&ch, &key, &vel) {
			info.Notes = append(info.Notes, Note{
				Time:     now,
				Tick:     ev.tick,
				Track:    ev.track,
				Channel:  ch,
				Key:      key,
				Velocity: vel,
			})
		}
	}

	return info, nil
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}
