package audio

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

// resampleQuality is the beep resampler quality; 4 is fine for music.
const resampleQuality = 4

// FileBackend opens handles on one audio file. Every handle decodes the file
// independently so two handles can play different positions at once.
type FileBackend struct {
	path   string
	dev    *Device
	loop   bool
	format beep.Format
}

// NewFileOpener returns an Opener that plays files through dev.
func NewFileOpener(dev *Device, loop bool) Opener {
	return func(path string) (Backend, error) {
		return OpenFile(path, dev, loop)
	}
}

// OpenFile checks that path decodes and returns a backend for it.
func OpenFile(path string, dev *Device, loop bool) (*FileBackend, error) {
	if dev == nil {
		return nil, fmt.Errorf("audio: no output device")
	}
	s, format, f, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	s.Close()
	f.Close()

	return &FileBackend{path: path, dev: dev, loop: loop, format: format}, nil
}

// Format returns the decoded stream format.
func (b *FileBackend) Format() beep.Format {
	return b.format
}

// Open starts a new handle at rate 1, position 0 and the given volume.
func (b *FileBackend) Open(volume float64) (Handle, error) {
	s, format, f, err := decodeFile(b.path)
	if err != nil {
		return nil, err
	}

	var src beep.Streamer = s
	if b.loop {
		src = beep.Loop(-1, s)
	}

	h := &fileHandle{
		dev:    b.dev,
		source: s,
		file:   f,
		format: format,
		rate:   1,
	}
	h.resampler = beep.ResampleRatio(resampleQuality, h.ratio(1), src)
	h.volume = &effects.Volume{Streamer: h.resampler, Base: 2}
	h.ctrl = &beep.Ctrl{Streamer: h.volume}
	h.applyVolume(volume)

	b.dev.add(h.ctrl)
	return h, nil
}

// decodeFile opens path and picks a decoder by extension.
func decodeFile(path string) (beep.StreamSeekCloser, beep.Format, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, nil, fmt.Errorf("audio: cannot open %s: %w", path, err)
	}

	var (
		s      beep.StreamSeekCloser
		format beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		s, format, err = mp3.Decode(f)
	case ".ogg":
		s, format, err = vorbis.Decode(f)
	case ".wav":
		s, format, err = wav.Decode(f)
	case ".flac":
		s, format, err = flac.Decode(f)
	default:
		f.Close()
		return nil, beep.Format{}, nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, nil, fmt.Errorf("audio: cannot decode %s: %w", path, err)
	}
	return s, format, f, nil
}

// fileHandle is one decoded instance of a file in the device mix.
type fileHandle struct {
	dev       *Device
	source    beep.StreamSeekCloser
	file      *os.File
	format    beep.Format
	resampler *beep.Resampler
	volume    *effects.Volume
	ctrl      *beep.Ctrl

	rate    float64
	level   float64
	stopped bool
}

// ratio converts a playback rate to a resampling ratio that also bridges the
// file and device sample rates.
func (h *fileHandle) ratio(rate float64) float64 {
	return rate * float64(h.format.SampleRate) / float64(h.dev.sampleRate)
}

func (h *fileHandle) Rate() float64 {
	var r float64
	h.dev.with(func() { r = h.rate })
	return r
}

func (h *fileHandle) SetRate(rate float64) error {
	if !(rate > 0) || math.IsInf(rate, 0) {
		return fmt.Errorf("audio: invalid rate %v", rate)
	}
	var err error
	h.dev.with(func() {
		if h.stopped {
			err = ErrClosed
			return
		}
		h.rate = rate
		h.resampler.SetRatio(h.ratio(rate))
	})
	return err
}

func (h *fileHandle) Position() time.Duration {
	var pos time.Duration
	h.dev.with(func() {
		if h.stopped {
			return
		}
		pos = h.format.SampleRate.D(h.source.Position())
	})
	return pos
}

func (h *fileHandle) Seek(pos time.Duration) error {
	var err error
	h.dev.with(func() {
		if h.stopped {
			err = ErrClosed
			return
		}
		n := h.format.SampleRate.N(pos)
		// Positions read from a looping handle never exceed the length, but a
		// caller may still ask for one that does.
		if length := h.source.Len(); length > 0 && n >= length {
			n %= length
		}
		if n < 0 {
			n = 0
		}
		err = h.source.Seek(n)
	})
	if err != nil && !errors.Is(err, ErrClosed) {
		return fmt.Errorf("audio: seek: %w", err)
	}
	return err
}

func (h *fileHandle) Volume() float64 {
	var v float64
	h.dev.with(func() { v = h.level })
	return v
}

func (h *fileHandle) SetVolume(v float64) {
	h.dev.with(func() { h.applyVolume(v) })
}

// applyVolume maps 0-100 linear volume onto beep's base-2 exponent.
// Callers hold the device lock, or own the handle exclusively.
func (h *fileHandle) applyVolume(v float64) {
	v = math.Max(0, math.Min(100, v))
	h.level = v
	if v == 0 {
		h.volume.Silent = true
		return
	}
	h.volume.Silent = false
	h.volume.Volume = math.Log2(v / 100)
}

func (h *fileHandle) SetPaused(paused bool) {
	h.dev.with(func() { h.ctrl.Paused = paused })
}

// Stop detaches the handle from the mix and closes its decoder.
func (h *fileHandle) Stop() {
	h.dev.with(func() {
		if h.stopped {
			return
		}
		h.stopped = true
		// A nil streamer makes Ctrl report drained, so the mixer drops it.
		h.ctrl.Streamer = nil
		h.source.Close()
		h.file.Close()
	})
}
