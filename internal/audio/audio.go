// Package audio plays the background track at a variable rate.
//
// Changing the rate of a live stream clicks, so Engine keeps up to two
// handles on the same track and crossfades from the old rate to the new one.
// Backends provide the handles; FileBackend decodes files with beep and plays
// them through an oto device.
package audio

import (
	"errors"
	"time"
)

var (
	// ErrUnsupportedFormat is returned for audio files of unknown type.
	ErrUnsupportedFormat = errors.New("audio: unsupported format")

	// ErrClosed is returned by handle operations after Stop.
	ErrClosed = errors.New("audio: handle stopped")
)

// Handle is one playing instance of a track. Operations are safe to call
// while the device is pulling samples.
type Handle interface {
	Rate() float64
	SetRate(rate float64) error
	Position() time.Duration
	Seek(pos time.Duration) error
	Volume() float64 // 0-100
	SetVolume(v float64)
	SetPaused(paused bool)
	Stop()
}

// Backend starts handles of a single track.
type Backend interface {
	// Open starts a new handle at normal rate, position 0 and the given volume.
	Open(volume float64) (Handle, error)
}

// Opener resolves a track path to a backend.
type Opener func(path string) (Backend, error)
