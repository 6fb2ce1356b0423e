package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/faiface/beep"
	"github.com/hajimehoshi/oto/v2"
)

const channelCount = 2

// Device mixes every live handle and feeds the result to one oto player.
// The mutex guards the mixer and every streamer graph attached to it, the
// same role speaker.Lock plays for beep's own speaker package.
type Device struct {
	mu         sync.Mutex
	mixer      beep.Mixer
	sampleRate beep.SampleRate
	buf        [][2]float64

	ctx    *oto.Context
	player oto.Player
}

// NewDevice opens the system audio output at sampleRate.
// Only one Device may exist per process.
func NewDevice(sampleRate int) (*Device, error) {
	ctx, ready, err := oto.NewContext(sampleRate, channelCount, oto.FormatFloat32LE)
	if err != nil {
		return nil, fmt.Errorf("audio: cannot open output device: %w", err)
	}
	<-ready

	d := newDevice(beep.SampleRate(sampleRate))
	d.ctx = ctx
	d.player = ctx.NewPlayer(d)
	d.player.Play()
	return d, nil
}

// newDevice creates a mixer without an output; Read pulls samples directly.
func newDevice(sr beep.SampleRate) *Device {
	return &Device{sampleRate: sr}
}

// SampleRate returns the output sample rate.
func (d *Device) SampleRate() beep.SampleRate {
	return d.sampleRate
}

// Read renders interleaved float32 little-endian stereo frames. It is called
// from oto's playback goroutine.
func (d *Device) Read(p []byte) (int, error) {
	const frameSize = channelCount * 4

	d.mu.Lock()
	defer d.mu.Unlock()

	n := len(p) / frameSize
	if n == 0 {
		return 0, nil
	}
	if cap(d.buf) < n {
		d.buf = make([][2]float64, n)
	}
	buf := d.buf[:n]
	d.mixer.Stream(buf)

	for i, frame := range buf {
		for c := 0; c < channelCount; c++ {
			v := float32(math.Max(-1, math.Min(1, frame[c])))
			binary.LittleEndian.PutUint32(p[i*frameSize+c*4:], math.Float32bits(v))
		}
	}
	return n * frameSize, nil
}

// add attaches a streamer to the mix.
func (d *Device) add(s beep.Streamer) {
	d.mu.Lock()
	d.mixer.Add(s)
	d.mu.Unlock()
}

// with runs fn while holding the mix lock.
func (d *Device) with(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn()
}

// Streaming returns the number of streamers still in the mix.
func (d *Device) Streaming() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mixer.Len()
}

// Close stops output.
func (d *Device) Close() error {
	if d.player == nil {
		return nil
	}
	if err := d.player.Close(); err != nil {
		return fmt.Errorf("audio: cannot close player: %w", err)
	}
	return nil
}
