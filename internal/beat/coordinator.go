package beat

import (
	"errors"
	"math"
	"time"

	"github.com/charmbracelet/log"
)

// ErrNotIdle is returned by Load once a beat map is already in use.
var ErrNotIdle = errors.New("beat: coordinator already loaded")

// State is the coordinator lifecycle stage.
type State int

const (
	StateIdle    State = iota // No beat map loaded, or loaded but never ticked
	StateRunning              // Ticking against a MIDI or fixed grid
	StateStopped              // Terminal; a new coordinator is needed
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Mode identifies the beat source driving the cursor.
type Mode int

const (
	ModeNone Mode = iota
	ModeFixed
	ModeMIDI
)

// String returns a short label for HUD display.
func (m Mode) String() string {
	switch m {
	case ModeFixed:
		return "FIXED"
	case ModeMIDI:
		return "MIDI"
	default:
		return "-"
	}
}

// Audio is the music engine driven by the coordinator.
type Audio interface {
	SetTimeScale(s float64)
	Tick(now time.Time)
	Pause(paused bool)
	Stop()
}

// Handler receives beat crossings.
type Handler interface {
	OnBeat(ev Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ev Event)

// OnBeat calls f(ev).
func (f HandlerFunc) OnBeat(ev Event) { f(ev) }

// Options configures a Coordinator.
type Options struct {
	MinScale     float64
	MaxScale     float64
	Step         float64 // Increment used by StepTimeScale
	InitialScale float64
	Tolerance    float64 // Default on-beat window as a fraction of the interval
	FallbackBPM  float64

	Audio  Audio // Optional
	Logger *log.Logger
	Now    func() time.Time // Wall clock for the audio crossfade
}

// Coordinator advances the clock and cursor together from one wall-clock
// delta per frame, fans beat crossings out to handlers and keeps the music
// engine on the same time scale as the simulation.
//
// All methods must be called from the same goroutine.
type Coordinator struct {
	opts   Options
	logger *log.Logger
	audio  Audio
	now    func() time.Time

	clock  *Clock
	cursor *Cursor
	state  State
	mode   Mode

	scaledDt float64
	stopped  bool
}

// NewCoordinator creates an idle coordinator.
func NewCoordinator(opts Options) *Coordinator {
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Step <= 0 {
		opts.Step = 0.1
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = 0.12
	}
	if opts.InitialScale <= 0 {
		opts.InitialScale = 1
	}

	c := &Coordinator{
		opts:   opts,
		logger: opts.Logger,
		audio:  opts.Audio,
		now:    opts.Now,
		clock:  NewClock(opts.MinScale, opts.MaxScale),
		state:  StateIdle,
	}
	c.clock.SetTimeScale(opts.InitialScale)
	return c
}

// Load installs the beat map. An insufficient map selects the fixed grid
// at the fallback tempo. Load is only valid once, while idle.
func (c *Coordinator) Load(m BeatMap) error {
	if c.state != StateIdle || c.cursor != nil {
		return ErrNotIdle
	}

	interval := IntervalForBPM(c.opts.FallbackBPM)
	c.cursor = NewCursor(m, interval)
	if c.cursor.Fixed() {
		c.mode = ModeFixed
		c.logger.Warn("beat map insufficient, using fixed tempo",
			"onsets", m.Len(), "bpm", 60/interval)
	} else {
		c.mode = ModeMIDI
		c.logger.Info("beat map loaded", "onsets", m.Len(), "tail_interval", c.cursor.interval)
	}

	if c.audio != nil {
		c.audio.SetTimeScale(c.clock.Scale())
	}
	return nil
}

// Tick advances simulation by rawDt wall-clock seconds. Each beat crossed is
// delivered to every handler in onset order, then the music crossfade is
// stepped. The crossed events are also returned. Before Load and after Stop
// Tick does nothing.
func (c *Coordinator) Tick(rawDt float64, handlers ...Handler) []Event {
	if c.cursor == nil || c.stopped {
		c.scaledDt = 0
		return nil
	}
	if !(rawDt > 0) || math.IsInf(rawDt, 0) {
		rawDt = 0
	}
	c.state = StateRunning

	c.scaledDt = rawDt * c.clock.Scale()
	c.clock.Advance(c.scaledDt)
	events := c.cursor.Advance(c.clock.Now(), c.scaledDt)

	for _, ev := range events {
		for _, h := range handlers {
			h.OnBeat(ev)
		}
	}

	if c.audio != nil {
		c.audio.Tick(c.now())
	}
	return events
}

// SetTimeScale is the single entry point for time scale changes. The clamped
// value reaches both the clock and the music engine.
func (c *Coordinator) SetTimeScale(s float64) {
	c.clock.SetTimeScale(s)
	if c.audio != nil && !c.stopped {
		c.audio.SetTimeScale(c.clock.Scale())
	}
}

// StepTimeScale moves the scale by one configured step in direction dir
// (positive or negative). The result is rounded to the step grid so repeated
// steps do not accumulate float error.
func (c *Coordinator) StepTimeScale(dir int) {
	if dir == 0 {
		return
	}
	step := c.opts.Step
	if dir < 0 {
		step = -step
	}
	s := c.clock.Scale() + step
	s = math.Round(s/c.opts.Step) * c.opts.Step
	c.SetTimeScale(s)
}

// SetPaused pauses or resumes the music. Simulation pause is the caller's
// concern: a paused game simply stops calling Tick.
func (c *Coordinator) SetPaused(paused bool) {
	if c.audio != nil && !c.stopped {
		c.audio.Pause(paused)
	}
}

// Stop ends the session. It is idempotent and safe before any Tick.
func (c *Coordinator) Stop() {
	if c.stopped {
		return
	}
	c.stopped = true
	c.state = StateStopped
	if c.audio != nil {
		c.audio.Stop()
	}
}

// IsOnBeat reports whether music time is inside the configured on-beat window.
func (c *Coordinator) IsOnBeat() bool {
	return c.IsOnBeatWithin(c.opts.Tolerance)
}

// IsOnBeatWithin reports whether music time is within tol of a beat.
func (c *Coordinator) IsOnBeatWithin(tol float64) bool {
	if c.cursor == nil {
		return false
	}
	return c.cursor.IsOnBeat(tol)
}

// BeatProgress returns the position inside the current interval in [0, 1).
func (c *Coordinator) BeatProgress() float64 {
	if c.cursor == nil {
		return 0
	}
	return c.cursor.Progress()
}

// BeatIndex returns the number of beats crossed so far.
func (c *Coordinator) BeatIndex() int {
	if c.cursor == nil {
		return 0
	}
	return c.cursor.BeatIndex()
}

// Interval returns the current inter-beat interval in seconds.
func (c *Coordinator) Interval() float64 {
	if c.cursor == nil {
		return IntervalForBPM(c.opts.FallbackBPM)
	}
	return c.cursor.Interval()
}

// TimeScale returns the current time scale.
func (c *Coordinator) TimeScale() float64 {
	return c.clock.Scale()
}

// MusicTime returns the virtual music time in seconds.
func (c *Coordinator) MusicTime() float64 {
	return c.clock.Now()
}

// ScaledDt returns the scaled delta applied by the last Tick.
func (c *Coordinator) ScaledDt() float64 {
	return c.scaledDt
}

// Tolerance returns the default on-beat window.
func (c *Coordinator) Tolerance() float64 {
	return c.opts.Tolerance
}

// ScaleBounds returns the allowed time scale range.
func (c *Coordinator) ScaleBounds() (min, max float64) {
	return c.clock.Bounds()
}

// Mode returns the active beat source.
func (c *Coordinator) Mode() Mode {
	return c.mode
}

// State returns the lifecycle stage.
func (c *Coordinator) State() State {
	return c.state
}
