package audio

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/beatshot/internal/config"
)

// Config controls the crossfade engine.
type Config struct {
	MinRate      float64
	MaxRate      float64
	Deadband     float64       // Rate changes smaller than this are ignored
	BaseVolume   float64       // 0-100
	Crossfade    time.Duration // Wall-clock fade length
	StartupDelay time.Duration // Wait after opening a handle before rate and seek
}

// ConfigFrom converts the YAML audio section.
func ConfigFrom(a config.AudioConfig) Config {
	return Config{
		MinRate:      a.MinRate,
		MaxRate:      a.MaxRate,
		Deadband:     a.Deadband,
		BaseVolume:   a.BaseVolume,
		Crossfade:    a.CrossfadeDuration(),
		StartupDelay: a.StartupDelay(),
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock replaces the wall clock used to start fades.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithSleep replaces the function used for the startup delay.
func WithSleep(sleep func(time.Duration)) Option {
	return func(e *Engine) {
		if sleep != nil {
			e.sleep = sleep
		}
	}
}

// Engine owns at most two handles of the background track: the active one
// and, during a crossfade, a pending one at the new rate.
//
// Engine is not safe for concurrent use; it runs on the game loop.
type Engine struct {
	cfg     Config
	backend Backend
	logger  *log.Logger
	now     func() time.Time
	sleep   func(time.Duration)

	desired float64 // Last requested rate, clamped

	active      Handle
	pending     Handle
	pendingRate float64
	fadeStart   time.Time
	pausedAt    time.Time

	started  bool
	paused   bool
	stopped  bool
	disabled bool
}

// NewEngine creates an engine over backend. A nil backend yields a silent
// engine that still accepts every call.
func NewEngine(backend Backend, cfg Config, opts ...Option) *Engine {
	if cfg.MinRate <= 0 {
		cfg.MinRate = 0.1
	}
	if cfg.MaxRate < cfg.MinRate {
		cfg.MaxRate = cfg.MinRate
	}
	if cfg.Crossfade <= 0 {
		cfg.Crossfade = 400 * time.Millisecond
	}
	cfg.BaseVolume = math.Max(0, math.Min(100, cfg.BaseVolume))

	e := &Engine{
		cfg:     cfg,
		backend: backend,
		logger:  log.New(io.Discard),
		now:     time.Now,
		sleep:   time.Sleep,
		desired: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.desired = e.clampRate(1)
	return e
}

// clampRate maps a time scale to a safe playback rate.
func (e *Engine) clampRate(s float64) float64 {
	if math.IsNaN(s) || s <= 0 {
		return e.cfg.MinRate
	}
	return math.Max(e.cfg.MinRate, math.Min(e.cfg.MaxRate, s))
}

// Start begins playback at the last requested rate. It does nothing without
// a backend, after Stop, or once playing.
func (e *Engine) Start() {
	if e.backend == nil || e.stopped || e.disabled || e.started {
		return
	}
	e.started = true

	h, err := e.spawn(e.desired, e.cfg.BaseVolume, nil)
	if err != nil {
		e.disable(err)
		return
	}
	e.active = h
	e.logger.Debug("music started", "rate", e.desired)
}

// spawn opens a handle and, after the startup delay, sets its rate and seeks
// it to from's position (read after the delay) or to 0.
func (e *Engine) spawn(rate, volume float64, from Handle) (Handle, error) {
	h, err := e.backend.Open(volume)
	if err != nil {
		return nil, fmt.Errorf("audio: open handle: %w", err)
	}
	if e.paused {
		h.SetPaused(true)
	}

	// Some backends drop rate and seek requests issued right after playback
	// begins.
	if e.cfg.StartupDelay > 0 {
		e.sleep(e.cfg.StartupDelay)
	}

	var pos time.Duration
	if from != nil {
		pos = from.Position()
	}
	if err := h.SetRate(rate); err != nil {
		h.Stop()
		return nil, fmt.Errorf("audio: set rate %.2f: %w", rate, err)
	}
	if err := h.Seek(pos); err != nil {
		h.Stop()
		return nil, fmt.Errorf("audio: seek %v: %w", pos, err)
	}
	return h, nil
}

// SetTimeScale requests playback at rate s, clamped to the safe range.
// Requests within the deadband of the rate being converged to are ignored.
// A request back near the active rate cancels a running fade; any other
// request during a fade replaces the pending handle.
func (e *Engine) SetTimeScale(s float64) {
	rate := e.clampRate(s)
	e.desired = rate
	if e.active == nil || e.stopped || e.disabled {
		return
	}

	activeRate := e.active.Rate()
	target := activeRate
	if e.pending != nil {
		target = e.pendingRate
	}
	if math.Abs(rate-target) < e.cfg.Deadband {
		return
	}

	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
		if math.Abs(rate-activeRate) < e.cfg.Deadband {
			e.active.SetVolume(e.cfg.BaseVolume)
			e.logger.Debug("crossfade cancelled", "rate", activeRate)
			return
		}
	}

	h, err := e.spawn(rate, 0, e.active)
	if err != nil {
		e.disable(err)
		return
	}
	e.pending = h
	e.pendingRate = rate
	e.fadeStart = e.now()
	e.logger.Debug("crossfade started", "from", activeRate, "to", rate)
}

// Tick advances a running crossfade to wall-clock time now. When the fade
// completes the old handle is stopped and the pending one becomes active.
func (e *Engine) Tick(now time.Time) {
	if e.pending == nil || e.active == nil || e.paused {
		return
	}

	t := float64(now.Sub(e.fadeStart)) / float64(e.cfg.Crossfade)
	t = math.Max(0, math.Min(1, t))

	if t >= 1 {
		e.active.Stop()
		e.active = e.pending
		e.pending = nil
		e.active.SetVolume(e.cfg.BaseVolume)
		return
	}

	e.active.SetVolume((1 - t) * e.cfg.BaseVolume)
	e.pending.SetVolume(t * e.cfg.BaseVolume)
}

// Pause pauses or resumes every live handle. A running crossfade is frozen
// while paused and resumes where it left off.
func (e *Engine) Pause(paused bool) {
	switch {
	case paused && !e.paused:
		e.pausedAt = e.now()
	case !paused && e.paused && e.pending != nil:
		from := e.pausedAt
		if e.fadeStart.After(from) {
			from = e.fadeStart
		}
		e.fadeStart = e.fadeStart.Add(e.now().Sub(from))
	}
	e.paused = paused
	if e.active != nil {
		e.active.SetPaused(paused)
	}
	if e.pending != nil {
		e.pending.SetPaused(paused)
	}
}

// Stop stops and releases both handles. It is idempotent and nothing can
// restart the engine afterwards.
func (e *Engine) Stop() {
	e.stopped = true
	e.release()
}

func (e *Engine) release() {
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
	if e.active != nil {
		e.active.Stop()
		e.active = nil
	}
}

// disable turns audio off for the rest of the session.
func (e *Engine) disable(err error) {
	e.release()
	if !e.disabled {
		e.logger.Warn("audio disabled for this session", "error", err)
	}
	e.disabled = true
}

// Handles returns the number of live handles (0, 1 or 2).
func (e *Engine) Handles() int {
	n := 0
	if e.active != nil {
		n++
	}
	if e.pending != nil {
		n++
	}
	return n
}

// Fading reports whether a crossfade is in progress.
func (e *Engine) Fading() bool {
	return e.pending != nil
}

// Rate returns the audible rate: the active handle's, or the requested rate
// when nothing plays.
func (e *Engine) Rate() float64 {
	if e.active != nil {
		return e.active.Rate()
	}
	return e.desired
}

// Playing reports whether a handle is live.
func (e *Engine) Playing() bool {
	return e.active != nil
}

// Status returns a short label for HUD display.
func (e *Engine) Status() string {
	switch {
	case e.disabled:
		return "audio off"
	case e.backend == nil:
		return "muted"
	case e.stopped:
		return "stopped"
	case e.pending != nil:
		return fmt.Sprintf("fade %.1fx", e.pendingRate)
	case e.active != nil:
		return fmt.Sprintf("music %.1fx", e.active.Rate())
	default:
		return "idle"
	}
}
