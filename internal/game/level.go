package game

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/beatshot/internal/audio"
	"github.com/vovakirdan/beatshot/internal/beat"
	"github.com/vovakirdan/beatshot/internal/config"
	"github.com/vovakirdan/beatshot/internal/core"
	"github.com/vovakirdan/beatshot/internal/effects"
	"github.com/vovakirdan/beatshot/internal/registry"
)

// Layout constants
const (
	hudRows    = 2  // Stats line and beat line above the arena
	minScreenW = 40 // Smallest playable terminal
	minScreenH = 14
)

// Level is one playable session: a World driven by a beat coordinator that
// also keeps the music in step with the time scale.
type Level struct {
	id    string
	title string
	env   registry.Env

	logger  *log.Logger
	runtime core.RuntimeConfig
	cfg     config.LevelConfig

	coord *beat.Coordinator
	music *audio.Engine
	world *World

	paused         bool
	done           bool // Finish has been handled for this run
	screenTooSmall bool
}

// NewLevel creates a level for the definition lc. Nothing is loaded until
// Reset.
func NewLevel(lc config.LevelConfig, env registry.Env) *Level {
	logger := env.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if env.Now == nil {
		env.Now = time.Now
	}
	return &Level{
		id:     lc.ID,
		title:  lc.Title,
		env:    env,
		logger: logger.With("level", lc.ID),
		cfg:    lc,
	}
}

// ID returns the level identifier.
func (l *Level) ID() string {
	return l.id
}

// Title returns the level display name.
func (l *Level) Title() string {
	return l.title
}

// Reset stops any running session and starts a new one: level config, beat
// map, music engine, coordinator and world.
func (l *Level) Reset(rc core.RuntimeConfig) error {
	l.stopSession()
	l.runtime = rc
	l.paused = false
	l.done = false
	l.screenTooSmall = rc.ScreenW < minScreenW || rc.ScreenH < minScreenH

	cfg, err := config.LoadLevel(l.id, l.env.LevelPath)
	if err != nil {
		return fmt.Errorf("game: %w", err)
	}
	if l.env.Difficulty != "" {
		config.ApplyDifficulty(&cfg, l.env.Difficulty)
	}
	l.cfg = cfg
	l.title = cfg.Title

	sync := l.env.Sync
	if sync.TimeScale.Max == 0 {
		sync = config.DefaultSyncConfig()
	}
	sync.Normalize()
	if l.env.Difficulty != "" {
		config.ApplyDifficultyTolerance(&sync, l.env.Difficulty)
	}

	var beats beat.BeatMap
	if cfg.Beatmap != "" {
		beats = beat.LoadTrack(l.assetPath(cfg.Beatmap), l.logger)
		beats = beats.Merge(sync.Beat.ChordMergeWindow())
	}

	l.music = audio.NewEngine(l.openMusic(cfg, sync), audio.ConfigFrom(sync.Audio),
		audio.WithLogger(l.logger),
		audio.WithClock(l.env.Now),
	)

	bpm := sync.Beat.FallbackBPM
	if cfg.BPM > 0 {
		bpm = cfg.BPM
	}
	l.coord = beat.NewCoordinator(beat.Options{
		MinScale:     sync.TimeScale.Min,
		MaxScale:     sync.TimeScale.Max,
		Step:         sync.TimeScale.Step,
		InitialScale: sync.TimeScale.Initial,
		Tolerance:    sync.Beat.OnBeatTolerance,
		FallbackBPM:  bpm,
		Audio:        l.music,
		Logger:       l.logger,
		Now:          l.env.Now,
	})
	if err := l.coord.Load(beats); err != nil {
		return fmt.Errorf("game: %w", err)
	}
	l.music.Start()

	w, h := arenaSize(rc)
	l.world = NewWorld(cfg, w, h, l.coord, effects.NewManager(effects.DefaultConfig()), rc.Seed)

	l.logger.Info("level started",
		"waves", cfg.Waves.Count, "beat_source", l.coord.Mode(), "audio", l.music.Status())
	return nil
}

// openMusic returns the music backend, or nil to play muted.
func (l *Level) openMusic(cfg config.LevelConfig, sync config.SyncConfig) audio.Backend {
	if l.env.OpenAudio == nil || !sync.Audio.Enabled || cfg.Music == "" {
		return nil
	}
	p := l.assetPath(cfg.Music)
	b, err := l.env.OpenAudio(p)
	if err != nil {
		l.logger.Warn("music unavailable, playing muted", "path", p, "error", err)
		return nil
	}
	return b
}

func (l *Level) assetPath(p string) string {
	if filepath.IsAbs(p) || l.env.Assets == "" {
		return p
	}
	return filepath.Join(l.env.Assets, p)
}

// arenaSize returns the interior of the arena box for a screen.
func arenaSize(rc core.RuntimeConfig) (int, int) {
	return rc.ScreenW - 2, rc.ScreenH - hudRows - 2
}

// Step advances the level by dt wall-clock seconds.
func (l *Level) Step(in core.InputFrame, dt float64) core.StepResult {
	if l.world == nil || l.screenTooSmall {
		return core.StepResult{State: l.State()}
	}

	if l.world.Finished() {
		l.finish()
		if in.Has(core.ActionRestart) {
			if err := l.Reset(l.runtime); err != nil {
				l.logger.Error("restart failed", "error", err)
			}
		}
		return core.StepResult{State: l.State()}
	}

	if in.Has(core.ActionPause) {
		l.paused = !l.paused
		l.coord.SetPaused(l.paused)
	}
	if l.paused {
		return core.StepResult{State: l.State()}
	}

	if in.Has(core.ActionScaleUp) {
		l.coord.StepTimeScale(1)
	}
	if in.Has(core.ActionScaleDown) {
		l.coord.StepTimeScale(-1)
	}

	l.world.HandleInput(in)
	events := l.coord.Tick(dt, l.world)
	l.world.Update(l.coord.ScaledDt(), dt)

	if l.world.Finished() {
		l.finish()
	}

	return core.StepResult{State: l.State(), Beats: len(events)}
}

// finish ends the beat session once per run; leaving the level stops the
// music.
func (l *Level) finish() {
	if l.done {
		return
	}
	l.done = true
	l.coord.Stop()
	l.logger.Info("level finished",
		"won", l.world.Won(), "score", l.world.Score(), "beats", l.coord.BeatIndex())
}

// State returns the HUD-level game state.
func (l *Level) State() core.GameState {
	if l.world == nil {
		return core.GameState{}
	}
	return core.GameState{
		Score:     l.world.Score(),
		Wave:      l.world.Wave(),
		Health:    l.world.Player().Health,
		Combo:     l.world.Combo(),
		TimeScale: l.coord.TimeScale(),
		GameOver:  l.world.Lost(),
		Won:       l.world.Won(),
		Paused:    l.paused,
	}
}

// Result returns the statistics of the current run.
func (l *Level) Result() core.RunStats {
	if l.world == nil {
		return core.RunStats{}
	}
	r := l.world.Stats()
	r.Beats = l.coord.BeatIndex()
	r.FinalTimeScale = l.coord.TimeScale()
	return r
}

// Close stops the beat session and releases the music. It is idempotent.
func (l *Level) Close() {
	l.stopSession()
}

func (l *Level) stopSession() {
	if l.coord != nil {
		l.coord.Stop()
	}
}

// Effects returns the effect snapshot and the screen rectangle of the arena
// interior, which is also the effect clip area.
func (l *Level) Effects() (effects.Frame, core.Rect) {
	if l.world == nil || l.screenTooSmall {
		return effects.Frame{}, core.Rect{}
	}
	w, h := l.world.Size()
	return l.world.Effects(), core.NewRect(1, hudRows+1, w, h)
}

// World returns the arena, or nil before Reset.
func (l *Level) World() *World {
	return l.world
}

// Coordinator returns the beat coordinator, or nil before Reset.
func (l *Level) Coordinator() *beat.Coordinator {
	return l.coord
}

// Music returns the music engine, or nil before Reset.
func (l *Level) Music() *audio.Engine {
	return l.music
}

func init() {
	levels, err := config.EmbeddedLevels()
	if err != nil {
		panic(fmt.Sprintf("game: embedded levels: %v", err))
	}
	for _, lc := range levels {
		registry.Register(lc.ID, lc.Order, func(env registry.Env) registry.Game {
			return NewLevel(lc, env)
		})
	}
}
