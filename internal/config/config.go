// Package config provides YAML-based configuration for beat synchronization,
// audio playback and level definitions.
package config

import "time"

// SyncConfig contains the timing and audio options shared by every level.
type SyncConfig struct {
	TimeScale TimeScaleConfig `yaml:"time_scale"`
	Beat      BeatConfig      `yaml:"beat"`
	Audio     AudioConfig     `yaml:"audio"`
}

// TimeScaleConfig bounds the global simulation speed multiplier.
type TimeScaleConfig struct {
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Step    float64 `yaml:"step"`    // Change applied per key press or wheel notch
	Initial float64 `yaml:"initial"` // Scale at session start
}

// BeatConfig controls beat detection.
type BeatConfig struct {
	FallbackBPM     float64 `yaml:"fallback_bpm"`      // Used when no usable MIDI track exists
	OnBeatTolerance float64 `yaml:"on_beat_tolerance"` // Fraction of the current interval
	ChordMergeMS    int     `yaml:"chord_merge_ms"`    // Onsets closer than this collapse into one beat
}

// AudioConfig controls background music playback.
type AudioConfig struct {
	Enabled        bool    `yaml:"enabled"`
	BaseVolume     float64 `yaml:"base_volume"` // 0-100
	MinRate        float64 `yaml:"min_rate"`
	MaxRate        float64 `yaml:"max_rate"`
	Deadband       float64 `yaml:"deadband"`
	CrossfadeMS    int     `yaml:"crossfade_ms"`
	StartupDelayMS int     `yaml:"startup_delay_ms"`
	Loop           bool    `yaml:"loop"`
	SampleRate     int     `yaml:"sample_rate"`
}

// CrossfadeDuration returns the crossfade window as a duration.
func (a AudioConfig) CrossfadeDuration() time.Duration {
	return time.Duration(a.CrossfadeMS) * time.Millisecond
}

// StartupDelay returns the wait applied after opening a new playback handle.
func (a AudioConfig) StartupDelay() time.Duration {
	return time.Duration(a.StartupDelayMS) * time.Millisecond
}

// ChordMergeWindow returns the chord merge window in seconds.
func (b BeatConfig) ChordMergeWindow() float64 {
	return float64(b.ChordMergeMS) / 1000.0
}

// Normalize repairs out-of-range values in place so that a hand-edited
// file can never produce an unusable configuration.
func (c *SyncConfig) Normalize() {
	def := DefaultSyncConfig()

	ts := &c.TimeScale
	if ts.Min <= 0 {
		ts.Min = def.TimeScale.Min
	}
	if ts.Max <= 0 {
		ts.Max = def.TimeScale.Max
	}
	if ts.Min > ts.Max {
		ts.Min, ts.Max = ts.Max, ts.Min
	}
	if ts.Step <= 0 {
		ts.Step = def.TimeScale.Step
	}
	if ts.Initial <= 0 {
		ts.Initial = def.TimeScale.Initial
	}
	ts.Initial = clampF(ts.Initial, ts.Min, ts.Max)

	b := &c.Beat
	if b.FallbackBPM <= 0 {
		b.FallbackBPM = def.Beat.FallbackBPM
	}
	if b.OnBeatTolerance <= 0 {
		b.OnBeatTolerance = def.Beat.OnBeatTolerance
	}
	b.OnBeatTolerance = clampF(b.OnBeatTolerance, 0, 0.5)
	if b.ChordMergeMS < 0 {
		b.ChordMergeMS = 0
	}

	a := &c.Audio
	a.BaseVolume = clampF(a.BaseVolume, 0, 100)
	if a.MinRate <= 0 {
		a.MinRate = def.Audio.MinRate
	}
	if a.MaxRate <= 0 {
		a.MaxRate = def.Audio.MaxRate
	}
	if a.MinRate > a.MaxRate {
		a.MinRate, a.MaxRate = a.MaxRate, a.MinRate
	}
	if a.Deadband < 0 {
		a.Deadband = 0
	}
	if a.CrossfadeMS <= 0 {
		a.CrossfadeMS = def.Audio.CrossfadeMS
	}
	if a.StartupDelayMS < 0 {
		a.StartupDelayMS = 0
	}
	if a.SampleRate <= 0 {
		a.SampleRate = def.Audio.SampleRate
	}
}

// LevelConfig describes one playable level.
type LevelConfig struct {
	ID      string  `yaml:"id"`
	Title   string  `yaml:"title"`
	Order   int     `yaml:"order"`   // Menu position
	BPM     float64 `yaml:"bpm"`     // Overrides beat.fallback_bpm when no MIDI is usable
	Beatmap string  `yaml:"beatmap"` // MIDI file, relative to the assets directory
	Music   string  `yaml:"music"`   // Audio file, relative to the assets directory

	Player  PlayerConfig  `yaml:"player"`
	Waves   WavesConfig   `yaml:"waves"`
	Enemies []EnemyConfig `yaml:"enemies"`
	Damage  DamageConfig  `yaml:"damage"`
	Scoring ScoringConfig `yaml:"scoring"`
}

// PlayerConfig defines the player character.
type PlayerConfig struct {
	Health            int     `yaml:"health"`
	Step              int     `yaml:"step"`          // Cells moved per key press
	AttackRadius      float64 `yaml:"attack_radius"` // Shockwave reach in cells
	DashDistance      int     `yaml:"dash_distance"`
	DashCooldownBeats int     `yaml:"dash_cooldown_beats"`
}

// WavesConfig defines wave progression.
type WavesConfig struct {
	Count           int `yaml:"count"`  // Waves to clear for victory
	Base            int `yaml:"base"`   // Enemies in wave 1
	Growth          int `yaml:"growth"` // Extra enemies per subsequent wave
	SpawnEveryBeats int `yaml:"spawn_every_beats"`
	MaxAlive        int `yaml:"max_alive"`
	PauseBeats      int `yaml:"pause_beats"` // Beats between a cleared wave and the next
}

// EnemyConfig defines one enemy archetype and its spawn weight.
type EnemyConfig struct {
	Kind             string  `yaml:"kind"` // "ranged", "melee" or "kamikaze"
	Weight           int     `yaml:"weight"`
	Health           int     `yaml:"health"`
	HealthPerWave    int     `yaml:"health_per_wave"`
	Damage           int     `yaml:"damage"`
	DamagePerWave    int     `yaml:"damage_per_wave"`
	AttackEveryBeats int     `yaml:"attack_every_beats"`
	Speed            float64 `yaml:"speed"` // Cells per second of scaled time
	Range            float64 `yaml:"range"`
	ProjectileSpeed  float64 `yaml:"projectile_speed"`
	BlastRadius      float64 `yaml:"blast_radius"`
	FriendlyDamage   int     `yaml:"friendly_damage"`
}

// DamageConfig defines the on-beat damage rule.
type DamageConfig struct {
	PerfectKill     bool    `yaml:"perfect_kill"`      // On-beat hits remove all remaining health
	PerfectFraction float64 `yaml:"perfect_fraction"`  // Used when perfect_kill is false
	OffBeatFraction float64 `yaml:"off_beat_fraction"` // Fraction of max health removed off beat
}

// ScoringConfig defines score awards.
type ScoringConfig struct {
	KillPoints   int `yaml:"kill_points"`
	PerfectBonus int `yaml:"perfect_bonus"`
	ComboStep    int `yaml:"combo_step"` // Combo hits per extra multiplier
	WaveBonus    int `yaml:"wave_bonus"`
}

// Validate reports the first structural problem in a level definition.
func (l LevelConfig) Validate() error {
	if l.ID == "" {
		return errLevel(l.ID, "missing id")
	}
	if l.Waves.Count <= 0 {
		return errLevel(l.ID, "waves.count must be positive")
	}
	if len(l.Enemies) == 0 {
		return errLevel(l.ID, "no enemies defined")
	}
	for _, e := range l.Enemies {
		switch e.Kind {
		case "ranged", "melee", "kamikaze":
		default:
			return errLevel(l.ID, "unknown enemy kind "+e.Kind)
		}
	}
	return nil
}
