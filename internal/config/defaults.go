package config

import (
	"embed"
)

//go:embed defaults/sync.yaml
var defaultSyncYAML []byte

//go:embed defaults/levels/*.yaml
var defaultLevelsFS embed.FS

// DefaultSyncConfig returns the built-in synchronization configuration.
func DefaultSyncConfig() SyncConfig {
	return SyncConfig{
		TimeScale: TimeScaleConfig{
			Min:     0.1,
			Max:     3.0,
			Step:    0.1,
			Initial: 1.0,
		},
		Beat: BeatConfig{
			FallbackBPM:     120,
			OnBeatTolerance: 0.12,
			ChordMergeMS:    30,
		},
		Audio: AudioConfig{
			Enabled:        true,
			BaseVolume:     100,
			MinRate:        0.1,
			MaxRate:        2.0,
			Deadband:       0.05,
			CrossfadeMS:    400,
			StartupDelayMS: 150,
			Loop:           true,
			SampleRate:     44100,
		},
	}
}

// DefaultLevelConfig returns a playable level used when no definition loads.
func DefaultLevelConfig() LevelConfig {
	return LevelConfig{
		ID:    "level1",
		Title: "Level 1 - First Pulse",
		Order: 1,
		BPM:   120,
		Player: PlayerConfig{
			Health:            100,
			Step:              1,
			AttackRadius:      8,
			DashDistance:      6,
			DashCooldownBeats: 4,
		},
		Waves: WavesConfig{
			Count:           5,
			Base:            1,
			Growth:          1,
			SpawnEveryBeats: 2,
			MaxAlive:        10,
			PauseBeats:      4,
		},
		Enemies: []EnemyConfig{
			{
				Kind:             "ranged",
				Weight:           1,
				Health:           60,
				HealthPerWave:    10,
				Damage:           5,
				DamagePerWave:    2,
				AttackEveryBeats: 4,
				Speed:            3,
				Range:            14,
				ProjectileSpeed:  10,
			},
		},
		Damage: DamageConfig{
			PerfectKill:     true,
			PerfectFraction: 1.0,
			OffBeatFraction: 0.5,
		},
		Scoring: ScoringConfig{
			KillPoints:   100,
			PerfectBonus: 50,
			ComboStep:    5,
			WaveBonus:    250,
		},
	}
}

// fillLevelDefaults replaces zero-valued tuning fields with built-in values.
func fillLevelDefaults(l *LevelConfig) {
	def := DefaultLevelConfig()
	if l.Title == "" {
		l.Title = l.ID
	}
	if l.BPM < 0 {
		l.BPM = 0
	}

	p := &l.Player
	if p.Health <= 0 {
		p.Health = def.Player.Health
	}
	if p.Step <= 0 {
		p.Step = def.Player.Step
	}
	if p.AttackRadius <= 0 {
		p.AttackRadius = def.Player.AttackRadius
	}
	if p.DashDistance <= 0 {
		p.DashDistance = def.Player.DashDistance
	}
	if p.DashCooldownBeats < 0 {
		p.DashCooldownBeats = 0
	}

	w := &l.Waves
	if w.Base <= 0 {
		w.Base = def.Waves.Base
	}
	if w.Growth < 0 {
		w.Growth = 0
	}
	if w.SpawnEveryBeats <= 0 {
		w.SpawnEveryBeats = def.Waves.SpawnEveryBeats
	}
	if w.MaxAlive <= 0 {
		w.MaxAlive = def.Waves.MaxAlive
	}
	if w.PauseBeats < 0 {
		w.PauseBeats = 0
	}

	for i := range l.Enemies {
		e := &l.Enemies[i]
		if e.Weight <= 0 {
			e.Weight = 1
		}
		if e.Health <= 0 {
			e.Health = 30
		}
		if e.AttackEveryBeats <= 0 {
			e.AttackEveryBeats = 1
		}
		if e.Speed < 0 {
			e.Speed = 0
		}
	}

	d := &l.Damage
	if d.PerfectFraction <= 0 {
		d.PerfectFraction = def.Damage.PerfectFraction
	}
	if d.OffBeatFraction <= 0 {
		d.OffBeatFraction = def.Damage.OffBeatFraction
	}
	d.PerfectFraction = clampF(d.PerfectFraction, 0, 1)
	d.OffBeatFraction = clampF(d.OffBeatFraction, 0, 1)

	if l.Scoring.ComboStep <= 0 {
		l.Scoring.ComboStep = def.Scoring.ComboStep
	}
}
