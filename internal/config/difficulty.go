package config

import "math"

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// ParseDifficulty maps a flag value to a preset. Unknown values yield normal.
func ParseDifficulty(s string) (DifficultyPreset, bool) {
	switch DifficultyPreset(s) {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return DifficultyPreset(s), true
	case "":
		return DifficultyNormal, true
	default:
		return DifficultyNormal, false
	}
}

// difficultyScaling holds the multipliers a preset applies.
type difficultyScaling struct {
	health    float64
	damage    float64
	tolerance float64 // Added to the on-beat tolerance
}

func scalingFor(preset DifficultyPreset) difficultyScaling {
	switch preset {
	case DifficultyEasy:
		return difficultyScaling{health: 0.75, damage: 0.5, tolerance: 0.04}
	case DifficultyHard:
		return difficultyScaling{health: 1.5, damage: 1.5, tolerance: -0.04}
	default:
		return difficultyScaling{health: 1, damage: 1}
	}
}

// ApplyDifficulty scales enemy stats of a level for a preset.
func ApplyDifficulty(cfg *LevelConfig, preset DifficultyPreset) {
	sc := scalingFor(preset)
	for i := range cfg.Enemies {
		e := &cfg.Enemies[i]
		e.Health = scaleInt(e.Health, sc.health, 1)
		e.HealthPerWave = scaleInt(e.HealthPerWave, sc.health, 0)
		e.Damage = scaleInt(e.Damage, sc.damage, 0)
		e.DamagePerWave = scaleInt(e.DamagePerWave, sc.damage, 0)
		e.FriendlyDamage = scaleInt(e.FriendlyDamage, sc.damage, 0)
	}
}

// ApplyDifficultyTolerance widens or narrows the on-beat window for a preset.
func ApplyDifficultyTolerance(cfg *SyncConfig, preset DifficultyPreset) {
	sc := scalingFor(preset)
	cfg.Beat.OnBeatTolerance = clampF(cfg.Beat.OnBeatTolerance+sc.tolerance, 0.02, 0.5)
}

func scaleInt(v int, mult float64, floor int) int {
	n := int(math.Round(float64(v) * mult))
	if n < floor {
		return floor
	}
	return n
}

// clampF restricts a float64 to [min, max].
func clampF(val, min, max float64) float64 {
	return math.Max(min, math.Min(max, val))
}
