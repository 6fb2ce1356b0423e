package game

import (
	"github.com/vovakirdan/beatshot/internal/beat"
	"github.com/vovakirdan/beatshot/internal/config"
	"github.com/vovakirdan/beatshot/internal/core"
)

// Kind selects enemy behavior.
type Kind int

const (
	KindRanged   Kind = iota // Keeps its distance and shoots on the beat
	KindMelee                // Closes in and strikes on the beat
	KindKamikaze             // Charges and explodes on contact
)

// String returns the config name of the kind.
func (k Kind) String() string {
	switch k {
	case KindRanged:
		return "ranged"
	case KindMelee:
		return "melee"
	case KindKamikaze:
		return "kamikaze"
	default:
		return "unknown"
	}
}

// Glyph returns the rune used to draw the kind.
func (k Kind) Glyph() rune {
	switch k {
	case KindRanged:
		return 'R'
	case KindMelee:
		return 'M'
	case KindKamikaze:
		return 'K'
	default:
		return '?'
	}
}

// Color returns the draw color of the kind.
func (k Kind) Color() core.Color {
	switch k {
	case KindRanged:
		return core.ColorRanged
	case KindMelee:
		return core.ColorMelee
	case KindKamikaze:
		return core.ColorKamikaze
	default:
		return core.ColorDefault
	}
}

// ParseKind maps a config name to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "ranged":
		return KindRanged, true
	case "melee":
		return KindMelee, true
	case "kamikaze":
		return KindKamikaze, true
	default:
		return 0, false
	}
}

// retreatFactor is the fraction of its range inside which a ranged enemy
// backs away from the player.
const retreatFactor = 0.6

// Enemy is one hostile. Behavior data comes from the level config, scaled
// by wave.
type Enemy struct {
	Kind      Kind
	Pos       core.Vec
	Health    int
	MaxHealth int

	Damage           int
	AttackEveryBeats int
	Speed            float64
	Range            float64
	ProjectileSpeed  float64
	BlastRadius      float64
	FriendlyDamage   int

	beats int // Beats seen since spawning
	dead  bool
}

// newEnemy builds an enemy of archetype ec for wave (1-based).
func newEnemy(ec config.EnemyConfig, wave int, pos core.Vec) *Enemy {
	kind, _ := ParseKind(ec.Kind)
	extra := wave - 1
	health := ec.Health + ec.HealthPerWave*extra
	if health < 1 {
		health = 1
	}
	every := ec.AttackEveryBeats
	if every < 1 {
		every = 1
	}
	return &Enemy{
		Kind:             kind,
		Pos:              pos,
		Health:           health,
		MaxHealth:        health,
		Damage:           ec.Damage + ec.DamagePerWave*extra,
		AttackEveryBeats: every,
		Speed:            ec.Speed,
		Range:            ec.Range,
		ProjectileSpeed:  ec.ProjectileSpeed,
		BlastRadius:      ec.BlastRadius,
		FriendlyDamage:   ec.FriendlyDamage,
	}
}

// Alive reports whether the enemy is still in play.
func (e *Enemy) Alive() bool {
	return !e.dead
}

// Update moves the enemy for dt seconds of scaled time.
func (e *Enemy) Update(w *World, dt float64) {
	if e.dead || dt <= 0 {
		return
	}
	target := w.player.Pos
	dist := e.Pos.Dist(target)
	toward := target.Sub(e.Pos).Norm()

	switch e.Kind {
	case KindRanged:
		switch {
		case dist > e.Range:
			e.move(w, toward, dt)
		case dist < e.Range*retreatFactor:
			e.move(w, toward.Scale(-1), dt)
		}
	case KindMelee:
		if dist > e.Range {
			e.move(w, toward, dt)
		}
	case KindKamikaze:
		if dist <= e.Range {
			w.explode(e)
			return
		}
		e.move(w, toward, dt)
	}
}

func (e *Enemy) move(w *World, dir core.Vec, dt float64) {
	e.Pos = w.clampToArena(e.Pos.Add(dir.Scale(e.Speed * dt)))
}

// OnBeat runs the enemy's attack every AttackEveryBeats beats.
func (e *Enemy) OnBeat(w *World, ev beat.Event) {
	if e.dead {
		return
	}
	e.beats++
	if e.beats%e.AttackEveryBeats != 0 {
		return
	}

	switch e.Kind {
	case KindRanged:
		dir := w.player.Pos.Sub(e.Pos).Norm()
		if dir == (core.Vec{}) || e.ProjectileSpeed <= 0 {
			return
		}
		w.fire(&Projectile{
			Pos:    e.Pos,
			Vel:    dir.Scale(e.ProjectileSpeed),
			Damage: e.Damage,
		})
	case KindMelee:
		if e.Pos.Dist(w.player.Pos) <= e.Range {
			w.hitPlayer(e.Damage)
		}
	case KindKamikaze:
		// Contact is resolved in Update
	}
}

// takeDamage removes up to amount health and reports whether it killed.
func (e *Enemy) takeDamage(amount int) bool {
	if e.dead || amount <= 0 {
		return false
	}
	e.Health -= amount
	if e.Health <= 0 {
		e.Health = 0
		e.dead = true
		return true
	}
	return false
}
