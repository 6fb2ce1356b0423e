package game

import (
	"github.com/vovakirdan/beatshot/internal/beat"
	"github.com/vovakirdan/beatshot/internal/core"
)

// Entity is anything in the arena that moves in scaled time and reacts to
// beats.
type Entity interface {
	Update(w *World, dt float64)
	OnBeat(w *World, ev beat.Event)
	Alive() bool
}

// Player is the character controlled by the keyboard.
type Player struct {
	Pos       core.Vec
	Facing    core.Vec // Last movement direction, never zero
	Health    int
	MaxHealth int

	dashCooldown int // Beats until the next dash
}

func newPlayer(pos core.Vec, health int) *Player {
	return &Player{
		Pos:       pos,
		Facing:    core.Vec{X: 1},
		Health:    health,
		MaxHealth: health,
	}
}

// Update is a no-op: the player moves in discrete steps from input.
func (p *Player) Update(w *World, dt float64) {}

// OnBeat counts down the dash cooldown.
func (p *Player) OnBeat(w *World, ev beat.Event) {
	if p.dashCooldown > 0 {
		p.dashCooldown--
	}
}

// Alive reports whether the player has health left.
func (p *Player) Alive() bool {
	return p.Health > 0
}

// DashReady reports whether a dash is available.
func (p *Player) DashReady() bool {
	return p.dashCooldown == 0
}

// DashCooldown returns the beats left before the next dash.
func (p *Player) DashCooldown() int {
	return p.dashCooldown
}

// Projectile is a shot fired by a ranged enemy.
type Projectile struct {
	Pos    core.Vec
	Vel    core.Vec // Cells per second of scaled time
	Damage int

	dead bool
}

// projectileHitRadius is the distance at which a projectile strikes the player.
const projectileHitRadius = 1.0

// Update moves the projectile and resolves a hit on the player.
func (b *Projectile) Update(w *World, dt float64) {
	if b.dead {
		return
	}
	b.Pos = b.Pos.Add(b.Vel.Scale(dt))
	if !w.inArena(b.Pos) {
		b.dead = true
		return
	}
	if b.Pos.Dist(w.player.Pos) <= projectileHitRadius {
		w.hitPlayer(b.Damage)
		b.dead = true
	}
}

// OnBeat does nothing; projectiles fly freely between beats.
func (b *Projectile) OnBeat(w *World, ev beat.Event) {}

// Alive reports whether the projectile is still in flight.
func (b *Projectile) Alive() bool {
	return !b.dead
}

// Position implements effects.Bullet.
func (b *Projectile) Position() (x, y float64) {
	return b.Pos.X, b.Pos.Y
}

// Velocity implements effects.Bullet.
func (b *Projectile) Velocity() (vx, vy float64) {
	return b.Vel.X, b.Vel.Y
}
