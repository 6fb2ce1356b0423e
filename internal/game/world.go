// Package game implements the arena: the player, three enemy kinds,
// projectiles, wave progression and the on-beat combat rule. Level wraps a
// World with its beat coordinator and music engine and is what the
// platform plays.
package game

import (
	"fmt"
	"math"

	"github.com/vovakirdan/beatshot/internal/beat"
	"github.com/vovakirdan/beatshot/internal/config"
	"github.com/vovakirdan/beatshot/internal/core"
	"github.com/vovakirdan/beatshot/internal/effects"
)

// BeatSource answers rhythm queries for the combat rule.
type BeatSource interface {
	IsOnBeat() bool
	Interval() float64
	MusicTime() float64
}

// Popup is floating feedback text. Its lifetime runs in wall-clock time so
// it stays readable in slow motion.
type Popup struct {
	Text      string
	Pos       core.Vec
	Color     core.Color
	Remaining float64
}

const (
	popupLifetime     = 0.6 // Wall-clock seconds
	blackHoleDuration = 1.5 // Scaled seconds
)

// World holds every entity in the arena. Coordinates are cells with the
// origin at the arena's top-left interior corner.
type World struct {
	cfg   config.LevelConfig
	beats BeatSource
	fx    *effects.Manager
	rng   *RNG

	width, height int

	player      *Player
	enemies     []*Enemy
	projectiles []*Projectile
	popups      []Popup

	wave       int
	toSpawn    int // Enemies of the current wave not yet spawned
	sinceSpawn int // Beats since the last spawn
	pause      int // Beats left before the next wave starts

	score        int
	kills        int
	perfectHits  int
	offBeatHits  int
	combo        int
	maxCombo     int
	wavesCleared int
	elapsed      float64

	lastPerfect float64
	hasPerfect  bool

	won  bool
	lost bool
}

// NewWorld creates an arena of width x height cells and starts wave 1.
func NewWorld(cfg config.LevelConfig, width, height int, beats BeatSource, fx *effects.Manager, seed int64) *World {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if fx == nil {
		fx = effects.NewManager(effects.DefaultConfig())
	}
	w := &World{
		cfg:    cfg,
		beats:  beats,
		fx:     fx,
		rng:    NewRNG(seed),
		width:  width,
		height: height,
	}
	center := core.Vec{X: float64(width / 2), Y: float64(height / 2)}
	w.player = newPlayer(center, cfg.Player.Health)
	w.startWave(1)
	return w
}

// OnBeat delivers a beat to every entity, then runs the wave spawner.
func (w *World) OnBeat(ev beat.Event) {
	if w.Finished() {
		return
	}
	for _, e := range w.entities() {
		e.OnBeat(w, ev)
	}
	w.spawnerBeat()
}

// HandleInput applies movement, dash and attack for this frame.
func (w *World) HandleInput(in core.InputFrame) {
	if w.Finished() {
		return
	}
	p := w.player

	if dx, dy := in.Direction(); dx != 0 || dy != 0 {
		step := float64(w.cfg.Player.Step)
		p.Facing = core.Vec{X: float64(dx), Y: float64(dy)}
		p.Pos = w.clampToArena(p.Pos.Add(p.Facing.Scale(step)))
	}
	if in.Has(core.ActionDash) {
		w.dash()
	}
	if in.Has(core.ActionAttack) {
		w.attack()
	}
}

// Update advances entities by scaledDt and popups by rawDt.
func (w *World) Update(scaledDt, rawDt float64) {
	w.tickPopups(rawDt)
	if !w.Finished() {
		w.elapsed += rawDt
		for _, e := range w.entities() {
			e.Update(w, scaledDt)
		}
		w.prune()
		w.checkWave()
	}
	w.fx.Update(scaledDt)
}

func (w *World) entities() []Entity {
	out := make([]Entity, 0, 1+len(w.enemies)+len(w.projectiles))
	out = append(out, w.player)
	for _, e := range w.enemies {
		out = append(out, e)
	}
	for _, b := range w.projectiles {
		out = append(out, b)
	}
	return out
}

func (w *World) prune() {
	enemies := w.enemies[:0]
	for _, e := range w.enemies {
		if e.Alive() {
			enemies = append(enemies, e)
		}
	}
	for i := len(enemies); i < len(w.enemies); i++ {
		w.enemies[i] = nil
	}
	w.enemies = enemies

	shots := w.projectiles[:0]
	for _, b := range w.projectiles {
		if b.Alive() {
			shots = append(shots, b)
		}
	}
	for i := len(shots); i < len(w.projectiles); i++ {
		w.projectiles[i] = nil
	}
	w.projectiles = shots
}

func (w *World) tickPopups(rawDt float64) {
	kept := w.popups[:0]
	for _, p := range w.popups {
		p.Remaining -= rawDt
		if p.Remaining > 0 {
			kept = append(kept, p)
		}
	}
	w.popups = kept
}

func (w *World) popup(text string, pos core.Vec, c core.Color) {
	w.popups = append(w.popups, Popup{Text: text, Pos: pos, Color: c, Remaining: popupLifetime})
}

// Combat

func (w *World) dash() {
	p := w.player
	if !p.DashReady() {
		return
	}
	offset := p.Facing.Norm().Scale(float64(w.cfg.Player.DashDistance))
	dest := w.clampToArena(p.Pos.Add(offset))
	p.Pos = core.Vec{X: math.Round(dest.X), Y: math.Round(dest.Y)}
	p.dashCooldown = w.cfg.Player.DashCooldownBeats
}

// attack fires a shockwave. On the beat it is a perfect hit; at most one
// perfect hit is granted per half interval so mashing stays off beat.
func (w *World) attack() {
	p := w.player
	w.fx.AddWave(p.Pos.X, p.Pos.Y)

	perfect := w.beats != nil && w.beats.IsOnBeat()
	if perfect {
		now := w.beats.MusicTime()
		if w.hasPerfect && now-w.lastPerfect < w.beats.Interval()/2 {
			perfect = false
		} else {
			w.lastPerfect = now
			w.hasPerfect = true
		}
	}

	var targets []*Enemy
	for _, e := range w.enemies {
		if e.Alive() && e.Pos.Dist(p.Pos) <= w.cfg.Player.AttackRadius {
			targets = append(targets, e)
		}
	}

	if perfect {
		if len(targets) > 0 {
			w.combo++
			w.perfectHits++
			if w.combo > w.maxCombo {
				w.maxCombo = w.combo
			}
		}
		w.popup("PERFECT", p.Pos, core.ColorPerfect)
	} else {
		w.combo = 0
		if len(targets) > 0 {
			w.offBeatHits++
		}
		w.popup("OFF BEAT", p.Pos, core.ColorGray)
	}

	for _, e := range targets {
		if e.takeDamage(w.attackDamage(e, perfect)) {
			w.onKill(perfect)
		}
	}
}

// attackDamage applies the level's damage rule to e.
func (w *World) attackDamage(e *Enemy, perfect bool) int {
	d := w.cfg.Damage
	if perfect {
		if d.PerfectKill {
			return e.Health
		}
		return fraction(d.PerfectFraction, e.MaxHealth)
	}
	return fraction(d.OffBeatFraction, e.MaxHealth)
}

func fraction(f float64, max int) int {
	if f <= 0 {
		return 0
	}
	return int(math.Ceil(f * float64(max)))
}

// multiplier is the combo score multiplier.
func (w *World) multiplier() int {
	step := w.cfg.Scoring.ComboStep
	if step <= 0 {
		return 1
	}
	return 1 + w.combo/step
}

func (w *World) onKill(perfect bool) {
	w.kills++
	w.score += w.cfg.Scoring.KillPoints * w.multiplier()
	if perfect {
		w.score += w.cfg.Scoring.PerfectBonus
	}
}

// hitPlayer deals damage to the player and breaks the combo.
func (w *World) hitPlayer(damage int) {
	if w.Finished() || damage <= 0 {
		return
	}
	p := w.player
	p.Health -= damage
	w.combo = 0
	w.popup(fmt.Sprintf("-%d", damage), p.Pos, core.ColorRed)
	if p.Health <= 0 {
		p.Health = 0
		w.lost = true
	}
}

// explode detonates a kamikaze. The blast hurts the player and every other
// enemy inside it.
func (w *World) explode(k *Enemy) {
	if k.dead {
		return
	}
	k.dead = true
	w.fx.TriggerBlackHole(k.Pos.X, k.Pos.Y, blackHoleDuration)
	w.popup("BOOM", k.Pos, core.ColorKamikaze)

	radius := math.Max(k.BlastRadius, k.Range)
	for _, e := range w.enemies {
		if e == k || !e.Alive() || e.Pos.Dist(k.Pos) > radius {
			continue
		}
		if e.takeDamage(k.FriendlyDamage) {
			w.kills++
			w.score += w.cfg.Scoring.KillPoints
		}
	}
	if w.player.Pos.Dist(k.Pos) <= radius {
		w.hitPlayer(k.Damage)
	}
}

func (w *World) fire(b *Projectile) {
	w.projectiles = append(w.projectiles, b)
	w.fx.AddBullet(b)
}

// Waves

func (w *World) startWave(n int) {
	w.wave = n
	w.toSpawn = w.cfg.Waves.Base + (n-1)*w.cfg.Waves.Growth
	// First enemy arrives on the next beat
	w.sinceSpawn = w.cfg.Waves.SpawnEveryBeats - 1
	w.popup(fmt.Sprintf("WAVE %d", n), core.Vec{X: float64(w.width / 2), Y: 0}, core.ColorBrightWhite)
}

func (w *World) spawnerBeat() {
	if w.pause > 0 {
		w.pause--
		if w.pause == 0 {
			w.startWave(w.wave + 1)
		}
		return
	}
	if w.toSpawn == 0 {
		return
	}
	w.sinceSpawn++
	if w.sinceSpawn < w.cfg.Waves.SpawnEveryBeats {
		return
	}
	if w.aliveEnemies() >= w.cfg.Waves.MaxAlive {
		return
	}
	w.sinceSpawn = 0
	w.spawn()
}

// spawn places one enemy on the arena edge: top or bottom on odd waves,
// left or right on even ones.
func (w *World) spawn() {
	if len(w.cfg.Enemies) == 0 {
		w.toSpawn = 0
		return
	}
	weights := make([]int, len(w.cfg.Enemies))
	for i, ec := range w.cfg.Enemies {
		weights[i] = ec.Weight
	}
	ec := w.cfg.Enemies[w.rng.Weighted(weights)]

	var pos core.Vec
	far := w.rng.Intn(2) == 1
	if w.wave%2 == 1 {
		pos.X = float64(w.rng.Intn(w.width))
		if far {
			pos.Y = float64(w.height - 1)
		}
	} else {
		pos.Y = float64(w.rng.Intn(w.height))
		if far {
			pos.X = float64(w.width - 1)
		}
	}

	w.enemies = append(w.enemies, newEnemy(ec, w.wave, pos))
	w.toSpawn--
}

func (w *World) aliveEnemies() int {
	n := 0
	for _, e := range w.enemies {
		if e.Alive() {
			n++
		}
	}
	return n
}

// checkWave awards the wave bonus once a wave is fully spawned and killed.
func (w *World) checkWave() {
	if w.Finished() || w.pause > 0 || w.toSpawn > 0 || w.aliveEnemies() > 0 {
		return
	}
	w.wavesCleared++
	w.score += w.cfg.Scoring.WaveBonus

	if w.wave >= w.cfg.Waves.Count {
		w.won = true
		return
	}
	if w.cfg.Waves.PauseBeats > 0 {
		w.pause = w.cfg.Waves.PauseBeats
		return
	}
	w.startWave(w.wave + 1)
}

// Geometry

func (w *World) inArena(p core.Vec) bool {
	return p.X >= 0 && p.X <= float64(w.width-1) && p.Y >= 0 && p.Y <= float64(w.height-1)
}

func (w *World) clampToArena(p core.Vec) core.Vec {
	return core.Vec{
		X: core.ClampF(p.X, 0, float64(w.width-1)),
		Y: core.ClampF(p.Y, 0, float64(w.height-1)),
	}
}

// Queries

// Player returns the player.
func (w *World) Player() *Player { return w.player }

// Enemies returns the live enemies.
func (w *World) Enemies() []*Enemy { return w.enemies }

// Projectiles returns the projectiles in flight.
func (w *World) Projectiles() []*Projectile { return w.projectiles }

// Popups returns the visible popups.
func (w *World) Popups() []Popup { return w.popups }

// Size returns the arena dimensions in cells.
func (w *World) Size() (int, int) { return w.width, w.height }

// Wave returns the current wave number (1-based).
func (w *World) Wave() int { return w.wave }

// Remaining returns enemies alive plus those still to spawn this wave.
func (w *World) Remaining() int { return w.aliveEnemies() + w.toSpawn }

// Score returns the current score.
func (w *World) Score() int { return w.score }

// Combo returns the current perfect-hit streak.
func (w *World) Combo() int { return w.combo }

// Kills returns the number of enemies killed.
func (w *World) Kills() int { return w.kills }

// Won reports whether every wave was cleared.
func (w *World) Won() bool { return w.won }

// Lost reports whether the player died.
func (w *World) Lost() bool { return w.lost }

// Finished reports whether the run is over.
func (w *World) Finished() bool { return w.won || w.lost }

// Effects returns the renderer's view of the visual effects.
func (w *World) Effects() effects.Frame { return w.fx.Snapshot() }

// Stats returns the run statistics kept by the world. Beat count and time
// scale are filled in by the level.
func (w *World) Stats() core.RunStats {
	return core.RunStats{
		Score:        w.score,
		Won:          w.won,
		WavesCleared: w.wavesCleared,
		Kills:        w.kills,
		PerfectHits:  w.perfectHits,
		OffBeatHits:  w.offBeatHits,
		MaxCombo:     w.maxCombo,
		Duration:     w.elapsed,
	}
}
