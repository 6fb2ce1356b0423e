package game

import (
	"testing"

	"github.com/vovakirdan/beatshot/internal/beat"
	"github.com/vovakirdan/beatshot/internal/config"
	"github.com/vovakirdan/beatshot/internal/core"
)

type fakeBeats struct {
	onBeat   bool
	interval float64
	now      float64
}

func (f *fakeBeats) IsOnBeat() bool     { return f.onBeat }
func (f *fakeBeats) Interval() float64  { return f.interval }
func (f *fakeBeats) MusicTime() float64 { return f.now }

var (
	rangedCfg = config.EnemyConfig{
		Kind: "ranged", Weight: 1, Health: 60, Damage: 5,
		AttackEveryBeats: 2, Speed: 3, Range: 14, ProjectileSpeed: 10,
	}
	meleeCfg = config.EnemyConfig{
		Kind: "melee", Weight: 1, Health: 60, Damage: 10,
		AttackEveryBeats: 1, Speed: 5, Range: 2,
	}
	kamikazeCfg = config.EnemyConfig{
		Kind: "kamikaze", Weight: 1, Health: 30, Damage: 50,
		AttackEveryBeats: 1, Speed: 8, Range: 1.5, BlastRadius: 6, FriendlyDamage: 100,
	}
)

func testLevelConfig() config.LevelConfig {
	cfg := config.DefaultLevelConfig()
	cfg.Enemies = []config.EnemyConfig{rangedCfg}
	return cfg
}

// newTestWorld returns a 40x20 world with the player at (20, 10) and no
// pending spawns.
func newTestWorld(t *testing.T, cfg config.LevelConfig, beats *fakeBeats) *World {
	t.Helper()
	w := NewWorld(cfg, 40, 20, beats, nil, 1)
	w.toSpawn = 0
	w.popups = nil
	return w
}

func attackFrame() core.InputFrame {
	in := core.NewInputFrame()
	in.Set(core.ActionAttack)
	return in
}

func TestPerfectAttackKills(t *testing.T) {
	beats := &fakeBeats{onBeat: true, interval: 0.5}
	w := newTestWorld(t, testLevelConfig(), beats)
	e := newEnemy(rangedCfg, 1, core.Vec{X: 24, Y: 10})
	w.enemies = append(w.enemies, e)

	w.HandleInput(attackFrame())

	if e.Alive() {
		t.Fatalf("enemy health = %d, expected kill", e.Health)
	}
	if w.Kills() != 1 {
		t.Errorf("Kills() = %d, expected 1", w.Kills())
	}
	if w.Combo() != 1 {
		t.Errorf("Combo() = %d, expected 1", w.Combo())
	}
	// 100 kill points at x1 plus 50 perfect bonus
	if w.Score() != 150 {
		t.Errorf("Score() = %d, expected 150", w.Score())
	}
	if len(w.Effects().Waves) != 1 {
		t.Errorf("attack should emit one shockwave, got %d", len(w.Effects().Waves))
	}
}

func TestOffBeatAttackHalvesHealth(t *testing.T) {
	beats := &fakeBeats{onBeat: false, interval: 0.5}
	w := newTestWorld(t, testLevelConfig(), beats)
	e := newEnemy(rangedCfg, 1, core.Vec{X: 24, Y: 10})
	w.enemies = append(w.enemies, e)
	w.combo = 3

	w.HandleInput(attackFrame())

	if e.Health != 30 {
		t.Errorf("enemy health = %d, expected 30", e.Health)
	}
	if w.Combo() != 0 {
		t.Errorf("Combo() = %d, expected reset to 0", w.Combo())
	}
	if got := w.Stats().OffBeatHits; got != 1 {
		t.Errorf("OffBeatHits = %d, expected 1", got)
	}

	w.HandleInput(attackFrame())
	if e.Alive() {
		t.Error("second off-beat hit should kill")
	}
}

func TestPerfectAttackLimitedPerHalfInterval(t *testing.T) {
	beats := &fakeBeats{onBeat: true, interval: 0.5, now: 1.0}
	w := newTestWorld(t, testLevelConfig(), beats)

	// Whiff on the beat
	w.HandleInput(attackFrame())

	e := newEnemy(rangedCfg, 1, core.Vec{X: 24, Y: 10})
	w.enemies = append(w.enemies, e)

	beats.now = 1.1
	w.HandleInput(attackFrame())
	if e.Health != 30 {
		t.Fatalf("repeat within half interval: health = %d, expected off-beat damage (30)", e.Health)
	}

	beats.now = 1.3
	w.HandleInput(attackFrame())
	if e.Alive() {
		t.Error("attack after half interval should be perfect again")
	}
}

func TestAttackOutOfRange(t *testing.T) {
	w := newTestWorld(t, testLevelConfig(), &fakeBeats{onBeat: true, interval: 0.5})
	e := newEnemy(rangedCfg, 1, core.Vec{X: 39, Y: 0})
	w.enemies = append(w.enemies, e)

	w.HandleInput(attackFrame())
	if e.Health != e.MaxHealth {
		t.Errorf("enemy outside attack radius took damage: %d", e.Health)
	}
}

func TestKamikazeFriendlyFire(t *testing.T) {
	cfg := testLevelConfig()
	cfg.Enemies = []config.EnemyConfig{meleeCfg, kamikazeCfg}
	w := newTestWorld(t, cfg, &fakeBeats{interval: 0.5})

	k := newEnemy(kamikazeCfg, 1, core.Vec{X: 21, Y: 10})
	m := newEnemy(meleeCfg, 1, core.Vec{X: 24, Y: 10})
	far := newEnemy(meleeCfg, 1, core.Vec{X: 2, Y: 1})
	w.enemies = append(w.enemies, k, m, far)

	w.Update(0.01, 0.01)

	if k.Alive() {
		t.Error("kamikaze in contact should explode")
	}
	if m.Alive() {
		t.Errorf("melee inside blast should die, health = %d", m.Health)
	}
	if !far.Alive() {
		t.Error("enemy outside blast radius should survive")
	}
	if got := w.Player().Health; got != 50 {
		t.Errorf("player health = %d, expected 50", got)
	}
	if w.Kills() != 1 {
		t.Errorf("Kills() = %d, expected 1 (friendly fire)", w.Kills())
	}
	if !w.Effects().BlackHole.Active {
		t.Error("explosion should trigger the black hole")
	}
	if len(w.Enemies()) != 1 {
		t.Errorf("dead enemies should be pruned, %d left", len(w.Enemies()))
	}
}

func TestRangedFiresOnBeat(t *testing.T) {
	w := newTestWorld(t, testLevelConfig(), &fakeBeats{interval: 0.5})
	r := newEnemy(rangedCfg, 1, core.Vec{X: 5, Y: 10})
	w.enemies = append(w.enemies, r)

	w.OnBeat(beat.Event{Index: 0})
	if len(w.Projectiles()) != 0 {
		t.Fatal("ranged enemy should fire every second beat")
	}
	w.OnBeat(beat.Event{Index: 1})
	if len(w.Projectiles()) != 1 {
		t.Fatalf("Projectiles() = %d, expected 1", len(w.Projectiles()))
	}
	if got := len(w.Effects().Trails); got != 1 {
		t.Errorf("projectile trail count = %d, expected 1", got)
	}

	for i := 0; i < 300 && len(w.Projectiles()) > 0; i++ {
		w.Update(0.01, 0.01)
	}
	if len(w.Projectiles()) != 0 {
		t.Fatal("projectile never landed")
	}
	if got := w.Player().Health; got != 95 {
		t.Errorf("player health = %d, expected 95", got)
	}
	if len(w.Effects().Trails) != 0 {
		t.Error("landed projectile should leave no trail")
	}
}

func TestMeleeStrikesOnlyInReach(t *testing.T) {
	w := newTestWorld(t, testLevelConfig(), &fakeBeats{interval: 0.5})
	m := newEnemy(meleeCfg, 1, core.Vec{X: 30, Y: 10})
	w.enemies = append(w.enemies, m)

	w.OnBeat(beat.Event{})
	if w.Player().Health != 100 {
		t.Fatal("melee out of reach should not strike")
	}

	m.Pos = core.Vec{X: 21, Y: 10}
	w.combo = 2
	w.OnBeat(beat.Event{})
	if got := w.Player().Health; got != 90 {
		t.Errorf("player health = %d, expected 90", got)
	}
	if w.Combo() != 0 {
		t.Error("being hit should reset the combo")
	}
}

func TestWaveProgressionToVictory(t *testing.T) {
	cfg := testLevelConfig()
	cfg.Waves = config.WavesConfig{Count: 2, Base: 1, Growth: 0, SpawnEveryBeats: 1, MaxAlive: 5, PauseBeats: 1}
	target := meleeCfg
	target.Speed = 0
	target.Damage = 0
	cfg.Enemies = []config.EnemyConfig{target}

	beats := &fakeBeats{onBeat: true, interval: 0.5}
	w := NewWorld(cfg, 40, 20, beats, nil, 7)

	killAll := func() {
		for _, e := range w.Enemies() {
			w.Player().Pos = e.Pos
			beats.now += 1
			w.HandleInput(attackFrame())
		}
		w.Update(0.01, 0.01)
	}

	w.OnBeat(beat.Event{})
	if len(w.Enemies()) != 1 {
		t.Fatalf("wave 1 should spawn on the first beat, got %d enemies", len(w.Enemies()))
	}
	if y := w.Enemies()[0].Pos.Y; y != 0 && y != 19 {
		t.Errorf("odd wave spawned at y = %v, expected top or bottom edge", y)
	}

	killAll()
	if w.Wave() != 1 || w.Won() {
		t.Fatalf("Wave() = %d, Won() = %v after clearing wave 1", w.Wave(), w.Won())
	}

	w.OnBeat(beat.Event{}) // pause beat starts wave 2
	if w.Wave() != 2 {
		t.Fatalf("Wave() = %d, expected 2", w.Wave())
	}
	w.OnBeat(beat.Event{})
	if len(w.Enemies()) != 1 {
		t.Fatalf("wave 2 enemies = %d, expected 1", len(w.Enemies()))
	}
	if x := w.Enemies()[0].Pos.X; x != 0 && x != 39 {
		t.Errorf("even wave spawned at x = %v, expected left or right edge", x)
	}

	killAll()
	if !w.Won() || !w.Finished() {
		t.Fatal("clearing the last wave should win")
	}
	stats := w.Stats()
	if stats.WavesCleared != 2 || stats.Kills != 2 {
		t.Errorf("Stats() = %+v, expected 2 waves and 2 kills", stats)
	}
}

func TestWaveRespectsMaxAlive(t *testing.T) {
	cfg := testLevelConfig()
	cfg.Waves = config.WavesConfig{Count: 1, Base: 5, SpawnEveryBeats: 1, MaxAlive: 2}
	w := NewWorld(cfg, 40, 20, &fakeBeats{interval: 0.5}, nil, 3)

	for i := 0; i < 6; i++ {
		w.OnBeat(beat.Event{Index: i})
	}
	if len(w.Enemies()) != 2 {
		t.Errorf("alive enemies = %d, expected max_alive 2", len(w.Enemies()))
	}
	if w.Remaining() != 5 {
		t.Errorf("Remaining() = %d, expected 5", w.Remaining())
	}
}

func TestDashCooldownCountsBeats(t *testing.T) {
	w := newTestWorld(t, testLevelConfig(), &fakeBeats{interval: 0.5})
	dash := core.NewInputFrame()
	dash.Set(core.ActionDash)

	w.HandleInput(dash)
	if got := w.Player().Pos; got != (core.Vec{X: 26, Y: 10}) {
		t.Fatalf("position after dash = %+v, expected (26, 10)", got)
	}

	w.HandleInput(dash)
	if w.Player().Pos.X != 26 {
		t.Error("dash during cooldown should not move")
	}

	for i := 0; i < 4; i++ {
		w.OnBeat(beat.Event{Index: i})
	}
	if !w.Player().DashReady() {
		t.Fatalf("DashCooldown() = %d after 4 beats, expected 0", w.Player().DashCooldown())
	}
	w.HandleInput(dash)
	if w.Player().Pos.X != 32 {
		t.Errorf("X after second dash = %v, expected 32", w.Player().Pos.X)
	}
}

func TestMovementClampedToArena(t *testing.T) {
	w := newTestWorld(t, testLevelConfig(), &fakeBeats{interval: 0.5})
	left := core.NewInputFrame()
	left.Set(core.ActionLeft)
	for i := 0; i < 50; i++ {
		w.HandleInput(left)
	}
	if got := w.Player().Pos; got.X != 0 || got.Y != 10 {
		t.Errorf("position = %+v, expected (0, 10)", got)
	}
}

func TestPopupsUseWallClock(t *testing.T) {
	w := newTestWorld(t, testLevelConfig(), &fakeBeats{onBeat: true, interval: 0.5})
	w.HandleInput(attackFrame())
	if len(w.Popups()) != 1 {
		t.Fatalf("Popups() = %d, expected 1", len(w.Popups()))
	}

	// Frozen simulation, wall clock still runs
	w.Update(0, 0.3)
	if len(w.Popups()) != 1 {
		t.Fatal("popup expired early")
	}
	w.Update(0, 0.4)
	if len(w.Popups()) != 0 {
		t.Error("popup should expire after its wall-clock lifetime")
	}
}

func TestPlayerDeathEndsRun(t *testing.T) {
	w := newTestWorld(t, testLevelConfig(), &fakeBeats{interval: 0.5})
	w.hitPlayer(1000)

	if !w.Lost() || !w.Finished() {
		t.Fatal("player at 0 health should lose")
	}
	if w.Player().Health != 0 {
		t.Errorf("Health = %d, expected 0", w.Player().Health)
	}

	right := core.NewInputFrame()
	right.Set(core.ActionRight)
	w.HandleInput(right)
	if w.Player().Pos.X != 20 {
		t.Error("input after death should be ignored")
	}
}

func TestWorldDeterminism(t *testing.T) {
	cfg := testLevelConfig()
	cfg.Enemies = []config.EnemyConfig{rangedCfg, meleeCfg, kamikazeCfg}

	run := func() uint64 {
		beats := &fakeBeats{interval: 0.5}
		w := NewWorld(cfg, 60, 20, beats, nil, 12345)
		for i := 0; i < 600; i++ {
			in := core.NewInputFrame()
			switch {
			case i%40 == 0:
				in.Set(core.ActionAttack)
			case i%7 < 3:
				in.Set(core.ActionUp)
			default:
				in.Set(core.ActionRight)
			}
			w.HandleInput(in)
			if i%30 == 0 {
				w.OnBeat(beat.Event{Index: i / 30})
			}
			beats.now += 1.0 / 60
			w.Update(1.0/60, 1.0/60)
		}
		snap := w.Snapshot()
		return snap.Hash()
	}

	if a, b := run(), run(); a != b {
		t.Errorf("Determinism failed: hashes differ. Run1=%d, Run2=%d", a, b)
	}
}

func TestRNGWeighted(t *testing.T) {
	r := NewRNG(42)
	counts := make([]int, 3)
	for i := 0; i < 3000; i++ {
		counts[r.Weighted([]int{0, 1, 3})]++
	}
	if counts[0] != 0 {
		t.Errorf("zero weight picked %d times", counts[0])
	}
	if counts[2] < counts[1]*2 {
		t.Errorf("weights not respected: %v", counts)
	}
}
