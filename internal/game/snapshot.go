package game

import "math"

// Snapshot is a flat copy of the world state used to compare runs.
type Snapshot struct {
	Wave    int
	Score   int
	Kills   int
	Combo   int
	Health  int
	PlayerX int
	PlayerY int

	// Each enemy is 4 ints: Kind, X, Y, Health (positions in milli-cells)
	EnemyData []int
	// Each projectile is 2 ints: X, Y (milli-cells)
	ProjectileData []int

	RNGState uint64
}

func milli(v float64) int {
	return int(math.Round(v * 1000))
}

// Snapshot returns the current world state.
func (w *World) Snapshot() Snapshot {
	snap := Snapshot{
		Wave:     w.wave,
		Score:    w.score,
		Kills:    w.kills,
		Combo:    w.combo,
		Health:   w.player.Health,
		PlayerX:  milli(w.player.Pos.X),
		PlayerY:  milli(w.player.Pos.Y),
		RNGState: w.rng.state,
	}
	for _, e := range w.enemies {
		snap.EnemyData = append(snap.EnemyData, int(e.Kind), milli(e.Pos.X), milli(e.Pos.Y), e.Health)
	}
	for _, b := range w.projectiles {
		snap.ProjectileData = append(snap.ProjectileData, milli(b.Pos.X), milli(b.Pos.Y))
	}
	return snap
}

// Hash returns a simple hash of the snapshot for determinism testing.
func (snap *Snapshot) Hash() uint64 {
	h := uint64(snap.Wave)                 //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Score)          //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Kills)          //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Combo)          //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Health)         //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.PlayerX)        //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.PlayerY)        //#nosec G115 -- hash computation
	h = h*31 + uint64(len(snap.EnemyData)) //#nosec G115 -- hash computation

	for _, v := range snap.EnemyData {
		h = h*31 + uint64(v) //#nosec G115 -- hash computation
	}
	for _, v := range snap.ProjectileData {
		h = h*31 + uint64(v) //#nosec G115 -- hash computation
	}

	h = h*31 + snap.RNGState
	return h
}
