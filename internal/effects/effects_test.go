package effects

import (
	"math"
	"testing"
)

type testBullet struct {
	x, y, vx, vy float64
	alive        bool
}

func (b *testBullet) Position() (float64, float64) { return b.x, b.y }
func (b *testBullet) Velocity() (float64, float64) { return b.vx, b.vy }
func (b *testBullet) Alive() bool                  { return b.alive }

func TestWavesExpire(t *testing.T) {
	m := NewManager(Config{WaveLifetime: 1, WaveSpeed: 10})
	m.AddWave(5, 5)
	m.Update(0.5)
	m.AddWave(10, 10)

	f := m.Snapshot()
	if len(f.Waves) != 2 {
		t.Fatalf("len(Waves) = %d, expected 2", len(f.Waves))
	}
	if math.Abs(f.Waves[0].Radius-5) > 1e-9 {
		t.Errorf("Waves[0].Radius = %v, expected 5", f.Waves[0].Radius)
	}
	if f.Waves[1].Age != 0 {
		t.Errorf("Waves[1].Age = %v, expected 0", f.Waves[1].Age)
	}

	m.Update(0.6)
	f = m.Snapshot()
	if len(f.Waves) != 1 || f.Waves[0].X != 10 {
		t.Errorf("after 1.1s Waves = %+v, expected only the second wave", f.Waves)
	}
}

func TestWavesFollowScaledTime(t *testing.T) {
	m := NewManager(Config{WaveLifetime: 1})
	m.AddWave(0, 0)
	for i := 0; i < 10; i++ {
		m.Update(0.05) // 0.5s of scaled time
	}
	if len(m.Snapshot().Waves) != 1 {
		t.Error("wave expired before its scaled lifetime")
	}
}

func TestBulletsPruned(t *testing.T) {
	m := NewManager(DefaultConfig())
	a := &testBullet{x: 1, y: 2, vx: 3, vy: 4, alive: true}
	b := &testBullet{alive: true}
	m.AddBullet(a)
	m.AddBullet(a)
	m.AddBullet(b)

	f := m.Snapshot()
	if len(f.Trails) != 2 {
		t.Fatalf("len(Trails) = %d, expected 2", len(f.Trails))
	}
	tr := f.Trails[0]
	if tr.X != 1 || tr.Y != 2 || tr.VX != 3 || tr.VY != 4 {
		t.Errorf("Trails[0] = %+v", tr)
	}
	if tr.Length != DefaultConfig().TrailLength {
		t.Errorf("Trails[0].Length = %v, expected default", tr.Length)
	}

	b.alive = false
	if got := len(m.Snapshot().Trails); got != 1 {
		t.Errorf("len(Trails) after death = %d, expected 1", got)
	}
}

func TestBlackHole(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.TriggerBlackHole(3, 4, 1.0)

	m.Update(0.4)
	f := m.Snapshot()
	if !f.BlackHole.Active || f.BlackHole.X != 3 {
		t.Fatalf("BlackHole = %+v, expected active at x=3", f.BlackHole)
	}
	if math.Abs(f.BlackHole.Remaining-0.6) > 1e-9 {
		t.Errorf("Remaining = %v, expected 0.6", f.BlackHole.Remaining)
	}

	m.Update(0.7)
	if m.Snapshot().BlackHole.Active {
		t.Error("black hole should have expired")
	}
}

func TestReset(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.AddWave(1, 1)
	m.AddBullet(&testBullet{alive: true})
	m.TriggerBlackHole(0, 0, 1)
	m.Reset()

	f := m.Snapshot()
	if len(f.Waves) != 0 || len(f.Trails) != 0 || f.BlackHole.Active || f.Time != 0 {
		t.Errorf("Snapshot() after Reset = %+v, expected empty", f)
	}
}
