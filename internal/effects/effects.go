// Package effects collects per-frame visual effect data (shockwave rings,
// projectile trails, the black hole) for the renderer. It owns no drawing
// code; the renderer consumes a Frame snapshot.
package effects

// Bullet is a live projectile whose trail should be drawn.
type Bullet interface {
	Position() (x, y float64)
	Velocity() (vx, vy float64)
	Alive() bool
}

// Config sets effect tuning in cells and seconds of scaled time.
type Config struct {
	WaveThickness  float64
	WaveLifetime   float64
	WaveSpeed      float64 // Ring growth in cells per second
	TrailLength    float64
	TrailHalfWidth float64
}

// DefaultConfig returns tuning suited to an 80x24 terminal.
func DefaultConfig() Config {
	return Config{
		WaveThickness:  1.5,
		WaveLifetime:   1.0,
		WaveSpeed:      16,
		TrailLength:    4,
		TrailHalfWidth: 1,
	}
}

// Wave is one expanding ring.
type Wave struct {
	X, Y      float64
	Age       float64 // Seconds since emission
	Radius    float64
	Thickness float64
	Fade      float64 // 1 at emission, 0 at expiry
}

// Trail is a snapshot of one projectile.
type Trail struct {
	X, Y      float64
	VX, VY    float64
	Length    float64
	HalfWidth float64
}

// BlackHole is the implosion left by an explosion.
type BlackHole struct {
	Active    bool
	X, Y      float64
	Remaining float64
	Duration  float64
}

// Frame is everything the renderer needs for one frame.
type Frame struct {
	Time      float64
	Waves     []Wave
	Trails    []Trail
	BlackHole BlackHole
}

type wave struct {
	x, y  float64
	start float64
}

// Manager accumulates effect state. Time only moves through Update, so
// effects slow down with the rest of the simulation.
type Manager struct {
	cfg     Config
	now     float64
	waves   []wave
	bullets []Bullet
	hole    BlackHole
}

// NewManager creates an empty manager.
func NewManager(cfg Config) *Manager {
	def := DefaultConfig()
	if cfg.WaveLifetime <= 0 {
		cfg.WaveLifetime = def.WaveLifetime
	}
	if cfg.WaveThickness <= 0 {
		cfg.WaveThickness = def.WaveThickness
	}
	if cfg.WaveSpeed <= 0 {
		cfg.WaveSpeed = def.WaveSpeed
	}
	if cfg.TrailLength <= 0 {
		cfg.TrailLength = def.TrailLength
	}
	if cfg.TrailHalfWidth <= 0 {
		cfg.TrailHalfWidth = def.TrailHalfWidth
	}
	return &Manager{cfg: cfg}
}

// AddWave emits a ring at (x, y).
func (m *Manager) AddWave(x, y float64) {
	m.waves = append(m.waves, wave{x: x, y: y, start: m.now})
}

// AddBullet registers a projectile. Registering the same one twice is a no-op.
func (m *Manager) AddBullet(b Bullet) {
	for _, existing := range m.bullets {
		if existing == b {
			return
		}
	}
	m.bullets = append(m.bullets, b)
}

// TriggerBlackHole starts the implosion effect at (x, y) for duration seconds.
func (m *Manager) TriggerBlackHole(x, y, duration float64) {
	if duration <= 0 {
		duration = 1
	}
	m.hole = BlackHole{Active: true, X: x, Y: y, Remaining: duration, Duration: duration}
}

// Update advances effect time by scaledDt and expires old effects.
func (m *Manager) Update(scaledDt float64) {
	if scaledDt > 0 {
		m.now += scaledDt
	}

	kept := m.waves[:0]
	for _, w := range m.waves {
		if m.now-w.start < m.cfg.WaveLifetime {
			kept = append(kept, w)
		}
	}
	m.waves = kept

	if m.hole.Active {
		m.hole.Remaining -= scaledDt
		if m.hole.Remaining <= 0 {
			m.hole = BlackHole{}
		}
	}
}

// Snapshot prunes dead projectiles and returns copies of all live effects.
func (m *Manager) Snapshot() Frame {
	f := Frame{Time: m.now, BlackHole: m.hole}

	if len(m.waves) > 0 {
		f.Waves = make([]Wave, 0, len(m.waves))
	}
	for _, w := range m.waves {
		age := m.now - w.start
		f.Waves = append(f.Waves, Wave{
			X:         w.x,
			Y:         w.y,
			Age:       age,
			Radius:    age * m.cfg.WaveSpeed,
			Thickness: m.cfg.WaveThickness,
			Fade:      1 - age/m.cfg.WaveLifetime,
		})
	}

	live := m.bullets[:0]
	for _, b := range m.bullets {
		if !b.Alive() {
			continue
		}
		live = append(live, b)
		x, y := b.Position()
		vx, vy := b.Velocity()
		f.Trails = append(f.Trails, Trail{
			X: x, Y: y, VX: vx, VY: vy,
			Length:    m.cfg.TrailLength,
			HalfWidth: m.cfg.TrailHalfWidth,
		})
	}
	// Drop references past the live prefix
	for i := len(live); i < len(m.bullets); i++ {
		m.bullets[i] = nil
	}
	m.bullets = live
	return f
}

// Reset clears every effect.
func (m *Manager) Reset() {
	m.now = 0
	m.waves = nil
	m.bullets = nil
	m.hole = BlackHole{}
}
