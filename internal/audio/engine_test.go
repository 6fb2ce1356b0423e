package audio

import (
	"errors"
	"testing"
	"time"
)

type fakeHandle struct {
	id      int
	rate    float64
	pos     time.Duration
	volume  float64
	paused  bool
	stopped bool
	seeks   []time.Duration
}

func (h *fakeHandle) Rate() float64 { return h.rate }
func (h *fakeHandle) SetRate(r float64) error {
	h.rate = r
	return nil
}
func (h *fakeHandle) Position() time.Duration { return h.pos }
func (h *fakeHandle) Seek(p time.Duration) error {
	h.pos = p
	h.seeks = append(h.seeks, p)
	return nil
}
func (h *fakeHandle) Volume() float64     { return h.volume }
func (h *fakeHandle) SetVolume(v float64) { h.volume = v }
func (h *fakeHandle) SetPaused(p bool)    { h.paused = p }
func (h *fakeHandle) Stop()               { h.stopped = true }

type fakeBackend struct {
	opened  []*fakeHandle
	failAt  int // Open call number (1-based) that fails; 0 never
	openErr error
}

func (b *fakeBackend) Open(volume float64) (Handle, error) {
	if b.failAt > 0 && len(b.opened)+1 == b.failAt {
		b.failAt = 0
		return nil, b.openErr
	}
	h := &fakeHandle{id: len(b.opened), rate: 1, volume: volume}
	b.opened = append(b.opened, h)
	return h, nil
}

// live counts handles opened and not yet stopped.
func (b *fakeBackend) live() int {
	n := 0
	for _, h := range b.opened {
		if !h.stopped {
			n++
		}
	}
	return n
}

type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestEngine(b Backend, clk *testClock, sleeps *[]time.Duration) *Engine {
	return NewEngine(b, Config{
		MinRate:      0.1,
		MaxRate:      2.0,
		Deadband:     0.05,
		BaseVolume:   80,
		Crossfade:    400 * time.Millisecond,
		StartupDelay: 150 * time.Millisecond,
	},
		WithClock(clk.now),
		WithSleep(func(d time.Duration) {
			if sleeps != nil {
				*sleeps = append(*sleeps, d)
			}
			clk.advance(d)
		}),
	)
}

func TestEngineStart(t *testing.T) {
	b := &fakeBackend{}
	clk := &testClock{t: time.Unix(0, 0)}
	e := newTestEngine(b, clk, nil)

	e.SetTimeScale(1.5)
	if e.Handles() != 0 {
		t.Fatalf("Handles() before Start = %d, expected 0", e.Handles())
	}

	e.Start()
	e.Start()
	if len(b.opened) != 1 {
		t.Fatalf("opened %d handles, expected 1", len(b.opened))
	}
	h := b.opened[0]
	if h.rate != 1.5 || h.volume != 80 {
		t.Errorf("active handle rate=%v volume=%v, expected 1.5 and 80", h.rate, h.volume)
	}
}

func TestEngineCrossfadeCompletes(t *testing.T) {
	b := &fakeBackend{}
	clk := &testClock{t: time.Unix(0, 0)}
	var sleeps []time.Duration
	e := newTestEngine(b, clk, &sleeps)
	e.Start()

	old := b.opened[0]
	old.pos = 3 * time.Second
	// Playback keeps going during the startup delay
	sleepsBefore := len(sleeps)
	e.sleep = func(d time.Duration) {
		sleeps = append(sleeps, d)
		old.pos += d
		clk.advance(d)
	}

	e.SetTimeScale(0.5)
	if len(sleeps) != sleepsBefore+1 || sleeps[len(sleeps)-1] != 150*time.Millisecond {
		t.Errorf("startup delay not applied: %v", sleeps)
	}
	if e.Handles() != 2 {
		t.Fatalf("Handles() during fade = %d, expected 2", e.Handles())
	}
	pending := b.opened[1]
	if pending.volume != 0 {
		t.Errorf("pending starts at volume %v, expected 0", pending.volume)
	}
	if pending.rate != 0.5 {
		t.Errorf("pending rate = %v, expected 0.5", pending.rate)
	}
	if pending.pos != 3150*time.Millisecond {
		t.Errorf("pending seeded at %v, expected position read after the delay (3.15s)", pending.pos)
	}

	start := clk.t
	e.Tick(start.Add(100 * time.Millisecond))
	if old.volume != 60 || pending.volume != 20 {
		t.Errorf("at 25%% volumes = %v/%v, expected 60/20", old.volume, pending.volume)
	}

	e.Tick(start.Add(400*time.Millisecond + time.Millisecond))
	if e.Handles() != 1 {
		t.Fatalf("Handles() after fade = %d, expected 1", e.Handles())
	}
	if !old.stopped {
		t.Error("old handle was not stopped")
	}
	if e.Rate() != 0.5 {
		t.Errorf("Rate() = %v, expected 0.5", e.Rate())
	}
	if pending.volume != 80 {
		t.Errorf("promoted handle volume = %v, expected 80", pending.volume)
	}
	if b.live() != 1 {
		t.Errorf("live handles = %d, expected 1", b.live())
	}
}

func TestEngineDeadband(t *testing.T) {
	b := &fakeBackend{}
	clk := &testClock{t: time.Unix(0, 0)}
	e := newTestEngine(b, clk, nil)
	e.Start()

	e.SetTimeScale(1.02)
	e.SetTimeScale(0.97)
	if e.Handles() != 1 || len(b.opened) != 1 {
		t.Errorf("changes inside deadband created handles: Handles()=%d opened=%d", e.Handles(), len(b.opened))
	}

	e.SetTimeScale(1.5)
	e.SetTimeScale(1.52)
	if len(b.opened) != 2 {
		t.Errorf("change near the pending rate opened a handle, opened=%d", len(b.opened))
	}
}

func TestEngineSupersede(t *testing.T) {
	b := &fakeBackend{}
	clk := &testClock{t: time.Unix(0, 0)}
	e := newTestEngine(b, clk, nil)
	e.Start()
	active := b.opened[0]

	e.SetTimeScale(0.5)
	first := b.opened[1]
	active.pos = 7 * time.Second

	e.SetTimeScale(1.8)
	if !first.stopped {
		t.Error("superseded pending handle was not stopped")
	}
	if e.Handles() != 2 {
		t.Errorf("Handles() = %d, expected 2", e.Handles())
	}
	second := b.opened[2]
	if second.rate != 1.8 {
		t.Errorf("new pending rate = %v, expected 1.8", second.rate)
	}
	if second.pos != 7*time.Second {
		t.Errorf("new pending seeded at %v, expected active position 7s", second.pos)
	}
	if b.live() != 2 {
		t.Errorf("live handles = %d, expected 2", b.live())
	}
}

func TestEngineCancelFade(t *testing.T) {
	b := &fakeBackend{}
	clk := &testClock{t: time.Unix(0, 0)}
	e := newTestEngine(b, clk, nil)
	e.Start()
	active := b.opened[0]

	e.SetTimeScale(2.0)
	e.Tick(clk.t.Add(200 * time.Millisecond))
	if active.volume >= 80 {
		t.Fatalf("active volume = %v, expected fading", active.volume)
	}

	e.SetTimeScale(1.0)
	if e.Fading() {
		t.Error("returning to the active rate should cancel the fade")
	}
	if e.Handles() != 1 || active.volume != 80 {
		t.Errorf("after cancel Handles()=%d volume=%v, expected 1 and 80", e.Handles(), active.volume)
	}
}

func TestEngineClampsRate(t *testing.T) {
	b := &fakeBackend{}
	clk := &testClock{t: time.Unix(0, 0)}
	e := newTestEngine(b, clk, nil)
	e.Start()

	e.SetTimeScale(3.0)
	if got := b.opened[1].rate; got != 2.0 {
		t.Errorf("pending rate = %v, expected clamp to 2.0", got)
	}
}

func TestEngineBackendFailureDisables(t *testing.T) {
	b := &fakeBackend{failAt: 2, openErr: errors.New("device busy")}
	clk := &testClock{t: time.Unix(0, 0)}
	e := newTestEngine(b, clk, nil)
	e.Start()

	e.SetTimeScale(0.5)
	if e.Handles() != 0 {
		t.Errorf("Handles() after failure = %d, expected 0", e.Handles())
	}
	if b.live() != 0 {
		t.Errorf("live handles after failure = %d, expected 0", b.live())
	}

	e.SetTimeScale(1.5)
	e.Tick(clk.t.Add(time.Second))
	if len(b.opened) != 1 {
		t.Errorf("disabled engine opened more handles: %d", len(b.opened))
	}
	if e.Status() != "audio off" {
		t.Errorf("Status() = %q, expected \"audio off\"", e.Status())
	}
}

func TestEngineStopIdempotent(t *testing.T) {
	b := &fakeBackend{}
	clk := &testClock{t: time.Unix(0, 0)}
	e := newTestEngine(b, clk, nil)

	e.Stop()
	e.Start()
	if len(b.opened) != 0 {
		t.Error("Start() after Stop() opened a handle")
	}

	e2 := newTestEngine(b, clk, nil)
	e2.Start()
	e2.SetTimeScale(0.5)
	e2.Stop()
	e2.Stop()
	if b.live() != 0 {
		t.Errorf("live handles after Stop = %d, expected 0", b.live())
	}
	e2.SetTimeScale(1.5)
	e2.Tick(clk.t.Add(time.Second))
	if e2.Handles() != 0 {
		t.Errorf("Handles() after Stop = %d, expected 0", e2.Handles())
	}
}

func TestEnginePause(t *testing.T) {
	b := &fakeBackend{}
	clk := &testClock{t: time.Unix(0, 0)}
	e := newTestEngine(b, clk, nil)
	e.Start()
	e.SetTimeScale(0.5)

	e.Pause(true)
	for i, h := range b.opened {
		if !h.paused {
			t.Errorf("handle %d not paused", i)
		}
	}
	e.Pause(false)
	for i, h := range b.opened {
		if h.paused {
			t.Errorf("handle %d still paused", i)
		}
	}
}

func TestEnginePauseFreezesCrossfade(t *testing.T) {
	b := &fakeBackend{}
	clk := &testClock{t: time.Unix(0, 0)}
	e := newTestEngine(b, clk, nil)
	e.Start()
	e.SetTimeScale(0.5)
	old, pending := b.opened[0], b.opened[1]

	clk.advance(100 * time.Millisecond)
	e.Tick(clk.t)
	if old.volume != 60 || pending.volume != 20 {
		t.Fatalf("at 25%% volumes = %v/%v, expected 60/20", old.volume, pending.volume)
	}

	e.Pause(true)
	clk.advance(5 * time.Second)
	e.Tick(clk.t)
	if e.Handles() != 2 {
		t.Fatalf("Handles() while paused = %d, expected 2", e.Handles())
	}
	e.Pause(false)

	e.Tick(clk.t)
	if e.Handles() != 2 {
		t.Fatalf("Handles() right after resume = %d, expected 2", e.Handles())
	}
	if old.volume != 60 || pending.volume != 20 {
		t.Errorf("after resume volumes = %v/%v, expected 60/20", old.volume, pending.volume)
	}

	clk.advance(100 * time.Millisecond)
	e.Tick(clk.t)
	if old.volume != 40 || pending.volume != 40 {
		t.Errorf("at 50%% volumes = %v/%v, expected 40/40", old.volume, pending.volume)
	}

	clk.advance(201 * time.Millisecond)
	e.Tick(clk.t)
	if e.Handles() != 1 || !old.stopped {
		t.Errorf("fade did not complete: Handles() = %d, old stopped = %v", e.Handles(), old.stopped)
	}
}

func TestEngineWithoutBackend(t *testing.T) {
	e := NewEngine(nil, Config{MinRate: 0.1, MaxRate: 2})
	e.Start()
	e.SetTimeScale(0.5)
	e.Tick(time.Now())
	e.Pause(true)
	e.Stop()
	if e.Handles() != 0 {
		t.Errorf("Handles() = %d, expected 0", e.Handles())
	}
	if e.Status() != "muted" {
		t.Errorf("Status() = %q, expected \"muted\"", e.Status())
	}
}
