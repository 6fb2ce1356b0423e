package game

import (
	"fmt"
	"math"

	"github.com/vovakirdan/beatshot/internal/beat"
	"github.com/vovakirdan/beatshot/internal/core"
)

// Visual characters for rendering
const (
	PlayerChar     = '@'
	ProjectileChar = '•'
	BeatBarChar    = '┃'
	BeatLineChar   = '─'
	BeatOnChar     = '◆'
	BeatOffChar    = '◇'
)

// beatBarWidth is the widest the beat indicator grows.
const beatBarWidth = 41

// Render draws HUD, arena and entities. Effects are painted afterwards by
// the platform so they stay behind everything drawn here.
func (l *Level) Render(dst *core.Screen) {
	if l.screenTooSmall {
		dst.DrawTextCentered(dst.Height()/2, "Terminal too small", core.ColorRed)
		dst.DrawTextCentered(dst.Height()/2+1,
			fmt.Sprintf("need %dx%d", minScreenW, minScreenH), core.ColorGray)
		return
	}
	if l.world == nil {
		return
	}

	l.drawStats(dst)
	l.drawBeatLine(dst, 1)

	w, h := l.world.Size()
	dst.DrawBox(core.NewRect(0, hudRows, w+2, h+2), core.ColorGray)

	ox, oy := 1, hudRows+1
	for _, e := range l.world.Enemies() {
		x, y := e.Pos.Cell()
		dst.SetColored(ox+x, oy+y, e.Kind.Glyph(), e.Kind.Color())
	}
	for _, b := range l.world.Projectiles() {
		x, y := b.Pos.Cell()
		dst.SetColored(ox+x, oy+y, ProjectileChar, core.ColorBullet)
	}
	px, py := l.world.Player().Pos.Cell()
	dst.SetColored(ox+px, oy+py, PlayerChar, core.ColorPlayer)

	for _, p := range l.world.Popups() {
		x, y := p.Pos.Cell()
		text := []rune(p.Text)
		x -= len(text) / 2
		y--
		if y < 0 {
			y = 0
		}
		x = core.Clamp(x, 0, core.Max(0, w-len(text)))
		dst.DrawTextColored(ox+x, oy+y, p.Text, p.Color)
	}

	l.drawOverlay(dst)
}

func (l *Level) drawStats(dst *core.Screen) {
	world := l.world
	p := world.Player()

	dash := "DASH"
	if !p.DashReady() {
		dash = fmt.Sprintf("DASH %d", p.DashCooldown())
	}
	line := fmt.Sprintf("WAVE %d/%d  ENEMIES %d  KILLS %d  SCORE %d  COMBO x%d  %s",
		world.Wave(), l.cfg.Waves.Count, world.Remaining(), world.Kills(), world.Score(),
		world.Combo(), dash)
	dst.DrawTextColored(1, 0, line, core.ColorWhite)

	hp := fmt.Sprintf("HP %d", p.Health)
	hpColor := core.ColorGreen
	if p.Health*3 <= p.MaxHealth {
		hpColor = core.ColorRed
	}
	dst.DrawTextColored(dst.Width()-len(hp)-1, 0, hp, hpColor)
}

// scaleLimit marks a time scale pinned at either end of its range.
func scaleLimit(c *beat.Coordinator) string {
	lo, hi := c.ScaleBounds()
	switch s := c.TimeScale(); {
	case s <= lo:
		return " min"
	case s >= hi:
		return " max"
	}
	return ""
}

// drawBeatLine draws bars that close in on the center as the next beat
// approaches, with the time scale on the left and audio status on the right.
func (l *Level) drawBeatLine(dst *core.Screen, y int) {
	c := l.coord

	left := fmt.Sprintf("x%.1f%s %s ±%.0f%%", c.TimeScale(), scaleLimit(c), c.Mode(), c.Tolerance()*100)
	dst.DrawTextColored(1, y, left, core.ColorBrightWhite)

	right := l.music.Status()
	dst.DrawTextColored(dst.Width()-len([]rune(right))-1, y, right, core.ColorGray)

	width := core.Min(beatBarWidth, dst.Width()-2*(core.Max(len([]rune(left)), len([]rune(right)))+3))
	if width < 5 {
		return
	}
	half := width / 2
	center := dst.Width() / 2
	dst.DrawHLine(center-half, y, width, BeatLineChar, core.ColorGray)

	offset := int(math.Round((1 - c.BeatProgress()) * float64(half)))
	dst.SetColored(center-offset, y, BeatBarChar, core.ColorBeat)
	dst.SetColored(center+offset, y, BeatBarChar, core.ColorBeat)

	if c.IsOnBeat() {
		dst.SetColored(center, y, BeatOnChar, core.ColorPerfect)
	} else {
		dst.SetColored(center, y, BeatOffChar, core.ColorGray)
	}
}

func (l *Level) drawOverlay(dst *core.Screen) {
	mid := hudRows + (dst.Height()-hudRows)/2
	switch {
	case l.world.Won():
		dst.DrawTextCentered(mid-1, "VICTORY", core.ColorBrightGreen)
		dst.DrawTextCentered(mid, fmt.Sprintf("Score: %d", l.world.Score()), core.ColorWhite)
		dst.DrawTextCentered(mid+1, "R to play again, B for menu", core.ColorGray)
	case l.world.Lost():
		dst.DrawTextCentered(mid-1, "GAME OVER", core.ColorBrightRed)
		dst.DrawTextCentered(mid, fmt.Sprintf("Score: %d", l.world.Score()), core.ColorWhite)
		dst.DrawTextCentered(mid+1, "R to retry, B for menu", core.ColorGray)
	case l.paused:
		dst.DrawTextCentered(mid, "PAUSED", core.ColorYellow)
	}
}
