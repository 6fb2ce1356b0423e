package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/beatshot/internal/core"
	"github.com/vovakirdan/beatshot/internal/effects"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:       lipgloss.NewStyle(),
	core.ColorRed:           lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorGreen:         lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:        lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorBlue:          lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	core.ColorMagenta:       lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	core.ColorCyan:          lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorWhite:         lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	core.ColorBrightRed:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	core.ColorBrightGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	core.ColorBrightYellow:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorBrightBlue:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	core.ColorBrightMagenta: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	core.ColorBrightCyan:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	core.ColorBrightWhite:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
	core.ColorOrange:        lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorGray:          lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

// Effect glyphs
const (
	TrailChar      = '·'
	HoleCoreChar   = '●'
	HoleRingChar   = '∘'
	waveStrongChar = '▓'
	waveMidChar    = '▒'
	waveFaintChar  = '░'
)

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			cell := s.GetCell(x, y)
			startColor := cell.Color

			var run strings.Builder
			for x < s.Width() {
				cell = s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// effectsSource is implemented by levels that expose visual effects.
// The clip rectangle is the arena interior in screen cells; effect
// coordinates are relative to its top-left corner.
type effectsSource interface {
	Effects() (effects.Frame, core.Rect)
}

// DrawEffects paints an effects frame over blank cells only, so everything
// the level drew stays in front.
func DrawEffects(s *core.Screen, f effects.Frame, clip core.Rect) {
	ox, oy := float64(clip.X), float64(clip.Y)

	if f.BlackHole.Active {
		drawBlackHole(s, f.BlackHole, ox, oy, clip)
	}

	for _, w := range f.Waves {
		glyph := waveFaintChar
		switch {
		case w.Fade > 0.66:
			glyph = waveStrongChar
		case w.Fade > 0.33:
			glyph = waveMidChar
		}
		s.DrawRing(ox+w.X, oy+w.Y, w.Radius, w.Thickness, glyph, core.ColorWave, clip)
	}

	for _, t := range f.Trails {
		drawTrail(s, t, ox, oy, clip)
	}
}

// drawTrail draws a tapering streak behind a projectile, opposite its
// velocity.
func drawTrail(s *core.Screen, t effects.Trail, ox, oy float64, clip core.Rect) {
	dir := core.Vec{X: -t.VX, Y: -t.VY}.Norm()
	if dir.Len() == 0 || t.Length <= 0 {
		return
	}
	perp := core.Vec{X: -dir.Y, Y: dir.X}

	for d := 0.5; d <= t.Length; d += 0.5 {
		p := core.Vec{X: t.X, Y: t.Y}.Add(dir.Scale(d))
		width := t.HalfWidth * (1 - d/t.Length)
		for off := -width; off <= width+1e-9; off += 1 {
			q := p.Add(perp.Scale(off))
			plot(s, ox+q.X, oy+q.Y, TrailChar, core.ColorTrail, clip)
		}
	}
}

// drawBlackHole draws a ring that collapses onto its core as the hole
// expires.
func drawBlackHole(s *core.Screen, h effects.BlackHole, ox, oy float64, clip core.Rect) {
	cx, cy := ox+h.X, oy+h.Y
	frac := 0.0
	if h.Duration > 0 {
		frac = core.ClampF(h.Remaining/h.Duration, 0, 1)
	}
	s.DrawRing(cx, cy, 1+4*frac, 1, HoleRingChar, core.ColorBlackHole, clip)
	plot(s, cx, cy, HoleCoreChar, core.ColorBlackHole, clip)
}

func plot(s *core.Screen, x, y float64, r rune, c core.Color, clip core.Rect) {
	ix, iy := int(math.Round(x)), int(math.Round(y))
	if !clip.Contains(ix, iy) || s.Get(ix, iy) != ' ' {
		return
	}
	s.SetColored(ix, iy, r, c)
}
