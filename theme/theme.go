package theme

import (
	"math"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols

	ramp []lipgloss.Color
}

// rampSteps is how finely New samples the palette
const rampSteps = 64

type Symbols struct {
	Note     rune // █ sounding
	Rest     rune // · explicit rest
	Gap      rune //   implicit silence (absolute mode)
	Selected rune // ▶ focused track
}

// New builds a theme whose colours are sampled once from palette
func New(palette *Palette) *Theme {
	ramp := make([]lipgloss.Color, rampSteps+1)
	for i := range ramp {
		ramp[i] = lipgloss.Color(palette.at(float64(i) / rampSteps).Hex())
	}
	return &Theme{
		Palette: palette,
		ramp:    ramp,
		Symbols: Symbols{
			Note:     '█',
			Rest:     '·',
			Gap:      ' ',
			Selected: '▶',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleMuted   = 0.3
	RoleFG      = 0.6
	RoleAccent  = 0.75
	RoleWarning = 0.85
	RoleSuccess = 1.0
)

// Style helpers

func (t *Theme) FG() lipgloss.Color {
	return t.Color(RoleFG)
}

func (t *Theme) Accent() lipgloss.Color {
	return t.Color(RoleAccent)
}

func (t *Theme) Muted() lipgloss.Color {
	return t.Color(RoleMuted)
}

func (t *Theme) Warning() lipgloss.Color {
	return t.Color(RoleWarning)
}

func (t *Theme) Success() lipgloss.Color {
	return t.Color(RoleSuccess)
}

// Pitch colours a frequency across the palette, low notes dark and high notes bright
func (t *Theme) Pitch(freq float64) lipgloss.Color {
	const lo, hi = 32.7, 4186.0 // C1..C8
	if freq <= lo {
		return t.Color(RoleMuted)
	}
	norm := RoleMuted + (1-RoleMuted)*math.Log2(freq/lo)/math.Log2(hi/lo)
	return t.Color(norm)
}

// Color returns the ramp colour nearest to norm (clamped to 0-1)
func (t *Theme) Color(norm float64) lipgloss.Color {
	norm = min(max(norm, 0), 1)
	return t.ramp[int(norm*rampSteps+0.5)]
}
