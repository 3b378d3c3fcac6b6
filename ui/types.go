// Package ui draws the viewer's panels. Controller panels are described by
// gauges derived from the fuzzy registry, so they follow the genome schema
// without hard-coded variable names.
package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fuzzship/fuzzy"
)

// Gauge describes how one linguistic variable is displayed.
type Gauge struct {
	ID       fuzzy.VarID
	Label    string
	Min      float64
	Max      float64
	Centered bool // Draw from zero when the universe spans it
	Format   string
}

// Normalize maps v into [0, 1] over the gauge range.
func (g Gauge) Normalize(v float64) float64 {
	if g.Max <= g.Min {
		return 0
	}
	n := (v - g.Min) / (g.Max - g.Min)
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}

// GaugesFor returns a gauge per registry variable with the given role, in
// registry order.
func GaugesFor(reg *fuzzy.Registry, role fuzzy.Role) []Gauge {
	var gauges []Gauge
	reg.Each(func(v *fuzzy.Variable) {
		if v.Role != role {
			return
		}
		gauges = append(gauges, Gauge{
			ID:       v.ID,
			Label:    v.Name,
			Min:      v.Universe.Min,
			Max:      v.Universe.Max,
			Centered: v.Universe.Min < 0 && v.Universe.Max > 0,
			Format:   "%+.2f",
		})
	})
	return gauges
}

// Theme holds UI styling constants.
type Theme struct {
	PanelBg         rl.Color
	PanelBorder     rl.Color
	SectionHeader   rl.Color
	LabelColor      rl.Color
	ValueColor      rl.Color
	MutedColor      rl.Color
	BarBg           rl.Color
	BarFill         rl.Color
	BarFillNegative rl.Color
	BarFillPositive rl.Color
	Padding         int32
	LineHeight      int32
	LabelWidth      int32
	BarHeight       int32
	FontSize        int32
	HeaderFontSize  int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:         rl.Color{R: 20, G: 25, B: 30, A: 240},
		PanelBorder:     rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader:   rl.Yellow,
		LabelColor:      rl.LightGray,
		ValueColor:      rl.LightGray,
		MutedColor:      rl.Color{R: 150, G: 150, B: 150, A: 255},
		BarBg:           rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFill:         rl.Color{R: 100, G: 150, B: 200, A: 255},
		BarFillNegative: rl.Color{R: 200, G: 100, B: 100, A: 255},
		BarFillPositive: rl.Color{R: 100, G: 200, B: 100, A: 255},
		Padding:         10,
		LineHeight:      16,
		LabelWidth:      110,
		BarHeight:       12,
		FontSize:        12,
		HeaderFontSize:  14,
	}
}
