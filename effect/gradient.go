package effect

import (
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/ledlayers/util"
)

// A GradientStop pins a hue, in degrees, to a position in [0, 1] along a gradient.
type GradientStop struct {
	Pos float64
	Hue float64
}

// GradientTable blends hue linearly between stops.
type GradientTable struct {
	pos []float64
	hue []float64
}

// NewGradientTable creates a table from stops in any order.
func NewGradientTable(stops ...GradientStop) GradientTable {
	sorted := append([]GradientStop(nil), stops...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Pos < sorted[j].Pos })

	g := GradientTable{
		pos: make([]float64, len(sorted)),
		hue: make([]float64, len(sorted)),
	}
	for i, s := range sorted {
		g.pos[i] = s.Pos
		g.hue[i] = s.Hue
	}
	return g
}

// Len returns the number of stops.
func (g GradientTable) Len() int {
	return len(g.pos)
}

// Color returns the HCL colour at position t with chroma c and luminance l. Positions
// outside the stops take the nearest end.
func (g GradientTable) Color(t, c, l float64) colorful.Color {
	return colorful.Hcl(util.Interp(t, g.pos, g.hue), c, l)
}

// Rainbow turns once round the hue wheel, lingering on the warm colours. It ends 360 degrees
// past its start so a repeating trail has no seam.
var Rainbow = NewGradientTable(
	GradientStop{Pos: 0.0, Hue: 10},
	GradientStop{Pos: 0.12, Hue: 30},
	GradientStop{Pos: 0.3, Hue: 60},
	GradientStop{Pos: 0.42, Hue: 95},
	GradientStop{Pos: 0.55, Hue: 150},
	GradientStop{Pos: 0.68, Hue: 215},
	GradientStop{Pos: 0.8, Hue: 280},
	GradientStop{Pos: 0.92, Hue: 330},
	GradientStop{Pos: 1.0, Hue: 370},
)

// A GradientTrail scrolls a gradient along the strip.
type GradientTrail struct {
	Base
	gradient    GradientTable
	trailLength float64
	speed       float64
	chroma      float64
	luminance   float64
}

// NewGradientTrail creates a GradientTrail repeating every trailLength LEDs and moving at
// speed LEDs per second.
func NewGradientTrail(gradient GradientTable, trailLength int, speed float64) *GradientTrail {
	g := new(GradientTrail)
	g.Base = NewBase()
	g.gradient = gradient
	g.trailLength = float64(trailLength)
	g.speed = speed
	g.chroma = 1.0
	g.luminance = 0.5
	return g
}

func (g *GradientTrail) Render(model Topology, params *Params, frame *Frame) error {
	if g.trailLength <= 0 || g.gradient.Len() == 0 {
		return nil
	}

	offset := params.Time * g.speed
	for i := 0; i < frame.Len(); i++ {
		t := math.Mod(float64(i)-offset, g.trailLength)
		if t < 0 {
			t += g.trailLength
		}
		c := g.gradient.Color(t/g.trailLength, g.chroma, g.luminance).Clamped()
		frame.AddPixel(i, c.R, c.G, c.B)
	}
	return nil
}
