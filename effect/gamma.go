package effect

import (
	"math"

	"github.com/matt-g-everett/ledlayers/util"
)

const gammaStep = 0.01

// Gamma corrects brightness for the eye's nonlinear sensitivity using a sampled lookup table.
type Gamma struct {
	Base
	lut []float64
}

// NewGamma builds the lookup table y = x^gamma for x = 0, 0.01, ... 0.99.
func NewGamma(gamma float64) *Gamma {
	g := new(Gamma)
	g.Base = NewBase()
	xs := util.Arange(0, 1, gammaStep)
	g.lut = make([]float64, len(xs))
	for i, x := range xs {
		g.lut[i] = math.Pow(x, gamma)
	}
	return g
}

// Render remaps every channel through the table. Values outside the table clamp to its ends
// and NaN becomes 0.
func (g *Gamma) Render(model Topology, params *Params, frame *Frame) error {
	frame.Map(func(v float64) float64 {
		return util.InterpUniform(v, 0, gammaStep, g.lut)
	})
	return nil
}
