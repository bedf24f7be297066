package effect

import (
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/ledlayers/util"
)

// A Stripe is a band of one colour.
type Stripe struct {
	Colour colorful.Color
	Length float64
}

// StripeGenerator creates stripes of random length from a palette.
type StripeGenerator struct {
	palette   []colorful.Color
	current   int
	stripeMin int32
	stripeMax int32
}

// NewStripeGenerator creates a generator. A nil palette picks random hues.
func NewStripeGenerator(palette []colorful.Color, stripeMin, stripeMax int32) *StripeGenerator {
	g := new(StripeGenerator)
	g.palette = palette
	g.current = -1
	if stripeMin < 1 {
		stripeMin = 1
	}
	if stripeMax <= stripeMin {
		stripeMax = stripeMin + 1
	}
	g.stripeMin = stripeMin
	g.stripeMax = stripeMax
	return g
}

// Next returns the next stripe. With a palette of more than one colour consecutive stripes
// differ.
func (g *StripeGenerator) Next() Stripe {
	var colour colorful.Color
	switch len(g.palette) {
	case 0:
		colour = colorful.Hsl(util.RandomHue(), 1.0, 0.2)
	case 1:
		colour = g.palette[0]
	default:
		for {
			c := rand.Intn(len(g.palette))
			if c != g.current {
				g.current = c
				break
			}
		}
		colour = g.palette[g.current]
	}

	length := rand.Int31n(g.stripeMax-g.stripeMin) + g.stripeMin
	return Stripe{Colour: colour, Length: float64(length)}
}

// Stripes scrolls an endless run of stripes along the strip. With stretch the spacing
// widens along the strip, which reads as perspective on a cone.
type Stripes struct {
	Base
	generator *StripeGenerator
	stripes   []Stripe
	offset    float64
	speed     float64
	stretch   bool
	last      float64
	started   bool
}

// NewStripes creates Stripes from generator, moving at speed LEDs per second.
func NewStripes(generator *StripeGenerator, speed float64, stretch bool) *Stripes {
	s := new(Stripes)
	s.Base = NewBase()
	s.generator = generator
	s.speed = speed
	s.stretch = stretch
	return s
}

// at returns the stripe covering position and the position where it ends, generating
// stripes as needed.
func (s *Stripes) at(position float64, from int, end float64) (int, float64) {
	for {
		for from >= len(s.stripes) {
			s.stripes = append(s.stripes, s.generator.Next())
		}
		if position < end+s.stripes[from].Length {
			return from, end + s.stripes[from].Length
		}
		end += s.stripes[from].Length
		from++
	}
}

func (s *Stripes) Render(model Topology, params *Params, frame *Frame) error {
	if s.started && params.Time > s.last {
		s.offset += s.speed * (params.Time - s.last)
	}
	if !s.started || params.Time > s.last {
		s.last = params.Time
	}
	s.started = true

	// Cull stripes that have passed
	for len(s.stripes) > 0 && s.offset >= s.stripes[0].Length {
		s.offset -= s.stripes[0].Length
		s.stripes = s.stripes[1:]
	}

	n := frame.Len()
	index, end := s.at(s.offset, 0, 0)
	for i := 0; i < n; i++ {
		factor := 1.0
		if s.stretch {
			factor = 1.0 + 1.4*(float64(i)/float64(n))
		}
		position := factor*float64(i) + s.offset
		if position >= end {
			index, end = s.at(position, index+1, end)
		}
		c := s.stripes[index].Colour
		frame.AddPixel(i, c.R, c.G, c.B)
	}
	return nil
}
