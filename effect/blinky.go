package effect

import (
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/ledlayers/util"
)

// Blinky flips every LED fully on and off on alternate frames. Useful for checking frame timing.
type Blinky struct {
	Base
	on bool
}

// NewBlinky creates a Blinky that is lit on its first frame.
func NewBlinky() *Blinky {
	b := new(Blinky)
	b.Base = NewBase()
	return b
}

// Render adds full white on every other call.
func (b *Blinky) Render(model Topology, params *Params, frame *Frame) error {
	b.on = !b.on
	if b.on {
		frame.AddAll(1, 1, 1)
	}
	return nil
}

// ColorBlinky flashes a random fully saturated hue on alternate frames.
type ColorBlinky struct {
	Base
	on bool
}

// NewColorBlinky creates a ColorBlinky that is lit on its first frame.
func NewColorBlinky() *ColorBlinky {
	b := new(ColorBlinky)
	b.Base = NewBase()
	return b
}

// Render adds the same random hue to every LED on every other call.
func (b *ColorBlinky) Render(model Topology, params *Params, frame *Frame) error {
	b.on = !b.on
	colour := colorful.Hsv(util.RandomHue(), 1, 1)
	if b.on {
		frame.AddAll(colour.R, colour.G, colour.B)
	}
	return nil
}

// Snowstorm adds independent grey noise to each LED.
type Snowstorm struct {
	Base
}

// NewSnowstorm creates a Snowstorm.
func NewSnowstorm() *Snowstorm {
	s := new(Snowstorm)
	s.Base = NewBase()
	return s
}

// Render adds a uniform random grey in [0, 1) to every LED.
func (s *Snowstorm) Render(model Topology, params *Params, frame *Frame) error {
	for i := 0; i < frame.Len(); i++ {
		v := rand.Float64()
		frame.AddPixel(i, v, v, v)
	}
	return nil
}

// WhiteOut sets everything to white.
type WhiteOut struct {
	Base
}

// NewWhiteOut creates a WhiteOut with a short transition time.
func NewWhiteOut() *WhiteOut {
	w := new(WhiteOut)
	w.Base = NewBase()
	w.TransitionFadeTime = 0.5
	return w
}

func (w *WhiteOut) Render(model Topology, params *Params, frame *Frame) error {
	frame.AddAll(1, 1, 1)
	return nil
}
