package effect

import (
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/ledlayers/util"
)

const idle = -1

// A Twinkle makes random LEDs scintillate, swelling to a colour and back to nothing.
type Twinkle struct {
	Base
	chance int32
	colour colorful.Color
	lut    []float64
	phase  []int
}

// NewTwinkle creates a Twinkle. Each idle LED starts a scintillation with probability
// 1/chance per frame; a scintillation lasts lutLength frames.
func NewTwinkle(chance int32, colour colorful.Color, lutLength int) *Twinkle {
	t := new(Twinkle)
	t.Base = NewBase()
	if chance < 1 {
		chance = 1
	}
	if lutLength < 2 {
		lutLength = 2
	}
	t.chance = chance
	t.colour = colour
	t.lut = util.GenerateLut(lutLength, 1)
	return t
}

func (t *Twinkle) Render(model Topology, params *Params, frame *Frame) error {
	n := frame.Len()

	// Initialise if we need to
	if len(t.phase) != n {
		t.phase = make([]int, n)
		for i := range t.phase {
			t.phase[i] = idle
		}
	}

	for i := 0; i < n; i++ {
		if t.phase[i] == idle {
			if rand.Int31n(t.chance) != 0 {
				continue
			}
			t.phase[i] = 0
		}

		gain := t.lut[t.phase[i]]
		frame.AddPixel(i, t.colour.R*gain, t.colour.G*gain, t.colour.B*gain)

		t.phase[i]++
		if t.phase[i] >= len(t.lut) {
			t.phase[i] = idle
		}
	}
	return nil
}
