package effect

import (
	"container/list"
	"math"
	"math/rand"

	"github.com/fogleman/ease"
	"github.com/lucasb-eyer/go-colorful"
)

// A streak fades in over its first 20 pixels of travel and out over the next 20.
const streakGainRate = 0.05

type streakParticle struct {
	start   float64
	current float64
	length  float64
}

func (p *streakParticle) gain() float64 {
	d := math.Abs(p.current-p.start) * streakGainRate
	if d > 2 {
		return 0
	} else if d > 1 {
		d = 2 - d
	}
	return ease.InOutQuad(d)
}

func (p *streakParticle) live(numPixels float64) bool {
	return p.current <= numPixels && math.Abs(p.current-p.start)*streakGainRate <= 2
}

// A Streak sends streaks of colour along the strip that fade in then out.
type Streak struct {
	Base
	chance    int32
	colour    colorful.Color
	speed     float64
	length    float64
	particles *list.List
}

// NewStreak creates a Streak. A new streak starts with probability 1/chance per frame and
// moves at speed LEDs per second.
func NewStreak(chance int32, colour colorful.Color, speed float64) *Streak {
	s := new(Streak)
	s.Base = NewBase()
	if chance < 1 {
		chance = 1
	}
	s.chance = chance
	s.colour = colour
	s.speed = speed
	s.length = 10
	s.particles = list.New()
	return s
}

func (s *Streak) Render(model Topology, params *Params, frame *Frame) error {
	n := frame.Len()
	step := s.speed / params.TargetFrameRate

	var next *list.Element
	for e := s.particles.Front(); e != nil; e = next {
		next = e.Next()
		p := e.Value.(*streakParticle)
		p.current += step
		if !p.live(float64(n)) {
			s.particles.Remove(e)
			continue
		}

		gain := p.gain()
		start := int(math.Max(0, math.Ceil(p.current)))
		end := int(math.Min(float64(n-1), math.Floor(p.current+p.length)))
		for i := start; i <= end; i++ {
			frame.AddPixel(i, s.colour.R*gain, s.colour.G*gain, s.colour.B*gain)
		}
	}

	if rand.Int31n(s.chance) == 0 {
		s.particles.PushBack(&streakParticle{length: s.length})
	}
	return nil
}

// Streaks returns the number of streaks in flight.
func (s *Streak) Streaks() int {
	return s.particles.Len()
}
