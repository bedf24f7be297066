package fade

import (
	"github.com/fogleman/ease"
)

// A Schedule decides how much each stage of a Fade contributes at a given elapsed time.
// The set of schedules is closed: Linear, Fast and TwoStep.
type Schedule interface {
	// Duration is the total length of the transition in seconds.
	Duration() float64
	// Weights returns one weight per stage, in stage order.
	Weights(elapsed float64) []float64

	stages() int
}

// ratio is elapsed/duration clamped to [0, 1]. A non-positive duration is already complete.
func ratio(elapsed, duration float64) float64 {
	if duration <= 0 {
		return 1
	}
	r := elapsed / duration
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

// Linear is an even cross-dissolve.
type Linear struct {
	duration float64
}

func (s Linear) Duration() float64 { return s.duration }

func (s Linear) Weights(elapsed float64) []float64 {
	r := ratio(elapsed, s.duration)
	return []float64{1 - r, r}
}

func (Linear) stages() int { return 2 }

// Fast brings the incoming routine up along a steep ease-out curve, so the change reads as
// a quick cut rather than a slow dissolve.
type Fast struct {
	duration float64
}

func (s Fast) Duration() float64 { return s.duration }

func (s Fast) Weights(elapsed float64) []float64 {
	w := ease.OutCubic(ratio(elapsed, s.duration))
	return []float64{1 - w, w}
}

func (Fast) stages() int { return 2 }

// TwoStep dissolves linearly into an intermediate routine, then out of it.
type TwoStep struct {
	first  float64
	second float64
}

func (s TwoStep) Duration() float64 {
	return s.first + s.second
}

func (s TwoStep) Weights(elapsed float64) []float64 {
	if elapsed < s.first {
		r := ratio(elapsed, s.first)
		return []float64{1 - r, r, 0}
	}
	r := ratio(elapsed-s.first, s.second)
	return []float64{0, 1 - r, r}
}

func (TwoStep) stages() int { return 3 }
