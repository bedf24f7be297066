package fade

import (
	"github.com/matt-g-everett/ledlayers/effect"
)

// A Fade blends routines over time according to its Schedule. It only borrows the routines.
// A Fade moves from active to done exactly once and never back. When it is done it lets go
// of everything except the final routine.
//
// A Fade is itself a Layer, so an unfinished fade can be the outgoing stage of a newer one.
type Fade struct {
	effect.Base
	schedule Schedule
	stages   []effect.Routine
	guard    *effect.Guard

	elapsed float64
	last    float64
	started bool
	done    bool

	boundary      float64
	onBoundary    func()
	boundaryFired bool
}

func newFade(schedule Schedule, stages ...effect.Routine) *Fade {
	if len(stages) != schedule.stages() {
		panic("fade: schedule and stage count disagree")
	}

	f := new(Fade)
	f.Base = effect.NewBase()
	f.schedule = schedule
	f.stages = stages
	return f
}

// NewLinear creates an even cross-dissolve from one routine to another.
func NewLinear(from, to effect.Routine, duration float64) *Fade {
	return newFade(Linear{duration: duration}, from, to)
}

// NewFast creates a fade that reaches the new routine quickly.
func NewFast(from, to effect.Routine, duration float64) *Fade {
	return newFade(Fast{duration: duration}, from, to)
}

// NewTwoStep creates a fade from one routine to an intermediate over first seconds, then from
// the intermediate to the final routine over second seconds.
func NewTwoStep(from, middle, to effect.Routine, first, second float64) *Fade {
	f := newFade(TwoStep{first: first, second: second}, from, middle, to)
	f.boundary = first
	return f
}

// SetGuard renders the stage routines through guard.
func (f *Fade) SetGuard(guard *effect.Guard) {
	f.guard = guard
}

// OnLegBoundary registers fn to run once, on the frame a TwoStep fade finishes its first leg.
func (f *Fade) OnLegBoundary(fn func()) {
	f.onBoundary = fn
}

// Schedule returns the blending schedule chosen for this fade.
func (f *Fade) Schedule() Schedule {
	return f.schedule
}

// From returns the outgoing routine. A finished fade has released it and returns the final
// routine instead.
func (f *Fade) From() effect.Routine {
	return f.stages[0]
}

// To returns the incoming routine.
func (f *Fade) To() effect.Routine {
	return f.stages[len(f.stages)-1]
}

// Elapsed returns the seconds of fade time rendered so far.
func (f *Fade) Elapsed() float64 {
	return f.elapsed
}

// Done reports whether the fade has reached its final routine.
func (f *Fade) Done() bool {
	return f.done
}

// Render advances the fade by the time since the previous call and accumulates the weighted
// stage routines into frame. Every stage is rendered each call so stateful layers keep
// moving; stages at zero weight are not added. Once done only the final routine is drawn.
func (f *Fade) Render(model effect.Topology, params *effect.Params, frame *effect.Frame) error {
	if f.started {
		if dt := params.Time - f.last; dt > 0 {
			f.elapsed += dt
		}
	}
	if !f.started || params.Time > f.last {
		f.last = params.Time
	}
	f.started = true

	if f.done {
		return f.To().Render(f.guard, model, params, frame)
	}

	weights := f.schedule.Weights(f.elapsed)
	for i, stage := range f.stages {
		temp := frame.Like()
		if err := stage.Render(f.guard, model, params, temp); err != nil {
			return err
		}
		if w := weights[i]; w > 0 {
			temp.Scale(w)
			frame.Add(temp)
		}
	}

	if f.onBoundary != nil && !f.boundaryFired && f.elapsed >= f.boundary {
		f.boundaryFired = true
		f.onBoundary()
	}

	if f.elapsed >= f.schedule.Duration() {
		f.settle()
	}
	return nil
}

// settle drops every stage but the final one. A boundary hook that has not fired yet runs
// now, and fades nested in the dropped stages settle too, so their hooks are not lost when a
// newer fade outruns them.
func (f *Fade) settle() {
	f.done = true
	if f.onBoundary != nil && !f.boundaryFired {
		f.boundaryFired = true
		f.onBoundary()
	}

	last := len(f.stages) - 1
	for _, stage := range f.stages[:last] {
		for _, layer := range stage {
			if inner, ok := layer.(*Fade); ok {
				inner.settle()
			}
		}
	}
	f.stages = []effect.Routine{f.stages[last]}
}
