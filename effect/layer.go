package effect

import (
	"github.com/pkg/errors"
)

// Topology describes the LED layout. Layers only need the LED count.
type Topology interface {
	NumLEDs() int
}

// A Layer is one contribution to a frame. Render adds to, blends with or rewrites the shared
// frame in place and must return without blocking.
type Layer interface {
	Render(model Topology, params *Params, frame *Frame) error
	Traits() *Base
}

const (
	defaultTransitionFadeTime = 1.0
	defaultMaximumErrors      = 5
)

// Base holds the per-instance settings and error budget every layer carries. Layers embed it.
type Base struct {
	// TransitionFadeTime hints how long a fade into this layer should take, in seconds.
	TransitionFadeTime float64
	// MaximumErrors is the number of failures after which a guarded layer is disabled.
	// Zero means the default budget.
	MaximumErrors int

	errorCount int
}

// NewBase returns a Base with the default fade time and error budget.
func NewBase() Base {
	return Base{
		TransitionFadeTime: defaultTransitionFadeTime,
		MaximumErrors:      defaultMaximumErrors,
		errorCount:         0,
	}
}

// Traits gives Guard access to the embedding layer's error budget.
func (t *Base) Traits() *Base {
	return t
}

// Errors returns the number of failures recorded by a Guard.
func (t *Base) Errors() int {
	return t.errorCount
}

// Budget returns the number of failures the layer may have before it is disabled.
func (t *Base) Budget() int {
	if t.MaximumErrors <= 0 {
		return defaultMaximumErrors
	}
	return t.MaximumErrors
}

// Disabled reports whether the layer has used up its error budget.
func (t *Base) Disabled() bool {
	return t.errorCount >= t.Budget()
}

// A Routine is an ordered list of layers rendered into the same frame.
type Routine []Layer

// Render draws every layer in order. With a Guard each layer is isolated; without one the
// first failure stops the routine and is returned.
func (r Routine) Render(guard *Guard, model Topology, params *Params, frame *Frame) error {
	for _, layer := range r {
		if guard != nil {
			guard.Render(layer, model, params, frame)
			continue
		}
		if err := layer.Render(model, params, frame); err != nil {
			return errors.Wrapf(err, "rendering %T", layer)
		}
	}
	return nil
}

// TransitionFadeTime is the longest fade time requested by any layer in the routine.
func (r Routine) TransitionFadeTime() float64 {
	longest := 0.0
	for _, layer := range r {
		if t := layer.Traits().TransitionFadeTime; t > longest {
			longest = t
		}
	}
	return longest
}
