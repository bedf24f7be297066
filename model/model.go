// Package model describes the physical LED installation being rendered.
package model

import "github.com/pkg/errors"

// ErrNoLEDs is returned for a model without any LEDs.
var ErrNoLEDs = errors.New("a model needs at least one LED")

// Model is a single strand of LEDs.
type Model struct {
	leds int
}

// New creates a Model of n LEDs.
func New(n int) (*Model, error) {
	if n <= 0 {
		return nil, errors.Wrapf(ErrNoLEDs, "got %d", n)
	}
	return &Model{leds: n}, nil
}

// NumLEDs returns the number of LEDs on the strand.
func (m *Model) NumLEDs() int {
	return m.leds
}
