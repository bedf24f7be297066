package effect

import (
	"github.com/pkg/errors"
)

// Multiplier renders two layers into temporary frames and adds their product to the frame it
// is given. It owns both layers; neither touches the shared frame directly.
type Multiplier struct {
	Base
	layer1 Layer
	layer2 Layer
}

// NewMultiplier creates a Multiplier modulating layer1 by layer2.
func NewMultiplier(layer1, layer2 Layer) *Multiplier {
	m := new(Multiplier)
	m.Base = NewBase()
	m.layer1 = layer1
	m.layer2 = layer2
	return m
}

func (m *Multiplier) Render(model Topology, params *Params, frame *Frame) error {
	temp1 := frame.Like()
	temp2 := frame.Like()
	if err := m.layer1.Render(model, params, temp1); err != nil {
		return errors.Wrapf(err, "multiplier: rendering %T", m.layer1)
	}
	if err := m.layer2.Render(model, params, temp2); err != nil {
		return errors.Wrapf(err, "multiplier: rendering %T", m.layer2)
	}

	temp1.Multiply(temp1, temp2)
	frame.Add(temp1)
	return nil
}
