package audio

import (
	"github.com/justyntemme/rackgo/pkg/framework/module"
)

// sinkScale maps the rack's nominal 10 V peak level to full scale.
const sinkScale = 1.0 / 10.0

// NewSinkModule returns a module with one input that feeds the ring. Each
// frame it pushes the input's first-channel voltage, scaled to [-1, 1].
// When the ring is full the sample is dropped rather than blocking the
// step.
func NewSinkModule(ring *Ring) *module.Module {
	m := module.New(0, 1, 0)
	m.OnProcess(func(m *module.Module, args module.ProcessArgs) {
		ring.Push(m.Inputs[0].Voltage(0) * sinkScale)
	})
	return m
}
