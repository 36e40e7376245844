// Package cable connects one module's output port to another module's input
// port. The engine steps every cable once per frame, after all modules have
// processed, so a cable always carries the value produced in the current
// frame.
package cable

import (
	"github.com/justyntemme/rackgo/pkg/framework/module"
)

// Cable is a directed connection between two ports. Endpoints are fixed for
// the cable's lifetime; to re-patch, remove the cable and add a new one.
type Cable struct {
	// ID is the engine-assigned identifier, -1 until added.
	ID int

	OutputModule *module.Module
	OutputID     int
	InputModule  *module.Module
	InputID      int
}

// New creates an unregistered cable between the given ports.
func New(outputModule *module.Module, outputID int, inputModule *module.Module, inputID int) *Cable {
	return &Cable{
		ID:           -1,
		OutputModule: outputModule,
		OutputID:     outputID,
		InputModule:  inputModule,
		InputID:      inputID,
	}
}

// Step propagates the output port's channels and voltages to the input port.
func (c *Cable) Step() {
	out := &c.OutputModule.Outputs[c.OutputID]
	in := &c.InputModule.Inputs[c.InputID]

	channels := out.Channels()
	in.SetChannels(channels)
	for ch := 0; ch < channels; ch++ {
		in.SetVoltage(ch, out.Voltage(ch))
	}
}
