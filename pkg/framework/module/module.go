// Package module defines the unit of DSP the engine steps: a Module with
// parameters, input and output ports, expander links and lifecycle hooks.
// The engine treats module DSP as opaque; behavior is installed as callbacks
// in the same style as the rest of the framework.
package module

import (
	"math"
	"sync/atomic"
)

// ProcessArgs carries the timing of one engine step.
type ProcessArgs struct {
	// SampleRate is the engine sample rate in Hz.
	SampleRate float32
	// SampleTime is 1 / SampleRate in seconds.
	SampleTime float32
}

// Module is one unit in the rack graph.
//
// The exported slices and fields are owned by the engine's concurrency
// discipline: they may be mutated only under the engine's control mutex, and
// during a step exactly one thread processes a given module.
type Module struct {
	// ID is the engine-assigned identifier. -1 until the module is added;
	// hosts restoring a patch may set a non-negative id before adding.
	ID int

	Params  []Param
	Inputs  []Input
	Outputs []Output

	// Bypass disables the module's DSP. Its ports keep running so the
	// indicator lights decay naturally.
	Bypass bool

	LeftExpander  Expander
	RightExpander Expander

	cpuTimeBits atomic.Uint32

	processFn          func(*Module, ProcessArgs)
	onAdd              func(*Module)
	onRemove           func(*Module)
	onReset            func(*Module)
	onRandomize        func(*Module)
	onSampleRateChange func(*Module, float32)
}

// New creates a module with the given port counts. Output ports start with
// one channel, matching their unbypassed state.
func New(numParams, numInputs, numOutputs int) *Module {
	m := &Module{
		ID:      -1,
		Params:  make([]Param, numParams),
		Inputs:  make([]Input, numInputs),
		Outputs: make([]Output, numOutputs),
	}
	m.LeftExpander.ModuleID = -1
	m.RightExpander.ModuleID = -1
	for i := range m.Outputs {
		m.Outputs[i].SetChannels(1)
	}
	return m
}

// OnProcess installs the per-sample DSP callback.
func (m *Module) OnProcess(fn func(*Module, ProcessArgs)) {
	m.processFn = fn
}

// OnAdd installs a callback invoked after the module is added to an engine.
func (m *Module) OnAdd(fn func(*Module)) {
	m.onAdd = fn
}

// OnRemove installs a callback invoked before the module is removed.
func (m *Module) OnRemove(fn func(*Module)) {
	m.onRemove = fn
}

// OnReset installs a callback invoked by Engine.ResetModule.
func (m *Module) OnReset(fn func(*Module)) {
	m.onReset = fn
}

// OnRandomize installs a callback invoked by Engine.RandomizeModule.
func (m *Module) OnRandomize(fn func(*Module)) {
	m.onRandomize = fn
}

// OnSampleRateChange installs a callback invoked when the engine sample rate
// changes.
func (m *Module) OnSampleRateChange(fn func(*Module, float32)) {
	m.onSampleRateChange = fn
}

// Process runs the module's DSP for one sample. Called by the engine's step
// workers; must not block or mutate engine state.
func (m *Module) Process(args ProcessArgs) {
	if m.processFn != nil {
		m.processFn(m, args)
	}
}

// NotifyAdd dispatches the add event.
func (m *Module) NotifyAdd() {
	if m.onAdd != nil {
		m.onAdd(m)
	}
}

// NotifyRemove dispatches the remove event.
func (m *Module) NotifyRemove() {
	if m.onRemove != nil {
		m.onRemove(m)
	}
}

// NotifyReset dispatches the reset event.
func (m *Module) NotifyReset() {
	if m.onReset != nil {
		m.onReset(m)
	}
}

// NotifyRandomize dispatches the randomize event.
func (m *Module) NotifyRandomize() {
	if m.onRandomize != nil {
		m.onRandomize(m)
	}
}

// NotifySampleRateChange dispatches the sample rate change event.
func (m *Module) NotifySampleRateChange(sampleRate float32) {
	if m.onSampleRateChange != nil {
		m.onSampleRateChange(m, sampleRate)
	}
}

// CPUTime returns the module's smoothed process time in seconds. Only
// meaningful while the CPU meter setting is enabled.
func (m *Module) CPUTime() float32 {
	return math.Float32frombits(m.cpuTimeBits.Load())
}

// SetCPUTime stores the smoothed process time. Called by the engine.
func (m *Module) SetCPUTime(t float32) {
	m.cpuTimeBits.Store(math.Float32bits(t))
}
