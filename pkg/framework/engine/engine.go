// Package engine hosts a graph of modules connected by cables and advances
// it one audio sample at a time on a pool of cooperating threads.
//
// The engine interleaves two kinds of work: sample-accurate stepping on the
// audio threads, and graph mutations arriving from host threads. Mutations
// take a VIP hold plus the control mutex; the loop drains VIP holders at
// every iteration boundary and holds the control mutex for one batch of
// steps at a time, so a mutation waits at most one batch (~3 ms at
// 44.1 kHz) before it runs.
package engine

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/justyntemme/rackgo/pkg/framework/cable"
	"github.com/justyntemme/rackgo/pkg/framework/debug"
	"github.com/justyntemme/rackgo/pkg/framework/module"
)

// atomicFloat32 is a float32 readable without synchronization.
type atomicFloat32 struct {
	bits atomic.Uint32
}

func (f *atomicFloat32) load() float32 {
	return math.Float32frombits(f.bits.Load())
}

func (f *atomicFloat32) store(v float32) {
	f.bits.Store(math.Float32bits(v))
}

// Engine owns the rack graph and the threads that step it.
type Engine struct {
	// mu is the control mutex guarding the graph and smoothing state. The
	// loop holds it for a whole step batch; mutation methods are façades
	// that take it around a lock-held core.
	mu  sync.Mutex
	vip *vipMutex

	modules      []*module.Module
	cables       []*cable.Cable
	paramHandles []*ParamHandle

	nextModuleID int
	nextCableID  int

	// One parameter at most is smoothed at a time. Guarded by mu.
	smoothModule  *module.Module
	smoothParamID int
	smoothValue   float32

	sampleRate atomicFloat32
	sampleTime atomicFloat32

	paused  atomic.Bool
	running atomic.Bool

	// Worker state, touched only by the loop thread (and New).
	threadCount   int
	realTime      bool
	workers       []*engineWorker
	engineBarrier *hybridBarrier
	workerBarrier *hybridBarrier

	workerModuleIndex atomic.Int32

	loopDone chan struct{}
	logger   *debug.Logger
}

// New creates a stopped engine with an empty rack.
func New() *Engine {
	e := &Engine{
		vip:           newVIPMutex(),
		engineBarrier: newHybridBarrier(),
		workerBarrier: newHybridBarrier(),
		threadCount:   1,
		logger:        debug.Default(),
	}
	e.setSampleRate(44100)
	return e
}

func (e *Engine) setSampleRate(rate float32) {
	e.sampleRate.store(rate)
	e.sampleTime.store(1 / rate)
}

// SampleRate returns the current engine sample rate in Hz.
func (e *Engine) SampleRate() float32 {
	return e.sampleRate.load()
}

// SampleTime returns the current sample period in seconds.
func (e *Engine) SampleTime() float32 {
	return e.sampleTime.load()
}

// Start launches the engine loop. The loop paces itself against wall-clock
// time and keeps running until Stop.
func (e *Engine) Start() {
	e.running.Store(true)
	e.loopDone = make(chan struct{})
	go func() {
		defer close(e.loopDone)
		e.run()
	}()
	e.logger.Info("engine started")
}

// Stop halts the engine loop and joins it. The loop stops and joins all
// workers on the way out. The current frame is always completed.
func (e *Engine) Stop() {
	e.running.Store(false)
	<-e.loopDone
	e.logger.Info("engine stopped")
}

// Close verifies the rack was emptied before the engine is discarded.
// A module that fails to remove itself is a programmer error.
func (e *Engine) Close() {
	if e.running.Load() {
		panic("engine: Close called while running")
	}
	if len(e.modules) != 0 {
		panic(fmt.Sprintf("engine: %d modules still registered at close", len(e.modules)))
	}
	if len(e.cables) != 0 {
		panic(fmt.Sprintf("engine: %d cables still registered at close", len(e.cables)))
	}
	if len(e.paramHandles) != 0 {
		panic(fmt.Sprintf("engine: %d param handles still registered at close", len(e.paramHandles)))
	}
}

// SetPaused pauses or resumes stepping. While paused the loop still
// services VIP holders and configuration reloads.
func (e *Engine) SetPaused(paused bool) {
	e.vip.acquire()
	defer e.vip.release()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused.Store(paused)
}

// IsPaused reports whether stepping is paused.
func (e *Engine) IsPaused() bool {
	return e.paused.Load()
}

// YieldWorkers parks all step threads on a condition variable at their next
// barrier crossing instead of spinning. Hosts call this when they know no
// audio callback is coming soon, e.g. before pausing or when the audio
// device goes away. The next full rendezvous wakes everyone and restores
// spinning.
func (e *Engine) YieldWorkers() {
	e.engineBarrier.requestYield()
	e.workerBarrier.requestYield()
}

// AddModule registers a module, assigning an id if it has none, and fires
// its add hook. Adding a module twice or reusing a taken id panics.
func (e *Engine) AddModule(m *module.Module) {
	if m == nil {
		panic("engine: AddModule with nil module")
	}
	e.vip.acquire()
	defer e.vip.release()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.addModule(m)
}

func (e *Engine) addModule(m *module.Module) {
	for _, m2 := range e.modules {
		if m2 == m {
			panic("engine: module already added")
		}
	}
	if m.ID < 0 {
		m.ID = e.nextModuleID
		e.nextModuleID++
	} else {
		for _, m2 := range e.modules {
			if m2.ID == m.ID {
				panic(fmt.Sprintf("engine: module id %d already taken", m.ID))
			}
		}
		if m.ID >= e.nextModuleID {
			e.nextModuleID = m.ID + 1
		}
	}
	e.modules = append(e.modules, m)
	m.NotifyAdd()
	// Bind handles that were waiting for this id.
	for _, h := range e.paramHandles {
		if h.ModuleID == m.ID {
			h.Module = m
		}
	}
}

// RemoveModule unregisters a module and fires its remove hook. The module
// must be registered and must have no cables attached; violating either
// panics. Expanders and param handles pointing at it are cleared, and any
// smoothing on it is cancelled.
func (e *Engine) RemoveModule(m *module.Module) {
	if m == nil {
		panic("engine: RemoveModule with nil module")
	}
	e.vip.acquire()
	defer e.vip.release()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removeModule(m)
}

func (e *Engine) removeModule(m *module.Module) {
	index := -1
	for i, m2 := range e.modules {
		if m2 == m {
			index = i
			break
		}
	}
	if index < 0 {
		panic("engine: module not added")
	}
	if m == e.smoothModule {
		e.smoothModule = nil
	}
	for _, c := range e.cables {
		if c.OutputModule == m || c.InputModule == m {
			panic(fmt.Sprintf("engine: cable %d still attached to module %d", c.ID, m.ID))
		}
	}
	for _, h := range e.paramHandles {
		if h.ModuleID == m.ID {
			h.Module = nil
		}
	}
	for _, m2 := range e.modules {
		if m2.LeftExpander.Module == m {
			m2.LeftExpander.ModuleID = -1
			m2.LeftExpander.Module = nil
		}
		if m2.RightExpander.Module == m {
			m2.RightExpander.ModuleID = -1
			m2.RightExpander.Module = nil
		}
	}
	m.NotifyRemove()
	e.modules = append(e.modules[:index], e.modules[index+1:]...)
}

// GetModule returns the registered module with the given id, or nil.
func (e *Engine) GetModule(id int) *module.Module {
	e.vip.acquire()
	defer e.vip.release()
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.getModule(id)
}

func (e *Engine) getModule(id int) *module.Module {
	for _, m := range e.modules {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// ResetModule fires the module's reset hook while stepping is excluded.
func (e *Engine) ResetModule(m *module.Module) {
	e.vip.acquire()
	defer e.vip.release()
	e.mu.Lock()
	defer e.mu.Unlock()
	m.NotifyReset()
}

// RandomizeModule fires the module's randomize hook while stepping is
// excluded.
func (e *Engine) RandomizeModule(m *module.Module) {
	e.vip.acquire()
	defer e.vip.release()
	e.mu.Lock()
	defer e.mu.Unlock()
	m.NotifyRandomize()
}

// BypassModule enables or disables a module's bypass. Enabling zeroes all
// output channels (and the CPU meter); disabling restores one channel per
// output.
func (e *Engine) BypassModule(m *module.Module, bypass bool) {
	e.vip.acquire()
	defer e.vip.release()
	e.mu.Lock()
	defer e.mu.Unlock()
	if bypass {
		for i := range m.Outputs {
			m.Outputs[i].SetChannels(0)
		}
		m.SetCPUTime(0)
	} else {
		for i := range m.Outputs {
			m.Outputs[i].SetChannels(1)
		}
	}
	m.Bypass = bypass
}

// AddCable registers a cable, assigning an id if it has none. Both
// endpoints must be set, the cable must not already be added, and no other
// cable may target the same input port; violations panic.
func (e *Engine) AddCable(c *cable.Cable) {
	if c == nil {
		panic("engine: AddCable with nil cable")
	}
	if c.OutputModule == nil || c.InputModule == nil {
		panic("engine: cable endpoints must be set")
	}
	e.vip.acquire()
	defer e.vip.release()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.addCable(c)
}

func (e *Engine) addCable(c *cable.Cable) {
	for _, c2 := range e.cables {
		if c2 == c {
			panic("engine: cable already added")
		}
		if c2.InputModule == c.InputModule && c2.InputID == c.InputID {
			panic(fmt.Sprintf("engine: input %d of module %d already cabled", c.InputID, c.InputModule.ID))
		}
	}
	if c.ID < 0 {
		c.ID = e.nextCableID
		e.nextCableID++
	} else {
		for _, c2 := range e.cables {
			if c2.ID == c.ID {
				panic(fmt.Sprintf("engine: cable id %d already taken", c.ID))
			}
		}
		if c.ID >= e.nextCableID {
			e.nextCableID = c.ID + 1
		}
	}
	e.cables = append(e.cables, c)
	e.updateConnected()
}

// RemoveCable unregisters a cable. The cable must be registered. The target
// input port is disconnected and zeroed.
func (e *Engine) RemoveCable(c *cable.Cable) {
	if c == nil {
		panic("engine: RemoveCable with nil cable")
	}
	e.vip.acquire()
	defer e.vip.release()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removeCable(c)
}

func (e *Engine) removeCable(c *cable.Cable) {
	index := -1
	for i, c2 := range e.cables {
		if c2 == c {
			index = i
			break
		}
	}
	if index < 0 {
		panic("engine: cable not added")
	}
	c.InputModule.Inputs[c.InputID].SetChannels(0)
	e.cables = append(e.cables[:index], e.cables[index+1:]...)
	e.updateConnected()
}

// updateConnected refreshes every port's Active flag from the cable list.
func (e *Engine) updateConnected() {
	for _, m := range e.modules {
		for i := range m.Inputs {
			m.Inputs[i].Active = false
		}
		for i := range m.Outputs {
			m.Outputs[i].Active = false
		}
	}
	for _, c := range e.cables {
		c.OutputModule.Outputs[c.OutputID].Active = true
		c.InputModule.Inputs[c.InputID].Active = true
	}
}

// SetParam writes a parameter value directly, cancelling any smoothing in
// flight on that parameter.
func (e *Engine) SetParam(m *module.Module, paramID int, value float32) {
	e.vip.acquire()
	defer e.vip.release()
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.smoothModule == m && e.smoothParamID == paramID {
		e.smoothModule = nil
		e.smoothParamID = 0
	}
	m.Params[paramID].SetValue(value)
}

// GetParam reads a parameter value. The read is atomic and needs no lock.
func (e *Engine) GetParam(m *module.Module, paramID int) float32 {
	return m.Params[paramID].Value()
}

// SetSmoothParam installs (m, paramID, value) as the smoothing target. The
// engine slews the parameter toward the target a little each frame. If a
// different parameter was mid-smoothing it snaps to its own target first so
// it is not abandoned partway.
func (e *Engine) SetSmoothParam(m *module.Module, paramID int, value float32) {
	e.vip.acquire()
	defer e.vip.release()
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.smoothModule != nil && !(e.smoothModule == m && e.smoothParamID == paramID) {
		e.smoothModule.Params[e.smoothParamID].SetValue(e.smoothValue)
	}
	e.smoothParamID = paramID
	e.smoothValue = value
	e.smoothModule = m
}

// GetSmoothParam returns the smoothing target if (m, paramID) is being
// smoothed, else the live value.
func (e *Engine) GetSmoothParam(m *module.Module, paramID int) float32 {
	e.vip.acquire()
	defer e.vip.release()
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.smoothModule == m && e.smoothParamID == paramID {
		return e.smoothValue
	}
	return m.Params[paramID].Value()
}

// AddParamHandle registers a blank handle. Handles must be added blank and
// pointed at a parameter with UpdateParamHandle.
func (e *Engine) AddParamHandle(h *ParamHandle) {
	e.vip.acquire()
	defer e.vip.release()
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, h2 := range e.paramHandles {
		if h2 == h {
			panic("engine: param handle already added")
		}
	}
	if h.ModuleID >= 0 {
		panic("engine: param handle must be added blank")
	}
	e.paramHandles = append(e.paramHandles, h)
}

// RemoveParamHandle unregisters a handle.
func (e *Engine) RemoveParamHandle(h *ParamHandle) {
	e.vip.acquire()
	defer e.vip.release()
	e.mu.Lock()
	defer e.mu.Unlock()
	h.Module = nil
	index := -1
	for i, h2 := range e.paramHandles {
		if h2 == h {
			index = i
			break
		}
	}
	if index < 0 {
		panic("engine: param handle not added")
	}
	e.paramHandles = append(e.paramHandles[:index], e.paramHandles[index+1:]...)
}

// GetParamHandle returns the handle bound to (m, paramID), or nil.
func (e *Engine) GetParamHandle(m *module.Module, paramID int) *ParamHandle {
	e.vip.acquire()
	defer e.vip.release()
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, h := range e.paramHandles {
		if h.Module == m && h.ParamID == paramID {
			return h
		}
	}
	return nil
}

// UpdateParamHandle points a registered handle at (moduleID, paramID) and
// rebinds its cached module. If another handle already targets the same
// parameter, overwrite decides which of the two is reset.
func (e *Engine) UpdateParamHandle(h *ParamHandle, moduleID, paramID int, overwrite bool) {
	e.vip.acquire()
	defer e.vip.release()
	e.mu.Lock()
	defer e.mu.Unlock()

	h.ModuleID = moduleID
	h.ParamID = paramID
	h.Module = nil

	registered := false
	for _, h2 := range e.paramHandles {
		if h2 == h {
			registered = true
			break
		}
	}
	if !registered || h.ModuleID < 0 {
		return
	}
	for _, h2 := range e.paramHandles {
		if h2 != h && h2.ModuleID == moduleID && h2.ParamID == paramID {
			if overwrite {
				h2.Reset()
			} else {
				h.Reset()
			}
		}
	}
	if h.ModuleID >= 0 {
		h.Module = e.getModule(h.ModuleID)
	}
}

// Modules returns a snapshot of the registered modules in insertion order.
func (e *Engine) Modules() []*module.Module {
	e.vip.acquire()
	defer e.vip.release()
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*module.Module, len(e.modules))
	copy(out, e.modules)
	return out
}

// Cables returns a snapshot of the registered cables in insertion order.
func (e *Engine) Cables() []*cable.Cable {
	e.vip.acquire()
	defer e.vip.release()
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*cable.Cable, len(e.cables))
	copy(out, e.cables)
	return out
}
