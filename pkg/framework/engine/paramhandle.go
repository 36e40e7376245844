package engine

import (
	"github.com/justyntemme/rackgo/pkg/framework/module"
)

// ParamHandle is a host-owned token referencing a (module, param) pair by
// id, e.g. for MIDI mapping. The engine keeps the cached Module pointer in
// sync as modules come and go.
type ParamHandle struct {
	ModuleID int
	ParamID  int

	// Module is the engine-maintained cache of the resolved module. Nil
	// when ModuleID is -1 or the module is not registered.
	Module *module.Module
}

// NewParamHandle returns a blank, unbound handle.
func NewParamHandle() *ParamHandle {
	return &ParamHandle{ModuleID: -1}
}

// Reset clears the handle's target.
func (h *ParamHandle) Reset() {
	h.ModuleID = -1
	h.ParamID = 0
	h.Module = nil
}
