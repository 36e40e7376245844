package module

import (
	"math"
	"sync/atomic"
)

// Param is a single module parameter. The value is stored as atomic bits so
// a host thread can write it without tearing a concurrent read on the audio
// thread; ordering between the two is still the engine's concern.
type Param struct {
	bits atomic.Uint32
}

// Value returns the current parameter value.
func (p *Param) Value() float32 {
	return math.Float32frombits(p.bits.Load())
}

// SetValue sets the parameter value.
func (p *Param) SetValue(v float32) {
	p.bits.Store(math.Float32bits(v))
}
