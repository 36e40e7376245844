package module

// Expander is a link to the module sitting directly left or right of this
// one in the rack. Adjacent modules exchange opaque messages through a pair
// of buffers: the producer writes into ProducerMessage during its own
// process call and requests a flip; at end of frame the engine swaps the two
// buffers, so the consumer reads a stable ConsumerMessage on the following
// frame. No allocation or locking happens per frame.
type Expander struct {
	// ModuleID is the id of the adjacent module, or -1 for none. Set by the
	// host; the engine resolves Module from it before each step batch.
	ModuleID int

	// Module is the engine-maintained cache of the resolved neighbor. Nil
	// when ModuleID is -1 or the module is not registered.
	Module *Module

	// ProducerMessage is the buffer the owning module writes.
	ProducerMessage any

	// ConsumerMessage is the buffer the owning module reads.
	ConsumerMessage any

	// MessageFlipRequested asks the engine to swap the two buffers at the
	// end of the current frame.
	MessageFlipRequested bool
}

// RequestMessageFlip marks the producer buffer ready for the neighbor.
func (e *Expander) RequestMessageFlip() {
	e.MessageFlipRequested = true
}
