package audio

// HeadlessBackend consumes the ring without a device. Tests and offline
// rendering pull samples with Render at whatever pace they like.
type HeadlessBackend struct {
	ring *Ring
}

// NewHeadlessBackend wraps a ring for deviceless consumption.
func NewHeadlessBackend(ring *Ring) *HeadlessBackend {
	return &HeadlessBackend{ring: ring}
}

// Render fills buf from the ring and returns the number of real samples
// written; the remainder is zero-filled.
func (b *HeadlessBackend) Render(buf []float32) int {
	n := 0
	for i := range buf {
		v, ok := b.ring.Pop()
		if !ok {
			buf[i] = 0
			continue
		}
		buf[i] = v
		n++
	}
	return n
}

// Start implements Backend.
func (b *HeadlessBackend) Start() error { return nil }

// Stop implements Backend.
func (b *HeadlessBackend) Stop() error { return nil }

// Close implements Backend.
func (b *HeadlessBackend) Close() error { return nil }
