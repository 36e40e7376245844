package audio

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// OtoBackend plays the ring through the default audio device using oto.
// The device pulls samples via Read; underruns are filled with silence.
type OtoBackend struct {
	ctx    *oto.Context
	player *oto.Player
	ring   *Ring

	mu      sync.Mutex
	started bool
}

// NewOtoBackend opens the default audio device at the given sample rate.
func NewOtoBackend(sampleRate int, ring *Ring) (*OtoBackend, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	b := &OtoBackend{ctx: ctx, ring: ring}
	b.player = ctx.NewPlayer(b)
	return b, nil
}

// Read fills p with little-endian float32 samples from the ring. Called by
// the oto mixer goroutine.
func (b *OtoBackend) Read(p []byte) (int, error) {
	n := len(p) / 4 * 4
	for i := 0; i < n; i += 4 {
		v, ok := b.ring.Pop()
		if !ok {
			v = 0
		}
		binary.LittleEndian.PutUint32(p[i:], math.Float32bits(v))
	}
	return n, nil
}

// Start begins playback.
func (b *OtoBackend) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.started {
		b.player.Play()
		b.started = true
	}
	return nil
}

// Stop pauses playback.
func (b *OtoBackend) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		b.player.Pause()
		b.started = false
	}
	return nil
}

// Close releases the player. The oto context itself cannot be closed; it
// lives for the process.
func (b *OtoBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.started = false
	return b.player.Close()
}
