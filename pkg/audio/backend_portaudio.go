//go:build portaudio

package audio

import (
	"github.com/gordonklaus/portaudio"
)

// PortAudioBackend plays the ring through the default device using
// portaudio. Built with the "portaudio" tag; it needs cgo and the native
// portaudio library.
type PortAudioBackend struct {
	stream *portaudio.Stream
	ring   *Ring
}

// NewPortAudioBackend initializes portaudio and opens the default output
// stream at the given sample rate.
func NewPortAudioBackend(sampleRate int, ring *Ring) (*PortAudioBackend, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	b := &PortAudioBackend{ring: ring}
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(sampleRate),
		portaudio.FramesPerBufferUnspecified, func(out []float32) {
			for i := range out {
				v, ok := b.ring.Pop()
				if !ok {
					v = 0
				}
				out[i] = v
			}
		})
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	b.stream = stream
	return b, nil
}

// Start begins playback.
func (b *PortAudioBackend) Start() error {
	return b.stream.Start()
}

// Stop pauses playback.
func (b *PortAudioBackend) Stop() error {
	return b.stream.Stop()
}

// Close releases the stream and shuts portaudio down.
func (b *PortAudioBackend) Close() error {
	err := b.stream.Close()
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}
