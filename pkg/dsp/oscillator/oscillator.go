// Package oscillator provides phase-accumulator oscillators for rack
// modules. Waveforms are bipolar in [-1, 1]; modules scale them to
// voltages.
package oscillator

import "math"

// Oscillator generates periodic waveforms. It is driven by sample time
// rather than a fixed rate so it follows engine sample rate changes
// transparently.
type Oscillator struct {
	freq  float32
	phase float32
}

// New creates an oscillator at the given frequency in Hz.
func New(freq float32) *Oscillator {
	return &Oscillator{freq: freq}
}

// SetFrequency sets the frequency in Hz.
func (o *Oscillator) SetFrequency(freq float32) {
	o.freq = freq
}

// Frequency returns the frequency in Hz.
func (o *Oscillator) Frequency() float32 {
	return o.freq
}

// Reset rewinds the phase to 0.
func (o *Oscillator) Reset() {
	o.phase = 0
}

// Phase returns the current phase in [0, 1).
func (o *Oscillator) Phase() float32 {
	return o.phase
}

// Step advances the phase by one sample period.
func (o *Oscillator) Step(sampleTime float32) {
	o.phase += o.freq * sampleTime
	if o.phase >= 1 {
		o.phase -= float32(math.Floor(float64(o.phase)))
	}
}

// Sine returns the sine value at the current phase.
func (o *Oscillator) Sine() float32 {
	return float32(math.Sin(2 * math.Pi * float64(o.phase)))
}

// Saw returns the sawtooth value at the current phase.
func (o *Oscillator) Saw() float32 {
	return 2*o.phase - 1
}

// Square returns the square value at the current phase.
func (o *Oscillator) Square() float32 {
	if o.phase < 0.5 {
		return 1
	}
	return -1
}

// Pulse returns a pulse wave with the given duty cycle in (0, 1).
func (o *Oscillator) Pulse(width float32) float32 {
	if o.phase < width {
		return 1
	}
	return -1
}

// Triangle returns the triangle value at the current phase.
func (o *Oscillator) Triangle() float32 {
	if o.phase < 0.5 {
		return 4*o.phase - 1
	}
	return 3 - 4*o.phase
}
