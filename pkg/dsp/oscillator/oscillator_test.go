package oscillator

import (
	"math"
	"testing"
)

const sampleTime = 1.0 / 44100

func TestSinePeriod(t *testing.T) {
	o := New(441) // Exactly 100 samples per cycle at 44.1 kHz.

	if got := o.Sine(); got != 0 {
		t.Errorf("Expected sine to start at 0, got %g", got)
	}
	for i := 0; i < 100; i++ {
		o.Step(sampleTime)
	}
	if got := o.Sine(); math.Abs(float64(got)) > 1e-3 {
		t.Errorf("Expected sine near 0 after one full cycle, got %g", got)
	}
}

func TestPhaseWraps(t *testing.T) {
	o := New(10000)
	for i := 0; i < 100000; i++ {
		o.Step(sampleTime)
		if p := o.Phase(); p < 0 || p >= 1 {
			t.Fatalf("Phase out of range at step %d: %g", i, p)
		}
	}
}

func TestSawRange(t *testing.T) {
	o := New(441)
	for i := 0; i < 300; i++ {
		if s := o.Saw(); s < -1 || s > 1 {
			t.Fatalf("Saw out of range: %g", s)
		}
		o.Step(sampleTime)
	}
}

func TestSquare(t *testing.T) {
	o := New(441)
	if got := o.Square(); got != 1 {
		t.Errorf("Expected square high at phase 0, got %g", got)
	}
	// The float32 phase after 50 steps sits just under 0.5, so sample one
	// step past the midpoint.
	for i := 0; i < 51; i++ {
		o.Step(sampleTime)
	}
	if got := o.Square(); got != -1 {
		t.Errorf("Expected square low past half phase, got %g", got)
	}
}

func TestPulseWidth(t *testing.T) {
	o := New(441)
	high := 0
	for i := 0; i < 100; i++ {
		if o.Pulse(0.25) > 0 {
			high++
		}
		o.Step(sampleTime)
	}
	if high < 23 || high > 27 {
		t.Errorf("Expected ~25%% duty cycle, got %d/100 high", high)
	}
}

func TestTriangleRange(t *testing.T) {
	o := New(441)
	min, max := float32(1), float32(-1)
	for i := 0; i < 200; i++ {
		s := o.Triangle()
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
		o.Step(sampleTime)
	}
	if min > -0.95 || max < 0.95 {
		t.Errorf("Expected triangle to span [-1, 1], got [%g, %g]", min, max)
	}
}

func TestReset(t *testing.T) {
	o := New(441)
	for i := 0; i < 37; i++ {
		o.Step(sampleTime)
	}
	o.Reset()
	if got := o.Phase(); got != 0 {
		t.Errorf("Expected phase 0 after reset, got %g", got)
	}
}

func TestSetFrequency(t *testing.T) {
	o := New(100)
	o.SetFrequency(200)
	if got := o.Frequency(); got != 200 {
		t.Errorf("Expected 200, got %g", got)
	}
}
