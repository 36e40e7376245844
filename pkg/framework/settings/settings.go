// Package settings holds process-wide engine configuration. Values are
// stored atomically so the host can change them from any thread; the engine
// loop picks changes up at its next iteration boundary.
package settings

import (
	"math"
	"sync/atomic"
)

var (
	sampleRate  atomic.Uint32 // float32 bits
	threadCount atomic.Int32
	realTime    atomic.Bool
	cpuMeter    atomic.Bool
	aheadFactor atomic.Uint64 // float64 bits
)

func init() {
	Reset()
}

// Reset restores every setting to its default.
func Reset() {
	SetSampleRate(44100)
	SetThreadCount(1)
	SetRealTime(false)
	SetCPUMeter(false)
	SetAheadFactor(2.0)
}

// SampleRate returns the nominal DSP rate in Hz.
func SampleRate() float32 {
	return math.Float32frombits(sampleRate.Load())
}

// SetSampleRate sets the nominal DSP rate in Hz. Rates below 1 Hz are
// clamped to the default.
func SetSampleRate(rate float32) {
	if !(rate >= 1) {
		rate = 44100
	}
	sampleRate.Store(math.Float32bits(rate))
}

// ThreadCount returns the number of threads that participate in each step,
// including the engine loop thread itself.
func ThreadCount() int {
	return int(threadCount.Load())
}

// SetThreadCount sets the step thread count. Values below 1 are clamped.
func SetThreadCount(count int) {
	if count < 1 {
		count = 1
	}
	threadCount.Store(int32(count))
}

// RealTime reports whether step threads request real-time scheduling.
func RealTime() bool {
	return realTime.Load()
}

// SetRealTime enables or disables real-time scheduling for step threads.
func SetRealTime(rt bool) {
	realTime.Store(rt)
}

// CPUMeter reports whether per-module CPU timing is enabled.
func CPUMeter() bool {
	return cpuMeter.Load()
}

// SetCPUMeter enables or disables per-module CPU timing.
func SetCPUMeter(meter bool) {
	cpuMeter.Store(meter)
}

// AheadFactor returns the multiplier applied to elapsed wall time when the
// engine loop pulls its ahead-of-clock budget back toward zero. Values above
// 1 make a free-running engine drift back to wall-clock rate.
func AheadFactor() float64 {
	return math.Float64frombits(aheadFactor.Load())
}

// SetAheadFactor sets the pacing pull factor. Values below 1 are clamped.
func SetAheadFactor(f float64) {
	if f < 1 {
		f = 1
	}
	aheadFactor.Store(math.Float64bits(f))
}
