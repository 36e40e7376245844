// Package system provides the platform shim for the engine: thread naming,
// real-time scheduling, denormal control and spin-wait hints.
package system

import (
	"runtime"
)

// LogicalCoreCount returns the number of logical CPU cores.
func LogicalCoreCount() int {
	return runtime.NumCPU()
}

// SpinHint relaxes the CPU inside a spin-wait loop. Go exposes no pause
// instruction, so every 256th call yields the processor instead, which keeps
// forward progress possible when spinners outnumber cores. The caller passes
// its own spin counter.
func SpinHint(spin int) {
	if spin&0xff == 0xff {
		runtime.Gosched()
	}
}
