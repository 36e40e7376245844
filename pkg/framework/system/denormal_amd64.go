//go:build amd64

package system

// EnableDenormalFlush sets the calling thread's FPU to flush-to-zero and
// denormals-are-zero mode. Subnormal float arithmetic can run two orders of
// magnitude slower than normal arithmetic, which shows up as random stalls
// on the audio thread. MXCSR is per thread; each thread that processes audio
// must call this after runtime.LockOSThread.
func EnableDenormalFlush() {
	enableFlushToZero()
}

func enableFlushToZero()
