//go:build !linux

package system

// SetThreadName names the calling OS thread. Unsupported on this platform.
func SetThreadName(name string) error {
	return nil
}

// SetThreadRealTime switches the calling OS thread between normal and
// real-time scheduling. Unsupported on this platform; the engine still runs,
// it just competes with ordinary threads.
func SetThreadRealTime(realTime bool) error {
	return nil
}
