//go:build !amd64

package system

// EnableDenormalFlush is a no-op on this architecture. Module code that
// feeds back decaying signals should truncate subnormals itself, e.g. with
// FlushDenormal.
func EnableDenormalFlush() {
}
