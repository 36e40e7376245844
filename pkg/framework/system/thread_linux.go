//go:build linux

package system

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// SetThreadName names the calling OS thread. The kernel truncates names to
// 15 bytes. The caller should have locked the goroutine to its thread.
func SetThreadName(name string) error {
	b := make([]byte, 16)
	copy(b, name)
	b[15] = 0
	return unix.Prctl(unix.PR_SET_NAME, uintptr(unsafe.Pointer(&b[0])), 0, 0, 0)
}

// SetThreadRealTime switches the calling OS thread between the default
// scheduling policy and round-robin real-time scheduling. The caller must
// have locked the goroutine to its thread with runtime.LockOSThread.
func SetThreadRealTime(realTime bool) error {
	attr := unix.SchedAttr{
		Size: unix.SizeofSchedAttr,
	}
	if realTime {
		attr.Policy = unix.SCHED_RR
		attr.Priority = 1
	} else {
		attr.Policy = unix.SCHED_NORMAL
	}
	return unix.SchedSetAttr(0, &attr, 0)
}
