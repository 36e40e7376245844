package engine

import "sync"

// vipMutex is a non-exclusive priority gate. Any number of callers may hold
// it at once via acquire/release; wait blocks until no holders remain.
//
// It provides no mutual exclusion. The engine loop calls wait at the top of
// every iteration, before entering its real-time critical section, so a
// caller who acquires a VIP hold is guaranteed the loop parks outside the
// critical section before the caller proceeds to take the control mutex.
// This bounds the latency of host mutations to at most one step batch.
type vipMutex struct {
	mu    sync.Mutex
	cond  *sync.Cond
	count int
}

func newVIPMutex() *vipMutex {
	m := &vipMutex{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// acquire registers a VIP holder.
func (m *vipMutex) acquire() {
	m.mu.Lock()
	m.count++
	m.mu.Unlock()
}

// release drops a VIP hold and wakes anyone blocked in wait.
func (m *vipMutex) release() {
	m.mu.Lock()
	m.count--
	m.mu.Unlock()
	m.cond.Broadcast()
}

// wait blocks while any VIP hold is outstanding.
func (m *vipMutex) wait() {
	m.mu.Lock()
	for m.count > 0 {
		m.cond.Wait()
	}
	m.mu.Unlock()
}
