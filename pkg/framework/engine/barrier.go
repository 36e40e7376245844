package engine

import (
	"sync"
	"sync/atomic"

	"github.com/justyntemme/rackgo/pkg/framework/system"
)

// hybridBarrier is a reusable N-party rendezvous that spins by default and
// falls back to a condition variable when asked to yield.
//
// At audio rate the step kernel crosses two barriers per frame, tens of
// thousands of times per second; parking on a condvar at that rate costs
// more than the DSP itself. Spinning trades CPU for microsecond-grade
// coordination. Setting yield from another thread pushes all spinners into
// a blocking wait so the OS can schedule other work.
//
// A thread leaving wait may not re-enter the same barrier until every other
// party has also left, so the step kernel alternates between two barriers:
// all threads must pass both before the next phase begins.
//
// setTotal may only be called while no thread is inside wait.
type hybridBarrier struct {
	count atomic.Int32
	total int32

	mu   sync.Mutex
	cond *sync.Cond

	yield atomic.Bool
}

func newHybridBarrier() *hybridBarrier {
	b := &hybridBarrier{total: 1}
	b.cond = sync.NewCond(&b.mu)
	return b
}

func (b *hybridBarrier) setTotal(total int) {
	b.total = int32(total)
}

// requestYield makes the barrier's next release park spinners on the
// condvar instead of letting them burn CPU.
func (b *hybridBarrier) requestYield() {
	b.yield.Store(true)
}

func (b *hybridBarrier) wait() {
	// Rendezvous with oneself is trivial.
	if b.total <= 1 {
		return
	}

	id := b.count.Add(1)

	// The last thread ends and resets the phase.
	if id == b.total {
		if b.yield.Load() {
			// Sleepers check count under the mutex, so reset it under the
			// mutex too or the broadcast could slip between their check and
			// their wait.
			b.mu.Lock()
			b.count.Store(0)
			b.cond.Broadcast()
			b.yield.Store(false)
			b.mu.Unlock()
		} else {
			b.count.Store(0)
		}
		return
	}

	// Spin until the phase ends or yield is requested.
	spin := 0
	for !b.yield.Load() {
		if b.count.Load() == 0 {
			return
		}
		spin++
		system.SpinHint(spin)
	}

	// Yield was requested mid-spin: block until the phase ends.
	b.mu.Lock()
	for b.count.Load() != 0 {
		b.cond.Wait()
	}
	b.mu.Unlock()
}
