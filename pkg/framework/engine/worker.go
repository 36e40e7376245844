package engine

import (
	"runtime"
	"sync/atomic"

	"github.com/justyntemme/rackgo/pkg/framework/system"
)

// engineWorker is one dedicated step thread. Thread 0 is the engine loop
// itself; workers carry ids 1..threadCount-1.
type engineWorker struct {
	engine  *Engine
	id      int
	running atomic.Bool
	done    chan struct{}
}

func (w *engineWorker) start() {
	w.running.Store(true)
	w.done = make(chan struct{})
	go w.run()
}

// stop asks the worker to exit at its next engine barrier crossing. The
// engine must release the barrier once afterward so the worker observes it.
func (w *engineWorker) stop() {
	w.running.Store(false)
}

func (w *engineWorker) join() {
	<-w.done
}

func (w *engineWorker) run() {
	defer close(w.done)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	system.SetThreadName("rackgo worker")
	if err := system.SetThreadRealTime(w.engine.realTime); err != nil {
		w.engine.logger.Debug("worker %d: real-time scheduling unavailable: %v", w.id, err)
	}
	system.EnableDenormalFlush()

	for {
		w.engine.engineBarrier.wait()
		if !w.running.Load() {
			return
		}
		w.engine.stepModules(w.id)
		w.engine.workerBarrier.wait()
	}
}
