package engine

import (
	"runtime"
	"time"

	"github.com/justyntemme/rackgo/pkg/framework/module"
	"github.com/justyntemme/rackgo/pkg/framework/settings"
	"github.com/justyntemme/rackgo/pkg/framework/system"
)

const (
	// mutexSteps is the number of frames stepped per control mutex
	// acquisition. Batching amortizes the lock over ~2.9 ms of audio at
	// 44.1 kHz while bounding how long a mutation can wait.
	mutexSteps = 128

	// smoothLambda is the parameter smoothing decay constant. The time
	// constant works out to roughly one graphics frame.
	smoothLambda = 60.0

	// cpuTau is the time constant of the per-module CPU meter, in seconds.
	cpuTau = 2.0

	// aheadMax is how far ahead of wall clock the loop may run, in
	// seconds, before it starts sleeping.
	aheadMax = 1.0
)

// run is the engine loop body. It paces stepping against wall-clock time,
// reloads configuration at iteration boundaries, and gives way to VIP
// holders between batches.
func (e *Engine) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	system.SetThreadName("rackgo engine")
	system.EnableDenormalFlush()

	// Time in seconds the loop is rushing ahead of wall clock.
	aheadTime := 0.0
	lastTime := time.Now()

	for e.running.Load() {
		// Park here until every queued mutation has gone through.
		e.vip.wait()

		// Reload the sample rate.
		if rate := settings.SampleRate(); rate != e.sampleRate.load() {
			e.setSampleRate(rate)
			e.logger.Debug("sample rate changed to %g Hz", rate)
			e.mu.Lock()
			for _, m := range e.modules {
				m.NotifySampleRateChange(rate)
			}
			e.mu.Unlock()
			aheadTime = 0.0
		}

		// Relaunch workers on thread or scheduling config changes.
		if tc, rt := settings.ThreadCount(), settings.RealTime(); tc != e.threadCount || rt != e.realTime {
			e.threadCount = tc
			e.realTime = rt
			e.relaunchWorkers()
		}

		if !e.paused.Load() {
			e.mu.Lock()
			for _, m := range e.modules {
				e.updateExpander(&m.LeftExpander)
				e.updateExpander(&m.RightExpander)
			}
			for i := 0; i < mutexSteps; i++ {
				e.step()
			}
			e.mu.Unlock()
		}

		// Pacing: credit the audio just produced, pull back toward wall
		// clock at a multiple of real elapsed time, and sleep once far
		// enough ahead. Without a blocking sink module this is what keeps
		// the loop from pegging a core.
		stepTime := mutexSteps * float64(e.sampleTime.load())
		aheadTime += stepTime
		now := time.Now()
		aheadTime -= settings.AheadFactor() * now.Sub(lastTime).Seconds()
		lastTime = now
		if aheadTime < 0 {
			aheadTime = 0
		}
		if aheadTime > aheadMax {
			time.Sleep(time.Duration(stepTime * float64(time.Second)))
		}
	}

	// Teardown: drop to a single thread, which stops and joins all workers.
	e.threadCount = 1
	e.relaunchWorkers()
}

// relaunchWorkers stops and joins the current workers, reconfigures both
// barriers for the new thread count, and spawns threadCount-1 fresh
// workers. Must run on the loop thread, outside a step batch.
func (e *Engine) relaunchWorkers() {
	for _, w := range e.workers {
		w.stop()
	}
	// Release the barrier once so stopping workers observe the flag.
	e.engineBarrier.wait()
	for _, w := range e.workers {
		w.join()
	}
	e.workers = nil

	if err := system.SetThreadRealTime(e.realTime); err != nil {
		e.logger.Debug("engine: real-time scheduling unavailable: %v", err)
	}

	e.engineBarrier.setTotal(e.threadCount)
	e.workerBarrier.setTotal(e.threadCount)

	for id := 1; id < e.threadCount; id++ {
		w := &engineWorker{engine: e, id: id}
		e.workers = append(e.workers, w)
		w.start()
	}
	e.logger.Debug("workers relaunched: %d threads, realTime=%v", e.threadCount, e.realTime)
}

// updateExpander refreshes an expander's cached module pointer from its id.
// Must be called with the control mutex held, before stepping.
func (e *Engine) updateExpander(exp *module.Expander) {
	if exp.ModuleID >= 0 {
		if exp.Module == nil || exp.Module.ID != exp.ModuleID {
			exp.Module = e.getModule(exp.ModuleID)
		}
	} else if exp.Module != nil {
		exp.Module = nil
	}
}

// step advances the whole graph by one frame. Called with the control mutex
// held.
func (e *Engine) step() {
	// Advance the smoothed parameter, if any.
	if sm := e.smoothModule; sm != nil {
		p := &sm.Params[e.smoothParamID]
		value := p.Value()
		newValue := value + (e.smoothValue-value)*smoothLambda*e.sampleTime.load()
		if newValue == value {
			// Float granularity too coarse to move further: snap and stop.
			p.SetValue(e.smoothValue)
			e.smoothModule = nil
			e.smoothParamID = 0
		} else {
			p.SetValue(newValue)
		}
	}

	// Step modules on all threads together.
	e.workerModuleIndex.Store(0)
	e.engineBarrier.wait()
	e.stepModules(0)
	e.workerBarrier.wait()

	// Propagate cables in insertion order.
	for _, c := range e.cables {
		c.Step()
	}

	// Swap expander message buffers requested during this frame.
	for _, m := range e.modules {
		if m.LeftExpander.MessageFlipRequested {
			m.LeftExpander.ProducerMessage, m.LeftExpander.ConsumerMessage =
				m.LeftExpander.ConsumerMessage, m.LeftExpander.ProducerMessage
			m.LeftExpander.MessageFlipRequested = false
		}
		if m.RightExpander.MessageFlipRequested {
			m.RightExpander.ProducerMessage, m.RightExpander.ConsumerMessage =
				m.RightExpander.ConsumerMessage, m.RightExpander.ProducerMessage
			m.RightExpander.MessageFlipRequested = false
		}
	}
}

// stepModules processes modules until the shared index runs out. Every step
// participant, including the loop thread as id 0, runs this concurrently;
// the atomic index hands each module to exactly one thread.
func (e *Engine) stepModules(threadID int) {
	modulesLen := int32(len(e.modules))
	args := module.ProcessArgs{
		SampleRate: e.sampleRate.load(),
		SampleTime: e.sampleTime.load(),
	}
	meter := settings.CPUMeter()

	for {
		i := e.workerModuleIndex.Add(1) - 1
		if i >= modulesLen {
			break
		}
		m := e.modules[i]

		if !m.Bypass {
			if meter {
				start := time.Now()
				m.Process(args)
				dt := float32(time.Since(start).Seconds())
				t := m.CPUTime()
				m.SetCPUTime(t + (dt-t)*args.SampleTime/cpuTau)
			} else {
				m.Process(args)
			}
		}

		// Port lights keep running even when bypassed.
		for pi := range m.Inputs {
			m.Inputs[pi].Process(args.SampleTime)
		}
		for pi := range m.Outputs {
			m.Outputs[pi].Process(args.SampleTime)
		}
	}
}
