package module

import (
	"sync"
	"testing"
)

func TestNew(t *testing.T) {
	m := New(2, 3, 4)

	if m.ID != -1 {
		t.Errorf("Expected fresh module id -1, got %d", m.ID)
	}
	if len(m.Params) != 2 || len(m.Inputs) != 3 || len(m.Outputs) != 4 {
		t.Errorf("Expected 2/3/4 params/inputs/outputs, got %d/%d/%d",
			len(m.Params), len(m.Inputs), len(m.Outputs))
	}
	if m.LeftExpander.ModuleID != -1 || m.RightExpander.ModuleID != -1 {
		t.Error("Expected expanders to start unlinked")
	}
	for i := range m.Outputs {
		if m.Outputs[i].Channels() != 1 {
			t.Errorf("Expected output %d to start with 1 channel, got %d", i, m.Outputs[i].Channels())
		}
	}
	for i := range m.Inputs {
		if m.Inputs[i].Channels() != 0 {
			t.Errorf("Expected input %d to start disconnected, got %d channels", i, m.Inputs[i].Channels())
		}
	}
}

func TestProcessDispatch(t *testing.T) {
	m := New(0, 1, 1)

	var got ProcessArgs
	calls := 0
	m.OnProcess(func(mod *Module, args ProcessArgs) {
		calls++
		got = args
		mod.Outputs[0].SetVoltage(0, 2.5)
	})

	args := ProcessArgs{SampleRate: 48000, SampleTime: 1.0 / 48000}
	m.Process(args)

	if calls != 1 {
		t.Errorf("Expected 1 process call, got %d", calls)
	}
	if got != args {
		t.Errorf("Expected args %+v, got %+v", args, got)
	}
	if v := m.Outputs[0].Voltage(0); v != 2.5 {
		t.Errorf("Expected output voltage 2.5, got %g", v)
	}
}

func TestProcessWithoutCallback(t *testing.T) {
	m := New(0, 0, 0)
	// Must not panic.
	m.Process(ProcessArgs{SampleRate: 44100, SampleTime: 1.0 / 44100})
}

func TestLifecycleDispatch(t *testing.T) {
	m := New(0, 0, 0)

	var events []string
	m.OnAdd(func(*Module) { events = append(events, "add") })
	m.OnRemove(func(*Module) { events = append(events, "remove") })
	m.OnReset(func(*Module) { events = append(events, "reset") })
	m.OnRandomize(func(*Module) { events = append(events, "randomize") })
	m.OnSampleRateChange(func(_ *Module, sr float32) {
		if sr != 96000 {
			t.Errorf("Expected sample rate 96000, got %g", sr)
		}
		events = append(events, "sr")
	})

	m.NotifyAdd()
	m.NotifyRemove()
	m.NotifyReset()
	m.NotifyRandomize()
	m.NotifySampleRateChange(96000)

	want := []string{"add", "remove", "reset", "randomize", "sr"}
	if len(events) != len(want) {
		t.Fatalf("Expected %d events, got %d", len(want), len(events))
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("Expected event %q at %d, got %q", want[i], i, events[i])
		}
	}
}

func TestParamAtomicAccess(t *testing.T) {
	m := New(1, 0, 0)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				v := m.Params[0].Value()
				// A torn read would produce a value never written.
				if v != 0 && v != 1 && v != 2 {
					t.Errorf("Read torn value %g", v)
					return
				}
			}
		}
	}()

	for i := 0; i < 10000; i++ {
		m.Params[0].SetValue(float32(i % 3))
	}
	close(stop)
	wg.Wait()
}

func TestCPUTime(t *testing.T) {
	m := New(0, 0, 0)
	if m.CPUTime() != 0 {
		t.Errorf("Expected zero initial CPU time, got %g", m.CPUTime())
	}
	m.SetCPUTime(1.5e-6)
	if got := m.CPUTime(); got != 1.5e-6 {
		t.Errorf("Expected 1.5e-6, got %g", got)
	}
}
