package audio

import (
	"sync"
	"testing"
)

func TestRingCapacityRounding(t *testing.T) {
	r := NewRing(100)
	if got := r.Cap(); got != 128 {
		t.Errorf("Expected capacity rounded to 128, got %d", got)
	}
	r = NewRing(256)
	if got := r.Cap(); got != 256 {
		t.Errorf("Expected capacity 256, got %d", got)
	}
}

func TestRingPushPop(t *testing.T) {
	r := NewRing(8)

	if _, ok := r.Pop(); ok {
		t.Error("Expected empty ring to report no sample")
	}

	for i := 0; i < 5; i++ {
		if !r.Push(float32(i)) {
			t.Fatalf("Expected push %d to succeed", i)
		}
	}
	if got := r.Len(); got != 5 {
		t.Errorf("Expected length 5, got %d", got)
	}
	for i := 0; i < 5; i++ {
		v, ok := r.Pop()
		if !ok || v != float32(i) {
			t.Errorf("Expected %d, got %g (ok=%v)", i, v, ok)
		}
	}
}

func TestRingFull(t *testing.T) {
	r := NewRing(4)
	for i := 0; i < 4; i++ {
		if !r.Push(1) {
			t.Fatalf("Expected push %d to succeed", i)
		}
	}
	if r.Push(1) {
		t.Error("Expected push to fail on full ring")
	}
	r.Pop()
	if !r.Push(2) {
		t.Error("Expected push to succeed after pop")
	}
}

func TestRingWrapAround(t *testing.T) {
	r := NewRing(4)
	// Cycle many times past the index wrap point.
	for i := 0; i < 1000; i++ {
		if !r.Push(float32(i)) {
			t.Fatalf("Push failed at %d", i)
		}
		v, ok := r.Pop()
		if !ok || v != float32(i) {
			t.Fatalf("Expected %d, got %g (ok=%v)", i, v, ok)
		}
	}
}

func TestRingSPSC(t *testing.T) {
	r := NewRing(64)
	const total = 100000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		expect := float32(0)
		for int(expect) < total {
			v, ok := r.Pop()
			if !ok {
				continue
			}
			if v != expect {
				t.Errorf("Expected %g, got %g", expect, v)
				return
			}
			expect++
		}
	}()

	for i := 0; i < total; {
		if r.Push(float32(i)) {
			i++
		}
	}
	wg.Wait()
}
