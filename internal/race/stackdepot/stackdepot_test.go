package stackdepot

import (
	"runtime"
	"strings"
	"sync"
	"testing"
)

// TestCapture tests basic capture and retrieval.
func TestCapture(t *testing.T) {
	d := New()

	hash := d.Capture(0)
	if hash == 0 {
		t.Fatal("Capture returned zero hash")
	}

	pcs := d.Get(hash)
	if len(pcs) == 0 {
		t.Fatal("Get returned no frames for a valid hash")
	}

	frame, _ := runtime.CallersFrames(pcs).Next()
	if !strings.HasSuffix(frame.Function, "stackdepot.TestCapture") {
		t.Errorf("top frame = %s, want the caller of Capture", frame.Function)
	}
}

// TestCapture_Deduplication tests that one call site yields one stack.
func TestCapture_Deduplication(t *testing.T) {
	d := New()

	var hashes [3]uint64
	for i := range hashes {
		hashes[i] = d.Capture(0)
	}

	if hashes[0] != hashes[1] || hashes[1] != hashes[2] {
		t.Errorf("hashes differ for one call site: %v", hashes)
	}
	if d.Len() != 1 {
		t.Errorf("Len() = %d, want 1", d.Len())
	}
}

func captureFromHelper(d *Depot) uint64 { return d.Capture(0) }

// TestCapture_DifferentSites tests that different call sites are kept apart.
func TestCapture_DifferentSites(t *testing.T) {
	d := New()

	h1 := d.Capture(0)
	h2 := captureFromHelper(d)

	if h1 == h2 {
		t.Error("different call sites produced the same hash")
	}
	if d.Len() != 2 {
		t.Errorf("Len() = %d, want 2", d.Len())
	}
}

// TestCapture_Skip tests that skip drops frames above the caller.
func TestCapture_Skip(t *testing.T) {
	d := New()

	hash := func() uint64 { return d.Capture(1) }()
	frame, _ := runtime.CallersFrames(d.Get(hash)).Next()

	if !strings.HasSuffix(frame.Function, "stackdepot.TestCapture_Skip") {
		t.Errorf("top frame = %s, want the test function", frame.Function)
	}
}

// TestGet_Unknown tests lookups of missing hashes.
func TestGet_Unknown(t *testing.T) {
	d := New()

	if d.Get(0) != nil {
		t.Error("Get(0) != nil")
	}
	if d.Get(12345) != nil {
		t.Error("Get(unknown) != nil")
	}
}

// TestCapture_Concurrent tests concurrent capture from one call site.
func TestCapture_Concurrent(t *testing.T) {
	d := New()

	var wg sync.WaitGroup
	hashes := make([]uint64, 50)
	for i := range hashes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hashes[i] = d.Capture(0)
		}(i)
	}
	wg.Wait()

	for i, h := range hashes {
		if h == 0 || h != hashes[0] {
			t.Errorf("hashes[%d] = %x, want %x", i, h, hashes[0])
		}
	}
}
