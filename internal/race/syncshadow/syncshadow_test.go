package syncshadow

import (
	"sync"
	"testing"

	"github.com/kolkov/threadsafety/internal/race/vectorclock"
)

// TestGetOrCreate_Cached tests that the same address yields the same SyncVar.
func TestGetOrCreate_Cached(t *testing.T) {
	shadow := NewSyncShadow()

	sv1 := shadow.GetOrCreate(0x1234)
	sv2 := shadow.GetOrCreate(0x1234)
	sv3 := shadow.GetOrCreate(0x5678)

	if sv1 == nil {
		t.Fatal("GetOrCreate() returned nil")
	}
	if sv1 != sv2 {
		t.Error("GetOrCreate() returned different SyncVars for the same address")
	}
	if sv1 == sv3 {
		t.Error("GetOrCreate() returned the same SyncVar for different addresses")
	}
}

// TestGetOrCreate_Concurrent tests concurrent first access.
func TestGetOrCreate_Concurrent(t *testing.T) {
	shadow := NewSyncShadow()
	const workers = 16

	vars := make([]*SyncVar, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			vars[i] = shadow.GetOrCreate(0xABCD)
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if vars[i] != vars[0] {
			t.Fatalf("goroutine %d got a different SyncVar", i)
		}
	}
}

// TestSyncVar_GetReleaseClock_Nil tests an object that was never released.
func TestSyncVar_GetReleaseClock_Nil(t *testing.T) {
	sv := &SyncVar{}
	if sv.GetReleaseClock() != nil {
		t.Error("GetReleaseClock() on fresh SyncVar != nil")
	}

	// Acquiring an unreleased object leaves the clock unchanged.
	clock := vectorclock.New()
	clock.Set(1, 3)
	sv.AcquireInto(clock)
	if clock.Get(1) != 3 || clock.Len() != 2 {
		t.Errorf("AcquireInto() changed clock to %s", clock)
	}
}

// TestSyncVar_SetReleaseClock tests release/acquire and copy semantics.
func TestSyncVar_SetReleaseClock(t *testing.T) {
	sv := &SyncVar{}

	releaser := vectorclock.New()
	releaser.Set(1, 10)
	sv.SetReleaseClock(releaser)

	// Later changes to the releaser's clock must not leak into the SyncVar.
	releaser.Set(1, 99)

	acquirer := vectorclock.New()
	acquirer.Set(2, 5)
	sv.AcquireInto(acquirer)

	if acquirer.Get(1) != 10 || acquirer.Get(2) != 5 {
		t.Errorf("AcquireInto() = %s, want {1:10, 2:5}", acquirer)
	}

	// A second release replaces the clock.
	second := vectorclock.New()
	second.Set(3, 1)
	sv.SetReleaseClock(second)
	if got := sv.GetReleaseClock(); got.Get(1) != 0 || got.Get(3) != 1 {
		t.Errorf("GetReleaseClock() after replace = %s, want {3:1}", got)
	}
}

// TestSyncVar_MergeReleaseClock tests accumulating releases (atomic stores).
func TestSyncVar_MergeReleaseClock(t *testing.T) {
	sv := &SyncVar{}

	a := vectorclock.New()
	a.Set(1, 4)
	b := vectorclock.New()
	b.Set(2, 6)

	sv.MergeReleaseClock(a)
	sv.MergeReleaseClock(b)

	got := sv.GetReleaseClock()
	if got.Get(1) != 4 || got.Get(2) != 6 {
		t.Errorf("GetReleaseClock() = %s, want {1:4, 2:6}", got)
	}
}
