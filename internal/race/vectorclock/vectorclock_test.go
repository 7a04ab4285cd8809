package vectorclock

import (
	"testing"
)

// TestVectorClockNew tests zero initialization.
func TestVectorClockNew(t *testing.T) {
	vc := New()

	for i := 0; i < 10; i++ {
		if vc.Get(uint16(i)) != 0 {
			t.Errorf("New() Get(%d) = %d, want 0", i, vc.Get(uint16(i)))
		}
	}
	if vc.Len() != 0 {
		t.Errorf("New() Len() = %d, want 0", vc.Len())
	}
}

// TestVectorClockClone tests deep copy independence.
func TestVectorClockClone(t *testing.T) {
	original := New()
	original.Set(0, 10)
	original.Set(5, 20)

	clone := original.Clone()
	if clone.Get(0) != 10 || clone.Get(5) != 20 {
		t.Fatalf("Clone() = %s, want {0:10, 5:20}", clone)
	}

	clone.Set(0, 999)
	clone.Set(7, 1)

	if original.Get(0) != 10 {
		t.Errorf("Original modified after clone change: Get(0) = %d, want 10", original.Get(0))
	}
	if original.Get(7) != 0 {
		t.Errorf("Original grew after clone change: Get(7) = %d, want 0", original.Get(7))
	}
}

// TestVectorClockJoin tests point-wise maximum, including clocks of different length.
func TestVectorClockJoin(t *testing.T) {
	vc1 := New()
	vc1.Set(0, 10)
	vc1.Set(1, 30)

	vc2 := New()
	vc2.Set(0, 5)
	vc2.Set(1, 40)
	vc2.Set(4, 15)

	vc1.Join(vc2)

	cases := []struct {
		tid  uint16
		want uint32
	}{
		{0, 10},
		{1, 40},
		{2, 0},
		{4, 15},
	}
	for _, tc := range cases {
		if got := vc1.Get(tc.tid); got != tc.want {
			t.Errorf("Join() Get(%d) = %d, want %d", tc.tid, got, tc.want)
		}
	}

	// Joining nil is a no-op.
	vc1.Join(nil)
	if vc1.Get(1) != 40 {
		t.Errorf("Join(nil) changed clock: %s", vc1)
	}
}

// TestVectorClockLessOrEqual tests the happens-before partial order.
func TestVectorClockLessOrEqual(t *testing.T) {
	a := New()
	a.Set(0, 1)
	a.Set(1, 2)

	b := New()
	b.Set(0, 1)
	b.Set(1, 3)
	b.Set(2, 1)

	c := New()
	c.Set(0, 2)

	if !a.LessOrEqual(b) {
		t.Errorf("%s ⊑ %s = false, want true", a, b)
	}
	if b.LessOrEqual(a) {
		t.Errorf("%s ⊑ %s = true, want false", b, a)
	}
	// Concurrent clocks: neither ordered.
	if a.HappensBefore(c) || c.HappensBefore(a) {
		t.Errorf("%s and %s should be concurrent", a, c)
	}
	if !New().LessOrEqual(a) {
		t.Error("zero clock must happen-before every clock")
	}
}

// TestVectorClockIncrement tests per-task advancement.
func TestVectorClockIncrement(t *testing.T) {
	vc := New()
	vc.Increment(3)
	vc.Increment(3)

	if vc.Get(3) != 2 {
		t.Errorf("Increment twice: Get(3) = %d, want 2", vc.Get(3))
	}
	if vc.Len() != 4 {
		t.Errorf("Len() = %d, want 4", vc.Len())
	}
}

// TestVectorClockString tests debug formatting.
func TestVectorClockString(t *testing.T) {
	vc := New()
	if got := vc.String(); got != "{}" {
		t.Errorf("String() = %q, want %q", got, "{}")
	}

	vc.Set(0, 50)
	vc.Set(5, 42)
	if got, want := vc.String(), "{0:50, 5:42}"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

// TestVectorClockOutOfRange tests that TIDs beyond the epoch range are rejected.
func TestVectorClockOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Set(MaxThreads) did not panic")
		}
	}()
	New().Set(MaxThreads, 1)
}
