package shadowmem

import "sync"

// ShadowMemory maps cell addresses to their VarState.
//
// Cells are created lazily on first access and live as long as the detector.
// Safe for concurrent use.
type ShadowMemory struct {
	cells sync.Map // map[uintptr]*VarState
}

// NewShadowMemory creates an empty shadow memory.
func NewShadowMemory() *ShadowMemory {
	return &ShadowMemory{}
}

// GetOrCreate returns the VarState for addr, creating it on first access.
//
// Concurrent first accesses may both allocate; LoadOrStore keeps one.
func (sm *ShadowMemory) GetOrCreate(addr uintptr) *VarState {
	if val, ok := sm.cells.Load(addr); ok {
		return val.(*VarState)
	}

	vs := NewVarState()
	actual, _ := sm.cells.LoadOrStore(addr, vs)
	return actual.(*VarState)
}

// Get returns the VarState for addr, or nil if the address was never accessed.
func (sm *ShadowMemory) Get(addr uintptr) *VarState {
	val, ok := sm.cells.Load(addr)
	if !ok {
		return nil
	}
	return val.(*VarState)
}

// Len returns the number of tracked cells.
func (sm *ShadowMemory) Len() int {
	n := 0
	sm.cells.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
