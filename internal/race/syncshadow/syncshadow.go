package syncshadow

import (
	"sync"
)

// SyncShadow maps synchronization object addresses to their SyncVar.
//
// SyncVars are allocated on first access and never freed. Safe for
// concurrent use.
type SyncShadow struct {
	vars sync.Map // map[uintptr]*SyncVar
}

// NewSyncShadow creates an empty SyncShadow.
func NewSyncShadow() *SyncShadow {
	return &SyncShadow{}
}

// GetOrCreate returns the SyncVar for addr, creating it if needed.
//
// Example:
//
//	shadow := NewSyncShadow()
//	sv1 := shadow.GetOrCreate(0x1234)  // Allocates SyncVar
//	sv2 := shadow.GetOrCreate(0x1234)  // Returns same SyncVar
func (s *SyncShadow) GetOrCreate(addr uintptr) *SyncVar {
	if val, ok := s.vars.Load(addr); ok {
		return val.(*SyncVar)
	}

	newVar := &SyncVar{}
	val, _ := s.vars.LoadOrStore(addr, newVar)
	return val.(*SyncVar)
}
