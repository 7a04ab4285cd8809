// Package syncshadow implements shadow memory for synchronization objects.
//
// It tracks the happens-before edges created by the guarded variants of the
// shared cell: the mutex of the guarded calculator and the atomic cell.
//
// FastTrack sync rules:
//
//	Acquire(m):  Ct := Ct ⊔ Lm  (task clock joins lock clock)
//	             Ct[t]++
//
//	Release(m):  Lm := Ct        (lock clock = task clock)
//	             Ct[t]++
//
// An atomic store is modelled as a merging release and an atomic load as an
// acquire, so accesses through an atomic cell never race with each other.
package syncshadow
