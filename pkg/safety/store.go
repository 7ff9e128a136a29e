package safety

import (
	"sync/atomic"
)

// Store holds the current TermSet and swaps it atomically on reload.
// Readers never block and never see a partially built set.
type Store struct {
	current atomic.Pointer[TermSet]
	version atomic.Uint64
}

// NewStore creates a store serving initial. initial must not be nil.
func NewStore(initial *TermSet) *Store {
	if initial == nil {
		panic("safety: NewStore called with nil term set")
	}
	s := &Store{}
	s.current.Store(initial)
	s.version.Store(1)
	return s
}

// TermSet returns the current snapshot.
func (s *Store) TermSet() *TermSet {
	return s.current.Load()
}

// Swap installs next and returns the previous snapshot. A nil next is
// ignored so that the store always serves a complete set.
func (s *Store) Swap(next *TermSet) *TermSet {
	if next == nil {
		return s.current.Load()
	}
	prev := s.current.Swap(next)
	s.version.Add(1)
	return prev
}

// Version counts installed snapshots, starting at 1.
func (s *Store) Version() uint64 {
	return s.version.Load()
}
