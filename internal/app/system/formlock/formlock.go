// internal/app/system/formlock/formlock.go

// Package formlock provides an in-process mutex keyed by form ID.
//
// Registrations for the same form must not interleave their
// read-validate-write sequences; registrations for different forms are
// independent. The registration manager holds the form's lock for the
// whole attempt, which also serves as the transactional boundary when
// the MongoDB deployment does not support multi-document transactions.
package formlock

import "sync"

// Set is a collection of per-key mutexes. The zero value is not usable;
// call New.
type Set struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// New returns an empty lock set.
func New() *Set {
	return &Set{locks: make(map[string]*entry)}
}

// Lock acquires the mutex for key, creating it on first use. Entries are
// reference-counted and removed again once the last holder unlocks, so
// the map does not grow with the number of forms ever seen.
func (s *Set) Lock(key string) {
	s.mu.Lock()
	e, ok := s.locks[key]
	if !ok {
		e = &entry{}
		s.locks[key] = e
	}
	e.refs++
	s.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases the mutex for key. It panics if the key was never
// locked, mirroring sync.Mutex semantics.
func (s *Set) Unlock(key string) {
	s.mu.Lock()
	e, ok := s.locks[key]
	if !ok {
		s.mu.Unlock()
		panic("formlock: unlock of unheld key " + key)
	}
	e.refs--
	if e.refs == 0 {
		delete(s.locks, key)
	}
	s.mu.Unlock()

	e.mu.Unlock()
}
