// Package state holds the single shared product collection of a client
// session together with its pending-request flags.
package state

import (
	"sync"
	"sync/atomic"

	"github.com/fairyhunter13/product-reconciler/internal/reconcile"
)

// Listener is called with every new collection version.
type Listener func(c reconcile.Collection, version uint64)

// Container owns the current collection version. Only Apply replaces it.
type Container struct {
	mu           sync.RWMutex
	current      reconcile.Collection
	version      uint64
	lastSequence uint64
	listeners    map[int]Listener
	nextListener int

	creating atomic.Bool
}

// New returns an empty container.
func New() *Container {
	return &Container{listeners: make(map[int]Listener)}
}

// Snapshot returns the current collection and its version.
func (s *Container) Snapshot() (reconcile.Collection, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.version
}

// Apply replaces the collection with fn(current). seq is the completion
// sequence of the triggering event; a seq at or below the last applied one
// is a redelivery and is dropped. seq 0 is always applied. The queue's
// single worker delivers in order, so the check only matters for callers
// applying sequenced completions directly.
func (s *Container) Apply(seq uint64, fn func(reconcile.Collection) reconcile.Collection) bool {
	s.mu.Lock()
	if seq != 0 && seq <= s.lastSequence {
		s.mu.Unlock()
		return false
	}
	s.current = fn(s.current)
	s.version++
	if seq != 0 {
		s.lastSequence = seq
	}
	c, v := s.current, s.version
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.mu.Unlock()

	for _, l := range ls {
		l(c, v)
	}
	return true
}

// Subscribe registers l and returns a function removing it.
func (s *Container) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = l
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// TryBeginCreate marks a creation as in flight. It reports false when one
// already is.
func (s *Container) TryBeginCreate() bool { return s.creating.CompareAndSwap(false, true) }

// EndCreate clears the in-flight creation flag.
func (s *Container) EndCreate() { s.creating.Store(false) }

// Creating reports whether a creation is in flight.
func (s *Container) Creating() bool { return s.creating.Load() }
