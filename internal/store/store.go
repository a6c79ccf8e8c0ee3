// Package store is the in-memory authoritative product store served by
// the reference HTTP API. It assigns numeric ids in creation order.
package store

import (
	"cmp"
	"slices"
	"sync"

	"github.com/fairyhunter13/product-reconciler/internal/model"
)

type Store struct {
	mu     sync.RWMutex
	m      map[int64]model.Product
	lastID int64
}

func New() *Store {
	return &Store{m: make(map[int64]model.Product)}
}

func (s *Store) Get(id int64) (model.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.m[id]
	return p, ok
}

// List returns all products ordered by id.
func (s *Store) List() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Product, 0, len(s.m))
	for _, p := range s.m {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b model.Product) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Create persists a product under the next id.
func (s *Store) Create(name string, price float64) model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	p := model.Product{ID: s.lastID, Name: name, Price: price}
	s.m[p.ID] = p
	return p
}

// Delete removes the product and reports whether it existed.
func (s *Store) Delete(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[id]; !ok {
		return false
	}
	delete(s.m, id)
	return true
}

// Len returns the number of stored products.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
