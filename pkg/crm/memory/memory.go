// Package memory implements an in-memory crm.Store.
package memory

import (
	"context"
	"sync"

	"crmflow/pkg/crm"
)

// entry pairs a customer with its own lock-guarded order list, so appends to
// one customer never contend with appends to another.
type entry struct {
	customer crm.Customer

	mu     sync.RWMutex
	orders []crm.Order
}

// Store provides a concurrent in-memory implementation of crm.Store, keyed
// by customer id.
type Store struct {
	mu      sync.RWMutex
	entries map[int]*entry
}

// New creates an empty store.
func New() *Store {
	return &Store{entries: make(map[int]*entry)}
}

// Put inserts the customer with the given initial orders. An existing id is
// overwritten wholesale, which makes Put idempotent for identical input.
func (s *Store) Put(ctx context.Context, c crm.Customer, orders []crm.Order) error {
	e := &entry{customer: c, orders: append([]crm.Order(nil), orders...)}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[c.ID] = e
	return nil
}

// Orders returns a copy of the customer's order collection, or
// crm.ErrNotFound for an unknown id.
func (s *Store) Orders(ctx context.Context, customerID int) ([]crm.Order, error) {
	s.mu.RLock()
	e, ok := s.entries[customerID]
	s.mu.RUnlock()
	if !ok {
		return nil, crm.ErrNotFound
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]crm.Order(nil), e.orders...), nil
}

// Customers returns a snapshot of all stored customers. The slice is safe to
// iterate while Put and AppendOrder run concurrently.
func (s *Store) Customers(ctx context.Context) ([]crm.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]crm.Customer, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.customer)
	}
	return out, nil
}

// AppendOrder adds one order to an existing customer's collection. Only the
// entry's own lock is held for the append; the map lock is taken read-only.
func (s *Store) AppendOrder(ctx context.Context, customerID int, o crm.Order) error {
	s.mu.RLock()
	e, ok := s.entries[customerID]
	s.mu.RUnlock()
	if !ok {
		return crm.ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.orders = append(e.orders, o)
	return nil
}
