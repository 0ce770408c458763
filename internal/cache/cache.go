// Package cache coordinates reads so repeated fetches of the same
// resource within a session hit memory instead of the gateway. Entries
// are advisory: a mutation invalidates exactly the keys whose resource
// changed, and the next read refetches.
package cache

import (
	"context"
	"sync"
)

// Stable logical keys. Parameterized resources append their id, e.g.
// KeyProduct + "/" + productID.
const (
	KeyCart       = "cart"
	KeyWishlist   = "wishlist"
	KeyOrders     = "orders"
	KeyAddresses  = "addresses"
	KeyProducts   = "products"
	KeyProduct    = "product"
	KeyCategories = "categories"
)

// ProductKey returns the cache key for a single product.
func ProductKey(productID string) string {
	return KeyProduct + "/" + productID
}

// FetchFunc loads a resource on cache miss.
type FetchFunc func(ctx context.Context) (any, error)

type entry struct {
	mu    sync.Mutex
	value any
	valid bool
}

// Store is a thread-safe resource cache. Concurrent GetOrFetch calls for
// the same key are collapsed: only one fetch runs, the rest wait for it.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New returns an empty store.
func New() *Store {
	return &Store{entries: make(map[string]*entry)}
}

func (s *Store) entryFor(key string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	return e
}

// GetOrFetch returns the cached value for key, calling fetch on a miss.
// Fetch errors are not cached; the next call retries.
func (s *Store) GetOrFetch(ctx context.Context, key string, fetch FetchFunc) (any, error) {
	e := s.entryFor(key)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.valid {
		return e.value, nil
	}

	value, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	e.value = value
	e.valid = true
	return value, nil
}

// Peek returns the cached value without fetching.
func (s *Store) Peek(key string) (any, bool) {
	s.mu.Lock()
	e, ok := s.entries[key]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.valid {
		return nil, false
	}
	return e.value, true
}

// Invalidate drops the given keys. Missing keys are ignored.
func (s *Store) Invalidate(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.entries, key)
	}
}

// Clear drops everything, e.g. on sign-out.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*entry)
}
