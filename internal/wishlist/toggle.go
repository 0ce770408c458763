// Package wishlist implements the optimistic toggle controller. The
// wished flag flips immediately so the heart icon never lags the tap;
// the request runs after, and a failure flips the flag back. Concurrent
// toggles on the same product are serialized so the final state always
// matches the last completed request.
package wishlist

import (
	"context"
	"sync"

	"storefront-gateway/internal/cache"
)

// ToggleState is the per-product controller state.
type ToggleState string

const (
	// StateClean: local flag agrees with the last confirmed server state.
	StateClean ToggleState = "clean"
	// StateOptimisticPending: flag flipped locally, request in flight.
	StateOptimisticPending ToggleState = "pending"
	// StateReverting: request failed, flag flipped back, UI being notified.
	StateReverting ToggleState = "reverting"
)

// Toggler performs the actual wishlist mutations.
type Toggler interface {
	AddToWishlist(ctx context.Context, productID string) error
	RemoveFromWishlist(ctx context.Context, productID string) error
}

// Notifier receives failure notifications so the UI can explain the
// revert. May be nil.
type Notifier func(productID string, err error)

type productState struct {
	// flight serializes toggles on this product. Readers never take it,
	// so the optimistic flag stays observable while a request runs.
	flight sync.Mutex

	// mu guards the fields below. Held only for short critical sections,
	// never across a network call.
	mu     sync.Mutex
	wished bool
	state  ToggleState
}

// Controller tracks the optimistic wished flag per product.
type Controller struct {
	mu       sync.Mutex
	products map[string]*productState

	toggler Toggler
	store   *cache.Store
	notify  Notifier
}

// NewController creates a controller. store may be nil when no cache
// coordination is wanted.
func NewController(toggler Toggler, store *cache.Store, notify Notifier) *Controller {
	return &Controller{
		products: make(map[string]*productState),
		toggler:  toggler,
		store:    store,
		notify:   notify,
	}
}

// Seed records the confirmed server state for a product.
func (c *Controller) Seed(productID string, wished bool) {
	ps := c.stateFor(productID)
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.wished = wished
	ps.state = StateClean
}

// SeedList records the confirmed server state for the whole wishlist:
// listed products are wished, previously tracked products absent from
// the list are not. Products with a toggle in flight are skipped; the
// completing toggle owns their state.
func (c *Controller) SeedList(productIDs []string) {
	present := make(map[string]struct{}, len(productIDs))
	for _, id := range productIDs {
		present[id] = struct{}{}
	}

	c.mu.Lock()
	for id := range present {
		if _, ok := c.products[id]; !ok {
			c.products[id] = &productState{state: StateClean}
		}
	}
	tracked := make(map[string]*productState, len(c.products))
	for id, ps := range c.products {
		tracked[id] = ps
	}
	c.mu.Unlock()

	for id, ps := range tracked {
		if !ps.flight.TryLock() {
			continue
		}
		_, wished := present[id]
		ps.mu.Lock()
		ps.wished = wished
		ps.state = StateClean
		ps.mu.Unlock()
		ps.flight.Unlock()
	}
}

// Wished returns the current (possibly optimistic) flag. Never blocks on
// an in-flight toggle.
func (c *Controller) Wished(productID string) bool {
	ps := c.stateFor(productID)
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.wished
}

// State returns the controller state for a product.
func (c *Controller) State(productID string) ToggleState {
	ps := c.stateFor(productID)
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.state == "" {
		return StateClean
	}
	return ps.state
}

// Toggle flips the wished flag optimistically and runs the matching
// mutation. The flip is visible to Wished/State callers immediately,
// while the request is still in flight. A second toggle on the same
// product waits for the first to finish, so rapid double-toggles net out
// to the last state. Returns the flag as it stands after the call
// completes.
func (c *Controller) Toggle(ctx context.Context, productID string) (bool, error) {
	ps := c.stateFor(productID)

	ps.flight.Lock()
	defer ps.flight.Unlock()

	// Optimistic flip before the request; readers see it immediately.
	ps.mu.Lock()
	target := !ps.wished
	ps.wished = target
	ps.state = StateOptimisticPending
	ps.mu.Unlock()

	var err error
	if target {
		err = c.toggler.AddToWishlist(ctx, productID)
	} else {
		err = c.toggler.RemoveFromWishlist(ctx, productID)
	}

	if err != nil {
		ps.mu.Lock()
		ps.state = StateReverting
		ps.wished = !target
		ps.mu.Unlock()

		if c.notify != nil {
			c.notify(productID, err)
		}

		ps.mu.Lock()
		ps.state = StateClean
		wished := ps.wished
		ps.mu.Unlock()
		return wished, err
	}

	ps.mu.Lock()
	ps.wished = target
	ps.state = StateClean
	ps.mu.Unlock()

	if c.store != nil {
		// The wishlist itself changed, and product listings embed the
		// wished flag.
		c.store.Invalidate(cache.KeyWishlist, cache.KeyProducts, cache.ProductKey(productID))
	}
	return target, nil
}

func (c *Controller) stateFor(productID string) *productState {
	c.mu.Lock()
	defer c.mu.Unlock()

	ps, ok := c.products[productID]
	if !ok {
		ps = &productState{state: StateClean}
		c.products[productID] = ps
	}
	return ps
}
