package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestGetOrFetch_CachesValue(t *testing.T) {
	s := New()
	calls := 0
	fetch := func(ctx context.Context) (any, error) {
		calls++
		return "cart-data", nil
	}

	for range 3 {
		got, err := s.GetOrFetch(context.Background(), KeyCart, fetch)
		if err != nil {
			t.Fatalf("GetOrFetch: %v", err)
		}
		if got != "cart-data" {
			t.Fatalf("got %v, want cart-data", got)
		}
	}

	if calls != 1 {
		t.Errorf("fetch ran %d times, want 1", calls)
	}
}

func TestGetOrFetch_ErrorNotCached(t *testing.T) {
	s := New()
	calls := 0
	fetch := func(ctx context.Context) (any, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("upstream down")
		}
		return "ok", nil
	}

	if _, err := s.GetOrFetch(context.Background(), KeyOrders, fetch); err == nil {
		t.Fatal("want error on first fetch")
	}
	got, err := s.GetOrFetch(context.Background(), KeyOrders, fetch)
	if err != nil || got != "ok" {
		t.Fatalf("retry: got (%v, %v), want (ok, nil)", got, err)
	}
	if calls != 2 {
		t.Errorf("fetch ran %d times, want 2", calls)
	}
}

func TestInvalidate_TargetsOnlyGivenKeys(t *testing.T) {
	s := New()
	fetch := func(v string) FetchFunc {
		return func(ctx context.Context) (any, error) { return v, nil }
	}

	s.GetOrFetch(context.Background(), KeyCart, fetch("cart"))
	s.GetOrFetch(context.Background(), KeyWishlist, fetch("wishlist"))

	s.Invalidate(KeyCart)

	if _, ok := s.Peek(KeyCart); ok {
		t.Error("cart should have been invalidated")
	}
	if _, ok := s.Peek(KeyWishlist); !ok {
		t.Error("wishlist should have survived")
	}
}

func TestGetOrFetch_CollapsesConcurrentFetches(t *testing.T) {
	s := New()

	var mu sync.Mutex
	calls := 0
	fetch := func(ctx context.Context) (any, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return "v", nil
	}

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.GetOrFetch(context.Background(), ProductKey("p1"), fetch)
		}()
	}
	wg.Wait()

	if calls != 1 {
		t.Errorf("fetch ran %d times, want 1", calls)
	}
}

func TestClear(t *testing.T) {
	s := New()
	s.GetOrFetch(context.Background(), KeyAddresses, func(ctx context.Context) (any, error) {
		return "a", nil
	})
	s.Clear()
	if _, ok := s.Peek(KeyAddresses); ok {
		t.Error("clear should drop all entries")
	}
}
