package images

import (
	"context"
	"sync"
	"testing"
	"time"
)

// countingAdapter counts fetches while always returning the same record set.
type countingAdapter struct {
	mu    sync.Mutex
	calls int
}

func (c *countingAdapter) Name() string { return "counting" }

func (c *countingAdapter) Fetch(_ context.Context, _ string, count int) ([]Record, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return stubRecords("counting", count), nil
}

func (c *countingAdapter) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func newCachedForTest(ttl time.Duration) (*CachedResolver, *countingAdapter) {
	a := &countingAdapter{}
	r := NewResolver([]Adapter{a, PlaceholderAdapter{}}, quietLogger())
	return NewCachedResolver(r, ttl), a
}

func TestCachedResolveReusesEntries(t *testing.T) {
	c, a := newCachedForTest(time.Minute)

	first := c.Resolve(context.Background(), "desk lamp", 3)
	second := c.Resolve(context.Background(), "desk lamp", 3)
	if a.callCount() != 1 {
		t.Fatalf("adapter called %d times, want 1", a.callCount())
	}
	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("lengths %d and %d, want 3", len(first), len(second))
	}
}

func TestCachedResolveKeyIncludesCount(t *testing.T) {
	c, a := newCachedForTest(time.Minute)

	c.Resolve(context.Background(), "desk lamp", 3)
	c.Resolve(context.Background(), "desk lamp", 5)
	if a.callCount() != 2 {
		t.Fatalf("adapter called %d times, want 2", a.callCount())
	}
}

func TestCachedResolveNormalizesKey(t *testing.T) {
	c, a := newCachedForTest(time.Minute)

	c.Resolve(context.Background(), "Desk Lamp", 3)
	c.Resolve(context.Background(), "  desk   lamp ", 3)
	if a.callCount() != 1 {
		t.Fatalf("adapter called %d times, want 1", a.callCount())
	}
}

func TestCachedResolveReturnsCopies(t *testing.T) {
	c, _ := newCachedForTest(time.Minute)

	first := c.Resolve(context.Background(), "desk lamp", 2)
	first[0].URL = "mutated"
	second := c.Resolve(context.Background(), "desk lamp", 2)
	if second[0].URL == "mutated" {
		t.Fatal("caller mutation leaked into cache")
	}
}

func TestCachedResolveExpires(t *testing.T) {
	c, a := newCachedForTest(10 * time.Millisecond)

	c.Resolve(context.Background(), "desk lamp", 2)
	time.Sleep(20 * time.Millisecond)
	c.Resolve(context.Background(), "desk lamp", 2)
	if a.callCount() != 2 {
		t.Fatalf("adapter called %d times after expiry, want 2", a.callCount())
	}
}

func TestCachedResolveCollapsesConcurrentMisses(t *testing.T) {
	c, a := newCachedForTest(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := c.Resolve(context.Background(), "desk lamp", 3)
			if len(got) != 3 {
				t.Errorf("got %d records, want 3", len(got))
			}
		}()
	}
	wg.Wait()
	if a.callCount() != 1 {
		t.Fatalf("adapter called %d times under concurrency, want 1", a.callCount())
	}
}

func TestPurgeRemovesExpiredOnly(t *testing.T) {
	c, _ := newCachedForTest(10 * time.Millisecond)

	c.Resolve(context.Background(), "old entry", 1)
	time.Sleep(20 * time.Millisecond)
	c.ttl = time.Minute
	c.Resolve(context.Background(), "fresh entry", 1)

	if removed := c.Purge(); removed != 1 {
		t.Fatalf("Purge removed %d entries, want 1", removed)
	}
}
