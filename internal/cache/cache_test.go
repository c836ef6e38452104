package cache_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dom/pokedex/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCache_SetGet(t *testing.T) {
	c := cache.New[[]string]()

	_, ok := c.Get("pokemons")
	assert.False(t, ok)

	v1 := c.Set("pokemons", []string{"a"})
	got, ok := c.Get("pokemons")
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, got)

	v2 := c.Set("pokemons", []string{"a", "b"})
	assert.Greater(t, v2, v1)
}

func TestCache_Freshness(t *testing.T) {
	clock := newFakeClock()
	c := cache.New[int](cache.WithStaleTime(10*time.Second), cache.WithClock(clock.Now))

	c.Set("k", 1)
	assert.True(t, c.Snapshot("k").Fresh)

	clock.Advance(10 * time.Second)
	s := c.Snapshot("k")
	assert.True(t, s.Present)
	assert.False(t, s.Fresh)
}

func TestCache_CompareAndSwap(t *testing.T) {
	c := cache.New[string]()

	tests := []struct {
		name    string
		setup   func() uint64
		version func(current uint64) uint64
		wantOK  bool
	}{
		{
			name:    "absent key with zero version",
			setup:   func() uint64 { c.Invalidate("k"); return 0 },
			version: func(uint64) uint64 { return 0 },
			wantOK:  true,
		},
		{
			name:    "absent key with stale version",
			setup:   func() uint64 { c.Invalidate("k"); return 0 },
			version: func(uint64) uint64 { return 42 },
			wantOK:  false,
		},
		{
			name:    "matching version",
			setup:   func() uint64 { return c.Set("k", "old") },
			version: func(current uint64) uint64 { return current },
			wantOK:  true,
		},
		{
			name: "version moved on",
			setup: func() uint64 {
				v := c.Set("k", "old")
				c.Set("k", "newer")
				return v
			},
			version: func(current uint64) uint64 { return current },
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := tt.setup()
			_, ok := c.CompareAndSwap("k", tt.version(current), "swapped")
			assert.Equal(t, tt.wantOK, ok)

			got, _ := c.Get("k")
			if tt.wantOK {
				assert.Equal(t, "swapped", got)
			} else {
				assert.NotEqual(t, "swapped", got)
			}
		})
	}
}

func TestCache_SnapshotRestore(t *testing.T) {
	c := cache.New[string]()
	c.Set("present", "before")

	present := c.Snapshot("present")
	absent := c.Snapshot("absent")

	c.Set("present", "optimistic")
	c.Set("absent", "optimistic")

	c.Restore("present", present)
	c.Restore("absent", absent)

	got, ok := c.Get("present")
	require.True(t, ok)
	assert.Equal(t, "before", got)

	_, ok = c.Get("absent")
	assert.False(t, ok)
}

func TestCache_Update(t *testing.T) {
	c := cache.New[[]int]()

	_, stored := c.Update("list", func(cur []int, present bool) ([]int, bool) {
		return nil, present
	})
	assert.False(t, stored)

	original := []int{1, 2, 3}
	c.Set("list", original)

	_, stored = c.Update("list", func(cur []int, present bool) ([]int, bool) {
		next := append([]int(nil), cur...)
		next[1] = 20
		return next, true
	})
	require.True(t, stored)

	got, _ := c.Get("list")
	assert.Equal(t, []int{1, 20, 3}, got)
	assert.Equal(t, []int{1, 2, 3}, original, "previous value must not be mutated")
}

func TestCache_IdleKeysExpire(t *testing.T) {
	c := cache.New[int](cache.WithGCTime(50 * time.Millisecond))

	c.Set("idle", 1)
	c.Set("busy", 2)

	deadline := time.Now().Add(150 * time.Millisecond)
	for time.Now().Before(deadline) {
		_, ok := c.Get("busy")
		require.True(t, ok, "reads keep a key alive")
		time.Sleep(10 * time.Millisecond)
	}

	_, ok := c.Get("idle")
	assert.False(t, ok)
	_, ok = c.Get("busy")
	assert.True(t, ok)
}

func TestCache_ExpiredKeyFailsCompareAndSwap(t *testing.T) {
	c := cache.New[string](cache.WithGCTime(20 * time.Millisecond))

	v := c.Set("k", "old")
	time.Sleep(60 * time.Millisecond)

	_, ok := c.CompareAndSwap("k", v, "new")
	assert.False(t, ok)
}

func TestCache_RunUntilEvicts(t *testing.T) {
	c := cache.New[int](cache.WithGCTime(20 * time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.RunUntil(ctx)
	}()

	c.Set("a", 1)
	c.Set("b", 2)
	assert.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("eviction loop did not stop")
	}
}

func TestCache_NoGCTimeKeepsValues(t *testing.T) {
	c := cache.New[int](cache.WithGCTime(0))

	c.Set("k", 1)
	time.Sleep(20 * time.Millisecond)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 1, got)
}

func TestCache_ConcurrentWriters(t *testing.T) {
	c := cache.New[int]()
	c.Set("n", 0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Update("n", func(cur int, _ bool) (int, bool) { return cur + 1, true })
		}()
	}
	wg.Wait()

	got, _ := c.Get("n")
	assert.Equal(t, 50, got)
	assert.Equal(t, 1, c.Len())
}
