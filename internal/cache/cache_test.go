// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/arnscope/internal/config"
)

// fakeClock is a settable Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

type payload struct {
	Total int    `json:"total"`
	Label string `json:"label"`
}

// backends runs fn against both implementations.
func backends(t *testing.T, fn func(t *testing.T, c Cacher, clock *fakeClock)) {
	t.Helper()

	t.Run("memory", func(t *testing.T) {
		t.Parallel()
		clock := newFakeClock()
		fn(t, NewMemory(clock.Now), clock)
	})

	t.Run("badger", func(t *testing.T) {
		t.Parallel()
		db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		clock := newFakeClock()
		fn(t, NewBadger(db, clock.Now), clock)
	})
}

func TestCache_SetGet(t *testing.T) {
	t.Parallel()
	backends(t, func(t *testing.T, c Cacher, _ *fakeClock) {
		ctx := context.Background()
		require.NoError(t, c.Set(ctx, "stats", payload{Total: 3, Label: "x"}, time.Minute))

		var got payload
		ok, err := c.Get(ctx, "stats", &got)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, payload{Total: 3, Label: "x"}, got)

		ok, err = c.Get(ctx, "missing", &got)
		require.NoError(t, err)
		assert.False(t, ok)

		s := c.Stats()
		assert.Equal(t, int64(1), s.Hits)
		assert.Equal(t, int64(1), s.Misses)
		assert.Equal(t, int64(1), s.TotalKeys)
		assert.InDelta(t, 50.0, s.HitRate(), 0.001)
	})
}

func TestCache_ExpiryIsMissAndEvicts(t *testing.T) {
	t.Parallel()
	backends(t, func(t *testing.T, c Cacher, clock *fakeClock) {
		ctx := context.Background()
		require.NoError(t, c.Set(ctx, "k", payload{Total: 1}, time.Millisecond))

		clock.Advance(2 * time.Millisecond)

		var got payload
		ok, err := c.Get(ctx, "k", &got)
		require.NoError(t, err)
		assert.False(t, ok)

		s := c.Stats()
		assert.Equal(t, int64(1), s.Evictions)
		assert.Equal(t, int64(0), s.TotalKeys, "expired entry removed as a side effect")
	})
}

func TestCache_NoTTLNeverExpires(t *testing.T) {
	t.Parallel()
	backends(t, func(t *testing.T, c Cacher, clock *fakeClock) {
		ctx := context.Background()
		require.NoError(t, c.Set(ctx, "forever", "v", 0))

		clock.Advance(24 * 365 * time.Hour)

		var got string
		ok, err := c.Get(ctx, "forever", &got)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "v", got)

		n, err := c.SweepExpired(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestCache_OverwriteResetsExpiry(t *testing.T) {
	t.Parallel()
	backends(t, func(t *testing.T, c Cacher, clock *fakeClock) {
		ctx := context.Background()
		require.NoError(t, c.Set(ctx, "k", 1, time.Second))
		clock.Advance(900 * time.Millisecond)
		require.NoError(t, c.Set(ctx, "k", 2, time.Second))
		clock.Advance(900 * time.Millisecond)

		var got int
		ok, err := c.Get(ctx, "k", &got)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 2, got)
	})
}

func TestCache_DeleteAndClear(t *testing.T) {
	t.Parallel()
	backends(t, func(t *testing.T, c Cacher, _ *fakeClock) {
		ctx := context.Background()
		for _, k := range []string{"a", "b", "c"} {
			require.NoError(t, c.Set(ctx, k, k, time.Minute))
		}

		require.NoError(t, c.Delete(ctx, "a"))
		require.NoError(t, c.Delete(ctx, "not-there"))

		var v string
		ok, _ := c.Get(ctx, "a", &v)
		assert.False(t, ok)
		ok, _ = c.Get(ctx, "b", &v)
		assert.True(t, ok)

		require.NoError(t, c.Clear(ctx))
		ok, _ = c.Get(ctx, "b", &v)
		assert.False(t, ok)
		assert.Equal(t, int64(0), c.Stats().TotalKeys)
	})
}

func TestCache_SweepExpired(t *testing.T) {
	t.Parallel()
	backends(t, func(t *testing.T, c Cacher, clock *fakeClock) {
		ctx := context.Background()
		require.NoError(t, c.Set(ctx, "short1", 1, time.Second))
		require.NoError(t, c.Set(ctx, "short2", 2, time.Second))
		require.NoError(t, c.Set(ctx, "long", 3, time.Hour))
		require.NoError(t, c.Set(ctx, "none", 4, 0))

		clock.Advance(time.Minute)

		n, err := c.SweepExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		s := c.Stats()
		assert.Equal(t, int64(2), s.TotalKeys)
		assert.Equal(t, int64(2), s.Evictions)
		assert.Equal(t, clock.Now(), s.LastCleanup.UTC())
	})
}

func TestCache_NilValue(t *testing.T) {
	t.Parallel()
	backends(t, func(t *testing.T, c Cacher, _ *fakeClock) {
		assert.ErrorIs(t, c.Set(context.Background(), "k", nil, time.Minute), ErrNilValue)
	})
}

func TestBadger_DoesNotTouchRecords(t *testing.T) {
	t.Parallel()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("record:alice"), []byte(`{"name":"alice"}`))
	}))

	c := NewBadger(db, nil)
	require.NoError(t, c.Set(context.Background(), "k", 1, 0))
	require.NoError(t, c.Clear(context.Background()))

	require.NoError(t, db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte("record:alice"))
		return err
	}))
}

func TestNew(t *testing.T) {
	t.Parallel()

	c, err := New(config.CacheConfig{Backend: "memory"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "memory", c.Backend())

	_, err = New(config.CacheConfig{Backend: "badger"}, nil)
	assert.Error(t, err)

	_, err = New(config.CacheConfig{Backend: "redis"}, nil)
	assert.Error(t, err)
}

func TestGenerateKey(t *testing.T) {
	t.Parallel()

	a := GenerateKey("holders", map[string]int{"limit": 10, "version": 3})
	b := GenerateKey("holders", map[string]int{"version": 3, "limit": 10})
	c := GenerateKey("holders", map[string]int{"limit": 20, "version": 3})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "holders:")
}
