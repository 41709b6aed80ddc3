// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/arnscope/internal/metrics"
)

const backendMemory = "memory"

// Memory is a thread-safe in-process Cacher.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]envelope
	now     Clock
	stats   counters
}

var _ Cacher = (*Memory)(nil)

// NewMemory returns an empty cache. A nil clock uses time.Now.
func NewMemory(clock Clock) *Memory {
	if clock == nil {
		clock = time.Now
	}
	return &Memory{
		entries: make(map[string]envelope),
		now:     clock,
	}
}

// Backend implements Cacher.
func (c *Memory) Backend() string { return backendMemory }

// Get implements Cacher. An expired entry is deleted and reported as a miss.
func (c *Memory) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.miss()
		return false, nil
	}

	if entry.expired(c.now()) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have replaced it.
		if cur, still := c.entries[key]; still && cur.expired(c.now()) {
			delete(c.entries, key)
			c.evict(1)
		}
		c.mu.Unlock()
		c.miss()
		return false, nil
	}

	if err := json.Unmarshal(entry.Value, dst); err != nil {
		return false, fmt.Errorf("decode cache entry %q: %w", key, err)
	}
	c.stats.hits.Add(1)
	metrics.CacheHits.WithLabelValues(backendMemory).Inc()
	return true, nil
}

// Set implements Cacher.
func (c *Memory) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env, err := newEnvelope(value, ttl, c.now())
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.entries[key] = env
	c.mu.Unlock()
	return nil
}

// Delete implements Cacher.
func (c *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	if _, ok := c.entries[key]; ok {
		delete(c.entries, key)
		c.evict(1)
	}
	c.mu.Unlock()
	return nil
}

// Clear implements Cacher.
func (c *Memory) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	n := len(c.entries)
	c.entries = make(map[string]envelope)
	c.mu.Unlock()
	c.evict(n)
	return nil
}

// SweepExpired implements Cacher.
func (c *Memory) SweepExpired(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	now := c.now()

	c.mu.Lock()
	removed := 0
	for key, entry := range c.entries {
		if entry.expired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	c.mu.Unlock()

	c.evict(removed)
	c.stats.lastCleanup.Store(now.UnixNano())
	return removed, nil
}

// Stats implements Cacher.
func (c *Memory) Stats() Stats {
	c.mu.RLock()
	n := int64(len(c.entries))
	c.mu.RUnlock()
	return c.stats.snapshot(n)
}

func (c *Memory) miss() {
	c.stats.misses.Add(1)
	metrics.CacheMisses.WithLabelValues(backendMemory).Inc()
}

func (c *Memory) evict(n int) {
	if n == 0 {
		return
	}
	c.stats.evictions.Add(int64(n))
	metrics.CacheEvictions.WithLabelValues(backendMemory).Add(float64(n))
}
