// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

// Package cache provides the expiring key/value cache used to memoize
// derived results such as analytics bundles and holder rankings.
//
// Entries hold JSON-encoded values with an absolute expiry (or none). A read
// past the expiry is a miss and evicts the entry. SweepExpired removes every
// expired entry at once and is run by Sweeper at start and on an interval.
//
// Two backends implement Cacher: Memory (process-local) and Badger (durable,
// sharing the record store's DB under its own key prefix).
package cache

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/arnscope/internal/config"
)

// ErrNilValue rejects Set with a nil value; a nil payload cannot be told
// apart from a miss by callers decoding into a typed destination.
var ErrNilValue = errors.New("cache value is nil")

// Cacher is the expiring cache contract.
type Cacher interface {
	// Get decodes the value stored under key into dst. It returns false on a
	// miss, including an expired entry, which is evicted.
	Get(ctx context.Context, key string, dst interface{}) (bool, error)

	// Set stores value under key. A ttl <= 0 stores without expiry.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes one entry. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry.
	Clear(ctx context.Context) error

	// SweepExpired removes every expired entry and returns how many it removed.
	SweepExpired(ctx context.Context) (int, error)

	// Stats returns a snapshot of hit/miss/eviction counters.
	Stats() Stats

	// Backend names the implementation for logs and metrics.
	Backend() string
}

// Clock returns the current time. Tests inject a fake one.
type Clock func() time.Time

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits        int64     `json:"hits"`
	Misses      int64     `json:"misses"`
	Evictions   int64     `json:"evictions"`
	TotalKeys   int64     `json:"total_keys"`
	LastCleanup time.Time `json:"last_cleanup"`
}

// HitRate returns hits as a percentage of lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// counters is shared by both backends.
type counters struct {
	hits        atomic.Int64
	misses      atomic.Int64
	evictions   atomic.Int64
	lastCleanup atomic.Int64 // unix nanos
}

func (c *counters) snapshot(totalKeys int64) Stats {
	s := Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		TotalKeys: totalKeys,
	}
	if ns := c.lastCleanup.Load(); ns != 0 {
		s.LastCleanup = time.Unix(0, ns)
	}
	return s
}

// envelope is the stored form of an entry. Times are epoch milliseconds;
// ExpiresAt 0 means no expiry.
type envelope struct {
	Value     json.RawMessage `json:"value"`
	ExpiresAt int64           `json:"expires_at"`
	StoredAt  int64           `json:"stored_at"`
}

func (e *envelope) expired(now time.Time) bool {
	return e.ExpiresAt != 0 && now.UnixMilli() > e.ExpiresAt
}

func newEnvelope(value interface{}, ttl time.Duration, now time.Time) (envelope, error) {
	if value == nil {
		return envelope{}, ErrNilValue
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return envelope{}, fmt.Errorf("marshal cache value: %w", err)
	}
	env := envelope{Value: raw, StoredAt: now.UnixMilli()}
	if ttl > 0 {
		env.ExpiresAt = now.Add(ttl).UnixMilli()
	}
	return env, nil
}

// New builds the backend selected by cfg. db is only used by the badger backend.
func New(cfg config.CacheConfig, db *badger.DB) (Cacher, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemory(nil), nil
	case "badger":
		if db == nil {
			return nil, errors.New("badger cache backend requires an open DB")
		}
		return NewBadger(db, nil), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// GenerateKey builds a compact key from a prefix and JSON-serializable params.
func GenerateKey(prefix string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", prefix, params)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", prefix, hash[:16])
}
