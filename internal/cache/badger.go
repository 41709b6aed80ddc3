// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/arnscope/internal/metrics"
)

const (
	backendBadger  = "badger"
	cacheKeyPrefix = "cache:"
)

// Badger is a durable Cacher stored under the "cache:" prefix of a shared DB.
type Badger struct {
	db    *badger.DB
	now   Clock
	stats counters
}

var _ Cacher = (*Badger)(nil)

// NewBadger wraps db. A nil clock uses time.Now. The caller owns db.
func NewBadger(db *badger.DB, clock Clock) *Badger {
	if clock == nil {
		clock = time.Now
	}
	return &Badger{db: db, now: clock}
}

func cacheKey(key string) []byte {
	return []byte(cacheKeyPrefix + key)
}

// Backend implements Cacher.
func (c *Badger) Backend() string { return backendBadger }

// Get implements Cacher.
func (c *Badger) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var env envelope
	found := false
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &env)
		})
	})
	if err != nil {
		return false, fmt.Errorf("read cache entry %q: %w", key, err)
	}

	if !found {
		c.miss()
		return false, nil
	}

	if env.expired(c.now()) {
		if err := c.evictIfExpired(key); err != nil {
			return false, err
		}
		c.miss()
		return false, nil
	}

	if err := json.Unmarshal(env.Value, dst); err != nil {
		return false, fmt.Errorf("decode cache entry %q: %w", key, err)
	}
	c.stats.hits.Add(1)
	metrics.CacheHits.WithLabelValues(backendBadger).Inc()
	return true, nil
}

// evictIfExpired deletes key unless a concurrent Set already replaced it.
func (c *Badger) evictIfExpired(key string) error {
	deleted := false
	err := c.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		var env envelope
		if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &env) }); err != nil {
			return err
		}
		if !env.expired(c.now()) {
			return nil
		}
		deleted = true
		return txn.Delete(cacheKey(key))
	})
	if errors.Is(err, badger.ErrConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("evict cache entry %q: %w", key, err)
	}
	if deleted {
		c.evict(1)
	}
	return nil
}

// Set implements Cacher.
func (c *Badger) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env, err := newEnvelope(value, ttl, c.now())
	if err != nil {
		return err
	}
	data, err := json.Marshal(&env)
	if err != nil {
		return fmt.Errorf("marshal cache envelope: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(cacheKey(key), data)
	})
}

// Delete implements Cacher.
func (c *Badger) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	existed := false
	err := c.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(cacheKey(key)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		existed = true
		return txn.Delete(cacheKey(key))
	})
	if err != nil {
		return fmt.Errorf("delete cache entry %q: %w", key, err)
	}
	if existed {
		c.evict(1)
	}
	return nil
}

// Clear implements Cacher.
func (c *Badger) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n := c.count()
	if err := c.db.DropPrefix([]byte(cacheKeyPrefix)); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	c.evict(n)
	return nil
}

// SweepExpired implements Cacher. Expired keys are collected in a read
// snapshot and deleted through a WriteBatch.
func (c *Badger) SweepExpired(ctx context.Context) (int, error) {
	now := c.now()
	var expired [][]byte

	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(cacheKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			var env envelope
			if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &env) }); err != nil {
				// Undecodable entries can never be served; sweep them too.
				expired = append(expired, item.KeyCopy(nil))
				continue
			}
			if env.expired(now) {
				expired = append(expired, item.KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan cache: %w", err)
	}

	if len(expired) > 0 {
		wb := c.db.NewWriteBatch()
		defer wb.Cancel()
		for _, k := range expired {
			if err := wb.Delete(k); err != nil {
				return 0, fmt.Errorf("sweep cache: %w", err)
			}
		}
		if err := wb.Flush(); err != nil {
			return 0, fmt.Errorf("sweep cache: %w", err)
		}
	}

	c.evict(len(expired))
	c.stats.lastCleanup.Store(now.UnixNano())
	return len(expired), nil
}

// Stats implements Cacher.
func (c *Badger) Stats() Stats {
	return c.stats.snapshot(int64(c.count()))
}

func (c *Badger) count() int {
	n := 0
	_ = c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(cacheKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n
}

func (c *Badger) miss() {
	c.stats.misses.Add(1)
	metrics.CacheMisses.WithLabelValues(backendBadger).Inc()
}

func (c *Badger) evict(n int) {
	if n == 0 {
		return
	}
	c.stats.evictions.Add(int64(n))
	metrics.CacheEvictions.WithLabelValues(backendBadger).Add(float64(n))
}
