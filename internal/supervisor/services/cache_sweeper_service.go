// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/arnscope/internal/logging"
)

// Sweeper matches cache.Cacher's expiry sweep.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// CacheSweeperService removes expired cache entries on a fixed interval.
//
// Reads already treat expired entries as misses; the sweep only reclaims
// space held by keys that are never read again.
type CacheSweeperService struct {
	cache    Sweeper
	interval time.Duration
	name     string
}

// NewCacheSweeperService creates a sweeper. A non-positive interval uses 10 minutes.
func NewCacheSweeperService(cache Sweeper, interval time.Duration) *CacheSweeperService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &CacheSweeperService{
		cache:    cache,
		interval: interval,
		name:     "cache-sweeper",
	}
}

// Serve implements suture.Service. It sweeps once at startup and then on
// every tick. A failed sweep is returned so the supervisor restarts it
// with backoff.
func (s *CacheSweeperService) Serve(ctx context.Context) error {
	if err := s.sweep(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.sweep(ctx); err != nil {
				return err
			}
		}
	}
}

func (s *CacheSweeperService) sweep(ctx context.Context) error {
	start := time.Now()
	n, err := s.cache.SweepExpired(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("cache sweep failed: %w", err)
	}

	event := logging.Debug()
	if n > 0 {
		event = logging.Info()
	}
	event.Int("removed", n).Dur("duration", time.Since(start)).Msg("Cache sweep completed")
	return nil
}

// String implements fmt.Stringer for logging.
func (s *CacheSweeperService) String() string {
	return s.name
}
