// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/arnscope/internal/logging"
	"github.com/tomtom215/arnscope/internal/models"
	"github.com/tomtom215/arnscope/internal/store"
)

// Load modes reported in Stats.
const (
	ModeCold  = "cold"
	ModeMerge = "merge"
)

// RecordWriter is the subset of store.Store the loader writes through.
type RecordWriter interface {
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
	PutAll(ctx context.Context, records []models.Record) error
	PutAllSmart(ctx context.Context, records []models.Record) (store.MergeResult, error)
}

// Stats describes one load.
type Stats struct {
	Mode      string        `json:"mode"`
	Received  int           `json:"received"`
	Skipped   int           `json:"skipped"`
	Inserted  int           `json:"inserted"`
	Updated   int           `json:"updated"`
	Unchanged int           `json:"unchanged"`
	Total     int           `json:"total"`
	Duration  time.Duration `json:"duration_ns"`
}

// Changed reports whether the load modified the store.
func (s Stats) Changed() bool {
	return s.Inserted+s.Updated > 0 || s.Mode == ModeCold
}

// Loader writes batches into the record store.
type Loader struct {
	store RecordWriter
}

// NewLoader creates a loader over st.
func NewLoader(st RecordWriter) *Loader {
	return &Loader{store: st}
}

// Load writes batch, cold-starting an empty store and merging otherwise.
func (l *Loader) Load(ctx context.Context, batch Batch) (Stats, error) {
	count, err := l.store.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count records: %w", err)
	}
	if count == 0 {
		return l.Reseed(ctx, batch)
	}
	return l.Merge(ctx, batch)
}

// Merge folds batch into the store with PutAllSmart regardless of its state.
func (l *Loader) Merge(ctx context.Context, batch Batch) (Stats, error) {
	start := time.Now()
	res, err := l.store.PutAllSmart(ctx, batch.Records)
	if err != nil {
		return Stats{}, fmt.Errorf("merge batch: %w", err)
	}

	stats := Stats{
		Mode:      ModeMerge,
		Received:  len(batch.Records) + batch.Skipped,
		Skipped:   batch.Skipped,
		Inserted:  res.Inserted,
		Updated:   res.Updated,
		Unchanged: res.Unchanged,
	}
	return l.finish(ctx, stats, start)
}

// Reseed replaces the store contents with batch.
func (l *Loader) Reseed(ctx context.Context, batch Batch) (Stats, error) {
	start := time.Now()
	if err := l.store.Clear(ctx); err != nil {
		return Stats{}, fmt.Errorf("clear store: %w", err)
	}
	if err := l.store.PutAll(ctx, batch.Records); err != nil {
		return Stats{}, fmt.Errorf("seed store: %w", err)
	}

	stats := Stats{
		Mode:     ModeCold,
		Received: len(batch.Records) + batch.Skipped,
		Skipped:  batch.Skipped,
		Inserted: distinctNames(batch.Records),
	}
	return l.finish(ctx, stats, start)
}

func (l *Loader) finish(ctx context.Context, stats Stats, start time.Time) (Stats, error) {
	total, err := l.store.Count(ctx)
	if err != nil {
		return stats, fmt.Errorf("count records: %w", err)
	}
	stats.Total = total
	stats.Duration = time.Since(start)

	logging.Info().
		Str("mode", stats.Mode).
		Int("received", stats.Received).
		Int("skipped", stats.Skipped).
		Int("inserted", stats.Inserted).
		Int("updated", stats.Updated).
		Int("unchanged", stats.Unchanged).
		Int("total", stats.Total).
		Dur("duration", stats.Duration).
		Msg("Record batch loaded")
	return stats, nil
}

func distinctNames(records []models.Record) int {
	seen := make(map[string]struct{}, len(records))
	for i := range records {
		seen[records[i].Name] = struct{}{}
	}
	return len(seen)
}
