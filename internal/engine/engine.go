// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

// Package engine implements the aggregation engine: filter, sort+paginate,
// analytics and holder ranking over an in-memory slice of records.
//
// Every operation walks its input in fixed-size chunks. After each chunk it
// reports Progress{Current, Total}, checks the context and yields the
// processor, so a long pass never monopolizes its goroutine and progress is
// reported in chunk order before the result is returned.
//
// Operations are pure with respect to their input: the records slice is
// never mutated. Failures, including panics inside a pass, are returned as
// *OperationError naming the operation.
package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/tomtom215/arnscope/internal/config"
	"github.com/tomtom215/arnscope/internal/logging"
	"github.com/tomtom215/arnscope/internal/metrics"
)

// Operation names, used in progress and error events.
const (
	OpFilter          = "filter"
	OpSortAndPaginate = "sortAndPaginate"
	OpAnalytics       = "computeAnalytics"
	OpTopHolders      = "computeTopHolders"
)

const (
	defaultChunkSize  = 500
	defaultTopHolders = 100
	defaultTopDomains = 10
)

// Progress is emitted after each processed chunk.
type Progress struct {
	Operation string `json:"operation"`
	Current   int    `json:"current"`
	Total     int    `json:"total"`
}

// Done reports whether this is the last progress event of an operation.
// Every operation ends with exactly one such event, including operations
// over zero records.
func (p Progress) Done() bool {
	return p.Current >= p.Total
}

// ProgressFunc receives progress events. It runs on the engine goroutine.
type ProgressFunc func(Progress)

// OperationError is the structured failure of an engine operation.
type OperationError struct {
	Operation string `json:"operation"`
	Message   string `json:"message"`
	Err       error  `json:"-"`
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Engine runs aggregation passes. It holds no per-request state and is safe
// for concurrent use.
type Engine struct {
	chunkSize  int
	topHolders int
	topDomains int
	now        func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the wall clock used for time windows and growth.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New returns an engine configured from cfg. Zero values take defaults.
func New(cfg config.EngineConfig, opts ...Option) *Engine {
	e := &Engine{
		chunkSize:  cfg.ChunkSize,
		topHolders: cfg.TopHolders,
		topDomains: cfg.TopDomains,
		now:        time.Now,
	}
	if e.chunkSize <= 0 {
		e.chunkSize = defaultChunkSize
	}
	if e.topHolders <= 0 {
		e.topHolders = defaultTopHolders
	}
	if e.topDomains <= 0 {
		e.topDomains = defaultTopDomains
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// run wraps one public operation: it converts panics and plain errors into
// *OperationError and records metrics.
func (e *Engine) run(op string, total int, fn func() error) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = &OperationError{Operation: op, Message: fmt.Sprint(r)}
		}
		if err != nil {
			var opErr *OperationError
			if !errors.As(err, &opErr) {
				err = &OperationError{Operation: op, Message: err.Error(), Err: err}
			}
			logging.Warn().Err(err).Str("operation", op).Int("records", total).Msg("Aggregation failed")
		}
		metrics.RecordEngineOperation(op, total, time.Since(start), err)
	}()
	return fn()
}

// forEachChunk calls fn for consecutive [start, end) windows of n items.
// An empty pass reports a single 0/0 event.
func (e *Engine) forEachChunk(ctx context.Context, op string, n int, progress ProgressFunc, fn func(start, end int)) error {
	if n == 0 && progress != nil {
		progress(Progress{Operation: op})
	}
	for start := 0; start < n; start += e.chunkSize {
		end := min(start+e.chunkSize, n)
		fn(start, end)
		if progress != nil {
			progress(Progress{Operation: op, Current: end, Total: n})
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		runtime.Gosched()
	}
	return nil
}

// rebase shifts a later pass onto the running count of an operation that
// makes several passes, so Current only grows and Done fires once.
func rebase(progress ProgressFunc, offset int) ProgressFunc {
	if progress == nil || offset == 0 {
		return progress
	}
	return func(p Progress) {
		progress(Progress{Operation: p.Operation, Current: offset + p.Current, Total: offset + p.Total})
	}
}

// provisional reports an early pass against an estimated total. The
// estimate must exceed the pass length so the pass never looks finished.
func provisional(progress ProgressFunc, total int) ProgressFunc {
	if progress == nil {
		return nil
	}
	return func(p Progress) {
		progress(Progress{Operation: p.Operation, Current: p.Current, Total: total})
	}
}
