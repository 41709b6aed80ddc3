// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

// Package bridge runs aggregation requests on a single background worker and
// fans its progress and error events out to subscribers.
//
// Callers use blocking, context-aware methods that mirror the engine
// operations one to one. Requests are queued to one worker goroutine, which
// is started on first use and reused afterwards, so concurrent requests are
// serialized without application-level locking.
//
// Events are published on an in-process watermill gochannel with
// BlockPublishUntilSubscriberAck. The worker therefore does not continue
// past a chunk until every subscriber has seen its progress event, and all
// progress for a request is delivered before the request returns.
// Events are not tagged with a request ID; every subscriber sees every event.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/arnscope/internal/config"
	"github.com/tomtom215/arnscope/internal/engine"
	"github.com/tomtom215/arnscope/internal/logging"
	"github.com/tomtom215/arnscope/internal/metrics"
	"github.com/tomtom215/arnscope/internal/models"
)

// ErrClosed is returned by requests made after Close.
var ErrClosed = errors.New("bridge closed")

const (
	topicProgress = "engine.progress"
	topicError    = "engine.error"

	defaultQueueSize = 16
)

// ErrorEvent is broadcast when an aggregation fails.
type ErrorEvent struct {
	Operation string `json:"operation"`
	Message   string `json:"message"`
}

type result struct {
	value any
	err   error
}

type job struct {
	ctx   context.Context
	op    string
	run   func(ctx context.Context, progress engine.ProgressFunc) (any, error)
	reply chan result
}

// Bridge owns the worker goroutine and the event bus.
type Bridge struct {
	engine *engine.Engine
	queue  chan job
	bus    *gochannel.GoChannel

	startOnce sync.Once
	closeOnce sync.Once
	done      chan struct{}
	worker    sync.WaitGroup
	dispatch  sync.WaitGroup
	cancel    context.CancelFunc

	mu           sync.RWMutex
	nextID       uint64
	progressSubs map[uint64]func(engine.Progress)
	errorSubs    map[uint64]func(ErrorEvent)
}

// New creates a bridge over eng. The worker starts on the first request.
func New(eng *engine.Engine, cfg config.BridgeConfig) (*Bridge, error) {
	size := cfg.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}

	bus := gochannel.NewGoChannel(gochannel.Config{
		BlockPublishUntilSubscriberAck: true,
	}, logging.NewWatermillAdapter())

	ctx, cancel := context.WithCancel(context.Background())
	b := &Bridge{
		engine:       eng,
		queue:        make(chan job, size),
		bus:          bus,
		done:         make(chan struct{}),
		cancel:       cancel,
		progressSubs: make(map[uint64]func(engine.Progress)),
		errorSubs:    make(map[uint64]func(ErrorEvent)),
	}

	progress, err := bus.Subscribe(ctx, topicProgress)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe %s: %w", topicProgress, err)
	}
	failures, err := bus.Subscribe(ctx, topicError)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe %s: %w", topicError, err)
	}

	b.dispatch.Add(2)
	go b.dispatchLoop(progress, b.deliverProgress)
	go b.dispatchLoop(failures, b.deliverError)

	return b, nil
}

// Filter runs engine.Filter on the worker.
func (b *Bridge) Filter(ctx context.Context, records []models.Record, term string) ([]models.Record, error) {
	return call(ctx, b, engine.OpFilter, func(ctx context.Context, p engine.ProgressFunc) ([]models.Record, error) {
		return b.engine.Filter(ctx, records, term, p)
	})
}

// SortAndPaginate runs engine.SortAndPaginate on the worker.
func (b *Bridge) SortAndPaginate(ctx context.Context, records []models.Record, q models.PageQuery) (models.Page, error) {
	return call(ctx, b, engine.OpSortAndPaginate, func(ctx context.Context, p engine.ProgressFunc) (models.Page, error) {
		return b.engine.SortAndPaginate(ctx, records, q, p)
	})
}

// ComputeAnalytics runs engine.ComputeAnalytics on the worker.
func (b *Bridge) ComputeAnalytics(ctx context.Context, records []models.Record) (models.Analytics, error) {
	return call(ctx, b, engine.OpAnalytics, func(ctx context.Context, p engine.ProgressFunc) (models.Analytics, error) {
		return b.engine.ComputeAnalytics(ctx, records, p)
	})
}

// ComputeTopHolders runs engine.ComputeTopHolders on the worker.
func (b *Bridge) ComputeTopHolders(ctx context.Context, records []models.Record) (models.HolderRanking, error) {
	return call(ctx, b, engine.OpTopHolders, func(ctx context.Context, p engine.ProgressFunc) (models.HolderRanking, error) {
		return b.engine.ComputeTopHolders(ctx, records, p)
	})
}

func call[T any](ctx context.Context, b *Bridge, op string, run func(context.Context, engine.ProgressFunc) (T, error)) (T, error) {
	var zero T
	v, err := b.submit(ctx, op, func(ctx context.Context, p engine.ProgressFunc) (any, error) {
		return run(ctx, p)
	})
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

func (b *Bridge) submit(ctx context.Context, op string, run func(context.Context, engine.ProgressFunc) (any, error)) (any, error) {
	select {
	case <-b.done:
		return nil, ErrClosed
	default:
	}
	b.startOnce.Do(func() {
		b.worker.Add(1)
		go b.work()
	})

	j := job{ctx: ctx, op: op, run: run, reply: make(chan result, 1)}
	select {
	case b.queue <- j:
		metrics.BridgeQueueDepth.Set(float64(len(b.queue)))
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-b.done:
		return nil, ErrClosed
	}

	select {
	case r := <-j.reply:
		return r.value, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-b.done:
		return nil, ErrClosed
	}
}

func (b *Bridge) work() {
	defer b.worker.Done()
	logging.Debug().Msg("Aggregation worker started")

	for {
		select {
		case <-b.done:
			logging.Debug().Msg("Aggregation worker stopped")
			return
		case j := <-b.queue:
			metrics.BridgeQueueDepth.Set(float64(len(b.queue)))
			if err := j.ctx.Err(); err != nil {
				j.reply <- result{err: err}
				continue
			}
			v, err := j.run(j.ctx, b.publishProgress)
			// A caller that gave up does not warrant a broadcast.
			if err != nil && j.ctx.Err() == nil {
				b.publishError(j.op, err)
			}
			j.reply <- result{value: v, err: err}
		}
	}
}

func (b *Bridge) publishProgress(p engine.Progress) {
	b.publish(topicProgress, "progress", p)
}

func (b *Bridge) publishError(op string, err error) {
	ev := ErrorEvent{Operation: op, Message: err.Error()}
	var opErr *engine.OperationError
	if errors.As(err, &opErr) {
		ev = ErrorEvent{Operation: opErr.Operation, Message: opErr.Message}
	}
	b.publish(topicError, "error", ev)
}

func (b *Bridge) publish(topic, kind string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Str("topic", topic).Msg("Failed to encode bridge event")
		return
	}
	if err := b.bus.Publish(topic, message.NewMessage(uuid.NewString(), payload)); err != nil {
		logging.Warn().Err(err).Str("topic", topic).Msg("Failed to publish bridge event")
		return
	}
	metrics.BridgeEventsPublished.WithLabelValues(kind).Inc()
}

func (b *Bridge) dispatchLoop(msgs <-chan *message.Message, deliver func([]byte)) {
	defer b.dispatch.Done()
	for msg := range msgs {
		deliver(msg.Payload)
		msg.Ack()
	}
}

func (b *Bridge) deliverProgress(payload []byte) {
	var p engine.Progress
	if err := json.Unmarshal(payload, &p); err != nil {
		logging.Warn().Err(err).Msg("Dropping undecodable progress event")
		return
	}
	b.mu.RLock()
	subs := snapshot(b.progressSubs)
	b.mu.RUnlock()
	for _, fn := range subs {
		safeCall(func() { fn(p) })
	}
}

func (b *Bridge) deliverError(payload []byte) {
	var ev ErrorEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		logging.Warn().Err(err).Msg("Dropping undecodable error event")
		return
	}
	b.mu.RLock()
	subs := snapshot(b.errorSubs)
	b.mu.RUnlock()
	for _, fn := range subs {
		safeCall(func() { fn(ev) })
	}
}

// snapshot returns subscribers in registration order.
func snapshot[F any](subs map[uint64]F) []F {
	ids := make([]uint64, 0, len(subs))
	for id := range subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]F, len(ids))
	for i, id := range ids {
		out[i] = subs[id]
	}
	return out
}

func safeCall(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error().Interface("panic", r).Msg("Bridge subscriber panicked")
		}
	}()
	fn()
}

// SubscribeProgress registers fn for every progress event. fn runs on the
// dispatch goroutine and holds up the worker while it runs, so it must not
// block. The returned function unsubscribes and is safe to call twice.
func (b *Bridge) SubscribeProgress(fn func(engine.Progress)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.progressSubs[id] = fn
	return func() {
		b.mu.Lock()
		delete(b.progressSubs, id)
		b.mu.Unlock()
	}
}

// SubscribeError registers fn for every aggregation failure.
func (b *Bridge) SubscribeError(fn func(ErrorEvent)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.errorSubs[id] = fn
	return func() {
		b.mu.Lock()
		delete(b.errorSubs, id)
		b.mu.Unlock()
	}
}

// Close stops the worker after its current request and shuts the bus down.
// Queued requests fail with ErrClosed.
func (b *Bridge) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.done)
		b.worker.Wait()
		err = b.bus.Close()
		b.cancel()
		b.dispatch.Wait()
		metrics.BridgeQueueDepth.Set(0)
	})
	return err
}
