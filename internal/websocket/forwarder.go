// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package websocket

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/tomtom215/arnscope/internal/bridge"
	"github.com/tomtom215/arnscope/internal/engine"
	"github.com/tomtom215/arnscope/internal/logging"
	"github.com/tomtom215/arnscope/internal/metrics"
)

// DefaultProgressRate is the default ceiling on intermediate progress frames per second.
const DefaultProgressRate rate.Limit = 10

// EventSource is the subscription side of *bridge.Bridge.
type EventSource interface {
	SubscribeProgress(fn func(engine.Progress)) (unsubscribe func())
	SubscribeError(fn func(bridge.ErrorEvent)) (unsubscribe func())
}

// Broadcaster is the send side of *Hub.
type Broadcaster interface {
	Broadcast(messageType string, data interface{}) bool
}

// EventForwarder relays bridge events to WebSocket clients. Intermediate
// progress beyond the rate limit is dropped; the final event of a pass and
// every error are always sent.
type EventForwarder struct {
	source  EventSource
	hub     Broadcaster
	limiter *rate.Limiter
}

// NewEventForwarder creates a forwarder. A non-positive limit uses DefaultProgressRate.
func NewEventForwarder(source EventSource, hub Broadcaster, limit rate.Limit) *EventForwarder {
	if limit <= 0 {
		limit = DefaultProgressRate
	}
	return &EventForwarder{
		source:  source,
		hub:     hub,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// RunWithContext subscribes until ctx is canceled.
func (f *EventForwarder) RunWithContext(ctx context.Context) error {
	unsubProgress := f.source.SubscribeProgress(f.onProgress)
	defer unsubProgress()
	unsubError := f.source.SubscribeError(f.onError)
	defer unsubError()

	logging.Debug().Msg("Engine event forwarder subscribed")
	<-ctx.Done()
	return ctx.Err()
}

func (f *EventForwarder) onProgress(p engine.Progress) {
	if !p.Done() && !f.limiter.Allow() {
		metrics.WSMessagesDropped.WithLabelValues("throttled").Inc()
		return
	}
	f.hub.Broadcast(MessageTypeEngineProgress, p)
}

func (f *EventForwarder) onError(ev bridge.ErrorEvent) {
	f.hub.Broadcast(MessageTypeEngineError, ev)
}
