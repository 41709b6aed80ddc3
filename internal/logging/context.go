// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type scopeKey struct{}

// scope holds the IDs Ctx adds to every entry logged for a request.
type scope struct {
	requestID     string
	correlationID string
}

func scopeFrom(ctx context.Context) scope {
	s, _ := ctx.Value(scopeKey{}).(scope)
	return s
}

// NewRequestID returns a full UUID.
func NewRequestID() string {
	return uuid.NewString()
}

// NewCorrelationID returns a short ID (the first 8 characters of a UUID)
// tying together the log lines of one ingest or aggregation run.
func NewCorrelationID() string {
	return uuid.NewString()[:8]
}

// ContextWithRequestID stores id in ctx.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	s := scopeFrom(ctx)
	s.requestID = id
	return context.WithValue(ctx, scopeKey{}, s)
}

// RequestIDFromContext returns the request ID or "".
func RequestIDFromContext(ctx context.Context) string {
	return scopeFrom(ctx).requestID
}

// ContextWithCorrelationID stores id in ctx.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	s := scopeFrom(ctx)
	s.correlationID = id
	return context.WithValue(ctx, scopeKey{}, s)
}

// ContextWithNewCorrelationID stores a fresh correlation ID in ctx.
func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	return ContextWithCorrelationID(ctx, NewCorrelationID())
}

// CorrelationIDFromContext returns the correlation ID or "".
func CorrelationIDFromContext(ctx context.Context) string {
	return scopeFrom(ctx).correlationID
}

// Ctx returns the global logger with request_id and correlation_id fields
// taken from ctx when present.
//
//	logging.Ctx(ctx).Info().Msg("Records merged")
func Ctx(ctx context.Context) *zerolog.Logger {
	s := scopeFrom(ctx)
	c := Logger().With()
	if s.requestID != "" {
		c = c.Str("request_id", s.requestID)
	}
	if s.correlationID != "" {
		c = c.Str("correlation_id", s.correlationID)
	}
	l := c.Logger()
	return &l
}
