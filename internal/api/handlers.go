// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/arnscope/internal/bridge"
	"github.com/tomtom215/arnscope/internal/cache"
	"github.com/tomtom215/arnscope/internal/config"
	"github.com/tomtom215/arnscope/internal/engine"
	"github.com/tomtom215/arnscope/internal/ingest"
	"github.com/tomtom215/arnscope/internal/logging"
	"github.com/tomtom215/arnscope/internal/models"
	"github.com/tomtom215/arnscope/internal/store"
	ws "github.com/tomtom215/arnscope/internal/websocket"
)

// maxBatchBytes bounds POST bodies carrying raw record batches.
const maxBatchBytes = 64 << 20

// RecordStore is the record store as seen by the handlers.
type RecordStore interface {
	ingest.RecordWriter
	Ping(ctx context.Context) error
	Version() uint64
	GetAll(ctx context.Context) ([]models.Record, error)
	GetOne(ctx context.Context, name string) (models.Record, error)
}

// Aggregator runs engine operations off the request goroutine.
// *bridge.Bridge implements it.
type Aggregator interface {
	Filter(ctx context.Context, records []models.Record, term string) ([]models.Record, error)
	SortAndPaginate(ctx context.Context, records []models.Record, q models.PageQuery) (models.Page, error)
	ComputeAnalytics(ctx context.Context, records []models.Record) (models.Analytics, error)
	ComputeTopHolders(ctx context.Context, records []models.Record) (models.HolderRanking, error)
}

// Handler holds the dependencies of every API endpoint.
//
// Handler methods are split across files:
//   - handlers_health.go: liveness, readiness and status
//   - handlers_records.go: record listing, lookup and ingestion
//   - handlers_analytics.go: memoized analytics and holder rankings
//   - handlers_cache.go: cache inspection and invalidation
//   - handlers_websocket.go: WebSocket upgrade
type Handler struct {
	store     RecordStore
	agg       Aggregator
	cache     cache.Cacher
	loader    *ingest.Loader
	wsHub     *ws.Hub
	config    *config.Config
	epoch     string
	startTime time.Time
}

// NewHandler creates the API handler. hub may be nil, in which case no
// records_updated events are sent and /ws answers 503.
func NewHandler(st RecordStore, agg Aggregator, c cache.Cacher, hub *ws.Hub, cfg *config.Config) *Handler {
	return &Handler{
		store:  st,
		agg:    agg,
		cache:  c,
		loader: ingest.NewLoader(st),
		wsHub:  hub,
		config: cfg,
		// epoch keeps memoized entries from a previous process (durable
		// cache backend) apart from this one's, whose versions restart at 0.
		epoch:     uuid.NewString(),
		startTime: time.Now(),
	}
}

// InvalidateCache drops every memoized aggregate.
func (h *Handler) InvalidateCache(ctx context.Context) {
	if err := h.cache.Clear(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to clear cache")
		return
	}
	logging.Ctx(ctx).Debug().Msg("Cache cleared")
}

// OnRecordsChanged runs after a write that modified the store: the cache is
// cleared and WebSocket clients are told to refresh.
func (h *Handler) OnRecordsChanged(ctx context.Context, source string, stats ingest.Stats) {
	h.InvalidateCache(ctx)
	if h.wsHub == nil {
		return
	}
	h.wsHub.BroadcastRecordsUpdated(ws.RecordsUpdatedData{
		Timestamp: time.Now().UnixMilli(),
		Source:    source,
		Inserted:  stats.Inserted,
		Updated:   stats.Updated,
		Total:     stats.Total,
		Version:   h.store.Version(),
	})
}

// respondAggregationError maps a bridge or engine failure to a response.
func respondAggregationError(rw *ResponseWriter, r *http.Request, err error) {
	var opErr *engine.OperationError
	switch {
	case errors.As(err, &opErr):
		logging.Ctx(r.Context()).Error().
			Str("operation", opErr.Operation).
			Str("error", sanitizeLogValue(opErr.Message)).
			Msg("Aggregation failed")
		rw.ErrorWithDetails(http.StatusInternalServerError, ErrCodeAggregationFailed, opErr.Error(),
			map[string]string{"operation": opErr.Operation})
	case errors.Is(err, bridge.ErrClosed):
		rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Aggregation worker is shutting down")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Aggregation abandoned")
		rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Request canceled")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Aggregation failed")
		rw.Error(http.StatusInternalServerError, ErrCodeInternalError, "Aggregation failed")
	}
}

// isNotFound reports a lookup miss as opposed to a store failure.
func isNotFound(err error) bool {
	return errors.Is(err, store.ErrRecordNotFound)
}

func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin allows same-host connections, non-browser clients
// and configured CORS origins.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if origin == "http://"+r.Host || origin == "https://"+r.Host {
		return true
	}
	if h.config != nil {
		for _, allowed := range h.config.API.CORSOrigins {
			if allowed == "*" || allowed == origin {
				return true
			}
		}
	}
	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}
