// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package api

import (
	"context"
	"net/http"

	"github.com/tomtom215/arnscope/internal/cache"
	"github.com/tomtom215/arnscope/internal/logging"
	"github.com/tomtom215/arnscope/internal/models"
	"github.com/tomtom215/arnscope/internal/validation"
)

const (
	cachePrefixAnalytics = "analytics"
	cachePrefixHolders   = "holders"
)

// memoKey identifies one aggregate of one data version.
type memoKey struct {
	Epoch   string `json:"epoch"`
	Version uint64 `json:"version"`
}

// Analytics returns the analytics bundle for the current data set.
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var out models.Analytics
	version, cached, ok := memoize(h, rw, r, cachePrefixAnalytics, &out,
		func(ctx context.Context, records []models.Record) (models.Analytics, error) {
			return h.agg.ComputeAnalytics(ctx, records)
		})
	if !ok {
		return
	}
	rw.SuccessWithMeta(out, &APIMeta{Cached: cached, Version: version})
}

// Holders returns the holder ranking, optionally cut to ?limit entries.
func (h *Handler) Holders(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit, err := parseIntParam(r.URL.Query(), "limit", 0)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if r.URL.Query().Has("limit") {
		if verr := validation.ValidateStruct(&holdersParams{Limit: limit}); verr != nil {
			rw.ValidationFailed(verr)
			return
		}
	}

	var out models.HolderRanking
	version, cached, ok := memoize(h, rw, r, cachePrefixHolders, &out,
		func(ctx context.Context, records []models.Record) (models.HolderRanking, error) {
			return h.agg.ComputeTopHolders(ctx, records)
		})
	if !ok {
		return
	}
	if limit > 0 && limit < len(out.Holders) {
		out.Holders = out.Holders[:limit]
	}
	rw.SuccessWithMeta(out, &APIMeta{Cached: cached, Version: version})
}

// memoize serves dst from the cache or computes it over every stored record
// and caches it. On failure it has already written the response and ok is
// false.
func memoize[T any](
	h *Handler,
	rw *ResponseWriter,
	r *http.Request,
	prefix string,
	dst *T,
	compute func(context.Context, []models.Record) (T, error),
) (version uint64, cached, ok bool) {
	ctx := r.Context()
	log := logging.Ctx(ctx)

	// Read the version before the records: a write landing in between then
	// yields fresh data under an already-stale key, never the reverse.
	version = h.store.Version()
	key := cache.GenerateKey(prefix, memoKey{Epoch: h.epoch, Version: version})

	hit, err := h.cache.Get(ctx, key, dst)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
	}
	if hit {
		return version, true, true
	}

	records, err := h.store.GetAll(ctx)
	if err != nil {
		rw.StoreUnavailable(err)
		return version, false, false
	}

	v, err := compute(ctx, records)
	if err != nil {
		respondAggregationError(rw, r, err)
		return version, false, false
	}
	*dst = v

	if err := h.cache.Set(ctx, key, v, h.config.Cache.DefaultTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
	return version, false, true
}
