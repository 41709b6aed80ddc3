// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/arnscope/internal/ingest"
	"github.com/tomtom215/arnscope/internal/logging"
	"github.com/tomtom215/arnscope/internal/models"
	"github.com/tomtom215/arnscope/internal/validation"
)

// Ingestion sources reported in records_updated events.
const (
	sourceMerge = "merge"
	sourceSeed  = "seed"
	sourceClear = "clear"
)

// SearchResult is the body of GET /records/search.
type SearchResult struct {
	Records []models.Record `json:"records"`
	Total   int             `json:"total"`
}

// Records returns one sorted page of the (optionally filtered) record set.
func (h *Handler) Records(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	q, verr, err := parsePageQuery(r.URL.Query(), h.config.API)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr != nil {
		rw.ValidationFailed(verr)
		return
	}

	records, err := h.store.GetAll(r.Context())
	if err != nil {
		rw.StoreUnavailable(err)
		return
	}

	page, err := h.agg.SortAndPaginate(r.Context(), records, q)
	if err != nil {
		respondAggregationError(rw, r, err)
		return
	}

	totalPages := models.PageCount(page.Total, q.PerPage)
	rw.SuccessWithMeta(page.Records, &APIMeta{
		Version: h.store.Version(),
		Pagination: &PaginationMeta{
			Total:      page.Total,
			Count:      len(page.Records),
			Page:       q.Page,
			PerPage:    q.PerPage,
			TotalPages: totalPages,
			HasMore:    q.Page < totalPages,
		},
	})
}

// SearchRecords returns every record matching q. An empty q returns all.
func (h *Handler) SearchRecords(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	term := r.URL.Query().Get("q")
	if len(term) > 256 {
		rw.BadRequest("q must be at most 256 characters")
		return
	}

	records, err := h.store.GetAll(r.Context())
	if err != nil {
		rw.StoreUnavailable(err)
		return
	}

	matched, err := h.agg.Filter(r.Context(), records, term)
	if err != nil {
		respondAggregationError(rw, r, err)
		return
	}
	if matched == nil {
		matched = []models.Record{}
	}
	rw.Success(SearchResult{Records: matched, Total: len(matched)})
}

// Record returns the record with exactly the given name.
func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		rw.BadRequest("name is not a valid path segment")
		return
	}
	if verr := validation.ValidateStruct(&nameParam{Name: name}); verr != nil {
		rw.ValidationFailed(verr)
		return
	}

	rec, err := h.store.GetOne(r.Context(), name)
	if err != nil {
		if isNotFound(err) {
			rw.NotFound("Record not found: " + name)
			return
		}
		rw.StoreUnavailable(err)
		return
	}
	rw.Success(rec)
}

// IngestRecords smart-merges a raw batch into the store.
func (h *Handler) IngestRecords(w http.ResponseWriter, r *http.Request) {
	h.ingest(w, r, sourceMerge, h.loader.Merge)
}

// SeedRecords replaces the whole data set with a raw batch.
func (h *Handler) SeedRecords(w http.ResponseWriter, r *http.Request) {
	h.ingest(w, r, sourceSeed, h.loader.Reseed)
}

type loadFunc func(ctx context.Context, batch ingest.Batch) (ingest.Stats, error)

func (h *Handler) ingest(w http.ResponseWriter, r *http.Request, source string, load loadFunc) {
	rw := NewResponseWriter(w, r)

	batch, err := ingest.DecodeBatch(http.MaxBytesReader(w, r.Body, maxBatchBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			rw.Error(http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "Record batch too large")
			return
		}
		rw.Error(http.StatusBadRequest, ErrCodeInvalidBatch, err.Error())
		return
	}

	stats, err := load(r.Context(), batch)
	if err != nil {
		rw.StoreUnavailable(err)
		return
	}

	if stats.Changed() {
		h.OnRecordsChanged(r.Context(), source, stats)
	}
	logging.Ctx(r.Context()).Info().
		Str("source", source).
		Int("inserted", stats.Inserted).
		Int("updated", stats.Updated).
		Int("skipped", stats.Skipped).
		Msg("Record batch ingested")

	rw.SuccessWithMeta(stats, &APIMeta{Version: h.store.Version()})
}

// ClearRecords removes every record.
func (h *Handler) ClearRecords(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if err := h.store.Clear(r.Context()); err != nil {
		rw.StoreUnavailable(err)
		return
	}
	h.OnRecordsChanged(r.Context(), sourceClear, ingest.Stats{Mode: ingest.ModeCold})
	rw.SuccessWithMeta(map[string]interface{}{"cleared": true}, &APIMeta{Version: h.store.Version()})
}
