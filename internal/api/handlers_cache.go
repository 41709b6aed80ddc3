// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package api

import (
	"net/http"

	"github.com/tomtom215/arnscope/internal/logging"
)

// CacheStats returns the expiring cache counters.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	stats := h.cache.Stats()
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"backend":  h.cache.Backend(),
		"stats":    stats,
		"hit_rate": stats.HitRate(),
	})
}

// ClearCache removes the entry named by ?key, or every entry when key is absent.
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	key := r.URL.Query().Get("key")
	if key != "" {
		if err := h.cache.Delete(r.Context(), key); err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Cache delete failed")
			rw.Error(http.StatusInternalServerError, ErrCodeInternalError, "Cache delete failed")
			return
		}
		rw.Success(map[string]interface{}{"cleared": key})
		return
	}

	if err := h.cache.Clear(r.Context()); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Cache clear failed")
		rw.Error(http.StatusInternalServerError, ErrCodeInternalError, "Cache clear failed")
		return
	}
	rw.Success(map[string]interface{}{"cleared": "all"})
}
