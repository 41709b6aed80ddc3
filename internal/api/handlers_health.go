// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/arnscope/internal/cache"
)

// HealthStatus is the body of GET /api/v1/health.
type HealthStatus struct {
	Status         string      `json:"status"`
	StoreConnected bool        `json:"store_connected"`
	Records        int         `json:"records"`
	Version        uint64      `json:"version"`
	CacheBackend   string      `json:"cache_backend"`
	Cache          cache.Stats `json:"cache"`
	WSClients      int         `json:"ws_clients"`
	Uptime         float64     `json:"uptime_seconds"`
}

// Health reports store, cache and hub status. A store that cannot be read
// makes the status "degraded" but the endpoint still answers 200.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:       "healthy",
		Version:      h.store.Version(),
		CacheBackend: h.cache.Backend(),
		Cache:        h.cache.Stats(),
		Uptime:       time.Since(h.startTime).Seconds(),
	}

	if n, err := h.store.Count(r.Context()); err == nil {
		status.StoreConnected = true
		status.Records = n
	} else {
		status.Status = "degraded"
	}
	if h.wsHub != nil {
		status.WSClients = h.wsHub.ClientCount()
	}

	NewResponseWriter(w, r).Success(status)
}

// HealthLive answers 200 while the process is running.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady answers 200 only when the record store can serve reads.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if err := h.store.Ping(r.Context()); err != nil {
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Service not ready",
			map[string]interface{}{"ready": false, "store": "unreachable"})
		return
	}
	rw.Success(map[string]interface{}{"ready": true, "store": "ok"})
}
