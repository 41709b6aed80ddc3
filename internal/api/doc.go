// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

/*
Package api provides the HTTP and WebSocket surface of ArNScope.

Routes are served by a chi router (see SetupChi):

	GET    /api/v1/health             store, cache and hub status
	GET    /api/v1/health/live        liveness probe
	GET    /api/v1/health/ready       readiness probe (record store reachable)
	GET    /api/v1/records            sorted, filtered page of records
	GET    /api/v1/records/search?q=  all records matching a search term
	GET    /api/v1/records/{name}     one record
	POST   /api/v1/records            smart-merge a raw batch
	POST   /api/v1/records/seed       replace the data set with a raw batch
	DELETE /api/v1/records            remove every record
	GET    /api/v1/analytics          analytics bundle (memoized)
	GET    /api/v1/holders?limit=     holder ranking (memoized)
	GET    /api/v1/cache/stats        expiring cache counters
	DELETE /api/v1/cache[?key=]       drop one cache entry or all of them
	GET    /api/v1/ws                 WebSocket event stream
	GET    /metrics                   Prometheus metrics

# Responses

Every JSON endpoint answers with the same envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "..."}}
	{"success": false, "error": {"code": "NOT_FOUND", "message": "..."}, "meta": {...}}

Read paths fail closed: when the record store cannot be read the response is
503 STORE_UNAVAILABLE, never an empty result. Aggregation failures return
500 AGGREGATION_FAILED with the failed operation in error.details.

# Aggregation

All filtering, sorting and aggregation runs on the bridge worker. Progress
and failures reach WebSocket clients through the event forwarder while the
HTTP request waits for the result.

Analytics and holder rankings are memoized in the expiring cache under a key
that includes the store's data version, so any applying write makes older
entries unreachable. Writes also clear the cache and broadcast
records_updated.
*/
package api
