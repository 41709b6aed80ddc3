// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

/*
Package middleware provides HTTP middleware for the ArNScope API.

Key Components:

  - RequestID: X-Request-ID propagation plus request/correlation IDs in the
    logging context
  - PrometheusMetrics: request count, latency and in-flight gauge, labelled
    by chi route pattern
  - AccessLog: one structured zerolog line per request

All middleware has the chi signature func(http.Handler) http.Handler:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)

Route labels use the chi route pattern ("/api/v1/records/{name}"), never the
raw path, so metric cardinality stays bounded. Requests that match no route
are labelled "unmatched".
*/
package middleware
