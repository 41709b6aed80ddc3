// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

/*
Package main is the entry point for the ArNScope server.

ArNScope keeps a local copy of the ArNS name registry, serves paginated and
searchable views of it, and computes registration and holder analytics over
the full record set.

# Startup Order

 1. Configuration: defaults, optional config.yaml, then environment (Koanf v2)
 2. Logging: zerolog configured from the logging section
 3. Record store: BadgerDB, on disk or in memory
 4. Cache: memory or Badger backend
 5. Engine and worker bridge: chunked aggregation on one background worker
 6. Optional seed: the file named by SEED_FILE is loaded into the store
 7. Supervisor tree: cache sweeper, WebSocket hub, event forwarder, HTTP server

# Configuration

Common environment variables:

	STORE_PATH=/data/arnscope       # BadgerDB directory
	STORE_IN_MEMORY=true            # keep records in RAM only
	CACHE_BACKEND=badger            # memory (default) or badger
	CACHE_DEFAULT_TTL=10m           # memoized analytics lifetime
	ENGINE_CHUNK_SIZE=500           # records per progress event
	HTTP_PORT=8087
	SEED_FILE=/data/records.json    # array or {"records": [...]}
	LOG_LEVEL=debug
	LOG_FORMAT=console

# Signal Handling

SIGINT and SIGTERM cancel the root context. The supervisor stops the HTTP
server gracefully, the hub closes every client, and the bridge and store
are closed last.
*/
package main
