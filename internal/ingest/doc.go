// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

// Package ingest loads raw ArNS record batches into the record store.
//
// Batches come from the resolver layer (or a seed file) as JSON. Two shapes
// are accepted:
//
//	[{"name": "alice", ...}, ...]
//	{"records": [{"name": "alice", ...}, ...]}
//
// Entries without a name are dropped and counted as skipped. Every kept entry
// is normalized (trimmed name, processId filled from contractTxId).
//
// # Load Paths
//
// Loader.Load picks the write path from the store state:
//
//   - Empty store: cold start. The store is cleared and the batch written
//     with PutAll.
//   - Populated store: PutAllSmart, so a partial batch never regresses a
//     resolved owner, expiry, primary name or under-name list.
//
// Loader.Merge always merges. Loader.Reseed always takes the cold path and
// replaces the whole data set.
//
// # Usage
//
//	batch, err := ingest.DecodeBatch(r.Body)
//	if err != nil {
//	    return err
//	}
//	stats, err := ingest.NewLoader(st).Load(ctx, batch)
package ingest
