// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

/*
Package models defines the data structures shared by the store, the aggregation
engine and the HTTP API.

Key Components:

  - Record: one registered ArNS name, with optional timestamps as *int64
  - Amount: purchase price kept as its literal decimal text
  - PageQuery / Page: Sort+Paginate request and result
  - Analytics: scalar statistics plus the chart series of one analytics pass
  - HolderRanking: owners ranked by number of names held

Timestamps:

All timestamps are epoch milliseconds. A nil pointer means the field does not
apply to the record (a permanent registration has no ExpiresAt). Callers must
not substitute zero for nil when persisting, because the merge rules treat a nil
incoming ExpiresAt as "unknown" and zero as a real value.

Usage Example:

	rec := models.Record{
	    Name:          "alice.ar",
	    Owner:         "0xAAA",
	    Type:          "permabuy",
	    StartTimestamp: models.Int64Ptr(time.Now().UnixMilli()),
	    PurchasePrice: models.Amount("1250000"),
	}
	rec.Normalize()

Thread Safety:

Model types carry no synchronization. Use Record.Clone before handing a record
to another goroutine that may mutate it.
*/
package models
