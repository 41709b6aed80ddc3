// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package models

// UnknownOwner is the holder bucket for records without a resolved owner.
const UnknownOwner = "unknown"

// Holder is one owner address in the holder ranking.
type Holder struct {
	Address    string  `json:"address"`
	Count      int     `json:"count"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

// HolderRanking is the result of a top-holders aggregation.
// Holders is truncated to the configured limit; TotalHolders and TotalNames
// describe the whole input.
type HolderRanking struct {
	Holders      []Holder `json:"holders"`
	TotalHolders int      `json:"total_holders"`
	TotalNames   int      `json:"total_names"`
}
