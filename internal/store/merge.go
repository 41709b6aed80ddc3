// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package store

import (
	"bytes"

	"github.com/goccy/go-json"

	"github.com/tomtom215/arnscope/internal/models"
)

// mergeRecord folds incoming into existing and reports whether anything
// changed. Only four fields are tracked; every other field keeps its stored
// value even when incoming carries a different one.
//
//   - owner: copied when incoming is non-empty and differs
//   - expiresAt: copied when incoming is non-nil and differs
//   - primaryName: copied when incoming is non-empty and differs
//   - underNames: copied when incoming is present (non-nil) and its JSON
//     form differs; an explicit empty list replaces a stored one
//
// Fields only move toward a more complete value, so applying the same
// incoming record twice is the same as applying it once.
func mergeRecord(existing, incoming models.Record) (models.Record, bool) {
	merged := existing.Clone()
	changed := false

	if incoming.Owner != "" && incoming.Owner != existing.Owner {
		merged.Owner = incoming.Owner
		changed = true
	}

	if incoming.ExpiresAt != nil && (existing.ExpiresAt == nil || *incoming.ExpiresAt != *existing.ExpiresAt) {
		v := *incoming.ExpiresAt
		merged.ExpiresAt = &v
		changed = true
	}

	if incoming.PrimaryName != "" && incoming.PrimaryName != existing.PrimaryName {
		merged.PrimaryName = incoming.PrimaryName
		changed = true
	}

	if incoming.UnderNames != nil && !sameJSON(incoming.UnderNames, existing.UnderNames) {
		merged.UnderNames = append([]models.UnderName{}, incoming.UnderNames...)
		changed = true
	}

	return merged, changed
}

// sameJSON compares two under-name lists by serialized form. Nil and empty
// lists are equal because stored records omit empty lists.
func sameJSON(a, b []models.UnderName) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ja, jb)
}
