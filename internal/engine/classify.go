// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package engine

import (
	"strings"

	"github.com/tomtom215/arnscope/internal/models"
)

// leaseHorizonYears bounds how far out an expiry may be and still count as a lease.
const leaseHorizonYears = 10

// typeSignal classifies from the free-form type string alone.
// ok is false when the type carries no recognizable signal.
func typeSignal(t string) (permanent, ok bool) {
	t = strings.ToLower(t)
	switch {
	case strings.Contains(t, "perma"):
		return true, true
	case strings.Contains(t, "lease"), strings.Contains(t, "temporary"):
		return false, true
	default:
		return false, false
	}
}

// isPermanent applies the stats classification chain: the type string first,
// then a positive end timestamp, a missing expiry, and finally the horizon.
func isPermanent(r *models.Record, horizon int64) bool {
	if permanent, ok := typeSignal(r.Type); ok {
		return permanent
	}
	if positive(r.EndTimestamp) {
		return false
	}
	if !positive(r.ExpiresAt) {
		return true
	}
	return *r.ExpiresAt > horizon
}

// isPermanentForBreakdown is the monthly breakdown variant. A record with
// neither end timestamp nor expiry is permanent regardless of its type.
func isPermanentForBreakdown(r *models.Record, horizon int64) bool {
	if !positive(r.EndTimestamp) && !positive(r.ExpiresAt) {
		return true
	}
	return isPermanent(r, horizon)
}

func positive(p *int64) bool {
	return p != nil && *p > 0
}
