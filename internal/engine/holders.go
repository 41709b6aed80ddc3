// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package engine

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tomtom215/arnscope/internal/models"
)

type holderAcc struct {
	count int
	value decimal.Decimal
}

// ComputeTopHolders groups records by owner and returns the largest holders
// by name count. Records without an owner are grouped under "unknown".
// Ties are ordered by address.
func (e *Engine) ComputeTopHolders(ctx context.Context, records []models.Record, progress ProgressFunc) (models.HolderRanking, error) {
	var out models.HolderRanking
	err := e.run(OpTopHolders, len(records), func() error {
		byOwner := make(map[string]*holderAcc)
		err := e.forEachChunk(ctx, OpTopHolders, len(records), progress, func(start, end int) {
			for i := start; i < end; i++ {
				r := &records[i]
				owner := r.Owner
				if owner == "" {
					owner = models.UnknownOwner
				}
				h := byOwner[owner]
				if h == nil {
					h = &holderAcc{}
					byOwner[owner] = h
				}
				h.count++
				if d, ok := r.PurchasePrice.Decimal(); ok && d.IsPositive() {
					h.value = h.value.Add(d)
				}
			}
		})
		if err != nil {
			return err
		}

		total := len(records)
		holders := make([]models.Holder, 0, len(byOwner))
		for addr, h := range byOwner {
			value, _ := h.value.Float64()
			holders = append(holders, models.Holder{
				Address:    addr,
				Count:      h.count,
				Value:      value,
				Percentage: float64(h.count) / float64(total) * 100,
			})
		}
		slices.SortFunc(holders, func(a, b models.Holder) int {
			if c := cmp.Compare(b.Count, a.Count); c != 0 {
				return c
			}
			return strings.Compare(a.Address, b.Address)
		})

		out = models.HolderRanking{
			Holders:      holders[:min(len(holders), e.topHolders)],
			TotalHolders: len(holders),
			TotalNames:   total,
		}
		return nil
	})
	return out, err
}
