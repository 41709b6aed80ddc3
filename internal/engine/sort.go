// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package engine

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tomtom215/arnscope/internal/models"
)

// sortItem carries a precomputed key so the comparison sort itself does no
// parsing or collation.
type sortItem struct {
	idx int
	num float64
	key []byte
}

// SortAndPaginate filters by q.Search, sorts stably by q.SortBy, reverses
// for descending order and returns the requested 1-based page. Total is the
// size of the filtered set.
//
// Numeric keys treat a missing value as 0. Name and owner compare with the
// root-locale collation.
//
// With a search term the operation makes two passes, filtering and key
// extraction, reported as one sequence. The filter pass counts against
// an estimate above twice the input size until the filtered size is known.
func (e *Engine) SortAndPaginate(ctx context.Context, records []models.Record, q models.PageQuery, progress ProgressFunc) (models.Page, error) {
	var page models.Page
	err := e.run(OpSortAndPaginate, len(records), func() error {
		filtered, keyProgress := records, progress
		if q.Search != "" {
			var err error
			filtered, err = e.filter(ctx, OpSortAndPaginate, records, q.Search, provisional(progress, 2*len(records)+1))
			if err != nil {
				return err
			}
			keyProgress = rebase(progress, len(records))
		}

		items, err := e.sortKeys(ctx, filtered, q.SortBy, keyProgress)
		if err != nil {
			return err
		}

		if isNumericSort(q.SortBy) {
			slices.SortStableFunc(items, func(a, b sortItem) int { return cmp.Compare(a.num, b.num) })
		} else {
			slices.SortStableFunc(items, func(a, b sortItem) int { return bytes.Compare(a.key, b.key) })
		}
		if q.SortDirection == models.SortDesc {
			slices.Reverse(items)
		}

		page = paginate(filtered, items, q.Page, q.PerPage)
		return nil
	})
	return page, err
}

func isNumericSort(f models.SortField) bool {
	switch f {
	case models.SortByRegisteredAt, models.SortByExpiresAt, models.SortByPrice:
		return true
	default:
		return false
	}
}

func (e *Engine) sortKeys(ctx context.Context, records []models.Record, field models.SortField, progress ProgressFunc) ([]sortItem, error) {
	var keyOf func(r *models.Record, it *sortItem)

	switch field {
	case models.SortByRegisteredAt:
		keyOf = func(r *models.Record, it *sortItem) { it.num = float64(r.RegistrationTime()) }
	case models.SortByExpiresAt:
		keyOf = func(r *models.Record, it *sortItem) { it.num = float64(r.ExpiryTime()) }
	case models.SortByPrice:
		keyOf = func(r *models.Record, it *sortItem) { it.num = r.PurchasePrice.Float64() }
	case models.SortByName, models.SortByOwner:
		// Collator is not safe for concurrent use; one per call.
		col := collate.New(language.Und)
		var buf collate.Buffer
		keyOf = func(r *models.Record, it *sortItem) {
			s := r.Name
			if field == models.SortByOwner {
				s = r.Owner
			}
			it.key = append([]byte(nil), col.KeyFromString(&buf, s)...)
			buf.Reset()
		}
	default:
		return nil, fmt.Errorf("unsupported sort field %q", field)
	}

	items := make([]sortItem, len(records))
	err := e.forEachChunk(ctx, OpSortAndPaginate, len(records), progress, func(start, end int) {
		for i := start; i < end; i++ {
			items[i].idx = i
			keyOf(&records[i], &items[i])
		}
	})
	return items, err
}

func paginate(records []models.Record, order []sortItem, page, perPage int) models.Page {
	out := models.Page{Records: []models.Record{}, Total: len(order)}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		return out
	}
	// Compare page counts, not offsets: (page-1)*perPage overflows for
	// huge page numbers.
	if page-1 >= models.PageCount(len(order), perPage) {
		return out
	}
	start := (page - 1) * perPage
	end := min(start+perPage, len(order))

	out.Records = make([]models.Record, 0, end-start)
	for _, it := range order[start:end] {
		out.Records = append(out.Records, records[it.idx])
	}
	return out
}
