// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package engine

import (
	"context"
	"strings"

	"github.com/tomtom215/arnscope/internal/models"
)

// Filter returns the records whose name, owner or any tag contains term,
// case-insensitively. An empty term returns records unchanged and reports
// one final progress event.
func (e *Engine) Filter(ctx context.Context, records []models.Record, term string, progress ProgressFunc) ([]models.Record, error) {
	var out []models.Record
	err := e.run(OpFilter, len(records), func() error {
		if term == "" {
			if progress != nil {
				progress(Progress{Operation: OpFilter, Current: len(records), Total: len(records)})
			}
			out = records
			return nil
		}
		var err error
		out, err = e.filter(ctx, OpFilter, records, term, progress)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) filter(ctx context.Context, op string, records []models.Record, term string, progress ProgressFunc) ([]models.Record, error) {
	if term == "" {
		return records, nil
	}
	needle := strings.ToLower(term)

	out := make([]models.Record, 0, len(records)/4)
	err := e.forEachChunk(ctx, op, len(records), progress, func(start, end int) {
		for i := start; i < end; i++ {
			if matches(&records[i], needle) {
				out = append(out, records[i])
			}
		}
	})
	return out, err
}

// matches expects needle to be lowercase already.
func matches(r *models.Record, needle string) bool {
	if strings.Contains(strings.ToLower(r.Name), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(r.Owner), needle) {
		return true
	}
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}
