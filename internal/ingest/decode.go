// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/tomtom215/arnscope/internal/models"
)

// ErrInvalidBatch is returned for input that is neither a record array nor
// an object with a records array.
var ErrInvalidBatch = errors.New("invalid record batch")

// Batch is a decoded, normalized set of records.
type Batch struct {
	Records []models.Record
	// Skipped counts entries dropped for having no name.
	Skipped int
}

type envelope struct {
	Records []models.Record `json:"records"`
}

// DecodeBatch reads one JSON batch from r.
func DecodeBatch(r io.Reader) (Batch, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Batch{}, fmt.Errorf("read batch: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Batch{}, fmt.Errorf("%w: empty body", ErrInvalidBatch)
	}

	var raw []models.Record
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &raw); err != nil {
			return Batch{}, fmt.Errorf("%w: %v", ErrInvalidBatch, err)
		}
	case '{':
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return Batch{}, fmt.Errorf("%w: %v", ErrInvalidBatch, err)
		}
		raw = env.Records
	default:
		return Batch{}, fmt.Errorf("%w: expected array or object", ErrInvalidBatch)
	}

	return NewBatch(raw), nil
}

// DecodeFile reads a batch from a JSON file.
func DecodeFile(path string) (Batch, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path comes from configuration
	if err != nil {
		return Batch{}, fmt.Errorf("open seed file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return DecodeBatch(f)
}

// NewBatch normalizes records in place and drops nameless ones.
func NewBatch(records []models.Record) Batch {
	kept := records[:0]
	skipped := 0
	for i := range records {
		records[i].Normalize()
		if records[i].Name == "" {
			skipped++
			continue
		}
		kept = append(kept, records[i])
	}
	return Batch{Records: kept, Skipped: skipped}
}
