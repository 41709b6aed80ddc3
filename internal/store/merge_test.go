// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tomtom215/arnscope/internal/models"
)

func TestMergeRecord(t *testing.T) {
	t.Parallel()

	base := models.Record{
		Name:        "alice",
		Owner:       "A",
		ExpiresAt:   models.Int64Ptr(100),
		PrimaryName: "alice",
		UnderNames:  []models.UnderName{{Name: "www"}},
		Category:    "personal",
	}

	tests := []struct {
		name        string
		incoming    models.Record
		wantChanged bool
		check       func(t *testing.T, got models.Record)
	}{
		{
			name:     "empty incoming changes nothing",
			incoming: models.Record{Name: "alice"},
		},
		{
			name:        "new owner copied",
			incoming:    models.Record{Name: "alice", Owner: "B"},
			wantChanged: true,
			check:       func(t *testing.T, got models.Record) { assert.Equal(t, "B", got.Owner) },
		},
		{
			name:     "same owner is no change",
			incoming: models.Record{Name: "alice", Owner: "A"},
		},
		{
			name:        "expiresAt copied when different",
			incoming:    models.Record{Name: "alice", ExpiresAt: models.Int64Ptr(300)},
			wantChanged: true,
			check:       func(t *testing.T, got models.Record) { assert.Equal(t, int64(300), *got.ExpiresAt) },
		},
		{
			name:     "nil expiresAt never clears",
			incoming: models.Record{Name: "alice", ExpiresAt: nil},
			check:    func(t *testing.T, got models.Record) { assert.Equal(t, int64(100), *got.ExpiresAt) },
		},
		{
			name:        "primaryName copied",
			incoming:    models.Record{Name: "alice", PrimaryName: "alice-main"},
			wantChanged: true,
			check:       func(t *testing.T, got models.Record) { assert.Equal(t, "alice-main", got.PrimaryName) },
		},
		{
			name:        "underNames replaced when serialized form differs",
			incoming:    models.Record{Name: "alice", UnderNames: []models.UnderName{{Name: "www"}, {Name: "docs"}}},
			wantChanged: true,
			check:       func(t *testing.T, got models.Record) { assert.Len(t, got.UnderNames, 2) },
		},
		{
			name:     "equal underNames are no change",
			incoming: models.Record{Name: "alice", UnderNames: []models.UnderName{{Name: "www"}}},
		},
		{
			name:        "explicit empty underNames replaces",
			incoming:    models.Record{Name: "alice", UnderNames: []models.UnderName{}},
			wantChanged: true,
			check:       func(t *testing.T, got models.Record) { assert.Empty(t, got.UnderNames) },
		},
		{
			name:     "untracked fields ignored",
			incoming: models.Record{Name: "alice", Category: "business", Type: "lease"},
			check: func(t *testing.T, got models.Record) {
				assert.Equal(t, "personal", got.Category)
				assert.Empty(t, got.Type)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, changed := mergeRecord(base, tt.incoming)
			assert.Equal(t, tt.wantChanged, changed)
			if tt.check != nil {
				tt.check(t, got)
			}

			again, changedAgain := mergeRecord(got, tt.incoming)
			assert.False(t, changedAgain, "merge must be idempotent")
			assert.Equal(t, got, again)
		})
	}
}

func TestMergeRecord_DoesNotAliasExisting(t *testing.T) {
	t.Parallel()

	existing := models.Record{Name: "a", ExpiresAt: models.Int64Ptr(1)}
	merged, _ := mergeRecord(existing, models.Record{Name: "a", ExpiresAt: models.Int64Ptr(2)})
	*merged.ExpiresAt = 99
	assert.Equal(t, int64(1), *existing.ExpiresAt)
}
