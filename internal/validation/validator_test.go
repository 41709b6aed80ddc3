// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/arnscope/internal/models"
)

func validQuery() models.PageQuery {
	return models.PageQuery{
		SortBy:        models.SortByRegisteredAt,
		SortDirection: models.SortDesc,
		Page:          1,
		PerPage:       25,
	}
}

func TestValidateStruct_PageQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(q *models.PageQuery)
		field   string
		tag     string
		message string
	}{
		{"valid", func(*models.PageQuery) {}, "", "", ""},
		{"bad sort field", func(q *models.PageQuery) { q.SortBy = "color" }, "sort_by", "oneof",
			"sort_by must be one of: registeredAt expiresAt price name owner"},
		{"bad direction", func(q *models.PageQuery) { q.SortDirection = "up" }, "sort_direction", "oneof", ""},
		{"page zero", func(q *models.PageQuery) { q.Page = 0 }, "page", "min", "page must be at least 1"},
		{"per page too large", func(q *models.PageQuery) { q.PerPage = 5000 }, "per_page", "max", "per_page must be at most 1000"},
		{"search too long", func(q *models.PageQuery) { q.Search = strings.Repeat("a", 300) }, "search", "max",
			"search must be at most 256 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			q := validQuery()
			tt.mutate(&q)

			verr := ValidateStruct(&q)
			if tt.field == "" {
				assert.Nil(t, verr)
				return
			}
			require.NotNil(t, verr)
			require.Len(t, verr.Errors(), 1)
			fe := verr.Errors()[0]
			assert.Equal(t, tt.field, fe.Field())
			assert.Equal(t, tt.tag, fe.Tag())
			if tt.message != "" {
				assert.Equal(t, tt.message, fe.Error())
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	t.Parallel()

	q := validQuery()
	q.Page = 0
	single := ValidateStruct(&q).ToAPIError()
	assert.Equal(t, ErrorCode, single.Code)
	assert.Equal(t, "page", single.Details["field"])

	q.PerPage = 0
	multi := ValidateStruct(&q)
	require.Len(t, multi.Errors(), 2)
	apiErr := multi.ToAPIError()
	assert.Equal(t, "page must be at least 1; per_page must be at least 1", apiErr.Message)
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	require.True(t, ok)
	assert.Len(t, fields, 2)
	assert.Equal(t, apiErr.Message, multi.Error())

	assert.Equal(t, "Validation failed", (&RequestValidationError{}).ToAPIError().Message)
}

func TestArNSName(t *testing.T) {
	t.Parallel()

	type nameParam struct {
		Name string `json:"name" validate:"required,max=256,arns_name"`
	}

	for name, ok := range map[string]bool{
		"ardrive":        true,
		"sub_ardrive.ar": true,
		"":               false,
		"has space":      false,
		"a/b":            false,
		"tab\tname":      false,
	} {
		verr := ValidateStruct(&nameParam{Name: name})
		assert.Equal(t, ok, verr == nil, "name %q", name)
	}
}

func TestGetValidatorIsShared(t *testing.T) {
	t.Parallel()
	assert.Same(t, GetValidator(), GetValidator())
}
