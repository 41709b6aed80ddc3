// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/arnscope/internal/config"
	"github.com/tomtom215/arnscope/internal/models"
	"github.com/tomtom215/arnscope/internal/validation"
)

const (
	fallbackPageSize    = 25
	fallbackMaxPageSize = 1000
)

// nameParam validates the {name} path segment.
type nameParam struct {
	Name string `json:"name" validate:"required,max=256,arns_name"`
}

// holdersParams validates GET /holders.
type holdersParams struct {
	Limit int `json:"limit" validate:"min=1"`
}

// parseIntParam returns def when key is absent.
func parseIntParam(values url.Values, key string, def int) (int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}

// parsePageQuery reads search, sort_by, sort_direction, page and per_page.
// Missing values take defaults; per_page is capped at the configured maximum.
func parsePageQuery(values url.Values, cfg config.APIConfig) (models.PageQuery, *validation.RequestValidationError, error) {
	defSize := cfg.DefaultPageSize
	if defSize <= 0 {
		defSize = fallbackPageSize
	}
	maxSize := cfg.MaxPageSize
	if maxSize <= 0 {
		maxSize = fallbackMaxPageSize
	}

	page, err := parseIntParam(values, "page", 1)
	if err != nil {
		return models.PageQuery{}, nil, err
	}
	perPage, err := parseIntParam(values, "per_page", defSize)
	if err != nil {
		return models.PageQuery{}, nil, err
	}

	q := models.PageQuery{
		Search:        values.Get("search"),
		SortBy:        models.SortField(values.Get("sort_by")),
		SortDirection: models.SortDirection(strings.ToLower(values.Get("sort_direction"))),
		Page:          page,
		PerPage:       perPage,
	}
	if q.SortBy == "" {
		q.SortBy = models.SortByRegisteredAt
	}
	if q.SortDirection == "" {
		q.SortDirection = models.SortDesc
	}

	if verr := validation.ValidateStruct(&q); verr != nil {
		return q, verr, nil
	}
	if q.PerPage > maxSize {
		q.PerPage = maxSize
	}
	return q, nil, nil
}
