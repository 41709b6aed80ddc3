// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package models

// SortField selects the key used by Sort+Paginate.
type SortField string

const (
	SortByRegisteredAt SortField = "registeredAt"
	SortByExpiresAt    SortField = "expiresAt"
	SortByPrice        SortField = "price"
	SortByName         SortField = "name"
	SortByOwner        SortField = "owner"
)

// SortDirection is asc or desc.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// PageQuery is a Sort+Paginate request. Page is 1-based.
type PageQuery struct {
	Search        string        `json:"search" validate:"max=256"`
	SortBy        SortField     `json:"sort_by" validate:"required,oneof=registeredAt expiresAt price name owner"`
	SortDirection SortDirection `json:"sort_direction" validate:"required,oneof=asc desc"`
	Page          int           `json:"page" validate:"min=1"`
	PerPage       int           `json:"per_page" validate:"min=1,max=1000"`
}

// Page is one slice of a sorted, filtered record set.
// Total is the size of the filtered set, not of Records.
type Page struct {
	Records []Record `json:"records"`
	Total   int      `json:"total"`
}

// PageCount returns the number of pages needed to show total items.
func PageCount(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	n := total / perPage
	if total%perPage != 0 {
		n++
	}
	return n
}
