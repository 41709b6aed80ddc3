// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package models

import (
	"strings"
)

// Record is one registered ArNS name.
//
// Timestamps are epoch milliseconds. A nil timestamp means "not applicable",
// never zero: a permanent registration has no ExpiresAt, a record that has not
// been resolved yet may have no RegisteredAt.
//
// The JSON shape accepts the superset of fields supplied by the resolver layer,
// including the legacy contractTxId alias and null values for any optional field.
type Record struct {
	Name           string      `json:"name"`
	Owner          string      `json:"owner,omitempty"`
	Type           string      `json:"type,omitempty"`
	RegisteredAt   *int64      `json:"registeredAt,omitempty"`
	StartTimestamp *int64      `json:"startTimestamp,omitempty"`
	ExpiresAt      *int64      `json:"expiresAt,omitempty"`
	EndTimestamp   *int64      `json:"endTimestamp,omitempty"`
	PurchasePrice  Amount      `json:"purchasePrice,omitempty"`
	ProcessID      string      `json:"processId,omitempty"`
	ContractTxID   string      `json:"contractTxId,omitempty"`
	Tags           []string    `json:"tags,omitempty"`
	UnderNames     []UnderName `json:"underNames,omitempty"`
	PrimaryName    string      `json:"primaryName,omitempty"`
	Category       string      `json:"category,omitempty"`
	Title          string      `json:"title,omitempty"`
	Description    string      `json:"description,omitempty"`
}

// UnderName is a child record registered below a name (e.g. "docs_alice").
type UnderName struct {
	Name          string `json:"name"`
	TransactionID string `json:"transactionId,omitempty"`
	TTLSeconds    int64  `json:"ttlSeconds,omitempty"`
	Owner         string `json:"owner,omitempty"`
}

// Normalize trims the name and fills ProcessID from the legacy contract id.
func (r *Record) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Owner = strings.TrimSpace(r.Owner)
	if r.ProcessID == "" && r.ContractTxID != "" {
		r.ProcessID = r.ContractTxID
	}
}

// RegistrationTime returns registeredAt, falling back to startTimestamp, then 0.
func (r *Record) RegistrationTime() int64 {
	if r.RegisteredAt != nil {
		return *r.RegisteredAt
	}
	if r.StartTimestamp != nil {
		return *r.StartTimestamp
	}
	return 0
}

// ExpiryTime returns expiresAt or 0 when absent.
func (r *Record) ExpiryTime() int64 {
	if r.ExpiresAt != nil {
		return *r.ExpiresAt
	}
	return 0
}

// Clone returns a deep copy so callers can mutate without aliasing stored slices.
func (r *Record) Clone() Record {
	out := *r
	out.RegisteredAt = cloneInt64(r.RegisteredAt)
	out.StartTimestamp = cloneInt64(r.StartTimestamp)
	out.ExpiresAt = cloneInt64(r.ExpiresAt)
	out.EndTimestamp = cloneInt64(r.EndTimestamp)
	if r.Tags != nil {
		out.Tags = make([]string, len(r.Tags))
		copy(out.Tags, r.Tags)
	}
	if r.UnderNames != nil {
		out.UnderNames = make([]UnderName, len(r.UnderNames))
		copy(out.UnderNames, r.UnderNames)
	}
	return out
}

// Int64Ptr is a convenience for building records with optional timestamps.
func Int64Ptr(v int64) *int64 {
	return &v
}

func cloneInt64(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
