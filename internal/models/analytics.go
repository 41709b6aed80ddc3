// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package models

// RegistrationStats holds the scalar statistics of an analytics pass.
type RegistrationStats struct {
	TotalRegistrations int `json:"total_registrations"`
	Last24Hours        int `json:"last_24h"`
	Last7Days          int `json:"last_7d"`
	Last30Days         int `json:"last_30d"`
	Last365Days        int `json:"last_365d"`
	ActivePermabuys    int `json:"active_permabuys"`
	ActiveLeases       int `json:"active_leases"`
	UniqueOwners       int `json:"unique_owners"`
	// ApproxUniqueOwners is a HyperLogLog estimate of UniqueOwners, kept so
	// clients can compare against incremental sketches without a full pass.
	ApproxUniqueOwners uint64  `json:"approx_unique_owners"`
	AveragePrice       float64 `json:"average_price"`
	// GrowthRate is month-over-month registration growth in percent, clamped at 0.
	GrowthRate float64 `json:"growth_rate"`
}

// DateCount is one point of a per-day series. Date is YYYY-MM-DD (UTC).
type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// MonthValue is one point of a per-month numeric series. Month is YYYY-MM (UTC).
type MonthValue struct {
	Month string  `json:"month"`
	Value float64 `json:"value"`
}

// MonthCount is one point of a per-month count series.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// MonthTypeCount splits one month's registrations by registration mode.
type MonthTypeCount struct {
	Month     string `json:"month"`
	Permabuys int    `json:"permabuys"`
	Leases    int    `json:"leases"`
}

// Bucket is one histogram bin.
type Bucket struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

// LabelCount counts names per top-level label.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Analytics is the full bundle produced by one analytics aggregation.
type Analytics struct {
	Stats                  RegistrationStats `json:"stats"`
	RegistrationTrend      []DateCount       `json:"registration_trend"`
	PriceHistory           []MonthValue      `json:"price_history"`
	OwnerGrowth            []MonthCount      `json:"owner_growth"`
	PriceDistribution      []Bucket          `json:"price_distribution"`
	DailyRegistrations     []DateCount       `json:"daily_registrations"`
	TypeBreakdown          []MonthTypeCount  `json:"type_breakdown"`
	TopDomains             []LabelCount      `json:"top_domains"`
	NameLengthDistribution []Bucket          `json:"name_length_distribution"`
	GeneratedAt            int64             `json:"generated_at"`
}
