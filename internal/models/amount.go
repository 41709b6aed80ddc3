// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package models

import (
	"bytes"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// Amount is a purchase price in the smallest token denomination.
//
// Upstream batches carry prices as JSON numbers, numeric strings, or null.
// Amount keeps the literal text so no precision is lost in storage; parsing
// happens only when a numeric value is needed.
type Amount string

// UnmarshalJSON accepts a number, a string, or null.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(strings.TrimSpace(s))
		return nil
	}
	*a = Amount(data)
	return nil
}

// MarshalJSON always writes the amount as a string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(a))
}

// Decimal parses the amount. Unparseable or empty amounts yield (zero, false).
func (a Amount) Decimal() (decimal.Decimal, bool) {
	if a == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(string(a))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Float64 returns the parsed amount, or 0 when it is not numeric.
func (a Amount) Float64() float64 {
	d, ok := a.Decimal()
	if !ok {
		return 0
	}
	f, _ := d.Float64()
	return f
}
