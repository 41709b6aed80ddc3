// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package engine

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/axiomhq/hyperloglog"

	"github.com/tomtom215/arnscope/internal/models"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"

	// dailyWindowDays is the length of the zero-filled daily series.
	dailyWindowDays = 30
)

var (
	priceBuckets      = []string{"0-1", "1-10", "10-100", "100+"}
	nameLengthBuckets = []string{"1-5", "6-10", "11-20", "21+"}
)

// monthAcc accumulates one calendar month.
type monthAcc struct {
	priceSum   float64
	priceCount int
	owners     map[string]struct{}
	permabuys  int
	leases     int
}

// analyticsAcc is the state of one chunked analytics pass.
type analyticsAcc struct {
	now     time.Time
	nowMs   int64
	horizon int64

	stats    models.RegistrationStats
	owners   map[string]struct{}
	sketch   *hyperloglog.Sketch
	priceSum float64
	priceN   int

	curMonth, prevMonth string
	curCount, prevCount int

	days   map[string]int
	months map[string]*monthAcc
	prices [4]int
	labels map[string]int
	length [4]int
}

// newAnalyticsAcc buckets days and months in UTC whatever the clock's zone.
func newAnalyticsAcc(now time.Time) *analyticsAcc {
	now = now.UTC()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return &analyticsAcc{
		now:       now,
		nowMs:     now.UnixMilli(),
		horizon:   now.AddDate(leaseHorizonYears, 0, 0).UnixMilli(),
		owners:    make(map[string]struct{}),
		sketch:    hyperloglog.New14(),
		curMonth:  firstOfMonth.Format(monthLayout),
		prevMonth: firstOfMonth.AddDate(0, -1, 0).Format(monthLayout),
		days:      make(map[string]int),
		months:    make(map[string]*monthAcc),
		labels:    make(map[string]int),
	}
}

// ComputeAnalytics folds records into the analytics bundle in one chunked pass.
// Time windows are relative to the engine clock at call time.
func (e *Engine) ComputeAnalytics(ctx context.Context, records []models.Record, progress ProgressFunc) (models.Analytics, error) {
	var out models.Analytics
	err := e.run(OpAnalytics, len(records), func() error {
		acc := newAnalyticsAcc(e.now())
		err := e.forEachChunk(ctx, OpAnalytics, len(records), progress, func(start, end int) {
			for i := start; i < end; i++ {
				acc.add(&records[i])
			}
		})
		if err != nil {
			return err
		}
		out = acc.result(e.topDomains)
		return nil
	})
	return out, err
}

func (a *analyticsAcc) add(r *models.Record) {
	a.stats.TotalRegistrations++

	ts := r.RegistrationTime()
	for _, w := range []struct {
		span time.Duration
		n    *int
	}{
		{24 * time.Hour, &a.stats.Last24Hours},
		{7 * 24 * time.Hour, &a.stats.Last7Days},
		{30 * 24 * time.Hour, &a.stats.Last30Days},
		{365 * 24 * time.Hour, &a.stats.Last365Days},
	} {
		if ts > a.nowMs-w.span.Milliseconds() {
			*w.n++
		}
	}

	if isPermanent(r, a.horizon) {
		a.stats.ActivePermabuys++
	} else {
		a.stats.ActiveLeases++
	}

	if r.Owner != "" {
		a.owners[r.Owner] = struct{}{}
		a.sketch.Insert([]byte(r.Owner))
	}

	price := r.PurchasePrice.Float64()
	if price > 0 {
		a.priceSum += price
		a.priceN++
	}
	a.prices[priceBucket(price)]++

	a.labels[topLevelLabel(r.Name)]++
	a.length[nameLengthBucket(utf8.RuneCountInString(r.Name))]++

	if ts <= 0 {
		return
	}
	at := time.UnixMilli(ts).UTC()
	a.days[at.Format(dayLayout)]++

	month := at.Format(monthLayout)
	switch month {
	case a.curMonth:
		a.curCount++
	case a.prevMonth:
		a.prevCount++
	}

	m := a.months[month]
	if m == nil {
		m = &monthAcc{owners: make(map[string]struct{})}
		a.months[month] = m
	}
	if price > 0 {
		m.priceSum += price
		m.priceCount++
	}
	if r.Owner != "" {
		m.owners[r.Owner] = struct{}{}
	}
	if isPermanentForBreakdown(r, a.horizon) {
		m.permabuys++
	} else {
		m.leases++
	}
}

func (a *analyticsAcc) result(topDomains int) models.Analytics {
	stats := a.stats
	stats.UniqueOwners = len(a.owners)
	stats.ApproxUniqueOwners = a.sketch.Estimate()
	if a.priceN > 0 {
		stats.AveragePrice = a.priceSum / float64(a.priceN)
	}
	stats.GrowthRate = growthRate(a.curCount, a.prevCount)

	out := models.Analytics{
		Stats:                  stats,
		RegistrationTrend:      make([]models.DateCount, 0, len(a.days)),
		PriceHistory:           make([]models.MonthValue, 0, len(a.months)),
		OwnerGrowth:            make([]models.MonthCount, 0, len(a.months)),
		TypeBreakdown:          make([]models.MonthTypeCount, 0, len(a.months)),
		PriceDistribution:      make([]models.Bucket, len(priceBuckets)),
		NameLengthDistribution: make([]models.Bucket, len(nameLengthBuckets)),
		GeneratedAt:            a.nowMs,
	}

	for day, n := range a.days {
		out.RegistrationTrend = append(out.RegistrationTrend, models.DateCount{Date: day, Count: n})
	}
	slices.SortFunc(out.RegistrationTrend, func(x, y models.DateCount) int { return strings.Compare(x.Date, y.Date) })

	out.DailyRegistrations = make([]models.DateCount, 0, dailyWindowDays)
	for i := dailyWindowDays - 1; i >= 0; i-- {
		day := a.now.AddDate(0, 0, -i).Format(dayLayout)
		out.DailyRegistrations = append(out.DailyRegistrations, models.DateCount{Date: day, Count: a.days[day]})
	}

	months := make([]string, 0, len(a.months))
	for month := range a.months {
		months = append(months, month)
	}
	slices.Sort(months)
	for _, month := range months {
		m := a.months[month]
		if m.priceCount > 0 {
			out.PriceHistory = append(out.PriceHistory, models.MonthValue{
				Month: month,
				Value: m.priceSum / float64(m.priceCount),
			})
		}
		out.OwnerGrowth = append(out.OwnerGrowth, models.MonthCount{Month: month, Count: len(m.owners)})
		out.TypeBreakdown = append(out.TypeBreakdown, models.MonthTypeCount{
			Month:     month,
			Permabuys: m.permabuys,
			Leases:    m.leases,
		})
	}

	for i, label := range priceBuckets {
		out.PriceDistribution[i] = models.Bucket{Range: label, Count: a.prices[i]}
	}
	for i, label := range nameLengthBuckets {
		out.NameLengthDistribution[i] = models.Bucket{Range: label, Count: a.length[i]}
	}

	out.TopDomains = make([]models.LabelCount, 0, len(a.labels))
	for label, n := range a.labels {
		out.TopDomains = append(out.TopDomains, models.LabelCount{Label: label, Count: n})
	}
	slices.SortFunc(out.TopDomains, func(x, y models.LabelCount) int {
		if c := cmp.Compare(y.Count, x.Count); c != 0 {
			return c
		}
		return strings.Compare(x.Label, y.Label)
	})
	if len(out.TopDomains) > topDomains {
		out.TopDomains = out.TopDomains[:topDomains]
	}

	return out
}

// growthRate is month-over-month growth in percent. Negative growth reports 0.
func growthRate(current, previous int) float64 {
	switch {
	case previous > 0:
		return max(0, float64(current-previous)/float64(previous)*100)
	case current > 0:
		return 100
	default:
		return 0
	}
}

func priceBucket(p float64) int {
	switch {
	case p < 1:
		return 0
	case p < 10:
		return 1
	case p < 100:
		return 2
	default:
		return 3
	}
}

func nameLengthBucket(n int) int {
	switch {
	case n <= 5:
		return 0
	case n <= 10:
		return 1
	case n <= 20:
		return 2
	default:
		return 3
	}
}

// topLevelLabel returns the segment after the last dot, or "none".
func topLevelLabel(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return "none"
	}
	return name[i+1:]
}
