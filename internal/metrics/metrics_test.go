// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestRecordEngineOperation(t *testing.T) {
	processed := EngineRecordsProcessed.WithLabelValues("filter")
	failures := EngineOperationFailures.WithLabelValues("filter")
	beforeProcessed := counterValue(t, processed)
	beforeFailures := counterValue(t, failures)

	RecordEngineOperation("filter", 1200, 3*time.Millisecond, nil)
	RecordEngineOperation("filter", 10, time.Millisecond, errors.New("boom"))

	assert.InDelta(t, beforeProcessed+1210, counterValue(t, processed), 0)
	assert.InDelta(t, beforeFailures+1, counterValue(t, failures), 0)
}

func TestRecordMerge(t *testing.T) {
	inserted := StoreMergeOutcomes.WithLabelValues("inserted")
	unchanged := StoreMergeOutcomes.WithLabelValues("unchanged")
	writes := StoreWrites.WithLabelValues("put_all_smart")
	bi, bu, bw := counterValue(t, inserted), counterValue(t, unchanged), counterValue(t, writes)

	RecordMerge(3, 1, 7)

	assert.InDelta(t, bi+3, counterValue(t, inserted), 0)
	assert.InDelta(t, bu+7, counterValue(t, unchanged), 0)
	assert.InDelta(t, bw+1, counterValue(t, writes), 0)
}

func TestRecordAPIRequest(t *testing.T) {
	c := APIRequestsTotal.WithLabelValues("GET", "/api/v1/records", "200")
	before := counterValue(t, c)

	RecordAPIRequest("GET", "/api/v1/records", "200", 12*time.Millisecond)

	assert.InDelta(t, before+1, counterValue(t, c), 0)
}

func TestMetricsLint(t *testing.T) {
	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer,
		"arnscope_engine_operation_duration_seconds",
		"arnscope_store_records",
		"arnscope_cache_hits_total",
	)
	require.NoError(t, err)
	assert.Empty(t, problems)
}
