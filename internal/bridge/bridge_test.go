// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package bridge

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/arnscope/internal/config"
	"github.com/tomtom215/arnscope/internal/engine"
	"github.com/tomtom215/arnscope/internal/models"
)

func newTestBridge(t *testing.T, chunk int) *Bridge {
	t.Helper()
	eng := engine.New(config.EngineConfig{ChunkSize: chunk})
	b, err := New(eng, config.BridgeConfig{QueueSize: 4})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func makeRecords(n int) []models.Record {
	out := make([]models.Record, n)
	for i := range out {
		out[i] = models.Record{
			Name:          fmt.Sprintf("name-%03d.ar", i),
			Owner:         fmt.Sprintf("0x%d", i%3),
			PurchasePrice: models.Amount(fmt.Sprint(i)),
		}
	}
	return out
}

// recorder collects events from subscriber callbacks.
type recorder struct {
	mu       sync.Mutex
	progress []engine.Progress
	errors   []ErrorEvent
}

func (r *recorder) onProgress(p engine.Progress) {
	r.mu.Lock()
	r.progress = append(r.progress, p)
	r.mu.Unlock()
}

func (r *recorder) onError(e ErrorEvent) {
	r.mu.Lock()
	r.errors = append(r.errors, e)
	r.mu.Unlock()
}

func (r *recorder) snapshot() ([]engine.Progress, []ErrorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]engine.Progress(nil), r.progress...), append([]ErrorEvent(nil), r.errors...)
}

func TestBridge_ProgressPrecedesResult(t *testing.T) {
	t.Parallel()
	b := newTestBridge(t, 10)
	rec := &recorder{}
	unsub := b.SubscribeProgress(rec.onProgress)
	defer unsub()

	ranking, err := b.ComputeTopHolders(context.Background(), makeRecords(35))
	require.NoError(t, err)
	assert.Equal(t, 3, ranking.TotalHolders)

	progress, _ := rec.snapshot()
	require.Len(t, progress, 4, "every chunk delivered before the call returned")
	for i, want := range []int{10, 20, 30, 35} {
		assert.Equal(t, engine.OpTopHolders, progress[i].Operation)
		assert.Equal(t, want, progress[i].Current)
		assert.Equal(t, 35, progress[i].Total)
	}
}

func TestBridge_OperationsMatchEngine(t *testing.T) {
	t.Parallel()
	b := newTestBridge(t, 7)
	eng := engine.New(config.EngineConfig{ChunkSize: 7})
	records := makeRecords(20)
	ctx := context.Background()

	got, err := b.Filter(ctx, records, "name-01")
	require.NoError(t, err)
	want, err := eng.Filter(ctx, records, "name-01", nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	q := models.PageQuery{SortBy: models.SortByPrice, SortDirection: models.SortDesc, Page: 2, PerPage: 5}
	page, err := b.SortAndPaginate(ctx, records, q)
	require.NoError(t, err)
	assert.Equal(t, 20, page.Total)
	require.Len(t, page.Records, 5)
	assert.Equal(t, "name-014.ar", page.Records[0].Name)

	a, err := b.ComputeAnalytics(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 20, a.Stats.TotalRegistrations)
	assert.Equal(t, 3, a.Stats.UniqueOwners)
}

func TestBridge_ErrorRejectsAndBroadcasts(t *testing.T) {
	t.Parallel()
	b := newTestBridge(t, 10)
	rec := &recorder{}
	defer b.SubscribeError(rec.onError)()

	_, err := b.SortAndPaginate(context.Background(), makeRecords(3), models.PageQuery{
		SortBy: "color", SortDirection: models.SortAsc, Page: 1, PerPage: 10,
	})

	var opErr *engine.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, engine.OpSortAndPaginate, opErr.Operation)

	_, errs := rec.snapshot()
	require.Len(t, errs, 1)
	assert.Equal(t, engine.OpSortAndPaginate, errs[0].Operation)
	assert.Contains(t, errs[0].Message, "color")

	// The worker survives the failure.
	_, err = b.Filter(context.Background(), makeRecords(3), "")
	assert.NoError(t, err)
}

func TestBridge_MultipleSubscribersAndUnsubscribe(t *testing.T) {
	t.Parallel()
	b := newTestBridge(t, 5)
	first, second := &recorder{}, &recorder{}

	unsubFirst := b.SubscribeProgress(first.onProgress)
	unsubSecond := b.SubscribeProgress(second.onProgress)
	defer unsubSecond()

	_, err := b.ComputeAnalytics(context.Background(), makeRecords(10))
	require.NoError(t, err)

	unsubFirst()
	unsubFirst()

	_, err = b.ComputeAnalytics(context.Background(), makeRecords(10))
	require.NoError(t, err)

	p1, _ := first.snapshot()
	p2, _ := second.snapshot()
	assert.Len(t, p1, 2)
	assert.Len(t, p2, 4)
}

func TestBridge_SubscriberPanicIsContained(t *testing.T) {
	t.Parallel()
	b := newTestBridge(t, 5)
	rec := &recorder{}
	defer b.SubscribeProgress(func(engine.Progress) { panic("bad subscriber") })()
	defer b.SubscribeProgress(rec.onProgress)()

	_, err := b.ComputeTopHolders(context.Background(), makeRecords(10))
	require.NoError(t, err)

	progress, _ := rec.snapshot()
	assert.Len(t, progress, 2)
}

func TestBridge_ConcurrentCallersAreSerialized(t *testing.T) {
	t.Parallel()
	b := newTestBridge(t, 50)
	records := makeRecords(200)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := b.ComputeTopHolders(context.Background(), records)
			if err == nil && r.TotalNames != len(records) {
				err = fmt.Errorf("unexpected total %d", r.TotalNames)
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestBridge_CanceledContext(t *testing.T) {
	t.Parallel()
	b := newTestBridge(t, 1)
	rec := &recorder{}
	defer b.SubscribeError(rec.onError)()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.ComputeAnalytics(ctx, makeRecords(5))
	assert.ErrorIs(t, err, context.Canceled)

	_, errs := rec.snapshot()
	assert.Empty(t, errs, "abandoned requests are not broadcast")
}

func TestBridge_Close(t *testing.T) {
	t.Parallel()
	eng := engine.New(config.EngineConfig{})
	b, err := New(eng, config.BridgeConfig{})
	require.NoError(t, err)

	_, err = b.Filter(context.Background(), makeRecords(2), "")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- b.Close() }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}

	_, err = b.Filter(context.Background(), makeRecords(2), "")
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, b.Close(), "Close is idempotent")
}
