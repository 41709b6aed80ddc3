// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/arnscope/internal/bridge"
	"github.com/tomtom215/arnscope/internal/cache"
	"github.com/tomtom215/arnscope/internal/config"
	"github.com/tomtom215/arnscope/internal/engine"
	"github.com/tomtom215/arnscope/internal/models"
	"github.com/tomtom215/arnscope/internal/store"
	ws "github.com/tomtom215/arnscope/internal/websocket"
)

type testEnv struct {
	store   *store.Store
	cache   *cache.Memory
	hub     *ws.Hub
	handler *Handler
	router  http.Handler
}

func testConfig() *config.Config {
	return &config.Config{
		API: config.APIConfig{
			DefaultPageSize:   2,
			MaxPageSize:       5,
			RateLimitDisabled: true,
		},
		Cache: config.CacheConfig{DefaultTTL: time.Minute},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	b, err := bridge.New(engine.New(config.EngineConfig{ChunkSize: 2}), config.BridgeConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = hub.RunWithContext(ctx) }()
	t.Cleanup(cancel)

	env := &testEnv{store: store.New(db), cache: cache.NewMemory(nil), hub: hub}
	return env.withAggregator(b)
}

func (e *testEnv) withAggregator(agg Aggregator) *testEnv {
	e.handler = NewHandler(e.store, agg, e.cache, e.hub, testConfig())
	e.router = routerFor(e.handler)
	return e
}

func routerFor(h *Handler) http.Handler {
	return NewRouter(h, NewChiMiddleware(ChiMiddlewareConfigFrom(h.config.API))).SetupChi()
}

func (e *testEnv) seed(t *testing.T, records ...models.Record) {
	t.Helper()
	require.NoError(t, e.store.PutAll(context.Background(), records))
}

func sampleRecords() []models.Record {
	return []models.Record{
		{Name: "alice", Owner: "0xA", PurchasePrice: "10", RegisteredAt: models.Int64Ptr(1_700_000_000_000)},
		{Name: "bob", Owner: "0xB", PurchasePrice: "20", RegisteredAt: models.Int64Ptr(1_700_000_100_000)},
		{Name: "carol", Owner: "0xA", PurchasePrice: "30", RegisteredAt: models.Int64Ptr(1_700_000_200_000)},
		{Name: "dave", Owner: "0xC", RegisteredAt: models.Int64Ptr(1_700_000_300_000)},
		{Name: "erin", Owner: "0xA", Tags: []string{"gaming"}},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func do(t *testing.T, h http.Handler, method, target string, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func recordNames(records []models.Record) []string {
	out := make([]string, len(records))
	for i := range records {
		out[i] = records[i].Name
	}
	return out
}

// failingStore fails every call.
type failingStore struct {
	RecordStore
}

var errStoreDown = errors.New("store down")

func (failingStore) Ping(context.Context) error                      { return errStoreDown }
func (failingStore) Version() uint64                                 { return 0 }
func (failingStore) Count(context.Context) (int, error)              { return 0, errStoreDown }
func (failingStore) GetAll(context.Context) ([]models.Record, error) { return nil, errStoreDown }
func (failingStore) GetOne(context.Context, string) (models.Record, error) {
	return models.Record{}, errStoreDown
}

// failingAggregator rejects every operation with an operation error.
type failingAggregator struct {
	Aggregator
}

func (failingAggregator) ComputeAnalytics(context.Context, []models.Record) (models.Analytics, error) {
	return models.Analytics{}, &engine.OperationError{Operation: engine.OpAnalytics, Message: "boom"}
}

func (failingAggregator) Filter(context.Context, []models.Record, string) ([]models.Record, error) {
	return nil, bridge.ErrClosed
}
