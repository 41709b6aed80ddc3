// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// mockService blocks until canceled, optionally failing its first runs.
type mockService struct {
	name      string
	starts    atomic.Int32
	stops     atomic.Int32
	failures  atomic.Int32
	failFirst int32
}

func NewMockService(name string) *mockService {
	return &mockService{name: name}
}

func (m *mockService) Serve(ctx context.Context) error {
	m.starts.Add(1)
	defer m.stops.Add(1)

	if m.failures.Add(1) <= atomic.LoadInt32(&m.failFirst) {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

// SetFailCount makes the next n runs fail immediately.
func (m *mockService) SetFailCount(n int) {
	atomic.StoreInt32(&m.failFirst, int32(n))
}

func (m *mockService) StartCount() int32 { return m.starts.Load() }

func (m *mockService) StopCount() int32 { return m.stops.Load() }

func (m *mockService) String() string { return m.name }
