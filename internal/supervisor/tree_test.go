// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/arnscope/internal/config"
	"github.com/tomtom215/arnscope/internal/logging"
)

func testLogger() *slog.Logger {
	return slog.New(logging.NewSlogHandlerWithLogger(zerolog.Nop()))
}

func newTestTree(t *testing.T, cfg TreeConfig) *SupervisorTree {
	t.Helper()
	tree, err := NewSupervisorTree(testLogger(), cfg)
	if err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}
	return tree
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewSupervisorTree(t *testing.T) {
	t.Run("requires a logger", func(t *testing.T) {
		if _, err := NewSupervisorTree(nil, TreeConfig{}); err == nil {
			t.Error("expected error for nil logger")
		}
	})

	t.Run("zero config takes defaults", func(t *testing.T) {
		tree := newTestTree(t, TreeConfig{})
		if tree.config != DefaultTreeConfig() {
			t.Errorf("expected defaults, got %+v", tree.config)
		}
	})

	t.Run("explicit values are kept", func(t *testing.T) {
		tree := newTestTree(t, TreeConfig{FailureThreshold: 2, FailureBackoff: time.Second})
		if tree.config.FailureThreshold != 2 || tree.config.FailureBackoff != time.Second {
			t.Errorf("unexpected config %+v", tree.config)
		}
		if tree.config.FailureDecay != 30 {
			t.Errorf("expected default decay, got %f", tree.config.FailureDecay)
		}
	})
}

func TestLayerString(t *testing.T) {
	tests := map[Layer]string{
		LayerData:      "data-layer",
		LayerMessaging: "messaging-layer",
		LayerAPI:       "api-layer",
		Layer(7):       "layer(7)",
	}
	for l, want := range tests {
		if got := l.String(); got != want {
			t.Errorf("Layer(%d).String() = %q, want %q", int(l), got, want)
		}
	}
}

func TestSupervisorTree_StartsEveryLayer(t *testing.T) {
	tree := newTestTree(t, TreeConfig{ShutdownTimeout: time.Second})

	sweeper := NewMockService("cache-sweeper")
	hub := NewMockService("websocket-hub")
	server := NewMockService("http-server")
	tree.AddDataService(sweeper)
	tree.AddMessagingService(hub)
	tree.AddAPIService(server)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	waitFor(t, func() bool {
		return sweeper.StartCount() > 0 && hub.StartCount() > 0 && server.StartCount() > 0
	})

	services := tree.Services()
	for layer, name := range map[string]string{
		"data-layer":      "cache-sweeper",
		"messaging-layer": "websocket-hub",
		"api-layer":       "http-server",
	} {
		if !slices.Contains(services[layer], name) {
			t.Errorf("expected %s in %s, got %v", name, layer, services[layer])
		}
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not shut down in time")
	}

	if server.StopCount() != 1 {
		t.Errorf("expected the api service to stop once, got %d", server.StopCount())
	}
}

func TestSupervisorTree_AddRejectsUnknownLayer(t *testing.T) {
	tree := newTestTree(t, TreeConfig{})
	if _, err := tree.Add(Layer(-1), NewMockService("x")); err == nil {
		t.Error("expected error for unknown layer")
	}
}

func TestSupervisorTree_RemoveAndWait(t *testing.T) {
	tree := newTestTree(t, TreeConfig{ShutdownTimeout: time.Second})

	fwd := NewMockService("event-forwarder")
	token := tree.AddMessagingService(fwd)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tree.ServeBackground(ctx)
	waitFor(t, func() bool { return fwd.StartCount() > 0 })

	if err := tree.RemoveAndWait(token, time.Second); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if fwd.StopCount() != 1 {
		t.Errorf("expected removed service to stop, got %d stops", fwd.StopCount())
	}
	if len(tree.Services()["messaging-layer"]) != 0 {
		t.Error("removed service still listed")
	}
	if err := tree.RemoveAndWait(token, time.Second); err == nil {
		t.Error("expected error removing twice")
	}
}

func TestSupervisorTree_RestartsFailingService(t *testing.T) {
	tree := newTestTree(t, TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	failing := NewMockService("event-forwarder")
	failing.SetFailCount(2)
	stable := NewMockService("http-server")

	tree.AddMessagingService(failing)
	tree.AddAPIService(stable)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tree.ServeBackground(ctx)

	waitFor(t, func() bool { return failing.StartCount() >= 3 })
	if stable.StartCount() != 1 {
		t.Errorf("a messaging failure restarted the api layer: %d starts", stable.StartCount())
	}
}

func TestTreeConfigFrom(t *testing.T) {
	cfg := TreeConfigFrom(config.SupervisorConfig{
		FailureThreshold: 3,
		FailureDecay:     12,
		FailureBackoff:   2 * time.Second,
		ShutdownTimeout:  4 * time.Second,
	})

	want := TreeConfig{FailureThreshold: 3, FailureDecay: 12, FailureBackoff: 2 * time.Second, ShutdownTimeout: 4 * time.Second}
	if cfg != want {
		t.Errorf("got %+v, want %+v", cfg, want)
	}
}
