// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/tomtom215/arnscope/internal/config"
)

// Layer selects the child supervisor a service runs under.
type Layer int

const (
	// LayerData holds storage maintenance such as the cache sweeper.
	LayerData Layer = iota
	// LayerMessaging holds the WebSocket hub and the engine event forwarder.
	LayerMessaging
	// LayerAPI holds the HTTP server.
	LayerAPI

	layerCount
)

var layerNames = [layerCount]string{"data-layer", "messaging-layer", "api-layer"}

func (l Layer) String() string {
	if l < 0 || l >= layerCount {
		return fmt.Sprintf("layer(%d)", int(l))
	}
	return layerNames[l]
}

// TreeConfig is the restart policy shared by every supervisor in the tree.
type TreeConfig struct {
	FailureThreshold float64       // failures before backing off
	FailureDecay     float64       // seconds for the failure count to decay
	FailureBackoff   time.Duration // pause once the threshold is crossed
	ShutdownTimeout  time.Duration // per-service stop deadline
}

// DefaultTreeConfig returns suture's built-in defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// TreeConfigFrom converts the supervisor section of the application config.
func TreeConfigFrom(cfg config.SupervisorConfig) TreeConfig {
	return TreeConfig{
		FailureThreshold: cfg.FailureThreshold,
		FailureDecay:     cfg.FailureDecay,
		FailureBackoff:   cfg.FailureBackoff,
		ShutdownTimeout:  cfg.ShutdownTimeout,
	}
}

// withDefaults fills zero fields from DefaultTreeConfig.
func (c TreeConfig) withDefaults() TreeConfig {
	def := DefaultTreeConfig()
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = def.FailureThreshold
	}
	if c.FailureDecay <= 0 {
		c.FailureDecay = def.FailureDecay
	}
	if c.FailureBackoff <= 0 {
		c.FailureBackoff = def.FailureBackoff
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = def.ShutdownTimeout
	}
	return c
}

func (c TreeConfig) spec() suture.Spec {
	return suture.Spec{
		FailureThreshold: c.FailureThreshold,
		FailureDecay:     c.FailureDecay,
		FailureBackoff:   c.FailureBackoff,
		Timeout:          c.ShutdownTimeout,
	}
}

// SupervisorTree is the ArNScope process tree: a root supervisor with one
// child per Layer. A service crashing in one layer is restarted without
// touching the others, so a failing event forwarder never takes the HTTP
// server down with it.
type SupervisorTree struct {
	root   *suture.Supervisor
	layers [layerCount]*suture.Supervisor
	config TreeConfig

	mu       sync.Mutex
	services map[suture.ServiceToken]serviceEntry
}

type serviceEntry struct {
	layer Layer
	name  string
}

// NewSupervisorTree builds the tree. Supervisor events are logged through
// logger via sutureslog.
func NewSupervisorTree(logger *slog.Logger, cfg TreeConfig) (*SupervisorTree, error) {
	if logger == nil {
		return nil, fmt.Errorf("supervisor tree requires a logger")
	}
	cfg = cfg.withDefaults()

	// MustHook has a pointer receiver.
	hook := (&sutureslog.Handler{Logger: logger}).MustHook()

	rootSpec := cfg.spec()
	rootSpec.EventHook = hook

	t := &SupervisorTree{
		root:     suture.New("arnscope", rootSpec),
		config:   cfg,
		services: make(map[suture.ServiceToken]serviceEntry),
	}
	// Children inherit the root's event hook when added.
	for l := Layer(0); l < layerCount; l++ {
		t.layers[l] = suture.New(l.String(), cfg.spec())
		t.root.Add(t.layers[l])
	}
	return t, nil
}

// Add starts svc under the given layer once the tree is serving.
func (t *SupervisorTree) Add(layer Layer, svc suture.Service) (suture.ServiceToken, error) {
	if layer < 0 || layer >= layerCount {
		return suture.ServiceToken{}, fmt.Errorf("unknown supervisor layer %d", int(layer))
	}
	token := t.layers[layer].Add(svc)

	t.mu.Lock()
	t.services[token] = serviceEntry{layer: layer, name: serviceName(svc)}
	t.mu.Unlock()
	return token, nil
}

// AddDataService adds svc to LayerData.
func (t *SupervisorTree) AddDataService(svc suture.Service) suture.ServiceToken {
	token, _ := t.Add(LayerData, svc)
	return token
}

// AddMessagingService adds svc to LayerMessaging.
func (t *SupervisorTree) AddMessagingService(svc suture.Service) suture.ServiceToken {
	token, _ := t.Add(LayerMessaging, svc)
	return token
}

// AddAPIService adds svc to LayerAPI.
func (t *SupervisorTree) AddAPIService(svc suture.Service) suture.ServiceToken {
	token, _ := t.Add(LayerAPI, svc)
	return token
}

// RemoveAndWait stops the service behind token and waits up to timeout.
func (t *SupervisorTree) RemoveAndWait(token suture.ServiceToken, timeout time.Duration) error {
	t.mu.Lock()
	entry, ok := t.services[token]
	delete(t.services, token)
	t.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown service token")
	}
	return t.layers[entry.layer].RemoveAndWait(token, timeout)
}

// Services lists registered service names per layer, in no particular order.
func (t *SupervisorTree) Services() map[string][]string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string][]string, layerCount)
	for _, e := range t.services {
		out[e.layer.String()] = append(out[e.layer.String()], e.name)
	}
	return out
}

// Serve runs the tree until ctx is canceled.
func (t *SupervisorTree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// ServeBackground runs the tree in a goroutine. The channel yields the
// final error and is then closed.
func (t *SupervisorTree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport lists services that missed the shutdown timeout.
func (t *SupervisorTree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}

func serviceName(svc suture.Service) string {
	if s, ok := svc.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", svc)
}
