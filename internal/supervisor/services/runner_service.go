// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package services

import "context"

// Runner is a component whose loop runs until its context ends.
// *websocket.Hub and *websocket.EventForwarder implement it.
type Runner interface {
	RunWithContext(ctx context.Context) error
}

// RunnerService supervises a Runner under a fixed name.
type RunnerService struct {
	runner Runner
	name   string
}

// NewWebSocketHubService supervises the hub event loop. The hub closes
// every client when its context is canceled.
func NewWebSocketHubService(hub Runner) *RunnerService {
	return &RunnerService{runner: hub, name: "websocket-hub"}
}

// NewEventForwarderService keeps the bridge-to-hub relay subscribed while
// the messaging layer is up.
func NewEventForwarderService(forwarder Runner) *RunnerService {
	return &RunnerService{runner: forwarder, name: "event-forwarder"}
}

// Serve implements suture.Service.
func (s *RunnerService) Serve(ctx context.Context) error {
	return s.runner.RunWithContext(ctx)
}

func (s *RunnerService) String() string {
	return s.name
}
