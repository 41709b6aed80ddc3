// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

/*
Package services provides suture.Service wrappers for ArNScope components.

Each wrapper translates a component lifecycle into suture's context-aware
Serve pattern and names itself through fmt.Stringer for supervisor logs:

  - HTTPServerService wraps *http.Server with graceful shutdown.
  - RunnerService runs a RunWithContext loop: the WebSocket hub
    (NewWebSocketHubService) and the engine event forwarder
    (NewEventForwarderService).
  - CacheSweeperService periodically removes expired cache entries.

Wrappers depend on small interfaces rather than the concrete packages, so
they can be tested with doubles and do not create import cycles.
*/
package services
