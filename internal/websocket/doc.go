// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

/*
Package websocket pushes engine and store events to browser clients.

The Hub owns the client set. It runs as a supervised service
(RunWithContext), delivers broadcasts in client ID order and drops clients
whose send buffer is full. Each Client runs a read loop that answers
application-level pings and a write loop that sends queued messages and
protocol pings.

Message types:

	engine_progress   {"operation","current","total"}
	engine_error      {"operation","message"}
	records_updated   {"timestamp","source","inserted","updated","total","version"}
	pong              reply to a client {"type":"ping"}

The EventForwarder subscribes to the aggregation bridge and relays its
progress and error events to the hub. Subscriber callbacks run on the
bridge's dispatch path, so the forwarder never blocks: Hub.Broadcast drops
instead of waiting.
*/
package websocket
