// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runHub(t *testing.T) (*Hub, context.CancelFunc, <-chan error) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()
	t.Cleanup(cancel)
	return hub, cancel, done
}

// dial starts a server that attaches every connection to hub and returns a
// connected client.
func dial(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		NewClient(hub, conn).Start()
	}))
	t.Cleanup(srv.Close)

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return hub.ClientCount() >= 1 }, time.Second, 5*time.Millisecond)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg map[string]interface{}
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHub_BroadcastReachesClient(t *testing.T) {
	t.Parallel()
	hub, _, _ := runHub(t)
	conn := dial(t, hub)

	hub.BroadcastRecordsUpdated(RecordsUpdatedData{Source: "api", Inserted: 2, Total: 2, Version: 7})

	msg := readMessage(t, conn)
	assert.Equal(t, MessageTypeRecordsUpdated, msg["type"])
	data, ok := msg["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "api", data["source"])
	assert.Equal(t, float64(7), data["version"])
}

func TestHub_PingPong(t *testing.T) {
	t.Parallel()
	hub, _, _ := runHub(t)
	conn := dial(t, hub)

	require.NoError(t, conn.WriteJSON(Message{Type: MessageTypePing}))
	msg := readMessage(t, conn)
	assert.Equal(t, MessageTypePong, msg["type"])
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	t.Parallel()
	hub, cancel, done := runHub(t)
	conn := dial(t, hub)

	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
	assert.Zero(t, hub.ClientCount())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNoStatusReceived, websocket.CloseNormalClosure) ||
		websocket.IsUnexpectedCloseError(err), "expected close, got %v", err)
}

func TestHub_DropsSlowClient(t *testing.T) {
	t.Parallel()
	hub, _, _ := runHub(t)

	slow := &Client{id: clientIDCounter.Add(1), hub: hub, send: make(chan Message, 1)}
	hub.Register <- slow
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Broadcast(MessageTypeEngineProgress, 1)
	hub.Broadcast(MessageTypeEngineProgress, 2)

	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)

	first, ok := <-slow.send
	require.True(t, ok)
	assert.Equal(t, 1, first.Data)
	_, ok = <-slow.send
	assert.False(t, ok, "send channel closed on drop")
}

func TestHub_BroadcastOrderAndFullBuffer(t *testing.T) {
	t.Parallel()
	hub := NewHub()

	for i := 0; i < broadcastBuffer; i++ {
		require.True(t, hub.Broadcast(MessageTypeEngineProgress, i))
	}
	assert.False(t, hub.Broadcast(MessageTypeEngineProgress, "overflow"), "full buffer drops instead of blocking")

	a := &Client{id: 2, send: make(chan Message, 1)}
	b := &Client{id: 1, send: make(chan Message, 1)}
	hub.clients[a] = struct{}{}
	hub.clients[b] = struct{}{}

	hub.mu.Lock()
	ordered := hub.sortedClients()
	hub.mu.Unlock()
	require.Len(t, ordered, 2)
	assert.Equal(t, uint64(1), ordered[0].ID())
	assert.Equal(t, uint64(2), ordered[1].ID())
}

func TestMarshalMessage(t *testing.T) {
	t.Parallel()
	b, err := MarshalMessage(Message{Type: MessageTypeEngineError, Data: map[string]string{"operation": "filter"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"engine_error","data":{"operation":"filter"}}`, string(b))
}
