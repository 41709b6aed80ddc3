// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package websocket

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/arnscope/internal/logging"
)

// Connection timing. A peer that answers no ping within idleTimeout is
// dropped.
const (
	writeTimeout   = 10 * time.Second
	idleTimeout    = 60 * time.Second
	pingInterval   = idleTimeout * 9 / 10
	maxInboundSize = 4 << 10
	outboxSize     = 64
)

// errOutboxClosed ends the write loop when the hub releases the client.
var errOutboxClosed = errors.New("outbox closed")

// clientIDCounter orders clients for broadcast.
var clientIDCounter atomic.Uint64

// Client is one browser connection. Inbound frames are limited to ping
// requests; everything else is pushed by the hub through send.
type Client struct {
	id   uint64
	hub  *Hub
	conn *websocket.Conn
	send chan Message
}

// NewClient allocates a client with the next ID. It is not registered until
// Start.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   clientIDCounter.Add(1),
		hub:  hub,
		conn: conn,
		send: make(chan Message, outboxSize),
	}
}

// ID returns the client's identifier.
func (c *Client) ID() uint64 {
	return c.id
}

// Start hands the client to the hub and spawns its reader and writer.
func (c *Client) Start() {
	c.hub.Register <- c
	go c.writeLoop()
	go c.readLoop()
}

// readLoop owns unregistration: it is the first to notice a dead peer.
func (c *Client) readLoop() {
	defer func() {
		c.hub.Unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxInboundSize)
	extend := func(string) error { return c.conn.SetReadDeadline(time.Now().Add(idleTimeout)) }
	if err := extend(""); err != nil {
		logging.Warn().Err(err).Uint64("client_id", c.id).Msg("WebSocket read deadline failed")
		return
	}
	c.conn.SetPongHandler(extend)

	for {
		var in Message
		err := c.conn.ReadJSON(&in)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Warn().Err(err).Uint64("client_id", c.id).Msg("WebSocket closed unexpectedly")
			}
			return
		}
		c.handle(in)
	}
}

// handle answers application-level pings. A full outbox drops the pong.
func (c *Client) handle(in Message) {
	if in.Type != MessageTypePing {
		return
	}
	select {
	case c.send <- Message{Type: MessageTypePong}:
	default:
	}
}

func (c *Client) writeLoop() {
	keepalive := time.NewTicker(pingInterval)
	defer keepalive.Stop()
	defer func() { _ = c.conn.Close() }()

	var err error
	for err == nil {
		select {
		case msg, open := <-c.send:
			err = c.deliver(msg, open)
		case <-keepalive.C:
			err = c.write(func() error { return c.conn.WriteMessage(websocket.PingMessage, nil) })
		}
	}
	if !errors.Is(err, errOutboxClosed) {
		logging.Debug().Err(err).Uint64("client_id", c.id).Msg("WebSocket write failed")
	}
}

// deliver writes msg, or a close frame once the hub has closed the outbox.
func (c *Client) deliver(msg Message, open bool) error {
	if !open {
		_ = c.write(func() error { return c.conn.WriteMessage(websocket.CloseMessage, nil) })
		return errOutboxClosed
	}
	return c.write(func() error { return c.conn.WriteJSON(msg) })
}

func (c *Client) write(fn func() error) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return fn()
}
