// Orbitus - ISS Position Tracking and Orbit History
// Copyright 2026 Orbitus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/orbitus/orbitus

// Package websocket pushes live position updates to connected front-end
// clients. A hub owns the client set and fans broadcasts out to per-client
// send channels; a relay feeds the hub from the in-process event bus.
package websocket

import (
	"context"

	"github.com/orbitus/orbitus/internal/logging"
	"github.com/orbitus/orbitus/internal/metrics"
)

// Message types sent over the WebSocket connection.
const (
	MessageTypePosition = "position"
	MessageTypePing     = "ping"
	MessageTypePong     = "pong"
)

// Message is one WebSocket frame payload.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub maintains the set of active clients and broadcasts messages to them.
// All client-set mutations happen on the hub goroutine; handlers interact
// with it only through the Register/Unregister channels.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
}

// NewHub creates an empty hub. Run or a supervisor must be started before
// clients connect.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Broadcast queues a message for delivery to every connected client.
// Drops the message if the hub's queue is full rather than blocking the
// caller.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		logging.Warn().Str("type", msg.Type).Msg("websocket broadcast queue full, dropping message")
	}
}

// Run processes client lifecycle and broadcast events until ctx is
// canceled, then closes every connected client and returns ctx.Err().
// Designed for suture supervision.
func (h *Hub) Run(ctx context.Context) error {
	log := logging.WithComponent("websocket-hub")

	for {
		select {
		case <-ctx.Done():
			closed := len(h.clients)
			h.closeAllClients()
			log.Info().Int("clients_closed", closed).Msg("websocket hub stopped")
			return ctx.Err()

		case client := <-h.Register:
			h.clients[client] = true
			metrics.WebSocketClients.Set(float64(len(h.clients)))
			log.Info().Int("total_clients", len(h.clients)).Msg("websocket client connected")

		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			metrics.WebSocketClients.Set(float64(len(h.clients)))
			log.Info().Int("total_clients", len(h.clients)).Msg("websocket client disconnected")

		case msg := <-h.broadcast:
			h.broadcastToClients(msg)
		}
	}
}

// broadcastToClients delivers msg to every client, disconnecting clients
// whose send buffers are full rather than stalling the hub.
func (h *Hub) broadcastToClients(msg Message) {
	for client := range h.clients {
		select {
		case client.send <- msg:
			metrics.WebSocketMessagesSent.Inc()
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
	metrics.WebSocketClients.Set(float64(len(h.clients)))
}

// closeAllClients closes every client's send channel.
func (h *Hub) closeAllClients() {
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
	metrics.WebSocketClients.Set(0)
}
