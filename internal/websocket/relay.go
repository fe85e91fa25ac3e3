// Orbitus - ISS Position Tracking and Orbit History
// Copyright 2026 Orbitus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/orbitus/orbitus

package websocket

import (
	"context"

	"github.com/orbitus/orbitus/internal/events"
	"github.com/orbitus/orbitus/internal/logging"
)

// Relay subscribes to sampled-position events on the in-process bus and
// broadcasts them to all connected WebSocket clients. It is the only bus
// consumer; running it as its own supervised service keeps a relay crash
// from taking down the hub.
type Relay struct {
	bus *events.Bus
	hub *Hub
}

// NewRelay creates a relay between the bus and the hub.
func NewRelay(bus *events.Bus, hub *Hub) *Relay {
	return &Relay{bus: bus, hub: hub}
}

// Run consumes sample events until ctx is canceled. Undecodable events are
// logged and dropped; they never stop the relay.
func (r *Relay) Run(ctx context.Context) error {
	log := logging.WithComponent("websocket-relay")

	messages, err := r.bus.SubscribeSamples(ctx)
	if err != nil {
		return err
	}
	log.Info().Msg("relay started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("relay stopped")
			return ctx.Err()

		case msg, ok := <-messages:
			if !ok {
				// Bus closed; treat like cancellation.
				log.Info().Msg("relay stopped: bus closed")
				return ctx.Err()
			}

			sample, err := events.DecodeSample(msg)
			msg.Ack()
			if err != nil {
				log.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("dropping undecodable sample event")
				continue
			}

			r.hub.Broadcast(Message{Type: MessageTypePosition, Data: sample})
		}
	}
}
