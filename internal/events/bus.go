// Orbitus - ISS Position Tracking and Orbit History
// Copyright 2026 Orbitus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/orbitus/orbitus

// Package events carries sampled positions from the sampler to in-process
// consumers over a Watermill GoChannel pub/sub. The only consumer today is
// the WebSocket relay; the bus keeps the sampler unaware of how many
// consumers exist and lets slow consumers buffer without stalling the poll
// loop.
package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/orbitus/orbitus/internal/metrics"
	"github.com/orbitus/orbitus/internal/models"
)

// TopicPositionSampled carries one models.Sample per message, JSON-encoded.
const TopicPositionSampled = "position.sampled"

// Bus is an in-process publish/subscribe channel for sample events.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// NewBus creates the in-process event bus. Subscriber channels buffer up to
// 256 messages; the GoChannel blocks publishes beyond that, which is
// acceptable because the only publisher polls at multi-second cadence.
func NewBus() *Bus {
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		NewWatermillLogger(),
	)
	return &Bus{pubsub: pubsub}
}

// PublishSample publishes a sampled position to TopicPositionSampled.
func (b *Bus) PublishSample(s models.Sample) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal sample event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := b.pubsub.Publish(TopicPositionSampled, msg); err != nil {
		return fmt.Errorf("publish sample event: %w", err)
	}

	metrics.EventsPublished.WithLabelValues(TopicPositionSampled).Inc()
	return nil
}

// SubscribeSamples returns a channel of sample events. The subscription is
// closed when ctx is canceled. Messages must be Acked by the consumer.
func (b *Bus) SubscribeSamples(ctx context.Context) (<-chan *message.Message, error) {
	messages, err := b.pubsub.Subscribe(ctx, TopicPositionSampled)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", TopicPositionSampled, err)
	}
	return messages, nil
}

// DecodeSample decodes a sample event payload.
func DecodeSample(msg *message.Message) (models.Sample, error) {
	var s models.Sample
	if err := json.Unmarshal(msg.Payload, &s); err != nil {
		return models.Sample{}, fmt.Errorf("decode sample event: %w", err)
	}
	return s, nil
}

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
