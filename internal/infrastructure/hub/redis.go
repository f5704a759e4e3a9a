package hub

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sitelens/scan-engine/internal/core/domain"
	"github.com/sitelens/scan-engine/internal/core/ports"
)

const eventsChannel = "scan:events"

// RedisBridge fans events out across process instances. Emit publishes to a
// shared Redis channel; every instance (the emitter included) receives the
// publish and delivers it to its own in-process rooms, so a subscriber on
// instance A sees events emitted on instance B.
type RedisBridge struct {
	local  *Hub
	client *redis.Client
	pubsub *redis.PubSub
	logger zerolog.Logger
}

func NewRedisBridge(ctx context.Context, local *Hub, client *redis.Client, logger zerolog.Logger) *RedisBridge {
	b := &RedisBridge{
		local:  local,
		client: client,
		pubsub: client.Subscribe(ctx, eventsChannel),
		logger: logger.With().Str("component", "hub_bridge").Logger(),
	}
	go b.run()
	return b
}

func (b *RedisBridge) Join(subscriberID, scanID string) <-chan domain.ProgressEvent {
	return b.local.Join(subscriberID, scanID)
}

func (b *RedisBridge) Leave(subscriberID, scanID string) {
	b.local.Leave(subscriberID, scanID)
}

// Emit publishes the event to the shared channel. When the publish fails the
// event is delivered to the local rooms directly so single-instance delivery
// degrades gracefully instead of going silent.
func (b *RedisBridge) Emit(event domain.ProgressEvent) {
	raw, err := json.Marshal(event)
	if err != nil {
		b.logger.Error().Err(err).Str("scan_id", event.ScanID).Msg("event encode failed")
		return
	}
	if err := b.client.Publish(context.Background(), eventsChannel, raw).Err(); err != nil {
		b.logger.Warn().Err(err).Str("scan_id", event.ScanID).Msg("publish failed, delivering locally")
		b.local.Emit(event)
	}
}

func (b *RedisBridge) run() {
	for msg := range b.pubsub.Channel() {
		var event domain.ProgressEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			b.logger.Warn().Err(err).Msg("dropping undecodable event")
			continue
		}
		b.local.Emit(event)
	}
}

// Close tears down the subscription and stops the delivery loop.
func (b *RedisBridge) Close() error {
	return b.pubsub.Close()
}

var _ ports.Hub = (*RedisBridge)(nil)
