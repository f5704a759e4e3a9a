package hub

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/sitelens/scan-engine/internal/api/metrics"
	"github.com/sitelens/scan-engine/internal/core/domain"
	"github.com/sitelens/scan-engine/internal/core/ports"
)

// subscriberBuffer bounds each member's channel. A member that stops reading
// loses events rather than blocking the pipeline.
const subscriberBuffer = 16

// Hub is the in-process broadcast hub: one room per scan id, each room a set
// of subscriber channels. Membership mutations are serialized under a single
// lock; emission holds the read lock only, so unrelated rooms never block
// each other.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[string]chan domain.ProgressEvent
	logger zerolog.Logger
}

func New(logger zerolog.Logger) *Hub {
	return &Hub{
		rooms:  make(map[string]map[string]chan domain.ProgressEvent),
		logger: logger.With().Str("component", "hub").Logger(),
	}
}

// Join adds subscriberID to scanID's room. A repeat join with the same
// subscriber id replaces the previous membership and closes its channel.
func (h *Hub) Join(subscriberID, scanID string) <-chan domain.ProgressEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[scanID]
	if !ok {
		room = make(map[string]chan domain.ProgressEvent)
		h.rooms[scanID] = room
	}
	if prev, ok := room[subscriberID]; ok {
		close(prev)
	} else {
		metrics.RoomSubscribers.Inc()
	}
	ch := make(chan domain.ProgressEvent, subscriberBuffer)
	room[subscriberID] = ch
	return ch
}

// Leave removes the subscriber from the room and closes its channel. Leaving
// a room the subscriber is not a member of is a no-op.
func (h *Hub) Leave(subscriberID, scanID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[scanID]
	if !ok {
		return
	}
	ch, ok := room[subscriberID]
	if !ok {
		return
	}
	close(ch)
	delete(room, subscriberID)
	metrics.RoomSubscribers.Dec()
	if len(room) == 0 {
		delete(h.rooms, scanID)
	}
}

// Emit delivers the event to every current member of its scan's room.
// Delivery is non-blocking: a full subscriber buffer drops the event for
// that subscriber only.
func (h *Hub) Emit(event domain.ProgressEvent) {
	metrics.EventsEmittedTotal.WithLabelValues(string(event.Kind)).Inc()

	h.mu.RLock()
	defer h.mu.RUnlock()

	room, ok := h.rooms[event.ScanID]
	if !ok {
		return
	}
	for subscriberID, ch := range room {
		select {
		case ch <- event:
		default:
			h.logger.Warn().
				Str("scan_id", event.ScanID).
				Str("subscriber_id", subscriberID).
				Str("kind", string(event.Kind)).
				Msg("subscriber buffer full, event dropped")
		}
	}
}

var _ ports.Hub = (*Hub)(nil)
