package ports

import "github.com/sitelens/scan-engine/internal/core/domain"

// Hub maintains per-scan subscriber rooms and fans events out to current
// members. Delivery is best-effort, at-most-once per currently-joined
// subscriber: no replay, no persistence. Emission order is FIFO within a
// room; rooms are independent of each other.
type Hub interface {
	// Join adds a subscriber to scanID's room and returns the channel its
	// events arrive on. Joining twice with the same subscriber id replaces
	// the previous membership.
	Join(subscriberID, scanID string) <-chan domain.ProgressEvent

	// Leave removes the subscriber from the room and closes its channel.
	Leave(subscriberID, scanID string)

	// Emit delivers the event to every current member of its scan's room.
	// Emitting to an empty room is a silent no-op.
	Emit(event domain.ProgressEvent)
}
